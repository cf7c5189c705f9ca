package main

import (
	"os"
	"path/filepath"
	"testing"

	"pollshare/docs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baselineYAML = `
swagger: "2.0"
paths:
  /polls/{id}/vote:
    post:
      responses:
        "200": {description: OK}
        "409": {description: Conflict}
    parameters: []
  /users/{id}:
    get:
      responses:
        "200": {description: OK}
`

func TestParseSurface(t *testing.T) {
	s, err := parseSurface([]byte(baselineYAML))
	require.NoError(t, err)

	require.Contains(t, s, "/polls/{id}/vote")
	assert.Len(t, s["/polls/{id}/vote"], 1, "non-method keys are ignored")
	assert.Contains(t, s["/polls/{id}/vote"]["post"], "409")

	_, err = parseSurface([]byte("swagger: \"2.0\"\n"))
	assert.EqualError(t, err, "missing top-level paths field")
}

func TestCompare(t *testing.T) {
	base, err := parseSurface([]byte(baselineYAML))
	require.NoError(t, err)

	revision, err := parseSurface([]byte(`{"paths": {
		"/polls/{id}/vote": {"post": {"responses": {"200": {}}}}
	}}`))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"removed path: /users/{id}",
		"removed response code: POST /polls/{id}/vote -> 409",
	}, compare(base, revision))

	assert.Empty(t, compare(base, base))
}

func TestBuiltInDocumentCoversBaseline(t *testing.T) {
	current, err := parseSurface([]byte(docs.SwaggerInfo.ReadDoc()))
	require.NoError(t, err)

	base, err := parseSurface([]byte(baselineYAML))
	require.NoError(t, err)
	assert.Empty(t, compare(base, current))
}

func TestWriteBaselineRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "swagger.yaml")
	require.NoError(t, writeBaseline(path))

	written, err := loadFile(path)
	require.NoError(t, err)
	current, err := parseSurface([]byte(docs.SwaggerInfo.ReadDoc()))
	require.NoError(t, err)
	assert.Equal(t, current, written)

	_, err = os.Stat(path)
	assert.NoError(t, err)
}
