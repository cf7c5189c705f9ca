package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"pollshare/internal/config"
	"pollshare/internal/models"
	"pollshare/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test-secret-at-least-32-characters-long"

type testServer struct {
	t   *testing.T
	s   *Server
	app *fiber.App
	mr  *miniredis.Miniredis
}

func newTestServer(t *testing.T, mutate ...func(*config.Config)) *testServer {
	t.Helper()

	cfg := &config.Config{
		Env:                      "test",
		Port:                     "0",
		AllowedOrigins:           "*",
		FeatureFlags:             "live_polls=on,suggestions=on",
		DBDriver:                 "sqlite",
		DBMaxOpenConns:           1,
		DBMaxIdleConns:           1,
		DBConnMaxLifetimeMinutes: 1,
		JWTSecret:                testJWTSecret,
	}
	for _, m := range mutate {
		m(cfg)
	}

	db := testutil.NewSQLiteDB(t)
	mr, rdb := testutil.NewRedis(t)

	s, err := NewServerWithDeps(cfg, db, rdb, nil)
	require.NoError(t, err)
	return &testServer{t: t, s: s, app: s.App(), mr: mr}
}

func (ts *testServer) do(method, path string, body any, headers ...string) *http.Response {
	ts.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(ts.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := ts.app.Test(req, -1)
	require.NoError(ts.t, err)
	ts.t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func errorMessage(t *testing.T, resp *http.Response) string {
	t.Helper()
	return decodeBody[models.ErrorResponse](t, resp).Error
}

func (ts *testServer) createUser(subject, handle string, headers ...string) models.User {
	ts.t.Helper()
	resp := ts.do(http.MethodPost, "/api/users", fiber.Map{
		"userid": subject,
		"name":   strings.ToUpper(handle[:1]) + handle[1:],
		"handle": handle,
	}, headers...)
	require.Equal(ts.t, http.StatusCreated, resp.StatusCode)
	return decodeBody[models.User](ts.t, resp)
}

func (ts *testServer) createPoll(authorID uint, showVotes bool, headers ...string) models.Poll {
	ts.t.Helper()
	resp := ts.do(http.MethodPost, "/api/polls", fiber.Map{
		"author":                authorID,
		"question":              "Tabs or spaces?",
		"options":               []string{"Tabs", "Spaces"},
		"showVotesBeforeExpire": showVotes,
	}, headers...)
	require.Equal(ts.t, http.StatusCreated, resp.StatusCode)
	return decodeBody[models.Poll](ts.t, resp)
}

func signToken(t *testing.T, subject string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return signed
}

func bearer(t *testing.T, subject string) []string {
	return []string{"Authorization", "Bearer " + signToken(t, subject)}
}

// --- health ---

func TestHealthEndpoints(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(http.MethodGet, "/health/live", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = ts.do(http.MethodGet, "/health/ready", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody[map[string]any](t, resp)
	assert.Equal(t, "healthy", body["status"])
	checks := body["checks"].(map[string]any)
	assert.Equal(t, "healthy", checks["database"])
	assert.Equal(t, "healthy", checks["redis"])
}

func TestReadinessWithoutRedis(t *testing.T) {
	cfg := &config.Config{Env: "test", Port: "0", AllowedOrigins: "*"}
	s, err := NewServerWithDeps(cfg, testutil.NewSQLiteDB(t), nil, nil)
	require.NoError(t, err)

	resp, err := s.App().Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody[map[string]any](t, resp)
	assert.Equal(t, "unavailable", body["checks"].(map[string]any)["redis"])
}

// --- users ---

func TestCreateUserAndLookup(t *testing.T) {
	ts := newTestServer(t)

	alice := ts.createUser("ext-alice", "Alice_1")
	assert.Equal(t, "alice_1", alice.Handle)
	assert.NotZero(t, alice.ID)

	t.Run("duplicate handle ignores case", func(t *testing.T) {
		resp := ts.do(http.MethodPost, "/api/users", fiber.Map{
			"userid": "ext-other", "name": "Other", "handle": "ALICE_1",
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Handle already taken", errorMessage(t, resp))
	})

	t.Run("invalid handle", func(t *testing.T) {
		resp := ts.do(http.MethodPost, "/api/users", fiber.Map{
			"userid": "ext-bad", "name": "Bad", "handle": "x",
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("check handle", func(t *testing.T) {
		resp := ts.do(http.MethodGet, "/api/users/check-handle?handle=ALICE_1", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, true, decodeBody[map[string]bool](t, resp)["exists"])

		resp = ts.do(http.MethodGet, "/api/users/check-handle?handle=nobody_here", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, false, decodeBody[map[string]bool](t, resp)["exists"])

		resp = ts.do(http.MethodGet, "/api/users/check-handle", nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Handle is required", errorMessage(t, resp))
	})

	t.Run("by external id", func(t *testing.T) {
		resp := ts.do(http.MethodGet, "/api/users/ext-alice", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, alice.ID, decodeBody[models.User](t, resp).ID)

		resp = ts.do(http.MethodGet, "/api/users/ext-missing", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "User not found", errorMessage(t, resp))
	})

	t.Run("by handle", func(t *testing.T) {
		resp := ts.do(http.MethodGet, "/api/users/handle/Alice_1", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "alice_1", decodeBody[models.User](t, resp).Handle)
	})

	t.Run("update profile", func(t *testing.T) {
		resp := ts.do(http.MethodPut, "/api/users/ext-alice", fiber.Map{"name": "Alice L", "age": 31})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		user := decodeBody[models.User](t, resp)
		assert.Equal(t, "Alice L", user.Name)
		assert.Equal(t, 31, user.Age)
		assert.Equal(t, "alice_1", user.Handle)

		resp = ts.do(http.MethodPut, "/api/users/ext-alice", fiber.Map{"name": "  "})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestSuggestionsAndSearch(t *testing.T) {
	ts := newTestServer(t)

	alice := ts.createUser("ext-alice", "alice")
	bob := ts.createUser("ext-bob", "bob_builder")
	carol := ts.createUser("ext-carol", "carol")

	resp := ts.do(http.MethodPost, "/api/users/suggestions", fiber.Map{"excludeId": "abc"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid excludeId", errorMessage(t, resp))

	resp = ts.do(http.MethodPost, "/api/users/suggestions", fiber.Map{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = ts.do(http.MethodPost, "/api/users/follow", fiber.Map{"followerId": alice.ID, "followeeId": bob.ID})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = ts.do(http.MethodPost, "/api/users/suggestions", fiber.Map{"excludeId": fmt.Sprint(alice.ID), "limit": 10})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	suggestions := decodeBody[[]models.UserSummary](t, resp)
	require.Len(t, suggestions, 1)
	assert.Equal(t, carol.ID, suggestions[0].ID)

	resp = ts.do(http.MethodPost, "/api/users/search-users", fiber.Map{"searchTerm": "BUILD"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	found := decodeBody[[]models.UserSummary](t, resp)
	require.Len(t, found, 1)
	assert.Equal(t, bob.ID, found[0].ID)

	resp = ts.do(http.MethodPost, "/api/users/search-users", fiber.Map{"searchTerm": " "})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Search term required", errorMessage(t, resp))
}

func TestSuggestionsFlagOff(t *testing.T) {
	ts := newTestServer(t, func(c *config.Config) { c.FeatureFlags = "suggestions=off" })
	alice := ts.createUser("ext-alice", "alice")
	ts.createUser("ext-bob", "bob")

	resp := ts.do(http.MethodPost, "/api/users/suggestions", fiber.Map{"excludeId": alice.ID})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decodeBody[[]models.UserSummary](t, resp))
}

func TestFollowAndUnfollow(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.createUser("ext-alice", "alice")
	bob := ts.createUser("ext-bob", "bob")

	type followResponse struct {
		Success  bool        `json:"success"`
		Follower models.User `json:"follower"`
		Followee models.User `json:"followee"`
	}

	resp := ts.do(http.MethodPost, "/api/users/follow", fiber.Map{"followerId": alice.ID, "followeeId": bob.ID})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody[followResponse](t, resp)
	assert.True(t, body.Success)
	assert.Equal(t, 1, body.Follower.FollowingCount)
	assert.Equal(t, 1, body.Followee.FollowersCount)

	// Following twice leaves the counts alone.
	resp = ts.do(http.MethodPost, "/api/users/follow", fiber.Map{"followerId": alice.ID, "followeeId": bob.ID})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, decodeBody[followResponse](t, resp).Followee.FollowersCount)

	resp = ts.do(http.MethodGet, "/api/users/handle/bob", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	profile := decodeBody[models.User](t, resp)
	require.Len(t, profile.Followers, 1)
	assert.Equal(t, alice.ID, profile.Followers[0].ID)

	resp = ts.do(http.MethodPost, "/api/users/unfollow", fiber.Map{"followerId": alice.ID, "followeeId": bob.ID})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body = decodeBody[followResponse](t, resp)
	assert.Equal(t, 0, body.Follower.FollowingCount)
	assert.Equal(t, 0, body.Followee.FollowersCount)

	t.Run("self follow", func(t *testing.T) {
		resp := ts.do(http.MethodPost, "/api/users/follow", fiber.Map{"followerId": alice.ID, "followeeId": alice.ID})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("unknown followee", func(t *testing.T) {
		resp := ts.do(http.MethodPost, "/api/users/follow", fiber.Map{"followerId": alice.ID, "followeeId": 9999})
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("missing ids", func(t *testing.T) {
		resp := ts.do(http.MethodPost, "/api/users/follow", fiber.Map{"followerId": alice.ID})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestSavedPosts(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.createUser("ext-alice", "alice")
	poll := ts.createPoll(alice.ID, true)

	save := func(path string) string {
		resp := ts.do(http.MethodPost, path, fiber.Map{"userId": alice.ID, "postId": poll.ID})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		return decodeBody[map[string]string](t, resp)["message"]
	}

	assert.Equal(t, "Post saved successfully", save("/api/users/save-post"))
	assert.Equal(t, "Post already saved", save("/api/users/save-post"))

	resp := ts.do(http.MethodGet, fmt.Sprintf("/api/users/saved-posts/%d", alice.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	saved := decodeBody[[]models.Poll](t, resp)
	require.Len(t, saved, 1)
	assert.Equal(t, poll.ID, saved[0].ID)

	assert.Equal(t, "Post unsaved successfully", save("/api/users/unsave-post"))

	resp = ts.do(http.MethodGet, fmt.Sprintf("/api/users/saved-posts/%d", alice.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decodeBody[[]models.Poll](t, resp))

	t.Run("unknown user", func(t *testing.T) {
		resp := ts.do(http.MethodGet, "/api/users/saved-posts/abc", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "User not found", errorMessage(t, resp))

		resp = ts.do(http.MethodPost, "/api/users/save-post", fiber.Map{"userId": 4242, "postId": poll.ID})
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("unknown poll", func(t *testing.T) {
		resp := ts.do(http.MethodPost, "/api/users/save-post", fiber.Map{"userId": alice.ID, "postId": 4242})
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

// --- polls ---

func TestCreatePollValidation(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.createUser("ext-alice", "alice")

	tests := []struct {
		name string
		body fiber.Map
	}{
		{"missing author", fiber.Map{"question": "Q?", "options": []string{"a", "b"}}},
		{"single option", fiber.Map{"author": alice.ID, "question": "Q?", "options": []string{"a"}}},
		{"blank question", fiber.Map{"author": alice.ID, "question": " ", "options": []string{"a", "b"}}},
		{"past expiry", fiber.Map{"author": alice.ID, "question": "Q?", "options": []string{"a", "b"},
			"expiresAt": time.Now().Add(-time.Hour).Format(time.RFC3339)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.do(http.MethodPost, "/api/polls", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}

	resp := ts.do(http.MethodGet, "/api/polls/abc", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp = ts.do(http.MethodGet, "/api/polls/999", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestVotePoll(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.createUser("ext-alice", "alice")
	bob := ts.createUser("ext-bob", "bob")
	poll := ts.createPoll(alice.ID, true)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), poll.ExpiresAt, time.Minute)

	votePath := fmt.Sprintf("/api/polls/%d/vote", poll.ID)

	resp := ts.do(http.MethodPost, votePath, fiber.Map{"optionIndex": 1, "userId": bob.ID}, "Idempotency-Key", "vote-1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	voted := decodeBody[models.Poll](t, resp)
	assert.Equal(t, 1, voted.TotalVotes)
	assert.Equal(t, 1, voted.Options[1].Votes)
	assert.Contains(t, voted.VotedUsers, bob.ID)

	t.Run("retry with same key is replayed", func(t *testing.T) {
		resp := ts.do(http.MethodPost, votePath, fiber.Map{"optionIndex": 1, "userId": bob.ID}, "Idempotency-Key", "vote-1")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, 1, decodeBody[models.Poll](t, resp).TotalVotes)
	})

	t.Run("second vote conflicts", func(t *testing.T) {
		resp := ts.do(http.MethodPost, votePath, fiber.Map{"optionIndex": 0, "userId": bob.ID})
		assert.Equal(t, http.StatusConflict, resp.StatusCode)

		resp = ts.do(http.MethodPost, votePath, fiber.Map{"optionIndex": 0, "userId": bob.ID}, "Idempotency-Key", "vote-2")
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("bad requests", func(t *testing.T) {
		resp := ts.do(http.MethodPost, votePath, fiber.Map{"userId": alice.ID})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "optionIndex is required", errorMessage(t, resp))

		resp = ts.do(http.MethodPost, votePath, fiber.Map{"optionIndex": 5, "userId": alice.ID})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		resp = ts.do(http.MethodPost, votePath, fiber.Map{"optionIndex": 0})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		resp = ts.do(http.MethodPost, votePath, fiber.Map{"optionIndex": 0, "userId": alice.ID},
			"Idempotency-Key", strings.Repeat("k", 65))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("expired poll", func(t *testing.T) {
		require.NoError(t, ts.s.db.Model(&models.Poll{}).Where("id = ?", poll.ID).
			Update("expires_at", time.Now().Add(-time.Minute)).Error)
		ts.mr.FlushAll()

		resp := ts.do(http.MethodPost, votePath, fiber.Map{"optionIndex": 0, "userId": alice.ID})
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Equal(t, "Poll has expired", errorMessage(t, resp))
	})
}

// --- comments ---

func TestCommentThread(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.createUser("ext-alice", "alice")
	bob := ts.createUser("ext-bob", "bob")
	poll := ts.createPoll(alice.ID, false)
	commentsPath := fmt.Sprintf("/api/polls/%d/comments", poll.ID)

	resp := ts.do(http.MethodPost, commentsPath, fiber.Map{"author": alice.ID, "body": "First!"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	top := decodeBody[models.Comment](t, resp)
	assert.Equal(t, "alice", top.Handle)

	resp = ts.do(http.MethodPost, commentsPath, fiber.Map{"author": bob.ID, "body": "Reply", "parentId": fmt.Sprint(top.ID)})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	reply := decodeBody[models.Comment](t, resp)
	require.NotNil(t, reply.ParentID)
	assert.Equal(t, top.ID, *reply.ParentID)

	t.Run("replies cannot be nested", func(t *testing.T) {
		resp := ts.do(http.MethodPost, commentsPath, fiber.Map{"author": alice.ID, "body": "Deep", "parentId": reply.ID})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Replies cannot be nested", errorMessage(t, resp))
	})

	t.Run("invalid parent id", func(t *testing.T) {
		resp := ts.do(http.MethodPost, commentsPath, fiber.Map{"author": alice.ID, "body": "x", "parentId": "nope"})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Invalid parentId", errorMessage(t, resp))
	})

	t.Run("empty body", func(t *testing.T) {
		resp := ts.do(http.MethodPost, commentsPath, fiber.Map{"author": alice.ID, "body": "  "})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	resp = ts.do(http.MethodGet, commentsPath, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	thread := decodeBody[[]models.Comment](t, resp)
	require.Len(t, thread, 1)
	require.Len(t, thread[0].Replies, 1)
	assert.Equal(t, reply.ID, thread[0].Replies[0].ID)

	deletePath := fmt.Sprintf("%s/%d", commentsPath, top.ID)

	resp = ts.do(http.MethodDelete, deletePath+fmt.Sprintf("?userId=%d", bob.ID), nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "You can only delete your own comments", errorMessage(t, resp))

	resp = ts.do(http.MethodDelete, deletePath, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = ts.do(http.MethodDelete, deletePath+fmt.Sprintf("?userId=%d", alice.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, decodeBody[map[string]bool](t, resp)["success"])

	resp = ts.do(http.MethodGet, commentsPath, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decodeBody[[]models.Comment](t, resp))

	resp = ts.do(http.MethodGet, "/api/polls/999/comments", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// --- feature flags and live updates ---

func TestFeatureFlagsEndpoint(t *testing.T) {
	ts := newTestServer(t, func(c *config.Config) { c.FeatureFlags = "live_polls=on,suggestions=0%" })

	resp := ts.do(http.MethodGet, "/api/feature-flags?userId=7", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Raw       map[string]string `json:"raw"`
		Evaluated map[string]bool   `json:"evaluated"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "on", body.Raw["live_polls"])
	assert.True(t, body.Evaluated["live_polls"])
	assert.False(t, body.Evaluated["suggestions"])
}

func TestPollStreamUpgrade(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.createUser("ext-alice", "alice")
	poll := ts.createPoll(alice.ID, true)

	resp := ts.do(http.MethodGet, fmt.Sprintf("/api/ws/polls/%d", poll.ID), nil)
	assert.Equal(t, http.StatusUpgradeRequired, resp.StatusCode)

	upgrade := []string{"Connection", "Upgrade", "Upgrade", "websocket",
		"Sec-WebSocket-Version", "13", "Sec-WebSocket-Key", "dGhlIHNhbXBsZSBub25jZQ=="}
	resp = ts.do(http.MethodGet, "/api/ws/polls/999", nil, upgrade...)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = ts.do(http.MethodGet, "/api/ws/polls/abc", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPollStreamFlagOff(t *testing.T) {
	ts := newTestServer(t, func(c *config.Config) { c.FeatureFlags = "live_polls=off" })

	resp := ts.do(http.MethodGet, "/api/ws/polls/1", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Live updates not found", errorMessage(t, resp))
}

// --- auth ---

func TestAuthEnabled(t *testing.T) {
	ts := newTestServer(t, func(c *config.Config) { c.AuthEnabled = true })

	resp := ts.do(http.MethodPost, "/api/users", fiber.Map{"userid": "ext-alice", "name": "Alice", "handle": "alice"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = ts.do(http.MethodPost, "/api/users", fiber.Map{"userid": "ext-alice", "name": "Alice", "handle": "alice"},
		bearer(t, "ext-mallory")...)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	alice := ts.createUser("ext-alice", "alice", bearer(t, "ext-alice")...)
	bob := ts.createUser("ext-bob", "bob", bearer(t, "ext-bob")...)

	t.Run("reads stay public", func(t *testing.T) {
		resp := ts.do(http.MethodGet, "/api/users/handle/alice", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("cannot act for someone else", func(t *testing.T) {
		resp := ts.do(http.MethodPost, "/api/polls", fiber.Map{
			"author": alice.ID, "question": "Q?", "options": []string{"a", "b"},
		}, bearer(t, "ext-bob")...)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)

		resp = ts.do(http.MethodPut, "/api/users/ext-alice", fiber.Map{"name": "Hacked"}, bearer(t, "ext-bob")...)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("token without profile", func(t *testing.T) {
		resp := ts.do(http.MethodPost, "/api/users/follow", fiber.Map{"followerId": alice.ID, "followeeId": bob.ID},
			bearer(t, "ext-nobody")...)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("invalid token", func(t *testing.T) {
		resp := ts.do(http.MethodPost, "/api/users/follow", fiber.Map{"followerId": alice.ID, "followeeId": bob.ID},
			"Authorization", "Bearer not-a-token")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	poll := ts.createPoll(alice.ID, true, bearer(t, "ext-alice")...)
	resp = ts.do(http.MethodPost, fmt.Sprintf("/api/polls/%d/vote", poll.ID),
		fiber.Map{"optionIndex": 0, "userId": bob.ID}, bearer(t, "ext-bob")...)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = ts.do(http.MethodGet, fmt.Sprintf("/api/ws/polls/%d", poll.ID), nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
