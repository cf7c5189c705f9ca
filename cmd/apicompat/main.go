// Command apicompat fails when the API surface drops a path, method or
// response code present in a stored baseline. Without -revision the baseline
// is compared against the swagger document compiled into the server.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"pollshare/docs"

	"gopkg.in/yaml.v3"
)

func main() {
	basePath := flag.String("base", "", "baseline swagger file (yaml or json)")
	revisionPath := flag.String("revision", "", "revision swagger file; defaults to the built-in document")
	writePath := flag.String("write", "", "write the built-in document as a yaml baseline and exit")
	flag.Parse()

	if *writePath != "" {
		if err := writeBaseline(*writePath); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write baseline: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if strings.TrimSpace(*basePath) == "" {
		fmt.Fprintln(os.Stderr, "usage: apicompat -base <path> [-revision <path>] | -write <path>")
		os.Exit(2)
	}

	base, err := loadFile(*basePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load base document: %v\n", err)
		os.Exit(1)
	}

	var revision surface
	if *revisionPath != "" {
		revision, err = loadFile(*revisionPath)
	} else {
		revision, err = parseSurface([]byte(docs.SwaggerInfo.ReadDoc()))
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load revision document: %v\n", err)
		os.Exit(1)
	}

	issues := compare(base, revision)
	if len(issues) > 0 {
		fmt.Fprintln(os.Stderr, "backward compatibility check failed:")
		for _, issue := range issues {
			fmt.Fprintf(os.Stderr, "- %s\n", issue)
		}
		os.Exit(1)
	}
	fmt.Println("api compatibility check passed")
}

func loadFile(path string) (surface, error) {
	// #nosec G304: path comes from CLI flags in a dev tool
	raw, err := os.ReadFile(path)
	if err != nil {
		return surface{}, err
	}
	return parseSurface(raw)
}

func writeBaseline(path string) error {
	var doc map[string]any
	if err := yaml.Unmarshal([]byte(docs.SwaggerInfo.ReadDoc()), &doc); err != nil {
		return err
	}
	out, err := yaml.Marshal(doc)
	if err != nil {
		return err
	}
	return os.WriteFile(path, out, 0o644)
}
