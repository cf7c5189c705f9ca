package main

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

var httpMethods = map[string]struct{}{
	"get": {}, "put": {}, "post": {}, "delete": {}, "patch": {}, "head": {}, "options": {},
}

// surface maps path -> method -> set of documented response codes.
type surface map[string]map[string]map[string]struct{}

// parseSurface reads a swagger document. JSON is valid yaml, so both formats load.
func parseSurface(raw []byte) (surface, error) {
	var doc struct {
		Paths map[string]map[string]yaml.Node `yaml:"paths"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	if doc.Paths == nil {
		return nil, errors.New("missing top-level paths field")
	}

	out := make(surface, len(doc.Paths))
	for path, ops := range doc.Paths {
		methods := make(map[string]map[string]struct{})
		for method, node := range ops {
			m := strings.ToLower(strings.TrimSpace(method))
			if _, ok := httpMethods[m]; !ok {
				continue
			}
			var op struct {
				Responses map[string]yaml.Node `yaml:"responses"`
			}
			if err := node.Decode(&op); err != nil {
				return nil, fmt.Errorf("%s %s: %w", strings.ToUpper(m), path, err)
			}
			codes := make(map[string]struct{}, len(op.Responses))
			for code := range op.Responses {
				if c := strings.ToLower(strings.TrimSpace(code)); c != "" {
					codes[c] = struct{}{}
				}
			}
			methods[m] = codes
		}
		if len(methods) > 0 {
			out[path] = methods
		}
	}
	return out, nil
}

// compare lists everything in base that revision no longer offers, sorted.
func compare(base, revision surface) []string {
	var issues []string
	for path, baseOps := range base {
		revOps, ok := revision[path]
		if !ok {
			issues = append(issues, "removed path: "+path)
			continue
		}
		for method, codes := range baseOps {
			revCodes, ok := revOps[method]
			if !ok {
				issues = append(issues, fmt.Sprintf("removed operation: %s %s", strings.ToUpper(method), path))
				continue
			}
			for code := range codes {
				if _, ok := revCodes[code]; !ok {
					issues = append(issues, fmt.Sprintf("removed response code: %s %s -> %s",
						strings.ToUpper(method), path, strings.ToUpper(code)))
				}
			}
		}
	}
	sort.Strings(issues)
	return issues
}
