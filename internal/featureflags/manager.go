// Package featureflags evaluates FEATURE_FLAGS rollouts.
package featureflags

import (
	"hash/fnv"
	"strconv"
	"strings"
)

// Flag names a switchable feature.
type Flag string

// Flags checked by the server.
const (
	// LivePolls gates the poll results websocket.
	LivePolls Flag = "live_polls"
	// Suggestions is a kill switch for follow suggestions.
	Suggestions Flag = "suggestions"
)

// defaults apply when FEATURE_FLAGS does not mention a known flag.
var defaults = map[Flag]bool{
	LivePolls:   false,
	Suggestions: true,
}

// rule is one parsed flag value. percent is the share of users in [0,100]
// that see the feature.
type rule struct {
	raw     string
	percent int
}

// Manager evaluates flags from a comma-separated list such as
// "live_polls=on,suggestions=25%". Values are on/true/1, off/false/0 or N%.
// Unparseable values switch the flag off.
type Manager struct {
	rules map[Flag]rule
}

// NewManager parses raw. Malformed pairs are skipped.
func NewManager(raw string) *Manager {
	rules := make(map[Flag]rule)
	for _, pair := range strings.Split(raw, ",") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		name, value := Flag(normalize(key)), normalize(value)
		if name == "" || value == "" {
			continue
		}
		rules[name] = rule{raw: value, percent: parsePercent(value)}
	}
	return &Manager{rules: rules}
}

func parsePercent(value string) int {
	switch value {
	case "on", "true", "1":
		return 100
	case "off", "false", "0":
		return 0
	}
	n, ok := strings.CutSuffix(value, "%")
	if !ok {
		return 0
	}
	pct, err := strconv.Atoi(strings.TrimSpace(n))
	if err != nil {
		return 0
	}
	return min(max(pct, 0), 100)
}

// Enabled reports whether name is on for userKey. Partial rollouts bucket
// users deterministically and are off for an empty userKey.
func (m *Manager) Enabled(name Flag, userKey string) bool {
	name = Flag(normalize(string(name)))
	var r rule
	ok := false
	if m != nil {
		r, ok = m.rules[name]
	}
	if !ok {
		return defaults[name]
	}

	switch {
	case r.percent >= 100:
		return true
	case r.percent <= 0, userKey == "":
		return false
	}
	return bucket(name, userKey) < r.percent
}

// Raw returns the configured values as written, normalized.
func (m *Manager) Raw() map[string]string {
	out := make(map[string]string, len(m.rules))
	for name, r := range m.rules {
		out[string(name)] = r.raw
	}
	return out
}

// Snapshot evaluates every configured flag and every known flag for userKey.
func (m *Manager) Snapshot(userKey string) map[string]bool {
	out := make(map[string]bool, len(m.rules)+len(defaults))
	for name := range defaults {
		out[string(name)] = m.Enabled(name, userKey)
	}
	for name := range m.rules {
		out[string(name)] = m.Enabled(name, userKey)
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func bucket(name Flag, userKey string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(string(name) + ":" + userKey))
	return int(h.Sum32() % 100)
}
