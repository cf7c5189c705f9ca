// Package validation holds input rules shared by the services.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

var handleRegex = regexp.MustCompile(`^[a-z0-9_.]{3,30}$`)

var reservedHandles = map[string]struct{}{
	"admin":    {},
	"api":      {},
	"auth":     {},
	"settings": {},
	"users":    {},
	"polls":    {},
	"comments": {},
	"ws":       {},
	"swagger":  {},
	"metrics":  {},
	"login":    {},
	"signup":   {},
}

// NormalizeHandle trims and lower-cases a handle. Handles are compared in this form.
func NormalizeHandle(handle string) string {
	return strings.ToLower(strings.TrimSpace(handle))
}

// ValidateHandle checks an already normalized handle.
func ValidateHandle(handle string) error {
	if !handleRegex.MatchString(handle) {
		return fmt.Errorf("handle must be 3-30 characters and contain only lowercase letters, numbers, underscores, and dots")
	}

	if strings.HasPrefix(handle, ".") || strings.HasSuffix(handle, ".") {
		return fmt.Errorf("handle cannot start or end with a dot")
	}

	if _, exists := reservedHandles[handle]; exists {
		return fmt.Errorf("handle is reserved")
	}

	return nil
}

const (
	MaxCommentLength  = 10000
	MaxQuestionLength = 500
	MaxOptionLength   = 200
	MinPollOptions    = 2
	MaxPollOptions    = 10
)

// ValidateCommentBody requires a non-blank body of bounded length.
func ValidateCommentBody(body string) error {
	if strings.TrimSpace(body) == "" {
		return fmt.Errorf("comment body is required")
	}
	if utf8.RuneCountInString(body) > MaxCommentLength {
		return fmt.Errorf("comment body must be at most %d characters", MaxCommentLength)
	}
	return nil
}

// ValidatePoll checks the question and option texts of a new poll.
func ValidatePoll(question string, options []string) error {
	if strings.TrimSpace(question) == "" {
		return fmt.Errorf("question is required")
	}
	if utf8.RuneCountInString(question) > MaxQuestionLength {
		return fmt.Errorf("question must be at most %d characters", MaxQuestionLength)
	}
	if len(options) < MinPollOptions || len(options) > MaxPollOptions {
		return fmt.Errorf("a poll needs between %d and %d options", MinPollOptions, MaxPollOptions)
	}
	for i, opt := range options {
		if strings.TrimSpace(opt) == "" {
			return fmt.Errorf("option %d is empty", i)
		}
		if utf8.RuneCountInString(opt) > MaxOptionLength {
			return fmt.Errorf("option %d must be at most %d characters", i, MaxOptionLength)
		}
	}
	return nil
}
