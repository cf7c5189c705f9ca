package server

import (
	"bytes"
	"errors"
	"strconv"
	"strings"
	"unicode"

	"pollshare/internal/middleware"
	"pollshare/internal/models"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// looseID accepts a positive integer sent either as a JSON number or as a
// string. Bad input is recorded instead of failing the whole body.
type looseID struct {
	value   uint
	present bool
	invalid bool
}

func (l *looseID) UnmarshalJSON(b []byte) error {
	raw := string(bytes.Trim(bytes.TrimSpace(b), `"`))
	if raw == "" || raw == "null" {
		*l = looseID{}
		return nil
	}
	v, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	*l = looseID{value: uint(v), present: true, invalid: err != nil || v == 0}
	return nil
}

// Value returns the id, or 0 when absent or invalid.
func (l looseID) Value() uint {
	if l.invalid {
		return 0
	}
	return l.value
}

// Valid reports whether a usable id was sent.
func (l looseID) Valid() bool {
	return l.present && !l.invalid
}

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+humanizeParam(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// humanizeParam converts a route param name into a human-readable label.
// Examples: "id" -> "ID", "userId" -> "user ID", "commentId" -> "comment ID".
func humanizeParam(param string) string {
	if param == "id" {
		return "ID"
	}
	if strings.HasSuffix(param, "Id") {
		words := splitCamel(param[:len(param)-2])
		return strings.ToLower(strings.Join(words, " ")) + " ID"
	}
	return param
}

// splitCamel splits a camelCase string into words.
func splitCamel(s string) []string {
	var words []string
	start := 0
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			words = append(words, s[start:i])
			start = i
		}
	}
	return append(words, s[start:])
}

// respondError writes err with the status matching its code.
func respondError(c *fiber.Ctx, err error) error {
	return models.RespondWithError(c, models.StatusFor(err), err)
}

func invalidBody(c *fiber.Ctx) error {
	return models.RespondWithError(c, fiber.StatusBadRequest,
		models.NewValidationError("Invalid request body"))
}

// authorizeActor checks that the acting user in a request body belongs to
// the token subject. It is a no-op when auth is disabled.
func (s *Server) authorizeActor(c *fiber.Ctx, actorID uint) error {
	if !s.config.AuthEnabled {
		return nil
	}
	user, err := s.userRepo.GetByUserID(c.UserContext(), middleware.Subject(c))
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			return models.NewForbiddenError("No profile exists for this account")
		}
		return err
	}
	if user.ID != actorID {
		return models.NewForbiddenError("You can only act on your own behalf")
	}
	return nil
}

// authorizeSubject is authorizeActor for routes addressed by external user id.
func (s *Server) authorizeSubject(c *fiber.Ctx, subject string) error {
	if !s.config.AuthEnabled {
		return nil
	}
	if middleware.Subject(c) != subject {
		return models.NewForbiddenError("You can only act on your own behalf")
	}
	return nil
}
