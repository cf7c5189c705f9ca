package server

import (
	"pollshare/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type featureFlagsResponse struct {
	Raw       map[string]string `json:"raw"`
	Evaluated map[string]bool   `json:"evaluated"`
}

// GetFeatureFlags handles GET /api/feature-flags
// @Summary Feature flags
// @Description Configured values and their state for the caller. Partial rollouts are evaluated for the token subject, else for ?userId=.
// @Tags flags
// @Produce json
// @Param userId query string false "Rollout key"
// @Success 200 {object} featureFlagsResponse
// @Router /feature-flags [get]
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	userKey := middleware.Subject(c)
	if userKey == "" {
		userKey = c.Query("userId")
	}
	return c.JSON(featureFlagsResponse{
		Raw:       s.featureFlags.Raw(),
		Evaluated: s.featureFlags.Snapshot(userKey),
	})
}
