package server

import (
	"log/slog"

	"pollshare/internal/featureflags"
	"pollshare/internal/middleware"
	"pollshare/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

const pollIDLocal = "pollID"

// PollStreamUpgrade validates a live-results request before the upgrade.
// @Summary Live poll updates
// @Description Websocket stream of vote_cast, comment_created and comment_deleted messages
// @Tags polls
// @Param id path int true "Poll id"
// @Success 101
// @Failure 404 {object} models.ErrorResponse
// @Failure 426 {object} models.ErrorResponse
// @Router /ws/polls/{id} [get]
func (s *Server) PollStreamUpgrade(c *fiber.Ctx) error {
	userKey := middleware.Subject(c)
	if userKey == "" {
		userKey = c.Query("userId")
	}
	if !s.featureFlags.Enabled(featureflags.LivePolls, userKey) {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Live updates"))
	}

	pollID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if !websocket.IsWebSocketUpgrade(c) {
		return models.RespondWithError(c, fiber.StatusUpgradeRequired,
			models.NewValidationError("Websocket upgrade required"))
	}
	if _, err := s.pollService.GetPoll(c.UserContext(), pollID); err != nil {
		return respondError(c, err)
	}

	c.Locals(pollIDLocal, pollID)
	return c.Next()
}

// PollStreamHandler registers the connection as a viewer of the poll.
func (s *Server) PollStreamHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		pollID, _ := conn.Locals(pollIDLocal).(uint)

		client, err := s.hub.Register(pollID, conn)
		if err != nil {
			middleware.Logger.Warn("websocket viewer rejected",
				slog.Uint64("poll_id", uint64(pollID)),
				slog.String("error", err.Error()),
			)
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseTryAgainLater, err.Error()))
			_ = conn.Close()
			return
		}

		go client.WritePump()
		client.ReadPump()
	})
}
