package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"pollshare/internal/middleware"
	"pollshare/internal/observability"

	"github.com/gofiber/websocket/v2"
)

const (
	// Max viewers per poll
	maxConnsPerPoll = 500
	// Max total connections
	maxTotalConns = 10000
)

var (
	ErrServerFull = errors.New("server connection limit reached")
	ErrPollFull   = errors.New("poll connection limit reached")
)

// Hub maps poll ID -> connected viewers.
type Hub struct {
	mu         sync.RWMutex
	conns      map[uint]map[*Client]struct{}
	totalConns int
	notifier   *Notifier
	closed     bool
}

// NewHub creates a hub. With an enabled notifier, updates are fanned out
// through Redis so every instance delivers them; otherwise locally.
func NewHub(notifier *Notifier) *Hub {
	return &Hub{
		conns:    make(map[uint]map[*Client]struct{}),
		notifier: notifier,
	}
}

// Register a connection for a poll. Returns the Client or error if limits exceeded.
func (h *Hub) Register(pollID uint, conn *websocket.Conn) (*Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed || h.totalConns >= maxTotalConns {
		return nil, ErrServerFull
	}

	m, ok := h.conns[pollID]
	if !ok {
		m = make(map[*Client]struct{})
		h.conns[pollID] = m
	}
	if len(m) >= maxConnsPerPoll {
		return nil, ErrPollFull
	}

	client := newClient(h, conn, pollID)
	m[client] = struct{}{}
	h.totalConns++
	observability.WebSocketConnections.Inc()
	return client, nil
}

// UnregisterClient removes the client and closes its send channel.
func (h *Hub) UnregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	m, ok := h.conns[client.PollID]
	if !ok {
		return
	}
	if _, exists := m[client]; !exists {
		return
	}
	delete(m, client)
	h.totalConns--
	observability.WebSocketConnections.Dec()
	client.closeSend()
	if len(m) == 0 {
		delete(h.conns, client.PollID)
	}
}

// Count returns the number of viewers of a poll.
func (h *Hub) Count(pollID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[pollID])
}

// Broadcast sends message to all viewers of pollID on this instance.
func (h *Hub) Broadcast(pollID uint, message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.conns[pollID] {
		c.TrySend(message)
	}
}

// Notify delivers an update to every viewer of the poll, across instances when
// Redis is available. Failures are logged; live updates are best effort.
func (h *Hub) Notify(ctx context.Context, pollID uint, eventType string, payload any) {
	data, err := json.Marshal(Message{
		Type:    eventType,
		PollID:  pollID,
		Payload: payload,
		SentAt:  time.Now().UTC(),
	})
	if err != nil {
		middleware.Logger.ErrorContext(ctx, "marshal poll update", slog.String("error", err.Error()))
		return
	}

	if h.notifier.Enabled() {
		err = h.notifier.PublishPoll(ctx, pollID, data)
		if err == nil {
			return
		}
		middleware.Logger.WarnContext(ctx, "publish poll update failed, delivering locally",
			slog.Uint64("poll_id", uint64(pollID)),
			slog.String("error", err.Error()),
		)
	}
	h.Broadcast(pollID, data)
}

// StartWiring subscribes to poll channels and forwards payloads to local viewers.
func (h *Hub) StartWiring(ctx context.Context) error {
	return h.notifier.StartPatternSubscriber(ctx, func(channel, payload string) {
		pollID, ok := parsePollChannel(channel)
		if !ok {
			middleware.Logger.Warn("invalid poll channel", slog.String("channel", channel))
			return
		}
		h.Broadcast(pollID, []byte(payload))
	})
}

// Shutdown gracefully closes all websocket connections
func (h *Hub) Shutdown(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for pollID, viewers := range h.conns {
		for client := range viewers {
			client.closeSend()
			if client.Conn == nil {
				continue
			}
			if err := client.Conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "Server shutting down")); err != nil {
				middleware.Logger.Debug("failed to write close message", slog.Uint64("poll_id", uint64(pollID)), slog.String("error", err.Error()))
			}
			_ = client.Conn.Close()
			observability.WebSocketConnections.Dec()
		}
	}
	h.conns = make(map[uint]map[*Client]struct{})
	h.totalConns = 0
	return nil
}
