package notifications

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"pollshare/internal/middleware"
	"pollshare/internal/observability"

	"github.com/gofiber/websocket/v2"
)

const (
	writeTimeout = 10 * time.Second
	idleTimeout  = 60 * time.Second
	// Pings must land before the viewer's idle timeout expires.
	pingInterval = idleTimeout * 9 / 10

	// Viewers only send control frames.
	maxInboundFrame = 1024
	sendBuffer      = 64

	hubLabel = "poll"
)

// Client is one websocket viewer of a poll.
type Client struct {
	Conn   *websocket.Conn
	Send   chan []byte
	PollID uint

	hub       *Hub
	closeOnce sync.Once
}

func newClient(hub *Hub, conn *websocket.Conn, pollID uint) *Client {
	return &Client{
		Conn:   conn,
		Send:   make(chan []byte, sendBuffer),
		PollID: pollID,
		hub:    hub,
	}
}

func (c *Client) closeSend() {
	c.closeOnce.Do(func() { close(c.Send) })
}

// ReadPump keeps the idle deadline fresh on pongs and returns when the viewer
// goes away. Data frames are discarded.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.UnregisterClient(c)
		_ = c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxInboundFrame)
	extend := func() error { return c.Conn.SetReadDeadline(time.Now().Add(idleTimeout)) }
	_ = extend()
	c.Conn.SetPongHandler(func(string) error { return extend() })

	for {
		_, _, err := c.Conn.ReadMessage()
		if err == nil {
			continue
		}
		if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
			middleware.Logger.Debug("viewer disconnected",
				slog.Uint64("poll_id", uint64(c.PollID)),
				slog.String("error", err.Error()),
			)
		}
		return
	}
}

func (c *Client) write(kind int, data []byte) error {
	_ = c.Conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.Conn.WriteMessage(kind, data)
}

// WritePump forwards queued updates and pings the viewer until the send
// channel is closed or a write fails.
func (c *Client) WritePump() {
	ping := time.NewTicker(pingInterval)
	defer func() {
		ping.Stop()
		_ = c.Conn.Close()
	}()

	for {
		var err error
		select {
		case msg, open := <-c.Send:
			if !open {
				_ = c.write(websocket.CloseMessage, nil)
				return
			}
			err = c.write(websocket.TextMessage, msg)
		case <-ping.C:
			err = c.write(websocket.PingMessage, nil)
		}
		if err != nil {
			return
		}
	}
}

// droppedNotice tells a slow viewer to re-fetch the poll.
func droppedNotice(pollID uint) []byte {
	data, _ := json.Marshal(Message{
		Type:    "updates_dropped",
		PollID:  pollID,
		Payload: map[string]string{"reason": "buffer_full"},
		SentAt:  time.Now().UTC(),
	})
	return data
}

// TrySend queues msg without blocking. A full buffer drops it; a closed
// channel means the viewer already left.
func (c *Client) TrySend(msg []byte) {
	defer func() {
		if recover() != nil {
			observability.WebSocketBackpressureDrops.WithLabelValues(hubLabel, "closed").Inc()
		}
	}()

	select {
	case c.Send <- msg:
		return
	default:
	}

	observability.WebSocketBackpressureDrops.WithLabelValues(hubLabel, "full").Inc()
	select {
	case c.Send <- droppedNotice(c.PollID):
	default:
	}
}
