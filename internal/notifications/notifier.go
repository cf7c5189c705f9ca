// Package notifications delivers live poll updates to websocket viewers.
package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"pollshare/internal/middleware"

	"github.com/redis/go-redis/v9"
)

const pollChannelPrefix = "polls:"

// Message is the JSON frame sent to poll viewers.
type Message struct {
	Type    string    `json:"type"`
	PollID  uint      `json:"pollId"`
	Payload any       `json:"payload,omitempty"`
	SentAt  time.Time `json:"sentAt"`
}

// PollChannel derives the Redis channel name for a poll.
func PollChannel(pollID uint) string {
	return pollChannelPrefix + strconv.FormatUint(uint64(pollID), 10)
}

// parsePollChannel is the inverse of PollChannel.
func parsePollChannel(channel string) (uint, bool) {
	if !strings.HasPrefix(channel, pollChannelPrefix) {
		return 0, false
	}
	id, err := strconv.ParseUint(strings.TrimPrefix(channel, pollChannelPrefix), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// Notifier provides helpers to publish poll updates into Redis channels
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// Enabled reports whether updates travel through Redis.
func (n *Notifier) Enabled() bool {
	return n != nil && n.rdb != nil
}

// PublishPoll sends a payload to every instance watching the poll.
func (n *Notifier) PublishPoll(ctx context.Context, pollID uint, payload []byte) error {
	if !n.Enabled() {
		return nil
	}
	return n.rdb.Publish(ctx, PollChannel(pollID), payload).Err()
}

// StartPatternSubscriber subscribes to `polls:*` and calls onMessage for each
// incoming message until ctx is cancelled.
func (n *Notifier) StartPatternSubscriber(
	ctx context.Context, onMessage func(channel string, payload string),
) error {
	if !n.Enabled() {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, pollChannelPrefix+"*")
	// Wait for the subscription so publishes right after start are not lost.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe poll channels: %w", err)
	}
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							middleware.Logger.Error("panic in poll subscriber",
								slog.Any("panic", r),
								slog.String("stack", string(debug.Stack())),
							)
						}
					}()
					onMessage(msg.Channel, msg.Payload)
				}()
			}
		}
	}()

	return nil
}
