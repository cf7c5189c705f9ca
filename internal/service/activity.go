// Package service holds the business rules behind the HTTP handlers.
package service

import (
	"context"
	"log/slog"

	"pollshare/internal/events"
	"pollshare/internal/middleware"
)

// PollNotifier pushes live updates to viewers of a poll.
type PollNotifier interface {
	Notify(ctx context.Context, pollID uint, eventType string, payload any)
}

// Activity fans committed writes out to the event stream and to live poll
// viewers. Delivery is best effort: failures are logged, never returned.
type Activity struct {
	publisher events.Publisher
	notifier  PollNotifier
}

// NewActivity builds an Activity. Either argument may be nil.
func NewActivity(publisher events.Publisher, notifier PollNotifier) *Activity {
	return &Activity{publisher: publisher, notifier: notifier}
}

func (a *Activity) emit(ctx context.Context, ev events.Event) {
	if a == nil || a.publisher == nil {
		return
	}
	if err := a.publisher.Publish(ctx, ev); err != nil {
		middleware.Logger.WarnContext(ctx, "activity event dropped",
			slog.String("type", string(ev.Type)),
			slog.String("key", ev.Key),
			slog.String("error", err.Error()),
		)
	}
}

func (a *Activity) notifyPoll(ctx context.Context, pollID uint, eventType events.Type, payload any) {
	if a == nil || a.notifier == nil {
		return
	}
	a.notifier.Notify(ctx, pollID, string(eventType), payload)
}
