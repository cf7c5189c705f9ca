// Package events publishes activity events to the event stream.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"pollshare/internal/middleware"
	"pollshare/internal/observability"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// Type names an activity event.
type Type string

const (
	VoteCast       Type = "vote_cast"
	CommentCreated Type = "comment_created"
	CommentDeleted Type = "comment_deleted"
	UserFollowed   Type = "user_followed"
	UserUnfollowed Type = "user_unfollowed"
	PostSaved      Type = "post_saved"
	PostUnsaved    Type = "post_unsaved"
)

// Event is one activity record. Key decides partitioning, so all events for
// the same poll or user stay ordered.
type Event struct {
	ID         string    `json:"id"`
	Type       Type      `json:"type"`
	Key        string    `json:"key"`
	ActorID    uint      `json:"actorId"`
	Payload    any       `json:"payload,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// New stamps an event with a fresh id and the current time.
func New(t Type, key string, actorID uint, payload any) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       t,
		Key:        key,
		ActorID:    actorID,
		Payload:    payload,
		OccurredAt: time.Now().UTC(),
	}
}

// PollKey and UserKey build partition keys.
func PollKey(id uint) string { return "poll:" + strconv.FormatUint(uint64(id), 10) }
func UserKey(id uint) string { return "user:" + strconv.FormatUint(uint64(id), 10) }

// Publisher sends events to the stream.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes events as JSON messages keyed by Event.Key.
type KafkaPublisher struct {
	writer  messageWriter
	timeout time.Duration
}

// NewKafkaPublisher returns a publisher writing to topic on brokers.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers:      brokers,
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: int(kafka.RequireOne),
	})
	return &KafkaPublisher{writer: writer, timeout: 2 * time.Second}
}

func (p *KafkaPublisher) Publish(ctx context.Context, ev Event) error {
	value, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.Key),
		Value: value,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(ev.Type)},
		},
	}); err != nil {
		observability.EventsPublished.WithLabelValues(string(ev.Type), "error").Inc()
		return fmt.Errorf("write event: %w", err)
	}

	observability.EventsPublished.WithLabelValues(string(ev.Type), "ok").Inc()
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher drops events. Used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, ev Event) error {
	observability.EventsPublished.WithLabelValues(string(ev.Type), "dropped").Inc()
	middleware.Logger.DebugContext(ctx, "event dropped", slog.String("type", string(ev.Type)), slog.String("key", ev.Key))
	return nil
}

func (NopPublisher) Close() error { return nil }

// NewPublisher picks Kafka when brokers are set.
func NewPublisher(brokers []string, topic string) Publisher {
	if len(brokers) == 0 {
		return NopPublisher{}
	}
	middleware.Logger.Info("Kafka event publisher enabled", slog.String("topic", topic))
	return NewKafkaPublisher(brokers, topic)
}
