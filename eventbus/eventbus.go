// Package eventbus publishes lifecycle events (post published/deleted,
// comment created) for downstream consumers such as feeds or notifiers.
// Publishing is fire-and-forget from the caller's perspective: the API never
// fails a request because an event could not be delivered.
package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Topic wraps a base topic name.
type Topic struct {
	base string
}

func NewTopic(base string) Topic {
	return Topic{base: base}
}

func (t Topic) Base() string {
	return t.base
}

// Topics used by the API service.
var (
	TopicPostEvents    = NewTopic("inkpress.post.events")
	TopicCommentEvents = NewTopic("inkpress.comment.events")
)

// Event is the payload envelope written to Kafka.
type Event struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Payload    json.RawMessage `json:"payload"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// NewJSONEvent encodes payload as JSON and wraps it in an Event. An empty id
// gets a high-resolution timestamp based one.
func NewJSONEvent(id, eventType string, payload any) (Event, error) {
	if id == "" {
		id = fmt.Sprintf("%d", time.Now().UnixNano())
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("payload marshal failed: %w", err)
	}
	return Event{
		ID:         id,
		Type:       eventType,
		Payload:    b,
		OccurredAt: time.Now(),
	}, nil
}

// Bus abstracts event publication.
type Bus interface {
	Publish(ctx context.Context, topic string, event Event) error
	Close()
}

// Noop is used when no brokers are configured; events are silently dropped.
type Noop struct{}

func (Noop) Publish(ctx context.Context, topic string, event Event) error { return nil }
func (Noop) Close()                                                       {}
