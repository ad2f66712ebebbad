// Package events is the in-process event bus modules use to react to each
// other's writes without importing each other.
package events

import (
	"context"
	"time"
)

// Event is a fact that already happened and was committed.
type Event interface {
	EventName() string
	OccurredAt() time.Time
}

// BaseEvent carries the commit time shared by every event.
type BaseEvent struct {
	Timestamp time.Time `json:"timestamp"`
}

func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// NewBaseEvent stamps the event with the current UTC time.
func NewBaseEvent() BaseEvent {
	return BaseEventAt(time.Now())
}

// BaseEventAt stamps the event with the time the write was recorded, so
// subscribers see the same instant that was persisted.
func BaseEventAt(t time.Time) BaseEvent {
	if t.IsZero() {
		t = time.Now()
	}
	return BaseEvent{Timestamp: t.UTC()}
}

// Handler reacts to one published event. Errors are logged by the bus and
// never reach the publisher.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

type HandlerFunc func(ctx context.Context, event Event) error

func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Bus dispatches events to subscribers keyed by EventName.
type Bus interface {
	// Publish runs handlers in the background; the caller does not wait.
	Publish(ctx context.Context, event Event)
	// PublishSync runs handlers in subscription order and joins their errors.
	PublishSync(ctx context.Context, event Event) error
	Subscribe(eventName string, handler Handler)
}
