// Package events provides the in-process event bus modules use to talk to
// each other without importing one another. It carries no business logic;
// event definitions live with the modules that publish them.
package events

import (
	"context"
	"time"
)

// Event is implemented by every domain event. EventName identifies the event
// type for subscription routing.
type Event interface {
	EventName() string
	OccurredAt() time.Time
}

// BaseEvent carries the fields shared by all events. Embed it and implement
// EventName on the concrete type.
type BaseEvent struct {
	Timestamp time.Time `json:"timestamp"`
}

// NewBaseEvent stamps a base event with the current time.
func NewBaseEvent() BaseEvent {
	return BaseEvent{Timestamp: time.Now()}
}

// OccurredAt returns when the event occurred.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// Handler processes events it subscribed to. A handler subscribed to several
// event names should type-switch on the concrete event.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc adapts a plain function to the Handler interface.
type HandlerFunc func(ctx context.Context, event Event) error

// Handle calls the underlying function.
func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Bus publishes events to subscribed handlers. Publish is fire-and-forget;
// PublishSync runs handlers inline and surfaces the first error, which is what
// queue consumers use so a failed handler triggers task retry.
type Bus interface {
	Publish(ctx context.Context, event Event)
	PublishSync(ctx context.Context, event Event) error
	Subscribe(eventName string, handler Handler)
}
