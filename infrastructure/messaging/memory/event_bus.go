// Package memory provides an in-process event bus for single-instance
// deployments and tests.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"boardedit/application/ports"
	"boardedit/domain/events"
	pkgerrors "boardedit/pkg/errors"
)

// AllEvents subscribes a handler to every event type
const AllEvents = "*"

// EventBus dispatches events synchronously, in publication order, to the
// handlers subscribed to their type. Handler errors are logged and do not
// stop the other handlers.
type EventBus struct {
	handlers map[string][]subscription
	mu       sync.RWMutex
	logger   *zap.Logger
}

type subscription struct {
	id      ports.Subscription
	handler ports.EventHandler
}

var _ ports.EventBus = (*EventBus)(nil)

// NewEventBus creates a new event bus instance
func NewEventBus(logger *zap.Logger) *EventBus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventBus{
		handlers: make(map[string][]subscription),
		logger:   logger,
	}
}

// Subscribe registers a handler for a specific event type
func (eb *EventBus) Subscribe(eventType string, handler ports.EventHandler) (ports.Subscription, error) {
	if handler == nil {
		return "", pkgerrors.NewValidationError("handler cannot be nil")
	}
	eb.mu.Lock()
	defer eb.mu.Unlock()

	id := ports.Subscription(eventType + "/" + uuid.NewString())
	eb.handlers[eventType] = append(eb.handlers[eventType], subscription{id: id, handler: handler})
	eb.logger.Debug("Event handler subscribed",
		zap.String("event_type", eventType),
		zap.Int("total_handlers", len(eb.handlers[eventType])))
	return id, nil
}

// Unsubscribe removes a subscription
func (eb *EventBus) Unsubscribe(sub ports.Subscription) error {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	for eventType, subs := range eb.handlers {
		for i, s := range subs {
			if s.id == sub {
				eb.handlers[eventType] = append(subs[:i:i], subs[i+1:]...)
				return nil
			}
		}
	}
	return pkgerrors.NewNotFoundError("subscription " + string(sub))
}

// Publish sends an event to all registered handlers
func (eb *EventBus) Publish(ctx context.Context, event events.DomainEvent) error {
	eb.mu.RLock()
	subs := append(append([]subscription(nil), eb.handlers[event.GetEventType()]...), eb.handlers[AllEvents]...)
	eb.mu.RUnlock()

	for _, sub := range subs {
		handler := sub.handler
		if !handler.CanHandle(event.GetEventType()) {
			continue
		}
		if err := handler.Handle(ctx, event); err != nil {
			eb.logger.Error("Event handler failed",
				zap.String("event_type", event.GetEventType()),
				zap.String("aggregate_id", event.GetAggregateID()),
				zap.Error(err))
		}
	}
	return nil
}

// PublishBatch publishes events one after another
func (eb *EventBus) PublishBatch(ctx context.Context, evs []events.DomainEvent) error {
	for _, event := range evs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := eb.Publish(ctx, event); err != nil {
			return err
		}
	}
	return nil
}

// GetHandlerCount returns the number of handlers for a given event type
func (eb *EventBus) GetHandlerCount(eventType string) int {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	return len(eb.handlers[eventType])
}

// HandlerFunc adapts a function to an EventHandler for every event type
type HandlerFunc func(ctx context.Context, event events.DomainEvent) error

// Handle calls f
func (f HandlerFunc) Handle(ctx context.Context, event events.DomainEvent) error {
	return f(ctx, event)
}

// CanHandle accepts every event
func (f HandlerFunc) CanHandle(string) bool { return true }
