package ports

import (
	"context"

	"boardedit/domain/core/aggregates"
	"boardedit/domain/core/valueobjects"
	"boardedit/domain/events"
)

// BoardRepository defines the interface for board storage
// This is a port in hexagonal architecture - the domain doesn't know about the implementation
type BoardRepository interface {
	// Save stores a board (create or update)
	Save(ctx context.Context, board *aggregates.Board) error

	// GetByID retrieves a board by its ID
	GetByID(ctx context.Context, id valueobjects.BoardID) (*aggregates.Board, error)

	// List returns the ids of all stored boards
	List(ctx context.Context) ([]valueobjects.BoardID, error)

	// Delete removes a board
	Delete(ctx context.Context, id valueobjects.BoardID) error
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	// Publish sends a single event
	Publish(ctx context.Context, event events.DomainEvent) error

	// PublishBatch sends multiple events
	PublishBatch(ctx context.Context, events []events.DomainEvent) error
}

// EventBus defines the interface for publishing domain events in process
type EventBus interface {
	EventPublisher

	// Subscribe registers a handler for an event type and returns the
	// subscription that Unsubscribe takes
	Subscribe(eventType string, handler EventHandler) (Subscription, error)

	// Unsubscribe removes a subscription
	Unsubscribe(sub Subscription) error
}

// Subscription identifies one registered event handler
type Subscription string

// EventHandler defines the interface for handling domain events
type EventHandler interface {
	// Handle processes an event
	Handle(ctx context.Context, event events.DomainEvent) error

	// CanHandle checks if this handler can process the event
	CanHandle(eventType string) bool
}

// Chooser resolves an ambiguous selection. It receives the ids of all
// candidates of one element kind at the clicked position and returns the
// chosen id, or a user canceled error.
type Chooser interface {
	Choose(kind string, candidates []string) (string, error)
}

// ChooserFunc adapts a function to the Chooser interface
type ChooserFunc func(kind string, candidates []string) (string, error)

// Choose calls f
func (f ChooserFunc) Choose(kind string, candidates []string) (string, error) {
	return f(kind, candidates)
}
