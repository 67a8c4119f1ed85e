// Package messaging combines event publishers
package messaging

import (
	"context"
	"errors"

	"boardedit/application/ports"
	"boardedit/domain/events"
)

// Fanout hands every event to several publishers. All publishers are tried;
// their errors are joined.
type Fanout struct {
	publishers []ports.EventPublisher
}

var _ ports.EventPublisher = (*Fanout)(nil)

// NewFanout creates a fanout over the non-nil publishers
func NewFanout(publishers ...ports.EventPublisher) *Fanout {
	f := &Fanout{}
	for _, p := range publishers {
		if p != nil {
			f.publishers = append(f.publishers, p)
		}
	}
	return f
}

// Publish sends one event to every publisher
func (f *Fanout) Publish(ctx context.Context, event events.DomainEvent) error {
	return f.PublishBatch(ctx, []events.DomainEvent{event})
}

// PublishBatch sends the events to every publisher
func (f *Fanout) PublishBatch(ctx context.Context, evs []events.DomainEvent) error {
	var errs []error
	for _, p := range f.publishers {
		if err := p.PublishBatch(ctx, evs); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// EventMetrics counts events handed to a publisher
type EventMetrics interface {
	RecordEvents(n int, success bool)
}

// Metered counts the events that pass through a publisher
type Metered struct {
	next    ports.EventPublisher
	metrics EventMetrics
}

var _ ports.EventPublisher = (*Metered)(nil)

// NewMetered wraps next. A nil metrics returns next unchanged.
func NewMetered(next ports.EventPublisher, metrics EventMetrics) ports.EventPublisher {
	if metrics == nil {
		return next
	}
	return &Metered{next: next, metrics: metrics}
}

// Publish sends one event
func (m *Metered) Publish(ctx context.Context, event events.DomainEvent) error {
	return m.PublishBatch(ctx, []events.DomainEvent{event})
}

// PublishBatch sends the events and records the outcome
func (m *Metered) PublishBatch(ctx context.Context, evs []events.DomainEvent) error {
	err := m.next.PublishBatch(ctx, evs)
	m.metrics.RecordEvents(len(evs), err == nil)
	return err
}
