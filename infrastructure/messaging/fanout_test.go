package messaging

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boardedit/domain/core/valueobjects"
	"boardedit/domain/events"
)

type stubPublisher struct {
	batches int
	err     error
}

func (p *stubPublisher) Publish(ctx context.Context, event events.DomainEvent) error {
	return p.PublishBatch(ctx, []events.DomainEvent{event})
}

func (p *stubPublisher) PublishBatch(context.Context, []events.DomainEvent) error {
	p.batches++
	return p.err
}

type countingMetrics struct {
	ok, failed int
}

func (m *countingMetrics) RecordEvents(n int, success bool) {
	if success {
		m.ok += n
	} else {
		m.failed += n
	}
}

func sampleEvents() []events.DomainEvent {
	board := valueobjects.NewBoardID()
	seg := valueobjects.NewSegmentID()
	return []events.DomainEvent{
		events.NewSegmentAdded(board, 1, seg, "", time.Now()),
		events.NewSegmentRemoved(board, 2, seg, time.Now()),
	}
}

func TestFanout_TriesEveryPublisher(t *testing.T) {
	first := &stubPublisher{err: errors.New("bus down")}
	second := &stubPublisher{}
	f := NewFanout(first, nil, second)

	err := f.PublishBatch(context.Background(), sampleEvents())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bus down")
	assert.Equal(t, 1, first.batches)
	assert.Equal(t, 1, second.batches)

	first.err = nil
	assert.NoError(t, f.Publish(context.Background(), sampleEvents()[0]))
}

func TestMetered(t *testing.T) {
	next := &stubPublisher{}
	metrics := &countingMetrics{}
	p := NewMetered(next, metrics)

	require.NoError(t, p.PublishBatch(context.Background(), sampleEvents()))
	next.err = errors.New("rejected")
	require.Error(t, p.Publish(context.Background(), sampleEvents()[0]))

	assert.Equal(t, 2, metrics.ok)
	assert.Equal(t, 1, metrics.failed)

	assert.Same(t, next, NewMetered(next, nil))
}
