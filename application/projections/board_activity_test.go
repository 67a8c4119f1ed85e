package projections

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"boardedit/domain/core/valueobjects"
	"boardedit/domain/events"
)

type typeCounter map[string]int

func (c typeCounter) RecordEventType(eventType string) { c[eventType]++ }

func TestBoardActivityProjection_Handle(t *testing.T) {
	counter := typeCounter{}
	p := NewBoardActivityProjection(3, counter, zaptest.NewLogger(t))
	board := valueobjects.NewBoardID()
	other := valueobjects.NewBoardID()
	seg := valueobjects.NewSegmentID()
	point := valueobjects.NewPointID()
	now := time.Now()

	evs := []events.DomainEvent{
		events.NewSegmentAdded(board, 1, seg, "", now),
		events.NewPointAdded(board, 2, point, seg, valueobjects.LayerTopCopper, valueobjects.PositionFromMM(1, 1), now),
		events.NewPointRemoved(board, 3, point, seg, now),
		events.NewSegmentRemoved(board, 4, seg, now),
		events.NewSegmentAdded(other, 1, valueobjects.NewSegmentID(), "", now),
	}
	for _, e := range evs {
		require.True(t, p.CanHandle(e.GetEventType()))
		require.NoError(t, p.Handle(context.Background(), e))
	}

	activity := p.Activity(board.String(), 0)
	assert.Equal(t, 4, activity.LastVersion)
	assert.Equal(t, map[string]int{
		events.TypeSegmentAdded:   1,
		events.TypePointAdded:     1,
		events.TypePointRemoved:   1,
		events.TypeSegmentRemoved: 1,
	}, activity.Counts)

	// Only the three newest entries are kept, newest first.
	require.Len(t, activity.Recent, 3)
	assert.Equal(t, []int{4, 3, 2}, []int{activity.Recent[0].Version, activity.Recent[1].Version, activity.Recent[2].Version})
	assert.Equal(t, point.String(), activity.Recent[1].Subject)
	assert.Equal(t, seg.String(), activity.Recent[1].Segment)

	limited := p.Activity(board.String(), 1)
	require.Len(t, limited.Recent, 1)
	assert.Equal(t, 4, limited.Recent[0].Version)

	assert.Equal(t, 2, counter[events.TypeSegmentAdded])
	assert.Len(t, p.Activity(other.String(), 0).Recent, 1)
}

func TestBoardActivityProjection_UnknownBoard(t *testing.T) {
	p := NewBoardActivityProjection(0, nil, nil)
	activity := p.Activity(valueobjects.NewBoardID().String(), 10)
	assert.Empty(t, activity.Recent)
	assert.Empty(t, activity.Counts)
	assert.Zero(t, activity.LastVersion)
	assert.False(t, p.CanHandle("graph.node_created"))
}

func TestBoardActivityProjection_Forget(t *testing.T) {
	p := NewBoardActivityProjection(10, nil, nil)
	board := valueobjects.NewBoardID()
	require.NoError(t, p.Handle(context.Background(), events.NewSegmentAdded(board, 1, valueobjects.NewSegmentID(), "", time.Now())))
	require.Len(t, p.Activity(board.String(), 0).Recent, 1)

	p.Forget(board.String())
	assert.Empty(t, p.Activity(board.String(), 0).Recent)
}
