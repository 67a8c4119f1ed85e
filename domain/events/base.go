package events

import (
	"time"

	"boardedit/domain/core/valueobjects"
)

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

// Event types
const (
	TypeSegmentAdded         = "board.segment_added"
	TypeSegmentRemoved       = "board.segment_removed"
	TypeSegmentSignalChanged = "board.segment_signal_changed"
	TypePointAdded           = "board.point_added"
	TypePointRemoved         = "board.point_removed"
	TypePointEdited          = "board.point_edited"
	TypeLineAdded            = "board.line_added"
	TypeLineRemoved          = "board.line_removed"
)

func newBase(boardID valueobjects.BoardID, eventType string, version int, ts time.Time) BaseEvent {
	return BaseEvent{
		AggregateID: boardID.String(),
		EventType:   eventType,
		Timestamp:   ts,
		Version:     version,
	}
}

// Segment Events

// SegmentAdded is raised when a net segment enters the board
type SegmentAdded struct {
	BaseEvent
	SegmentID valueobjects.SegmentID `json:"segment_id"`
	SignalID  valueobjects.SignalID  `json:"signal_id,omitempty"`
}

// NewSegmentAdded creates a SegmentAdded event
func NewSegmentAdded(boardID valueobjects.BoardID, version int, segment valueobjects.SegmentID, signal valueobjects.SignalID, ts time.Time) SegmentAdded {
	return SegmentAdded{
		BaseEvent: newBase(boardID, TypeSegmentAdded, version, ts),
		SegmentID: segment,
		SignalID:  signal,
	}
}

// SegmentRemoved is raised when a net segment leaves the board
type SegmentRemoved struct {
	BaseEvent
	SegmentID valueobjects.SegmentID `json:"segment_id"`
}

// NewSegmentRemoved creates a SegmentRemoved event
func NewSegmentRemoved(boardID valueobjects.BoardID, version int, segment valueobjects.SegmentID, ts time.Time) SegmentRemoved {
	return SegmentRemoved{
		BaseEvent: newBase(boardID, TypeSegmentRemoved, version, ts),
		SegmentID: segment,
	}
}

// SegmentSignalChanged is raised when a segment is moved to another net signal
type SegmentSignalChanged struct {
	BaseEvent
	SegmentID valueobjects.SegmentID `json:"segment_id"`
	OldSignal valueobjects.SignalID  `json:"old_signal,omitempty"`
	NewSignal valueobjects.SignalID  `json:"new_signal,omitempty"`
}

// NewSegmentSignalChanged creates a SegmentSignalChanged event
func NewSegmentSignalChanged(boardID valueobjects.BoardID, version int, segment valueobjects.SegmentID, oldSignal, newSignal valueobjects.SignalID, ts time.Time) SegmentSignalChanged {
	return SegmentSignalChanged{
		BaseEvent: newBase(boardID, TypeSegmentSignalChanged, version, ts),
		SegmentID: segment,
		OldSignal: oldSignal,
		NewSignal: newSignal,
	}
}

// Point Events

// PointAdded is raised when a net point is added to a segment
type PointAdded struct {
	BaseEvent
	PointID   valueobjects.PointID   `json:"point_id"`
	SegmentID valueobjects.SegmentID `json:"segment_id"`
	Layer     valueobjects.Layer     `json:"layer"`
	Position  valueobjects.Position  `json:"position"`
}

// NewPointAdded creates a PointAdded event
func NewPointAdded(boardID valueobjects.BoardID, version int, point valueobjects.PointID, segment valueobjects.SegmentID, layer valueobjects.Layer, pos valueobjects.Position, ts time.Time) PointAdded {
	return PointAdded{
		BaseEvent: newBase(boardID, TypePointAdded, version, ts),
		PointID:   point,
		SegmentID: segment,
		Layer:     layer,
		Position:  pos,
	}
}

// PointRemoved is raised when a net point is removed from its segment
type PointRemoved struct {
	BaseEvent
	PointID   valueobjects.PointID   `json:"point_id"`
	SegmentID valueobjects.SegmentID `json:"segment_id"`
}

// NewPointRemoved creates a PointRemoved event
func NewPointRemoved(boardID valueobjects.BoardID, version int, point valueobjects.PointID, segment valueobjects.SegmentID, ts time.Time) PointRemoved {
	return PointRemoved{
		BaseEvent: newBase(boardID, TypePointRemoved, version, ts),
		PointID:   point,
		SegmentID: segment,
	}
}

// PointEdited is raised when a point changes its anchor or position
type PointEdited struct {
	BaseEvent
	PointID     valueobjects.PointID    `json:"point_id"`
	OldAnchor   valueobjects.AnchorKind `json:"old_anchor"`
	NewAnchor   valueobjects.AnchorKind `json:"new_anchor"`
	OldPosition valueobjects.Position   `json:"old_position"`
	NewPosition valueobjects.Position   `json:"new_position"`
}

// NewPointEdited creates a PointEdited event
func NewPointEdited(boardID valueobjects.BoardID, version int, point valueobjects.PointID, oldAnchor, newAnchor valueobjects.AnchorKind, oldPos, newPos valueobjects.Position, ts time.Time) PointEdited {
	return PointEdited{
		BaseEvent:   newBase(boardID, TypePointEdited, version, ts),
		PointID:     point,
		OldAnchor:   oldAnchor,
		NewAnchor:   newAnchor,
		OldPosition: oldPos,
		NewPosition: newPos,
	}
}

// Line Events

// LineAdded is raised when a net line is routed
type LineAdded struct {
	BaseEvent
	LineID    valueobjects.LineID    `json:"line_id"`
	SegmentID valueobjects.SegmentID `json:"segment_id"`
	StartID   valueobjects.PointID   `json:"start_id"`
	EndID     valueobjects.PointID   `json:"end_id"`
	Width     valueobjects.Length    `json:"width"`
}

// NewLineAdded creates a LineAdded event
func NewLineAdded(boardID valueobjects.BoardID, version int, line valueobjects.LineID, segment valueobjects.SegmentID, start, end valueobjects.PointID, width valueobjects.Length, ts time.Time) LineAdded {
	return LineAdded{
		BaseEvent: newBase(boardID, TypeLineAdded, version, ts),
		LineID:    line,
		SegmentID: segment,
		StartID:   start,
		EndID:     end,
		Width:     width,
	}
}

// LineRemoved is raised when a net line is removed
type LineRemoved struct {
	BaseEvent
	LineID    valueobjects.LineID    `json:"line_id"`
	SegmentID valueobjects.SegmentID `json:"segment_id"`
}

// NewLineRemoved creates a LineRemoved event
func NewLineRemoved(boardID valueobjects.BoardID, version int, line valueobjects.LineID, segment valueobjects.SegmentID, ts time.Time) LineRemoved {
	return LineRemoved{
		BaseEvent: newBase(boardID, TypeLineRemoved, version, ts),
		LineID:    line,
		SegmentID: segment,
	}
}
