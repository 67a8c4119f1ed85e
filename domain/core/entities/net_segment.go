package entities

import (
	"boardedit/domain/core/valueobjects"
)

// NetSegment owns a connected cluster of net points and net lines. All of
// its elements share the segment's net signal. An empty signal means the
// segment is not connected to any net.
type NetSegment struct {
	id     valueobjects.SegmentID
	signal valueobjects.SignalID
}

// NewNetSegment creates a segment with a fresh identity
func NewNetSegment(signal valueobjects.SignalID) *NetSegment {
	return ReconstructNetSegment(valueobjects.NewSegmentID(), signal)
}

// ReconstructNetSegment recreates a segment with a known identity
func ReconstructNetSegment(id valueobjects.SegmentID, signal valueobjects.SignalID) *NetSegment {
	return &NetSegment{id: id, signal: signal}
}

// ID returns the segment's unique identifier
func (s *NetSegment) ID() valueobjects.SegmentID { return s.id }

// Signal returns the net signal of the segment
func (s *NetSegment) Signal() valueobjects.SignalID { return s.signal }

// AssignSignal changes the segment's net signal. Only the board calls this,
// after checking every anchored point of the segment.
func (s *NetSegment) AssignSignal(signal valueobjects.SignalID) {
	s.signal = signal
}
