package entities

import (
	"boardedit/domain/core/valueobjects"
	pkgerrors "boardedit/pkg/errors"
)

// NetLine is a trace between two net points of the same segment
type NetLine struct {
	id      valueobjects.LineID
	segment valueobjects.SegmentID
	start   valueobjects.PointID
	end     valueobjects.PointID
	width   valueobjects.Length
}

// NewNetLine creates a line with a fresh identity
func NewNetLine(segment valueobjects.SegmentID, start, end valueobjects.PointID, width valueobjects.Length) (*NetLine, error) {
	return ReconstructNetLine(valueobjects.NewLineID(), segment, start, end, width)
}

// ReconstructNetLine recreates a line with a known identity
func ReconstructNetLine(id valueobjects.LineID, segment valueobjects.SegmentID, start, end valueobjects.PointID, width valueobjects.Length) (*NetLine, error) {
	if id == "" {
		return nil, pkgerrors.NewValidationError("line id cannot be empty")
	}
	if segment == "" {
		return nil, pkgerrors.NewValidationError("line must belong to a segment")
	}
	if start == "" || end == "" {
		return nil, pkgerrors.NewValidationError("line needs two endpoints")
	}
	if start == end {
		return nil, pkgerrors.NewValidationError("line endpoints must differ")
	}
	if width < 0 {
		return nil, pkgerrors.NewValidationError("line width cannot be negative")
	}
	return &NetLine{id: id, segment: segment, start: start, end: end, width: width}, nil
}

// ID returns the line's unique identifier
func (l *NetLine) ID() valueobjects.LineID { return l.id }

// Segment returns the owning segment
func (l *NetLine) Segment() valueobjects.SegmentID { return l.segment }

// Start returns the first endpoint
func (l *NetLine) Start() valueobjects.PointID { return l.start }

// End returns the second endpoint
func (l *NetLine) End() valueobjects.PointID { return l.end }

// Width returns the trace width
func (l *NetLine) Width() valueobjects.Length { return l.width }

// HasEndpoint reports whether p is one of the line's endpoints
func (l *NetLine) HasEndpoint(p valueobjects.PointID) bool {
	return l.start == p || l.end == p
}

// OtherEnd returns the endpoint opposite to p
func (l *NetLine) OtherEnd(p valueobjects.PointID) valueobjects.PointID {
	if l.start == p {
		return l.end
	}
	return l.start
}
