package entities

import (
	"boardedit/domain/core/valueobjects"
	pkgerrors "boardedit/pkg/errors"
)

// NetPoint is a junction of net lines on one copper layer. It sits either at
// a free position or on a via or footprint pad, and belongs to exactly one
// segment.
type NetPoint struct {
	id       valueobjects.PointID
	segment  valueobjects.SegmentID
	layer    valueobjects.Layer
	position valueobjects.Position
	anchor   valueobjects.Anchor
}

// NewNetPoint creates a point with a fresh identity. For via and pad anchors
// pos must be the anchor's position.
func NewNetPoint(segment valueobjects.SegmentID, layer valueobjects.Layer, anchor valueobjects.Anchor, pos valueobjects.Position) (*NetPoint, error) {
	return ReconstructNetPoint(valueobjects.NewPointID(), segment, layer, anchor, pos)
}

// ReconstructNetPoint recreates a point with a known identity
func ReconstructNetPoint(id valueobjects.PointID, segment valueobjects.SegmentID, layer valueobjects.Layer, anchor valueobjects.Anchor, pos valueobjects.Position) (*NetPoint, error) {
	if id == "" {
		return nil, pkgerrors.NewValidationError("point id cannot be empty")
	}
	if segment == "" {
		return nil, pkgerrors.NewValidationError("point must belong to a segment")
	}
	if layer.IsZero() {
		return nil, pkgerrors.NewValidationError("point must be on a layer")
	}
	switch anchor.Kind {
	case valueobjects.AnchorFree:
		pos = anchor.Position
	case valueobjects.AnchorVia:
		if anchor.Via.IsZero() {
			return nil, pkgerrors.NewValidationError("via anchor without via")
		}
	case valueobjects.AnchorPad:
		if anchor.Pad.IsZero() {
			return nil, pkgerrors.NewValidationError("pad anchor without pad")
		}
	default:
		return nil, pkgerrors.NewValidationError("unknown anchor kind")
	}
	return &NetPoint{
		id:       id,
		segment:  segment,
		layer:    layer,
		position: pos,
		anchor:   anchor,
	}, nil
}

// ID returns the point's unique identifier
func (p *NetPoint) ID() valueobjects.PointID { return p.id }

// Segment returns the owning segment
func (p *NetPoint) Segment() valueobjects.SegmentID { return p.segment }

// Layer returns the copper layer of the point
func (p *NetPoint) Layer() valueobjects.Layer { return p.layer }

// Position returns where the point is
func (p *NetPoint) Position() valueobjects.Position { return p.position }

// Anchor returns what the point is attached to
func (p *NetPoint) Anchor() valueobjects.Anchor { return p.anchor }

// IsAttached reports whether the point sits on a via or a pad
func (p *NetPoint) IsAttached() bool { return p.anchor.IsAttached() }

// Via returns the via the point is attached to, if any
func (p *NetPoint) Via() (valueobjects.ViaID, bool) {
	return p.anchor.Via, p.anchor.Kind == valueobjects.AnchorVia
}

// Pad returns the pad the point is attached to, if any
func (p *NetPoint) Pad() (valueobjects.PadID, bool) {
	return p.anchor.Pad, p.anchor.Kind == valueobjects.AnchorPad
}

// Reanchor moves the point to a new anchor. Only the board calls this.
func (p *NetPoint) Reanchor(anchor valueobjects.Anchor, pos valueobjects.Position) {
	if anchor.Kind == valueobjects.AnchorFree {
		pos = anchor.Position
	}
	p.anchor = anchor
	p.position = pos
}
