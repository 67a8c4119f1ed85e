package valueobjects

// AnchorKind tells what a net point is attached to
type AnchorKind string

const (
	AnchorFree AnchorKind = "free"
	AnchorVia  AnchorKind = "via"
	AnchorPad  AnchorKind = "pad"
)

// Anchor describes where a net point sits: a free position inside its
// segment, a via, or a footprint pad.
type Anchor struct {
	Kind     AnchorKind
	Position Position
	Via      ViaID
	Pad      PadID
}

// FreeAnchor anchors a point at a free position
func FreeAnchor(pos Position) Anchor {
	return Anchor{Kind: AnchorFree, Position: pos}
}

// ViaAnchor anchors a point on a via
func ViaAnchor(via ViaID) Anchor {
	return Anchor{Kind: AnchorVia, Via: via}
}

// PadAnchor anchors a point on a footprint pad
func PadAnchor(pad PadID) Anchor {
	return Anchor{Kind: AnchorPad, Pad: pad}
}

// IsAttached reports whether the anchor is a via or a pad
func (a Anchor) IsAttached() bool {
	return a.Kind == AnchorVia || a.Kind == AnchorPad
}

// Equals compares two anchors. Positions of via and pad anchors are
// resolved by the board and are not part of the comparison.
func (a Anchor) Equals(other Anchor) bool {
	if a.Kind != other.Kind {
		return false
	}
	switch a.Kind {
	case AnchorVia:
		return a.Via == other.Via
	case AnchorPad:
		return a.Pad == other.Pad
	default:
		return a.Position.Equals(other.Position)
	}
}
