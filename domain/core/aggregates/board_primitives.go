package aggregates

import (
	"boardedit/domain/core/entities"
	"boardedit/domain/core/valueobjects"
	"boardedit/domain/events"
	pkgerrors "boardedit/pkg/errors"
)

// Mutation primitives. Commands change the connectivity graph only through
// these methods; each one validates its invariants before touching state, so
// a failed call leaves the board unchanged.

// AddSegment creates an empty segment bound to signal
func (b *Board) AddSegment(signal valueobjects.SignalID) (*entities.NetSegment, error) {
	seg := entities.NewNetSegment(signal)
	if err := b.InsertSegment(seg); err != nil {
		return nil, err
	}
	return seg, nil
}

// InsertSegment adds a segment with its existing identity
func (b *Board) InsertSegment(seg *entities.NetSegment) error {
	if seg == nil {
		return pkgerrors.NewLogicError("segment cannot be nil")
	}
	if _, exists := b.segments[seg.ID()]; exists {
		return pkgerrors.NewLogicError("segment " + seg.ID().String() + " is already on the board")
	}
	if err := b.checkSignalRef(seg.Signal()); err != nil {
		return err
	}

	b.segments[seg.ID()] = seg
	version, ts := b.touch()
	b.addEvent(events.NewSegmentAdded(b.id, version, seg.ID(), seg.Signal(), ts))
	return nil
}

// RemoveSegment retires an empty segment and returns it
func (b *Board) RemoveSegment(id valueobjects.SegmentID) (*entities.NetSegment, error) {
	seg, err := b.Segment(id)
	if err != nil {
		return nil, err
	}
	if len(b.PointsOfSegment(id)) > 0 || len(b.LinesOfSegment(id)) > 0 {
		return nil, pkgerrors.NewConflictError("segment " + id.String() + " still contains points or lines")
	}

	delete(b.segments, id)
	version, ts := b.touch()
	b.addEvent(events.NewSegmentRemoved(b.id, version, id, ts))
	return seg, nil
}

// SetSegmentSignal moves a whole segment to another net signal. Points
// anchored to a via or pad of a different signal block the change.
func (b *Board) SetSegmentSignal(id valueobjects.SegmentID, signal valueobjects.SignalID) error {
	seg, err := b.Segment(id)
	if err != nil {
		return err
	}
	if err := b.checkSignalRef(signal); err != nil {
		return err
	}
	old := seg.Signal()
	if old == signal {
		return nil
	}
	for _, p := range b.PointsOfSegment(id) {
		if !p.IsAttached() {
			continue
		}
		anchorSignal, err := b.AnchorSignal(p.Anchor())
		if err != nil {
			return err
		}
		if anchorSignal != signal {
			return pkgerrors.NewSignalMismatchError("point " + p.ID().String() + " is attached to an item of another net signal")
		}
	}

	seg.AssignSignal(signal)
	version, ts := b.touch()
	b.addEvent(events.NewSegmentSignalChanged(b.id, version, id, old, signal, ts))
	return nil
}

// AddPoint creates a net point in segment at anchor
func (b *Board) AddPoint(segment valueobjects.SegmentID, layer valueobjects.Layer, anchor valueobjects.Anchor) (*entities.NetPoint, error) {
	pos, err := b.AnchorPosition(anchor)
	if err != nil {
		return nil, err
	}
	p, err := entities.NewNetPoint(segment, layer, anchor, pos)
	if err != nil {
		return nil, err
	}
	if err := b.InsertPoint(p); err != nil {
		return nil, err
	}
	return p, nil
}

// InsertPoint adds a net point with its existing identity
func (b *Board) InsertPoint(p *entities.NetPoint) error {
	if p == nil {
		return pkgerrors.NewLogicError("net point cannot be nil")
	}
	if _, exists := b.points[p.ID()]; exists {
		return pkgerrors.NewLogicError("net point " + p.ID().String() + " is already on the board")
	}
	seg, err := b.Segment(p.Segment())
	if err != nil {
		return err
	}
	if !b.config.HasLayer(p.Layer()) {
		return pkgerrors.NewValidationError("unknown layer " + p.Layer().String())
	}
	if b.elementCount() >= b.config.MaxElementsPerBoard {
		return pkgerrors.NewConflictError("maximum number of board elements reached")
	}
	pos, err := b.checkAnchor(p.ID(), p.Layer(), p.Anchor(), seg)
	if err != nil {
		return err
	}

	p.Reanchor(p.Anchor(), pos)
	if err := b.attachSlot(p); err != nil {
		return err
	}
	b.points[p.ID()] = p
	version, ts := b.touch()
	b.addEvent(events.NewPointAdded(b.id, version, p.ID(), p.Segment(), p.Layer(), p.Position(), ts))
	return nil
}

// RemovePoint removes a net point that no line uses anymore
func (b *Board) RemovePoint(id valueobjects.PointID) (*entities.NetPoint, error) {
	p, err := b.Point(id)
	if err != nil {
		return nil, err
	}
	if len(b.LinesOfPoint(id)) > 0 {
		return nil, pkgerrors.NewConflictError("net point " + id.String() + " is still a line endpoint")
	}

	b.detachSlot(p)
	delete(b.points, id)
	version, ts := b.touch()
	b.addEvent(events.NewPointRemoved(b.id, version, id, p.Segment(), ts))
	return p, nil
}

// SetPointAnchor attaches a point to another anchor or moves a free point
func (b *Board) SetPointAnchor(id valueobjects.PointID, anchor valueobjects.Anchor) error {
	p, err := b.Point(id)
	if err != nil {
		return err
	}
	seg, err := b.Segment(p.Segment())
	if err != nil {
		return err
	}
	pos, err := b.checkAnchor(id, p.Layer(), anchor, seg)
	if err != nil {
		return err
	}
	oldAnchor, oldPos := p.Anchor(), p.Position()

	b.detachSlot(p)
	p.Reanchor(anchor, pos)
	if err := b.attachSlot(p); err != nil {
		p.Reanchor(oldAnchor, oldPos)
		_ = b.attachSlot(p)
		return err
	}
	version, ts := b.touch()
	b.addEvent(events.NewPointEdited(b.id, version, id, oldAnchor.Kind, anchor.Kind, oldPos, pos, ts))
	return nil
}

// AddLine routes a line between two points of segment
func (b *Board) AddLine(segment valueobjects.SegmentID, start, end valueobjects.PointID, width valueobjects.Length) (*entities.NetLine, error) {
	l, err := entities.NewNetLine(segment, start, end, width)
	if err != nil {
		return nil, err
	}
	if err := b.InsertLine(l); err != nil {
		return nil, err
	}
	return l, nil
}

// InsertLine adds a net line with its existing identity
func (b *Board) InsertLine(l *entities.NetLine) error {
	if l == nil {
		return pkgerrors.NewLogicError("net line cannot be nil")
	}
	if _, exists := b.lines[l.ID()]; exists {
		return pkgerrors.NewLogicError("net line " + l.ID().String() + " is already on the board")
	}
	if !b.HasSegment(l.Segment()) {
		return pkgerrors.NewNotFoundError("segment " + l.Segment().String())
	}
	start, err := b.Point(l.Start())
	if err != nil {
		return err
	}
	end, err := b.Point(l.End())
	if err != nil {
		return err
	}
	if start.Segment() != l.Segment() || end.Segment() != l.Segment() {
		return pkgerrors.NewLogicError("line endpoints must belong to the line's segment")
	}
	if start.Layer() != end.Layer() {
		return pkgerrors.NewValidationError("line endpoints must be on the same layer")
	}
	if l.Width() < b.config.MinLineWidth {
		return pkgerrors.NewValidationError("line width " + l.Width().String() + " is below the minimum")
	}
	if b.elementCount() >= b.config.MaxElementsPerBoard {
		return pkgerrors.NewConflictError("maximum number of board elements reached")
	}

	b.lines[l.ID()] = l
	version, ts := b.touch()
	b.addEvent(events.NewLineAdded(b.id, version, l.ID(), l.Segment(), l.Start(), l.End(), l.Width(), ts))
	return nil
}

// RemoveLine removes a net line and returns it
func (b *Board) RemoveLine(id valueobjects.LineID) (*entities.NetLine, error) {
	l, err := b.Line(id)
	if err != nil {
		return nil, err
	}

	delete(b.lines, id)
	version, ts := b.touch()
	b.addEvent(events.NewLineRemoved(b.id, version, id, l.Segment(), ts))
	return l, nil
}

// checkAnchor validates that a point may sit on anchor inside seg and
// returns the resulting position.
func (b *Board) checkAnchor(point valueobjects.PointID, layer valueobjects.Layer, anchor valueobjects.Anchor, seg *entities.NetSegment) (valueobjects.Position, error) {
	pos, err := b.AnchorPosition(anchor)
	if err != nil {
		return pos, err
	}
	if !anchor.IsAttached() {
		return pos, nil
	}

	var (
		holder valueobjects.PointID
		taken  bool
	)
	switch anchor.Kind {
	case valueobjects.AnchorVia:
		holder, taken = b.vias[anchor.Via].PointOnLayer(layer)
	case valueobjects.AnchorPad:
		pad := b.pads[anchor.Pad]
		if !pad.OnLayer(layer) {
			return pos, pkgerrors.NewValidationError("pad has no copper on layer " + layer.String())
		}
		holder, taken = pad.PointOnLayer(layer)
	}
	if taken && holder != point {
		return pos, pkgerrors.NewConflictError("anchor already hosts a net point on layer " + layer.String())
	}

	signal, err := b.AnchorSignal(anchor)
	if err != nil {
		return pos, err
	}
	if signal.IsZero() {
		return pos, pkgerrors.NewUnconnectedAnchorError("the " + string(anchor.Kind) + " is not connected to any net signal")
	}
	if signal != seg.Signal() {
		return pos, pkgerrors.NewSignalMismatchError("the " + string(anchor.Kind) + " belongs to another net signal than the segment")
	}
	return pos, nil
}

// AnchorPosition resolves where a point on anchor sits
func (b *Board) AnchorPosition(anchor valueobjects.Anchor) (valueobjects.Position, error) {
	switch anchor.Kind {
	case valueobjects.AnchorVia:
		via, err := b.Via(anchor.Via)
		if err != nil {
			return valueobjects.Position{}, err
		}
		return via.Position(), nil
	case valueobjects.AnchorPad:
		pad, err := b.Pad(anchor.Pad)
		if err != nil {
			return valueobjects.Position{}, err
		}
		return pad.Position(), nil
	default:
		return anchor.Position, nil
	}
}

func (b *Board) attachSlot(p *entities.NetPoint) error {
	if via, ok := p.Via(); ok {
		return b.vias[via].AttachPoint(p.Layer(), p.ID())
	}
	if pad, ok := p.Pad(); ok {
		return b.pads[pad].AttachPoint(p.Layer(), p.ID())
	}
	return nil
}

func (b *Board) detachSlot(p *entities.NetPoint) {
	if via, ok := p.Via(); ok {
		if v, exists := b.vias[via]; exists {
			v.DetachPoint(p.Layer(), p.ID())
		}
	}
	if pad, ok := p.Pad(); ok {
		if fp, exists := b.pads[pad]; exists {
			fp.DetachPoint(p.Layer(), p.ID())
		}
	}
}
