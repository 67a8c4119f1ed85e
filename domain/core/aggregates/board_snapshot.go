package aggregates

import (
	"errors"
	"fmt"

	"boardedit/domain/core/valueobjects"
)

// Snapshot is a value copy of the board's routing state. Two snapshots are
// equal exactly when the boards are structurally identical, independent of
// version counters and pending events.
type Snapshot struct {
	Segments map[valueobjects.SegmentID]SegmentState
	Points   map[valueobjects.PointID]PointState
	Lines    map[valueobjects.LineID]LineState
	Slots    map[string]valueobjects.PointID
}

// SegmentState is the value view of a segment
type SegmentState struct {
	Signal valueobjects.SignalID
}

// PointState is the value view of a net point
type PointState struct {
	Segment  valueobjects.SegmentID
	Layer    valueobjects.Layer
	Position valueobjects.Position
	Anchor   valueobjects.Anchor
}

// LineState is the value view of a net line
type LineState struct {
	Segment valueobjects.SegmentID
	Start   valueobjects.PointID
	End     valueobjects.PointID
	Width   valueobjects.Length
}

// Snapshot captures the current routing state
func (b *Board) Snapshot() Snapshot {
	s := Snapshot{
		Segments: make(map[valueobjects.SegmentID]SegmentState, len(b.segments)),
		Points:   make(map[valueobjects.PointID]PointState, len(b.points)),
		Lines:    make(map[valueobjects.LineID]LineState, len(b.lines)),
		Slots:    make(map[string]valueobjects.PointID),
	}
	for id, seg := range b.segments {
		s.Segments[id] = SegmentState{Signal: seg.Signal()}
	}
	for id, p := range b.points {
		s.Points[id] = PointState{
			Segment:  p.Segment(),
			Layer:    p.Layer(),
			Position: p.Position(),
			Anchor:   p.Anchor(),
		}
	}
	for id, l := range b.lines {
		s.Lines[id] = LineState{Segment: l.Segment(), Start: l.Start(), End: l.End(), Width: l.Width()}
	}
	for id, v := range b.vias {
		for _, layer := range b.config.Layers {
			if p, ok := v.PointOnLayer(layer); ok {
				s.Slots[fmt.Sprintf("via/%s/%s", id, layer)] = p
			}
		}
	}
	for id, pad := range b.pads {
		for _, layer := range pad.Layers() {
			if p, ok := pad.PointOnLayer(layer); ok {
				s.Slots[fmt.Sprintf("pad/%s/%s", id, layer)] = p
			}
		}
	}
	return s
}

// Validate ensures board invariants
func (b *Board) Validate() error {
	for id, seg := range b.segments {
		if err := b.checkSignalRef(seg.Signal()); err != nil {
			return fmt.Errorf("segment %s: %w", id, err)
		}
	}

	for id, p := range b.points {
		seg, ok := b.segments[p.Segment()]
		if !ok {
			return fmt.Errorf("net point %s references non-existent segment", id)
		}
		if !p.IsAttached() {
			continue
		}
		var (
			holder valueobjects.PointID
			held   bool
		)
		if via, ok := p.Via(); ok {
			v, exists := b.vias[via]
			if !exists {
				return fmt.Errorf("net point %s references non-existent via", id)
			}
			holder, held = v.PointOnLayer(p.Layer())
			if !p.Position().Equals(v.Position()) {
				return fmt.Errorf("net point %s is not at its via's position", id)
			}
		}
		if pad, ok := p.Pad(); ok {
			fp, exists := b.pads[pad]
			if !exists {
				return fmt.Errorf("net point %s references non-existent pad", id)
			}
			holder, held = fp.PointOnLayer(p.Layer())
			if !p.Position().Equals(fp.Position()) {
				return fmt.Errorf("net point %s is not at its pad's position", id)
			}
		}
		if !held || holder != id {
			return fmt.Errorf("net point %s is not registered on its anchor", id)
		}
		signal, err := b.AnchorSignal(p.Anchor())
		if err != nil {
			return err
		}
		if signal != seg.Signal() {
			return fmt.Errorf("net point %s is anchored to another net signal than its segment", id)
		}
	}

	for id, l := range b.lines {
		if _, ok := b.segments[l.Segment()]; !ok {
			return fmt.Errorf("net line %s references non-existent segment", id)
		}
		start, ok1 := b.points[l.Start()]
		end, ok2 := b.points[l.End()]
		if !ok1 || !ok2 {
			return fmt.Errorf("net line %s references non-existent endpoint", id)
		}
		if start.Segment() != l.Segment() || end.Segment() != l.Segment() {
			return fmt.Errorf("net line %s has an endpoint in another segment", id)
		}
		if start.Layer() != end.Layer() {
			return fmt.Errorf("net line %s spans two layers", id)
		}
	}

	for id, v := range b.vias {
		for _, pid := range v.Points() {
			p, ok := b.points[pid]
			if !ok {
				return fmt.Errorf("via %s holds a removed net point", id)
			}
			if via, attached := p.Via(); !attached || via != id {
				return fmt.Errorf("via %s holds a point that is not anchored to it", id)
			}
		}
	}
	for id, pad := range b.pads {
		for _, pid := range pad.Points() {
			p, ok := b.points[pid]
			if !ok {
				return fmt.Errorf("pad %s holds a removed net point", id)
			}
			if pp, attached := p.Pad(); !attached || pp != id {
				return fmt.Errorf("pad %s holds a point that is not anchored to it", id)
			}
		}
	}

	if b.elementCount() > b.config.MaxElementsPerBoard {
		return errors.New("maximum number of board elements exceeded")
	}
	return nil
}
