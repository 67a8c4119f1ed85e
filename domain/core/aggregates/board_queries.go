package aggregates

import (
	"boardedit/domain/core/entities"
	"boardedit/domain/core/valueobjects"
)

// SpatialQuery answers "what is at this position". An empty layer matches
// every layer. Results are ordered by id so that callers behave the same on
// every run.
type SpatialQuery interface {
	PointsAt(pos valueobjects.Position, layer valueobjects.Layer) []*entities.NetPoint
	ViasAt(pos valueobjects.Position) []*entities.Via
	PadsAt(pos valueobjects.Position, layer valueobjects.Layer) []*entities.FootprintPad
	LinesAt(pos valueobjects.Position, layer valueobjects.Layer) []*entities.NetLine
	PadNetSignal(pad valueobjects.PadID) (valueobjects.SignalID, bool)
	ViaPointOnLayer(via valueobjects.ViaID, layer valueobjects.Layer) (valueobjects.PointID, bool)
}

var _ SpatialQuery = (*Board)(nil)

// PointsAt returns the net points within the hit tolerance of pos
func (b *Board) PointsAt(pos valueobjects.Position, layer valueobjects.Layer) []*entities.NetPoint {
	var out []*entities.NetPoint
	for _, p := range b.points {
		if !layer.IsZero() && p.Layer() != layer {
			continue
		}
		if p.Position().DistanceTo(pos) <= b.config.HitTolerance {
			out = append(out, p)
		}
	}
	sortPoints(out)
	return out
}

// ViasAt returns the vias whose copper covers pos. Vias span all layers.
func (b *Board) ViasAt(pos valueobjects.Position) []*entities.Via {
	var out []*entities.Via
	for _, v := range b.Vias() {
		if v.Contains(pos, b.config.HitTolerance) {
			out = append(out, v)
		}
	}
	return out
}

// PadsAt returns the pads whose copper covers pos on layer
func (b *Board) PadsAt(pos valueobjects.Position, layer valueobjects.Layer) []*entities.FootprintPad {
	var out []*entities.FootprintPad
	for _, p := range b.Pads() {
		if !layer.IsZero() && !p.OnLayer(layer) {
			continue
		}
		if p.Contains(pos, b.config.HitTolerance) {
			out = append(out, p)
		}
	}
	return out
}

// LinesAt returns the net lines whose trace covers pos on layer
func (b *Board) LinesAt(pos valueobjects.Position, layer valueobjects.Layer) []*entities.NetLine {
	var out []*entities.NetLine
	for _, l := range b.lines {
		start, ok1 := b.points[l.Start()]
		end, ok2 := b.points[l.End()]
		if !ok1 || !ok2 {
			continue
		}
		if !layer.IsZero() && start.Layer() != layer {
			continue
		}
		if pos.DistanceToSegment(start.Position(), end.Position()) <= l.Width()/2+b.config.HitTolerance {
			out = append(out, l)
		}
	}
	sortLines(out)
	return out
}

// PadNetSignal returns the net signal of a pad's component pin
func (b *Board) PadNetSignal(pad valueobjects.PadID) (valueobjects.SignalID, bool) {
	p, ok := b.pads[pad]
	if !ok {
		return "", false
	}
	return p.NetSignal()
}

// ViaPointOnLayer returns the net point attached to a via on layer
func (b *Board) ViaPointOnLayer(via valueobjects.ViaID, layer valueobjects.Layer) (valueobjects.PointID, bool) {
	v, ok := b.vias[via]
	if !ok {
		return "", false
	}
	return v.PointOnLayer(layer)
}
