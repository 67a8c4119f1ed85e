package entities

import (
	"strings"

	"boardedit/domain/core/valueobjects"
	pkgerrors "boardedit/pkg/errors"
)

// FootprintPad is a component pin on the board. Its net signal comes from
// the component's pin connection and is empty for unconnected pins.
type FootprintPad struct {
	id       valueobjects.PadID
	name     string
	position valueobjects.Position
	size     valueobjects.Length
	layers   []valueobjects.Layer
	signal   valueobjects.SignalID
	slots    layerSlots
}

// NewFootprintPad creates a pad with a fresh identity
func NewFootprintPad(name string, pos valueobjects.Position, size valueobjects.Length, layers []valueobjects.Layer, signal valueobjects.SignalID) (*FootprintPad, error) {
	return ReconstructFootprintPad(valueobjects.NewPadID(), name, pos, size, layers, signal)
}

// ReconstructFootprintPad recreates a pad with a known identity
func ReconstructFootprintPad(id valueobjects.PadID, name string, pos valueobjects.Position, size valueobjects.Length, layers []valueobjects.Layer, signal valueobjects.SignalID) (*FootprintPad, error) {
	if id.IsZero() {
		return nil, pkgerrors.NewValidationError("pad id cannot be empty")
	}
	if size <= 0 {
		return nil, pkgerrors.NewValidationError("pad size must be positive")
	}
	if len(layers) == 0 {
		return nil, pkgerrors.NewValidationError("pad must be on at least one layer")
	}
	ls := make([]valueobjects.Layer, len(layers))
	copy(ls, layers)
	return &FootprintPad{
		id:       id,
		name:     strings.TrimSpace(name),
		position: pos,
		size:     size,
		layers:   ls,
		signal:   signal,
		slots:    make(layerSlots),
	}, nil
}

func (p *FootprintPad) ID() valueobjects.PadID          { return p.id }
func (p *FootprintPad) Name() string                    { return p.name }
func (p *FootprintPad) Position() valueobjects.Position { return p.position }
func (p *FootprintPad) Size() valueobjects.Length       { return p.size }
func (p *FootprintPad) Points() []valueobjects.PointID  { return p.slots.points() }

// NetSignal returns the signal the component pin is connected to, if any
func (p *FootprintPad) NetSignal() (valueobjects.SignalID, bool) {
	return p.signal, !p.signal.IsZero()
}

// Layers returns the copper layers the pad exists on
func (p *FootprintPad) Layers() []valueobjects.Layer {
	ls := make([]valueobjects.Layer, len(p.layers))
	copy(ls, p.layers)
	return ls
}

// OnLayer reports whether the pad has copper on layer
func (p *FootprintPad) OnLayer(layer valueobjects.Layer) bool {
	for _, l := range p.layers {
		if l == layer {
			return true
		}
	}
	return false
}

// Contains reports whether pos hits the pad
func (p *FootprintPad) Contains(pos valueobjects.Position, tolerance valueobjects.Length) bool {
	return p.position.DistanceTo(pos) <= p.size/2+tolerance
}

// PointOnLayer returns the net point attached to the pad on a layer
func (p *FootprintPad) PointOnLayer(layer valueobjects.Layer) (valueobjects.PointID, bool) {
	return p.slots.pointOn(layer)
}

// AttachPoint registers a net point on a layer of the pad
func (p *FootprintPad) AttachPoint(layer valueobjects.Layer, point valueobjects.PointID) error {
	if !p.OnLayer(layer) {
		return pkgerrors.NewValidationError("pad has no copper on layer " + layer.String())
	}
	return p.slots.attach(layer, point)
}

// DetachPoint releases the layer slot held by point
func (p *FootprintPad) DetachPoint(layer valueobjects.Layer, point valueobjects.PointID) {
	p.slots.detach(layer, point)
}
