package entities

import (
	"sort"

	"boardedit/domain/core/valueobjects"
	pkgerrors "boardedit/pkg/errors"
)

// layerSlots tracks the net point attached to an anchor on each layer
type layerSlots map[valueobjects.Layer]valueobjects.PointID

func (s layerSlots) pointOn(layer valueobjects.Layer) (valueobjects.PointID, bool) {
	id, ok := s[layer]
	return id, ok
}

func (s layerSlots) attach(layer valueobjects.Layer, point valueobjects.PointID) error {
	if existing, ok := s[layer]; ok && existing != point {
		return pkgerrors.NewConflictError("anchor already has a net point on layer " + layer.String())
	}
	s[layer] = point
	return nil
}

func (s layerSlots) detach(layer valueobjects.Layer, point valueobjects.PointID) {
	if s[layer] == point {
		delete(s, layer)
	}
}

func (s layerSlots) points() []valueobjects.PointID {
	ids := make([]valueobjects.PointID, 0, len(s))
	for _, id := range s {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Via is a plated hole connecting all copper layers. It holds at most one
// net point per layer.
type Via struct {
	id       valueobjects.ViaID
	position valueobjects.Position
	size     valueobjects.Length
	drill    valueobjects.Length
	signal   valueobjects.SignalID
	slots    layerSlots
}

// NewVia creates a via with a fresh identity
func NewVia(pos valueobjects.Position, size, drill valueobjects.Length, signal valueobjects.SignalID) (*Via, error) {
	return ReconstructVia(valueobjects.NewViaID(), pos, size, drill, signal)
}

// ReconstructVia recreates a via with a known identity
func ReconstructVia(id valueobjects.ViaID, pos valueobjects.Position, size, drill valueobjects.Length, signal valueobjects.SignalID) (*Via, error) {
	if id.IsZero() {
		return nil, pkgerrors.NewValidationError("via id cannot be empty")
	}
	if size <= 0 {
		return nil, pkgerrors.NewValidationError("via size must be positive")
	}
	if drill <= 0 || drill >= size {
		return nil, pkgerrors.NewValidationError("via drill must be positive and smaller than its size")
	}
	return &Via{
		id:       id,
		position: pos,
		size:     size,
		drill:    drill,
		signal:   signal,
		slots:    make(layerSlots),
	}, nil
}

func (v *Via) ID() valueobjects.ViaID          { return v.id }
func (v *Via) Position() valueobjects.Position { return v.position }
func (v *Via) Size() valueobjects.Length       { return v.size }
func (v *Via) Drill() valueobjects.Length      { return v.drill }
func (v *Via) Signal() valueobjects.SignalID   { return v.signal }
func (v *Via) Points() []valueobjects.PointID  { return v.slots.points() }

// Contains reports whether p hits the via's copper ring
func (v *Via) Contains(p valueobjects.Position, tolerance valueobjects.Length) bool {
	return v.position.DistanceTo(p) <= v.size/2+tolerance
}

// PointOnLayer returns the net point attached to the via on a layer
func (v *Via) PointOnLayer(layer valueobjects.Layer) (valueobjects.PointID, bool) {
	return v.slots.pointOn(layer)
}

// AttachPoint registers a net point on a layer of the via
func (v *Via) AttachPoint(layer valueobjects.Layer, point valueobjects.PointID) error {
	return v.slots.attach(layer, point)
}

// DetachPoint releases the layer slot held by point
func (v *Via) DetachPoint(layer valueobjects.Layer, point valueobjects.PointID) {
	v.slots.detach(layer, point)
}
