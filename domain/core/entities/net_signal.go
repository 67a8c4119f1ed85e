package entities

import (
	"strings"

	"boardedit/domain/core/valueobjects"
	pkgerrors "boardedit/pkg/errors"
)

// NetSignal is the logical identity of an electrical net. Segments refer to
// it by id and never own it.
type NetSignal struct {
	id   valueobjects.SignalID
	name string
}

// NewNetSignal creates a net signal with a fresh identity
func NewNetSignal(name string) (*NetSignal, error) {
	return ReconstructNetSignal(valueobjects.NewSignalID(), name)
}

// ReconstructNetSignal recreates a net signal with a known identity
func ReconstructNetSignal(id valueobjects.SignalID, name string) (*NetSignal, error) {
	name = strings.TrimSpace(name)
	if id == "" {
		return nil, pkgerrors.NewValidationError("signal id cannot be empty")
	}
	if name == "" {
		return nil, pkgerrors.NewValidationError("signal name cannot be empty")
	}
	return &NetSignal{id: id, name: name}, nil
}

// ID returns the signal's unique identifier
func (s *NetSignal) ID() valueobjects.SignalID { return s.id }

// Name returns the signal's name, e.g. "GND"
func (s *NetSignal) Name() string { return s.name }
