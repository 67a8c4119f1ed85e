package valueobjects

import (
	"errors"

	"github.com/google/uuid"
)

// BoardID identifies a board
type BoardID string

// SignalID identifies a net signal
type SignalID string

// SegmentID identifies a net segment
type SegmentID string

// PointID identifies a net point (junction)
type PointID string

// LineID identifies a net line
type LineID string

// ViaID identifies a via
type ViaID string

// PadID identifies a footprint pad
type PadID string

// NewBoardID creates a new random BoardID
func NewBoardID() BoardID { return BoardID(uuid.New().String()) }

// NewSignalID creates a new random SignalID
func NewSignalID() SignalID { return SignalID(uuid.New().String()) }

// NewSegmentID creates a new random SegmentID
func NewSegmentID() SegmentID { return SegmentID(uuid.New().String()) }

// NewPointID creates a new random PointID
func NewPointID() PointID { return PointID(uuid.New().String()) }

// NewLineID creates a new random LineID
func NewLineID() LineID { return LineID(uuid.New().String()) }

// NewViaID creates a new random ViaID
func NewViaID() ViaID { return ViaID(uuid.New().String()) }

// NewPadID creates a new random PadID
func NewPadID() PadID { return PadID(uuid.New().String()) }

func (id BoardID) String() string   { return string(id) }
func (id SignalID) String() string  { return string(id) }
func (id SegmentID) String() string { return string(id) }
func (id PointID) String() string   { return string(id) }
func (id LineID) String() string    { return string(id) }
func (id ViaID) String() string     { return string(id) }
func (id PadID) String() string     { return string(id) }

// IsZero reports whether the signal reference is unset.
// An unset signal means "not connected to any net".
func (id SignalID) IsZero() bool { return id == "" }

func (id ViaID) IsZero() bool { return id == "" }
func (id PadID) IsZero() bool { return id == "" }

// ParseUUID validates an identifier received from outside the process.
func ParseUUID(s string) (string, error) {
	if s == "" {
		return "", errors.New("identifier cannot be empty")
	}
	if _, err := uuid.Parse(s); err != nil {
		return "", errors.New("identifier must be a valid UUID")
	}
	return s, nil
}
