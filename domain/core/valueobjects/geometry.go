package valueobjects

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Length is a distance in nanometres
type Length int64

const (
	Nanometre  Length = 1
	Micrometre Length = 1000
	Millimetre Length = 1000 * Micrometre
)

// MaxCoordinateMM bounds millimetre values taken from requests and files
const MaxCoordinateMM = 1e6

// ErrLengthOutOfRange reports a millimetre value that is not finite or lies
// beyond MaxCoordinateMM
var ErrLengthOutOfRange = errors.New("length out of range")

// LengthFromMM converts millimetres to a Length, rounding to the nearest
// nanometre. Values from outside go through ParseMM.
func LengthFromMM(mm float64) Length {
	return Length(math.Round(mm * float64(Millimetre)))
}

// ParseMM is LengthFromMM for untrusted input
func ParseMM(mm float64) (Length, error) {
	if math.IsNaN(mm) || math.IsInf(mm, 0) || math.Abs(mm) > MaxCoordinateMM {
		return 0, fmt.Errorf("%w: %v", ErrLengthOutOfRange, mm)
	}
	return LengthFromMM(mm), nil
}

// MM returns the length in millimetres
func (l Length) MM() float64 {
	return float64(l) / float64(Millimetre)
}

func (l Length) String() string {
	return fmt.Sprintf("%gmm", l.MM())
}

// Position is a point on the board plane
type Position struct {
	X Length `json:"x" yaml:"x"`
	Y Length `json:"y" yaml:"y"`
}

// NewPosition creates a position from nanometre coordinates
func NewPosition(x, y Length) Position {
	return Position{X: x, Y: y}
}

// PositionFromMM creates a position from millimetre coordinates
func PositionFromMM(x, y float64) Position {
	return Position{X: LengthFromMM(x), Y: LengthFromMM(y)}
}

// ParsePositionMM is PositionFromMM for untrusted input
func ParsePositionMM(x, y float64) (Position, error) {
	px, err := ParseMM(x)
	if err != nil {
		return Position{}, err
	}
	py, err := ParseMM(y)
	if err != nil {
		return Position{}, err
	}
	return Position{X: px, Y: py}, nil
}

// Equals checks if two positions are identical
func (p Position) Equals(other Position) bool {
	return p.X == other.X && p.Y == other.Y
}

// Midpoint returns the position halfway between p and other
func (p Position) Midpoint(other Position) Position {
	return Position{X: (p.X + other.X) / 2, Y: (p.Y + other.Y) / 2}
}

func (p Position) String() string {
	return fmt.Sprintf("(%g, %g)", p.X.MM(), p.Y.MM())
}

func (p Position) vec() r2.Vec {
	return r2.Vec{X: float64(p.X), Y: float64(p.Y)}
}

// DistanceTo returns the euclidean distance between two positions
func (p Position) DistanceTo(other Position) Length {
	return Length(math.Round(r2.Norm(r2.Sub(p.vec(), other.vec()))))
}

// DistanceToSegment returns the shortest distance from p to the straight
// segment a-b.
func (p Position) DistanceToSegment(a, b Position) Length {
	ab := r2.Sub(b.vec(), a.vec())
	ap := r2.Sub(p.vec(), a.vec())
	lenSq := r2.Dot(ab, ab)
	if lenSq == 0 {
		return p.DistanceTo(a)
	}
	t := r2.Dot(ap, ab) / lenSq
	t = math.Max(0, math.Min(1, t))
	closest := r2.Add(a.vec(), r2.Scale(t, ab))
	return Length(math.Round(r2.Norm(r2.Sub(p.vec(), closest))))
}

// Layer names a copper layer
type Layer string

const (
	LayerTopCopper    Layer = "top_cu"
	LayerBottomCopper Layer = "bot_cu"
)

func (l Layer) String() string { return string(l) }

// IsZero reports whether no layer is set
func (l Layer) IsZero() bool { return l == "" }
