package valueobjects

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLengthFromMM(t *testing.T) {
	assert.Equal(t, Length(2_000_000), LengthFromMM(2))
	assert.Equal(t, Length(150_000), LengthFromMM(0.15))
	assert.InDelta(t, 0.15, LengthFromMM(0.15).MM(), 1e-12)
}

func TestParseMM(t *testing.T) {
	tests := []struct {
		name    string
		mm      float64
		want    Length
		wantErr bool
	}{
		{name: "plain", mm: 1.5, want: LengthFromMM(1.5)},
		{name: "negative", mm: -20, want: LengthFromMM(-20)},
		{name: "at the bound", mm: MaxCoordinateMM, want: LengthFromMM(MaxCoordinateMM)},
		{name: "beyond the bound", mm: MaxCoordinateMM + 1, wantErr: true},
		{name: "far negative", mm: -1e300, wantErr: true},
		{name: "not a number", mm: math.NaN(), wantErr: true},
		{name: "infinite", mm: math.Inf(1), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMM(tt.mm)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrLengthOutOfRange)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParsePositionMM(1, math.Inf(-1))
	assert.ErrorIs(t, err, ErrLengthOutOfRange)
	pos, err := ParsePositionMM(3, 4)
	require.NoError(t, err)
	assert.Equal(t, PositionFromMM(3, 4), pos)
}

func TestPosition_DistanceToSegment(t *testing.T) {
	a := PositionFromMM(0, 0)
	b := PositionFromMM(10, 0)

	tests := []struct {
		name string
		p    Position
		want Length
	}{
		{name: "on the segment", p: PositionFromMM(5, 0), want: 0},
		{name: "above the middle", p: PositionFromMM(5, 3), want: LengthFromMM(3)},
		{name: "beyond the end", p: PositionFromMM(13, 4), want: LengthFromMM(5)},
		{name: "before the start", p: PositionFromMM(-3, 0), want: LengthFromMM(3)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.p.DistanceToSegment(a, b))
		})
	}
}

func TestPosition_DistanceToSegment_Degenerate(t *testing.T) {
	a := PositionFromMM(1, 1)
	assert.Equal(t, LengthFromMM(5), PositionFromMM(4, 5).DistanceToSegment(a, a))
}

func TestAnchor_Equals(t *testing.T) {
	assert.True(t, FreeAnchor(PositionFromMM(1, 2)).Equals(FreeAnchor(PositionFromMM(1, 2))))
	assert.False(t, FreeAnchor(PositionFromMM(1, 2)).Equals(FreeAnchor(PositionFromMM(2, 2))))
	assert.True(t, ViaAnchor("v1").Equals(ViaAnchor("v1")))
	assert.False(t, ViaAnchor("v1").Equals(PadAnchor("v1")))
	assert.True(t, PadAnchor("p1").IsAttached())
	assert.False(t, FreeAnchor(Position{}).IsAttached())
}
