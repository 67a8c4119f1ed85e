package aggregates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boardedit/domain/config"
	"boardedit/domain/core/entities"
	"boardedit/domain/core/valueobjects"
	pkgerrors "boardedit/pkg/errors"
)

const top = valueobjects.LayerTopCopper

func mm(x, y float64) valueobjects.Position {
	return valueobjects.PositionFromMM(x, y)
}

func newTestBoard(t *testing.T) *Board {
	t.Helper()
	b, err := NewBoard("", "test", config.DefaultDomainConfig())
	require.NoError(t, err)
	return b
}

func addSignal(t *testing.T, b *Board, name string) valueobjects.SignalID {
	t.Helper()
	s, err := entities.NewNetSignal(name)
	require.NoError(t, err)
	require.NoError(t, b.AddSignal(s))
	return s.ID()
}

func addPad(t *testing.T, b *Board, pos valueobjects.Position, signal valueobjects.SignalID) *entities.FootprintPad {
	t.Helper()
	pad, err := entities.NewFootprintPad("1", pos, valueobjects.LengthFromMM(1), []valueobjects.Layer{top}, signal)
	require.NoError(t, err)
	require.NoError(t, b.AddPad(pad))
	return pad
}

func addVia(t *testing.T, b *Board, pos valueobjects.Position, signal valueobjects.SignalID) *entities.Via {
	t.Helper()
	via, err := entities.NewVia(pos, valueobjects.LengthFromMM(0.6), valueobjects.LengthFromMM(0.3), signal)
	require.NoError(t, err)
	require.NoError(t, b.AddVia(via))
	return via
}

func TestNewBoard(t *testing.T) {
	tests := []struct {
		name    string
		bName   string
		cfg     *config.DomainConfig
		wantErr bool
	}{
		{name: "valid board", bName: "main", cfg: config.DefaultDomainConfig()},
		{name: "nil config uses defaults", bName: "main"},
		{name: "empty name", bName: "  ", wantErr: true},
		{name: "invalid config", bName: "main", cfg: &config.DomainConfig{}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := NewBoard("", tt.bName, tt.cfg)
			if tt.wantErr {
				assert.True(t, pkgerrors.IsValidation(err))
				assert.Nil(t, b)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, b.ID())
			assert.Equal(t, 1, b.Version())
			assert.Empty(t, b.Segments())
			assert.NoError(t, b.Validate())
		})
	}
}

func TestBoard_ApplyConfig(t *testing.T) {
	b := newTestBoard(t)
	gnd := addSignal(t, b, "GND")
	seg, err := b.AddSegment(gnd)
	require.NoError(t, err)
	_, err = b.AddPoint(seg.ID(), top, valueobjects.FreeAnchor(mm(0, 0)))
	require.NoError(t, err)

	wider := config.DefaultDomainConfig()
	wider.HitTolerance = valueobjects.LengthFromMM(2)
	require.NoError(t, b.ApplyConfig(wider))
	assert.Same(t, wider, b.Config())
	assert.Len(t, b.PointsAt(mm(1, 1), top), 1)

	bottomOnly := config.DefaultDomainConfig()
	bottomOnly.Layers = []valueobjects.Layer{valueobjects.LayerBottomCopper}
	assert.True(t, pkgerrors.IsValidation(b.ApplyConfig(bottomOnly)))
	assert.True(t, pkgerrors.IsValidation(b.ApplyConfig(&config.DomainConfig{})))
	assert.True(t, pkgerrors.IsValidation(b.ApplyConfig(nil)))
	assert.Same(t, wider, b.Config())
}

func TestBoard_AddSignal_DuplicateName(t *testing.T) {
	b := newTestBoard(t)
	addSignal(t, b, "GND")

	dup, err := entities.NewNetSignal("GND")
	require.NoError(t, err)
	assert.True(t, pkgerrors.IsConflict(b.AddSignal(dup)))
}

func TestBoard_AddPointAndLine(t *testing.T) {
	b := newTestBoard(t)
	gnd := addSignal(t, b, "GND")

	seg, err := b.AddSegment(gnd)
	require.NoError(t, err)

	a, err := b.AddPoint(seg.ID(), top, valueobjects.FreeAnchor(mm(0, 0)))
	require.NoError(t, err)
	c, err := b.AddPoint(seg.ID(), top, valueobjects.FreeAnchor(mm(10, 0)))
	require.NoError(t, err)

	line, err := b.AddLine(seg.ID(), a.ID(), c.ID(), valueobjects.LengthFromMM(2))
	require.NoError(t, err)

	assert.Len(t, b.PointsOfSegment(seg.ID()), 2)
	assert.Equal(t, []*entities.NetLine{line}, b.LinesOfSegment(seg.ID()))
	assert.Equal(t, top, b.LineLayer(line))
	assert.NoError(t, b.Validate())
	assert.Len(t, b.GetUncommittedEvents(), 4)

	b.MarkEventsAsCommitted()
	assert.Empty(t, b.GetUncommittedEvents())
}

func TestBoard_AddLine_Invariants(t *testing.T) {
	b := newTestBoard(t)
	gnd := addSignal(t, b, "GND")
	seg1, _ := b.AddSegment(gnd)
	seg2, _ := b.AddSegment(gnd)

	a, _ := b.AddPoint(seg1.ID(), top, valueobjects.FreeAnchor(mm(0, 0)))
	c, _ := b.AddPoint(seg1.ID(), top, valueobjects.FreeAnchor(mm(5, 0)))
	other, _ := b.AddPoint(seg2.ID(), top, valueobjects.FreeAnchor(mm(9, 0)))
	bottom, _ := b.AddPoint(seg1.ID(), valueobjects.LayerBottomCopper, valueobjects.FreeAnchor(mm(1, 1)))

	tests := []struct {
		name  string
		start valueobjects.PointID
		end   valueobjects.PointID
		width valueobjects.Length
		check func(error) bool
	}{
		{name: "endpoint in another segment", start: a.ID(), end: other.ID(), width: 1, check: pkgerrors.IsLogic},
		{name: "endpoints on different layers", start: a.ID(), end: bottom.ID(), width: 1, check: pkgerrors.IsValidation},
		{name: "same endpoint twice", start: a.ID(), end: a.ID(), width: 1, check: pkgerrors.IsValidation},
		{name: "negative width", start: a.ID(), end: c.ID(), width: -1, check: pkgerrors.IsValidation},
		{name: "unknown endpoint", start: a.ID(), end: "missing", width: 1, check: pkgerrors.IsNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := b.Snapshot()
			_, err := b.AddLine(seg1.ID(), tt.start, tt.end, tt.width)
			require.Error(t, err)
			assert.True(t, tt.check(err), err.Error())
			assert.Equal(t, before, b.Snapshot())
		})
	}
}

func TestBoard_AddPoint_Anchors(t *testing.T) {
	b := newTestBoard(t)
	gnd := addSignal(t, b, "GND")
	vcc := addSignal(t, b, "VCC")
	gndPad := addPad(t, b, mm(0, 0), gnd)
	freePad := addPad(t, b, mm(5, 0), "")
	via := addVia(t, b, mm(10, 0), gnd)

	seg, _ := b.AddSegment(gnd)
	vccSeg, _ := b.AddSegment(vcc)

	p, err := b.AddPoint(seg.ID(), top, valueobjects.PadAnchor(gndPad.ID()))
	require.NoError(t, err)
	assert.Equal(t, gndPad.Position(), p.Position())
	holder, ok := gndPad.PointOnLayer(top)
	assert.True(t, ok)
	assert.Equal(t, p.ID(), holder)

	_, err = b.AddPoint(seg.ID(), top, valueobjects.PadAnchor(gndPad.ID()))
	assert.True(t, pkgerrors.IsConflict(err), "pad slot already taken")

	_, err = b.AddPoint(seg.ID(), top, valueobjects.PadAnchor(freePad.ID()))
	assert.True(t, pkgerrors.IsUnconnectedAnchor(err))

	_, err = b.AddPoint(vccSeg.ID(), top, valueobjects.ViaAnchor(via.ID()))
	assert.True(t, pkgerrors.IsSignalMismatch(err))

	vp, err := b.AddPoint(seg.ID(), valueobjects.LayerBottomCopper, valueobjects.ViaAnchor(via.ID()))
	require.NoError(t, err)
	got, ok := b.ViaPointOnLayer(via.ID(), valueobjects.LayerBottomCopper)
	assert.True(t, ok)
	assert.Equal(t, vp.ID(), got)

	assert.NoError(t, b.Validate())
}

func TestBoard_RemoveWithDependents(t *testing.T) {
	b := newTestBoard(t)
	gnd := addSignal(t, b, "GND")
	pad := addPad(t, b, mm(0, 0), gnd)
	seg, _ := b.AddSegment(gnd)
	a, _ := b.AddPoint(seg.ID(), top, valueobjects.PadAnchor(pad.ID()))
	c, _ := b.AddPoint(seg.ID(), top, valueobjects.FreeAnchor(mm(4, 0)))
	line, _ := b.AddLine(seg.ID(), a.ID(), c.ID(), 100)

	_, err := b.RemovePoint(a.ID())
	assert.True(t, pkgerrors.IsConflict(err))
	_, err = b.RemoveSegment(seg.ID())
	assert.True(t, pkgerrors.IsConflict(err))

	removed, err := b.RemoveLine(line.ID())
	require.NoError(t, err)
	assert.Same(t, line, removed)

	_, err = b.RemovePoint(a.ID())
	require.NoError(t, err)
	_, ok := pad.PointOnLayer(top)
	assert.False(t, ok, "pad slot released")

	_, err = b.RemovePoint(c.ID())
	require.NoError(t, err)
	_, err = b.RemoveSegment(seg.ID())
	require.NoError(t, err)
	assert.False(t, b.HasSegment(seg.ID()))

	// Re-inserting the same identities restores the board.
	require.NoError(t, b.InsertSegment(seg))
	require.NoError(t, b.InsertPoint(a))
	assert.True(t, pkgerrors.IsLogic(b.InsertPoint(a)))
	assert.NoError(t, b.Validate())
}

func TestBoard_SetSegmentSignal(t *testing.T) {
	b := newTestBoard(t)
	gnd := addSignal(t, b, "GND")
	vcc := addSignal(t, b, "VCC")

	free, _ := b.AddSegment(gnd)
	_, _ = b.AddPoint(free.ID(), top, valueobjects.FreeAnchor(mm(0, 0)))
	require.NoError(t, b.SetSegmentSignal(free.ID(), vcc))
	assert.Equal(t, vcc, free.Signal())

	pad := addPad(t, b, mm(3, 3), gnd)
	anchored, _ := b.AddSegment(gnd)
	_, err := b.AddPoint(anchored.ID(), top, valueobjects.PadAnchor(pad.ID()))
	require.NoError(t, err)

	before := b.Snapshot()
	err = b.SetSegmentSignal(anchored.ID(), vcc)
	assert.True(t, pkgerrors.IsSignalMismatch(err))
	assert.Equal(t, before, b.Snapshot())

	assert.True(t, pkgerrors.IsNotFound(b.SetSegmentSignal(anchored.ID(), "missing")))
}

func TestBoard_SetPointAnchor(t *testing.T) {
	b := newTestBoard(t)
	gnd := addSignal(t, b, "GND")
	via := addVia(t, b, mm(2, 2), gnd)
	seg, _ := b.AddSegment(gnd)
	p, _ := b.AddPoint(seg.ID(), top, valueobjects.FreeAnchor(mm(0, 0)))

	require.NoError(t, b.SetPointAnchor(p.ID(), valueobjects.ViaAnchor(via.ID())))
	assert.Equal(t, via.Position(), p.Position())
	require.NoError(t, b.Validate())

	require.NoError(t, b.SetPointAnchor(p.ID(), valueobjects.FreeAnchor(mm(7, 7))))
	assert.Equal(t, mm(7, 7), p.Position())
	_, ok := via.PointOnLayer(top)
	assert.False(t, ok)
	assert.NoError(t, b.Validate())
}

func TestBoard_SpatialQueries(t *testing.T) {
	b := newTestBoard(t)
	gnd := addSignal(t, b, "GND")
	pad := addPad(t, b, mm(20, 0), gnd)
	via := addVia(t, b, mm(30, 0), gnd)
	seg, _ := b.AddSegment(gnd)
	a, _ := b.AddPoint(seg.ID(), top, valueobjects.FreeAnchor(mm(0, 0)))
	c, _ := b.AddPoint(seg.ID(), top, valueobjects.FreeAnchor(mm(10, 0)))
	line, _ := b.AddLine(seg.ID(), a.ID(), c.ID(), valueobjects.LengthFromMM(2))

	tests := []struct {
		name   string
		pos    valueobjects.Position
		layer  valueobjects.Layer
		points int
		lines  int
		pads   int
		vias   int
	}{
		{name: "on a point", pos: mm(0, 0), layer: top, points: 1, lines: 1},
		{name: "mid line", pos: mm(5, 0), layer: top, lines: 1},
		{name: "inside line width", pos: mm(5, 0.9), layer: top, lines: 1},
		{name: "outside line width", pos: mm(5, 1.5), layer: top},
		{name: "other layer", pos: mm(5, 0), layer: valueobjects.LayerBottomCopper},
		{name: "any layer", pos: mm(5, 0), lines: 1},
		{name: "on pad", pos: mm(20.2, 0), layer: top, pads: 1},
		{name: "pad not on bottom", pos: mm(20, 0), layer: valueobjects.LayerBottomCopper},
		{name: "on via", pos: mm(30.1, 0), layer: top, vias: 1},
		{name: "empty", pos: mm(50, 50), layer: top},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, b.PointsAt(tt.pos, tt.layer), tt.points)
			assert.Len(t, b.LinesAt(tt.pos, tt.layer), tt.lines)
			assert.Len(t, b.PadsAt(tt.pos, tt.layer), tt.pads)
			assert.Len(t, b.ViasAt(tt.pos), tt.vias)
		})
	}

	assert.Equal(t, line.ID(), b.LinesAt(mm(5, 0), top)[0].ID())
	signal, ok := b.PadNetSignal(pad.ID())
	assert.True(t, ok)
	assert.Equal(t, gnd, signal)
	_, ok = b.ViaPointOnLayer(via.ID(), top)
	assert.False(t, ok)
}
