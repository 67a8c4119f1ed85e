package commands_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boardedit/application/commands"
	"boardedit/domain/core/valueobjects"
	pkgerrors "boardedit/pkg/errors"
)

func TestCombineSegments(t *testing.T) {
	f := newFixture(t)
	gnd := f.signal("GND")

	kept := f.segment(gnd)
	a := f.point(kept, top, mm(0, 0))
	b := f.point(kept, top, mm(10, 0))
	f.line(kept, a, b, width(1))

	absorbed := f.segment(gnd)
	c := f.point(absorbed, top, mm(10, 0))
	d := f.point(absorbed, top, mm(10, 10))
	e := f.point(absorbed, top, mm(20, 10))
	f.line(absorbed, c, d, width(0.5))
	f.line(absorbed, d, e, width(0.5))
	before := f.board.Snapshot()

	cmd := commands.NewCombineSegments(f.board, absorbed, b)
	changed, err := cmd.Execute()
	require.NoError(t, err)
	assert.True(t, changed)

	assert.False(t, f.board.HasSegment(absorbed))
	assert.Len(t, f.board.Segments(), 1)
	assert.Len(t, f.board.PointsOfSegment(kept), 4)
	lines := f.board.LinesOfSegment(kept)
	require.Len(t, lines, 3)

	var widths []valueobjects.Length
	for _, l := range lines {
		widths = append(widths, l.Width())
	}
	assert.ElementsMatch(t, []valueobjects.Length{width(1), width(0.5), width(0.5)}, widths)
	assert.Len(t, f.board.LinesOfPoint(b), 2, "junction takes over the absorbed end point")
	assert.Len(t, f.board.PointsAt(mm(10, 0), top), 1)
	assert.NoError(t, f.board.Validate())

	after := f.board.Snapshot()
	require.NoError(t, cmd.Undo())
	assert.Equal(t, before, f.board.Snapshot())
	require.NoError(t, cmd.Redo())
	assert.Equal(t, after, f.board.Snapshot())
}

func TestCombineSegments_SplitsLineUnderJunction(t *testing.T) {
	f := newFixture(t)
	gnd := f.signal("GND")

	kept := f.segment(gnd)
	a := f.point(kept, top, mm(0, 0))
	m := f.point(kept, top, mm(5, 0))
	f.line(kept, a, m, width(1))

	absorbed := f.segment(gnd)
	c := f.point(absorbed, top, mm(5, -5))
	d := f.point(absorbed, top, mm(5, 5))
	f.line(absorbed, c, d, width(1))
	before := f.board.Snapshot()

	cmd := commands.NewCombineSegments(f.board, absorbed, m)
	_, err := cmd.Execute()
	require.NoError(t, err)

	assert.False(t, f.board.HasSegment(absorbed))
	assert.Len(t, f.board.PointsOfSegment(kept), 4)
	assert.Len(t, f.board.LinesOfSegment(kept), 3)
	assert.Len(t, f.board.LinesOfPoint(m), 3)
	assert.NoError(t, f.board.Validate())

	require.NoError(t, cmd.Undo())
	assert.Equal(t, before, f.board.Snapshot())
}

func TestCombineSegments_MovesPadAnchorToJunction(t *testing.T) {
	f := newFixture(t)
	gnd := f.signal("GND")
	pad := f.pad("1", mm(10, 0), gnd)

	kept := f.segment(gnd)
	a := f.point(kept, top, mm(0, 0))
	j := f.point(kept, top, mm(10, 0))
	f.line(kept, a, j, width(1))

	absorbed := f.segment(gnd)
	onPad := f.anchored(absorbed, top, valueobjects.PadAnchor(pad.ID()))
	far := f.point(absorbed, top, mm(10, 10))
	f.line(absorbed, onPad, far, width(1))

	_, err := commands.NewCombineSegments(f.board, absorbed, j).Execute()
	require.NoError(t, err)

	point, err := f.board.Point(j)
	require.NoError(t, err)
	padID, ok := point.Pad()
	assert.True(t, ok)
	assert.Equal(t, pad.ID(), padID)
	holder, _ := pad.PointOnLayer(top)
	assert.Equal(t, j, holder)
	assert.NoError(t, f.board.Validate())
}

func TestCombineSegments_Failures(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(f *fixture) (valueobjects.SegmentID, valueobjects.PointID)
		wantErr func(error) bool
	}{
		{
			name: "different signals",
			setup: func(f *fixture) (valueobjects.SegmentID, valueobjects.PointID) {
				kept := f.segment(f.signal("GND"))
				j := f.point(kept, top, mm(0, 0))
				other := f.segment(f.signal("VCC"))
				f.point(other, top, mm(0, 0))
				return other, j
			},
			wantErr: pkgerrors.IsSignalMismatch,
		},
		{
			name: "junction in the removed segment",
			setup: func(f *fixture) (valueobjects.SegmentID, valueobjects.PointID) {
				seg := f.segment(f.signal("GND"))
				return seg, f.point(seg, top, mm(0, 0))
			},
			wantErr: pkgerrors.IsLogic,
		},
		{
			name: "nothing under the junction",
			setup: func(f *fixture) (valueobjects.SegmentID, valueobjects.PointID) {
				gnd := f.signal("GND")
				kept := f.segment(gnd)
				j := f.point(kept, top, mm(0, 0))
				other := f.segment(gnd)
				f.point(other, top, mm(30, 30))
				return other, j
			},
			wantErr: pkgerrors.IsNoTargetFound,
		},
		{
			name: "junction and interception on different anchors",
			setup: func(f *fixture) (valueobjects.SegmentID, valueobjects.PointID) {
				gnd := f.signal("GND")
				via := f.via(mm(10, 0), gnd)
				pad := f.pad("1", mm(10, 0), gnd)
				kept := f.segment(gnd)
				j := f.anchored(kept, top, valueobjects.ViaAnchor(via.ID()))
				absorbed := f.segment(gnd)
				onPad := f.anchored(absorbed, top, valueobjects.PadAnchor(pad.ID()))
				far := f.point(absorbed, top, mm(10, 10))
				f.line(absorbed, onPad, far, width(1))
				return absorbed, j
			},
			wantErr: pkgerrors.IsConflict,
		},
		{
			name: "unknown segment",
			setup: func(f *fixture) (valueobjects.SegmentID, valueobjects.PointID) {
				kept := f.segment(f.signal("GND"))
				return valueobjects.NewSegmentID(), f.point(kept, top, mm(0, 0))
			},
			wantErr: pkgerrors.IsNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			removed, junction := tt.setup(f)
			before := f.board.Snapshot()

			_, err := commands.NewCombineSegments(f.board, removed, junction).Execute()

			assert.True(t, tt.wantErr(err), "unexpected error %v", err)
			assert.Equal(t, before, f.board.Snapshot())
		})
	}
}

func TestCombinePoints(t *testing.T) {
	f := newFixture(t)
	gnd := f.signal("GND")
	seg := f.segment(gnd)
	a := f.point(seg, top, mm(0, 0))
	b := f.point(seg, top, mm(5, 0))
	c := f.point(seg, top, mm(5, 0))
	d := f.point(seg, top, mm(5, 5))
	f.line(seg, a, b, width(1))
	f.line(seg, b, c, width(1))
	f.line(seg, c, d, width(0.3))
	f.line(seg, a, c, width(1))
	before := f.board.Snapshot()

	cmd := commands.NewCombinePoints(f.board, c, b)
	changed, err := cmd.Execute()
	require.NoError(t, err)
	assert.True(t, changed)

	assert.False(t, f.board.HasPoint(c))
	assert.ElementsMatch(t, f.endpoints(seg), []map[valueobjects.PointID]bool{pair(a, b), pair(b, d)})
	assert.NoError(t, f.board.Validate())

	after := f.board.Snapshot()
	require.NoError(t, cmd.Undo())
	assert.Equal(t, before, f.board.Snapshot())
	require.NoError(t, cmd.Redo())
	assert.Equal(t, after, f.board.Snapshot())
}

func TestCombinePoints_CarriesAnchor(t *testing.T) {
	f := newFixture(t)
	gnd := f.signal("GND")
	via := f.via(mm(2, 2), gnd)
	seg := f.segment(gnd)
	onVia := f.anchored(seg, top, valueobjects.ViaAnchor(via.ID()))
	free := f.point(seg, top, mm(2.1, 2))
	far := f.point(seg, top, mm(8, 8))
	f.line(seg, free, far, width(1))

	_, err := commands.NewCombinePoints(f.board, onVia, free).Execute()
	require.NoError(t, err)

	p, err := f.board.Point(free)
	require.NoError(t, err)
	viaID, ok := p.Via()
	assert.True(t, ok)
	assert.Equal(t, via.ID(), viaID)
	assert.Equal(t, via.Position(), p.Position())
	assert.NoError(t, f.board.Validate())
}

func TestCombinePoints_Failures(t *testing.T) {
	f := newFixture(t)
	gnd := f.signal("GND")
	via := f.via(mm(2, 2), gnd)
	pad := f.pad("1", mm(6, 6), gnd)
	seg := f.segment(gnd)
	other := f.segment(gnd)
	onVia := f.anchored(seg, top, valueobjects.ViaAnchor(via.ID()))
	onPad := f.anchored(seg, top, valueobjects.PadAnchor(pad.ID()))
	free := f.point(seg, top, mm(0, 0))
	elsewhere := f.point(other, top, mm(0, 0))

	tests := []struct {
		name      string
		removed   valueobjects.PointID
		resulting valueobjects.PointID
		wantErr   func(error) bool
	}{
		{name: "same point", removed: free, resulting: free, wantErr: pkgerrors.IsLogic},
		{name: "different segments", removed: elsewhere, resulting: free, wantErr: pkgerrors.IsLogic},
		{name: "both attached", removed: onVia, resulting: onPad, wantErr: pkgerrors.IsConflict},
		{name: "unknown point", removed: valueobjects.NewPointID(), resulting: free, wantErr: pkgerrors.IsNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := f.board.Snapshot()
			_, err := commands.NewCombinePoints(f.board, tt.removed, tt.resulting).Execute()
			assert.True(t, tt.wantErr(err), "unexpected error %v", err)
			assert.Equal(t, before, f.board.Snapshot())
		})
	}
}
