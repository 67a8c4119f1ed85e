package commands_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"boardedit/domain/config"
	"boardedit/domain/core/aggregates"
	"boardedit/domain/core/entities"
	"boardedit/domain/core/valueobjects"
)

const (
	top    = valueobjects.LayerTopCopper
	bottom = valueobjects.LayerBottomCopper
)

func mm(x, y float64) valueobjects.Position {
	return valueobjects.PositionFromMM(x, y)
}

func width(mm float64) valueobjects.Length {
	return valueobjects.LengthFromMM(mm)
}

// fixture wraps a board with shortcuts for building routing state outside
// of the command layer.
type fixture struct {
	t     *testing.T
	board *aggregates.Board
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	b, err := aggregates.NewBoard("", "test", config.DefaultDomainConfig())
	require.NoError(t, err)
	return &fixture{t: t, board: b}
}

func (f *fixture) signal(name string) valueobjects.SignalID {
	f.t.Helper()
	s, err := entities.NewNetSignal(name)
	require.NoError(f.t, err)
	require.NoError(f.t, f.board.AddSignal(s))
	return s.ID()
}

func (f *fixture) segment(signal valueobjects.SignalID) valueobjects.SegmentID {
	f.t.Helper()
	seg, err := f.board.AddSegment(signal)
	require.NoError(f.t, err)
	return seg.ID()
}

func (f *fixture) point(seg valueobjects.SegmentID, layer valueobjects.Layer, pos valueobjects.Position) valueobjects.PointID {
	f.t.Helper()
	p, err := f.board.AddPoint(seg, layer, valueobjects.FreeAnchor(pos))
	require.NoError(f.t, err)
	return p.ID()
}

func (f *fixture) anchored(seg valueobjects.SegmentID, layer valueobjects.Layer, anchor valueobjects.Anchor) valueobjects.PointID {
	f.t.Helper()
	p, err := f.board.AddPoint(seg, layer, anchor)
	require.NoError(f.t, err)
	return p.ID()
}

func (f *fixture) line(seg valueobjects.SegmentID, start, end valueobjects.PointID, w valueobjects.Length) valueobjects.LineID {
	f.t.Helper()
	l, err := f.board.AddLine(seg, start, end, w)
	require.NoError(f.t, err)
	return l.ID()
}

func (f *fixture) pad(name string, pos valueobjects.Position, signal valueobjects.SignalID) *entities.FootprintPad {
	f.t.Helper()
	pad, err := entities.NewFootprintPad(name, pos, width(1), []valueobjects.Layer{top}, signal)
	require.NoError(f.t, err)
	require.NoError(f.t, f.board.AddPad(pad))
	return pad
}

func (f *fixture) via(pos valueobjects.Position, signal valueobjects.SignalID) *entities.Via {
	f.t.Helper()
	via, err := entities.NewVia(pos, width(0.6), width(0.3), signal)
	require.NoError(f.t, err)
	require.NoError(f.t, f.board.AddVia(via))
	return via
}

// endpoints returns the unordered endpoint set of every line in seg
func (f *fixture) endpoints(seg valueobjects.SegmentID) []map[valueobjects.PointID]bool {
	var out []map[valueobjects.PointID]bool
	for _, l := range f.board.LinesOfSegment(seg) {
		out = append(out, map[valueobjects.PointID]bool{l.Start(): true, l.End(): true})
	}
	return out
}

func pair(a, b valueobjects.PointID) map[valueobjects.PointID]bool {
	return map[valueobjects.PointID]bool{a: true, b: true}
}
