package fixtures

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boardedit/domain/config"
	"boardedit/domain/core/valueobjects"
	"boardedit/infrastructure/persistence/memory"
	pkgerrors "boardedit/pkg/errors"
)

func TestLoadFile_Demo(t *testing.T) {
	board, err := LoadFile(filepath.Join("..", "..", "fixtures", "demo.yaml"), config.DefaultDomainConfig())
	require.NoError(t, err)

	assert.Equal(t, valueobjects.BoardID("7d1c3a52-5a3e-4f0e-9f43-1c9b8f1f2a10"), board.ID())
	assert.Equal(t, "demo", board.Name())
	assert.Len(t, board.Signals(), 2)
	assert.Len(t, board.Vias(), 2)
	assert.Len(t, board.Pads(), 3)
	assert.Len(t, board.Segments(), 2)
	assert.Empty(t, board.GetUncommittedEvents())
	require.NoError(t, board.Validate())

	gnd, ok := board.SignalByName("GND")
	require.True(t, ok)
	var gndSegments int
	for _, seg := range board.Segments() {
		if seg.Signal() == gnd.ID() {
			gndSegments++
			lines := board.LinesOfSegment(seg.ID())
			require.Len(t, lines, 1)
			assert.Equal(t, valueobjects.LengthFromMM(0.5), lines[0].Width())
		}
	}
	assert.Equal(t, 1, gndSegments)

	points := board.PointsAt(valueobjects.PositionFromMM(10, 0), valueobjects.LayerTopCopper)
	require.Len(t, points, 1)
	_, onVia := points[0].Via()
	assert.True(t, onVia)
}

func TestLoad_DefaultLineWidth(t *testing.T) {
	src := `
name: widths
signals: [N1]
segments:
  - signal: N1
    points:
      - {key: a, layer: top_cu, x: 0, y: 0}
      - {key: b, layer: top_cu, x: 1, y: 0}
    lines:
      - {from: a, to: b}
`
	cfg := config.DefaultDomainConfig()
	board, err := Load(strings.NewReader(src), cfg)
	require.NoError(t, err)

	seg := board.Segments()[0]
	lines := board.LinesOfSegment(seg.ID())
	require.Len(t, lines, 1)
	assert.Equal(t, cfg.DefaultLineWidth, lines[0].Width())
}

func TestLoad_Rejects(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{
			name: "unknown field",
			src:  "name: x\ncolour: red\n",
		},
		{
			name: "missing name",
			src:  "signals: [A]\n",
		},
		{
			name: "bad board id",
			src:  "id: nope\nname: x\n",
		},
		{
			name: "unknown signal",
			src:  "name: x\nvias:\n  - {key: v, x: 0, y: 0, size: 0.6, drill: 0.3, signal: GND}\n",
		},
		{
			name: "duplicate via key",
			src:  "name: x\nvias:\n  - {key: v, size: 0.6, drill: 0.3}\n  - {key: v, x: 5, size: 0.6, drill: 0.3}\n",
		},
		{
			name: "unknown pad",
			src:  "name: x\nsignals: [A]\nsegments:\n  - signal: A\n    points:\n      - {key: a, layer: top_cu, pad: p9}\n",
		},
		{
			name: "via and pad",
			src: "name: x\nsignals: [A]\nvias:\n  - {key: v, size: 0.6, drill: 0.3, signal: A}\n" +
				"pads:\n  - {key: p, name: P, size: 1, layers: [top_cu], signal: A}\n" +
				"segments:\n  - signal: A\n    points:\n      - {key: a, layer: top_cu, via: v, pad: p}\n",
		},
		{
			name: "line to unknown point",
			src:  "name: x\nsignals: [A]\nsegments:\n  - signal: A\n    points:\n      - {key: a, layer: top_cu}\n    lines:\n      - {from: a, to: z}\n",
		},
		{
			name: "via at infinity",
			src:  "name: x\nvias:\n  - {key: v, x: .inf, y: 0, size: 0.6, drill: 0.3}\n",
		},
		{
			name: "pad size not a number",
			src:  "name: x\npads:\n  - {key: p, name: P, size: .nan, layers: [top_cu]}\n",
		},
		{
			name: "point beyond the coordinate range",
			src:  "name: x\nsignals: [A]\nsegments:\n  - signal: A\n    points:\n      - {key: a, layer: top_cu, x: 1e9}\n",
		},
		{
			name: "infinite line width",
			src: "name: x\nsignals: [A]\nsegments:\n  - signal: A\n    points:\n      - {key: a, layer: top_cu}\n      - {key: b, layer: top_cu, x: 5}\n" +
				"    lines:\n      - {from: a, to: b, width: -.inf}\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.src), config.DefaultDomainConfig())
			require.Error(t, err)
			assert.True(t, pkgerrors.IsValidation(err), "unexpected error: %v", err)
		})
	}
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.yaml"), []byte("name: second\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yaml"), []byte("name: first\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	repo := memory.NewBoardRepository()
	ids, err := LoadDir(context.Background(), dir, config.DefaultDomainConfig(), repo)
	require.NoError(t, err)
	require.Len(t, ids, 2)

	first, err := repo.GetByID(context.Background(), ids[0])
	require.NoError(t, err)
	assert.Equal(t, "first", first.Name())
}
