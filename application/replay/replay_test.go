package replay_test

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boardedit/application/replay"
	"boardedit/infrastructure/config"
	"boardedit/infrastructure/di"
	pkgerrors "boardedit/pkg/errors"
)

const demoBoard = "7d1c3a52-5a3e-4f0e-9f43-1c9b8f1f2a10"

func newRunner(t *testing.T, out io.Writer) *replay.Runner {
	t.Helper()
	cfg, err := config.NewLoader(t.TempDir(), config.Production).Load()
	require.NoError(t, err)
	cfg.Logging.Level = "error"
	cfg.FixturesDir = filepath.Join("..", "..", "fixtures")

	c, err := di.InitializeContainer(context.Background(), cfg)
	require.NoError(t, err)
	return replay.NewRunner(c.CommandBus, c.QueryBus, demoBoard, out)
}

func parse(t *testing.T, src string) *replay.Script {
	t.Helper()
	s, err := replay.Parse(strings.NewReader(src))
	require.NoError(t, err)
	return s
}

func TestRunner_Run(t *testing.T) {
	var out bytes.Buffer
	runner := newRunner(t, &out)

	script := parse(t, `
steps:
  - {op: add-free-point, signal: GND, x: 30, y: 30, layer: top_cu, as: first}
  - {op: add-free-point, signal: GND, x: 30, y: 30, layer: top_cu, as: second}
  - {op: combine-segments, from: $second, to: $first}
  - {op: place, x: 30, y: 30, layer: top_cu, as: again}
  - {op: place, x: 20, y: 10, layer: top_cu, expect: UNCONNECTED_ANCHOR}
  - {op: add-free-point, signal: VCC, x: 40, y: 40, layer: top_cu, as: vcc}
  - {op: combine-segments, from: $vcc, to: $first, expect: signal-mismatch}
  - {op: undo}
  - {op: redo}
`)

	report, err := runner.Run(context.Background(), script)
	require.NoError(t, err, out.String())
	require.Len(t, report.Outcomes, 9)

	assert.True(t, report.Outcomes[2].Result.Changed)
	assert.False(t, report.Outcomes[3].Result.Changed)
	assert.Equal(t, report.Outcomes[0].Result.PointID, report.Outcomes[3].Result.PointID)
	assert.True(t, pkgerrors.IsUnconnectedAnchor(report.Outcomes[4].Err))
	assert.True(t, pkgerrors.IsSignalMismatch(report.Outcomes[6].Err))
	assert.True(t, report.Outcomes[8].Result.CanUndo)

	require.NotNil(t, report.Board)
	assert.Len(t, report.Board.Segments, 4)
	assert.Contains(t, out.String(), "combine-segments")
	assert.Contains(t, out.String(), "unchanged")

	var summary bytes.Buffer
	replay.WriteSummary(&summary, report.Board)
	assert.Contains(t, summary.String(), "board demo")
	assert.Contains(t, summary.String(), "signals: GND, VCC")
	assert.Contains(t, summary.String(), "segments: 4")
}

func TestRunner_EditGroups(t *testing.T) {
	tests := []struct {
		name         string
		finish       string
		wantChanged  bool
		wantText     string
		wantSegments int
	}{
		{name: "commit", finish: "commit", wantChanged: true, wantText: "join ground", wantSegments: 4},
		{name: "abort", finish: "abort", wantChanged: true, wantSegments: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			script := parse(t, `
steps:
  - {op: commit, expect: CONFLICT}
  - {op: begin, text: join ground}
  - {op: add-free-point, signal: GND, x: 30, y: 30, layer: top_cu, as: a}
  - {op: add-free-point, signal: GND, x: 30, y: 30, layer: top_cu}
  - {op: combine-all, point: $a}
  - {op: add-free-point, signal: VCC, x: 30, y: 30, layer: top_cu}
  - {op: combine-all, point: $a, expect: SIGNAL_MISMATCH}
  - {op: `+tt.finish+`}
`)
			report, err := newRunner(t, nil).Run(context.Background(), script)
			require.NoError(t, err)
			require.Len(t, report.Outcomes, 8)

			assert.True(t, report.Outcomes[4].Result.Changed)
			assert.True(t, report.Outcomes[4].Result.GroupOpen)
			last := report.Outcomes[7].Result
			assert.Equal(t, tt.wantChanged, last.Changed)
			assert.Equal(t, tt.wantText, last.Text)
			assert.False(t, last.GroupOpen)
			assert.Len(t, report.Board.Segments, tt.wantSegments)
		})
	}
}

func TestRunner_Stops(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantLen int
	}{
		{
			name:    "unexpected failure",
			src:     "steps:\n  - {op: place, x: 20, y: 10, layer: top_cu}\n  - {op: undo}\n",
			wantLen: 1,
		},
		{
			name:    "expected failure did not happen",
			src:     "steps:\n  - {op: add-free-point, signal: GND, x: 1, y: 1, layer: top_cu, expect: LOGIC}\n",
			wantLen: 1,
		},
		{
			name:    "wrong failure",
			src:     "steps:\n  - {op: undo, expect: NOT_FOUND}\n",
			wantLen: 1,
		},
		{
			name:    "coordinate not a number",
			src:     "steps:\n  - {op: place, x: .nan, y: 0, layer: top_cu}\n",
			wantLen: 1,
		},
		{
			name:    "unbound reference",
			src:     "steps:\n  - {op: detach, point: $nowhere}\n",
			wantLen: 1,
		},
		{
			name:    "naming a step without a point",
			src:     "steps:\n  - {op: add-free-point, signal: GND, x: 1, y: 1, layer: top_cu}\n  - {op: undo, as: nothing}\n",
			wantLen: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := newRunner(t, nil).Run(context.Background(), parse(t, tt.src))
			require.Error(t, err)
			assert.Len(t, report.Outcomes, tt.wantLen)
			assert.Nil(t, report.Board)
		})
	}
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{name: "unknown field", src: "steps:\n  - {op: undo, colour: red}\n"},
		{name: "missing op", src: "steps:\n  - {x: 1}\n"},
		{name: "unknown op", src: "steps:\n  - {op: route}\n"},
		{name: "place without layer", src: "steps:\n  - {op: place, x: 1}\n"},
		{name: "combine without junction", src: "steps:\n  - {op: combine-points, from: $a}\n"},
		{name: "edit without signal", src: "steps:\n  - {op: edit-signal, point: $a}\n"},
		{name: "combine all without point", src: "steps:\n  - {op: combine-all}\n"},
		{name: "begin without text", src: "steps:\n  - {op: begin}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := replay.Parse(strings.NewReader(tt.src))
			require.Error(t, err)
			assert.True(t, pkgerrors.IsValidation(err))
		})
	}
}
