// Package fixtures builds boards from YAML descriptions. Fixture files seed
// the API at startup and give the CLI something to replay edits against.
//
// A fixture names its vias, pads and points with local keys; lines refer to
// points by key. Coordinates and sizes are in millimetres.
//
//	name: demo
//	signals: [GND, VCC]
//	vias:
//	  - {key: v1, x: 10, y: 0, size: 0.6, drill: 0.3, signal: GND}
//	pads:
//	  - {key: p1, name: "1", x: 0, y: 0, size: 1, layers: [top_cu], signal: GND}
//	segments:
//	  - signal: GND
//	    points:
//	      - {key: a, layer: top_cu, pad: p1}
//	      - {key: b, layer: top_cu, via: v1}
//	    lines:
//	      - {from: a, to: b, width: 0.25}
package fixtures

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"boardedit/application/ports"
	"boardedit/domain/config"
	"boardedit/domain/core/aggregates"
	"boardedit/domain/core/entities"
	"boardedit/domain/core/valueobjects"
	pkgerrors "boardedit/pkg/errors"
)

// Board is the YAML form of a board
type Board struct {
	ID       string    `yaml:"id"`
	Name     string    `yaml:"name"`
	Signals  []string  `yaml:"signals"`
	Vias     []Via     `yaml:"vias"`
	Pads     []Pad     `yaml:"pads"`
	Segments []Segment `yaml:"segments"`
}

// Via is the YAML form of a via
type Via struct {
	Key    string  `yaml:"key"`
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Size   float64 `yaml:"size"`
	Drill  float64 `yaml:"drill"`
	Signal string  `yaml:"signal"`
}

// Pad is the YAML form of a footprint pad
type Pad struct {
	Key    string   `yaml:"key"`
	Name   string   `yaml:"name"`
	X      float64  `yaml:"x"`
	Y      float64  `yaml:"y"`
	Size   float64  `yaml:"size"`
	Layers []string `yaml:"layers"`
	Signal string   `yaml:"signal"`
}

// Segment is the YAML form of a net segment
type Segment struct {
	Signal string  `yaml:"signal"`
	Points []Point `yaml:"points"`
	Lines  []Line  `yaml:"lines"`
}

// Point is a net point. At most one of Via and Pad is set; without either
// the point is free at X, Y.
type Point struct {
	Key   string  `yaml:"key"`
	Layer string  `yaml:"layer"`
	X     float64 `yaml:"x"`
	Y     float64 `yaml:"y"`
	Via   string  `yaml:"via"`
	Pad   string  `yaml:"pad"`
}

// Line joins two points of the same segment
type Line struct {
	From  string  `yaml:"from"`
	To    string  `yaml:"to"`
	Width float64 `yaml:"width"`
}

// Parse decodes a fixture
func Parse(r io.Reader) (*Board, error) {
	var fb Board
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&fb); err != nil {
		return nil, pkgerrors.NewValidationError("invalid fixture: " + err.Error())
	}
	return &fb, nil
}

// Load builds a board from a fixture
func Load(r io.Reader, cfg *config.DomainConfig) (*aggregates.Board, error) {
	fb, err := Parse(r)
	if err != nil {
		return nil, err
	}
	return fb.Build(cfg)
}

// LoadFile builds a board from a fixture file
func LoadFile(path string, cfg *config.DomainConfig) (*aggregates.Board, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "opening fixture %s", path)
	}
	defer f.Close()

	board, err := Load(f, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return board, nil
}

// LoadDir builds every *.yaml fixture in dir and saves the boards. It
// returns the ids of the saved boards in file name order.
func LoadDir(ctx context.Context, dir string, cfg *config.DomainConfig, repo ports.BoardRepository) ([]valueobjects.BoardID, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, pkgerrors.Wrap(err, "listing fixtures")
	}
	sort.Strings(paths)

	ids := make([]valueobjects.BoardID, 0, len(paths))
	for _, path := range paths {
		board, err := LoadFile(path, cfg)
		if err != nil {
			return nil, err
		}
		if err := repo.Save(ctx, board); err != nil {
			return nil, err
		}
		ids = append(ids, board.ID())
	}
	return ids, nil
}

// Build creates the board the fixture describes. The board comes back
// validated with no pending events.
func (fb *Board) Build(cfg *config.DomainConfig) (*aggregates.Board, error) {
	var id valueobjects.BoardID
	if fb.ID != "" {
		s, err := valueobjects.ParseUUID(fb.ID)
		if err != nil {
			return nil, pkgerrors.NewValidationError("board id: " + err.Error())
		}
		id = valueobjects.BoardID(s)
	}

	board, err := aggregates.NewBoard(id, fb.Name, cfg)
	if err != nil {
		return nil, err
	}

	b := &builder{
		board:   board,
		signals: make(map[string]valueobjects.SignalID),
		vias:    make(map[string]valueobjects.ViaID),
		pads:    make(map[string]valueobjects.PadID),
		points:  make(map[string]valueobjects.PointID),
	}
	steps := []func() error{
		func() error { return b.addSignals(fb.Signals) },
		func() error { return b.addVias(fb.Vias) },
		func() error { return b.addPads(fb.Pads) },
		func() error { return b.addSegments(fb.Segments) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, err
		}
	}

	if err := board.Validate(); err != nil {
		return nil, pkgerrors.NewValidationError("fixture describes an invalid board: " + err.Error())
	}
	board.MarkEventsAsCommitted()
	return board, nil
}

type builder struct {
	board   *aggregates.Board
	signals map[string]valueobjects.SignalID
	vias    map[string]valueobjects.ViaID
	pads    map[string]valueobjects.PadID
	points  map[string]valueobjects.PointID
}

func (b *builder) addSignals(names []string) error {
	for _, name := range names {
		s, err := entities.NewNetSignal(name)
		if err != nil {
			return err
		}
		if err := b.board.AddSignal(s); err != nil {
			return err
		}
		b.signals[name] = s.ID()
	}
	return nil
}

// signal resolves an optional signal name
func (b *builder) signal(name string) (valueobjects.SignalID, error) {
	if name == "" {
		return "", nil
	}
	id, ok := b.signals[name]
	if !ok {
		return "", pkgerrors.NewValidationError(fmt.Sprintf("unknown signal %q", name))
	}
	return id, nil
}

func (b *builder) addVias(vias []Via) error {
	for _, fv := range vias {
		if err := uniqueKey(b.vias, fv.Key, "via"); err != nil {
			return err
		}
		signal, err := b.signal(fv.Signal)
		if err != nil {
			return err
		}
		pos, err := position("via "+fv.Key, fv.X, fv.Y)
		if err != nil {
			return err
		}
		size, err := length("via "+fv.Key+" size", fv.Size)
		if err != nil {
			return err
		}
		drill, err := length("via "+fv.Key+" drill", fv.Drill)
		if err != nil {
			return err
		}
		v, err := entities.NewVia(pos, size, drill, signal)
		if err != nil {
			return err
		}
		if err := b.board.AddVia(v); err != nil {
			return err
		}
		b.vias[fv.Key] = v.ID()
	}
	return nil
}

func (b *builder) addPads(pads []Pad) error {
	for _, fp := range pads {
		if err := uniqueKey(b.pads, fp.Key, "pad"); err != nil {
			return err
		}
		signal, err := b.signal(fp.Signal)
		if err != nil {
			return err
		}
		layers := make([]valueobjects.Layer, 0, len(fp.Layers))
		for _, l := range fp.Layers {
			layers = append(layers, valueobjects.Layer(l))
		}
		pos, err := position("pad "+fp.Key, fp.X, fp.Y)
		if err != nil {
			return err
		}
		size, err := length("pad "+fp.Key+" size", fp.Size)
		if err != nil {
			return err
		}
		p, err := entities.NewFootprintPad(fp.Name, pos, size, layers, signal)
		if err != nil {
			return err
		}
		if err := b.board.AddPad(p); err != nil {
			return err
		}
		b.pads[fp.Key] = p.ID()
	}
	return nil
}

func (b *builder) addSegments(segments []Segment) error {
	for i, fs := range segments {
		signal, err := b.signal(fs.Signal)
		if err != nil {
			return err
		}
		seg, err := b.board.AddSegment(signal)
		if err != nil {
			return err
		}
		for _, fp := range fs.Points {
			if err := b.addPoint(seg.ID(), fp); err != nil {
				return fmt.Errorf("segment %d: %w", i, err)
			}
		}
		for _, fl := range fs.Lines {
			if err := b.addLine(seg.ID(), fl); err != nil {
				return fmt.Errorf("segment %d: %w", i, err)
			}
		}
	}
	return nil
}

func (b *builder) addPoint(seg valueobjects.SegmentID, fp Point) error {
	if err := uniqueKey(b.points, fp.Key, "point"); err != nil {
		return err
	}

	var anchor valueobjects.Anchor
	switch {
	case fp.Via != "" && fp.Pad != "":
		return pkgerrors.NewValidationError(fmt.Sprintf("point %q cannot sit on a via and a pad", fp.Key))
	case fp.Via != "":
		via, ok := b.vias[fp.Via]
		if !ok {
			return pkgerrors.NewValidationError(fmt.Sprintf("point %q: unknown via %q", fp.Key, fp.Via))
		}
		anchor = valueobjects.ViaAnchor(via)
	case fp.Pad != "":
		pad, ok := b.pads[fp.Pad]
		if !ok {
			return pkgerrors.NewValidationError(fmt.Sprintf("point %q: unknown pad %q", fp.Key, fp.Pad))
		}
		anchor = valueobjects.PadAnchor(pad)
	default:
		pos, err := position("point "+fp.Key, fp.X, fp.Y)
		if err != nil {
			return err
		}
		anchor = valueobjects.FreeAnchor(pos)
	}

	p, err := b.board.AddPoint(seg, valueobjects.Layer(fp.Layer), anchor)
	if err != nil {
		return err
	}
	b.points[fp.Key] = p.ID()
	return nil
}

func (b *builder) addLine(seg valueobjects.SegmentID, fl Line) error {
	from, ok := b.points[fl.From]
	if !ok {
		return pkgerrors.NewValidationError(fmt.Sprintf("line: unknown point %q", fl.From))
	}
	to, ok := b.points[fl.To]
	if !ok {
		return pkgerrors.NewValidationError(fmt.Sprintf("line: unknown point %q", fl.To))
	}

	width := b.board.Config().DefaultLineWidth
	if fl.Width != 0 {
		w, err := length("line width", fl.Width)
		if err != nil {
			return err
		}
		width = w
	}
	_, err := b.board.AddLine(seg, from, to, width)
	return err
}

func position(what string, x, y float64) (valueobjects.Position, error) {
	pos, err := valueobjects.ParsePositionMM(x, y)
	if err != nil {
		return pos, pkgerrors.NewValidationError(fmt.Sprintf("%s: %v", what, err))
	}
	return pos, nil
}

func length(what string, mm float64) (valueobjects.Length, error) {
	l, err := valueobjects.ParseMM(mm)
	if err != nil {
		return 0, pkgerrors.NewValidationError(fmt.Sprintf("%s: %v", what, err))
	}
	return l, nil
}

func uniqueKey[V any](seen map[string]V, key, kind string) error {
	if key == "" {
		return pkgerrors.NewValidationError(kind + " key is required")
	}
	if _, dup := seen[key]; dup {
		return pkgerrors.NewValidationError(fmt.Sprintf("duplicate %s key %q", kind, key))
	}
	return nil
}
