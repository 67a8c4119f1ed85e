package aggregates

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"boardedit/domain/config"
	"boardedit/domain/core/entities"
	"boardedit/domain/core/valueobjects"
	"boardedit/domain/events"
	pkgerrors "boardedit/pkg/errors"
)

// Board is the aggregate root of the connectivity graph.
// It owns every signal, segment, point, line, via and pad, indexed by their
// stable identifiers, and enforces the routing invariants on each mutation.
type Board struct {
	id        valueobjects.BoardID
	name      string
	config    *config.DomainConfig
	signals   map[valueobjects.SignalID]*entities.NetSignal
	segments  map[valueobjects.SegmentID]*entities.NetSegment
	points    map[valueobjects.PointID]*entities.NetPoint
	lines     map[valueobjects.LineID]*entities.NetLine
	vias      map[valueobjects.ViaID]*entities.Via
	pads      map[valueobjects.PadID]*entities.FootprintPad
	createdAt time.Time
	updatedAt time.Time
	version   int
	events    []events.DomainEvent
}

// NewBoard creates an empty board. An empty id generates a fresh one.
func NewBoard(id valueobjects.BoardID, name string, cfg *config.DomainConfig) (*Board, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkgerrors.NewValidationError("board name required")
	}
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}
	if id == "" {
		id = valueobjects.NewBoardID()
	}

	now := time.Now()
	return &Board{
		id:        id,
		name:      name,
		config:    cfg,
		signals:   make(map[valueobjects.SignalID]*entities.NetSignal),
		segments:  make(map[valueobjects.SegmentID]*entities.NetSegment),
		points:    make(map[valueobjects.PointID]*entities.NetPoint),
		lines:     make(map[valueobjects.LineID]*entities.NetLine),
		vias:      make(map[valueobjects.ViaID]*entities.Via),
		pads:      make(map[valueobjects.PadID]*entities.FootprintPad),
		createdAt: now,
		updatedAt: now,
		version:   1,
		events:    []events.DomainEvent{},
	}, nil
}

// ID returns the board's unique identifier
func (b *Board) ID() valueobjects.BoardID {
	return b.id
}

// Name returns the board's name
func (b *Board) Name() string {
	return b.name
}

// Config returns the editing rules of the board
func (b *Board) Config() *config.DomainConfig {
	return b.config
}

// ApplyConfig replaces the editing rules. Every layer a net point sits on
// must stay configured.
func (b *Board) ApplyConfig(cfg *config.DomainConfig) error {
	if cfg == nil {
		return pkgerrors.NewValidationError("config cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return pkgerrors.NewValidationError(err.Error())
	}
	for _, p := range b.points {
		if !cfg.HasLayer(p.Layer()) {
			return pkgerrors.NewValidationError(fmt.Sprintf("layer %s is in use on board %s", p.Layer(), b.name))
		}
	}
	for _, pad := range b.pads {
		for _, layer := range pad.Layers() {
			if !cfg.HasLayer(layer) {
				return pkgerrors.NewValidationError(fmt.Sprintf("layer %s is in use on board %s", layer, b.name))
			}
		}
	}
	b.config = cfg
	return nil
}

// Version increases on every structural change
func (b *Board) Version() int {
	return b.version
}

// UpdatedAt returns when the board was last changed
func (b *Board) UpdatedAt() time.Time {
	return b.updatedAt
}

// Board setup. Signals, vias and pads come from the netlist and the placed
// footprints, so they are not edited through commands.

// AddSignal registers a net signal
func (b *Board) AddSignal(signal *entities.NetSignal) error {
	if signal == nil {
		return pkgerrors.NewValidationError("signal cannot be nil")
	}
	if _, exists := b.signals[signal.ID()]; exists {
		return pkgerrors.NewConflictError("signal already exists on board")
	}
	if _, exists := b.SignalByName(signal.Name()); exists {
		return pkgerrors.NewConflictError("signal name " + signal.Name() + " already used")
	}
	b.signals[signal.ID()] = signal
	return nil
}

// AddVia places a via on the board
func (b *Board) AddVia(via *entities.Via) error {
	if via == nil {
		return pkgerrors.NewValidationError("via cannot be nil")
	}
	if _, exists := b.vias[via.ID()]; exists {
		return pkgerrors.NewConflictError("via already exists on board")
	}
	if err := b.checkSignalRef(via.Signal()); err != nil {
		return err
	}
	b.vias[via.ID()] = via
	return nil
}

// AddPad places a footprint pad on the board
func (b *Board) AddPad(pad *entities.FootprintPad) error {
	if pad == nil {
		return pkgerrors.NewValidationError("pad cannot be nil")
	}
	if _, exists := b.pads[pad.ID()]; exists {
		return pkgerrors.NewConflictError("pad already exists on board")
	}
	signal, _ := pad.NetSignal()
	if err := b.checkSignalRef(signal); err != nil {
		return err
	}
	for _, layer := range pad.Layers() {
		if !b.config.HasLayer(layer) {
			return pkgerrors.NewValidationError("unknown layer " + layer.String())
		}
	}
	b.pads[pad.ID()] = pad
	return nil
}

// Lookups

// Signal returns a signal by id
func (b *Board) Signal(id valueobjects.SignalID) (*entities.NetSignal, error) {
	if s, ok := b.signals[id]; ok {
		return s, nil
	}
	return nil, pkgerrors.NewNotFoundError("signal " + id.String())
}

// SignalByName finds a signal by its name
func (b *Board) SignalByName(name string) (*entities.NetSignal, bool) {
	for _, s := range b.signals {
		if s.Name() == name {
			return s, true
		}
	}
	return nil, false
}

// Segment returns a segment by id
func (b *Board) Segment(id valueobjects.SegmentID) (*entities.NetSegment, error) {
	if s, ok := b.segments[id]; ok {
		return s, nil
	}
	return nil, pkgerrors.NewNotFoundError("segment " + id.String())
}

// HasSegment checks if a segment is active on the board
func (b *Board) HasSegment(id valueobjects.SegmentID) bool {
	_, ok := b.segments[id]
	return ok
}

// Point returns a net point by id
func (b *Board) Point(id valueobjects.PointID) (*entities.NetPoint, error) {
	if p, ok := b.points[id]; ok {
		return p, nil
	}
	return nil, pkgerrors.NewNotFoundError("net point " + id.String())
}

// HasPoint checks if a net point is on the board
func (b *Board) HasPoint(id valueobjects.PointID) bool {
	_, ok := b.points[id]
	return ok
}

// Line returns a net line by id
func (b *Board) Line(id valueobjects.LineID) (*entities.NetLine, error) {
	if l, ok := b.lines[id]; ok {
		return l, nil
	}
	return nil, pkgerrors.NewNotFoundError("net line " + id.String())
}

// Via returns a via by id
func (b *Board) Via(id valueobjects.ViaID) (*entities.Via, error) {
	if v, ok := b.vias[id]; ok {
		return v, nil
	}
	return nil, pkgerrors.NewNotFoundError("via " + id.String())
}

// Pad returns a footprint pad by id
func (b *Board) Pad(id valueobjects.PadID) (*entities.FootprintPad, error) {
	if p, ok := b.pads[id]; ok {
		return p, nil
	}
	return nil, pkgerrors.NewNotFoundError("pad " + id.String())
}

// Signals returns all signals ordered by name
func (b *Board) Signals() []*entities.NetSignal {
	out := make([]*entities.NetSignal, 0, len(b.signals))
	for _, s := range b.signals {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// Segments returns all active segments ordered by id
func (b *Board) Segments() []*entities.NetSegment {
	out := make([]*entities.NetSegment, 0, len(b.segments))
	for _, s := range b.segments {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// Vias returns all vias ordered by id
func (b *Board) Vias() []*entities.Via {
	out := make([]*entities.Via, 0, len(b.vias))
	for _, v := range b.vias {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// Pads returns all pads ordered by id
func (b *Board) Pads() []*entities.FootprintPad {
	out := make([]*entities.FootprintPad, 0, len(b.pads))
	for _, p := range b.pads {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// PointsOfSegment returns the points owned by a segment, ordered by id
func (b *Board) PointsOfSegment(segment valueobjects.SegmentID) []*entities.NetPoint {
	var out []*entities.NetPoint
	for _, p := range b.points {
		if p.Segment() == segment {
			out = append(out, p)
		}
	}
	sortPoints(out)
	return out
}

// LinesOfSegment returns the lines owned by a segment, ordered by id
func (b *Board) LinesOfSegment(segment valueobjects.SegmentID) []*entities.NetLine {
	var out []*entities.NetLine
	for _, l := range b.lines {
		if l.Segment() == segment {
			out = append(out, l)
		}
	}
	sortLines(out)
	return out
}

// LinesOfPoint returns the lines ending at a point, ordered by id
func (b *Board) LinesOfPoint(point valueobjects.PointID) []*entities.NetLine {
	var out []*entities.NetLine
	for _, l := range b.lines {
		if l.HasEndpoint(point) {
			out = append(out, l)
		}
	}
	sortLines(out)
	return out
}

// LineLayer returns the copper layer a line is routed on
func (b *Board) LineLayer(line *entities.NetLine) valueobjects.Layer {
	if p, ok := b.points[line.Start()]; ok {
		return p.Layer()
	}
	return ""
}

// AnchorSignal returns the net signal carried by a via or pad anchor
func (b *Board) AnchorSignal(anchor valueobjects.Anchor) (valueobjects.SignalID, error) {
	switch anchor.Kind {
	case valueobjects.AnchorVia:
		via, err := b.Via(anchor.Via)
		if err != nil {
			return "", err
		}
		return via.Signal(), nil
	case valueobjects.AnchorPad:
		pad, err := b.Pad(anchor.Pad)
		if err != nil {
			return "", err
		}
		signal, _ := pad.NetSignal()
		return signal, nil
	default:
		return "", nil
	}
}

// Events

// GetUncommittedEvents returns all uncommitted domain events
func (b *Board) GetUncommittedEvents() []events.DomainEvent {
	out := make([]events.DomainEvent, len(b.events))
	copy(out, b.events)
	return out
}

// MarkEventsAsCommitted clears all uncommitted events
func (b *Board) MarkEventsAsCommitted() {
	b.events = []events.DomainEvent{}
}

// Private helper methods

func (b *Board) touch() (int, time.Time) {
	b.version++
	b.updatedAt = time.Now()
	return b.version, b.updatedAt
}

func (b *Board) addEvent(event events.DomainEvent) {
	b.events = append(b.events, event)
}

func (b *Board) checkSignalRef(signal valueobjects.SignalID) error {
	if signal.IsZero() {
		return nil
	}
	if _, ok := b.signals[signal]; !ok {
		return pkgerrors.NewNotFoundError("signal " + signal.String())
	}
	return nil
}

func (b *Board) elementCount() int {
	return len(b.points) + len(b.lines)
}

func sortPoints(ps []*entities.NetPoint) {
	sort.Slice(ps, func(i, j int) bool { return ps[i].ID() < ps[j].ID() })
}

func sortLines(ls []*entities.NetLine) {
	sort.Slice(ls, func(i, j int) bool { return ls[i].ID() < ls[j].ID() })
}
