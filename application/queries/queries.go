// Package queries holds the read-side requests and the views they return
package queries

import (
	"boardedit/domain/core/aggregates"
	"boardedit/domain/core/entities"
	"boardedit/domain/core/valueobjects"
	"boardedit/pkg/utils"
)

// GetBoardQuery asks for the routing view of a whole board
type GetBoardQuery struct {
	BoardID string `json:"board_id" validate:"required,uuid"`
}

// Validate validates the query
func (q GetBoardQuery) Validate() error { return utils.ValidateStruct(q) }

// GetSegmentQuery asks for one segment with its points and lines
type GetSegmentQuery struct {
	BoardID   string `json:"board_id" validate:"required,uuid"`
	SegmentID string `json:"segment_id" validate:"required,uuid"`
}

// Validate validates the query
func (q GetSegmentQuery) Validate() error { return utils.ValidateStruct(q) }

// ItemsAtQuery asks what a click at a position on a layer would hit
type ItemsAtQuery struct {
	BoardID string  `json:"board_id" validate:"required,uuid"`
	X       float64 `json:"x" validate:"gte=-1000000,lte=1000000"`
	Y       float64 `json:"y" validate:"gte=-1000000,lte=1000000"`
	Layer   string  `json:"layer" validate:"required,layer"`
}

// Validate validates the query
func (q ItemsAtQuery) Validate() error { return utils.ValidateStruct(q) }

// GetActivityQuery asks for the recent committed changes of a board
type GetActivityQuery struct {
	BoardID string `json:"board_id" validate:"required,uuid"`
	Limit   int    `json:"limit" validate:"omitempty,min=1,max=1000"`
}

// Validate validates the query
func (q GetActivityQuery) Validate() error { return utils.ValidateStruct(q) }

// BoardView is the routing state of a board
type BoardView struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Version  int           `json:"version"`
	Signals  []SignalView  `json:"signals"`
	Segments []SegmentView `json:"segments"`
	Vias     []ViaView     `json:"vias"`
	Pads     []PadView     `json:"pads"`
}

// SignalView is a net signal
type SignalView struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SegmentView is a segment with its elements
type SegmentView struct {
	ID     string      `json:"id"`
	Signal string      `json:"signal,omitempty"`
	Points []PointView `json:"points"`
	Lines  []LineView  `json:"lines"`
}

// PointView is a net point. Via and Pad are set for anchored points.
type PointView struct {
	ID       string       `json:"id"`
	Segment  string       `json:"segment"`
	Layer    string       `json:"layer"`
	Position PositionView `json:"position"`
	Anchor   string       `json:"anchor"`
	Via      string       `json:"via,omitempty"`
	Pad      string       `json:"pad,omitempty"`
}

// LineView is a net line; width in millimetres
type LineView struct {
	ID      string  `json:"id"`
	Segment string  `json:"segment"`
	Start   string  `json:"start"`
	End     string  `json:"end"`
	Width   float64 `json:"width"`
}

// ViaView is a via; sizes in millimetres
type ViaView struct {
	ID       string       `json:"id"`
	Position PositionView `json:"position"`
	Size     float64      `json:"size"`
	Drill    float64      `json:"drill"`
	Signal   string       `json:"signal,omitempty"`
}

// PadView is a footprint pad
type PadView struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Position PositionView `json:"position"`
	Size     float64      `json:"size"`
	Layers   []string     `json:"layers"`
	Signal   string       `json:"signal,omitempty"`
}

// PositionView is a position in millimetres
type PositionView struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ItemsView lists what lies under a position, in placement priority order
type ItemsView struct {
	Points []PointView `json:"points"`
	Vias   []ViaView   `json:"vias"`
	Pads   []PadView   `json:"pads"`
	Lines  []LineView  `json:"lines"`
}

// NewBoardView builds the view of a board. The caller holds the board's
// read lock.
func NewBoardView(b *aggregates.Board) *BoardView {
	view := &BoardView{
		ID:       b.ID().String(),
		Name:     b.Name(),
		Version:  b.Version(),
		Signals:  make([]SignalView, 0),
		Segments: make([]SegmentView, 0),
		Vias:     make([]ViaView, 0),
		Pads:     make([]PadView, 0),
	}
	for _, s := range b.Signals() {
		view.Signals = append(view.Signals, SignalView{ID: s.ID().String(), Name: s.Name()})
	}
	for _, seg := range b.Segments() {
		view.Segments = append(view.Segments, NewSegmentView(b, seg))
	}
	for _, v := range b.Vias() {
		view.Vias = append(view.Vias, newViaView(v))
	}
	for _, p := range b.Pads() {
		view.Pads = append(view.Pads, newPadView(p))
	}
	return view
}

// NewSegmentView builds the view of one segment
func NewSegmentView(b *aggregates.Board, seg *entities.NetSegment) SegmentView {
	view := SegmentView{
		ID:     seg.ID().String(),
		Signal: seg.Signal().String(),
		Points: make([]PointView, 0),
		Lines:  make([]LineView, 0),
	}
	for _, p := range b.PointsOfSegment(seg.ID()) {
		view.Points = append(view.Points, newPointView(p))
	}
	for _, l := range b.LinesOfSegment(seg.ID()) {
		view.Lines = append(view.Lines, newLineView(l))
	}
	return view
}

// NewItemsView lists the elements a query finds at a position
func NewItemsView(q aggregates.SpatialQuery, pos valueobjects.Position, layer valueobjects.Layer) *ItemsView {
	view := &ItemsView{
		Points: make([]PointView, 0),
		Vias:   make([]ViaView, 0),
		Pads:   make([]PadView, 0),
		Lines:  make([]LineView, 0),
	}
	for _, p := range q.PointsAt(pos, layer) {
		view.Points = append(view.Points, newPointView(p))
	}
	for _, v := range q.ViasAt(pos) {
		view.Vias = append(view.Vias, newViaView(v))
	}
	for _, p := range q.PadsAt(pos, layer) {
		view.Pads = append(view.Pads, newPadView(p))
	}
	for _, l := range q.LinesAt(pos, layer) {
		view.Lines = append(view.Lines, newLineView(l))
	}
	return view
}

func newPositionView(p valueobjects.Position) PositionView {
	return PositionView{X: p.X.MM(), Y: p.Y.MM()}
}

func newPointView(p *entities.NetPoint) PointView {
	view := PointView{
		ID:       p.ID().String(),
		Segment:  p.Segment().String(),
		Layer:    p.Layer().String(),
		Position: newPositionView(p.Position()),
		Anchor:   string(p.Anchor().Kind),
	}
	if via, ok := p.Via(); ok {
		view.Via = via.String()
	}
	if pad, ok := p.Pad(); ok {
		view.Pad = pad.String()
	}
	return view
}

func newLineView(l *entities.NetLine) LineView {
	return LineView{
		ID:      l.ID().String(),
		Segment: l.Segment().String(),
		Start:   l.Start().String(),
		End:     l.End().String(),
		Width:   l.Width().MM(),
	}
}

func newViaView(v *entities.Via) ViaView {
	return ViaView{
		ID:       v.ID().String(),
		Position: newPositionView(v.Position()),
		Size:     v.Size().MM(),
		Drill:    v.Drill().MM(),
		Signal:   v.Signal().String(),
	}
}

func newPadView(p *entities.FootprintPad) PadView {
	view := PadView{
		ID:       p.ID().String(),
		Name:     p.Name(),
		Position: newPositionView(p.Position()),
		Size:     p.Size().MM(),
		Layers:   make([]string, 0, len(p.Layers())),
	}
	for _, l := range p.Layers() {
		view.Layers = append(view.Layers, l.String())
	}
	if signal, ok := p.NetSignal(); ok {
		view.Signal = signal.String()
	}
	return view
}
