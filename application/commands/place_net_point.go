package commands

import (
	"boardedit/application/ports"
	"boardedit/application/undo"
	"boardedit/domain/core/aggregates"
	"boardedit/domain/core/entities"
	"boardedit/domain/core/valueobjects"
	pkgerrors "boardedit/pkg/errors"
)

// PlaceNetPoint decides what "put a junction here" means at a position and
// layer. In order of priority it reuses an existing net point, uses a via,
// starts a new segment on a pad, or splits a net line.
type PlaceNetPoint struct {
	*undo.Group
	board   *aggregates.Board
	query   aggregates.SpatialQuery
	chooser ports.Chooser
	pos     valueobjects.Position
	layer   valueobjects.Layer
	point   *entities.NetPoint
}

// PlaceOption configures a PlaceNetPoint
type PlaceOption func(*PlaceNetPoint)

// WithSpatialQuery replaces the board's own hit testing
func WithSpatialQuery(q aggregates.SpatialQuery) PlaceOption {
	return func(c *PlaceNetPoint) { c.query = q }
}

// WithChooser lets a caller pick among several candidates instead of
// failing with an ambiguous selection.
func WithChooser(chooser ports.Chooser) PlaceOption {
	return func(c *PlaceNetPoint) { c.chooser = chooser }
}

// NewPlaceNetPoint prepares the placement at pos on layer
func NewPlaceNetPoint(board *aggregates.Board, pos valueobjects.Position, layer valueobjects.Layer, opts ...PlaceOption) *PlaceNetPoint {
	c := &PlaceNetPoint{board: board, query: board, pos: pos, layer: layer}
	for _, opt := range opts {
		opt(c)
	}
	c.Group = undo.NewCompound(undo.KindPlaceNetPoint, "Place net point", c)
	return c
}

// NetPoint returns the reused or created point, available after execution
func (c *PlaceNetPoint) NetPoint() *entities.NetPoint {
	return c.point
}

func (c *PlaceNetPoint) PerformExecute() (bool, error) {
	return c.Run(c.place)
}

func (c *PlaceNetPoint) place() error {
	if points := c.query.PointsAt(c.pos, c.layer); len(points) > 0 {
		i, err := choose(c.chooser, "net point", ids(points, func(p *entities.NetPoint) string { return p.ID().String() }))
		if err != nil {
			return err
		}
		c.point = points[i]
		return nil
	}

	if vias := c.query.ViasAt(c.pos); len(vias) > 0 {
		i, err := choose(c.chooser, "via", ids(vias, func(v *entities.Via) string { return v.ID().String() }))
		if err != nil {
			return err
		}
		return c.onVia(vias[i])
	}

	if pads := c.query.PadsAt(c.pos, c.layer); len(pads) > 0 {
		i, err := choose(c.chooser, "pad", ids(pads, func(p *entities.FootprintPad) string { return p.ID().String() }))
		if err != nil {
			return err
		}
		return c.onPad(pads[i])
	}

	lines := c.query.LinesAt(c.pos, c.layer)
	if len(lines) == 0 {
		return pkgerrors.NewNoTargetFoundError("nothing to connect at " + c.pos.String() + " on " + c.layer.String())
	}
	i, err := choose(c.chooser, "net line", ids(lines, func(l *entities.NetLine) string { return l.ID().String() }))
	if err != nil {
		return err
	}
	p, err := splitLine(c.Group, c.board, lines[i], c.pos)
	if err != nil {
		return err
	}
	c.point = p
	return nil
}

func (c *PlaceNetPoint) onVia(via *entities.Via) error {
	if id, ok := c.query.ViaPointOnLayer(via.ID(), c.layer); ok {
		p, err := c.board.Point(id)
		if err != nil {
			return err
		}
		c.point = p
		return nil
	}
	if via.Signal().IsZero() {
		return pkgerrors.NewUnconnectedAnchorError("the via is not connected to any net signal")
	}
	cmd := NewPointAddOnVia(c.board, c.layer, via)
	if _, err := c.ExecChild(cmd); err != nil {
		return err
	}
	c.point = cmd.NetPoint()
	return nil
}

func (c *PlaceNetPoint) onPad(pad *entities.FootprintPad) error {
	if id, ok := pad.PointOnLayer(c.layer); ok {
		p, err := c.board.Point(id)
		if err != nil {
			return err
		}
		c.point = p
		return nil
	}
	if _, ok := c.query.PadNetSignal(pad.ID()); !ok {
		return pkgerrors.NewUnconnectedAnchorError("pad " + pad.Name() + " is not connected to any net signal")
	}
	cmd := NewPointAddOnPad(c.board, c.layer, pad)
	if _, err := c.ExecChild(cmd); err != nil {
		return err
	}
	c.point = cmd.NetPoint()
	return nil
}

// splitLine inserts a free point at pos into line's segment and replaces the
// line by two lines of the same width through that point. The additions run
// before the removal.
func splitLine(g *undo.Group, board *aggregates.Board, line *entities.NetLine, pos valueobjects.Position) (*entities.NetPoint, error) {
	start, err := board.Point(line.Start())
	if err != nil {
		return nil, err
	}

	add := NewSegmentAddElements(board, line.Segment())
	p, err := add.AddPoint(start.Layer(), valueobjects.FreeAnchor(pos))
	if err != nil {
		return nil, err
	}
	if _, err := add.AddLine(line.Start(), p.ID(), line.Width()); err != nil {
		return nil, err
	}
	if _, err := add.AddLine(p.ID(), line.End(), line.Width()); err != nil {
		return nil, err
	}
	if _, err := g.ExecChild(add); err != nil {
		return nil, err
	}

	remove := NewSegmentRemoveElements(board, line.Segment())
	remove.RemoveLine(line.ID())
	if _, err := g.ExecChild(remove); err != nil {
		return nil, err
	}
	return p, nil
}

// choose returns the index of the candidate to use. A single candidate is
// used directly; several need the chooser.
func choose(chooser ports.Chooser, kind string, candidates []string) (int, error) {
	if len(candidates) == 1 {
		return 0, nil
	}
	if chooser == nil {
		return 0, pkgerrors.NewAmbiguousSelectionError(kind, len(candidates))
	}
	chosen, err := chooser.Choose(kind, candidates)
	if err != nil {
		return 0, err
	}
	for i, id := range candidates {
		if id == chosen {
			return i, nil
		}
	}
	return 0, pkgerrors.NewLogicError("chooser returned an unknown " + kind + " " + chosen)
}

func ids[T any](items []T, id func(T) string) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = id(item)
	}
	return out
}
