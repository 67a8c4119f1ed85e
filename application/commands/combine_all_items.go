package commands

import (
	"sort"

	"boardedit/application/undo"
	"boardedit/domain/core/aggregates"
	"boardedit/domain/core/entities"
	"boardedit/domain/core/valueobjects"
	pkgerrors "boardedit/pkg/errors"
)

// CombineAllItemsUnderPoint merges everything lying under a net point into
// it. Other segments are combined into the point's segment, points of the
// same segment are combined into the point, lines passing under it are
// rerouted through it, and a single pad or via under it becomes its anchor.
type CombineAllItemsUnderPoint struct {
	*undo.Group
	board *aggregates.Board
	point valueobjects.PointID
}

// NewCombineAllItemsUnderPoint prepares the merge around point
func NewCombineAllItemsUnderPoint(board *aggregates.Board, point valueobjects.PointID) *CombineAllItemsUnderPoint {
	c := &CombineAllItemsUnderPoint{board: board, point: point}
	c.Group = undo.NewCompound(undo.KindCombineAllItems, "Combine board items", c)
	return c
}

func (c *CombineAllItemsUnderPoint) PerformExecute() (bool, error) {
	return c.Run(c.combine)
}

func (c *CombineAllItemsUnderPoint) combine() error {
	p, err := c.board.Point(c.point)
	if err != nil {
		return err
	}
	seg, err := c.board.Segment(p.Segment())
	if err != nil {
		return err
	}
	pos, layer := p.Position(), p.Layer()

	signals := map[valueobjects.SignalID]bool{seg.Signal(): true}
	others := map[valueobjects.SegmentID]bool{}
	note := func(id valueobjects.SegmentID) error {
		if id == seg.ID() {
			return nil
		}
		s, err := c.board.Segment(id)
		if err != nil {
			return err
		}
		signals[s.Signal()] = true
		others[id] = true
		return nil
	}
	for _, q := range c.board.PointsAt(pos, layer) {
		if err := note(q.Segment()); err != nil {
			return err
		}
	}
	for _, l := range c.board.LinesAt(pos, layer) {
		if err := note(l.Segment()); err != nil {
			return err
		}
	}
	pads := c.board.PadsAt(pos, layer)
	for _, pad := range pads {
		if s, ok := pad.NetSignal(); ok && !s.IsZero() {
			signals[s] = true
		}
	}
	vias := c.board.ViasAt(pos)
	for _, via := range vias {
		if !via.Signal().IsZero() {
			signals[via.Signal()] = true
		}
	}
	if len(signals) > 1 {
		return pkgerrors.NewSignalMismatchError("cannot combine board items: there are different net signals under the point")
	}
	if len(pads)+len(vias) > 1 {
		return pkgerrors.NewConflictError("cannot combine board items: there are several pads or vias under the point")
	}

	ordered := make([]valueobjects.SegmentID, 0, len(others))
	for id := range others {
		ordered = append(ordered, id)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i] < ordered[j] })
	for _, id := range ordered {
		if _, err := c.ExecChild(NewCombineSegments(c.board, id, p.ID())); err != nil {
			return err
		}
	}

	if err := c.absorbOwnSegment(p); err != nil {
		return err
	}

	switch {
	case len(pads) == 1:
		return c.attach(p, valueobjects.PadAnchor(pads[0].ID()))
	case len(vias) == 1:
		return c.attach(p, valueobjects.ViaAnchor(vias[0].ID()))
	}
	return nil
}

// absorbOwnSegment combines the points of the point's segment lying under
// it. Without such points, lines of the segment passing under it are
// rerouted through it.
func (c *CombineAllItemsUnderPoint) absorbOwnSegment(p *entities.NetPoint) error {
	var twins []*entities.NetPoint
	for _, q := range c.board.PointsAt(p.Position(), p.Layer()) {
		if q.Segment() == p.Segment() && q.ID() != p.ID() {
			twins = append(twins, q)
		}
	}
	if len(twins) > 0 {
		for _, q := range twins {
			if _, err := c.ExecChild(NewCombinePoints(c.board, q.ID(), p.ID())); err != nil {
				return err
			}
		}
		return nil
	}

	var passing []*entities.NetLine
	for _, l := range c.board.LinesAt(p.Position(), p.Layer()) {
		if l.Segment() == p.Segment() && !l.HasEndpoint(p.ID()) {
			passing = append(passing, l)
		}
	}
	if len(passing) == 0 {
		return nil
	}
	add := NewSegmentAddElements(c.board, p.Segment())
	remove := NewSegmentRemoveElements(c.board, p.Segment())
	for _, l := range passing {
		if _, err := add.AddLine(p.ID(), l.Start(), l.Width()); err != nil {
			return err
		}
		if _, err := add.AddLine(p.ID(), l.End(), l.Width()); err != nil {
			return err
		}
		remove.RemoveLine(l.ID())
	}
	if _, err := c.ExecChild(add); err != nil {
		return err
	}
	_, err := c.ExecChild(remove)
	return err
}

func (c *CombineAllItemsUnderPoint) attach(p *entities.NetPoint, anchor valueobjects.Anchor) error {
	if p.Anchor().Equals(anchor) {
		return nil
	}
	if p.IsAttached() {
		return pkgerrors.NewConflictError("cannot combine board items: the point is already attached to another pad or via")
	}
	_, err := c.ExecChild(NewPointEdit(c.board, p.ID()).SetAnchor(anchor))
	return err
}
