package commands

import (
	"boardedit/application/undo"
	"boardedit/domain/core/aggregates"
	"boardedit/domain/core/entities"
	"boardedit/domain/core/valueobjects"
	pkgerrors "boardedit/pkg/errors"
)

// CombineSegments merges a segment into the segment of a junction point.
// Every element of the absorbed segment is re-created in the kept segment;
// the absorbed point lying under the junction is replaced by the junction
// itself. The emptied segment is retired.
type CombineSegments struct {
	*undo.Group
	board    *aggregates.Board
	removed  valueobjects.SegmentID
	junction valueobjects.PointID
}

// NewCombineSegments merges toBeRemoved into the segment owning junction
func NewCombineSegments(board *aggregates.Board, toBeRemoved valueobjects.SegmentID, junction valueobjects.PointID) *CombineSegments {
	c := &CombineSegments{board: board, removed: toBeRemoved, junction: junction}
	c.Group = undo.NewCompound(undo.KindCombineSegments, "Combine net segments", c)
	return c
}

func (c *CombineSegments) PerformExecute() (bool, error) {
	return c.Run(c.combine)
}

func (c *CombineSegments) combine() error {
	removed, err := c.board.Segment(c.removed)
	if err != nil {
		return err
	}
	junction, err := c.board.Point(c.junction)
	if err != nil {
		return err
	}
	kept, err := c.board.Segment(junction.Segment())
	if err != nil {
		return err
	}
	if kept.ID() == removed.ID() {
		return pkgerrors.NewLogicError("the junction must not belong to the segment being removed")
	}
	if kept.Signal() != removed.Signal() {
		return pkgerrors.NewSignalMismatchError("cannot combine net segments of different net signals")
	}

	interception, err := c.interceptionPoint(junction)
	if err != nil {
		return err
	}
	if interception.IsAttached() && junction.IsAttached() && !interception.Anchor().Equals(junction.Anchor()) {
		return pkgerrors.NewConflictError("cannot combine net segments: the junction and the point under it are attached to different pads or vias")
	}

	points := c.board.PointsOfSegment(removed.ID())
	lines := c.board.LinesOfSegment(removed.ID())

	remove := NewSegmentRemoveElements(c.board, removed.ID())
	for _, l := range lines {
		remove.RemoveLine(l.ID())
	}
	for _, p := range points {
		remove.RemovePoint(p.ID())
	}
	if _, err := c.ExecChild(remove); err != nil {
		return err
	}
	if _, err := c.ExecChild(NewSegmentRemove(c.board, removed.ID())); err != nil {
		return err
	}

	add := NewSegmentAddElements(c.board, kept.ID())
	mapping := make(map[valueobjects.PointID]valueobjects.PointID, len(points))
	for _, p := range points {
		if p.ID() == interception.ID() {
			mapping[p.ID()] = junction.ID()
			continue
		}
		np, err := add.AddPoint(p.Layer(), relocatedAnchor(p))
		if err != nil {
			return err
		}
		mapping[p.ID()] = np.ID()
	}
	for _, l := range lines {
		if _, err := add.AddLine(mapping[l.Start()], mapping[l.End()], l.Width()); err != nil {
			return err
		}
	}
	if interception.IsAttached() && !junction.IsAttached() {
		if _, err := c.ExecChild(add); err != nil {
			return err
		}
		edit := NewPointEdit(c.board, junction.ID()).SetAnchor(interception.Anchor())
		_, err := c.ExecChild(edit)
		return err
	}
	_, err = c.ExecChild(add)
	return err
}

// interceptionPoint finds the single point of the removed segment under the
// junction. Several points are combined first; if there is none, the line
// under the junction is split.
func (c *CombineSegments) interceptionPoint(junction *entities.NetPoint) (*entities.NetPoint, error) {
	var candidates []*entities.NetPoint
	for _, p := range c.board.PointsAt(junction.Position(), junction.Layer()) {
		if p.Segment() == c.removed {
			candidates = append(candidates, p)
		}
	}

	switch {
	case len(candidates) == 1:
		return candidates[0], nil
	case len(candidates) > 1:
		target := candidates[0]
		for _, p := range candidates[1:] {
			if _, err := c.ExecChild(NewCombinePoints(c.board, p.ID(), target.ID())); err != nil {
				return nil, err
			}
		}
		return target, nil
	}

	for _, l := range c.board.LinesAt(junction.Position(), junction.Layer()) {
		if l.Segment() == c.removed {
			return splitLine(c.Group, c.board, l, junction.Position())
		}
	}
	return nil, pkgerrors.NewNoTargetFoundError("the segment to combine has nothing under the junction")
}

func relocatedAnchor(p *entities.NetPoint) valueobjects.Anchor {
	if p.IsAttached() {
		return p.Anchor()
	}
	return valueobjects.FreeAnchor(p.Position())
}
