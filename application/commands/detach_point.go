package commands

import (
	"boardedit/application/undo"
	"boardedit/domain/core/aggregates"
	"boardedit/domain/core/valueobjects"
)

// DetachPoint removes a net point from its via or pad. An end point (at most
// one line) is removed together with its line and any neighbour left without
// lines, and the segment is retired once empty. A point in the middle of a
// trace stays where it is, just no longer anchored.
type DetachPoint struct {
	*undo.Group
	board *aggregates.Board
	point valueobjects.PointID
}

// NewDetachPoint detaches the point with the given id
func NewDetachPoint(board *aggregates.Board, point valueobjects.PointID) *DetachPoint {
	c := &DetachPoint{board: board, point: point}
	c.Group = undo.NewCompound(undo.KindDetachPoint, "Detach net point", c)
	return c
}

func (c *DetachPoint) PerformExecute() (bool, error) {
	return c.Run(c.detach)
}

func (c *DetachPoint) detach() error {
	p, err := c.board.Point(c.point)
	if err != nil {
		return err
	}

	lines := c.board.LinesOfPoint(p.ID())
	if len(lines) > 1 {
		if !p.IsAttached() {
			return nil
		}
		_, err := c.ExecChild(NewPointEdit(c.board, p.ID()).SetPosition(p.Position()))
		return err
	}

	remove := NewSegmentRemoveElements(c.board, p.Segment())
	for _, l := range lines {
		remove.RemoveLine(l.ID())
		other := l.OtherEnd(p.ID())
		if len(c.board.LinesOfPoint(other)) <= 1 {
			remove.RemovePoint(other)
		}
	}
	remove.RemovePoint(p.ID())
	if _, err := c.ExecChild(remove); err != nil {
		return err
	}

	if len(c.board.PointsOfSegment(p.Segment())) == 0 {
		if _, err := c.ExecChild(NewSegmentRemove(c.board, p.Segment())); err != nil {
			return err
		}
	}
	return nil
}
