package commands

import (
	"boardedit/application/undo"
	"boardedit/domain/core/aggregates"
	"boardedit/domain/core/valueobjects"
	pkgerrors "boardedit/pkg/errors"
)

// CombinePoints merges one net point into another of the same segment. The
// lines of the removed point are re-created on the resulting point, except
// lines that would loop onto the resulting point or duplicate an existing
// connection. A via or pad anchor moves over when the resulting point is
// free.
type CombinePoints struct {
	*undo.Group
	board     *aggregates.Board
	removed   valueobjects.PointID
	resulting valueobjects.PointID
}

// NewCombinePoints merges toBeRemoved into resulting
func NewCombinePoints(board *aggregates.Board, toBeRemoved, resulting valueobjects.PointID) *CombinePoints {
	c := &CombinePoints{board: board, removed: toBeRemoved, resulting: resulting}
	c.Group = undo.NewCompound(undo.KindCombinePoints, "Combine net points", c)
	return c
}

func (c *CombinePoints) PerformExecute() (bool, error) {
	return c.Run(c.combine)
}

func (c *CombinePoints) combine() error {
	removed, err := c.board.Point(c.removed)
	if err != nil {
		return err
	}
	resulting, err := c.board.Point(c.resulting)
	if err != nil {
		return err
	}
	if removed.ID() == resulting.ID() {
		return pkgerrors.NewLogicError("cannot combine a net point with itself")
	}
	if removed.Segment() != resulting.Segment() {
		return pkgerrors.NewLogicError("net points to combine must belong to the same segment")
	}
	if removed.IsAttached() && resulting.IsAttached() {
		return pkgerrors.NewConflictError("cannot combine two net points that are both attached to a pad or via")
	}

	connected := make(map[valueobjects.PointID]bool)
	for _, l := range c.board.LinesOfPoint(resulting.ID()) {
		connected[l.OtherEnd(resulting.ID())] = true
	}

	add := NewSegmentAddElements(c.board, resulting.Segment())
	remove := NewSegmentRemoveElements(c.board, resulting.Segment())
	for _, l := range c.board.LinesOfPoint(removed.ID()) {
		remove.RemoveLine(l.ID())
		other := l.OtherEnd(removed.ID())
		if other == resulting.ID() || connected[other] {
			continue
		}
		if _, err := add.AddLine(resulting.ID(), other, l.Width()); err != nil {
			return err
		}
		connected[other] = true
	}
	remove.RemovePoint(removed.ID())

	if _, err := c.ExecChild(add); err != nil {
		return err
	}
	if _, err := c.ExecChild(remove); err != nil {
		return err
	}

	if removed.IsAttached() {
		edit := NewPointEdit(c.board, resulting.ID()).SetAnchor(removed.Anchor())
		if _, err := c.ExecChild(edit); err != nil {
			return err
		}
	}
	return nil
}
