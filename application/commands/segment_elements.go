package commands

import (
	"boardedit/application/undo"
	"boardedit/domain/core/aggregates"
	"boardedit/domain/core/entities"
	"boardedit/domain/core/valueobjects"
	pkgerrors "boardedit/pkg/errors"
)

// SegmentAddElements adds a batch of points and lines to one segment.
// Points go in before lines; undo removes lines before points.
type SegmentAddElements struct {
	*undo.Base
	board   *aggregates.Board
	segment valueobjects.SegmentID
	points  []*entities.NetPoint
	lines   []*entities.NetLine
}

// NewSegmentAddElements creates an empty batch for segment
func NewSegmentAddElements(board *aggregates.Board, segment valueobjects.SegmentID) *SegmentAddElements {
	c := &SegmentAddElements{board: board, segment: segment}
	c.Base = undo.New(undo.KindSegmentAddElements, "Add net segment elements", c)
	return c
}

// AddPoint queues a new point at anchor. The returned entity may be used as
// a line endpoint of the same batch.
func (c *SegmentAddElements) AddPoint(layer valueobjects.Layer, anchor valueobjects.Anchor) (*entities.NetPoint, error) {
	if c.State() != undo.StateCreated {
		return nil, pkgerrors.NewLogicError("cannot add elements after execution")
	}
	pos, err := c.board.AnchorPosition(anchor)
	if err != nil {
		return nil, err
	}
	p, err := entities.NewNetPoint(c.segment, layer, anchor, pos)
	if err != nil {
		return nil, err
	}
	c.points = append(c.points, p)
	return p, nil
}

// AddLine queues a new line between two points of the segment
func (c *SegmentAddElements) AddLine(start, end valueobjects.PointID, width valueobjects.Length) (*entities.NetLine, error) {
	if c.State() != undo.StateCreated {
		return nil, pkgerrors.NewLogicError("cannot add elements after execution")
	}
	l, err := entities.NewNetLine(c.segment, start, end, width)
	if err != nil {
		return nil, err
	}
	c.lines = append(c.lines, l)
	return l, nil
}

// IsEmpty reports whether nothing was queued
func (c *SegmentAddElements) IsEmpty() bool {
	return len(c.points) == 0 && len(c.lines) == 0
}

func (c *SegmentAddElements) PerformExecute() (bool, error) {
	if c.IsEmpty() {
		return false, nil
	}
	if !c.board.HasSegment(c.segment) {
		return false, pkgerrors.NewNotFoundError("segment " + c.segment.String())
	}
	if err := c.PerformRedo(); err != nil {
		return false, err
	}
	return true, nil
}

func (c *SegmentAddElements) PerformUndo() error {
	return removeElements(c.board, c.points, c.lines)
}

func (c *SegmentAddElements) PerformRedo() error {
	return insertElements(c.board, c.points, c.lines)
}

// SegmentRemoveElements removes a batch of points and lines from one
// segment. Lines go first so that points are free of dependents.
type SegmentRemoveElements struct {
	*undo.Base
	board    *aggregates.Board
	segment  valueobjects.SegmentID
	pointIDs []valueobjects.PointID
	lineIDs  []valueobjects.LineID
	points   []*entities.NetPoint
	lines    []*entities.NetLine
}

// NewSegmentRemoveElements creates an empty removal batch for segment
func NewSegmentRemoveElements(board *aggregates.Board, segment valueobjects.SegmentID) *SegmentRemoveElements {
	c := &SegmentRemoveElements{board: board, segment: segment}
	c.Base = undo.New(undo.KindSegmentRemoveElements, "Remove net segment elements", c)
	return c
}

// RemovePoint queues a point for removal. Duplicates are ignored.
func (c *SegmentRemoveElements) RemovePoint(id valueobjects.PointID) {
	for _, existing := range c.pointIDs {
		if existing == id {
			return
		}
	}
	c.pointIDs = append(c.pointIDs, id)
}

// RemoveLine queues a line for removal. Duplicates are ignored.
func (c *SegmentRemoveElements) RemoveLine(id valueobjects.LineID) {
	for _, existing := range c.lineIDs {
		if existing == id {
			return
		}
	}
	c.lineIDs = append(c.lineIDs, id)
}

// IsEmpty reports whether nothing was queued
func (c *SegmentRemoveElements) IsEmpty() bool {
	return len(c.pointIDs) == 0 && len(c.lineIDs) == 0
}

func (c *SegmentRemoveElements) PerformExecute() (bool, error) {
	if c.IsEmpty() {
		return false, nil
	}

	c.points = make([]*entities.NetPoint, 0, len(c.pointIDs))
	for _, id := range c.pointIDs {
		p, err := c.board.Point(id)
		if err != nil {
			return false, err
		}
		if p.Segment() != c.segment {
			return false, pkgerrors.NewLogicError("net point " + id.String() + " is not part of segment " + c.segment.String())
		}
		c.points = append(c.points, p)
	}
	c.lines = make([]*entities.NetLine, 0, len(c.lineIDs))
	for _, id := range c.lineIDs {
		l, err := c.board.Line(id)
		if err != nil {
			return false, err
		}
		if l.Segment() != c.segment {
			return false, pkgerrors.NewLogicError("net line " + id.String() + " is not part of segment " + c.segment.String())
		}
		c.lines = append(c.lines, l)
	}

	if err := c.PerformRedo(); err != nil {
		return false, err
	}
	return true, nil
}

func (c *SegmentRemoveElements) PerformUndo() error {
	return insertElements(c.board, c.points, c.lines)
}

func (c *SegmentRemoveElements) PerformRedo() error {
	return removeElements(c.board, c.points, c.lines)
}

// insertElements puts points then lines on the board. On failure the
// elements inserted so far are taken out again.
func insertElements(board *aggregates.Board, points []*entities.NetPoint, lines []*entities.NetLine) error {
	var (
		donePoints []*entities.NetPoint
		doneLines  []*entities.NetLine
	)
	guard := undo.NewRollbackGuard(func() {
		_ = removeElements(board, donePoints, doneLines)
	})
	defer guard.Close()

	for _, p := range points {
		if err := board.InsertPoint(p); err != nil {
			return err
		}
		donePoints = append(donePoints, p)
	}
	for _, l := range lines {
		if err := board.InsertLine(l); err != nil {
			return err
		}
		doneLines = append(doneLines, l)
	}
	guard.Dismiss()
	return nil
}

// removeElements takes lines then points off the board, in reverse order.
// On failure the elements removed so far are put back.
func removeElements(board *aggregates.Board, points []*entities.NetPoint, lines []*entities.NetLine) error {
	var (
		donePoints []*entities.NetPoint
		doneLines  []*entities.NetLine
	)
	guard := undo.NewRollbackGuard(func() {
		reverse(donePoints)
		reverse(doneLines)
		_ = insertElements(board, donePoints, doneLines)
	})
	defer guard.Close()

	for i := len(lines) - 1; i >= 0; i-- {
		if _, err := board.RemoveLine(lines[i].ID()); err != nil {
			return err
		}
		doneLines = append(doneLines, lines[i])
	}
	for i := len(points) - 1; i >= 0; i-- {
		if _, err := board.RemovePoint(points[i].ID()); err != nil {
			return err
		}
		donePoints = append(donePoints, points[i])
	}
	guard.Dismiss()
	return nil
}

func reverse[T any](s []T) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
