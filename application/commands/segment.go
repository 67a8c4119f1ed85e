// Package commands holds the undoable board edit commands: leaf commands
// that wrap the board's mutation primitives and the engines that compose
// them into atomic groups.
package commands

import (
	"boardedit/application/undo"
	"boardedit/domain/core/aggregates"
	"boardedit/domain/core/entities"
	"boardedit/domain/core/valueobjects"
)

// SegmentAdd creates a new net segment, or re-adds a segment entity that is
// not on the board.
type SegmentAdd struct {
	*undo.Base
	board   *aggregates.Board
	signal  valueobjects.SignalID
	segment *entities.NetSegment
}

// NewSegmentAdd creates a segment bound to signal on first execution
func NewSegmentAdd(board *aggregates.Board, signal valueobjects.SignalID) *SegmentAdd {
	c := &SegmentAdd{board: board, signal: signal}
	c.Base = undo.New(undo.KindSegmentAdd, "Add net segment", c)
	return c
}

// NewSegmentReAdd puts an existing segment entity back on the board
func NewSegmentReAdd(board *aggregates.Board, segment *entities.NetSegment) *SegmentAdd {
	c := &SegmentAdd{board: board, segment: segment}
	c.Base = undo.New(undo.KindSegmentAdd, "Add net segment", c)
	return c
}

// Segment returns the added segment, available after execution
func (c *SegmentAdd) Segment() *entities.NetSegment {
	return c.segment
}

func (c *SegmentAdd) PerformExecute() (bool, error) {
	if c.segment == nil {
		c.segment = entities.NewNetSegment(c.signal)
	}
	if err := c.board.InsertSegment(c.segment); err != nil {
		return false, err
	}
	return true, nil
}

func (c *SegmentAdd) PerformUndo() error {
	_, err := c.board.RemoveSegment(c.segment.ID())
	return err
}

func (c *SegmentAdd) PerformRedo() error {
	return c.board.InsertSegment(c.segment)
}

// SegmentRemove retires an empty segment
type SegmentRemove struct {
	*undo.Base
	board   *aggregates.Board
	id      valueobjects.SegmentID
	segment *entities.NetSegment
}

// NewSegmentRemove removes the segment on execution
func NewSegmentRemove(board *aggregates.Board, id valueobjects.SegmentID) *SegmentRemove {
	c := &SegmentRemove{board: board, id: id}
	c.Base = undo.New(undo.KindSegmentRemove, "Remove net segment", c)
	return c
}

func (c *SegmentRemove) PerformExecute() (bool, error) {
	seg, err := c.board.RemoveSegment(c.id)
	if err != nil {
		return false, err
	}
	c.segment = seg
	return true, nil
}

func (c *SegmentRemove) PerformUndo() error {
	return c.board.InsertSegment(c.segment)
}

func (c *SegmentRemove) PerformRedo() error {
	_, err := c.board.RemoveSegment(c.id)
	return err
}

// SegmentEdit changes the net signal of a segment
type SegmentEdit struct {
	*undo.Base
	board     *aggregates.Board
	segment   valueobjects.SegmentID
	oldSignal valueobjects.SignalID
	newSignal valueobjects.SignalID
}

// NewSegmentEdit captures the segment's current signal as the undo target
func NewSegmentEdit(board *aggregates.Board, segment *entities.NetSegment, signal valueobjects.SignalID) *SegmentEdit {
	c := &SegmentEdit{
		board:     board,
		segment:   segment.ID(),
		oldSignal: segment.Signal(),
		newSignal: signal,
	}
	c.Base = undo.New(undo.KindSegmentEdit, "Edit net segment", c)
	return c
}

func (c *SegmentEdit) PerformExecute() (bool, error) {
	if c.newSignal == c.oldSignal {
		return false, nil
	}
	if err := c.board.SetSegmentSignal(c.segment, c.newSignal); err != nil {
		return false, err
	}
	return true, nil
}

func (c *SegmentEdit) PerformUndo() error {
	return c.board.SetSegmentSignal(c.segment, c.oldSignal)
}

func (c *SegmentEdit) PerformRedo() error {
	return c.board.SetSegmentSignal(c.segment, c.newSignal)
}
