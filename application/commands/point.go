package commands

import (
	"boardedit/application/undo"
	"boardedit/domain/core/aggregates"
	"boardedit/domain/core/entities"
	"boardedit/domain/core/valueobjects"
	pkgerrors "boardedit/pkg/errors"
)

// PointAdd adds a net point. Except when reusing an existing point entity,
// it creates the point's segment first, so undo takes away both.
type PointAdd struct {
	*undo.Base
	board      *aggregates.Board
	layer      valueobjects.Layer
	signal     valueobjects.SignalID
	anchor     valueobjects.Anchor
	newSegment bool
	segment    *entities.NetSegment
	point      *entities.NetPoint
}

// NewPointAddFree creates a new segment on signal with a free point at pos
func NewPointAddFree(board *aggregates.Board, layer valueobjects.Layer, signal valueobjects.SignalID, pos valueobjects.Position) *PointAdd {
	return newPointAdd(board, layer, signal, valueobjects.FreeAnchor(pos))
}

// NewPointAddOnPad creates a new segment with a point on pad. The segment
// takes the pad's net signal.
func NewPointAddOnPad(board *aggregates.Board, layer valueobjects.Layer, pad *entities.FootprintPad) *PointAdd {
	signal, _ := pad.NetSignal()
	return newPointAdd(board, layer, signal, valueobjects.PadAnchor(pad.ID()))
}

// NewPointAddOnVia creates a new segment with a point on via. The segment
// takes the via's net signal.
func NewPointAddOnVia(board *aggregates.Board, layer valueobjects.Layer, via *entities.Via) *PointAdd {
	return newPointAdd(board, layer, via.Signal(), valueobjects.ViaAnchor(via.ID()))
}

// NewPointAddExisting registers an existing point entity. If the point is
// already on the board the command changes nothing.
func NewPointAddExisting(board *aggregates.Board, point *entities.NetPoint) *PointAdd {
	c := &PointAdd{board: board, point: point}
	c.Base = undo.New(undo.KindPointAdd, "Add net point", c)
	return c
}

func newPointAdd(board *aggregates.Board, layer valueobjects.Layer, signal valueobjects.SignalID, anchor valueobjects.Anchor) *PointAdd {
	c := &PointAdd{
		board:      board,
		layer:      layer,
		signal:     signal,
		anchor:     anchor,
		newSegment: true,
	}
	c.Base = undo.New(undo.KindPointAdd, "Add net point", c)
	return c
}

// NetPoint returns the added point, available after execution
func (c *PointAdd) NetPoint() *entities.NetPoint {
	return c.point
}

// Segment returns the segment created with the point, if any
func (c *PointAdd) Segment() *entities.NetSegment {
	return c.segment
}

func (c *PointAdd) PerformExecute() (bool, error) {
	if !c.newSegment {
		if c.point == nil {
			return false, pkgerrors.NewLogicError("no net point to add")
		}
		if c.board.HasPoint(c.point.ID()) {
			return false, nil
		}
		if err := c.board.InsertPoint(c.point); err != nil {
			return false, err
		}
		return true, nil
	}

	if c.anchor.IsAttached() {
		signal, err := c.board.AnchorSignal(c.anchor)
		if err != nil {
			return false, err
		}
		if signal.IsZero() {
			return false, pkgerrors.NewUnconnectedAnchorError("the " + string(c.anchor.Kind) + " is not connected to any net signal")
		}
	}
	pos, err := c.board.AnchorPosition(c.anchor)
	if err != nil {
		return false, err
	}
	segment := entities.NewNetSegment(c.signal)
	point, err := entities.NewNetPoint(segment.ID(), c.layer, c.anchor, pos)
	if err != nil {
		return false, err
	}
	c.segment, c.point = segment, point

	if err := c.PerformRedo(); err != nil {
		return false, err
	}
	return true, nil
}

func (c *PointAdd) PerformUndo() error {
	if _, err := c.board.RemovePoint(c.point.ID()); err != nil {
		return err
	}
	if c.segment != nil {
		if _, err := c.board.RemoveSegment(c.segment.ID()); err != nil {
			_ = c.board.InsertPoint(c.point)
			return err
		}
	}
	return nil
}

func (c *PointAdd) PerformRedo() error {
	if c.segment != nil {
		if err := c.board.InsertSegment(c.segment); err != nil {
			return err
		}
	}
	if err := c.board.InsertPoint(c.point); err != nil {
		if c.segment != nil {
			_, _ = c.board.RemoveSegment(c.segment.ID())
		}
		return err
	}
	return nil
}

// PointEdit changes the anchor of a net point: attach it to a via or pad,
// detach it, or move a free point.
type PointEdit struct {
	*undo.Base
	board     *aggregates.Board
	point     valueobjects.PointID
	newAnchor *valueobjects.Anchor
	oldAnchor valueobjects.Anchor
}

// NewPointEdit edits the point with the given id
func NewPointEdit(board *aggregates.Board, point valueobjects.PointID) *PointEdit {
	c := &PointEdit{board: board, point: point}
	c.Base = undo.New(undo.KindPointEdit, "Edit net point", c)
	return c
}

// SetAnchor selects the new anchor
func (c *PointEdit) SetAnchor(anchor valueobjects.Anchor) *PointEdit {
	c.newAnchor = &anchor
	return c
}

// SetPosition moves the point to pos, detaching it from any via or pad
func (c *PointEdit) SetPosition(pos valueobjects.Position) *PointEdit {
	return c.SetAnchor(valueobjects.FreeAnchor(pos))
}

func (c *PointEdit) PerformExecute() (bool, error) {
	p, err := c.board.Point(c.point)
	if err != nil {
		return false, err
	}
	c.oldAnchor = p.Anchor()
	if c.oldAnchor.Kind == valueobjects.AnchorFree {
		c.oldAnchor.Position = p.Position()
	}
	if c.newAnchor == nil || c.newAnchor.Equals(c.oldAnchor) {
		return false, nil
	}
	if err := c.board.SetPointAnchor(c.point, *c.newAnchor); err != nil {
		return false, err
	}
	return true, nil
}

func (c *PointEdit) PerformUndo() error {
	return c.board.SetPointAnchor(c.point, c.oldAnchor)
}

func (c *PointEdit) PerformRedo() error {
	return c.board.SetPointAnchor(c.point, *c.newAnchor)
}
