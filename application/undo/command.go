// Package undo provides the reversible command framework: the command state
// machine, atomic command groups with rollback, and the undo stack.
package undo

import (
	"fmt"

	pkgerrors "boardedit/pkg/errors"
)

// Kind identifies the closed set of command types
type Kind string

const (
	KindSegmentAdd            Kind = "segment_add"
	KindSegmentRemove         Kind = "segment_remove"
	KindSegmentEdit           Kind = "segment_edit"
	KindSegmentAddElements    Kind = "segment_add_elements"
	KindSegmentRemoveElements Kind = "segment_remove_elements"
	KindPointAdd              Kind = "point_add"
	KindPointEdit             Kind = "point_edit"
	KindPlaceNetPoint         Kind = "place_net_point"
	KindCombineSegments       Kind = "combine_segments"
	KindCombinePoints         Kind = "combine_points"
	KindDetachPoint           Kind = "detach_point"
	KindCombineAllItems       Kind = "combine_all_items"
	KindGroup                 Kind = "group"
)

// State of a command in its lifecycle
type State string

const (
	StateCreated  State = "CREATED"
	StateExecuted State = "EXECUTED"
	StateUndone   State = "UNDONE"
	StateFailed   State = "FAILED"
)

// Command is an atomic, reversible change of the board.
//
// Execute may be called once, in StateCreated. Undo is valid only in
// StateExecuted and Redo only in StateUndone. Any other call order returns a
// logic error. A failed first execution leaves the board untouched and moves
// the command to StateFailed, from which nothing but disposal is possible.
type Command interface {
	Kind() Kind
	Text() string
	State() State
	// Changed reports whether the first execution modified the board
	Changed() bool
	Execute() (bool, error)
	Undo() error
	Redo() error
}

// Performer implements the actual work of a command. Base runs it under
// the state machine.
type Performer interface {
	PerformExecute() (bool, error)
	PerformUndo() error
	PerformRedo() error
}

// Base owns the state machine of a command and delegates to its performer
type Base struct {
	kind      Kind
	text      string
	state     State
	changed   bool
	performer Performer
}

// New wraps a performer into a command
func New(kind Kind, text string, performer Performer) *Base {
	return &Base{
		kind:      kind,
		text:      text,
		state:     StateCreated,
		performer: performer,
	}
}

func (c *Base) Kind() Kind    { return c.kind }
func (c *Base) Text() string  { return c.text }
func (c *Base) State() State  { return c.state }
func (c *Base) Changed() bool { return c.changed }

// Execute performs the command for the first time
func (c *Base) Execute() (bool, error) {
	if c.state != StateCreated {
		return false, c.misuse("execute")
	}
	changed, err := c.performer.PerformExecute()
	if err != nil {
		c.state = StateFailed
		return false, err
	}
	c.state = StateExecuted
	c.changed = changed
	return changed, nil
}

// Undo reverts the last execute or redo
func (c *Base) Undo() error {
	if c.state != StateExecuted {
		return c.misuse("undo")
	}
	if err := c.performer.PerformUndo(); err != nil {
		return err
	}
	c.state = StateUndone
	return nil
}

// Redo applies the command again after an undo
func (c *Base) Redo() error {
	if c.state != StateUndone {
		return c.misuse("redo")
	}
	if err := c.performer.PerformRedo(); err != nil {
		return err
	}
	c.state = StateExecuted
	return nil
}

func (c *Base) misuse(op string) error {
	return pkgerrors.NewLogicError(fmt.Sprintf("cannot %s command %q in state %s", op, c.text, c.state)).
		WithDetail("kind", string(c.kind))
}
