package undo

import (
	"go.uber.org/zap"

	pkgerrors "boardedit/pkg/errors"
)

// RollbackGuard runs a rollback function when closed, unless it was
// dismissed first. Register it with defer at the start of a transactional
// operation and dismiss it once everything succeeded.
type RollbackGuard struct {
	rollback  func()
	dismissed bool
}

// NewRollbackGuard arms a guard
func NewRollbackGuard(rollback func()) *RollbackGuard {
	return &RollbackGuard{rollback: rollback}
}

// Dismiss disarms the guard
func (g *RollbackGuard) Dismiss() {
	g.dismissed = true
}

// Close rolls back unless the guard was dismissed
func (g *RollbackGuard) Close() {
	if g.dismissed || g.rollback == nil {
		return
	}
	g.dismissed = true
	g.rollback()
}

// Group is a command made of ordered child commands that are applied as one
// transaction: if a child fails, the children already applied are undone in
// reverse order before the error is returned.
//
// Plain groups get their children through Append before execution. Engines
// that decide their children while executing embed a Group created with
// NewCompound, implement PerformExecute with Run and add children with
// ExecChild.
type Group struct {
	*Base
	children  []Command
	executing bool
	logger    *zap.Logger
}

// NewGroup creates a plain command group
func NewGroup(text string, children ...Command) *Group {
	g := &Group{logger: zap.L().Named("undo")}
	g.Base = New(KindGroup, text, g)
	for _, child := range children {
		if child != nil {
			g.children = append(g.children, child)
		}
	}
	return g
}

// NewCompound creates the group part of an engine command. performer is
// usually the engine itself, embedding the returned group.
func NewCompound(kind Kind, text string, performer Performer) *Group {
	g := &Group{logger: zap.L().Named("undo")}
	g.Base = New(kind, text, performer)
	return g
}

// Append adds a child to be executed with the group. Only allowed before
// the group runs.
func (g *Group) Append(cmd Command) error {
	if cmd == nil {
		return pkgerrors.NewLogicError("cannot append a nil command")
	}
	if g.State() != StateCreated || g.executing {
		return pkgerrors.NewLogicError("cannot append to command group " + g.Text() + " after it was executed")
	}
	g.children = append(g.children, cmd)
	return nil
}

// ExecChild executes a child immediately as part of the running group. The
// child is kept only if it changed something.
func (g *Group) ExecChild(cmd Command) (bool, error) {
	if !g.executing {
		return false, pkgerrors.NewLogicError("ExecChild called outside of group execution")
	}
	if cmd == nil {
		return false, pkgerrors.NewLogicError("cannot execute a nil command")
	}
	changed, err := cmd.Execute()
	if err != nil {
		return false, err
	}
	if changed {
		g.children = append(g.children, cmd)
	}
	return changed, nil
}

// ChildCount returns the number of children that changed the board
func (g *Group) ChildCount() int {
	return len(g.children)
}

// Run executes build as one transaction. Children executed by build are
// rolled back if it returns an error or panics.
func (g *Group) Run(build func() error) (bool, error) {
	if g.executing {
		return false, pkgerrors.NewLogicError("command group " + g.Text() + " is already executing")
	}
	g.executing = true
	defer func() { g.executing = false }()

	guard := NewRollbackGuard(g.rollback)
	defer guard.Close()

	if err := build(); err != nil {
		g.logger.Debug("Command group failed, rolling back",
			zap.String("group", g.Text()),
			zap.Int("children", len(g.children)),
			zap.Error(err),
		)
		return false, err
	}

	guard.Dismiss()
	return len(g.children) > 0, nil
}

// PerformExecute runs the appended children in order
func (g *Group) PerformExecute() (bool, error) {
	pending := g.children
	g.children = nil
	return g.Run(func() error {
		for _, child := range pending {
			if _, err := g.ExecChild(child); err != nil {
				return err
			}
		}
		return nil
	})
}

// PerformUndo undoes the children in reverse order
func (g *Group) PerformUndo() error {
	for i := len(g.children) - 1; i >= 0; i-- {
		if err := g.children[i].Undo(); err != nil {
			for j := i + 1; j < len(g.children); j++ {
				g.restore("redo", g.children[j].Redo())
			}
			return err
		}
	}
	return nil
}

// PerformRedo redoes the children in order
func (g *Group) PerformRedo() error {
	for i, child := range g.children {
		if err := child.Redo(); err != nil {
			for j := i - 1; j >= 0; j-- {
				g.restore("undo", g.children[j].Undo())
			}
			return err
		}
	}
	return nil
}

// rollback undoes the executed children in reverse order and forgets them
func (g *Group) rollback() {
	for i := len(g.children) - 1; i >= 0; i-- {
		g.restore("undo", g.children[i].Undo())
	}
	g.children = nil
}

// adopt records a child that the undo stack already executed
func (g *Group) adopt(cmd Command) {
	g.children = append(g.children, cmd)
}

// seal marks an interactively built group as executed
func (g *Group) seal() {
	g.state = StateExecuted
	g.changed = len(g.children) > 0
}

func (g *Group) restore(op string, err error) {
	if err != nil {
		g.logger.Error("Command group could not restore a child",
			zap.String("group", g.Text()),
			zap.String("operation", op),
			zap.Error(err),
		)
	}
}
