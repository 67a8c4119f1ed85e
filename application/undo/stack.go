package undo

import (
	"sync"
	"time"

	"go.uber.org/zap"

	pkgerrors "boardedit/pkg/errors"
)

// Operation names a stack operation for observers and metrics
type Operation string

const (
	OpExecute Operation = "execute"
	OpUndo    Operation = "undo"
	OpRedo    Operation = "redo"
	OpCommit  Operation = "commit"
	OpAbort   Operation = "abort"
)

// Observer is told about every stack operation. Committed follows an
// operation that changed the board, Discarded one that failed or was
// aborted, leaving the board as it was before.
type Observer interface {
	Committed(op Operation, cmd Command)
	Discarded(op Operation, cmd Command, err error)
}

// Recorder receives stack metrics
type Recorder interface {
	RecordStackOperation(op string, success bool, duration time.Duration)
	SetStackDepth(undo, redo int)
}

// Stack is the undo/redo history of one board. Commands are executed
// through it; only commands that changed something are kept.
type Stack struct {
	mu         sync.Mutex
	commands   []Command
	index      int
	cleanIndex int
	maxDepth   int
	session    *Group
	observers  []Observer
	recorder   Recorder
	logger     *zap.Logger
}

// StackOption configures a Stack
type StackOption func(*Stack)

// WithMaxDepth limits the number of undoable commands. Zero means unlimited.
func WithMaxDepth(depth int) StackOption {
	return func(s *Stack) { s.maxDepth = depth }
}

// WithObserver registers an observer
func WithObserver(o Observer) StackOption {
	return func(s *Stack) { s.observers = append(s.observers, o) }
}

// WithRecorder sets the metrics recorder
func WithRecorder(r Recorder) StackOption {
	return func(s *Stack) { s.recorder = r }
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) StackOption {
	return func(s *Stack) { s.logger = l }
}

// NewStack creates an empty, clean stack
func NewStack(opts ...StackOption) *Stack {
	s := &Stack{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Execute runs cmd and pushes it if it changed the board. Any redoable
// commands are dropped.
func (s *Stack) Execute(cmd Command) (changed bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.track(OpExecute, time.Now(), &err)

	if s.session != nil {
		return false, pkgerrors.NewLogicError("cannot execute a command while group " + s.session.Text() + " is open")
	}
	if cmd == nil {
		return false, pkgerrors.NewLogicError("cannot execute a nil command")
	}

	changed, err = cmd.Execute()
	if err != nil {
		s.discarded(OpExecute, cmd, err)
		return false, err
	}
	if !changed {
		s.logger.Debug("Command changed nothing", zap.String("command", cmd.Text()))
		return false, nil
	}

	s.push(cmd)
	s.committed(OpExecute, cmd)
	return true, nil
}

// Undo reverts the most recent command
func (s *Stack) Undo() (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.track(OpUndo, time.Now(), &err)

	if s.session != nil {
		return pkgerrors.NewLogicError("cannot undo while group " + s.session.Text() + " is open")
	}
	if s.index == 0 {
		return pkgerrors.NewConflictError("nothing to undo")
	}

	cmd := s.commands[s.index-1]
	if err = cmd.Undo(); err != nil {
		s.discarded(OpUndo, cmd, err)
		return err
	}
	s.index--
	s.committed(OpUndo, cmd)
	return nil
}

// Redo reapplies the most recently undone command
func (s *Stack) Redo() (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.track(OpRedo, time.Now(), &err)

	if s.session != nil {
		return pkgerrors.NewLogicError("cannot redo while group " + s.session.Text() + " is open")
	}
	if s.index == len(s.commands) {
		return pkgerrors.NewConflictError("nothing to redo")
	}

	cmd := s.commands[s.index]
	if err = cmd.Redo(); err != nil {
		s.discarded(OpRedo, cmd, err)
		return err
	}
	s.index++
	s.committed(OpRedo, cmd)
	return nil
}

// BeginGroup opens an interactive group. Commands appended to it are
// executed right away and undone together.
func (s *Stack) BeginGroup(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session != nil {
		return pkgerrors.NewLogicError("group " + s.session.Text() + " is already open")
	}
	s.session = NewGroup(text)
	return nil
}

// AppendToGroup executes cmd inside the open group. A failing command leaves
// the group open with its earlier children applied; the caller decides
// whether to abort.
func (s *Stack) AppendToGroup(cmd Command) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return false, pkgerrors.NewLogicError("no command group is open")
	}
	if cmd == nil {
		return false, pkgerrors.NewLogicError("cannot append a nil command")
	}
	changed, err := cmd.Execute()
	if err != nil {
		return false, err
	}
	if changed {
		s.session.adopt(cmd)
	}
	return changed, nil
}

// CommitGroup closes the open group and pushes it if it changed anything
func (s *Stack) CommitGroup() (changed bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.track(OpCommit, time.Now(), &err)

	if s.session == nil {
		return false, pkgerrors.NewLogicError("no command group is open")
	}
	group := s.session
	s.session = nil

	group.seal()
	if !group.Changed() {
		return false, nil
	}
	s.push(group)
	s.committed(OpCommit, group)
	return true, nil
}

// AbortGroup undoes everything done inside the open group and closes it
func (s *Stack) AbortGroup() (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.track(OpAbort, time.Now(), &err)

	if s.session == nil {
		return pkgerrors.NewLogicError("no command group is open")
	}
	group := s.session
	s.session = nil

	group.rollback()
	s.discarded(OpAbort, group, pkgerrors.NewUserCanceledError(""))
	return nil
}

// IsGroupOpen reports whether an interactive group is open
func (s *Stack) IsGroupOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session != nil
}

// CanUndo reports whether there is a command to undo
func (s *Stack) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session == nil && s.index > 0
}

// CanRedo reports whether there is a command to redo
func (s *Stack) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session == nil && s.index < len(s.commands)
}

// UndoText describes the command Undo would revert
func (s *Stack) UndoText() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index == 0 {
		return ""
	}
	return s.commands[s.index-1].Text()
}

// RedoText describes the command Redo would reapply
func (s *Stack) RedoText() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index == len(s.commands) {
		return ""
	}
	return s.commands[s.index].Text()
}

// Count returns the number of commands in the history
func (s *Stack) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.commands)
}

// IsClean reports whether the board is at the state marked by SetClean
func (s *Stack) IsClean() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index == s.cleanIndex
}

// SetClean marks the current state as saved
func (s *Stack) SetClean() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cleanIndex = s.index
}

// Clear drops the whole history
func (s *Stack) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session != nil {
		return pkgerrors.NewLogicError("cannot clear while group " + s.session.Text() + " is open")
	}
	s.commands = nil
	s.index = 0
	s.cleanIndex = 0
	s.report()
	return nil
}

func (s *Stack) push(cmd Command) {
	if s.cleanIndex > s.index {
		s.cleanIndex = -1
	}
	s.commands = append(s.commands[:s.index], cmd)
	s.index++

	if s.maxDepth > 0 && len(s.commands) > s.maxDepth {
		drop := len(s.commands) - s.maxDepth
		s.commands = append([]Command(nil), s.commands[drop:]...)
		s.index -= drop
		if s.cleanIndex >= 0 {
			s.cleanIndex -= drop
			if s.cleanIndex < 0 {
				s.cleanIndex = -1
			}
		}
	}
}

func (s *Stack) committed(op Operation, cmd Command) {
	s.logger.Debug("Undo stack operation",
		zap.String("operation", string(op)),
		zap.String("command", cmd.Text()),
		zap.String("kind", string(cmd.Kind())),
		zap.Int("index", s.index),
	)
	for _, o := range s.observers {
		o.Committed(op, cmd)
	}
}

func (s *Stack) discarded(op Operation, cmd Command, err error) {
	s.logger.Info("Undo stack operation failed",
		zap.String("operation", string(op)),
		zap.String("command", cmd.Text()),
		zap.Error(err),
	)
	for _, o := range s.observers {
		o.Discarded(op, cmd, err)
	}
}

func (s *Stack) track(op Operation, start time.Time, err *error) {
	if s.recorder == nil {
		return
	}
	s.recorder.RecordStackOperation(string(op), *err == nil, time.Since(start))
	s.report()
}

func (s *Stack) report() {
	if s.recorder != nil {
		s.recorder.SetStackDepth(s.index, len(s.commands)-s.index)
	}
}
