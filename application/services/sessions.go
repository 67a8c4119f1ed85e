// Package services coordinates edit sessions: a loaded board together with
// its undo history.
package services

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"boardedit/application/ports"
	"boardedit/application/undo"
	domainconfig "boardedit/domain/config"
	"boardedit/domain/core/aggregates"
	"boardedit/domain/core/valueobjects"
	pkgerrors "boardedit/pkg/errors"
)

const publishTimeout = 5 * time.Second

// RecorderFactory hands out the metrics recorder for one board's stack
type RecorderFactory func(board valueobjects.BoardID) undo.Recorder

// EditSession is one board opened for editing. Edits and reads are
// serialised by the session lock.
type EditSession struct {
	mu       sync.RWMutex
	board    *aggregates.Board
	stack    *undo.Stack
	recorder undo.Recorder
}

// Execute builds a command against the board and runs it through the
// undo stack. While a group is open the command joins the group.
func (s *EditSession) Execute(build func(*aggregates.Board) (undo.Command, error)) (undo.Command, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cmd, err := build(s.board)
	if err != nil {
		return nil, false, err
	}
	var changed bool
	if s.stack.IsGroupOpen() {
		changed, err = s.stack.AppendToGroup(cmd)
	} else {
		changed, err = s.stack.Execute(cmd)
	}
	return cmd, changed, err
}

// BeginGroup opens a group: the edits that follow become one undo step
// once the group is committed.
func (s *EditSession) BeginGroup(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stack.IsGroupOpen() {
		return pkgerrors.NewConflictError("an edit group is already open")
	}
	return s.stack.BeginGroup(text)
}

// CommitGroup closes the open group and records it in the history
func (s *EditSession) CommitGroup() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.stack.IsGroupOpen() {
		return false, errNoGroup()
	}
	return s.stack.CommitGroup()
}

// AbortGroup reverts every edit of the open group and closes it
func (s *EditSession) AbortGroup() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.stack.IsGroupOpen() {
		return errNoGroup()
	}
	return s.stack.AbortGroup()
}

func errNoGroup() error {
	return pkgerrors.NewConflictError("no edit group is open")
}

// GroupOpen reports whether a group is collecting edits
func (s *EditSession) GroupOpen() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stack.IsGroupOpen()
}

// Undo reverts the last command
func (s *EditSession) Undo() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stack.Undo()
}

// Redo re-applies the last undone command
func (s *EditSession) Redo() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stack.Redo()
}

// View runs fn with shared access to the board
func (s *EditSession) View(fn func(*aggregates.Board) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.board)
}

// History reports what undo and redo would do next
func (s *EditSession) History() (canUndo, canRedo bool, undoText, redoText string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stack.CanUndo(), s.stack.CanRedo(), s.stack.UndoText(), s.stack.RedoText()
}

// SessionManager opens boards from the repository and keeps one edit
// session per board.
type SessionManager struct {
	repo      ports.BoardRepository
	publisher ports.EventPublisher
	recorders RecorderFactory
	logger    *zap.Logger

	mu       sync.Mutex
	maxDepth int
	rules    *domainconfig.DomainConfig
	sessions map[valueobjects.BoardID]*EditSession
}

// NewSessionManager creates a session manager. publisher and recorders may
// be nil.
func NewSessionManager(repo ports.BoardRepository, publisher ports.EventPublisher, recorders RecorderFactory, maxDepth int, logger *zap.Logger) *SessionManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionManager{
		repo:      repo,
		publisher: publisher,
		recorders: recorders,
		maxDepth:  maxDepth,
		logger:    logger,
		sessions:  make(map[valueobjects.BoardID]*EditSession),
	}
}

// UpdateRules sets the editing rules and history depth for boards opened
// from now on. Open sessions keep theirs until they are closed.
func (m *SessionManager) UpdateRules(rules *domainconfig.DomainConfig) {
	if rules == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules = rules
	m.maxDepth = rules.MaxUndoDepth
}

// Open returns the session of a board, loading the board on first use
func (m *SessionManager) Open(ctx context.Context, id valueobjects.BoardID) (*EditSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[id]; ok {
		return s, nil
	}

	board, err := m.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.rules != nil && board.Config() != m.rules {
		if err := board.ApplyConfig(m.rules); err != nil {
			return nil, pkgerrors.Wrapf(err, "applying editing rules to board %s", id)
		}
	}

	opts := []undo.StackOption{
		undo.WithMaxDepth(m.maxDepth),
		undo.WithLogger(m.logger.Named("undo").With(zap.String("board_id", id.String()))),
		undo.WithObserver(&eventForwarder{
			board:     board,
			repo:      m.repo,
			publisher: m.publisher,
			logger:    m.logger,
		}),
	}
	var recorder undo.Recorder
	if m.recorders != nil {
		recorder = m.recorders(id)
		opts = append(opts, undo.WithRecorder(recorder))
	}

	s := &EditSession{board: board, stack: undo.NewStack(opts...), recorder: recorder}
	m.sessions[id] = s
	m.logger.Info("Opened edit session", zap.String("board_id", id.String()))
	return s, nil
}

// Close drops the session of a board together with its history
func (m *SessionManager) Close(id valueobjects.BoardID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return
	}
	if f, ok := s.recorder.(interface{ Forget() }); ok {
		f.Forget()
	}
	delete(m.sessions, id)
}

// OpenCount returns the number of open sessions
func (m *SessionManager) OpenCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// eventForwarder publishes the board's events after every operation that
// changed it, and drops the events of failed ones.
type eventForwarder struct {
	board     *aggregates.Board
	repo      ports.BoardRepository
	publisher ports.EventPublisher
	logger    *zap.Logger
}

func (f *eventForwarder) Committed(op undo.Operation, cmd undo.Command) {
	evs := f.board.GetUncommittedEvents()
	f.board.MarkEventsAsCommitted()

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := f.repo.Save(ctx, f.board); err != nil {
		f.logger.Error("Failed to save board",
			zap.String("board_id", f.board.ID().String()),
			zap.Error(err),
		)
	}
	if f.publisher == nil || len(evs) == 0 {
		return
	}
	if err := f.publisher.PublishBatch(ctx, evs); err != nil {
		f.logger.Warn("Failed to publish board events",
			zap.String("board_id", f.board.ID().String()),
			zap.String("operation", string(op)),
			zap.String("command", cmd.Text()),
			zap.Int("events", len(evs)),
			zap.Error(err),
		)
	}
}

func (f *eventForwarder) Discarded(op undo.Operation, cmd undo.Command, err error) {
	dropped := f.board.GetUncommittedEvents()
	f.board.MarkEventsAsCommitted()
	f.logger.Debug("Discarded board events",
		zap.String("operation", string(op)),
		zap.Int("events", len(dropped)),
		zap.Error(err),
	)
}

var _ undo.Observer = (*eventForwarder)(nil)

