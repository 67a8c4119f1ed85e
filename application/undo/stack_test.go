package undo_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boardedit/application/undo"
	pkgerrors "boardedit/pkg/errors"
)

type recordingObserver struct {
	committed []undo.Operation
	discarded []undo.Operation
	lastErr   error
}

func (o *recordingObserver) Committed(op undo.Operation, _ undo.Command) {
	o.committed = append(o.committed, op)
}

func (o *recordingObserver) Discarded(op undo.Operation, _ undo.Command, err error) {
	o.discarded = append(o.discarded, op)
	o.lastErr = err
}

type recordingRecorder struct {
	mu         sync.Mutex
	operations map[string]int
	undoDepth  int
	redoDepth  int
}

func (r *recordingRecorder) RecordStackOperation(op string, success bool, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.operations == nil {
		r.operations = make(map[string]int)
	}
	if success {
		r.operations[op]++
	}
}

func (r *recordingRecorder) SetStackDepth(undoDepth, redoDepth int) {
	r.undoDepth, r.redoDepth = undoDepth, redoDepth
}

func TestStack_ExecuteUndoRedo(t *testing.T) {
	j := newJournal()
	obs := &recordingObserver{}
	rec := &recordingRecorder{}
	s := undo.NewStack(undo.WithObserver(obs), undo.WithRecorder(rec))

	assert.False(t, s.CanUndo())
	assert.True(t, pkgerrors.IsConflict(s.Undo()))
	assert.True(t, pkgerrors.IsConflict(s.Redo()))

	changed, err := s.Execute(newStep(j, "a"))
	require.NoError(t, err)
	assert.True(t, changed)
	_, err = s.Execute(newStep(j, "b"))
	require.NoError(t, err)

	assert.Equal(t, 2, s.Count())
	assert.Equal(t, "b", s.UndoText())
	assert.Equal(t, "", s.RedoText())

	require.NoError(t, s.Undo())
	assert.True(t, s.CanRedo())
	assert.Equal(t, "b", s.RedoText())
	assert.Equal(t, "a", s.UndoText())
	assert.Equal(t, 1, rec.undoDepth)
	assert.Equal(t, 1, rec.redoDepth)

	require.NoError(t, s.Redo())
	assert.False(t, s.CanRedo())
	assert.Equal(t, map[string]bool{"a": true, "b": true}, j.value)

	assert.Equal(t, []undo.Operation{undo.OpExecute, undo.OpExecute, undo.OpUndo, undo.OpRedo}, obs.committed)
	assert.Equal(t, 2, rec.operations["execute"])
}

func TestStack_NoopAndFailedCommandsAreNotPushed(t *testing.T) {
	j := newJournal()
	obs := &recordingObserver{}
	s := undo.NewStack(undo.WithObserver(obs))

	noop := newStep(j, "noop")
	noop.noop = true
	changed, err := s.Execute(noop)
	require.NoError(t, err)
	assert.False(t, changed)

	failing := newStep(j, "fail")
	failing.failOn = "execute"
	_, err = s.Execute(failing)
	require.Error(t, err)

	assert.Equal(t, 0, s.Count())
	assert.Empty(t, obs.committed)
	assert.Equal(t, []undo.Operation{undo.OpExecute}, obs.discarded)
}

func TestStack_ExecuteTruncatesRedoTail(t *testing.T) {
	j := newJournal()
	s := undo.NewStack()
	_, _ = s.Execute(newStep(j, "a"))
	_, _ = s.Execute(newStep(j, "b"))
	require.NoError(t, s.Undo())

	_, err := s.Execute(newStep(j, "c"))
	require.NoError(t, err)
	assert.Equal(t, 2, s.Count())
	assert.False(t, s.CanRedo())
	assert.Equal(t, "c", s.UndoText())
}

func TestStack_MaxDepth(t *testing.T) {
	j := newJournal()
	s := undo.NewStack(undo.WithMaxDepth(2))
	for _, name := range []string{"a", "b", "c"} {
		_, err := s.Execute(newStep(j, name))
		require.NoError(t, err)
	}
	assert.Equal(t, 2, s.Count())

	require.NoError(t, s.Undo())
	require.NoError(t, s.Undo())
	assert.False(t, s.CanUndo())
	assert.Equal(t, map[string]bool{"a": true}, j.value, "oldest command fell off the stack")
}

func TestStack_CleanState(t *testing.T) {
	j := newJournal()
	s := undo.NewStack()
	assert.True(t, s.IsClean())

	_, _ = s.Execute(newStep(j, "a"))
	assert.False(t, s.IsClean())
	s.SetClean()
	assert.True(t, s.IsClean())

	require.NoError(t, s.Undo())
	assert.False(t, s.IsClean())
	require.NoError(t, s.Redo())
	assert.True(t, s.IsClean())

	require.NoError(t, s.Undo())
	_, _ = s.Execute(newStep(j, "b"))
	require.NoError(t, s.Undo())
	assert.False(t, s.IsClean(), "clean state was dropped with the redo tail")
}

func TestStack_GroupSession(t *testing.T) {
	j := newJournal()
	obs := &recordingObserver{}
	s := undo.NewStack(undo.WithObserver(obs))

	require.NoError(t, s.BeginGroup("draw trace"))
	assert.True(t, pkgerrors.IsLogic(s.BeginGroup("again")))
	_, err := s.Execute(newStep(j, "outside"))
	assert.True(t, pkgerrors.IsLogic(err))

	_, err = s.AppendToGroup(newStep(j, "a"))
	require.NoError(t, err)
	_, err = s.AppendToGroup(newStep(j, "b"))
	require.NoError(t, err)
	assert.False(t, s.CanUndo())

	changed, err := s.CommitGroup()
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 1, s.Count())
	assert.Equal(t, "draw trace", s.UndoText())

	require.NoError(t, s.Undo())
	assert.Empty(t, j.value)
	require.NoError(t, s.Redo())
	assert.Len(t, j.value, 2)
}

func TestStack_AbortGroup(t *testing.T) {
	j := newJournal()
	obs := &recordingObserver{}
	s := undo.NewStack(undo.WithObserver(obs))

	require.NoError(t, s.BeginGroup("draw trace"))
	_, err := s.AppendToGroup(newStep(j, "a"))
	require.NoError(t, err)

	require.NoError(t, s.AbortGroup())
	assert.Empty(t, j.value)
	assert.Equal(t, 0, s.Count())
	assert.True(t, pkgerrors.IsUserCanceled(obs.lastErr))
	assert.True(t, pkgerrors.IsLogic(s.AbortGroup()))

	require.NoError(t, s.BeginGroup("empty"))
	changed, err := s.CommitGroup()
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, 0, s.Count())
}
