package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_Singleton(t *testing.T) {
	ResetForTesting()
	t.Cleanup(ResetForTesting)

	a := NewCollector("boardedit")
	b := NewCollector("other")
	assert.Same(t, a, b)

	ResetForTesting()
	assert.NotSame(t, a, NewCollector("boardedit"))
}

func TestBoardRecorder(t *testing.T) {
	ResetForTesting()
	t.Cleanup(ResetForTesting)
	c := NewCollector("boardedit")

	r := c.ForBoard("b1")
	r.RecordStackOperation("execute", true, time.Millisecond)
	r.RecordStackOperation("undo", false, time.Millisecond)
	r.SetStackDepth(3, 1)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.StackOperations.WithLabelValues("execute", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.StackOperations.WithLabelValues("undo", "error")))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.UndoDepth.WithLabelValues("b1")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.RedoDepth.WithLabelValues("b1")))

	r.Forget()
	assert.Equal(t, 0, testutil.CollectAndCount(c.UndoDepth))
	assert.Equal(t, 0, testutil.CollectAndCount(c.RedoDepth))
}

func TestCollector_Counters(t *testing.T) {
	ResetForTesting()
	t.Cleanup(ResetForTesting)
	c := NewCollector("boardedit")

	c.RecordIntent("PlaceNetPoint", true, time.Millisecond)
	c.RecordQuery("GetBoardQuery", false)
	c.RecordEvents(4, true)
	c.RecordEventType("board.point_added")

	assert.Equal(t, 1.0, testutil.ToFloat64(c.Intents.WithLabelValues("PlaceNetPoint", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Queries.WithLabelValues("GetBoardQuery", "error")))
	assert.Equal(t, 4.0, testutil.ToFloat64(c.EventsPublished.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.EventsByType.WithLabelValues("board.point_added")))

	families, err := c.GetRegistry().Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}
