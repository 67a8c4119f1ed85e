package di

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boardedit/application/intents"
	"boardedit/application/projections"
	"boardedit/application/queries"
	"boardedit/domain/events"
	"boardedit/infrastructure/config"
	"boardedit/infrastructure/messaging/memory"
)

const demoBoard = "7d1c3a52-5a3e-4f0e-9f43-1c9b8f1f2a10"

func TestInitializeContainer(t *testing.T) {
	cfg, err := config.NewLoader(t.TempDir(), config.Production).Load()
	require.NoError(t, err)
	cfg.Logging.Level = "error"
	cfg.FixturesDir = filepath.Join("..", "..", "fixtures")

	c, err := InitializeContainer(context.Background(), cfg)
	require.NoError(t, err)

	ids, err := c.Boards.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, ids, 1)

	var published []string
	_, err = c.EventBus.Subscribe(memory.AllEvents, memory.HandlerFunc(
		func(_ context.Context, e events.DomainEvent) error {
			published = append(published, e.GetEventType())
			return nil
		}))
	require.NoError(t, err)

	res, err := c.CommandBus.Send(context.Background(), intents.AddFreePoint{
		BoardID: demoBoard,
		Signal:  "GND",
		X:       40,
		Y:       40,
		Layer:   "top_cu",
	})
	require.NoError(t, err)
	assert.True(t, res.(*intents.Result).Changed)
	assert.NotEmpty(t, published)

	view, err := c.QueryBus.Ask(context.Background(), queries.GetBoardQuery{BoardID: demoBoard})
	require.NoError(t, err)
	assert.Len(t, view.(*queries.BoardView).Segments, 3)

	activity, err := c.QueryBus.Ask(context.Background(), queries.GetActivityQuery{BoardID: demoBoard, Limit: 10})
	require.NoError(t, err)
	recent := activity.(*projections.BoardActivity).Recent
	require.Len(t, recent, len(published))
	assert.Equal(t, published[len(published)-1], recent[0].Type)
	assert.Equal(t, 1, c.Activity.Activity(demoBoard, 0).Counts[events.TypeSegmentAdded])
}

func TestInitializeContainer_InvalidFixture(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("signals: [A]\n"), 0o644))

	cfg, err := config.NewLoader(t.TempDir(), config.Production).Load()
	require.NoError(t, err)
	cfg.FixturesDir = dir

	_, err = InitializeContainer(context.Background(), cfg)
	assert.Error(t, err)
}
