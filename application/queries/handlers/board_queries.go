// Package handlers answers board queries from the open edit sessions
package handlers

import (
	"context"

	"go.uber.org/zap"

	"boardedit/application/queries"
	"boardedit/application/queries/bus"
	"boardedit/application/services"
	"boardedit/domain/core/aggregates"
	"boardedit/domain/core/valueobjects"
	pkgerrors "boardedit/pkg/errors"
)

// BoardQueryHandler answers read-side queries. Reads go through the board's
// edit session so that they never observe a half-applied edit.
type BoardQueryHandler struct {
	sessions *services.SessionManager
	logger   *zap.Logger
}

// NewBoardQueryHandler creates a new board query handler
func NewBoardQueryHandler(sessions *services.SessionManager, logger *zap.Logger) *BoardQueryHandler {
	return &BoardQueryHandler{
		sessions: sessions,
		logger:   logger,
	}
}

// Register binds every query type to its handler on the bus
func (h *BoardQueryHandler) Register(b *bus.QueryBus) error {
	if err := b.Register(queries.GetBoardQuery{}, bus.QueryHandlerFunc(func(ctx context.Context, q bus.Query) (interface{}, error) {
		return h.GetBoard(ctx, q.(queries.GetBoardQuery))
	})); err != nil {
		return err
	}
	if err := b.Register(queries.GetSegmentQuery{}, bus.QueryHandlerFunc(func(ctx context.Context, q bus.Query) (interface{}, error) {
		return h.GetSegment(ctx, q.(queries.GetSegmentQuery))
	})); err != nil {
		return err
	}
	return b.Register(queries.ItemsAtQuery{}, bus.QueryHandlerFunc(func(ctx context.Context, q bus.Query) (interface{}, error) {
		return h.ItemsAt(ctx, q.(queries.ItemsAtQuery))
	}))
}

// GetBoard returns the routing view of a board
func (h *BoardQueryHandler) GetBoard(ctx context.Context, q queries.GetBoardQuery) (*queries.BoardView, error) {
	var view *queries.BoardView
	err := h.view(ctx, q.BoardID, func(b *aggregates.Board) error {
		view = queries.NewBoardView(b)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// GetSegment returns one segment with its points and lines
func (h *BoardQueryHandler) GetSegment(ctx context.Context, q queries.GetSegmentQuery) (*queries.SegmentView, error) {
	var view queries.SegmentView
	err := h.view(ctx, q.BoardID, func(b *aggregates.Board) error {
		seg, err := b.Segment(valueobjects.SegmentID(q.SegmentID))
		if err != nil {
			return err
		}
		view = queries.NewSegmentView(b, seg)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// ItemsAt lists what a click at the position would hit
func (h *BoardQueryHandler) ItemsAt(ctx context.Context, q queries.ItemsAtQuery) (*queries.ItemsView, error) {
	var view *queries.ItemsView
	err := h.view(ctx, q.BoardID, func(b *aggregates.Board) error {
		view = queries.NewItemsView(b, valueobjects.PositionFromMM(q.X, q.Y), valueobjects.Layer(q.Layer))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (h *BoardQueryHandler) view(ctx context.Context, boardID string, fn func(*aggregates.Board) error) error {
	session, err := h.sessions.Open(ctx, valueobjects.BoardID(boardID))
	if err != nil {
		if !pkgerrors.IsNotFound(err) {
			h.logger.Error("Failed to open board for reading",
				zap.String("board_id", boardID),
				zap.Error(err),
			)
		}
		return err
	}
	return session.View(fn)
}
