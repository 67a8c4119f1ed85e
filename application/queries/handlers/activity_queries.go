package handlers

import (
	"context"

	"boardedit/application/ports"
	"boardedit/application/projections"
	"boardedit/application/queries"
	"boardedit/application/queries/bus"
	"boardedit/domain/core/valueobjects"
)

// ActivityQueryHandler answers activity queries from the board activity
// projection
type ActivityQueryHandler struct {
	boards     ports.BoardRepository
	projection *projections.BoardActivityProjection
}

// NewActivityQueryHandler creates a new activity query handler
func NewActivityQueryHandler(boards ports.BoardRepository, projection *projections.BoardActivityProjection) *ActivityQueryHandler {
	return &ActivityQueryHandler{boards: boards, projection: projection}
}

// Register binds GetActivityQuery on the bus
func (h *ActivityQueryHandler) Register(b *bus.QueryBus) error {
	return b.Register(queries.GetActivityQuery{}, bus.QueryHandlerFunc(func(ctx context.Context, q bus.Query) (interface{}, error) {
		return h.GetActivity(ctx, q.(queries.GetActivityQuery))
	}))
}

// GetActivity returns the recent changes of a board, newest first
func (h *ActivityQueryHandler) GetActivity(ctx context.Context, q queries.GetActivityQuery) (*projections.BoardActivity, error) {
	if _, err := h.boards.GetByID(ctx, valueobjects.BoardID(q.BoardID)); err != nil {
		return nil, err
	}
	return h.projection.Activity(q.BoardID, q.Limit), nil
}
