package memory

import (
	"context"
	"sort"
	"sync"

	"boardedit/application/ports"
	"boardedit/domain/core/aggregates"
	"boardedit/domain/core/valueobjects"
	pkgerrors "boardedit/pkg/errors"
)

// BoardRepository keeps boards in process memory. Boards are stored by
// reference: an edit session and the repository share one aggregate.
type BoardRepository struct {
	mu     sync.RWMutex
	boards map[valueobjects.BoardID]*aggregates.Board
}

// NewBoardRepository creates an empty repository
func NewBoardRepository() *BoardRepository {
	return &BoardRepository{
		boards: make(map[valueobjects.BoardID]*aggregates.Board),
	}
}

var _ ports.BoardRepository = (*BoardRepository)(nil)

// Save stores a board (create or update)
func (r *BoardRepository) Save(ctx context.Context, board *aggregates.Board) error {
	if board == nil {
		return pkgerrors.NewValidationError("board cannot be nil")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.boards[board.ID()] = board
	return nil
}

// GetByID retrieves a board by its ID
func (r *BoardRepository) GetByID(ctx context.Context, id valueobjects.BoardID) (*aggregates.Board, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	board, exists := r.boards[id]
	if !exists {
		return nil, pkgerrors.NewNotFoundError("board " + id.String())
	}
	return board, nil
}

// List returns the ids of all stored boards
func (r *BoardRepository) List(ctx context.Context) ([]valueobjects.BoardID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]valueobjects.BoardID, 0, len(r.boards))
	for id := range r.boards {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// Delete removes a board
func (r *BoardRepository) Delete(ctx context.Context, id valueobjects.BoardID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.boards[id]; !exists {
		return pkgerrors.NewNotFoundError("board " + id.String())
	}
	delete(r.boards, id)
	return nil
}
