package board

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/nirvanaflow/api/internal/models"
	"go.uber.org/zap"
)

// ErrNotOnBoard is returned when a move references a subtask the board
// does not hold
var ErrNotOnBoard = errors.New("subtask not on board")

// Lanes are the three board columns in display order
var Lanes = []models.SubtaskStatus{
	models.SubtaskStatusTodo,
	models.SubtaskStatusDoing,
	models.SubtaskStatusDone,
}

// SubtaskStore is the persistence surface the board confirms moves against
type SubtaskStore interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Subtask, error)
	UpdateStatus(ctx context.Context, id, userID uuid.UUID, status models.SubtaskStatus) (*models.Subtask, error)
}

// Board holds one user's subtasks grouped into lanes and reconciles
// drag-and-drop moves against the store. A move is applied locally first,
// then confirmed; a failed confirmation reloads the board from the store
// so local state never drifts from what is persisted.
type Board struct {
	mu     sync.Mutex
	userID uuid.UUID
	store  SubtaskStore
	lanes  map[models.SubtaskStatus][]*models.Subtask
	logger *zap.Logger
}

// New creates an empty board for the user
func New(userID uuid.UUID, store SubtaskStore, logger *zap.Logger) *Board {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Board{
		userID: userID,
		store:  store,
		lanes:  emptyLanes(),
		logger: logger,
	}
}

func emptyLanes() map[models.SubtaskStatus][]*models.Subtask {
	lanes := make(map[models.SubtaskStatus][]*models.Subtask, len(Lanes))
	for _, lane := range Lanes {
		lanes[lane] = nil
	}
	return lanes
}

// Load replaces board state with the user's persisted subtasks. Subtasks
// with an unknown status are dropped into the todo lane rather than lost.
func (b *Board) Load(ctx context.Context) error {
	subtasks, err := b.store.GetByUserID(ctx, b.userID)
	if err != nil {
		return fmt.Errorf("failed to load board: %w", err)
	}

	lanes := emptyLanes()
	for _, st := range subtasks {
		lane := st.Status
		if _, ok := lanes[lane]; !ok {
			lane = models.SubtaskStatusTodo
		}
		lanes[lane] = append(lanes[lane], st)
	}

	b.mu.Lock()
	b.lanes = lanes
	b.mu.Unlock()

	return nil
}

// Lane returns a copy of the subtasks in one lane
func (b *Board) Lane(status models.SubtaskStatus) []*models.Subtask {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*models.Subtask(nil), b.lanes[status]...)
}

// Move relocates a subtask to the target lane optimistically and confirms
// the move with the store. Any lane-to-lane transition is allowed. Dropping
// a card back onto its own lane is a no-op and hits neither the store nor
// local state. On a failed confirmation the board is reloaded from the
// store and the error is returned.
func (b *Board) Move(ctx context.Context, subtaskID uuid.UUID, to models.SubtaskStatus) error {
	b.mu.Lock()
	if _, ok := b.lanes[to]; !ok {
		b.mu.Unlock()
		return fmt.Errorf("unknown lane %q", to)
	}
	subtask, from := b.locate(subtaskID)
	if subtask == nil {
		b.mu.Unlock()
		return ErrNotOnBoard
	}
	if from == to {
		b.mu.Unlock()
		return nil
	}

	b.removeFromLane(from, subtaskID)
	subtask.Status = to
	b.lanes[to] = append(b.lanes[to], subtask)
	b.mu.Unlock()

	if _, err := b.store.UpdateStatus(ctx, subtaskID, b.userID, to); err != nil {
		b.logger.Warn("board_move_rollback",
			zap.String("subtask_id", subtaskID.String()),
			zap.String("from", string(from)),
			zap.String("to", string(to)),
			zap.Error(err),
		)
		if reloadErr := b.Load(ctx); reloadErr != nil {
			b.logger.Error("board_reload_failed",
				zap.String("user_id", b.userID.String()),
				zap.Error(reloadErr),
			)
		}
		return fmt.Errorf("move not confirmed: %w", err)
	}

	return nil
}

// locate finds a subtask and its lane; callers hold the lock
func (b *Board) locate(subtaskID uuid.UUID) (*models.Subtask, models.SubtaskStatus) {
	for _, lane := range Lanes {
		for _, st := range b.lanes[lane] {
			if st.ID == subtaskID {
				return st, lane
			}
		}
	}
	return nil, ""
}

func (b *Board) removeFromLane(lane models.SubtaskStatus, subtaskID uuid.UUID) {
	subtasks := b.lanes[lane]
	for i, st := range subtasks {
		if st.ID == subtaskID {
			b.lanes[lane] = append(subtasks[:i], subtasks[i+1:]...)
			return
		}
	}
}
