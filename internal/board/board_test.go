package board

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/nirvanaflow/api/internal/models"
)

type fakeSubtaskStore struct {
	mu        sync.Mutex
	subtasks  []*models.Subtask
	updateErr error
	updates   int
}

func (f *fakeSubtaskStore) GetByUserID(_ context.Context, _ uuid.UUID) ([]*models.Subtask, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Subtask, 0, len(f.subtasks))
	for _, st := range f.subtasks {
		clone := *st
		out = append(out, &clone)
	}
	return out, nil
}

func (f *fakeSubtaskStore) UpdateStatus(_ context.Context, id, _ uuid.UUID, status models.SubtaskStatus) (*models.Subtask, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates++
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	for _, st := range f.subtasks {
		if st.ID == id {
			st.Status = status
			clone := *st
			return &clone, nil
		}
	}
	return nil, errors.New("subtask not found")
}

func newTestBoard(t *testing.T, store *fakeSubtaskStore, userID uuid.UUID) *Board {
	t.Helper()
	b := New(userID, store, nil)
	if err := b.Load(context.Background()); err != nil {
		t.Fatalf("failed to load board: %v", err)
	}
	return b
}

func laneCount(b *Board) int {
	total := 0
	for _, lane := range Lanes {
		total += len(b.Lane(lane))
	}
	return total
}

func TestBoardLoad(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	store := &fakeSubtaskStore{subtasks: []*models.Subtask{
		{ID: uuid.New(), UserID: userID, Title: "a", Status: models.SubtaskStatusTodo},
		{ID: uuid.New(), UserID: userID, Title: "b", Status: models.SubtaskStatusDoing},
		{ID: uuid.New(), UserID: userID, Title: "c", Status: models.SubtaskStatusDone},
		{ID: uuid.New(), UserID: userID, Title: "d", Status: models.SubtaskStatus("bogus")},
	}}

	b := newTestBoard(t, store, userID)

	if got := len(b.Lane(models.SubtaskStatusTodo)); got != 2 {
		t.Errorf("todo lane has %d cards, want 2 (unknown status lands in todo)", got)
	}
	if got := len(b.Lane(models.SubtaskStatusDoing)); got != 1 {
		t.Errorf("doing lane has %d cards, want 1", got)
	}
	if got := len(b.Lane(models.SubtaskStatusDone)); got != 1 {
		t.Errorf("done lane has %d cards, want 1", got)
	}
}

func TestBoardMove(t *testing.T) {
	t.Parallel()

	t.Run("confirmed move relocates the card", func(t *testing.T) {
		t.Parallel()
		userID := uuid.New()
		id := uuid.New()
		store := &fakeSubtaskStore{subtasks: []*models.Subtask{
			{ID: id, UserID: userID, Title: "a", Status: models.SubtaskStatusTodo},
		}}
		b := newTestBoard(t, store, userID)

		if err := b.Move(context.Background(), id, models.SubtaskStatusDone); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := len(b.Lane(models.SubtaskStatusDone)); got != 1 {
			t.Errorf("done lane has %d cards, want 1", got)
		}
		if got := len(b.Lane(models.SubtaskStatusTodo)); got != 0 {
			t.Errorf("todo lane has %d cards, want 0", got)
		}
		if laneCount(b) != 1 {
			t.Error("card appears in more than one lane")
		}
		if store.subtasks[0].Status != models.SubtaskStatusDone {
			t.Error("move was not persisted")
		}
	})

	t.Run("failed confirmation rolls back via reload", func(t *testing.T) {
		t.Parallel()
		userID := uuid.New()
		id := uuid.New()
		store := &fakeSubtaskStore{
			subtasks: []*models.Subtask{
				{ID: id, UserID: userID, Title: "a", Status: models.SubtaskStatusTodo},
			},
			updateErr: errors.New("db down"),
		}
		b := newTestBoard(t, store, userID)

		if err := b.Move(context.Background(), id, models.SubtaskStatusDoing); err == nil {
			t.Fatal("expected error")
		}
		if got := len(b.Lane(models.SubtaskStatusTodo)); got != 1 {
			t.Errorf("todo lane has %d cards after rollback, want 1", got)
		}
		if got := len(b.Lane(models.SubtaskStatusDoing)); got != 0 {
			t.Errorf("doing lane has %d cards after rollback, want 0", got)
		}
	})

	t.Run("drop onto same lane is a no-op", func(t *testing.T) {
		t.Parallel()
		userID := uuid.New()
		id := uuid.New()
		store := &fakeSubtaskStore{subtasks: []*models.Subtask{
			{ID: id, UserID: userID, Title: "a", Status: models.SubtaskStatusTodo},
		}}
		b := newTestBoard(t, store, userID)

		if err := b.Move(context.Background(), id, models.SubtaskStatusTodo); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if store.updates != 0 {
			t.Errorf("store saw %d updates, want 0", store.updates)
		}
	})

	t.Run("unknown subtask", func(t *testing.T) {
		t.Parallel()
		userID := uuid.New()
		b := newTestBoard(t, &fakeSubtaskStore{}, userID)

		if err := b.Move(context.Background(), uuid.New(), models.SubtaskStatusDone); !errors.Is(err, ErrNotOnBoard) {
			t.Errorf("expected ErrNotOnBoard, got %v", err)
		}
	})

	t.Run("unknown lane", func(t *testing.T) {
		t.Parallel()
		userID := uuid.New()
		b := newTestBoard(t, &fakeSubtaskStore{}, userID)

		if err := b.Move(context.Background(), uuid.New(), models.SubtaskStatus("archived")); err == nil {
			t.Error("expected error for unknown lane")
		}
	})

	t.Run("concurrent moves and reloads", func(t *testing.T) {
		t.Parallel()
		userID := uuid.New()
		id := uuid.New()
		store := &fakeSubtaskStore{subtasks: []*models.Subtask{
			{ID: id, UserID: userID, Title: "a", Status: models.SubtaskStatusTodo},
		}}
		b := newTestBoard(t, store, userID)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				_ = b.Load(context.Background())
			}
		}()
		go func() {
			defer wg.Done()
			lanes := []models.SubtaskStatus{
				models.SubtaskStatusDoing,
				models.SubtaskStatusDone,
				models.SubtaskStatusTodo,
			}
			for i := 0; i < 100; i++ {
				_ = b.Move(context.Background(), id, lanes[i%len(lanes)])
			}
		}()
		wg.Wait()

		if laneCount(b) != 1 {
			t.Errorf("board holds %d cards after concurrent use, want 1", laneCount(b))
		}
	})

	t.Run("any lane to any lane", func(t *testing.T) {
		t.Parallel()
		userID := uuid.New()
		id := uuid.New()
		store := &fakeSubtaskStore{subtasks: []*models.Subtask{
			{ID: id, UserID: userID, Title: "a", Status: models.SubtaskStatusDone},
		}}
		b := newTestBoard(t, store, userID)

		if err := b.Move(context.Background(), id, models.SubtaskStatusTodo); err != nil {
			t.Fatalf("backwards move failed: %v", err)
		}
		if got := len(b.Lane(models.SubtaskStatusTodo)); got != 1 {
			t.Errorf("todo lane has %d cards, want 1", got)
		}
	})
}
