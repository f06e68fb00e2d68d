package planner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nirvanaflow/api/internal/models"
	"github.com/nirvanaflow/api/internal/services/ai"
)

type fakeGenerator struct {
	subtasks []ai.GeneratedSubtask
	err      error
}

func (f *fakeGenerator) GenerateSubtasks(_ context.Context, _, _ string) ([]ai.GeneratedSubtask, error) {
	return f.subtasks, f.err
}

type fakeEventStore struct {
	created []*models.Event
	err     error
}

func (f *fakeEventStore) Create(_ context.Context, event *models.Event) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, event)
	return nil
}

type fakeSubtaskStore struct {
	created []*models.Subtask
	err     error
}

func (f *fakeSubtaskStore) CreateBatch(_ context.Context, subtasks []*models.Subtask) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, subtasks...)
	return nil
}

func TestMaterialize(t *testing.T) {
	t.Parallel()

	event := &models.Event{ID: uuid.New(), UserID: uuid.New()}
	generated := []ai.GeneratedSubtask{
		{Title: "Research frameworks", Priority: "high", EstimatedTime: "1 hour"},
		{Title: "Set up boilerplate", Priority: "medium", EstimatedTime: "2 hours"},
		{Title: "Write docs", Priority: "low", EstimatedTime: "30 mins"},
	}

	subtasks := Materialize(event, generated)

	if len(subtasks) != len(generated) {
		t.Fatalf("got %d subtasks, want %d", len(subtasks), len(generated))
	}
	for i, st := range subtasks {
		if st.Status != models.SubtaskStatusTodo {
			t.Errorf("subtask %d status = %q, want todo", i, st.Status)
		}
		if st.EventID != event.ID {
			t.Errorf("subtask %d not linked to event", i)
		}
		if st.UserID != event.UserID {
			t.Errorf("subtask %d not linked to user", i)
		}
		if st.Title != generated[i].Title {
			t.Errorf("subtask %d title = %q, want %q", i, st.Title, generated[i].Title)
		}
		if st.ID == uuid.Nil {
			t.Errorf("subtask %d has no id", i)
		}
	}
	if subtasks[0].Priority != models.SubtaskPriorityHigh {
		t.Errorf("priority = %q, want high", subtasks[0].Priority)
	}
}

func TestMaterializeEmpty(t *testing.T) {
	t.Parallel()

	event := &models.Event{ID: uuid.New(), UserID: uuid.New()}
	if got := Materialize(event, nil); len(got) != 0 {
		t.Errorf("expected no subtasks, got %d", len(got))
	}
}

func TestServiceCreateEvent(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	deadline := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	input := CreateEventInput{Title: "Launch website", Description: "Build and ship", Deadline: &deadline}
	generated := []ai.GeneratedSubtask{
		{Title: "Design landing page", Priority: "high", EstimatedTime: "2 hours"},
		{Title: "Deploy", Priority: "medium", EstimatedTime: "1 hour"},
	}

	t.Run("persists event and subtasks", func(t *testing.T) {
		t.Parallel()
		events := &fakeEventStore{}
		subtasks := &fakeSubtaskStore{}
		svc := NewService(events, subtasks, &fakeGenerator{subtasks: generated}, nil)

		event, created, err := svc.CreateEvent(context.Background(), userID, input)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if event.UserID != userID || event.Title != input.Title {
			t.Error("event fields not set from input")
		}
		if event.Deadline == nil || !event.Deadline.Equal(deadline) {
			t.Error("deadline not carried over")
		}
		if len(created) != 2 || len(subtasks.created) != 2 {
			t.Fatalf("expected 2 persisted subtasks, got %d returned / %d stored", len(created), len(subtasks.created))
		}
		if len(events.created) != 1 {
			t.Fatalf("expected 1 persisted event, got %d", len(events.created))
		}
	})

	t.Run("parse error persists nothing", func(t *testing.T) {
		t.Parallel()
		events := &fakeEventStore{}
		subtasks := &fakeSubtaskStore{}
		svc := NewService(events, subtasks, &fakeGenerator{err: &ai.ParseError{Reason: "not json"}}, nil)

		_, _, err := svc.CreateEvent(context.Background(), userID, input)
		if !ai.IsParseError(err) {
			t.Fatalf("expected wrapped ParseError, got %v", err)
		}
		if len(events.created) != 0 || len(subtasks.created) != 0 {
			t.Error("nothing should be persisted on generation failure")
		}
	})

	t.Run("event persist failure surfaces", func(t *testing.T) {
		t.Parallel()
		events := &fakeEventStore{err: errors.New("db down")}
		subtasks := &fakeSubtaskStore{}
		svc := NewService(events, subtasks, &fakeGenerator{subtasks: generated}, nil)

		if _, _, err := svc.CreateEvent(context.Background(), userID, input); err == nil {
			t.Fatal("expected error")
		}
		if len(subtasks.created) != 0 {
			t.Error("subtasks must not be persisted when the event insert fails")
		}
	})

	t.Run("subtask persist failure surfaces with event kept", func(t *testing.T) {
		t.Parallel()
		events := &fakeEventStore{}
		subtasks := &fakeSubtaskStore{err: errors.New("db down")}
		svc := NewService(events, subtasks, &fakeGenerator{subtasks: generated}, nil)

		if _, _, err := svc.CreateEvent(context.Background(), userID, input); err == nil {
			t.Fatal("expected error")
		}
		if len(events.created) != 1 {
			t.Error("event row is kept when only the subtask batch fails")
		}
	})
}

func TestServiceCreateFromCalendar(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	end := time.Date(2025, 7, 1, 15, 0, 0, 0, time.UTC)
	entry := &models.CalendarEntry{
		ID:          "google-evt-1",
		Title:       "Team offsite",
		Description: "Plan agenda",
		End:         &end,
	}

	events := &fakeEventStore{}
	subtasks := &fakeSubtaskStore{}
	generated := []ai.GeneratedSubtask{{Title: "Book venue", Priority: "high", EstimatedTime: "1 hour"}}
	svc := NewService(events, subtasks, &fakeGenerator{subtasks: generated}, nil)

	event, created, err := svc.CreateFromCalendar(context.Background(), userID, entry)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !event.CreatedFromGoogle {
		t.Error("expected CreatedFromGoogle to be set")
	}
	if event.GoogleEventID == nil || *event.GoogleEventID != entry.ID {
		t.Error("expected google event id to be carried over")
	}
	if event.Deadline == nil || !event.Deadline.Equal(end) {
		t.Error("expected calendar end time as deadline")
	}
	if len(created) != 1 {
		t.Fatalf("expected 1 subtask, got %d", len(created))
	}
}
