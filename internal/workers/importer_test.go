package workers

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/nirvanaflow/api/internal/models"
	"github.com/nirvanaflow/api/internal/queue"
	"github.com/nirvanaflow/api/internal/services/ai"
)

type fakePlanner struct {
	err   error
	calls int
}

func (f *fakePlanner) CreateFromCalendar(_ context.Context, userID uuid.UUID, entry *models.CalendarEntry) (*models.Event, []*models.Subtask, error) {
	f.calls++
	if f.err != nil {
		return nil, nil, f.err
	}
	event := &models.Event{ID: uuid.New(), UserID: userID, Title: entry.Title}
	return event, []*models.Subtask{{ID: uuid.New(), EventID: event.ID}}, nil
}

type fakeJobQueue struct {
	enqueued   []*queue.Job
	enqueueErr error
}

func (f *fakeJobQueue) Enqueue(_ context.Context, job *queue.Job) error {
	if f.enqueueErr != nil {
		return f.enqueueErr
	}
	f.enqueued = append(f.enqueued, job)
	return nil
}

func (f *fakeJobQueue) Consume(_ context.Context, _ int) (<-chan *queue.Message, <-chan error, error) {
	return nil, nil, errors.New("not implemented")
}

func (f *fakeJobQueue) Close() error                        { return nil }
func (f *fakeJobQueue) HealthCheck(_ context.Context) error { return nil }

func TestProcessCalendarImportJob(t *testing.T) {
	t.Parallel()

	entry := &models.CalendarEntry{ID: "google-evt-1", Title: "Team offsite"}

	t.Run("successful import", func(t *testing.T) {
		t.Parallel()
		planner := &fakePlanner{}
		jq := &fakeJobQueue{}
		importer := NewCalendarImporter(planner, jq, nil)

		job := queue.NewCalendarImportJob(uuid.New(), entry)
		if err := importer.ProcessCalendarImportJob(context.Background(), job); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if planner.calls != 1 {
			t.Errorf("planner called %d times, want 1", planner.calls)
		}
		if len(jq.enqueued) != 0 {
			t.Error("nothing should be re-enqueued on success")
		}
	})

	t.Run("missing entry", func(t *testing.T) {
		t.Parallel()
		importer := NewCalendarImporter(&fakePlanner{}, &fakeJobQueue{}, nil)

		job := &queue.Job{ID: uuid.New(), Type: queue.JobTypeCalendarImport, UserID: uuid.New()}
		if err := importer.ProcessCalendarImportJob(context.Background(), job); err == nil {
			t.Error("expected error for job without entry")
		}
	})

	t.Run("rate limited job is re-enqueued with a delay", func(t *testing.T) {
		t.Parallel()
		planner := &fakePlanner{err: &ai.APIError{StatusCode: 429, Type: "rate_limit_error"}}
		jq := &fakeJobQueue{}
		importer := NewCalendarImporter(planner, jq, nil)

		job := queue.NewCalendarImportJob(uuid.New(), entry)
		if err := importer.ProcessCalendarImportJob(context.Background(), job); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(jq.enqueued) != 1 {
			t.Fatalf("expected 1 re-enqueued job, got %d", len(jq.enqueued))
		}
		requeued := jq.enqueued[0]
		if requeued.RetryCount != 1 {
			t.Errorf("RetryCount = %d, want 1", requeued.RetryCount)
		}
		if requeued.NotBefore == nil {
			t.Error("expected NotBefore delay on requeued job")
		}
	})

	t.Run("rate limited job with exhausted retries fails", func(t *testing.T) {
		t.Parallel()
		planner := &fakePlanner{err: &ai.APIError{StatusCode: 429, Type: "rate_limit_error"}}
		jq := &fakeJobQueue{}
		importer := NewCalendarImporter(planner, jq, nil)

		job := queue.NewCalendarImportJob(uuid.New(), entry)
		job.RetryCount = job.MaxRetries
		if err := importer.ProcessCalendarImportJob(context.Background(), job); err == nil {
			t.Error("expected error when retries are exhausted")
		}
		if len(jq.enqueued) != 0 {
			t.Error("exhausted job must not be re-enqueued")
		}
	})

	t.Run("permanent failure surfaces", func(t *testing.T) {
		t.Parallel()
		planner := &fakePlanner{err: &ai.ParseError{Reason: "not json"}}
		jq := &fakeJobQueue{}
		importer := NewCalendarImporter(planner, jq, nil)

		job := queue.NewCalendarImportJob(uuid.New(), entry)
		if err := importer.ProcessCalendarImportJob(context.Background(), job); err == nil {
			t.Error("expected error")
		}
		if len(jq.enqueued) != 0 {
			t.Error("parse failures must not be retried")
		}
	})
}
