package workers

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nirvanaflow/api/internal/models"
	"github.com/nirvanaflow/api/internal/queue"
	"github.com/nirvanaflow/api/internal/services/ai"
	"go.uber.org/zap"
)

// RateLimitRetryDelay is how long a rate limited import waits before its
// retry becomes eligible
const RateLimitRetryDelay = time.Minute

// Planner turns a calendar entry into an event with generated subtasks
type Planner interface {
	CreateFromCalendar(ctx context.Context, userID uuid.UUID, entry *models.CalendarEntry) (*models.Event, []*models.Subtask, error)
}

// CalendarImporter processes calendar import jobs
type CalendarImporter struct {
	planner  Planner
	jobQueue queue.JobQueue // For re-enqueueing rate limited jobs with a delay
	logger   *zap.Logger
}

// NewCalendarImporter creates a new calendar importer
func NewCalendarImporter(planner Planner, jobQueue queue.JobQueue, logger *zap.Logger) *CalendarImporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CalendarImporter{
		planner:  planner,
		jobQueue: jobQueue,
		logger:   logger,
	}
}

// ProcessCalendarImportJob processes one calendar import job. Rate limited
// generations are re-enqueued with a delay while retries remain; every
// other failure is final and lands the message in the DLQ via nack.
func (i *CalendarImporter) ProcessCalendarImportJob(ctx context.Context, job *queue.Job) error {
	if job.Entry == nil {
		return fmt.Errorf("calendar entry is required for import job")
	}

	event, subtasks, err := i.planner.CreateFromCalendar(ctx, job.UserID, job.Entry)
	if err != nil {
		if ai.IsRateLimitError(err) && job.CanRetry() {
			job.IncrementRetry()
			notBefore := time.Now().Add(RateLimitRetryDelay)
			job.NotBefore = &notBefore
			if enqueueErr := i.jobQueue.Enqueue(ctx, job); enqueueErr != nil {
				return fmt.Errorf("failed to re-enqueue rate limited job: %w", enqueueErr)
			}
			i.logger.Info("import_job_requeued",
				zap.String("job_id", job.ID.String()),
				zap.String("user_id", job.UserID.String()),
				zap.Int("retry_count", job.RetryCount),
			)
			return nil
		}
		return fmt.Errorf("failed to import calendar entry: %w", err)
	}

	i.logger.Info("calendar_entry_imported",
		zap.String("job_id", job.ID.String()),
		zap.String("user_id", job.UserID.String()),
		zap.String("event_id", event.ID.String()),
		zap.String("google_event_id", job.Entry.ID),
		zap.Int("subtask_count", len(subtasks)),
	)

	return nil
}

// Run consumes import jobs until the context is cancelled
func (i *CalendarImporter) Run(ctx context.Context, jobQueue queue.JobQueue, prefetchCount int) error {
	messages, errs, err := jobQueue.Consume(ctx, prefetchCount)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case consumeErr, ok := <-errs:
			if !ok {
				return nil
			}
			i.logger.Error("queue_consume_error", zap.Error(consumeErr))
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			i.handleMessage(ctx, msg)
		}
	}
}

func (i *CalendarImporter) handleMessage(ctx context.Context, msg *queue.Message) {
	job := msg.GetJob()

	if job.Type != queue.JobTypeCalendarImport {
		i.logger.Warn("unexpected_job_type",
			zap.String("job_id", job.ID.String()),
			zap.String("type", string(job.Type)),
		)
		_ = msg.Nack(false)
		return
	}

	if err := i.ProcessCalendarImportJob(ctx, job); err != nil {
		i.logger.Error("import_job_failed",
			zap.String("job_id", job.ID.String()),
			zap.String("user_id", job.UserID.String()),
			zap.Error(err),
		)
		_ = msg.Nack(false)
		return
	}

	if err := msg.Ack(); err != nil {
		i.logger.Error("message_ack_failed",
			zap.String("job_id", job.ID.String()),
			zap.Error(err),
		)
	}
}
