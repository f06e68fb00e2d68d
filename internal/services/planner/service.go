package planner

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nirvanaflow/api/internal/models"
	"github.com/nirvanaflow/api/internal/services/ai"
	"go.uber.org/zap"
)

// EventStore persists events
type EventStore interface {
	Create(ctx context.Context, event *models.Event) error
}

// SubtaskStore persists subtasks
type SubtaskStore interface {
	CreateBatch(ctx context.Context, subtasks []*models.Subtask) error
}

// CreateEventInput is the user-supplied part of a new event
type CreateEventInput struct {
	Title       string
	Description string
	Deadline    *time.Time
}

// Service drives the decomposition pipeline: generate subtasks for an
// event, materialize them, and persist both.
type Service struct {
	events    EventStore
	subtasks  SubtaskStore
	generator ai.SubtaskGenerator
	logger    *zap.Logger
}

// NewService creates a new planner service
func NewService(events EventStore, subtasks SubtaskStore, generator ai.SubtaskGenerator, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		events:    events,
		subtasks:  subtasks,
		generator: generator,
		logger:    logger,
	}
}

// CreateEvent creates an event together with its generated subtasks.
// Generation runs before anything is persisted, so a parse failure leaves
// no trace. If the subtask batch fails after the event row landed, the
// event is kept and the error is returned; the caller sees a failure, not
// a partial success.
func (s *Service) CreateEvent(ctx context.Context, userID uuid.UUID, input CreateEventInput) (*models.Event, []*models.Subtask, error) {
	generated, err := s.generator.GenerateSubtasks(ctx, input.Title, input.Description)
	if err != nil {
		return nil, nil, fmt.Errorf("subtask generation failed: %w", err)
	}

	event := &models.Event{
		ID:          uuid.New(),
		UserID:      userID,
		Title:       input.Title,
		Description: input.Description,
		Deadline:    input.Deadline,
	}

	subtasks := Materialize(event, generated)

	if err := s.events.Create(ctx, event); err != nil {
		return nil, nil, fmt.Errorf("failed to persist event: %w", err)
	}

	if err := s.subtasks.CreateBatch(ctx, subtasks); err != nil {
		s.logger.Warn("subtask_persist_failed",
			zap.String("event_id", event.ID.String()),
			zap.String("user_id", userID.String()),
			zap.Int("subtask_count", len(subtasks)),
			zap.Error(err),
		)
		return nil, nil, fmt.Errorf("failed to persist subtasks: %w", err)
	}

	s.logger.Info("event_created",
		zap.String("event_id", event.ID.String()),
		zap.String("user_id", userID.String()),
		zap.Int("subtask_count", len(subtasks)),
	)

	return event, subtasks, nil
}

// CreateFromCalendar creates an event seeded from an imported calendar
// entry and runs the same decomposition pipeline.
func (s *Service) CreateFromCalendar(ctx context.Context, userID uuid.UUID, entry *models.CalendarEntry) (*models.Event, []*models.Subtask, error) {
	generated, err := s.generator.GenerateSubtasks(ctx, entry.Title, entry.Description)
	if err != nil {
		return nil, nil, fmt.Errorf("subtask generation failed: %w", err)
	}

	googleEventID := entry.ID
	event := &models.Event{
		ID:                uuid.New(),
		UserID:            userID,
		Title:             entry.Title,
		Description:       entry.Description,
		Deadline:          entry.End,
		CreatedFromGoogle: true,
		GoogleEventID:     &googleEventID,
	}

	subtasks := Materialize(event, generated)

	if err := s.events.Create(ctx, event); err != nil {
		return nil, nil, fmt.Errorf("failed to persist event: %w", err)
	}

	if err := s.subtasks.CreateBatch(ctx, subtasks); err != nil {
		s.logger.Warn("subtask_persist_failed",
			zap.String("event_id", event.ID.String()),
			zap.String("user_id", userID.String()),
			zap.Int("subtask_count", len(subtasks)),
			zap.Error(err),
		)
		return nil, nil, fmt.Errorf("failed to persist subtasks: %w", err)
	}

	s.logger.Info("event_imported",
		zap.String("event_id", event.ID.String()),
		zap.String("user_id", userID.String()),
		zap.String("google_event_id", entry.ID),
		zap.Int("subtask_count", len(subtasks)),
	)

	return event, subtasks, nil
}
