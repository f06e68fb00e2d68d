package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/nirvanaflow/api/internal/middleware"
	"github.com/nirvanaflow/api/internal/models"
	"github.com/nirvanaflow/api/internal/queue"
	"github.com/nirvanaflow/api/internal/response"
	"github.com/nirvanaflow/api/internal/services/ai"
	"github.com/nirvanaflow/api/internal/services/planner"
	"github.com/nirvanaflow/api/internal/validation"
	"go.uber.org/zap"
)

// EventPlanner runs the decomposition pipeline for a new event
type EventPlanner interface {
	CreateEvent(ctx context.Context, userID uuid.UUID, input planner.CreateEventInput) (*models.Event, []*models.Subtask, error)
}

// EventStore is the event persistence surface the handler reads from
type EventStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Event, error)
	Delete(ctx context.Context, id, userID uuid.UUID) error
}

// SubtaskReader loads the subtasks belonging to an event
type SubtaskReader interface {
	GetByEventID(ctx context.Context, eventID uuid.UUID) ([]*models.Subtask, error)
}

// EventHandler handles event-related requests
type EventHandler struct {
	planner  EventPlanner
	events   EventStore
	subtasks SubtaskReader
	jobQueue queue.JobQueue
	logger   *zap.Logger
}

// NewEventHandler creates a new event handler
func NewEventHandler(eventPlanner EventPlanner, events EventStore, subtasks SubtaskReader, jobQueue queue.JobQueue, logger *zap.Logger) *EventHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventHandler{
		planner:  eventPlanner,
		events:   events,
		subtasks: subtasks,
		jobQueue: jobQueue,
		logger:   logger,
	}
}

// RegisterRoutes registers event routes on the given router
// The router should already have the /events prefix
func (h *EventHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListEvents).Methods("GET")
	r.HandleFunc("", h.CreateEvent).Methods("POST")
	r.HandleFunc("/from-calendar", h.CreateFromCalendar).Methods("POST")
	r.HandleFunc("/{id}", h.GetEvent).Methods("GET")
	r.HandleFunc("/{id}", h.DeleteEvent).Methods("DELETE")
}

// CreateEventRequest represents a create event request
type CreateEventRequest struct {
	Title       string     `json:"title" validate:"required,min=1,max=500"`
	Description string     `json:"description" validate:"max=10000"`
	Deadline    *time.Time `json:"deadline,omitempty"`
}

// CreateEventResponse bundles the created event with its generated subtasks
type CreateEventResponse struct {
	Event    *models.Event     `json:"event"`
	Subtasks []*models.Subtask `json:"subtasks"`
}

// ImportCalendarRequest represents a calendar entry queued for import
type ImportCalendarRequest struct {
	ID          string     `json:"id" validate:"required"`
	Title       string     `json:"title" validate:"required,min=1,max=500"`
	Description string     `json:"description" validate:"max=10000"`
	Start       *time.Time `json:"start,omitempty"`
	End         *time.Time `json:"end,omitempty"`
}

// ListEvents lists all events for the authenticated user
func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		response.Error(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	events, err := h.events.GetByUserID(r.Context(), user.ID)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve events")
		return
	}

	response.JSON(w, http.StatusOK, map[string]any{"events": events})
}

// CreateEvent creates a new event and its generated subtasks
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		response.Error(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	var req CreateEventRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	req.Title = validation.SanitizeText(req.Title)
	req.Description = validation.SanitizeText(req.Description)

	event, subtasks, err := h.planner.CreateEvent(r.Context(), user.ID, planner.CreateEventInput{
		Title:       req.Title,
		Description: req.Description,
		Deadline:    req.Deadline,
	})
	if err != nil {
		switch {
		case ai.IsParseError(err):
			h.logger.Error("generation_parse_failed",
				zap.String("user_id", user.ID.String()),
				zap.Error(err),
			)
			response.Error(w, http.StatusInternalServerError, "Internal Server Error", "Failed to generate subtasks")
		case ai.IsRateLimitError(err):
			response.Error(w, http.StatusTooManyRequests, "Rate Limit Exceeded", "Generation is rate limited, try again later")
		default:
			h.logger.Error("event_creation_failed",
				zap.String("user_id", user.ID.String()),
				zap.Error(err),
			)
			response.Error(w, http.StatusInternalServerError, "Internal Server Error", "Failed to create event")
		}
		return
	}

	response.JSON(w, http.StatusCreated, CreateEventResponse{Event: event, Subtasks: subtasks})
}

// CreateFromCalendar queues an imported calendar entry for asynchronous
// event creation. The import itself runs in the worker.
func (h *EventHandler) CreateFromCalendar(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		response.Error(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	var req ImportCalendarRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	job := queue.NewCalendarImportJob(user.ID, &models.CalendarEntry{
		ID:          req.ID,
		Title:       validation.SanitizeText(req.Title),
		Description: validation.SanitizeText(req.Description),
		Start:       req.Start,
		End:         req.End,
	})

	if err := h.jobQueue.Enqueue(r.Context(), job); err != nil {
		h.logger.Error("import_enqueue_failed",
			zap.String("user_id", user.ID.String()),
			zap.Error(err),
		)
		response.Error(w, http.StatusInternalServerError, "Internal Server Error", "Failed to queue calendar import")
		return
	}

	response.JSON(w, http.StatusAccepted, map[string]any{
		"queued": true,
		"job_id": job.ID,
	})
}

// GetEvent retrieves one event with its subtasks
func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		response.Error(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Bad Request", "Invalid event ID")
		return
	}

	ctx := r.Context()
	event, err := h.events.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			response.Error(w, http.StatusNotFound, "Not Found", "Event not found")
			return
		}
		response.Error(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve event")
		return
	}

	// Ownership check doubles as a 404 so event ids cannot be probed
	if event.UserID != user.ID {
		response.Error(w, http.StatusNotFound, "Not Found", "Event not found")
		return
	}

	subtasks, err := h.subtasks.GetByEventID(ctx, event.ID)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve subtasks")
		return
	}

	response.JSON(w, http.StatusOK, CreateEventResponse{Event: event, Subtasks: subtasks})
}

// DeleteEvent deletes an event and all of its subtasks
func (h *EventHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		response.Error(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Bad Request", "Invalid event ID")
		return
	}

	if err := h.events.Delete(r.Context(), id, user.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			response.Error(w, http.StatusNotFound, "Not Found", "Event not found")
			return
		}
		response.Error(w, http.StatusInternalServerError, "Internal Server Error", "Failed to delete event")
		return
	}

	response.JSON(w, http.StatusOK, map[string]any{"deleted": true})
}

// decodeAndValidate decodes a JSON body into dst and runs struct
// validation, writing the error response itself on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if maxBytesErr, ok := err.(*http.MaxBytesError); ok {
			response.Error(w, http.StatusRequestEntityTooLarge, "Request Entity Too Large", fmt.Sprintf("Request body exceeds maximum size of %d bytes", maxBytesErr.Limit))
			return false
		}
		response.Error(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return false
	}

	if err := validation.Validate.Struct(dst); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok && len(validationErrors) > 0 {
			response.Error(w, http.StatusBadRequest, "Bad Request", fmt.Sprintf("Validation failed: %s", validationErrors[0].Error()))
			return false
		}
		response.Error(w, http.StatusBadRequest, "Bad Request", "Validation failed")
		return false
	}

	return true
}
