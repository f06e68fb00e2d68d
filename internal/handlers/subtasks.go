package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/nirvanaflow/api/internal/middleware"
	"github.com/nirvanaflow/api/internal/models"
	"github.com/nirvanaflow/api/internal/response"
	"github.com/nirvanaflow/api/internal/validation"
	"go.uber.org/zap"
)

// SubtaskStore is the subtask persistence surface the handler uses
type SubtaskStore interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Subtask, error)
	GetByEventID(ctx context.Context, eventID uuid.UUID) ([]*models.Subtask, error)
	UpdateStatus(ctx context.Context, id, userID uuid.UUID, status models.SubtaskStatus) (*models.Subtask, error)
	Delete(ctx context.Context, id, userID uuid.UUID) error
}

// SubtaskHandler handles subtask-related requests
type SubtaskHandler struct {
	subtasks SubtaskStore
	logger   *zap.Logger
}

// NewSubtaskHandler creates a new subtask handler
func NewSubtaskHandler(subtasks SubtaskStore, logger *zap.Logger) *SubtaskHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubtaskHandler{subtasks: subtasks, logger: logger}
}

// RegisterRoutes registers subtask routes on the given router
// The router should already have the /subtasks prefix
func (h *SubtaskHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListSubtasks).Methods("GET")
	r.HandleFunc("/events/{id}", h.ListByEvent).Methods("GET")
	r.HandleFunc("/{id}", h.UpdateStatus).Methods("PATCH")
	r.HandleFunc("/{id}", h.DeleteSubtask).Methods("DELETE")
}

// UpdateSubtaskRequest represents a status update for a subtask
type UpdateSubtaskRequest struct {
	Status string `json:"status" validate:"required,subtask_status"`
}

// ListSubtasks lists all subtasks for the authenticated user
func (h *SubtaskHandler) ListSubtasks(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		response.Error(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	subtasks, err := h.subtasks.GetByUserID(r.Context(), user.ID)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve subtasks")
		return
	}

	response.JSON(w, http.StatusOK, map[string]any{"subtasks": subtasks})
}

// ListByEvent lists the subtasks belonging to one event
func (h *SubtaskHandler) ListByEvent(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		response.Error(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	eventID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Bad Request", "Invalid event ID")
		return
	}

	subtasks, err := h.subtasks.GetByEventID(r.Context(), eventID)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve subtasks")
		return
	}

	// Filter to the requesting user's subtasks so event ids cannot leak
	// another user's board
	owned := make([]*models.Subtask, 0, len(subtasks))
	for _, st := range subtasks {
		if st.UserID == user.ID {
			owned = append(owned, st)
		}
	}

	response.JSON(w, http.StatusOK, map[string]any{"subtasks": owned})
}

// UpdateStatus moves a subtask to a new board lane
func (h *SubtaskHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		response.Error(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Bad Request", "Invalid subtask ID")
		return
	}

	var req UpdateSubtaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}
	if err := validation.ValidateSubtaskStatus(req.Status); err != nil {
		response.Error(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	subtask, err := h.subtasks.UpdateStatus(r.Context(), id, user.ID, models.SubtaskStatus(req.Status))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			response.Error(w, http.StatusNotFound, "Not Found", "Subtask not found")
			return
		}
		h.logger.Error("subtask_status_update_failed",
			zap.String("subtask_id", id.String()),
			zap.Error(err),
		)
		response.Error(w, http.StatusInternalServerError, "Internal Server Error", "Failed to update subtask")
		return
	}

	response.JSON(w, http.StatusOK, subtask)
}

// DeleteSubtask deletes a single subtask
func (h *SubtaskHandler) DeleteSubtask(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		response.Error(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Bad Request", "Invalid subtask ID")
		return
	}

	if err := h.subtasks.Delete(r.Context(), id, user.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			response.Error(w, http.StatusNotFound, "Not Found", "Subtask not found")
			return
		}
		response.Error(w, http.StatusInternalServerError, "Internal Server Error", "Failed to delete subtask")
		return
	}

	response.JSON(w, http.StatusOK, map[string]any{"deleted": true})
}
