package models

import (
	"time"

	"github.com/google/uuid"
)

// Event is a user-defined top-level goal with a deadline. Subtasks are
// generated once when the event is created; they are never attached to an
// event through any other path.
type Event struct {
	ID                uuid.UUID  `json:"id"`
	UserID            uuid.UUID  `json:"user_id"`
	Title             string     `json:"title"`
	Description       string     `json:"description"`
	Deadline          *time.Time `json:"deadline,omitempty"`
	CreatedFromGoogle bool       `json:"created_from_google"`
	GoogleEventID     *string    `json:"google_event_id,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}
