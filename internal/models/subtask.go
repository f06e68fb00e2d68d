package models

import (
	"time"

	"github.com/google/uuid"
)

// SubtaskStatus is the board lane a subtask currently sits in
type SubtaskStatus string

const (
	SubtaskStatusTodo  SubtaskStatus = "todo"
	SubtaskStatusDoing SubtaskStatus = "doing"
	SubtaskStatusDone  SubtaskStatus = "done"
)

// SubtaskPriority is the generator-assigned importance of a subtask
type SubtaskPriority string

const (
	SubtaskPriorityLow    SubtaskPriority = "low"
	SubtaskPriorityMedium SubtaskPriority = "medium"
	SubtaskPriorityHigh   SubtaskPriority = "high"
)

// Subtask is a generated, independently trackable unit of work. Every subtask
// belongs to exactly one event and is deleted together with it.
type Subtask struct {
	ID            uuid.UUID       `json:"id"`
	EventID       uuid.UUID       `json:"event_id"`
	UserID        uuid.UUID       `json:"user_id"`
	Title         string          `json:"title"`
	Status        SubtaskStatus   `json:"status"`
	Priority      SubtaskPriority `json:"priority"`
	EstimatedTime string          `json:"estimated_time,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}
