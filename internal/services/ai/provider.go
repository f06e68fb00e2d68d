package ai

import (
	"context"
)

// GeneratedSubtask is one entry of the model's decomposition output. It is
// untrusted until validated by parseSubtasks.
type GeneratedSubtask struct {
	Title         string `json:"title"`
	Priority      string `json:"priority"`
	EstimatedTime string `json:"estimated_time"`
}

// SubtaskGenerator breaks an event down into actionable subtasks
type SubtaskGenerator interface {
	// GenerateSubtasks asks the model to decompose the given title and
	// description. It returns a ParseError when the model output cannot be
	// turned into a valid subtask list; it never retries.
	GenerateSubtasks(ctx context.Context, title, description string) ([]GeneratedSubtask, error)
}

// ValidPriorities are the priority values the model is allowed to emit
var ValidPriorities = map[string]bool{
	"high":   true,
	"medium": true,
	"low":    true,
}
