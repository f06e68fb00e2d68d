package planner

import (
	"github.com/google/uuid"
	"github.com/nirvanaflow/api/internal/models"
	"github.com/nirvanaflow/api/internal/services/ai"
)

// Materialize turns validated generation output into persistence-ready
// subtask records linked to their parent event. Status always starts at
// todo regardless of anything the model emitted.
func Materialize(event *models.Event, generated []ai.GeneratedSubtask) []*models.Subtask {
	subtasks := make([]*models.Subtask, 0, len(generated))
	for _, g := range generated {
		subtasks = append(subtasks, &models.Subtask{
			ID:            uuid.New(),
			EventID:       event.ID,
			UserID:        event.UserID,
			Title:         g.Title,
			Status:        models.SubtaskStatusTodo,
			Priority:      models.SubtaskPriority(g.Priority),
			EstimatedTime: g.EstimatedTime,
		})
	}
	return subtasks
}
