package validation

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/nirvanaflow/api/internal/models"
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()

	// Register custom validators for enums
	// These should never fail in normal operation, but log if they do
	if err := Validate.RegisterValidation("subtask_status", validateSubtaskStatus); err != nil {
		panic(fmt.Sprintf("failed to register subtask_status validator: %v", err))
	}
	if err := Validate.RegisterValidation("subtask_priority", validateSubtaskPriority); err != nil {
		panic(fmt.Sprintf("failed to register subtask_priority validator: %v", err))
	}
}

// validateSubtaskStatus validates that a string is a valid SubtaskStatus enum value
func validateSubtaskStatus(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	switch models.SubtaskStatus(value) {
	case models.SubtaskStatusTodo, models.SubtaskStatusDoing, models.SubtaskStatusDone:
		return true
	default:
		return false
	}
}

// validateSubtaskPriority validates that a string is a valid SubtaskPriority enum value
func validateSubtaskPriority(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	switch models.SubtaskPriority(value) {
	case models.SubtaskPriorityLow, models.SubtaskPriorityMedium, models.SubtaskPriorityHigh:
		return true
	default:
		return false
	}
}

// SanitizeText sanitizes text input by trimming whitespace and removing control characters
func SanitizeText(text string) string {
	// Trim whitespace
	text = strings.TrimSpace(text)

	// Remove control characters except newline and tab
	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}

	return sanitized.String()
}

// ValidateSubtaskStatus validates a SubtaskStatus string value
func ValidateSubtaskStatus(value string) error {
	switch models.SubtaskStatus(value) {
	case models.SubtaskStatusTodo, models.SubtaskStatusDoing, models.SubtaskStatusDone:
		return nil
	default:
		return fmt.Errorf("invalid status: %s (must be 'todo', 'doing', or 'done')", value)
	}
}

// ValidateSubtaskPriority validates a SubtaskPriority string value
func ValidateSubtaskPriority(value string) error {
	switch models.SubtaskPriority(value) {
	case models.SubtaskPriorityLow, models.SubtaskPriorityMedium, models.SubtaskPriorityHigh:
		return nil
	default:
		return fmt.Errorf("invalid priority: %s (must be 'low', 'medium', or 'high')", value)
	}
}
