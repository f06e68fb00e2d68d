package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nirvanaflow/api/internal/models"
)

// SubtaskRepository handles subtask database operations
type SubtaskRepository struct {
	db *DB
}

// NewSubtaskRepository creates a new subtask repository
func NewSubtaskRepository(db *DB) *SubtaskRepository {
	return &SubtaskRepository{db: db}
}

// Create creates a single subtask
func (r *SubtaskRepository) Create(ctx context.Context, subtask *models.Subtask) error {
	query := `
		INSERT INTO subtasks (id, event_id, user_id, title, status, priority, estimated_time, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`

	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		subtask.ID,
		subtask.EventID,
		subtask.UserID,
		subtask.Title,
		subtask.Status,
		subtask.Priority,
		subtask.EstimatedTime,
		now,
		now,
	).Scan(&subtask.CreatedAt, &subtask.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create subtask: %w", err)
	}

	return nil
}

// CreateBatch inserts all subtasks in a single transaction. Either every
// subtask lands or none does.
func (r *SubtaskRepository) CreateBatch(ctx context.Context, subtasks []*models.Subtask) error {
	if len(subtasks) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	now := time.Now()
	placeholders := make([]string, 0, len(subtasks))
	args := make([]interface{}, 0, len(subtasks)*9)
	for i, subtask := range subtasks {
		base := i * 9
		placeholders = append(placeholders, fmt.Sprintf(
			"($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8, base+9,
		))
		args = append(args,
			subtask.ID,
			subtask.EventID,
			subtask.UserID,
			subtask.Title,
			subtask.Status,
			subtask.Priority,
			subtask.EstimatedTime,
			now,
			now,
		)
		subtask.CreatedAt = now
		subtask.UpdatedAt = now
	}

	query := `
		INSERT INTO subtasks (id, event_id, user_id, title, status, priority, estimated_time, created_at, updated_at)
		VALUES ` + strings.Join(placeholders, ", ")

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert subtasks: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit subtasks: %w", err)
	}

	return nil
}

// GetByID retrieves a subtask by ID
func (r *SubtaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Subtask, error) {
	subtask := &models.Subtask{}

	query := `
		SELECT id, event_id, user_id, title, status, priority, estimated_time, created_at, updated_at
		FROM subtasks
		WHERE id = $1
	`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&subtask.ID,
		&subtask.EventID,
		&subtask.UserID,
		&subtask.Title,
		&subtask.Status,
		&subtask.Priority,
		&subtask.EstimatedTime,
		&subtask.CreatedAt,
		&subtask.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("subtask not found: %w", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get subtask: %w", err)
	}

	return subtask, nil
}

// GetByUserID retrieves all subtasks for a user
func (r *SubtaskRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Subtask, error) {
	query := `
		SELECT id, event_id, user_id, title, status, priority, estimated_time, created_at, updated_at
		FROM subtasks
		WHERE user_id = $1
		ORDER BY created_at ASC
	`

	return r.queryMany(ctx, query, userID)
}

// GetByEventID retrieves all subtasks belonging to an event
func (r *SubtaskRepository) GetByEventID(ctx context.Context, eventID uuid.UUID) ([]*models.Subtask, error) {
	query := `
		SELECT id, event_id, user_id, title, status, priority, estimated_time, created_at, updated_at
		FROM subtasks
		WHERE event_id = $1
		ORDER BY created_at ASC
	`

	return r.queryMany(ctx, query, eventID)
}

func (r *SubtaskRepository) queryMany(ctx context.Context, query string, arg interface{}) ([]*models.Subtask, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query subtasks: %w", err)
	}
	defer rows.Close()

	var subtasks []*models.Subtask
	for rows.Next() {
		subtask := &models.Subtask{}
		err := rows.Scan(
			&subtask.ID,
			&subtask.EventID,
			&subtask.UserID,
			&subtask.Title,
			&subtask.Status,
			&subtask.Priority,
			&subtask.EstimatedTime,
			&subtask.CreatedAt,
			&subtask.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan subtask: %w", err)
		}
		subtasks = append(subtasks, subtask)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating subtasks: %w", err)
	}

	return subtasks, nil
}

// UpdateStatus moves a subtask to a new status. Ownership is enforced via
// user_id so one user cannot move another user's card.
func (r *SubtaskRepository) UpdateStatus(ctx context.Context, id, userID uuid.UUID, status models.SubtaskStatus) (*models.Subtask, error) {
	subtask := &models.Subtask{}

	query := `
		UPDATE subtasks
		SET status = $1, updated_at = $2
		WHERE id = $3 AND user_id = $4
		RETURNING id, event_id, user_id, title, status, priority, estimated_time, created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query, status, time.Now(), id, userID).Scan(
		&subtask.ID,
		&subtask.EventID,
		&subtask.UserID,
		&subtask.Title,
		&subtask.Status,
		&subtask.Priority,
		&subtask.EstimatedTime,
		&subtask.CreatedAt,
		&subtask.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("subtask not found: %w", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update subtask status: %w", err)
	}

	return subtask, nil
}

// Delete deletes a subtask owned by the user
func (r *SubtaskRepository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	query := `DELETE FROM subtasks WHERE id = $1 AND user_id = $2`

	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete subtask: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("subtask not found: %w", sql.ErrNoRows)
	}

	return nil
}
