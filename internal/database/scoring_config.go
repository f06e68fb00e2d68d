package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nirvanaflow/api/internal/models"
)

// ScoringConfigRepository stores per-user email scoring configuration. The
// config document is stored as a single JSONB row per user; callers fall back
// to file or built-in defaults when no row exists.
type ScoringConfigRepository struct {
	db *DB
}

// NewScoringConfigRepository creates a new scoring config repository
func NewScoringConfigRepository(db *DB) *ScoringConfigRepository {
	return &ScoringConfigRepository{db: db}
}

// Get retrieves the scoring config for a user
func (r *ScoringConfigRepository) Get(ctx context.Context, userID uuid.UUID) (*models.ScoringConfig, error) {
	var raw []byte

	query := `SELECT config FROM scoring_configs WHERE user_id = $1`
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("scoring config not found: %w", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scoring config: %w", err)
	}

	cfg := &models.ScoringConfig{}
	if err := json.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode scoring config: %w", err)
	}

	return cfg, nil
}

// Set upserts the scoring config for a user
func (r *ScoringConfigRepository) Set(ctx context.Context, userID uuid.UUID, cfg *models.ScoringConfig) error {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode scoring config: %w", err)
	}

	query := `
		INSERT INTO scoring_configs (user_id, config, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET config = $2, updated_at = $3
	`

	if _, err := r.db.ExecContext(ctx, query, userID, raw, time.Now()); err != nil {
		return fmt.Errorf("failed to save scoring config: %w", err)
	}

	return nil
}

// Delete removes a user's scoring config, reverting them to defaults
func (r *ScoringConfigRepository) Delete(ctx context.Context, userID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM scoring_configs WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete scoring config: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("scoring config not found: %w", sql.ErrNoRows)
	}

	return nil
}
