package mailrank

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/nirvanaflow/api/internal/models"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// ConfigStore retrieves a user's stored scoring config
type ConfigStore interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.ScoringConfig, error)
}

// LoadConfigFile reads scorer weights from a YAML file. Values absent from
// the file keep their compiled-in defaults.
func LoadConfigFile(path string) (*models.ScoringConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scoring config file: %w", err)
	}

	cfg := models.DefaultScoringConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse scoring config file: %w", err)
	}

	return cfg, nil
}

// ConfigResolver picks the effective scoring config for a user. Precedence
// is database row, then config file, then compiled-in defaults.
type ConfigResolver struct {
	store  ConfigStore
	path   string
	logger *zap.Logger
}

// NewConfigResolver creates a resolver. Both store and path may be empty.
func NewConfigResolver(store ConfigStore, path string, logger *zap.Logger) *ConfigResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConfigResolver{store: store, path: path, logger: logger}
}

// Resolve returns the effective config for the user. Lookup failures fall
// through to the next source instead of failing the sync.
func (r *ConfigResolver) Resolve(ctx context.Context, userID uuid.UUID) *models.ScoringConfig {
	if r.store != nil {
		cfg, err := r.store.Get(ctx, userID)
		if err == nil {
			return cfg
		}
		r.logger.Debug("scoring_config_db_miss",
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
	}

	if r.path != "" {
		cfg, err := LoadConfigFile(r.path)
		if err == nil {
			return cfg
		}
		r.logger.Warn("scoring_config_file_unreadable",
			zap.String("path", r.path),
			zap.Error(err),
		)
	}

	return models.DefaultScoringConfig()
}
