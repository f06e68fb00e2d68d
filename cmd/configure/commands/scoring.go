package commands

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/nirvanaflow/api/internal/config"
	"github.com/nirvanaflow/api/internal/database"
	"github.com/nirvanaflow/api/internal/models"
	"github.com/nirvanaflow/api/internal/services/mailrank"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// NewShowCmd creates the show command
func NewShowCmd() *cobra.Command {
	var userFlag string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show effective scoring configuration",
		Long:  "Show the scoring configuration in effect. With --user, shows that user's stored override; otherwise prints the compiled-in defaults.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if userFlag == "" {
				return printConfig(models.DefaultScoringConfig(), "defaults")
			}

			userID, err := uuid.Parse(userFlag)
			if err != nil {
				return fmt.Errorf("invalid user id: %w", err)
			}

			return withScoringRepo(func(ctx context.Context, repo *database.ScoringConfigRepository) error {
				cfg, err := repo.Get(ctx, userID)
				if err != nil {
					if errors.Is(err, sql.ErrNoRows) {
						fmt.Printf("No stored override for user %s, defaults apply\n", userID)
						return printConfig(models.DefaultScoringConfig(), "defaults")
					}
					return fmt.Errorf("failed to load scoring config: %w", err)
				}
				return printConfig(cfg, "user override")
			})
		},
	}

	cmd.Flags().StringVar(&userFlag, "user", "", "User ID to inspect")
	return cmd
}

// NewImportCmd creates the import command
func NewImportCmd() *cobra.Command {
	var userFlag string

	cmd := &cobra.Command{
		Use:   "import <config.yaml>",
		Short: "Import a scoring configuration file for a user",
		Long:  "Load a YAML scoring configuration, merge it over the defaults, and store it as the user's override",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if userFlag == "" {
				return fmt.Errorf("required flag: --user")
			}
			userID, err := uuid.Parse(userFlag)
			if err != nil {
				return fmt.Errorf("invalid user id: %w", err)
			}

			cfg, err := mailrank.LoadConfigFile(args[0])
			if err != nil {
				return err
			}

			return withScoringRepo(func(ctx context.Context, repo *database.ScoringConfigRepository) error {
				if err := repo.Set(ctx, userID, cfg); err != nil {
					return fmt.Errorf("failed to store scoring config: %w", err)
				}
				fmt.Printf("Stored scoring override for user %s\n", userID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&userFlag, "user", "", "User ID to configure")
	return cmd
}

// NewResetCmd creates the reset command
func NewResetCmd() *cobra.Command {
	var userFlag string

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Remove a user's scoring override",
		Long:  "Delete the stored scoring override so the user falls back to the file or compiled-in defaults",
		RunE: func(cmd *cobra.Command, args []string) error {
			if userFlag == "" {
				return fmt.Errorf("required flag: --user")
			}
			userID, err := uuid.Parse(userFlag)
			if err != nil {
				return fmt.Errorf("invalid user id: %w", err)
			}

			return withScoringRepo(func(ctx context.Context, repo *database.ScoringConfigRepository) error {
				if err := repo.Delete(ctx, userID); err != nil {
					if errors.Is(err, sql.ErrNoRows) {
						fmt.Printf("No stored override for user %s\n", userID)
						return nil
					}
					return fmt.Errorf("failed to delete scoring config: %w", err)
				}
				fmt.Printf("Removed scoring override for user %s\n", userID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&userFlag, "user", "", "User ID to reset")
	return cmd
}

// withScoringRepo opens the shared database pool from the environment
// configuration and hands a repository to fn. The pool lives for the
// process lifetime, so repeated commands in one invocation reuse it.
func withScoringRepo(fn func(context.Context, *database.ScoringConfigRepository) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := database.Acquire(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	return fn(context.Background(), database.NewScoringConfigRepository(db))
}

func printConfig(cfg *models.ScoringConfig, source string) error {
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to render config: %w", err)
	}
	fmt.Printf("# source: %s\n%s", source, out)
	return nil
}
