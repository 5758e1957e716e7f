package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/desertthunder/niliflix/internal/repositories"
	"github.com/desertthunder/niliflix/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup creates the config file when missing, then initializes the session database and runs migrations.
// With --reset it clears the stored session instead, which requires an existing config file.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")
	reset := cmd.Bool("reset")

	var config *shared.Config
	if _, err := os.Stat(configPath); err == nil {
		if config, err = shared.LoadConfig(configPath); err != nil {
			r.logger.Warn("failed to load config, using defaults", "error", err)
			config = shared.DefaultConfig()
		}
	} else if reset {
		return fmt.Errorf("%w: %s", shared.ErrMissingConfig, configPath)
	} else {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
		} else {
			r.logger.Info("config file created", "path", configPath)
		}
		config = shared.DefaultConfig()
	}

	if err := config.Validate(); err != nil {
		return err
	}

	r.logger.Info("initializing database", "path", config.Storage.Path)

	db, err := shared.OpenStorage(config.Storage)
	if err != nil {
		return fmt.Errorf("failed to set up storage: %w", err)
	}
	defer db.Close()

	if reset {
		slots, err := repositories.NewStorageRepository(db).Keys()
		if err != nil {
			return fmt.Errorf("failed to list stored slots: %w", err)
		}

		r.logger.Info("resetting database", "path", config.Storage.Path, "slots", len(slots))
		if err := shared.ResetStorage(db); err != nil {
			return fmt.Errorf("failed to reset storage: %w", err)
		}

		if len(slots) == 0 {
			return r.writePlain("✓ Session database %s was already empty\n", config.Storage.Path)
		}
		return r.writePlain("✓ Cleared %s from %s\n", strings.Join(slots, ", "), config.Storage.Path)
	}

	r.logger.Infof("setup complete for database: %v", config.Storage.Path)
	r.writePlain("✓ Config: %s\n", configPath)
	r.writePlain("✓ Session database: %s\n", config.Storage.Path)
	r.writePlainln("Next: niliflix login --username <name>")
	return nil
}
