package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/desertthunder/netdecker/internal/shared"
	"github.com/urfave/cli/v3"
)

// configTarget returns where setup reads or writes the config file.
func (r *Runner) configTarget() (string, error) {
	if r.configPath != "" {
		return r.configPath, nil
	}
	dir, err := shared.AppDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Setup creates the config file when missing, then initializes the database and runs migrations.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath, err := r.configTarget()
	if err != nil {
		return err
	}

	if _, err := os.Stat(configPath); err != nil {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			return fmt.Errorf("failed to create config file: %w", err)
		}
		config, err := shared.LoadConfig(configPath)
		if err != nil {
			return err
		}
		r.config = config
	}

	dbPath, err := r.config.DatabasePath()
	if err != nil {
		return err
	}
	r.logger.Info("initializing database", "path", dbPath)

	if err := r.open(); err != nil {
		return err
	}

	applied, err := shared.AppliedMigrations(r.db)
	if err != nil {
		return err
	}

	r.writePlain("✓ Config: %s\n", configPath)
	r.writePlain("✓ Database: %s (%d migrations applied)\n", dbPath, len(applied))
	return nil
}

// SetupRollback rolls back the most recently applied migration.
func (r *Runner) SetupRollback(ctx context.Context, cmd *cli.Command) error {
	if !cmd.Bool("confirm") && !r.confirm("Roll back the latest migration? This drops data. (y/N): ") {
		return shared.ErrConfirmationRequired
	}
	if err := r.open(); err != nil {
		return err
	}

	if err := shared.RollbackMigration(r.db); err != nil {
		return fmt.Errorf("failed to roll back migration: %w", err)
	}
	r.writePlain("✓ Rolled back latest migration\n")
	return nil
}
