package main

import (
	"fmt"
	"os"
	"strconv"

	"urwallet/internal/config"
	"urwallet/internal/database"
	"urwallet/internal/logger"
)

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Migration error: %v", err)
	}
}

func run() error {
	if len(os.Args) < 2 {
		return fmt.Errorf("usage: migrate <up|down|version> [N]")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	dbManager, err := database.NewManager(database.NewConfig(cfg))
	if err != nil {
		return err
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			logger.Get().Warnf("failed to close database: %v", err)
		}
	}()

	command := os.Args[1]

	switch command {
	case "up":
		if err := dbManager.RunMigrations(); err != nil {
			return err
		}

	case "down":
		steps := 1
		if len(os.Args) > 2 {
			steps, err = strconv.Atoi(os.Args[2])
			if err != nil {
				return fmt.Errorf("invalid step count: %w", err)
			}
		}
		if err := dbManager.RollbackMigration(steps); err != nil {
			return err
		}
		logger.Get().Infof("Rolled back %d migration(s)", steps)

	case "version":
		version, dirty, err := dbManager.MigrationVersion()
		if err != nil {
			return fmt.Errorf("failed to get version: %w", err)
		}
		logger.Get().Infof("Version: %d, Dirty: %v", version, dirty)

	default:
		return fmt.Errorf("unknown command: %s (use up, down, or version)", command)
	}

	return nil
}
