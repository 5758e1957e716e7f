package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/niliflix/internal/repositories"
	"github.com/desertthunder/niliflix/internal/session"
	"github.com/desertthunder/niliflix/internal/shared"
	"github.com/urfave/cli/v3"
)

// configEnv names the environment variable that points at the config file.
const configEnv = "NILIFLIX_CONFIG"

func main() {
	logger := shared.NewLogger(nil)

	configPath := "config.toml"
	if v := os.Getenv(configEnv); v != "" {
		configPath = v
	}
	config := loadConfig(configPath, logger)
	shared.SetLogLevel(logger, config.Log.Level)

	store, closeStore := openSession(config.Storage, logger)
	defer closeStore()

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: configPath,
		Session:    store,
		HTTPClient: &http.Client{Timeout: time.Duration(config.API.TimeoutSeconds) * time.Second},
		Logger:     logger,
	})

	app := &cli.Command{
		Name:     "niliflix",
		Usage:    "Browse the movie catalog and manage your favorites",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		}
		closeStore()
		logger.Fatalf("application error: %v", err)
	}
}

// loadConfig reads path when it exists and falls back to the embedded defaults otherwise.
func loadConfig(path string, logger *log.Logger) *shared.Config {
	config := shared.DefaultConfig()
	if _, err := os.Stat(path); err == nil {
		if loaded, err := shared.LoadConfig(path); err == nil {
			config = loaded
		} else {
			logger.Warn("failed to load config, using defaults", "error", err)
		}
	}

	config.ApplyEnv()
	if err := config.Validate(); err != nil {
		logger.Warn("invalid config, using defaults", "error", err)
		config = shared.DefaultConfig()
		config.ApplyEnv()
	}
	return config
}

// openSession restores the session from the sqlite storage. When the database cannot be opened the session
// lives in memory for this run.
func openSession(cfg shared.StorageConfig, logger *log.Logger) (*session.Store, func()) {
	db, err := shared.OpenStorage(cfg)
	if err != nil {
		logger.Warn("session storage unavailable, signing in will last for this run only", "error", err)
		store, _ := session.NewStore(session.NewMemoryStorage())
		return store, func() {}
	}

	store, err := session.NewStore(repositories.NewStorageRepository(db))
	if err != nil {
		logger.Warn("failed to restore session", "error", err)
	}

	var closed bool
	return store, func() {
		if !closed {
			closed = true
			db.Close()
		}
	}
}
