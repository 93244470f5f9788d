package lacarta

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/lacarta/lacarta/pkg/logger"
	"github.com/lacarta/lacarta/pkg/store"
	"github.com/lacarta/lacarta/pkg/store/memory"
	"github.com/lacarta/lacarta/pkg/store/postgres"
)

// Config holds application configuration.
type Config struct {
	// PostgresDSN selects the postgres store. Empty DSN or MemoryOnly runs
	// the in-memory store instead.
	PostgresDSN string
	MemoryOnly  bool

	// AuthToken, when set, is required as a bearer token on /api routes.
	AuthToken string

	ServerPort string
	LogLevel   string
	LogPretty  bool
}

// App holds the application state.
type App struct {
	store   store.Store
	config  *Config
	log     zerolog.Logger
	logFile *logger.Log
	preview *previewHub
}

// New creates the application: logger, store and the live preview hub.
func New(config *Config) (*App, error) {
	build := logger.New().Level(config.LogLevel)
	if config.LogPretty {
		build = build.Pretty()
	}
	log, err := build.Make()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	var appStore store.Store
	if config.MemoryOnly || config.PostgresDSN == "" {
		appStore = memory.New()
		log.Logger.Info().Msg("using in-memory store")
	} else {
		appStore, err = postgres.New(config.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		log.Logger.Info().Msg("connected to PostgreSQL")
	}

	app := &App{
		store:   appStore,
		config:  config,
		log:     log.Logger,
		logFile: log,
	}
	app.preview = newPreviewHub(app.log)
	return app, nil
}

// Close closes the application and its resources.
func (a *App) Close() error {
	a.preview.closeAll()
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			return err
		}
	}
	return a.logFile.Close()
}

// Store returns the underlying store, useful for tests.
func (a *App) Store() store.Store {
	return a.store
}

// getEnv retrieves an environment variable with a fallback default. Empty
// values are treated the same as unset.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
