// Package wire provides dependency injection for the tilepipe application.
// It creates singleton services with lazy initialization.
package wire

import (
	"database/sql"
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	cliadapter "github.com/example/tilepipe/internal/adapters/cli"
	"github.com/example/tilepipe/internal/adapters/configfile"
	"github.com/example/tilepipe/internal/adapters/sqlite"
	"github.com/example/tilepipe/internal/app"
	"github.com/example/tilepipe/internal/config"
	"github.com/example/tilepipe/internal/db"
	"github.com/example/tilepipe/internal/observability"
	"github.com/example/tilepipe/internal/ports/primary"
)

var (
	configPath = config.DefaultFile

	cfg         *config.Config
	database    *sql.DB
	logger      zerolog.Logger
	tileService primary.TileService
	passService primary.PassService
	scheduler   primary.Scheduler
	once        sync.Once
)

// Configure sets the config file used by the first service access.
// It has no effect once services are initialized.
func Configure(path string) {
	if path != "" {
		configPath = path
	}
}

// Config returns the loaded project config.
func Config() *config.Config {
	once.Do(initServices)
	return cfg
}

// Logger returns the process logger.
func Logger() zerolog.Logger {
	once.Do(initServices)
	return logger
}

// TileService returns the singleton TileService instance.
func TileService() primary.TileService {
	once.Do(initServices)
	return tileService
}

// PassService returns the singleton PassService instance.
func PassService() primary.PassService {
	once.Do(initServices)
	return passService
}

// Scheduler returns the singleton Scheduler instance.
func Scheduler() primary.Scheduler {
	once.Do(initServices)
	return scheduler
}

// Close releases the database handle if services were initialized.
func Close() error {
	if database == nil {
		return nil
	}
	return database.Close()
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() {
	var err error
	cfg, err = config.Load(configPath)
	if err != nil {
		log.Fatal().Err(err).Str("config", configPath).Msg("failed to load config (run `tilepipe init` to create one)")
	}

	logger = observability.InitLogger("tilepipe", cfg.LogLevel)

	dbPath, err := cfg.DatabasePath()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to resolve database path")
	}
	database, err = db.Open(dbPath)
	if err != nil {
		logger.Fatal().Err(err).Str("path", dbPath).Msg("failed to initialize database")
	}

	interval, err := cfg.PollInterval()
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid poll interval")
	}

	// Create repository adapters (secondary ports) - sqlite adapters with injected DB
	tileRepo := sqlite.NewTileRepository(database)
	adjacencyRepo := sqlite.NewAdjacencyRepository(database)
	stages, err := configfile.NewStageCatalog(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build stage catalog")
	}

	// Create services (primary ports implementation)
	tileService = app.NewTileService(stages, tileRepo, adjacencyRepo)
	passes := app.NewPassService(stages, tileRepo, adjacencyRepo, logger.With().Str("component", "reconcile").Logger())
	passService = passes
	scheduler = app.NewScheduler(passes, stages, interval, logger.With().Str("component", "scheduler").Logger())

	observability.RegisterMetrics()
}

// TileAdapter returns a new TileAdapter writing to stdout.
// Each call creates a new adapter (adapters are stateless translators).
func TileAdapter() *cliadapter.TileAdapter {
	return TileAdapterWithOutput(os.Stdout)
}

// TileAdapterWithOutput returns a new TileAdapter writing to the given output.
func TileAdapterWithOutput(out io.Writer) *cliadapter.TileAdapter {
	once.Do(initServices)
	return cliadapter.NewTileAdapter(tileService, out)
}

// PassAdapter returns a new PassAdapter writing to stdout.
func PassAdapter() *cliadapter.PassAdapter {
	return PassAdapterWithOutput(os.Stdout)
}

// PassAdapterWithOutput returns a new PassAdapter writing to the given output.
func PassAdapterWithOutput(out io.Writer) *cliadapter.PassAdapter {
	once.Do(initServices)
	return cliadapter.NewPassAdapter(passService, out)
}
