package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/config"
	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/dependencies/clock"
	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/dependencies/random"
	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/push"
	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/services/matching"
	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/services/matchmaker"
	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/services/registry"
	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/services/session"
	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/services/submission"
	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/services/view"
	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/storage"
	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/storage/memory"
	redisstorage "github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/storage/redis"
	sqlitestorage "github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/storage/sqlite"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
	StorageTypeSQLite = "sqlite"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Store

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	Registry    *registry.Controller
	Matching    *matching.Service
	View        *view.Builder
	Sessions    *session.Controller
	Submissions *submission.Controller
	Matchmaker  *matchmaker.Controller
	HubManager  *push.HubManager
	Broadcaster *push.Broadcaster
}

// Config holds configuration for the application factory
type Config struct {
	// Game holds the phase deadlines and capacity rules
	Game config.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis" or "sqlite")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// SQLitePath is the database file path (required if StorageType is "sqlite")
	SQLitePath string
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var store storage.Store
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	case StorageTypeSQLite:
		if cfg.SQLitePath == "" {
			return nil, errors.New("SQLitePath required when StorageType is sqlite")
		}
		sqliteStore, err := sqlitestorage.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		store = sqliteStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory', 'redis' or 'sqlite'")
	}

	// Create external dependencies
	clk := clock.New()
	rnd := random.New()

	return newWithDependencies(store, clk, rnd, cfg.Game, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Store, clk clock.Clock, rnd random.Random, gameCfg config.Config, logger *slog.Logger) *App {
	hubManager := push.NewHubManager(logger)
	broadcaster := push.NewBroadcaster(hubManager, logger)

	matchingService := matching.NewService()
	viewBuilder := view.NewBuilder(store)
	sessionController := session.NewController(store, matchingService, viewBuilder, broadcaster, clk, gameCfg, logger)
	submissionController := submission.NewController(store, sessionController, clk, logger)
	matchmakerController := matchmaker.NewController(store, sessionController, clk, rnd, gameCfg, logger)
	registryController := registry.NewController(store, clk, rnd, logger)

	return &App{
		Storage:     store,
		Clock:       clk,
		Random:      rnd,
		Registry:    registryController,
		Matching:    matchingService,
		View:        viewBuilder,
		Sessions:    sessionController,
		Submissions: submissionController,
		Matchmaker:  matchmakerController,
		HubManager:  hubManager,
		Broadcaster: broadcaster,
	}
}
