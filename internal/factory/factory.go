// Package factory wires the application's storage, dependencies and
// services together.
package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/dmarquez/idlempire/internal/dependencies/clock"
	"github.com/dmarquez/idlempire/internal/dependencies/random"
	"github.com/dmarquez/idlempire/internal/services/auth"
	"github.com/dmarquez/idlempire/internal/services/challenge"
	"github.com/dmarquez/idlempire/internal/services/query"
	"github.com/dmarquez/idlempire/internal/services/reputation"
	"github.com/dmarquez/idlempire/internal/services/save"
	"github.com/dmarquez/idlempire/internal/storage"
	"github.com/dmarquez/idlempire/internal/storage/memory"
	redisstorage "github.com/dmarquez/idlempire/internal/storage/redis"
	"github.com/dmarquez/idlempire/internal/storage/sqlite"
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
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	AuthService       *auth.Service
	SaveService       *save.Service
	ReputationService *reputation.Service
	ChallengeService  *challenge.Service
	QueryService      *query.Service
}

// Config holds configuration for the application factory
type Config struct {
	// AuthConfig holds configuration for the auth service (optional)
	// If zero value, defaults to auth.DefaultConfig()
	AuthConfig auth.Config
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

	// Create external dependencies
	clk := clock.New()
	rnd := random.New()

	// Create storage based on type
	var store storage.Storage
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
		redisStore, err := redisstorage.New(*cfg.RedisConfig, clk)
		if err != nil {
			return nil, err
		}
		store = redisStore
	case StorageTypeSQLite:
		if cfg.SQLitePath == "" {
			return nil, errors.New("SQLitePath required when StorageType is sqlite")
		}
		sqliteStore, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		store = sqliteStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory', 'redis' or 'sqlite'")
	}

	// Use default auth config if not provided
	authCfg := cfg.AuthConfig
	if authCfg.SessionTTL == 0 {
		authCfg = auth.DefaultConfig()
	}

	return newWithDependencies(store, clk, rnd, authCfg, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, authCfg auth.Config, logger *slog.Logger) *App {
	authService := auth.New(store, clk, authCfg)
	saveService := save.New(store, clk, rnd)
	reputationService := reputation.New(store)
	challengeService := challenge.New(store, clk, rnd, reputationService, saveService, logger)
	queryService := query.New(store, clk)

	return &App{
		Storage:           store,
		Clock:             clk,
		Random:            rnd,
		AuthService:       authService,
		SaveService:       saveService,
		ReputationService: reputationService,
		ChallengeService:  challengeService,
		QueryService:      queryService,
	}
}

// Close releases the storage backend if it holds external resources
func (a *App) Close() error {
	if closer, ok := a.Storage.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
