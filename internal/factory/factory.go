package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/mcoot/buzzrelay/internal/config"
	"github.com/mcoot/buzzrelay/internal/dependencies/clock"
	"github.com/mcoot/buzzrelay/internal/dependencies/random"
	"github.com/mcoot/buzzrelay/internal/services/ledger"
	"github.com/mcoot/buzzrelay/internal/services/players"
	"github.com/mcoot/buzzrelay/internal/services/rooms"
	"github.com/mcoot/buzzrelay/internal/session"
	"github.com/mcoot/buzzrelay/internal/storage"
	"github.com/mcoot/buzzrelay/internal/storage/memory"
	redisstorage "github.com/mcoot/buzzrelay/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory = config.StorageTypeMemory
	StorageTypeRedis  = config.StorageTypeRedis
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	RoomDirectory  *rooms.Directory
	PlayerRegistry *players.Registry
	BuzzLedger     *ledger.Ledger
	Coordinator    *session.Coordinator
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// SessionConfig controls room expiry
	// If nil, defaults to session.DefaultConfig(). Zero durations disable sweeping.
	SessionConfig *session.Config
}

// New creates a new application with all dependencies wired.
// The coordinator is not started; call App.Coordinator.Run.
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

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
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	sessionCfg := session.DefaultConfig()
	if cfg.SessionConfig != nil {
		sessionCfg = *cfg.SessionConfig
	}

	return newWithDependencies(store, clock.New(), random.New(), sessionCfg, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	rnd random.Random,
	sessionCfg session.Config,
	logger *slog.Logger,
) *App {
	roomDirectory := rooms.NewDirectory(store, clk, rnd, logger)
	playerRegistry := players.NewRegistry(store, clk)
	buzzLedger := ledger.New(store, clk)
	coordinator := session.NewCoordinator(roomDirectory, playerRegistry, buzzLedger, clk, sessionCfg, logger)

	return &App{
		Storage:        store,
		Clock:          clk,
		Random:         rnd,
		RoomDirectory:  roomDirectory,
		PlayerRegistry: playerRegistry,
		BuzzLedger:     buzzLedger,
		Coordinator:    coordinator,
	}
}

// Close releases storage connections
func (a *App) Close() error {
	if closer, ok := a.Storage.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
