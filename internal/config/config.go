package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage backends
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// Config is the server configuration read from the environment
type Config struct {
	Host        string
	Port        int
	StorageType string
	RedisURL    string

	// RoomOrphanTTL is how long a room survives without its host or players
	RoomOrphanTTL     time.Duration
	RoomSweepInterval time.Duration

	SendBufferSize int
	AllowedOrigins []string
	LogLevel       slog.Level
}

// Default returns the configuration used when nothing is set
func Default() Config {
	return Config{
		Host:              "0.0.0.0",
		Port:              8080,
		StorageType:       StorageTypeMemory,
		RoomOrphanTTL:     30 * time.Minute,
		RoomSweepInterval: time.Minute,
		SendBufferSize:    256,
		LogLevel:          slog.LevelInfo,
	}
}

// LoadDotEnv loads environment variables from a .env file if present.
// Existing environment variables are not overwritten.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

// Load reads the configuration from the process environment
func Load() (Config, error) {
	return LoadFrom(os.Getenv)
}

// LoadFrom reads the configuration using getenv, starting from Default
func LoadFrom(getenv func(string) string) (Config, error) {
	cfg := Default()
	var errs []error

	if raw := getenv("HOST"); raw != "" {
		cfg.Host = raw
	}
	if raw := getenv("PORT"); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil || port <= 0 || port > 65535 {
			errs = append(errs, fmt.Errorf("PORT: invalid port %q", raw))
		} else {
			cfg.Port = port
		}
	}

	if raw := getenv("STORAGE_TYPE"); raw != "" {
		cfg.StorageType = strings.ToLower(raw)
	}
	cfg.RedisURL = getenv("REDIS_URL")
	switch cfg.StorageType {
	case StorageTypeMemory:
	case StorageTypeRedis:
		if cfg.RedisURL == "" {
			errs = append(errs, errors.New("REDIS_URL required when STORAGE_TYPE=redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORAGE_TYPE: unknown storage type %q", cfg.StorageType))
	}

	if raw := getenv("ROOM_ORPHAN_TTL"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d < 0 {
			errs = append(errs, fmt.Errorf("ROOM_ORPHAN_TTL: invalid duration %q", raw))
		} else {
			cfg.RoomOrphanTTL = d
		}
	}
	if raw := getenv("ROOM_SWEEP_INTERVAL"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d < 0 {
			errs = append(errs, fmt.Errorf("ROOM_SWEEP_INTERVAL: invalid duration %q", raw))
		} else {
			cfg.RoomSweepInterval = d
		}
	}

	if raw := getenv("SEND_BUFFER_SIZE"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			errs = append(errs, fmt.Errorf("SEND_BUFFER_SIZE: invalid size %q", raw))
		} else {
			cfg.SendBufferSize = n
		}
	}

	if raw := getenv("ALLOWED_ORIGINS"); raw != "" {
		for _, origin := range strings.Split(raw, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
			}
		}
	}

	if raw := getenv("LOG_LEVEL"); raw != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(raw)); err != nil {
			errs = append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
		}
	}

	return cfg, errors.Join(errs...)
}

// Addr returns the host:port the server listens on
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
