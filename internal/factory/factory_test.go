package factory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/buzzrelay/internal/session"
	"github.com/mcoot/buzzrelay/internal/storage/memory"
)

func TestNewDefaultsSessionConfig(t *testing.T) {
	app, err := New(Config{})
	require.NoError(t, err)

	assert.Equal(t, session.DefaultConfig(), app.Coordinator.Config())
	assert.IsType(t, &memory.Storage{}, app.Storage)
}

func TestNewKeepsExplicitlyDisabledSweeping(t *testing.T) {
	app, err := New(Config{SessionConfig: &session.Config{}})
	require.NoError(t, err)

	cfg := app.Coordinator.Config()
	assert.Zero(t, cfg.OrphanTTL)
	assert.Zero(t, cfg.SweepInterval)
}

func TestNewUsesGivenSessionConfig(t *testing.T) {
	app, err := New(Config{SessionConfig: &session.Config{
		OrphanTTL:     5 * time.Minute,
		SweepInterval: 10 * time.Second,
	}})
	require.NoError(t, err)

	assert.Equal(t, session.Config{OrphanTTL: 5 * time.Minute, SweepInterval: 10 * time.Second}, app.Coordinator.Config())
}

func TestNewRejectsUnknownStorageType(t *testing.T) {
	_, err := New(Config{StorageType: "etcd"})
	assert.Error(t, err)
}

func TestNewRedisRequiresConfig(t *testing.T) {
	_, err := New(Config{StorageType: StorageTypeRedis})
	assert.Error(t, err)
}
