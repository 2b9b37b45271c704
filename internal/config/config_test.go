package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, 5*time.Second, cfg.Jobs.OutboxEvery)
	assert.Equal(t, 5*time.Minute, cfg.Jobs.ReconcileEvery)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Equal(t, "social-graph", cfg.Kafka.Topic)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("COMMUNITY_HTTP_ADDR", ":9090")
	t.Setenv("COMMUNITY_JOBS_OUTBOX_EVERY", "1m")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, time.Minute, cfg.Jobs.OutboxEvery)
}
