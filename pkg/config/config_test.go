package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, Default().Server.Port, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Storage.Driver)
	assert.Equal(t, []int{10, 15, 20, 30, 40}, cfg.Rewards.PointsPerStar)
	assert.Equal(t, 3, cfg.Missions.TemporaryCommonPlaceLimit)
	assert.Equal(t, 24*time.Hour, cfg.Jobs.DailyInterval)
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
server:
  port: 9000
storage:
  driver: memory
rewards:
  points_per_star: [5, 7]
missions:
  leaders_count: 25
  starter_mission_sets: [intro, city]
  completion_lock_ttl: 3s
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	t.Setenv("RADRUGA_SERVER_HOST", "127.0.0.1")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, []int{5, 7}, cfg.Rewards.PointsPerStar)
	assert.Equal(t, 25, cfg.Missions.LeadersCount)
	assert.Equal(t, []string{"intro", "city"}, cfg.Missions.StarterMissionSets)
	assert.Equal(t, 3*time.Second, cfg.Missions.CompletionLockTTL)
	// untouched keys keep defaults
	assert.Equal(t, Default().Rewards.LevelPoints, cfg.Rewards.LevelPoints)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown driver", func(c *Config) { c.Storage.Driver = "sqlite" }},
		{"empty point table", func(c *Config) { c.Rewards.PointsPerStar = nil }},
		{"zero level threshold", func(c *Config) { c.Rewards.LevelPoints = []int{10, 0} }},
		{"no leaders", func(c *Config) { c.Missions.LeadersCount = 0 }},
		{"no consensus limit", func(c *Config) { c.Missions.TemporaryCommonPlaceLimit = 0 }},
	}

	require.NoError(t, Default().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
