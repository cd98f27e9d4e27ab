package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OldStager01/agro-advisor/pkg/config"
	"github.com/OldStager01/agro-advisor/pkg/models"
)

func TestLoad_DefaultsAreValid(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "agro-advisor", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Mode)
	assert.Equal(t, "mock", cfg.Provider.Type)
	assert.Equal(t, 10*time.Second, cfg.Models.PredictTimeout)
	assert.True(t, cfg.Scheduler.Enabled)
	assert.Equal(t, 30*time.Minute, cfg.Scheduler.Interval)
	assert.Equal(t, time.Minute, cfg.Alerts.SweepInterval)
	assert.Equal(t, 8080, cfg.API.Port)
	assert.Contains(t, cfg.Models.Crops, "wheat")
}

func TestLoad_DefaultTTLsCoverEveryAlertType(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	ttl, err := cfg.Alerts.TTLDurations()
	require.NoError(t, err)
	require.Len(t, ttl, len(models.AllAlertTypes()))
	assert.Equal(t, 2*time.Hour, ttl[models.AlertFlood])
	assert.Equal(t, 24*time.Hour, ttl[models.AlertDrought])
}

func TestValidate_RejectsBadValues(t *testing.T) {
	base := func() *config.Config {
		cfg, err := config.Load("")
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"unknown mode", func(c *config.Config) { c.App.Mode = "staging" }},
		{"unknown log level", func(c *config.Config) { c.App.LogLevel = "trace" }},
		{"missing database host", func(c *config.Config) { c.Database.Host = "" }},
		{"bad database port", func(c *config.Config) { c.Database.Port = 0 }},
		{"unknown provider", func(c *config.Config) { c.Provider.Type = "satellite" }},
		{"http provider without endpoint", func(c *config.Config) {
			c.Provider.Type = "http"
			c.Provider.Endpoint = ""
		}},
		{"item delay exceeding interval", func(c *config.Config) {
			c.Scheduler.ItemDelay = c.Scheduler.Interval
		}},
		{"non-positive sweep interval", func(c *config.Config) { c.Alerts.SweepInterval = 0 }},
		{"default jwt secret in production", func(c *config.Config) { c.App.Mode = "production" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := config.DatabaseConfig{
		Host:     "db.internal",
		Port:     5432,
		Name:     "agroadvisor",
		User:     "svc",
		Password: "secret",
	}

	dsn := d.DSN()
	assert.Contains(t, dsn, "host=db.internal")
	assert.Contains(t, dsn, "dbname=agroadvisor")
	assert.Contains(t, dsn, "sslmode=disable")
}

func TestThresholdLevels_ConvertsConfiguredLadder(t *testing.T) {
	a := config.AlertsConfig{
		Thresholds: []config.ThresholdEntry{
			{Type: "flood", Level: "low", Value: 8, Unit: "mm/h"},
			{Type: "flood", Level: "high", Value: 30, Unit: "mm/h"},
		},
	}

	levels, err := a.ThresholdLevels()
	require.NoError(t, err)
	require.Len(t, levels, 2)
	assert.Equal(t, models.AlertFlood, levels[0].Type)
	assert.Equal(t, models.LevelLow, levels[0].Level)
	assert.Equal(t, 8.0, levels[0].Value)
}

func TestThresholdLevels_RejectsUnknownNames(t *testing.T) {
	_, err := config.AlertsConfig{
		Thresholds: []config.ThresholdEntry{{Type: "tsunami", Level: "low", Value: 1}},
	}.ThresholdLevels()
	assert.Error(t, err)

	_, err = config.AlertsConfig{
		Thresholds: []config.ThresholdEntry{{Type: "flood", Level: "extreme", Value: 1}},
	}.ThresholdLevels()
	assert.Error(t, err)
}

func TestTTLDurations_RejectsBadEntries(t *testing.T) {
	_, err := config.AlertsConfig{
		TTL: map[string]time.Duration{"tsunami": time.Hour},
	}.TTLDurations()
	assert.Error(t, err)

	_, err = config.AlertsConfig{
		TTL: map[string]time.Duration{"flood": 0},
	}.TTLDurations()
	assert.Error(t, err)
}
