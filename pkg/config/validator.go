package config

import (
	"errors"
	"fmt"
)

func (c *Config) Validate() error {
	var errs []error

	// App validation
	if c.App.Name == "" {
		errs = append(errs, errors.New("app.name is required"))
	}

	validModes := map[string]bool{"development": true, "production": true, "test": true}
	if !validModes[c.App.Mode] {
		errs = append(errs, fmt.Errorf("app.mode must be one of: development, production, test"))
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.App.LogLevel] {
		errs = append(errs, fmt.Errorf("app.log_level must be one of: debug, info, warn, error"))
	}

	// Database validation
	if c.Database.Host == "" {
		errs = append(errs, errors.New("database.host is required"))
	}
	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		errs = append(errs, errors.New("database.port must be between 1 and 65535"))
	}
	if c.Database.Name == "" {
		errs = append(errs, errors.New("database.name is required"))
	}
	if c.Database.MaxConnections <= 0 {
		errs = append(errs, errors.New("database.max_connections must be positive"))
	}

	// Provider validation
	validProviders := map[string]bool{"mock": true, "http": true}
	if !validProviders[c.Provider.Type] {
		errs = append(errs, errors.New("provider.type must be one of: mock, http"))
	}
	if c.Provider.Type == "http" && c.Provider.Endpoint == "" {
		errs = append(errs, errors.New("provider.endpoint is required for the http provider"))
	}
	if c.Provider.Timeout <= 0 {
		errs = append(errs, errors.New("provider.timeout must be positive"))
	}

	// Model validation
	if c.Models.PredictTimeout <= 0 {
		errs = append(errs, errors.New("models.predict_timeout must be positive"))
	}
	if c.Models.HistoryDays <= 0 {
		errs = append(errs, errors.New("models.history_days must be positive"))
	}

	// Scheduler validation
	if c.Scheduler.Enabled {
		if c.Scheduler.Interval <= 0 {
			errs = append(errs, errors.New("scheduler.interval must be positive"))
		}
		if c.Scheduler.ItemDelay < 0 {
			errs = append(errs, errors.New("scheduler.item_delay must not be negative"))
		}
		if c.Scheduler.ItemDelay >= c.Scheduler.Interval {
			errs = append(errs, errors.New("scheduler.item_delay must be less than scheduler.interval"))
		}
	}

	// Alert validation
	if c.Alerts.SweepInterval <= 0 {
		errs = append(errs, errors.New("alerts.sweep_interval must be positive"))
	}

	// API validation
	if c.API.Port <= 0 || c.API.Port > 65535 {
		errs = append(errs, errors.New("api.port must be between 1 and 65535"))
	}
	if c.App.Mode == "production" && c.API.JWTSecret == "change-me-in-production" {
		errs = append(errs, errors.New("api.jwt_secret must be changed in production"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
