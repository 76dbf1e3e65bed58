package config

import (
	"errors"
	"fmt"
	"math"

	"github.com/haskel/runeconomy/internal/physio/energy"
	"github.com/haskel/runeconomy/internal/report"
)

func (c *Config) Validate() error {
	var errs []error

	if err := c.Analysis.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("analysis: %w", err))
	}

	if err := c.Regression.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("regression: %w", err))
	}

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("server: %w", err))
	}

	if err := c.Auth.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("auth: %w", err))
	}

	if err := c.Storage.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("storage: %w", err))
	}

	if err := c.Output.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("output: %w", err))
	}

	if err := c.Plot.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("plot: %w", err))
	}

	if err := c.Logging.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("logging: %w", err))
	}

	return errors.Join(errs...)
}

func (a *AnalysisConfig) Validate() error {
	var errs []error

	if !(a.WindowSeconds > 0) || math.IsInf(a.WindowSeconds, 0) {
		errs = append(errs, fmt.Errorf("window_seconds must be positive, got %v", a.WindowSeconds))
	}

	if a.RestLabel == "" || a.RunLabel == "" {
		errs = append(errs, fmt.Errorf("rest_label and run_label cannot be empty"))
	} else if a.RestLabel == a.RunLabel {
		errs = append(errs, fmt.Errorf("rest_label and run_label must differ, both are %q", a.RestLabel))
	}

	if !energy.Policy(a.Policy).IsValid() {
		errs = append(errs, fmt.Errorf("invalid policy: %s (valid: net, brockway)", a.Policy))
	}

	if a.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be at least 1, got %d", a.Workers))
	}

	return errors.Join(errs...)
}

func (r *RegressionConfig) Validate() error {
	var errs []error

	if r.GridSize < 1 {
		errs = append(errs, fmt.Errorf("grid_size must be at least 1, got %d", r.GridSize))
	}

	if !(r.Confidence > 0 && r.Confidence < 1) {
		errs = append(errs, fmt.Errorf("confidence must be between 0 and 1 exclusive, got %v", r.Confidence))
	}

	return errors.Join(errs...)
}

func (s *ServerConfig) Validate() error {
	var errs []error

	if s.Port < 1 || s.Port > 65535 {
		errs = append(errs, fmt.Errorf("port must be between 1 and 65535, got %d", s.Port))
	}

	if s.MaxBodyBytes < 1 {
		errs = append(errs, fmt.Errorf("max_body_bytes must be positive"))
	}

	if s.RateLimit.Enabled {
		if s.RateLimit.RequestsPerSecond <= 0 {
			errs = append(errs, fmt.Errorf("rate_limit.requests_per_second must be positive"))
		}
		if s.RateLimit.Burst < 1 {
			errs = append(errs, fmt.Errorf("rate_limit.burst must be at least 1"))
		}
	}

	return errors.Join(errs...)
}

func (a *AuthConfig) Validate() error {
	if a.Enabled {
		if a.User == "" {
			return fmt.Errorf("user cannot be empty when auth is enabled")
		}
		if a.Password == "" {
			return fmt.Errorf("password cannot be empty when auth is enabled")
		}
	}
	return nil
}

func (s *StorageConfig) Validate() error {
	if s.Enabled && s.Path == "" {
		return fmt.Errorf("path cannot be empty when storage is enabled")
	}
	return nil
}

func (o *OutputConfig) Validate() error {
	if o.Dir == "" {
		return fmt.Errorf("dir cannot be empty")
	}
	for _, f := range o.Formats {
		if !report.Format(f).IsValid() {
			return fmt.Errorf("invalid output format: %s (valid: json, csv, parquet)", f)
		}
	}
	return nil
}

func (p *PlotConfig) Validate() error {
	if p.Height < 1 || p.Width < 1 {
		return fmt.Errorf("height and width must be positive, got %dx%d", p.Height, p.Width)
	}
	return nil
}

func (l *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[l.Level] {
		return fmt.Errorf("invalid log level: %s (valid: debug, info, warn, error)", l.Level)
	}

	validFormats := map[string]bool{
		"json": true,
		"text": true,
	}
	if !validFormats[l.Format] {
		return fmt.Errorf("invalid log format: %s (valid: json, text)", l.Format)
	}

	return nil
}
