package config

import (
	"github.com/haskel/runeconomy/internal/cohort"
	"github.com/haskel/runeconomy/internal/physio/energy"
	"github.com/haskel/runeconomy/internal/regression"
)

type Config struct {
	Analysis   AnalysisConfig   `yaml:"analysis"`
	Regression RegressionConfig `yaml:"regression"`
	Server     ServerConfig     `yaml:"server"`
	Auth       AuthConfig       `yaml:"auth"`
	Storage    StorageConfig    `yaml:"storage"`
	Output     OutputConfig     `yaml:"output"`
	Plot       PlotConfig       `yaml:"plot"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// AnalysisConfig controls per-subject summarization.
type AnalysisConfig struct {
	// WindowSeconds is the trailing steady-state window per phase.
	WindowSeconds float64 `yaml:"window_seconds"`
	RestLabel     string  `yaml:"rest_label"`
	RunLabel      string  `yaml:"run_label"`

	// Policy selects the energy model: net or brockway.
	Policy string `yaml:"policy"`

	// Workers bounds concurrent subject summarization. 1 is sequential.
	Workers int `yaml:"workers"`

	// Strict aborts on the first invalid subject instead of skipping it.
	Strict bool `yaml:"strict"`
}

type RegressionConfig struct {
	GridSize   int     `yaml:"grid_size"`
	Confidence float64 `yaml:"confidence"`
}

type ServerConfig struct {
	Host         string          `yaml:"host"`
	Port         int             `yaml:"port"`
	MaxBodyBytes int64           `yaml:"max_body_bytes"`
	RateLimit    RateLimitConfig `yaml:"rate_limit"`
}

type RateLimitConfig struct {
	Enabled           bool    `yaml:"enabled"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

type AuthConfig struct {
	Enabled  bool   `yaml:"enabled"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// StorageConfig controls the SQLite run history.
type StorageConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

type OutputConfig struct {
	Dir     string   `yaml:"dir"`
	Formats []string `yaml:"formats"`
}

type PlotConfig struct {
	Height int `yaml:"height"`
	Width  int `yaml:"width"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// SummarizerOptions maps the analysis section onto cohort options.
func (c *Config) SummarizerOptions() cohort.Options {
	return cohort.Options{
		RestLabel:     c.Analysis.RestLabel,
		RunLabel:      c.Analysis.RunLabel,
		WindowSeconds: c.Analysis.WindowSeconds,
	}
}

// RegressionOptions maps the regression section onto regressor options.
func (c *Config) RegressionOptions() regression.Options {
	return regression.Options{
		GridSize:   c.Regression.GridSize,
		Confidence: c.Regression.Confidence,
		DropNaN:    true,
	}
}

// EnergyPolicy returns the configured policy tag.
func (c *Config) EnergyPolicy() energy.Policy {
	return energy.Policy(c.Analysis.Policy)
}
