package config

import (
	"github.com/haskel/runeconomy/internal/cohort"
	"github.com/haskel/runeconomy/internal/physio"
	"github.com/haskel/runeconomy/internal/physio/energy"
	"github.com/haskel/runeconomy/internal/regression"
)

func Default() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			WindowSeconds: cohort.DefaultWindowSeconds,
			RestLabel:     physio.PhaseRest,
			RunLabel:      physio.PhaseRun,
			Policy:        string(energy.DefaultPolicy),
			Workers:       1,
			Strict:        false,
		},
		Regression: RegressionConfig{
			GridSize:   regression.DefaultGridSize,
			Confidence: regression.DefaultConfidence,
		},
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			MaxBodyBytes: 32 << 20,
			RateLimit: RateLimitConfig{
				Enabled:           false,
				RequestsPerSecond: 10,
				Burst:             20,
			},
		},
		Auth: AuthConfig{
			Enabled:  false,
			User:     "",
			Password: "",
		},
		Storage: StorageConfig{
			Enabled: false,
			Path:    "runeconomy.db",
		},
		Output: OutputConfig{
			Dir:     "results",
			Formats: []string{"json", "csv"},
		},
		Plot: PlotConfig{
			Height: 12,
			Width:  70,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
