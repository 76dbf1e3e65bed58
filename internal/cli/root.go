package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/haskel/runeconomy/internal/analysis"
	"github.com/haskel/runeconomy/internal/config"
	"github.com/haskel/runeconomy/internal/logger"
)

var (
	// Global flags
	cfgFile  string
	host     string
	port     int
	jsonOut  bool
	verbose  bool
	user     string
	password string

	// Version info (set from main)
	Version = "0.1.0"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "runeconomy",
	Short: "Running economy analysis for breath-by-breath gas exchange",
	Long: `Runeconomy turns breath-by-breath VO2/VCO2 exports into a per-subject
cohort table (steady-state gas exchange, running economy, metabolic power),
fits speed against net metabolic power with a confidence band, and describes
the cohort in plain text. It runs locally, as an HTTP service, or as an
interactive terminal explorer.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&host, "host", "localhost", "server host")
	rootCmd.PersistentFlags().IntVarP(&port, "port", "p", 8080, "server port")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&user, "user", "", "auth username")
	rootCmd.PersistentFlags().StringVar(&password, "password", "", "auth password")
}

// SetVersion sets the version for the CLI
func SetVersion(v string) {
	Version = v
	rootCmd.Version = v
}

// GetServerURL returns the server URL based on flags
func GetServerURL() string {
	return fmt.Sprintf("http://%s:%d", host, port)
}

// GetConfigFile returns the config file path
func GetConfigFile() string {
	return cfgFile
}

// IsJSON returns whether JSON output is enabled
func IsJSON() bool {
	return jsonOut
}

// IsVerbose returns whether verbose output is enabled
func IsVerbose() bool {
	return verbose
}

// GetAuth returns auth credentials
func GetAuth() (string, string) {
	return user, password
}

// loadConfig reads the config file, or defaults when none is given.
// Commands re-validate after applying flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadOrDefault(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// newLogger builds the process logger. --verbose forces debug level.
func newLogger(cfg *config.Config) *slog.Logger {
	level := cfg.Logging.Level
	if verbose {
		level = "debug"
	}
	return logger.New(level, cfg.Logging.Format)
}

func analysisOptions(cfg *config.Config) analysis.Options {
	return analysis.Options{
		Policy:     cfg.EnergyPolicy(),
		Summarizer: cfg.SummarizerOptions(),
		Regression: cfg.RegressionOptions(),
		Workers:    cfg.Analysis.Workers,
		Strict:     cfg.Analysis.Strict,
	}
}
