package cli

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/haskel/runeconomy/internal/cli/tui"
	"github.com/haskel/runeconomy/internal/cohort"
	"github.com/haskel/runeconomy/internal/ingest"
	"github.com/haskel/runeconomy/internal/physio/energy"
	"github.com/haskel/runeconomy/internal/regression"
)

var tuiStep float64

var tuiCmd = &cobra.Command{
	Use:   "tui <csv>",
	Short: "Explore a cohort interactively",
	Long: `Launch an interactive terminal explorer for a breath-by-breath export.
Narrow the net metabolic power range with the arrow keys and watch the
regression and cohort summary update.

Examples:
  runeconomy tui lab.csv
  runeconomy tui lab.csv --step 0.25`,
	Args: cobra.ExactArgs(1),
	RunE: runTUI,
}

func init() {
	tuiCmd.Flags().Float64Var(&tuiStep, "step", 0, "bound change per key press, W/kg (0 = auto)")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	samples, err := ingest.ReadFile(args[0])
	if err != nil {
		return err
	}

	model, err := energy.New(cfg.EnergyPolicy())
	if err != nil {
		return err
	}
	summarizer, err := cohort.NewSummarizer(model, cfg.SummarizerOptions())
	if err != nil {
		return err
	}
	table, err := cohort.NewAggregator(summarizer, cohort.WithWorkers(cfg.Analysis.Workers)).Aggregate(samples)
	if err != nil {
		return err
	}

	return tui.Run(tui.Config{
		Source:     filepath.Base(args[0]),
		Table:      table,
		Regressor:  regression.NewPowerSpeedRegressor(cfg.RegressionOptions()),
		Step:       tuiStep,
		PlotHeight: cfg.Plot.Height,
		PlotWidth:  cfg.Plot.Width,
	})
}
