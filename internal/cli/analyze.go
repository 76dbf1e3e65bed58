package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/haskel/runeconomy/internal/analysis"
	"github.com/haskel/runeconomy/internal/cohort"
	"github.com/haskel/runeconomy/internal/config"
	"github.com/haskel/runeconomy/internal/ingest"
	"github.com/haskel/runeconomy/internal/report"
	"github.com/haskel/runeconomy/internal/storage"
)

var (
	analyzePolicy    string
	analyzeWindow    float64
	analyzeWorkers   int
	analyzeStrict    bool
	analyzeMinPower  float64
	analyzeMaxPower  float64
	analyzeOutputDir string
	analyzeFormats   []string
	analyzeSave      bool
	analyzeNoWrite   bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <csv>",
	Short: "Analyze a breath-by-breath export",
	Long: `Summarize every subject in a breath-by-breath CSV export, fit speed against
net metabolic power, and write the report files.

Examples:
  runeconomy analyze lab.csv
  runeconomy analyze lab.csv --policy brockway --window 90
  runeconomy analyze lab.csv --min-power 12 --max-power 18 --format json,parquet
  runeconomy analyze lab.csv --save --json`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	f := analyzeCmd.Flags()
	f.StringVar(&analyzePolicy, "policy", "", "energy policy: net or brockway")
	f.Float64Var(&analyzeWindow, "window", 0, "steady-state window in seconds")
	f.IntVar(&analyzeWorkers, "workers", 0, "subjects summarized concurrently")
	f.BoolVar(&analyzeStrict, "strict", false, "abort on the first invalid subject")
	f.Float64Var(&analyzeMinPower, "min-power", 0, "lower net power bound, W/kg")
	f.Float64Var(&analyzeMaxPower, "max-power", 0, "upper net power bound, W/kg")
	f.StringVarP(&analyzeOutputDir, "output-dir", "o", "", "directory for report files")
	f.StringSliceVar(&analyzeFormats, "format", nil, "output formats: json, csv, parquet")
	f.BoolVar(&analyzeSave, "save", false, "store the run in the history database")
	f.BoolVar(&analyzeNoWrite, "no-write", false, "skip writing report files")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyAnalysisFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	filter := powerRangeFlags(cmd, "min-power", "max-power", analyzeMinPower, analyzeMaxPower)

	log := newLogger(cfg)

	path := args[0]
	samples, err := ingest.ReadFile(path)
	if err != nil {
		return err
	}

	analyzer, err := analysis.New(analysisOptions(cfg), log)
	if err != nil {
		return err
	}

	rep, err := analyzer.Run(cmd.Context(), analysis.Request{
		Samples: samples,
		Filter:  filter,
		Source:  filepath.Base(path),
	})
	if err != nil {
		return err
	}

	var written []string
	if !analyzeNoWrite {
		formats, err := report.ParseFormats(cfg.Output.Formats)
		if err != nil {
			return err
		}
		written, err = report.NewWriter(cfg.Output.Dir, formats, log).Write(rep)
		if err != nil {
			return err
		}
	}

	if cfg.Storage.Enabled {
		if err := saveReport(cmd.Context(), cfg, rep); err != nil {
			return err
		}
	}

	if jsonOut {
		return report.WriteJSON(os.Stdout, rep)
	}

	printReport(os.Stdout, rep)
	for _, p := range written {
		fmt.Printf("wrote %s\n", p)
	}
	return nil
}

// applyAnalysisFlags overrides config values with explicitly set flags.
func applyAnalysisFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("policy") {
		cfg.Analysis.Policy = analyzePolicy
	}
	if flags.Changed("window") {
		cfg.Analysis.WindowSeconds = analyzeWindow
	}
	if flags.Changed("workers") {
		cfg.Analysis.Workers = analyzeWorkers
	}
	if flags.Changed("strict") {
		cfg.Analysis.Strict = analyzeStrict
	}
	if flags.Changed("output-dir") {
		cfg.Output.Dir = analyzeOutputDir
	}
	if flags.Changed("format") {
		cfg.Output.Formats = analyzeFormats
	}
	if flags.Changed("save") {
		cfg.Storage.Enabled = analyzeSave
	}
}

// powerRangeFlags builds a range from the bounds that were set on the command line.
func powerRangeFlags(cmd *cobra.Command, minName, maxName string, lo, hi float64) cohort.PowerRange {
	var pr cohort.PowerRange
	if cmd.Flags().Changed(minName) {
		pr.Min = &lo
	}
	if cmd.Flags().Changed(maxName) {
		pr.Max = &hi
	}
	return pr
}

func saveReport(ctx context.Context, cfg *config.Config, rep *analysis.Report) error {
	store, err := storage.Open(cfg.Storage.Path, newLogger(cfg))
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.SaveReport(ctx, rep); err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

func printReport(w io.Writer, rep *analysis.Report) {
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("Run %s (%s policy, %gs window)", rep.ID, rep.Policy, rep.WindowSeconds)))
	if !rep.Filter.IsZero() {
		fmt.Fprintf(w, "Filter: %s\n", formatRange(rep.Filter))
	}
	fmt.Fprintln(w)

	printTable(w, rep.Analyzed())

	for _, s := range rep.Cohort.Skipped {
		fmt.Fprintln(w, warnStyle.Render(fmt.Sprintf("skipped %s: %v", s.SubjectID, s.Err)))
	}
	fmt.Fprintln(w)

	switch rep.RegressionStatus {
	case analysis.RegressionOK:
		r := rep.Regression
		fmt.Fprintf(w, "speed = %.4f + %.4f × power  (R² %s, n=%d, %.0f%% CI)\n",
			r.Intercept, r.Slope, formatValue(r.RSquared, 3), r.N, r.Confidence*100)
	default:
		fmt.Fprintln(w, warnStyle.Render("regression: "+rep.RegressionError))
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, rep.Narrative())
}
