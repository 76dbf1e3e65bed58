package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/haskel/runeconomy/internal/cohort"
	"github.com/haskel/runeconomy/internal/config"
	"github.com/haskel/runeconomy/internal/ingest"
	"github.com/haskel/runeconomy/internal/physio"
)

var (
	plotSubject string
	plotCompare []string
	plotWindow  float64
)

var plotCmd = &cobra.Command{
	Use:   "plot <csv>",
	Short: "Plot VO2 over time",
	Long: `Plot a subject's rest and run VO2 with the steady-state window, or compare
run-phase VO2 of several subjects aligned to the start of the run.

Examples:
  runeconomy plot lab.csv --subject S01
  runeconomy plot lab.csv --compare S01,S02,S03`,
	Args: cobra.ExactArgs(1),
	RunE: runPlot,
}

func init() {
	plotCmd.Flags().StringVar(&plotSubject, "subject", "", "subject to plot")
	plotCmd.Flags().StringSliceVar(&plotCompare, "compare", nil, "subjects to compare, comma separated")
	plotCmd.Flags().Float64Var(&plotWindow, "window", 0, "steady-state window in seconds")
	plotCmd.MarkFlagsOneRequired("subject", "compare")
	plotCmd.MarkFlagsMutuallyExclusive("subject", "compare")
	rootCmd.AddCommand(plotCmd)
}

func runPlot(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("window") {
		cfg.Analysis.WindowSeconds = plotWindow
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	samples, err := ingest.ReadFile(args[0])
	if err != nil {
		return err
	}
	opts := cfg.SummarizerOptions()

	if plotSubject != "" {
		var own []physio.Sample
		for _, s := range samples {
			if s.SubjectID == plotSubject {
				own = append(own, s)
			}
		}
		if len(own) == 0 {
			return fmt.Errorf("subject %q not found in %s", plotSubject, args[0])
		}
		return renderSubjectPlot(os.Stdout, cohort.Profile(own, opts), cfg.Plot)
	}

	runs := cohort.AlignRuns(samples, plotCompare, opts)
	if len(runs) == 0 {
		return fmt.Errorf("none of %s has run samples", strings.Join(plotCompare, ", "))
	}
	return renderComparePlot(os.Stdout, runs, cfg.Plot)
}

func renderSubjectPlot(w io.Writer, p cohort.SubjectProfile, pc config.PlotConfig) error {
	fmt.Fprintln(w, headerStyle.Render("Subject "+p.SubjectID))

	for _, phase := range []cohort.PhaseProfile{p.Rest, p.Run} {
		fmt.Fprintln(w)
		if len(phase.Samples) == 0 {
			fmt.Fprintln(w, warnStyle.Render(fmt.Sprintf("%s: no samples", phase.Phase)))
			continue
		}

		caption := fmt.Sprintf("%s VO2 (mL/min) over %d samples", phase.Phase, len(phase.Samples))
		fmt.Fprintln(w, asciigraph.Plot(physio.Field(phase.Samples, physio.VO2),
			asciigraph.Height(pc.Height),
			asciigraph.Width(pc.Width),
			asciigraph.Precision(0),
			asciigraph.Caption(caption),
		))

		fmt.Fprintf(w, "  mean %s mL/min, 95%% band [%s, %s]\n",
			formatValue(phase.MeanVO2, 1), formatValue(phase.LowerVO2, 1), formatValue(phase.UpperVO2, 1))
		if phase.HasSpan {
			fmt.Fprintf(w, "  steady state %gs to %gs\n", phase.SteadyState.Start, phase.SteadyState.End)
		}
	}
	return nil
}

func renderComparePlot(w io.Writer, runs []cohort.AlignedRun, pc config.PlotConfig) error {
	series := make([][]float64, len(runs))
	legends := make([]string, len(runs))
	for i, r := range runs {
		series[i] = r.VO2MlMin
		legends[i] = r.SubjectID
	}

	fmt.Fprintln(w, headerStyle.Render("Run-phase VO2, aligned to run start"))
	fmt.Fprintln(w, asciigraph.PlotMany(series,
		asciigraph.Height(pc.Height),
		asciigraph.Width(pc.Width),
		asciigraph.Precision(0),
		asciigraph.SeriesColors(seriesColors(len(runs))...),
		asciigraph.SeriesLegends(legends...),
		asciigraph.Caption("VO2 (mL/min)"),
	))

	for _, r := range runs {
		fmt.Fprintf(w, "  %s: %d samples, steady state %gs to %gs\n",
			r.SubjectID, len(r.TimeS), r.SteadyState.Start, r.SteadyState.End)
	}
	return nil
}

var palette = []asciigraph.AnsiColor{
	asciigraph.Red,
	asciigraph.Blue,
	asciigraph.Green,
	asciigraph.Yellow,
	asciigraph.Magenta,
	asciigraph.Cyan,
}

func seriesColors(n int) []asciigraph.AnsiColor {
	colors := make([]asciigraph.AnsiColor, n)
	for i := range colors {
		colors[i] = palette[i%len(palette)]
	}
	return colors
}
