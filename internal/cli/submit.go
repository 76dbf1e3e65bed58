package cli

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/haskel/runeconomy/internal/report"
)

var (
	submitMinPower float64
	submitMaxPower float64
	submitNoSave   bool
)

var submitCmd = &cobra.Command{
	Use:   "submit <csv>",
	Short: "Analyze an export on a running server",
	Long: `Upload a breath-by-breath CSV export to a runeconomy server and print the report.

Examples:
  runeconomy submit lab.csv
  runeconomy submit lab.csv --host 10.0.0.5 --port 9000 --user coach --password secret
  runeconomy submit lab.csv --min-power 12 --no-save --json`,
	Args: cobra.ExactArgs(1),
	RunE: runSubmit,
}

func init() {
	submitCmd.Flags().Float64Var(&submitMinPower, "min-power", 0, "lower net power bound, W/kg")
	submitCmd.Flags().Float64Var(&submitMaxPower, "max-power", 0, "upper net power bound, W/kg")
	submitCmd.Flags().BoolVar(&submitNoSave, "no-save", false, "do not store the run on the server")
	rootCmd.AddCommand(submitCmd)
}

func runSubmit(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	client := NewClient()
	if err := client.Health(); err != nil {
		return fmt.Errorf("server not reachable at %s: %w", GetServerURL(), err)
	}

	rep, err := client.Analyze(f, submitQuery(cmd, filepath.Base(args[0])))
	if err != nil {
		return err
	}

	if jsonOut {
		return report.WriteJSON(os.Stdout, rep)
	}
	printReport(os.Stdout, rep)
	return nil
}

func submitQuery(cmd *cobra.Command, source string) url.Values {
	q := url.Values{}
	q.Set("source", source)
	if cmd.Flags().Changed("min-power") {
		q.Set("min_power", strconv.FormatFloat(submitMinPower, 'g', -1, 64))
	}
	if cmd.Flags().Changed("max-power") {
		q.Set("max_power", strconv.FormatFloat(submitMaxPower, 'g', -1, 64))
	}
	if submitNoSave {
		q.Set("save", "false")
	}
	return q
}
