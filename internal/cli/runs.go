package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/haskel/runeconomy/internal/cohort"
	"github.com/haskel/runeconomy/internal/report"
	"github.com/haskel/runeconomy/internal/storage"
)

var runsLimit int

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List stored analysis runs",
	Long:  `List analysis runs stored in the history database, newest first.`,
	Args:  cobra.NoArgs,
	RunE:  runRunsList,
}

var runsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a stored report",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsShow,
}

var runsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a stored run",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsDelete,
}

var runsHistoryCmd = &cobra.Command{
	Use:   "history <subject>",
	Short: "Show a subject's running economy across stored runs",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsHistory,
}

func init() {
	runsCmd.Flags().IntVarP(&runsLimit, "limit", "n", 20, "maximum runs to list, 0 for all")
	runsCmd.AddCommand(runsShowCmd, runsDeleteCmd, runsHistoryCmd)
	rootCmd.AddCommand(runsCmd)
}

func openStore() (*storage.Storage, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return storage.Open(cfg.Storage.Path, newLogger(cfg))
}

func runRunsList(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.ListRuns(cmd.Context(), runsLimit)
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(os.Stdout, runs)
	}
	printRuns(os.Stdout, runs)
	return nil
}

func runRunsShow(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	rep, err := store.GetReport(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if jsonOut {
		return report.WriteJSON(os.Stdout, rep)
	}
	printReport(os.Stdout, rep)
	return nil
}

func runRunsDelete(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.DeleteRun(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Printf("deleted run %s\n", args[0])
	return nil
}

func runRunsHistory(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	points, err := store.SubjectHistory(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(os.Stdout, points)
	}
	if len(points) == 0 {
		fmt.Printf("no stored runs for subject %s\n", args[0])
		return nil
	}

	header := fmt.Sprintf("%-36s │ %-20s │ %8s │ %8s │ %6s", "Run", "Created", "RE", "Net W/kg", "m/s")
	fmt.Println(tableHeaderStyle.Render(header))
	for _, p := range points {
		fmt.Printf("%-36s │ %-20s │ %8s │ %8s │ %6s\n",
			p.RunID,
			p.CreatedAt.Format("2006-01-02 15:04:05"),
			formatValue(p.RunningEconomy, 2),
			formatValue(p.NetPowerWkg, 2),
			formatValue(p.SpeedMPS, 2),
		)
	}
	return nil
}

func printRuns(w io.Writer, runs []storage.RunInfo) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "no stored runs")
		return
	}

	header := fmt.Sprintf("%-36s │ %-20s │ %-8s │ %4s │ %7s │ %-17s", "Run", "Created", "Policy", "Subj", "Slope", "Association")
	fmt.Fprintln(w, tableHeaderStyle.Render(header))
	for _, r := range runs {
		fmt.Fprintf(w, "%-36s │ %-20s │ %-8s │ %4d │ %7s │ %-17s\n",
			r.ID,
			r.CreatedAt.Format("2006-01-02 15:04:05"),
			r.Policy,
			r.Selected,
			formatValue(cohort.FromNullable(r.Slope), 4),
			r.Association,
		)
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
