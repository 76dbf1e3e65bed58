package cli

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/charmbracelet/lipgloss"

	"github.com/haskel/runeconomy/internal/cohort"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	tableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("86")).
				BorderBottom(true).
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(lipgloss.Color("240"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))
)

const tableRowFormat = "%-12s │ %7s │ %8s │ %8s │ %8s │ %6s"

func printTable(w io.Writer, table *cohort.Table) {
	header := fmt.Sprintf(tableRowFormat, "Subject", "Mass", "Net VO2", "RE", "Net W/kg", "m/s")
	fmt.Fprintln(w, tableHeaderStyle.Render(header))

	for _, r := range table.Rows {
		id := r.SubjectID
		if len(id) > 12 {
			id = id[:9] + "..."
		}
		fmt.Fprintf(w, tableRowFormat+"\n",
			id,
			formatValue(r.BodyMassKg, 1),
			formatValue(r.NetVO2MlMin, 0),
			formatValue(r.RunningEconomy, 2),
			formatValue(r.NetPowerWkg, 2),
			formatValue(r.SpeedMPS, 2),
		)
	}
	if table.Len() == 0 {
		fmt.Fprintln(w, "(no subjects)")
	}
}

// formatValue prints NaN as "n/a".
func formatValue(v float64, prec int) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return strconv.FormatFloat(v, 'f', prec, 64)
}

func formatRange(r cohort.PowerRange) string {
	lo, hi := "-∞", "+∞"
	if r.Min != nil {
		lo = formatValue(*r.Min, 2)
	}
	if r.Max != nil {
		hi = formatValue(*r.Max, 2)
	}
	return fmt.Sprintf("net power in [%s, %s] W/kg", lo, hi)
}
