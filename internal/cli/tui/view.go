package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
)

const (
	rangeBarWidth = 30
	maxVisible    = 8
)

// View renders the TUI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	sections := []string{
		m.renderTitleBar(),
		m.renderFilter(),
		m.renderTable(),
		m.renderRegression(),
		m.renderFacts(),
		m.renderFooter(),
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderTitleBar() string {
	title := titleStyle.Render("RUNNING ECONOMY EXPLORER")

	info := fmt.Sprintf("%s | %s policy | %gs window", m.config.Source, m.config.Table.Policy, m.config.Table.WindowSeconds)
	spacing := m.width - lipgloss.Width(title) - lipgloss.Width(info) - 2
	if spacing < 1 {
		spacing = 1
	}

	return fmt.Sprintf("%s%s%s", title, strings.Repeat(" ", spacing), helpStyle.Render(info))
}

func (m Model) renderFilter() string {
	if !m.hasBounds {
		return errorStyle.Render("  No subject has a defined net metabolic power")
	}

	minLabel := fmt.Sprintf("min %.2f", m.min)
	maxLabel := fmt.Sprintf("max %.2f", m.max)
	if m.focus == focusMin {
		minLabel = focusStyle.Render(minLabel)
		maxLabel = valueStyle.Render(maxLabel)
	} else {
		minLabel = valueStyle.Render(minLabel)
		maxLabel = focusStyle.Render(maxLabel)
	}

	return fmt.Sprintf("  %s [%s] %s  %s",
		labelStyle.Render(fmt.Sprintf("%.2f", m.lo)),
		m.renderRangeBar(),
		labelStyle.Render(fmt.Sprintf("%.2f W/kg", m.hi)),
		minLabel+"  "+maxLabel,
	)
}

func (m Model) renderRangeBar() string {
	span := m.hi - m.lo
	start, end := 0, rangeBarWidth
	if span > 0 {
		start = int(math.Round((m.min - m.lo) / span * rangeBarWidth))
		end = int(math.Round((m.max - m.lo) / span * rangeBarWidth))
	}

	return rangeEmptyStyle.Render(strings.Repeat("░", start)) +
		rangeFilledStyle.Render(strings.Repeat("█", end-start)) +
		rangeEmptyStyle.Render(strings.Repeat("░", rangeBarWidth-end))
}

func (m Model) renderTable() string {
	var lines []string
	lines = append(lines, sectionHeaderStyle.Render(fmt.Sprintf("  Cohort (%d of %d selected)", m.selected.Len(), m.config.Table.Len())))

	header := fmt.Sprintf("  %-12s │ %8s │ %8s │ %6s", "Subject", "Net W/kg", "RE", "m/s")
	lines = append(lines, tableHeaderStyle.Render(header))

	rows := m.config.Table.Rows
	start := m.tableOffset
	if start >= len(rows) {
		start = 0
	}
	end := start + maxVisible
	if end > len(rows) {
		end = len(rows)
	}

	for _, r := range rows[start:end] {
		id := r.SubjectID
		if len(id) > 12 {
			id = id[:9] + "..."
		}
		row := fmt.Sprintf("  %-12s │ %8s │ %8s │ %6s",
			id, formatValue(r.NetPowerWkg, 2), formatValue(r.RunningEconomy, 1), formatValue(r.SpeedMPS, 2))

		if _, ok := m.selected.Row(r.SubjectID); ok {
			lines = append(lines, tableCellStyle.Render(row))
		} else {
			lines = append(lines, excludedStyle.Render(row))
		}
	}

	if len(rows) > maxVisible {
		lines = append(lines, helpStyle.Render(fmt.Sprintf("  [%d-%d of %d subjects]", start+1, end, len(rows))))
	}

	return strings.Join(lines, "\n")
}

func (m Model) renderRegression() string {
	var lines []string
	lines = append(lines, sectionHeaderStyle.Render("  Speed vs net metabolic power"))

	if m.fitErr != nil {
		lines = append(lines, errorStyle.Render("  "+m.fitErr.Error()))
		return strings.Join(lines, "\n")
	}

	r := m.fit
	lines = append(lines, fmt.Sprintf("  %s %s  %s %s  %s %s  %s %d",
		labelStyle.Render("slope"), valueStyle.Render(fmt.Sprintf("%.4f", r.Slope)),
		labelStyle.Render("intercept"), valueStyle.Render(fmt.Sprintf("%.4f", r.Intercept)),
		labelStyle.Render("R²"), valueStyle.Render(formatValue(r.RSquared, 3)),
		labelStyle.Render("n"), r.N,
	))

	lower := make([]float64, len(r.Grid))
	mean := make([]float64, len(r.Grid))
	upper := make([]float64, len(r.Grid))
	for i, p := range r.Grid {
		lower[i], mean[i], upper[i] = p.CILower, p.PredictedSpeed, p.CIUpper
	}

	graph := asciigraph.PlotMany([][]float64{lower, mean, upper},
		asciigraph.Height(m.config.PlotHeight),
		asciigraph.Width(m.config.PlotWidth),
		asciigraph.Precision(2),
		asciigraph.SeriesColors(asciigraph.Default, asciigraph.Green, asciigraph.Default),
		asciigraph.Caption(fmt.Sprintf("predicted speed (m/s), %.0f%% CI, power %.2f to %.2f W/kg",
			r.Confidence*100, r.Grid[0].Power, r.Grid[len(r.Grid)-1].Power)),
	)
	lines = append(lines, graph)

	return strings.Join(lines, "\n")
}

func (m Model) renderFacts() string {
	f := m.facts
	var lines []string
	lines = append(lines, sectionHeaderStyle.Render("  Summary"))

	lines = append(lines, fmt.Sprintf("  %s %s   %s %s   %s %s",
		labelStyle.Render("mean power"), valueStyle.Render(formatValue(f.MeanNetPowerWkg, 2)+" W/kg"),
		labelStyle.Render("mean speed"), valueStyle.Render(formatValue(f.MeanSpeedMPS, 2)+" m/s"),
		labelStyle.Render("mean RE"), valueStyle.Render(formatValue(f.MeanRunningEconomy, 1)),
	))

	assoc := lipgloss.NewStyle().Foreground(associationColor(f.Association)).Render(string(f.Association))
	lines = append(lines, fmt.Sprintf("  %s %s  %s %s",
		labelStyle.Render("r"), valueStyle.Render(formatValue(f.Correlation, 2)),
		labelStyle.Render("association"), assoc,
	))

	if f.MostEconomical != nil && f.LeastEconomical != nil {
		lines = append(lines, fmt.Sprintf("  %s %s (%s)   %s %s (%s)",
			labelStyle.Render("most economical"), valueStyle.Render(f.MostEconomical.SubjectID), formatValue(f.MostEconomical.RunningEconomy, 1),
			labelStyle.Render("least economical"), valueStyle.Render(f.LeastEconomical.SubjectID), formatValue(f.LeastEconomical.RunningEconomy, 1),
		))
	}

	return strings.Join(lines, "\n")
}

func (m Model) renderFooter() string {
	return helpStyle.Render("  q:quit  tab:switch bound  ←→:move bound  r:reset  ↑↓:scroll")
}

func formatValue(v float64, prec int) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.*f", prec, v)
}
