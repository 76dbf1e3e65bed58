package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/haskel/runeconomy/internal/cohort"
	"github.com/haskel/runeconomy/internal/narrative"
	"github.com/haskel/runeconomy/internal/regression"
)

// resultMsg carries the evaluation of one filter setting
type resultMsg struct {
	seq      int
	selected *cohort.Table
	fit      *regression.Result
	err      error
	facts    narrative.Facts
}

func recompute(cfg Config, rng cohort.PowerRange, seq int) tea.Cmd {
	return func() tea.Msg {
		return evaluate(cfg, rng, seq)
	}
}

func evaluate(cfg Config, rng cohort.PowerRange, seq int) resultMsg {
	selected := cfg.Table
	if !rng.IsZero() {
		selected = cfg.Table.Filter(rng)
	}

	fit, err := cfg.Regressor.Fit(selected)
	return resultMsg{
		seq:      seq,
		selected: selected,
		fit:      fit,
		err:      err,
		facts:    narrative.Describe(selected),
	}
}
