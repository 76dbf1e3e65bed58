package tui

import (
	"github.com/haskel/runeconomy/internal/cohort"
	"github.com/haskel/runeconomy/internal/narrative"
	"github.com/haskel/runeconomy/internal/regression"
)

// Config holds TUI configuration
type Config struct {
	Source    string
	Table     *cohort.Table
	Regressor *regression.PowerSpeedRegressor

	// Step is the bound change per key press in W/kg. Zero picks a
	// twentieth of the table's power range.
	Step float64

	PlotHeight int
	PlotWidth  int
}

type bound int

const (
	focusMin bound = iota
	focusMax
)

// Model represents the TUI state
type Model struct {
	config Config

	// Power bounds of the full table
	lo, hi    float64
	hasBounds bool

	// Current filter
	min, max float64
	focus    bound

	// Latest evaluation of the filtered table
	seq      int
	selected *cohort.Table
	fit      *regression.Result
	fitErr   error
	facts    narrative.Facts

	// UI state
	width  int
	height int

	// Table scroll position
	tableOffset int
}

// NewModel creates a model with the filter spanning the whole table
func NewModel(cfg Config) Model {
	m := Model{config: cfg}
	m.lo, m.hi, m.hasBounds = cfg.Table.PowerBounds()
	m.min, m.max = m.lo, m.hi

	if m.config.Step <= 0 {
		m.config.Step = (m.hi - m.lo) / 20
		if m.config.Step <= 0 {
			m.config.Step = 0.1
		}
	}
	if m.config.PlotHeight <= 0 {
		m.config.PlotHeight = 8
	}
	if m.config.PlotWidth <= 0 {
		m.config.PlotWidth = 50
	}

	m.apply(evaluate(m.config, m.powerRange(), 0))
	return m
}

// powerRange is open when the filter spans the full table, so rows with
// undefined power stay in the selection.
func (m Model) powerRange() cohort.PowerRange {
	if !m.hasBounds || (m.min <= m.lo && m.max >= m.hi) {
		return cohort.PowerRange{}
	}
	lo, hi := m.min, m.max
	return cohort.PowerRange{Min: &lo, Max: &hi}
}

func (m *Model) apply(r resultMsg) {
	m.selected = r.selected
	m.fit = r.fit
	m.fitErr = r.err
	m.facts = r.facts
}
