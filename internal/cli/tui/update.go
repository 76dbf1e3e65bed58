package tui

import (
	"math"

	tea "github.com/charmbracelet/bubbletea"
)

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case resultMsg:
		// Drop results of superseded filter settings
		if msg.seq == m.seq {
			m.apply(msg)
		}
		return m, nil
	}

	return m, nil
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "tab":
		if m.focus == focusMin {
			m.focus = focusMax
		} else {
			m.focus = focusMin
		}
		return m, nil

	case "left", "h":
		return m.moveBound(-m.config.Step)

	case "right", "l":
		return m.moveBound(m.config.Step)

	case "r":
		m.min, m.max = m.lo, m.hi
		return m.refilter()

	case "up", "k":
		if m.tableOffset > 0 {
			m.tableOffset--
		}
		return m, nil

	case "down", "j":
		if m.tableOffset < m.selected.Len()-1 {
			m.tableOffset++
		}
		return m, nil
	}

	return m, nil
}

// moveBound shifts the focused bound, keeping lo <= min <= max <= hi.
func (m Model) moveBound(delta float64) (tea.Model, tea.Cmd) {
	if !m.hasBounds {
		return m, nil
	}

	switch m.focus {
	case focusMin:
		m.min = math.Max(m.lo, math.Min(m.min+delta, m.max))
	case focusMax:
		m.max = math.Min(m.hi, math.Max(m.max+delta, m.min))
	}
	return m.refilter()
}

func (m Model) refilter() (tea.Model, tea.Cmd) {
	m.seq++
	return m, recompute(m.config, m.powerRange(), m.seq)
}
