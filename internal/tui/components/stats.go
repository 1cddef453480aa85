// Package components holds the reusable pieces of the terminal dashboard.
package components

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/leadflow/internal/export"
	"github.com/Veraticus/leadflow/internal/metrics"
	"github.com/Veraticus/leadflow/internal/tui/themes"
)

// StatsPanelModel displays the headline totals.
type StatsPanelModel struct {
	theme       themes.Theme
	progressBar progress.Model
	summary     metrics.Summary
	width       int
	compact     bool
}

// NewStatsPanelModel creates a new stats panel.
func NewStatsPanelModel(theme themes.Theme) StatsPanelModel {
	prog := progress.New(progress.WithSolidFill(string(theme.Primary)))
	prog.ShowPercentage = false
	prog.Width = 30

	return StatsPanelModel{
		progressBar: prog,
		theme:       theme,
	}
}

// SetSummary replaces the displayed totals.
func (m *StatsPanelModel) SetSummary(s metrics.Summary) {
	m.summary = s
}

// Summary returns the displayed totals.
func (m StatsPanelModel) Summary() metrics.Summary {
	return m.summary
}

// SetCompact switches to a single-line rendering.
func (m *StatsPanelModel) SetCompact(compact bool) {
	m.compact = compact
}

// Update handles messages.
func (m StatsPanelModel) Update(msg tea.Msg) (StatsPanelModel, tea.Cmd) {
	if msg, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = msg.Width
		m.progressBar.Width = max(10, min(m.width/3, 40))
		m.compact = m.width < 80
	}
	return m, nil
}

// View renders the stats panel.
func (m StatsPanelModel) View() string {
	s := m.summary
	if m.compact {
		return m.theme.Normal.Render(fmt.Sprintf("Leads %s | Closings %s | %s | %s",
			export.Count(s.TotalLeads),
			export.Count(s.TotalClosings),
			export.Percent(s.ConversionRate),
			export.Currency(s.TotalClosingValue)))
	}

	cell := func(label, value string) string {
		return lipgloss.JoinVertical(lipgloss.Left,
			m.theme.Subtitle.Render(label),
			m.theme.Bold.Render(value))
	}

	totals := lipgloss.JoinHorizontal(lipgloss.Top,
		cell("Total Leads", export.Count(s.TotalLeads)), "    ",
		cell("Total Closings", export.Count(s.TotalClosings)), "    ",
		cell("Closing Value", export.Currency(s.TotalClosingValue)),
	)

	// conversion rates are percentages, the bar takes a fraction
	bar := m.progressBar.ViewAs(min(s.ConversionRate/100, 1))
	conversion := lipgloss.JoinHorizontal(lipgloss.Center,
		m.theme.Subtitle.Render("Conversion "), bar, " ", m.theme.Bold.Render(export.Percent(s.ConversionRate)))

	return m.theme.RoundedBox.Render(lipgloss.JoinVertical(lipgloss.Left, totals, "", conversion))
}
