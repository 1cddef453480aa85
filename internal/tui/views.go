package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/leadflow/internal/filter"
)

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	sections := []string{
		m.renderHeader(),
		m.renderTabs(),
		m.renderFilters(),
		m.statsPanel.View(),
		m.table.View(),
		m.renderStatus(),
		m.help.View(m.keymap),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderHeader() string {
	title := m.theme.Title.Render("Lead Performance")
	if m.session == nil {
		return title
	}
	sub := m.theme.Subtitle.Render("  run " + m.session.RunID + " · loaded " + m.session.LoadedAt.Format("Jan 2 15:04"))
	return title + sub
}

func (m Model) renderTabs() string {
	tabs := make([]string, len(tabTitles))
	for i := range tabTitles {
		style := m.theme.TabInactive
		if Tab(i) == m.tab {
			style = m.theme.TabActive
		}
		tabs[i] = style.Render(Tab(i).String())
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) renderFilters() string {
	c := m.criteria
	market := "All"
	if len(c.Markets) > 0 {
		market = strings.Join(c.Markets, ", ")
	}
	zone := "All"
	if c.Zone != "" {
		zone = c.Zone
	}
	year := "All"
	if c.Year != 0 {
		year = strconv.Itoa(c.Year)
	}
	closing := "All"
	if c.ClosingType == filter.ClosingsClient {
		closing = "Client"
	}

	field := func(label, value string) string {
		return m.theme.FilterLabel.Render(label+": ") + m.theme.FilterValue.Render(value)
	}
	return strings.Join([]string{
		field("Source", sourceLabel(c.Source)),
		field("Market", market),
		field("Zone", zone),
		field("Year", year),
		field("Closings", closing),
	}, "  ")
}

func (m Model) renderStatus() string {
	switch {
	case m.lastError != nil:
		return m.theme.StatusError.Render("Reload failed: " + m.lastError.Error())
	case m.reloading:
		return m.theme.StatusInfo.Render(m.status)
	case m.status != "":
		return m.theme.StatusSuccess.Render(m.status)
	}
	return ""
}
