package components

import (
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/leadflow/internal/tui/themes"
)

// TableModel is a scrollable data table.
type TableModel struct {
	theme themes.Theme
	table table.Model
	empty bool
}

// NewTable creates an empty focused table.
func NewTable(theme themes.Theme) TableModel {
	t := table.New(table.WithFocused(true), table.WithHeight(10))

	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(theme.Border).
		BorderBottom(true).
		Bold(true).
		Foreground(theme.Primary)
	styles.Selected = theme.Selected
	t.SetStyles(styles)

	return TableModel{theme: theme, table: t, empty: true}
}

// SetData replaces the header and rows. Column widths fit the widest cell.
func (m *TableModel) SetData(headers []string, rows [][]string) {
	columns := make([]table.Column, len(headers))
	for i, h := range headers {
		width := lipgloss.Width(h)
		for _, r := range rows {
			if i < len(r) {
				width = max(width, lipgloss.Width(r[i]))
			}
		}
		columns[i] = table.Column{Title: h, Width: width}
	}

	tableRows := make([]table.Row, len(rows))
	for i, r := range rows {
		tableRows[i] = table.Row(r)
	}

	// Rows must be cleared before the columns shrink.
	m.table.SetRows(nil)
	m.table.SetColumns(columns)
	m.table.SetRows(tableRows)
	m.table.GotoTop()
	m.empty = len(rows) == 0
}

// Resize sets the visible height.
func (m *TableModel) Resize(width, height int) {
	m.table.SetWidth(width)
	m.table.SetHeight(max(height, 3))
}

// Rows returns the current rows.
func (m TableModel) Rows() []table.Row {
	return m.table.Rows()
}

// Cursor returns the selected row index.
func (m TableModel) Cursor() int {
	return m.table.Cursor()
}

// Update forwards navigation keys to the table.
func (m TableModel) Update(msg tea.Msg) (TableModel, tea.Cmd) {
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the table.
func (m TableModel) View() string {
	if m.empty {
		return m.theme.Subtitle.Render("No data for the current filters.")
	}
	return m.table.View()
}
