package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/leadflow/internal/cli"
	"github.com/Veraticus/leadflow/internal/engine"
	"github.com/Veraticus/leadflow/internal/filter"
	"github.com/Veraticus/leadflow/internal/metrics"
	"github.com/Veraticus/leadflow/internal/model"
	"github.com/Veraticus/leadflow/internal/tui/components"
	"github.com/Veraticus/leadflow/internal/tui/themes"
)

// chromeHeight is the number of lines outside the table.
const chromeHeight = 12

// Model holds the dashboard state.
type Model struct {
	theme      themes.Theme
	lastError  error
	session    *engine.Session
	config     Config
	keymap     KeyMap
	help       help.Model
	options    filter.Options
	criteria   filter.Criteria
	dashboard  metrics.Dashboard
	table      components.TableModel
	statsPanel components.StatsPanelModel
	status     string
	width      int
	height     int
	tab        Tab
	reloading  bool
	quitting   bool
}

// newModel creates a model showing session.
func newModel(session *engine.Session, cfg Config) Model {
	h := help.New()
	h.ShowAll = cfg.ShowHelp

	m := Model{
		config:     cfg,
		theme:      cfg.Theme,
		keymap:     DefaultKeyMap(),
		help:       h,
		criteria:   cfg.Criteria,
		table:      components.NewTable(cfg.Theme),
		statsPanel: components.NewStatsPanelModel(cfg.Theme),
		width:      cfg.Width,
		height:     cfg.Height,
	}
	m.setSession(session)
	m.resize()
	return m
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.statsPanel, _ = m.statsPanel.Update(msg)
		m.resize()
		return m, nil

	case sessionLoadedMsg:
		m.reloading = false
		if msg.err != nil {
			m.lastError = msg.err
			m.status = ""
			return m, nil
		}
		m.lastError = nil
		m.setSession(msg.session)
		m.status = "Reloaded " + msg.session.LoadedAt.Format("15:04:05")
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keymap.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.resize()
		return m, nil

	case key.Matches(msg, m.keymap.NextTab):
		m.tab = (m.tab + 1) % Tab(len(tabTitles))
		m.refreshTable()
		return m, nil

	case key.Matches(msg, m.keymap.PrevTab):
		m.tab = (m.tab + Tab(len(tabTitles)) - 1) % Tab(len(tabTitles))
		m.refreshTable()
		return m, nil

	case key.Matches(msg, m.keymap.CycleSource):
		m.criteria.Source = cycle(m.options.Sources, m.criteria.Source, "")
		m.recompute()
		return m, nil

	case key.Matches(msg, m.keymap.CycleMarket):
		names := make([]string, len(m.options.Markets))
		for i, opt := range m.options.Markets {
			names[i] = opt.Name
		}
		current := ""
		if len(m.criteria.Markets) == 1 {
			current = m.criteria.Markets[0]
		}
		m.criteria.Markets = nil
		if next := cycle(names, current, ""); next != "" {
			m.criteria.Markets = []string{next}
		}
		m.recompute()
		return m, nil

	case key.Matches(msg, m.keymap.CycleZone):
		m.criteria.Zone = cycle(m.options.Zones, m.criteria.Zone, "")
		m.recompute()
		return m, nil

	case key.Matches(msg, m.keymap.CycleYear):
		m.criteria.Year = cycle(m.options.Years, m.criteria.Year, 0)
		m.recompute()
		return m, nil

	case key.Matches(msg, m.keymap.ToggleClosing):
		if m.criteria.ClosingType == filter.ClosingsClient {
			m.criteria.ClosingType = filter.ClosingsAll
		} else {
			m.criteria.ClosingType = filter.ClosingsClient
		}
		m.recompute()
		return m, nil

	case key.Matches(msg, m.keymap.ClearFilters):
		m.criteria = filter.Criteria{BrokerName: m.criteria.BrokerName}
		m.recompute()
		return m, nil

	case key.Matches(msg, m.keymap.Reload):
		if m.config.Reload == nil || m.reloading {
			return m, nil
		}
		m.reloading = true
		m.status = "Reloading..."
		return m, reload(m.config.Reload)
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// cycle returns the value after current in values, wrapping to none
// after the last one.
func cycle[T comparable](values []T, current, none T) T {
	if current == none {
		if len(values) == 0 {
			return none
		}
		return values[0]
	}
	for i, v := range values {
		if v == current && i+1 < len(values) {
			return values[i+1]
		}
	}
	return none
}

func reload(fn Reloader) tea.Cmd {
	return func() tea.Msg {
		session, err := fn(context.Background())
		return sessionLoadedMsg{session: session, err: err}
	}
}

func (m *Model) setSession(session *engine.Session) {
	m.session = session
	if session == nil {
		m.options = filter.Options{}
	} else {
		m.options = session.Options()
	}
	m.recompute()
}

func (m *Model) now() time.Time {
	if m.config.Clock == nil {
		return time.Now()
	}
	return m.config.Clock()
}

// recompute rebuilds every aggregate for the current criteria.
func (m *Model) recompute() {
	if m.session == nil {
		m.dashboard = metrics.Dashboard{Criteria: m.criteria}
	} else {
		m.dashboard = m.session.Dashboard(m.criteria, m.now())
	}
	m.statsPanel.SetSummary(m.dashboard.Summary)
	m.refreshTable()
}

func (m *Model) refreshTable() {
	d := m.dashboard
	switch m.tab {
	case TabOverview:
		m.table.SetData([]string{"Month", "Leads", "Spillover", "Spillover %"}, cli.LeadFlowRows(d.LeadFlow))
	case TabMonthly:
		m.table.SetData([]string{"Month", "Leads", "Closings", "Conversion", "Value"}, cli.MonthRows(d.Performance))
	case TabPriceRanges:
		m.table.SetData([]string{"Price Range", "Leads", "Closings", "Conversion"}, cli.BucketRows(d.PriceRanges))
	case TabDelivery:
		m.table.SetData([]string{"Delivery", "Leads", "Closings", "Conversion"}, cli.BucketRows(d.DeliveryMethods))
	case TabZipCodes:
		m.table.SetData([]string{"Zip Code", "Leads", "Closings", "Conversion"}, cli.BucketRows(d.ZipCodes))
	case TabClosings:
		m.table.SetData([]string{"Client", "Delivered", "Purchased", "Delivery", "Source", "Status", "Price"}, cli.ClosingRows(d.Closings))
	}
}

func (m *Model) resize() {
	extra := 0
	if m.help.ShowAll {
		extra = 4
	}
	m.help.Width = m.width
	m.table.Resize(m.width, max(3, m.height-chromeHeight-extra))
}

// Criteria returns the active filter selection.
func (m Model) Criteria() filter.Criteria {
	return m.criteria
}

// Dashboard returns the aggregates for the active selection.
func (m Model) Dashboard() metrics.Dashboard {
	return m.dashboard
}

// Tab returns the active view.
func (m Model) Tab() Tab {
	return m.tab
}

// sourceLabel renders a source filter value.
func sourceLabel(s model.Source) string {
	if s == "" {
		return "All"
	}
	return string(s)
}
