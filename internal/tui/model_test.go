package tui

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/leadflow/internal/engine"
	"github.com/Veraticus/leadflow/internal/filter"
	"github.com/Veraticus/leadflow/internal/model"
)

var testNow = time.Date(2024, time.June, 30, 0, 0, 0, 0, time.Local)

func testSession(runID string) *engine.Session {
	return &engine.Session{
		RunID:    runID,
		LoadedAt: testNow,
		Records: []model.Record{
			{
				Name: "Jane Doe", FirstDeliveryTime: "2024-03-15", Market: "Austin",
				Source: model.SourceMarketVIP, DeliveryType: "Phone",
				PurchaseDate: "2024-04-01", PurchaseValue: 260000,
			},
			{
				Name: "Bob Roe", FirstDeliveryTime: "2023-05-20", Market: "Dallas",
				Source: model.SourceOpCity, DeliveryType: "Email",
			},
		},
	}
}

func testModel(opts ...Option) Model {
	cfg := defaultConfig()
	cfg.Clock = func() time.Time { return testNow }
	for _, opt := range opts {
		opt(&cfg)
	}
	return newModel(testSession("run-1"), cfg)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		var ok bool
		m, ok = next.(Model)
		require.True(t, ok)
	}
	return m
}

func TestModel_TabNavigation(t *testing.T) {
	m := testModel()
	assert.Equal(t, TabOverview, m.Tab())

	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, TabMonthly, m.Tab())

	m = press(t, m, tea.KeyMsg{Type: tea.KeyShiftTab}, tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, TabClosings, m.Tab(), "previous wraps around")
	require.Len(t, m.table.Rows(), 1)
	assert.Equal(t, "Jane Doe", m.table.Rows()[0][0])

	m = press(t, m, runes("l"))
	assert.Equal(t, TabOverview, m.Tab(), "next wraps around")
}

func TestModel_CycleFilters(t *testing.T) {
	tests := []struct {
		check func(t *testing.T, c filter.Criteria)
		name  string
		key   string
		times int
	}{
		{
			name: "source first", key: "s", times: 1,
			check: func(t *testing.T, c filter.Criteria) {
				t.Helper()
				assert.Equal(t, model.SourceMarketVIP, c.Source)
			},
		},
		{
			name: "source second", key: "s", times: 2,
			check: func(t *testing.T, c filter.Criteria) {
				t.Helper()
				assert.Equal(t, model.SourceOpCity, c.Source)
			},
		},
		{
			name: "source wraps to all", key: "s", times: 3,
			check: func(t *testing.T, c filter.Criteria) {
				t.Helper()
				assert.Equal(t, model.Source(""), c.Source)
			},
		},
		{
			name: "year newest first", key: "y", times: 1,
			check: func(t *testing.T, c filter.Criteria) {
				t.Helper()
				assert.Equal(t, 2024, c.Year)
			},
		},
		{
			name: "market single selection", key: "m", times: 2,
			check: func(t *testing.T, c filter.Criteria) {
				t.Helper()
				assert.Equal(t, []string{"Dallas"}, c.Markets)
			},
		},
		{
			name: "market wraps to all", key: "m", times: 3,
			check: func(t *testing.T, c filter.Criteria) {
				t.Helper()
				assert.Empty(t, c.Markets)
			},
		},
		{
			name: "closing type toggles", key: "c", times: 1,
			check: func(t *testing.T, c filter.Criteria) {
				t.Helper()
				assert.Equal(t, filter.ClosingsClient, c.ClosingType)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := testModel()
			for range tt.times {
				m = press(t, m, runes(tt.key))
			}
			tt.check(t, m.Criteria())
		})
	}
}

func TestModel_FilterRecomputes(t *testing.T) {
	m := testModel()
	all := m.Dashboard().Summary.TotalLeads

	m = press(t, m, runes("s"))
	assert.Less(t, m.Dashboard().Summary.TotalLeads, all)
	assert.Equal(t, model.SourceMarketVIP, m.Dashboard().Criteria.Source)
	assert.Equal(t, m.Dashboard().Summary, m.statsPanel.Summary())
}

func TestModel_ClearFiltersKeepsBroker(t *testing.T) {
	m := testModel(WithCriteria(filter.Criteria{BrokerName: "Rock Realty", Zone: "1"}))
	m = press(t, m, runes("s"), runes("c"), runes("x"))
	assert.Equal(t, filter.Criteria{BrokerName: "Rock Realty"}, m.Criteria())
}

func TestModel_Reload(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		m := testModel(WithReloader(func(context.Context) (*engine.Session, error) {
			return testSession("run-2"), nil
		}))

		next, cmd := m.Update(runes("r"))
		require.NotNil(t, cmd)
		m = next.(Model)
		assert.True(t, m.reloading)

		_, again := m.Update(runes("r"))
		assert.Nil(t, again, "reload already running")

		m = press(t, m, cmd())
		assert.False(t, m.reloading)
		assert.Equal(t, "run-2", m.session.RunID)
		assert.Contains(t, m.View(), "Reloaded")
	})

	t.Run("failure keeps session", func(t *testing.T) {
		m := testModel(WithReloader(func(context.Context) (*engine.Session, error) {
			return nil, errors.New("leads file missing")
		}))

		_, cmd := m.Update(runes("r"))
		require.NotNil(t, cmd)
		m = press(t, m, cmd())
		assert.Equal(t, "run-1", m.session.RunID)
		assert.Contains(t, m.View(), "Reload failed: leads file missing")
	})

	t.Run("disabled without reloader", func(t *testing.T) {
		_, cmd := testModel().Update(runes("r"))
		assert.Nil(t, cmd)
	})
}

func TestModel_Quit(t *testing.T) {
	next, cmd := testModel().Update(runes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
	assert.Empty(t, next.View())
}

func TestModel_View(t *testing.T) {
	m := press(t, testModel(), tea.WindowSizeMsg{Width: 120, Height: 40})
	view := m.View()

	assert.Contains(t, view, "Lead Performance")
	assert.Contains(t, view, "run run-1")
	for _, title := range tabTitles {
		assert.Contains(t, view, title)
	}
	assert.Contains(t, view, "Source: ")
	assert.Contains(t, view, "Total Leads")
}

func TestCycle(t *testing.T) {
	values := []string{"a", "b"}
	assert.Equal(t, "a", cycle(values, "", ""))
	assert.Equal(t, "b", cycle(values, "a", ""))
	assert.Equal(t, "", cycle(values, "b", ""))
	assert.Equal(t, "", cycle(values, "gone", ""))
	assert.Equal(t, "", cycle(nil, "", ""))
}

func TestRunRequiresSession(t *testing.T) {
	assert.Error(t, Run(context.Background(), nil))
}
