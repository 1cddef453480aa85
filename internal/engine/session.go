package engine

import (
	"time"

	"github.com/Veraticus/leadflow/internal/blend"
	"github.com/Veraticus/leadflow/internal/filter"
	"github.com/Veraticus/leadflow/internal/metrics"
	"github.com/Veraticus/leadflow/internal/model"
)

// InputCounts records how many rows each export contributed.
type InputCounts struct {
	Leads     int `json:"leads"`
	Referrals int `json:"referrals"`
	Sold      int `json:"sold"`
}

// Session is the immutable result of one pipeline run. Queries never
// modify it, so one session may serve concurrent readers.
type Session struct {
	RunID    string         `json:"run_id"`
	LoadedAt time.Time      `json:"loaded_at"`
	Records  []model.Record `json:"-"`
	Stats    blend.Stats    `json:"stats"`
	Inputs   InputCounts    `json:"inputs"`
}

// Layers applies criteria to the session records.
func (s *Session) Layers(c filter.Criteria) filter.Layers {
	return filter.Apply(s.Records, c)
}

// Dashboard computes every aggregate view for criteria.
func (s *Session) Dashboard(c filter.Criteria, now time.Time) metrics.Dashboard {
	return metrics.Compute(s.Layers(c), now)
}

// Options lists the selectable filter values.
func (s *Session) Options() filter.Options {
	return filter.DiscoverOptions(s.Records)
}

// MonthLeads returns the leads delivered in month key.
func (s *Session) MonthLeads(c filter.Criteria, key string) []model.Record {
	return metrics.MonthLeads(s.Layers(c), key)
}

// MonthClosings returns the closings counted in month key.
func (s *Session) MonthClosings(c filter.Criteria, key string, now time.Time) []model.Record {
	return metrics.MonthClosings(s.Layers(c), key, now)
}
