// Package filter selects the record subsets the metrics aggregator counts.
//
// Filtering runs as two stages. The base layer applies the market, zone,
// year and source predicates and is the only input to lead and spillover
// counting. The display layer wraps the base layer and flags records whose
// closings must not be counted under the current closing-type and broker
// settings. Narrowing what counts as a closing therefore never changes lead
// volume.
package filter

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/leadflow/internal/common"
	"github.com/Veraticus/leadflow/internal/model"
	"github.com/Veraticus/leadflow/internal/normalize"
)

// ClosingType selects which closings are counted.
type ClosingType string

// Closing-type modes.
const (
	ClosingsAll    ClosingType = "all"
	ClosingsClient ClosingType = "client"
)

// ParseClosingType parses a closing-type flag value; empty means all.
func ParseClosingType(s string) (ClosingType, error) {
	switch ClosingType(strings.ToLower(strings.TrimSpace(s))) {
	case "", ClosingsAll:
		return ClosingsAll, nil
	case ClosingsClient:
		return ClosingsClient, nil
	default:
		return ClosingsAll, fmt.Errorf("%w: closing type %q (want all or client)", common.ErrInvalidFilter, s)
	}
}

// Criteria holds the selected filter values. Zero values select everything.
type Criteria struct {
	Markets     []string     `json:"markets,omitempty"`
	Zone        string       `json:"zone,omitempty"`
	Year        int          `json:"year,omitempty"`
	Source      model.Source `json:"source,omitempty"`
	ClosingType ClosingType  `json:"closing_type,omitempty"`
	BrokerName  string       `json:"broker_name,omitempty"`
}

// ParseYear parses a year filter value; empty or "all" means no year.
func ParseYear(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "all") {
		return 0, nil
	}
	year, err := strconv.Atoi(s)
	if err != nil || year < 1 {
		return 0, fmt.Errorf("%w: year %q", common.ErrInvalidFilter, s)
	}
	return year, nil
}

// ParseSourceFilter parses a source filter value, ignoring case; empty or
// "all" means every source.
func ParseSourceFilter(s string) (model.Source, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "all") {
		return model.SourceUnknown, nil
	}
	for _, src := range model.Sources() {
		if strings.EqualFold(s, string(src)) {
			return src, nil
		}
	}
	return model.SourceUnknown, fmt.Errorf("%w: source %q", common.ErrInvalidFilter, s)
}

func (c Criteria) closingType() ClosingType {
	if c.ClosingType == "" {
		return ClosingsAll
	}
	return c.ClosingType
}

func (c Criteria) brokerNeedle() string {
	return strings.ToLower(strings.TrimSpace(c.BrokerName))
}

// BrokerMatches reports whether the record's buyer-broker contains the
// configured broker name, ignoring case. An empty broker name matches
// nothing.
func (c Criteria) BrokerMatches(r *model.Record) bool {
	needle := c.brokerNeedle()
	if needle == "" || r.BuyerBroker == "" {
		return false
	}
	return strings.Contains(strings.ToLower(r.BuyerBroker), needle)
}

// InBase reports whether the record passes the base-layer predicates.
func (c Criteria) InBase(r *model.Record) bool {
	if len(c.Markets) > 0 {
		market := strings.TrimSpace(r.Market)
		if market == "" || !slices.Contains(c.Markets, market) {
			return false
		}
	}
	if c.Zone != "" && r.LeadZone != c.Zone {
		return false
	}
	if c.Year != 0 {
		t, ok := normalize.ParseDate(r.FirstDeliveryTime)
		if !ok || t.Year() != c.Year {
			return false
		}
	}
	if c.Source != model.SourceUnknown && r.Source != c.Source {
		return false
	}
	return true
}

// excluded reports whether the record's closing is flagged out of closing
// counts: client mode, a purchase date, and neither a Close status nor a
// broker match.
func (c Criteria) excluded(r *model.Record) bool {
	if c.closingType() != ClosingsClient || !r.HasPurchase() {
		return false
	}
	return !r.Status.IsClose() && !c.BrokerMatches(r)
}

// CountsAsClosing reports whether the record counts as a closing at now and
// returns its parsed purchase date. Future-dated and unparseable purchase
// dates never count. In client mode the record must be a known source
// with status Close, or match the broker name.
func (c Criteria) CountsAsClosing(r *model.Record, now time.Time) (time.Time, bool) {
	if !r.HasPurchase() {
		return time.Time{}, false
	}
	purchased, ok := normalize.ParseDate(r.PurchaseDate)
	if !ok || purchased.After(now) {
		return time.Time{}, false
	}

	switch c.closingType() {
	case ClosingsClient:
		knownSource := r.Source == model.SourceMarketVIP || r.Source == model.SourceOpCity
		if (knownSource && r.Status.IsClose()) || c.BrokerMatches(r) {
			return purchased, true
		}
		return time.Time{}, false
	default:
		return purchased, true
	}
}

// Entry is a display-layer record.
type Entry struct {
	Record model.Record
	// ExcludedFromClosings keeps the record in lead counts but out of
	// closing aggregation.
	ExcludedFromClosings bool
}

// Layers is the output of Apply.
type Layers struct {
	Criteria Criteria
	Base     []model.Record
	Display  []Entry
}

// Apply runs both filter stages. Records are copied; the input is never
// modified, so exclusion flags never leak between calls.
func Apply(records []model.Record, c Criteria) Layers {
	layers := Layers{
		Criteria: c,
		Base:     make([]model.Record, 0, len(records)),
	}
	for i := range records {
		if c.InBase(&records[i]) {
			layers.Base = append(layers.Base, records[i])
		}
	}

	layers.Display = make([]Entry, len(layers.Base))
	for i := range layers.Base {
		layers.Display[i] = Entry{
			Record:               layers.Base[i],
			ExcludedFromClosings: c.excluded(&layers.Base[i]),
		}
	}
	return layers
}

// Closings returns the display-layer records counted as closings at now,
// together with their purchase dates.
func (l Layers) Closings(now time.Time) []Counted {
	var out []Counted
	for i := range l.Display {
		e := &l.Display[i]
		if e.ExcludedFromClosings {
			continue
		}
		if purchased, ok := l.Criteria.CountsAsClosing(&e.Record, now); ok {
			out = append(out, Counted{Record: e.Record, Purchased: purchased})
		}
	}
	return out
}

// Counted is a record counted as a closing.
type Counted struct {
	Record    model.Record
	Purchased time.Time
}

// DisplayRecords returns the display-layer records without flags.
func (l Layers) DisplayRecords() []model.Record {
	out := make([]model.Record, len(l.Display))
	for i := range l.Display {
		out[i] = l.Display[i].Record
	}
	return out
}
