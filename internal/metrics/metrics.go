// Package metrics derives the dashboard aggregates from filtered records.
package metrics

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Veraticus/leadflow/internal/common"
	"github.com/Veraticus/leadflow/internal/filter"
	"github.com/Veraticus/leadflow/internal/model"
	"github.com/Veraticus/leadflow/internal/normalize"
)

const (
	// LeadFlowMonths is the number of recent months in the lead flow table.
	LeadFlowMonths = 6
	// PerformanceMonths is the number of months charted.
	PerformanceMonths = 24
	// MinZipLeads is the lead count a zip code needs to be listed.
	MinZipLeads = 5
	// TopZipCodes caps the zip code list.
	TopZipCodes = 10
	// RecentClosings is the number of closings the summary table shows.
	RecentClosings = 10
)

// Month is one monthly aggregate.
type Month struct {
	Key            string  `json:"month"`
	Label          string  `json:"display_month"`
	Leads          int     `json:"leads"`
	Closings       int     `json:"closings"`
	ClosingValue   float64 `json:"closing_value"`
	Spillover      int     `json:"spillover"`
	ConversionRate float64 `json:"conversion_rate"`
	SpilloverRate  float64 `json:"spillover_rate"`
}

// Bucket is one categorical aggregate.
type Bucket struct {
	Name           string  `json:"name"`
	Leads          int     `json:"leads"`
	Closings       int     `json:"closings"`
	ConversionRate float64 `json:"conversion_rate"`
}

// ClosingEntry is a flattened closing for tabular display.
type ClosingEntry struct {
	ClientName   string       `json:"client_name"`
	DeliveryDate string       `json:"delivery_date"`
	PurchaseDate string       `json:"purchase_date"`
	DeliveryType string       `json:"type"`
	Source       model.Source `json:"source"`
	Status       string       `json:"status"`
	SalesPrice   float64      `json:"sales_price"`

	purchased time.Time
	dated     bool
}

// Summary holds the headline totals.
type Summary struct {
	TotalLeads        int     `json:"total_leads"`
	TotalClosings     int     `json:"total_closings"`
	TotalClosingValue float64 `json:"total_closing_value"`
	ConversionRate    float64 `json:"conversion_rate"`
}

// Dashboard is every aggregate view for one filter selection.
type Dashboard struct {
	Criteria        filter.Criteria `json:"criteria"`
	Summary         Summary         `json:"summary"`
	Monthly         []Month         `json:"monthly"`
	Performance     []Month         `json:"performance"`
	LeadFlow        []Month         `json:"lead_flow"`
	PriceRanges     []Bucket        `json:"price_ranges"`
	DeliveryMethods []Bucket        `json:"delivery_methods"`
	ZipCodes        []Bucket        `json:"zip_codes"`
	Closings        []ClosingEntry  `json:"closings"`
}

// Compute builds the dashboard for the filtered layers. now decides which
// purchase dates are in the future.
func Compute(layers filter.Layers, now time.Time) Dashboard {
	display := layers.DisplayRecords()
	monthly := MonthlySeries(layers, now)

	return Dashboard{
		Criteria:        layers.Criteria,
		Summary:         Summarize(monthly),
		Monthly:         monthly,
		Performance:     last(monthly, PerformanceMonths),
		LeadFlow:        LeadFlow(monthly),
		PriceRanges:     PriceRanges(display),
		DeliveryMethods: DeliveryMethods(display),
		ZipCodes:        ZipCodes(display),
		Closings:        Closings(display),
	}
}

// Rate returns part/whole as a percentage, 0 when whole is 0.
func Rate(part, whole int) float64 {
	if whole <= 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}

// ConversionRate is Rate capped at 100. Closings are bucketed by purchase
// month and leads by delivery month, so a month can close more than it
// received.
func ConversionRate(closings, leads int) float64 {
	return min(Rate(closings, leads), 100)
}

// MonthLabel renders a month key as "Jan 24".
func MonthLabel(key string) string {
	t, err := time.Parse("2006-01", key)
	if err != nil {
		return key
	}
	return t.Format("Jan 06")
}

// MonthlySeries buckets base-layer leads by delivery month and counted
// closings by purchase month, sorted ascending by month key.
func MonthlySeries(layers filter.Layers, now time.Time) []Month {
	months := make(map[string]*Month)
	get := func(key string) *Month {
		m, ok := months[key]
		if !ok {
			m = &Month{Key: key, Label: MonthLabel(key)}
			months[key] = m
		}
		return m
	}

	for i := range layers.Base {
		r := &layers.Base[i]
		delivered, ok := normalize.ParseDate(r.FirstDeliveryTime)
		if !ok {
			continue
		}
		m := get(normalize.MonthKey(delivered))
		m.Leads++
		if r.Agent != "" {
			m.Spillover++
		}
	}

	for _, c := range layers.Closings(now) {
		m := get(normalize.MonthKey(c.Purchased))
		m.Closings++
		m.ClosingValue += c.Record.PurchaseValue
	}

	out := make([]Month, 0, len(months))
	for _, m := range months {
		m.ConversionRate = ConversionRate(m.Closings, m.Leads)
		m.SpilloverRate = Rate(m.Spillover, m.Leads)
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Summarize totals a monthly series.
func Summarize(monthly []Month) Summary {
	var s Summary
	for _, m := range monthly {
		s.TotalLeads += m.Leads
		s.TotalClosings += m.Closings
		s.TotalClosingValue += m.ClosingValue
	}
	s.ConversionRate = ConversionRate(s.TotalClosings, s.TotalLeads)
	return s
}

// LeadFlow returns the most recent months, newest first.
func LeadFlow(monthly []Month) []Month {
	recent := last(monthly, LeadFlowMonths)
	out := make([]Month, len(recent))
	for i, m := range recent {
		out[len(recent)-1-i] = m
	}
	return out
}

func last(monthly []Month, n int) []Month {
	if len(monthly) <= n {
		return monthly
	}
	return monthly[len(monthly)-n:]
}

// PriceBucket classifies a stored price-range label by substring lookup.
// Legacy labels such as "$100K-$300K" fold into the nearest bucket.
func PriceBucket(label model.PriceRange) model.PriceRange {
	s := strings.ToUpper(string(label))
	has := func(tokens ...string) bool {
		for _, t := range tokens {
			if strings.Contains(s, t) {
				return true
			}
		}
		return false
	}

	switch {
	case s == "":
		return model.PriceUnknown
	case has("$300K-$500K"):
		return model.Price300To500K
	case has("$150K-$300K", "$100K-$300K"):
		return model.Price150To300K
	case has("$100K-$150K"):
		return model.Price100To150K
	case has("<$150K", "<$100K", "<$60K", "LESS THAN $60K"):
		return model.PriceUnder60K
	case has("$500K-$1M", "$500K"):
		return model.Price500KTo1M
	case has("$1M", "$1 MILLION"):
		return model.PriceOver1M
	case has("$60K-$100K"):
		return model.Price60To100K
	default:
		return model.PriceUnknown
	}
}

type tally struct {
	order   []string
	buckets map[string]*Bucket
}

func newTally(seed ...string) *tally {
	t := &tally{buckets: make(map[string]*Bucket)}
	for _, name := range seed {
		t.bucket(name)
	}
	return t
}

func (t *tally) bucket(name string) *Bucket {
	b, ok := t.buckets[name]
	if !ok {
		b = &Bucket{Name: name}
		t.buckets[name] = b
		t.order = append(t.order, name)
	}
	return b
}

func (t *tally) add(name string, closed bool) {
	b := t.bucket(name)
	b.Leads++
	if closed {
		b.Closings++
	}
}

// sorted returns non-empty buckets by descending lead count; ties keep
// first-seen order.
func (t *tally) sorted() []Bucket {
	out := make([]Bucket, 0, len(t.order))
	for _, name := range t.order {
		b := t.buckets[name]
		if b.Leads == 0 {
			continue
		}
		b.ConversionRate = Rate(b.Closings, b.Leads)
		out = append(out, *b)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Leads > out[j].Leads })
	return out
}

func priceSeed() []string {
	ranges := model.PriceRanges()
	out := make([]string, len(ranges))
	for i, p := range ranges {
		out[i] = string(p)
	}
	return out
}

// PriceRanges buckets records by price range. A record counts as closed
// when it has any purchase date.
func PriceRanges(records []model.Record) []Bucket {
	t := newTally(priceSeed()...)
	for i := range records {
		t.add(string(PriceBucket(records[i].PriceRange)), records[i].HasPurchase())
	}
	return t.sorted()
}

// DeliveryMethods buckets records by delivery type.
func DeliveryMethods(records []model.Record) []Bucket {
	t := newTally()
	for i := range records {
		method := records[i].DeliveryType
		if method == "" {
			method = "Unknown"
		}
		t.add(method, records[i].HasPurchase())
	}
	return t.sorted()
}

// ZipCodes returns the busiest inquiry zip codes with at least
// MinZipLeads leads.
func ZipCodes(records []model.Record) []Bucket {
	t := newTally()
	for i := range records {
		zip := records[i].InquiryZip
		if zip == "" || zip == "Unknown" {
			continue
		}
		t.add(zip, records[i].HasPurchase())
	}

	var out []Bucket
	for _, b := range t.sorted() {
		if b.Leads >= MinZipLeads {
			out = append(out, b)
		}
	}
	if len(out) > TopZipCodes {
		out = out[:TopZipCodes]
	}
	return out
}

// Closings lists records with a purchase date, most recent first.
// Unparseable purchase dates sort last.
func Closings(records []model.Record) []ClosingEntry {
	var out []ClosingEntry
	for i := range records {
		r := &records[i]
		if !r.HasPurchase() {
			continue
		}
		out = append(out, newClosingEntry(r))
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.dated != b.dated {
			return a.dated
		}
		return a.dated && a.purchased.After(b.purchased)
	})
	return out
}

func newClosingEntry(r *model.Record) ClosingEntry {
	e := ClosingEntry{
		ClientName:   orUnknown(r.Name),
		DeliveryDate: "Unknown",
		PurchaseDate: "Unknown",
		DeliveryType: orUnknown(r.DeliveryType),
		Source:       r.Source,
		Status:       orUnknown(string(r.Status)),
		SalesPrice:   r.PurchaseValue,
	}
	if e.Source == model.SourceUnknown {
		e.Source = "Unknown"
	}
	if t, ok := normalize.ParseDate(r.FirstDeliveryTime); ok {
		e.DeliveryDate = normalize.FormatDate(t)
	}
	if t, ok := normalize.ParseDate(r.PurchaseDate); ok {
		e.PurchaseDate = normalize.FormatDate(t)
		e.purchased = t
		e.dated = true
	}
	return e
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}

// MonthLeads returns display-layer records delivered in month key.
func MonthLeads(layers filter.Layers, key string) []model.Record {
	var out []model.Record
	for i := range layers.Display {
		r := layers.Display[i].Record
		if t, ok := normalize.ParseDate(r.FirstDeliveryTime); ok && normalize.MonthKey(t) == key {
			out = append(out, r)
		}
	}
	return out
}

// MonthClosings returns records counted as closings in month key.
func MonthClosings(layers filter.Layers, key string, now time.Time) []model.Record {
	var out []model.Record
	for _, c := range layers.Closings(now) {
		if normalize.MonthKey(c.Purchased) == key {
			out = append(out, c.Record)
		}
	}
	return out
}

// ParseMonthKey validates a "YYYY-MM" month key.
func ParseMonthKey(s string) (string, error) {
	s = strings.TrimSpace(s)
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return "", fmt.Errorf("%w: %q (want YYYY-MM)", common.ErrInvalidMonth, s)
	}
	return normalize.MonthKey(t), nil
}
