package sheets

import (
	"context"
	"fmt"
	"time"

	"github.com/Veraticus/leadflow/internal/metrics"
	"github.com/Veraticus/leadflow/internal/model"
)

// Tab titles of the exported spreadsheet.
const (
	TabBlended = "Blended Data"
	TabMonthly = "Monthly Performance"
	TabSummary = "Summary"
)

// ReportWriter publishes a report somewhere.
type ReportWriter interface {
	Write(ctx context.Context, report *Report) error
}

// Report is the content of one spreadsheet export.
type Report struct {
	GeneratedAt time.Time
	RunID       string
	Records     []model.Record
	Dashboard   metrics.Dashboard
}

// Tab is one sheet worth of cell values.
type Tab struct {
	Title string
	// Values holds rows; the first row is the header.
	Values [][]any
	// CurrencyColumns are zero-based columns formatted as dollars.
	CurrencyColumns []int
	// PercentColumns are zero-based columns holding percentages.
	PercentColumns []int
}

// Tabs lays the report out as sheets, in spreadsheet order.
func (r *Report) Tabs() []Tab {
	return []Tab{r.blendedTab(), r.monthlyTab(), r.summaryTab()}
}

func (r *Report) blendedTab() Tab {
	header := make([]any, len(model.ExportColumns))
	for i, c := range model.ExportColumns {
		header[i] = c
	}
	values := make([][]any, 0, len(r.Records)+1)
	values = append(values, header)

	for i := range r.Records {
		rec := &r.Records[i]
		cells := rec.Values()
		row := make([]any, len(cells))
		for j, c := range cells {
			row[j] = c
		}
		// keep the sale price numeric so the sheet can sum it
		if rec.PurchaseValue != 0 {
			row[valueColumn] = rec.PurchaseValue
		}
		values = append(values, row)
	}

	return Tab{Title: TabBlended, Values: values, CurrencyColumns: []int{valueColumn}}
}

var valueColumn = indexOf(model.ExportColumns, "purchased value")

func indexOf(columns []string, name string) int {
	for i, c := range columns {
		if c == name {
			return i
		}
	}
	return -1
}

func (r *Report) monthlyTab() Tab {
	values := [][]any{{"Month", "Leads", "Closings", "Conversion Rate", "Closing Value", "Spillover", "Spillover Rate"}}
	for _, m := range r.Dashboard.Monthly {
		values = append(values, []any{
			m.Label,
			m.Leads,
			m.Closings,
			m.ConversionRate / 100,
			m.ClosingValue,
			m.Spillover,
			m.SpilloverRate / 100,
		})
	}
	return Tab{Title: TabMonthly, Values: values, CurrencyColumns: []int{4}, PercentColumns: []int{3, 6}}
}

func (r *Report) summaryTab() Tab {
	d := r.Dashboard
	values := [][]any{
		{"Lead Performance Report", r.GeneratedAt.Format("Jan 2, 2006 15:04")},
		{"Run", r.RunID},
		{},
		{"Total Leads", d.Summary.TotalLeads},
		{"Total Closings", d.Summary.TotalClosings},
		{"Conversion Rate", d.Summary.ConversionRate / 100},
		{"Total Closing Value", d.Summary.TotalClosingValue},
	}

	sections := []struct {
		title   string
		buckets []metrics.Bucket
	}{
		{title: "Price Range", buckets: d.PriceRanges},
		{title: "Delivery Type", buckets: d.DeliveryMethods},
		{title: "Zip Code", buckets: d.ZipCodes},
	}
	for _, s := range sections {
		values = append(values, []any{}, []any{s.title, "Leads", "Closings", "Conversion Rate"})
		for _, b := range s.buckets {
			values = append(values, []any{b.Name, b.Leads, b.Closings, b.ConversionRate / 100})
		}
	}

	return Tab{Title: TabSummary, Values: values}
}

// cellRange addresses a1 within a tab.
func cellRange(title, a1 string) string {
	return fmt.Sprintf("'%s'!%s", title, a1)
}
