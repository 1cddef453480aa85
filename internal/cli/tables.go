package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/Veraticus/leadflow/internal/blend"
	"github.com/Veraticus/leadflow/internal/export"
	"github.com/Veraticus/leadflow/internal/filter"
	"github.com/Veraticus/leadflow/internal/metrics"
	"github.com/Veraticus/leadflow/internal/model"
	"github.com/Veraticus/leadflow/internal/normalize"
)

// Table renders rows under headers with rounded borders.
func Table(headers []string, rows [][]string) string {
	if len(rows) == 0 {
		return SubtitleStyle.Render("No data.")
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(BorderColor)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return TableHeaderStyle
			}
			return TableCellStyle
		})
	return t.Render()
}

func section(b *strings.Builder, title, body string) {
	b.WriteString(TitleStyle.UnsetMargins().Render(title))
	b.WriteString("\n")
	b.WriteString(body)
	b.WriteString("\n\n")
}

// RenderDashboard renders every dashboard view as console tables.
func RenderDashboard(d metrics.Dashboard) string {
	var b strings.Builder

	summary := fmt.Sprintf("Leads %s   Closings %s   Conversion %s   Closing value %s",
		BoldStyle.Render(export.Count(d.Summary.TotalLeads)),
		BoldStyle.Render(export.Count(d.Summary.TotalClosings)),
		BoldStyle.Render(export.Percent(d.Summary.ConversionRate)),
		BoldStyle.Render(export.Currency(d.Summary.TotalClosingValue)))
	b.WriteString(RenderBox(ChartIcon+" Lead Performance", summary))
	b.WriteString("\n\n")

	section(&b, "Lead Flow", Table([]string{"Month", "Leads", "Spillover", "Spillover Rate"}, LeadFlowRows(d.LeadFlow)))
	section(&b, "Monthly Performance", Table([]string{"Month", "Leads", "Closings", "Conversion", "Closing Value"}, MonthRows(d.Performance)))
	section(&b, "Price Ranges", Table(bucketHeaders("Price Range"), BucketRows(d.PriceRanges)))
	section(&b, "Delivery Methods", Table(bucketHeaders("Delivery Type"), BucketRows(d.DeliveryMethods)))
	section(&b, "Top Zip Codes", Table(bucketHeaders("Zip Code"), BucketRows(d.ZipCodes)))

	closings := d.Closings
	if len(closings) > metrics.RecentClosings {
		closings = closings[:metrics.RecentClosings]
	}
	section(&b, "Recent Closings", Table(
		[]string{"Client", "Delivered", "Purchased", "Type", "Source", "Status", "Sales Price"},
		ClosingRows(closings)))

	return strings.TrimRight(b.String(), "\n") + "\n"
}

func bucketHeaders(label string) []string {
	return []string{label, "Leads", "Closings", "Conversion"}
}

// LeadFlowRows formats lead flow months as table rows.
func LeadFlowRows(months []metrics.Month) [][]string {
	rows := make([][]string, 0, len(months))
	for _, m := range months {
		rows = append(rows, []string{m.Label, export.Count(m.Leads), export.Count(m.Spillover), export.Percent(m.SpilloverRate)})
	}
	return rows
}

// MonthRows formats monthly aggregates as table rows.
func MonthRows(months []metrics.Month) [][]string {
	rows := make([][]string, 0, len(months))
	for _, m := range months {
		rows = append(rows, []string{
			m.Label,
			export.Count(m.Leads),
			export.Count(m.Closings),
			export.Percent(m.ConversionRate),
			export.Currency(m.ClosingValue),
		})
	}
	return rows
}

// BucketRows formats categorical aggregates as table rows.
func BucketRows(buckets []metrics.Bucket) [][]string {
	rows := make([][]string, 0, len(buckets))
	for _, bk := range buckets {
		rows = append(rows, []string{bk.Name, export.Count(bk.Leads), export.Count(bk.Closings), export.Percent(bk.ConversionRate)})
	}
	return rows
}

// ClosingRows formats closing entries as table rows.
func ClosingRows(closings []metrics.ClosingEntry) [][]string {
	rows := make([][]string, 0, len(closings))
	for _, c := range closings {
		rows = append(rows, []string{
			c.ClientName, c.DeliveryDate, c.PurchaseDate, c.DeliveryType,
			string(c.Source), c.Status, export.Currency(c.SalesPrice),
		})
	}
	return rows
}

// RenderRecords lists records for a month drill-down.
func RenderRecords(records []model.Record) string {
	rows := make([][]string, 0, len(records))
	for i := range records {
		r := &records[i]
		value := ""
		if r.PurchaseValue != 0 {
			value = export.Currency(r.PurchaseValue)
		}
		rows = append(rows, []string{
			r.Name,
			displayDate(r.FirstDeliveryTime),
			string(r.Source),
			r.Market,
			string(r.Status),
			displayDate(r.PurchaseDate),
			value,
		})
	}
	return Table([]string{"Client", "Delivered", "Source", "Market", "Status", "Purchased", "Value"}, rows)
}

func displayDate(raw string) string {
	if t, ok := normalize.ParseDate(raw); ok {
		return normalize.FormatDate(t)
	}
	return raw
}

// RenderStats renders what each blend stage did.
func RenderStats(s blend.Stats) string {
	row := func(label string, n int) []string { return []string{label, export.Count(n)} }
	return Table([]string{"Stage", "Count"}, [][]string{
		row("Lead rows", s.LeadRows),
		row("Leads skipped (no name)", s.LeadsSkipped),
		row("Leads replaced (duplicate name)", s.LeadsReplaced),
		row("Referral rows", s.ReferralRows),
		row("Referrals skipped (no name)", s.ReferralsSkipped),
		row("Referrals ignored (unknown source)", s.ReferralsIgnored),
		row("Market VIP status updates", s.StatusUpdates),
		row("Market VIP agent backfills", s.AgentBackfills),
		row("Market VIP closings merged", s.ClosedMerged),
		row("Market VIP closings dropped", s.ClosedDropped),
		row("OpCity closings merged", s.OpCityClosedMerged),
		row("OpCity status updates", s.OpCityStatusUpdates),
		row("OpCity records created", s.OpCityCreated),
		row("Sold rows", s.SoldRows),
		row("Sold matched", s.SoldMatched),
		row("Records from leads", s.FromLeads),
		row("Records from referrals", s.FromReferrals),
		row("Unrecognized statuses", s.UnrecognizedStatuses),
		row("Non-canonical price ranges", s.NonCanonicalPrices),
	})
}

// RenderOptions lists the discoverable filter values.
func RenderOptions(o filter.Options) string {
	var b strings.Builder

	sources := make([]string, len(o.Sources))
	for i, s := range o.Sources {
		sources[i] = string(s)
	}
	years := make([]string, len(o.Years))
	for i, y := range o.Years {
		years[i] = strconv.Itoa(y)
	}

	markets := make([][]string, 0, len(o.Markets))
	for _, m := range o.Markets {
		markets = append(markets, []string{m.Name, m.Label})
	}

	section(&b, "Sources", orNone(sources))
	section(&b, "Markets", Table([]string{"Market", "Label"}, markets))
	section(&b, "Zones", orNone(o.Zones))
	section(&b, "Years", orNone(years))

	return strings.TrimRight(b.String(), "\n") + "\n"
}

func orNone(values []string) string {
	if len(values) == 0 {
		return SubtitleStyle.Render("none")
	}
	return strings.Join(values, ", ")
}
