package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/Veraticus/leadflow/internal/metrics"
)

// Format selects a report rendering.
type Format string

// Report formats.
const (
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// ReportMeta identifies the run a report was produced from.
type ReportMeta struct {
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`
}

type jsonReport struct {
	ReportMeta
	Dashboard metrics.Dashboard `json:"dashboard"`
}

// WriteReport renders the dashboard in format to w.
func WriteReport(w io.Writer, format Format, meta ReportMeta, d metrics.Dashboard) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(jsonReport{ReportMeta: meta, Dashboard: d})
	case FormatMarkdown:
		_, err := io.WriteString(w, Markdown(meta, d))
		return err
	case FormatHTML:
		out, err := HTML(meta, d)
		if err != nil {
			return err
		}
		_, err = w.Write(out)
		return err
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}

// Markdown renders the dashboard as a GitHub-flavored Markdown report.
func Markdown(meta ReportMeta, d metrics.Dashboard) string {
	var b strings.Builder

	b.WriteString("# Lead Performance Report\n\n")
	fmt.Fprintf(&b, "Run `%s`, generated %s.\n\n", meta.RunID, meta.GeneratedAt.Format("Jan 2, 2006 15:04"))
	if f := describeCriteria(d); f != "" {
		fmt.Fprintf(&b, "Filters: %s\n\n", f)
	}

	b.WriteString("## Summary\n\n")
	table(&b, []string{"Total Leads", "Total Closings", "Conversion Rate", "Total Closing Value"}, [][]string{{
		Count(d.Summary.TotalLeads),
		Count(d.Summary.TotalClosings),
		Percent(d.Summary.ConversionRate),
		Currency(d.Summary.TotalClosingValue),
	}})

	b.WriteString("## Lead Flow\n\n")
	rows := make([][]string, 0, len(d.LeadFlow))
	for _, m := range d.LeadFlow {
		rows = append(rows, []string{m.Label, Count(m.Leads), Count(m.Spillover), Percent(m.SpilloverRate)})
	}
	table(&b, []string{"Month", "Leads", "Spillover", "Spillover Rate"}, rows)

	b.WriteString("## Monthly Performance\n\n")
	rows = rows[:0]
	for _, m := range d.Performance {
		rows = append(rows, []string{m.Label, Count(m.Leads), Count(m.Closings), Percent(m.ConversionRate), Currency(m.ClosingValue)})
	}
	table(&b, []string{"Month", "Leads", "Closings", "Conversion", "Closing Value"}, rows)

	bucketSection(&b, "Price Ranges", "Price Range", d.PriceRanges)
	bucketSection(&b, "Delivery Methods", "Delivery Type", d.DeliveryMethods)
	bucketSection(&b, "Top Zip Codes", "Zip Code", d.ZipCodes)

	b.WriteString("## Recent Closings\n\n")
	closings := d.Closings
	if len(closings) > metrics.RecentClosings {
		closings = closings[:metrics.RecentClosings]
	}
	rows = rows[:0]
	for _, c := range closings {
		rows = append(rows, []string{c.ClientName, c.DeliveryDate, c.PurchaseDate, c.DeliveryType, string(c.Source), c.Status, Currency(c.SalesPrice)})
	}
	table(&b, []string{"Client", "Delivered", "Purchased", "Type", "Source", "Status", "Sales Price"}, rows)

	return b.String()
}

// HTML renders the Markdown report into a standalone HTML page.
func HTML(meta ReportMeta, d metrics.Dashboard) ([]byte, error) {
	var content bytes.Buffer
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	if err := md.Convert([]byte(Markdown(meta, d)), &content); err != nil {
		return nil, fmt.Errorf("markdown convert: %w", err)
	}

	var out bytes.Buffer
	out.WriteString("<!doctype html><html><head><meta charset='utf-8'><title>Lead Performance Report ")
	out.WriteString(html.EscapeString(meta.GeneratedAt.Format("2006-01-02")))
	out.WriteString("</title><style>" + reportCSS + "</style></head><body><main>")
	out.Write(content.Bytes())
	out.WriteString("</main></body></html>\n")
	return out.Bytes(), nil
}

const reportCSS = "body{font-family:system-ui,sans-serif;color:#2d292b;background:#f9f7f3;margin:0;padding:1rem;} " +
	"main{max-width:1000px;margin:0 auto;} h1{color:#d92228;} " +
	"table{width:100%;border-collapse:collapse;margin-bottom:1.5rem;font-size:0.9rem;} " +
	"th,td{border:1px solid #e3e0dd;padding:0.35rem 0.5rem;text-align:left;} " +
	"thead th{background:#2d292b;color:#fff;}"

func bucketSection(b *strings.Builder, title, label string, buckets []metrics.Bucket) {
	fmt.Fprintf(b, "## %s\n\n", title)
	rows := make([][]string, 0, len(buckets))
	for _, bk := range buckets {
		rows = append(rows, []string{bk.Name, Count(bk.Leads), Count(bk.Closings), Percent(bk.ConversionRate)})
	}
	table(b, []string{label, "Leads", "Closings", "Conversion"}, rows)
}

func table(b *strings.Builder, header []string, rows [][]string) {
	if len(rows) == 0 {
		b.WriteString("_No data._\n\n")
		return
	}
	writeRow(b, header)
	sep := make([]string, len(header))
	for i := range sep {
		sep[i] = "---"
	}
	writeRow(b, sep)
	for _, r := range rows {
		writeRow(b, r)
	}
	b.WriteString("\n")
}

func writeRow(b *strings.Builder, cells []string) {
	b.WriteString("|")
	for _, c := range cells {
		b.WriteString(" ")
		b.WriteString(strings.ReplaceAll(c, "|", `\|`))
		b.WriteString(" |")
	}
	b.WriteString("\n")
}

func describeCriteria(d metrics.Dashboard) string {
	c := d.Criteria
	var parts []string
	if c.Source != "" {
		parts = append(parts, "source "+string(c.Source))
	}
	if len(c.Markets) > 0 {
		parts = append(parts, "markets "+strings.Join(c.Markets, ", "))
	}
	if c.Zone != "" {
		parts = append(parts, "zone "+c.Zone)
	}
	if c.Year != 0 {
		parts = append(parts, fmt.Sprintf("year %d", c.Year))
	}
	if c.ClosingType != "" {
		parts = append(parts, "closings "+string(c.ClosingType))
	}
	if c.BrokerName != "" {
		parts = append(parts, "broker "+c.BrokerName)
	}
	return strings.Join(parts, "; ")
}
