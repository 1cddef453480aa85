package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Veraticus/leadflow/internal/blend"
	"github.com/Veraticus/leadflow/internal/filter"
	"github.com/Veraticus/leadflow/internal/ingest"
	"github.com/Veraticus/leadflow/internal/metrics"
	"github.com/Veraticus/leadflow/internal/model"
)

func sampleRecords() []model.Record {
	return []model.Record{
		{
			Name: "Jane Doe", FirstDeliveryTime: "2024-03-15", DeliveryType: "Phone",
			PriceRange: model.Price150To300K, Status: model.StatusClose, Market: "Austin",
			Source: model.SourceMarketVIP, MarketType: model.SourceMarketVIP,
			PurchaseDate: "2024-04-01", PurchaseValue: 260000,
		},
		{Name: "Bob Roe", FirstDeliveryTime: "2024-03-20", Source: model.SourceOpCity, MarketType: model.SourceOpCity},
	}
}

func TestRenderDashboard(t *testing.T) {
	now := time.Date(2024, time.June, 30, 0, 0, 0, 0, time.Local)
	d := metrics.Compute(filter.Apply(sampleRecords(), filter.Criteria{}), now)

	out := RenderDashboard(d)
	for _, want := range []string{"Lead Performance", "Lead Flow", "Monthly Performance", "Mar 24", "Jane Doe", "$260,000", "50.00%"} {
		assert.Contains(t, out, want)
	}
	assert.Contains(t, out, "Top Zip Codes\nNo data.", "zip codes below the threshold are hidden")
}

func TestTableEmpty(t *testing.T) {
	assert.Equal(t, "No data.", Table([]string{"A"}, nil))
	assert.Contains(t, Table([]string{"A", "B"}, [][]string{{"x", "y"}}), "x")
}

func TestRows(t *testing.T) {
	months := []metrics.Month{{Label: "Apr 24", Leads: 1200, Closings: 3, ConversionRate: 0.25, ClosingValue: 1500000, Spillover: 2, SpilloverRate: 66.666}}
	assert.Equal(t, [][]string{{"Apr 24", "1,200", "3", "0.25%", "$1,500,000"}}, MonthRows(months))
	assert.Equal(t, [][]string{{"Apr 24", "1,200", "2", "66.67%"}}, LeadFlowRows(months))
	assert.Equal(t, [][]string{{"Phone", "4", "1", "25.00%"}}, BucketRows([]metrics.Bucket{{Name: "Phone", Leads: 4, Closings: 1, ConversionRate: 25}}))
}

func TestRenderRecords(t *testing.T) {
	out := RenderRecords(sampleRecords())
	assert.Contains(t, out, "3/15/2024")
	assert.Contains(t, out, "4/1/2024")
	assert.Contains(t, out, "Bob Roe")
}

func TestRenderStats(t *testing.T) {
	out := RenderStats(blend.Stats{LeadRows: 1234, OpCityCreated: 2, UnrecognizedStatuses: 1})
	assert.Contains(t, out, "1,234")
	assert.Contains(t, out, "OpCity records created")
	assert.Contains(t, out, "Unrecognized statuses")
}

func TestRenderOptions(t *testing.T) {
	out := RenderOptions(filter.DiscoverOptions(sampleRecords()))
	assert.Contains(t, out, "Market VIP, OpCity")
	assert.Contains(t, out, "Austin (Market VIP)")
	assert.Contains(t, out, "2024")
	assert.True(t, strings.Contains(out, "Zones\nnone"))
}

func TestLoadProgress(t *testing.T) {
	var buf bytes.Buffer
	p := NewLoadProgress(&buf, 2)
	p.Loaded(ingest.KindLeads, 10)
	p.Loaded(ingest.KindSold, 3)
	assert.Contains(t, buf.String(), "2/2")
}
