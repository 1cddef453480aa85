package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/Veraticus/leadflow/internal/common"
	"github.com/Veraticus/leadflow/internal/filter"
	"github.com/Veraticus/leadflow/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, time.June, 30, 12, 0, 0, 0, time.Local)

func records() []model.Record {
	return []model.Record{
		{
			Name: "Jane Doe", FirstDeliveryTime: "2024-03-15", Agent: "Alice", DeliveryType: "Phone",
			PriceRange: model.Price150To300K, InquiryZip: "78701", Source: model.SourceMarketVIP, Status: model.StatusClose,
			PurchaseDate: "2024-04-01", PurchaseValue: 260000, BuyerBroker: "Rock Realty",
		},
		{
			Name: "Bob Roe", FirstDeliveryTime: "2024-03-20", DeliveryType: "Phone",
			PriceRange: model.PriceRange("$100K-$300K"), InquiryZip: "78701", Source: model.SourceMarketVIP, Status: model.StatusSpoke,
			PurchaseDate: "2024-04-15", PurchaseValue: 150000, BuyerBroker: "Elsewhere",
		},
		{
			Name: "Cara Poe", FirstDeliveryTime: "2024-04-02", Agent: "Dana",
			PriceRange: model.PriceUnknown, Source: model.SourceOpCity, Status: model.StatusNew,
		},
		{
			Name: "Future Fay", FirstDeliveryTime: "2024-04-03", DeliveryType: "Live transfer",
			PriceRange: model.PriceOver1M, Source: model.SourceOpCity, Status: model.StatusClose,
			PurchaseDate: "2025-01-01", PurchaseValue: 1200000,
		},
		{
			Name: "Undated Ulla", FirstDeliveryTime: "not a date", DeliveryType: "Live transfer",
			PriceRange: model.Price300To500K, Source: model.SourceOpCity, Status: model.StatusClose,
			PurchaseDate: "whenever",
		},
	}
}

func TestMonthlySeries(t *testing.T) {
	layers := filter.Apply(records(), filter.Criteria{})
	monthly := MonthlySeries(layers, testNow)

	require.Len(t, monthly, 2)

	mar := monthly[0]
	assert.Equal(t, "2024-03", mar.Key)
	assert.Equal(t, "Mar 24", mar.Label)
	assert.Equal(t, 2, mar.Leads)
	assert.Equal(t, 1, mar.Spillover)
	assert.Equal(t, 0, mar.Closings)
	assert.InDelta(t, 50.0, mar.SpilloverRate, 0.001)
	assert.Zero(t, mar.ConversionRate)

	apr := monthly[1]
	assert.Equal(t, "2024-04", apr.Key)
	assert.Equal(t, 2, apr.Leads)
	assert.Equal(t, 2, apr.Closings, "future and undated purchases are not counted")
	assert.Equal(t, 410000.0, apr.ClosingValue)
	assert.InDelta(t, 100.0, apr.ConversionRate, 0.001)
}

func TestMonthlySeries_ClientMode(t *testing.T) {
	layers := filter.Apply(records(), filter.Criteria{ClosingType: filter.ClosingsClient})
	monthly := MonthlySeries(layers, testNow)

	require.Len(t, monthly, 2)
	assert.Equal(t, 1, monthly[1].Closings)
	assert.Equal(t, 260000.0, monthly[1].ClosingValue)

	layers = filter.Apply(records(), filter.Criteria{ClosingType: filter.ClosingsClient, BrokerName: "elsewhere"})
	assert.Equal(t, 2, MonthlySeries(layers, testNow)[1].Closings)
}

func TestMonthlySeries_ClosingOnlyMonthHasZeroRate(t *testing.T) {
	recs := []model.Record{{
		Name: "Late", FirstDeliveryTime: "2023-01-05", Source: model.SourceMarketVIP,
		PurchaseDate: "2024-02-10", PurchaseValue: 1,
	}}

	monthly := MonthlySeries(filter.Apply(recs, filter.Criteria{}), testNow)

	require.Len(t, monthly, 2)
	feb := monthly[1]
	assert.Equal(t, "2024-02", feb.Key)
	assert.Equal(t, 0, feb.Leads)
	assert.Equal(t, 1, feb.Closings)
	assert.Zero(t, feb.ConversionRate)
	assert.Zero(t, feb.SpilloverRate)
}

func TestRatesBounded(t *testing.T) {
	dashboard := Compute(filter.Apply(records(), filter.Criteria{}), testNow)
	for _, m := range dashboard.Monthly {
		assert.GreaterOrEqual(t, m.ConversionRate, 0.0, m.Key)
		assert.LessOrEqual(t, m.ConversionRate, 100.0, m.Key)
		if m.Leads == 0 {
			assert.Zero(t, m.ConversionRate, m.Key)
		}
	}
	assert.Zero(t, Rate(3, 0))
}

func TestConversionRateCapped(t *testing.T) {
	recs := []model.Record{
		{Name: "A", FirstDeliveryTime: "2024-03-01", Source: model.SourceMarketVIP, PurchaseDate: "2024-04-05", PurchaseValue: 100000},
		{Name: "B", FirstDeliveryTime: "2024-03-02", Source: model.SourceMarketVIP, PurchaseDate: "2024-04-06", PurchaseValue: 200000},
		{Name: "C", FirstDeliveryTime: "2024-04-03", Source: model.SourceMarketVIP},
	}

	monthly := MonthlySeries(filter.Apply(recs, filter.Criteria{}), testNow)

	require.Len(t, monthly, 2)
	apr := monthly[1]
	assert.Equal(t, "2024-04", apr.Key)
	assert.Equal(t, 1, apr.Leads)
	assert.Equal(t, 2, apr.Closings)
	assert.Equal(t, 100.0, apr.ConversionRate)
	assert.Equal(t, 300000.0, apr.ClosingValue)

	summary := Summarize([]Month{{Leads: 1, Closings: 4}})
	assert.Equal(t, 100.0, summary.ConversionRate)
	assert.Equal(t, 50.0, ConversionRate(1, 2))
}

func TestLeadFlow(t *testing.T) {
	var monthly []Month
	for i := 1; i <= 8; i++ {
		monthly = append(monthly, Month{Key: fmt.Sprintf("2024-%02d", i)})
	}

	flow := LeadFlow(monthly)

	require.Len(t, flow, LeadFlowMonths)
	assert.Equal(t, "2024-08", flow[0].Key)
	assert.Equal(t, "2024-03", flow[5].Key)
	assert.Len(t, LeadFlow(monthly[:2]), 2)
}

func TestPriceBucket(t *testing.T) {
	tests := []struct {
		label model.PriceRange
		want  model.PriceRange
	}{
		{label: model.Price300To500K, want: model.Price300To500K},
		{label: model.Price150To300K, want: model.Price150To300K},
		{label: "$100K-$300K", want: model.Price150To300K},
		{label: model.Price100To150K, want: model.Price100To150K},
		{label: "<$150K", want: model.PriceUnder60K},
		{label: model.PriceUnder60K, want: model.PriceUnder60K},
		{label: model.Price500KTo1M, want: model.Price500KTo1M},
		{label: "$500K+", want: model.Price500KTo1M},
		{label: model.PriceOver1M, want: model.PriceOver1M},
		{label: "$1 million", want: model.PriceOver1M},
		{label: model.Price60To100K, want: model.Price60To100K},
		{label: model.PriceUnknown, want: model.PriceUnknown},
		{label: "", want: model.PriceUnknown},
		{label: "$2K-$3K", want: model.PriceUnknown},
	}

	for _, tt := range tests {
		t.Run(string(tt.label), func(t *testing.T) {
			assert.Equal(t, tt.want, PriceBucket(tt.label))
		})
	}
}

func TestPriceRanges(t *testing.T) {
	got := PriceRanges(records())

	require.Len(t, got, 4)
	assert.Equal(t, Bucket{Name: "$150K-$300K", Leads: 2, Closings: 2, ConversionRate: 100}, got[0])
	names := []string{got[1].Name, got[2].Name, got[3].Name}
	assert.Equal(t, []string{"Unknown", "$300K-$500K", "$1M+"}, names, "ties keep bucket order")
}

func TestDeliveryMethods(t *testing.T) {
	got := DeliveryMethods(records())

	require.Len(t, got, 3)
	assert.Equal(t, "Phone", got[0].Name)
	assert.Equal(t, 2, got[0].Leads)
	assert.Equal(t, "Live transfer", got[1].Name)
	assert.Equal(t, 2, got[1].Closings)
	assert.Equal(t, "Unknown", got[2].Name)
	assert.Zero(t, got[2].ConversionRate)
}

func TestZipCodes(t *testing.T) {
	var recs []model.Record
	add := func(zip string, n, closed int) {
		for i := 0; i < n; i++ {
			r := model.Record{Name: fmt.Sprintf("%s-%d", zip, i), InquiryZip: zip}
			if i < closed {
				r.PurchaseDate = "2024-01-01"
			}
			recs = append(recs, r)
		}
	}
	add("Unknown", 20, 0)
	add("", 20, 0)
	add("11111", 4, 0)
	for i := 0; i < 12; i++ {
		add(fmt.Sprintf("2%04d", i), 5+i, 1)
	}

	got := ZipCodes(recs)

	require.Len(t, got, TopZipCodes)
	assert.Equal(t, "20011", got[0].Name)
	assert.Equal(t, 16, got[0].Leads)
	assert.InDelta(t, 100.0/16, got[0].ConversionRate, 0.0001)
	for _, b := range got {
		assert.GreaterOrEqual(t, b.Leads, MinZipLeads)
		assert.NotEqual(t, "11111", b.Name)
		assert.NotEqual(t, "Unknown", b.Name)
	}
}

func TestClosings(t *testing.T) {
	got := Closings(records())

	require.Len(t, got, 4)
	assert.Equal(t, "Future Fay", got[0].ClientName)
	assert.Equal(t, "1/1/2025", got[0].PurchaseDate)
	assert.Equal(t, "Bob Roe", got[1].ClientName)
	assert.Equal(t, "Jane Doe", got[2].ClientName)
	assert.Equal(t, "3/15/2024", got[2].DeliveryDate)
	assert.Equal(t, "4/1/2024", got[2].PurchaseDate)
	assert.Equal(t, 260000.0, got[2].SalesPrice)
	assert.Equal(t, "Undated Ulla", got[3].ClientName, "unparseable dates sort last")
	assert.Equal(t, "Unknown", got[3].PurchaseDate)
	assert.Equal(t, "Unknown", got[3].DeliveryDate)
}

func TestCompute(t *testing.T) {
	dashboard := Compute(filter.Apply(records(), filter.Criteria{Source: model.SourceMarketVIP}), testNow)

	assert.Equal(t, model.SourceMarketVIP, dashboard.Criteria.Source)
	assert.Equal(t, Summary{TotalLeads: 2, TotalClosings: 2, TotalClosingValue: 410000, ConversionRate: 100}, dashboard.Summary)
	assert.Len(t, dashboard.Closings, 2)
	assert.Len(t, dashboard.LeadFlow, 2)
	assert.Equal(t, "2024-04", dashboard.LeadFlow[0].Key)
	assert.Equal(t, dashboard.Monthly, dashboard.Performance)
}

func TestMonthDrilldown(t *testing.T) {
	layers := filter.Apply(records(), filter.Criteria{})

	leads := MonthLeads(layers, "2024-04")
	require.Len(t, leads, 2)
	assert.Equal(t, "Cara Poe", leads[0].Name)
	assert.Equal(t, "Future Fay", leads[1].Name)

	closings := MonthClosings(layers, "2024-04", testNow)
	require.Len(t, closings, 2)
	assert.Equal(t, "Jane Doe", closings[0].Name)

	assert.Empty(t, MonthClosings(layers, "2025-01", testNow), "future closings are excluded")

	client := filter.Apply(records(), filter.Criteria{ClosingType: filter.ClosingsClient})
	require.Len(t, MonthClosings(client, "2024-04", testNow), 1)
}

func TestParseMonthKey(t *testing.T) {
	key, err := ParseMonthKey(" 2024-03 ")
	require.NoError(t, err)
	assert.Equal(t, "2024-03", key)

	_, err = ParseMonthKey("March")
	assert.ErrorIs(t, err, common.ErrInvalidMonth)

	assert.Equal(t, "Dec 23", MonthLabel("2023-12"))
	assert.Equal(t, "bogus", MonthLabel("bogus"))
}
