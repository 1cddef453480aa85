package filter

import (
	"testing"
	"time"

	"github.com/Veraticus/leadflow/internal/common"
	"github.com/Veraticus/leadflow/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, time.June, 30, 12, 0, 0, 0, time.Local)

func fixture() []model.Record {
	return []model.Record{
		{
			Name: "Closed VIP", FirstDeliveryTime: "2024-01-10", Market: "Austin", LeadZone: "1",
			Source: model.SourceMarketVIP, MarketType: model.SourceMarketVIP, Status: model.StatusClose,
			PurchaseDate: "2024-03-01", PurchaseValue: 300000, BuyerBroker: "Rock Realty",
		},
		{
			Name: "Sold Elsewhere", FirstDeliveryTime: "2024-02-10", Market: " Austin ", LeadZone: "2",
			Source: model.SourceMarketVIP, MarketType: model.SourceMarketVIP, Status: model.StatusSpoke,
			PurchaseDate: "2024-04-01", PurchaseValue: 250000, BuyerBroker: "Other Brokerage",
		},
		{
			Name: "Broker Match", FirstDeliveryTime: "2023-11-02", Market: "Dallas", LeadZone: "1",
			Source: model.SourceMarketVIP, MarketType: model.SourceMarketVIP, Status: model.StatusMet,
			PurchaseDate: "2024-02-14", PurchaseValue: 200000, BuyerBroker: "ACME Homes LLC",
		},
		{
			Name: "OpCity Open", FirstDeliveryTime: "2024-05-05", Market: "Austin",
			Source: model.SourceOpCity, MarketType: model.SourceOpCity, Status: model.StatusNew,
		},
		{
			Name: "Future Close", FirstDeliveryTime: "2024-05-06", Market: "Dallas",
			Source: model.SourceOpCity, MarketType: model.SourceOpCity, Status: model.StatusClose,
			PurchaseDate: "2024-12-01", BuyerBroker: "OpCity",
		},
		{
			Name: "Bad Date", FirstDeliveryTime: "soon", Market: "Houston",
			Source: model.SourceMarketVIP, MarketType: model.SourceMarketVIP, Status: model.StatusClose,
			PurchaseDate: "someday",
		},
	}
}

func names(records []model.Record) []string {
	out := make([]string, len(records))
	for i := range records {
		out[i] = records[i].Name
	}
	return out
}

func TestApply_BasePredicates(t *testing.T) {
	tests := []struct {
		name     string
		criteria Criteria
		want     []string
	}{
		{
			name: "no filters",
			want: []string{"Closed VIP", "Sold Elsewhere", "Broker Match", "OpCity Open", "Future Close", "Bad Date"},
		},
		{
			name:     "market trims record value",
			criteria: Criteria{Markets: []string{"Austin"}},
			want:     []string{"Closed VIP", "Sold Elsewhere", "OpCity Open"},
		},
		{
			name:     "multiple markets",
			criteria: Criteria{Markets: []string{"Dallas", "Houston"}},
			want:     []string{"Broker Match", "Future Close", "Bad Date"},
		},
		{
			name:     "zone",
			criteria: Criteria{Zone: "1"},
			want:     []string{"Closed VIP", "Broker Match"},
		},
		{
			name:     "year excludes unparseable delivery",
			criteria: Criteria{Year: 2024},
			want:     []string{"Closed VIP", "Sold Elsewhere", "OpCity Open", "Future Close"},
		},
		{
			name:     "source",
			criteria: Criteria{Source: model.SourceOpCity},
			want:     []string{"OpCity Open", "Future Close"},
		},
		{
			name:     "combined",
			criteria: Criteria{Markets: []string{"Austin"}, Year: 2024, Source: model.SourceMarketVIP},
			want:     []string{"Closed VIP", "Sold Elsewhere"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			layers := Apply(fixture(), tt.criteria)
			assert.Equal(t, tt.want, names(layers.Base))
			assert.Len(t, layers.Display, len(layers.Base))
		})
	}
}

func TestApply_BaseInvariantUnderClosingFilters(t *testing.T) {
	base := Criteria{Markets: []string{"Austin", "Dallas"}}
	reference := Apply(fixture(), base)

	variants := []Criteria{
		{Markets: base.Markets, ClosingType: ClosingsClient},
		{Markets: base.Markets, ClosingType: ClosingsClient, BrokerName: "acme"},
		{Markets: base.Markets, ClosingType: ClosingsAll, BrokerName: "nobody"},
	}
	for _, c := range variants {
		layers := Apply(fixture(), c)
		assert.Equal(t, reference.Base, layers.Base)
		assert.Equal(t, len(reference.Base), len(layers.Display))
	}
}

func TestApply_ClientModeFlags(t *testing.T) {
	layers := Apply(fixture(), Criteria{ClosingType: ClosingsClient, BrokerName: "  Acme "})

	flags := make(map[string]bool)
	for _, e := range layers.Display {
		flags[e.Record.Name] = e.ExcludedFromClosings
	}
	assert.False(t, flags["Closed VIP"], "status Close is never flagged")
	assert.True(t, flags["Sold Elsewhere"], "other broker without Close is flagged")
	assert.False(t, flags["Broker Match"], "broker substring match is case-insensitive")
	assert.False(t, flags["OpCity Open"], "records without a purchase are never flagged")
}

func TestApply_FlagsRecomputedPerCall(t *testing.T) {
	records := fixture()

	client := Apply(records, Criteria{ClosingType: ClosingsClient})
	all := Apply(records, Criteria{ClosingType: ClosingsAll})

	assert.NotEmpty(t, client.Closings(testNow))
	for _, e := range all.Display {
		assert.False(t, e.ExcludedFromClosings, e.Record.Name)
	}
}

func TestCountsAsClosing(t *testing.T) {
	recs := fixture()
	tests := []struct {
		name     string
		record   model.Record
		criteria Criteria
		want     bool
	}{
		{name: "all mode past purchase", record: recs[1], criteria: Criteria{}, want: true},
		{name: "client mode close status", record: recs[0], criteria: Criteria{ClosingType: ClosingsClient}, want: true},
		{name: "client mode not closed", record: recs[1], criteria: Criteria{ClosingType: ClosingsClient}, want: false},
		{name: "client mode broker match", record: recs[2], criteria: Criteria{ClosingType: ClosingsClient, BrokerName: "acme"}, want: true},
		{name: "no purchase", record: recs[3], criteria: Criteria{}, want: false},
		{name: "future purchase all mode", record: recs[4], criteria: Criteria{}, want: false},
		{name: "future purchase client mode", record: recs[4], criteria: Criteria{ClosingType: ClosingsClient}, want: false},
		{name: "unparseable purchase", record: recs[5], criteria: Criteria{}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, got := tt.criteria.CountsAsClosing(&tt.record, testNow)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLayersClosings(t *testing.T) {
	all := Apply(fixture(), Criteria{}).Closings(testNow)
	assert.Equal(t, []string{"Closed VIP", "Sold Elsewhere", "Broker Match"}, countedNames(all))

	client := Apply(fixture(), Criteria{ClosingType: ClosingsClient, BrokerName: "acme"}).Closings(testNow)
	assert.Equal(t, []string{"Closed VIP", "Broker Match"}, countedNames(client))

	require.NotEmpty(t, client)
	assert.Equal(t, time.March, client[0].Purchased.Month())
}

func countedNames(c []Counted) []string {
	out := make([]string, len(c))
	for i := range c {
		out[i] = c[i].Record.Name
	}
	return out
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	records := fixture()
	before := fixture()

	layers := Apply(records, Criteria{ClosingType: ClosingsClient})
	layers.Base[0].Name = "changed"

	assert.Equal(t, before, records)
}

func TestParseHelpers(t *testing.T) {
	ct, err := ParseClosingType("Client")
	require.NoError(t, err)
	assert.Equal(t, ClosingsClient, ct)

	ct, err = ParseClosingType("")
	require.NoError(t, err)
	assert.Equal(t, ClosingsAll, ct)

	_, err = ParseClosingType("mine")
	assert.ErrorIs(t, err, common.ErrInvalidFilter)

	year, err := ParseYear("all")
	require.NoError(t, err)
	assert.Zero(t, year)

	year, err = ParseYear("2023")
	require.NoError(t, err)
	assert.Equal(t, 2023, year)

	_, err = ParseYear("last year")
	assert.ErrorIs(t, err, common.ErrInvalidFilter)

	src, err := ParseSourceFilter("Opcity")
	require.NoError(t, err)
	assert.Equal(t, model.SourceOpCity, src)

	src, err = ParseSourceFilter("all")
	require.NoError(t, err)
	assert.Equal(t, model.SourceUnknown, src)

	_, err = ParseSourceFilter("Zillow")
	assert.ErrorIs(t, err, common.ErrInvalidFilter)
}

func TestDiscoverOptions(t *testing.T) {
	records := append(fixture(), model.Record{
		Name: "Austin OpCity", Market: "Austin", Source: model.SourceOpCity, MarketType: model.SourceOpCity,
		FirstDeliveryTime: "2022-08-01", LeadZone: "10",
	})

	opts := DiscoverOptions(records)

	assert.Equal(t, []model.Source{model.SourceMarketVIP, model.SourceOpCity}, opts.Sources)
	assert.Equal(t, []string{"1", "10", "2"}, opts.Zones)
	assert.Equal(t, []int{2024, 2023, 2022}, opts.Years)

	require.Len(t, opts.Markets, 3)
	assert.Equal(t, "Austin", opts.Markets[0].Name)
	assert.Equal(t, "Austin (OpCity & Market VIP)", opts.Markets[0].Label)
	assert.Equal(t, []model.Source{model.SourceMarketVIP, model.SourceOpCity}, opts.Markets[0].Types)
	assert.Equal(t, "Dallas (OpCity & Market VIP)", opts.Markets[1].Label)
	assert.Equal(t, "Houston (Market VIP)", opts.Markets[2].Label)
}

func TestParamsCriteria(t *testing.T) {
	tests := []struct {
		name    string
		params  Params
		want    Criteria
		wantErr bool
	}{
		{
			name:   "empty selects everything",
			params: Params{},
			want:   Criteria{ClosingType: ClosingsAll},
		},
		{
			name: "every field",
			params: Params{
				Source:      "opcity",
				Markets:     []string{"Austin, Dallas", "Houston"},
				Zone:        " 2 ",
				Year:        "2024",
				ClosingType: "client",
				BrokerName:  " Rock Realty ",
			},
			want: Criteria{
				Source:      model.SourceOpCity,
				Markets:     []string{"Austin", "Dallas", "Houston"},
				Zone:        "2",
				Year:        2024,
				ClosingType: ClosingsClient,
				BrokerName:  "Rock Realty",
			},
		},
		{
			name:   "all clears",
			params: Params{Source: "all", Markets: []string{"all"}, Zone: "ALL", Year: "all"},
			want:   Criteria{ClosingType: ClosingsAll},
		},
		{name: "bad year", params: Params{Year: "soon"}, wantErr: true},
		{name: "bad source", params: Params{Source: "zillow"}, wantErr: true},
		{name: "bad closing type", params: Params{ClosingType: "agent"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.params.Criteria()
			if tt.wantErr {
				require.ErrorIs(t, err, common.ErrInvalidFilter)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
