package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecord_ValuesMatchExportColumns(t *testing.T) {
	r := Record{
		Name:              "Jane Doe",
		Phone:             "5551234567",
		Email:             "jane@example.com",
		FirstDeliveryTime: "2024-03-15",
		InquiryZip:        "37201",
		PriceRange:        Price150To300K,
		DeliveryType:      "Email",
		Agent:             "Sam",
		Transaction:       "Buyer",
		Status:            StatusClose,
		Market:            "Nashville",
		LeadZone:          "2",
		Source:            SourceMarketVIP,
		MarketType:        SourceMarketVIP,
		PurchaseDate:      "2024-04-01",
		PurchaseAddress:   "1 Main St",
		PurchaseValue:     260000,
		BuyerBroker:       "Rock Realty",
	}

	values := r.Values()
	assert.Len(t, values, len(ExportColumns))
	assert.Equal(t, "Jane Doe", values[0])
	assert.Equal(t, "$150K-$300K", values[5])
	assert.Equal(t, "Market VIP", values[12])
	assert.Equal(t, "260000", values[16])
	assert.Equal(t, "Rock Realty", values[17])
}

func TestExportColumns_Order(t *testing.T) {
	assert.Equal(t, []string{
		"Client Name", "Client Phone", "Client Email", "First Delivery Time",
		"Property Inquiry Zip", "Client Price Range", "Delivery Type",
		"Agent", "Transaction", "Status", "Market", "Lead Zone", "Source",
		"Market Type", "purchased sale date", "purchased address",
		"purchased value", "purchased buyer broker",
	}, ExportColumns)
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "", FormatValue(0))
	assert.Equal(t, "260000", FormatValue(260000))
	assert.Equal(t, "1250.5", FormatValue(1250.5))
}

func TestIdentityKey(t *testing.T) {
	assert.Equal(t, "jane doe", IdentityKey("  Jane DOE "))
	assert.Equal(t, "", IdentityKey("   "))
}

func TestParseSource(t *testing.T) {
	tests := []struct {
		label string
		want  Source
	}{
		{"Market VIP", SourceMarketVIP},
		{"Opcity", SourceOpCity},
		{"OpCity", SourceUnknown},
		{"opcity", SourceUnknown},
		{" Market VIP ", SourceMarketVIP},
		{"Zillow", SourceUnknown},
		{"", SourceUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseSource(tt.label))
		})
	}
}

func TestStatus_Recognized(t *testing.T) {
	assert.True(t, StatusClose.Recognized())
	assert.True(t, StatusNew.Recognized())
	assert.False(t, Status("Nurture").Recognized())
	assert.False(t, StatusNone.Recognized())
}

func TestPriceRange_Canonical(t *testing.T) {
	assert.True(t, Price60To100K.Canonical())
	assert.True(t, PriceUnknown.Canonical())
	assert.False(t, PriceRange("$100K-$300K").Canonical())
}

func TestRow_First(t *testing.T) {
	row := Row{"List Price": " ", "Budget": "250000"}
	assert.Equal(t, "250000", row.First("List Price", "Budget"))
	assert.Equal(t, "", row.First("Missing"))
}
