package normalize

import (
	"testing"
	"time"

	"github.com/Veraticus/leadflow/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceRange(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want model.PriceRange
	}{
		{name: "empty", raw: "", want: model.PriceUnknown},
		{name: "whitespace", raw: "   ", want: model.PriceUnknown},
		{name: "unparseable", raw: "call me", want: model.PriceUnknown},
		{name: "below 60k", raw: "59999", want: model.PriceUnder60K},
		{name: "60k lower bound", raw: "60000", want: model.Price60To100K},
		{name: "75k", raw: "75000", want: model.Price60To100K},
		{name: "100k lower bound", raw: "100000", want: model.Price100To150K},
		{name: "150k lower bound", raw: "150000", want: model.Price150To300K},
		{name: "250k", raw: "250000", want: model.Price150To300K},
		{name: "300k lower bound", raw: "300000", want: model.Price300To500K},
		{name: "500k lower bound", raw: "500000", want: model.Price500KTo1M},
		{name: "one million", raw: "1000000", want: model.PriceOver1M},
		{name: "currency formatted", raw: "$250,000", want: model.Price150To300K},
		{name: "decimal", raw: "99999.99", want: model.Price60To100K},
		{name: "already a bucket", raw: "$300K-$500K", want: model.PriceRange("$300K-$500K")},
		{name: "non canonical label passes through", raw: "$100K-$300K", want: model.PriceRange("$100K-$300K")},
		{name: "million label passes through", raw: "$1M+", want: model.PriceOver1M},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PriceRange(tt.raw))
		})
	}
}

func TestPhone(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{raw: "+1 (555) 123-4567", want: "5551234567"},
		{raw: "555.123.4567", want: "5551234567"},
		{raw: "15551234567", want: "5551234567"},
		{raw: "001-555-123-4567", want: "5551234567"},
		{raw: "123-4567", want: "1234567"},
		{raw: "", want: ""},
		{raw: "n/a", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got := Phone(tt.raw)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, len(got), 10)
		})
	}
}

func TestStatus(t *testing.T) {
	tests := []struct {
		raw  string
		want model.Status
	}{
		{raw: "We Spoke", want: model.StatusSpoke},
		{raw: "We Made An Offer", want: model.StatusOffer},
		{raw: "We Met / House Hunted", want: model.StatusMet},
		{raw: "We're Under Contract", want: model.StatusContract},
		{raw: "Closed", want: model.StatusClose},
		{raw: "New", want: model.StatusNew},
		{raw: "Nurture", want: model.Status("Nurture")},
		{raw: "", want: model.StatusNone},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, Status(tt.raw))
		})
	}
}

func TestAmount(t *testing.T) {
	assert.Equal(t, 260000.0, Amount("260000"))
	assert.Equal(t, 260000.0, Amount("$260,000"))
	assert.Equal(t, 1250.5, Amount("$1,250.50"))
	assert.Equal(t, 0.0, Amount(""))
	assert.Equal(t, 0.0, Amount("pending"))
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name      string
		input     any
		wantOK    bool
		wantYear  int
		wantMonth time.Month
		wantDay   int
	}{
		{name: "iso date", input: "2024-03-15", wantOK: true, wantYear: 2024, wantMonth: time.March, wantDay: 15},
		{name: "iso datetime", input: "2024-03-15 10:30:00", wantOK: true, wantYear: 2024, wantMonth: time.March, wantDay: 15},
		{name: "rfc3339", input: "2024-03-15T10:30:00Z", wantOK: true, wantYear: 2024, wantMonth: time.March, wantDay: 15},
		{name: "slash date", input: "3/15/2024", wantOK: true, wantYear: 2024, wantMonth: time.March, wantDay: 15},
		{name: "slash date with time", input: "03/15/2024 10:30 AM", wantOK: true, wantYear: 2024, wantMonth: time.March, wantDay: 15},
		{name: "two digit year", input: "3/15/24", wantOK: true, wantYear: 2024, wantMonth: time.March, wantDay: 15},
		{name: "long month", input: "March 15, 2024", wantOK: true, wantYear: 2024, wantMonth: time.March, wantDay: 15},
		{name: "native time", input: time.Date(2023, time.July, 4, 0, 0, 0, 0, time.UTC), wantOK: true, wantYear: 2023, wantMonth: time.July, wantDay: 4},
		{name: "empty", input: "", wantOK: false},
		{name: "nil", input: nil, wantOK: false},
		{name: "garbage", input: "not a date", wantOK: false},
		{name: "slash garbage", input: "a/b/c", wantOK: false},
		{name: "zero time", input: time.Time{}, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDate(tt.input)
			require.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				return
			}
			assert.Equal(t, tt.wantYear, got.Year())
			assert.Equal(t, tt.wantMonth, got.Month())
			assert.Equal(t, tt.wantDay, got.Day())
		})
	}
}

func TestParseDate_SlashOverflowNormalizes(t *testing.T) {
	got, ok := ParseDate("13/1/2024")
	require.True(t, ok)
	assert.Equal(t, 2025, got.Year())
	assert.Equal(t, time.January, got.Month())
}

func TestMonthKeyAndFormat(t *testing.T) {
	d := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-03", MonthKey(d))
	assert.Equal(t, "3/5/2024", FormatDate(d))
}
