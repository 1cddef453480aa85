// Package normalize converts raw heterogeneous export values into the
// canonical forms stored on a lead record.
package normalize

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/Veraticus/leadflow/internal/model"
)

var (
	nonDigit     = regexp.MustCompile(`\D`)
	nonPrice     = regexp.MustCompile(`[^0-9.]`)
	nonAmount    = regexp.MustCompile(`[^0-9.-]`)
	leadingFloat = regexp.MustCompile(`^-?(\d+\.?\d*|\.\d+)`)
)

// PriceRange maps a list price or budget to its price-range bucket.
// Strings that already carry a bucket label (a dollar amount with a K or
// M suffix) pass through unchanged.
func PriceRange(raw string) model.PriceRange {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return model.PriceUnknown
	}

	if strings.Contains(raw, "$") && (strings.Contains(raw, "K") || strings.Contains(raw, "M")) {
		return model.PriceRange(raw)
	}

	price, ok := parseLeading(nonPrice.ReplaceAllString(raw, ""))
	if !ok {
		return model.PriceUnknown
	}

	switch {
	case price < 60000:
		return model.PriceUnder60K
	case price < 100000:
		return model.Price60To100K
	case price < 150000:
		return model.Price100To150K
	case price < 300000:
		return model.Price150To300K
	case price < 500000:
		return model.Price300To500K
	case price < 1000000:
		return model.Price500KTo1M
	default:
		return model.PriceOver1M
	}
}

// Phone strips formatting from a phone number. Numbers with ten or more
// digits keep the last ten, dropping any country code; shorter digit
// strings are returned as-is.
func Phone(raw string) string {
	digits := nonDigit.ReplaceAllString(raw, "")
	if len(digits) >= 10 {
		return digits[len(digits)-10:]
	}
	return digits
}

var statusLabels = map[string]model.Status{
	"New":                   model.StatusNew,
	"We Spoke":              model.StatusSpoke,
	"We Made An Offer":      model.StatusOffer,
	"We Met / House Hunted": model.StatusMet,
	"We're Under Contract":  model.StatusContract,
	"Closed":                model.StatusClose,
}

// Status maps a referral lifecycle phrase to its canonical stage.
// Unknown phrases pass through verbatim.
func Status(raw string) model.Status {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return model.StatusNone
	}
	if s, ok := statusLabels[raw]; ok {
		return s
	}
	return model.Status(raw)
}

// Amount parses a currency string such as "$260,000.00". Unparseable
// input yields 0.
func Amount(raw string) float64 {
	v, ok := parseLeading(nonAmount.ReplaceAllString(raw, ""))
	if !ok {
		return 0
	}
	return v
}

// parseLeading parses the longest numeric prefix of s.
func parseLeading(s string) (float64, bool) {
	m := leadingFloat.FindString(s)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(m, "."), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
