package model

import "strings"

// Source identifies the system a lead originated from.
type Source string

// Known lead sources.
const (
	SourceUnknown   Source = ""
	SourceMarketVIP Source = "Market VIP"
	SourceOpCity    Source = "OpCity"
)

// ParseSource maps a referral "Lead Source" label to a Source. Matching is
// exact apart from surrounding space; the referral export spells OpCity
// as "Opcity" and any other spelling maps to SourceUnknown.
func ParseSource(label string) Source {
	switch strings.TrimSpace(label) {
	case "Market VIP":
		return SourceMarketVIP
	case "Opcity":
		return SourceOpCity
	default:
		return SourceUnknown
	}
}

// Sources lists the known sources in display order.
func Sources() []Source {
	return []Source{SourceMarketVIP, SourceOpCity}
}

// Status is a lead's lifecycle stage. Labels the referral export uses
// that have no canonical mapping are kept verbatim.
type Status string

// Canonical lifecycle stages.
const (
	StatusNone     Status = ""
	StatusNew      Status = "New"
	StatusSpoke    Status = "Spoke"
	StatusOffer    Status = "Offer"
	StatusMet      Status = "Met"
	StatusContract Status = "Contract"
	StatusClose    Status = "Close"
)

// Recognized reports whether s is one of the canonical stages.
func (s Status) Recognized() bool {
	switch s {
	case StatusNew, StatusSpoke, StatusOffer, StatusMet, StatusContract, StatusClose:
		return true
	default:
		return false
	}
}

// IsClose reports whether the lead has closed.
func (s Status) IsClose() bool {
	return s == StatusClose
}

// PriceRange is a lead's price-range category.
type PriceRange string

// Price range buckets in ascending order.
const (
	PriceUnknown   PriceRange = "Unknown"
	PriceUnder60K  PriceRange = "Less Than $60K"
	Price60To100K  PriceRange = "$60K-$100K"
	Price100To150K PriceRange = "$100K-$150K"
	Price150To300K PriceRange = "$150K-$300K"
	Price300To500K PriceRange = "$300K-$500K"
	Price500KTo1M  PriceRange = "$500K-$1M"
	PriceOver1M    PriceRange = "$1M+"
)

// PriceRanges lists every bucket in ascending order, Unknown first.
func PriceRanges() []PriceRange {
	return []PriceRange{
		PriceUnknown,
		PriceUnder60K,
		Price60To100K,
		Price100To150K,
		Price150To300K,
		Price300To500K,
		Price500KTo1M,
		PriceOver1M,
	}
}

// Canonical reports whether p is one of the eight buckets rather than a
// source label passed through verbatim.
func (p PriceRange) Canonical() bool {
	for _, c := range PriceRanges() {
		if p == c {
			return true
		}
	}
	return false
}
