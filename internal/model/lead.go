// Package model defines the canonical lead record and the closed
// enumerations shared by the blending, filtering and metrics packages.
package model

import (
	"strconv"
	"strings"
)

// Row is one parsed input row keyed by column name.
// Column lookup is exact and case-sensitive.
type Row map[string]string

// Get returns the trimmed value for column, or "" when absent.
func (r Row) Get(column string) string {
	return strings.TrimSpace(r[column])
}

// First returns the first non-empty value among columns.
func (r Row) First(columns ...string) string {
	for _, c := range columns {
		if v := r.Get(c); v != "" {
			return v
		}
	}
	return ""
}

// Record is the single merged representation of a client across the
// leads, referrals and sold exports.
type Record struct {
	Name              string
	Phone             string
	Email             string
	FirstDeliveryTime string
	InquiryZip        string
	PriceRange        PriceRange
	DeliveryType      string
	Agent             string
	Transaction       string
	Status            Status
	Market            string
	LeadZone          string
	Source            Source
	MarketType        Source

	// Closing attributes stay empty until a close event is merged in.
	PurchaseDate    string
	PurchaseAddress string
	PurchaseValue   float64
	BuyerBroker     string
}

// IdentityKey derives the identity used to deduplicate clients.
// Distinct clients sharing a name collide; no better key exists in the
// exports.
func IdentityKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Key returns the record's identity key.
func (r *Record) Key() string {
	return IdentityKey(r.Name)
}

// HasPurchase reports whether a purchase date has been attached.
func (r *Record) HasPurchase() bool {
	return r.PurchaseDate != ""
}

// Closing is the set of fields attached by a close event.
type Closing struct {
	Date        string
	Address     string
	Value       float64
	BuyerBroker string
}

// SetClosing overwrites all four closing fields.
func (r *Record) SetClosing(c Closing) {
	r.PurchaseDate = c.Date
	r.PurchaseAddress = c.Address
	r.PurchaseValue = c.Value
	r.BuyerBroker = c.BuyerBroker
}

// ExportColumns is the fixed column order of every blended-data export.
var ExportColumns = []string{
	"Client Name",
	"Client Phone",
	"Client Email",
	"First Delivery Time",
	"Property Inquiry Zip",
	"Client Price Range",
	"Delivery Type",
	"Agent",
	"Transaction",
	"Status",
	"Market",
	"Lead Zone",
	"Source",
	"Market Type",
	"purchased sale date",
	"purchased address",
	"purchased value",
	"purchased buyer broker",
}

// Values returns the record's fields in ExportColumns order.
func (r *Record) Values() []string {
	return []string{
		r.Name,
		r.Phone,
		r.Email,
		r.FirstDeliveryTime,
		r.InquiryZip,
		string(r.PriceRange),
		r.DeliveryType,
		r.Agent,
		r.Transaction,
		string(r.Status),
		r.Market,
		r.LeadZone,
		string(r.Source),
		string(r.MarketType),
		r.PurchaseDate,
		r.PurchaseAddress,
		FormatValue(r.PurchaseValue),
		r.BuyerBroker,
	}
}

// FormatValue renders a purchase value for export; zero renders empty.
func FormatValue(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
