// Package blend reconciles the leads, referrals and sold exports into one
// canonical record per client.
//
// The merge runs as five ordered stages over an Accumulator. Order is
// significant: later stages overwrite fields earlier stages set.
//
//  1. leads intake
//  2. referral partitioning (non-closed Market VIP updates applied here)
//  3. closed Market VIP merge
//  4. OpCity merge
//  5. sold-data backfill
package blend

import (
	"log/slog"
	"strings"

	"github.com/Veraticus/leadflow/internal/model"
	"github.com/Veraticus/leadflow/internal/normalize"
)

// DefaultBrokerName is the buyer-broker attached to closed Market VIP
// referrals when no broker name is configured.
const DefaultBrokerName = "Rock Realty"

// OpCityDeliveryType is the delivery type given to records created from
// OpCity referrals.
const OpCityDeliveryType = "Live transfer"

// Stats counts what each stage did.
type Stats struct {
	LeadRows            int `json:"lead_rows"`
	LeadsSkipped        int `json:"leads_skipped"`
	LeadsReplaced       int `json:"leads_replaced"`
	ReferralRows        int `json:"referral_rows"`
	ReferralsSkipped    int `json:"referrals_skipped"`
	ReferralsIgnored    int `json:"referrals_ignored"`
	StatusUpdates       int `json:"status_updates"`
	AgentBackfills      int `json:"agent_backfills"`
	ClosedMarketVIP     int `json:"closed_market_vip"`
	ClosedMerged        int `json:"closed_merged"`
	ClosedDropped       int `json:"closed_dropped"`
	OpCityReferrals     int `json:"opcity_referrals"`
	OpCityClosedMerged  int `json:"opcity_closed_merged"`
	OpCityStatusUpdates int `json:"opcity_status_updates"`
	OpCityCreated       int `json:"opcity_created"`
	SoldRows            int `json:"sold_rows"`
	SoldMatched         int `json:"sold_matched"`
	SoldKept            int `json:"sold_kept"`
	SoldDropped         int `json:"sold_dropped"`

	// Totals over the finished records.
	FromLeads            int `json:"from_leads"`
	FromReferrals        int `json:"from_referrals"`
	UnrecognizedStatuses int `json:"unrecognized_statuses"`
	NonCanonicalPrices   int `json:"non_canonical_prices"`
}

// Options configures a Blender.
type Options struct {
	// BrokerName is stamped on closed Market VIP referrals.
	// Empty means DefaultBrokerName.
	BrokerName string
	Logger     *slog.Logger
}

// Blender runs the merge stages.
type Blender struct {
	logger     *slog.Logger
	brokerName string
}

// New creates a Blender.
func New(opts Options) *Blender {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	broker := strings.TrimSpace(opts.BrokerName)
	if broker == "" {
		broker = DefaultBrokerName
	}
	return &Blender{logger: logger, brokerName: broker}
}

// Result is the output of a blend.
type Result struct {
	Records []model.Record
	Stats   Stats
}

// Blend merges the three row sets into canonical records.
func (b *Blender) Blend(leads, referrals, sold []model.Row) Result {
	acc := NewAccumulator()

	acc = b.IntakeLeads(acc, leads)
	acc, deferred := b.PartitionReferrals(acc, referrals)
	acc = b.MergeClosedMarketVIP(acc, deferred.ClosedMarketVIP)
	acc = b.MergeOpCity(acc, deferred.OpCity)
	acc = b.BackfillSold(acc, sold)

	records := acc.Records()

	closed, withPurchase, opcity := 0, 0, 0
	for i := range records {
		switch acc.Origin(records[i].Key()) {
		case OriginLeads:
			acc.stats.FromLeads++
		case OriginReferrals:
			acc.stats.FromReferrals++
		}
		if records[i].Status != model.StatusNone && !records[i].Status.Recognized() {
			acc.stats.UnrecognizedStatuses++
		}
		if !records[i].PriceRange.Canonical() {
			acc.stats.NonCanonicalPrices++
		}
		if records[i].Status.IsClose() {
			closed++
		}
		if records[i].HasPurchase() {
			withPurchase++
		}
		if records[i].Source == model.SourceOpCity {
			opcity++
		}
	}
	b.logger.Info("data blending complete",
		"total_leads", len(records),
		"market_vip_leads", len(records)-opcity,
		"opcity_leads", opcity,
		"closed_leads", closed,
		"with_purchase_data", withPurchase,
		"sold_matches", acc.stats.SoldMatched)
	if acc.stats.UnrecognizedStatuses > 0 || acc.stats.NonCanonicalPrices > 0 {
		b.logger.Warn("records with labels outside the known sets",
			"unrecognized_statuses", acc.stats.UnrecognizedStatuses,
			"non_canonical_prices", acc.stats.NonCanonicalPrices)
	}

	return Result{Records: records, Stats: acc.Stats()}
}

// IntakeLeads creates one Market VIP record per named lead row. A later
// row with the same name replaces the earlier record.
func (b *Blender) IntakeLeads(acc *Accumulator, rows []model.Row) *Accumulator {
	b.logger.Debug("processing leads data", "rows", len(rows))

	for _, row := range rows {
		acc.stats.LeadRows++

		name := row.Get("Client Name")
		if name == "" {
			acc.stats.LeadsSkipped++
			continue
		}

		rec := &model.Record{
			Name:              name,
			Phone:             normalize.Phone(row.Get("Client Phone")),
			Email:             row.Get("Client Email"),
			FirstDeliveryTime: row.Get("First Delivery Time"),
			InquiryZip:        row.First("Property Inquiry Zip", "Zip code"),
			PriceRange:        normalize.PriceRange(row.First("List Price", "Budget")),
			DeliveryType:      row.Get("Delivery Type"),
			Agent:             row.Get("Agent"),
			Transaction:       row.Get("Transaction"),
			Status:            model.Status(row.Get("Status")),
			Market:            row.Get("Market"),
			LeadZone:          row.Get("Lead Zone"),
			Source:            model.SourceMarketVIP,
			MarketType:        model.SourceMarketVIP,
		}

		if acc.Put(rec, OriginLeads) {
			acc.stats.LeadsReplaced++
		}
	}

	return acc
}

type referral struct {
	key      string
	isClosed bool
}

// Deferred holds referral rows that merge after the immediate updates.
type Deferred struct {
	ClosedMarketVIP []model.Row
	OpCity          []model.Row
}

// PartitionReferrals splits referrals into closed Market VIP rows and
// OpCity rows, both deferred, and applies every other Market VIP row
// immediately: the mapped status replaces the current one and the agent
// is backfilled when empty. No records are created here.
func (b *Blender) PartitionReferrals(acc *Accumulator, rows []model.Row) (*Accumulator, Deferred) {
	b.logger.Debug("processing referrals data", "rows", len(rows))

	var deferred Deferred
	for _, row := range rows {
		acc.stats.ReferralRows++

		ref, ok := parseReferral(row)
		if !ok {
			acc.stats.ReferralsSkipped++
			continue
		}

		source := model.ParseSource(row.Get("Lead Source"))
		switch {
		case source == model.SourceMarketVIP && ref.isClosed:
			deferred.ClosedMarketVIP = append(deferred.ClosedMarketVIP, row)
			continue
		case source == model.SourceOpCity:
			deferred.OpCity = append(deferred.OpCity, row)
			continue
		case source != model.SourceMarketVIP:
			acc.stats.ReferralsIgnored++
			continue
		}

		existing, found := acc.Lookup(ref.key)
		if !found {
			continue
		}
		if status := normalize.Status(row.Get("Transaction Status")); status != model.StatusNone {
			existing.Status = status
			acc.stats.StatusUpdates++
		}
		if existing.Agent == "" {
			if agent := row.Get("Agent Name"); agent != "" {
				existing.Agent = agent
				acc.stats.AgentBackfills++
			}
		}
	}

	acc.stats.ClosedMarketVIP = len(deferred.ClosedMarketVIP)
	acc.stats.OpCityReferrals = len(deferred.OpCity)
	return acc, deferred
}

// MergeClosedMarketVIP marks matching records closed and attaches the
// referral's closing fields. Referrals without a matching record are
// dropped.
func (b *Blender) MergeClosedMarketVIP(acc *Accumulator, rows []model.Row) *Accumulator {
	b.logger.Debug("processing closed Market VIP leads", "rows", len(rows))

	for _, row := range rows {
		ref, ok := parseReferral(row)
		if !ok {
			continue
		}
		existing, found := acc.Lookup(ref.key)
		if !found {
			acc.stats.ClosedDropped++
			b.logger.Debug("closed Market VIP referral has no lead", "client", row.Get("Client Name"))
			continue
		}

		existing.Status = model.StatusClose
		existing.SetClosing(referralClosing(row, b.brokerName))
		acc.stats.ClosedMerged++
	}

	return acc
}

// MergeOpCity applies OpCity referrals. A closed referral overwrites any
// closing already attached; an open one only updates the status. Unknown
// clients get a new OpCity record.
func (b *Blender) MergeOpCity(acc *Accumulator, rows []model.Row) *Accumulator {
	b.logger.Debug("processing OpCity leads", "rows", len(rows))

	for _, row := range rows {
		ref, ok := parseReferral(row)
		if !ok {
			continue
		}

		if existing, found := acc.Lookup(ref.key); found {
			if ref.isClosed {
				existing.Status = model.StatusClose
				existing.SetClosing(referralClosing(row, string(model.SourceOpCity)))
				acc.stats.OpCityClosedMerged++
				continue
			}
			if status := normalize.Status(row.Get("Transaction Status")); status != model.StatusNone {
				existing.Status = status
				acc.stats.OpCityStatusUpdates++
			}
			continue
		}

		acc.Put(newOpCityRecord(row, ref.isClosed), OriginReferrals)
		acc.stats.OpCityCreated++
	}

	return acc
}

// BackfillSold attaches sold-property data to records that have no
// purchase date yet. Closings already attached from referrals win.
func (b *Blender) BackfillSold(acc *Accumulator, rows []model.Row) *Accumulator {
	b.logger.Debug("matching with sold data", "rows", len(rows))

	for _, row := range rows {
		acc.stats.SoldRows++

		name := row.Get("Lead")
		if name == "" {
			continue
		}
		existing, found := acc.Lookup(model.IdentityKey(name))
		if !found {
			acc.stats.SoldDropped++
			continue
		}
		if existing.HasPurchase() {
			acc.stats.SoldKept++
			continue
		}

		existing.SetClosing(model.Closing{
			Date:        row.Get("purchased sale date"),
			Address:     row.Get("purchased address"),
			Value:       normalize.Amount(row.Get("purchased value")),
			BuyerBroker: row.Get("purchased buyer broker"),
		})
		acc.stats.SoldMatched++
	}

	return acc
}

func parseReferral(row model.Row) (referral, bool) {
	name := row.Get("Client Name")
	if name == "" {
		return referral{}, false
	}
	return referral{
		key:      model.IdentityKey(name),
		isClosed: strings.EqualFold(row.Get("Transaction Status"), "closed"),
	}, true
}

func referralClosing(row model.Row, broker string) model.Closing {
	return model.Closing{
		Date:        row.Get("Transaction Close Date"),
		Address:     row.Get("Transaction Address"),
		Value:       normalize.Amount(row.Get("Transaction Close Amount")),
		BuyerBroker: broker,
	}
}

func newOpCityRecord(row model.Row, closed bool) *model.Record {
	status := normalize.Status(row.Get("Transaction Status"))
	if closed {
		status = model.StatusClose
	}

	priceRange := model.PriceRange(row.Get("Client Price Range"))
	if priceRange == "" {
		priceRange = model.PriceUnknown
	}

	market := row.Get("Client Market")
	if i := strings.Index(market, ","); i >= 0 {
		market = market[:i]
	}

	rec := &model.Record{
		Name:              row.Get("Client Name"),
		Phone:             normalize.Phone(row.Get("Client Phone")),
		Email:             row.Get("Client Email"),
		FirstDeliveryTime: row.Get("Date Referred"),
		InquiryZip:        row.Get("Client Primary Zip Code"),
		PriceRange:        priceRange,
		DeliveryType:      OpCityDeliveryType,
		Agent:             row.Get("Agent Name"),
		Transaction:       row.Get("Client Category"),
		Status:            status,
		Market:            market,
		Source:            model.SourceOpCity,
		MarketType:        model.SourceOpCity,
	}
	if closed {
		rec.SetClosing(referralClosing(row, string(model.SourceOpCity)))
	}
	return rec
}
