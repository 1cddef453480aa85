package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/leadflow/internal/metrics"
	"github.com/Veraticus/leadflow/internal/model"
)

// Snapshot is everything persisted for one pipeline run.
type Snapshot struct {
	LoadedAt     time.Time
	Stats        any
	RunID        string
	Records      []model.Record
	Monthly      []metrics.Month
	LeadRows     int
	ReferralRows int
	SoldRows     int
}

// SaveSnapshot writes a run, its records and its monthly metrics in a
// single transaction. Saving an existing run ID replaces it.
func (s *SQLiteStorage) SaveSnapshot(ctx context.Context, snap *Snapshot) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateSnapshot(snap); err != nil {
		return err
	}

	stats, err := json.Marshal(snap.Stats)
	if err != nil {
		return fmt.Errorf("failed to encode run stats: %w", err)
	}

	err = s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, snap.RunID); err != nil {
			return fmt.Errorf("failed to clear previous run: %w", err)
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO runs (id, loaded_at, lead_rows, referral_rows, sold_rows, stats)
			VALUES (?, ?, ?, ?, ?, ?)`,
			snap.RunID, snap.LoadedAt.UTC(), snap.LeadRows, snap.ReferralRows, snap.SoldRows, string(stats))
		if err != nil {
			return fmt.Errorf("failed to insert run: %w", err)
		}

		if err := insertRecords(ctx, tx, snap.RunID, snap.Records); err != nil {
			return err
		}
		return insertMonthly(ctx, tx, snap.RunID, snap.Monthly)
	})
	if err != nil {
		return err
	}

	slog.Debug("saved snapshot",
		"run_id", snap.RunID,
		"records", len(snap.Records),
		"months", len(snap.Monthly))
	return nil
}

func insertRecords(ctx context.Context, tx *sql.Tx, runID string, records []model.Record) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO leads (
			run_id, position, identity_key, client_name, client_phone, client_email,
			first_delivery_time, inquiry_zip, price_range, delivery_type, agent,
			transaction_type, status, market, lead_zone, source, market_type,
			purchase_date, purchase_address, purchase_value, buyer_broker
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare lead insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i := range records {
		r := &records[i]
		var value any
		if r.PurchaseValue != 0 {
			value = r.PurchaseValue
		}
		_, err := stmt.ExecContext(ctx,
			runID, i, r.Key(), r.Name, r.Phone, r.Email,
			r.FirstDeliveryTime, r.InquiryZip, string(r.PriceRange), r.DeliveryType, r.Agent,
			r.Transaction, string(r.Status), r.Market, r.LeadZone, string(r.Source), string(r.MarketType),
			r.PurchaseDate, r.PurchaseAddress, value, r.BuyerBroker)
		if err != nil {
			return fmt.Errorf("failed to insert lead %q: %w", r.Name, err)
		}
	}
	return nil
}

func insertMonthly(ctx context.Context, tx *sql.Tx, runID string, months []metrics.Month) error {
	for _, m := range months {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO monthly_metrics (
				run_id, month, leads, closings, closing_value, spillover, conversion_rate, spillover_rate
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, m.Key, m.Leads, m.Closings, m.ClosingValue, m.Spillover, m.ConversionRate, m.SpilloverRate)
		if err != nil {
			return fmt.Errorf("failed to insert metrics for %s: %w", m.Key, err)
		}
	}
	return nil
}
