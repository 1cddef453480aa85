package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 3

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

func execAll(tx *sql.Tx, queries ...string) error {
	for _, query := range queries {
		if _, err := tx.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}
	return nil
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial snapshot schema",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`CREATE TABLE IF NOT EXISTS runs (
					id TEXT PRIMARY KEY,
					loaded_at DATETIME NOT NULL,
					lead_rows INTEGER NOT NULL DEFAULT 0,
					referral_rows INTEGER NOT NULL DEFAULT 0,
					sold_rows INTEGER NOT NULL DEFAULT 0,
					stats TEXT NOT NULL,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE TABLE IF NOT EXISTS leads (
					run_id TEXT NOT NULL,
					position INTEGER NOT NULL,
					identity_key TEXT NOT NULL,
					client_name TEXT NOT NULL,
					client_phone TEXT,
					client_email TEXT,
					first_delivery_time TEXT,
					inquiry_zip TEXT,
					price_range TEXT,
					delivery_type TEXT,
					agent TEXT,
					transaction_type TEXT,
					status TEXT,
					market TEXT,
					lead_zone TEXT,
					source TEXT NOT NULL,
					market_type TEXT,
					purchase_date TEXT,
					purchase_address TEXT,
					purchase_value REAL,
					buyer_broker TEXT,
					PRIMARY KEY (run_id, identity_key),
					FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
				)`,
				`CREATE INDEX idx_leads_source ON leads(run_id, source)`,
			)
		},
	},
	{
		Version:     2,
		Description: "Add monthly metrics table",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`CREATE TABLE IF NOT EXISTS monthly_metrics (
					run_id TEXT NOT NULL,
					month TEXT NOT NULL,
					leads INTEGER NOT NULL,
					closings INTEGER NOT NULL,
					closing_value REAL NOT NULL,
					spillover INTEGER NOT NULL,
					conversion_rate REAL NOT NULL,
					spillover_rate REAL NOT NULL,
					PRIMARY KEY (run_id, month),
					FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
				)`,
			)
		},
	},
	{
		Version:     3,
		Description: "Index leads by purchase date",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`CREATE INDEX idx_leads_purchase_date ON leads(run_id, purchase_date)`,
			)
		},
	},
}

// Migrate applies all pending database migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	var currentVersion int
	err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Debug("applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	var finalVersion int
	err = s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&finalVersion)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}
