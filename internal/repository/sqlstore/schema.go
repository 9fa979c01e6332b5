package sqlstore

import (
	"context"
	"fmt"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS dashboards (
	owner_role      TEXT NOT NULL,
	owner_id        TEXT NOT NULL,
	document        JSONB NOT NULL,
	total_revenue   DOUBLE PRECISION NOT NULL DEFAULT 0,
	pending_revenue DOUBLE PRECISION NOT NULL DEFAULT 0,
	average_rating  DOUBLE PRECISION NOT NULL DEFAULT 0,
	rating_count    INTEGER NOT NULL DEFAULT 0,
	work_item_count INTEGER NOT NULL DEFAULT 0,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (owner_role, owner_id)
)`

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS dashboards (
	owner_role      TEXT NOT NULL,
	owner_id        TEXT NOT NULL,
	document        TEXT NOT NULL,
	total_revenue   REAL NOT NULL DEFAULT 0,
	pending_revenue REAL NOT NULL DEFAULT 0,
	average_rating  REAL NOT NULL DEFAULT 0,
	rating_count    INTEGER NOT NULL DEFAULT 0,
	work_item_count INTEGER NOT NULL DEFAULT 0,
	created_at      TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at      TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (owner_role, owner_id)
)`

const ratingIndex = `CREATE INDEX IF NOT EXISTS idx_dashboards_rating ON dashboards (owner_role, average_rating DESC)`

// Migrate creates the dashboards table and its indexes when missing.
func (db *DB) Migrate(ctx context.Context) error {
	schema := postgresSchema
	if db.isSQLite() {
		schema = sqliteSchema
	}
	for _, stmt := range []string{schema, ratingIndex} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate dashboards: %w", err)
		}
	}
	return nil
}
