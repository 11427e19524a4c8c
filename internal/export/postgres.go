package export

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

const defaultSinkTable = "hourly_grid_history"

// PostgresSink upserts the final table into Postgres so reruns
// overwrite rather than append. One row per hour, fuels carried as a
// JSON document to keep the relational schema stable while fuel columns
// vary across source years.
type PostgresSink struct {
	db    *sql.DB
	table string
}

// NewPostgresSink creates a sink using the default table name.
func NewPostgresSink(db *sql.DB, opts ...SinkOption) *PostgresSink {
	sink := &PostgresSink{db: db, table: defaultSinkTable}
	for _, opt := range opts {
		opt(sink)
	}
	return sink
}

// SinkOption configures the sink.
type SinkOption func(*PostgresSink)

// WithSinkTable overrides the default table name.
func WithSinkTable(table string) SinkOption {
	return func(sink *PostgresSink) {
		if table != "" {
			sink.table = table
		}
	}
}

// EnsureSchema creates the sink table if it does not exist.
func (s *PostgresSink) EnsureSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
	hour_start timestamptz PRIMARY KEY,
	load_mw double precision NOT NULL,
	emissions_tons double precision NOT NULL,
	price double precision NOT NULL,
	fuels jsonb NOT NULL,
	updated_at timestamptz NOT NULL DEFAULT now()
)`, s.table)
	_, err := s.db.ExecContext(ctx, query)
	return err
}

// Store upserts every row of the table keyed by hour.
func (s *PostgresSink) Store(ctx context.Context, t Table) error {
	loadIdx := t.ColumnIndex("Load")
	emisIdx := t.ColumnIndex("Emissions")
	priceIdx := t.ColumnIndex("Price")
	if loadIdx < 0 || emisIdx < 0 || priceIdx < 0 {
		return fmt.Errorf("table missing Load, Emissions or Price column")
	}

	query := fmt.Sprintf(`
INSERT INTO %s (hour_start, load_mw, emissions_tons, price, fuels, updated_at)
VALUES ($1, $2, $3, $4, $5, now())
ON CONFLICT (hour_start) DO UPDATE SET
	load_mw = EXCLUDED.load_mw,
	emissions_tons = EXCLUDED.emissions_tons,
	price = EXCLUDED.price,
	fuels = EXCLUDED.fuels,
	updated_at = now()`, s.table)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, row := range t.Rows {
		fuels := make(map[string]float64)
		for i, col := range t.Columns {
			if i == loadIdx || i == emisIdx || i == priceIdx {
				continue
			}
			fuels[col] = row.Values[i]
		}
		doc, err := json.Marshal(fuels)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, row.Timestamp, row.Values[loadIdx], row.Values[emisIdx], row.Values[priceIdx], doc); err != nil {
			return fmt.Errorf("upsert %s: %w", row.Timestamp, err)
		}
	}
	return tx.Commit()
}
