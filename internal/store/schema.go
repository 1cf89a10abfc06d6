package store

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

const schema = `
-- Bracket tables. A NULL income_limit marks the unbounded top bracket.
CREATE TABLE IF NOT EXISTS tax_brackets (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    country TEXT NOT NULL,
    tax_type TEXT NOT NULL CHECK (tax_type IN ('Individual', 'Business')),
    bracket_order INTEGER NOT NULL,
    income_limit TEXT,
    rate TEXT NOT NULL,
    UNIQUE (country, tax_type, bracket_order)
);

CREATE INDEX IF NOT EXISTS idx_tax_brackets_lookup ON tax_brackets(country, tax_type);

-- People attached to a saved record.
CREATE TABLE IF NOT EXISTS people (
    id TEXT PRIMARY KEY,
    record_id TEXT NOT NULL REFERENCES tax_records(id) ON DELETE CASCADE,
    name TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_people_record_id ON people(record_id);

-- Saved comparison runs, one row per project evaluated.
CREATE TABLE IF NOT EXISTS tax_records (
    id TEXT PRIMARY KEY,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    country TEXT NOT NULL,
    state TEXT NOT NULL DEFAULT '',
    revenue TEXT NOT NULL,
    costs TEXT NOT NULL,
    num_people INTEGER NOT NULL,
    optimal_strategy TEXT NOT NULL,
    total_tax TEXT NOT NULL,
    net_income TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_tax_records_created_at ON tax_records(created_at);
CREATE INDEX IF NOT EXISTS idx_tax_records_country ON tax_records(country);
`
