// Package store persists bracket tables and saved comparison runs in a
// local SQLite database. It doubles as a BracketProvider so the engine can
// read tables from the database instead of the in-memory registry.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/moneysplit/moneysplit/internal/domain"
	"github.com/moneysplit/moneysplit/internal/registry"
)

// Store wraps the SQLite handle. Use ":memory:" for an ephemeral database.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and ensures the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}
	// modernc's driver is not safe for concurrent writes on one connection
	// pool with the default settings; serialize access.
	db.SetMaxOpenConns(1)

	if err := CreateSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close releases the underlying handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the raw handle for tests.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Brackets implements domain.BracketProvider from the tax_brackets table.
func (s *Store) Brackets(ctx context.Context, country string, taxType domain.TaxType) ([]domain.TaxBracket, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT income_limit, rate FROM tax_brackets
		 WHERE country = ? AND tax_type = ?
		 ORDER BY bracket_order`,
		country, taxType.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query brackets: %w", err)
	}
	defer rows.Close()

	var brackets []domain.TaxBracket
	for rows.Next() {
		var limit sql.NullString
		var rate string
		if err := rows.Scan(&limit, &rate); err != nil {
			return nil, fmt.Errorf("failed to scan bracket: %w", err)
		}
		b := domain.TaxBracket{}
		if b.Rate, err = decimal.NewFromString(rate); err != nil {
			return nil, fmt.Errorf("invalid rate %q for %s/%s: %w", rate, country, taxType, err)
		}
		if limit.Valid {
			if b.IncomeLimit, err = decimal.NewFromString(limit.String); err != nil {
				return nil, fmt.Errorf("invalid income limit %q for %s/%s: %w", limit.String, country, taxType, err)
			}
		} else {
			b.Unbounded = true
		}
		brackets = append(brackets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(brackets) == 0 {
		return nil, &domain.UnsupportedCountryError{Country: country, TaxType: taxType}
	}
	return brackets, nil
}

// ReplaceBrackets swaps the stored table for one country and tax type.
func (s *Store) ReplaceBrackets(ctx context.Context, country string, taxType domain.TaxType, brackets []domain.TaxBracket) error {
	if err := domain.ValidateBrackets(country, taxType, brackets); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM tax_brackets WHERE country = ? AND tax_type = ?`,
		country, taxType.String()); err != nil {
		return fmt.Errorf("failed to clear brackets: %w", err)
	}

	for i, b := range brackets {
		var limit any
		if !b.Unbounded {
			limit = b.IncomeLimit.String()
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO tax_brackets (country, tax_type, bracket_order, income_limit, rate)
			 VALUES (?, ?, ?, ?, ?)`,
			country, taxType.String(), i, limit, b.Rate.String()); err != nil {
			return fmt.Errorf("failed to insert bracket: %w", err)
		}
	}

	return tx.Commit()
}

// SeedDefaults copies every table the registry knows into the database.
// Existing tables for the same country and tax type are replaced.
func (s *Store) SeedDefaults(ctx context.Context, reg *registry.Registry) error {
	for _, taxType := range []domain.TaxType{domain.TaxTypeIndividual, domain.TaxTypeBusiness} {
		for _, country := range reg.Countries(taxType) {
			brackets, err := reg.Brackets(ctx, country, taxType)
			if err != nil {
				return err
			}
			if err := s.ReplaceBrackets(ctx, country, taxType, brackets); err != nil {
				return err
			}
		}
	}
	return nil
}

// timeLayout keeps created_at in a form SQLite's date functions parse.
const timeLayout = "2006-01-02 15:04:05"

// Record is one saved comparison run.
type Record struct {
	ID              string
	CreatedAt       time.Time
	Country         string
	State           string
	Revenue         decimal.Decimal
	Costs           decimal.Decimal
	NumPeople       int
	OptimalStrategy string
	TotalTax        decimal.Decimal
	NetIncome       decimal.Decimal
	People          []string
}

// SaveRecord persists a comparison outcome and returns its generated id.
func (s *Store) SaveRecord(ctx context.Context, rec Record) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO tax_records (id, created_at, country, state, revenue, costs, num_people, optimal_strategy, total_tax, net_income)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.CreatedAt.UTC().Format(timeLayout), rec.Country, rec.State,
		rec.Revenue.String(), rec.Costs.String(), rec.NumPeople,
		rec.OptimalStrategy, rec.TotalTax.String(), rec.NetIncome.String()); err != nil {
		return "", fmt.Errorf("failed to save record: %w", err)
	}

	for _, name := range rec.People {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO people (id, record_id, name) VALUES (?, ?, ?)`,
			uuid.NewString(), rec.ID, name); err != nil {
			return "", fmt.Errorf("failed to save person: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return rec.ID, nil
}

// ListRecords returns saved runs, newest first, up to limit (0 = all).
func (s *Store) ListRecords(ctx context.Context, limit int) ([]Record, error) {
	query := `SELECT id, created_at, country, state, revenue, costs, num_people, optimal_strategy, total_tax, net_income
	          FROM tax_records ORDER BY created_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var createdAt string
		var revenue, costs, totalTax, netIncome string
		if err := rows.Scan(&rec.ID, &createdAt, &rec.Country, &rec.State,
			&revenue, &costs, &rec.NumPeople, &rec.OptimalStrategy, &totalTax, &netIncome); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		if rec.CreatedAt, err = time.ParseInLocation(timeLayout, createdAt, time.UTC); err != nil {
			return nil, fmt.Errorf("invalid created_at %q: %w", createdAt, err)
		}
		if rec.Revenue, err = decimal.NewFromString(revenue); err != nil {
			return nil, err
		}
		if rec.Costs, err = decimal.NewFromString(costs); err != nil {
			return nil, err
		}
		if rec.TotalTax, err = decimal.NewFromString(totalTax); err != nil {
			return nil, err
		}
		if rec.NetIncome, err = decimal.NewFromString(netIncome); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// MonthlyTotal is one month of summed revenue, used as forecast input.
type MonthlyTotal struct {
	Month   string // "2024-03"
	Revenue float64
}

// MonthlyTotals aggregates saved record revenue by calendar month,
// oldest first.
func (s *Store) MonthlyTotals(ctx context.Context) ([]MonthlyTotal, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT strftime('%Y-%m', created_at) AS month, SUM(CAST(revenue AS REAL))
		 FROM tax_records GROUP BY month ORDER BY month`)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate revenue: %w", err)
	}
	defer rows.Close()

	var totals []MonthlyTotal
	for rows.Next() {
		var t MonthlyTotal
		if err := rows.Scan(&t.Month, &t.Revenue); err != nil {
			return nil, fmt.Errorf("failed to scan monthly total: %w", err)
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}
