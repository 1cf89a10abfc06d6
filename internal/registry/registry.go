// Package registry holds immutable in-memory bracket tables behind the
// engine's BracketProvider interface. Tables are validated on registration
// and never mutated afterwards, so concurrent reads need no locking once a
// registry is built.
package registry

import (
	"context"
	"sort"
	"sync"

	"github.com/moneysplit/moneysplit/internal/domain"
)

type tableKey struct {
	country string
	taxType domain.TaxType
}

// Registry maps (country, tax type) to validated bracket tables.
type Registry struct {
	mu     sync.RWMutex
	tables map[tableKey][]domain.TaxBracket
}

// NewEmpty creates a registry with no tables.
func NewEmpty() *Registry {
	return &Registry{tables: make(map[tableKey][]domain.TaxBracket)}
}

// New creates a registry seeded with the default country tables.
func New() *Registry {
	r := NewEmpty()
	for _, seed := range defaultTables() {
		// Seed data is validated at startup; a broken seed is a programming
		// error and must not be survivable.
		if err := r.Register(seed.country, seed.taxType, seed.brackets); err != nil {
			panic(err)
		}
	}
	return r
}

// Register validates and installs a table, replacing any existing one.
func (r *Registry) Register(country string, taxType domain.TaxType, brackets []domain.TaxBracket) error {
	if err := domain.ValidateBrackets(country, taxType, brackets); err != nil {
		return err
	}
	copied := make([]domain.TaxBracket, len(brackets))
	copy(copied, brackets)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.tables[tableKey{country, taxType}] = copied
	return nil
}

// Brackets implements domain.BracketProvider.
func (r *Registry) Brackets(_ context.Context, country string, taxType domain.TaxType) ([]domain.TaxBracket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	brackets, ok := r.tables[tableKey{country, taxType}]
	if !ok {
		return nil, &domain.UnsupportedCountryError{Country: country, TaxType: taxType}
	}
	return brackets, nil
}

// Countries lists the registered country codes for a tax type, sorted.
// Sub-national tables (US-CA, Canada-ON) are included; callers filter.
func (r *Registry) Countries(taxType domain.TaxType) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []string
	for key := range r.tables {
		if key.taxType == taxType {
			out = append(out, key.country)
		}
	}
	sort.Strings(out)
	return out
}
