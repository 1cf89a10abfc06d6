package registry

import (
	"context"
	"testing"

	"github.com/moneysplit/moneysplit/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSeedsDefaultCountries(t *testing.T) {
	reg := New()
	for _, country := range []string{"US", "Spain", "UK", "Canada"} {
		for _, taxType := range []domain.TaxType{domain.TaxTypeIndividual, domain.TaxTypeBusiness} {
			brackets, err := reg.Brackets(context.Background(), country, taxType)
			require.NoError(t, err, "%s %s", country, taxType)
			require.NotEmpty(t, brackets)
			assert.True(t, brackets[len(brackets)-1].Unbounded,
				"%s %s table must end unbounded", country, taxType)
		}
	}
}

func TestBracketsUnknownCountry(t *testing.T) {
	reg := New()
	_, err := reg.Brackets(context.Background(), "Mars", domain.TaxTypeIndividual)
	var unsupported *domain.UnsupportedCountryError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "Mars", unsupported.Country)
	assert.Equal(t, domain.TaxTypeIndividual, unsupported.TaxType)
}

func TestRegisterValidates(t *testing.T) {
	reg := NewEmpty()

	tests := []struct {
		name     string
		brackets []domain.TaxBracket
	}{
		{
			name:     "empty table",
			brackets: nil,
		},
		{
			name: "missing unbounded top",
			brackets: []domain.TaxBracket{
				{IncomeLimit: decimal.NewFromInt(10000), Rate: decimal.NewFromFloat(0.10)},
			},
		},
		{
			name: "unbounded bracket not last",
			brackets: []domain.TaxBracket{
				{Rate: decimal.NewFromFloat(0.10), Unbounded: true},
				{Rate: decimal.NewFromFloat(0.20), Unbounded: true},
			},
		},
		{
			name: "non-increasing limits",
			brackets: []domain.TaxBracket{
				{IncomeLimit: decimal.NewFromInt(20000), Rate: decimal.NewFromFloat(0.10)},
				{IncomeLimit: decimal.NewFromInt(20000), Rate: decimal.NewFromFloat(0.20)},
				{Rate: decimal.NewFromFloat(0.30), Unbounded: true},
			},
		},
		{
			name: "rate above one",
			brackets: []domain.TaxBracket{
				{IncomeLimit: decimal.NewFromInt(10000), Rate: decimal.NewFromFloat(1.5)},
				{Rate: decimal.NewFromFloat(0.30), Unbounded: true},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := reg.Register("Testland", domain.TaxTypeIndividual, tt.brackets)
			var confErr *domain.ConfigurationError
			require.ErrorAs(t, err, &confErr)
		})
	}
}

func TestRegisterReplacesExisting(t *testing.T) {
	reg := New()
	flat := []domain.TaxBracket{{Rate: decimal.NewFromFloat(0.05), Unbounded: true}}
	require.NoError(t, reg.Register("US", domain.TaxTypeBusiness, flat))

	brackets, err := reg.Brackets(context.Background(), "US", domain.TaxTypeBusiness)
	require.NoError(t, err)
	require.Len(t, brackets, 1)
	assert.True(t, brackets[0].Rate.Equal(decimal.NewFromFloat(0.05)))
}

func TestRegisterCopiesInput(t *testing.T) {
	reg := NewEmpty()
	brackets := []domain.TaxBracket{{Rate: decimal.NewFromFloat(0.10), Unbounded: true}}
	require.NoError(t, reg.Register("Testland", domain.TaxTypeIndividual, brackets))

	// Mutating the caller's slice must not reach the registry.
	brackets[0].Rate = decimal.NewFromFloat(0.99)

	stored, err := reg.Brackets(context.Background(), "Testland", domain.TaxTypeIndividual)
	require.NoError(t, err)
	assert.True(t, stored[0].Rate.Equal(decimal.NewFromFloat(0.10)))
}

func TestCountries(t *testing.T) {
	reg := New()
	individual := reg.Countries(domain.TaxTypeIndividual)
	assert.Contains(t, individual, "US")
	assert.Contains(t, individual, "Spain")
	assert.Contains(t, individual, "US-CA")
	assert.Contains(t, individual, "Canada-ON")
	assert.IsNonDecreasing(t, individual)

	business := reg.Countries(domain.TaxTypeBusiness)
	assert.Contains(t, business, "US")
	assert.NotContains(t, business, "US-CA", "states carry no corporate table")
}
