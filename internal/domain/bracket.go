package domain

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// TaxType distinguishes the two bracket tables a country may register.
type TaxType int

const (
	TaxTypeIndividual TaxType = iota
	TaxTypeBusiness
)

func (tt TaxType) String() string {
	switch tt {
	case TaxTypeIndividual:
		return "Individual"
	case TaxTypeBusiness:
		return "Business"
	default:
		return "unknown"
	}
}

// ParseTaxType accepts the wire spelling used by the API and CLI.
func ParseTaxType(s string) (TaxType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "individual":
		return TaxTypeIndividual, nil
	case "business":
		return TaxTypeBusiness, nil
	default:
		return 0, &InvalidInputError{Field: "tax_type", Reason: fmt.Sprintf("must be Individual or Business, got %q", s)}
	}
}

// TaxBracket is one marginal rate band. IncomeLimit is the inclusive upper
// bound of the band; the lower bound is implied by the preceding bracket
// (zero for the first). The top bracket of every table is Unbounded and its
// IncomeLimit is ignored.
type TaxBracket struct {
	IncomeLimit decimal.Decimal `json:"incomeLimit" yaml:"incomeLimit"`
	Rate        decimal.Decimal `json:"rate" yaml:"rate"`
	Unbounded   bool            `json:"unbounded,omitempty" yaml:"unbounded,omitempty"`
}

// ValidateBrackets checks the table invariants: strictly increasing limits,
// rates within [0,1], and exactly one unbounded bracket in the final
// position. A table that fails here must never reach a computation.
func ValidateBrackets(country string, taxType TaxType, brackets []TaxBracket) error {
	if len(brackets) == 0 {
		return &ConfigurationError{Country: country, TaxType: taxType, Reason: "no brackets defined"}
	}

	one := decimal.NewFromInt(1)
	prev := decimal.Zero
	for i, b := range brackets {
		if b.Rate.IsNegative() || b.Rate.GreaterThan(one) {
			return &ConfigurationError{Country: country, TaxType: taxType,
				Reason: fmt.Sprintf("bracket %d rate %s outside [0,1]", i, b.Rate)}
		}
		if b.Unbounded {
			if i != len(brackets)-1 {
				return &ConfigurationError{Country: country, TaxType: taxType,
					Reason: fmt.Sprintf("unbounded bracket at position %d, must be last", i)}
			}
			continue
		}
		if i == len(brackets)-1 {
			return &ConfigurationError{Country: country, TaxType: taxType,
				Reason: "missing unbounded top bracket"}
		}
		if i > 0 && !b.IncomeLimit.GreaterThan(prev) {
			return &ConfigurationError{Country: country, TaxType: taxType,
				Reason: fmt.Sprintf("bracket %d limit %s not greater than previous %s", i, b.IncomeLimit, prev)}
		}
		if i == 0 && !b.IncomeLimit.GreaterThan(decimal.Zero) {
			return &ConfigurationError{Country: country, TaxType: taxType,
				Reason: fmt.Sprintf("first bracket limit %s must be positive", b.IncomeLimit)}
		}
		prev = b.IncomeLimit
	}
	return nil
}

// BracketProvider is the engine's only data dependency. Implementations
// must return tables already satisfying ValidateBrackets, ordered ascending.
type BracketProvider interface {
	Brackets(ctx context.Context, country string, taxType TaxType) ([]TaxBracket, error)
}
