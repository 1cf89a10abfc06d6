package taxengine

import (
	"github.com/moneysplit/moneysplit/internal/domain"
	"github.com/shopspring/decimal"
)

// Epsilon is the boundary tolerance for bracket comparisons. Incomes within
// Epsilon of a bracket edge tax identically whichever side of the edge they
// land on.
var Epsilon = decimal.New(1, -6)

// ProgressiveTax computes marginal-rate tax for taxableIncome over a
// validated, ascending bracket table. Non-positive income owes nothing.
// The result is rounded to cents exactly once, here at the return;
// intermediate slices stay unrounded so rounding error cannot compound.
func ProgressiveTax(taxableIncome decimal.Decimal, brackets []domain.TaxBracket) (decimal.Decimal, error) {
	if len(brackets) == 0 {
		return decimal.Zero, &domain.ConfigurationError{Reason: "no brackets supplied"}
	}
	if taxableIncome.LessThanOrEqual(Epsilon) {
		return decimal.Zero, nil
	}

	tax := decimal.Zero
	prev := decimal.Zero
	for _, b := range brackets {
		if b.Unbounded || taxableIncome.LessThanOrEqual(b.IncomeLimit.Add(Epsilon)) {
			tax = tax.Add(taxableIncome.Sub(prev).Mul(b.Rate))
			break
		}
		tax = tax.Add(b.IncomeLimit.Sub(prev).Mul(b.Rate))
		prev = b.IncomeLimit
	}

	return tax.Round(2), nil
}
