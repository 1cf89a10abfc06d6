package domain

import "github.com/shopspring/decimal"

// BreakdownLine is one levied tax component in a strategy result. Amounts
// are rounded to cents; the sum of all lines equals TotalTax.
type BreakdownLine struct {
	Label  string          `json:"label"`
	Amount decimal.Decimal `json:"amount"`
	Note   string          `json:"note,omitempty"`
}

// StrategyResult is the outcome of simulating one strategy for one project.
// Results are constructed fresh per call and never mutated afterwards.
type StrategyResult struct {
	Strategy     Strategy `json:"-"`
	StrategyName string   `json:"strategyName"`

	GrossIncome        decimal.Decimal `json:"grossIncome"`
	TotalTax           decimal.Decimal `json:"totalTax"`
	NetIncomeGroup     decimal.Decimal `json:"netIncomeGroup"`
	NetIncomePerPerson decimal.Decimal `json:"netIncomePerPerson"`
	// EffectiveRate is TotalTax/GrossIncome as a fraction, zero whenever
	// gross income is non-positive.
	EffectiveRate decimal.Decimal `json:"effectiveRate"`

	Breakdown []BreakdownLine `json:"taxBreakdown"`

	// Strategy-specific components; zero when not applicable.
	CorporateTax          decimal.Decimal `json:"corporateTax,omitempty"`
	PersonalTax           decimal.Decimal `json:"personalTax,omitempty"`
	SelfEmploymentTax     decimal.Decimal `json:"selfEmploymentTax,omitempty"`
	DividendTax           decimal.Decimal `json:"dividendTax,omitempty"`
	CompanyRetained       decimal.Decimal `json:"companyRetained,omitempty"`
	StandardDeductionUsed decimal.Decimal `json:"standardDeductionUsed,omitempty"`

	// Note annotates results that need caller-facing context, such as the
	// deferred-income nature of retained earnings.
	Note string `json:"note,omitempty"`
}
