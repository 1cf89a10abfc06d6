package domain

import "github.com/shopspring/decimal"

// SelfEmploymentRules parameterizes the payroll-style tax levied on salary
// distributions. Rates and caps shift every tax year, so they are data, not
// code. Only countries present in TaxRules.SelfEmployment levy it.
type SelfEmploymentRules struct {
	// NetEarningsFactor scales salary to net self-employment earnings
	// before the rates apply (US: 92.35%, reflecting the deductible half).
	NetEarningsFactor           decimal.Decimal `yaml:"netEarningsFactor"`
	SocialSecurityRate          decimal.Decimal `yaml:"socialSecurityRate"`
	SocialSecurityWageBase      decimal.Decimal `yaml:"socialSecurityWageBase"`
	MedicareRate                decimal.Decimal `yaml:"medicareRate"`
	AdditionalMedicareRate      decimal.Decimal `yaml:"additionalMedicareRate"`
	AdditionalMedicareThreshold decimal.Decimal `yaml:"additionalMedicareThreshold"`
}

// MixedSplitRules drives the optimal salary/dividend split for the Mixed
// distribution method: salary fills the low brackets up to BracketTop plus
// the standard deduction, the rest goes out as dividends.
type MixedSplitRules struct {
	BracketTop decimal.Decimal `yaml:"bracketTop"`
	Reason     string          `yaml:"reason"`
}

// RegionalTax names a companion Individual table applied on the same
// taxable basis as the national one (Canada's provincial tax).
type RegionalTax struct {
	Table string `yaml:"table"`
	Label string `yaml:"label"`
}

// TaxRules bundles every tunable constant the engine consumes outside the
// bracket tables themselves. Defaults cover the seeded countries; a YAML
// rules file may override any field.
type TaxRules struct {
	// StandardDeductions by country, applied once at the aggregate level
	// before the Individual bracket lookup.
	StandardDeductions map[string]decimal.Decimal `yaml:"standardDeductions"`

	// StateDeductions by US state code, applied before state bracket lookup.
	StateDeductions map[string]decimal.Decimal `yaml:"stateDeductions"`

	// DividendRates by country; DefaultDividendRate covers the rest.
	DividendRates       map[string]decimal.Decimal `yaml:"dividendRates"`
	DefaultDividendRate decimal.Decimal            `yaml:"defaultDividendRate"`

	SelfEmployment map[string]SelfEmploymentRules `yaml:"selfEmployment"`

	// RegionalTables by country: an extra Individual table levied on the
	// same basis as the national tax, reported on its own breakdown line.
	RegionalTables map[string]RegionalTax `yaml:"regionalTables"`

	MixedSplit map[string]MixedSplitRules `yaml:"mixedSplit"`

	// QBIRate is the US qualified-business-income deduction. Disabled by
	// default: the headline corporate numbers assume tax on full gross.
	QBIRate    decimal.Decimal `yaml:"qbiRate"`
	QBIEnabled bool            `yaml:"qbiEnabled"`

	// MaterialityThreshold gates the double-taxation warning: a Business
	// recommendation under this gross income carries a caveat.
	MaterialityThreshold decimal.Decimal `yaml:"materialityThreshold"`
}

// DefaultTaxRules returns the 2024 constants for the seeded countries.
func DefaultTaxRules() *TaxRules {
	return &TaxRules{
		StandardDeductions: map[string]decimal.Decimal{
			"US":    decimal.NewFromInt(14600), // single filer 2024
			"Spain": decimal.NewFromInt(5550),  // minimum personal allowance
		},
		StateDeductions: map[string]decimal.Decimal{
			"CA": decimal.NewFromInt(5202),
			"NY": decimal.NewFromInt(8000),
			"TX": decimal.Zero,
			"FL": decimal.Zero,
		},
		DividendRates: map[string]decimal.Decimal{
			"US":    decimal.NewFromFloat(0.15), // qualified dividends
			"Spain": decimal.NewFromFloat(0.19),
		},
		DefaultDividendRate: decimal.NewFromFloat(0.15),
		SelfEmployment: map[string]SelfEmploymentRules{
			"US": {
				NetEarningsFactor:           decimal.NewFromFloat(0.9235),
				SocialSecurityRate:          decimal.NewFromFloat(0.124),
				SocialSecurityWageBase:      decimal.NewFromInt(168600), // 2024
				MedicareRate:                decimal.NewFromFloat(0.029),
				AdditionalMedicareRate:      decimal.NewFromFloat(0.009),
				AdditionalMedicareThreshold: decimal.NewFromInt(200000),
			},
		},
		RegionalTables: map[string]RegionalTax{
			"Canada": {Table: "Canada-ON", Label: "Provincial Tax (Ontario)"},
		},
		MixedSplit: map[string]MixedSplitRules{
			"US": {
				BracketTop: decimal.NewFromInt(47150), // top of 12% bracket 2024
				Reason:     "Pay salary up to the top of the 12% bracket, rest as dividend",
			},
			"Spain": {
				BracketTop: decimal.NewFromInt(20200), // top of 24% bracket
				Reason:     "Pay salary up to the top of the 24% bracket, rest as dividend",
			},
		},
		QBIRate:              decimal.NewFromFloat(0.20),
		QBIEnabled:           false,
		MaterialityThreshold: decimal.NewFromInt(50000),
	}
}

// StandardDeduction returns the deduction for a country, zero if none.
func (r *TaxRules) StandardDeduction(country string) decimal.Decimal {
	if d, ok := r.StandardDeductions[country]; ok {
		return d
	}
	return decimal.Zero
}

// StateDeduction returns the US state standard deduction, zero if none.
func (r *TaxRules) StateDeduction(state string) decimal.Decimal {
	if d, ok := r.StateDeductions[state]; ok {
		return d
	}
	return decimal.Zero
}

// Regional reports the companion regional table for a country, if any.
func (r *TaxRules) Regional(country string) (RegionalTax, bool) {
	rt, ok := r.RegionalTables[country]
	return rt, ok
}

// DividendRate returns the country rate, falling back to the default.
func (r *TaxRules) DividendRate(country string) decimal.Decimal {
	if rate, ok := r.DividendRates[country]; ok {
		return rate
	}
	return r.DefaultDividendRate
}
