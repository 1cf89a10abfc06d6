package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ProjectInput is a single engine request: one project's commission income
// to split and tax under one or all strategies.
type ProjectInput struct {
	Revenue            decimal.Decimal    `json:"revenue" yaml:"revenue"`
	Costs              decimal.Decimal    `json:"costs" yaml:"costs"`
	NumPeople          int                `json:"numPeople" yaml:"numPeople"`
	Country            string             `json:"country" yaml:"country"`
	State              string             `json:"state,omitempty" yaml:"state,omitempty"`
	TaxTypePreference  *TaxType           `json:"taxTypePreference,omitempty" yaml:"taxTypePreference,omitempty"`
	DistributionMethod DistributionMethod `json:"distributionMethod,omitempty" yaml:"distributionMethod,omitempty"`
	// SalaryAmount fixes the salary portion for the Mixed method. Zero means
	// let the engine pick the optimal split.
	SalaryAmount decimal.Decimal `json:"salaryAmount,omitempty" yaml:"salaryAmount,omitempty"`
}

// GrossIncome is revenue minus costs. Negative values are a valid
// degenerate case, not an error.
func (p *ProjectInput) GrossIncome() decimal.Decimal {
	return p.Revenue.Sub(p.Costs)
}

// Validate rejects structurally invalid input before any computation.
func (p *ProjectInput) Validate() error {
	if p.Revenue.IsNegative() {
		return &InvalidInputError{Field: "revenue", Reason: fmt.Sprintf("must be >= 0, got %s", p.Revenue)}
	}
	if p.Costs.IsNegative() {
		return &InvalidInputError{Field: "costs", Reason: fmt.Sprintf("must be >= 0, got %s", p.Costs)}
	}
	if p.NumPeople < 1 {
		return &InvalidInputError{Field: "num_people", Reason: fmt.Sprintf("must be >= 1, got %d", p.NumPeople)}
	}
	if p.Country == "" {
		return &InvalidInputError{Field: "country", Reason: "cannot be empty"}
	}
	if p.SalaryAmount.IsNegative() {
		return &InvalidInputError{Field: "salary_amount", Reason: fmt.Sprintf("must be >= 0, got %s", p.SalaryAmount)}
	}
	switch p.DistributionMethod {
	case DistributionNone, DistributionSalary, DistributionDividend, DistributionMixed, DistributionReinvest:
	default:
		return &InvalidInputError{Field: "distribution_method",
			Reason: fmt.Sprintf("unknown method %q", p.DistributionMethod)}
	}
	return nil
}
