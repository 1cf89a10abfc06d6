package domain

import (
	"fmt"
	"strings"
)

// Strategy identifies one of the modeled legal/distribution structures.
// The set is closed: the comparator enumerates it exhaustively and each
// strategy has a dedicated computation function in the tax engine.
type Strategy int

const (
	StrategyIndividual Strategy = iota
	StrategyBusinessSalary
	StrategyBusinessDividend
	StrategyBusinessMixed
	StrategyBusinessReinvest
)

func (s Strategy) String() string {
	switch s {
	case StrategyIndividual:
		return "individual"
	case StrategyBusinessSalary:
		return "business_salary"
	case StrategyBusinessDividend:
		return "business_dividend"
	case StrategyBusinessMixed:
		return "business_mixed"
	case StrategyBusinessReinvest:
		return "business_reinvest"
	default:
		return "unknown"
	}
}

// DisplayName is the human-facing label used in reports and tables.
func (s Strategy) DisplayName() string {
	switch s {
	case StrategyIndividual:
		return "Individual Tax"
	case StrategyBusinessSalary:
		return "Business + Salary"
	case StrategyBusinessDividend:
		return "Business + Dividend"
	case StrategyBusinessMixed:
		return "Business + Mixed"
	case StrategyBusinessReinvest:
		return "Business + Reinvest"
	default:
		return "Unknown"
	}
}

// TiebreakRank orders strategies for deterministic winner selection when
// net incomes are equal within tolerance. Lower rank wins.
func (s Strategy) TiebreakRank() int {
	switch s {
	case StrategyIndividual:
		return 0
	case StrategyBusinessDividend:
		return 1
	case StrategyBusinessSalary:
		return 2
	case StrategyBusinessReinvest:
		return 3
	default:
		return 4
	}
}

// ParseStrategy accepts both the identifier form ("business_salary") and
// the display form ("Business + Salary").
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "individual", "individual tax":
		return StrategyIndividual, nil
	case "business_salary", "business + salary", "salary":
		return StrategyBusinessSalary, nil
	case "business_dividend", "business + dividend", "dividend":
		return StrategyBusinessDividend, nil
	case "business_mixed", "business + mixed", "mixed":
		return StrategyBusinessMixed, nil
	case "business_reinvest", "business + reinvest", "reinvest":
		return StrategyBusinessReinvest, nil
	default:
		return 0, &InvalidInputError{Field: "strategy", Reason: fmt.Sprintf("unknown strategy %q", s)}
	}
}

// DistributionMethod is how post-corporate-tax profit reaches the owners.
type DistributionMethod string

const (
	DistributionNone     DistributionMethod = ""
	DistributionSalary   DistributionMethod = "Salary"
	DistributionDividend DistributionMethod = "Dividend"
	DistributionMixed    DistributionMethod = "Mixed"
	DistributionReinvest DistributionMethod = "Reinvest"
)

// StrategyFor maps a tax type preference plus distribution method onto the
// strategy that simulates it. Business with no method defaults to Salary,
// matching how projects were historically recorded.
func StrategyFor(taxType TaxType, method DistributionMethod) (Strategy, error) {
	if taxType == TaxTypeIndividual {
		if method != DistributionNone {
			return 0, &UnsupportedStrategyError{Strategy: string(method), Country: "",
				Reason: "distribution methods apply to Business structures only"}
		}
		return StrategyIndividual, nil
	}
	switch method {
	case DistributionNone, DistributionSalary:
		return StrategyBusinessSalary, nil
	case DistributionDividend:
		return StrategyBusinessDividend, nil
	case DistributionMixed:
		return StrategyBusinessMixed, nil
	case DistributionReinvest:
		return StrategyBusinessReinvest, nil
	default:
		return 0, &InvalidInputError{Field: "distribution_method", Reason: fmt.Sprintf("unknown method %q", method)}
	}
}
