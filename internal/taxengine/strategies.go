package taxengine

import (
	"context"
	"fmt"

	"github.com/moneysplit/moneysplit/internal/domain"
	"github.com/shopspring/decimal"
)

// simulateIndividual taxes the whole gross income as personal income of the
// group, treated as one taxable entity for the bracket lookup; the post-tax
// amount is split per person.
func (e *Engine) simulateIndividual(ctx context.Context, project *domain.ProjectInput) (*domain.StrategyResult, error) {
	result := newResult(domain.StrategyIndividual, project)
	gross := result.GrossIncome

	if gross.GreaterThan(decimal.Zero) {
		parts, err := e.personalIncomeTax(ctx, project, gross)
		if err != nil {
			return nil, err
		}
		result.Breakdown = parts.Lines
		result.PersonalTax = parts.Total
		result.TotalTax = parts.Total
		result.StandardDeductionUsed = parts.DeductionUsed
	} else {
		// No tax on non-positive income, but the country must still be
		// registered: an unknown country is an error, not a zero result.
		if _, err := e.Provider.Brackets(ctx, project.Country, domain.TaxTypeIndividual); err != nil {
			return nil, err
		}
	}

	return finalize(result, project), nil
}

// simulateBusinessSalary runs the double-taxation path: corporate tax on
// gross, then the after-tax remainder distributed as salary and taxed again
// as personal income, plus self-employment tax where the country levies it.
func (e *Engine) simulateBusinessSalary(ctx context.Context, project *domain.ProjectInput) (*domain.StrategyResult, error) {
	result := newResult(domain.StrategyBusinessSalary, project)
	gross := result.GrossIncome

	corpTax, qbi, err := e.corporateTax(ctx, project.Country, gross)
	if err != nil {
		return nil, err
	}
	result.CorporateTax = corpTax
	if corpTax.GreaterThan(decimal.Zero) {
		line := domain.BreakdownLine{Label: "Corporate Tax", Amount: corpTax}
		if qbi.GreaterThan(decimal.Zero) {
			line.Note = fmt.Sprintf("After QBI deduction of %s", qbi.StringFixed(2))
		}
		result.Breakdown = append(result.Breakdown, line)
	}

	salary := gross.Sub(corpTax)
	if salary.GreaterThan(decimal.Zero) {
		parts, err := e.personalIncomeTax(ctx, project, salary)
		if err != nil {
			return nil, err
		}
		for i := range parts.Lines {
			if parts.Lines[i].Label == "Personal Income Tax" {
				parts.Lines[i].Label = "Personal Income Tax (on salary)"
			}
		}
		result.Breakdown = append(result.Breakdown, parts.Lines...)
		result.PersonalTax = parts.Total
		result.StandardDeductionUsed = parts.DeductionUsed

		if seRules, ok := e.Rules.SelfEmployment[project.Country]; ok {
			se := CalculateSelfEmploymentTax(salary, seRules)
			if se.Total.GreaterThan(decimal.Zero) {
				result.SelfEmploymentTax = se.Total
				result.Breakdown = append(result.Breakdown, domain.BreakdownLine{
					Label:  "Self-Employment Tax (SS + Medicare)",
					Amount: se.Total,
					Note: fmt.Sprintf("Social Security: %s, Medicare: %s",
						se.SocialSecurity.StringFixed(2), se.Medicare.Add(se.AdditionalMedicare).StringFixed(2)),
				})
			}
		}
	}

	result.TotalTax = result.CorporateTax.Add(result.PersonalTax).Add(result.SelfEmploymentTax)
	return finalize(result, project), nil
}

// simulateBusinessDividend distributes the after-corporate-tax remainder as
// dividends at the country's flat dividend rate. No self-employment tax.
func (e *Engine) simulateBusinessDividend(ctx context.Context, project *domain.ProjectInput) (*domain.StrategyResult, error) {
	result := newResult(domain.StrategyBusinessDividend, project)
	gross := result.GrossIncome

	corpTax, qbi, err := e.corporateTax(ctx, project.Country, gross)
	if err != nil {
		return nil, err
	}
	result.CorporateTax = corpTax
	if corpTax.GreaterThan(decimal.Zero) {
		line := domain.BreakdownLine{Label: "Corporate Tax", Amount: corpTax}
		if qbi.GreaterThan(decimal.Zero) {
			line.Note = fmt.Sprintf("After QBI deduction of %s", qbi.StringFixed(2))
		}
		result.Breakdown = append(result.Breakdown, line)
	}

	distributed := gross.Sub(corpTax)
	if distributed.GreaterThan(decimal.Zero) {
		rate := e.Rules.DividendRate(project.Country)
		divTax := distributed.Mul(rate).Round(2)
		if divTax.GreaterThan(decimal.Zero) {
			result.Breakdown = append(result.Breakdown, domain.BreakdownLine{
				Label:  fmt.Sprintf("Dividend Tax (%s%%)", rate.Mul(decimal.NewFromInt(100)).String()),
				Amount: divTax,
			})
		}
		result.DividendTax = divTax

		if project.Country == "US" && project.State != "" {
			stateTax, err := e.stateTax(ctx, project.State, distributed)
			if err != nil {
				return nil, err
			}
			if stateTax.GreaterThan(decimal.Zero) {
				result.Breakdown = append(result.Breakdown, domain.BreakdownLine{
					Label:  fmt.Sprintf("State Tax (%s)", project.State),
					Amount: stateTax,
				})
				result.DividendTax = result.DividendTax.Add(stateTax)
			}
		}
	}

	result.TotalTax = result.CorporateTax.Add(result.DividendTax)
	return finalize(result, project), nil
}

// simulateBusinessMixed pays salary up to the country's optimal split
// point, the remainder as dividends. The split point defaults to the top of
// the low brackets plus the standard deduction; callers may fix the salary
// explicitly through SalaryAmount.
func (e *Engine) simulateBusinessMixed(ctx context.Context, project *domain.ProjectInput) (*domain.StrategyResult, error) {
	result := newResult(domain.StrategyBusinessMixed, project)
	gross := result.GrossIncome

	corpTax, qbi, err := e.corporateTax(ctx, project.Country, gross)
	if err != nil {
		return nil, err
	}
	result.CorporateTax = corpTax
	if corpTax.GreaterThan(decimal.Zero) {
		line := domain.BreakdownLine{Label: "Corporate Tax", Amount: corpTax}
		if qbi.GreaterThan(decimal.Zero) {
			line.Note = fmt.Sprintf("After QBI deduction of %s", qbi.StringFixed(2))
		}
		result.Breakdown = append(result.Breakdown, line)
	}

	afterCorp := gross.Sub(corpTax)
	if afterCorp.GreaterThan(decimal.Zero) {
		salary := project.SalaryAmount
		if salary.IsZero() {
			salary, result.Note = e.optimalSalary(project.Country, afterCorp)
		} else if salary.GreaterThan(afterCorp) {
			return nil, &domain.InvalidInputError{Field: "salary_amount",
				Reason: fmt.Sprintf("salary %s exceeds after-corporate-tax profit %s", salary, afterCorp)}
		}

		if salary.GreaterThan(decimal.Zero) {
			parts, err := e.personalIncomeTax(ctx, project, salary)
			if err != nil {
				return nil, err
			}
			for i := range parts.Lines {
				if parts.Lines[i].Label == "Personal Income Tax" {
					parts.Lines[i].Label = fmt.Sprintf("Personal Income Tax (on %s salary)", salary.StringFixed(0))
				}
			}
			result.Breakdown = append(result.Breakdown, parts.Lines...)
			result.PersonalTax = parts.Total
			result.StandardDeductionUsed = parts.DeductionUsed

			if seRules, ok := e.Rules.SelfEmployment[project.Country]; ok {
				se := CalculateSelfEmploymentTax(salary, seRules)
				if se.Total.GreaterThan(decimal.Zero) {
					result.SelfEmploymentTax = se.Total
					result.Breakdown = append(result.Breakdown, domain.BreakdownLine{
						Label:  "Self-Employment Tax (SS + Medicare)",
						Amount: se.Total,
						Note: fmt.Sprintf("Social Security: %s, Medicare: %s",
							se.SocialSecurity.StringFixed(2), se.Medicare.Add(se.AdditionalMedicare).StringFixed(2)),
					})
				}
			}
		}

		dividend := afterCorp.Sub(salary)
		if dividend.GreaterThan(decimal.Zero) {
			rate := e.Rules.DividendRate(project.Country)
			divTax := dividend.Mul(rate).Round(2)
			if divTax.GreaterThan(decimal.Zero) {
				result.Breakdown = append(result.Breakdown, domain.BreakdownLine{
					Label: fmt.Sprintf("Dividend Tax (%s%% on %s)",
						rate.Mul(decimal.NewFromInt(100)).String(), dividend.StringFixed(0)),
					Amount: divTax,
				})
			}
			result.DividendTax = divTax
		}
	}

	result.TotalTax = result.CorporateTax.Add(result.PersonalTax).
		Add(result.SelfEmploymentTax).Add(result.DividendTax)
	return finalize(result, project), nil
}

// optimalSalary picks the salary portion for the Mixed method: fill the low
// brackets where the country defines a split point, otherwise 50/50.
func (e *Engine) optimalSalary(country string, afterCorp decimal.Decimal) (decimal.Decimal, string) {
	if split, ok := e.Rules.MixedSplit[country]; ok {
		ceiling := split.BracketTop.Add(e.Rules.StandardDeduction(country))
		return decimal.Min(afterCorp, ceiling), split.Reason
	}
	half := afterCorp.Div(decimal.NewFromInt(2)).Round(2)
	return half, "50/50 salary-dividend split (no country-specific optimization)"
}

// simulateBusinessReinvest keeps the after-corporate-tax profit in the
// company. Only corporate tax is due this period; the retained amount is
// deferred, unrealized income and does not count as take-home.
func (e *Engine) simulateBusinessReinvest(ctx context.Context, project *domain.ProjectInput) (*domain.StrategyResult, error) {
	result := newResult(domain.StrategyBusinessReinvest, project)
	gross := result.GrossIncome

	corpTax, qbi, err := e.corporateTax(ctx, project.Country, gross)
	if err != nil {
		return nil, err
	}
	result.CorporateTax = corpTax
	if corpTax.GreaterThan(decimal.Zero) {
		line := domain.BreakdownLine{Label: "Corporate Tax", Amount: corpTax}
		if qbi.GreaterThan(decimal.Zero) {
			line.Note = fmt.Sprintf("After QBI deduction of %s", qbi.StringFixed(2))
		}
		result.Breakdown = append(result.Breakdown, line)
		result.Breakdown = append(result.Breakdown, domain.BreakdownLine{
			Label:  "Personal Tax",
			Amount: decimal.Zero,
			Note:   "Deferred until distribution",
		})
	}

	retained := gross.Sub(corpTax)
	if retained.GreaterThan(decimal.Zero) {
		result.CompanyRetained = retained
	}
	result.TotalTax = corpTax
	result.Note = "Retained earnings stay in the company; no personal take-home this period"
	return finalize(result, project), nil
}
