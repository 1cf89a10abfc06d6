package taxengine

import (
	"context"
	"fmt"

	"github.com/moneysplit/moneysplit/internal/domain"
	"github.com/shopspring/decimal"
)

// Engine simulates tax strategies for a project. It is stateless per call:
// the only I/O is the read-only bracket table lookup through Provider, so
// concurrent Simulate calls need no coordination.
type Engine struct {
	Provider domain.BracketProvider
	Rules    *domain.TaxRules
	Logger   Logger
}

// NewEngine creates an engine over a bracket provider. Nil rules fall back
// to the seeded defaults.
func NewEngine(provider domain.BracketProvider, rules *domain.TaxRules) *Engine {
	if rules == nil {
		rules = domain.DefaultTaxRules()
	}
	return &Engine{Provider: provider, Rules: rules, Logger: NopLogger{}}
}

// SetLogger replaces the engine logger; nil restores the no-op logger.
func (e *Engine) SetLogger(l Logger) {
	if l == nil {
		l = NopLogger{}
	}
	e.Logger = l
}

// Simulate computes the StrategyResult for one strategy. Each strategy is a
// dedicated function; the set is closed and the comparator enumerates it.
func (e *Engine) Simulate(ctx context.Context, strategy domain.Strategy, project *domain.ProjectInput) (*domain.StrategyResult, error) {
	if err := project.Validate(); err != nil {
		return nil, err
	}

	e.Logger.Debugf("simulating %s for %s (revenue=%s costs=%s people=%d)",
		strategy, project.Country, project.Revenue, project.Costs, project.NumPeople)

	switch strategy {
	case domain.StrategyIndividual:
		return e.simulateIndividual(ctx, project)
	case domain.StrategyBusinessSalary:
		return e.simulateBusinessSalary(ctx, project)
	case domain.StrategyBusinessDividend:
		return e.simulateBusinessDividend(ctx, project)
	case domain.StrategyBusinessMixed:
		return e.simulateBusinessMixed(ctx, project)
	case domain.StrategyBusinessReinvest:
		return e.simulateBusinessReinvest(ctx, project)
	default:
		return nil, &domain.InvalidInputError{Field: "strategy", Reason: fmt.Sprintf("unknown strategy %d", strategy)}
	}
}

// SimulatePreferred resolves the project's tax type preference and
// distribution method to a single strategy and simulates it.
func (e *Engine) SimulatePreferred(ctx context.Context, project *domain.ProjectInput) (*domain.StrategyResult, error) {
	if err := project.Validate(); err != nil {
		return nil, err
	}
	taxType := domain.TaxTypeIndividual
	if project.TaxTypePreference != nil {
		taxType = *project.TaxTypePreference
	} else if project.DistributionMethod != domain.DistributionNone {
		taxType = domain.TaxTypeBusiness
	}
	strategy, err := domain.StrategyFor(taxType, project.DistributionMethod)
	if err != nil {
		return nil, err
	}
	return e.Simulate(ctx, strategy, project)
}

// personalTaxParts is the composed personal-level tax on an income base:
// national progressive tax after the standard deduction, plus any companion
// regional table, plus US state tax when a state is supplied. The federal
// and state amounts stay on distinct breakdown lines.
type personalTaxParts struct {
	Total         decimal.Decimal
	Lines         []domain.BreakdownLine
	DeductionUsed decimal.Decimal
}

func (e *Engine) personalIncomeTax(ctx context.Context, project *domain.ProjectInput, base decimal.Decimal) (personalTaxParts, error) {
	var parts personalTaxParts
	country := project.Country

	brackets, err := e.Provider.Brackets(ctx, country, domain.TaxTypeIndividual)
	if err != nil {
		return parts, err
	}

	deduction := e.Rules.StandardDeduction(country)
	taxable := base.Sub(deduction)
	if taxable.IsNegative() {
		taxable = decimal.Zero
	}
	if base.GreaterThan(decimal.Zero) {
		parts.DeductionUsed = decimal.Min(deduction, base)
	}

	national, err := ProgressiveTax(taxable, brackets)
	if err != nil {
		return parts, err
	}
	if national.GreaterThan(decimal.Zero) {
		parts.Lines = append(parts.Lines, domain.BreakdownLine{Label: "Personal Income Tax", Amount: national})
	} else if base.GreaterThan(decimal.Zero) && deduction.GreaterThan(decimal.Zero) && taxable.IsZero() {
		// Legitimately zero: income fully absorbed by the deduction.
		parts.Lines = append(parts.Lines, domain.BreakdownLine{
			Label:  "Personal Income Tax",
			Amount: decimal.Zero,
			Note:   "Income fully offset by standard deduction",
		})
	}
	parts.Total = national

	if regional, ok := e.Rules.Regional(country); ok {
		regionalBrackets, err := e.Provider.Brackets(ctx, regional.Table, domain.TaxTypeIndividual)
		if err != nil {
			return parts, err
		}
		regionalTax, err := ProgressiveTax(taxable, regionalBrackets)
		if err != nil {
			return parts, err
		}
		if regionalTax.GreaterThan(decimal.Zero) {
			parts.Lines = append(parts.Lines, domain.BreakdownLine{Label: regional.Label, Amount: regionalTax})
			parts.Total = parts.Total.Add(regionalTax)
		}
	}

	if country == "US" && project.State != "" {
		stateTax, err := e.stateTax(ctx, project.State, base)
		if err != nil {
			return parts, err
		}
		if stateTax.GreaterThan(decimal.Zero) {
			parts.Lines = append(parts.Lines, domain.BreakdownLine{
				Label:  fmt.Sprintf("State Tax (%s)", project.State),
				Amount: stateTax,
			})
			parts.Total = parts.Total.Add(stateTax)
		}
	}

	return parts, nil
}

// stateTax computes US state income tax on base after the state's own
// standard deduction. State tables register under "US-<code>".
func (e *Engine) stateTax(ctx context.Context, state string, base decimal.Decimal) (decimal.Decimal, error) {
	brackets, err := e.Provider.Brackets(ctx, "US-"+state, domain.TaxTypeIndividual)
	if err != nil {
		return decimal.Zero, err
	}
	taxable := base.Sub(e.Rules.StateDeduction(state))
	if taxable.IsNegative() {
		taxable = decimal.Zero
	}
	return ProgressiveTax(taxable, brackets)
}

// corporateTax runs gross income through the Business table, optionally
// reducing the taxable base by the QBI deduction first.
func (e *Engine) corporateTax(ctx context.Context, country string, gross decimal.Decimal) (tax, qbi decimal.Decimal, err error) {
	brackets, err := e.Provider.Brackets(ctx, country, domain.TaxTypeBusiness)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	taxable := gross
	if e.Rules.QBIEnabled && country == "US" && gross.GreaterThan(decimal.Zero) {
		qbi = gross.Mul(e.Rules.QBIRate).Round(2)
		taxable = gross.Sub(qbi)
	}

	tax, err = ProgressiveTax(taxable, brackets)
	return tax, qbi, err
}

// finalize fills the shared derived fields of a result. Net income is
// clamped to zero when it is negative by no more than a cent, so rounding
// can never push a true zero below zero.
func finalize(result *domain.StrategyResult, project *domain.ProjectInput) *domain.StrategyResult {
	gross := result.GrossIncome
	net := gross.Sub(result.TotalTax)
	if net.IsNegative() && net.Abs().LessThanOrEqual(decimal.NewFromFloat(0.01)) {
		net = decimal.Zero
	}
	if result.Strategy == domain.StrategyBusinessReinvest {
		net = decimal.Zero
	}
	result.NetIncomeGroup = net
	result.NetIncomePerPerson = net.Div(decimal.NewFromInt(int64(project.NumPeople))).Round(2)

	if gross.GreaterThan(Epsilon) {
		result.EffectiveRate = result.TotalTax.Div(gross).Round(6)
	} else {
		result.EffectiveRate = decimal.Zero
	}
	return result
}

func newResult(strategy domain.Strategy, project *domain.ProjectInput) *domain.StrategyResult {
	return &domain.StrategyResult{
		Strategy:     strategy,
		StrategyName: strategy.DisplayName(),
		GrossIncome:  project.GrossIncome(),
	}
}

func sumLines(lines []domain.BreakdownLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Amount)
	}
	return total
}
