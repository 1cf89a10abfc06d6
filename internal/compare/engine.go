package compare

import (
	"context"
	"fmt"

	"github.com/moneysplit/moneysplit/internal/domain"
	"github.com/moneysplit/moneysplit/internal/taxengine"
	"github.com/shopspring/decimal"
)

// comparedStrategies is the fixed simulation order. Reinvest runs last and
// is excluded from ranking unless Options.IncludeReinvest is set.
var comparedStrategies = []domain.Strategy{
	domain.StrategyIndividual,
	domain.StrategyBusinessSalary,
	domain.StrategyBusinessDividend,
	domain.StrategyBusinessReinvest,
}

// Engine ranks the simulated strategies for a project and produces a
// recommendation with quantified savings.
type Engine struct {
	Calc    *taxengine.Engine
	Options Options
}

// NewEngine creates a comparison engine over a tax engine.
func NewEngine(calc *taxengine.Engine) *Engine {
	return &Engine{Calc: calc}
}

// Compare simulates every strategy, selects optimal and worst by group net
// income over the eligible subset, and derives the recommendation. A
// failure in any single strategy fails the whole comparison: a partially
// computed ranking would be misleading.
func (e *Engine) Compare(ctx context.Context, project *domain.ProjectInput) (*Result, error) {
	if err := project.Validate(); err != nil {
		return nil, err
	}

	results := make([]domain.StrategyResult, 0, len(comparedStrategies))
	for _, strategy := range comparedStrategies {
		r, err := e.Calc.Simulate(ctx, strategy, project)
		if err != nil {
			return nil, fmt.Errorf("comparing strategies for %s: %w", project.Country, err)
		}
		results = append(results, *r)
	}

	eligible := make([]*domain.StrategyResult, 0, len(results))
	for i := range results {
		if results[i].Strategy == domain.StrategyBusinessReinvest && !e.Options.IncludeReinvest {
			continue
		}
		eligible = append(eligible, &results[i])
	}

	optimal := pickBest(eligible)
	worst := pickWorst(eligible)
	savings := optimal.NetIncomeGroup.Sub(worst.NetIncomeGroup)

	out := &Result{
		AllStrategies:  results,
		Optimal:        optimal,
		Worst:          worst,
		Savings:        savings,
		Recommendation: e.recommend(project, optimal, worst, savings),
	}
	return out, nil
}

// pickBest returns the highest net income, breaking ties within tolerance
// by the fixed strategy precedence order.
func pickBest(results []*domain.StrategyResult) *domain.StrategyResult {
	best := results[0]
	for _, r := range results[1:] {
		diff := r.NetIncomeGroup.Sub(best.NetIncomeGroup)
		switch {
		case diff.GreaterThan(taxengine.Epsilon):
			best = r
		case diff.Abs().LessThanOrEqual(taxengine.Epsilon):
			if r.Strategy.TiebreakRank() < best.Strategy.TiebreakRank() {
				best = r
			}
		}
	}
	return best
}

// pickWorst returns the lowest positive net income, or the absolute lowest
// when no strategy nets anything. Ties resolve by precedence so identical
// inputs always produce identical output.
func pickWorst(results []*domain.StrategyResult) *domain.StrategyResult {
	var worst *domain.StrategyResult
	for _, r := range results {
		if r.NetIncomeGroup.LessThanOrEqual(decimal.Zero) {
			continue
		}
		worst = lower(worst, r)
	}
	if worst != nil {
		return worst
	}
	for _, r := range results {
		worst = lower(worst, r)
	}
	return worst
}

func lower(current, candidate *domain.StrategyResult) *domain.StrategyResult {
	if current == nil {
		return candidate
	}
	diff := candidate.NetIncomeGroup.Sub(current.NetIncomeGroup)
	switch {
	case diff.LessThan(taxengine.Epsilon.Neg()):
		return candidate
	case diff.Abs().LessThanOrEqual(taxengine.Epsilon):
		if candidate.Strategy.TiebreakRank() < current.Strategy.TiebreakRank() {
			return candidate
		}
	}
	return current
}

func (e *Engine) recommend(project *domain.ProjectInput, optimal, worst *domain.StrategyResult, savings decimal.Decimal) Recommendation {
	rec := Recommendation{Choice: optimal.StrategyName, Savings: savings}

	gross := project.GrossIncome()
	if gross.LessThanOrEqual(decimal.Zero) {
		rec.Reason = "No strategy yields a material difference: gross income is zero or negative, so no tax is due under any structure"
		return rec
	}

	if savings.LessThanOrEqual(taxengine.Epsilon) {
		rec.Reason = fmt.Sprintf("All strategies net %s; %s wins by precedence",
			optimal.NetIncomeGroup.StringFixed(2), optimal.StrategyName)
		return rec
	}

	rec.Reason = fmt.Sprintf("%s nets %s for the group, saving %s versus %s",
		optimal.StrategyName, optimal.NetIncomeGroup.StringFixed(2),
		savings.StringFixed(2), worst.StrategyName)

	switch optimal.Strategy {
	case domain.StrategyBusinessDividend, domain.StrategyBusinessSalary:
		if gross.LessThan(e.Calc.Rules.MaterialityThreshold) {
			rec.Warning = fmt.Sprintf(
				"Corporate structures mean double taxation and overhead; below %s gross income the advantage may not be worth it",
				e.Calc.Rules.MaterialityThreshold.StringFixed(0))
		}
	}
	return rec
}
