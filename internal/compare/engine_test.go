package compare

import (
	"context"
	"testing"

	"github.com/moneysplit/moneysplit/internal/domain"
	"github.com/moneysplit/moneysplit/internal/registry"
	"github.com/moneysplit/moneysplit/internal/taxengine"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine() *Engine {
	return NewEngine(taxengine.NewEngine(registry.New(), nil))
}

func usProject(revenue int64, people int) *domain.ProjectInput {
	return &domain.ProjectInput{
		Revenue:   decimal.NewFromInt(revenue),
		NumPeople: people,
		Country:   "US",
	}
}

func TestCompareUS(t *testing.T) {
	e := newTestEngine()
	result, err := e.Compare(context.Background(), usProject(80000, 2))
	require.NoError(t, err)

	require.Len(t, result.AllStrategies, 4)
	require.NotNil(t, result.Optimal)
	require.NotNil(t, result.Worst)

	// At 80k gross the corporate double hit loses to direct personal
	// taxation; the dividend path beats the salary path because it skips
	// self-employment tax.
	assert.Equal(t, domain.StrategyIndividual, result.Optimal.Strategy)
	assert.Equal(t, domain.StrategyBusinessSalary, result.Worst.Strategy)

	var salary, dividend *domain.StrategyResult
	for i := range result.AllStrategies {
		switch result.AllStrategies[i].Strategy {
		case domain.StrategyBusinessSalary:
			salary = &result.AllStrategies[i]
		case domain.StrategyBusinessDividend:
			dividend = &result.AllStrategies[i]
		}
	}
	require.NotNil(t, salary)
	require.NotNil(t, dividend)
	assert.True(t, dividend.TotalTax.LessThan(salary.TotalTax),
		"dividend tax %s should undercut salary tax %s", dividend.TotalTax, salary.TotalTax)

	expectedSavings := decimal.NewFromFloat(22033.87) // 70559.00 - 48525.13
	assert.True(t, result.Savings.Equal(expectedSavings),
		"expected savings %s, got %s", expectedSavings, result.Savings)
	assert.Equal(t, result.Optimal.StrategyName, result.Recommendation.Choice)
	assert.NotEmpty(t, result.Recommendation.Reason)
	assert.Empty(t, result.Recommendation.Warning,
		"individual recommendation carries no double-taxation warning")
}

func TestCompareSavingsMatchesSpread(t *testing.T) {
	e := newTestEngine()
	for _, revenue := range []int64{30000, 80000, 250000, 1000000} {
		result, err := e.Compare(context.Background(), usProject(revenue, 1))
		require.NoError(t, err)
		spread := result.Optimal.NetIncomeGroup.Sub(result.Worst.NetIncomeGroup)
		assert.True(t, result.Savings.Equal(spread),
			"revenue %d: savings %s != spread %s", revenue, result.Savings, spread)
		assert.True(t, result.Savings.GreaterThanOrEqual(decimal.Zero))
	}
}

func TestCompareExcludesReinvestByDefault(t *testing.T) {
	e := newTestEngine()
	result, err := e.Compare(context.Background(), usProject(80000, 1))
	require.NoError(t, err)

	// Reinvest is still simulated and reported.
	var reinvest *domain.StrategyResult
	for i := range result.AllStrategies {
		if result.AllStrategies[i].Strategy == domain.StrategyBusinessReinvest {
			reinvest = &result.AllStrategies[i]
		}
	}
	require.NotNil(t, reinvest)

	// But its zero take-home must never make it the worst cash strategy.
	assert.NotEqual(t, domain.StrategyBusinessReinvest, result.Optimal.Strategy)
	assert.NotEqual(t, domain.StrategyBusinessReinvest, result.Worst.Strategy)
}

func TestCompareIncludeReinvest(t *testing.T) {
	e := newTestEngine()
	e.Options.IncludeReinvest = true
	result, err := e.Compare(context.Background(), usProject(80000, 1))
	require.NoError(t, err)

	// With reinvest ranked, its zero net income is the absolute floor,
	// but pickWorst prefers the lowest positive net.
	assert.Equal(t, domain.StrategyBusinessSalary, result.Worst.Strategy)
}

func TestCompareZeroGrossIncome(t *testing.T) {
	e := newTestEngine()
	project := &domain.ProjectInput{
		Revenue:   decimal.NewFromInt(5000),
		Costs:     decimal.NewFromInt(5000),
		NumPeople: 1,
		Country:   "US",
	}
	result, err := e.Compare(context.Background(), project)
	require.NoError(t, err)

	assert.True(t, result.Savings.IsZero())
	assert.Equal(t, domain.StrategyIndividual, result.Optimal.Strategy,
		"precedence picks Individual when every strategy nets zero")
	assert.Contains(t, result.Recommendation.Reason, "gross income is zero or negative")
}

func TestCompareTiebreakPrecedence(t *testing.T) {
	// A 0% jurisdiction nets the same under every structure; the winner
	// must still be deterministic.
	reg := registry.NewEmpty()
	flat := []domain.TaxBracket{{Rate: decimal.Zero, Unbounded: true}}
	require.NoError(t, reg.Register("Freeport", domain.TaxTypeIndividual, flat))
	require.NoError(t, reg.Register("Freeport", domain.TaxTypeBusiness, flat))

	rules := domain.DefaultTaxRules()
	rules.DefaultDividendRate = decimal.Zero

	e := NewEngine(taxengine.NewEngine(reg, rules))
	project := &domain.ProjectInput{
		Revenue:   decimal.NewFromInt(100000),
		NumPeople: 1,
		Country:   "Freeport",
	}
	result, err := e.Compare(context.Background(), project)
	require.NoError(t, err)

	assert.Equal(t, domain.StrategyIndividual, result.Optimal.Strategy)
	assert.True(t, result.Savings.IsZero())
	assert.Contains(t, result.Recommendation.Reason, "wins by precedence")
}

func TestCompareDeterministic(t *testing.T) {
	e := newTestEngine()
	first, err := e.Compare(context.Background(), usProject(80000, 2))
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := e.Compare(context.Background(), usProject(80000, 2))
		require.NoError(t, err)
		assert.Equal(t, first.Optimal.Strategy, again.Optimal.Strategy)
		assert.True(t, first.Savings.Equal(again.Savings))
		assert.Equal(t, first.Recommendation, again.Recommendation)
	}
}

func TestCompareMaterialityWarning(t *testing.T) {
	// Force a Business winner below the materiality threshold: a country
	// with brutal personal rates and a mild corporate rate.
	reg := registry.NewEmpty()
	personal := []domain.TaxBracket{{Rate: decimal.NewFromFloat(0.50), Unbounded: true}}
	business := []domain.TaxBracket{{Rate: decimal.NewFromFloat(0.10), Unbounded: true}}
	require.NoError(t, reg.Register("Taxhaven", domain.TaxTypeIndividual, personal))
	require.NoError(t, reg.Register("Taxhaven", domain.TaxTypeBusiness, business))

	e := NewEngine(taxengine.NewEngine(reg, nil))
	project := &domain.ProjectInput{
		Revenue:   decimal.NewFromInt(30000), // below the 50000 threshold
		NumPeople: 1,
		Country:   "Taxhaven",
	}
	result, err := e.Compare(context.Background(), project)
	require.NoError(t, err)

	assert.Equal(t, domain.StrategyBusinessDividend, result.Optimal.Strategy)
	assert.NotEmpty(t, result.Recommendation.Warning)
}

func TestCompareUnknownCountry(t *testing.T) {
	e := newTestEngine()
	project := &domain.ProjectInput{
		Revenue:   decimal.NewFromInt(80000),
		NumPeople: 1,
		Country:   "Mars",
	}
	_, err := e.Compare(context.Background(), project)
	require.Error(t, err)
	var unsupported *domain.UnsupportedCountryError
	assert.ErrorAs(t, err, &unsupported)
}
