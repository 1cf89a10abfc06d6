package taxengine

import (
	"context"
	"testing"

	"github.com/moneysplit/moneysplit/internal/domain"
	"github.com/moneysplit/moneysplit/internal/registry"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine() *Engine {
	return NewEngine(registry.New(), nil)
}

func usProject(revenue int64, people int) *domain.ProjectInput {
	return &domain.ProjectInput{
		Revenue:   decimal.NewFromInt(revenue),
		NumPeople: people,
		Country:   "US",
	}
}

func assertDecimal(t *testing.T, expected, actual decimal.Decimal, label string) {
	t.Helper()
	assert.True(t, actual.Equal(expected), "%s: expected %s, got %s", label, expected, actual)
}

func TestSimulateIndividualUS(t *testing.T) {
	e := newTestEngine()
	result, err := e.Simulate(context.Background(), domain.StrategyIndividual, usProject(80000, 2))
	require.NoError(t, err)

	// taxable 65400 after the 14600 standard deduction:
	// 11600*0.10 + 35550*0.12 + 18250*0.22
	assertDecimal(t, decimal.NewFromFloat(9441.00), result.TotalTax, "total tax")
	assertDecimal(t, decimal.NewFromFloat(70559.00), result.NetIncomeGroup, "group net")
	assertDecimal(t, decimal.NewFromFloat(35279.50), result.NetIncomePerPerson, "per-person net")
	assertDecimal(t, decimal.NewFromFloat(0.118013), result.EffectiveRate, "effective rate")
	assertDecimal(t, decimal.NewFromInt(14600), result.StandardDeductionUsed, "deduction used")
}

func TestSimulateIndividualSpain(t *testing.T) {
	e := newTestEngine()
	project := &domain.ProjectInput{
		Revenue:   decimal.NewFromInt(35000),
		NumPeople: 1,
		Country:   "Spain",
	}
	result, err := e.Simulate(context.Background(), domain.StrategyIndividual, project)
	require.NoError(t, err)

	// taxable 29450 after the 5550 allowance:
	// 12450*0.19 + 7750*0.24 + 9250*0.30
	assertDecimal(t, decimal.NewFromFloat(7000.50), result.TotalTax, "total tax")
	assertDecimal(t, decimal.NewFromFloat(0.200014), result.EffectiveRate, "effective rate")
}

func TestSimulateIndividualUK(t *testing.T) {
	e := newTestEngine()
	project := &domain.ProjectInput{
		Revenue:   decimal.NewFromInt(20000),
		NumPeople: 1,
		Country:   "UK",
	}
	result, err := e.Simulate(context.Background(), domain.StrategyIndividual, project)
	require.NoError(t, err)

	// The personal allowance is the 0% band: 12570*0 + 7430*0.20.
	assertDecimal(t, decimal.NewFromFloat(1486.00), result.TotalTax, "total tax")
}

func TestSimulateIndividualCanadaAddsProvincialTax(t *testing.T) {
	e := newTestEngine()
	project := &domain.ProjectInput{
		Revenue:   decimal.NewFromInt(60000),
		NumPeople: 1,
		Country:   "Canada",
	}
	result, err := e.Simulate(context.Background(), domain.StrategyIndividual, project)
	require.NoError(t, err)

	// Federal 53359*0.15 + 6641*0.205 = 9365.26, Ontario
	// 49231*0.0505 + 10769*0.0915 = 3471.53.
	assertDecimal(t, decimal.NewFromFloat(12836.79), result.TotalTax, "total tax")

	var provincial *domain.BreakdownLine
	for i := range result.Breakdown {
		if result.Breakdown[i].Label == "Provincial Tax (Ontario)" {
			provincial = &result.Breakdown[i]
		}
	}
	require.NotNil(t, provincial, "missing provincial breakdown line")
	assertDecimal(t, decimal.NewFromFloat(3471.53), provincial.Amount, "provincial tax")
}

func TestSimulateIndividualUSStateTax(t *testing.T) {
	e := newTestEngine()
	project := usProject(80000, 1)
	project.State = "CA"
	result, err := e.Simulate(context.Background(), domain.StrategyIndividual, project)
	require.NoError(t, err)

	// Federal 9441.00 plus California tax on 74798 after the 5202 state
	// deduction: 3709.69.
	assertDecimal(t, decimal.NewFromFloat(13150.69), result.TotalTax, "total tax")
}

func TestSimulateIndividualNoIncomeTaxState(t *testing.T) {
	e := newTestEngine()
	project := usProject(80000, 1)
	project.State = "TX"
	result, err := e.Simulate(context.Background(), domain.StrategyIndividual, project)
	require.NoError(t, err)

	assertDecimal(t, decimal.NewFromFloat(9441.00), result.TotalTax, "total tax")
	for _, line := range result.Breakdown {
		assert.NotContains(t, line.Label, "State Tax", "zero state tax must not produce a line")
	}
}

func TestSimulateBusinessSalaryUS(t *testing.T) {
	e := newTestEngine()
	result, err := e.Simulate(context.Background(), domain.StrategyBusinessSalary, usProject(80000, 2))
	require.NoError(t, err)

	assertDecimal(t, decimal.NewFromFloat(16800.00), result.CorporateTax, "corporate tax")
	// Salary 63200, taxable 48600: 1160 + 4266 + 1450*0.22.
	assertDecimal(t, decimal.NewFromFloat(5745.00), result.PersonalTax, "personal tax")
	// Net earnings 58365.20: SS 7237.28 + Medicare 1692.59.
	assertDecimal(t, decimal.NewFromFloat(8929.87), result.SelfEmploymentTax, "self-employment tax")
	assertDecimal(t, decimal.NewFromFloat(31474.87), result.TotalTax, "total tax")
	assertDecimal(t, decimal.NewFromFloat(48525.13), result.NetIncomeGroup, "group net")
}

func TestSimulateBusinessDividendUS(t *testing.T) {
	e := newTestEngine()
	result, err := e.Simulate(context.Background(), domain.StrategyBusinessDividend, usProject(80000, 2))
	require.NoError(t, err)

	assertDecimal(t, decimal.NewFromFloat(16800.00), result.CorporateTax, "corporate tax")
	// 63200 distributed at the 15% qualified rate.
	assertDecimal(t, decimal.NewFromFloat(9480.00), result.DividendTax, "dividend tax")
	assertDecimal(t, decimal.NewFromFloat(26280.00), result.TotalTax, "total tax")
	assertDecimal(t, decimal.NewFromFloat(53720.00), result.NetIncomeGroup, "group net")
	assert.True(t, result.SelfEmploymentTax.IsZero(), "dividends carry no self-employment tax")
}

func TestSimulateBusinessMixedUS(t *testing.T) {
	e := newTestEngine()
	result, err := e.Simulate(context.Background(), domain.StrategyBusinessMixed, usProject(80000, 2))
	require.NoError(t, err)

	assertDecimal(t, decimal.NewFromFloat(16800.00), result.CorporateTax, "corporate tax")
	// Salary fills up to 47150 + 14600 = 61750; taxable 47150 taxes to
	// 5426.00 and the 1450 dividend remainder to 217.50.
	assertDecimal(t, decimal.NewFromFloat(5426.00), result.PersonalTax, "personal tax")
	assertDecimal(t, decimal.NewFromFloat(217.50), result.DividendTax, "dividend tax")
	assertDecimal(t, decimal.NewFromFloat(8725.00), result.SelfEmploymentTax, "self-employment tax")
	assertDecimal(t, decimal.NewFromFloat(31168.50), result.TotalTax, "total tax")
	assert.NotEmpty(t, result.Note, "mixed split should explain the chosen salary")
}

func TestSimulateBusinessMixedExplicitSalary(t *testing.T) {
	e := newTestEngine()
	project := usProject(80000, 1)
	project.SalaryAmount = decimal.NewFromInt(30000)
	result, err := e.Simulate(context.Background(), domain.StrategyBusinessMixed, project)
	require.NoError(t, err)

	// Salary 30000, taxable 15400: 1160 + 3800*0.12 = 1616.
	assertDecimal(t, decimal.NewFromFloat(1616.00), result.PersonalTax, "personal tax")
	// Dividend remainder 33200 at 15%.
	assertDecimal(t, decimal.NewFromFloat(4980.00), result.DividendTax, "dividend tax")
}

func TestSimulateBusinessMixedSalaryExceedsProfit(t *testing.T) {
	e := newTestEngine()
	project := usProject(80000, 1)
	project.SalaryAmount = decimal.NewFromInt(70000) // after-corp profit is 63200

	_, err := e.Simulate(context.Background(), domain.StrategyBusinessMixed, project)
	var invalid *domain.InvalidInputError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "salary_amount", invalid.Field)
}

func TestSimulateBusinessReinvestUS(t *testing.T) {
	e := newTestEngine()
	result, err := e.Simulate(context.Background(), domain.StrategyBusinessReinvest, usProject(80000, 2))
	require.NoError(t, err)

	assertDecimal(t, decimal.NewFromFloat(16800.00), result.TotalTax, "total tax")
	assertDecimal(t, decimal.NewFromFloat(63200.00), result.CompanyRetained, "retained earnings")
	assert.True(t, result.NetIncomeGroup.IsZero(), "reinvest pays out nothing this period")
	assert.True(t, result.NetIncomePerPerson.IsZero(), "reinvest pays out nothing per person")
	assert.NotEmpty(t, result.Note)
}

func TestSimulateBreakdownSumsToTotal(t *testing.T) {
	e := newTestEngine()
	strategies := []domain.Strategy{
		domain.StrategyIndividual,
		domain.StrategyBusinessSalary,
		domain.StrategyBusinessDividend,
		domain.StrategyBusinessMixed,
	}
	for _, strategy := range strategies {
		t.Run(strategy.String(), func(t *testing.T) {
			result, err := e.Simulate(context.Background(), strategy, usProject(150000, 3))
			require.NoError(t, err)
			assertDecimal(t, result.TotalTax, sumLines(result.Breakdown), "breakdown sum")
		})
	}
}

func TestSimulateZeroGrossIncome(t *testing.T) {
	e := newTestEngine()
	project := &domain.ProjectInput{
		Revenue:   decimal.NewFromInt(5000),
		Costs:     decimal.NewFromInt(5000),
		NumPeople: 1,
		Country:   "US",
	}
	result, err := e.Simulate(context.Background(), domain.StrategyIndividual, project)
	require.NoError(t, err)
	assert.True(t, result.TotalTax.IsZero())
	assert.True(t, result.NetIncomeGroup.IsZero())
	assert.True(t, result.EffectiveRate.IsZero())
}

func TestSimulateNegativeGrossIncome(t *testing.T) {
	e := newTestEngine()
	project := &domain.ProjectInput{
		Revenue:   decimal.NewFromInt(50000),
		Costs:     decimal.NewFromInt(70000),
		NumPeople: 1,
		Country:   "US",
	}
	strategies := []domain.Strategy{
		domain.StrategyIndividual,
		domain.StrategyBusinessSalary,
		domain.StrategyBusinessDividend,
		domain.StrategyBusinessReinvest,
	}
	for _, strategy := range strategies {
		t.Run(strategy.String(), func(t *testing.T) {
			result, err := e.Simulate(context.Background(), strategy, project)
			require.NoError(t, err)
			assert.True(t, result.TotalTax.IsZero(), "no tax on a loss, got %s", result.TotalTax)
			assert.True(t, result.EffectiveRate.IsZero(), "rate must be zero, got %s", result.EffectiveRate)
		})
	}
}

func TestSimulateUnknownCountry(t *testing.T) {
	e := newTestEngine()
	project := &domain.ProjectInput{
		Revenue:   decimal.NewFromInt(80000),
		NumPeople: 1,
		Country:   "Mars",
	}
	_, err := e.Simulate(context.Background(), domain.StrategyIndividual, project)
	var unsupported *domain.UnsupportedCountryError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "Mars", unsupported.Country)
}

func TestSimulateUnknownCountryZeroIncomeStillErrors(t *testing.T) {
	e := newTestEngine()
	project := &domain.ProjectInput{
		Revenue:   decimal.Zero,
		NumPeople: 1,
		Country:   "Mars",
	}
	_, err := e.Simulate(context.Background(), domain.StrategyIndividual, project)
	var unsupported *domain.UnsupportedCountryError
	require.ErrorAs(t, err, &unsupported)
}

func TestSimulateRejectsInvalidInput(t *testing.T) {
	e := newTestEngine()
	tests := []struct {
		name    string
		project *domain.ProjectInput
		field   string
	}{
		{
			name: "negative revenue",
			project: &domain.ProjectInput{
				Revenue: decimal.NewFromInt(-1), NumPeople: 1, Country: "US",
			},
			field: "revenue",
		},
		{
			name: "zero people",
			project: &domain.ProjectInput{
				Revenue: decimal.NewFromInt(1000), NumPeople: 0, Country: "US",
			},
			field: "num_people",
		},
		{
			name: "empty country",
			project: &domain.ProjectInput{
				Revenue: decimal.NewFromInt(1000), NumPeople: 1,
			},
			field: "country",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Simulate(context.Background(), domain.StrategyIndividual, tt.project)
			var invalid *domain.InvalidInputError
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, tt.field, invalid.Field)
		})
	}
}

func TestSimulateQBIDeduction(t *testing.T) {
	e := newTestEngine()
	e.Rules.QBIEnabled = true
	result, err := e.Simulate(context.Background(), domain.StrategyBusinessReinvest, usProject(80000, 1))
	require.NoError(t, err)

	// Corporate base drops to 64000 after the 20% QBI deduction.
	assertDecimal(t, decimal.NewFromFloat(13440.00), result.CorporateTax, "corporate tax")
}

func TestSimulatePreferred(t *testing.T) {
	e := newTestEngine()
	business := domain.TaxTypeBusiness

	tests := []struct {
		name     string
		mutate   func(p *domain.ProjectInput)
		expected domain.Strategy
	}{
		{
			name:     "defaults to individual",
			mutate:   func(p *domain.ProjectInput) {},
			expected: domain.StrategyIndividual,
		},
		{
			name: "business preference defaults to salary",
			mutate: func(p *domain.ProjectInput) {
				p.TaxTypePreference = &business
			},
			expected: domain.StrategyBusinessSalary,
		},
		{
			name: "dividend method implies business",
			mutate: func(p *domain.ProjectInput) {
				p.DistributionMethod = domain.DistributionDividend
			},
			expected: domain.StrategyBusinessDividend,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			project := usProject(80000, 1)
			tt.mutate(project)
			result, err := e.SimulatePreferred(context.Background(), project)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result.Strategy)
		})
	}
}
