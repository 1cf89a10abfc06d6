package compare

import (
	"encoding/csv"
	"strings"

	"github.com/shopspring/decimal"
)

// CSVFormatter formats comparison results as CSV
type CSVFormatter struct{}

// Format generates CSV output with one row per strategy
func (cf *CSVFormatter) Format(result *Result) (string, error) {
	var sb strings.Builder
	w := csv.NewWriter(&sb)

	header := []string{
		"strategy", "gross_income", "total_tax", "net_income_group",
		"net_income_per_person", "effective_rate_pct", "corporate_tax",
		"personal_tax", "self_employment_tax", "dividend_tax",
		"company_retained", "optimal",
	}
	if err := w.Write(header); err != nil {
		return "", err
	}

	for _, s := range result.AllStrategies {
		optimal := "no"
		if result.Optimal != nil && s.Strategy == result.Optimal.Strategy {
			optimal = "yes"
		}
		row := []string{
			s.StrategyName,
			s.GrossIncome.StringFixed(2),
			s.TotalTax.StringFixed(2),
			s.NetIncomeGroup.StringFixed(2),
			s.NetIncomePerPerson.StringFixed(2),
			s.EffectiveRate.Mul(decimal.NewFromInt(100)).StringFixed(2),
			s.CorporateTax.StringFixed(2),
			s.PersonalTax.StringFixed(2),
			s.SelfEmploymentTax.StringFixed(2),
			s.DividendTax.StringFixed(2),
			s.CompanyRetained.StringFixed(2),
			optimal,
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return sb.String(), nil
}
