package compare

import (
	"fmt"
	"strings"

	"github.com/moneysplit/moneysplit/internal/domain"
	"github.com/shopspring/decimal"
)

// TableFormatter formats comparison results as a console table
type TableFormatter struct{}

// Format generates a formatted table comparing strategies
func (tf *TableFormatter) Format(result *Result) string {
	var sb strings.Builder

	sb.WriteString("TAX STRATEGY COMPARISON\n")
	sb.WriteString(strings.Repeat("=", 88) + "\n")

	nameWidth := 22
	numWidth := 15

	sb.WriteString(fmt.Sprintf("%-*s %*s %*s %*s %*s\n",
		nameWidth, "Strategy",
		numWidth, "Total Tax",
		numWidth, "Net (Group)",
		numWidth, "Net (Person)",
		numWidth, "Effective"))
	sb.WriteString(strings.Repeat("-", 88) + "\n")

	for i := range result.AllStrategies {
		sb.WriteString(tf.formatRow(&result.AllStrategies[i], result.Optimal, nameWidth, numWidth))
	}
	sb.WriteString(strings.Repeat("=", 88) + "\n")

	sb.WriteString("\nBREAKDOWN\n")
	sb.WriteString(strings.Repeat("-", 88) + "\n")
	for _, s := range result.AllStrategies {
		sb.WriteString(fmt.Sprintf("\n%s:\n", s.StrategyName))
		for _, line := range s.Breakdown {
			sb.WriteString(fmt.Sprintf("  %-45s $%s\n", line.Label, line.Amount.StringFixed(2)))
			if line.Note != "" {
				sb.WriteString(fmt.Sprintf("    %s\n", line.Note))
			}
		}
		if s.CompanyRetained.GreaterThan(decimal.Zero) {
			sb.WriteString(fmt.Sprintf("  %-45s $%s\n", "Company Retained", s.CompanyRetained.StringFixed(2)))
		}
		if s.Note != "" {
			sb.WriteString(fmt.Sprintf("  Note: %s\n", s.Note))
		}
	}

	sb.WriteString("\nRECOMMENDATION\n")
	sb.WriteString(strings.Repeat("-", 88) + "\n")
	sb.WriteString(fmt.Sprintf("Choice:  %s\n", result.Recommendation.Choice))
	sb.WriteString(fmt.Sprintf("Reason:  %s\n", result.Recommendation.Reason))
	sb.WriteString(fmt.Sprintf("Savings: $%s\n", result.Recommendation.Savings.StringFixed(2)))
	if result.Recommendation.Warning != "" {
		sb.WriteString(fmt.Sprintf("Warning: %s\n", result.Recommendation.Warning))
	}

	return sb.String()
}

func (tf *TableFormatter) formatRow(s, optimal *domain.StrategyResult, nameWidth, numWidth int) string {
	marker := "  "
	if optimal != nil && s.Strategy == optimal.Strategy {
		marker = "* "
	}
	effective := s.EffectiveRate.Mul(decimal.NewFromInt(100)).StringFixed(1) + "%"
	return fmt.Sprintf("%s%-*s %*s %*s %*s %*s\n",
		marker, nameWidth-2, s.StrategyName,
		numWidth, "$"+s.TotalTax.StringFixed(2),
		numWidth, "$"+s.NetIncomeGroup.StringFixed(2),
		numWidth, "$"+s.NetIncomePerPerson.StringFixed(2),
		numWidth, effective)
}
