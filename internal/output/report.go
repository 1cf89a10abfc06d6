// Package output renders comparison results as console reports, HTML,
// and PDF files. The short table/CSV/JSON renderings live in the compare
// package; this one covers the long-form formats.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/moneysplit/moneysplit/internal/compare"
	"github.com/moneysplit/moneysplit/internal/domain"
)

// ReportGenerator handles report generation in various formats
type ReportGenerator struct{}

// NewReportGenerator creates a new report generator
func NewReportGenerator() *ReportGenerator {
	return &ReportGenerator{}
}

// GenerateReport generates a report in the specified format. File-based
// formats (html, pdf) write a timestamped file into the current directory
// and print its name.
func GenerateReport(project domain.ProjectInput, result *compare.Result, format string) error {
	generator := NewReportGenerator()

	switch format {
	case "console":
		return generator.GenerateConsoleReport(os.Stdout, project, result)
	case "html":
		return generator.GenerateHTMLReport(project, result)
	case "pdf":
		filename := fmt.Sprintf("tax_report_%s.pdf", time.Now().Format("20060102_150405"))
		if err := generator.GeneratePDFReport(project, result, filename); err != nil {
			return err
		}
		fmt.Println("Report written to", filename)
		return nil
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// GenerateConsoleReport generates a detailed console-formatted report
func (rg *ReportGenerator) GenerateConsoleReport(w io.Writer, project domain.ProjectInput, result *compare.Result) error {
	line := strings.Repeat("=", 81)
	fmt.Fprintln(w, line)
	fmt.Fprintln(w, "DETAILED TAX STRATEGY ANALYSIS")
	fmt.Fprintln(w, line)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "PROJECT")
	fmt.Fprintln(w, "=======")
	fmt.Fprintf(w, "Country:          %s\n", locationLabel(project))
	fmt.Fprintf(w, "Revenue:          %s\n", FormatCurrency(project.Revenue))
	fmt.Fprintf(w, "Costs:            %s\n", FormatCurrency(project.Costs))
	fmt.Fprintf(w, "Gross Income:     %s\n", FormatCurrency(project.GrossIncome()))
	fmt.Fprintf(w, "People Splitting: %d\n", project.NumPeople)
	fmt.Fprintln(w)

	for i, s := range result.AllStrategies {
		fmt.Fprintf(w, "STRATEGY %d: %s\n", i+1, s.StrategyName)
		fmt.Fprintln(w, strings.Repeat("=", 50))

		fmt.Fprintln(w, "TAX BREAKDOWN:")
		for _, bl := range s.Breakdown {
			if bl.Note != "" {
				fmt.Fprintf(w, "  %-32s %14s  (%s)\n", bl.Label+":", FormatCurrency(bl.Amount), bl.Note)
			} else {
				fmt.Fprintf(w, "  %-32s %14s\n", bl.Label+":", FormatCurrency(bl.Amount))
			}
		}
		fmt.Fprintf(w, "  %-32s %14s\n", "TOTAL TAX:", FormatCurrency(s.TotalTax))
		fmt.Fprintln(w)

		fmt.Fprintln(w, "OUTCOME:")
		fmt.Fprintf(w, "  Net Income (Group):  %s\n", FormatCurrency(s.NetIncomeGroup))
		fmt.Fprintf(w, "  Net Income (Person): %s\n", FormatCurrency(s.NetIncomePerPerson))
		fmt.Fprintf(w, "  Effective Rate:      %s\n", FormatPercentage(s.EffectiveRate.Mul(decimal.NewFromInt(100))))
		if s.CompanyRetained.IsPositive() {
			fmt.Fprintf(w, "  Company Retained:    %s\n", FormatCurrency(s.CompanyRetained))
		}
		if s.StandardDeductionUsed.IsPositive() {
			fmt.Fprintf(w, "  Deduction Applied:   %s\n", FormatCurrency(s.StandardDeductionUsed))
		}
		if s.Note != "" {
			fmt.Fprintf(w, "  Note: %s\n", s.Note)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "SUMMARY & RECOMMENDATION")
	fmt.Fprintln(w, "========================")
	if result.Optimal != nil {
		fmt.Fprintf(w, "Recommended Strategy: %s\n", result.Recommendation.Choice)
		fmt.Fprintf(w, "Potential Savings:    %s\n", FormatCurrency(result.Savings))
		fmt.Fprintf(w, "%s\n", result.Recommendation.Reason)
		if result.Recommendation.Warning != "" {
			fmt.Fprintf(w, "WARNING: %s\n", result.Recommendation.Warning)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "KEY CONSIDERATIONS:")
	for _, c := range keyConsiderations {
		fmt.Fprintln(w, "- "+c)
	}

	return nil
}

var keyConsiderations = []string{
	"Verify bracket tables and deductions match the current tax year",
	"Dividend strategies tax the same income twice; confirm rates before committing",
	"Salary distributions carry self-employment tax on top of income tax",
	"Retained earnings defer personal tax but are not take-home income",
	"Consult a tax professional before restructuring",
}

// GenerateHTMLReport generates an HTML-formatted report
func (rg *ReportGenerator) GenerateHTMLReport(project domain.ProjectInput, result *compare.Result) error {
	html := `<!DOCTYPE html>
<html>
<head>
    <title>Tax Strategy Comparison</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; }
        .header { background-color: #f0f0f0; padding: 20px; border-radius: 5px; }
        .section { margin: 20px 0; }
        .strategy { border: 1px solid #ddd; padding: 15px; margin: 10px 0; border-radius: 5px; }
        .optimal { border-color: #2a7a2a; background-color: #f3faf3; }
        .metric { display: inline-block; margin: 10px 20px 10px 0; }
        .metric-label { font-weight: bold; color: #666; }
        .metric-value { font-size: 1.2em; color: #333; }
        .warning { color: #a05a00; }
        table { border-collapse: collapse; width: 100%; }
        th, td { border: 1px solid #ddd; padding: 8px; text-align: left; }
        th { background-color: #f2f2f2; }
    </style>
</head>
<body>
    <div class="header">
        <h1>Tax Strategy Comparison - ` + locationLabel(project) + `</h1>
        <p>Generated on: ` + time.Now().Format("2006-01-02 15:04:05") + `</p>
        <p>Gross Income: ` + FormatCurrency(project.GrossIncome()) + ` split between ` + fmt.Sprintf("%d", project.NumPeople) + ` people</p>
    </div>

    <div class="section">
        <h2>Strategies</h2>`

	for i, s := range result.AllStrategies {
		class := "strategy"
		if result.Optimal != nil && s.Strategy == result.Optimal.Strategy {
			class = "strategy optimal"
		}
		html += `
        <div class="` + class + `">
            <h3>` + fmt.Sprintf("%d. %s", i+1, s.StrategyName) + `</h3>
            <div class="metric">
                <div class="metric-label">Total Tax</div>
                <div class="metric-value">` + FormatCurrency(s.TotalTax) + `</div>
            </div>
            <div class="metric">
                <div class="metric-label">Net Income (Group)</div>
                <div class="metric-value">` + FormatCurrency(s.NetIncomeGroup) + `</div>
            </div>
            <div class="metric">
                <div class="metric-label">Net Income (Per Person)</div>
                <div class="metric-value">` + FormatCurrency(s.NetIncomePerPerson) + `</div>
            </div>
            <div class="metric">
                <div class="metric-label">Effective Rate</div>
                <div class="metric-value">` + FormatPercentage(s.EffectiveRate.Mul(decimal.NewFromInt(100))) + `</div>
            </div>
            <table>
                <tr><th>Component</th><th>Amount</th></tr>`
		for _, bl := range s.Breakdown {
			html += `
                <tr><td>` + bl.Label + `</td><td>` + FormatCurrency(bl.Amount) + `</td></tr>`
		}
		html += `
            </table>
        </div>`
	}

	html += `
    </div>

    <div class="section">
        <h2>Recommendation</h2>
        <div class="metric">
            <div class="metric-label">Recommended Strategy</div>
            <div class="metric-value">` + result.Recommendation.Choice + `</div>
        </div>
        <div class="metric">
            <div class="metric-label">Potential Savings</div>
            <div class="metric-value">` + FormatCurrency(result.Savings) + `</div>
        </div>
        <p>` + result.Recommendation.Reason + `</p>`

	if result.Recommendation.Warning != "" {
		html += `
        <p class="warning">` + result.Recommendation.Warning + `</p>`
	}

	html += `
    </div>
</body>
</html>`

	filename := fmt.Sprintf("tax_report_%s.html", time.Now().Format("20060102_150405"))
	if err := os.WriteFile(filename, []byte(html), 0644); err != nil {
		return err
	}
	fmt.Println("Report written to", filename)
	return nil
}

func locationLabel(project domain.ProjectInput) string {
	if project.State != "" {
		return project.Country + " (" + project.State + ")"
	}
	return project.Country
}

// FormatCurrency formats a decimal as currency
func FormatCurrency(amount decimal.Decimal) string {
	return "$" + amount.StringFixed(2)
}

// FormatPercentage formats a decimal as percentage
func FormatPercentage(amount decimal.Decimal) string {
	return amount.StringFixed(2) + "%"
}
