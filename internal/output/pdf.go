package output

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"

	"github.com/moneysplit/moneysplit/internal/compare"
	"github.com/moneysplit/moneysplit/internal/domain"
)

const (
	pageWidth    = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 20.0
	contentWidth = pageWidth - marginLeft - marginRight
)

// pdfReport renders a comparison result as a printable A4 document.
type pdfReport struct {
	pdf     *fpdf.Fpdf
	project domain.ProjectInput
	result  *compare.Result
}

// GeneratePDFReport writes a PDF comparison report to filename.
func (rg *ReportGenerator) GeneratePDFReport(project domain.ProjectInput, result *compare.Result, filename string) error {
	data, err := RenderPDF(project, result)
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0644)
}

// RenderPDF produces the report bytes without touching the filesystem.
func RenderPDF(project domain.ProjectInput, result *compare.Result) ([]byte, error) {
	report := &pdfReport{
		pdf:     fpdf.New("P", "mm", "A4", ""),
		project: project,
		result:  result,
	}

	report.pdf.SetMargins(marginLeft, marginTop, marginRight)
	report.pdf.SetAutoPageBreak(true, marginBottom)

	report.addTitlePage()
	report.addComparisonPage()
	report.addBreakdownPages()

	var buf bytes.Buffer
	if err := report.pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (r *pdfReport) addTitlePage() {
	r.pdf.AddPage()

	r.pdf.SetFont("Arial", "B", 28)
	r.pdf.SetTextColor(0, 51, 102)
	r.pdf.Ln(50)
	r.pdf.CellFormat(contentWidth, 15, "Tax Strategy Comparison", "", 1, "C", false, 0, "")

	r.pdf.SetFont("Arial", "", 14)
	r.pdf.SetTextColor(80, 80, 80)
	r.pdf.Ln(10)
	r.pdf.CellFormat(contentWidth, 10, locationLabel(r.project), "", 1, "C", false, 0, "")

	r.pdf.SetFont("Arial", "I", 11)
	r.pdf.Ln(15)
	r.pdf.CellFormat(contentWidth, 8, fmt.Sprintf("Generated: %s", time.Now().Format("2 January 2006")), "", 1, "C", false, 0, "")

	// Project box
	r.pdf.Ln(20)
	r.pdf.SetFillColor(245, 247, 250)
	r.pdf.SetDrawColor(200, 200, 200)

	r.pdf.SetFont("Arial", "B", 12)
	r.pdf.SetTextColor(0, 51, 102)
	r.pdf.CellFormat(contentWidth, 8, "Project", "1", 1, "C", true, 0, "")

	r.pdf.SetFont("Arial", "", 11)
	r.pdf.SetTextColor(50, 50, 50)
	rows := []string{
		fmt.Sprintf("Revenue %s  -  Costs %s  =  Gross Income %s",
			FormatCurrency(r.project.Revenue), FormatCurrency(r.project.Costs), FormatCurrency(r.project.GrossIncome())),
		fmt.Sprintf("Split between %d people", r.project.NumPeople),
	}
	for i, text := range rows {
		border := "LR"
		if i == len(rows)-1 {
			border = "LRB"
		}
		r.pdf.CellFormat(contentWidth, 7, text, border, 1, "C", true, 0, "")
	}

	// Recommendation box
	if r.result.Optimal != nil {
		r.pdf.Ln(10)
		r.pdf.SetFont("Arial", "B", 12)
		r.pdf.SetTextColor(0, 51, 102)
		r.pdf.CellFormat(contentWidth, 8, "Recommendation", "1", 1, "C", true, 0, "")

		r.pdf.SetFont("Arial", "", 11)
		r.pdf.SetTextColor(50, 50, 50)
		r.pdf.CellFormat(contentWidth, 7,
			fmt.Sprintf("%s - saves %s", r.result.Recommendation.Choice, FormatCurrency(r.result.Savings)),
			"LR", 1, "C", true, 0, "")
		border := "LRB"
		if r.result.Recommendation.Warning != "" {
			r.pdf.MultiCell(contentWidth, 7, r.result.Recommendation.Reason, "LR", "C", true)
			r.pdf.SetTextColor(180, 100, 0)
			r.pdf.MultiCell(contentWidth, 7, r.result.Recommendation.Warning, border, "C", true)
		} else {
			r.pdf.MultiCell(contentWidth, 7, r.result.Recommendation.Reason, border, "C", true)
		}
	}

	// Disclaimer
	r.pdf.Ln(15)
	r.pdf.SetFont("Arial", "I", 9)
	r.pdf.SetTextColor(120, 120, 120)
	r.pdf.MultiCell(contentWidth, 4.5,
		"This document is for informational purposes only and does not constitute tax advice. "+
			"Bracket tables and rates change every year; consult a qualified tax professional "+
			"before restructuring.", "", "C", false)
}

func (r *pdfReport) addComparisonPage() {
	r.pdf.AddPage()
	r.drawSectionHeader("Strategy Comparison")

	widths := []float64{60, 30, 30, 30, 30}
	r.drawTableHeader([]string{"Strategy", "Total Tax", "Net (Group)", "Net (Person)", "Effective"}, widths)

	for _, s := range r.result.AllStrategies {
		name := s.StrategyName
		isOptimal := r.result.Optimal != nil && s.Strategy == r.result.Optimal.Strategy
		if isOptimal {
			name = "* " + name
		}
		r.drawTableRow([]string{
			name,
			FormatCurrency(s.TotalTax),
			FormatCurrency(s.NetIncomeGroup),
			FormatCurrency(s.NetIncomePerPerson),
			FormatPercentage(s.EffectiveRate.Mul(decimal.NewFromInt(100))),
		}, widths, isOptimal)
	}

	r.pdf.Ln(4)
	r.pdf.SetFont("Arial", "I", 8)
	r.pdf.SetTextColor(100, 100, 100)
	r.pdf.CellFormat(contentWidth, 4, "* recommended strategy", "", 1, "L", false, 0, "")
}

func (r *pdfReport) addBreakdownPages() {
	r.pdf.AddPage()
	r.drawSectionHeader("Tax Breakdown")

	widths := []float64{90, 40}
	for _, s := range r.result.AllStrategies {
		if r.pdf.GetY() > 230 {
			r.pdf.AddPage()
		}

		r.pdf.SetFont("Arial", "B", 11)
		r.pdf.SetTextColor(0, 51, 102)
		r.pdf.CellFormat(contentWidth, 7, s.StrategyName, "", 1, "L", false, 0, "")

		r.drawTableHeader([]string{"Component", "Amount"}, widths)
		for _, bl := range s.Breakdown {
			label := bl.Label
			if bl.Note != "" {
				label += " (" + bl.Note + ")"
			}
			r.drawTableRow([]string{label, FormatCurrency(bl.Amount)}, widths, false)
		}
		r.drawTableRow([]string{"TOTAL TAX", FormatCurrency(s.TotalTax)}, widths, true)

		if s.CompanyRetained.IsPositive() {
			r.pdf.SetFont("Arial", "I", 8)
			r.pdf.SetTextColor(100, 100, 100)
			r.pdf.CellFormat(contentWidth, 4,
				fmt.Sprintf("Company retains %s after corporate tax", FormatCurrency(s.CompanyRetained)),
				"", 1, "L", false, 0, "")
		}
		r.pdf.Ln(6)
	}
}

func (r *pdfReport) drawSectionHeader(title string) {
	r.pdf.SetFont("Arial", "B", 16)
	r.pdf.SetTextColor(0, 51, 102)
	r.pdf.CellFormat(contentWidth, 10, title, "", 1, "L", false, 0, "")
	r.pdf.SetDrawColor(0, 51, 102)
	r.pdf.Line(marginLeft, r.pdf.GetY(), marginLeft+contentWidth, r.pdf.GetY())
	r.pdf.Ln(5)
}

func (r *pdfReport) drawTableHeader(headers []string, widths []float64) {
	r.pdf.SetFillColor(0, 51, 102)
	r.pdf.SetTextColor(255, 255, 255)
	r.pdf.SetFont("Arial", "B", 9)

	for i, header := range headers {
		align := "L"
		if i > 0 {
			align = "R"
		}
		r.pdf.CellFormat(widths[i], 6, header, "1", 0, align, true, 0, "")
	}
	r.pdf.Ln(-1)
}

func (r *pdfReport) drawTableRow(cells []string, widths []float64, isBold bool) {
	r.pdf.SetFillColor(250, 250, 250)
	r.pdf.SetTextColor(50, 50, 50)

	if isBold {
		r.pdf.SetFont("Arial", "B", 9)
		r.pdf.SetFillColor(240, 240, 240)
	} else {
		r.pdf.SetFont("Arial", "", 9)
	}

	for i, cell := range cells {
		align := "L"
		if i > 0 {
			align = "R"
		}
		r.pdf.CellFormat(widths[i], 5, cell, "1", 0, align, true, 0, "")
	}
	r.pdf.Ln(-1)
}
