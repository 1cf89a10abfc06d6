package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/moneysplit/moneysplit/internal/domain"
)

var fieldLabels = [fieldCount]string{
	"Country",
	"State (US)",
	"Revenue",
	"Costs",
	"People splitting",
	"Distribution method",
}

// View renders the current state of the application
func (m Model) View() string {
	if m.err != nil {
		return m.renderApp(m.renderError())
	}
	if m.loading {
		return m.renderApp(BorderStyle.Render("Comparing strategies..."))
	}

	var content string
	switch m.currentScene {
	case SceneForm:
		content = m.renderForm()
	case SceneResults:
		content = m.renderResults()
	default:
		content = "Unknown scene"
	}

	return m.renderApp(content)
}

// renderApp wraps content with title bar and status bar
func (m Model) renderApp(content string) string {
	title := TitleStyle.Render("MoneySplit - Tax Strategy Comparison")
	breadcrumb := SubtitleStyle.Render(m.currentScene.String())

	return lipgloss.JoinVertical(
		lipgloss.Left,
		title,
		breadcrumb,
		content,
		m.renderStatusBar(),
	)
}

func (m Model) renderStatusBar() string {
	var shortcuts []string
	switch m.currentScene {
	case SceneForm:
		shortcuts = []string{
			formatShortcut("tab", "next field"),
			formatShortcut("enter", "compare"),
			formatShortcut("esc", "quit"),
		}
	case SceneResults:
		shortcuts = []string{
			formatShortcut("enter/esc", "back"),
			formatShortcut("q", "quit"),
		}
	}
	return StatusBarStyle.Width(m.width).Render(strings.Join(shortcuts, "  "))
}

func formatShortcut(key, desc string) string {
	return StatusKeyStyle.Render(key) + " " + desc
}

func (m Model) renderError() string {
	return ErrorStyle.Render(
		fmt.Sprintf("Error: %s\n\nPress enter to continue...", m.err.Error()),
	)
}

func (m Model) renderForm() string {
	var b strings.Builder
	for i, input := range m.inputs {
		b.WriteString(LabelStyle.Render(fieldLabels[i]))
		b.WriteString(input.View())
		if i < len(m.inputs)-1 {
			b.WriteString("\n")
		}
	}
	return FocusedBorderStyle.Render(b.String())
}

func (m Model) renderResults() string {
	if m.result == nil {
		return BorderStyle.Render("No results yet")
	}

	var b strings.Builder

	b.WriteString(TableHeaderStyle.Render(
		fmt.Sprintf("%-28s %14s %14s %10s", "Strategy", "Total Tax", "Net (Group)", "Effective")))
	b.WriteString("\n")

	for i := range m.result.AllStrategies {
		s := &m.result.AllStrategies[i]
		row := fmt.Sprintf("%-28s %14s %14s %9s%%",
			s.StrategyName,
			"$"+s.TotalTax.StringFixed(2),
			"$"+s.NetIncomeGroup.StringFixed(2),
			s.EffectiveRate.Mul(decimal.NewFromInt(100)).StringFixed(2),
		)
		if m.isOptimal(s) {
			b.WriteString(OptimalStyle.Render("> " + row))
		} else {
			b.WriteString("  " + row)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(OptimalStyle.Render("Recommended: " + m.result.Recommendation.Choice))
	b.WriteString("\n")
	b.WriteString(m.result.Recommendation.Reason)
	if m.result.Recommendation.Warning != "" {
		b.WriteString("\n")
		b.WriteString(WarningStyle.Render("Warning: " + m.result.Recommendation.Warning))
	}

	return BorderStyle.Render(b.String())
}

func (m Model) isOptimal(s *domain.StrategyResult) bool {
	return m.result.Optimal != nil && s.Strategy == m.result.Optimal.Strategy
}
