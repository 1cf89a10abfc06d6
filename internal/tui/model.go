// Package tui is an interactive terminal front end for the comparison
// engine, built on Bubble Tea.
package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"

	"github.com/moneysplit/moneysplit/internal/compare"
	"github.com/moneysplit/moneysplit/internal/domain"
)

// Scene represents different screens in the TUI
type Scene int

const (
	SceneForm Scene = iota
	SceneResults
)

// Form field indices
const (
	fieldCountry = iota
	fieldState
	fieldRevenue
	fieldCosts
	fieldPeople
	fieldMethod
	fieldCount
)

// Model represents the entire application state
type Model struct {
	currentScene Scene

	// Terminal dimensions
	width  int
	height int

	// Input form
	inputs  []textinput.Model
	focused int

	// Comparison engine and latest result
	engine *compare.Engine
	result *compare.Result

	// Error state
	err error

	// Loading state
	loading bool
}

// NewModel creates a new application model
func NewModel(engine *compare.Engine) Model {
	inputs := make([]textinput.Model, fieldCount)

	labels := []struct {
		placeholder string
		value       string
		limit       int
	}{
		{placeholder: "US, Spain, UK, Canada", value: "US", limit: 16},
		{placeholder: "CA, NY, TX, FL (US only)", limit: 2},
		{placeholder: "100000", value: "100000", limit: 14},
		{placeholder: "20000", value: "0", limit: 14},
		{placeholder: "1", value: "1", limit: 3},
		{placeholder: "Salary, Dividend, Mixed, Reinvest", limit: 10},
	}

	for i, l := range labels {
		ti := textinput.New()
		ti.Placeholder = l.placeholder
		ti.SetValue(l.value)
		ti.CharLimit = l.limit
		ti.Width = 34
		inputs[i] = ti
	}
	inputs[fieldCountry].Focus()

	return Model{
		currentScene: SceneForm,
		inputs:       inputs,
		engine:       engine,
		width:        80,
		height:       24,
	}
}

// Init initializes the model (required by tea.Model interface)
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// project builds and validates the engine input from the form fields.
func (m Model) project() (domain.ProjectInput, error) {
	revenue, err := parseAmount(m.inputs[fieldRevenue].Value(), "revenue")
	if err != nil {
		return domain.ProjectInput{}, err
	}
	costs, err := parseAmount(m.inputs[fieldCosts].Value(), "costs")
	if err != nil {
		return domain.ProjectInput{}, err
	}

	people := 1
	if raw := strings.TrimSpace(m.inputs[fieldPeople].Value()); raw != "" {
		people, err = strconv.Atoi(raw)
		if err != nil {
			return domain.ProjectInput{}, fmt.Errorf("people must be a whole number")
		}
	}

	project := domain.ProjectInput{
		Revenue:            revenue,
		Costs:              costs,
		NumPeople:          people,
		Country:            strings.TrimSpace(m.inputs[fieldCountry].Value()),
		State:              strings.ToUpper(strings.TrimSpace(m.inputs[fieldState].Value())),
		DistributionMethod: domain.DistributionMethod(strings.TrimSpace(m.inputs[fieldMethod].Value())),
	}
	return project, project.Validate()
}

func parseAmount(raw, field string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(strings.ReplaceAll(raw, ",", ""))
	if raw == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s must be a number", field)
	}
	return d, nil
}

// compareCmd returns a command that runs the comparison off the UI loop.
func compareCmd(engine *compare.Engine, project domain.ProjectInput) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		result, err := engine.Compare(ctx, &project)
		return CompareCompleteMsg{Result: result, Err: err}
	}
}

// GetSceneName returns a human-readable name for a scene
func (s Scene) String() string {
	switch s {
	case SceneForm:
		return "Project"
	case SceneResults:
		return "Results"
	default:
		return "Unknown"
	}
}
