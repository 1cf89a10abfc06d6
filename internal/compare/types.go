package compare

import (
	"github.com/moneysplit/moneysplit/internal/domain"
	"github.com/shopspring/decimal"
)

// Recommendation is the human-facing conclusion of a comparison.
type Recommendation struct {
	Choice  string          `json:"choice"`
	Reason  string          `json:"reason"`
	Savings decimal.Decimal `json:"savings"`
	Warning string          `json:"warning,omitempty"`
}

// Result is the full output of comparing every strategy for one project.
// AllStrategies preserves simulation order; Optimal and Worst point into
// the eligible subset (Business + Reinvest is informational only unless
// explicitly included via Options).
type Result struct {
	AllStrategies  []domain.StrategyResult `json:"allStrategies"`
	Optimal        *domain.StrategyResult  `json:"optimal"`
	Worst          *domain.StrategyResult  `json:"worst"`
	Savings        decimal.Decimal         `json:"savings"`
	Recommendation Recommendation          `json:"recommendation"`
}

// Options configures comparison behavior.
type Options struct {
	// IncludeReinvest ranks Business + Reinvest alongside the cash
	// strategies. Off by default: retained earnings are not take-home.
	IncludeReinvest bool
}
