package server

import (
	"github.com/shopspring/decimal"

	"github.com/moneysplit/moneysplit/internal/compare"
	"github.com/moneysplit/moneysplit/internal/domain"
)

// CompareRequest is the JSON body for /api/v1/compare and /api/v1/calculate.
// Amounts arrive as plain numbers and are converted to decimals before any
// arithmetic happens.
type CompareRequest struct {
	Revenue            float64 `json:"revenue"`
	Costs              float64 `json:"costs"`
	NumPeople          int     `json:"numPeople"`
	Country            string  `json:"country"`
	State              string  `json:"state,omitempty"`
	TaxType            string  `json:"taxType,omitempty"`
	DistributionMethod string  `json:"distributionMethod,omitempty"`
	SalaryAmount       float64 `json:"salaryAmount,omitempty"`
	IncludeReinvest    bool    `json:"includeReinvest,omitempty"`
}

// Project converts the request into a validated engine input.
func (r *CompareRequest) Project() (domain.ProjectInput, error) {
	project := domain.ProjectInput{
		Revenue:            decimal.NewFromFloat(r.Revenue),
		Costs:              decimal.NewFromFloat(r.Costs),
		NumPeople:          r.NumPeople,
		Country:            r.Country,
		State:              r.State,
		DistributionMethod: domain.DistributionMethod(r.DistributionMethod),
	}
	if r.SalaryAmount > 0 {
		project.SalaryAmount = decimal.NewFromFloat(r.SalaryAmount)
	}
	if r.TaxType != "" {
		taxType, err := domain.ParseTaxType(r.TaxType)
		if err != nil {
			return domain.ProjectInput{}, err
		}
		project.TaxTypePreference = &taxType
	}
	return project, project.Validate()
}

// BreakdownLineDTO mirrors domain.BreakdownLine with float amounts.
type BreakdownLineDTO struct {
	Label  string  `json:"label"`
	Amount float64 `json:"amount"`
	Note   string  `json:"note,omitempty"`
}

// StrategyResultDTO is the wire form of one simulated strategy.
type StrategyResultDTO struct {
	Strategy           string             `json:"strategy"`
	StrategyName       string             `json:"strategyName"`
	GrossIncome        float64            `json:"grossIncome"`
	TotalTax           float64            `json:"totalTax"`
	NetIncomeGroup     float64            `json:"netIncomeGroup"`
	NetIncomePerPerson float64            `json:"netIncomePerPerson"`
	EffectiveRate      float64            `json:"effectiveRate"`
	Breakdown          []BreakdownLineDTO `json:"taxBreakdown"`
	CompanyRetained    float64            `json:"companyRetained,omitempty"`
	Note               string             `json:"note,omitempty"`
}

// RecommendationDTO is the wire form of compare.Recommendation.
type RecommendationDTO struct {
	Choice  string  `json:"choice"`
	Reason  string  `json:"reason"`
	Savings float64 `json:"savings"`
	Warning string  `json:"warning,omitempty"`
}

// CompareResponse is the full comparison payload.
type CompareResponse struct {
	AllStrategies  []StrategyResultDTO `json:"allStrategies"`
	Optimal        *StrategyResultDTO  `json:"optimal"`
	Worst          *StrategyResultDTO  `json:"worst"`
	Savings        float64             `json:"savings"`
	Recommendation RecommendationDTO   `json:"recommendation"`
}

// BracketDTO is one bracket row for /api/v1/brackets.
type BracketDTO struct {
	IncomeLimit *float64 `json:"incomeLimit"`
	Rate        float64  `json:"rate"`
}

// ErrorResponse is the JSON body for every non-2xx reply.
type ErrorResponse struct {
	Status    int    `json:"status"`
	Message   string `json:"message"`
	RequestID string `json:"requestId,omitempty"`
}

func money(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}

func rate(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

func strategyDTO(s *domain.StrategyResult) *StrategyResultDTO {
	if s == nil {
		return nil
	}
	dto := &StrategyResultDTO{
		Strategy:           s.Strategy.String(),
		StrategyName:       s.StrategyName,
		GrossIncome:        money(s.GrossIncome),
		TotalTax:           money(s.TotalTax),
		NetIncomeGroup:     money(s.NetIncomeGroup),
		NetIncomePerPerson: money(s.NetIncomePerPerson),
		EffectiveRate:      rate(s.EffectiveRate),
		CompanyRetained:    money(s.CompanyRetained),
		Note:               s.Note,
	}
	for _, bl := range s.Breakdown {
		dto.Breakdown = append(dto.Breakdown, BreakdownLineDTO{
			Label:  bl.Label,
			Amount: money(bl.Amount),
			Note:   bl.Note,
		})
	}
	return dto
}

func compareResponse(result *compare.Result) *CompareResponse {
	resp := &CompareResponse{
		Optimal: strategyDTO(result.Optimal),
		Worst:   strategyDTO(result.Worst),
		Savings: money(result.Savings),
		Recommendation: RecommendationDTO{
			Choice:  result.Recommendation.Choice,
			Reason:  result.Recommendation.Reason,
			Savings: money(result.Recommendation.Savings),
			Warning: result.Recommendation.Warning,
		},
	}
	for i := range result.AllStrategies {
		resp.AllStrategies = append(resp.AllStrategies, *strategyDTO(&result.AllStrategies[i]))
	}
	return resp
}

func bracketDTOs(brackets []domain.TaxBracket) []BracketDTO {
	out := make([]BracketDTO, 0, len(brackets))
	for _, b := range brackets {
		dto := BracketDTO{Rate: rate(b.Rate)}
		if !b.Unbounded {
			limit := money(b.IncomeLimit)
			dto.IncomeLimit = &limit
		}
		out = append(out, dto)
	}
	return out
}
