package taxengine

import (
	"github.com/moneysplit/moneysplit/internal/domain"
	"github.com/shopspring/decimal"
)

// SelfEmploymentTax decomposes the payroll-style tax on a salary
// distribution. Total is the sum of the three parts, each rounded to cents.
type SelfEmploymentTax struct {
	SocialSecurity     decimal.Decimal
	Medicare           decimal.Decimal
	AdditionalMedicare decimal.Decimal
	Total              decimal.Decimal
}

// CalculateSelfEmploymentTax applies the configured rules to a salary.
// Social Security applies to net self-employment earnings up to the wage
// base; Medicare is uncapped; the additional Medicare rate hits earnings
// above its threshold. Non-positive salary owes nothing.
func CalculateSelfEmploymentTax(salary decimal.Decimal, rules domain.SelfEmploymentRules) SelfEmploymentTax {
	if salary.LessThanOrEqual(decimal.Zero) {
		return SelfEmploymentTax{}
	}

	netEarnings := salary.Mul(rules.NetEarningsFactor)

	ssBase := decimal.Min(netEarnings, rules.SocialSecurityWageBase)
	ss := ssBase.Mul(rules.SocialSecurityRate).Round(2)

	medicare := netEarnings.Mul(rules.MedicareRate).Round(2)

	additional := decimal.Zero
	if netEarnings.GreaterThan(rules.AdditionalMedicareThreshold) {
		excess := netEarnings.Sub(rules.AdditionalMedicareThreshold)
		additional = excess.Mul(rules.AdditionalMedicareRate).Round(2)
	}

	return SelfEmploymentTax{
		SocialSecurity:     ss,
		Medicare:           medicare,
		AdditionalMedicare: additional,
		Total:              ss.Add(medicare).Add(additional),
	}
}
