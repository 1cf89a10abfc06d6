package registry

import (
	"github.com/moneysplit/moneysplit/internal/domain"
	"github.com/shopspring/decimal"
)

type seedTable struct {
	country  string
	taxType  domain.TaxType
	brackets []domain.TaxBracket
}

func bracket(limit int64, rate float64) domain.TaxBracket {
	return domain.TaxBracket{IncomeLimit: decimal.NewFromInt(limit), Rate: decimal.NewFromFloat(rate)}
}

func top(rate float64) domain.TaxBracket {
	return domain.TaxBracket{Rate: decimal.NewFromFloat(rate), Unbounded: true}
}

// defaultTables returns the seeded bracket tables. Individual tables are
// 2024 single-filer figures; flat corporate rates are single unbounded
// brackets. Sub-national tables register as "US-<state>" and "Canada-ON".
func defaultTables() []seedTable {
	return []seedTable{
		{"US", domain.TaxTypeIndividual, []domain.TaxBracket{
			bracket(11600, 0.10),
			bracket(47150, 0.12),
			bracket(100525, 0.22),
			bracket(191950, 0.24),
			bracket(243725, 0.32),
			bracket(609350, 0.35),
			top(0.37),
		}},
		{"US", domain.TaxTypeBusiness, []domain.TaxBracket{top(0.21)}},

		{"Spain", domain.TaxTypeIndividual, []domain.TaxBracket{
			bracket(12450, 0.19),
			bracket(20200, 0.24),
			bracket(35200, 0.30),
			bracket(60000, 0.37),
			bracket(300000, 0.45),
			top(0.47),
		}},
		{"Spain", domain.TaxTypeBusiness, []domain.TaxBracket{top(0.25)}},

		// UK personal allowance is the 0% band.
		{"UK", domain.TaxTypeIndividual, []domain.TaxBracket{
			bracket(12570, 0),
			bracket(50270, 0.20),
			bracket(125140, 0.40),
			top(0.45),
		}},
		{"UK", domain.TaxTypeBusiness, []domain.TaxBracket{top(0.19)}},

		{"Canada", domain.TaxTypeIndividual, []domain.TaxBracket{
			bracket(53359, 0.15),
			bracket(106717, 0.205),
			bracket(165430, 0.26),
			bracket(235675, 0.29),
			top(0.33),
		}},
		// Federal rate only; provinces add their own table below.
		{"Canada", domain.TaxTypeBusiness, []domain.TaxBracket{top(0.15)}},
		{"Canada-ON", domain.TaxTypeIndividual, []domain.TaxBracket{
			bracket(49231, 0.0505),
			bracket(98463, 0.0915),
			bracket(150000, 0.1116),
			bracket(220000, 0.1216),
			top(0.1316),
		}},

		{"US-CA", domain.TaxTypeIndividual, []domain.TaxBracket{
			bracket(10099, 0.01),
			bracket(23942, 0.02),
			bracket(37788, 0.04),
			bracket(52455, 0.06),
			bracket(66295, 0.08),
			bracket(338639, 0.093),
			bracket(406364, 0.103),
			bracket(677275, 0.113),
			top(0.133),
		}},
		{"US-NY", domain.TaxTypeIndividual, []domain.TaxBracket{
			bracket(8500, 0.04),
			bracket(11700, 0.045),
			bracket(13900, 0.0525),
			bracket(80650, 0.055),
			bracket(215400, 0.06),
			bracket(1077550, 0.0685),
			bracket(5000000, 0.0965),
			bracket(25000000, 0.103),
			top(0.109),
		}},
		{"US-TX", domain.TaxTypeIndividual, []domain.TaxBracket{top(0)}},
		{"US-FL", domain.TaxTypeIndividual, []domain.TaxBracket{top(0)}},
	}
}
