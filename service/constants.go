package service

const (
	CessRate = 0.04 // health and education cess on base tax

	OldRegimeRebateLimit = 500_000.0 // taxable income up to which 87A zeroes tax
	NewRegimeRebateLimit = 700_000.0

	TaxRoundingUnit = 10.0 // total tax is rounded to the nearest multiple

	MaxAmount          = 1_000_000_000_000.0 // 1 lakh crore
	MaxInvestments     = 50                  // investments per request
	DefaultHistorySize = 20
	MaxHistorySize     = 200
)
