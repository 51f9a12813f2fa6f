package domain

type Regime string

const (
	RegimeOld Regime = "old"
	RegimeNew Regime = "new"
)

func (r Regime) Valid() bool {
	return r == RegimeOld || r == RegimeNew
}

// TaxSlab is one bracket of a regime. A nil UpperBound marks the open top slab.
type TaxSlab struct {
	UpperBound *float64 `json:"upper_bound"`
	Rate       float64  `json:"rate"`
}

// Section is a statutory deduction category. A nil Limit means uncapped.
type Section struct {
	Code        string   `json:"code"`
	Description string   `json:"description"`
	Limit       *float64 `json:"limit"`
	AllowedIn   []Regime `json:"allowed_in"`
	Priority    int      `json:"priority"`
}

func (s Section) Allows(regime Regime) bool {
	for _, r := range s.AllowedIn {
		if r == regime {
			return true
		}
	}
	return false
}

type SlabBreakup struct {
	From       float64  `json:"from"`
	To         *float64 `json:"to"`
	Rate       float64  `json:"rate"`
	SlabIncome float64  `json:"slab_income"`
	Tax        float64  `json:"tax"`
}

type ComputeTaxInput struct {
	Income     float64 `json:"income"`
	Deductions float64 `json:"deductions"`
	Regime     Regime  `json:"regime"`
}

type ComputeTaxResult struct {
	TaxableIncome float64       `json:"taxable_income"`
	BaseTax       float64       `json:"base_tax"`
	Cess          float64       `json:"cess"`
	TotalTax      float64       `json:"total_tax"`
	Breakup       []SlabBreakup `json:"breakup"`
}

type Investment struct {
	Code   string  `json:"code"`
	Amount float64 `json:"amount"`
}

type SavingsInput struct {
	AnnualIncome   float64      `json:"annual_income"`
	BaseDeductions float64      `json:"base_deductions"`
	Regime         Regime       `json:"regime"`
	Investments    []Investment `json:"investments"`
}

type SavingsResult struct {
	TaxableIncomeBefore  float64      `json:"taxable_income_before"`
	TaxableIncomeAfter   float64      `json:"taxable_income_after"`
	TaxBeforeInvestments float64      `json:"tax_before_investments"`
	TaxAfterInvestments  float64      `json:"tax_after_investments"`
	TaxSaved             float64      `json:"tax_saved"`
	ValidInvestments     []Investment `json:"valid_investments"`
}

type PlanInput struct {
	Income         float64 `json:"income"`
	BaseDeductions float64 `json:"base_deductions"`
	Regime         Regime  `json:"regime"`
	Budget         float64 `json:"budget"`
}

type Suggestion struct {
	Code      string  `json:"code"`
	Suggested float64 `json:"suggested"`
	Reason    string  `json:"reason"`
}

type InvestmentPlanResult struct {
	Suggestions      []Suggestion `json:"suggestions"`
	TotalSuggested   float64      `json:"total_suggested"`
	RemainingBudget  float64      `json:"remaining_budget"`
	ExpectedTaxSaved float64      `json:"expected_tax_saved"`
	Summary          string       `json:"summary,omitempty"`
}

type CompareInput struct {
	Income        float64 `json:"income"`
	OldDeductions float64 `json:"old_deductions"`
	NewDeductions float64 `json:"new_deductions"`
}

type RegimeComparison struct {
	Old         ComputeTaxResult `json:"old"`
	New         ComputeTaxResult `json:"new"`
	Recommended Regime           `json:"recommended"`
	Difference  float64          `json:"difference"`
}
