package service

import (
	"fmt"
	"math"
	"sort"

	"github.com/samber/lo"

	"tax-agent/domain"
)

// roundToNearest rounds value to the nearest multiple of unit, ties away from zero
// for non-negative values.
func roundToNearest(value, unit float64) float64 {
	return math.Floor(value/unit+0.5) * unit
}

// ComputeTax calculates the liability for an income under regime. Negative
// income or deductions are clamped to zero; non-finite inputs propagate.
func ComputeTax(income, deductions float64, regime domain.Regime) domain.ComputeTaxResult {
	taxable := math.Max(0, income-math.Max(0, deductions))

	result := domain.ComputeTaxResult{
		TaxableIncome: taxable,
		Breakup:       []domain.SlabBreakup{},
	}

	// Full rebate: a step, not a marginal relief.
	if limit, ok := rebateLimits[regime]; ok && taxable <= limit {
		return result
	}

	remaining := taxable
	lower := 0.0
	for _, slab := range taxSlabs[regime] {
		if remaining <= 0 {
			break
		}

		width := remaining
		if slab.UpperBound != nil {
			width = *slab.UpperBound - lower
		}

		amount := math.Max(0, math.Min(remaining, width))
		if amount > 0 {
			tax := amount * slab.Rate
			result.BaseTax += tax
			result.Breakup = append(result.Breakup, domain.SlabBreakup{
				From:       lower,
				To:         clonePtr(slab.UpperBound),
				Rate:       slab.Rate,
				SlabIncome: amount,
				Tax:        tax,
			})
			remaining -= amount
		}

		if slab.UpperBound != nil {
			lower = *slab.UpperBound
		}
	}

	result.Cess = result.BaseTax * CessRate
	result.TotalTax = roundToNearest(result.BaseTax+result.Cess, TaxRoundingUnit)

	return result
}

// EligibleSections returns the sections valid under regime ordered by priority.
func EligibleSections(regime domain.Regime) []domain.Section {
	eligible := lo.FilterMap(sectionDefs, func(s domain.Section, _ int) (domain.Section, bool) {
		return cloneSection(s), s.Allows(regime)
	})
	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].Priority < eligible[j].Priority
	})
	return eligible
}

// ComputeAfterInvestments compares the liability with and without the
// investments that regime accepts. Amounts are not capped per section here.
func ComputeAfterInvestments(
	annualIncome float64,
	baseDeductions float64,
	regime domain.Regime,
	investments []domain.Investment,
) domain.SavingsResult {

	allowed := lo.SliceToMap(EligibleSections(regime), func(s domain.Section) (string, struct{}) {
		return s.Code, struct{}{}
	})

	valid := lo.Filter(investments, func(inv domain.Investment, _ int) bool {
		_, ok := allowed[inv.Code]
		return ok
	})

	// Negative amounts would raise taxable income; treat them as nothing invested.
	invested := lo.SumBy(valid, func(inv domain.Investment) float64 {
		return math.Max(0, inv.Amount)
	})

	before := ComputeTax(annualIncome, baseDeductions, regime)
	after := ComputeTax(annualIncome, baseDeductions+invested, regime)

	return domain.SavingsResult{
		TaxableIncomeBefore:  before.TaxableIncome,
		TaxableIncomeAfter:   after.TaxableIncome,
		TaxBeforeInvestments: before.TotalTax,
		TaxAfterInvestments:  after.TotalTax,
		TaxSaved:             before.TotalTax - after.TotalTax,
		ValidInvestments:     valid,
	}
}

// GenerateInvestmentPlan spreads budget over the regime's sections in priority
// order, filling each up to its limit. It is a first-fit heuristic: the result
// is not guaranteed to maximise tax saved per rupee.
func GenerateInvestmentPlan(
	income float64,
	baseDeductions float64,
	regime domain.Regime,
	budget float64,
) domain.InvestmentPlanResult {

	suggestions := []domain.Suggestion{}
	remaining := budget

	for _, section := range EligibleSections(regime) {
		if remaining <= 0 {
			break
		}

		allocation := remaining
		if section.Limit != nil {
			allocation = math.Min(remaining, *section.Limit)
		}
		if allocation <= 0 {
			continue
		}

		suggestions = append(suggestions, domain.Suggestion{
			Code:      section.Code,
			Suggested: allocation,
			Reason:    suggestionReason(section, allocation),
		})
		remaining -= allocation
	}

	investments := lo.Map(suggestions, func(s domain.Suggestion, _ int) domain.Investment {
		return domain.Investment{Code: s.Code, Amount: s.Suggested}
	})
	savings := ComputeAfterInvestments(income, baseDeductions, regime, investments)

	return domain.InvestmentPlanResult{
		Suggestions:      suggestions,
		TotalSuggested:   lo.SumBy(suggestions, func(s domain.Suggestion) float64 { return s.Suggested }),
		RemainingBudget:  math.Max(0, remaining),
		ExpectedTaxSaved: math.Max(0, savings.TaxSaved),
	}
}

func suggestionReason(section domain.Section, allocation float64) string {
	switch {
	case section.Limit == nil:
		return fmt.Sprintf("%s has no statutory cap; remaining budget of %.0f goes to %s", section.Code, allocation, section.Description)
	case allocation >= *section.Limit:
		return fmt.Sprintf("Fills the full %s limit of %.0f (%s)", section.Code, *section.Limit, section.Description)
	default:
		return fmt.Sprintf("Uses the remaining %.0f of budget towards the %s limit of %.0f (%s)", allocation, section.Code, *section.Limit, section.Description)
	}
}
