package service

import (
	"tax-agent/domain"
)

func bound(v float64) *float64 {
	return &v
}

var (
	taxSlabs = map[domain.Regime][]domain.TaxSlab{
		domain.RegimeOld: {
			{UpperBound: bound(250_000), Rate: 0},
			{UpperBound: bound(500_000), Rate: 0.05},
			{UpperBound: bound(1_000_000), Rate: 0.20},
			{UpperBound: nil, Rate: 0.30},
		},
		domain.RegimeNew: {
			{UpperBound: bound(300_000), Rate: 0},
			{UpperBound: bound(600_000), Rate: 0.05},
			{UpperBound: bound(900_000), Rate: 0.10},
			{UpperBound: bound(1_200_000), Rate: 0.15},
			{UpperBound: bound(1_500_000), Rate: 0.20},
			{UpperBound: nil, Rate: 0.30},
		},
	}

	rebateLimits = map[domain.Regime]float64{
		domain.RegimeOld: OldRegimeRebateLimit,
		domain.RegimeNew: NewRegimeRebateLimit,
	}

	oldOnly = []domain.Regime{domain.RegimeOld}

	// Lower priority is allocated first by the planner.
	sectionDefs = []domain.Section{
		{Code: "STANDARD", Description: "Standard deduction on salary income", Limit: bound(50_000), AllowedIn: []domain.Regime{domain.RegimeOld, domain.RegimeNew}, Priority: 0},
		{Code: "80C", Description: "PPF, ELSS, life insurance premium, EPF, principal on home loan", Limit: bound(150_000), AllowedIn: oldOnly, Priority: 1},
		{Code: "80D", Description: "Health insurance premium", Limit: bound(25_000), AllowedIn: oldOnly, Priority: 2},
		{Code: "80G", Description: "Donations to approved funds and charities", Limit: bound(50_000), AllowedIn: oldOnly, Priority: 3},
		{Code: "80CCD(1B)", Description: "Additional NPS contribution", Limit: bound(50_000), AllowedIn: oldOnly, Priority: 4},
		{Code: "80TTA", Description: "Interest on savings accounts", Limit: bound(10_000), AllowedIn: oldOnly, Priority: 5},
		{Code: "24B", Description: "Interest on home loan for a self-occupied property", Limit: bound(200_000), AllowedIn: oldOnly, Priority: 6},
		{Code: "80E", Description: "Interest on education loan", Limit: nil, AllowedIn: oldOnly, Priority: 7},
	}
)

// Slabs returns a copy of the slab table for regime, or nil for an unknown regime.
func Slabs(regime domain.Regime) []domain.TaxSlab {
	src := taxSlabs[regime]
	if src == nil {
		return nil
	}
	out := make([]domain.TaxSlab, len(src))
	for i, s := range src {
		out[i] = domain.TaxSlab{UpperBound: clonePtr(s.UpperBound), Rate: s.Rate}
	}
	return out
}

// Sections returns a copy of every deduction section in table order.
func Sections() []domain.Section {
	out := make([]domain.Section, len(sectionDefs))
	for i, s := range sectionDefs {
		out[i] = cloneSection(s)
	}
	return out
}

// RebateLimit is the taxable income at or below which the regime owes nothing.
func RebateLimit(regime domain.Regime) float64 {
	return rebateLimits[regime]
}

func cloneSection(s domain.Section) domain.Section {
	s.Limit = clonePtr(s.Limit)
	s.AllowedIn = append([]domain.Regime(nil), s.AllowedIn...)
	return s
}

func clonePtr(p *float64) *float64 {
	if p == nil {
		return nil
	}
	return bound(*p)
}
