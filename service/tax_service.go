package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/cespare/xxhash/v2"

	"tax-agent/domain"
	"tax-agent/repository"
)

type TaxService struct {
	repo    repository.CalculationRepository
	cache   repository.CacheRepository
	advisor *AdvisorService
	now     func() time.Time
}

// NewTaxService creates a TaxService. advisor may be nil, in which case plans
// carry no summary.
func NewTaxService(
	repo repository.CalculationRepository,
	cache repository.CacheRepository,
	advisor *AdvisorService,
) *TaxService {
	return &TaxService{
		repo:    repo,
		cache:   cache,
		advisor: advisor,
		now:     time.Now,
	}
}

// Compute validates the input and returns the tax liability, serving repeated
// inputs from the cache.
func (s *TaxService) Compute(
	ctx context.Context,
	input domain.ComputeTaxInput,
) (domain.ComputeTaxResult, error) {

	if err := validateRegime(input.Regime); err != nil {
		return domain.ComputeTaxResult{}, err
	}
	if err := validateAmount("income", input.Income); err != nil {
		return domain.ComputeTaxResult{}, err
	}
	if err := validateAmount("deductions", input.Deductions); err != nil {
		return domain.ComputeTaxResult{}, err
	}

	key, err := cacheKey(domain.KindCompute, input)
	if err != nil {
		log.Warnf("failed to build cache key: %v", err)
	}

	var result domain.ComputeTaxResult
	if key != "" && s.cachedResult(ctx, key, &result) {
		log.Debugf("cache hit for %s", key)
	} else {
		result = ComputeTax(input.Income, input.Deductions, input.Regime)
		if key != "" {
			s.storeResult(ctx, key, result)
		}
	}

	s.record(ctx, domain.KindCompute, input.Regime, input, result)
	return result, nil
}

// Savings reports how much tax the given investments save under the regime.
func (s *TaxService) Savings(
	ctx context.Context,
	input domain.SavingsInput,
) (domain.SavingsResult, error) {

	if err := validateRegime(input.Regime); err != nil {
		return domain.SavingsResult{}, err
	}
	if err := validateAmount("annual_income", input.AnnualIncome); err != nil {
		return domain.SavingsResult{}, err
	}
	if err := validateAmount("base_deductions", input.BaseDeductions); err != nil {
		return domain.SavingsResult{}, err
	}
	if len(input.Investments) > MaxInvestments {
		return domain.SavingsResult{}, invalidf("number of investments exceeds the maximum of %d", MaxInvestments)
	}
	for i, inv := range input.Investments {
		if err := validateAmount(fmt.Sprintf("investments[%d].amount", i), inv.Amount); err != nil {
			return domain.SavingsResult{}, err
		}
	}

	result := ComputeAfterInvestments(input.AnnualIncome, input.BaseDeductions, input.Regime, input.Investments)

	s.record(ctx, domain.KindSavings, input.Regime, input, result)
	return result, nil
}

// Plan suggests how to spend a savings budget across deduction sections.
func (s *TaxService) Plan(
	ctx context.Context,
	input domain.PlanInput,
) (domain.InvestmentPlanResult, error) {

	if err := validateRegime(input.Regime); err != nil {
		return domain.InvestmentPlanResult{}, err
	}
	if err := validateAmount("income", input.Income); err != nil {
		return domain.InvestmentPlanResult{}, err
	}
	if err := validateAmount("base_deductions", input.BaseDeductions); err != nil {
		return domain.InvestmentPlanResult{}, err
	}
	if err := validateAmount("budget", input.Budget); err != nil {
		return domain.InvestmentPlanResult{}, err
	}

	result := GenerateInvestmentPlan(input.Income, input.BaseDeductions, input.Regime, input.Budget)
	if s.advisor != nil {
		result.Summary = s.advisor.ExplainPlan(ctx, input, result)
	}

	s.record(ctx, domain.KindPlan, input.Regime, input, result)
	return result, nil
}

// CompareRegimes computes the liability under both regimes and recommends the
// cheaper one. Ties go to the new regime.
func (s *TaxService) CompareRegimes(
	ctx context.Context,
	input domain.CompareInput,
) (domain.RegimeComparison, error) {

	if err := validateAmount("income", input.Income); err != nil {
		return domain.RegimeComparison{}, err
	}
	if err := validateAmount("old_deductions", input.OldDeductions); err != nil {
		return domain.RegimeComparison{}, err
	}
	if err := validateAmount("new_deductions", input.NewDeductions); err != nil {
		return domain.RegimeComparison{}, err
	}

	oldResult := ComputeTax(input.Income, input.OldDeductions, domain.RegimeOld)
	newResult := ComputeTax(input.Income, input.NewDeductions, domain.RegimeNew)

	recommended := domain.RegimeNew
	if oldResult.TotalTax < newResult.TotalTax {
		recommended = domain.RegimeOld
	}

	result := domain.RegimeComparison{
		Old:         oldResult,
		New:         newResult,
		Recommended: recommended,
		Difference:  math.Abs(oldResult.TotalTax - newResult.TotalTax),
	}

	s.record(ctx, domain.KindCompare, "", input, result)
	return result, nil
}

// History returns the latest calculations, newest first.
func (s *TaxService) History(ctx context.Context, limit int) ([]domain.CalculationRecord, error) {
	if limit <= 0 {
		limit = DefaultHistorySize
	}
	if limit > MaxHistorySize {
		limit = MaxHistorySize
	}
	return s.repo.Recent(ctx, limit)
}

// record saves a history entry. Failures are not critical.
func (s *TaxService) record(
	ctx context.Context,
	kind domain.CalculationKind,
	regime domain.Regime,
	input any,
	result any,
) {
	err := s.repo.Save(ctx, domain.CalculationRecord{
		Kind:      kind,
		Regime:    regime,
		Input:     input,
		Result:    result,
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		log.Warnf("failed to save %s calculation: %v", kind, err)
	}
}

func (s *TaxService) cachedResult(ctx context.Context, key string, out any) bool {
	cached, ok := s.cache.Get(ctx, key)
	if !ok {
		return false
	}
	if err := json.Unmarshal([]byte(cached), out); err != nil {
		log.Warnf("discarding unreadable cache entry %s: %v", key, err)
		return false
	}
	return true
}

func (s *TaxService) storeResult(ctx context.Context, key string, result any) {
	payload, err := json.Marshal(result)
	if err != nil {
		log.Warnf("failed to encode result for %s: %v", key, err)
		return
	}
	if err := s.cache.Set(ctx, key, string(payload)); err != nil {
		log.Warnf("failed to cache %s: %v", key, err)
	}
}

func cacheKey(kind domain.CalculationKind, input any) (string, error) {
	payload, err := json.Marshal(input)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("tax:%s:%016x", kind, xxhash.Sum64(payload)), nil
}

func validateRegime(regime domain.Regime) error {
	if !regime.Valid() {
		return invalidf("regime must be %q or %q, got %q", domain.RegimeOld, domain.RegimeNew, regime)
	}
	return nil
}
