package service

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tax-agent/domain"
	"tax-agent/repository"
)

type MockCalculationRepository struct {
	Saved      []domain.CalculationRecord
	ForceError bool
}

func (m *MockCalculationRepository) Save(_ context.Context, record domain.CalculationRecord) error {
	if m.ForceError {
		return errors.New("save error")
	}
	m.Saved = append(m.Saved, record)
	return nil
}

func (m *MockCalculationRepository) Recent(_ context.Context, limit int) ([]domain.CalculationRecord, error) {
	if m.ForceError {
		return nil, errors.New("recent error")
	}
	out := []domain.CalculationRecord{}
	for i := len(m.Saved) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.Saved[i])
	}
	return out, nil
}

func newTestTaxService() (*TaxService, *MockCalculationRepository, *repository.MockCache) {
	repo := &MockCalculationRepository{}
	cache := repository.NewMockCache()
	svc := NewTaxService(repo, cache, NewAdvisorService("", "", "", 0))
	svc.now = func() time.Time { return time.Date(2024, 7, 31, 10, 0, 0, 0, time.UTC) }
	return svc, repo, cache
}

func TestTaxServiceCompute(t *testing.T) {
	svc, repo, cache := newTestTaxService()
	input := domain.ComputeTaxInput{Income: 800_000, Regime: domain.RegimeOld}

	result, err := svc.Compute(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, 75_400.0, result.TotalTax)

	require.Len(t, repo.Saved, 1)
	assert.Equal(t, domain.KindCompute, repo.Saved[0].Kind)
	assert.Equal(t, domain.RegimeOld, repo.Saved[0].Regime)
	assert.Equal(t, input, repo.Saved[0].Input)
	assert.Equal(t, time.Date(2024, 7, 31, 10, 0, 0, 0, time.UTC), repo.Saved[0].CreatedAt)

	assert.Len(t, cache.Data, 1)
}

func TestTaxServiceCompute_ServesFromCache(t *testing.T) {
	svc, repo, cache := newTestTaxService()
	input := domain.ComputeTaxInput{Income: 800_000, Regime: domain.RegimeOld}

	key, err := cacheKey(domain.KindCompute, input)
	require.NoError(t, err)
	payload, err := json.Marshal(domain.ComputeTaxResult{TotalTax: 42})
	require.NoError(t, err)
	require.NoError(t, cache.Set(context.Background(), key, string(payload)))

	result, err := svc.Compute(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, 42.0, result.TotalTax)
	assert.Len(t, repo.Saved, 1)
}

func TestTaxServiceCompute_IgnoresCorruptCacheEntry(t *testing.T) {
	svc, _, cache := newTestTaxService()
	input := domain.ComputeTaxInput{Income: 800_000, Regime: domain.RegimeOld}

	key, err := cacheKey(domain.KindCompute, input)
	require.NoError(t, err)
	require.NoError(t, cache.Set(context.Background(), key, "{not json"))

	result, err := svc.Compute(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, 75_400.0, result.TotalTax)
}

func TestTaxServiceCompute_InvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		input domain.ComputeTaxInput
	}{
		{"unknown regime", domain.ComputeTaxInput{Income: 100, Regime: "flat"}},
		{"empty regime", domain.ComputeTaxInput{Income: 100}},
		{"nan income", domain.ComputeTaxInput{Income: math.NaN(), Regime: domain.RegimeNew}},
		{"infinite deductions", domain.ComputeTaxInput{Income: 100, Deductions: math.Inf(1), Regime: domain.RegimeNew}},
		{"huge income", domain.ComputeTaxInput{Income: MaxAmount * 2, Regime: domain.RegimeOld}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _ := newTestTaxService()
			_, err := svc.Compute(context.Background(), tt.input)
			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.Empty(t, repo.Saved)
		})
	}
}

func TestTaxServiceCompute_NegativeIncomeIsClamped(t *testing.T) {
	svc, _, _ := newTestTaxService()
	result, err := svc.Compute(context.Background(), domain.ComputeTaxInput{Income: -1, Regime: domain.RegimeOld})
	require.NoError(t, err)
	assert.Zero(t, result.TaxableIncome)
}

func TestTaxServiceCompute_RepositoryFailureIsNotFatal(t *testing.T) {
	svc, repo, _ := newTestTaxService()
	repo.ForceError = true

	result, err := svc.Compute(context.Background(), domain.ComputeTaxInput{Income: 800_000, Regime: domain.RegimeOld})
	require.NoError(t, err)
	assert.Equal(t, 75_400.0, result.TotalTax)
}

func TestTaxServiceSavings(t *testing.T) {
	svc, repo, _ := newTestTaxService()

	result, err := svc.Savings(context.Background(), domain.SavingsInput{
		AnnualIncome: 1_000_000,
		Regime:       domain.RegimeOld,
		Investments:  []domain.Investment{{Code: "80C", Amount: 150_000}, {Code: "80D", Amount: 25_000}},
	})
	require.NoError(t, err)
	assert.Equal(t, 36_400.0, result.TaxSaved)
	require.Len(t, repo.Saved, 1)
	assert.Equal(t, domain.KindSavings, repo.Saved[0].Kind)
}

func TestTaxServiceSavings_InvalidInvestments(t *testing.T) {
	svc, _, _ := newTestTaxService()

	_, err := svc.Savings(context.Background(), domain.SavingsInput{
		AnnualIncome: 1_000_000,
		Regime:       domain.RegimeOld,
		Investments:  []domain.Investment{{Code: "80C", Amount: math.NaN()}},
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.ErrorContains(t, err, "investments[0].amount")

	_, err = svc.Savings(context.Background(), domain.SavingsInput{
		AnnualIncome: 1_000_000,
		Regime:       domain.RegimeOld,
		Investments:  make([]domain.Investment, MaxInvestments+1),
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestTaxServicePlan(t *testing.T) {
	svc, repo, _ := newTestTaxService()

	result, err := svc.Plan(context.Background(), domain.PlanInput{
		Income: 1_000_000,
		Regime: domain.RegimeOld,
		Budget: 300_000,
	})
	require.NoError(t, err)
	assert.Len(t, result.Suggestions, 5)
	assert.Equal(t, 62_400.0, result.ExpectedTaxSaved)
	assert.Contains(t, result.Summary, "expected to save Rs 62400")
	require.Len(t, repo.Saved, 1)
	assert.Equal(t, domain.KindPlan, repo.Saved[0].Kind)
}

func TestTaxServicePlan_WithoutAdvisor(t *testing.T) {
	svc := NewTaxService(&MockCalculationRepository{}, repository.NewMockCache(), nil)

	result, err := svc.Plan(context.Background(), domain.PlanInput{Income: 1_000_000, Regime: domain.RegimeNew, Budget: 10_000})
	require.NoError(t, err)
	assert.Empty(t, result.Summary)
}

func TestTaxServicePlan_InvalidBudget(t *testing.T) {
	svc, _, _ := newTestTaxService()

	_, err := svc.Plan(context.Background(), domain.PlanInput{Income: 1_000_000, Regime: domain.RegimeOld, Budget: math.Inf(-1)})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestTaxServiceCompareRegimes(t *testing.T) {
	svc, repo, _ := newTestTaxService()

	result, err := svc.CompareRegimes(context.Background(), domain.CompareInput{
		Income:        1_000_000,
		OldDeductions: 200_000,
		NewDeductions: 50_000,
	})
	require.NoError(t, err)
	assert.Equal(t, 75_400.0, result.Old.TotalTax)
	assert.Equal(t, 54_600.0, result.New.TotalTax)
	assert.Equal(t, domain.RegimeNew, result.Recommended)
	assert.Equal(t, 20_800.0, result.Difference)
	require.Len(t, repo.Saved, 1)
	assert.Equal(t, domain.KindCompare, repo.Saved[0].Kind)

	result, err = svc.CompareRegimes(context.Background(), domain.CompareInput{
		Income:        1_000_000,
		OldDeductions: 500_000,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RegimeOld, result.Recommended)
	assert.Equal(t, 62_400.0, result.Difference)
}

func TestTaxServiceCompareRegimes_TieGoesToNew(t *testing.T) {
	svc, _, _ := newTestTaxService()

	result, err := svc.CompareRegimes(context.Background(), domain.CompareInput{Income: 400_000})
	require.NoError(t, err)
	assert.Equal(t, domain.RegimeNew, result.Recommended)
	assert.Zero(t, result.Difference)
}

func TestTaxServiceHistory(t *testing.T) {
	svc, _, _ := newTestTaxService()
	ctx := context.Background()

	for _, income := range []float64{600_000, 800_000, 1_000_000} {
		_, err := svc.Compute(ctx, domain.ComputeTaxInput{Income: income, Regime: domain.RegimeOld})
		require.NoError(t, err)
	}

	records, err := svc.History(ctx, 0)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, 1_000_000.0, records[0].Input.(domain.ComputeTaxInput).Income)

	records, err = svc.History(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestTaxServiceHistory_RepositoryError(t *testing.T) {
	svc, repo, _ := newTestTaxService()
	repo.ForceError = true

	_, err := svc.History(context.Background(), 5)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidInput)
}

func TestCacheKeyIsStable(t *testing.T) {
	a, err := cacheKey(domain.KindCompute, domain.ComputeTaxInput{Income: 1, Regime: domain.RegimeOld})
	require.NoError(t, err)
	b, err := cacheKey(domain.KindCompute, domain.ComputeTaxInput{Income: 1, Regime: domain.RegimeOld})
	require.NoError(t, err)
	c, err := cacheKey(domain.KindCompute, domain.ComputeTaxInput{Income: 1, Regime: domain.RegimeNew})
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Regexp(t, `^tax:compute:[0-9a-f]{16}$`, a)
}
