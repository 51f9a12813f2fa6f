package repository

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tax-agent/domain"
)

func record(income float64) domain.CalculationRecord {
	return domain.CalculationRecord{
		Kind:  domain.KindCompute,
		Input: domain.ComputeTaxInput{Income: income, Regime: domain.RegimeOld},
	}
}

func TestCalculationRepositoryMemory_RecentNewestFirst(t *testing.T) {
	repo := NewCalculationRepositoryMemory(0)
	ctx := context.Background()

	for _, income := range []float64{1, 2, 3} {
		require.NoError(t, repo.Save(ctx, record(income)))
	}

	records, err := repo.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 3.0, records[0].Input.(domain.ComputeTaxInput).Income)
	assert.Equal(t, 2.0, records[1].Input.(domain.ComputeTaxInput).Income)

	all, err := repo.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestCalculationRepositoryMemory_Capacity(t *testing.T) {
	repo := NewCalculationRepositoryMemory(2)
	ctx := context.Background()

	for _, income := range []float64{1, 2, 3} {
		require.NoError(t, repo.Save(ctx, record(income)))
	}

	records, err := repo.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 3.0, records[0].Input.(domain.ComputeTaxInput).Income)
	assert.Equal(t, 2.0, records[1].Input.(domain.ComputeTaxInput).Income)
}

func TestCalculationRepositoryMemory_Empty(t *testing.T) {
	records, err := NewCalculationRepositoryMemory(10).Recent(context.Background(), 5)
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestCalculationRepositoryMemory_ConcurrentSave(t *testing.T) {
	repo := NewCalculationRepositoryMemory(0)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, repo.Save(ctx, record(float64(i))))
		}(i)
	}
	wg.Wait()

	records, err := repo.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, records, 50)
}

func TestMockCache(t *testing.T) {
	cache := NewMockCache()
	ctx := context.Background()

	_, ok := cache.Get(ctx, "missing")
	assert.False(t, ok)

	require.NoError(t, cache.Set(ctx, "k", "v"))
	val, ok := cache.Get(ctx, "k")
	assert.True(t, ok)
	assert.Equal(t, "v", val)
}
