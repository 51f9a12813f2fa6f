package repository

import (
	"context"
	"sync"

	"tax-agent/domain"
)

// CalculationRepositoryMemory is an in-memory implementation of CalculationRepository.
// It keeps at most capacity records and drops the oldest beyond that.
type CalculationRepositoryMemory struct {
	mu       sync.RWMutex
	data     []domain.CalculationRecord
	capacity int
}

// NewCalculationRepositoryMemory creates a new in-memory calculation repository.
// A capacity of zero or less means unbounded.
func NewCalculationRepositoryMemory(capacity int) *CalculationRepositoryMemory {
	return &CalculationRepositoryMemory{
		data:     []domain.CalculationRecord{},
		capacity: capacity,
	}
}

// Save stores the calculation record in memory.
func (r *CalculationRepositoryMemory) Save(
	_ context.Context,
	record domain.CalculationRecord,
) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.data = append(r.data, record)
	if r.capacity > 0 && len(r.data) > r.capacity {
		r.data = append([]domain.CalculationRecord(nil), r.data[len(r.data)-r.capacity:]...)
	}
	return nil
}

func (r *CalculationRepositoryMemory) Recent(
	_ context.Context,
	limit int,
) ([]domain.CalculationRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if limit <= 0 || limit > len(r.data) {
		limit = len(r.data)
	}
	out := make([]domain.CalculationRecord, 0, limit)
	for i := len(r.data) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.data[i])
	}
	return out, nil
}
