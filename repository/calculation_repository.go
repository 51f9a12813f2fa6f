package repository

import (
	"context"

	"tax-agent/domain"
)

type CalculationRepository interface {
	Save(ctx context.Context, record domain.CalculationRecord) error
	// Recent returns at most limit records, newest first.
	Recent(ctx context.Context, limit int) ([]domain.CalculationRecord, error)
}
