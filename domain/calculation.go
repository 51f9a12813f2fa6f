package domain

import "time"

type CalculationKind string

const (
	KindCompute CalculationKind = "compute"
	KindSavings CalculationKind = "savings"
	KindPlan    CalculationKind = "plan"
	KindCompare CalculationKind = "compare"
)

// CalculationRecord is a history entry. Input and Result hold the request and
// response payloads of the calculation named by Kind.
type CalculationRecord struct {
	Kind      CalculationKind `json:"kind" bson:"kind"`
	Regime    Regime          `json:"regime,omitempty" bson:"regime,omitempty"`
	Input     any             `json:"input" bson:"input"`
	Result    any             `json:"result" bson:"result"`
	CreatedAt time.Time       `json:"created_at" bson:"created_at"`
}
