package service

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidInput is wrapped by every validation failure.
var ErrInvalidInput = errors.New("invalid input")

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

func validateAmount(name string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return invalidf("%s must be a finite number", name)
	}
	if math.Abs(value) > MaxAmount {
		return invalidf("%s exceeds the maximum of %.0f", name, MaxAmount)
	}
	return nil
}
