package llm

import (
	"errors"
	"fmt"
)

// ErrAllModelsExhausted is returned when every roster model hit a quota
// failure within a single Generate call. Terminal; the caller should retry
// later, not immediately.
var ErrAllModelsExhausted = errors.New("all models exhausted")

// QuotaError marks a backend failure classified as a quota/availability
// signal for one model. Recovered internally by model substitution; it only
// reaches the caller wrapped under ErrAllModelsExhausted.
type QuotaError struct {
	Model string
	Err   error
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("model %s over quota: %v", e.Model, e.Err)
}

func (e *QuotaError) Unwrap() error {
	return e.Err
}
