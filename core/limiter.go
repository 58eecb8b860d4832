package core

import (
	"errors"
	"fmt"
)

// ErrModelCallLimit is returned once a turn exceeds its model call budget.
var ErrModelCallLimit = errors.New("model call limit exceeded")

// ModelLimiter bounds the number of reply-service calls a single turn may make
// (one per tool round). A turn is sequential, so the limiter is not locked.
type ModelLimiter struct {
	max   int
	count int
}

// NewModelLimiter creates a limiter; max <= 0 means unlimited.
func NewModelLimiter(max int) *ModelLimiter {
	return &ModelLimiter{max: max}
}

// Increment counts one call and fails when the budget is exhausted.
func (ml *ModelLimiter) Increment() error {
	ml.count++
	if ml.max > 0 && ml.count > ml.max {
		return fmt.Errorf("%w: %d", ErrModelCallLimit, ml.max)
	}
	return nil
}

// Count returns the number of calls made so far.
func (ml *ModelLimiter) Count() int { return ml.count }

// Remaining returns the calls left, or -1 when unlimited.
func (ml *ModelLimiter) Remaining() int {
	if ml.max <= 0 {
		return -1
	}
	return ml.max - ml.count
}
