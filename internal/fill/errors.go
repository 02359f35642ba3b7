package fill

import (
	"errors"
	"fmt"
)

// Generation failure causes, matched with errors.Is.
var (
	// ErrUnfillable means a progression item had no reachable empty check
	// even with every remaining item assumed, or the pool cannot fit.
	ErrUnfillable = errors.New("unfillable item pool")
	// ErrGoalUnreachable means the finished layout does not reach the goal.
	ErrGoalUnreachable = errors.New("goal unreachable after fill")
	// ErrIterationCap means the attempt hit the configured placement cap.
	ErrIterationCap = errors.New("iteration cap reached")
	// ErrIncompleteLayout means checks were left empty after the junk pass.
	ErrIncompleteLayout = errors.New("layout incomplete after fill")
)

// GenerationError is an expected failure of one attempt. Unless Permanent is
// set a fresh seed may succeed.
type GenerationError struct {
	Seed      uint64
	Attempt   int
	Cause     error
	Permanent bool
	Detail    string
}

func (e *GenerationError) Error() string {
	msg := fmt.Sprintf("generation failed (seed %d, attempt %d): %v", e.Seed, e.Attempt, e.Cause)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// IsRetryable reports whether err is a generation failure another seed could
// avoid. Construction errors and cancellation are never retryable.
func IsRetryable(err error) bool {
	var ge *GenerationError
	return errors.As(err, &ge) && !ge.Permanent
}
