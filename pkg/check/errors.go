package check

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrEmptyResults is returned by queries that need at least one result.
	ErrEmptyResults = errors.New("no results")

	// ErrUnknownContext is returned when a context name is not registered.
	ErrUnknownContext = errors.New("unknown context")

	// ErrInvalidState is returned when adding a result with an undefined code.
	ErrInvalidState = errors.New("invalid state")

	// ErrOutOfBounds is returned for performance data whose value lies
	// outside its min/max.
	ErrOutOfBounds = errors.New("value out of bounds")
)

// MissingContextError reports a metric that was evaluated without a context.
// It indicates a programming error in the plugin and is never downgraded to
// an Unknown result.
type MissingContextError struct {
	Metric  string
	Context string
}

func (e *MissingContextError) Error() string {
	return fmt.Sprintf("no context %q for metric %q", e.Context, e.Metric)
}

// TimeoutError reports that the check did not finish within its time budget.
type TimeoutError struct {
	After string
}

func (e *TimeoutError) Error() string {
	return "Timeout: check execution aborted after " + e.After
}

// AsTimeout turns a deadline error into a *TimeoutError for a run bounded by
// after. Other errors, and any error when after is zero, are returned as is.
func AsTimeout(err error, after time.Duration) error {
	if after > 0 && errors.Is(err, context.DeadlineExceeded) {
		return &TimeoutError{After: after.String()}
	}
	return err
}
