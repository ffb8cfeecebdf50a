package threshold

import "fmt"

// FormatError reports a malformed range spec.
type FormatError struct {
	Spec   string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid range %q: %s", e.Spec, e.Reason)
}

// EvaluationError reports a value that cannot be compared against a range.
// Threshold.Match absorbs it into an Unknown state; it is exported for callers
// that convert values themselves via ToFloat.
type EvaluationError struct {
	Value any
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("cannot compare %v (%T) against a range", e.Value, e.Value)
}
