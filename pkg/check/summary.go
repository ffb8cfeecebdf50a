package check

import "github.com/danpilch/nagkit/pkg/state"

// Summary produces the status line and the verbose lines of a check.
type Summary interface {
	// OK is used when the worst state is OK.
	OK(results *Results) string
	// Problem is used when the worst state is not OK.
	Problem(results *Results) string
	// Verbose returns additional long output lines.
	Verbose(results *Results) []string
	// Empty is used when there are no results at all.
	Empty() string
}

// DefaultSummary reports the first result when all is well and the first
// most significant result otherwise.
type DefaultSummary struct{}

// OK returns the first result.
func (DefaultSummary) OK(results *Results) string {
	if results.Len() == 0 {
		return ""
	}
	return results.At(0).String()
}

// Problem returns the first result with the worst state.
func (DefaultSummary) Problem(results *Results) string {
	r, err := results.FirstSignificant()
	if err != nil {
		return ""
	}
	return r.String()
}

// Verbose lists every non-OK result as "STATE: result".
func (DefaultSummary) Verbose(results *Results) []string {
	var lines []string
	for _, r := range results.Sorted() {
		if r.State == state.OK {
			continue
		}
		lines = append(lines, r.State.String()+": "+r.String())
	}
	return lines
}

// Empty returns "no check results".
func (DefaultSummary) Empty() string {
	return "no check results"
}
