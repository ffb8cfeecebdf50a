package check

import (
	"fmt"

	"github.com/danpilch/nagkit/pkg/state"
)

// Result is the outcome of evaluating one metric.
type Result struct {
	State state.Code
	// Hint explains the outcome. An empty hint falls back to the metric.
	Hint   string
	Metric *Metric
}

// String returns the hint, else the metric's value and unit, else "".
func (r Result) String() string {
	if r.Hint != "" {
		return r.Hint
	}
	if r.Metric != nil {
		return r.Metric.ValueUnit()
	}
	return ""
}

// Name returns the originating metric's name or "".
func (r Result) Name() string {
	if r.Metric == nil {
		return ""
	}
	return r.Metric.Name
}

// Results collects the results of one check run. It is indexed by severity
// and by metric name. The zero value is ready to use. Results is not safe for
// concurrent use.
type Results struct {
	results []Result
	byState map[state.Code][]Result
	byName  map[string]Result
}

// NewResults returns a collection holding rs.
func NewResults(rs ...Result) (*Results, error) {
	r := &Results{}
	if err := r.Add(rs...); err != nil {
		return nil, err
	}
	return r, nil
}

// Add appends results. A result with an undefined state code is rejected and
// nothing after it is added.
func (r *Results) Add(rs ...Result) error {
	if r.byState == nil {
		r.byState = make(map[state.Code][]Result)
		r.byName = make(map[string]Result)
	}
	for _, res := range rs {
		if !res.State.Valid() {
			return fmt.Errorf("%w %d for result %q", ErrInvalidState, int(res.State), res.String())
		}
		r.results = append(r.results, res)
		r.byState[res.State] = append(r.byState[res.State], res)
		if res.Metric != nil {
			r.byName[res.Metric.Name] = res
		}
	}
	return nil
}

// Len returns the number of results.
func (r *Results) Len() int {
	return len(r.results)
}

// At returns the i-th result in insertion order.
func (r *Results) At(i int) Result {
	return r.results[i]
}

// Get returns the last result added for the named metric.
func (r *Results) Get(name string) (Result, bool) {
	res, ok := r.byName[name]
	return res, ok
}

// Contains reports whether a result for the named metric exists.
func (r *Results) Contains(name string) bool {
	_, ok := r.byName[name]
	return ok
}

// Sorted returns all results by decreasing severity, in insertion order
// within a severity.
func (r *Results) Sorted() []Result {
	out := make([]Result, 0, len(r.results))
	codes := state.Codes()
	for i := len(codes) - 1; i >= 0; i-- {
		out = append(out, r.byState[codes[i]]...)
	}
	return out
}

// MostSignificantState returns the worst state present.
func (r *Results) MostSignificantState() (state.Code, error) {
	codes := state.Codes()
	for i := len(codes) - 1; i >= 0; i-- {
		if len(r.byState[codes[i]]) > 0 {
			return codes[i], nil
		}
	}
	return state.Unknown, ErrEmptyResults
}

// MostSignificant returns all results with the worst state present, in
// insertion order. It is empty if there are no results.
func (r *Results) MostSignificant() []Result {
	code, err := r.MostSignificantState()
	if err != nil {
		return []Result{}
	}
	return append([]Result(nil), r.byState[code]...)
}

// FirstSignificant returns the first result with the worst state present.
func (r *Results) FirstSignificant() (Result, error) {
	ms := r.MostSignificant()
	if len(ms) == 0 {
		return Result{}, ErrEmptyResults
	}
	return ms[0], nil
}
