package check

import (
	"fmt"
	"math"
	"strconv"
)

// Metric is a single named measurement produced by a Resource. Values should
// be expressed in base units, so Metric{Name: "swap", Value: 10240, Unit: "B"}
// is better than a value in kiB.
type Metric struct {
	Name  string
	Value any
	Unit  string
	Min   *float64
	Max   *float64

	// Context names the context that evaluates this metric. It defaults to
	// Name.
	Context string

	context  Context
	resource Resource
}

// Float returns a pointer to v, for Metric.Min and Metric.Max.
func Float(v float64) *float64 {
	return &v
}

// ContextName returns the name of the evaluating context.
func (m Metric) ContextName() string {
	if m.Context != "" {
		return m.Context
	}
	return m.Name
}

// Resource returns the resource the metric was probed from, if bound.
func (m Metric) Resource() Resource {
	return m.resource
}

// Bind returns a copy of m associated with ctx and the originating resource.
func (m Metric) Bind(ctx Context, r Resource) Metric {
	m.context = ctx
	m.resource = r
	return m
}

// ValueUnit renders the value followed by the unit. Integral numbers render as
// integers and other reals with at most 4 significant digits.
func (m Metric) ValueUnit() string {
	return displayValue(m.Value) + m.Unit
}

func (m Metric) String() string {
	return m.ValueUnit()
}

// Description returns the bound context's description of the metric, falling
// back to ValueUnit.
func (m Metric) Description() string {
	if m.context != nil {
		if d := m.context.Describe(m); d != "" {
			return d
		}
	}
	return m.ValueUnit()
}

// Evaluate classifies the metric using its bound context.
func (m Metric) Evaluate() (Result, error) {
	if m.context == nil {
		return Result{}, &MissingContextError{Metric: m.Name, Context: m.ContextName()}
	}
	return m.context.Evaluate(m, m.resource), nil
}

// Performance returns the performance data for the metric. The bool is false
// if the bound context does not emit performance data. A value outside the
// metric's min/max is an error wrapping ErrOutOfBounds.
func (m Metric) Performance() (Performance, bool, error) {
	if m.context == nil {
		return Performance{}, false, &MissingContextError{Metric: m.Name, Context: m.ContextName()}
	}
	p, ok := m.context.Performance(m, m.resource)
	if !ok {
		return p, false, nil
	}
	if err := p.Validate(); err != nil {
		return Performance{}, false, err
	}
	return p, true, nil
}

func displayValue(v any) string {
	switch x := v.(type) {
	case float64:
		return displayFloat(x)
	case float32:
		return displayFloat(float64(x))
	case string:
		return x
	case nil:
		return ""
	default:
		return fmt.Sprint(x)
	}
}

func displayFloat(f float64) string {
	if isIntegral(f) {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return fmt.Sprintf("%.4g", f)
}

// perfValue is like displayValue but never uses exponent notation, which the
// plugin API does not allow in performance data.
func perfValue(v any) string {
	switch x := v.(type) {
	case float64:
		return perfFloat(x)
	case float32:
		return perfFloat(float64(x))
	case nil:
		return ""
	default:
		return fmt.Sprint(x)
	}
}

func perfFloat(f float64) string {
	if !isIntegral(f) && !math.IsNaN(f) && !math.IsInf(f, 0) {
		f, _ = strconv.ParseFloat(strconv.FormatFloat(f, 'g', 4, 64), 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func isIntegral(f float64) bool {
	return !math.IsInf(f, 0) && f == math.Trunc(f)
}
