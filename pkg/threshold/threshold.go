package threshold

import (
	"fmt"
	"math"
	"os"
	"reflect"
	"strings"

	"github.com/danpilch/nagkit/pkg/state"
)

// Message template keys understood by Threshold.Match.
const (
	KeyOK       = "OK"
	KeyWarning  = "WARNING"
	KeyCritical = "CRITICAL"
	KeyUnknown  = "UNKNOWN"
	KeyDefault  = "DEFAULT"
)

// Messages maps a state word (or DEFAULT) to a message template. Templates may
// reference $value and $range.
type Messages map[string]string

// Threshold pairs a warning and a critical range. A side that was not given
// is never consulted, so the zero value classifies every number as OK,
// negative ones included.
type Threshold struct {
	warning     Range
	critical    Range
	hasWarning  bool
	hasCritical bool
}

// New parses both specs. An empty spec leaves that side unset.
func New(warning, critical string) (Threshold, error) {
	w, err := Parse(warning)
	if err != nil {
		return Threshold{}, fmt.Errorf("warning: %w", err)
	}
	c, err := Parse(critical)
	if err != nil {
		return Threshold{}, fmt.Errorf("critical: %w", err)
	}
	return Threshold{
		warning:     w,
		critical:    c,
		hasWarning:  strings.TrimSpace(warning) != "",
		hasCritical: strings.TrimSpace(critical) != "",
	}, nil
}

// FromRanges builds a Threshold from already parsed ranges. Both sides are
// consulted.
func FromRanges(warning, critical Range) Threshold {
	return Threshold{warning: warning, critical: critical, hasWarning: true, hasCritical: true}
}

// Warning returns the warning range.
func (t Threshold) Warning() Range { return t.warning }

// Critical returns the critical range.
func (t Threshold) Critical() Range { return t.critical }

func (t Threshold) String() string {
	return fmt.Sprintf("warning=%s critical=%s", t.warning, t.critical)
}

// Match classifies value. The critical range is consulted before the warning
// range. Values that are not numbers (or NaN) yield Unknown. The message
// template for the resulting state is looked up in messages, falling back to
// DEFAULT, and only that template is expanded.
func (t Threshold) Match(value any, messages Messages) state.State {
	v, err := ToFloat(value)
	if err != nil {
		return state.Unknown.New(messages.render(KeyUnknown, value, nil))
	}
	if t.hasCritical && !t.critical.Match(v) {
		return state.Critical.New(messages.render(KeyCritical, value, &t.critical))
	}
	if t.hasWarning && !t.warning.Match(v) {
		return state.Warning.New(messages.render(KeyWarning, value, &t.warning))
	}
	return state.OK.New(messages.render(KeyOK, value, nil))
}

func (m Messages) render(key string, value any, active *Range) string {
	tmpl, ok := m[key]
	if !ok {
		tmpl = m[KeyDefault]
	}
	if tmpl == "" {
		return ""
	}
	return os.Expand(tmpl, func(name string) string {
		switch name {
		case "value":
			return FormatValue(value)
		case "range":
			if active == nil {
				return ""
			}
			return active.String()
		default:
			return "$" + name
		}
	})
}

// ToFloat converts any Go numeric kind to float64. Other kinds, nil and NaN
// fail with an *EvaluationError.
func ToFloat(value any) (float64, error) {
	if value == nil {
		return 0, &EvaluationError{Value: value}
	}
	rv := reflect.ValueOf(value)
	var f float64
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		f = float64(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		f = float64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		f = rv.Float()
	default:
		return 0, &EvaluationError{Value: value}
	}
	if math.IsNaN(f) {
		return 0, &EvaluationError{Value: value}
	}
	return f, nil
}

// FormatValue renders a value for messages: numbers without exponent or
// trailing zeros, everything else via fmt.
func FormatValue(value any) string {
	switch v := value.(type) {
	case float64:
		return formatNumber(v)
	case float32:
		return formatNumber(float64(v))
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// CreateMulti pairs warnings and criticals positionally. The shorter list is
// extended with its own last element (or an empty spec if it has none), then
// default Thresholds are appended until there are at least minLen entries.
func CreateMulti(warnings, criticals []string, minLen int) ([]Threshold, error) {
	n := max(len(warnings), len(criticals))
	warnings = fill(warnings, n)
	criticals = fill(criticals, n)

	out := make([]Threshold, 0, max(n, minLen))
	for i := range n {
		t, err := New(warnings[i], criticals[i])
		if err != nil {
			return nil, fmt.Errorf("threshold %d: %w", i+1, err)
		}
		out = append(out, t)
	}
	for len(out) < minLen {
		out = append(out, Threshold{})
	}
	return out, nil
}

func fill(specs []string, n int) []string {
	if len(specs) >= n {
		return specs
	}
	filler := ""
	if len(specs) > 0 {
		filler = specs[len(specs)-1]
	}
	out := make([]string, len(specs), n)
	copy(out, specs)
	for len(out) < n {
		out = append(out, filler)
	}
	return out
}

// SplitMulti splits a comma separated list of range specs as given on the
// command line, e.g. "5,4,3". Empty elements stay empty (unrestricted).
func SplitMulti(spec string) []string {
	if strings.TrimSpace(spec) == "" {
		return nil
	}
	parts := strings.Split(spec, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}
