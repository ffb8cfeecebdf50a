package check

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/danpilch/nagkit/pkg/threshold"
)

// Performance is one performance data record. The zero ranges render as empty
// fields.
type Performance struct {
	Label    string
	Value    any
	Unit     string
	Warning  threshold.Range
	Critical threshold.Range
	Min      *float64
	Max      *float64
}

// String renders label=value[unit];warn;crit;min;max with trailing empty
// fields removed.
func (p Performance) String() string {
	fields := []string{
		perfValue(p.Value) + p.Unit,
		p.Warning.String(),
		p.Critical.String(),
		optional(p.Min),
		optional(p.Max),
	}
	return quoteLabel(p.Label) + "=" + strings.TrimRight(strings.Join(fields, ";"), ";")
}

// Validate checks a numeric value against Min and Max. Non-numeric values
// are not checked.
func (p Performance) Validate() error {
	v, err := threshold.ToFloat(p.Value)
	if err != nil {
		return nil
	}
	if p.Min != nil && v < *p.Min {
		return fmt.Errorf("%s: %w: %s is less than minimum %s", p.Label, ErrOutOfBounds, perfValue(p.Value), optional(p.Min))
	}
	if p.Max != nil && v > *p.Max {
		return fmt.Errorf("%s: %w: %s is greater than maximum %s", p.Label, ErrOutOfBounds, perfValue(p.Value), optional(p.Max))
	}
	return nil
}

func optional(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func quoteLabel(label string) string {
	if !strings.ContainsAny(label, " ='") {
		return label
	}
	return "'" + strings.ReplaceAll(label, "'", "''") + "'"
}
