// Package threshold implements the Nagios range mini-language and the
// warning/critical threshold pairs built on top of it.
//
// See https://nagios-plugins.org/doc/guidelines.html#THRESHOLDFORMAT for the
// range syntax.
package threshold

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// number accepts integer and decimal literals. Exponent notation is rejected.
var number = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)$`)

// Range is a numeric interval with optional inversion, written as
// [@][start:][end]. The zero value is the unrestricted range [0, +inf), the
// same as Parse(""). Ranges are comparable with ==.
type Range struct {
	start   float64
	end     float64
	noStart bool // start is -inf
	hasEnd  bool // end is finite
	invert  bool
}

// Parse parses a range spec. It fails with a *FormatError if an atom is not a
// number or if start is greater than end.
func Parse(spec string) (Range, error) {
	var r Range
	s := strings.TrimSpace(spec)
	if s == "" {
		return r, nil
	}
	if strings.HasPrefix(s, "@") {
		r.invert = true
		s = s[1:]
	}
	if !strings.Contains(s, ":") {
		s = ":" + s
	}
	startStr, endStr, _ := strings.Cut(s, ":")

	switch startStr {
	case "~":
		r.noStart = true
	case "":
	default:
		v, err := parseAtom(spec, startStr)
		if err != nil {
			return Range{}, err
		}
		r.start = v
	}

	if endStr != "" {
		v, err := parseAtom(spec, endStr)
		if err != nil {
			return Range{}, err
		}
		r.end = v
		r.hasEnd = true
	}

	if !r.noStart && r.hasEnd && r.start > r.end {
		return Range{}, &FormatError{
			Spec:   spec,
			Reason: "start " + formatNumber(r.start) + " must not be greater than end " + formatNumber(r.end),
		}
	}
	return r, nil
}

func parseAtom(spec, atom string) (float64, error) {
	if !number.MatchString(atom) {
		return 0, &FormatError{Spec: spec, Reason: strconv.Quote(atom) + " is not a number"}
	}
	v, err := strconv.ParseFloat(atom, 64)
	if err != nil {
		return 0, &FormatError{Spec: spec, Reason: err.Error()}
	}
	// normalize -0 so that == stays structural
	if v == 0 {
		v = 0
	}
	return v, nil
}

// MustParse is like Parse but panics on error. It is meant for specs that are
// compile-time constants.
func MustParse(spec string) Range {
	r, err := Parse(spec)
	if err != nil {
		panic(err)
	}
	return r
}

// FromValue returns the range [0, n], equivalent to Parse(":n"). Unlike Parse
// it does not reject a negative n; such a range matches nothing.
func FromValue(n float64) Range {
	if n == 0 {
		n = 0
	}
	return Range{end: n, hasEnd: true}
}

// Start returns the lower bound, math.Inf(-1) when unbounded.
func (r Range) Start() float64 {
	if r.noStart {
		return math.Inf(-1)
	}
	return r.start
}

// End returns the upper bound, math.Inf(1) when unbounded.
func (r Range) End() float64 {
	if !r.hasEnd {
		return math.Inf(1)
	}
	return r.end
}

// Inverted reports whether the range was written with a leading @.
func (r Range) Inverted() bool {
	return r.invert
}

// Match reports whether v is acceptable: inside [start, end] for a normal
// range, outside of it for an inverted one.
func (r Range) Match(v float64) bool {
	inside := true
	if !r.noStart && v < r.start {
		inside = false
	}
	if r.hasEnd && v > r.end {
		inside = false
	}
	return inside != r.invert
}

// Contains is a synonym for Match.
func (r Range) Contains(v float64) bool {
	return r.Match(v)
}

// String returns the canonical spec. The unrestricted range renders as "".
func (r Range) String() string {
	var b strings.Builder
	if r.invert {
		b.WriteByte('@')
	}
	switch {
	case r.noStart:
		b.WriteString("~:")
	case r.start != 0:
		b.WriteString(formatNumber(r.start))
		b.WriteByte(':')
	}
	if r.hasEnd {
		b.WriteString(formatNumber(r.end))
	}
	return b.String()
}

// MarshalText implements encoding.TextMarshaler.
func (r Range) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Range) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// formatNumber renders v with the fewest digits that round-trip and never in
// exponent notation, so 6.70 becomes "6.7" and 1e21 stays an integer.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
