// Package state provides the check outcomes defined by the Nagios plugin API.
package state

import (
	"fmt"
	"slices"
)

// Code is the numeric outcome of a check. Higher codes are more severe.
type Code int

const (
	OK       Code = 0
	Warning  Code = 1
	Critical Code = 2
	Unknown  Code = 3
)

var words = [...]string{
	OK:       "OK",
	Warning:  "WARNING",
	Critical: "CRITICAL",
	Unknown:  "UNKNOWN",
}

// Codes returns all valid codes in ascending severity.
func Codes() []Code {
	return []Code{OK, Warning, Critical, Unknown}
}

// Valid reports whether c is one of the four defined codes.
func (c Code) Valid() bool {
	return c >= OK && c <= Unknown
}

// String returns the status word (OK, WARNING, CRITICAL, UNKNOWN).
func (c Code) String() string {
	if !c.Valid() {
		return fmt.Sprintf("Code(%d)", int(c))
	}
	return words[c]
}

// ExitCode returns the process exit code the monitoring supervisor expects.
func (c Code) ExitCode() int {
	return int(c)
}

// New creates a State of this code carrying the given message lines.
func (c Code) New(messages ...string) State {
	return State{code: c, messages: compact(messages)}
}

// State is an outcome plus zero or more message lines. The first line is the
// headline, the rest go to the long output.
type State struct {
	code     Code
	messages []string
}

func compact(messages []string) []string {
	var out []string
	for _, m := range messages {
		if m != "" {
			out = append(out, m)
		}
	}
	return out
}

// Code returns the state's code.
func (s State) Code() Code {
	return s.code
}

// String returns the status word.
func (s State) String() string {
	return s.code.String()
}

// ExitCode returns the process exit code for this state.
func (s State) ExitCode() int {
	return s.code.ExitCode()
}

// Messages returns a copy of all message lines.
func (s State) Messages() []string {
	return slices.Clone(s.messages)
}

// Headline returns the first message line, or "" if there is none.
func (s State) Headline() string {
	if len(s.messages) == 0 {
		return ""
	}
	return s.messages[0]
}

// LongOutput returns all message lines after the headline.
func (s State) LongOutput() []string {
	if len(s.messages) < 2 {
		return nil
	}
	return slices.Clone(s.messages[1:])
}

// Equal reports whether both states have the same code and messages.
func (s State) Equal(other State) bool {
	return s.code == other.code && slices.Equal(s.messages, other.messages)
}

// Combine merges other into s. See Combine.
func (s State) Combine(other State) State {
	return Combine(s, other)
}

// Combine returns the more severe of a and b. When both have the same code
// their messages are concatenated in argument order; otherwise the messages of
// the less severe state are discarded.
func Combine(a, b State) State {
	switch {
	case a.code == b.code:
		msgs := make([]string, 0, len(a.messages)+len(b.messages))
		msgs = append(msgs, a.messages...)
		msgs = append(msgs, b.messages...)
		return State{code: a.code, messages: msgs}
	case a.code > b.code:
		return a
	default:
		return b
	}
}

// Fold combines states left to right starting from initial.
func Fold(initial State, states ...State) State {
	result := initial
	for _, s := range states {
		result = Combine(result, s)
	}
	return result
}
