// Package output renders check outcomes in the Nagios plugin output protocol.
//
// The first line carries the plugin name, the status word, the headline and
// as much performance data as fits. Long output follows one line per entry and
// the remaining performance data is packed behind it:
//
//	CHECK CRITICAL - first status message | performance1=1s
//	msg2
//	long debug output from logging | performance2=2s
//	performance3=3s
package output

import (
	"io"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/danpilch/nagkit/pkg/state"
)

// DefaultMaxLength is the line length budget used when none is given.
const DefaultMaxLength = 80

// Formatter collects status, long output and performance tokens and renders
// them under a maximum line length. Rendering is deterministic: the same
// inputs always give byte-identical output.
type Formatter struct {
	name       string
	maxLength  int
	state      state.State
	headline   string
	longOutput []string
	perf       map[string]string
}

// NewFormatter creates a formatter for the named plugin. A maxLength <= 0
// selects DefaultMaxLength.
func NewFormatter(pluginName string, maxLength int) *Formatter {
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}
	return &Formatter{
		name:      strings.ToUpper(pluginName),
		maxLength: maxLength,
		perf:      make(map[string]string),
	}
}

// AddState sets the overall state. The first line of its headline goes to the
// status line; further headline lines and the remaining messages are appended
// to the long output.
func (f *Formatter) AddState(s state.State) *Formatter {
	f.state = s
	headline, rest, _ := strings.Cut(strings.Trim(s.Headline(), "\r\n"), "\n")
	f.headline = strings.TrimRight(headline, "\r")
	f.AddLongOutput(rest)
	f.AddLongOutputLines(s.LongOutput())
	return f
}

// AddLongOutput splits text into lines and appends them to the long output.
// Blank lines are dropped.
func (f *Formatter) AddLongOutput(text string) *Formatter {
	text = strings.TrimRight(text, "\r\n")
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if line != "" {
			f.longOutput = append(f.longOutput, line)
		}
	}
	return f
}

// AddLongOutputLines appends each entry to the long output, stripping trailing
// newlines and splitting entries that span several lines.
func (f *Formatter) AddLongOutputLines(lines []string) *Formatter {
	for _, l := range lines {
		f.AddLongOutput(l)
	}
	return f
}

// AddPerformance registers a rendered performance token (label=value;...)
// under name. Tokens are emitted sorted by name; a later token with the same
// name replaces the earlier one.
func (f *Formatter) AddPerformance(name, token string) *Formatter {
	f.perf[name] = token
	return f
}

// LongOutput returns the collected long output lines.
func (f *Formatter) LongOutput() []string {
	return slices.Clone(f.longOutput)
}

// Lines returns the rendered output without line terminators.
func (f *Formatter) Lines() []string {
	queue := f.tokens()
	first := f.firstLine()
	if chunk, rest := pack(queue, f.maxLength-width(first)-3); chunk != "" {
		first += " | " + chunk
		queue = rest
	}
	return append([]string{first}, f.tail(queue)...)
}

// Render writes the output to w. It always ends with exactly one newline.
func (f *Formatter) Render(w io.Writer) error {
	_, err := io.WriteString(w, f.String())
	return err
}

func (f *Formatter) String() string {
	return strings.Join(f.Lines(), "\n") + "\n"
}

func (f *Formatter) firstLine() string {
	var parts []string
	if f.name != "" {
		parts = append(parts, f.name)
	}
	parts = append(parts, f.state.String())
	if h := f.headline; h != "" {
		parts = append(parts, "-", h)
	}
	return strings.Join(parts, " ")
}

func (f *Formatter) tokens() []string {
	names := make([]string, 0, len(f.perf))
	for name := range f.perf {
		names = append(names, name)
	}
	slices.Sort(names)
	tokens := make([]string, len(names))
	for i, name := range names {
		tokens[i] = f.perf[name]
	}
	return tokens
}

// tail renders the long output followed by the performance tokens that did
// not fit onto the first line.
func (f *Formatter) tail(queue []string) []string {
	lines := slices.Clone(f.longOutput)
	if len(queue) == 0 {
		return lines
	}

	if n := len(lines); n > 0 {
		last := lines[n-1]
		if chunk, rest := pack(queue, f.maxLength-width(last)-3); chunk != "" {
			lines[n-1] = last + " | " + chunk
			queue = rest
			return append(lines, f.overflow(queue, f.maxLength)...)
		}
	}

	chunk, rest := packAtLeastOne(queue, f.maxLength-2)
	lines = append(lines, "| "+chunk)
	return append(lines, f.overflow(rest, f.maxLength)...)
}

func (f *Formatter) overflow(queue []string, budget int) []string {
	var lines []string
	for len(queue) > 0 {
		var chunk string
		chunk, queue = packAtLeastOne(queue, budget)
		lines = append(lines, chunk)
	}
	return lines
}

// pack joins as many leading tokens as fit into budget characters and
// returns them together with the tokens left over.
func pack(queue []string, budget int) (string, []string) {
	used := 0
	n := 0
	for _, tok := range queue {
		need := width(tok)
		if n > 0 {
			need++
		}
		if used+need > budget {
			break
		}
		used += need
		n++
	}
	return strings.Join(queue[:n], " "), queue[n:]
}

// packAtLeastOne is like pack but never returns an empty chunk for a
// non-empty queue; an oversized token gets a line of its own.
func packAtLeastOne(queue []string, budget int) (string, []string) {
	chunk, rest := pack(queue, budget)
	if chunk == "" && len(queue) > 0 {
		return queue[0], queue[1:]
	}
	return chunk, rest
}

func width(s string) int {
	return utf8.RuneCountInString(s)
}
