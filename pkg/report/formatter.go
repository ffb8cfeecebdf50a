// Package report provides human readable renderings of check results.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/danpilch/nagkit/pkg/check"
	"github.com/danpilch/nagkit/pkg/state"
)

// Format represents the output format type.
type Format string

const (
	FormatNagios Format = "nagios"
	FormatTable  Format = "table"
	FormatJSON   Format = "json"
	FormatTSV    Format = "tsv"
)

// ParseFormat validates a --format value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatNagios, FormatTable, FormatJSON, FormatTSV:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q (want nagios, table, json or tsv)", s)
	}
}

// Counts tallies results by state.
type Counts struct {
	OK       int `json:"ok"`
	Warning  int `json:"warning"`
	Critical int `json:"critical"`
	Unknown  int `json:"unknown"`
}

// Summarize counts the results per state.
func Summarize(results []check.Result) Counts {
	var c Counts
	for _, r := range results {
		switch r.State {
		case state.OK:
			c.OK++
		case state.Warning:
			c.Warning++
		case state.Critical:
			c.Critical++
		default:
			c.Unknown++
		}
	}
	return c
}

// Formatter handles output formatting.
type Formatter struct {
	format    Format
	writer    io.Writer
	showScore bool
}

// NewFormatter creates a new formatter.
func NewFormatter(format Format, writer io.Writer) *Formatter {
	return &Formatter{
		format: format,
		writer: writer,
	}
}

// SetShowScore enables health score display.
func (f *Formatter) SetShowScore(show bool) {
	f.showScore = show
}

// Render outputs the results of the named check in the configured format.
// The nagios format is produced by check.Runtime and is not handled here.
func (f *Formatter) Render(name string, overall state.Code, results *check.Results) error {
	sorted := results.Sorted()
	switch f.format {
	case FormatJSON:
		return f.renderJSON(name, overall, sorted)
	case FormatTSV:
		return f.renderTSV(sorted)
	case FormatTable:
		return f.renderTable(name, overall, sorted)
	default:
		return fmt.Errorf("format %q cannot render a report", f.format)
	}
}

type jsonResult struct {
	Metric  string   `json:"metric,omitempty"`
	Context string   `json:"context,omitempty"`
	State   string   `json:"state"`
	Value   any      `json:"value,omitempty"`
	Unit    string   `json:"unit,omitempty"`
	Min     *float64 `json:"min,omitempty"`
	Max     *float64 `json:"max,omitempty"`
	Hint    string   `json:"hint"`
}

// renderJSON outputs results as JSON.
func (f *Formatter) renderJSON(name string, overall state.Code, results []check.Result) error {
	out := struct {
		Check    string       `json:"check"`
		State    string       `json:"state"`
		ExitCode int          `json:"exit_code"`
		Results  []jsonResult `json:"results"`
		Summary  Counts       `json:"summary"`
	}{
		Check:    name,
		State:    overall.String(),
		ExitCode: overall.ExitCode(),
		Results:  make([]jsonResult, 0, len(results)),
		Summary:  Summarize(results),
	}
	for _, r := range results {
		jr := jsonResult{State: r.State.String(), Hint: r.String()}
		if m := r.Metric; m != nil {
			jr.Metric = m.Name
			jr.Context = m.ContextName()
			jr.Value = m.Value
			jr.Unit = m.Unit
			jr.Min = m.Min
			jr.Max = m.Max
		}
		out.Results = append(out.Results, jr)
	}

	enc := json.NewEncoder(f.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

var statusStyles = map[state.Code]lipgloss.Style{
	state.OK:       lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true), // Green
	state.Warning:  lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true), // Yellow
	state.Critical: lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),  // Red
	state.Unknown:  lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Bold(true),  // Gray
}

// renderTable outputs results as a styled table.
func (f *Formatter) renderTable(name string, overall state.Code, results []check.Result) error {
	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("15")).
		Background(lipgloss.Color("62")).
		Padding(0, 1)

	cellStyle := lipgloss.NewStyle().Padding(0, 1)

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		MarginBottom(1)

	title := fmt.Sprintf("%s: %s", strings.ToUpper(name), statusStyles[overall].Render(overall.String()))
	fmt.Fprintln(f.writer, titleStyle.Render(title))
	fmt.Fprintln(f.writer, strings.Repeat("═", 60))
	fmt.Fprintln(f.writer)

	rows := make([][]string, len(results))
	for i, r := range results {
		metric, value := "-", "-"
		if r.Metric != nil {
			metric = r.Metric.Name
			value = r.Metric.ValueUnit()
		}
		rows[i] = []string{
			metric,
			value,
			statusStyles[r.State].Render(r.State.String()),
			r.String(),
		}
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers("METRIC", "VALUE", "STATE", "DETAIL").
		Rows(rows...)

	fmt.Fprintln(f.writer, t)
	fmt.Fprintln(f.writer)
	f.renderSummary(Summarize(results))

	if f.showScore {
		score := HealthScore(results)
		scoreStyle := statusStyles[state.OK]
		if score < 80 {
			scoreStyle = statusStyles[state.Warning]
		}
		if score < 50 {
			scoreStyle = statusStyles[state.Critical]
		}
		fmt.Fprintf(f.writer, "Health Score: %s\n",
			scoreStyle.Render(fmt.Sprintf("%d/100 (%s)", score, ScoreLabel(score))))
	}

	return nil
}

// renderSummary outputs the summary line.
func (f *Formatter) renderSummary(c Counts) {
	parts := []string{}

	if c.Critical > 0 {
		parts = append(parts, statusStyles[state.Critical].Render(fmt.Sprintf("%d critical", c.Critical)))
	}
	if c.Warning > 0 {
		parts = append(parts, statusStyles[state.Warning].Render(fmt.Sprintf("%d warning", c.Warning)))
	}
	if c.Unknown > 0 {
		parts = append(parts, statusStyles[state.Unknown].Render(fmt.Sprintf("%d unknown", c.Unknown)))
	}

	if len(parts) == 0 {
		fmt.Fprintln(f.writer, statusStyles[state.OK].Render("All checks passed"))
	} else {
		fmt.Fprintf(f.writer, "Summary: %s\n", strings.Join(parts, ", "))
	}
}

// renderTSV outputs results as tab-separated values.
func (f *Formatter) renderTSV(results []check.Result) error {
	fmt.Fprintln(f.writer, "METRIC\tCONTEXT\tVALUE\tUNIT\tSTATE\tDETAIL")

	for _, r := range results {
		var metric, context, value, unit string
		if m := r.Metric; m != nil {
			metric, context, unit = m.Name, m.ContextName(), m.Unit
			value = fmt.Sprint(m.Value)
		}
		if _, err := fmt.Fprintf(f.writer, "%s\t%s\t%s\t%s\t%s\t%s\n",
			metric, context, value, unit, r.State, r.String()); err != nil {
			return err
		}
	}

	return nil
}
