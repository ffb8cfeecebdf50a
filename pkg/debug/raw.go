package debug

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/danpilch/nagkit/pkg/check"
)

// DumpRawMetrics outputs probed metrics before they are evaluated.
func DumpRawMetrics(w io.Writer, resource string, metrics []check.Metric) {
	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	header := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("62")).Padding(0, 1)
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	fmt.Fprintln(w)
	fmt.Fprintln(w, title.Render("Raw Metrics: "+resource))
	fmt.Fprintln(w, dim.Render(strings.Repeat("═", 72)))
	fmt.Fprintf(w, "  %s %s %s %s\n",
		header.Render("METRIC              "),
		header.Render("CONTEXT        "),
		header.Render("VALUE          "),
		header.Render("BOUNDS   "))
	fmt.Fprintln(w, "  "+dim.Render(strings.Repeat("─", 72)))

	for _, m := range metrics {
		fmt.Fprintf(w, "  %-21s %-16s %-16s %s\n",
			m.Name, m.ContextName(), m.ValueUnit(), dim.Render(bounds(m)))
	}
}

func bounds(m check.Metric) string {
	lo, hi := "", ""
	if m.Min != nil {
		lo = fmt.Sprint(*m.Min)
	}
	if m.Max != nil {
		hi = fmt.Sprint(*m.Max)
	}
	if lo == "" && hi == "" {
		return "-"
	}
	return "[" + lo + ", " + hi + "]"
}
