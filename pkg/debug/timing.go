// Package debug provides instrumentation for nagkit probes.
package debug

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github.com/danpilch/nagkit/pkg/check"
)

var (
	debugTitle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	debugHeader = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("62")).Padding(0, 1)
	debugDim    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// ProbeTiming records the duration of a resource's Probe call.
type ProbeTiming struct {
	Name     string
	Duration time.Duration
	Metrics  int
	Err      error
}

// TimedResource wraps a check.Resource to record probe duration and the
// metrics it returned.
type TimedResource struct {
	inner check.Resource

	mu      sync.Mutex
	timing  ProbeTiming
	metrics []check.Metric
}

// NewTimedResource wraps a resource with timing instrumentation.
func NewTimedResource(r check.Resource) *TimedResource {
	return &TimedResource{
		inner:  r,
		timing: ProbeTiming{Name: r.Name()},
	}
}

// Name returns the wrapped resource's name.
func (t *TimedResource) Name() string {
	return t.inner.Name()
}

// Probe runs the wrapped resource and records duration.
func (t *TimedResource) Probe(ctx context.Context, log logrus.FieldLogger) ([]check.Metric, error) {
	start := time.Now()
	metrics, err := t.inner.Probe(ctx, log)
	elapsed := time.Since(start)
	log.WithField("duration", elapsed).Debug("Probe finished")

	t.mu.Lock()
	t.timing = ProbeTiming{
		Name:     t.inner.Name(),
		Duration: elapsed,
		Metrics:  len(metrics),
		Err:      err,
	}
	t.metrics = metrics
	t.mu.Unlock()
	return metrics, err
}

// Timing returns the last recorded timing.
func (t *TimedResource) Timing() ProbeTiming {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.timing
}

// Metrics returns the metrics of the last probe.
func (t *TimedResource) Metrics() []check.Metric {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.metrics
}

// TimingReport prints a styled timing summary for all timed resources.
func TimingReport(w io.Writer, timings []ProbeTiming) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, debugTitle.Render("Probe Timing Report"))
	fmt.Fprintln(w, debugDim.Render(strings.Repeat("═", 48)))
	fmt.Fprintf(w, "  %s  %s  %s\n",
		debugHeader.Render("RESOURCE           "),
		debugHeader.Render("DURATION    "),
		debugHeader.Render("METRICS"))
	fmt.Fprintln(w, "  "+debugDim.Render(strings.Repeat("─", 48)))

	var total time.Duration
	for _, t := range timings {
		metrics := fmt.Sprint(t.Metrics)
		if t.Err != nil {
			metrics = debugDim.Render("error: " + t.Err.Error())
		}
		fmt.Fprintf(w, "  %-20s %-14v %s\n", t.Name, t.Duration, metrics)
		total += t.Duration
	}
	fmt.Fprintln(w, "  "+debugDim.Render(strings.Repeat("─", 48)))
	fmt.Fprintf(w, "  %-20s %v\n",
		lipgloss.NewStyle().Bold(true).Render("TOTAL"), total)
}
