// Package check orchestrates a monitoring check: it probes resources for
// metrics, evaluates them with contexts and aggregates the results.
package check

import (
	"context"
	"fmt"
	"maps"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/danpilch/nagkit/pkg/state"
)

// Resource is a probed system fact. Probe returns the measured metrics; an
// error becomes an Unknown result for this resource only.
type Resource interface {
	Name() string
	Probe(ctx context.Context, log logrus.FieldLogger) ([]Metric, error)
}

// Check holds the resources, contexts and summary of one plugin run.
type Check struct {
	name      string
	resources []Resource
	contexts  *Contexts
	summary   Summary
	results   *Results
	perf      map[string]string
	logger    logrus.FieldLogger
}

// New creates an empty check. If name is empty the name of the first
// resource is used.
func New(name string) *Check {
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	return &Check{
		name:     name,
		contexts: NewContexts(),
		summary:  DefaultSummary{},
		results:  &Results{},
		perf:     make(map[string]string),
		logger:   logger,
	}
}

// Name returns the plugin name.
func (c *Check) Name() string {
	if c.name == "" && len(c.resources) > 0 {
		return c.resources[0].Name()
	}
	return c.name
}

// AddResources appends resources to probe.
func (c *Check) AddResources(rs ...Resource) *Check {
	c.resources = append(c.resources, rs...)
	return c
}

// AddContexts registers contexts.
func (c *Check) AddContexts(cs ...Context) *Check {
	c.contexts.Add(cs...)
	return c
}

// SetSummary replaces the DefaultSummary.
func (c *Check) SetSummary(s Summary) *Check {
	c.summary = s
	return c
}

// SetLogger sets the logger handed to resources.
func (c *Check) SetLogger(l logrus.FieldLogger) *Check {
	c.logger = l
	return c
}

type probeResult struct {
	metrics []Metric
	err     error
}

// Run probes all resources concurrently, then evaluates their metrics in
// resource order. A metric whose context is not registered aborts the run
// with a *MissingContextError.
func (c *Check) Run(ctx context.Context) error {
	probed := make([]probeResult, len(c.resources))

	var wg sync.WaitGroup
	for i, res := range c.resources {
		wg.Add(1)
		go func(i int, res Resource) {
			defer wg.Done()

			log := c.logger.WithField("resource", res.Name())
			log.Debug("Probing resource")

			metrics, err := res.Probe(ctx, log)
			probed[i] = probeResult{metrics: metrics, err: err}
		}(i, res)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return err
	}

	for i, res := range c.resources {
		if err := c.evaluate(res, probed[i]); err != nil {
			return err
		}
	}
	return nil
}

func (c *Check) evaluate(res Resource, p probeResult) error {
	log := c.logger.WithField("resource", res.Name())

	if p.err != nil {
		log.WithError(p.err).Info("Probe failed")
		return c.results.Add(Result{State: state.Unknown, Hint: p.err.Error()})
	}
	if len(p.metrics) == 0 {
		log.Warnf("resource %s did not produce any metric", res.Name())
	}

	for _, m := range p.metrics {
		evaluator, err := c.contexts.Get(m.ContextName())
		if err != nil {
			return &MissingContextError{Metric: m.Name, Context: m.ContextName()}
		}
		m = m.Bind(evaluator, res)

		result, err := m.Evaluate()
		if err != nil {
			return err
		}
		if err := c.results.Add(result); err != nil {
			return fmt.Errorf("cannot add result of %s: %w", m.Name, err)
		}
		log.WithFields(logrus.Fields{
			"metric": m.Name,
			"state":  result.State,
		}).Debug(result.String())

		perf, ok, err := m.Performance()
		if err != nil {
			return err
		}
		if ok {
			c.perf[perf.Label] = perf.String()
		}
	}
	return nil
}

// Results returns the collected results.
func (c *Check) Results() *Results {
	return c.results
}

// Performance returns the rendered performance tokens by label.
func (c *Check) Performance() map[string]string {
	return maps.Clone(c.perf)
}

// State returns the worst state of all results, Unknown if there are none.
func (c *Check) State() state.Code {
	code, err := c.results.MostSignificantState()
	if err != nil {
		return state.Unknown
	}
	return code
}

// ExitCode returns the process exit code matching State.
func (c *Check) ExitCode() int {
	return c.State().ExitCode()
}

// Outcome folds every result into a single State. Its code equals State and
// its messages are the explanations of the worst results.
func (c *Check) Outcome() state.State {
	if c.results.Len() == 0 {
		return state.Unknown.New(c.summary.Empty())
	}
	states := make([]state.State, 0, c.results.Len())
	for i := range c.results.Len() {
		r := c.results.At(i)
		states = append(states, r.State.New(r.String()))
	}
	return state.Fold(state.OK.New(), states...)
}

// SummaryLine returns the status line text.
func (c *Check) SummaryLine() string {
	switch {
	case c.results.Len() == 0:
		return c.summary.Empty()
	case c.State() == state.OK:
		return c.summary.OK(c.results)
	default:
		return c.summary.Problem(c.results)
	}
}

// VerboseLines returns the summary's long output lines.
func (c *Check) VerboseLines() []string {
	return c.summary.Verbose(c.results)
}
