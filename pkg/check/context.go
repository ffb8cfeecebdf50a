package check

import (
	"fmt"
	"slices"
	"strings"
	"text/template"

	"github.com/danpilch/nagkit/pkg/state"
	"github.com/danpilch/nagkit/pkg/threshold"
)

// DefaultFormat is the description template used by scalar contexts.
const DefaultFormat = "{{.Name}} is {{.ValueUnit}}"

// Context evaluates metrics and produces their performance data. A metric
// finds its context by name, see Metric.ContextName.
type Context interface {
	Name() string
	Evaluate(m Metric, r Resource) Result
	// Performance returns false if the metric has no performance data.
	Performance(m Metric, r Resource) (Performance, bool)
	// Describe returns a human readable description or "" for none.
	Describe(m Metric) string
}

// BasicContext always evaluates to OK and emits performance data without
// thresholds.
type BasicContext struct {
	name   string
	format *template.Template
	noPerf bool
}

// NewContext creates a context that accepts every value. An empty format
// leaves metrics undescribed.
func NewContext(name, format string) (*BasicContext, error) {
	tmpl, err := parseFormat(name, format)
	if err != nil {
		return nil, err
	}
	return &BasicContext{name: name, format: tmpl}, nil
}

// NullContext returns a context that accepts every value and emits no
// performance data.
func NullContext() *BasicContext {
	return &BasicContext{name: "null", noPerf: true}
}

// Name returns the context name.
func (c *BasicContext) Name() string { return c.name }

// Evaluate returns an OK result.
func (c *BasicContext) Evaluate(m Metric, _ Resource) Result {
	return Result{State: state.OK, Hint: c.Describe(m), Metric: &m}
}

// Performance returns the metric as performance data unless this is a null
// context.
func (c *BasicContext) Performance(m Metric, _ Resource) (Performance, bool) {
	if c.noPerf {
		return Performance{}, false
	}
	return Performance{Label: m.Name, Value: m.Value, Unit: m.Unit, Min: m.Min, Max: m.Max}, true
}

// Describe renders the format template.
func (c *BasicContext) Describe(m Metric) string {
	return describe(c.format, m)
}

// ScalarContext classifies numeric metrics with a Threshold.
type ScalarContext struct {
	name      string
	threshold threshold.Threshold
	messages  threshold.Messages
	format    *template.Template
}

// NewScalarContext creates a threshold-checking context. An empty format
// selects DefaultFormat.
func NewScalarContext(name string, t threshold.Threshold, format string) (*ScalarContext, error) {
	if format == "" {
		format = DefaultFormat
	}
	tmpl, err := parseFormat(name, format)
	if err != nil {
		return nil, err
	}
	return &ScalarContext{name: name, threshold: t, format: tmpl}, nil
}

// WithMessages sets per-state hint templates (see threshold.Messages). A
// non-empty message replaces the description as the result hint.
func (c *ScalarContext) WithMessages(m threshold.Messages) *ScalarContext {
	c.messages = m
	return c
}

// Name returns the context name.
func (c *ScalarContext) Name() string { return c.name }

// Threshold returns the ranges the context checks against.
func (c *ScalarContext) Threshold() threshold.Threshold { return c.threshold }

// Evaluate matches the metric value against the threshold.
func (c *ScalarContext) Evaluate(m Metric, _ Resource) Result {
	s := c.threshold.Match(m.Value, c.messages)
	hint := s.Headline()
	if hint == "" {
		hint = c.Describe(m)
	}
	return Result{State: s.Code(), Hint: hint, Metric: &m}
}

// Performance returns the metric with the context's ranges.
func (c *ScalarContext) Performance(m Metric, _ Resource) (Performance, bool) {
	return Performance{
		Label:    m.Name,
		Value:    m.Value,
		Unit:     m.Unit,
		Warning:  c.threshold.Warning(),
		Critical: c.threshold.Critical(),
		Min:      m.Min,
		Max:      m.Max,
	}, true
}

// Describe renders the format template.
func (c *ScalarContext) Describe(m Metric) string {
	return describe(c.format, m)
}

func parseFormat(name, format string) (*template.Template, error) {
	if format == "" {
		return nil, nil
	}
	tmpl, err := template.New(name).Parse(format)
	if err != nil {
		return nil, fmt.Errorf("context %s: cannot parse format: %w", name, err)
	}
	return tmpl, nil
}

func describe(tmpl *template.Template, m Metric) string {
	if tmpl == nil {
		return ""
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, m); err != nil {
		return m.ValueUnit()
	}
	return b.String()
}

// Contexts is a registry of contexts by name. It always knows the "default"
// context (a ScalarContext without thresholds) and the "null" context.
type Contexts struct {
	byName map[string]Context
}

// NewContexts returns a registry holding the built-in contexts.
func NewContexts() *Contexts {
	def, _ := NewScalarContext("default", threshold.Threshold{}, "")
	c := &Contexts{byName: make(map[string]Context)}
	c.Add(def, NullContext())
	return c
}

// Add registers contexts, replacing any with the same name.
func (c *Contexts) Add(contexts ...Context) {
	for _, ctx := range contexts {
		c.byName[ctx.Name()] = ctx
	}
}

// Get looks up a context by name.
func (c *Contexts) Get(name string) (Context, error) {
	ctx, ok := c.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownContext, name)
	}
	return ctx, nil
}

// Contains reports whether name is registered.
func (c *Contexts) Contains(name string) bool {
	_, ok := c.byName[name]
	return ok
}

// Names returns all registered names in sorted order.
func (c *Contexts) Names() []string {
	names := make([]string, 0, len(c.byName))
	for n := range c.byName {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}
