// Package load probes the system load averages.
package load

import (
	"context"
	"fmt"
	"strings"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/sirupsen/logrus"

	"github.com/danpilch/nagkit/pkg/check"
)

// Names are the metric and context names, in threshold order.
var Names = []string{"load1", "load5", "load15"}

// Resource reports the 1, 5 and 15 minute load averages.
type Resource struct {
	perCPU bool
	avg    func(context.Context) (*load.AvgStat, error)
	cpus   func(context.Context) (int, error)
}

// New creates a load resource. With perCPU the averages are divided by the
// number of logical CPUs.
func New(perCPU bool) *Resource {
	return &Resource{
		perCPU: perCPU,
		avg:    load.AvgWithContext,
		cpus: func(ctx context.Context) (int, error) {
			return cpu.CountsWithContext(ctx, true)
		},
	}
}

// Name returns the resource name.
func (r *Resource) Name() string {
	return "load"
}

// Probe reads the load averages.
func (r *Resource) Probe(ctx context.Context, log logrus.FieldLogger) ([]check.Metric, error) {
	stat, err := r.avg(ctx)
	if err != nil {
		return nil, fmt.Errorf("cannot read load averages: %w", err)
	}
	values := []float64{stat.Load1, stat.Load5, stat.Load15}
	log.Infof("probed load values: %v", values)

	if r.perCPU {
		n, err := r.cpus(ctx)
		if err != nil {
			return nil, fmt.Errorf("cannot count cpus: %w", err)
		}
		log.Infof("cpus counted: %d", n)
		if n > 1 && n%2 != 0 {
			log.Warnf("odd number of cpus: %d", n)
		}
		if n > 0 {
			for i := range values {
				values[i] /= float64(n)
			}
		}
	}

	metrics := make([]check.Metric, len(values))
	for i, v := range values {
		metrics[i] = check.Metric{Name: Names[i], Value: v, Min: check.Float(0)}
	}
	return metrics, nil
}

// Summary reports all three averages on the status line when the load is
// fine.
type Summary struct {
	check.DefaultSummary
}

// OK lists the averages, e.g. "loadavg is 0.52, 0.58, 0.59".
func (Summary) OK(results *check.Results) string {
	var parts []string
	for _, name := range Names {
		if r, ok := results.Get(name); ok && r.Metric != nil {
			parts = append(parts, r.Metric.ValueUnit())
		}
	}
	return "loadavg is " + strings.Join(parts, ", ")
}
