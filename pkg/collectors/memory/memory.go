// Package memory probes RAM and swap usage.
package memory

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v3/mem"
	"github.com/sirupsen/logrus"

	"github.com/danpilch/nagkit/pkg/check"
	"github.com/danpilch/nagkit/pkg/collectors"
)

// Resource reports used memory and swap in percent.
type Resource struct {
	virtual func(context.Context) (*mem.VirtualMemoryStat, error)
	swap    func(context.Context) (*mem.SwapMemoryStat, error)
}

// New creates a memory resource.
func New() *Resource {
	return &Resource{
		virtual: mem.VirtualMemoryWithContext,
		swap:    mem.SwapMemoryWithContext,
	}
}

// Name returns the resource name.
func (r *Resource) Name() string {
	return "memory"
}

// Probe reads memory statistics. The swap metric is left out on hosts
// without swap.
func (r *Resource) Probe(ctx context.Context, log logrus.FieldLogger) ([]check.Metric, error) {
	vm, err := r.virtual(ctx)
	if err != nil {
		return nil, fmt.Errorf("cannot read memory statistics: %w", err)
	}
	log.WithFields(logrus.Fields{
		"total":     vm.Total,
		"available": vm.Available,
	}).Infof("memory used: %s", collectors.FormatBytes(vm.Used))

	metrics := []check.Metric{percent("memory", vm.UsedPercent)}

	sw, err := r.swap(ctx)
	switch {
	case err != nil:
		log.WithError(err).Warn("cannot read swap statistics")
	case sw.Total == 0:
		log.Info("no swap configured")
	default:
		log.Infof("swap used: %s of %s", collectors.FormatBytes(sw.Used), collectors.FormatBytes(sw.Total))
		metrics = append(metrics, percent("swap", sw.UsedPercent))
	}
	return metrics, nil
}

func percent(name string, v float64) check.Metric {
	return check.Metric{Name: name, Value: v, Unit: "%", Min: check.Float(0), Max: check.Float(100)}
}
