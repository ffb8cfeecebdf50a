// Package disk probes filesystem capacity.
package disk

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"

	"github.com/danpilch/nagkit/pkg/check"
	"github.com/danpilch/nagkit/pkg/collectors"
)

// Context names of the disk metrics.
const (
	ContextUsed = "disk"
	ContextFree = "disk_free"
)

// Resource reports used percent and free bytes of each mount point.
type Resource struct {
	paths []string
	usage func(string) (*Filesystem, error)
}

// New creates a disk resource. Without paths the root filesystem is
// probed.
func New(paths ...string) *Resource {
	if len(paths) == 0 {
		paths = []string{"/"}
	}
	return &Resource{paths: paths, usage: GetFilesystemUsage}
}

// Name returns the resource name.
func (r *Resource) Name() string {
	return "disk"
}

// Filesystem represents a mounted filesystem.
type Filesystem struct {
	MountPoint string
	Total      uint64
	Used       uint64
	Available  uint64
}

// UsedPercent returns the share of blocks in use.
func (fs *Filesystem) UsedPercent() float64 {
	if fs.Total == 0 {
		return 0
	}
	return float64(fs.Used) / float64(fs.Total) * 100
}

// GetFilesystemUsage returns filesystem capacity using statfs.
func GetFilesystemUsage(mountPoint string) (*Filesystem, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(mountPoint, &stat); err != nil {
		return nil, err
	}

	blockSize := uint64(stat.Bsize)
	total := stat.Blocks * blockSize
	available := stat.Bavail * blockSize
	used := total - (stat.Bfree * blockSize)

	return &Filesystem{
		MountPoint: mountPoint,
		Total:      total,
		Used:       used,
		Available:  available,
	}, nil
}

// Probe stats every path. A failing path is logged and skipped; the probe
// only fails when no path could be read.
func (r *Resource) Probe(ctx context.Context, log logrus.FieldLogger) ([]check.Metric, error) {
	var (
		metrics []check.Metric
		errs    []error
	)
	for _, p := range r.paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fs, err := r.usage(p)
		if err != nil {
			log.WithError(err).Warnf("cannot stat %s", p)
			errs = append(errs, fmt.Errorf("%s: %w", p, err))
			continue
		}
		if fs.Total == 0 {
			log.Infof("skipping %s: no blocks", p)
			continue
		}
		log.Infof("%s used: %s / total: %s", p, collectors.FormatBytes(fs.Used), collectors.FormatBytes(fs.Total))
		metrics = append(metrics,
			check.Metric{
				Name: p, Value: fs.UsedPercent(), Unit: "%",
				Min: check.Float(0), Max: check.Float(100), Context: ContextUsed,
			},
			check.Metric{
				Name: p + " free", Value: float64(fs.Available), Unit: "B",
				Min: check.Float(0), Max: check.Float(float64(fs.Total)), Context: ContextFree,
			},
		)
	}
	if len(metrics) == 0 && len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return metrics, nil
}
