// Package collectors provides the probes a check can run. Every collector
// implements check.Resource.
package collectors

import (
	"fmt"

	"github.com/danpilch/nagkit/pkg/check"
)

// Registry holds the resources selected for a check run.
type Registry struct {
	resources []check.Resource
}

// NewRegistry creates a new resource registry.
func NewRegistry() *Registry {
	return &Registry{
		resources: make([]check.Resource, 0),
	}
}

// Register adds a resource to the registry.
func (r *Registry) Register(res check.Resource) {
	r.resources = append(r.resources, res)
}

// Resources returns all registered resources in registration order.
func (r *Registry) Resources() []check.Resource {
	return r.resources
}

// Wrap replaces every registered resource with wrap(resource).
func (r *Registry) Wrap(wrap func(check.Resource) check.Resource) {
	for i, res := range r.resources {
		r.resources[i] = wrap(res)
	}
}

// FormatBytes formats bytes into human-readable format.
func FormatBytes(b uint64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := uint64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}
