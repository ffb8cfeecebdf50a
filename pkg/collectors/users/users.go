// Package users counts logged in users.
package users

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v3/host"
	"github.com/sirupsen/logrus"

	"github.com/danpilch/nagkit/pkg/check"
)

// Resource reports the number of login sessions, or of distinct users when
// unique is set.
type Resource struct {
	unique bool
	users  func(context.Context) ([]host.UserStat, error)
}

// New creates a users resource.
func New(unique bool) *Resource {
	return &Resource{unique: unique, users: host.UsersWithContext}
}

// Name returns the resource name.
func (r *Resource) Name() string {
	return "users"
}

// Probe counts the entries of the login records.
func (r *Resource) Probe(ctx context.Context, log logrus.FieldLogger) ([]check.Metric, error) {
	sessions, err := r.users(ctx)
	if err != nil {
		return nil, fmt.Errorf("cannot list users: %w", err)
	}

	names := make(map[string]struct{}, len(sessions))
	for _, s := range sessions {
		log.WithField("terminal", s.Terminal).Debugf("session of %s", s.User)
		names[s.User] = struct{}{}
	}

	count := len(sessions)
	if r.unique {
		count = len(names)
	}
	log.Infof("%d sessions, %d distinct users", len(sessions), len(names))
	return []check.Metric{{Name: "users", Value: float64(count), Min: check.Float(0)}}, nil
}
