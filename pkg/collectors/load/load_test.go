package load

import (
	"context"
	"errors"
	"testing"

	"github.com/shirou/gopsutil/v3/load"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danpilch/nagkit/pkg/check"
	"github.com/danpilch/nagkit/pkg/threshold"
)

func fixed(l1, l5, l15 float64, cpus int) *Resource {
	r := New(false)
	r.avg = func(context.Context) (*load.AvgStat, error) {
		return &load.AvgStat{Load1: l1, Load5: l5, Load15: l15}, nil
	}
	r.cpus = func(context.Context) (int, error) { return cpus, nil }
	return r
}

func TestProbe(t *testing.T) {
	t.Parallel()

	metrics, err := fixed(0.52, 0.58, 0.59, 4).Probe(context.Background(), logrus.New())
	require.NoError(t, err)
	require.Len(t, metrics, 3)
	assert.Equal(t, "load1", metrics[0].Name)
	assert.Equal(t, 0.52, metrics[0].Value)
	assert.Equal(t, "load15", metrics[2].Name)
	require.NotNil(t, metrics[2].Min)
	assert.Equal(t, 0.0, *metrics[2].Min)
}

func TestProbePerCPU(t *testing.T) {
	t.Parallel()

	r := fixed(4, 2, 1, 4)
	r.perCPU = true
	metrics, err := r.Probe(context.Background(), logrus.New())
	require.NoError(t, err)
	assert.Equal(t, 1.0, metrics[0].Value)
	assert.Equal(t, 0.5, metrics[1].Value)
	assert.Equal(t, 0.25, metrics[2].Value)
}

func TestProbeError(t *testing.T) {
	t.Parallel()

	r := New(false)
	r.avg = func(context.Context) (*load.AvgStat, error) { return nil, errors.New("no procfs") }
	_, err := r.Probe(context.Background(), logrus.New())
	assert.ErrorContains(t, err, "no procfs")
}

func TestCheck(t *testing.T) {
	t.Parallel()

	thresholds, err := threshold.CreateMulti([]string{"1", "2"}, []string{"5"}, len(Names))
	require.NoError(t, err)

	c := check.New("load").AddResources(fixed(1.5, 0.58, 0.59, 1)).SetSummary(Summary{})
	for i, name := range Names {
		ctx, err := check.NewScalarContext(name, thresholds[i], "")
		require.NoError(t, err)
		c.AddContexts(ctx)
	}

	out, code := (&check.Runtime{}).Execute(context.Background(), c)
	assert.Equal(t, 1, code)
	assert.Equal(t, "LOAD WARNING - load1 is 1.5 | load1=1.5;1;5;0 load15=0.59;;;0 load5=0.58;2;5;0\n", out)

	all, err := threshold.CreateMulti([]string{"1", "2", "3"}, []string{"5"}, len(Names))
	require.NoError(t, err)
	third := check.New("load").AddResources(fixed(0.5, 0.5, 3.5, 1)).SetSummary(Summary{})
	for i, name := range Names {
		ctx, err := check.NewScalarContext(name, all[i], "")
		require.NoError(t, err)
		third.AddContexts(ctx)
	}
	out, code = (&check.Runtime{}).Execute(context.Background(), third)
	assert.Equal(t, 1, code)
	assert.Equal(t, "LOAD WARNING - load15 is 3.5 | load1=0.5;1;5;0 load15=3.5;3;5;0 load5=0.5;2;5;0\n", out)

	ok := check.New("load").AddResources(fixed(0.52, 0.58, 0.59, 1)).SetSummary(Summary{})
	for _, name := range Names {
		ctx, err := check.NewScalarContext(name, threshold.Threshold{}, "")
		require.NoError(t, err)
		ok.AddContexts(ctx)
	}
	require.NoError(t, ok.Run(context.Background()))
	assert.Equal(t, "loadavg is 0.52, 0.58, 0.59", ok.SummaryLine())
}
