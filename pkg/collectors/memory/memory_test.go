package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/shirou/gopsutil/v3/mem"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fake(vmPct float64, swapTotal uint64, swapPct float64, swapErr error) *Resource {
	return &Resource{
		virtual: func(context.Context) (*mem.VirtualMemoryStat, error) {
			return &mem.VirtualMemoryStat{Total: 8 << 30, Used: 2 << 30, UsedPercent: vmPct}, nil
		},
		swap: func(context.Context) (*mem.SwapMemoryStat, error) {
			if swapErr != nil {
				return nil, swapErr
			}
			return &mem.SwapMemoryStat{Total: swapTotal, Used: swapTotal / 2, UsedPercent: swapPct}, nil
		},
	}
}

func TestProbe(t *testing.T) {
	t.Parallel()

	metrics, err := fake(25, 1<<30, 50, nil).Probe(context.Background(), logrus.New())
	require.NoError(t, err)
	require.Len(t, metrics, 2)
	assert.Equal(t, "memory", metrics[0].Name)
	assert.Equal(t, 25.0, metrics[0].Value)
	assert.Equal(t, "%", metrics[0].Unit)
	assert.Equal(t, 100.0, *metrics[0].Max)
	assert.Equal(t, "swap", metrics[1].Name)
	assert.Equal(t, 50.0, metrics[1].Value)
}

func TestProbeWithoutSwap(t *testing.T) {
	t.Parallel()

	metrics, err := fake(25, 0, 0, nil).Probe(context.Background(), logrus.New())
	require.NoError(t, err)
	require.Len(t, metrics, 1)

	metrics, err = fake(25, 0, 0, errors.New("denied")).Probe(context.Background(), logrus.New())
	require.NoError(t, err)
	require.Len(t, metrics, 1)
}

func TestProbeError(t *testing.T) {
	t.Parallel()

	r := New()
	r.virtual = func(context.Context) (*mem.VirtualMemoryStat, error) { return nil, errors.New("no procfs") }
	_, err := r.Probe(context.Background(), logrus.New())
	assert.ErrorContains(t, err, "no procfs")
}
