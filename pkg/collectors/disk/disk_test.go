package disk

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danpilch/nagkit/pkg/check"
)

func fakeUsage(known map[string]*Filesystem) func(string) (*Filesystem, error) {
	return func(p string) (*Filesystem, error) {
		fs, ok := known[p]
		if !ok {
			return nil, errors.New("no such file or directory")
		}
		return fs, nil
	}
}

func TestProbe(t *testing.T) {
	t.Parallel()

	r := New("/", "/missing", "/empty")
	r.usage = fakeUsage(map[string]*Filesystem{
		"/":      {MountPoint: "/", Total: 1000, Used: 250, Available: 700},
		"/empty": {MountPoint: "/empty"},
	})

	metrics, err := r.Probe(context.Background(), logrus.New())
	require.NoError(t, err)
	require.Len(t, metrics, 2)

	assert.Equal(t, "/", metrics[0].Name)
	assert.Equal(t, 25.0, metrics[0].Value)
	assert.Equal(t, ContextUsed, metrics[0].Context)
	assert.Equal(t, "/ free", metrics[1].Name)
	assert.Equal(t, 700.0, metrics[1].Value)
	assert.Equal(t, "B", metrics[1].Unit)
	assert.Equal(t, 1000.0, *metrics[1].Max)
}

func TestProbeAllFail(t *testing.T) {
	t.Parallel()

	r := New("/a", "/b")
	r.usage = fakeUsage(nil)
	_, err := r.Probe(context.Background(), logrus.New())
	assert.ErrorContains(t, err, "/a: no such file")
	assert.ErrorContains(t, err, "/b: no such file")
}

func TestCheckAllFail(t *testing.T) {
	t.Parallel()

	r := New("/a", "/b")
	r.usage = fakeUsage(nil)
	c := check.New("disk").AddResources(r)

	out, code := (&check.Runtime{}).Execute(context.Background(), c)
	assert.Equal(t, 3, code)
	assert.Equal(t, "DISK UNKNOWN - /a: no such file or directory\n/b: no such file or directory\n", out)
}

func TestDefaultPath(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"/"}, New().paths)
}

func TestGetFilesystemUsage(t *testing.T) {
	t.Parallel()

	fs, err := GetFilesystemUsage(t.TempDir())
	require.NoError(t, err)
	assert.Positive(t, fs.Total)
	assert.LessOrEqual(t, fs.Used, fs.Total)

	_, err = GetFilesystemUsage("/nonexistent/nagkit")
	assert.Error(t, err)
}
