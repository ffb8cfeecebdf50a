package check

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danpilch/nagkit/pkg/state"
	"github.com/danpilch/nagkit/pkg/threshold"
)

func TestBasicContext(t *testing.T) {
	t.Parallel()

	t.Run("no description by default", func(t *testing.T) {
		c, err := NewContext("ctx", "")
		require.NoError(t, err)
		assert.Equal(t, "", c.Describe(Metric{Name: "m", Value: 0}))
	})
	t.Run("format template", func(t *testing.T) {
		c, err := NewContext("describe_template", "{{.Name}} is {{.ValueUnit}} (min {{with .Min}}{{.}}{{end}})")
		require.NoError(t, err)
		assert.Equal(t, "foo is 1s (min 0)", c.Describe(Metric{Name: "foo", Value: 1, Unit: "s", Min: Float(0)}))
	})
	t.Run("bad template", func(t *testing.T) {
		_, err := NewContext("broken", "{{.Name")
		assert.ErrorContains(t, err, "broken")
	})
	t.Run("evaluates to ok with performance", func(t *testing.T) {
		c, err := NewContext("ctx", "")
		require.NoError(t, err)
		m := Metric{Name: "m", Value: 99, Unit: "%", Max: Float(100)}
		res := c.Evaluate(m, nil)
		assert.Equal(t, state.OK, res.State)
		assert.Equal(t, "99%", res.String())
		p, ok := c.Performance(m, nil)
		require.True(t, ok)
		assert.Equal(t, "m=99%;;;;100", p.String())
	})
	t.Run("null context has no performance", func(t *testing.T) {
		_, ok := NullContext().Performance(Metric{Name: "m", Value: 1}, nil)
		assert.False(t, ok)
		assert.Equal(t, "null", NullContext().Name())
	})
}

func TestScalarContext(t *testing.T) {
	t.Parallel()

	th, err := threshold.New("1:2", "0:4")
	require.NoError(t, err)
	c, err := NewScalarContext("ctx", th, "")
	require.NoError(t, err)

	tests := []struct {
		value any
		want  state.Code
	}{
		{1, state.OK},
		{3, state.Warning},
		{5, state.Critical},
		{"n/a", state.Unknown},
	}
	for _, tt := range tests {
		m := Metric{Name: "time", Value: tt.value}
		res := c.Evaluate(m, nil)
		assert.Equal(t, tt.want, res.State, "value %v", tt.value)
		assert.Equal(t, "time is "+displayValue(tt.value), res.Hint)
		require.NotNil(t, res.Metric)
		assert.Equal(t, "time", res.Metric.Name)
	}

	t.Run("accepts unrestricted threshold", func(t *testing.T) {
		c, err := NewScalarContext("ctx", threshold.Threshold{}, "")
		require.NoError(t, err)
		assert.Equal(t, threshold.Range{}, c.Threshold().Warning())
		assert.Equal(t, threshold.Range{}, c.Threshold().Critical())
	})
	t.Run("messages replace description", func(t *testing.T) {
		c, err := NewScalarContext("ctx", th, "")
		require.NoError(t, err)
		c.WithMessages(threshold.Messages{threshold.KeyCritical: "$value exceeds $range"})
		assert.Equal(t, "5 exceeds 4", c.Evaluate(Metric{Name: "time", Value: 5}, nil).Hint)
		assert.Equal(t, "time is 3", c.Evaluate(Metric{Name: "time", Value: 3}, nil).Hint)
	})
}

func TestContexts(t *testing.T) {
	t.Parallel()

	ctxs := NewContexts()
	foo, err := NewContext("foo", "")
	require.NoError(t, err)
	ctxs.Add(foo)

	assert.True(t, ctxs.Contains("foo"))
	assert.False(t, ctxs.Contains("bar"))
	assert.Equal(t, []string{"default", "foo", "null"}, ctxs.Names())

	_, err = ctxs.Get("bar")
	assert.True(t, errors.Is(err, ErrUnknownContext))

	got, err := ctxs.Get("foo")
	require.NoError(t, err)
	assert.Same(t, foo, got)
}
