package threshold

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danpilch/nagkit/pkg/state"
)

func mustNew(t *testing.T, w, c string) Threshold {
	t.Helper()
	th, err := New(w, c)
	require.NoError(t, err)
	return th
}

func TestThresholdMatch(t *testing.T) {
	t.Parallel()

	t.Run("warning with message", func(t *testing.T) {
		s := mustNew(t, "1:5", "").Match(6, Messages{KeyWarning: "warn!"})
		assert.Equal(t, state.Warning, s.Code())
		assert.Equal(t, "warn!", s.Headline())
	})
	t.Run("critical checked first", func(t *testing.T) {
		s := mustNew(t, "", "0:10").Match(15, nil)
		assert.Equal(t, state.Critical, s.Code())
		assert.Empty(t, s.Messages())

		s = mustNew(t, "0:5", "0:10").Match(15, nil)
		assert.Equal(t, state.Critical, s.Code())
	})
	t.Run("ok inside both", func(t *testing.T) {
		s := mustNew(t, "0:5", "0:10").Match(3, nil)
		assert.Equal(t, state.OK, s.Code())
	})
	t.Run("default threshold is always ok", func(t *testing.T) {
		var th Threshold
		blank := mustNew(t, "", " ")
		for _, v := range []float64{0, 1, 1e12, 0.001, -1, -1e12, math.Inf(1), math.Inf(-1)} {
			assert.Equal(t, state.OK, th.Match(v, nil).Code(), "value %v", v)
			assert.Equal(t, state.OK, blank.Match(v, nil).Code(), "value %v", v)
		}
	})
	t.Run("unset side is skipped", func(t *testing.T) {
		assert.Equal(t, state.OK, mustNew(t, "", "10").Match(-5, nil).Code())
		assert.Equal(t, state.Critical, mustNew(t, "", "~:10").Match(11, nil).Code())
		assert.Equal(t, state.Warning, mustNew(t, "5", "").Match(-1, nil).Code())
	})
	t.Run("explicit ranges are consulted", func(t *testing.T) {
		th := FromRanges(Range{}, Range{})
		assert.Equal(t, state.Critical, th.Match(-1, nil).Code())
		assert.Equal(t, state.OK, th.Match(1, nil).Code())
	})
	t.Run("other numeric kinds", func(t *testing.T) {
		th := mustNew(t, "10", "20")
		assert.Equal(t, state.Warning, th.Match(int64(11), nil).Code())
		assert.Equal(t, state.Critical, th.Match(uint8(21), nil).Code())
		assert.Equal(t, state.OK, th.Match(float32(9.5), nil).Code())
	})
	t.Run("non numeric is unknown", func(t *testing.T) {
		th := mustNew(t, "10", "20")
		msgs := Messages{KeyUnknown: "bad value $value"}
		s := th.Match("eleven", msgs)
		assert.Equal(t, state.Unknown, s.Code())
		assert.Equal(t, "bad value eleven", s.Headline())
		assert.Equal(t, state.Unknown, th.Match(nil, nil).Code())
		assert.Equal(t, state.Unknown, th.Match(math.NaN(), nil).Code())
	})
}

func TestThresholdMessages(t *testing.T) {
	t.Parallel()

	th := mustNew(t, "5", "10")
	msgs := Messages{
		KeyCritical: "value $value outside ${range}",
		KeyDefault:  "fallback $value",
	}
	assert.Equal(t, "value 12.5 outside 10", th.Match(12.5, msgs).Headline())
	assert.Equal(t, "fallback 7", th.Match(7, msgs).Headline())
	assert.Equal(t, "fallback 1", th.Match(1, msgs).Headline())
	assert.Equal(t, "keep $other", th.Match(1, Messages{KeyOK: "keep $other"}).Headline())
}

func TestNewErrors(t *testing.T) {
	t.Parallel()

	_, err := New("4:3", "")
	var fe *FormatError
	require.True(t, errors.As(err, &fe))
	assert.Contains(t, err.Error(), "warning")

	_, err = New("", "x")
	require.True(t, errors.As(err, &fe))
	assert.Contains(t, err.Error(), "critical")
}

func TestCreateMulti(t *testing.T) {
	t.Parallel()

	t.Run("pairs positionally", func(t *testing.T) {
		got, err := CreateMulti([]string{"2", "3"}, []string{"4", "5"}, 0)
		require.NoError(t, err)
		assert.Equal(t, []Threshold{mustNew(t, "2", "4"), mustNew(t, "3", "5")}, got)
	})
	t.Run("defaults up to min length", func(t *testing.T) {
		got, err := CreateMulti(nil, nil, 3)
		require.NoError(t, err)
		assert.Equal(t, []Threshold{{}, {}, {}}, got)
	})
	t.Run("shorter list repeats its last element", func(t *testing.T) {
		got, err := CreateMulti([]string{"1", "2", "3"}, []string{"9"}, 0)
		require.NoError(t, err)
		assert.Equal(t, []Threshold{mustNew(t, "1", "9"), mustNew(t, "2", "9"), mustNew(t, "3", "9")}, got)
	})
	t.Run("empty list fills with unrestricted", func(t *testing.T) {
		got, err := CreateMulti([]string{"1", "2"}, nil, 3)
		require.NoError(t, err)
		assert.Equal(t, []Threshold{mustNew(t, "1", ""), mustNew(t, "2", ""), {}}, got)
	})
	t.Run("longer than min length", func(t *testing.T) {
		got, err := CreateMulti([]string{"1", "2"}, nil, 1)
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})
	t.Run("invalid spec", func(t *testing.T) {
		_, err := CreateMulti([]string{"1", "3:2"}, nil, 0)
		assert.ErrorContains(t, err, "threshold 2")
	})
	t.Run("inputs are not modified", func(t *testing.T) {
		warnings := make([]string, 1, 4)
		warnings[0] = "1"
		_, err := CreateMulti(warnings, []string{"1", "2", "3"}, 0)
		require.NoError(t, err)
		assert.Equal(t, []string{"1", "", "", ""}, warnings[:4])
	})
}

func TestSplitMulti(t *testing.T) {
	t.Parallel()

	assert.Nil(t, SplitMulti(""))
	assert.Nil(t, SplitMulti("  "))
	assert.Equal(t, []string{"5"}, SplitMulti("5"))
	assert.Equal(t, []string{"5", "4", "3"}, SplitMulti("5, 4 ,3"))
	assert.Equal(t, []string{"5", "", "@1:2"}, SplitMulti("5,,@1:2"))
}

func TestToFloat(t *testing.T) {
	t.Parallel()

	type celsius float64
	v, err := ToFloat(celsius(21.5))
	require.NoError(t, err)
	assert.Equal(t, 21.5, v)

	_, err = ToFloat(struct{}{})
	var ee *EvaluationError
	assert.True(t, errors.As(err, &ee))
}

func TestFormatValue(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "1500000", FormatValue(1.5e6))
	assert.Equal(t, "0.25", FormatValue(float32(0.25)))
	assert.Equal(t, "42", FormatValue(42))
	assert.Equal(t, "up", FormatValue("up"))
}
