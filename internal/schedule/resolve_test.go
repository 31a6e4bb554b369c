package schedule

import (
	"errors"
	"math"
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, src string) *Schedule {
	t.Helper()
	s, err := Parse(src)
	require.NoError(t, err)
	return s
}

func TestResolveExactTotal(t *testing.T) {
	s := mustParse(t, "4 : 0.6\n2 : 0.85\n7 : 0.9\n1 : 0")
	plan, err := Resolve(s, 14)
	require.NoError(t, err)

	want := []float64{.6, .6, .6, .6, .85, .85, .9, .9, .9, .9, .9, .9, .9, 0}
	if diff := cmp.Diff(want, plan.Values()); diff != "" {
		t.Fatalf("plan mismatch (-want +got):\n%s", diff)
	}
	assert.Nil(t, plan.Truncation())
}

func TestResolveHoldsLastStrength(t *testing.T) {
	s := mustParse(t, "2 : 0.8\n3 : 0.4")
	plan, err := Resolve(s, 8)
	require.NoError(t, err)

	want := []float64{.8, .8, .4, .4, .4, .4, .4, .4}
	if diff := cmp.Diff(want, plan.Values()); diff != "" {
		t.Fatalf("plan mismatch (-want +got):\n%s", diff)
	}
	assert.Nil(t, plan.Truncation())
}

func TestResolveHoldsZeroLengthLastSegment(t *testing.T) {
	s := mustParse(t, "2 : 0.8\n0 : 0.1")
	plan, err := Resolve(s, 4)
	require.NoError(t, err)
	assert.Equal(t, []float64{.8, .8, .1, .1}, plan.Values())
}

func TestResolveTruncates(t *testing.T) {
	s := mustParse(t, "2 : 0.8\n3 : 0.4\n9 : 0.0")
	plan, err := Resolve(s, 4)
	require.NoError(t, err)

	assert.Equal(t, []float64{.8, .8, .4, .4}, plan.Values())

	warning := plan.Truncation()
	require.NotNil(t, warning)
	assert.Equal(t, 14, warning.DeclaredSteps)
	assert.Equal(t, 4, warning.TotalSteps)
	assert.Equal(t, 2, warning.TruncatedSegment)
	assert.Equal(t, 1, warning.DroppedSegments)
	assert.Contains(t, warning.String(), "14 steps")
}

func TestResolveTruncatesOnBoundary(t *testing.T) {
	s := mustParse(t, "2 : 0.8\n3 : 0.4\n9 : 0.0")
	plan, err := Resolve(s, 5)
	require.NoError(t, err)

	assert.Equal(t, []float64{.8, .8, .4, .4, .4}, plan.Values())
	require.NotNil(t, plan.Truncation())
	assert.Equal(t, 0, plan.Truncation().TruncatedSegment)
	assert.Equal(t, 1, plan.Truncation().DroppedSegments)
}

func TestResolveHugeRunLengths(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		want     []float64
		declared int
		cut      int
		dropped  int
	}{
		{
			name:     "max int first segment",
			src:      strconv.Itoa(math.MaxInt) + " : 0.5\n1 : 0.3",
			want:     []float64{.5, .5, .5, .5, .5, .5, .5, .5, .5, .5},
			declared: math.MaxInt,
			cut:      1,
			dropped:  1,
		},
		{
			name:     "declared sum overflows",
			src:      "4611686018427387904 : 0.5\n4611686018427387904 : 0.3",
			want:     []float64{.5, .5, .5, .5, .5, .5, .5, .5, .5, .5},
			declared: math.MaxInt,
			cut:      1,
			dropped:  1,
		},
		{
			name:     "max int middle segment",
			src:      "1 : 0.5\n" + strconv.Itoa(math.MaxInt) + " : 0.3\n1 : 0.1",
			want:     []float64{.5, .3, .3, .3, .3, .3, .3, .3, .3, .3},
			declared: math.MaxInt,
			cut:      2,
			dropped:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := Resolve(mustParse(t, tt.src), 10)
			require.NoError(t, err)
			assert.Equal(t, tt.want, plan.Values())

			warning := plan.Truncation()
			require.NotNil(t, warning)
			assert.Equal(t, tt.declared, warning.DeclaredSteps)
			assert.Equal(t, 10, warning.TotalSteps)
			assert.Equal(t, tt.cut, warning.TruncatedSegment)
			assert.Equal(t, tt.dropped, warning.DroppedSegments)
		})
	}
}

func TestResolveHugeRunLengthFromNew(t *testing.T) {
	s, err := New([]Segment{
		{RunLength: Steps(1), Strength: .5},
		{RunLength: Steps(math.MaxInt), Strength: .3},
		{RunLength: Steps(1), Strength: .1},
	})
	require.NoError(t, err)

	plan, err := Resolve(s, 10)
	require.NoError(t, err)
	assert.Equal(t, 10, plan.Len())
	assert.Equal(t, .3, plan.At(9))
	require.NotNil(t, plan.Truncation())
	assert.Equal(t, math.MaxInt, plan.Truncation().DeclaredSteps)
	assert.Equal(t, math.MaxInt, s.Total())
}

func TestResolveRemainder(t *testing.T) {
	s := mustParse(t, "2 : 1.0\n* : 0.25")

	plan, err := Resolve(s, 6)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1, .25, .25, .25, .25}, plan.Values())
	assert.Nil(t, plan.Truncation())

	// The remainder gets nothing when the fixed part fills the run exactly.
	plan, err = Resolve(s, 2)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1}, plan.Values())
	assert.Nil(t, plan.Truncation())

	plan, err = Resolve(s, 1)
	require.NoError(t, err)
	assert.Equal(t, []float64{1}, plan.Values())
	require.NotNil(t, plan.Truncation())
	assert.Equal(t, 1, plan.Truncation().DroppedSegments)
}

func TestResolveConstant(t *testing.T) {
	plan, err := Resolve(mustParse(t, "0.7"), 3)
	require.NoError(t, err)
	assert.Equal(t, []float64{.7, .7, .7}, plan.Values())
}

func TestResolveRelative(t *testing.T) {
	s, err := ParseRelative("0.2 : 0.9\n0.6 : 0.4\n0.2 : 0.0")
	require.NoError(t, err)

	plan, err := Resolve(s, 10)
	require.NoError(t, err)
	assert.Equal(t, []float64{.9, .9, .4, .4, .4, .4, .4, .4, 0, 0}, plan.Values())

	// 7 steps: quotas 1.4, 4.2, 1.4; the spare step goes to the earliest
	// of the tied largest fractions.
	plan, err = Resolve(s, 7)
	require.NoError(t, err)
	assert.Equal(t, []float64{.9, .9, .4, .4, .4, .4, 0}, plan.Values())
	assert.Nil(t, plan.Truncation())
}

func TestResolveRelativeZeroSum(t *testing.T) {
	s, err := ParseRelative("0 : 1\n0 : 0")
	require.NoError(t, err)

	_, err = Resolve(s, 10)
	var resErr *ResolutionError
	require.ErrorAs(t, err, &resErr)
}

func TestResolveErrors(t *testing.T) {
	s := mustParse(t, "2 : 0.8")

	for _, total := range []int{0, -3} {
		_, err := Resolve(s, total)
		var resErr *ResolutionError
		require.True(t, errors.As(err, &resErr), "total %d: expected ResolutionError, got %v", total, err)
		assert.Equal(t, total, resErr.TotalSteps)
		assert.ErrorIs(t, err, ErrInvalidTotalSteps)
	}

	_, err := Resolve(nil, 4)
	assert.ErrorIs(t, err, ErrEmptySchedule)
}

func TestPlanAtClamps(t *testing.T) {
	plan, err := Resolve(mustParse(t, "2 : 0.8\n3 : 0.4\n1 : 0.1"), 6)
	require.NoError(t, err)

	assert.Equal(t, 0.8, plan.At(0))
	assert.Equal(t, 0.1, plan.At(5))
	assert.Equal(t, 0.1, plan.At(6))
	assert.Equal(t, 0.1, plan.At(1000))
	assert.Equal(t, 0.8, plan.At(-1))

	var empty *Plan
	assert.Equal(t, 0.0, empty.At(3))
}

func TestPlanValuesIsACopy(t *testing.T) {
	plan, err := Resolve(mustParse(t, "3 : 0.5"), 3)
	require.NoError(t, err)

	values := plan.Values()
	values[0] = 9
	assert.Equal(t, 0.5, plan.At(0))
}
