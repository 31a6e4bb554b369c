package hooks

import (
	"testing"

	"github.com/opencode-ai/lorasched/internal/schedule"
	"github.com/opencode-ai/lorasched/internal/stack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func planSet(t *testing.T, total int, bindings ...stack.Binding) *stack.PlanSet {
	t.Helper()
	set, err := stack.Combine(bindings, total)
	require.NoError(t, err)
	return set
}

func bind(t *testing.T, id, src string, channels stack.ChannelSet) stack.Binding {
	t.Helper()
	s, err := schedule.Parse(src)
	require.NoError(t, err)
	return stack.Binding{AdapterID: id, Schedule: s, Channels: channels}
}

func TestEmitPerChannel(t *testing.T) {
	plans := planSet(t, 14,
		bind(t, "Style", "2 : 0.8\n3 : 0.4\n9 : 0.0", stack.Both),
		bind(t, "Character", "4 : 0.6\n2 : 0.85\n7 : 0.9\n1 : 0", stack.PositiveOnly),
	)

	set, err := Emit(plans, stack.Both)
	require.NoError(t, err)
	require.Len(t, set.Hooks(), 2)
	assert.Equal(t, 14, set.TotalSteps())

	pos, ok := set.Hook(stack.ChannelPositive)
	require.True(t, ok)
	assert.Equal(t, []string{"Style", "Character"}, pos.AdapterIDs())
	assert.Equal(t, map[string]float64{"Style": 0.4, "Character": 0.85}, pos.Strengths(4))

	neg, ok := set.Hook(stack.ChannelNegative)
	require.True(t, ok)
	assert.Equal(t, []string{"Style"}, neg.AdapterIDs())
	assert.Equal(t, map[string]float64{"Style": 0.8}, neg.Strengths(0))

	assert.Equal(t, []Strength{{AdapterID: "Style", Value: 0}, {AdapterID: "Character", Value: 0.9}}, pos.Entries(12))
}

func TestEmitOnlyRequestedChannels(t *testing.T) {
	plans := planSet(t, 4,
		bind(t, "a", "1", stack.NegativeOnly),
		bind(t, "b", "0.5", stack.Both),
	)

	set, err := Emit(plans, stack.PositiveOnly)
	require.NoError(t, err)
	require.Len(t, set.Hooks(), 1)
	_, ok := set.Hook(stack.ChannelNegative)
	assert.False(t, ok)

	patches := set.Patches()
	require.Len(t, patches, 1)
	assert.Equal(t, "b", patches[0].AdapterID)
}

func TestCallbackClampsPastEnd(t *testing.T) {
	plans := planSet(t, 6, bind(t, "a", "2 : 0.8\n3 : 0.4\n1 : 0.1", stack.Both))
	set, err := Emit(plans, stack.Both)
	require.NoError(t, err)

	cb := set.Callbacks()[stack.ChannelPositive]
	require.NotNil(t, cb)

	// The host ran more steps than were planned.
	for step := 0; step < 10; step++ {
		got := cb(step, 10)
		want := []float64{.8, .8, .4, .4, .4, .1, .1, .1, .1, .1}[step]
		assert.Equal(t, want, got["a"], "step %d", step)
	}
}

func TestPatches(t *testing.T) {
	plans := planSet(t, 5,
		bind(t, "a", "2 : 0.8\n3 : 1.3", stack.Both),
		bind(t, "b", "5 : -0.2", stack.NegativeOnly),
	)
	set, err := Emit(plans, stack.Both)
	require.NoError(t, err)

	patches := set.Patches()
	require.Len(t, patches, 2)
	assert.Equal(t, "a", patches[0].AdapterID)
	assert.Equal(t, 1.3, patches[0].ClipStrength)
	assert.Equal(t, 0.8, patches[0].StrengthAt(1))
	assert.Equal(t, 1.3, patches[0].StrengthAt(99))
	assert.Equal(t, -0.2, patches[1].ClipStrength)
}

func TestEmitErrors(t *testing.T) {
	_, err := Emit(nil, stack.Both)
	assert.ErrorIs(t, err, ErrNoPlans)

	plans := planSet(t, 3, bind(t, "a", "1", stack.Both))
	_, err = Emit(plans, 0)
	assert.ErrorIs(t, err, ErrNoChannels)
}

func TestAppend(t *testing.T) {
	first, err := Emit(planSet(t, 4, bind(t, "a", "1", stack.Both)), stack.Both)
	require.NoError(t, err)
	second, err := Emit(planSet(t, 4, bind(t, "b", "0.5", stack.PositiveOnly)), stack.Both)
	require.NoError(t, err)

	merged, err := Append(first, second)
	require.NoError(t, err)

	pos, ok := merged.Hook(stack.ChannelPositive)
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, pos.AdapterIDs())
	neg, ok := merged.Hook(stack.ChannelNegative)
	require.True(t, ok)
	assert.Equal(t, []string{"a"}, neg.AdapterIDs())
	require.Len(t, merged.Patches(), 2)

	same, err := Append(nil, second)
	require.NoError(t, err)
	assert.Same(t, second, same)

	_, err = Append(first, first)
	assert.ErrorIs(t, err, ErrDuplicateAdapter)

	other, err := Emit(planSet(t, 8, bind(t, "c", "1", stack.Both)), stack.Both)
	require.NoError(t, err)
	_, err = Append(first, other)
	assert.Error(t, err)
}
