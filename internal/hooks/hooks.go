// Package hooks turns combined adapter plans into the per-step callbacks a
// host sampler invokes.
//
// Every lookup is a direct index into a precomputed plan. Out-of-range steps
// are clamped, so nothing on the per-step path can fail or allocate beyond
// the returned map.
package hooks

import (
	"errors"
	"fmt"

	"github.com/opencode-ai/lorasched/internal/schedule"
	"github.com/opencode-ai/lorasched/internal/stack"
)

// Hook errors.
var (
	ErrNoPlans          = errors.New("no adapter plans")
	ErrNoChannels       = errors.New("no channels requested")
	ErrDuplicateAdapter = errors.New("adapter already hooked on channel")
)

// Callback is the host-facing per-step function. It receives the current
// step index and the host's total step count and returns each hooked
// adapter's strength.
type Callback func(step, totalSteps int) map[string]float64

// Strength is one adapter's strength at a step.
type Strength struct {
	AdapterID string  `json:"adapter_id"`
	Value     float64 `json:"value"`
}

type entry struct {
	adapterID string
	plan      *schedule.Plan
}

// Hook serves per-step strengths for one conditioning channel.
type Hook struct {
	channel stack.Channel
	entries []entry
}

// Channel returns the conditioning stream the hook is attached to.
func (h *Hook) Channel() stack.Channel {
	return h.channel
}

// AdapterIDs returns the hooked adapters in registration order.
func (h *Hook) AdapterIDs() []string {
	ids := make([]string, len(h.entries))
	for i, e := range h.entries {
		ids[i] = e.adapterID
	}
	return ids
}

// Strengths returns each adapter's strength at step.
func (h *Hook) Strengths(step int) map[string]float64 {
	out := make(map[string]float64, len(h.entries))
	for _, e := range h.entries {
		out[e.adapterID] = e.plan.At(step)
	}
	return out
}

// Entries returns each adapter's strength at step in registration order.
func (h *Hook) Entries(step int) []Strength {
	out := make([]Strength, len(h.entries))
	for i, e := range h.entries {
		out[i] = Strength{AdapterID: e.adapterID, Value: e.plan.At(step)}
	}
	return out
}

// Callback adapts the hook to the host callback signature. The host's
// totalSteps is informational; lookups always use the planned length and
// clamp past its end.
func (h *Hook) Callback() Callback {
	return func(step, _ int) map[string]float64 {
		return h.Strengths(step)
	}
}

// Patch is what the adapter-patching collaborator consumes for one adapter.
type Patch struct {
	AdapterID string

	// StrengthAt returns the model-side strength for a step.
	StrengthAt func(step int) float64

	// ClipStrength is the static text-encoder strength: the schedule's peak.
	ClipStrength float64
}

// HookSet is the set of per-channel hooks for one sampling run.
type HookSet struct {
	totalSteps int
	hooks      []*Hook
	patches    []Patch
}

// Emit builds one hook per requested channel. Each hook carries the
// adapters bound to that channel, in binding order.
func Emit(plans *stack.PlanSet, channels stack.ChannelSet) (*HookSet, error) {
	if plans == nil || plans.Len() == 0 {
		return nil, ErrNoPlans
	}
	if len(channels.List()) == 0 {
		return nil, ErrNoChannels
	}

	set := &HookSet{totalSteps: plans.TotalSteps()}
	ids := plans.IDs()

	for _, ch := range channels.List() {
		hook := &Hook{channel: ch}
		for _, id := range ids {
			if !plans.Channels(id).Has(ch) {
				continue
			}
			plan, _ := plans.Plan(id)
			hook.entries = append(hook.entries, entry{adapterID: id, plan: plan})
		}
		set.hooks = append(set.hooks, hook)
	}

	for _, id := range ids {
		if plans.Channels(id)&channels == 0 {
			continue
		}
		plan, _ := plans.Plan(id)
		set.patches = append(set.patches, Patch{
			AdapterID:    id,
			StrengthAt:   plan.At,
			ClipStrength: plans.Peak(id),
		})
	}

	return set, nil
}

// TotalSteps returns the step count the hooks were planned for.
func (s *HookSet) TotalSteps() int {
	return s.totalSteps
}

// Hooks returns the hooks in channel registration order.
func (s *HookSet) Hooks() []*Hook {
	return append([]*Hook(nil), s.hooks...)
}

// Hook returns the hook for a channel.
func (s *HookSet) Hook(ch stack.Channel) (*Hook, bool) {
	for _, h := range s.hooks {
		if h.channel == ch {
			return h, true
		}
	}
	return nil, false
}

// Callbacks returns the host callback for each emitted channel.
func (s *HookSet) Callbacks() map[stack.Channel]Callback {
	out := make(map[stack.Channel]Callback, len(s.hooks))
	for _, h := range s.hooks {
		out[h.channel] = h.Callback()
	}
	return out
}

// Patches returns the adapter-patch list, stable for the run's lifetime.
func (s *HookSet) Patches() []Patch {
	return append([]Patch(nil), s.patches...)
}

// Append merges added onto existing the way conditioning hooks stack:
// existing hooks first, then the new ones, per channel. An adapter may
// appear only once per channel. Both sets must share a step count.
func Append(existing, added *HookSet) (*HookSet, error) {
	if existing == nil {
		return added, nil
	}
	if added == nil {
		return existing, nil
	}
	if existing.totalSteps != added.totalSteps {
		return nil, fmt.Errorf("cannot append hooks planned for %d steps to hooks planned for %d steps",
			added.totalSteps, existing.totalSteps)
	}

	merged := &HookSet{totalSteps: existing.totalSteps}
	for _, ch := range stack.Channels {
		a, okA := existing.Hook(ch)
		b, okB := added.Hook(ch)
		if !okA && !okB {
			continue
		}

		hook := &Hook{channel: ch}
		seen := make(map[string]struct{})
		for _, src := range []*Hook{a, b} {
			if src == nil {
				continue
			}
			for _, e := range src.entries {
				if _, dup := seen[e.adapterID]; dup {
					return nil, fmt.Errorf("%w: %s on %s", ErrDuplicateAdapter, e.adapterID, ch)
				}
				seen[e.adapterID] = struct{}{}
				hook.entries = append(hook.entries, e)
			}
		}
		merged.hooks = append(merged.hooks, hook)
	}

	seenPatch := make(map[string]struct{})
	for _, p := range append(existing.Patches(), added.Patches()...) {
		if _, dup := seenPatch[p.AdapterID]; dup {
			continue
		}
		seenPatch[p.AdapterID] = struct{}{}
		merged.patches = append(merged.patches, p)
	}

	return merged, nil
}
