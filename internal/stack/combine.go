package stack

import (
	"errors"
	"fmt"
	"strings"

	"github.com/opencode-ai/lorasched/internal/schedule"
)

// Combiner errors.
var (
	ErrNoBindings       = errors.New("no adapter bindings")
	ErrEmptyAdapterID   = errors.New("adapter id is required")
	ErrDuplicateAdapter = errors.New("duplicate adapter id")
)

// CombineError identifies the adapter whose schedule failed to resolve.
type CombineError struct {
	AdapterID string
	Err       error
}

func (e *CombineError) Error() string {
	return fmt.Sprintf("adapter %q: %v", e.AdapterID, e.Err)
}

func (e *CombineError) Unwrap() error {
	return e.Err
}

// AdapterWarning is a truncation warning attributed to an adapter.
type AdapterWarning struct {
	AdapterID string                      `json:"adapter_id"`
	Warning   *schedule.TruncationWarning `json:"warning"`
}

// PlanSet holds one resolved plan per adapter, in binding order.
type PlanSet struct {
	totalSteps int
	order      []string
	plans      map[string]*schedule.Plan
	channels   map[string]ChannelSet
	peaks      map[string]float64
	warnings   []AdapterWarning
}

// Combine resolves every binding against the same step count. Adapters are
// resolved independently and never blended. Any failure aborts the whole
// combination.
func Combine(bindings []Binding, totalSteps int) (*PlanSet, error) {
	if len(bindings) == 0 {
		return nil, ErrNoBindings
	}

	set := &PlanSet{
		totalSteps: totalSteps,
		order:      make([]string, 0, len(bindings)),
		plans:      make(map[string]*schedule.Plan, len(bindings)),
		channels:   make(map[string]ChannelSet, len(bindings)),
		peaks:      make(map[string]float64, len(bindings)),
	}

	for i, b := range bindings {
		id := strings.TrimSpace(b.AdapterID)
		if id == "" {
			return nil, fmt.Errorf("binding %d: %w", i+1, ErrEmptyAdapterID)
		}
		if _, exists := set.plans[id]; exists {
			return nil, &CombineError{AdapterID: id, Err: ErrDuplicateAdapter}
		}

		plan, err := schedule.Resolve(b.Schedule, totalSteps)
		if err != nil {
			return nil, &CombineError{AdapterID: id, Err: err}
		}

		channels := b.Channels
		if channels == 0 {
			channels = Both
		}

		set.order = append(set.order, id)
		set.plans[id] = plan
		set.channels[id] = channels
		set.peaks[id] = b.Schedule.Peak()
		if w := plan.Truncation(); w != nil {
			set.warnings = append(set.warnings, AdapterWarning{AdapterID: id, Warning: w})
		}
	}

	return set, nil
}

// TotalSteps returns the step count the plans were resolved for.
func (s *PlanSet) TotalSteps() int {
	return s.totalSteps
}

// Len returns the number of adapters.
func (s *PlanSet) Len() int {
	return len(s.order)
}

// IDs returns adapter IDs in binding order.
func (s *PlanSet) IDs() []string {
	return append([]string(nil), s.order...)
}

// Plan returns the resolved plan for an adapter.
func (s *PlanSet) Plan(id string) (*schedule.Plan, bool) {
	plan, ok := s.plans[id]
	return plan, ok
}

// Channels returns the channels an adapter is bound to.
func (s *PlanSet) Channels(id string) ChannelSet {
	return s.channels[id]
}

// Peak returns the adapter schedule's maximum strength.
func (s *PlanSet) Peak(id string) float64 {
	return s.peaks[id]
}

// Warnings returns truncation warnings in binding order.
func (s *PlanSet) Warnings() []AdapterWarning {
	return append([]AdapterWarning(nil), s.warnings...)
}

// Values returns a copy of every adapter's per-step strengths keyed by ID.
func (s *PlanSet) Values() map[string][]float64 {
	out := make(map[string][]float64, len(s.order))
	for _, id := range s.order {
		out[id] = s.plans[id].Values()
	}
	return out
}
