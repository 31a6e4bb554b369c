package stack

import (
	"fmt"
	"strings"

	"github.com/opencode-ai/lorasched/internal/schedule"
)

// Mode selects how schedule durations are read.
type Mode string

const (
	// ModeSteps reads durations as absolute step counts.
	ModeSteps Mode = "steps"
	// ModeRelative reads durations as proportions of the run.
	ModeRelative Mode = "relative"
)

// Stack is a named set of adapters applied together in one run.
type Stack struct {
	Name        string          `yaml:"name" json:"name"`
	Description string          `yaml:"description" json:"description,omitempty"`
	Steps       int             `yaml:"steps,omitempty" json:"steps,omitempty"`
	Adapters    []AdapterConfig `yaml:"adapters" json:"adapters"`
	Tags        []string        `yaml:"tags,omitempty" json:"tags,omitempty"`
	Source      string          `yaml:"-" json:"source"` // file path or "builtin"
}

// AdapterConfig is one adapter entry in a stack file.
type AdapterConfig struct {
	Adapter  string   `yaml:"adapter" json:"adapter"`
	Schedule string   `yaml:"schedule" json:"schedule"`
	Mode     Mode     `yaml:"mode,omitempty" json:"mode,omitempty"`
	Channels []string `yaml:"channels,omitempty" json:"channels,omitempty"`
}

// Bindings parses every adapter's schedule into a binding, in file order.
func (s *Stack) Bindings() ([]Binding, error) {
	bindings := make([]Binding, 0, len(s.Adapters))
	for i := range s.Adapters {
		b, err := s.Adapters[i].Binding()
		if err != nil {
			return nil, fmt.Errorf("stack %s: adapter %d (%s): %w", s.Name, i+1, s.Adapters[i].Adapter, err)
		}
		b.Source = s.Source
		bindings = append(bindings, b)
	}
	return bindings, nil
}

// Binding parses the adapter's schedule.
func (a *AdapterConfig) Binding() (Binding, error) {
	channels, err := ParseChannels(a.Channels)
	if err != nil {
		return Binding{}, err
	}

	var sched *schedule.Schedule
	switch a.Mode {
	case "", ModeSteps:
		sched, err = schedule.Parse(a.Schedule)
	case ModeRelative:
		sched, err = schedule.ParseRelative(a.Schedule)
	default:
		return Binding{}, fmt.Errorf("unknown mode %q", a.Mode)
	}
	if err != nil {
		return Binding{}, err
	}

	return Binding{
		AdapterID: a.Adapter,
		Schedule:  sched,
		Channels:  channels,
	}, nil
}

func normalizeAdapter(a *AdapterConfig) error {
	a.Adapter = strings.TrimSpace(a.Adapter)
	a.Mode = Mode(strings.ToLower(strings.TrimSpace(string(a.Mode))))

	if a.Adapter == "" {
		return fmt.Errorf("adapter is required")
	}
	if strings.TrimSpace(a.Schedule) == "" {
		return fmt.Errorf("schedule is required")
	}
	if a.Mode == "" {
		a.Mode = ModeSteps
	}
	if _, err := a.Binding(); err != nil {
		return err
	}
	return nil
}
