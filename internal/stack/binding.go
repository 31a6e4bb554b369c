// Package stack binds schedules to adapters and combines their plans for a
// sampling run.
package stack

import (
	"fmt"
	"strings"

	"github.com/opencode-ai/lorasched/internal/schedule"
)

// Channel is a conditioning stream a hook can attach to.
type Channel string

const (
	ChannelPositive Channel = "positive"
	ChannelNegative Channel = "negative"
)

// Channels lists every channel in hook registration order.
var Channels = []Channel{ChannelPositive, ChannelNegative}

// ChannelSet is a set of channels.
type ChannelSet uint8

const (
	PositiveOnly ChannelSet = 1 << iota
	NegativeOnly

	Both = PositiveOnly | NegativeOnly
)

func channelBit(c Channel) ChannelSet {
	switch c {
	case ChannelPositive:
		return PositiveOnly
	case ChannelNegative:
		return NegativeOnly
	default:
		return 0
	}
}

// Has reports whether the set includes c.
func (s ChannelSet) Has(c Channel) bool {
	bit := channelBit(c)
	return bit != 0 && s&bit != 0
}

// List returns the set's channels in registration order.
func (s ChannelSet) List() []Channel {
	out := make([]Channel, 0, len(Channels))
	for _, c := range Channels {
		if s.Has(c) {
			out = append(out, c)
		}
	}
	return out
}

func (s ChannelSet) String() string {
	names := make([]string, 0, len(Channels))
	for _, c := range s.List() {
		names = append(names, string(c))
	}
	return strings.Join(names, ",")
}

// ParseChannels converts channel names into a set. An empty list means both.
func ParseChannels(names []string) (ChannelSet, error) {
	var set ChannelSet
	for _, raw := range names {
		for _, name := range strings.Split(raw, ",") {
			name = strings.ToLower(strings.TrimSpace(name))
			switch name {
			case "":
				continue
			case "both", "all":
				set |= Both
			default:
				bit := channelBit(Channel(name))
				if bit == 0 {
					return 0, fmt.Errorf("unknown channel %q", name)
				}
				set |= bit
			}
		}
	}
	if set == 0 {
		return Both, nil
	}
	return set, nil
}

// Binding attaches a schedule to one adapter on a set of channels.
type Binding struct {
	// AdapterID identifies the adapter, typically its file name.
	AdapterID string

	// Schedule is the adapter's parsed strength schedule.
	Schedule *schedule.Schedule

	// Channels are the conditioning streams the adapter's hook targets.
	Channels ChannelSet

	// Source records where the binding came from (stack file or "builtin").
	Source string
}
