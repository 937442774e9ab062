package animation

import "github.com/Faultbox/midgard-rig/pkg/formats"

// Set is a named animation clip: channels sharing one tick rate.
type Set struct {
	Name           string
	TicksPerSecond float64
	Channels       []*Channel
}

// NewSet copies an imported animation. Channel order is preserved.
func NewSet(src formats.SceneAnimation) *Set {
	s := &Set{
		Name:           src.Name,
		TicksPerSecond: src.TicksPerSecond,
		Channels:       make([]*Channel, 0, len(src.Channels)),
	}
	for _, ch := range src.Channels {
		s.Channels = append(s.Channels, NewChannel(ch))
	}
	return s
}

// Duration returns the longest channel duration in ticks.
func (s *Set) Duration() float64 {
	var d float64
	for _, ch := range s.Channels {
		if cd := ch.Duration(); cd > d {
			d = cd
		}
	}
	return d
}

// DurationSeconds returns Duration converted to seconds, or 0 when the set
// has no tick rate.
func (s *Set) DurationSeconds() float64 {
	if s.TicksPerSecond <= 0 {
		return 0
	}
	return s.Duration() / (s.TicksPerSecond * tickScale)
}

// Reset rewinds every channel.
func (s *Set) Reset() {
	for _, ch := range s.Channels {
		ch.Reset()
	}
}

// SetKeySearch switches the key lookup of every channel.
func (s *Set) SetKeySearch(k KeySearch) {
	for _, ch := range s.Channels {
		ch.Search = k
	}
}
