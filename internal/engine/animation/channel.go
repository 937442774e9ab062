// Package animation evaluates keyframed node animation.
package animation

import (
	"github.com/Faultbox/midgard-rig/pkg/formats"
	"github.com/Faultbox/midgard-rig/pkg/math"
)

// tickScale converts seconds times ticks-per-second into key time units.
const tickScale = 1.0 / 1000.0

// Target receives the evaluated local transform of a channel.
type Target interface {
	SetLocalTRS(position math.Vec3, rotation math.Quat, scale math.Vec3)
}

// Channel animates a single node with position, rotation and scale tracks.
type Channel struct {
	NodeName     string
	PositionKeys []formats.VectorKey
	RotationKeys []formats.QuatKey
	ScaleKeys    []formats.VectorKey

	// Search selects the key pair lookup; the zero value is SearchLastOvershoot.
	Search KeySearch

	localTime float64 // Seconds
}

// NewChannel copies the tracks of an imported node animation.
func NewChannel(src formats.NodeAnimation) *Channel {
	return &Channel{
		NodeName:     src.NodeName,
		PositionKeys: append([]formats.VectorKey(nil), src.PositionKeys...),
		RotationKeys: append([]formats.QuatKey(nil), src.RotationKeys...),
		ScaleKeys:    append([]formats.VectorKey(nil), src.ScaleKeys...),
	}
}

// Duration returns the time of the latest last key over the three tracks,
// in ticks.
func (c *Channel) Duration() float64 {
	var d float64
	if n := len(c.PositionKeys); n > 0 && c.PositionKeys[n-1].Time > d {
		d = c.PositionKeys[n-1].Time
	}
	if n := len(c.RotationKeys); n > 0 && c.RotationKeys[n-1].Time > d {
		d = c.RotationKeys[n-1].Time
	}
	if n := len(c.ScaleKeys); n > 0 && c.ScaleKeys[n-1].Time > d {
		d = c.ScaleKeys[n-1].Time
	}
	return d
}

// LocalTime returns the playback position in seconds.
func (c *Channel) LocalTime() float64 {
	return c.localTime
}

// Reset rewinds the channel to the start.
func (c *Channel) Reset() {
	c.localTime = 0
}

// Update advances the channel by dt seconds and writes the evaluated
// transform into target. Playback always loops.
func (c *Channel) Update(dt, ticksPerSecond float64, target Target) {
	c.localTime += dt

	tick := c.localTime * ticksPerSecond * tickScale
	if tick > c.Duration() {
		c.localTime = 0
		tick = 0
	}

	target.SetLocalTRS(c.Evaluate(tick))
}

// Evaluate samples the three tracks at tick.
func (c *Channel) Evaluate(tick float64) (math.Vec3, math.Quat, math.Vec3) {
	return c.position(tick), c.rotation(tick), c.scale(tick)
}

func (c *Channel) position(tick float64) math.Vec3 {
	keys := c.PositionKeys
	switch len(keys) {
	case 0:
		return math.Vec3Zero
	case 1:
		return keys[0].Value
	}

	k1, k2, t := c.Search.keyPair(func(i int) float64 { return keys[i].Time }, len(keys), tick)
	return keys[k1].Value.Lerp(keys[k2].Value, t)
}

// rotation interpolates between the conjugates of the stored keys.
func (c *Channel) rotation(tick float64) math.Quat {
	keys := c.RotationKeys
	switch len(keys) {
	case 0:
		return math.QuatIdentity()
	case 1:
		return keys[0].Value.Conjugate()
	}

	k1, k2, t := c.Search.keyPair(func(i int) float64 { return keys[i].Time }, len(keys), tick)
	return keys[k1].Value.Conjugate().Slerp(keys[k2].Value.Conjugate(), t)
}

// scale needs two keys; a lone scale key is ignored.
func (c *Channel) scale(tick float64) math.Vec3 {
	keys := c.ScaleKeys
	if len(keys) < 2 {
		return math.Vec3One
	}

	k1, k2, t := c.Search.keyPair(func(i int) float64 { return keys[i].Time }, len(keys), tick)
	return keys[k1].Value.Lerp(keys[k2].Value, t)
}
