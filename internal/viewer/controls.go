package viewer

import (
	gomath "math"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-rig/internal/config"
	"github.com/Faultbox/midgard-rig/internal/engine/animation"
	"github.com/Faultbox/midgard-rig/internal/engine/camera"
	"github.com/Faultbox/midgard-rig/internal/engine/input"
	"github.com/Faultbox/midgard-rig/internal/logger"
)

const (
	minSpeed = 1.0 / 16
	maxSpeed = 16.0
)

// player is the part of *model.Model the controls drive.
type player interface {
	Animations() []string
	Current() *animation.Set
	SelectAnimation(name string) bool
	SetKeySearch(k animation.KeySearch)
}

// controls turns input events into playback, camera and overlay changes.
type controls struct {
	player player
	camera *camera.OrbitCamera

	speed  float64
	paused bool
	search animation.KeySearch

	showBounds   bool
	showSkeleton bool

	// One-shot requests consumed by the main loop
	screenshot bool
	refit      bool
	save       bool
	quit       bool
}

func newControls(p player, cam *camera.OrbitCamera, speed float64, search animation.KeySearch) *controls {
	return &controls{
		player: p,
		camera: cam,
		speed:  speed,
		search: search,
	}
}

// handle applies one input event.
func (c *controls) handle(e input.Event) {
	switch e.Type {
	case input.EventMouseWheel:
		c.camera.HandleZoom(float32(e.Wheel))
	case input.EventMouseDrag:
		c.camera.HandleDrag(float32(e.DeltaX), float32(e.DeltaY))
	case input.EventKeyDown:
		c.handleKey(e.Key)
	}
}

func (c *controls) handleKey(key sdl.Keycode) {
	switch key {
	case sdl.K_ESCAPE:
		c.quit = true
	case sdl.K_SPACE, sdl.K_n, sdl.K_RIGHT:
		c.cycle(1)
	case sdl.K_LEFT:
		c.cycle(-1)
	case sdl.K_r:
		if cur := c.player.Current(); cur != nil {
			c.player.SelectAnimation(cur.Name)
		}
	case sdl.K_p:
		c.paused = !c.paused
		logger.Debug("playback toggled", zap.Bool("paused", c.paused))
	case sdl.K_EQUALS, sdl.K_KP_PLUS:
		c.setSpeed(c.speed * 2)
	case sdl.K_MINUS, sdl.K_KP_MINUS:
		c.setSpeed(c.speed / 2)
	case sdl.K_b:
		c.showBounds = !c.showBounds
	case sdl.K_s:
		c.showSkeleton = !c.showSkeleton
	case sdl.K_f, sdl.K_HOME:
		c.refit = true
	case sdl.K_F12:
		c.screenshot = true
	case sdl.K_F5:
		c.save = true
	case sdl.K_k:
		c.search = (c.search + 1) % 2
		c.player.SetKeySearch(c.search)
		logger.Info("key search changed", zap.Stringer("mode", c.search))
	}
}

// playback returns the current speed and key search as config settings.
func (c *controls) playback() config.AnimationConfig {
	return config.AnimationConfig{Speed: c.speed, KeySearch: c.search.String()}
}

func (c *controls) setSpeed(s float64) {
	c.speed = gomath.Max(minSpeed, gomath.Min(maxSpeed, s))
	logger.Debug("playback speed", zap.Float64("speed", c.speed))
}

// cycle selects the animation step places away from the current one.
func (c *controls) cycle(step int) {
	names := c.player.Animations()
	if len(names) == 0 {
		return
	}
	current := ""
	if cur := c.player.Current(); cur != nil {
		current = cur.Name
	}
	c.player.SelectAnimation(nextAnimation(names, current, step))
}

// scale converts a frame delta into animation time.
func (c *controls) scale(dt float64) float64 {
	if c.paused {
		return 0
	}
	return dt * c.speed
}

// nextAnimation returns the name step places after current, wrapping around.
// With no current animation the first (or last, going back) is chosen.
func nextAnimation(names []string, current string, step int) string {
	n := len(names)
	idx := -1
	for i, name := range names {
		if name == current {
			idx = i
			break
		}
	}
	if idx < 0 {
		if step < 0 {
			return names[n-1]
		}
		return names[0]
	}
	return names[((idx+step)%n+n)%n]
}
