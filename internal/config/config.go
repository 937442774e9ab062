// Package config handles viewer configuration loading and management.
package config

import (
	"fmt"

	"github.com/Faultbox/midgard-rig/internal/engine/animation"
	"github.com/Faultbox/midgard-rig/internal/logger"
)

// Config holds all viewer settings.
type Config struct {
	Window    WindowConfig    `yaml:"window"`
	Camera    CameraConfig    `yaml:"camera"`
	Model     ModelConfig     `yaml:"model"`
	Animation AnimationConfig `yaml:"animation"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Fullscreen bool   `yaml:"fullscreen"`
	VSync      bool   `yaml:"vsync"`
}

// CameraConfig holds projection and eye placement.
type CameraConfig struct {
	FOV  float32 `yaml:"fov"` // Horizontal, degrees
	Near float32 `yaml:"near"`
	Far  float32 `yaml:"far"`

	// Distance and Height of zero fit the camera to the model bounds.
	Distance float32 `yaml:"distance"`
	Height   float32 `yaml:"height"`
}

// ModelConfig selects the file to view.
type ModelConfig struct {
	Path       string `yaml:"path"`
	Animation  string `yaml:"animation"`   // Empty plays the first animation
	TextureDir string `yaml:"texture_dir"` // Empty resolves against the model directory
}

// AnimationConfig holds playback settings.
type AnimationConfig struct {
	KeySearch string  `yaml:"key_search"` // last_overshoot or bracketing
	Speed     float64 `yaml:"speed"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:      "Midgard Rig",
			Width:      800,
			Height:     600,
			Fullscreen: false,
			VSync:      true,
		},
		Camera: CameraConfig{
			FOV:  90,
			Near: 1,
			Far:  100,
		},
		Animation: AnimationConfig{
			KeySearch: animation.SearchLastOvershoot.String(),
			Speed:     1,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate reports settings the viewer cannot run with.
func (c *Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("invalid window size %dx%d", c.Window.Width, c.Window.Height)
	}
	if c.Camera.FOV <= 0 || c.Camera.FOV >= 180 {
		return fmt.Errorf("invalid camera fov %g", c.Camera.FOV)
	}
	if c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near {
		return fmt.Errorf("invalid clip range [%g, %g]", c.Camera.Near, c.Camera.Far)
	}
	if c.Animation.Speed < 0 {
		return fmt.Errorf("negative animation speed %g", c.Animation.Speed)
	}
	if _, err := animation.ParseKeySearch(c.Animation.KeySearch); err != nil {
		return err
	}
	if _, err := logger.ParseLevel(c.Logging.Level); err != nil {
		return err
	}
	return nil
}

// KeySearch returns the parsed key search mode, falling back to the default.
func (c *Config) KeySearch() animation.KeySearch {
	k, err := animation.ParseKeySearch(c.Animation.KeySearch)
	if err != nil {
		return animation.SearchLastOvershoot
	}
	return k
}
