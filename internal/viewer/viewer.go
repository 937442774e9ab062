// Package viewer implements the model viewer main loop.
package viewer

import (
	"fmt"
	gomath "math"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-rig/internal/config"
	"github.com/Faultbox/midgard-rig/internal/engine/camera"
	"github.com/Faultbox/midgard-rig/internal/engine/debug"
	"github.com/Faultbox/midgard-rig/internal/engine/importer"
	"github.com/Faultbox/midgard-rig/internal/engine/input"
	"github.com/Faultbox/midgard-rig/internal/engine/model"
	"github.com/Faultbox/midgard-rig/internal/engine/renderer"
	"github.com/Faultbox/midgard-rig/internal/engine/texture"
	"github.com/Faultbox/midgard-rig/internal/engine/window"
	"github.com/Faultbox/midgard-rig/internal/logger"
	"github.com/Faultbox/midgard-rig/pkg/formats"
	"github.com/Faultbox/midgard-rig/pkg/math"
)

var (
	boundsColor   = [4]float32{1, 1, 0, 1}
	skeletonColor = [4]float32{0, 1, 0.5, 1}
)

// Viewer is the main viewer instance.
type Viewer struct {
	config      *config.Config
	running     bool
	window      *window.Window
	renderer    *renderer.Renderer
	input       *input.Input
	model       *model.Model
	camera      *camera.OrbitCamera
	controls    *controls
	screenshots *debug.ScreenshotCapture
}

// New opens the window, loads the configured model and selects the first
// animation to play.
func New(cfg *config.Config) (*Viewer, error) {
	if cfg.Model.Path == "" {
		return nil, fmt.Errorf("no model to view")
	}

	logger.Info("initializing viewer",
		zap.String("model", cfg.Model.Path),
		zap.Int("width", cfg.Window.Width),
		zap.Int("height", cfg.Window.Height),
	)

	// Parse before touching the display so a bad file fails fast
	scene, err := formats.ParseFile(cfg.Model.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model: %w", err)
	}

	v := &Viewer{config: cfg}

	// Create window (this also creates OpenGL context)
	v.window, err = window.New(window.Config{
		Title:      cfg.Window.Title,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
		VSync:      cfg.Window.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// Create renderer (AFTER window, since OpenGL context must exist)
	width, height := v.window.GetSize()
	rcfg := renderer.DefaultConfig(width, height)
	rcfg.FOV = cfg.Camera.FOV
	rcfg.Near = cfg.Camera.Near
	rcfg.Far = cfg.Camera.Far
	v.renderer, err = renderer.New(rcfg)
	if err != nil {
		v.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	textureDir := cfg.Model.TextureDir
	if textureDir == "" {
		textureDir = filepath.Dir(cfg.Model.Path)
	}
	v.model, err = importer.Load(scene, v.renderer, texture.FileLoader{}, importer.Options{
		BaseDir:   textureDir,
		KeySearch: cfg.KeySearch(),
	})
	if err != nil {
		v.renderer.Close()
		v.window.Close()
		return nil, fmt.Errorf("failed to load model: %w", err)
	}

	v.selectInitialAnimation()

	v.camera = camera.NewOrbitCamera()
	v.placeCamera()

	v.input = input.New()
	v.controls = newControls(v.model, v.camera, cfg.Animation.Speed, cfg.KeySearch())
	v.screenshots = debug.NewScreenshotCapture("screenshots", "rig")

	logger.Info("viewer initialized successfully")
	return v, nil
}

func (v *Viewer) selectInitialAnimation() {
	names := v.model.Animations()
	if want := v.config.Model.Animation; want != "" {
		if v.model.SelectAnimation(want) {
			return
		}
		logger.Warn("requested animation not found", zap.String("name", want), zap.Strings("available", names))
	}
	if len(names) > 0 {
		v.model.SelectAnimation(names[0])
	}
}

// placeCamera uses the configured eye or fits it to the current pose.
func (v *Viewer) placeCamera() {
	cam := v.config.Camera
	if cam.Distance > 0 {
		v.camera.Center = math.Vec3{Y: cam.Height}
		v.camera.Distance = cam.Distance
		v.camera.RotationX, v.camera.RotationY = 0, 0
		return
	}

	b := v.model.Bounds()
	if b.IsEmpty() {
		return
	}
	far := v.camera.FitToBounds(b.Min, b.Max, cam.FOV*gomath.Pi/180)
	// Leave room to zoom out
	if far *= 4; far > cam.Far {
		v.renderer.SetDepthRange(cam.Near, far)
	}
	logger.Debug("camera fitted",
		zap.Float32("distance", v.camera.Distance),
		zap.Float32("far", far),
	)
}

// Run starts the main loop. Each frame advances the animation before it is
// drawn, so the pose on screen matches the current time.
func (v *Viewer) Run() error {
	v.running = true

	frameCount := 0
	fpsTimer := time.Now()
	v.window.FrameTime()

	logger.Info("starting viewer loop")

	for v.running {
		dt := v.window.FrameTime()

		// 1. Process input
		if v.input.Update() {
			v.running = false
			break
		}

		for _, event := range v.input.Events() {
			if event.Type == input.EventWindowResize {
				v.renderer.Resize(event.Width, event.Height)
				continue
			}
			v.controls.handle(event)
		}
		if v.controls.quit {
			v.running = false
			break
		}

		if v.controls.refit {
			v.controls.refit = false
			v.placeCamera()
		}

		// 2. Advance the animation
		v.model.Update(v.controls.scale(dt))

		// 3. Render
		v.render()
		if v.controls.screenshot {
			v.controls.screenshot = false
			v.saveScreenshot()
		}
		if v.controls.save {
			v.controls.save = false
			v.savePlayback()
		}

		// 4. Present (swap buffers)
		v.window.SwapBuffers()

		// FPS counter
		frameCount++
		if elapsed := time.Since(fpsTimer); elapsed >= time.Second {
			fps := float64(frameCount) / elapsed.Seconds()
			logger.Debug("fps",
				zap.Int("count", frameCount),
				zap.Int("draw_calls", v.renderer.DrawCalls()),
				zap.String("dt", fmt.Sprintf("%.2fms", dt*1000)),
			)
			v.window.SetTitle(v.title(fps))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	return nil
}

func (v *Viewer) render() {
	v.renderer.SetView(v.camera.ViewMatrix())
	v.renderer.Begin()
	v.model.Render(v.renderer)
	if v.controls.showBounds {
		v.renderer.DrawLines(debug.BoundsWireframe(v.model.Bounds(), 0), boundsColor)
	}
	if v.controls.showSkeleton {
		v.renderer.DrawLines(debug.SkeletonLines(v.model.Root()), skeletonColor)
	}
	v.renderer.End()
}

func (v *Viewer) saveScreenshot() {
	path, err := v.screenshots.Capture(v.renderer.ReadPixels())
	if err != nil {
		logger.Warn("screenshot failed", zap.Error(err))
		return
	}
	logger.Info("screenshot saved", zap.String("path", path))
}

// savePlayback writes the current speed and key search back to the
// settings file.
func (v *Viewer) savePlayback() {
	path := config.SettingsPath()
	playback := v.controls.playback()
	if err := config.SavePlayback(path, playback); err != nil {
		logger.Warn("saving playback settings failed", zap.Error(err))
		return
	}
	v.config.Animation = playback
	logger.Info("playback settings saved",
		zap.String("path", path),
		zap.Float64("speed", playback.Speed),
		zap.String("key_search", playback.KeySearch),
	)
}

func (v *Viewer) title(fps float64) string {
	anim := "idle"
	if cur := v.model.Current(); cur != nil {
		anim = cur.Name
	}
	state := ""
	if v.controls.paused {
		state = " paused"
	}
	return fmt.Sprintf("%s - %s [%s x%g%s] %.0f fps",
		v.config.Window.Title, filepath.Base(v.config.Model.Path), anim, v.controls.speed, state, fps)
}

// Close releases the model and shuts down the display.
func (v *Viewer) Close() {
	logger.Info("closing viewer")

	if v.model != nil {
		v.model.Close()
	}
	if v.renderer != nil {
		v.renderer.Close()
	}
	if v.window != nil {
		v.window.Close()
	}
}
