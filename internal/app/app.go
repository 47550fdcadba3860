// Package app implements the demo application: it wires the window, the
// GL device, the demo scene and the frame driver together and runs the
// main loop.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/nodering/internal/assets"
	"github.com/Faultbox/nodering/internal/config"
	"github.com/Faultbox/nodering/internal/engine/camera"
	"github.com/Faultbox/nodering/internal/engine/frame"
	"github.com/Faultbox/nodering/internal/engine/glgpu"
	"github.com/Faultbox/nodering/internal/engine/input"
	"github.com/Faultbox/nodering/internal/engine/shader"
	"github.com/Faultbox/nodering/internal/engine/window"
	"github.com/Faultbox/nodering/internal/gpu"
	"github.com/Faultbox/nodering/internal/logger"
	"github.com/Faultbox/nodering/pkg/math"
)

// viewDistance is how far the camera sits back from the scene origin.
const viewDistance = 5

// shutdownTimeout bounds waiting for in-flight frames on Close.
const shutdownTimeout = 2 * time.Second

// idleFrame paces the loop while there is no surface to draw into.
const idleFrame = 50 * time.Millisecond

// App is the main application instance.
type App struct {
	cfg     *config.Config
	running bool

	window *window.Window
	device *glgpu.Device
	input  *input.Input
	assets *assets.Manager

	colorPipe *glgpu.Pipeline
	cubePipe  *glgpu.Pipeline

	demo   *Demo
	driver *frame.Driver
	camera *camera.OrbitCamera

	log *zap.Logger
}

// New creates the window, the device and the demo scene.
func New(cfg *config.Config) (_ *App, err error) {
	a := &App{
		cfg:    cfg,
		assets: assets.NewManager(".", config.ConfigDir()),
		log:    logger.Named("app"),
	}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	a.log.Info("initializing",
		zap.String("title", cfg.Window.Title),
		zap.Int("width", cfg.Window.Width),
		zap.Int("height", cfg.Window.Height),
		zap.Int("inflight_buffers", cfg.Render.InflightBuffers),
		zap.Bool("lit", cfg.Render.Lit),
	)

	// Create window (this also creates the OpenGL context)
	a.window, err = window.New(window.Config{
		Title:      cfg.Window.Title,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
		VSync:      cfg.Window.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// The device takes the context over onto its render goroutine.
	a.device, err = glgpu.New(a.window)
	if err != nil {
		return nil, fmt.Errorf("failed to create device: %w", err)
	}

	if a.colorPipe, err = a.device.NewPipeline(shader.KindColor); err != nil {
		return nil, fmt.Errorf("failed to create color pipeline: %w", err)
	}
	cubeKind := shader.KindTextured
	if cfg.Render.Lit {
		cubeKind = shader.KindTexturedLit
	}
	if a.cubePipe, err = a.device.NewPipeline(cubeKind); err != nil {
		return nil, fmt.Errorf("failed to create cube pipeline: %w", err)
	}

	img, err := CubeTexture(a.assets, cfg)
	if err != nil {
		return nil, err
	}
	a.demo, err = NewDemo(a.device, Pipelines{Color: a.colorPipe, Cube: a.cubePipe}, img, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create scene: %w", err)
	}

	a.camera = camera.NewOrbitCamera(viewDistance)
	a.driver = frame.New(a.window, a.device, a.colorPipe, FrameConfig(cfg))
	a.driver.SetParent(a.camera.ViewMatrix())
	a.driver.SetDelegate(a.demo.Scene)

	a.input = input.New()

	a.log.Info("initialized successfully")
	return a, nil
}

// FrameConfig converts the projection and render settings for the
// frame driver.
func FrameConfig(cfg *config.Config) frame.Config {
	c := cfg.Render.ClearColor
	return frame.Config{
		FOVY:       math.Radians(cfg.Projection.FOVDegrees),
		Near:       cfg.Projection.Near,
		Far:        cfg.Projection.Far,
		ClearColor: gpu.Color{R: c[0], G: c[1], B: c[2], A: c[3]},
	}
}

// Run starts the main loop. It returns when the window is closed or
// ESC is pressed.
func (a *App) Run() error {
	a.running = true

	var minFrame time.Duration
	if !a.cfg.Window.VSync && a.cfg.Window.FPSLimit > 0 {
		minFrame = time.Second / time.Duration(a.cfg.Window.FPSLimit)
	}

	// Timing
	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	a.log.Info("starting main loop")

	for a.running {
		now := time.Now()
		dt := now.Sub(lastTime)
		lastTime = now

		// 1. Process input
		if a.input.Update() {
			a.running = false
			break
		}
		if steer(a.camera, a.input.Events()) {
			a.driver.SetParent(a.camera.ViewMatrix())
		}

		// 2. Update, render and submit
		skipped := a.driver.Stats().Skipped
		if err := a.driver.Tick(dt); err != nil {
			return fmt.Errorf("render error: %w", err)
		}
		if a.driver.Stats().Skipped != skipped {
			// Minimized: vsync no longer throttles us.
			time.Sleep(idleFrame)
			continue
		}

		// FPS counter
		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			stats := a.driver.Stats()
			a.log.Debug("fps",
				zap.Int("count", frameCount),
				zap.Duration("dt", dt),
				zap.Uint64("submitted", stats.Submitted),
				zap.Uint64("skipped", stats.Skipped))
			frameCount = 0
			fpsTimer = time.Now()
		}

		if minFrame > 0 {
			if spare := minFrame - time.Since(now); spare > 0 {
				time.Sleep(spare)
			}
		}
	}

	return nil
}

// Close tears everything down. The scene is detached from the driver
// first and its nodes are destroyed only once no frame is in flight.
func (a *App) Close() {
	a.log.Info("closing")

	if a.driver != nil {
		a.driver.SetDelegate(nil)
	}
	if a.demo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		if err := a.demo.Close(ctx); err != nil {
			a.log.Warn("frames still in flight at shutdown", zap.Error(err))
		}
		cancel()
	}
	if a.cubePipe != nil {
		a.cubePipe.Destroy()
	}
	if a.colorPipe != nil {
		a.colorPipe.Destroy()
	}
	if a.device != nil {
		a.device.Close()
	}
	if a.assets != nil {
		a.assets.Close()
	}
	if a.window != nil {
		if err := a.window.MakeCurrent(); err != nil {
			a.log.Warn("failed to reclaim GL context", zap.Error(err))
		}
		a.window.Close()
	}
}
