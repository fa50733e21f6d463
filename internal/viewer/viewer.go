// Package viewer runs the interactive mesh viewer: window, scene, render loop.
package viewer

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/objscene/internal/config"
	"github.com/Faultbox/objscene/internal/engine/camera"
	"github.com/Faultbox/objscene/internal/engine/debug"
	"github.com/Faultbox/objscene/internal/engine/input"
	"github.com/Faultbox/objscene/internal/engine/renderer"
	"github.com/Faultbox/objscene/internal/engine/texture"
	"github.com/Faultbox/objscene/internal/engine/window"
	"github.com/Faultbox/objscene/internal/logger"
	"github.com/Faultbox/objscene/internal/resource"
	"github.com/Faultbox/objscene/internal/scene"
	"github.com/Faultbox/objscene/internal/watch"
	"github.com/Faultbox/objscene/pkg/math"
)

// Viewer is the main viewer instance.
type Viewer struct {
	cfg     *config.Config
	running bool

	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input
	camera   *camera.OrbitCamera

	registry *scene.Registry
	meshes   *resource.MeshStore
	images   *resource.Store[*image.RGBA]
	textures map[string]uint32

	// Scene bounds for camera fitting
	boundsMin, boundsMax math.Vec3
	hasBounds            bool

	watcher *watch.Watcher
	reloads chan string
	cancel  context.CancelFunc

	screenshots *debug.ScreenshotCapture
	captureNext bool
}

// New creates the window and GL state and loads the configured scene.
func New(cfg *config.Config) (*Viewer, error) {
	opts, err := cfg.ExpandOptions()
	if err != nil {
		return nil, err
	}

	logger.Info("initializing viewer",
		zap.String("title", cfg.Window.Title),
		zap.Int("width", cfg.Window.Width),
		zap.Int("height", cfg.Window.Height),
		zap.Stringer("tangents", opts.Tangents),
		zap.Stringer("degenerate_uv", opts.DegenerateUV),
	)

	v := &Viewer{
		cfg:      cfg,
		input:    input.New(),
		camera:   camera.NewOrbitCamera(),
		registry: scene.NewRegistry(),
		meshes:   resource.NewMeshStore(opts),
		images:   resource.NewStore("image", texture.Load),
		textures: make(map[string]uint32),
		reloads:  make(chan string, 16),

		screenshots: debug.NewScreenshotCapture("screenshots", "objview"),
	}

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

	// Renderer must come after the window, which owns the GL context
	width, height := v.window.DrawableSize()
	v.renderer, err = renderer.New(renderer.Config{
		Width:      width,
		Height:     height,
		ClearColor: cfg.Render.ClearColor,
		FOV:        cfg.Render.FOV,
	})
	if err != nil {
		v.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	v.cancel = cancel

	v.boundsMin, v.boundsMax, v.hasBounds, err = Populate(ctx, v.registry, cfg, v.meshes, v.uploadTexture)
	if err != nil {
		v.Close()
		return nil, fmt.Errorf("failed to load scene: %w", err)
	}
	v.fitCamera()

	if cfg.Watch.Enabled {
		if err := v.startWatcher(ctx); err != nil {
			v.Close()
			return nil, err
		}
	}

	logger.Info("viewer initialized", zap.Int("entities", v.registry.Len()))
	return v, nil
}

// uploadTexture decodes an image through the cache and uploads it once.
func (v *Viewer) uploadTexture(ctx context.Context, path string) (uint32, error) {
	if id, ok := v.textures[path]; ok {
		return id, nil
	}
	img, err := v.images.Get(ctx, path)
	if err != nil {
		return 0, err
	}
	texture.FlipVertical(img)
	id := renderer.UploadTexture(img)
	v.textures[path] = id
	return id, nil
}

func (v *Viewer) startWatcher(ctx context.Context) error {
	w, err := watch.New(v.cfg.Watch.Debounce)
	if err != nil {
		return err
	}
	v.registry.Query(scene.CompModel, func(view scene.View) bool {
		if err = w.Add(view.Model.Path); err != nil {
			return false
		}
		return true
	})
	if err != nil {
		w.Close()
		return err
	}
	v.watcher = w

	go func() {
		err := w.Run(ctx, func(path string) {
			select {
			case v.reloads <- path:
			default:
				logger.Warn("reload queue full, dropping", zap.String("path", path))
			}
		})
		if err != nil && ctx.Err() == nil {
			logger.Error("watcher stopped", zap.Error(err))
		}
	}()

	logger.Info("watching meshes", zap.Int("files", w.Files()))
	return nil
}

func (v *Viewer) fitCamera() {
	if v.hasBounds {
		v.camera.FitToBounds(v.boundsMin, v.boundsMax, v.renderer.FOV())
	}
}

// Run starts the main loop and returns when the window closes.
func (v *Viewer) Run() error {
	v.running = true

	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	logger.Info("starting render loop")

	for v.running {
		now := time.Now()
		dt := now.Sub(lastTime).Seconds()
		lastTime = now

		if v.input.Update() {
			v.running = false
			break
		}
		v.handleEvents()
		v.applyReloads()

		v.renderer.Begin()
		v.renderer.DrawScene(v.registry, v.camera.ViewMatrix(), v.camera.Position())
		v.renderer.End()

		if v.captureNext {
			v.captureNext = false
			v.saveScreenshot()
		}

		v.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			logger.Debug("fps", zap.Int("count", frameCount), zap.Float64("dt_ms", dt*1000))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	return nil
}

func (v *Viewer) handleEvents() {
	for _, event := range v.input.Events() {
		switch event.Type {
		case input.EventWindowResize:
			v.renderer.Resize(v.window.DrawableSize())
		case input.EventMouseMove:
			if v.input.IsButtonDown(sdl.BUTTON_LEFT) {
				v.camera.HandleDrag(float32(event.DeltaX), float32(event.DeltaY))
			}
		case input.EventMouseWheel:
			v.camera.HandleZoom(float32(event.DeltaY))
		case input.EventKeyDown:
			switch event.Key {
			case sdl.SCANCODE_ESCAPE:
				v.running = false
			case sdl.SCANCODE_F:
				v.fitCamera()
			case sdl.SCANCODE_R:
				v.reloadAll()
			case sdl.SCANCODE_P:
				v.captureNext = true
			}
		}
	}
}

func (v *Viewer) saveScreenshot() {
	pixels, w, h := v.renderer.ReadPixels()
	name, err := v.screenshots.CaptureFromPixels(pixels, w, h)
	if err != nil {
		logger.Warn("screenshot failed", zap.Error(err))
		return
	}
	logger.Info("screenshot saved", zap.String("file", name))
}

// applyReloads drains pending hot reloads on the render thread.
func (v *Viewer) applyReloads() {
	for {
		select {
		case path := <-v.reloads:
			v.reload(path)
		default:
			return
		}
	}
}

func (v *Viewer) reloadAll() {
	paths := make(map[string]bool)
	v.registry.Query(scene.CompModel, func(view scene.View) bool {
		paths[view.Model.Path] = true
		return true
	})
	for path := range paths {
		v.reload(path)
	}
}

func (v *Viewer) reload(path string) {
	old, err := Reload(context.Background(), v.registry, v.meshes, path)
	if err != nil {
		logger.Warn("reload failed, keeping previous mesh", zap.String("path", path), zap.Error(err))
		return
	}
	for _, vb := range old {
		v.renderer.Release(vb)
	}
}

// Close releases everything New created.
func (v *Viewer) Close() {
	logger.Info("closing viewer")

	if v.cancel != nil {
		v.cancel()
	}
	if v.watcher != nil {
		v.watcher.Close()
	}
	for _, id := range v.textures {
		renderer.DeleteTexture(id)
	}
	if v.renderer != nil {
		v.renderer.Close()
	}
	if v.window != nil {
		v.window.Close()
	}
}
