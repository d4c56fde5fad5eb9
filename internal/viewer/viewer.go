// Package viewer hosts the app in an SDL window: it owns the GL context,
// feeds input to the orbit controls and the debug panel, and presents
// frames.
package viewer

import (
	"fmt"
	"time"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/envscene/internal/app"
	"github.com/Faultbox/envscene/internal/assets"
	"github.com/Faultbox/envscene/internal/config"
	"github.com/Faultbox/envscene/internal/engine/input"
	"github.com/Faultbox/envscene/internal/engine/renderer"
	"github.com/Faultbox/envscene/internal/engine/screenshot"
	"github.com/Faultbox/envscene/internal/engine/ui2d"
	"github.com/Faultbox/envscene/internal/engine/window"
	"github.com/Faultbox/envscene/internal/logger"
)

// Viewer is the windowed host.
type Viewer struct {
	cfg      *config.Config
	window   *window.Window
	renderer *renderer.Renderer
	ui       *ui2d.Context
	input    *input.Input
	manager  *assets.Manager
	app      *app.App
	capture  *screenshot.Capture

	// Drags that start over the panel belong to the panel until release.
	dragButton uint8
	dragUI     bool

	log *zap.Logger
}

// New opens the window and builds the scene.
func New(cfg *config.Config) (*Viewer, error) {
	log := logger.Named("viewer")
	log.Info("initializing viewer",
		zap.String("title", cfg.Window.Title),
		zap.Int("width", cfg.Window.Width),
		zap.Int("height", cfg.Window.Height),
		zap.String("assets", cfg.Assets.Root),
	)

	toneMapping, err := renderer.ParseToneMapping(cfg.Render.ToneMapping)
	if err != nil {
		return nil, err
	}
	shadowType, err := renderer.ParseShadowType(cfg.Render.ShadowType)
	if err != nil {
		return nil, err
	}
	samples := 0
	if cfg.Render.Antialias {
		samples = cfg.Render.MSAASamples
	}

	v := &Viewer{cfg: cfg, log: log}

	// Create window (this also creates OpenGL context)
	v.window, err = window.New(window.Config{
		Title:       cfg.Window.Title,
		Width:       cfg.Window.Width,
		Height:      cfg.Window.Height,
		Fullscreen:  cfg.Window.Fullscreen,
		VSync:       cfg.Window.VSync,
		HighDPI:     cfg.Window.HighDPI,
		MSAASamples: samples,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	width, height := v.window.GetSize()

	// Create renderer (AFTER window, since OpenGL context must exist)
	v.renderer, err = renderer.New(renderer.Config{
		Width:       width,
		Height:      height,
		PixelRatio:  1,
		MSAASamples: samples,
		ToneMapping: toneMapping,
		Exposure:    cfg.Render.Exposure,
		Shadows:     cfg.Render.Shadows,
		ShadowType:  shadowType,
		ClearColor:  mgl32.Vec3(cfg.Render.ClearColor),
	})
	if err != nil {
		v.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	v.ui, err = ui2d.NewContext(width, height)
	if err != nil {
		v.Close()
		return nil, fmt.Errorf("failed to create ui: %w", err)
	}

	v.input = input.New()
	v.capture = screenshot.New(cfg.Capture.Dir, cfg.Capture.Prefix)

	v.manager = assets.NewManager()
	if err := v.manager.AddDir(cfg.Assets.Root); err != nil {
		v.Close()
		return nil, err
	}
	loader := assets.NewLoader(v.manager, cfg.Assets.Workers)

	v.app, err = app.New(cfg, v.renderer, loader)
	if err != nil {
		loader.Close()
		v.Close()
		return nil, fmt.Errorf("failed to create scene: %w", err)
	}

	// The config only asks for HiDPI; the drawable size shows whether it
	// was granted.
	ww, wh := v.window.GetSize()
	dw, dh := v.window.DrawableSize()
	v.app.SetResizeSource(app.SelectResizeSource(app.DrawableScaled(ww, wh, dw, dh)))
	v.app.Resize(width, height, v.window.PixelRatio())

	log.Info("viewer initialized",
		zap.String("resizeSource", v.app.ResizeSource().String()),
		zap.Float32("pixelRatio", v.app.PixelRatio()),
	)
	return v, nil
}

// Run drives the frame loop until the window closes.
func (v *Viewer) Run() error {
	if err := v.app.Start(); err != nil {
		return err
	}

	frameCount := 0
	fpsTimer := time.Now()

	v.log.Info("starting frame loop")

	for v.app.State() == app.LoopRunning {
		// 1. Process input
		if v.input.Update() {
			v.app.Stop()
			break
		}
		v.handleEvents()

		// 2. Update and render the scene offscreen
		v.app.Tick()

		// 3. Present the scene and the panel
		v.present()
		v.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			v.log.Debug("fps", zap.Int("count", frameCount))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	return nil
}

func (v *Viewer) handleEvents() {
	for _, event := range v.input.Events() {
		v.feedUI(event)

		switch event.Type {
		case input.EventViewportResize:
			v.resize(app.SourceViewport)
		case input.EventWindowResize:
			v.resize(app.SourceWindow)
		case input.EventKeyDown:
			switch event.Key {
			case sdl.SCANCODE_ESCAPE:
				v.app.Stop()
			case sdl.SCANCODE_F12:
				v.screenshot()
			}
		case input.EventMouseDown:
			if v.dragButton == 0 {
				v.dragButton = event.Button
				v.dragUI = v.ui.WantsMouse()
			}
		case input.EventMouseUp:
			if event.Button == v.dragButton {
				v.dragButton = 0
				v.dragUI = false
			}
		case input.EventMouseMove:
			if v.dragButton == 0 || v.dragUI {
				continue
			}
			dx, dy := float32(event.DeltaX), float32(event.DeltaY)
			switch v.dragButton {
			case input.ButtonLeft:
				v.app.Controls.Rotate(dx, dy)
			case input.ButtonRight, input.ButtonMiddle:
				v.app.Controls.Pan(dx, dy)
			}
		case input.EventMouseWheel:
			if !v.ui.WantsMouse() {
				v.app.Controls.Dolly(event.Wheel)
			}
		}
	}
}

// feedUI mirrors the pointer into the panel's input state.
func (v *Viewer) feedUI(event input.Event) {
	in := v.ui.Input()
	switch event.Type {
	case input.EventMouseMove:
		in.MouseX, in.MouseY = float32(event.MouseX), float32(event.MouseY)
	case input.EventMouseDown, input.EventMouseUp:
		in.MouseX, in.MouseY = float32(event.MouseX), float32(event.MouseY)
		down := event.Type == input.EventMouseDown
		switch event.Button {
		case input.ButtonLeft:
			in.MouseLeftDown = down
		case input.ButtonRight:
			in.MouseRightDown = down
		}
	case input.EventMouseWheel:
		in.ScrollY += event.Wheel
	}
}

// resize reads the current size from the window, since SDL reports
// different units for the two sources.
func (v *Viewer) resize(src app.ResizeSource) {
	width, height := v.window.GetSize()
	if v.app.HandleResize(src, width, height, v.window.PixelRatio()) {
		v.ui.Resize(width, height)
	}
}

func (v *Viewer) present() {
	dw, dh := v.window.DrawableSize()
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.Viewport(0, 0, int32(dw), int32(dh))
	gl.ClearColor(0, 0, 0, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	v.renderer.Present(v.ui.Renderer())

	v.ui.Begin()
	ui2d.DrawDebugPanel(v.ui, v.app.Panel)
	v.ui.End()
}

func (v *Viewer) screenshot() {
	pixels, w, h := v.renderer.ReadPixels()
	path, err := v.capture.SaveGL(pixels, w, h)
	if err != nil {
		v.log.Error("screenshot failed", zap.Error(err))
		return
	}
	v.log.Info("screenshot saved", zap.String("path", path))
}

// Close releases everything in reverse creation order.
func (v *Viewer) Close() {
	v.log.Info("closing viewer")

	if v.app != nil {
		v.app.Close()
	}
	if v.manager != nil {
		v.manager.Close()
	}
	if v.ui != nil {
		v.ui.Close()
	}
	if v.renderer != nil {
		v.renderer.Close()
	}
	if v.window != nil {
		v.window.Close()
	}
}
