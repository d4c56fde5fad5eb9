// Package app assembles the scene, its asset loads, the debug panel and the
// frame loop. It has no GL or SDL dependency; the viewer package hosts it in
// a window.
package app

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/envscene/internal/assets"
	"github.com/Faultbox/envscene/internal/config"
	"github.com/Faultbox/envscene/internal/engine/animation"
	"github.com/Faultbox/envscene/internal/engine/camera"
	"github.com/Faultbox/envscene/internal/engine/debugpanel"
	"github.com/Faultbox/envscene/internal/engine/model"
	"github.com/Faultbox/envscene/internal/engine/scene"
	"github.com/Faultbox/envscene/internal/engine/timer"
	"github.com/Faultbox/envscene/internal/logger"
)

// Renderer is what the frame loop and resize handler drive.
type Renderer interface {
	SetSize(width, height int)
	SetPixelRatio(ratio float32)
	Render(s *scene.Scene, cam *camera.Perspective)
}

// Params holds values bound to the debug panel that have no natural home
// on a scene object.
type Params struct {
	EnvMapIntensity float32
}

// App owns everything one running scene needs.
type App struct {
	cfg *config.Config

	Scene    *scene.Scene
	Camera   *camera.Perspective
	Controls *camera.OrbitControls
	Light    *scene.Node
	Floor    *scene.Node
	Model    *model.Model
	// Mixer is nil until the model loads.
	Mixer *animation.Mixer
	Panel *debugpanel.Panel
	Timer *timer.Timer

	Params Params

	renderer     Renderer
	loader       *assets.Loader
	state        LoopState
	resizeSource ResizeSource

	width, height int
	pixelRatio    float32

	log *zap.Logger
}

// New builds the scene and starts every asset load. Loads complete as the
// frame loop dispatches them.
func New(cfg *config.Config, r Renderer, loader *assets.Loader) (*App, error) {
	if r == nil {
		return nil, fmt.Errorf("app: renderer is required")
	}
	if loader == nil {
		return nil, fmt.Errorf("app: loader is required")
	}

	a := &App{
		cfg:          cfg,
		Scene:        scene.New(),
		Timer:        timer.New(),
		Params:       Params{EnvMapIntensity: cfg.Scene.EnvMapIntensity},
		renderer:     r,
		loader:       loader,
		state:        LoopNotStarted,
		resizeSource: SelectResizeSource(cfg.Window.HighDPI),
		width:        cfg.Window.Width,
		height:       cfg.Window.Height,
		pixelRatio:   1,
		log:          logger.Named("app"),
	}

	if err := a.setupEnvironment(); err != nil {
		return nil, err
	}
	a.setupFloor()
	a.setupLight()
	a.setupCamera()
	a.loadModel()
	a.setupPanel()

	a.log.Info("scene created",
		zap.Int("width", a.width),
		zap.Int("height", a.height),
		zap.String("resizeSource", a.resizeSource.String()),
		zap.Int("pendingLoads", loader.Pending()),
	)
	return a, nil
}

// UpdateAllMaterials applies the current environment intensity and shadow
// flags to every standard material mesh present in the scene.
func (a *App) UpdateAllMaterials() {
	scene.UpdateAllMaterials(a.Scene, a.Params.EnvMapIntensity)
}

// Size returns the output size in window units.
func (a *App) Size() (int, int) {
	return a.width, a.height
}

// PixelRatio returns the capped ratio last passed to the renderer.
func (a *App) PixelRatio() float32 {
	return a.pixelRatio
}

// Close stops the loop and abandons pending loads.
func (a *App) Close() {
	a.Stop()
	a.loader.Close()
	a.log.Info("app closed")
}
