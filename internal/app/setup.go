package app

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/envscene/internal/engine/animation"
	"github.com/Faultbox/envscene/internal/engine/camera"
	"github.com/Faultbox/envscene/internal/engine/debugpanel"
	"github.com/Faultbox/envscene/internal/engine/lighting"
	"github.com/Faultbox/envscene/internal/engine/model"
	"github.com/Faultbox/envscene/internal/engine/scene"
	"github.com/Faultbox/envscene/internal/engine/texture"
)

// Debug panel step shared by every slider.
const panelStep = 0.001

func (a *App) setupEnvironment() error {
	faces := a.cfg.Assets.EnvMapFaces
	if len(faces) != 6 {
		return fmt.Errorf("environment map needs 6 faces, got %d", len(faces))
	}
	var names [6]string
	copy(names[:], faces)

	env := a.loader.LoadCubeTexture("environmentMap", names)
	env.ColorSpace = texture.ColorSpaceSRGB
	a.Scene.Environment = env
	return nil
}

func (a *App) setupFloor() {
	fc := a.cfg.Scene.Floor

	color := a.loader.LoadTexture(a.cfg.Assets.FloorColor)
	color.ColorSpace = texture.ColorSpaceSRGB
	color.SetRepeat(fc.Repeat, fc.Repeat)

	normal := a.loader.LoadTexture(a.cfg.Assets.FloorNormal)
	normal.ColorSpace = texture.ColorSpaceLinear
	normal.SetRepeat(fc.Repeat, fc.Repeat)

	mat := scene.NewStandardMaterial("floor")
	mat.Map = color
	mat.NormalMap = normal

	floor := scene.NewMesh("floor", scene.NewCircleGeometry(fc.Radius, fc.Segments), mat)
	floor.Rotation = mgl32.QuatRotate(-math.Pi/2, mgl32.Vec3{1, 0, 0})
	a.Floor = floor
	a.Scene.Add(floor)
}

func (a *App) setupLight() {
	lc := a.cfg.Scene.Light

	l := lighting.NewDirectionalLight(mgl32.Vec3(lc.Color.Linear()), lc.Intensity)
	l.CastShadow = true
	l.Shadow.Camera.Far = lc.ShadowFar
	l.Shadow.MapSize = int32(lc.ShadowMapSize)
	l.Shadow.NormalBias = lc.NormalBias

	node := scene.NewLight("directionalLight", l)
	node.Position = mgl32.Vec3(lc.Position)
	a.Light = node
	a.Scene.Add(node)
}

func (a *App) setupCamera() {
	cc := a.cfg.Scene.Camera

	cam := camera.NewPerspective(cc.FOV, aspect(a.width, a.height), cc.Near, cc.Far)
	cam.Position = mgl32.Vec3(cc.Position)
	a.Camera = cam
	a.Scene.Add(scene.NewCamera("camera", cam))

	controls := camera.NewOrbitControls(cam)
	controls.EnableDamping = true
	controls.DampingFactor = cc.DampingFactor
	controls.ViewportHeight = float32(a.height)
	controls.Update()
	a.Controls = controls
}

func (a *App) loadModel() {
	a.loader.LoadGLTF(a.cfg.Assets.Model, a.attachModel)
}

// attachModel adds a loaded model to the scene and starts its clip.
func (a *App) attachModel(m *model.Model) {
	mc := a.cfg.Scene.Model

	m.Root.SetScalar(mc.Scale)
	a.Model = m
	a.Scene.Add(m.Root)

	a.Mixer = animation.NewMixer(m.Root)
	if clip := m.Clip(mc.Clip); clip != nil {
		a.Mixer.ClipAction(clip).Play()
		a.log.Info("playing clip",
			zap.String("clip", clip.Name),
			zap.Float32("duration", clip.Duration),
		)
	} else {
		a.log.Warn("model has no such clip",
			zap.Int("clip", mc.Clip),
			zap.Int("available", len(m.Clips)),
		)
	}

	a.UpdateAllMaterials()
}

func (a *App) setupPanel() {
	p := debugpanel.New("Debug")
	p.Closed = !a.cfg.Scene.PanelOpen

	p.Add(&a.Params.EnvMapIntensity, "envMapIntensity", 0, 4, panelStep).
		OnChange(func(float32) { a.UpdateAllMaterials() })
	p.Add(&a.Light.Light.Intensity, "lightIntensity", 0, 10, panelStep)
	p.Add(&a.Light.Position[0], "lightX", -5, 5, panelStep)
	p.Add(&a.Light.Position[1], "lightY", -5, 5, panelStep)
	p.Add(&a.Light.Position[2], "lightZ", -5, 5, panelStep)

	a.Panel = p
}

func aspect(width, height int) float32 {
	if width <= 0 || height <= 0 {
		return 1
	}
	return float32(width) / float32(height)
}
