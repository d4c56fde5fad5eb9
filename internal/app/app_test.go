package app

import (
	"bytes"
	"context"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"math"
	"testing"
	"testing/fstest"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/envscene/internal/assets"
	"github.com/Faultbox/envscene/internal/config"
	"github.com/Faultbox/envscene/internal/engine/camera"
	"github.com/Faultbox/envscene/internal/engine/scene"
	"github.com/Faultbox/envscene/internal/engine/texture"
	"github.com/Faultbox/envscene/internal/engine/timer"
)

// near compares vectors with an absolute tolerance; mgl32's ApproxEqual is
// relative and breaks down around zero.
func near(a, b mgl32.Vec3, eps float32) bool {
	return a.Sub(b).Len() <= eps
}

// fakeRenderer records what the app asks of it.
type fakeRenderer struct {
	width, height int
	pixelRatio    float32
	renders       int
	// mixerTime is read from the app during Render.
	mixerTime func() float32
	seenTimes []float32
	// onRender runs at the start of each Render.
	onRender func()
}

func (f *fakeRenderer) SetSize(w, h int)        { f.width, f.height = w, h }
func (f *fakeRenderer) SetPixelRatio(r float32) { f.pixelRatio = r }
func (f *fakeRenderer) Render(*scene.Scene, *camera.Perspective) {
	f.renders++
	if f.onRender != nil {
		f.onRender()
	}
	if f.mixerTime != nil {
		f.seenTimes = append(f.seenTimes, f.mixerTime())
	}
}

const foxGLTF = `{
  "asset": {"version": "2.0"},
  "scene": 0,
  "scenes": [{"nodes": [0]}],
  "nodes": [{"name": "fox", "mesh": 0}],
  "meshes": [{"primitives": [{"attributes": {"POSITION": 0}, "material": 0}]}],
  "materials": [{"name": "fur"}],
  "animations": [{
    "name": "Survey",
    "channels": [{"sampler": 0, "target": {"node": 0, "path": "translation"}}],
    "samplers": [{"input": 1, "output": 2}]
  }],
  "buffers": [{"uri": "Fox.bin", "byteLength": 68}],
  "bufferViews": [
    {"buffer": 0, "byteOffset": 0, "byteLength": 36},
    {"buffer": 0, "byteOffset": 36, "byteLength": 8},
    {"buffer": 0, "byteOffset": 44, "byteLength": 24}
  ],
  "accessors": [
    {"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3", "min": [0, 0, 0], "max": [1, 1, 0]},
    {"bufferView": 1, "componentType": 5126, "count": 2, "type": "SCALAR", "min": [0], "max": [2]},
    {"bufferView": 2, "componentType": 5126, "count": 2, "type": "VEC3"}
  ]
}`

func foxBin(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	for _, v := range [][]float32{
		{0, 0, 0, 1, 0, 0, 0, 1, 0},
		{0, 2},
		{0, 0, 0, 4, 0, 0},
	} {
		if err := binary.Write(&buf, binary.LittleEndian, v); err != nil {
			t.Fatal(err)
		}
	}
	return buf.Bytes()
}

func solidPNG(t *testing.T, size int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for i := range img.Pix {
		img.Pix[i] = 128
	}
	img.SetRGBA(0, 0, color.RGBA{255, 255, 255, 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// sceneFS holds every asset the default config asks for. Image files keep
// their .jpg names; decoding sniffs the content.
func sceneFS(t *testing.T, withModel bool) fstest.MapFS {
	t.Helper()
	cfg := config.Default()
	fsys := fstest.MapFS{
		cfg.Assets.FloorColor:  {Data: solidPNG(t, 4)},
		cfg.Assets.FloorNormal: {Data: solidPNG(t, 4)},
	}
	for _, face := range cfg.Assets.EnvMapFaces {
		fsys[face] = &fstest.MapFile{Data: solidPNG(t, 2)}
	}
	if withModel {
		fsys[cfg.Assets.Model] = &fstest.MapFile{Data: []byte(foxGLTF)}
		fsys["models/Fox/glTF/Fox.bin"] = &fstest.MapFile{Data: foxBin(t)}
	}
	return fsys
}

type clock struct{ now time.Time }

func (c *clock) Now() time.Time          { return c.now }
func (c *clock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestApp(t *testing.T, withModel bool) (*App, *fakeRenderer, *clock) {
	t.Helper()
	m := assets.NewManager()
	m.AddFS(sceneFS(t, withModel))
	loader := assets.NewLoader(m, 2)

	r := &fakeRenderer{}
	a, err := New(config.Default(), r, loader)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(a.Close)

	c := &clock{now: time.Unix(1000, 0)}
	a.Timer = timer.NewWithClock(c.Now)
	r.mixerTime = func() float32 {
		if a.Mixer == nil {
			return -1
		}
		return a.Mixer.Time()
	}
	return a, r, c
}

func flushLoads(t *testing.T, a *App) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.loader.Flush(ctx); err != nil {
		t.Fatalf("Flush: %v", err)
	}
}

func TestNewBuildsScene(t *testing.T) {
	a, _, _ := newTestApp(t, true)

	// The disc is built in the XY plane; rotated flat, its +Y points along Z.
	up := a.Floor.Rotation.Rotate(mgl32.Vec3{0, 1, 0})
	if !near(up, mgl32.Vec3{0, 0, -1}, 1e-5) && !near(up, mgl32.Vec3{0, 0, 1}, 1e-5) {
		t.Errorf("floor not rotated onto the ground plane: %v", up)
	}
	if !a.Floor.IsMesh() || a.Floor.Material.Map == nil || a.Floor.Material.NormalMap == nil {
		t.Fatal("floor should be a textured mesh")
	}
	if a.Floor.Material.Map.ColorSpace != texture.ColorSpaceSRGB ||
		a.Floor.Material.NormalMap.ColorSpace != texture.ColorSpaceLinear {
		t.Error("floor texture color spaces wrong")
	}
	for _, tex := range []*texture.Texture{a.Floor.Material.Map, a.Floor.Material.NormalMap} {
		if tex.Repeat != (mgl32.Vec2{1.5, 1.5}) || tex.WrapS != texture.WrapRepeat || tex.WrapT != texture.WrapRepeat {
			t.Errorf("%s: repeat %v wrap %v/%v", tex.Name, tex.Repeat, tex.WrapS, tex.WrapT)
		}
	}

	l := a.Light.Light
	if a.Light.Position != (mgl32.Vec3{3.5, 2, -1.25}) {
		t.Errorf("light position = %v", a.Light.Position)
	}
	if l.Intensity != 2 || !l.CastShadow {
		t.Errorf("light intensity %v castShadow %v", l.Intensity, l.CastShadow)
	}
	if l.Shadow.Camera.Far != 15 || l.Shadow.MapSize != 1024 || l.Shadow.NormalBias != 0.05 {
		t.Errorf("shadow = %+v", l.Shadow)
	}

	if a.Camera.FOV != 35 || a.Camera.Near != 0.1 || a.Camera.Far != 100 {
		t.Errorf("camera = %+v", a.Camera)
	}
	if !a.Controls.EnableDamping {
		t.Error("damping should be enabled")
	}
	if a.Mixer != nil {
		t.Error("mixer must be nil before the model loads")
	}
	if a.State() != LoopNotStarted {
		t.Errorf("state = %v", a.State())
	}
}

func TestPanelControls(t *testing.T) {
	a, _, _ := newTestApp(t, false)

	if !a.Panel.Closed {
		t.Error("panel should start collapsed")
	}
	tests := []struct {
		name     string
		min, max float32
	}{
		{"envMapIntensity", 0, 4},
		{"lightIntensity", 0, 10},
		{"lightX", -5, 5},
		{"lightY", -5, 5},
		{"lightZ", -5, 5},
	}
	if got := len(a.Panel.Controls()); got != len(tests) {
		t.Fatalf("controls = %d, want %d", got, len(tests))
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := a.Panel.Find(tt.name)
			if c == nil {
				t.Fatal("missing control")
			}
			if c.Min != tt.min || c.Max != tt.max || c.Step != 0.001 {
				t.Errorf("range [%v, %v] step %v", c.Min, c.Max, c.Step)
			}
		})
	}
	if got := a.Panel.Find("envMapIntensity").Get(); got != 0.4 {
		t.Errorf("envMapIntensity = %v, want 0.4", got)
	}

	a.Panel.Find("lightX").Set(1.23456)
	a.Panel.Find("lightIntensity").Set(42)
	if a.Light.Position[0] != 1.235 {
		t.Errorf("lightX bound value = %v", a.Light.Position[0])
	}
	if a.Light.Light.Intensity != 10 {
		t.Errorf("light intensity = %v, want clamped 10", a.Light.Light.Intensity)
	}
}

func TestLoopStates(t *testing.T) {
	a, r, _ := newTestApp(t, false)

	a.Tick()
	if r.renders != 0 {
		t.Error("Tick before Start must not render")
	}
	if err := a.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := a.Start(); err == nil {
		t.Error("second Start should fail")
	}
	a.Tick()
	a.Tick()
	if r.renders != 2 {
		t.Errorf("renders = %d, want 2", r.renders)
	}

	a.Stop()
	a.Tick()
	if r.renders != 2 {
		t.Error("Tick after Stop must not render")
	}
	if err := a.Start(); err == nil {
		t.Error("Start after Stop should fail")
	}
	if a.State() != LoopStopped {
		t.Errorf("state = %v", a.State())
	}
}

// TestTickOrder checks one frame against the fixed order: completions are
// dispatched first, the mixer steps by the frame delta, damping moves the
// camera, and only then does the frame render.
func TestTickOrder(t *testing.T) {
	a, r, c := newTestApp(t, true)

	// Wait until every load has finished but none has been dispatched.
	deadline := time.Now().Add(5 * time.Second)
	for a.loader.Queued() < a.loader.Pending() {
		if time.Now().After(deadline) {
			t.Fatalf("loads never finished: queued %d pending %d", a.loader.Queued(), a.loader.Pending())
		}
		time.Sleep(time.Millisecond)
	}
	if a.Mixer != nil {
		t.Fatal("mixer attached before Dispatch")
	}

	if err := a.Start(); err != nil {
		t.Fatal(err)
	}
	a.Controls.Rotate(-40, 0)
	before := a.Camera.Position

	var (
		mixerAtRender bool
		posAtRender   mgl32.Vec3
	)
	r.onRender = func() {
		mixerAtRender = a.Mixer != nil
		posAtRender = a.Camera.Position
	}

	c.Advance(16 * time.Millisecond)
	a.Tick()

	if !mixerAtRender {
		t.Fatal("model completion not dispatched before render")
	}
	if got := r.seenTimes[len(r.seenTimes)-1]; math.Abs(float64(got-0.016)) > 1e-6 {
		t.Errorf("mixer time at render = %v, want 0.016 (stepped in the dispatching tick)", got)
	}
	if near(posAtRender, before, 1e-6) {
		t.Error("controls update did not run before render")
	}
	if a.loader.Pending() != 0 {
		t.Errorf("pending = %d after tick", a.loader.Pending())
	}
}

func TestModelLoadAttachesMixer(t *testing.T) {
	a, r, c := newTestApp(t, true)
	if err := a.Start(); err != nil {
		t.Fatal(err)
	}

	a.Tick()
	flushLoads(t, a)

	if a.Mixer == nil || a.Model == nil {
		t.Fatal("model did not attach")
	}
	if a.Model.Root.Parent() != a.Scene.Root {
		t.Error("model root not in scene")
	}
	if a.Model.Root.Scale != (mgl32.Vec3{0.02, 0.02, 0.02}) {
		t.Errorf("model scale = %v", a.Model.Root.Scale)
	}
	if !a.Scene.Environment.Ready() {
		t.Error("environment not loaded")
	}
	if !a.Floor.Material.Map.Ready() {
		t.Error("floor texture not loaded")
	}

	// Model load re-runs the material updater over everything present.
	for _, n := range a.Scene.Meshes() {
		mat, ok := n.StandardMaterial()
		if !ok {
			continue
		}
		if mat.EnvMapIntensity != 0.4 || !n.CastShadow || !n.ReceiveShadow {
			t.Errorf("%s: envMapIntensity %v cast %v receive %v", n.Name, mat.EnvMapIntensity, n.CastShadow, n.ReceiveShadow)
		}
	}

	// The mixer advances by the timer delta before the frame renders.
	c.Advance(500 * time.Millisecond)
	a.Tick()
	got := r.seenTimes[len(r.seenTimes)-1]
	if math.Abs(float64(got-0.5)) > 1e-6 {
		t.Errorf("mixer time at render = %v, want 0.5", got)
	}
	fox := a.Model.Root.FindByName("fox")
	if math.Abs(float64(fox.Position[0]-1)) > 1e-5 {
		t.Errorf("fox x = %v, want 1 (a quarter through the clip)", fox.Position[0])
	}
}

func TestEnvMapSliderUpdatesMaterials(t *testing.T) {
	a, _, _ := newTestApp(t, true)
	flushLoads(t, a)

	for _, n := range a.Scene.Meshes() {
		if m, ok := n.StandardMaterial(); ok {
			m.NeedsUpdate = false
		}
	}
	if !a.Panel.Find("envMapIntensity").Set(2) {
		t.Fatal("Set reported no change")
	}
	count := 0
	for _, n := range a.Scene.Meshes() {
		m, ok := n.StandardMaterial()
		if !ok {
			continue
		}
		count++
		if m.EnvMapIntensity != 2 || !m.NeedsUpdate {
			t.Errorf("%s: intensity %v needsUpdate %v", n.Name, m.EnvMapIntensity, m.NeedsUpdate)
		}
	}
	if count != 2 {
		t.Errorf("standard meshes = %d, want floor + fox", count)
	}

	a.UpdateAllMaterials()
	a.UpdateAllMaterials()
	if m, _ := a.Floor.StandardMaterial(); m.EnvMapIntensity != 2 {
		t.Error("repeated updates must be idempotent")
	}
}

func TestMissingModel(t *testing.T) {
	a, r, _ := newTestApp(t, false)
	if err := a.Start(); err != nil {
		t.Fatal(err)
	}
	flushLoads(t, a)
	a.Tick()

	if a.Mixer != nil || a.Model != nil {
		t.Error("failed model load must leave the mixer nil")
	}
	if r.renders != 1 {
		t.Errorf("renders = %d", r.renders)
	}
}

func TestResize(t *testing.T) {
	a, r, _ := newTestApp(t, false)

	tests := []struct {
		name      string
		src       ResizeSource
		w, h      int
		dpr       float32
		applied   bool
		wantRatio float32
	}{
		{"other source ignored", SourceWindow, 640, 480, 1, false, 0},
		{"retina", SourceViewport, 800, 400, 2, true, 2},
		{"capped", SourceViewport, 1000, 500, 3, true, 2},
		{"fractional", SourceViewport, 300, 300, 1.5, true, 1.5},
		{"zero ratio", SourceViewport, 300, 150, 0, true, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r.pixelRatio = 0
			got := a.HandleResize(tt.src, tt.w, tt.h, tt.dpr)
			if got != tt.applied {
				t.Fatalf("applied = %v", got)
			}
			if !tt.applied {
				if r.pixelRatio != 0 {
					t.Error("ignored event reached the renderer")
				}
				return
			}
			if r.width != tt.w || r.height != tt.h || r.pixelRatio != tt.wantRatio {
				t.Errorf("renderer = %dx%d @%v", r.width, r.height, r.pixelRatio)
			}
			if want := float32(tt.w) / float32(tt.h); a.Camera.Aspect != want {
				t.Errorf("aspect = %v, want %v", a.Camera.Aspect, want)
			}
		})
	}
}

func TestSelectResizeSource(t *testing.T) {
	if SelectResizeSource(true) != SourceViewport {
		t.Error("HiDPI windows use the viewport source")
	}
	if SelectResizeSource(false) != SourceWindow {
		t.Error("plain windows use the window source")
	}
}

func TestDrawableScaled(t *testing.T) {
	tests := []struct {
		name           string
		ww, wh, dw, dh int
		want           bool
		source         ResizeSource
	}{
		{"retina", 800, 600, 1600, 1200, true, SourceViewport},
		{"hidpi requested on a 1x display", 800, 600, 800, 600, false, SourceWindow},
		{"odd scale", 1280, 720, 1920, 1081, true, SourceViewport},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DrawableScaled(tt.ww, tt.wh, tt.dw, tt.dh)
			if got != tt.want {
				t.Errorf("DrawableScaled = %v, want %v", got, tt.want)
			}
			if src := SelectResizeSource(got); src != tt.source {
				t.Errorf("source = %v, want %v", src, tt.source)
			}
		})
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Assets.EnvMapFaces = cfg.Assets.EnvMapFaces[:5]
	loader := assets.NewLoader(assets.NewManager(), 1)
	defer loader.Close()
	if _, err := New(cfg, &fakeRenderer{}, loader); err == nil {
		t.Error("expected error for 5 cube faces")
	}
	if _, err := New(config.Default(), nil, loader); err == nil {
		t.Error("expected error for nil renderer")
	}
}
