// Package renderer draws a scene graph with OpenGL: a depth pass into the
// directional light's shadow map, then a lit forward pass into an
// offscreen target sized by the pixel ratio.
package renderer

import (
	"fmt"
	"math"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/envscene/internal/engine/camera"
	"github.com/Faultbox/envscene/internal/engine/framebuffer"
	"github.com/Faultbox/envscene/internal/engine/renderer/shaders"
	"github.com/Faultbox/envscene/internal/engine/scene"
	"github.com/Faultbox/envscene/internal/engine/shader"
	"github.com/Faultbox/envscene/internal/engine/shadow"
	"github.com/Faultbox/envscene/internal/engine/texture"
	"github.com/Faultbox/envscene/internal/engine/ui2d"
	"github.com/Faultbox/envscene/internal/logger"
)

// ToneMapping selects the HDR to display curve.
type ToneMapping int32

// Tone mapping curves. Values match the shader's uToneMapping.
const (
	ToneMappingNone ToneMapping = iota
	ToneMappingLinear
	ToneMappingCineon
	ToneMappingACES
)

// ParseToneMapping maps a config name to a curve.
func ParseToneMapping(name string) (ToneMapping, error) {
	switch name {
	case "none", "":
		return ToneMappingNone, nil
	case "linear":
		return ToneMappingLinear, nil
	case "cineon":
		return ToneMappingCineon, nil
	case "aces":
		return ToneMappingACES, nil
	}
	return ToneMappingNone, fmt.Errorf("unknown tone mapping %q", name)
}

// ShadowType selects shadow filtering. Values match the shader's uShadowType.
type ShadowType int32

// Shadow filters.
const (
	ShadowNone ShadowType = iota
	ShadowBasic
	ShadowPCF
	ShadowPCFSoft
)

// ParseShadowType maps a config name to a filter.
func ParseShadowType(name string) (ShadowType, error) {
	switch name {
	case "basic":
		return ShadowBasic, nil
	case "pcf":
		return ShadowPCF, nil
	case "pcfsoft", "":
		return ShadowPCFSoft, nil
	}
	return ShadowNone, fmt.Errorf("unknown shadow type %q", name)
}

// Config holds renderer configuration.
type Config struct {
	Width       int
	Height      int
	PixelRatio  float32
	MSAASamples int
	ToneMapping ToneMapping
	Exposure    float32
	// Shadows enables the shadow pass; ShadowType picks its filter.
	Shadows    bool
	ShadowType ShadowType
	// ClearColor is written as-is to the sRGB target.
	ClearColor mgl32.Vec3
}

// Texture units
const (
	unitMap = iota
	unitNormalMap
	unitEnvMap
	unitShadowMap
)

// Renderer draws scenes into an offscreen framebuffer and presents it.
type Renderer struct {
	config Config

	width, height int
	pixelRatio    float32

	target    *framebuffer.Framebuffer
	shadowMap *shadow.Map

	standard *shader.Program
	depth    *shader.Program

	meshes    map[*scene.Geometry]*meshBuffers
	textures  map[*texture.Texture]*gpuTexture
	cube      *gpuCube
	materials map[*scene.Material]*materialState

	// 1x1 white fallbacks keep every sampler unit bound to a complete texture.
	white     uint32
	whiteCube uint32
	jointBuf  []mgl32.Mat4

	log *zap.Logger
}

// New creates a new renderer.
// IMPORTANT: Must be called AFTER OpenGL context is created!
func New(cfg Config) (*Renderer, error) {
	log := logger.Named("renderer")

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	if cfg.PixelRatio <= 0 {
		cfg.PixelRatio = 1
	}
	r := &Renderer{
		config:     cfg,
		width:      max(cfg.Width, 1),
		height:     max(cfg.Height, 1),
		pixelRatio: cfg.PixelRatio,
		meshes:     make(map[*scene.Geometry]*meshBuffers),
		textures:   make(map[*texture.Texture]*gpuTexture),
		materials:  make(map[*scene.Material]*materialState),
		jointBuf:   make([]mgl32.Mat4, 0, scene.MaxJoints),
		log:        log,
	}

	var err error
	r.standard, err = shader.NewProgram(shaders.StandardVertexShader, shaders.StandardFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("standard program: %w", err)
	}
	r.depth, err = shader.NewProgram(shaders.DepthVertexShader, shaders.DepthFragmentShader)
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("depth program: %w", err)
	}

	bw, bh := r.DrawingBufferSize()
	r.target, err = framebuffer.New(int32(bw), int32(bh), int32(cfg.MSAASamples))
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("scene target: %w", err)
	}

	if cfg.Shadows && cfg.ShadowType != ShadowNone {
		r.shadowMap, err = shadow.NewMap(shadow.DefaultSize)
		if err != nil {
			r.Close()
			return nil, fmt.Errorf("shadow map: %w", err)
		}
	}

	r.white = createWhiteTexture()
	r.whiteCube = createWhiteCube()

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)

	log.Debug("renderer created",
		zap.Int("bufferWidth", bw),
		zap.Int("bufferHeight", bh),
		zap.Int("msaa", cfg.MSAASamples),
	)
	return r, nil
}

// Close releases all GPU resources.
func (r *Renderer) Close() {
	r.log.Info("closing renderer")
	for g, m := range r.meshes {
		m.destroy()
		delete(r.meshes, g)
	}
	for k, t := range r.textures {
		t.destroy()
		delete(r.textures, k)
	}
	if r.cube != nil {
		r.cube.destroy()
		r.cube = nil
	}
	if r.white != 0 {
		gl.DeleteTextures(1, &r.white)
	}
	if r.whiteCube != 0 {
		gl.DeleteTextures(1, &r.whiteCube)
	}
	if r.target != nil {
		r.target.Destroy()
	}
	if r.shadowMap != nil {
		r.shadowMap.Delete()
	}
	if r.standard != nil {
		r.standard.Delete()
	}
	if r.depth != nil {
		r.depth.Delete()
	}
}

// SetSize sets the output size in window units.
func (r *Renderer) SetSize(width, height int) {
	r.width, r.height = max(width, 1), max(height, 1)
	r.resizeTarget()
}

// SetPixelRatio sets drawing-buffer pixels per window unit.
func (r *Renderer) SetPixelRatio(ratio float32) {
	if ratio <= 0 {
		ratio = 1
	}
	r.pixelRatio = ratio
	r.resizeTarget()
}

// Size returns the output size in window units.
func (r *Renderer) Size() (int, int) {
	return r.width, r.height
}

// DrawingBufferSize returns the offscreen target size in pixels.
func (r *Renderer) DrawingBufferSize() (int, int) {
	return bufferSize(r.width, r.pixelRatio), bufferSize(r.height, r.pixelRatio)
}

func bufferSize(n int, ratio float32) int {
	return max(int(math.Floor(float64(float32(n)*ratio))), 1)
}

func (r *Renderer) resizeTarget() {
	if r.target == nil {
		return
	}
	bw, bh := r.DrawingBufferSize()
	r.target.Resize(int32(bw), int32(bh))
	r.log.Debug("renderer resized",
		zap.Int("width", r.width),
		zap.Int("height", r.height),
		zap.Float32("pixelRatio", r.pixelRatio),
	)
}

// Render draws s from cam into the offscreen target.
func (r *Renderer) Render(s *scene.Scene, cam *camera.Perspective) {
	if s == nil || cam == nil {
		return
	}
	s.UpdateMatrixWorld()
	meshes := s.Meshes()

	var lightNode *scene.Node
	if lights := s.Lights(); len(lights) > 0 {
		lightNode = lights[0]
	}

	shadowType := ShadowNone
	var shadowMatrix mgl32.Mat4
	if r.shadowMap.Valid() && lightNode != nil && lightNode.Light.CastShadow {
		shadowType = r.config.ShadowType
		shadowMatrix = lightNode.Light.ShadowMatrix(lightNode.WorldPosition())
		r.renderShadowPass(meshes, shadowMatrix, lightNode.Light.Shadow.MapSize)
	}

	r.target.Bind()
	c := r.config.ClearColor
	r.target.Clear(c[0], c[1], c[2], 1)
	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)

	p := r.standard
	p.Use()
	p.SetMat4("uViewProjection", cam.ViewProjection())
	p.SetVec3("uCameraPos", cam.Position)
	p.SetInt("uToneMapping", int32(r.config.ToneMapping))
	p.SetFloat("uExposure", r.config.Exposure)
	p.SetInt("uMap", unitMap)
	p.SetInt("uNormalMap", unitNormalMap)
	p.SetInt("uEnvMap", unitEnvMap)
	p.SetInt("uShadowMap", unitShadowMap)

	if lightNode != nil {
		l := lightNode.Light
		p.SetBool("uHasLight", true)
		p.SetVec3("uLightDir", l.Direction(lightNode.WorldPosition()))
		p.SetVec3("uLightRadiance", l.Radiance())
		p.SetFloat("uShadowBias", l.Shadow.Bias)
		p.SetFloat("uNormalBias", l.Shadow.NormalBias)
	} else {
		p.SetBool("uHasLight", false)
	}

	p.SetInt("uShadowType", int32(shadowType))
	if shadowType != ShadowNone {
		p.SetMat4("uShadowMatrix", shadowMatrix)
		p.SetFloat("uShadowMapSize", float32(r.shadowMap.Size()))
		r.shadowMap.Bind(unitShadowMap)
	} else {
		// Keep the shadow sampler unit on a depth-compare texture.
		if r.shadowMap.Valid() {
			r.shadowMap.Bind(unitShadowMap)
		}
	}

	envLod, hasEnv := r.bindEnvironment(s)
	p.SetBool("uHasEnv", hasEnv)
	p.SetFloat("uEnvMaxLod", envLod)

	for _, n := range meshes {
		r.drawMesh(n)
	}

	gl.BindVertexArray(0)
	gl.UseProgram(0)
	r.target.Resolve()
}

// Present draws the last rendered frame over the whole window. The caller
// sets the default framebuffer viewport to the drawable size.
func (r *Renderer) Present(ui *ui2d.Renderer) {
	ui.DrawTexture(0, 0, float32(r.width), float32(r.height), r.target.ColorTexture())
}

// ReadPixels returns the last rendered frame as bottom-up RGBA rows and
// its size in pixels.
func (r *Renderer) ReadPixels() ([]byte, int, int) {
	w, h := r.target.Size()
	return r.target.ReadPixels(), int(w), int(h)
}

func (r *Renderer) renderShadowPass(meshes []*scene.Node, lightVP mgl32.Mat4, mapSize int32) {
	r.shadowMap.Resize(mapSize)
	r.shadowMap.Begin()

	p := r.depth
	p.Use()
	p.SetMat4("uLightViewProjection", lightVP)
	for _, n := range meshes {
		if !n.CastShadow {
			continue
		}
		buf := r.meshBuffers(n.Geometry)
		if buf == nil {
			continue
		}
		p.SetMat4("uModel", n.WorldMatrix())
		r.setSkinning(p, n)
		buf.draw()
	}

	r.shadowMap.End()
}

func (r *Renderer) setSkinning(p *shader.Program, n *scene.Node) {
	if n.Skin == nil || !n.Geometry.IsSkinned() {
		p.SetBool("uSkinned", false)
		return
	}
	r.jointBuf = n.Skin.JointMatrices(n.WorldMatrix(), r.jointBuf)
	if len(r.jointBuf) > scene.MaxJoints {
		r.jointBuf = r.jointBuf[:scene.MaxJoints]
	}
	p.SetBool("uSkinned", true)
	p.SetMat4Array("uJoints", r.jointBuf)
}

func (r *Renderer) drawMesh(n *scene.Node) {
	mat := n.Material
	if mat == nil {
		return
	}
	buf := r.meshBuffers(n.Geometry)
	if buf == nil {
		return
	}
	st := r.materialState(mat)
	p := r.standard

	p.SetMat4("uModel", n.WorldMatrix())
	r.setSkinning(p, n)

	p.SetBool("uLit", st.lit)
	p.SetVec4("uBaseColor", mat.Color)
	p.SetFloat("uMetalness", mat.Metalness)
	p.SetFloat("uRoughness", mat.Roughness)
	p.SetFloat("uEnvMapIntensity", mat.EnvMapIntensity)
	p.SetBool("uReceiveShadow", n.ReceiveShadow)

	uv := mgl32.Ident3()
	hasMap := st.hasMap && r.bindTexture(mat.Map, unitMap)
	if hasMap {
		uv = mat.Map.UVTransform()
	}
	hasNormal := st.hasNormalMap && r.bindTexture(mat.NormalMap, unitNormalMap)
	if !hasMap && hasNormal {
		uv = mat.NormalMap.UVTransform()
	}
	p.SetBool("uHasMap", hasMap)
	p.SetBool("uHasNormalMap", hasNormal)
	p.SetMat3("uUVTransform", uv)

	if st.doubleSided {
		gl.Disable(gl.CULL_FACE)
	} else {
		gl.Enable(gl.CULL_FACE)
		gl.CullFace(gl.BACK)
	}
	buf.draw()
}

// materialState caches the parts of a material that select a shader
// path. It is rebuilt only when the material asks for it.
type materialState struct {
	lit          bool
	hasMap       bool
	hasNormalMap bool
	doubleSided  bool
}

func (r *Renderer) materialState(m *scene.Material) *materialState {
	st, ok := r.materials[m]
	if ok && !m.NeedsUpdate {
		return st
	}
	if !ok {
		st = &materialState{}
		r.materials[m] = st
	}
	*st = materialState{
		lit:          m.Kind == scene.MaterialStandard,
		hasMap:       m.Map != nil,
		hasNormalMap: m.NormalMap != nil && m.Kind == scene.MaterialStandard,
		doubleSided:  m.DoubleSided,
	}
	m.NeedsUpdate = false
	return st
}
