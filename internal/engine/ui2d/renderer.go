// Package ui2d provides a small immediate-mode 2D UI drawn with OpenGL,
// used for the debug panel overlay and for presenting the scene texture.
package ui2d

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/envscene/internal/engine/shader"
)

const quadVS = `#version 410 core
layout (location = 0) in vec2 aPos;
layout (location = 1) in vec2 aUV;
layout (location = 2) in vec4 aColor;

uniform mat4 uProjection;

out vec2 vUV;
out vec4 vColor;

void main() {
	gl_Position = uProjection * vec4(aPos, 0.0, 1.0);
	vUV = aUV;
	vColor = aColor;
}
`

// Solid quads ignore the sampler; glyph quads take coverage from the
// atlas alpha; the scene quad is opaque.
const quadFS = `#version 410 core
uniform sampler2D uTexture;
uniform int uMode;

in vec2 vUV;
in vec4 vColor;
out vec4 FragColor;

void main() {
	if (uMode == 0) {
		FragColor = vColor;
	} else if (uMode == 1) {
		FragColor = vec4(vColor.rgb, vColor.a * texture(uTexture, vUV).a);
	} else {
		FragColor = vec4(texture(uTexture, vUV).rgb, 1.0);
	}
}
`

const (
	modeSolid int32 = iota
	modeGlyph
	modeScene
)

// pos(2) + uv(2) + color(4)
const vertexFloats = 8

// batch is a growable triangle list uploaded once per frame.
type batch struct {
	vao, vbo uint32
	vertices []float32
}

func newBatch() *batch {
	b := &batch{vertices: make([]float32, 0, 4096)}
	gl.GenVertexArrays(1, &b.vao)
	gl.BindVertexArray(b.vao)
	gl.GenBuffers(1, &b.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, b.vbo)

	stride := int32(vertexFloats * 4)
	gl.VertexAttribPointerWithOffset(0, 2, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(1, 2, gl.FLOAT, false, stride, 2*4)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(2, 4, gl.FLOAT, false, stride, 4*4)
	gl.EnableVertexAttribArray(2)

	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	return b
}

func (b *batch) reset() {
	b.vertices = b.vertices[:0]
}

// quad appends two triangles covering (x, y, w, h) in screen space.
func (b *batch) quad(x, y, w, h, u0, v0, u1, v1 float32, c Color) {
	b.vertices = appendQuad(b.vertices, x, y, w, h, u0, v0, u1, v1, c)
}

func (b *batch) draw() {
	if len(b.vertices) == 0 {
		return
	}
	gl.BindVertexArray(b.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, b.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(b.vertices)*4, gl.Ptr(b.vertices), gl.STREAM_DRAW)
	gl.DrawArrays(gl.TRIANGLES, 0, int32(len(b.vertices)/vertexFloats))
}

func (b *batch) delete() {
	gl.DeleteVertexArrays(1, &b.vao)
	gl.DeleteBuffers(1, &b.vbo)
}

func appendQuad(dst []float32, x, y, w, h, u0, v0, u1, v1 float32, c Color) []float32 {
	return append(dst,
		x, y, u0, v0, c[0], c[1], c[2], c[3],
		x+w, y, u1, v0, c[0], c[1], c[2], c[3],
		x+w, y+h, u1, v1, c[0], c[1], c[2], c[3],
		x, y, u0, v0, c[0], c[1], c[2], c[3],
		x+w, y+h, u1, v1, c[0], c[1], c[2], c[3],
		x, y+h, u0, v1, c[0], c[1], c[2], c[3],
	)
}

// Renderer batches 2D quads in window coordinates, origin top-left.
type Renderer struct {
	screenWidth  int
	screenHeight int

	program *shader.Program
	solid   *batch
	glyphs  *batch
	scene   *batch

	font *Font
}

// New creates a 2D renderer. A GL context must be current.
func New(width, height int) (*Renderer, error) {
	program, err := shader.NewProgram(quadVS, quadFS)
	if err != nil {
		return nil, fmt.Errorf("ui shader: %w", err)
	}

	return &Renderer{
		screenWidth:  width,
		screenHeight: height,
		program:      program,
		solid:        newBatch(),
		glyphs:       newBatch(),
		scene:        newBatch(),
		font:         NewFont(),
	}, nil
}

// Resize updates the screen dimensions.
func (r *Renderer) Resize(width, height int) {
	r.screenWidth = width
	r.screenHeight = height
}

// GetScreenSize returns the current screen dimensions.
func (r *Renderer) GetScreenSize() (int, int) {
	return r.screenWidth, r.screenHeight
}

func (r *Renderer) projection() mgl32.Mat4 {
	return mgl32.Ortho2D(0, float32(r.screenWidth), float32(r.screenHeight), 0)
}

// Begin starts a new UI frame.
func (r *Renderer) Begin() {
	r.solid.reset()
	r.glyphs.reset()
}

// End draws the queued quads, text on top, with blending on and depth
// testing off, and restores the previous state.
func (r *Renderer) End() {
	restore := saveState()
	defer restore()

	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.Disable(gl.DEPTH_TEST)
	gl.Disable(gl.CULL_FACE)

	r.program.Use()
	r.program.SetMat4("uProjection", r.projection())
	r.program.SetInt("uTexture", 0)

	r.program.SetInt("uMode", modeSolid)
	r.solid.draw()

	r.program.SetInt("uMode", modeGlyph)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, r.font.TextureID())
	r.glyphs.draw()
}

// DrawTexture draws an RGB texture unblended into (x, y, w, h). The texture
// is GL bottom-up; it is flipped to screen orientation.
func (r *Renderer) DrawTexture(x, y, w, h float32, textureID uint32) {
	if textureID == 0 {
		return
	}
	restore := saveState()
	defer restore()

	gl.Disable(gl.BLEND)
	gl.Disable(gl.DEPTH_TEST)
	gl.Disable(gl.CULL_FACE)

	r.program.Use()
	r.program.SetMat4("uProjection", r.projection())
	r.program.SetInt("uTexture", 0)
	r.program.SetInt("uMode", modeScene)

	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, textureID)

	r.scene.reset()
	r.scene.quad(x, y, w, h, 0, 1, 1, 0, Color{1, 1, 1, 1})
	r.scene.draw()
}

// saveState records the capabilities the UI passes toggle and returns a
// func that restores them along with the bindings.
func saveState() func() {
	blend := gl.IsEnabled(gl.BLEND)
	depth := gl.IsEnabled(gl.DEPTH_TEST)
	cull := gl.IsEnabled(gl.CULL_FACE)
	return func() {
		gl.BindVertexArray(0)
		gl.BindBuffer(gl.ARRAY_BUFFER, 0)
		gl.BindTexture(gl.TEXTURE_2D, 0)
		gl.UseProgram(0)
		setCap(gl.BLEND, blend)
		setCap(gl.DEPTH_TEST, depth)
		setCap(gl.CULL_FACE, cull)
	}
}

func setCap(c uint32, on bool) {
	if on {
		gl.Enable(c)
	} else {
		gl.Disable(c)
	}
}

// DrawRect draws a filled rectangle.
func (r *Renderer) DrawRect(x, y, width, height float32, color Color) {
	r.solid.quad(x, y, width, height, 0, 0, 0, 0, color)
}

// DrawPanel draws a filled rectangle with a one pixel border.
func (r *Renderer) DrawPanel(x, y, width, height float32, bg, border Color) {
	r.DrawRect(x, y, width, height, bg)
	r.DrawRect(x, y, width, 1, border)
	r.DrawRect(x, y+height-1, width, 1, border)
	r.DrawRect(x, y+1, 1, height-2, border)
	r.DrawRect(x+width-1, y+1, 1, height-2, border)
}

// DrawText draws monospaced text with its top-left corner at (x, y).
func (r *Renderer) DrawText(x, y float32, text string, scale float32, color Color) {
	gw, gh := r.font.GlyphSize()
	charW := float32(gw) * scale
	charH := float32(gh) * scale

	curX := x
	for _, ch := range text {
		if ch == '\n' {
			curX = x
			y += charH
			continue
		}
		u0, v0, u1, v1 := r.font.GetGlyphUV(ch)
		r.glyphs.quad(curX, y, charW, charH, u0, v0, u1, v1, color)
		curX += charW
	}
}

// MeasureText returns the width and height of rendered text.
func (r *Renderer) MeasureText(text string, scale float32) (float32, float32) {
	return r.font.MeasureText(text, scale)
}

// Close releases renderer resources.
func (r *Renderer) Close() {
	r.font.Close()
	r.solid.delete()
	r.glyphs.delete()
	r.scene.delete()
	r.program.Delete()
}
