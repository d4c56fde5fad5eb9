// Package shadow provides the depth framebuffer used for directional light shadows.
package shadow

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// DefaultSize is used when a non-positive map size is requested.
const DefaultSize = 1024

// Map is a square depth-only render target sampled with a comparison
// sampler. Linear filtering in compare mode gives 2x2 PCF per tap.
type Map struct {
	fbo   uint32
	depth uint32
	size  int32

	savedViewport [4]int32
}

// NewMap allocates a size x size shadow map. A GL context must be current.
func NewMap(size int32) (*Map, error) {
	if size <= 0 {
		size = DefaultSize
	}
	m := &Map{}

	gl.GenTextures(1, &m.depth)
	gl.BindTexture(gl.TEXTURE_2D, m.depth)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_BORDER)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_BORDER)
	// Depth 1 outside the light frustum: unshadowed.
	border := [4]float32{1, 1, 1, 1}
	gl.TexParameterfv(gl.TEXTURE_2D, gl.TEXTURE_BORDER_COLOR, &border[0])
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_COMPARE_MODE, gl.COMPARE_REF_TO_TEXTURE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_COMPARE_FUNC, gl.LEQUAL)
	m.allocate(size)

	gl.GenFramebuffers(1, &m.fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, m.fbo)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.TEXTURE_2D, m.depth, 0)
	gl.DrawBuffer(gl.NONE)
	gl.ReadBuffer(gl.NONE)

	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	if status != gl.FRAMEBUFFER_COMPLETE {
		m.Delete()
		return nil, fmt.Errorf("shadow framebuffer incomplete: 0x%x", status)
	}
	return m, nil
}

// allocate (re)specifies the bound depth texture storage.
func (m *Map) allocate(size int32) {
	m.size = size
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.DEPTH_COMPONENT24, size, size, 0,
		gl.DEPTH_COMPONENT, gl.FLOAT, nil)
}

// Size returns the edge length in texels.
func (m *Map) Size() int32 {
	return m.size
}

// Resize reallocates the depth texture when the light asks for a
// different map size.
func (m *Map) Resize(size int32) {
	if size <= 0 || size == m.size {
		return
	}
	gl.BindTexture(gl.TEXTURE_2D, m.depth)
	m.allocate(size)
	gl.BindTexture(gl.TEXTURE_2D, 0)
}

// Begin starts the depth pass: the map is bound and cleared, and only
// back faces are rasterized.
func (m *Map) Begin() {
	gl.GetIntegerv(gl.VIEWPORT, &m.savedViewport[0])

	gl.BindFramebuffer(gl.FRAMEBUFFER, m.fbo)
	gl.Viewport(0, 0, m.size, m.size)
	gl.Clear(gl.DEPTH_BUFFER_BIT)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.CULL_FACE)
	gl.CullFace(gl.FRONT)
}

// End finishes the depth pass and restores the viewport and culling.
func (m *Map) End() {
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	v := m.savedViewport
	gl.Viewport(v[0], v[1], v[2], v[3])
	gl.CullFace(gl.BACK)
	gl.Disable(gl.CULL_FACE)
}

// Bind binds the depth texture to texture unit gl.TEXTURE0+unit.
func (m *Map) Bind(unit uint32) {
	gl.ActiveTexture(gl.TEXTURE0 + unit)
	gl.BindTexture(gl.TEXTURE_2D, m.depth)
}

// Valid reports whether m holds live GL objects.
func (m *Map) Valid() bool {
	return m != nil && m.fbo != 0 && m.depth != 0
}

// Delete releases the GL objects.
func (m *Map) Delete() {
	if m.fbo != 0 {
		gl.DeleteFramebuffers(1, &m.fbo)
		m.fbo = 0
	}
	if m.depth != 0 {
		gl.DeleteTextures(1, &m.depth)
		m.depth = 0
	}
}
