package renderer

import (
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/envscene/internal/engine/scene"
)

// Attribute locations shared by the standard and depth programs.
const (
	attrPosition = 0
	attrNormal   = 1
	attrUV       = 2
	attrJoints   = 3
	attrWeights  = 4
)

// meshBuffers holds the GPU copy of one geometry.
type meshBuffers struct {
	vao     uint32
	vbos    []uint32
	ebo     uint32
	count   int32
	indexed bool
}

func (m *meshBuffers) draw() {
	gl.BindVertexArray(m.vao)
	if m.indexed {
		gl.DrawElements(gl.TRIANGLES, m.count, gl.UNSIGNED_INT, nil)
	} else {
		gl.DrawArrays(gl.TRIANGLES, 0, m.count)
	}
}

func (m *meshBuffers) destroy() {
	if len(m.vbos) > 0 {
		gl.DeleteBuffers(int32(len(m.vbos)), &m.vbos[0])
		m.vbos = nil
	}
	if m.ebo != 0 {
		gl.DeleteBuffers(1, &m.ebo)
		m.ebo = 0
	}
	if m.vao != 0 {
		gl.DeleteVertexArrays(1, &m.vao)
		m.vao = 0
	}
}

// meshBuffers returns the cached buffers for g, uploading on first use.
// Empty geometry returns nil.
func (r *Renderer) meshBuffers(g *scene.Geometry) *meshBuffers {
	if m, ok := r.meshes[g]; ok {
		return m
	}
	if g == nil || g.VertexCount() == 0 {
		return nil
	}
	if len(g.Normals) == 0 {
		g.ComputeNormals()
	}

	m := &meshBuffers{}
	gl.GenVertexArrays(1, &m.vao)
	gl.BindVertexArray(m.vao)

	m.addFloatAttrib(attrPosition, 3, g.Positions)
	m.addFloatAttrib(attrNormal, 3, g.Normals)
	if len(g.UVs) > 0 {
		m.addFloatAttrib(attrUV, 2, g.UVs)
	}
	if g.IsSkinned() {
		m.addJointAttrib(g.Joints)
		m.addFloatAttrib(attrWeights, 4, g.Weights)
	}

	if len(g.Indices) > 0 {
		gl.GenBuffers(1, &m.ebo)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.ebo)
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(g.Indices)*4, unsafe.Pointer(&g.Indices[0]), gl.STATIC_DRAW)
		m.count = int32(len(g.Indices))
		m.indexed = true
	} else {
		m.count = int32(g.VertexCount())
	}

	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	r.meshes[g] = m
	r.log.Debug("geometry uploaded",
		zap.Int("vertices", g.VertexCount()),
		zap.Int("indices", len(g.Indices)),
		zap.Bool("skinned", g.IsSkinned()),
	)
	return m
}

func (m *meshBuffers) addFloatAttrib(loc uint32, size int32, data []float32) {
	var vbo uint32
	gl.GenBuffers(1, &vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, unsafe.Pointer(&data[0]), gl.STATIC_DRAW)
	gl.VertexAttribPointerWithOffset(loc, size, gl.FLOAT, false, size*4, 0)
	gl.EnableVertexAttribArray(loc)
	m.vbos = append(m.vbos, vbo)
}

func (m *meshBuffers) addJointAttrib(joints []uint16) {
	var vbo uint32
	gl.GenBuffers(1, &vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(joints)*2, unsafe.Pointer(&joints[0]), gl.STATIC_DRAW)
	gl.VertexAttribIPointer(attrJoints, 4, gl.UNSIGNED_SHORT, 4*2, nil)
	gl.EnableVertexAttribArray(attrJoints)
	m.vbos = append(m.vbos, vbo)
}
