package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Geometry holds de-interleaved vertex streams and optional indices.
type Geometry struct {
	Positions []float32 // xyz
	Normals   []float32 // xyz
	UVs       []float32 // uv
	Joints    []uint16  // 4 per vertex, skinned meshes only
	Weights   []float32 // 4 per vertex, skinned meshes only
	Indices   []uint32
}

// VertexCount returns the number of vertices.
func (g *Geometry) VertexCount() int {
	return len(g.Positions) / 3
}

// IsSkinned reports whether the geometry carries joint influences.
func (g *Geometry) IsSkinned() bool {
	n := g.VertexCount()
	return n > 0 && len(g.Joints) == n*4 && len(g.Weights) == n*4
}

// Bounds returns the axis-aligned bounding box of the positions.
func (g *Geometry) Bounds() (lo, hi mgl32.Vec3) {
	if len(g.Positions) < 3 {
		return
	}
	lo = mgl32.Vec3{g.Positions[0], g.Positions[1], g.Positions[2]}
	hi = lo
	for i := 3; i+2 < len(g.Positions); i += 3 {
		for k := 0; k < 3; k++ {
			v := g.Positions[i+k]
			if v < lo[k] {
				lo[k] = v
			}
			if v > hi[k] {
				hi[k] = v
			}
		}
	}
	return lo, hi
}

// ComputeNormals fills flat-averaged vertex normals from indexed triangles.
func (g *Geometry) ComputeNormals() {
	n := g.VertexCount()
	g.Normals = make([]float32, n*3)

	tri := func(a, b, c uint32) {
		pa := g.position(a)
		pb := g.position(b)
		pc := g.position(c)
		fn := pb.Sub(pa).Cross(pc.Sub(pa))
		for _, idx := range [3]uint32{a, b, c} {
			g.Normals[idx*3] += fn[0]
			g.Normals[idx*3+1] += fn[1]
			g.Normals[idx*3+2] += fn[2]
		}
	}

	if len(g.Indices) > 0 {
		for i := 0; i+2 < len(g.Indices); i += 3 {
			tri(g.Indices[i], g.Indices[i+1], g.Indices[i+2])
		}
	} else {
		for i := 0; i+2 < n; i += 3 {
			tri(uint32(i), uint32(i+1), uint32(i+2))
		}
	}

	for i := 0; i < n; i++ {
		v := mgl32.Vec3{g.Normals[i*3], g.Normals[i*3+1], g.Normals[i*3+2]}
		if v.Len() > 1e-8 {
			v = v.Normalize()
		}
		g.Normals[i*3], g.Normals[i*3+1], g.Normals[i*3+2] = v[0], v[1], v[2]
	}
}

func (g *Geometry) position(i uint32) mgl32.Vec3 {
	return mgl32.Vec3{g.Positions[i*3], g.Positions[i*3+1], g.Positions[i*3+2]}
}

// NewCircleGeometry builds a flat disc in the XY plane facing +Z: a center
// vertex plus segments+1 rim vertices, fanned into segments triangles.
func NewCircleGeometry(radius float32, segments int) *Geometry {
	if segments < 3 {
		segments = 3
	}
	g := &Geometry{}

	// center
	g.Positions = append(g.Positions, 0, 0, 0)
	g.Normals = append(g.Normals, 0, 0, 1)
	g.UVs = append(g.UVs, 0.5, 0.5)

	for s := 0; s <= segments; s++ {
		theta := 2 * math.Pi * float64(s) / float64(segments)
		x := radius * float32(math.Cos(theta))
		y := radius * float32(math.Sin(theta))
		g.Positions = append(g.Positions, x, y, 0)
		g.Normals = append(g.Normals, 0, 0, 1)
		g.UVs = append(g.UVs, (x/radius+1)/2, (y/radius+1)/2)
	}

	for i := 1; i <= segments; i++ {
		g.Indices = append(g.Indices, uint32(i), uint32(i+1), 0)
	}
	return g
}
