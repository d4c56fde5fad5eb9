// Package model converts glTF 2.0 documents into scene graph subtrees with
// their animation clips.
package model

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/envscene/internal/engine/animation"
	"github.com/Faultbox/envscene/internal/engine/scene"
)

// Model is a loaded glTF scene ready to attach to a scene graph.
type Model struct {
	Root  *scene.Node
	Clips []*animation.Clip
}

// Bounds returns the axis-aligned bounds of all mesh geometry in model
// space. World matrices must be up to date.
func (m *Model) Bounds() (lo, hi mgl32.Vec3, ok bool) {
	lo = mgl32.Vec3{1e30, 1e30, 1e30}
	hi = mgl32.Vec3{-1e30, -1e30, -1e30}
	m.Root.Traverse(func(n *scene.Node) {
		if !n.IsMesh() || n.Geometry.VertexCount() == 0 {
			return
		}
		glo, ghi := n.Geometry.Bounds()
		w := n.WorldMatrix()
		for corner := 0; corner < 8; corner++ {
			c := glo
			for i := 0; i < 3; i++ {
				if corner&(1<<i) != 0 {
					c[i] = ghi[i]
				}
			}
			p := w.Mul4x1(c.Vec4(1)).Vec3()
			for i := 0; i < 3; i++ {
				lo[i] = min(lo[i], p[i])
				hi[i] = max(hi[i], p[i])
			}
		}
		ok = true
	})
	return lo, hi, ok
}

// Clip returns the clip at index i, or nil when out of range.
func (m *Model) Clip(i int) *animation.Clip {
	if i < 0 || i >= len(m.Clips) {
		return nil
	}
	return m.Clips[i]
}

// ClipByName returns the first clip with the given name, or nil.
func (m *Model) ClipByName(name string) *animation.Clip {
	for _, c := range m.Clips {
		if c.Name == name {
			return c
		}
	}
	return nil
}
