package scene

import "github.com/Faultbox/envscene/internal/engine/texture"

// Scene is the root container rendered each frame.
type Scene struct {
	Root *Node

	// Environment lights standard materials. Nil until the cube map loads.
	Environment *texture.Cube
}

// New creates an empty scene.
func New() *Scene {
	return &Scene{Root: NewGroup("scene")}
}

// Add attaches nodes to the scene root.
func (s *Scene) Add(nodes ...*Node) {
	s.Root.Add(nodes...)
}

// Remove detaches a node from the scene root.
func (s *Scene) Remove(n *Node) bool {
	return s.Root.Remove(n)
}

// Traverse visits every node in the scene.
func (s *Scene) Traverse(fn func(*Node)) {
	s.Root.Traverse(fn)
}

// UpdateMatrixWorld recomputes all world matrices.
func (s *Scene) UpdateMatrixWorld() {
	s.Root.UpdateMatrixWorld()
}

// Lights returns the light nodes in traversal order.
func (s *Scene) Lights() []*Node {
	var out []*Node
	s.Traverse(func(n *Node) {
		if n.Kind == KindLight && n.Light != nil && n.Visible {
			out = append(out, n)
		}
	})
	return out
}

// Meshes returns the visible mesh nodes in traversal order.
func (s *Scene) Meshes() []*Node {
	var out []*Node
	s.Traverse(func(n *Node) {
		if n.IsMesh() && n.Visible {
			out = append(out, n)
		}
	})
	return out
}
