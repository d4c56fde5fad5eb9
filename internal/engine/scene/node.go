// Package scene provides the scene graph: nodes, geometry, materials and skins.
package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/envscene/internal/engine/camera"
	"github.com/Faultbox/envscene/internal/engine/lighting"
)

// Kind discriminates what a node carries.
type Kind uint8

// Node kinds.
const (
	KindGroup Kind = iota
	KindMesh
	KindLight
	KindCamera
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindGroup:
		return "group"
	case KindMesh:
		return "mesh"
	case KindLight:
		return "light"
	case KindCamera:
		return "camera"
	default:
		return "unknown"
	}
}

// Node is an element of the scene graph.
type Node struct {
	Name string
	Kind Kind

	// Local transform
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3

	Visible       bool
	CastShadow    bool
	ReceiveShadow bool

	// Mesh payload (KindMesh)
	Geometry *Geometry
	Material *Material
	Skin     *Skin

	// Light payload (KindLight)
	Light *lighting.DirectionalLight

	// Camera payload (KindCamera). The camera owns its own transform.
	Camera *camera.Perspective

	parent   *Node
	children []*Node
	world    mgl32.Mat4
}

// NewGroup creates an empty group node.
func NewGroup(name string) *Node {
	return &Node{
		Name:     name,
		Kind:     KindGroup,
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
		Visible:  true,
		world:    mgl32.Ident4(),
	}
}

// NewMesh creates a mesh node.
func NewMesh(name string, geom *Geometry, mat *Material) *Node {
	n := NewGroup(name)
	n.Kind = KindMesh
	n.Geometry = geom
	n.Material = mat
	return n
}

// NewLight creates a directional light node.
func NewLight(name string, light *lighting.DirectionalLight) *Node {
	n := NewGroup(name)
	n.Kind = KindLight
	n.Light = light
	return n
}

// NewCamera creates a camera node.
func NewCamera(name string, cam *camera.Perspective) *Node {
	n := NewGroup(name)
	n.Kind = KindCamera
	n.Camera = cam
	return n
}

// IsMesh reports whether the node is a renderable mesh.
func (n *Node) IsMesh() bool {
	return n.Kind == KindMesh && n.Geometry != nil
}

// StandardMaterial returns the node's material if it is a lit standard material.
func (n *Node) StandardMaterial() (*Material, bool) {
	if !n.IsMesh() || n.Material == nil || n.Material.Kind != MaterialStandard {
		return nil, false
	}
	return n.Material, true
}

// Add attaches children, detaching them from any previous parent.
func (n *Node) Add(children ...*Node) {
	for _, c := range children {
		if c == nil || c == n {
			continue
		}
		if c.parent != nil {
			c.parent.Remove(c)
		}
		c.parent = n
		n.children = append(n.children, c)
	}
}

// Remove detaches a direct child. It reports whether the child was found.
func (n *Node) Remove(child *Node) bool {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			child.parent = nil
			return true
		}
	}
	return false
}

// Parent returns the parent node or nil.
func (n *Node) Parent() *Node { return n.parent }

// Children returns the direct children. The slice must not be modified.
func (n *Node) Children() []*Node { return n.children }

// Traverse visits n and all descendants depth-first, parents before children.
func (n *Node) Traverse(fn func(*Node)) {
	fn(n)
	for _, c := range n.children {
		c.Traverse(fn)
	}
}

// FindByName returns the first node in the subtree with the given name.
func (n *Node) FindByName(name string) *Node {
	if n.Name == name {
		return n
	}
	for _, c := range n.children {
		if found := c.FindByName(name); found != nil {
			return found
		}
	}
	return nil
}

// SetScalar sets a uniform scale.
func (n *Node) SetScalar(s float32) {
	n.Scale = mgl32.Vec3{s, s, s}
}

// LocalMatrix composes translation * rotation * scale.
func (n *Node) LocalMatrix() mgl32.Mat4 {
	if n.Kind == KindCamera && n.Camera != nil {
		return n.Camera.WorldMatrix()
	}
	t := mgl32.Translate3D(n.Position[0], n.Position[1], n.Position[2])
	r := n.Rotation.Normalize().Mat4()
	s := mgl32.Scale3D(n.Scale[0], n.Scale[1], n.Scale[2])
	return t.Mul4(r).Mul4(s)
}

// WorldMatrix returns the matrix computed by the last UpdateMatrixWorld.
func (n *Node) WorldMatrix() mgl32.Mat4 { return n.world }

// WorldPosition returns the translation part of the world matrix.
func (n *Node) WorldPosition() mgl32.Vec3 { return n.world.Col(3).Vec3() }

// UpdateMatrixWorld recomputes world matrices for the subtree.
func (n *Node) UpdateMatrixWorld() {
	parent := mgl32.Ident4()
	if n.parent != nil {
		parent = n.parent.world
	}
	n.updateWorld(parent)
}

func (n *Node) updateWorld(parent mgl32.Mat4) {
	n.world = parent.Mul4(n.LocalMatrix())
	for _, c := range n.children {
		c.updateWorld(n.world)
	}
}
