package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/envscene/internal/engine/texture"
)

// MaterialKind selects the shading model.
type MaterialKind uint8

// Material kinds.
const (
	// MaterialBasic is unlit.
	MaterialBasic MaterialKind = iota
	// MaterialStandard is metallic-roughness PBR lit by lights and the environment.
	MaterialStandard
)

// Material describes how a mesh is shaded.
type Material struct {
	Name string
	Kind MaterialKind

	Color     mgl32.Vec4
	Map       *texture.Texture
	NormalMap *texture.Texture

	Metalness       float32
	Roughness       float32
	EnvMapIntensity float32
	DoubleSided     bool

	// NeedsUpdate asks the renderer to re-evaluate the material. The renderer clears it.
	NeedsUpdate bool
}

// NewStandardMaterial creates a white dielectric standard material.
func NewStandardMaterial(name string) *Material {
	return &Material{
		Name:            name,
		Kind:            MaterialStandard,
		Color:           mgl32.Vec4{1, 1, 1, 1},
		Metalness:       0,
		Roughness:       1,
		EnvMapIntensity: 1,
		NeedsUpdate:     true,
	}
}

// NewBasicMaterial creates an unlit material.
func NewBasicMaterial(name string, color mgl32.Vec4) *Material {
	return &Material{
		Name:        name,
		Kind:        MaterialBasic,
		Color:       color,
		NeedsUpdate: true,
	}
}

// UpdateAllMaterials applies the environment intensity to every standard
// material mesh in the scene and enables shadows on those meshes. It only
// touches nodes present at call time, so it is safe before assets load.
func UpdateAllMaterials(s *Scene, envMapIntensity float32) {
	if s == nil || s.Root == nil {
		return
	}
	s.Traverse(func(n *Node) {
		mat, ok := n.StandardMaterial()
		if !ok {
			return
		}
		mat.EnvMapIntensity = envMapIntensity
		mat.NeedsUpdate = true
		n.CastShadow = true
		n.ReceiveShadow = true
	})
}
