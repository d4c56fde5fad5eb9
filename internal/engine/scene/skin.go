package scene

import "github.com/go-gl/mathgl/mgl32"

// MaxJoints is the largest skin the renderer uploads.
const MaxJoints = 64

// Skin binds a mesh to a joint hierarchy.
type Skin struct {
	Joints            []*Node
	InverseBindMatrix []mgl32.Mat4
}

// JointMatrices writes, for each joint, inverse(meshWorld) * jointWorld * inverseBind
// into out and returns it. World matrices must be up to date.
func (s *Skin) JointMatrices(meshWorld mgl32.Mat4, out []mgl32.Mat4) []mgl32.Mat4 {
	out = out[:0]
	invMesh := meshWorld.Inv()
	for i, j := range s.Joints {
		ibm := mgl32.Ident4()
		if i < len(s.InverseBindMatrix) {
			ibm = s.InverseBindMatrix[i]
		}
		out = append(out, invMesh.Mul4(j.WorldMatrix()).Mul4(ibm))
	}
	return out
}
