package texture

import (
	"fmt"
	"image"
)

// Cube face order: +X, -X, +Y, -Y, +Z, -Z.
const (
	FacePX = iota
	FaceNX
	FacePY
	FaceNY
	FacePZ
	FaceNZ
)

// Cube is a six-face environment texture.
type Cube struct {
	Name       string
	Faces      [6]*image.RGBA
	ColorSpace ColorSpace

	version uint32
}

// NewCube creates an empty cube texture.
func NewCube(name string) *Cube {
	return &Cube{Name: name}
}

// SetFaces installs all six faces. Faces must be square and the same size.
func (c *Cube) SetFaces(faces [6]*image.RGBA) error {
	var size int
	for i, f := range faces {
		if f == nil {
			return fmt.Errorf("cube face %d missing", i)
		}
		b := f.Bounds()
		if b.Dx() != b.Dy() {
			return fmt.Errorf("cube face %d is %dx%d, want square", i, b.Dx(), b.Dy())
		}
		if i == 0 {
			size = b.Dx()
		} else if b.Dx() != size {
			return fmt.Errorf("cube face %d is %d px, want %d", i, b.Dx(), size)
		}
	}
	c.Faces = faces
	c.version++
	return nil
}

// Ready reports whether all faces have arrived.
func (c *Cube) Ready() bool {
	return c != nil && c.Faces[0] != nil
}

// Size returns the face edge length in pixels.
func (c *Cube) Size() int {
	if !c.Ready() {
		return 0
	}
	return c.Faces[0].Bounds().Dx()
}

// Version changes whenever the faces change.
func (c *Cube) Version() uint32 {
	return c.version
}
