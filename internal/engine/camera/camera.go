// Package camera provides the perspective camera and orbit controls.
package camera

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Perspective is a pinhole camera looking from Position at Target.
type Perspective struct {
	FOV    float32 // vertical field of view, degrees
	Aspect float32
	Near   float32
	Far    float32

	Position mgl32.Vec3
	Target   mgl32.Vec3
	Up       mgl32.Vec3

	projection mgl32.Mat4
}

// NewPerspective creates a camera at the origin looking down -Z.
func NewPerspective(fov, aspect, near, far float32) *Perspective {
	c := &Perspective{
		FOV:      fov,
		Aspect:   aspect,
		Near:     near,
		Far:      far,
		Position: mgl32.Vec3{0, 0, 0},
		Target:   mgl32.Vec3{0, 0, -1},
		Up:       mgl32.Vec3{0, 1, 0},
	}
	c.UpdateProjectionMatrix()
	return c
}

// UpdateProjectionMatrix recomputes the projection after FOV, Aspect, Near or Far change.
func (c *Perspective) UpdateProjectionMatrix() {
	aspect := c.Aspect
	if aspect <= 0 {
		aspect = 1
	}
	c.projection = mgl32.Perspective(mgl32.DegToRad(c.FOV), aspect, c.Near, c.Far)
}

// ProjectionMatrix returns the matrix computed by the last UpdateProjectionMatrix.
func (c *Perspective) ProjectionMatrix() mgl32.Mat4 {
	return c.projection
}

// ViewMatrix returns the world-to-camera matrix.
func (c *Perspective) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Target, c.Up)
}

// WorldMatrix returns the camera-to-world matrix.
func (c *Perspective) WorldMatrix() mgl32.Mat4 {
	return c.ViewMatrix().Inv()
}

// ViewProjection returns projection * view.
func (c *Perspective) ViewProjection() mgl32.Mat4 {
	return c.projection.Mul4(c.ViewMatrix())
}

// LookAt points the camera at target.
func (c *Perspective) LookAt(target mgl32.Vec3) {
	c.Target = target
}
