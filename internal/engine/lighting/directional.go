// Package lighting provides light sources and their shadow projections.
package lighting

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// ShadowCamera is the orthographic volume a directional light renders its shadow map from.
type ShadowCamera struct {
	Left, Right float32
	Bottom, Top float32
	Near, Far   float32
}

// Shadow holds per-light shadow map parameters.
type Shadow struct {
	Camera     ShadowCamera
	MapSize    int32   // shadow map resolution (width = height)
	Bias       float32 // depth offset
	NormalBias float32 // offset along the surface normal, world units
}

// DefaultShadow returns the default shadow volume: ±5 units wide, 0.5 to 500 deep.
func DefaultShadow() Shadow {
	return Shadow{
		Camera: ShadowCamera{
			Left: -5, Right: 5,
			Bottom: -5, Top: 5,
			Near: 0.5, Far: 500,
		},
		MapSize: 512,
	}
}

// DirectionalLight shines parallel rays from its node position toward Target.
type DirectionalLight struct {
	Color      mgl32.Vec3
	Intensity  float32
	Target     mgl32.Vec3
	CastShadow bool
	Shadow     Shadow
}

// NewDirectionalLight creates a light with default shadow settings.
func NewDirectionalLight(color mgl32.Vec3, intensity float32) *DirectionalLight {
	return &DirectionalLight{
		Color:     color,
		Intensity: intensity,
		Shadow:    DefaultShadow(),
	}
}

// Direction returns the normalized direction toward the light from its target.
func (l *DirectionalLight) Direction(position mgl32.Vec3) mgl32.Vec3 {
	d := position.Sub(l.Target)
	if d.LenSqr() < 1e-12 {
		return mgl32.Vec3{0, 1, 0}
	}
	return d.Normalize()
}

// Radiance returns color scaled by intensity.
func (l *DirectionalLight) Radiance() mgl32.Vec3 {
	return l.Color.Mul(l.Intensity)
}

// ShadowMatrix returns the light view-projection for a light at position.
func (l *DirectionalLight) ShadowMatrix(position mgl32.Vec3) mgl32.Mat4 {
	up := mgl32.Vec3{0, 1, 0}
	// Looking straight up or down makes the default up vector degenerate.
	if dir := l.Direction(position); float32(math.Abs(float64(dir[1]))) > 0.99 {
		up = mgl32.Vec3{0, 0, 1}
	}
	view := mgl32.LookAtV(position, l.Target, up)

	c := l.Shadow.Camera
	proj := mgl32.Ortho(c.Left, c.Right, c.Bottom, c.Top, c.Near, c.Far)
	return proj.Mul4(view)
}
