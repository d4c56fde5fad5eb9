package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const orbitEPS = 1e-6

// OrbitControls orbits, dollies and pans a camera around a target. With
// damping enabled, input accumulates into deltas that Update applies
// fractionally each frame while decaying them.
type OrbitControls struct {
	Camera *Perspective
	Target mgl32.Vec3

	Enabled       bool
	EnableDamping bool
	DampingFactor float32

	RotateSpeed float32
	ZoomSpeed   float32
	PanSpeed    float32

	MinDistance   float32
	MaxDistance   float32
	MinPolarAngle float32
	MaxPolarAngle float32

	// ViewportHeight converts pixel deltas to angles and distances.
	ViewportHeight float32

	deltaTheta float32
	deltaPhi   float32
	scale      float32
	panOffset  mgl32.Vec3
}

// NewOrbitControls creates controls for cam orbiting the origin.
func NewOrbitControls(cam *Perspective) *OrbitControls {
	return &OrbitControls{
		Camera:         cam,
		Target:         mgl32.Vec3{},
		Enabled:        true,
		EnableDamping:  false,
		DampingFactor:  0.05,
		RotateSpeed:    1,
		ZoomSpeed:      1,
		PanSpeed:       1,
		MinDistance:    0,
		MaxDistance:    float32(math.Inf(1)),
		MinPolarAngle:  0,
		MaxPolarAngle:  math.Pi,
		ViewportHeight: 1,
		scale:          1,
	}
}

// Rotate queues an orbit by a pointer drag of dx, dy pixels.
func (o *OrbitControls) Rotate(dx, dy float32) {
	if !o.Enabled {
		return
	}
	h := o.viewportHeight()
	o.deltaTheta -= 2 * math.Pi * dx / h * o.RotateSpeed
	o.deltaPhi -= 2 * math.Pi * dy / h * o.RotateSpeed
}

// Dolly queues a zoom from wheel movement; positive moves toward the target.
func (o *OrbitControls) Dolly(wheel float32) {
	if !o.Enabled || wheel == 0 {
		return
	}
	zoomScale := float32(math.Pow(0.95, float64(o.ZoomSpeed)))
	if wheel > 0 {
		o.scale *= zoomScale
	} else {
		o.scale /= zoomScale
	}
}

// Pan queues a target translation from a pointer drag of dx, dy pixels.
func (o *OrbitControls) Pan(dx, dy float32) {
	if !o.Enabled {
		return
	}
	offset := o.Camera.Position.Sub(o.Target)
	targetDistance := offset.Len() * float32(math.Tan(float64(mgl32.DegToRad(o.Camera.FOV))/2))
	h := o.viewportHeight()

	world := o.Camera.WorldMatrix()
	left := world.Col(0).Vec3().Mul(-2 * dx * targetDistance / h * o.PanSpeed)
	up := world.Col(1).Vec3().Mul(2 * dy * targetDistance / h * o.PanSpeed)
	o.panOffset = o.panOffset.Add(left).Add(up)
}

// Update applies pending input to the camera. It reports whether the camera moved.
func (o *OrbitControls) Update() bool {
	cam := o.Camera
	offset := cam.Position.Sub(o.Target)

	radius := offset.Len()
	theta := float32(math.Atan2(float64(offset[0]), float64(offset[2])))
	phi := float32(0)
	if radius > 0 {
		phi = float32(math.Acos(float64(mgl32.Clamp(offset[1]/radius, -1, 1))))
	}

	if o.EnableDamping {
		theta += o.deltaTheta * o.DampingFactor
		phi += o.deltaPhi * o.DampingFactor
	} else {
		theta += o.deltaTheta
		phi += o.deltaPhi
	}

	phi = mgl32.Clamp(phi, o.MinPolarAngle, o.MaxPolarAngle)
	phi = mgl32.Clamp(phi, orbitEPS, math.Pi-orbitEPS)

	radius = mgl32.Clamp(radius*o.scale, o.MinDistance, o.MaxDistance)

	if o.EnableDamping {
		o.Target = o.Target.Add(o.panOffset.Mul(o.DampingFactor))
	} else {
		o.Target = o.Target.Add(o.panOffset)
	}

	sinPhi := float32(math.Sin(float64(phi)))
	offset = mgl32.Vec3{
		radius * sinPhi * float32(math.Sin(float64(theta))),
		radius * float32(math.Cos(float64(phi))),
		radius * sinPhi * float32(math.Cos(float64(theta))),
	}

	prev := cam.Position
	prevTarget := cam.Target
	cam.Position = o.Target.Add(offset)
	cam.LookAt(o.Target)

	if o.EnableDamping {
		decay := 1 - o.DampingFactor
		o.deltaTheta *= decay
		o.deltaPhi *= decay
		o.panOffset = o.panOffset.Mul(decay)
	} else {
		o.deltaTheta = 0
		o.deltaPhi = 0
		o.panOffset = mgl32.Vec3{}
	}
	o.scale = 1

	return cam.Position.Sub(prev).LenSqr() > orbitEPS || cam.Target.Sub(prevTarget).LenSqr() > orbitEPS
}

// Pending reports whether any queued input has not yet decayed.
func (o *OrbitControls) Pending() bool {
	return abs32(o.deltaTheta) > orbitEPS || abs32(o.deltaPhi) > orbitEPS || o.panOffset.LenSqr() > orbitEPS*orbitEPS
}

// Reset drops pending input.
func (o *OrbitControls) Reset() {
	o.deltaTheta = 0
	o.deltaPhi = 0
	o.panOffset = mgl32.Vec3{}
	o.scale = 1
}

func (o *OrbitControls) viewportHeight() float32 {
	if o.ViewportHeight <= 0 {
		return 1
	}
	return o.ViewportHeight
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
