// Package animation plays keyframed clips on scene graph nodes.
package animation

import (
	"sort"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/envscene/internal/engine/scene"
)

// Path is the node property a track animates.
type Path uint8

// Animated properties.
const (
	PathTranslation Path = iota
	PathRotation
	PathScale
)

// Interpolation selects how values between keyframes are computed.
type Interpolation uint8

// Interpolation modes.
const (
	InterpolationLinear Interpolation = iota
	InterpolationStep
	// InterpolationCubicSpline stores in-tangent, value, out-tangent per keyframe.
	InterpolationCubicSpline
)

// Track animates one property of one node.
type Track struct {
	Target        *scene.Node
	Path          Path
	Interpolation Interpolation
	Times         []float32 // seconds, ascending
	Values        []float32 // 3 or 4 components per key (x3 for cubic spline)
}

// Components returns 4 for rotations and 3 otherwise.
func (t *Track) Components() int {
	if t.Path == PathRotation {
		return 4
	}
	return 3
}

// Clip is a named set of tracks.
type Clip struct {
	Name     string
	Duration float32
	Tracks   []Track
}

// NewClip creates a clip whose duration is the last keyframe time.
func NewClip(name string, tracks []Track) *Clip {
	c := &Clip{Name: name, Tracks: tracks}
	c.ResetDuration()
	return c
}

// ResetDuration sets Duration to the latest keyframe time across tracks.
func (c *Clip) ResetDuration() {
	var d float32
	for i := range c.Tracks {
		if n := len(c.Tracks[i].Times); n > 0 && c.Tracks[i].Times[n-1] > d {
			d = c.Tracks[i].Times[n-1]
		}
	}
	c.Duration = d
}

// keyframes locates the keys surrounding t and the blend factor between them.
func keyframes(times []float32, t float32) (prev, next int, alpha float32) {
	n := len(times)
	if n == 0 {
		return 0, 0, 0
	}
	if t <= times[0] {
		return 0, 0, 0
	}
	if t >= times[n-1] {
		return n - 1, n - 1, 0
	}
	next = sort.Search(n, func(i int) bool { return times[i] > t })
	prev = next - 1
	span := times[next] - times[prev]
	if span > 0 {
		alpha = (t - times[prev]) / span
	}
	return prev, next, alpha
}

// sampleVec3 evaluates a translation or scale track at t.
func (t *Track) sampleVec3(at float32) mgl32.Vec3 {
	prev, next, alpha := keyframes(t.Times, at)
	switch t.Interpolation {
	case InterpolationCubicSpline:
		return t.cubicVec3(prev, next, alpha)
	case InterpolationStep:
		return t.vec3(prev)
	default:
		a := t.vec3(prev)
		b := t.vec3(next)
		return a.Add(b.Sub(a).Mul(alpha))
	}
}

// sampleQuat evaluates a rotation track at t.
func (t *Track) sampleQuat(at float32) mgl32.Quat {
	prev, next, alpha := keyframes(t.Times, at)
	switch t.Interpolation {
	case InterpolationCubicSpline:
		return t.cubicQuat(prev, next, alpha).Normalize()
	case InterpolationStep:
		return t.quat(prev)
	default:
		if prev == next {
			return t.quat(prev)
		}
		return mgl32.QuatSlerp(t.quat(prev), t.quat(next), alpha)
	}
}

// valueOffset returns the index of the value for key i (the middle element for cubic splines).
func (t *Track) valueOffset(i int) int {
	c := t.Components()
	if t.Interpolation == InterpolationCubicSpline {
		return (i*3 + 1) * c
	}
	return i * c
}

func (t *Track) vec3At(off int) mgl32.Vec3 {
	if off+2 >= len(t.Values) {
		return mgl32.Vec3{}
	}
	return mgl32.Vec3{t.Values[off], t.Values[off+1], t.Values[off+2]}
}

func (t *Track) vec3(i int) mgl32.Vec3 {
	return t.vec3At(t.valueOffset(i))
}

func (t *Track) quatAt(off int) mgl32.Quat {
	if off+3 >= len(t.Values) {
		return mgl32.QuatIdent()
	}
	return mgl32.Quat{W: t.Values[off+3], V: mgl32.Vec3{t.Values[off], t.Values[off+1], t.Values[off+2]}}
}

func (t *Track) quat(i int) mgl32.Quat {
	return t.quatAt(t.valueOffset(i))
}

// hermite returns the cubic Hermite basis weights for s in [0,1].
func hermite(s float32) (h00, h10, h01, h11 float32) {
	s2 := s * s
	s3 := s2 * s
	return 2*s3 - 3*s2 + 1, s3 - 2*s2 + s, -2*s3 + 3*s2, s3 - s2
}

func (t *Track) cubicVec3(prev, next int, s float32) mgl32.Vec3 {
	if prev == next {
		return t.vec3(prev)
	}
	c := t.Components()
	dt := t.Times[next] - t.Times[prev]
	p0 := t.vec3(prev)
	m0 := t.vec3At(t.valueOffset(prev) + c).Mul(dt) // out-tangent
	p1 := t.vec3(next)
	m1 := t.vec3At(t.valueOffset(next) - c).Mul(dt) // in-tangent
	h00, h10, h01, h11 := hermite(s)
	return p0.Mul(h00).Add(m0.Mul(h10)).Add(p1.Mul(h01)).Add(m1.Mul(h11))
}

func (t *Track) cubicQuat(prev, next int, s float32) mgl32.Quat {
	if prev == next {
		return t.quat(prev)
	}
	c := t.Components()
	dt := t.Times[next] - t.Times[prev]
	p0 := t.quat(prev)
	m0 := t.quatAt(t.valueOffset(prev) + c).Scale(dt)
	p1 := t.quat(next)
	m1 := t.quatAt(t.valueOffset(next) - c).Scale(dt)
	h00, h10, h01, h11 := hermite(s)
	return p0.Scale(h00).Add(m0.Scale(h10)).Add(p1.Scale(h01)).Add(m1.Scale(h11))
}

// Apply writes the track's value at time t to its target, blended by weight.
func (t *Track) Apply(at, weight float32) {
	n := t.Target
	if n == nil || len(t.Times) == 0 || weight <= 0 {
		return
	}
	switch t.Path {
	case PathTranslation:
		v := t.sampleVec3(at)
		n.Position = blendVec3(n.Position, v, weight)
	case PathScale:
		v := t.sampleVec3(at)
		n.Scale = blendVec3(n.Scale, v, weight)
	case PathRotation:
		q := t.sampleQuat(at)
		if weight >= 1 {
			n.Rotation = q
		} else {
			n.Rotation = mgl32.QuatSlerp(n.Rotation, q, weight)
		}
	}
}

func blendVec3(from, to mgl32.Vec3, weight float32) mgl32.Vec3 {
	if weight >= 1 {
		return to
	}
	return from.Add(to.Sub(from).Mul(weight))
}
