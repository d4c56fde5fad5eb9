package lighting

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

// near compares vectors with an absolute tolerance; mgl32's ApproxEqual is
// relative and breaks down around zero.
func near(a, b mgl32.Vec3, eps float32) bool {
	return a.Sub(b).Len() <= eps
}

func TestDirection(t *testing.T) {
	l := NewDirectionalLight(mgl32.Vec3{1, 1, 1}, 2)
	pos := mgl32.Vec3{3.5, 2, -1.25}

	dir := l.Direction(pos)
	if math.Abs(float64(dir.Len()-1)) > 1e-5 {
		t.Errorf("direction not normalized: %v", dir)
	}
	if !near(dir, pos.Normalize(), 1e-5) {
		t.Errorf("direction %v, want %v", dir, pos.Normalize())
	}

	// Degenerate: light at its target.
	if got := l.Direction(mgl32.Vec3{}); got != (mgl32.Vec3{0, 1, 0}) {
		t.Errorf("degenerate direction %v, want +Y", got)
	}
}

func TestRadiance(t *testing.T) {
	l := NewDirectionalLight(mgl32.Vec3{0.5, 0.25, 1}, 2)
	if got := l.Radiance(); got != (mgl32.Vec3{1, 0.5, 2}) {
		t.Errorf("radiance %v", got)
	}
}

func TestShadowMatrix(t *testing.T) {
	l := NewDirectionalLight(mgl32.Vec3{1, 1, 1}, 1)
	l.Shadow.Camera.Far = 15
	pos := mgl32.Vec3{3.5, 2, -1.25}
	m := l.ShadowMatrix(pos)

	// The target projects to the center of the shadow map in x and y.
	clip := m.Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	if math.Abs(float64(clip[0])) > 1e-4 || math.Abs(float64(clip[1])) > 1e-4 {
		t.Errorf("target not centered: %v", clip)
	}
	if clip[2] < -1 || clip[2] > 1 {
		t.Errorf("target outside depth range: %v", clip[2])
	}

	// A point just past the far plane along the light direction is clipped.
	beyond := pos.Sub(l.Direction(pos).Mul(16))
	clip = m.Mul4x1(beyond.Vec4(1))
	if clip[2] <= 1 {
		t.Errorf("expected point beyond far plane to clip, z=%v", clip[2])
	}

	// Vertical light must not produce NaNs.
	m = l.ShadowMatrix(mgl32.Vec3{0, 5, 0})
	for i, v := range m {
		if math.IsNaN(float64(v)) {
			t.Fatalf("NaN at %d in vertical shadow matrix", i)
		}
	}
}
