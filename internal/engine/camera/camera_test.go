package camera

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func approx(a, b, eps float32) bool {
	return float32(math.Abs(float64(a-b))) <= eps
}

// near compares vectors with an absolute tolerance; mgl32's ApproxEqual is
// relative and breaks down around zero.
func near(a, b mgl32.Vec3, eps float32) bool {
	return a.Sub(b).Len() <= eps
}

func nearMat(a, b mgl32.Mat4, eps float32) bool {
	for i := range a {
		if math.Abs(float64(a[i]-b[i])) > float64(eps) {
			return false
		}
	}
	return true
}

func TestPerspectiveProjection(t *testing.T) {
	cam := NewPerspective(35, 800.0/600.0, 0.1, 100)

	want := mgl32.Perspective(mgl32.DegToRad(35), 800.0/600.0, 0.1, 100)
	if !nearMat(cam.ProjectionMatrix(), want, 1e-5) {
		t.Errorf("projection mismatch:\n%v\nwant\n%v", cam.ProjectionMatrix(), want)
	}

	cam.Aspect = 2
	cam.UpdateProjectionMatrix()
	want = mgl32.Perspective(mgl32.DegToRad(35), 2, 0.1, 100)
	if !nearMat(cam.ProjectionMatrix(), want, 1e-5) {
		t.Error("projection not recomputed after aspect change")
	}
}

func TestPerspectiveWorldMatrix(t *testing.T) {
	cam := NewPerspective(35, 1, 0.1, 100)
	cam.Position = mgl32.Vec3{8, 6, 10}
	cam.LookAt(mgl32.Vec3{})

	pos := cam.WorldMatrix().Col(3).Vec3()
	if !near(pos, cam.Position, 1e-4) {
		t.Errorf("world matrix translation %v, want %v", pos, cam.Position)
	}
}

func newTestControls(damping bool) (*Perspective, *OrbitControls) {
	cam := NewPerspective(35, 1, 0.1, 100)
	cam.Position = mgl32.Vec3{0, 0, 10}
	o := NewOrbitControls(cam)
	o.EnableDamping = damping
	o.DampingFactor = 0.05
	// One pixel of drag equals one radian of rotation.
	o.ViewportHeight = 2 * math.Pi
	return cam, o
}

func TestOrbitWithoutDamping(t *testing.T) {
	cam, o := newTestControls(false)

	o.Rotate(-0.5, 0)
	if !o.Update() {
		t.Error("expected camera to move")
	}

	want := mgl32.Vec3{10 * float32(math.Sin(0.5)), 0, 10 * float32(math.Cos(0.5))}
	if !near(cam.Position, want, 1e-3) {
		t.Errorf("position %v, want %v", cam.Position, want)
	}
	if o.Pending() {
		t.Error("no input should remain without damping")
	}
	if o.Update() {
		t.Error("second update should not move the camera")
	}
}

func TestOrbitDamping(t *testing.T) {
	cam, o := newTestControls(true)

	o.Rotate(-0.5, 0)
	o.Update()

	// First frame applies only the damping fraction of the input.
	first := float32(math.Atan2(float64(cam.Position[0]), float64(cam.Position[2])))
	if !approx(first, 0.5*0.05, 1e-4) {
		t.Errorf("first step theta = %v, want %v", first, 0.5*0.05)
	}
	if !o.Pending() {
		t.Error("expected remaining input after first damped update")
	}

	for i := 0; i < 1000; i++ {
		o.Update()
	}

	final := float32(math.Atan2(float64(cam.Position[0]), float64(cam.Position[2])))
	if !approx(final, 0.5, 1e-3) {
		t.Errorf("converged theta = %v, want 0.5", final)
	}
	if o.Pending() {
		t.Error("input should have decayed")
	}
	if !approx(cam.Position.Len(), 10, 1e-3) {
		t.Errorf("orbit changed radius to %v", cam.Position.Len())
	}
}

func TestOrbitPolarClamp(t *testing.T) {
	cam, o := newTestControls(false)

	// Drag far past the pole.
	o.Rotate(0, 10)
	o.Update()

	if cam.Position[1] <= 0 {
		t.Errorf("expected camera above target, got %v", cam.Position)
	}
	if !approx(cam.Position.Len(), 10, 1e-3) {
		t.Errorf("radius changed to %v", cam.Position.Len())
	}
	horizontal := mgl32.Vec2{cam.Position[0], cam.Position[2]}.Len()
	if horizontal > 1e-2 {
		t.Errorf("expected camera at the pole, horizontal distance %v", horizontal)
	}
}

func TestOrbitDolly(t *testing.T) {
	tests := []struct {
		name  string
		wheel float32
		want  float32
	}{
		{"zoom in", 1, 10 * 0.95},
		{"zoom out", -1, 10 / 0.95},
		{"no-op", 0, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam, o := newTestControls(true)
			o.Dolly(tt.wheel)
			o.Update()
			if !approx(cam.Position.Len(), tt.want, 1e-3) {
				t.Errorf("distance %v, want %v", cam.Position.Len(), tt.want)
			}
		})
	}
}

func TestOrbitDistanceLimits(t *testing.T) {
	cam, o := newTestControls(false)
	o.MinDistance = 9.8

	o.Dolly(1)
	o.Update()
	if !approx(cam.Position.Len(), 9.8, 1e-3) {
		t.Errorf("distance %v, want clamp to 9.8", cam.Position.Len())
	}
}

func TestOrbitPanMovesTarget(t *testing.T) {
	cam, o := newTestControls(false)
	o.Pan(10, 0)
	o.Update()

	if o.Target[0] >= 0 {
		t.Errorf("dragging right should move the target left, got %v", o.Target)
	}
	if cam.Target != o.Target {
		t.Errorf("camera target %v not synced with controls %v", cam.Target, o.Target)
	}
	if !approx(cam.Position.Sub(o.Target).Len(), 10, 1e-3) {
		t.Error("pan changed orbit radius")
	}
}

func TestOrbitDisabledIgnoresInput(t *testing.T) {
	cam, o := newTestControls(false)
	o.Enabled = false
	o.Rotate(-1, 0)
	o.Dolly(1)
	o.Pan(5, 5)
	o.Update()

	if !near(cam.Position, mgl32.Vec3{0, 0, 10}, 1e-4) {
		t.Errorf("disabled controls moved camera to %v", cam.Position)
	}
}
