package ui2d

import (
	"testing"

	"golang.org/x/image/font/basicfont"
)

func TestSliderFraction(t *testing.T) {
	tests := []struct {
		name string
		mx   float32
		want float32
	}{
		{"left of track", 5, 0},
		{"track start", 10, 0},
		{"middle", 60, 0.5},
		{"track end", 110, 1},
		{"right of track", 500, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sliderFraction(tt.mx, 10, 100); got != tt.want {
				t.Errorf("sliderFraction(%v) = %v, want %v", tt.mx, got, tt.want)
			}
		})
	}

	if got := sliderFraction(50, 10, 0); got != 0 {
		t.Errorf("zero width track = %v, want 0", got)
	}
}

func TestRectContains(t *testing.T) {
	r := Rect{X: 10, Y: 20, W: 30, H: 40}
	if !r.Contains(10, 20) {
		t.Error("top-left corner should be inside")
	}
	if r.Contains(40, 20) {
		t.Error("right edge is exclusive")
	}
	if r.Contains(15, 60) {
		t.Error("bottom edge is exclusive")
	}
}

func TestInputEdges(t *testing.T) {
	var in InputState

	in.MouseLeftDown = true
	in.Update()
	if !in.MouseLeftPressed || in.MouseLeftReleased {
		t.Fatalf("press frame: pressed=%v released=%v", in.MouseLeftPressed, in.MouseLeftReleased)
	}

	in.Update()
	if in.MouseLeftPressed {
		t.Error("held button should not report a second press")
	}

	in.MouseLeftDown = false
	in.MouseX = 12
	in.Update()
	if !in.MouseLeftReleased {
		t.Error("expected release edge")
	}
	if in.MouseDeltaX != 12 {
		t.Errorf("MouseDeltaX = %v, want 12", in.MouseDeltaX)
	}

	in.ScrollY = 3
	in.EndFrame()
	if in.ScrollY != 0 {
		t.Error("EndFrame should clear scroll")
	}
}

func TestFontAtlas(t *testing.T) {
	f := bakeFont(basicfont.Face7x13)

	gw, gh := f.GlyphSize()
	if gw != 7 || gh != 13 {
		t.Fatalf("glyph size = %dx%d, want 7x13", gw, gh)
	}
	if f.atlasW != fontColumns*7 || f.atlasH != f.atlasRows*13 {
		t.Errorf("atlas = %dx%d", f.atlasW, f.atlasH)
	}

	u0, v0, u1, v1 := f.GetGlyphUV(' ')
	if u0 != 0 || v0 != 0 {
		t.Errorf("space UV origin = (%v, %v), want (0, 0)", u0, v0)
	}
	if u1 <= u0 || v1 <= v0 {
		t.Errorf("degenerate UV rect (%v, %v)-(%v, %v)", u0, v0, u1, v1)
	}

	qu0, qv0, _, _ := f.GetGlyphUV('?')
	ou0, ov0, _, _ := f.GetGlyphUV('é')
	if qu0 != ou0 || qv0 != ov0 {
		t.Error("runes outside the atlas should map to '?'")
	}

	w, h := f.MeasureText("abc\nde", 2)
	if w != 3*7*2 || h != 2*13*2 {
		t.Errorf("MeasureText = %vx%v", w, h)
	}
}

func TestAppendQuad(t *testing.T) {
	c := Color{0.1, 0.2, 0.3, 0.4}
	v := appendQuad(nil, 1, 2, 3, 4, 0, 1, 1, 0, c)
	if len(v) != 6*vertexFloats {
		t.Fatalf("len = %d, want %d", len(v), 6*vertexFloats)
	}
	// Third vertex is the bottom-right corner.
	br := v[2*vertexFloats : 3*vertexFloats]
	want := []float32{4, 6, 1, 0, 0.1, 0.2, 0.3, 0.4}
	for i := range want {
		if br[i] != want[i] {
			t.Fatalf("bottom-right vertex = %v, want %v", br, want)
		}
	}
}
