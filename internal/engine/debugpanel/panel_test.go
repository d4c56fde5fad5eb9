package debugpanel

import "testing"

func TestNewPanelStartsCollapsed(t *testing.T) {
	p := New("Debug")
	if !p.Closed {
		t.Error("panel should start collapsed")
	}
	p.Toggle()
	if p.Closed {
		t.Error("Toggle should open the panel")
	}
}

func TestSetClampsAndSnaps(t *testing.T) {
	tests := []struct {
		name string
		min  float32
		max  float32
		step float32
		in   float32
		want float32
	}{
		{"in range", 0, 4, 0.001, 1.2346, 1.235},
		{"above max", 0, 4, 0.001, 7, 4},
		{"below min", 0, 10, 0.001, -3, 0},
		{"negative range", -5, 5, 0.001, -2.0004, -2},
		{"coarse step", 0, 10, 0.5, 3.3, 3.5},
		{"no step", 0, 1, 0, 0.123456, 0.123456},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v float32
			c := New("p").Add(&v, "x", tt.min, tt.max, tt.step)
			c.Set(tt.in)
			if diff := v - tt.want; diff > 1e-5 || diff < -1e-5 {
				t.Errorf("Set(%v) stored %v, want %v", tt.in, v, tt.want)
			}
		})
	}
}

func TestOnChangeFiresOnlyOnChange(t *testing.T) {
	v := float32(0.4)
	var calls []float32
	c := New("p").Add(&v, "envMapIntensity", 0, 4, 0.001).OnChange(func(x float32) {
		calls = append(calls, x)
	})

	if !c.Set(1) {
		t.Error("first Set should report a change")
	}
	if c.Set(1) {
		t.Error("same value should not report a change")
	}
	c.Set(10) // clamps to 4
	c.Set(4)  // already 4

	if len(calls) != 2 || calls[0] != 1 || calls[1] != 4 {
		t.Errorf("callbacks = %v, want [1 4]", calls)
	}
}

func TestBindingIsBidirectional(t *testing.T) {
	v := float32(2)
	c := New("p").Add(&v, "lightIntensity", 0, 10, 0.001)

	// External writes are visible to the control.
	v = 7
	if c.Get() != 7 {
		t.Errorf("Get = %v after external write", c.Get())
	}
	if f := c.Fraction(); f < 0.699 || f > 0.701 {
		t.Errorf("Fraction = %v, want 0.7", f)
	}

	// Control writes are visible to the owner.
	c.SetFraction(0.25)
	if v != 2.5 {
		t.Errorf("bound value = %v, want 2.5", v)
	}
}

func TestSetFractionRange(t *testing.T) {
	v := float32(0)
	c := New("p").Add(&v, "lightX", -5, 5, 0.001)

	c.SetFraction(-1)
	if v != -5 {
		t.Errorf("v = %v, want -5", v)
	}
	c.SetFraction(2)
	if v != 5 {
		t.Errorf("v = %v, want 5", v)
	}
	c.SetFraction(0.5)
	if v != 0 {
		t.Errorf("v = %v, want 0", v)
	}
}

func TestFindAndOrder(t *testing.T) {
	var a, b float32
	p := New("p")
	p.Add(&a, "a", 0, 1, 0.1)
	p.Add(&b, "b", 0, 1, 0.1).SetLabel("Bee")

	if len(p.Controls()) != 2 || p.Controls()[0].Name != "a" {
		t.Error("controls out of order")
	}
	if got := p.Find("b"); got == nil || got.Label != "Bee" {
		t.Errorf("Find(b) = %v", got)
	}
	if p.Find("missing") != nil {
		t.Error("Find should return nil for unknown names")
	}
}

func TestDecimals(t *testing.T) {
	tests := []struct {
		step float32
		want int
	}{
		{0.001, 3},
		{0.5, 1},
		{1, 0},
		{0, 3},
	}
	for _, tt := range tests {
		c := &Control{Step: tt.step}
		if got := c.Decimals(); got != tt.want {
			t.Errorf("Decimals(%v) = %d, want %d", tt.step, got, tt.want)
		}
	}
}

func TestZeroRangeFraction(t *testing.T) {
	v := float32(3)
	c := New("p").Add(&v, "fixed", 3, 3, 0)
	if c.Fraction() != 0 {
		t.Errorf("Fraction = %v for empty range", c.Fraction())
	}
}
