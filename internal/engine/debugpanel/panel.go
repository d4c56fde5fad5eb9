// Package debugpanel holds tweakable numeric parameters bound to scene values.
// Drawing lives in ui2d; this package only owns values, ranges and callbacks.
package debugpanel

import "math"

// Control is a slider bound to a float32.
type Control struct {
	Name  string
	Label string
	Min   float32
	Max   float32
	Step  float32

	value    *float32
	onChange func(float32)
}

// OnChange registers fn to run after the value changes through Set.
func (c *Control) OnChange(fn func(float32)) *Control {
	c.onChange = fn
	return c
}

// SetLabel overrides the displayed name.
func (c *Control) SetLabel(label string) *Control {
	c.Label = label
	return c
}

// Get reads the bound value.
func (c *Control) Get() float32 {
	return *c.value
}

// Set snaps v to Step, clamps it to [Min, Max], writes it and fires the
// change callback if the stored value changed. It reports whether it changed.
func (c *Control) Set(v float32) bool {
	v = c.normalize(v)
	if *c.value == v {
		return false
	}
	*c.value = v
	if c.onChange != nil {
		c.onChange(v)
	}
	return true
}

// Fraction returns the bound value's position in [0, 1] within the range.
func (c *Control) Fraction() float32 {
	span := c.Max - c.Min
	if span <= 0 {
		return 0
	}
	f := (*c.value - c.Min) / span
	return clamp(f, 0, 1)
}

// SetFraction sets the value from a slider position in [0, 1].
func (c *Control) SetFraction(f float32) bool {
	f = clamp(f, 0, 1)
	return c.Set(c.Min + f*(c.Max-c.Min))
}

// Decimals returns how many fractional digits the step needs.
func (c *Control) Decimals() int {
	if c.Step <= 0 {
		return 3
	}
	d := 0
	for s := float64(c.Step); d < 6 && math.Abs(s-math.Round(s)) > 1e-4; s *= 10 {
		d++
	}
	return d
}

func (c *Control) normalize(v float32) float32 {
	if c.Step > 0 {
		steps := math.Round(float64(v-c.Min) / float64(c.Step))
		snapped := float64(c.Min) + steps*float64(c.Step)
		// Drop float32 step representation error, e.g. 0.001 -> 0.0010000000475.
		p := math.Pow10(c.Decimals())
		v = float32(math.Round(snapped*p) / p)
	}
	return clamp(v, c.Min, c.Max)
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Panel is a titled, collapsible list of controls.
type Panel struct {
	Title  string
	Closed bool
	Width  float32

	controls []*Control
}

// New creates a collapsed panel.
func New(title string) *Panel {
	return &Panel{
		Title:  title,
		Closed: true,
		Width:  300,
	}
}

// Add binds a slider to value. The current value is left untouched even if
// it lies outside the range; the first Set normalizes it.
func (p *Panel) Add(value *float32, name string, min, max, step float32) *Control {
	c := &Control{
		Name:  name,
		Label: name,
		Min:   min,
		Max:   max,
		Step:  step,
		value: value,
	}
	p.controls = append(p.controls, c)
	return c
}

// Controls returns the controls in insertion order.
func (p *Panel) Controls() []*Control {
	return p.controls
}

// Find returns the control with the given name or nil.
func (p *Panel) Find(name string) *Control {
	for _, c := range p.controls {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Toggle flips between open and collapsed.
func (p *Panel) Toggle() {
	p.Closed = !p.Closed
}
