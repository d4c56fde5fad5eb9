package ui2d

import (
	"strconv"

	"github.com/Faultbox/envscene/internal/engine/debugpanel"
)

const panelMargin = float32(15)

// DrawDebugPanel draws p anchored to the top-right corner and feeds slider
// drags back into its controls.
func DrawDebugPanel(c *Context, p *debugpanel.Panel) {
	sw, _ := c.GetScreenSize()
	x := float32(sw) - p.Width - panelMargin

	if c.BeginCollapsible("debug", x, 0, p.Width, p.Title, &p.Closed) {
		for _, ctl := range p.Controls() {
			c.Row(20)
			text := strconv.FormatFloat(float64(ctl.Get()), 'f', ctl.Decimals(), 32)
			if f, ok := c.Slider(ctl.Name, ctl.Label, ctl.Fraction(), text); ok {
				ctl.SetFraction(f)
			}
		}
	}
	c.EndWindow()
}
