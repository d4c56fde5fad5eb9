package ui2d

import "fmt"

const (
	titleBarH  = float32(22)
	padding    = float32(6)
	labelRatio = float32(0.4)
)

// Context is the main UI context that manages rendering and input.
type Context struct {
	renderer *Renderer
	input    *InputState

	// Active/hot widget tracking for interaction
	hotWidget    string
	activeWidget string

	windows       map[string]*WindowState
	currentWindow *WindowState

	// Layout state
	cursorX float32
	cursorY float32
	rowH    float32
}

// WindowState holds state for a UI window.
type WindowState struct {
	ID   string
	X, Y float32
	W, H float32
}

// Rect is an axis-aligned screen rectangle.
type Rect struct {
	X, Y, W, H float32
}

// Contains reports whether (px, py) lies inside r.
func (r Rect) Contains(px, py float32) bool {
	return px >= r.X && px < r.X+r.W && py >= r.Y && py < r.Y+r.H
}

// NewContext creates a UI context with its own renderer.
func NewContext(width, height int) (*Context, error) {
	r, err := New(width, height)
	if err != nil {
		return nil, fmt.Errorf("create renderer: %w", err)
	}

	return &Context{
		renderer: r,
		input:    &InputState{},
		windows:  make(map[string]*WindowState),
	}, nil
}

// Close releases resources.
func (c *Context) Close() {
	if c.renderer != nil {
		c.renderer.Close()
	}
}

// Renderer returns the underlying renderer.
func (c *Context) Renderer() *Renderer {
	return c.renderer
}

// Resize updates the screen size.
func (c *Context) Resize(width, height int) {
	c.renderer.Resize(width, height)
}

// Input returns the input state for modification.
func (c *Context) Input() *InputState {
	return c.input
}

// Begin starts a new UI frame.
func (c *Context) Begin() {
	c.input.Update()
	c.renderer.Begin()
	c.hotWidget = ""
}

// End finishes the UI frame.
func (c *Context) End() {
	c.renderer.End()
	c.input.EndFrame()
}

// WantsMouse reports whether the pointer is over a window or a widget is
// being dragged, based on last frame's layout.
func (c *Context) WantsMouse() bool {
	if c.activeWidget != "" {
		return true
	}
	for _, ws := range c.windows {
		if c.input.IsMouseInRect(ws.X, ws.Y, ws.W, ws.H) {
			return true
		}
	}
	return false
}

// BeginCollapsible starts a window whose title bar toggles *closed on
// click. It returns true when the body should be drawn. EndWindow must be
// called either way.
func (c *Context) BeginCollapsible(id string, x, y, w float32, title string, closed *bool) bool {
	ws, ok := c.windows[id]
	if !ok {
		ws = &WindowState{ID: id, H: titleBarH}
		c.windows[id] = ws
	}
	ws.X, ws.Y, ws.W = x, y, w
	c.currentWindow = ws

	bar := Rect{ws.X, ws.Y, ws.W, titleBarH}
	if c.input.MouseLeftPressed && bar.Contains(c.input.MouseX, c.input.MouseY) {
		*closed = !*closed
	}

	h := ws.H
	if *closed {
		h = titleBarH
	}
	c.renderer.DrawPanel(ws.X, ws.Y, ws.W, h, ColorPanelBg, ColorPanelBorder)
	c.renderer.DrawRect(ws.X+1, ws.Y+1, ws.W-2, titleBarH-1, ColorTitleBar)

	marker := "v "
	if *closed {
		marker = "> "
	}
	_, textH := c.renderer.MeasureText(title, 1)
	c.renderer.DrawText(ws.X+padding, ws.Y+(titleBarH-textH)/2, marker+title, 1, ColorText)

	c.cursorX = ws.X + padding
	c.cursorY = ws.Y + titleBarH
	c.rowH = 0

	return !*closed
}

// EndWindow ends the current window and records its height for the next
// frame's background.
func (c *Context) EndWindow() {
	if c.currentWindow == nil {
		return
	}
	ws := c.currentWindow
	ws.H = c.cursorY + c.rowH + padding - ws.Y
	if ws.H < titleBarH {
		ws.H = titleBarH
	}
	c.currentWindow = nil
}

// Row starts a new row with the given height.
func (c *Context) Row(height float32) {
	if c.currentWindow == nil {
		return
	}
	c.cursorX = c.currentWindow.X + padding
	c.cursorY += c.rowH + 4
	c.rowH = height
}

// Label draws text in the current row.
func (c *Context) Label(text string) {
	if c.currentWindow == nil {
		return
	}
	_, th := c.renderer.MeasureText(text, 1)
	c.renderer.DrawText(c.cursorX, c.cursorY+(c.rowH-th)/2, text, 1, ColorText)
}

// Slider draws a labelled horizontal slider occupying the current row.
// frac is the handle position in [0, 1]; valueText is drawn over the track.
// It returns the new position and true while the user drags it.
func (c *Context) Slider(id, label string, frac float32, valueText string) (float32, bool) {
	if c.currentWindow == nil {
		return frac, false
	}
	ws := c.currentWindow
	h := c.rowH
	if h == 0 {
		h = 20
	}
	inner := ws.W - 2*padding
	labelW := inner * labelRatio
	track := Rect{c.cursorX + labelW, c.cursorY, inner - labelW, h}

	_, th := c.renderer.MeasureText(label, 1)
	c.renderer.DrawText(c.cursorX, c.cursorY+(h-th)/2, label, 1, ColorTextDim)

	fullID := ws.ID + "_" + id
	if track.Contains(c.input.MouseX, c.input.MouseY) {
		c.hotWidget = fullID
		if c.input.MouseLeftPressed {
			c.activeWidget = fullID
		}
	}

	changed := false
	if c.activeWidget == fullID {
		if c.input.MouseLeftDown {
			frac = sliderFraction(c.input.MouseX, track.X, track.W)
			changed = true
		} else {
			c.activeWidget = ""
		}
	}

	bg := ColorTrack
	if c.hotWidget == fullID || c.activeWidget == fullID {
		bg = ColorTrackHot
	}
	c.renderer.DrawPanel(track.X, track.Y, track.W, track.H, bg, ColorTrackBorder)
	c.renderer.DrawRect(track.X+1, track.Y+1, (track.W-2)*frac, track.H-2, ColorTrackFill)

	tw, _ := c.renderer.MeasureText(valueText, 1)
	c.renderer.DrawText(track.X+track.W-tw-4, track.Y+(h-th)/2, valueText, 1, ColorText)

	return frac, changed
}

func sliderFraction(mx, x, w float32) float32 {
	if w <= 0 {
		return 0
	}
	f := (mx - x) / w
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// GetScreenSize returns the current screen dimensions.
func (c *Context) GetScreenSize() (int, int) {
	return c.renderer.GetScreenSize()
}
