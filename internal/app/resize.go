package app

import "go.uber.org/zap"

// ResizeSource identifies where size changes come from.
type ResizeSource int

const (
	// SourceViewport reports every size change, including system ones, and
	// tracks the HiDPI drawable.
	SourceViewport ResizeSource = iota
	// SourceWindow reports user and window-manager resizes only.
	SourceWindow
)

func (s ResizeSource) String() string {
	if s == SourceViewport {
		return "viewport"
	}
	return "window"
}

// SelectResizeSource picks the viewport source when the window can report
// its drawable size, otherwise the plain window source.
func SelectResizeSource(highDPI bool) ResizeSource {
	if highDPI {
		return SourceViewport
	}
	return SourceWindow
}

// DrawableScaled reports whether a drawable of dw x dh pixels differs from
// its window of ww x wh units, the sign of a granted HiDPI request.
func DrawableScaled(ww, wh, dw, dh int) bool {
	return dw != ww || dh != wh
}

// ResizeSource returns the source chosen at startup.
func (a *App) ResizeSource() ResizeSource {
	return a.resizeSource
}

// SetResizeSource overrides the startup choice, once the host knows
// whether the window really got a HiDPI drawable.
func (a *App) SetResizeSource(s ResizeSource) {
	a.resizeSource = s
}

// HandleResize applies a size change from src and reports whether it was
// used. Events from the other source are ignored.
func (a *App) HandleResize(src ResizeSource, width, height int, devicePixelRatio float32) bool {
	if src != a.resizeSource {
		return false
	}
	a.Resize(width, height, devicePixelRatio)
	return true
}

// Resize updates the camera aspect, the renderer size and its pixel ratio,
// capped at the configured maximum.
func (a *App) Resize(width, height int, devicePixelRatio float32) {
	a.width, a.height = width, height

	a.Camera.Aspect = aspect(width, height)
	a.Camera.UpdateProjectionMatrix()
	a.Controls.ViewportHeight = float32(max(height, 1))

	a.pixelRatio = capPixelRatio(devicePixelRatio, a.cfg.Render.MaxPixelRatio)
	a.renderer.SetSize(width, height)
	a.renderer.SetPixelRatio(a.pixelRatio)

	a.log.Debug("resized",
		zap.Int("width", width),
		zap.Int("height", height),
		zap.Float32("devicePixelRatio", devicePixelRatio),
		zap.Float32("pixelRatio", a.pixelRatio),
	)
}

func capPixelRatio(ratio, limit float32) float32 {
	if ratio <= 0 {
		ratio = 1
	}
	if limit > 0 && ratio > limit {
		return limit
	}
	return ratio
}
