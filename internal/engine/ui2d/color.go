package ui2d

import "github.com/go-gl/mathgl/mgl32"

// Color is a straight-alpha RGBA color with components in [0, 1].
type Color mgl32.Vec4

// Panel theme.
var (
	ColorPanelBg     = Color{0.08, 0.08, 0.12, 0.95}
	ColorPanelBorder = Color{0.3, 0.3, 0.4, 1}
	ColorTitleBar    = Color{0.15, 0.15, 0.2, 1}
	ColorTrack       = Color{0.05, 0.05, 0.08, 1}
	ColorTrackHot    = Color{0.175, 0.175, 0.245, 1}
	ColorTrackBorder = Color{0.2, 0.2, 0.3, 1}
	ColorTrackFill   = Color{0.2, 0.6, 0.9, 0.6}
	ColorText        = Color{0.9, 0.9, 0.9, 1}
	ColorTextDim     = Color{0.5, 0.5, 0.6, 1}
)
