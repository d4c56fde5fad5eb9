// Package shaders provides embedded GLSL shader sources.
package shaders

import _ "embed"

// StandardVertexShader transforms lit meshes, with optional skinning.
//
//go:embed standard.vert
var StandardVertexShader string

// StandardFragmentShader shades standard and basic materials, applies
// shadows and environment lighting, then tone maps to sRGB.
//
//go:embed standard.frag
var StandardFragmentShader string

// DepthVertexShader renders shadow casters from the light.
//
//go:embed depth.vert
var DepthVertexShader string

// DepthFragmentShader writes depth only.
//
//go:embed depth.frag
var DepthFragmentShader string
