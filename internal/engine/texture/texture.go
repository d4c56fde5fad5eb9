// Package texture provides CPU-side textures, cube maps and image decoding.
package texture

import (
	"image"

	"github.com/go-gl/mathgl/mgl32"
)

// Wrap is a texture coordinate wrapping mode.
type Wrap uint8

// Wrap modes.
const (
	WrapClamp Wrap = iota
	WrapRepeat
	WrapMirror
)

// ColorSpace tells the renderer how to interpret stored color values.
type ColorSpace uint8

// Color spaces.
const (
	// ColorSpaceLinear is for data textures such as normal maps.
	ColorSpaceLinear ColorSpace = iota
	// ColorSpaceSRGB is for color textures; the GPU decodes to linear on sampling.
	ColorSpaceSRGB
)

// Texture is a 2D image with sampling parameters. Image is nil until loaded.
type Texture struct {
	Name       string
	Image      *image.RGBA
	WrapS      Wrap
	WrapT      Wrap
	Repeat     mgl32.Vec2
	ColorSpace ColorSpace
	Mipmaps    bool
	// FlipY uploads rows bottom-up, for meshes whose V axis points up.
	FlipY bool

	version uint32
}

// New creates an empty texture with clamp wrapping and no repeat.
func New(name string) *Texture {
	return &Texture{
		Name:    name,
		WrapS:   WrapClamp,
		WrapT:   WrapClamp,
		Repeat:  mgl32.Vec2{1, 1},
		Mipmaps: true,
		FlipY:   true,
	}
}

// SetImage replaces the pixel data and bumps the version so the renderer re-uploads it.
func (t *Texture) SetImage(img *image.RGBA) {
	t.Image = img
	t.version++
}

// SetRepeat tiles the texture n×m times with repeat wrapping on both axes.
func (t *Texture) SetRepeat(u, v float32) {
	t.Repeat = mgl32.Vec2{u, v}
	t.WrapS = WrapRepeat
	t.WrapT = WrapRepeat
	t.version++
}

// Ready reports whether pixel data has arrived.
func (t *Texture) Ready() bool {
	return t != nil && t.Image != nil
}

// Version changes whenever the image or sampling parameters change.
func (t *Texture) Version() uint32 {
	return t.version
}

// UVTransform returns the 3x3 matrix applied to mesh UVs.
func (t *Texture) UVTransform() mgl32.Mat3 {
	return mgl32.Scale2D(t.Repeat[0], t.Repeat[1])
}
