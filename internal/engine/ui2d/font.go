package ui2d

import (
	"image"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	fontFirstChar = 32
	fontLastChar  = 126
	fontColumns   = 16
)

// Font is a fixed-width bitmap font baked into a GL texture atlas.
type Font struct {
	texture    uint32
	glyphW     int
	glyphH     int
	atlasW     int
	atlasH     int
	atlasRows  int
	atlasImage *image.RGBA
}

// NewFont rasterizes basicfont.Face7x13 into an atlas and uploads it.
func NewFont() *Font {
	f := bakeFont(basicfont.Face7x13)
	f.upload()
	return f
}

func bakeFont(face *basicfont.Face) *Font {
	count := fontLastChar - fontFirstChar + 1
	rows := (count + fontColumns - 1) / fontColumns

	f := &Font{
		glyphW:    face.Advance,
		glyphH:    face.Height,
		atlasRows: rows,
	}
	f.atlasW = fontColumns * f.glyphW
	f.atlasH = rows * f.glyphH
	f.atlasImage = image.NewRGBA(image.Rect(0, 0, f.atlasW, f.atlasH))

	d := &font.Drawer{
		Dst:  f.atlasImage,
		Src:  image.White,
		Face: face,
	}
	for c := fontFirstChar; c <= fontLastChar; c++ {
		i := c - fontFirstChar
		x := (i % fontColumns) * f.glyphW
		y := (i / fontColumns) * f.glyphH
		d.Dot = fixed.P(x, y+face.Ascent)
		d.DrawString(string(rune(c)))
	}
	return f
}

func (f *Font) upload() {
	gl.GenTextures(1, &f.texture)
	gl.BindTexture(gl.TEXTURE_2D, f.texture)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8,
		int32(f.atlasW), int32(f.atlasH), 0,
		gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&f.atlasImage.Pix[0]))
	gl.BindTexture(gl.TEXTURE_2D, 0)
}

// TextureID returns the GL atlas texture.
func (f *Font) TextureID() uint32 {
	return f.texture
}

// GlyphSize returns the pixel size of one glyph cell.
func (f *Font) GlyphSize() (int, int) {
	return f.glyphW, f.glyphH
}

// GetGlyphUV returns atlas coordinates for a rune. Runes outside the
// baked range map to '?'.
func (f *Font) GetGlyphUV(r rune) (u0, v0, u1, v1 float32) {
	if r < fontFirstChar || r > fontLastChar {
		r = '?'
	}
	i := int(r) - fontFirstChar
	x := (i % fontColumns) * f.glyphW
	y := (i / fontColumns) * f.glyphH

	u0 = float32(x) / float32(f.atlasW)
	v0 = float32(y) / float32(f.atlasH)
	u1 = float32(x+f.glyphW) / float32(f.atlasW)
	v1 = float32(y+f.glyphH) / float32(f.atlasH)
	return
}

// MeasureText returns the size of text drawn at scale.
func (f *Font) MeasureText(text string, scale float32) (float32, float32) {
	lines := 1
	longest, cur := 0, 0
	for _, c := range text {
		if c == '\n' {
			lines++
			cur = 0
			continue
		}
		cur++
		if cur > longest {
			longest = cur
		}
	}
	return float32(longest*f.glyphW) * scale, float32(lines*f.glyphH) * scale
}

// Close deletes the atlas texture.
func (f *Font) Close() {
	if f.texture != 0 {
		gl.DeleteTextures(1, &f.texture)
		f.texture = 0
	}
}
