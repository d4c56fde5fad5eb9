package renderer

import (
	"image"
	"math"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/envscene/internal/engine/scene"
	"github.com/Faultbox/envscene/internal/engine/texture"
)

type gpuTexture struct {
	id      uint32
	version uint32
}

func (t *gpuTexture) destroy() {
	if t.id != 0 {
		gl.DeleteTextures(1, &t.id)
		t.id = 0
	}
}

type gpuCube struct {
	id      uint32
	source  *texture.Cube
	version uint32
	maxLod  float32
}

func (c *gpuCube) destroy() {
	if c.id != 0 {
		gl.DeleteTextures(1, &c.id)
		c.id = 0
	}
}

func glWrap(w texture.Wrap) int32 {
	switch w {
	case texture.WrapRepeat:
		return gl.REPEAT
	case texture.WrapMirror:
		return gl.MIRRORED_REPEAT
	}
	return gl.CLAMP_TO_EDGE
}

func internalFormat(cs texture.ColorSpace) int32 {
	if cs == texture.ColorSpaceSRGB {
		return gl.SRGB8_ALPHA8
	}
	return gl.RGBA8
}

// bindTexture binds t to unit, uploading it first if it is new or
// changed. It reports false, leaving a white texture bound, while t has
// no pixels yet.
func (r *Renderer) bindTexture(t *texture.Texture, unit uint32) bool {
	gl.ActiveTexture(gl.TEXTURE0 + unit)
	if !t.Ready() {
		gl.BindTexture(gl.TEXTURE_2D, r.white)
		return false
	}

	gt, ok := r.textures[t]
	if !ok {
		gt = &gpuTexture{}
		gl.GenTextures(1, &gt.id)
		r.textures[t] = gt
	}
	gl.BindTexture(gl.TEXTURE_2D, gt.id)
	if ok && gt.version == t.Version() {
		return true
	}

	img := t.Image
	if t.FlipY {
		img = texture.FlipVertical(img)
	}
	uploadRGBA(gl.TEXTURE_2D, internalFormat(t.ColorSpace), img)

	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, glWrap(t.WrapS))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, glWrap(t.WrapT))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	if t.Mipmaps {
		gl.GenerateMipmap(gl.TEXTURE_2D)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	} else {
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	}

	gt.version = t.Version()
	b := t.Image.Bounds()
	r.log.Debug("texture uploaded",
		zap.String("name", t.Name),
		zap.Int("width", b.Dx()),
		zap.Int("height", b.Dy()),
		zap.Uint32("version", gt.version),
	)
	return true
}

// bindEnvironment binds the scene's cube map to its unit. It returns the
// deepest mip level and whether an environment is available.
func (r *Renderer) bindEnvironment(s *scene.Scene) (float32, bool) {
	gl.ActiveTexture(gl.TEXTURE0 + unitEnvMap)
	env := s.Environment
	if !env.Ready() {
		gl.BindTexture(gl.TEXTURE_CUBE_MAP, r.whiteCube)
		return 0, false
	}

	if r.cube != nil && (r.cube.source != env || r.cube.version != env.Version()) {
		r.cube.destroy()
		r.cube = nil
	}
	if r.cube != nil {
		gl.BindTexture(gl.TEXTURE_CUBE_MAP, r.cube.id)
		return r.cube.maxLod, true
	}

	c := &gpuCube{source: env, version: env.Version()}
	gl.GenTextures(1, &c.id)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, c.id)
	for i, face := range env.Faces {
		uploadRGBA(gl.TEXTURE_CUBE_MAP_POSITIVE_X+uint32(i), internalFormat(env.ColorSpace), face)
	}
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_R, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.Enable(gl.TEXTURE_CUBE_MAP_SEAMLESS)
	gl.GenerateMipmap(gl.TEXTURE_CUBE_MAP)

	c.maxLod = float32(math.Floor(math.Log2(float64(env.Size()))))
	r.cube = c
	r.log.Debug("environment uploaded",
		zap.String("name", env.Name),
		zap.Int("size", env.Size()),
	)
	return c.maxLod, true
}

func uploadRGBA(target uint32, format int32, img *image.RGBA) {
	b := img.Bounds()
	pix := img.Pix
	if img.Stride != b.Dx()*4 {
		pix = packRows(img)
	}
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(target, 0, format, int32(b.Dx()), int32(b.Dy()), 0,
		gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&pix[0]))
}

// packRows copies a sub-image into a tightly packed buffer.
func packRows(img *image.RGBA) []byte {
	b := img.Bounds()
	rowLen := b.Dx() * 4
	out := make([]byte, 0, rowLen*b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		off := img.PixOffset(b.Min.X, y)
		out = append(out, img.Pix[off:off+rowLen]...)
	}
	return out
}

func createWhiteTexture() uint32 {
	var id uint32
	white := []byte{255, 255, 255, 255}
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_2D, id)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, 1, 1, 0, gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&white[0]))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return id
}

func createWhiteCube() uint32 {
	var id uint32
	white := []byte{255, 255, 255, 255}
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, id)
	for i := uint32(0); i < 6; i++ {
		gl.TexImage2D(gl.TEXTURE_CUBE_MAP_POSITIVE_X+i, 0, gl.RGBA8, 1, 1, 0, gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&white[0]))
	}
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, 0)
	return id
}
