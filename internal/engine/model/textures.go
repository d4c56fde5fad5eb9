package model

import (
	"fmt"
	"io/fs"
	"net/url"
	"path"

	"github.com/qmuntal/gltf"

	"github.com/Faultbox/envscene/internal/engine/texture"
)

type textureKey struct {
	index int
	space texture.ColorSpace
}

// textureSet decodes each document texture once per color space.
type textureSet struct {
	doc   *gltf.Document
	fsys  fs.FS
	cache map[textureKey]*texture.Texture
}

func newTextureSet(doc *gltf.Document, fsys fs.FS) *textureSet {
	return &textureSet{
		doc:   doc,
		fsys:  fsys,
		cache: make(map[textureKey]*texture.Texture),
	}
}

// get returns the texture at index i decoded for the given color space.
func (s *textureSet) get(i int, space texture.ColorSpace) (*texture.Texture, error) {
	key := textureKey{i, space}
	if t, ok := s.cache[key]; ok {
		return t, nil
	}
	if i < 0 || i >= len(s.doc.Textures) {
		return nil, fmt.Errorf("texture %d out of range", i)
	}
	src := s.doc.Textures[i]
	imgIdx, ok := index(src.Source)
	if !ok || imgIdx >= len(s.doc.Images) {
		return nil, fmt.Errorf("texture %d has no image", i)
	}
	img := s.doc.Images[imgIdx]

	name := img.Name
	if name == "" {
		name = img.URI
	}
	if name == "" {
		name = fmt.Sprintf("image_%d", imgIdx)
	}

	data, err := s.imageData(img)
	if err != nil {
		return nil, fmt.Errorf("image %q: %w", name, err)
	}
	rgba, err := texture.Decode(data, name)
	if err != nil {
		return nil, err
	}

	t := texture.New(name)
	t.FlipY = false
	t.ColorSpace = space
	t.WrapS, t.WrapT = texture.WrapRepeat, texture.WrapRepeat
	if si, ok := index(src.Sampler); ok && si < len(s.doc.Samplers) {
		smp := s.doc.Samplers[si]
		t.WrapS = wrapMode(smp.WrapS)
		t.WrapT = wrapMode(smp.WrapT)
	}
	t.SetImage(rgba)

	s.cache[key] = t
	return t, nil
}

func (s *textureSet) imageData(img *gltf.Image) ([]byte, error) {
	if img.IsEmbeddedResource() {
		return img.MarshalData()
	}
	if bv, ok := index(img.BufferView); ok {
		if bv >= len(s.doc.BufferViews) {
			return nil, fmt.Errorf("buffer view %d out of range", bv)
		}
		view := s.doc.BufferViews[bv]
		if view.Buffer < 0 || view.Buffer >= len(s.doc.Buffers) {
			return nil, fmt.Errorf("buffer %d out of range", view.Buffer)
		}
		buf := s.doc.Buffers[view.Buffer].Data
		end := view.ByteOffset + view.ByteLength
		if end > len(buf) {
			return nil, fmt.Errorf("buffer view %d exceeds buffer", bv)
		}
		return buf[view.ByteOffset:end], nil
	}
	if img.URI == "" {
		return nil, fmt.Errorf("no image source")
	}
	if s.fsys == nil {
		return nil, fmt.Errorf("external image %q without a file system", img.URI)
	}
	p, err := url.PathUnescape(img.URI)
	if err != nil {
		p = img.URI
	}
	return fs.ReadFile(s.fsys, path.Clean(p))
}

func wrapMode(w gltf.WrappingMode) texture.Wrap {
	switch w {
	case gltf.WrapClampToEdge:
		return texture.WrapClamp
	case gltf.WrapMirroredRepeat:
		return texture.WrapMirror
	}
	return texture.WrapRepeat
}
