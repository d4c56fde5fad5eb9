package model

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/envscene/internal/engine/scene"
	"github.com/Faultbox/envscene/internal/engine/texture"
)

// material returns the standard material for a primitive's material index,
// building it on first use. Primitives without one share a default.
func (b *builder) material(ref *int) (*scene.Material, error) {
	i, ok := index(ref)
	if !ok {
		if b.fallback == nil {
			b.fallback = scene.NewStandardMaterial("default")
		}
		return b.fallback, nil
	}
	if m, ok := b.materials[i]; ok {
		return m, nil
	}
	if i < 0 || i >= len(b.doc.Materials) {
		return nil, fmt.Errorf("material %d out of range", i)
	}
	src := b.doc.Materials[i]

	name := src.Name
	if name == "" {
		name = fmt.Sprintf("material_%d", i)
	}
	m := scene.NewStandardMaterial(name)
	m.DoubleSided = src.DoubleSided

	if pbr := src.PBRMetallicRoughness; pbr != nil {
		c := pbr.BaseColorFactorOrDefault()
		m.Color = mgl32.Vec4{float32(c[0]), float32(c[1]), float32(c[2]), float32(c[3])}
		m.Metalness = float32(pbr.MetallicFactorOrDefault())
		m.Roughness = float32(pbr.RoughnessFactorOrDefault())
		if ti := pbr.BaseColorTexture; ti != nil {
			m.Map = b.texture(ti.Index, texture.ColorSpaceSRGB, name)
		}
	}
	if nt := src.NormalTexture; nt != nil {
		m.NormalMap = b.texture(nt.Index, texture.ColorSpaceLinear, name)
	}

	b.materials[i] = m
	return m, nil
}

// texture resolves a texture reference. Undecodable images are logged and
// skipped so the material still renders with its factors.
func (b *builder) texture(ref any, space texture.ColorSpace, material string) *texture.Texture {
	i, ok := index(ref)
	if !ok {
		return nil
	}
	t, err := b.textures.get(i, space)
	if err != nil {
		b.log.Warn("texture unavailable",
			zap.String("material", material),
			zap.Int("texture", i),
			zap.Error(err),
		)
		return nil
	}
	return t
}
