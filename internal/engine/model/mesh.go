package model

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"

	"github.com/Faultbox/envscene/internal/engine/scene"
)

// attachMesh adds one mesh child per triangle primitive of n's mesh.
// A single-primitive mesh turns the node itself into the mesh.
func (b *builder) attachMesh(n *gltf.Node, out *scene.Node) error {
	mi, ok := index(n.Mesh)
	if !ok {
		return nil
	}
	if mi >= len(b.doc.Meshes) {
		return fmt.Errorf("mesh %d out of range", mi)
	}
	mesh := b.doc.Meshes[mi]

	var prims []*scene.Node
	for pi, p := range mesh.Primitives {
		if p.Mode != gltf.PrimitiveTriangles {
			b.log.Warn("skipping non-triangle primitive",
				zap.String("mesh", mesh.Name),
				zap.Int("primitive", pi),
			)
			continue
		}
		geom, err := b.readGeometry(p)
		if err != nil {
			return fmt.Errorf("mesh %q primitive %d: %w", mesh.Name, pi, err)
		}
		mat, err := b.material(p.Material)
		if err != nil {
			return fmt.Errorf("mesh %q primitive %d: %w", mesh.Name, pi, err)
		}
		name := mesh.Name
		if name == "" {
			name = out.Name
		}
		prims = append(prims, scene.NewMesh(fmt.Sprintf("%s_%d", name, pi), geom, mat))
	}

	if len(prims) == 1 {
		out.Kind = scene.KindMesh
		out.Geometry = prims[0].Geometry
		out.Material = prims[0].Material
		return nil
	}
	out.Add(prims...)
	return nil
}

func (b *builder) accessor(i int) (*gltf.Accessor, error) {
	if i < 0 || i >= len(b.doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range", i)
	}
	return b.doc.Accessors[i], nil
}

func (b *builder) readGeometry(p *gltf.Primitive) (*scene.Geometry, error) {
	g := &scene.Geometry{}

	posIdx, ok := p.Attributes[gltf.POSITION]
	if !ok {
		return nil, fmt.Errorf("missing POSITION")
	}
	acr, err := b.accessor(posIdx)
	if err != nil {
		return nil, err
	}
	positions, err := modeler.ReadPosition(b.doc, acr, nil)
	if err != nil {
		return nil, fmt.Errorf("reading positions: %w", err)
	}
	g.Positions = flatten3(positions)

	if i, ok := p.Attributes[gltf.NORMAL]; ok {
		acr, err := b.accessor(i)
		if err != nil {
			return nil, err
		}
		normals, err := modeler.ReadNormal(b.doc, acr, nil)
		if err != nil {
			return nil, fmt.Errorf("reading normals: %w", err)
		}
		g.Normals = flatten3(normals)
	}

	if i, ok := p.Attributes[gltf.TEXCOORD_0]; ok {
		acr, err := b.accessor(i)
		if err != nil {
			return nil, err
		}
		uvs, err := modeler.ReadTextureCoord(b.doc, acr, nil)
		if err != nil {
			return nil, fmt.Errorf("reading uvs: %w", err)
		}
		g.UVs = make([]float32, 0, len(uvs)*2)
		for _, uv := range uvs {
			g.UVs = append(g.UVs, uv[0], uv[1])
		}
	}

	ji, hasJoints := p.Attributes[gltf.JOINTS_0]
	wi, hasWeights := p.Attributes[gltf.WEIGHTS_0]
	if hasJoints && hasWeights {
		jacr, err := b.accessor(ji)
		if err != nil {
			return nil, err
		}
		joints, err := modeler.ReadJoints(b.doc, jacr, nil)
		if err != nil {
			return nil, fmt.Errorf("reading joints: %w", err)
		}
		wacr, err := b.accessor(wi)
		if err != nil {
			return nil, err
		}
		weights, err := modeler.ReadWeights(b.doc, wacr, nil)
		if err != nil {
			return nil, fmt.Errorf("reading weights: %w", err)
		}
		g.Joints = make([]uint16, 0, len(joints)*4)
		for _, j := range joints {
			g.Joints = append(g.Joints, j[0], j[1], j[2], j[3])
		}
		g.Weights = make([]float32, 0, len(weights)*4)
		for _, w := range weights {
			g.Weights = append(g.Weights, w[0], w[1], w[2], w[3])
		}
	}

	if i, ok := index(p.Indices); ok {
		acr, err := b.accessor(i)
		if err != nil {
			return nil, err
		}
		g.Indices, err = modeler.ReadIndices(b.doc, acr, nil)
		if err != nil {
			return nil, fmt.Errorf("reading indices: %w", err)
		}
	}

	if len(g.Normals) == 0 {
		g.ComputeNormals()
	}
	return g, nil
}

func flatten3(in [][3]float32) []float32 {
	out := make([]float32, 0, len(in)*3)
	for _, v := range in {
		out = append(out, v[0], v[1], v[2])
	}
	return out
}

// bindSkin attaches the node's skin to it and to its primitive children.
func (b *builder) bindSkin(n *gltf.Node, out *scene.Node) error {
	si, ok := index(n.Skin)
	if !ok {
		return nil
	}
	if si >= len(b.doc.Skins) {
		return fmt.Errorf("skin %d out of range", si)
	}
	s := b.doc.Skins[si]
	if len(s.Joints) > scene.MaxJoints {
		b.log.Warn("skin exceeds joint limit",
			zap.String("skin", s.Name),
			zap.Int("joints", len(s.Joints)),
			zap.Int("max", scene.MaxJoints),
		)
	}

	skin := &scene.Skin{Joints: make([]*scene.Node, 0, len(s.Joints))}
	for _, j := range s.Joints {
		if j < 0 || j >= len(b.nodes) {
			return fmt.Errorf("skin joint %d out of range", j)
		}
		skin.Joints = append(skin.Joints, b.nodes[j])
	}

	if i, ok := index(s.InverseBindMatrices); ok {
		acr, err := b.accessor(i)
		if err != nil {
			return err
		}
		raw, err := modeler.ReadAccessor(b.doc, acr, nil)
		if err != nil {
			return fmt.Errorf("reading inverse bind matrices: %w", err)
		}
		mats, ok := raw.([][4][4]float32)
		if !ok {
			return fmt.Errorf("inverse bind matrices: unexpected type %T", raw)
		}
		skin.InverseBindMatrix = make([]mgl32.Mat4, len(mats))
		for k, m := range mats {
			for c := 0; c < 4; c++ {
				for r := 0; r < 4; r++ {
					skin.InverseBindMatrix[k][c*4+r] = m[c][r]
				}
			}
		}
	}

	if out.IsMesh() {
		out.Skin = skin
	}
	for _, c := range out.Children() {
		if c.IsMesh() && c.Geometry.IsSkinned() {
			c.Skin = skin
		}
	}
	return nil
}
