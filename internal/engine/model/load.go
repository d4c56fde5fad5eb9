package model

import (
	"bytes"
	"fmt"
	"io/fs"
	"path"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"go.uber.org/zap"

	"github.com/Faultbox/envscene/internal/engine/scene"
	"github.com/Faultbox/envscene/internal/logger"
)

// Load reads and converts the glTF file at name in fsys. Relative buffer
// and image URIs resolve against the file's directory.
func Load(fsys fs.FS, name string) (*Model, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	dir, err := fs.Sub(fsys, path.Dir(name))
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", name, err)
	}

	doc := new(gltf.Document)
	if err := gltf.NewDecoderFS(bytes.NewReader(data), dir).Decode(doc); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", name, err)
	}

	m, err := Build(doc, dir)
	if err != nil {
		return nil, fmt.Errorf("building %s: %w", name, err)
	}
	return m, nil
}

// builder carries per-document state while converting.
type builder struct {
	doc *gltf.Document

	nodes     []*scene.Node
	materials map[int]*scene.Material
	textures  *textureSet
	fallback  *scene.Material
	log       *zap.Logger
}

// Build converts a decoded document. Image URIs are read from fsys, which
// may be nil when all images are embedded.
func Build(doc *gltf.Document, fsys fs.FS) (*Model, error) {
	b := &builder{
		doc:       doc,
		nodes:     make([]*scene.Node, len(doc.Nodes)),
		materials: make(map[int]*scene.Material),
		textures:  newTextureSet(doc, fsys),
		log:       logger.Named("model"),
	}

	for i, n := range doc.Nodes {
		b.nodes[i] = newNode(n, i)
	}
	for i, n := range doc.Nodes {
		if err := b.attachMesh(n, b.nodes[i]); err != nil {
			return nil, fmt.Errorf("node %d: %w", i, err)
		}
	}
	for i, n := range doc.Nodes {
		for _, c := range n.Children {
			if c < 0 || c >= len(b.nodes) {
				return nil, fmt.Errorf("node %d: child %d out of range", i, c)
			}
			b.nodes[i].Add(b.nodes[c])
		}
	}
	for i, n := range doc.Nodes {
		if err := b.bindSkin(n, b.nodes[i]); err != nil {
			return nil, fmt.Errorf("node %d: %w", i, err)
		}
	}

	root := scene.NewGroup("gltf")
	for _, idx := range b.rootNodes() {
		root.Add(b.nodes[idx])
	}

	m := &Model{Root: root}
	for i, a := range doc.Animations {
		clip, err := b.buildClip(a, i)
		if err != nil {
			return nil, fmt.Errorf("animation %d: %w", i, err)
		}
		m.Clips = append(m.Clips, clip)
	}

	root.UpdateMatrixWorld()
	b.log.Debug("model built",
		zap.Int("nodes", len(doc.Nodes)),
		zap.Int("meshes", len(doc.Meshes)),
		zap.Int("clips", len(m.Clips)),
	)
	return m, nil
}

// rootNodes returns the nodes of the default scene, or every parentless
// node when the document names no scene.
func (b *builder) rootNodes() []int {
	doc := b.doc
	if len(doc.Scenes) > 0 {
		s := 0
		if i, ok := index(doc.Scene); ok && i < len(doc.Scenes) {
			s = i
		}
		if len(doc.Scenes[s].Nodes) > 0 {
			return doc.Scenes[s].Nodes
		}
	}
	var out []int
	for i, n := range b.nodes {
		if n.Parent() == nil {
			out = append(out, i)
		}
	}
	return out
}

func newNode(n *gltf.Node, i int) *scene.Node {
	name := n.Name
	if name == "" {
		name = fmt.Sprintf("node_%d", i)
	}
	out := scene.NewGroup(name)

	if n.Matrix != [16]float64{} && n.Matrix != identity {
		var m mgl32.Mat4
		for k, v := range n.Matrix {
			m[k] = float32(v)
		}
		out.Position, out.Rotation, out.Scale = decompose(m)
		return out
	}

	t := n.TranslationOrDefault()
	r := n.RotationOrDefault()
	s := n.ScaleOrDefault()
	out.Position = mgl32.Vec3{float32(t[0]), float32(t[1]), float32(t[2])}
	out.Rotation = mgl32.Quat{W: float32(r[3]), V: mgl32.Vec3{float32(r[0]), float32(r[1]), float32(r[2])}}
	out.Scale = mgl32.Vec3{float32(s[0]), float32(s[1]), float32(s[2])}
	return out
}

var identity = [16]float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}

// decompose splits an affine matrix without shear into TRS.
func decompose(m mgl32.Mat4) (mgl32.Vec3, mgl32.Quat, mgl32.Vec3) {
	t := m.Col(3).Vec3()
	sx := m.Col(0).Vec3().Len()
	sy := m.Col(1).Vec3().Len()
	sz := m.Col(2).Vec3().Len()
	if m.Mat3().Det() < 0 {
		sx = -sx
	}
	var r mgl32.Mat4
	for c, s := range [3]float32{sx, sy, sz} {
		if s == 0 {
			s = 1
		}
		col := m.Col(c).Vec3().Mul(1 / s)
		r.SetCol(c, col.Vec4(0))
	}
	r.SetCol(3, mgl32.Vec4{0, 0, 0, 1})
	return t, mgl32.Mat4ToQuat(r).Normalize(), mgl32.Vec3{sx, sy, sz}
}

// index unwraps glTF index fields, which are either required ints or
// optional *int depending on the property.
func index(v any) (int, bool) {
	switch i := v.(type) {
	case int:
		return i, true
	case *int:
		if i == nil {
			return 0, false
		}
		return *i, true
	}
	return 0, false
}
