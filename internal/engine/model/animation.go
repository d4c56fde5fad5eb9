package model

import (
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"

	"github.com/Faultbox/envscene/internal/engine/animation"
)

func (b *builder) buildClip(a *gltf.Animation, i int) (*animation.Clip, error) {
	name := a.Name
	if name == "" {
		name = fmt.Sprintf("clip_%d", i)
	}

	tracks := make([]animation.Track, 0, len(a.Channels))
	for ci, ch := range a.Channels {
		track, ok, err := b.buildTrack(a, ch)
		if err != nil {
			return nil, fmt.Errorf("channel %d: %w", ci, err)
		}
		if ok {
			tracks = append(tracks, track)
		}
	}
	return animation.NewClip(name, tracks), nil
}

// buildTrack converts one channel. Morph weight channels and channels
// without a target report ok=false.
func (b *builder) buildTrack(a *gltf.Animation, ch *gltf.AnimationChannel) (animation.Track, bool, error) {
	var track animation.Track

	node, ok := index(ch.Target.Node)
	if !ok {
		return track, false, nil
	}
	if node < 0 || node >= len(b.nodes) {
		return track, false, fmt.Errorf("target node %d out of range", node)
	}
	track.Target = b.nodes[node]

	switch ch.Target.Path {
	case gltf.TRSTranslation:
		track.Path = animation.PathTranslation
	case gltf.TRSRotation:
		track.Path = animation.PathRotation
	case gltf.TRSScale:
		track.Path = animation.PathScale
	default:
		return track, false, nil
	}

	si, ok := index(ch.Sampler)
	if !ok || si < 0 || si >= len(a.Samplers) {
		return track, false, fmt.Errorf("sampler out of range")
	}
	smp := a.Samplers[si]
	switch smp.Interpolation {
	case gltf.InterpolationStep:
		track.Interpolation = animation.InterpolationStep
	case gltf.InterpolationCubicSpline:
		track.Interpolation = animation.InterpolationCubicSpline
	default:
		track.Interpolation = animation.InterpolationLinear
	}

	in, ok := index(smp.Input)
	if !ok {
		return track, false, fmt.Errorf("sampler has no input")
	}
	acr, err := b.accessor(in)
	if err != nil {
		return track, false, err
	}
	raw, err := modeler.ReadAccessor(b.doc, acr, nil)
	if err != nil {
		return track, false, fmt.Errorf("reading times: %w", err)
	}
	times, ok := raw.([]float32)
	if !ok {
		return track, false, fmt.Errorf("times: unexpected type %T", raw)
	}
	track.Times = times

	out, ok := index(smp.Output)
	if !ok {
		return track, false, fmt.Errorf("sampler has no output")
	}
	acr, err = b.accessor(out)
	if err != nil {
		return track, false, err
	}
	raw, err = modeler.ReadAccessor(b.doc, acr, nil)
	if err != nil {
		return track, false, fmt.Errorf("reading values: %w", err)
	}
	switch v := raw.(type) {
	case [][3]float32:
		track.Values = flatten3(v)
	case [][4]float32:
		track.Values = make([]float32, 0, len(v)*4)
		for _, q := range v {
			track.Values = append(track.Values, q[0], q[1], q[2], q[3])
		}
	default:
		b.log.Warn("skipping channel with unsupported output",
			zap.String("animation", a.Name),
			zap.String("type", fmt.Sprintf("%T", raw)),
		)
		return track, false, nil
	}

	want := len(track.Times) * track.Components()
	if track.Interpolation == animation.InterpolationCubicSpline {
		want *= 3
	}
	if len(track.Values) != want {
		return track, false, fmt.Errorf("expected %d values, got %d", want, len(track.Values))
	}
	return track, true, nil
}
