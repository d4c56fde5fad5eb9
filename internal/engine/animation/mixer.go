package animation

import (
	"math"

	"github.com/Faultbox/envscene/internal/engine/scene"
)

// LoopMode controls what happens when an action reaches the clip end.
type LoopMode uint8

// Loop modes.
const (
	LoopRepeat LoopMode = iota
	LoopOnce
	LoopPingPong
)

// Action is the playback state of one clip in a mixer.
type Action struct {
	clip *Clip

	Loop      LoopMode
	TimeScale float32
	Weight    float32
	// ClampWhenFinished holds the last frame after a LoopOnce action ends.
	ClampWhenFinished bool

	time    float32
	running bool
	paused  bool
}

// Clip returns the clip this action plays.
func (a *Action) Clip() *Clip { return a.clip }

// Play starts the action if it is not running.
func (a *Action) Play() *Action {
	if !a.running {
		a.running = true
		a.paused = false
	}
	return a
}

// Stop halts the action and rewinds it.
func (a *Action) Stop() *Action {
	a.running = false
	a.paused = false
	a.time = 0
	return a
}

// SetPaused freezes or resumes time accumulation.
func (a *Action) SetPaused(p bool) *Action {
	a.paused = p
	return a
}

// IsRunning reports whether the action is playing.
func (a *Action) IsRunning() bool { return a.running && !a.paused }

// Time returns the local clip time in seconds.
func (a *Action) Time() float32 { return a.time }

// SetTime jumps to a local clip time.
func (a *Action) SetTime(t float32) *Action {
	a.time = t
	return a
}

// advance moves local time by dt and reports whether the action should still apply.
func (a *Action) advance(dt float32) bool {
	if !a.running {
		return a.ClampWhenFinished && a.time > 0
	}
	if a.paused {
		return true
	}
	d := a.clip.Duration
	a.time += dt * a.TimeScale
	if d <= 0 {
		a.time = 0
		return true
	}

	switch a.Loop {
	case LoopOnce:
		if a.time >= d {
			a.time = d
			a.running = false
			return a.ClampWhenFinished
		}
		if a.time < 0 {
			a.time = 0
		}
	case LoopPingPong:
		// Local time runs 0..2d and is mirrored when sampling.
		a.time = float32(math.Mod(float64(a.time), float64(2*d)))
		if a.time < 0 {
			a.time += 2 * d
		}
	default:
		a.time = float32(math.Mod(float64(a.time), float64(d)))
		if a.time < 0 {
			a.time += d
		}
	}
	return true
}

func (a *Action) sampleTime() float32 {
	if a.Loop == LoopPingPong && a.time > a.clip.Duration {
		return 2*a.clip.Duration - a.time
	}
	return a.time
}

// Mixer drives the actions bound to one model subtree.
type Mixer struct {
	root    *scene.Node
	actions []*Action
	byClip  map[*Clip]*Action
	time    float32
}

// NewMixer creates a mixer for the subtree at root.
func NewMixer(root *scene.Node) *Mixer {
	return &Mixer{
		root:   root,
		byClip: make(map[*Clip]*Action),
	}
}

// Root returns the subtree the mixer animates.
func (m *Mixer) Root() *scene.Node { return m.root }

// ClipAction returns the action for clip, creating it on first use.
func (m *Mixer) ClipAction(c *Clip) *Action {
	if a, ok := m.byClip[c]; ok {
		return a
	}
	a := &Action{
		clip:      c,
		Loop:      LoopRepeat,
		TimeScale: 1,
		Weight:    1,
	}
	m.byClip[c] = a
	m.actions = append(m.actions, a)
	return a
}

// StopAllActions stops every action.
func (m *Mixer) StopAllActions() {
	for _, a := range m.actions {
		a.Stop()
	}
}

// Update advances all running actions by dt seconds and applies them.
func (m *Mixer) Update(dt float32) {
	m.time += dt
	for _, a := range m.actions {
		if !a.advance(dt) {
			continue
		}
		t := a.sampleTime()
		for i := range a.clip.Tracks {
			a.clip.Tracks[i].Apply(t, a.Weight)
		}
	}
}

// Time returns the total time the mixer has been advanced.
func (m *Mixer) Time() float32 { return m.time }
