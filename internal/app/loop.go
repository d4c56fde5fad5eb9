package app

import "fmt"

// LoopState is the frame loop lifecycle.
type LoopState int

// Loop states. Stopped is terminal.
const (
	LoopNotStarted LoopState = iota
	LoopRunning
	LoopStopped
)

func (s LoopState) String() string {
	switch s {
	case LoopNotStarted:
		return "not-started"
	case LoopRunning:
		return "running"
	case LoopStopped:
		return "stopped"
	}
	return "unknown"
}

// State returns the loop state.
func (a *App) State() LoopState {
	return a.state
}

// Start moves the loop to running and resets the timer.
func (a *App) Start() error {
	if a.state != LoopNotStarted {
		return fmt.Errorf("cannot start loop in state %s", a.state)
	}
	a.Timer.Reset()
	a.state = LoopRunning
	a.log.Info("frame loop started")
	return nil
}

// Stop ends the loop for good.
func (a *App) Stop() {
	if a.state == LoopStopped {
		return
	}
	a.state = LoopStopped
	a.log.Info("frame loop stopped")
}

// Tick runs one frame: finished loads are applied, the timer advances,
// damping and animation step, then the scene is rendered. It does nothing
// unless the loop is running.
func (a *App) Tick() {
	if a.state != LoopRunning {
		return
	}

	a.loader.Dispatch()

	a.Timer.Update()
	dt := a.Timer.Delta()

	a.Controls.Update()
	if a.Mixer != nil {
		a.Mixer.Update(dt)
	}

	a.renderer.Render(a.Scene, a.Camera)
}
