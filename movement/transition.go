package movement

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"github.com/skybreak-gg/stride/serror"
)

// Transition is a scripted root-motion segment: for its duration the capsule
// is driven along a fixed path and the mode integrators are bypassed.
type Transition struct {
	name     string
	start    mgl32.Vec3
	target   mgl32.Vec3
	duration float32
	tween    *gween.Tween

	// queuedClip plays when the transition completes.
	queuedClip  string
	queuedSpeed float32

	// resultMode is adopted on completion; ModeNone derives walking or
	// falling from the floor check.
	resultMode Mode
}

// InTransition reports whether a root-motion transition is driving the
// capsule.
func (c *Component) InTransition() bool { return c.transition != nil }

// TransitionName returns the active transition's name, or "".
func (c *Component) TransitionName() string {
	if c.transition == nil {
		return ""
	}
	return c.transition.name
}

// BeginTransition starts a root-motion segment from the current position to
// target. Only one transition may run at a time.
func (c *Component) BeginTransition(name string, target mgl32.Vec3, duration float32, queuedClip string, queuedSpeed float32, resultMode Mode) error {
	if c.destroyed {
		return serror.New("movement: transition %q on destroyed component", name)
	}
	if c.transition != nil {
		return serror.New("movement: transition %q rejected, %q still active", name, c.transition.name)
	}
	if duration < minTickTime {
		return serror.New("movement: transition %q has no duration", name)
	}
	c.transition = &Transition{
		name:        name,
		start:       c.Position,
		target:      target,
		duration:    duration,
		tween:       gween.New(0, 1, duration, ease.Linear),
		queuedClip:  queuedClip,
		queuedSpeed: queuedSpeed,
		resultMode:  resultMode,
	}
	return nil
}

// CancelTransition aborts the active transition without playing its queued
// clip. Used on teardown and when a correction snaps state.
func (c *Component) CancelTransition() {
	c.transition = nil
	c.safe.TransitionFinished = false
}

func (c *Component) advanceTransition(dt float32) {
	t := c.transition
	alpha, done := t.tween.Update(dt)
	prev := c.Position
	c.Position = t.start.Add(t.target.Sub(t.start).Mul(alpha))
	c.Velocity = c.Position.Sub(prev).Mul(1 / dt)
	if done {
		c.safe.TransitionFinished = true
	}
}

// finishTransition runs in the post-movement hook once TransitionFinished is
// observed: the queued clip starts and the follow-up mode is resolved.
func (c *Component) finishTransition() {
	t := c.transition
	if t == nil {
		return
	}
	c.transition = nil
	c.Velocity = mgl32.Vec3{}

	if t.queuedClip != "" {
		c.clips.Play(t.queuedClip, t.queuedSpeed)
	}

	if t.resultMode != ModeNone {
		c.SetMode(t.resultMode)
		return
	}
	if _, ok := c.base.FindFloor(c); ok {
		c.SetMode(ModeWalking)
		c.OnGround = true
		return
	}
	c.SetMode(ModeFalling)
}
