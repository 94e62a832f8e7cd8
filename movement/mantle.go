package movement

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/skybreak-gg/stride/game"
)

// TryMantle scans for a grabbable ledge in front of the capsule and, if the
// geometry qualifies, starts the root-motion transition onto it. Tall and
// short mantles pick different clips; observers learn which for proxy
// playback.
func (c *Component) TryMantle() bool {
	switch c.mode {
	case ModeWalking, ModeFalling, ModeClimb, ModeHang:
	default:
		return false
	}
	if c.transition != nil {
		return false
	}

	feetZ := c.Position[2] - c.cfg.Capsule.HalfHeight

	// front face: must be a steep wall we are roughly facing
	frontStart := mgl32.Vec3{c.Position[0], c.Position[1], feetZ + c.cfg.Walking.MaxStepHeight}
	frontEnd := frontStart.Add(c.forward.Mul(c.cfg.Mantle.MaxDistance))
	front, ok := c.geo.LineTrace(frontStart, frontEnd, ChannelStatic)
	if !ok {
		return false
	}
	if game.AngleFromVerticalDeg(front.Normal) < c.cfg.Mantle.MinWallSteepnessAngle {
		return false
	}
	if game.AngleBetweenDeg(c.forward, front.Normal.Mul(-1)) > c.cfg.Mantle.MaxAlignmentAngle {
		return false
	}

	// top surface: probe down behind the lip for a flat enough ledge
	maxLedgeZ := c.Position[2] + c.cfg.Capsule.HalfHeight + c.cfg.Mantle.ReachHeight
	probe := front.Point.Sub(front.Normal.Mul(c.cfg.Mantle.MinDepth))
	probeStart := mgl32.Vec3{probe[0], probe[1], maxLedgeZ}
	probeEnd := mgl32.Vec3{probe[0], probe[1], feetZ}
	top, ok := c.geo.LineTrace(probeStart, probeEnd, ChannelStatic)
	if !ok {
		return false
	}
	if game.AngleFromVerticalDeg(top.Normal) > c.cfg.Mantle.MaxSurfaceAngle {
		return false
	}

	height := top.Point[2] - feetZ
	if height < c.cfg.Walking.MaxStepHeight || height > c.cfg.Capsule.HalfHeight*2+c.cfg.Mantle.ReachHeight {
		return false
	}

	// room for the capsule on top
	target := top.Point.Add(game.Up.Mul(c.cfg.Capsule.HalfHeight + 2))
	clearStart := target.Add(game.Up.Mul(10))
	if _, blocked := c.geo.SweepCapsule(c.cfg.Capsule.Radius, c.cfg.Capsule.HalfHeight, clearStart, target, ChannelStatic); blocked {
		return false
	}

	tall := height > c.cfg.Capsule.HalfHeight*2
	transClip, mainClip := c.cfg.Mantle.TransitionShortClip, c.cfg.Mantle.ShortClip
	if tall {
		transClip, mainClip = c.cfg.Mantle.TransitionTallClip, c.cfg.Mantle.TallClip
	}

	c.clips.Play(transClip, 1)
	if err := c.BeginTransition("mantle", target, c.cfg.Mantle.TransitionDuration, mainClip, 1, ModeNone); err != nil {
		return false
	}
	c.Velocity = mgl32.Vec3{}
	c.logf("mantle start: height=%.1f tall=%v", height, tall)

	for _, fn := range c.mantleObservers {
		fn(tall)
	}
	return true
}
