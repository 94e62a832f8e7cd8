package movement

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/skybreak-gg/stride/game"
)

// CanSlide requires ground contact, enough horizontal speed and, with ledge
// avoidance on, floor ahead of the capsule.
func (c *Component) CanSlide() bool {
	if !c.IsMovingOnGround() || game.HorizontalLen(c.Velocity) < c.cfg.Slide.MinSlideSpeed {
		return false
	}
	if !c.cfg.Slide.CanSlideOffLedges && !c.hasFloorAhead() {
		return false
	}
	return true
}

// hasFloorAhead traces down one capsule diameter ahead along the movement
// direction, to step depth.
func (c *Component) hasFloorAhead() bool {
	dir := game.SafeNormal(game.Horizontal(c.Velocity))
	if dir.Len() < 0.5 {
		dir = c.forward
	}
	start := c.Position.Add(dir.Mul(c.cfg.Capsule.Radius * 2))
	end := start.Sub(mgl32.Vec3{0, 0, c.cfg.Capsule.HalfHeight + c.cfg.Walking.MaxStepHeight + 10})
	_, ok := c.geo.LineTrace(start, end, ChannelStatic)
	return ok
}

func (c *Component) enterSlide(prev Mode) {
	c.safe.WantsToCrouch = true
	c.orientToMovement = false

	// Entry boost, withheld above the impulse speed cap so fast entries are
	// not rewarded further.
	if c.Velocity.Len() <= c.cfg.Slide.MaxSlideImpulseSpeed {
		dir := game.SafeNormal(game.Horizontal(c.Velocity))
		if dir.Len() < 0.5 {
			dir = c.forward
		}
		c.Velocity = c.Velocity.Add(dir.Mul(c.cfg.Slide.SlideEnterImpulse))
	}
}

func (c *Component) exitSlide() {
	c.orientToMovement = true
}

// physSlide: reduced friction, slope gravity, and a ledge guard. The slope
// gravity is added after velocity shaping, so downhill slides run past the
// configured max slide speed until friction balances it out.
func (c *Component) physSlide(dt float32, iterations int) {
	// crouch release ends the slide and consumes the slide intent, so the
	// next tick cannot immediately re-enter
	if !c.safe.WantsToCrouch {
		c.safe.WantsToSlide = false
		c.SetMode(ModeWalking)
		c.TickPhysics(dt, iterations+1)
		return
	}

	floor, onFloor := c.base.FindFloor(c)
	if !onFloor || game.HorizontalLen(c.Velocity) < c.cfg.Slide.MinSlideSpeed {
		c.SetMode(ModeWalking)
		c.TickPhysics(dt, iterations+1)
		return
	}

	c.base.CalcVelocity(c, dt, c.cfg.Walking.GroundFriction*c.cfg.Slide.SlideFrictionFactor, c.GetMaxBrakingDeceleration())
	c.Velocity = c.Velocity.Add(game.ProjectOnPlane(game.Down.Mul(c.cfg.Slide.SlideGravityForce*dt), floor.Normal))

	prev := c.Position
	c.move(dt)

	floor, onFloor = c.base.FindFloor(c)
	if !onFloor {
		if c.CanWalkOffLedges() {
			c.SetMode(ModeFalling)
			return
		}
		// ledge avoidance: undo the move and kill the slide
		c.Position = prev
		c.Velocity = mgl32.Vec3{}
		c.SetMode(ModeWalking)
		return
	}
	c.Position[2] = floor.Pos[2]
	c.OnGround = true
}
