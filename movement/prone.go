package movement

import "github.com/skybreak-gg/stride/game"

// CanProne permits entry from a slide or while crouched on the ground.
func (c *Component) CanProne() bool {
	return c.IsSliding() || (c.mode == ModeWalking && c.IsCrouching())
}

func (c *Component) enterProne(prev Mode) {
	// Dropping prone out of a slide keeps some momentum.
	if prev == ModeSlide {
		dir := game.SafeNormal(game.Horizontal(c.Velocity))
		c.Velocity = c.Velocity.Add(dir.Mul(c.cfg.Prone.ProneSlideEnterImpulse))
	}
}

func (c *Component) exitProne() {}

// physProne is walking with heavy braking and a low speed cap. Releasing
// crouch stands back up.
func (c *Component) physProne(dt float32, iterations int) {
	if !c.safe.WantsToCrouch {
		c.SetMode(ModeWalking)
		c.TickPhysics(dt, iterations+1)
		return
	}

	c.base.CalcVelocity(c, dt, c.cfg.Walking.GroundFriction, c.GetMaxBrakingDeceleration())
	c.Velocity[2] = 0
	c.move(dt)

	if hit, ok := c.base.FindFloor(c); ok {
		c.Position[2] = hit.Pos[2]
		c.OnGround = true
		return
	}
	c.SetMode(ModeFalling)
}
