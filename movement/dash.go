package movement

import "github.com/skybreak-gg/stride/game"

// dashCooldown is shorter on the authority so client requests timed right at
// the boundary survive clock skew instead of desyncing.
func (c *Component) dashCooldown() float32 {
	if c.authority {
		return c.cfg.Dash.AuthCooldownDuration
	}
	return c.cfg.Dash.CooldownDuration
}

// CanDash requires the cooldown to have elapsed and either standing walk or
// falling.
func (c *Component) CanDash() bool {
	if c.now < c.dashStartTime+c.dashCooldown() {
		return false
	}
	return (c.mode == ModeWalking && !c.IsCrouching()) || c.mode == ModeFalling
}

// DashStartTime returns the simulation time of the last dash, or a large
// negative value if none has happened.
func (c *Component) DashStartTime() float32 { return c.dashStartTime }

// performDash launches a flat impulse along the input direction (facing
// direction if there is no input) and enters flight for the dash duration.
func (c *Component) performDash() {
	c.dashStartTime = c.now

	dir := game.SafeNormal(game.Horizontal(c.Acceleration))
	if dir.Len() < 0.5 {
		dir = c.forward
	}

	c.SetMode(ModeFlying)
	c.Velocity = dir.Mul(c.cfg.Dash.Impulse)
	c.clips.Play(c.cfg.Dash.Clip, 1)

	for _, fn := range c.dashObservers {
		fn()
	}
}
