package movement

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/skybreak-gg/stride/game"
)

// rightVector is the horizontal right of the facing direction.
func (c *Component) rightVector() mgl32.Vec3 { return c.forward.Cross(game.Up) }

// wallRunSideTrace looks for a runnable wall on one side of the capsule. The
// wall must be steeper than walkable ground.
func (c *Component) wallRunSideTrace(right bool) (Hit, bool) {
	dir := c.rightVector()
	if !right {
		dir = dir.Mul(-1)
	}
	end := c.Position.Add(dir.Mul(c.cfg.Capsule.Radius * 2))
	hit, ok := c.geo.LineTrace(c.Position, end, ChannelStatic)
	if !ok {
		return Hit{}, false
	}
	if game.AngleFromVerticalDeg(hit.Normal) <= c.cfg.Walking.WalkableFloorAngle {
		return Hit{}, false
	}
	return hit, true
}

// aboveWallRunHeight reports whether the capsule is clear of the ground by
// the wall run minimum height.
func (c *Component) aboveWallRunHeight() bool {
	down := c.Position.Sub(mgl32.Vec3{0, 0, c.cfg.Capsule.HalfHeight + c.cfg.WallRun.MinHeight})
	_, grounded := c.geo.LineTrace(c.Position, down, ChannelStatic)
	return !grounded
}

// TryWallRun attaches to a wall on either side while falling, given enough
// lateral speed, bounded vertical speed and enough height off the ground.
func (c *Component) TryWallRun() bool {
	if c.mode != ModeFalling {
		return false
	}
	if game.HorizontalLen(c.Velocity) < c.cfg.WallRun.MinSpeed {
		return false
	}
	if c.Velocity[2] < -c.cfg.WallRun.MaxVerticalSpeed || c.Velocity[2] > c.cfg.WallRun.MaxVerticalSpeed {
		return false
	}
	if !c.aboveWallRunHeight() {
		return false
	}

	for _, side := range [2]bool{true, false} {
		hit, ok := c.wallRunSideTrace(side)
		if !ok {
			continue
		}
		along := game.Horizontal(game.ProjectOnPlane(c.Velocity, hit.Normal))
		if along.Len() < c.cfg.WallRun.MinSpeed {
			continue
		}
		c.safe.WallRunIsRight = side
		if c.Velocity[2] < 0 {
			c.Velocity[2] = 0
		}
		c.SetMode(ModeWallRun)
		return true
	}
	return false
}

// physWallRun keeps velocity in the wall plane, applies curve-scaled gravity
// and a pull toward the wall. Losing the wall, steering away past the pull
// away angle, dropping below minimum speed or reaching the ground all end
// the run.
func (c *Component) physWallRun(dt float32, iterations int) {
	hit, ok := c.wallRunSideTrace(c.safe.WallRunIsRight)
	if !ok {
		c.SetMode(ModeFalling)
		c.TickPhysics(dt, iterations+1)
		return
	}

	// pull away when input strays more than PullAwayAngle off the wall
	// tangent, i.e. within its complement of the wall normal
	accel := game.Horizontal(c.Acceleration)
	if accel.Len() > 1e-4 && game.AngleBetweenDeg(accel, hit.Normal) < 90-c.cfg.WallRun.PullAwayAngle {
		c.SetMode(ModeFalling)
		c.TickPhysics(dt, iterations+1)
		return
	}

	c.Acceleration = game.ProjectOnPlane(c.Acceleration, hit.Normal)
	c.base.CalcVelocity(c, dt, 0, 0)
	c.Velocity = game.ProjectOnPlane(c.Velocity, hit.Normal)

	// gravity eases off the more the input runs along the wall
	scale := float32(1)
	tangent := game.SafeNormal(game.Horizontal(c.Velocity))
	if a := game.Horizontal(c.Acceleration); a.Len() > 1e-4 && tangent.Len() > 0.5 && c.cfg.WallRunGravityCurve != nil {
		scale = c.cfg.WallRunGravityCurve.Eval(game.AngleBetweenDeg(a, tangent))
	}
	c.Velocity[2] -= game.Gravity * scale * dt
	if c.Velocity[2] > c.cfg.WallRun.MaxVerticalSpeed {
		c.Velocity[2] = c.cfg.WallRun.MaxVerticalSpeed
	}

	if game.HorizontalLen(c.Velocity) < c.cfg.WallRun.MinSpeed || c.Velocity[2] < -c.cfg.WallRun.MaxVerticalSpeed {
		c.SetMode(ModeFalling)
		c.TickPhysics(dt, iterations+1)
		return
	}

	c.move(dt)

	// wall attraction keeps the capsule pinned through corners
	pull := hit.Normal.Mul(-c.cfg.WallRun.AttractionForce * dt)
	target := c.Position.Add(pull)
	if phit, blocked := c.geo.SweepCapsule(c.cfg.Capsule.Radius, c.cfg.Capsule.HalfHeight, c.Position, target, ChannelStatic); blocked {
		c.Position = phit.Pos
	} else {
		c.Position = target
	}

	if !c.aboveWallRunHeight() {
		c.SetMode(ModeFalling)
	}
}
