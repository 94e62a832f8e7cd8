package movement

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/skybreak-gg/stride/game"
)

// hangTransitionDuration is how long the scripted grab onto a ledge takes.
const hangTransitionDuration = 0.2

// climbSurfaceTrace looks forward for a wall within climb reach.
func (c *Component) climbSurfaceTrace() (Hit, bool) {
	end := c.Position.Add(c.forward.Mul(c.cfg.Climb.ReachDistance))
	return c.geo.LineTrace(c.Position, end, ChannelStatic)
}

// TryHang grabs a climbable wall while falling with climb intent held: a
// short root-motion transition pulls the capsule onto the wall face, then
// hang mode holds it there.
func (c *Component) TryHang() bool {
	if c.mode != ModeFalling || c.transition != nil {
		return false
	}
	hit, ok := c.climbSurfaceTrace()
	if !ok || !hit.Climbable {
		return false
	}

	// hang needs a ledge lip within arm's reach; a wall that continues past
	// it is a climb, not a hang
	probe := hit.Point.Sub(hit.Normal.Mul(5))
	reachZ := c.Position[2] + c.cfg.Capsule.HalfHeight + c.cfg.Mantle.ReachHeight
	top, hasTop := c.geo.LineTrace(
		mgl32.Vec3{probe[0], probe[1], reachZ},
		mgl32.Vec3{probe[0], probe[1], c.Position[2]},
		ChannelStatic,
	)
	if !hasTop || top.Point[2] >= reachZ-1 {
		return false
	}

	target := hit.Point.Add(hit.Normal.Mul(c.cfg.Capsule.Radius + 1))
	target[2] = c.Position[2]
	if err := c.BeginTransition("hang", target, hangTransitionDuration, c.cfg.Climb.TransitionHangClip, 1, ModeHang); err != nil {
		return false
	}
	c.Velocity = mgl32.Vec3{}
	return true
}

// TryClimb latches onto a climbable wall without the grab transition.
func (c *Component) TryClimb() bool {
	if c.mode != ModeFalling {
		return false
	}
	hit, ok := c.climbSurfaceTrace()
	if !ok || !hit.Climbable {
		return false
	}
	c.Velocity = mgl32.Vec3{}
	c.SetMode(ModeClimb)
	return true
}

// physClimb serves both hang and climb. Hang holds position; climb maps
// forward input to vertical movement along the wall. Releasing the intent or
// losing the wall drops to falling; topping out mantles.
func (c *Component) physClimb(dt float32, iterations int) {
	if !c.safe.WantsToCrouch {
		c.SetMode(ModeFalling)
		c.TickPhysics(dt, iterations+1)
		return
	}

	hit, ok := c.climbSurfaceTrace()
	if !ok {
		if !c.TryMantle() {
			c.SetMode(ModeFalling)
		}
		return
	}

	if c.mode == ModeHang {
		c.Velocity = mgl32.Vec3{}
		return
	}

	// forward input climbs up, backward input climbs down
	drive := c.Acceleration.Dot(c.forward)
	if math32.Abs(drive) < 1e-4 {
		drop := c.cfg.Climb.BrakingDecelerationClimb * dt
		if c.Velocity[2] > 0 {
			c.Velocity[2] = math32.Max(0, c.Velocity[2]-drop)
		} else {
			c.Velocity[2] = math32.Min(0, c.Velocity[2]+drop)
		}
	} else {
		c.Velocity[2] = game.ClampFloat(c.Velocity[2]+drive*dt, -c.cfg.Climb.MaxClimbSpeed, c.cfg.Climb.MaxClimbSpeed)
	}
	c.Velocity[0], c.Velocity[1] = 0, 0
	c.move(dt)

	// stay pinned to the wall face
	pin := hit.Point.Add(hit.Normal.Mul(c.cfg.Capsule.Radius + 1))
	c.Position[0], c.Position[1] = pin[0], pin[1]

	if c.Velocity[2] <= 0 {
		if floor, onFloor := c.base.FindFloor(c); onFloor {
			c.Position[2] = floor.Pos[2]
			c.SetMode(ModeWalking)
		}
	}
}
