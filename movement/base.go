package movement

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/skybreak-gg/stride/game"
)

// DefaultBase is the reference walk/fall/fly integrator. It is deliberately
// small; the interesting physics lives in the extended modes, which call back
// into this for floor finding and velocity shaping.
type DefaultBase struct {
	cfg *Config
}

// NewDefaultBase creates the reference integrator over the given tuning.
func NewDefaultBase(cfg *Config) *DefaultBase {
	return &DefaultBase{cfg: cfg}
}

// TickDefault advances one tick of walking, falling or flying.
func (b *DefaultBase) TickDefault(c *Component, dt float32) {
	switch c.mode {
	case ModeWalking:
		b.tickWalking(c, dt)
	case ModeFalling:
		b.tickFalling(c, dt)
	case ModeFlying:
		// Dash flight: hold the impulse velocity, slide along obstacles.
		c.move(dt)
	}
}

func (b *DefaultBase) tickWalking(c *Component, dt float32) {
	b.CalcVelocity(c, dt, b.cfg.Walking.GroundFriction, b.cfg.Walking.BrakingDecelerationWalking)
	c.Velocity[2] = 0
	c.move(dt)

	if hit, ok := b.FindFloor(c); ok {
		c.Position[2] = hit.Pos[2]
		c.OnGround = true
		return
	}
	if c.CanWalkOffLedges() {
		c.SetMode(ModeFalling)
	}
}

func (b *DefaultBase) tickFalling(c *Component, dt float32) {
	accel := game.Horizontal(c.Acceleration).Mul(b.cfg.Walking.AirControl)
	hv := game.Horizontal(c.Velocity).Add(accel.Mul(dt))
	hv = game.ClampLen(hv, b.cfg.Walking.MaxWalkSpeed)
	c.Velocity[0], c.Velocity[1] = hv[0], hv[1]
	c.Velocity[2] -= game.Gravity * b.cfg.Walking.GravityScale * dt

	falling := c.Velocity[2] <= 0
	hit, blocked := c.move(dt)
	if blocked && falling && game.AngleFromVerticalDeg(hit.Normal) <= b.cfg.Walking.WalkableFloorAngle {
		c.SetMode(ModeWalking)
	}
}

// CalcVelocity applies input acceleration or braking to horizontal velocity.
// Braking runs with no input, or whenever speed exceeds the mode's cap, so
// entry impulses bleed off instead of being clamped away. Acceleration can
// turn an over-cap velocity but never grow it.
func (b *DefaultBase) CalcVelocity(c *Component, dt, friction, brakingDecel float32) {
	accel := game.Horizontal(c.Acceleration)
	max := c.GetMaxSpeed()
	cur := game.Horizontal(c.Velocity)
	speed := cur.Len()
	zeroAccel := accel.Len() < 1e-4

	if zeroAccel || speed > max {
		drop := (friction*speed + brakingDecel) * dt
		newSpeed := speed - drop
		if newSpeed < 0 {
			newSpeed = 0
		}
		cur = game.SafeNormal(cur).Mul(newSpeed)
	} else {
		// friction turns velocity toward the input without losing speed
		dir := game.SafeNormal(accel)
		turn := friction * dt
		if turn > 1 {
			turn = 1
		}
		cur = cur.Sub(cur.Sub(dir.Mul(speed)).Mul(turn))
	}

	if !zeroAccel {
		limit := max
		if l := cur.Len(); l > limit {
			limit = l
		}
		cur = game.ClampLen(cur.Add(accel.Mul(dt)), limit)
	}
	c.Velocity[0], c.Velocity[1] = cur[0], cur[1]
}

// FindFloor sweeps down by the step height and reports a walkable floor. The
// returned hit's Pos is where the capsule center rests on that floor.
func (b *DefaultBase) FindFloor(c *Component) (Hit, bool) {
	end := c.Position.Sub(mgl32.Vec3{0, 0, b.cfg.Walking.MaxStepHeight + 10})
	hit, ok := c.geo.SweepCapsule(b.cfg.Capsule.Radius, b.cfg.Capsule.HalfHeight, c.Position, end, ChannelStatic)
	if !ok {
		return Hit{}, false
	}
	if game.AngleFromVerticalDeg(hit.Normal) > b.cfg.Walking.WalkableFloorAngle {
		return hit, false
	}
	return hit, true
}

// JumpVelocity is the vertical takeoff speed of a standard jump.
func (b *DefaultBase) JumpVelocity() float32 { return b.cfg.Walking.JumpVelocity }

// MaxSpeed covers the modes this integrator owns.
func (b *DefaultBase) MaxSpeed(c *Component, mode Mode) float32 {
	return b.cfg.Walking.MaxWalkSpeed
}

// BrakingDeceleration covers the modes this integrator owns.
func (b *DefaultBase) BrakingDeceleration(mode Mode) float32 {
	switch mode {
	case ModeWalking:
		return b.cfg.Walking.BrakingDecelerationWalking
	case ModeFalling:
		return b.cfg.Walking.BrakingDecelerationFalling
	}
	return 0
}
