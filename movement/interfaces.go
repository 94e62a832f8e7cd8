package movement

import "github.com/go-gl/mathgl/mgl32"

// Channel selects which geometry a query collides against.
type Channel uint8

const (
	// ChannelStatic collides with world geometry.
	ChannelStatic Channel = iota
	// ChannelPawn collides with other character capsules.
	ChannelPawn
)

// Hit describes the first blocking surface found by a geometry query.
type Hit struct {
	// Pos is the position of the swept shape's center at the time of impact.
	// For line traces it equals Point.
	Pos mgl32.Vec3
	// Point is the impact point on the surface.
	Point mgl32.Vec3
	// Normal is the surface normal at the impact point.
	Normal mgl32.Vec3
	// Frac is the fraction [0,1] along the sweep at which the hit occurred.
	Frac float32
	// Climbable marks surfaces tagged by the level as climb/hang targets.
	Climbable bool
}

// Geometry is the collision query capability the simulation runs against.
// Implementations must be deterministic: identical queries return identical
// hits, or prediction and authority will diverge.
type Geometry interface {
	// SweepCapsule sweeps a capsule of the given radius and half height from
	// start to end (capsule center positions) and reports the first blocking
	// hit.
	SweepCapsule(radius, halfHeight float32, start, end mgl32.Vec3, channel Channel) (Hit, bool)
	// LineTrace casts a ray from start to end and reports the first hit.
	LineTrace(start, end mgl32.Vec3, channel Channel) (Hit, bool)
}

// ClipHandle identifies a playing animation clip.
type ClipHandle uint64

// ClipPlayer plays animation clips. Playback is presentation only and must
// never feed back into simulation state; completion callbacks exist for
// presentation chaining (proxy montages), not for physics timing.
type ClipPlayer interface {
	Play(clip string, speed float32) ClipHandle
	OnCompleted(h ClipHandle, fn func())
}

// NopClips is a ClipPlayer that discards playback. Useful on the authority
// and in tests.
type NopClips struct{}

func (NopClips) Play(string, float32) ClipHandle { return 0 }
func (NopClips) OnCompleted(ClipHandle, func())  {}

// TimerService schedules deferred callbacks on the simulation clock. The
// core only registers and cancels; the owner advances the scheduler.
type TimerService interface {
	Schedule(delay float32, fn func()) uint64
	Cancel(id uint64)
}

// Base is the default locomotion integrator this package extends. It owns
// walking, falling and flying physics, floor finding and velocity shaping;
// the extended modes call back into it for those pieces.
type Base interface {
	// TickDefault advances one tick of default locomotion for the current
	// mode (walking, falling or flying).
	TickDefault(c *Component, dt float32)
	// CalcVelocity applies input acceleration, friction and braking to the
	// component's horizontal velocity.
	CalcVelocity(c *Component, dt, friction, brakingDecel float32)
	// FindFloor looks for a walkable floor beneath the capsule.
	FindFloor(c *Component) (Hit, bool)
	// JumpVelocity is the vertical takeoff speed of a standard jump.
	JumpVelocity() float32
	// MaxSpeed returns the default max speed for modes this integrator owns.
	MaxSpeed(c *Component, mode Mode) float32
	// BrakingDeceleration returns the default braking for modes this
	// integrator owns.
	BrakingDeceleration(mode Mode) float32
}
