// Package movement implements the extended locomotion state machine: slide,
// prone, dash, wall run, hang, climb and the scripted mantle transition, on
// top of an injected base walk/fall integrator. The per-tick pipeline is
// deterministic so that a client's predicted move and the authority's replay
// of that same move produce bit-identical output.
package movement

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/sirupsen/logrus"

	"github.com/skybreak-gg/stride/assert"
	"github.com/skybreak-gg/stride/game"
)

const (
	// minTickTime is the smallest dt the pipeline will integrate.
	minTickTime = 1e-6
	// maxPhysicsIterations bounds recursive sub-stepping between integrators.
	maxPhysicsIterations = 8
	// neverDashed keeps the first dash off cooldown at simulation start.
	neverDashed = -1e9
)

// Component owns one character's locomotion state. It is single-threaded:
// the owning simulation ticks it, and network events must be queued to the
// tick boundary by the caller.
type Component struct {
	cfg    *Config
	log    *logrus.Entry
	geo    Geometry
	clips  ClipPlayer
	timers TimerService
	base   Base

	// authority marks the server-side instance, which uses the shorter dash
	// cooldown so borderline-timed client requests are not rejected.
	authority bool

	// Position is the capsule center.
	Position     mgl32.Vec3
	Velocity     mgl32.Vec3
	Acceleration mgl32.Vec3
	OnGround     bool

	yaw     float32
	forward mgl32.Vec3

	now  float32
	tick int64

	mode Mode
	safe SafeState

	// orientToMovement mirrors the presentation's rotation-follows-movement
	// switch; slide turns it off.
	orientToMovement bool

	dashStartTime  float32
	proneTimer     uint64
	dashRetryTimer uint64

	transition *Transition

	dashObservers   []func()
	mantleObservers []func(tall bool)
	proneObservers  []func()

	destroyed bool
}

// NewComponent creates a component at the origin in walking mode. A nil base
// installs the reference integrator.
func NewComponent(cfg *Config, geo Geometry, clips ClipPlayer, timers TimerService, base Base, log *logrus.Entry, authority bool) *Component {
	assert.IsTrue(cfg != nil, "movement: nil config")
	assert.IsTrue(geo != nil, "movement: nil geometry")
	assert.IsTrue(timers != nil, "movement: nil timer service")
	if clips == nil {
		clips = NopClips{}
	}
	c := &Component{
		cfg:              cfg,
		log:              log,
		geo:              geo,
		clips:            clips,
		timers:           timers,
		authority:        authority,
		mode:             ModeWalking,
		orientToMovement: true,
		forward:          mgl32.Vec3{1, 0, 0},
		dashStartTime:    neverDashed,
		OnGround:         true,
	}
	c.Position = mgl32.Vec3{0, 0, cfg.Capsule.HalfHeight}
	if base == nil {
		base = NewDefaultBase(cfg)
	}
	c.base = base
	return c
}

// Config returns the component's tuning.
func (c *Component) Config() *Config { return c.cfg }

// Mode returns the active locomotion mode.
func (c *Component) Mode() Mode { return c.mode }

// Now returns the simulation clock in seconds.
func (c *Component) Now() float32 { return c.now }

// TickCount returns the number of ticks executed.
func (c *Component) TickCount() int64 { return c.tick }

// Destroyed reports whether Destroy has run.
func (c *Component) Destroyed() bool { return c.destroyed }

// SafeState returns a copy of the replay-relevant state.
func (c *Component) SafeState() SafeState { return c.safe }

// RestoreSafeState replaces the replay-relevant state, as done just before
// replaying a saved move.
func (c *Component) RestoreSafeState(s SafeState) { c.safe = s }

// Yaw returns the facing yaw in degrees.
func (c *Component) Yaw() float32 { return c.yaw }

// SetYaw updates the facing yaw in degrees and the derived forward vector.
func (c *Component) SetYaw(deg float32) {
	c.yaw = deg
	rad := mgl32.DegToRad(deg)
	c.forward = mgl32.Vec3{math32.Cos(rad), math32.Sin(rad), 0}
}

// Forward returns the horizontal facing direction.
func (c *Component) Forward() mgl32.Vec3 { return c.forward }

// OrientsToMovement reports whether presentation rotation should follow the
// movement direction. Sliding turns this off.
func (c *Component) OrientsToMovement() bool { return c.orientToMovement }

// CapsuleRadius returns the collision capsule radius.
func (c *Component) CapsuleRadius() float32 { return c.cfg.Capsule.Radius }

// CapsuleHalfHeight returns the collision capsule half height.
func (c *Component) CapsuleHalfHeight() float32 { return c.cfg.Capsule.HalfHeight }

// OnDashStart registers an observer fired when a dash executes.
func (c *Component) OnDashStart(fn func()) { c.dashObservers = append(c.dashObservers, fn) }

// OnMantleStart registers an observer fired when a mantle transition begins.
func (c *Component) OnMantleStart(fn func(tall bool)) {
	c.mantleObservers = append(c.mantleObservers, fn)
}

// OnProneRequest registers an observer fired when the crouch-hold timer arms
// the prone intent; the prediction layer uses it to notify the authority.
func (c *Component) OnProneRequest(fn func()) { c.proneObservers = append(c.proneObservers, fn) }

// Tick advances the full per-tick pipeline: pre-movement mode checks, the
// active mode's physics, then post-movement bookkeeping. This is the one
// code path both prediction and authoritative replay run.
func (c *Component) Tick(dt float32, accel mgl32.Vec3) {
	if c.destroyed || dt < minTickTime {
		return
	}
	c.tick++
	c.now += dt
	c.Acceleration = accel

	c.UpdateBeforeMovement(dt)
	c.TickPhysics(dt, 0)
	c.UpdateAfterMovement(dt)
}

// UpdateBeforeMovement handles transitions into the extended movement modes.
// Guard failures fall through silently; no mode is force-entered.
func (c *Component) UpdateBeforeMovement(dt float32) {
	if c.mode == ModeWalking && c.safe.WantsToSlide && c.CanSlide() {
		c.SetMode(ModeSlide)
	}

	if c.safe.WantsToProne {
		if c.CanProne() {
			c.SetMode(ModeProne)
		}
		c.safe.WantsToProne = false
	}

	if c.safe.WantsToDash && c.CanDash() {
		c.performDash()
		c.safe.WantsToDash = false
	}

	if c.safe.PressedJump {
		if !c.TryMantle() {
			c.DoJump()
		}
		c.safe.PressedJump = false
	}

	// Airborne with climb intent held: try to grab a ledge, then a wall.
	if c.mode == ModeFalling && c.safe.WantsToCrouch && c.transition == nil {
		if !c.TryHang() {
			c.TryClimb()
		}
	}

	if c.mode == ModeFalling && c.transition == nil {
		c.TryWallRun()
	}
}

// TickPhysics runs the active mode's integrator for one tick. A root-motion
// transition in progress overrides velocity-based integration entirely.
func (c *Component) TickPhysics(dt float32, iterations int) {
	if c.destroyed || dt < minTickTime || iterations > maxPhysicsIterations {
		return
	}

	if c.transition != nil {
		c.advanceTransition(dt)
		return
	}

	switch c.mode {
	case ModeSlide:
		c.physSlide(dt, iterations)
	case ModeProne:
		c.physProne(dt, iterations)
	case ModeWallRun:
		c.physWallRun(dt, iterations)
	case ModeHang, ModeClimb:
		c.physClimb(dt, iterations)
	default:
		c.base.TickDefault(c, dt)
	}
}

// UpdateAfterMovement finalizes the tick: ends the dash flight window,
// consumes a finished transition and records crouch/root-motion history.
func (c *Component) UpdateAfterMovement(dt float32) {
	if c.mode == ModeFlying && c.now >= c.dashStartTime+c.cfg.Dash.Duration {
		c.SetMode(ModeFalling)
	}

	if c.safe.TransitionFinished {
		c.safe.TransitionFinished = false
		c.finishTransition()
	}

	c.safe.HadRootMotion = c.transition != nil
	c.safe.PrevWantsToCrouch = c.safe.WantsToCrouch
}

// SetMode performs an explicit mode transition, running the exit hook of the
// old mode and the enter hook of the new one.
func (c *Component) SetMode(mode Mode) {
	assert.IsTrue(mode.Valid(), "movement: invalid mode %d", uint8(mode))
	if c.destroyed || c.mode == mode {
		return
	}
	prev := c.mode
	c.ExitMode(prev)
	c.mode = mode
	c.EnterMode(mode, prev)
}

// EnterMode runs a mode's entry logic. prev is the mode being left.
func (c *Component) EnterMode(mode, prev Mode) {
	switch mode {
	case ModeSlide:
		c.enterSlide(prev)
	case ModeProne:
		c.enterProne(prev)
	case ModeWalking:
		c.Velocity[2] = 0
		c.OnGround = true
	case ModeFalling, ModeFlying:
		c.OnGround = false
	}
}

// ExitMode runs a mode's exit logic.
func (c *Component) ExitMode(mode Mode) {
	switch mode {
	case ModeSlide:
		c.exitSlide()
	case ModeProne:
		c.exitProne()
	}
}

// GetMaxSpeed returns the max speed for the current movement mode.
func (c *Component) GetMaxSpeed() float32 {
	switch c.mode {
	case ModeWalking:
		if c.IsCrouching() {
			return c.cfg.Walking.MaxCrouchSpeed
		}
		if c.safe.WantsToSprint {
			return c.cfg.Walking.MaxSprintSpeed
		}
		return c.cfg.Walking.MaxWalkSpeed
	case ModeSlide:
		return c.cfg.Slide.MaxSlideSpeed
	case ModeProne:
		return c.cfg.Prone.MaxProneSpeed
	case ModeWallRun:
		return c.cfg.WallRun.MaxSpeed
	case ModeHang:
		return 0
	case ModeClimb:
		return c.cfg.Climb.MaxClimbSpeed
	}
	return c.base.MaxSpeed(c, c.mode)
}

// GetMaxBrakingDeceleration returns the braking deceleration for the current
// movement mode.
func (c *Component) GetMaxBrakingDeceleration() float32 {
	switch c.mode {
	case ModeSlide:
		return c.cfg.Slide.BrakingDecelerationSlide
	case ModeProne:
		return c.cfg.Prone.BrakingDecelerationProne
	case ModeHang, ModeClimb:
		return c.cfg.Climb.BrakingDecelerationClimb
	case ModeWallRun:
		return 0
	}
	return c.base.BrakingDeceleration(c.mode)
}

// CanAttemptJump reports whether a jump input can do anything in the current
// mode. Wall run, hang and climb all permit their own jump-off variants.
func (c *Component) CanAttemptJump() bool {
	switch c.mode {
	case ModeWalking, ModeFalling, ModeWallRun, ModeHang, ModeClimb:
		return true
	}
	return false
}

// DoJump performs the jump appropriate to the current mode. Returns false if
// no jump happened.
func (c *Component) DoJump() bool {
	if !c.CanAttemptJump() {
		return false
	}

	switch c.mode {
	case ModeWallRun:
		if hit, ok := c.wallRunSideTrace(c.safe.WallRunIsRight); ok {
			c.Velocity = c.Velocity.Add(hit.Normal.Mul(c.cfg.WallRun.JumpOffForce))
		}
		c.Velocity[2] = c.base.JumpVelocity()
		c.SetMode(ModeFalling)
		return true
	case ModeHang, ModeClimb:
		if hit, ok := c.climbSurfaceTrace(); ok {
			c.Velocity = hit.Normal.Mul(c.cfg.Climb.WallJumpForce)
			c.Velocity[2] = c.base.JumpVelocity()
			c.clips.Play(c.cfg.Climb.WallJumpClip, 1)
			c.safe.WantsToCrouch = false
			c.SetMode(ModeFalling)
			return true
		}
		return false
	case ModeWalking:
		if !c.OnGround {
			return false
		}
		c.Velocity[2] = c.base.JumpVelocity()
		c.SetMode(ModeFalling)
		return true
	}
	return false
}

// IsMovementMode reports whether the given mode is active.
func (c *Component) IsMovementMode(m Mode) bool { return c.mode == m }

// IsMovingOnGround reports ground contact; slide and prone count as ground
// modes.
func (c *Component) IsMovingOnGround() bool {
	switch c.mode {
	case ModeWalking, ModeSlide, ModeProne:
		return c.OnGround
	}
	return false
}

// CanCrouchInCurrentState reports whether crouching is possible right now.
func (c *Component) CanCrouchInCurrentState() bool { return c.IsMovingOnGround() }

// CanWalkOffLedges is false while sliding with ledge avoidance enabled.
func (c *Component) CanWalkOffLedges() bool {
	if c.IsSliding() && !c.cfg.Slide.CanSlideOffLedges {
		return false
	}
	return true
}

// IsCrouching reports held crouch intent while on the ground.
func (c *Component) IsCrouching() bool { return c.safe.WantsToCrouch && c.IsMovingOnGround() }

func (c *Component) IsSliding() bool     { return c.mode == ModeSlide }
func (c *Component) IsProne() bool       { return c.mode == ModeProne }
func (c *Component) IsWallRunning() bool { return c.mode == ModeWallRun }
func (c *Component) IsHanging() bool     { return c.mode == ModeHang }
func (c *Component) IsClimbing() bool    { return c.mode == ModeClimb }

// WallRunningIsRight reports which side the wall is on during a wall run.
func (c *Component) WallRunningIsRight() bool { return c.safe.WallRunIsRight }

// ApplyCorrection snaps the component to an authoritative state. Enter and
// exit hooks do not run: the authority already ran them when it simulated,
// and entry impulses must not re-apply.
func (c *Component) ApplyCorrection(timestamp float32, location, velocity mgl32.Vec3, mode Mode) {
	if c.destroyed {
		return
	}
	c.CancelTransition()
	c.now = timestamp
	c.Position = location
	c.Velocity = velocity
	c.mode = mode
	switch mode {
	case ModeWalking, ModeSlide, ModeProne:
		c.OnGround = true
	default:
		c.OnGround = false
	}
}

// Destroy tears the component down: timers cancelled, transition cancelled,
// safe state cleared. The component ignores all calls afterwards.
func (c *Component) Destroy() {
	if c.destroyed {
		return
	}
	c.timers.Cancel(c.proneTimer)
	c.timers.Cancel(c.dashRetryTimer)
	c.CancelTransition()
	c.safe = SafeState{}
	c.mode = ModeNone
	c.destroyed = true
}

// move sweeps the capsule along Velocity*dt, sliding along blocking surfaces
// for up to three impact iterations. Returns the first blocking hit, if any.
func (c *Component) move(dt float32) (Hit, bool) {
	remaining := c.Velocity.Mul(dt)
	if remaining.Len() < 1e-6 {
		return Hit{}, false
	}
	var first Hit
	hitAny := false
	for i := 0; i < 3; i++ {
		target := c.Position.Add(remaining)
		hit, blocked := c.geo.SweepCapsule(c.cfg.Capsule.Radius, c.cfg.Capsule.HalfHeight, c.Position, target, ChannelStatic)
		if !blocked {
			c.Position = target
			return first, hitAny
		}
		if !hitAny {
			first, hitAny = hit, true
		}
		c.Position = hit.Pos
		leftover := target.Sub(hit.Pos)
		remaining = game.ProjectOnPlane(leftover, hit.Normal)
		c.Velocity = game.ProjectOnPlane(c.Velocity, hit.Normal)
		if remaining.Len() < 1e-6 {
			break
		}
	}
	return first, hitAny
}

func (c *Component) logf(format string, args ...interface{}) {
	if c.log != nil {
		c.log.Debugf(format, args...)
	}
}
