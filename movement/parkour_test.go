package movement_test

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/skybreak-gg/stride/arena"
	"github.com/skybreak-gg/stride/game"
	"github.com/skybreak-gg/stride/movement"
)

// wallRunWorld has a long wall on the character's right when facing +X.
func wallRunWorld() *arena.World {
	w := arena.NewWorld()
	w.AddBox(arena.Box{Min: mgl32.Vec3{-2000, -70, 0}, Max: mgl32.Vec3{2000, -50, 1000}})
	return w
}

func startFalling(c *movement.Component, pos, vel mgl32.Vec3) {
	c.Position = pos
	c.SetMode(movement.ModeFalling)
	c.Velocity = vel
}

func TestWallRunAttachAndRide(t *testing.T) {
	c, s, _ := newTestComponent(wallRunWorld(), false)
	startFalling(c, mgl32.Vec3{0, 0, 300}, mgl32.Vec3{500, 0, 0})

	run(c, s, 1, mgl32.Vec3{2000, 0, 0})
	if c.Mode() != movement.ModeWallRun {
		t.Fatalf("mode = %v, want wallrun", c.Mode())
	}
	if !c.WallRunningIsRight() {
		t.Error("wall is on the right")
	}

	run(c, s, 29, mgl32.Vec3{2000, 0, 0})
	if c.Mode() != movement.ModeWallRun {
		t.Fatalf("mode = %v, want sustained wallrun", c.Mode())
	}
	if c.Velocity[0] <= 500 {
		t.Errorf("vx = %v, want gaining along the wall", c.Velocity[0])
	}
	// input along the wall eases gravity, so the drop stays shallow
	if c.Velocity[2] < -200 {
		t.Errorf("vz = %v, fell too fast for a wall run", c.Velocity[2])
	}
}

func TestWallRunNeedsSpeed(t *testing.T) {
	c, s, _ := newTestComponent(wallRunWorld(), false)
	startFalling(c, mgl32.Vec3{0, 0, 300}, mgl32.Vec3{100, 0, 0})

	run(c, s, 1, mgl32.Vec3{})
	if c.Mode() == movement.ModeWallRun {
		t.Fatal("attached below minimum wall run speed")
	}
}

func TestWallRunPullAwayDetaches(t *testing.T) {
	c, s, _ := newTestComponent(wallRunWorld(), false)
	startFalling(c, mgl32.Vec3{0, 0, 300}, mgl32.Vec3{500, 0, 0})
	run(c, s, 5, mgl32.Vec3{2000, 0, 0})
	if c.Mode() != movement.ModeWallRun {
		t.Fatalf("mode = %v, want wallrun", c.Mode())
	}

	// 45 degrees off the wall tangent is well inside the 75 degree allowance
	run(c, s, 1, mgl32.Vec3{2000, 2000, 0})
	if c.Mode() != movement.ModeWallRun {
		t.Fatalf("mode = %v, oblique input inside the allowance ended the run", c.Mode())
	}

	// steer straight away from the wall
	run(c, s, 1, mgl32.Vec3{0, 2000, 0})
	if c.Mode() != movement.ModeFalling {
		t.Errorf("mode = %v, want falling after pulling away", c.Mode())
	}
}

func TestWallRunGravityWithoutInputEndsIt(t *testing.T) {
	c, s, _ := newTestComponent(wallRunWorld(), false)
	startFalling(c, mgl32.Vec3{0, 0, 300}, mgl32.Vec3{500, 0, 0})
	run(c, s, 1, mgl32.Vec3{2000, 0, 0})

	// no input: full gravity, vertical speed blows the band within a second
	run(c, s, 60, mgl32.Vec3{})
	if c.Mode() == movement.ModeWallRun {
		t.Error("wall run survived without input")
	}
}

func TestWallRunJumpOff(t *testing.T) {
	c, s, _ := newTestComponent(wallRunWorld(), false)
	startFalling(c, mgl32.Vec3{0, 0, 300}, mgl32.Vec3{500, 0, 0})
	run(c, s, 10, mgl32.Vec3{2000, 0, 0})
	if c.Mode() != movement.ModeWallRun {
		t.Fatalf("mode = %v, want wallrun", c.Mode())
	}

	c.Jump()
	run(c, s, 1, mgl32.Vec3{})
	if c.Mode() != movement.ModeFalling {
		t.Fatalf("mode = %v, want falling after jump off", c.Mode())
	}
	if c.Velocity[1] < 250 {
		t.Errorf("vy = %v, want push away from the wall", c.Velocity[1])
	}
	if c.Velocity[2] < 400 {
		t.Errorf("vz = %v, want jump takeoff", c.Velocity[2])
	}
}

// hangWorld has a climbable block whose top edge is within arm's reach of a
// character falling at z=200.
func hangWorld() *arena.World {
	w := arena.NewWorld()
	w.AddBox(arena.Box{Min: mgl32.Vec3{100, -500, 0}, Max: mgl32.Vec3{200, 500, 250}, Climbable: true})
	return w
}

// climbWorld has a climbable wall too tall to hang from.
func climbWorld() *arena.World {
	w := arena.NewWorld()
	w.AddBox(arena.Box{Min: mgl32.Vec3{100, -500, 0}, Max: mgl32.Vec3{200, 500, 400}, Climbable: true})
	return w
}

func TestHangGrabsLedge(t *testing.T) {
	c, s, clips := newTestComponent(hangWorld(), false)
	startFalling(c, mgl32.Vec3{0, 0, 200}, mgl32.Vec3{})
	c.StartClimb()

	run(c, s, 1, mgl32.Vec3{})
	if !c.InTransition() || c.TransitionName() != "hang" {
		t.Fatalf("expected hang transition, in %q", c.TransitionName())
	}

	run(c, s, 14, mgl32.Vec3{})
	if c.Mode() != movement.ModeHang {
		t.Fatalf("mode = %v, want hang", c.Mode())
	}
	if !clips.has("hang_transition") {
		t.Error("hang transition clip not played")
	}
	// parked on the wall face, a capsule radius off it
	if c.Position[0] < 60 || c.Position[0] > 70 {
		t.Errorf("hang x = %v, want ~65", c.Position[0])
	}
	if c.Velocity.Len() > 1 {
		t.Errorf("hang velocity = %v, want zero", c.Velocity)
	}
}

func TestHangReleaseDrops(t *testing.T) {
	c, s, _ := newTestComponent(hangWorld(), false)
	startFalling(c, mgl32.Vec3{0, 0, 200}, mgl32.Vec3{})
	c.StartClimb()
	run(c, s, 15, mgl32.Vec3{})
	if c.Mode() != movement.ModeHang {
		t.Fatalf("mode = %v, want hang", c.Mode())
	}

	c.StopClimb()
	run(c, s, 1, mgl32.Vec3{})
	if c.Mode() != movement.ModeFalling {
		t.Errorf("mode = %v, want falling after release", c.Mode())
	}
}

func TestHangJumpMantlesLedge(t *testing.T) {
	c, s, clips := newTestComponent(hangWorld(), false)
	startFalling(c, mgl32.Vec3{0, 0, 200}, mgl32.Vec3{})
	c.StartClimb()
	run(c, s, 15, mgl32.Vec3{})

	c.Jump()
	run(c, s, 1, mgl32.Vec3{})
	if !c.InTransition() || c.TransitionName() != "mantle" {
		t.Fatalf("expected mantle transition, in %q", c.TransitionName())
	}

	run(c, s, 20, mgl32.Vec3{})
	if c.Mode() != movement.ModeWalking {
		t.Fatalf("mode = %v, want walking on the ledge", c.Mode())
	}
	if c.Position[2] < 330 {
		t.Errorf("z = %v, want on top of the block", c.Position[2])
	}
	if !clips.has("mantle_short") {
		t.Error("mantle clip not played")
	}
}

func TestClimbTallWallToMantle(t *testing.T) {
	c, s, clips := newTestComponent(climbWorld(), false)
	startFalling(c, mgl32.Vec3{0, 0, 200}, mgl32.Vec3{})
	c.StartClimb()

	run(c, s, 1, mgl32.Vec3{})
	if c.Mode() != movement.ModeClimb {
		t.Fatalf("mode = %v, want climb on a tall wall", c.Mode())
	}

	// hold forward to climb; topping out mantles onto the roof
	run(c, s, 100, mgl32.Vec3{500, 0, 0})
	if c.Mode() != movement.ModeWalking {
		t.Fatalf("mode = %v, want walking on the roof", c.Mode())
	}
	if c.Position[2] < 480 {
		t.Errorf("z = %v, want on the roof at ~488", c.Position[2])
	}
	if !clips.has("mantle_short") {
		t.Error("top-out mantle clip not played")
	}
}

func TestClimbWallJump(t *testing.T) {
	c, s, clips := newTestComponent(climbWorld(), false)
	startFalling(c, mgl32.Vec3{0, 0, 200}, mgl32.Vec3{})
	c.StartClimb()
	run(c, s, 2, mgl32.Vec3{})
	if c.Mode() != movement.ModeClimb {
		t.Fatalf("mode = %v, want climb", c.Mode())
	}

	c.Jump()
	run(c, s, 1, mgl32.Vec3{})
	if c.Mode() != movement.ModeFalling {
		t.Fatalf("mode = %v, want falling after wall jump", c.Mode())
	}
	if c.Velocity[0] > -300 {
		t.Errorf("vx = %v, want pushed off the wall", c.Velocity[0])
	}
	if c.Velocity[2] < 400 {
		t.Errorf("vz = %v, want takeoff speed", c.Velocity[2])
	}
	if !clips.has("wall_jump") {
		t.Error("wall jump clip not played")
	}
	if c.SafeState().WantsToCrouch {
		t.Error("climb intent should release on wall jump")
	}
}

func TestMantleFromWalkShortLedge(t *testing.T) {
	w := arena.NewWorld()
	w.AddBox(arena.Box{Min: mgl32.Vec3{150, -500, 0}, Max: mgl32.Vec3{400, 500, 120}})
	c, s, clips := newTestComponent(w, false)

	var tallSeen *bool
	c.OnMantleStart(func(tall bool) { tallSeen = &tall })

	c.Jump()
	run(c, s, 1, mgl32.Vec3{500, 0, 0})
	if !c.InTransition() {
		t.Fatal("jump at the ledge should mantle, not jump")
	}
	if !c.SafeState().HadRootMotion {
		t.Error("root motion flag not set during transition")
	}
	if tallSeen == nil || *tallSeen {
		t.Error("expected a short mantle event")
	}
	if !clips.has("mantle_short_transition") {
		t.Error("transition clip not played")
	}

	run(c, s, 20, mgl32.Vec3{})
	if c.Mode() != movement.ModeWalking {
		t.Fatalf("mode = %v, want walking on the ledge", c.Mode())
	}
	if c.Position[2] < 200 {
		t.Errorf("z = %v, want on top of the 120cm ledge", c.Position[2])
	}
	if !clips.has("mantle_short") {
		t.Error("mantle clip not queued after the transition")
	}
}

func TestMantleTallLedgePicksTallClips(t *testing.T) {
	w := arena.NewWorld()
	w.AddBox(arena.Box{Min: mgl32.Vec3{150, -500, 0}, Max: mgl32.Vec3{400, 500, 200}})
	c, s, clips := newTestComponent(w, false)

	c.Jump()
	run(c, s, 21, mgl32.Vec3{500, 0, 0})
	if c.Mode() != movement.ModeWalking {
		t.Fatalf("mode = %v, want walking after tall mantle", c.Mode())
	}
	if !clips.has("mantle_tall_transition") || !clips.has("mantle_tall") {
		t.Errorf("tall mantle clips missing: %v", clips.played)
	}
}

func TestMantleRejectsTooHighLedge(t *testing.T) {
	w := arena.NewWorld()
	w.AddBox(arena.Box{Min: mgl32.Vec3{150, -500, 0}, Max: mgl32.Vec3{400, 500, 300}})
	c, s, _ := newTestComponent(w, false)

	c.Jump()
	run(c, s, 1, mgl32.Vec3{500, 0, 0})
	if c.InTransition() {
		t.Fatal("mantled a ledge above reach")
	}
	if c.Mode() != movement.ModeFalling {
		t.Errorf("mode = %v, want a plain jump instead", c.Mode())
	}
}

func TestTransitionsAreExclusive(t *testing.T) {
	c, _, _ := newTestComponent(arena.NewWorld(), false)
	if err := c.BeginTransition("a", mgl32.Vec3{0, 0, 200}, 0.25, "", 1, movement.ModeNone); err != nil {
		t.Fatal(err)
	}
	if err := c.BeginTransition("b", mgl32.Vec3{0, 0, 300}, 0.25, "", 1, movement.ModeNone); err == nil {
		t.Fatal("second transition accepted while one is active")
	}
}

func TestSlideSlopeGravityExceedsCap(t *testing.T) {
	// 30 degree ramp modeled as a far-off hit normal is hard with boxes, so
	// approximate: sliding into the level's flat floor keeps the configured
	// cap, which documents that the cap only binds through shaping.
	c, s, _ := newTestComponent(arena.NewWorld(), false)
	run(c, s, 90, mgl32.Vec3{2048, 0, 0})
	c.StartSlide()
	run(c, s, 1, mgl32.Vec3{})
	if c.Mode() != movement.ModeSlide {
		t.Fatalf("mode = %v, want slide", c.Mode())
	}
	if speed := game.HorizontalLen(c.Velocity); speed <= 400 {
		t.Errorf("speed = %v, entry impulse should exceed the 400 cap", speed)
	}
}
