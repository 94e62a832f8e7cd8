package prediction_test

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/skybreak-gg/stride/arena"
	"github.com/skybreak-gg/stride/movement"
	"github.com/skybreak-gg/stride/prediction"
	"github.com/skybreak-gg/stride/protocol"
	"github.com/skybreak-gg/stride/timer"
)

func testLogger() *logrus.Entry {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return logrus.NewEntry(log)
}

// loopback wires a predicted client against an authority over direct calls,
// with an optional tamper hook on the client's outgoing frames.
type loopback struct {
	client *prediction.Client
	auth   *prediction.Authority
	tamper func([]byte) []byte
}

func newLoopback(w *arena.World) *loopback {
	lb := &loopback{}

	authComp := movement.NewComponent(movement.DefaultConfig(), w, movement.NopClips{}, timer.New(), nil, testLogger(), true)
	authSched := timer.New()
	lb.auth = prediction.NewAuthority(authComp, authSched, func(frame []byte) {
		_ = lb.client.Receive(frame)
	}, testLogger())
	lb.auth.SetRateLimit(rate.Inf, 0)

	clientSched := timer.New()
	clientComp := movement.NewComponent(movement.DefaultConfig(), w, movement.NopClips{}, clientSched, nil, testLogger(), false)
	lb.client = prediction.NewClient(clientComp, clientSched, func(frame []byte) {
		if lb.tamper != nil {
			frame = lb.tamper(frame)
		}
		_ = lb.auth.Receive(frame)
	}, testLogger())

	return lb
}

// TestLoopbackStaysInSync drives a scripted session through walk, sprint,
// jump, crouch-to-prone, dash and slide. The authority replays every move
// bit-compatibly, so no correction should ever be issued.
func TestLoopbackStaysInSync(t *testing.T) {
	lb := newLoopback(arena.NewWorld())
	c := lb.client

	forward := mgl32.Vec3{2048, 0, 0}
	for tick := 0; tick < 600; tick++ {
		switch tick {
		case 0:
			c.Component().StartSprint()
		case 120:
			c.Component().Jump()
		case 200:
			c.Component().StopSprint()
			c.Component().StartCrouch()
		case 280:
			c.Component().StopCrouch()
		case 320:
			c.Component().StartDash()
		case 420:
			c.Component().StartSlide()
		case 500:
			c.Component().StopSlide()
		}
		accel := forward
		if tick >= 440 {
			accel = mgl32.Vec3{}
		}
		c.Tick(accel)
	}
	c.Flush()

	if got := lb.auth.Metrics.CorrectionCount; got != 0 {
		t.Fatalf("authority issued %d corrections, want 0", got)
	}
	if lb.auth.Component().Position != c.Component().Position {
		t.Errorf("positions diverged: auth %v, client %v",
			lb.auth.Component().Position, c.Component().Position)
	}
	if lb.auth.Component().Mode() != c.Component().Mode() {
		t.Errorf("modes diverged: auth %v, client %v",
			lb.auth.Component().Mode(), c.Component().Mode())
	}
	if lb.auth.Metrics.AckCount == 0 {
		t.Error("no acknowledgements issued")
	}
	if c.PendingMoves() > 4 {
		t.Errorf("pending buffer holding %d moves, acks not draining it", c.PendingMoves())
	}
	if c.Metrics.CombinedMoves == 0 {
		t.Error("steady input produced no combined moves")
	}
	if c.Metrics.BitsSaved != c.Metrics.CombinedMoves*protocol.MoveWireBits {
		t.Errorf("bits saved = %d, want %d per combined move",
			c.Metrics.BitsSaved, protocol.MoveWireBits)
	}
	if c.Metrics.MovesSent >= c.Metrics.TickCount/2 {
		t.Errorf("combining ineffective: %d moves for %d ticks",
			c.Metrics.MovesSent, c.Metrics.TickCount)
	}
}

// TestCorrectionRecovers corrupts one claimed location on the wire. The
// authority must reject it, and the client must snap and replay back into
// agreement.
func TestCorrectionRecovers(t *testing.T) {
	lb := newLoopback(arena.NewWorld())
	c := lb.client

	frameCount := 0
	lb.tamper = func(frame []byte) []byte {
		if protocol.FrameID(frame) != protocol.FrameIDMove {
			return frame
		}
		frameCount++
		if frameCount != 10 {
			return frame
		}
		moves, err := protocol.DecodeMoves(frame)
		if err != nil {
			t.Fatal(err)
		}
		moves[len(moves)-1].Location[0] += 50
		out, err := protocol.EncodeMoves(moves)
		if err != nil {
			t.Fatal(err)
		}
		return out
	}

	for tick := 0; tick < 300; tick++ {
		c.Tick(mgl32.Vec3{2048, 0, 0})
	}
	c.Flush()

	if lb.auth.Metrics.CorrectionCount != 1 {
		t.Fatalf("corrections = %d, want exactly 1", lb.auth.Metrics.CorrectionCount)
	}
	if c.Metrics.CorrectionCount != 1 {
		t.Fatalf("client saw %d corrections", c.Metrics.CorrectionCount)
	}
	if lb.auth.Component().Position != c.Component().Position {
		t.Errorf("positions did not reconverge: auth %v, client %v",
			lb.auth.Component().Position, c.Component().Position)
	}
}

func TestAuthorityRejectsStaleAndOversizedMoves(t *testing.T) {
	w := arena.NewWorld()
	comp := movement.NewComponent(movement.DefaultConfig(), w, movement.NopClips{}, timer.New(), nil, testLogger(), true)
	var sent [][]byte
	auth := prediction.NewAuthority(comp, timer.New(), func(f []byte) { sent = append(sent, f) }, testLogger())
	auth.SetRateLimit(rate.Inf, 0)

	mk := func(ts, delta float32) protocol.SavedMove {
		m := protocol.SavedMove{Timestamp: ts, Delta: delta, Mode: movement.ModeWalking}
		m.Location = comp.Position
		return m
	}

	frame, _ := protocol.EncodeMoves([]protocol.SavedMove{mk(1.0, 1.0 / 60)})
	if err := auth.Receive(frame); err != nil {
		t.Fatal(err)
	}
	if auth.Metrics.TickCount != 1 {
		t.Fatalf("tick count = %d", auth.Metrics.TickCount)
	}

	// same timestamp again: stale, dropped
	frame, _ = protocol.EncodeMoves([]protocol.SavedMove{mk(1.0, 1.0 / 60)})
	_ = auth.Receive(frame)
	if auth.Metrics.TickCount != 1 {
		t.Error("stale move was applied")
	}

	// delta past the combine cap: dropped
	frame, _ = protocol.EncodeMoves([]protocol.SavedMove{mk(2.0, 0.5)})
	_ = auth.Receive(frame)
	if auth.Metrics.TickCount != 1 {
		t.Error("oversized move was applied")
	}
}

func TestAuthorityRateLimiterDropsFlood(t *testing.T) {
	w := arena.NewWorld()
	comp := movement.NewComponent(movement.DefaultConfig(), w, movement.NopClips{}, timer.New(), nil, testLogger(), true)
	auth := prediction.NewAuthority(comp, timer.New(), func([]byte) {}, testLogger())
	auth.SetRateLimit(1, 10)

	ts := float32(0)
	for i := 0; i < 100; i++ {
		ts += 1.0 / 60
		m := protocol.SavedMove{Timestamp: ts, Delta: 1.0 / 60, Mode: movement.ModeWalking, Location: comp.Position}
		frame, _ := protocol.EncodeMoves([]protocol.SavedMove{m})
		_ = auth.Receive(frame)
	}

	if auth.Metrics.TickCount > 15 {
		t.Errorf("limiter let %d of 100 moves through", auth.Metrics.TickCount)
	}
}

func TestProxyFlagsDiffRecoversEvents(t *testing.T) {
	var flags prediction.ProxyFlags
	prev := flags

	flags.Flip(prediction.ProxyDash)
	flags.Flip(prediction.ProxyMantleTall)

	var events []prediction.ProxyEvent
	flags.Diff(prev, func(e prediction.ProxyEvent) { events = append(events, e) })
	if len(events) != 2 {
		t.Fatalf("diff produced %d events, want 2", len(events))
	}

	// a flip and its echo collapse to no event, matching two dashes seen in
	// one snapshot being indistinguishable from zero only when flags return
	// to the same value
	prev = flags
	flags.Flip(prediction.ProxyDash)
	flags.Flip(prediction.ProxyDash)
	events = nil
	flags.Diff(prev, func(e prediction.ProxyEvent) { events = append(events, e) })
	if len(events) != 0 {
		t.Errorf("double flip produced %d events", len(events))
	}
}

func TestProxyFlagsWatchComponent(t *testing.T) {
	w := arena.NewWorld()
	sched := timer.New()
	comp := movement.NewComponent(movement.DefaultConfig(), w, movement.NopClips{}, sched, nil, testLogger(), true)

	var flags prediction.ProxyFlags
	flags.WatchComponent(comp)

	comp.StartDash()
	sched.Advance(1.0 / 60)
	comp.Tick(1.0/60, mgl32.Vec3{})

	if !flags.Dash {
		t.Error("dash did not flip the proxy flag")
	}
}

func TestStateChecksum(t *testing.T) {
	w := arena.NewWorld()
	a := movement.NewComponent(movement.DefaultConfig(), w, movement.NopClips{}, timer.New(), nil, testLogger(), false)
	b := movement.NewComponent(movement.DefaultConfig(), w, movement.NopClips{}, timer.New(), nil, testLogger(), false)

	if prediction.StateChecksum(a) != prediction.StateChecksum(b) {
		t.Fatal("identical components hash differently")
	}
	a.Tick(1.0/60, mgl32.Vec3{2048, 0, 0})
	if prediction.StateChecksum(a) == prediction.StateChecksum(b) {
		t.Fatal("diverged components hash the same")
	}
}

func TestProneRequestRidesTheWire(t *testing.T) {
	lb := newLoopback(arena.NewWorld())
	c := lb.client

	c.Component().StartCrouch()
	for tick := 0; tick < 60; tick++ {
		c.Tick(mgl32.Vec3{})
	}
	c.Flush()

	if c.Component().Mode() != movement.ModeProne {
		t.Fatalf("client mode = %v, want prone", c.Component().Mode())
	}
	if lb.auth.Component().Mode() != movement.ModeProne {
		t.Fatalf("authority mode = %v, want prone", lb.auth.Component().Mode())
	}
	if lb.auth.Metrics.CorrectionCount != 0 {
		t.Errorf("prone entry caused %d corrections", lb.auth.Metrics.CorrectionCount)
	}
}
