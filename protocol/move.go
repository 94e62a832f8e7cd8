// Package protocol defines the saved-move record the prediction layer keeps
// and the compact wire frames that carry moves, acknowledgements and
// corrections between client and authority.
package protocol

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/skybreak-gg/stride/game"
	"github.com/skybreak-gg/stride/movement"
)

// MaxMoveDelta caps a combined move's duration at four ticks. The authority
// rejects anything longer.
const MaxMoveDelta float32 = 4 * game.TickDelta

// SavedMove is one simulated tick's worth of input plus the state claimed at
// its end. Intent is captured before the tick runs; Location and Mode are
// filled in after, so a replay that restores Safe and re-runs the tick must
// land exactly on Location.
type SavedMove struct {
	// Timestamp is the simulation time at the end of the move.
	Timestamp float32
	// Delta is the move's duration. Combined moves accumulate it.
	Delta float32

	Acceleration mgl32.Vec3
	Yaw          float32

	// Location is the claimed capsule center after the move.
	Location mgl32.Vec3
	// Mode is the claimed movement mode after the move.
	Mode movement.Mode

	// Safe is the full intent snapshot used for local replay.
	Safe movement.SafeState
	// Flags is the compressed wire form of Safe.
	Flags uint8
}

// Capture snapshots a move's intent just before the component ticks with the
// given input. Call Finish after the tick to record the claimed end state.
func Capture(c *movement.Component, dt float32, accel mgl32.Vec3) SavedMove {
	s := c.SafeState()
	return SavedMove{
		Timestamp:    c.Now() + dt,
		Delta:        dt,
		Acceleration: accel,
		Yaw:          c.Yaw(),
		Safe:         s,
		Flags:        CompressFlags(s),
	}
}

// Finish records the post-tick claimed state.
func (m *SavedMove) Finish(c *movement.Component) {
	m.Location = c.Position
	m.Mode = c.Mode()
}

// CanCombineWith reports whether next can fold into this move without
// changing the replayed outcome. Edge-triggered inputs, root motion and any
// intent difference force a separate move.
func (m SavedMove) CanCombineWith(next SavedMove, maxDelta float32) bool {
	if m.Safe != next.Safe {
		return false
	}
	if m.Safe.PressedJump || m.Safe.HadRootMotion || m.Safe.TransitionFinished {
		return false
	}
	if !game.Vec3ApproxEq(m.Acceleration, next.Acceleration) {
		return false
	}
	if !game.Float32ApproxEq(m.Yaw, next.Yaw) {
		return false
	}
	return m.Delta+next.Delta <= maxDelta
}

// MergeWith folds the next move into this one: duration accumulates, the end
// state is the later move's.
func (m *SavedMove) MergeWith(next SavedMove) {
	m.Delta += next.Delta
	m.Timestamp = next.Timestamp
	m.Location = next.Location
	m.Mode = next.Mode
}

// PrepMoveFor restores the component's intent for a local replay of this
// move: the full safe snapshot plus the captured facing.
func (m SavedMove) PrepMoveFor(c *movement.Component) {
	c.RestoreSafeState(m.Safe)
	c.SetYaw(m.Yaw)
}

// PrepRemoteMoveFor applies a received move's intent on the authority. Only
// the wire flags overwrite; authority-derived safe fields survive.
func (m SavedMove) PrepRemoteMoveFor(c *movement.Component) {
	s := c.SafeState()
	DecompressFlags(m.Flags, &s)
	c.RestoreSafeState(s)
	c.SetYaw(m.Yaw)
}

// Apply ticks the component through the move's duration in fixed sub-steps,
// so a combined move integrates exactly like the ticks it was folded from.
func (m SavedMove) Apply(c *movement.Component) {
	remaining := m.Delta
	for remaining > game.TickDelta+1e-6 {
		c.Tick(game.TickDelta, m.Acceleration)
		remaining -= game.TickDelta
	}
	if remaining > 0 {
		c.Tick(remaining, m.Acceleration)
	}
}
