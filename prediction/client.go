package prediction

import (
	"github.com/elliotchance/orderedmap/v2"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/sirupsen/logrus"

	"github.com/skybreak-gg/stride/game"
	"github.com/skybreak-gg/stride/movement"
	"github.com/skybreak-gg/stride/protocol"
	"github.com/skybreak-gg/stride/timer"
)

// tsEpsilon absorbs float drift when comparing move timestamps.
const tsEpsilon = 1e-4

// Client runs the owning player's predicted simulation. Each tick captures a
// saved move, runs it locally, and folds it into the outgoing move when the
// intent allows; sent moves wait in the pending buffer until acknowledged or
// replayed after a correction.
type Client struct {
	log   *logrus.Entry
	comp  *movement.Component
	sched *timer.Scheduler
	send  func(frame []byte)

	// pending holds sent, unacknowledged moves keyed and ordered by their
	// end timestamp.
	pending *orderedmap.OrderedMap[float32, protocol.SavedMove]

	// open is the move still absorbing ticks; it has not been sent.
	open    *protocol.SavedMove
	Metrics Metrics
}

// NewClient wires a predicted client over a component. send carries encoded
// frames to the authority; the crouch-hold prone request rides it too.
func NewClient(comp *movement.Component, sched *timer.Scheduler, send func([]byte), log *logrus.Entry) *Client {
	cl := &Client{
		log:     log,
		comp:    comp,
		sched:   sched,
		send:    send,
		pending: orderedmap.NewOrderedMap[float32, protocol.SavedMove](),
	}
	// moves buffered before the request must reach the authority first, or
	// its prone intent would be consumed ticks earlier than ours
	comp.OnProneRequest(func() {
		cl.Flush()
		cl.send(protocol.EncodeProneRequest(cl.comp.Now()))
	})
	return cl
}

// Component returns the predicted component.
func (cl *Client) Component() *movement.Component { return cl.comp }

// PendingMoves returns the number of sent, unacknowledged moves.
func (cl *Client) PendingMoves() int { return cl.pending.Len() }

// Tick advances one fixed simulation tick with the given input acceleration.
// Timers fire first so their intent lands in this tick's captured move.
func (cl *Client) Tick(accel mgl32.Vec3) {
	dt := float32(game.TickDelta)
	cl.sched.Advance(dt)

	m := protocol.Capture(cl.comp, dt, accel)
	cl.comp.Tick(dt, accel)
	m.Finish(cl.comp)
	cl.Metrics.TickCount++

	cl.record(m)
}

// record folds the move into the open move when possible, otherwise flushes.
// Edge-triggered intent and full moves flush immediately so the authority
// sees them without holdback latency.
func (cl *Client) record(m protocol.SavedMove) {
	if cl.open != nil && cl.open.CanCombineWith(m, protocol.MaxMoveDelta) {
		cl.open.MergeWith(m)
		cl.Metrics.CombinedMoves++
		cl.Metrics.BitsSaved += protocol.MoveWireBits
	} else {
		cl.Flush()
		copied := m
		cl.open = &copied
	}

	urgent := cl.open.Safe.PressedJump || cl.open.Safe.HadRootMotion || cl.open.Safe.TransitionFinished
	if urgent || cl.open.Delta+game.TickDelta > protocol.MaxMoveDelta {
		cl.Flush()
	}
}

// Flush sends the open move, if any, and parks it in the pending buffer.
func (cl *Client) Flush() {
	if cl.open == nil {
		return
	}
	m := *cl.open
	cl.open = nil
	cl.pending.Set(m.Timestamp, m)

	frame, err := protocol.EncodeMoves([]protocol.SavedMove{m})
	if err != nil {
		cl.log.WithError(err).Error("encoding move frame")
		return
	}
	cl.Metrics.MovesSent++
	cl.Metrics.FramesSent++
	cl.Metrics.TotalBitsSent += uint64(len(frame)) * 8
	cl.send(frame)
}

// Receive handles a frame from the authority.
func (cl *Client) Receive(data []byte) error {
	switch protocol.FrameID(data) {
	case protocol.FrameIDAck:
		ts, err := protocol.DecodeAck(data)
		if err != nil {
			return err
		}
		cl.handleAck(ts)
		return nil
	case protocol.FrameIDCorrection:
		corr, err := protocol.DecodeCorrection(data)
		if err != nil {
			return err
		}
		cl.handleCorrection(corr)
		return nil
	}
	return nil
}

// handleAck discards every pending move up to the acknowledged timestamp.
func (cl *Client) handleAck(ts float32) {
	cl.Metrics.AckCount++
	for el := cl.pending.Front(); el != nil; {
		next := el.Next()
		if el.Value.Timestamp <= ts+tsEpsilon {
			cl.pending.Delete(el.Key)
		} else {
			break
		}
		el = next
	}
}

// handleCorrection snaps to the authoritative state and replays every
// pending move after it, then the open move. Replay restores each move's
// captured intent before re-running it through the same tick pipeline.
func (cl *Client) handleCorrection(corr protocol.FrameCorrection) {
	cl.Metrics.CorrectionCount++
	cl.Metrics.AccumulatedError += float64(cl.comp.Position.Sub(corr.Location).Len())
	if cl.log != nil {
		cl.log.WithFields(logrus.Fields{
			"timestamp": corr.Timestamp,
			"mode":      corr.Mode.String(),
		}).Debug("applying correction")
	}

	cl.comp.ApplyCorrection(corr.Timestamp, corr.Location, corr.Velocity, corr.Mode)

	for el := cl.pending.Front(); el != nil; {
		next := el.Next()
		if el.Value.Timestamp <= corr.Timestamp+tsEpsilon {
			cl.pending.Delete(el.Key)
			el = next
			continue
		}
		m := el.Value
		m.PrepMoveFor(cl.comp)
		m.Apply(cl.comp)
		m.Finish(cl.comp)
		cl.pending.Set(el.Key, m)
		el = next
	}
	if cl.open != nil {
		cl.open.PrepMoveFor(cl.comp)
		cl.open.Apply(cl.comp)
		cl.open.Finish(cl.comp)
	}
}
