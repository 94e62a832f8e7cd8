package prediction

import (
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/skybreak-gg/stride/movement"
	"github.com/skybreak-gg/stride/protocol"
	"github.com/skybreak-gg/stride/timer"
	"github.com/skybreak-gg/stride/utils"
)

// positionTolerance is how far a client's claimed location may deviate from
// the authoritative replay before a correction is issued, in centimeters.
const positionTolerance = 1.0

// moveRateLimit caps how many moves per second a client may submit. The
// burst allows catch-up after a network stall without opening the door to
// speed hacks.
const (
	moveRateLimit = 130
	moveRateBurst = 260
)

// Authority is the server half: it replays each received move through the
// same simulation the client ran, then acknowledges the claimed end state or
// corrects it.
type Authority struct {
	log   *logrus.Entry
	comp  *movement.Component
	sched *timer.Scheduler
	send  func(frame []byte)

	limiter       *rate.Limiter
	lastTimestamp float32

	// recent keeps the last few issued corrections for inspection.
	recent *utils.CircularQueue[protocol.FrameCorrection]

	Metrics Metrics
}

// NewAuthority wires the authoritative endpoint over a component built with
// the authority flag set.
func NewAuthority(comp *movement.Component, sched *timer.Scheduler, send func([]byte), log *logrus.Entry) *Authority {
	return &Authority{
		log:     log,
		comp:    comp,
		sched:   sched,
		send:    send,
		limiter: rate.NewLimiter(rate.Limit(moveRateLimit), moveRateBurst),
		recent:  utils.NewCircularQueue[protocol.FrameCorrection](16),
	}
}

// RecentCorrections returns the last issued corrections, oldest first.
func (a *Authority) RecentCorrections() []protocol.FrameCorrection {
	out := make([]protocol.FrameCorrection, 0, a.recent.Len())
	for corr := range a.recent.Iter() {
		out = append(out, corr)
	}
	return out
}

// Component returns the authoritative component.
func (a *Authority) Component() *movement.Component { return a.comp }

// SetRateLimit replaces the move intake limit. Tests and trusted local
// sessions can pass rate.Inf.
func (a *Authority) SetRateLimit(limit rate.Limit, burst int) {
	a.limiter = rate.NewLimiter(limit, burst)
}

// LastTimestamp returns the newest processed move timestamp.
func (a *Authority) LastTimestamp() float32 { return a.lastTimestamp }

// Receive handles a frame from the client.
func (a *Authority) Receive(data []byte) error {
	switch protocol.FrameID(data) {
	case protocol.FrameIDMove:
		moves, err := protocol.DecodeMoves(data)
		if err != nil {
			return err
		}
		a.handleMoves(moves)
		return nil
	case protocol.FrameIDProneRequest:
		if _, err := protocol.DecodeProneRequest(data); err != nil {
			return err
		}
		// The hold timer only runs on the owning client, so the request is
		// taken at its word; the prone entry guards still apply on replay.
		a.comp.ForceProne()
		return nil
	}
	return nil
}

// handleMoves replays a frame's moves in order. Stale, malformed or
// rate-limited moves are dropped; the first correction stops the frame since
// the client will replay everything after it anyway.
func (a *Authority) handleMoves(moves []protocol.SavedMove) {
	var acked bool
	var ackTS float32

	for _, m := range moves {
		if m.Timestamp <= a.lastTimestamp+tsEpsilon {
			continue
		}
		if m.Delta <= 0 || m.Delta > protocol.MaxMoveDelta+tsEpsilon {
			a.logDrop(m, "bad delta")
			continue
		}
		if !a.limiter.Allow() {
			a.logDrop(m, "rate limited")
			continue
		}

		a.sched.Advance(m.Delta)
		m.PrepRemoteMoveFor(a.comp)
		m.Apply(a.comp)
		a.lastTimestamp = m.Timestamp
		a.Metrics.TickCount++

		if a.accept(m) {
			// claimed location adopted within tolerance so sub-centimeter
			// float drift cannot accumulate into a correction
			a.comp.Position = m.Location
			acked, ackTS = true, m.Timestamp
			continue
		}

		a.Metrics.CorrectionCount++
		a.Metrics.AccumulatedError += float64(a.comp.Position.Sub(m.Location).Len())
		if a.log != nil {
			a.log.WithFields(logrus.Fields{
				"timestamp": m.Timestamp,
				"claimed":   m.Mode.String(),
				"actual":    a.comp.Mode().String(),
			}).Info("rejecting move")
		}
		corr := protocol.FrameCorrection{
			Timestamp: m.Timestamp,
			Location:  a.comp.Position,
			Velocity:  a.comp.Velocity,
			Mode:      a.comp.Mode(),
		}
		_ = a.recent.Append(corr)
		a.sendFrame(protocol.EncodeCorrection(corr))
		return
	}

	if acked {
		a.sendFrame(protocol.EncodeAck(ackTS))
		a.Metrics.AckCount++
	}
}

// accept compares the replayed state against the move's claim.
func (a *Authority) accept(m protocol.SavedMove) bool {
	if a.comp.Mode() != m.Mode {
		return false
	}
	return a.comp.Position.Sub(m.Location).Len() <= positionTolerance
}

func (a *Authority) sendFrame(frame []byte) {
	a.Metrics.FramesSent++
	a.Metrics.TotalBitsSent += uint64(len(frame)) * 8
	a.send(frame)
}

func (a *Authority) logDrop(m protocol.SavedMove, reason string) {
	if a.log != nil {
		a.log.WithFields(logrus.Fields{
			"timestamp": m.Timestamp,
			"delta":     m.Delta,
		}).Warn("dropping move: " + reason)
	}
}
