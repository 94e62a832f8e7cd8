// Package prediction implements the client and authority halves of the
// networked movement model: the client predicts locally and keeps saved
// moves until acknowledged, the authority replays received moves and either
// acknowledges the claimed state or corrects it.
package prediction

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/dustin/go-humanize"
	"github.com/zeebo/xxh3"

	"github.com/skybreak-gg/stride/movement"
)

// Metrics counts what the prediction pipeline did. Plain counters, sampled
// by whoever owns the endpoint; not safe for concurrent writers.
type Metrics struct {
	TickCount       uint64
	MovesSent       uint64
	CombinedMoves   uint64
	FramesSent      uint64
	TotalBitsSent   uint64
	// BitsSaved counts wire bits avoided by folding ticks into combined
	// moves.
	BitsSaved       uint64
	AckCount        uint64
	CorrectionCount uint64

	// AccumulatedError sums the positional error observed at each
	// correction, in centimeters.
	AccumulatedError float64
}

// String formats the counters for log output.
func (m *Metrics) String() string {
	return fmt.Sprintf(
		"ticks=%s moves=%s (combined %s) frames=%s sent=%s saved=%s acks=%s corrections=%s err=%.1fcm",
		humanize.Comma(int64(m.TickCount)),
		humanize.Comma(int64(m.MovesSent)),
		humanize.Comma(int64(m.CombinedMoves)),
		humanize.Comma(int64(m.FramesSent)),
		humanize.Bytes(m.TotalBitsSent/8),
		humanize.Bytes(m.BitsSaved/8),
		humanize.Comma(int64(m.AckCount)),
		humanize.Comma(int64(m.CorrectionCount)),
		m.AccumulatedError,
	)
}

// StateChecksum hashes a component's kinematic state. Matching checksums on
// client and authority after the same move stream is the determinism check.
func StateChecksum(c *movement.Component) uint64 {
	var b [29]byte
	off := 0
	for _, v := range [7]float32{
		c.Position[0], c.Position[1], c.Position[2],
		c.Velocity[0], c.Velocity[1], c.Velocity[2],
		c.Now(),
	} {
		binary.LittleEndian.PutUint32(b[off:], math.Float32bits(v))
		off += 4
	}
	b[off] = byte(c.Mode())
	return xxh3.Hash(b[:])
}
