package protocol

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/skybreak-gg/stride/internal"
	"github.com/skybreak-gg/stride/movement"
	"github.com/skybreak-gg/stride/serror"
)

// Frame identifiers, first byte of every frame.
const (
	FrameIDMove uint8 = iota + 1
	FrameIDAck
	FrameIDCorrection
	FrameIDProneRequest
)

// moveWireSize is the encoded size of one move: flags, timestamp, delta,
// yaw, acceleration, location, mode.
const moveWireSize = 1 + 4 + 4 + 4 + 12 + 12 + 1

// MoveWireBits is the on-wire cost of one move in bits, for metrics.
const MoveWireBits = moveWireSize * 8

// FrameCorrection is the authority's rejection of a client move: the client
// snaps to this state and replays everything after Timestamp.
type FrameCorrection struct {
	Timestamp float32
	Location  mgl32.Vec3
	Velocity  mgl32.Vec3
	Mode      movement.Mode
}

// FrameID returns a frame's type byte, or 0 for an empty buffer.
func FrameID(data []byte) uint8 {
	if len(data) == 0 {
		return 0
	}
	return data[0]
}

func writeF32(buf *bytes.Buffer, v float32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], math.Float32bits(v))
	buf.Write(b[:])
}

func writeVec3(buf *bytes.Buffer, v mgl32.Vec3) {
	writeF32(buf, v[0])
	writeF32(buf, v[1])
	writeF32(buf, v[2])
}

func readF32(b []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b))
}

func readVec3(b []byte) mgl32.Vec3 {
	return mgl32.Vec3{readF32(b), readF32(b[4:]), readF32(b[8:])}
}

func finish(buf *bytes.Buffer) []byte {
	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	buf.Reset()
	internal.BufferPool.Put(buf)
	return out
}

// EncodeMoves packs up to 255 moves into a move frame.
func EncodeMoves(moves []SavedMove) ([]byte, error) {
	if len(moves) == 0 || len(moves) > 255 {
		return nil, serror.New("protocol: move frame needs 1-255 moves, got %d", len(moves))
	}
	buf := internal.BufferPool.Get().(*bytes.Buffer)
	buf.WriteByte(FrameIDMove)
	buf.WriteByte(byte(len(moves)))
	for _, m := range moves {
		buf.WriteByte(m.Flags)
		writeF32(buf, m.Timestamp)
		writeF32(buf, m.Delta)
		writeF32(buf, m.Yaw)
		writeVec3(buf, m.Acceleration)
		writeVec3(buf, m.Location)
		buf.WriteByte(byte(m.Mode))
	}
	return finish(buf), nil
}

// DecodeMoves unpacks a move frame. Each move's Safe is reconstructed from
// its wire flags; fields the wire does not carry stay zero.
func DecodeMoves(data []byte) ([]SavedMove, error) {
	if len(data) < 2 || data[0] != FrameIDMove {
		return nil, serror.New("protocol: not a move frame")
	}
	count := int(data[1])
	if len(data) != 2+count*moveWireSize {
		return nil, serror.New("protocol: move frame length %d, want %d", len(data), 2+count*moveWireSize)
	}
	moves := make([]SavedMove, count)
	off := 2
	for i := range moves {
		m := &moves[i]
		m.Flags = data[off]
		off++
		m.Timestamp = readF32(data[off:])
		off += 4
		m.Delta = readF32(data[off:])
		off += 4
		m.Yaw = readF32(data[off:])
		off += 4
		m.Acceleration = readVec3(data[off:])
		off += 12
		m.Location = readVec3(data[off:])
		off += 12
		m.Mode = movement.Mode(data[off])
		off++
		if !m.Mode.Valid() {
			return nil, serror.New("protocol: move %d has invalid mode %d", i, uint8(m.Mode))
		}
		DecompressFlags(m.Flags, &m.Safe)
	}
	return moves, nil
}

// EncodeAck packs an acknowledgement of every move up to a timestamp.
func EncodeAck(timestamp float32) []byte {
	buf := internal.BufferPool.Get().(*bytes.Buffer)
	buf.WriteByte(FrameIDAck)
	writeF32(buf, timestamp)
	return finish(buf)
}

// DecodeAck unpacks an acknowledgement frame.
func DecodeAck(data []byte) (float32, error) {
	if len(data) != 5 || data[0] != FrameIDAck {
		return 0, serror.New("protocol: not an ack frame")
	}
	return readF32(data[1:]), nil
}

// EncodeCorrection packs a correction frame.
func EncodeCorrection(c FrameCorrection) []byte {
	buf := internal.BufferPool.Get().(*bytes.Buffer)
	buf.WriteByte(FrameIDCorrection)
	writeF32(buf, c.Timestamp)
	writeVec3(buf, c.Location)
	writeVec3(buf, c.Velocity)
	buf.WriteByte(byte(c.Mode))
	return finish(buf)
}

// DecodeCorrection unpacks a correction frame.
func DecodeCorrection(data []byte) (FrameCorrection, error) {
	if len(data) != 1+4+12+12+1 || data[0] != FrameIDCorrection {
		return FrameCorrection{}, serror.New("protocol: not a correction frame")
	}
	c := FrameCorrection{
		Timestamp: readF32(data[1:]),
		Location:  readVec3(data[5:]),
		Velocity:  readVec3(data[17:]),
		Mode:      movement.Mode(data[29]),
	}
	if !c.Mode.Valid() {
		return FrameCorrection{}, serror.New("protocol: correction has invalid mode %d", data[29])
	}
	return c, nil
}

// EncodeProneRequest packs the reliable prone request sent when the crouch
// hold timer fires on the owning client.
func EncodeProneRequest(timestamp float32) []byte {
	buf := internal.BufferPool.Get().(*bytes.Buffer)
	buf.WriteByte(FrameIDProneRequest)
	writeF32(buf, timestamp)
	return finish(buf)
}

// DecodeProneRequest unpacks a prone request frame.
func DecodeProneRequest(data []byte) (float32, error) {
	if len(data) != 5 || data[0] != FrameIDProneRequest {
		return 0, serror.New("protocol: not a prone request frame")
	}
	return readF32(data[1:]), nil
}
