package protocol

import (
	"github.com/skybreak-gg/stride/movement"
	"github.com/skybreak-gg/stride/utils"
)

// Compressed move flags. One byte per move on the wire; bits 2, 3 and 7 are
// reserved for future inputs and must be zero.
const (
	FlagJump   uint8 = 1 << 0
	FlagCrouch uint8 = 1 << 1
	FlagSprint uint8 = 1 << 4
	FlagDash   uint8 = 1 << 5
	FlagSlide  uint8 = 1 << 6
)

// CompressFlags packs the wire-visible intent bits of a safe state.
func CompressFlags(s movement.SafeState) uint8 {
	var flags uint8
	if s.PressedJump {
		flags |= FlagJump
	}
	if s.WantsToCrouch {
		flags |= FlagCrouch
	}
	if s.WantsToSprint {
		flags |= FlagSprint
	}
	if s.WantsToDash {
		flags |= FlagDash
	}
	if s.WantsToSlide {
		flags |= FlagSlide
	}
	return flags
}

// DecompressFlags unpacks the wire bits into a safe state, touching only the
// fields the schema carries. Reserved bits are ignored.
func DecompressFlags(flags uint8, s *movement.SafeState) {
	s.PressedJump = utils.HasFlag(flags, FlagJump)
	s.WantsToCrouch = utils.HasFlag(flags, FlagCrouch)
	s.WantsToSprint = utils.HasFlag(flags, FlagSprint)
	s.WantsToDash = utils.HasFlag(flags, FlagDash)
	s.WantsToSlide = utils.HasFlag(flags, FlagSlide)
}
