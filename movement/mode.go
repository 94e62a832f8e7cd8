package movement

// Mode is the active locomotion mode. Exactly one mode is active at a time
// and transitions are explicit events, never implicit.
type Mode uint8

const (
	ModeNone Mode = iota
	ModeWalking
	ModeFalling
	ModeFlying
	ModeSlide
	ModeProne
	ModeWallRun
	ModeHang
	ModeClimb
	modeMax
)

// IsCustom reports whether the mode is one of the extended modes this
// package adds on top of the base integrator.
func (m Mode) IsCustom() bool {
	return m >= ModeSlide && m < modeMax
}

// Valid reports whether the mode is a known mode.
func (m Mode) Valid() bool {
	return m < modeMax
}

func (m Mode) String() string {
	switch m {
	case ModeNone:
		return "none"
	case ModeWalking:
		return "walking"
	case ModeFalling:
		return "falling"
	case ModeFlying:
		return "flying"
	case ModeSlide:
		return "slide"
	case ModeProne:
		return "prone"
	case ModeWallRun:
		return "wallrun"
	case ModeHang:
		return "hang"
	case ModeClimb:
		return "climb"
	}
	return "unknown"
}
