package game

import "github.com/go-gl/mathgl/mgl32"

// All distances are centimeters, all durations seconds, Z is up.
const (
	// Gravity is the default downward acceleration applied to airborne
	// characters, in cm/s^2.
	Gravity = 980.0

	// TicksPerSecond is the fixed simulation rate the wire timestamps are
	// quantised against.
	TicksPerSecond = 60

	// TickDelta is the duration of a single simulation tick.
	TickDelta = 1.0 / float32(TicksPerSecond)
)

// Up is the world up axis.
var Up = mgl32.Vec3{0, 0, 1}

// Down is the world down axis.
var Down = mgl32.Vec3{0, 0, -1}
