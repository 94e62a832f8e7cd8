package movement

// SafeState is the per-character field set that must be identical in intent
// and value between client prediction and the server's authoritative replay.
// Any field that influences physics output across a tick boundary belongs
// here; presentation or debug state must not. The struct is plain data and
// is always copied, never aliased, between capture and replay.
type SafeState struct {
	// PressedJump is the edge-triggered jump input for this tick.
	PressedJump bool
	// WantsToCrouch is the held crouch intent. While airborne it doubles as
	// the climb/hang intent.
	WantsToCrouch bool

	WantsToSprint bool
	WantsToSlide  bool
	WantsToProne  bool
	WantsToDash   bool

	// HadRootMotion is true if a scripted root-motion transition drove the
	// character last tick.
	HadRootMotion bool
	// TransitionFinished is set when a root-motion transition completes and
	// is consumed by the post-movement hook.
	TransitionFinished bool

	// PrevWantsToCrouch caches last tick's crouch intent for edge detection.
	PrevWantsToCrouch bool

	// WallRunIsRight records which side the wall is on for the duration of a
	// wall run.
	WallRunIsRight bool
}
