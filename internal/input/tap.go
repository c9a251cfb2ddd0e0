package input

// Tap is the OS-facing side of the input subsystem: the raw capabilities
// Subsystem needs from whichever ingress mechanism is backing it (a real
// CGEventTap + IOHID stream on darwin, or a synthetic feed in tests). It
// mirrors the contract used by the teacher's MockTerminal for the rendering
// side of the framework — a narrow, fully-mockable seam around the OS.
type Tap interface {
	// IsKeyDown/IsModifierDown read live OS key-state, used by the Semantic
	// Reader to disambiguate text-selection deltas.
	IsKeyDown(code KeyCode) bool
	IsModifierDown(mod Modifier) bool

	// LockState returns the OS's current lock-toggle (CapsLock) state.
	LockState() bool
	// SetLockState forces the OS lock-toggle state, used both to cancel out
	// a single tap's spurious toggle and to commit a deliberate double-tap
	// toggle.
	SetLockState(on bool)

	// SynthesizeLockKeyEvent posts an equivalent key event so other OS
	// consumers observe a deliberate double-tap toggle.
	SynthesizeLockKeyEvent()

	// ReEnable re-arms the keyboard tap after the OS disables it
	// (kCGEventTapDisabledByTimeout or ...ByUserInput).
	ReEnable()
}
