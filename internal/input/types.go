// Package input implements the two-stream input subsystem: a low-level HID
// modifier stream (used for the lock-key double-tap and the Control
// interrupt chord) and a window-server keyboard tap (used for shortcuts).
package input

import "time"

// KeyCode is an OS virtual key code.
type KeyCode int

// Modifier is a bitmask of the four modifiers the shortcut surface cares
// about, plus the engine's repurposed lock key.
type Modifier uint8

const (
	ModControl Modifier = 1 << iota
	ModOption
	ModCommand
	ModShift
	ModLock
)

// Source distinguishes which ingress stream a RawEvent came from.
type Source int

const (
	SourceHIDModifier Source = iota
	SourceWindowServer
)

// RawEvent is one event from either ingress stream, normalized to a common
// shape before reaching the Subsystem. Timestamp is a monotonic duration
// since an arbitrary epoch (the mach/host clock domain on darwin,
// time.Since(processStart) elsewhere) — only deltas between timestamps are
// ever compared.
type RawEvent struct {
	Source     Source
	KeyCode    KeyCode
	Mods       Modifier
	Down       bool
	IsLockKey  bool
	Timestamp  time.Duration
}

// ResolvedKeyEvent is what the Subsystem hands the Agent after modal-gate
// and shortcut-table processing: the binding key it resolved to (if any)
// and whether the underlying tap event was captured (swallowed) rather than
// passed through to the focused application.
type ResolvedKeyEvent struct {
	Binding  BindingKey
	Matched  bool
	Captured bool
}
