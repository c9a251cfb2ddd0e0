package input

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// doubleTapWindow is the maximum gap between two lock-key presses that
// counts as a deliberate toggle rather than two independent single taps.
const doubleTapWindow = 250 * time.Millisecond

// Subsystem owns the shortcut table, the modal gate, the lock-key
// re-purposing state machine, and the solo-Control interrupt chord. It
// consumes RawEvents from both ingress streams and produces either a
// dispatched Action (window-server stream) or an interrupt/toggle
// side-effect (HID stream).
type Subsystem struct {
	tap    Tap
	table  *ShortcutTable
	log    *slog.Logger

	onInterrupt      func()
	onCapsLockToggle func(newState bool)

	mu             sync.Mutex
	browseMode     bool
	lockHeld       bool
	lastLockPress  time.Duration
	interruptArmed bool
	otherKeyDown   bool
}

// Config bundles the callbacks Subsystem needs into the rest of the engine.
// OnInterrupt is called for a solo Control tap; OnCapsLockToggle is called
// exactly once per committed double-tap toggle.
type Config struct {
	Tap              Tap
	Table            *ShortcutTable
	Logger           *slog.Logger
	OnInterrupt      func()
	OnCapsLockToggle func(newState bool)
}

// New constructs a Subsystem. BrowseMode starts disabled.
func New(cfg Config) *Subsystem {
	return &Subsystem{
		tap:              cfg.Tap,
		table:            cfg.Table,
		log:              cfg.Logger,
		onInterrupt:      cfg.OnInterrupt,
		onCapsLockToggle: cfg.OnCapsLockToggle,
	}
}

// SetBrowseMode toggles browse mode, which widens the modal gate to capture
// every window-server key event regardless of the lock key.
func (s *Subsystem) SetBrowseMode(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.browseMode = on
}

// IsKeyDown/IsModifierDown expose the Tap's live key-state query, per the
// contract's public-queries requirement.
func (s *Subsystem) IsKeyDown(code KeyCode) bool       { return s.tap.IsKeyDown(code) }
func (s *Subsystem) IsModifierDown(mod Modifier) bool { return s.tap.IsModifierDown(mod) }

// HandleHID processes one event from the low-level HID modifier stream.
// This is the only path that sees the lock key reliably regardless of
// lock-state gating, and the only path that may mutate the OS lock state.
func (s *Subsystem) HandleHID(ev RawEvent) {
	if !ev.IsLockKey {
		s.handleInterruptChordModifier(ev)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !ev.Down {
		s.lockHeld = false
		return
	}
	s.lockHeld = true

	// A press has already flipped the OS's own lock bit; preState is what
	// it was immediately before this press.
	preState := !s.tap.LockState()
	s.tap.SetLockState(preState)

	prev := s.lastLockPress
	if prev != 0 && ev.Timestamp-prev < doubleTapWindow {
		newState := !preState
		s.tap.SetLockState(newState)
		s.tap.SynthesizeLockKeyEvent()
		s.lastLockPress = 0
		if s.onCapsLockToggle != nil {
			s.onCapsLockToggle(newState)
		}
		if s.log != nil {
			s.log.Debug("lock key double-tap toggle", "newState", newState)
		}
		return
	}
	s.lastLockPress = ev.Timestamp
}

// handleInterruptChordModifier arms/disarms and fires the solo-Control
// interrupt chord. A solo tap is a press and release of Control with no
// other key or modifier observed down in between.
func (s *Subsystem) handleInterruptChordModifier(ev RawEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	isControl := ev.Mods&ModControl != 0 && ev.KeyCode == 0

	switch {
	case ev.Down && isControl && !s.otherKeyDown:
		s.interruptArmed = true
	case ev.Down:
		s.interruptArmed = false
		s.otherKeyDown = true
	case !ev.Down && isControl:
		if s.interruptArmed {
			s.interruptArmed = false
			if s.onInterrupt != nil {
				s.onInterrupt()
			}
		}
		s.otherKeyDown = false
	default:
		s.otherKeyDown = false
	}
}

// HandleWindowServer processes one event from the window-server keyboard
// tap: applies the modal gate, and on key-down, resolves and dispatches a
// shortcut. It returns whether the event was captured (swallowed) rather
// than passed through to the focused application.
func (s *Subsystem) HandleWindowServer(ctx context.Context, ev RawEvent) ResolvedKeyEvent {
	s.handleInterruptChordModifier(ev)

	s.mu.Lock()
	captured := s.lockHeld || s.browseMode
	browse := s.browseMode && !s.lockHeld
	s.mu.Unlock()

	if !ev.Down {
		return ResolvedKeyEvent{Captured: captured}
	}

	key := BindingKey{
		BrowseMode: browse,
		Ctrl:       ev.Mods&ModControl != 0,
		Option:     ev.Mods&ModOption != 0,
		Cmd:        ev.Mods&ModCommand != 0,
		Shift:      ev.Mods&ModShift != 0,
		KeyCode:    ev.KeyCode,
	}

	action, ok := s.table.Lookup(key)
	if !ok {
		return ResolvedKeyEvent{Binding: key, Captured: captured}
	}
	go action(ctx)
	if s.log != nil {
		s.log.Debug("shortcut dispatched", "key", key)
	}
	return ResolvedKeyEvent{Binding: key, Matched: true, Captured: captured}
}

// HandleTapDisabled re-enables the tap after the OS disables it by timeout
// or user input, per the contract's "re-enable and swallow" rule.
func (s *Subsystem) HandleTapDisabled() {
	s.tap.ReEnable()
	if s.log != nil {
		s.log.Info("keyboard tap re-enabled after disable")
	}
}
