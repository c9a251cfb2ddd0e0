package input

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleHIDDoubleTapTogglesLock(t *testing.T) {
	tap := NewMockTap()
	var toggled []bool
	sub := New(Config{
		Tap:              tap,
		Table:            NewShortcutTable(),
		OnCapsLockToggle: func(on bool) { toggled = append(toggled, on) },
	})

	tap.SetLockState(true) // the OS flips its own lock bit on the press
	sub.HandleHID(RawEvent{IsLockKey: true, Down: true, Timestamp: 100 * time.Millisecond})
	assert.False(t, tap.LockState(), "a single press restores the OS lock bit to its pre-press value")
	assert.Empty(t, toggled, "a single tap should not commit a toggle")

	tap.SetLockState(true) // the OS flips its own lock bit on the press
	sub.HandleHID(RawEvent{IsLockKey: true, Down: true, Timestamp: 250 * time.Millisecond})
	require.Len(t, toggled, 1)
	assert.True(t, toggled[0])
	assert.Equal(t, 1, tap.Synthesized)
}

func TestHandleHIDSingleTapsOutsideWindowDoNotToggle(t *testing.T) {
	tap := NewMockTap()
	var toggled []bool
	sub := New(Config{
		Tap:              tap,
		Table:            NewShortcutTable(),
		OnCapsLockToggle: func(on bool) { toggled = append(toggled, on) },
	})

	sub.HandleHID(RawEvent{IsLockKey: true, Down: true, Timestamp: 0})
	sub.HandleHID(RawEvent{IsLockKey: true, Down: true, Timestamp: 500 * time.Millisecond})
	assert.Empty(t, toggled, "taps further apart than the double-tap window never toggle")
}

func TestHandleHIDSoloControlInterruptChord(t *testing.T) {
	tap := NewMockTap()
	interrupted := 0
	sub := New(Config{
		Tap:         tap,
		Table:       NewShortcutTable(),
		OnInterrupt: func() { interrupted++ },
	})

	sub.HandleHID(RawEvent{Mods: ModControl, KeyCode: 0, Down: true})
	sub.HandleHID(RawEvent{Mods: ModControl, KeyCode: 0, Down: false})
	assert.Equal(t, 1, interrupted)
}

func TestHandleHIDControlWithOtherKeyDoesNotInterrupt(t *testing.T) {
	tap := NewMockTap()
	interrupted := 0
	sub := New(Config{
		Tap:         tap,
		Table:       NewShortcutTable(),
		OnInterrupt: func() { interrupted++ },
	})

	sub.HandleHID(RawEvent{Mods: ModControl, KeyCode: 0, Down: true})
	sub.HandleHID(RawEvent{Mods: 0, KeyCode: 6, Down: true})
	sub.HandleHID(RawEvent{Mods: ModControl, KeyCode: 0, Down: false})
	assert.Equal(t, 0, interrupted, "a chord with another key down in between must not fire")
}

func TestHandleWindowServerDispatchesBoundShortcut(t *testing.T) {
	tap := NewMockTap()
	table := NewShortcutTable()
	done := make(chan struct{})
	key := BindingKey{BrowseMode: true, KeyCode: 48}
	require.NoError(t, table.BindKey(key, func(ctx context.Context) { close(done) }))

	sub := New(Config{Tap: tap, Table: table})
	sub.SetBrowseMode(true)

	resolved := sub.HandleWindowServer(context.Background(), RawEvent{KeyCode: 48, Down: true})
	assert.True(t, resolved.Matched)
	assert.True(t, resolved.Captured)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("bound action was never invoked")
	}
}

func TestHandleWindowServerDispatchesWhileLockKeyHeld(t *testing.T) {
	tap := NewMockTap()
	table := NewShortcutTable()
	done := make(chan struct{})
	key := BindingKey{BrowseMode: false, KeyCode: 48}
	require.NoError(t, table.BindKey(key, func(ctx context.Context) { close(done) }))

	sub := New(Config{Tap: tap, Table: table})
	// Holding the lock key (not toggling browse mode) is how every real
	// shortcut is dispatched: the lock press sets lockHeld without waiting
	// for a release, the same way a held modifier key does.
	sub.HandleHID(RawEvent{IsLockKey: true, Down: true, Timestamp: 0})

	resolved := sub.HandleWindowServer(context.Background(), RawEvent{KeyCode: 48, Down: true})
	assert.True(t, resolved.Matched)
	assert.True(t, resolved.Captured)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("bound action was never invoked")
	}
}

func TestHandleWindowServerUnmatchedKeyPassesThrough(t *testing.T) {
	tap := NewMockTap()
	sub := New(Config{Tap: tap, Table: NewShortcutTable()})

	resolved := sub.HandleWindowServer(context.Background(), RawEvent{KeyCode: 99, Down: true})
	assert.False(t, resolved.Matched)
	assert.False(t, resolved.Captured, "without browse mode or the lock key held, events pass through")
}

func TestHandleTapDisabledReEnables(t *testing.T) {
	tap := NewMockTap()
	sub := New(Config{Tap: tap, Table: NewShortcutTable()})
	sub.HandleTapDisabled()
	assert.Equal(t, 1, tap.ReEnabled)
}
