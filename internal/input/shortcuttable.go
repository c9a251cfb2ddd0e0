package input

import (
	"context"
	"fmt"
	"sync"
)

// BindingKey is the shortcut table's lookup key: the six-way tuple
// (browseMode, ctrl, option, cmd, shift, keyCode). At most one Action may be
// bound per key.
type BindingKey struct {
	BrowseMode bool
	Ctrl       bool
	Option     bool
	Cmd        bool
	Shift      bool
	KeyCode    KeyCode
}

// Action is a shortcut handler, invoked in a cooperative goroutine by
// Subsystem.HandleWindowServer on a matching key-down.
type Action func(ctx context.Context)

// ShortcutTable is the dispatch table mapping BindingKey to Action. It is
// the input-subsystem analogue of the teacher's dispatchTable: a flat,
// pattern-keyed map with duplicate-registration rejected loudly rather than
// silently overwritten, following dispatchTable.validate's "conflicting
// stop handlers" error in dispatch.go — generalized from a tree-position
// conflict check to an insert-time check, since our binding keys are exact
// tuples rather than tree-ordered patterns.
type ShortcutTable struct {
	mu      sync.RWMutex
	entries map[BindingKey]Action
}

// NewShortcutTable returns an empty table.
func NewShortcutTable() *ShortcutTable {
	return &ShortcutTable{entries: make(map[BindingKey]Action)}
}

// BindKey registers action for key. It returns an error if key is already
// bound, per the "at most one action per key" invariant.
func (t *ShortcutTable) BindKey(key BindingKey, action Action) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.entries[key]; exists {
		return fmt.Errorf("input: shortcut key %+v is already bound", key)
	}
	t.entries[key] = action
	return nil
}

// Unbind removes any action bound to key. Unbinding an unbound key is a
// no-op.
func (t *ShortcutTable) Unbind(key BindingKey) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.entries, key)
}

// Lookup returns the action bound to key, if any.
func (t *ShortcutTable) Lookup(key BindingKey) (Action, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	a, ok := t.entries[key]
	return a, ok
}
