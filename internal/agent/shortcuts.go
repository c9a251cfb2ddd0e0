package agent

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/vosh-go/voshd/internal/ax"
	"github.com/vosh-go/voshd/internal/dumpfile"
	"github.com/vosh-go/voshd/internal/input"
	"github.com/vosh-go/voshd/internal/nav"
)

// Virtual key codes for the contract's keyboard shortcut surface (macOS
// ANSI keyboard layout codes).
const (
	keyTab    = 48
	keyLeft   = 123
	keyRight  = 124
	keyDown   = 125
	keyUp     = 126
	keySlash  = 44
	keyPeriod = 47
	keyComma  = 43
)

// bindDefaultShortcuts registers the contract's fixed keyboard surface.
// Every chord requires the lock key held, and Subsystem.HandleWindowServer
// computes the dispatch key's BrowseMode field as browseMode && !lockHeld —
// which is always false while the lock key is down — so these bind with
// BrowseMode: false to match the key the Subsystem actually looks up. Dump
// actions are bound in cmd/voshd once the dump directory is known, via
// BindDumpShortcuts.
func bindDefaultShortcuts(table *input.ShortcutTable, navigator *nav.Navigator, sub *input.Subsystem, log *slog.Logger) {
	bind := func(code input.KeyCode, action input.Action) {
		key := input.BindingKey{BrowseMode: false, KeyCode: code}
		if err := table.BindKey(key, action); err != nil && log != nil {
			log.Error("default shortcut bind failed", "error", err)
		}
	}

	bind(keyTab, func(ctx context.Context) { _ = navigator.ReadFocus(ctx) })
	bind(keyLeft, func(ctx context.Context) { _ = navigator.FocusNextSibling(ctx, true) })
	bind(keyRight, func(ctx context.Context) { _ = navigator.FocusNextSibling(ctx, false) })
	bind(keyDown, func(ctx context.Context) { _ = navigator.FocusFirstChild(ctx) })
	bind(keyUp, func(ctx context.Context) { _ = navigator.FocusParent(ctx) })
}

// BindDumpShortcuts registers the three dump chords (Lock+Slash/Period/Comma
// for the system-wide tree, the frontmost application, and the current
// focus respectively) once the CLI has resolved a dump directory. Each
// writes one timestamped gob-encoded dump file per §6; failures are logged
// rather than spoken, since a dump is a diagnostic action, not part of the
// readout surface. Bound with BrowseMode: false for the same reason as
// bindDefaultShortcuts: these are lock-held chords, and the lock-held
// dispatch key always carries BrowseMode: false.
func BindDumpShortcuts(table *input.ShortcutTable, navigator *nav.Navigator, dumpDir string, log *slog.Logger) error {
	write := func(name string, fn func(ctx context.Context) (*ax.DumpNode, error)) input.Action {
		return func(ctx context.Context) {
			node, err := fn(ctx)
			if err != nil {
				if log != nil {
					log.Error("dump failed", "target", name, "error", err)
				}
				return
			}
			path := filepath.Join(dumpDir, fmt.Sprintf("%s-%d.dump", name, time.Now().UnixNano()))
			if err := dumpfile.WriteFile(path, node); err != nil && log != nil {
				log.Error("dump write failed", "target", name, "path", path, "error", err)
			}
		}
	}

	if err := table.BindKey(input.BindingKey{BrowseMode: false, KeyCode: keySlash}, write("system", navigator.DumpSystemWide)); err != nil {
		return err
	}
	if err := table.BindKey(input.BindingKey{BrowseMode: false, KeyCode: keyPeriod}, write("application", navigator.DumpApplication)); err != nil {
		return err
	}
	if err := table.BindKey(input.BindingKey{BrowseMode: false, KeyCode: keyComma}, write("focus", navigator.DumpFocus)); err != nil {
		return err
	}
	return nil
}

// actionByName resolves a config-file shortcut override's action name to a
// callable Action. Unknown names bind to a no-op so a bad config entry
// never panics the dispatch path.
func actionByName(name string, navigator *nav.Navigator, sub *input.Subsystem, log *slog.Logger) input.Action {
	switch name {
	case "readFocus":
		return func(ctx context.Context) { _ = navigator.ReadFocus(ctx) }
	case "focusParent":
		return func(ctx context.Context) { _ = navigator.FocusParent(ctx) }
	case "focusNextSibling":
		return func(ctx context.Context) { _ = navigator.FocusNextSibling(ctx, false) }
	case "focusPreviousSibling":
		return func(ctx context.Context) { _ = navigator.FocusNextSibling(ctx, true) }
	case "focusFirstChild":
		return func(ctx context.Context) { _ = navigator.FocusFirstChild(ctx) }
	default:
		return func(ctx context.Context) {
			if log != nil {
				log.Warn("unknown shortcut override action", "action", name)
			}
		}
	}
}
