// Package agent wires the Element Gateway, Input Subsystem, Speech
// Scheduler, and Navigator together and runs the engine's three execution
// domains: the main loop, the accessibility domain, and input ingestion.
package agent

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/vosh-go/voshd/internal/ax"
	"github.com/vosh-go/voshd/internal/config"
	"github.com/vosh-go/voshd/internal/ctlsock"
	"github.com/vosh-go/voshd/internal/dumpfile"
	"github.com/vosh-go/voshd/internal/input"
	"github.com/vosh-go/voshd/internal/nav"
	"github.com/vosh-go/voshd/internal/speech"
)

// FrontmostApplication is implemented by whatever watches the OS's
// frontmost-application-changed signal (an NSWorkspace-notification-backed
// watcher on darwin; a driven fake in tests). It produces a stream of PIDs.
type FrontmostApplication interface {
	Changes() <-chan int
	Close() error
}

// Agent exclusively owns the Navigator, Speech Scheduler, Input Subsystem,
// and the Navigator's current Observer for the process's lifetime.
type Agent struct {
	gw        ax.Gateway
	sched     *speech.Scheduler
	input     *input.Subsystem
	navigator *nav.Navigator
	table     *input.ShortcutTable
	frontmost FrontmostApplication
	log       *slog.Logger
	cfg       config.Config

	stopCh chan struct{}
}

// New constructs an Agent. Call Run to start its execution domains.
func New(gw ax.Gateway, device speech.Device, tap input.Tap, frontmost FrontmostApplication, cfg config.Config, log *slog.Logger) *Agent {
	gw.SetTimeout(time.Duration(cfg.GatewayTimeoutSeconds * float64(time.Second)))

	sched := speech.New(device, log)
	table := input.NewShortcutTable()
	navigator := nav.New(gw, sched, log)

	a := &Agent{
		gw:        gw,
		sched:     sched,
		navigator: navigator,
		table:     table,
		frontmost: frontmost,
		log:       log,
		cfg:       cfg,
		stopCh:    make(chan struct{}),
	}

	a.input = input.New(input.Config{
		Tap:         tap,
		Table:       table,
		Logger:      log,
		OnInterrupt: sched.Interrupt,
		OnCapsLockToggle: func(on bool) {
			sched.Announce(speech.Render(speech.CapsLockStatusChanged(on)))
		},
	})
	navigator.SetKeyState(keyStateAdapter{tap: tap})

	bindDefaultShortcuts(table, navigator, a.input, log)
	for _, ov := range cfg.Shortcuts {
		_ = table.BindKey(input.BindingKey{
			BrowseMode: ov.BrowseMode, Ctrl: ov.Ctrl, Option: ov.Option,
			Cmd: ov.Cmd, Shift: ov.Shift, KeyCode: input.KeyCode(ov.KeyCode),
		}, actionByName(ov.Action, navigator, a.input, log))
	}

	return a
}

// keyStateAdapter satisfies nav.KeyState over an input.Tap's live key-state
// queries, using the virtual key codes the contract's shortcut surface
// already names for arrow navigation.
type keyStateAdapter struct{ tap input.Tap }

const (
	keyCodeLeft  = 123
	keyCodeRight = 124
	keyCodeDown  = 125
	keyCodeUp    = 126
)

func (k keyStateAdapter) AnyArrowDown() bool {
	return k.tap.IsKeyDown(keyCodeLeft) || k.tap.IsKeyDown(keyCodeRight) ||
		k.tap.IsKeyDown(keyCodeUp) || k.tap.IsKeyDown(keyCodeDown)
}

func (k keyStateAdapter) VerticalArrowDown() bool {
	return k.tap.IsKeyDown(keyCodeUp) || k.tap.IsKeyDown(keyCodeDown)
}

func (k keyStateAdapter) OptionDown() bool {
	return k.tap.IsModifierDown(input.ModOption)
}

// ConfirmTrusted calls the Gateway's trust check exactly once at startup.
// On denial, the caller (cmd/voshd) must exit cleanly without starting Run.
func (a *Agent) ConfirmTrusted() bool {
	return a.gw.ConfirmTrusted()
}

// DidFinishUtterance forwards the TTS device's completion signal to the
// Speech Scheduler. A darwin Device is constructed before the Agent (and
// therefore before the Scheduler) exists, so its onDone callback is wired
// to this method rather than directly to Scheduler.DidFinishUtterance.
func (a *Agent) DidFinishUtterance() {
	a.sched.DidFinishUtterance()
}

// HandleHID forwards one low-level HID modifier-stream event to the Input
// Subsystem. cmd/voshd wires a concrete Tap's HID callback to this once the
// Agent exists, since the Subsystem that owns the double-tap/interrupt
// state machine is constructed inside New.
func (a *Agent) HandleHID(ev input.RawEvent) {
	a.input.HandleHID(ev)
}

// HandleWindowServer forwards one window-server keyboard event to the
// Input Subsystem, returning whatever the shortcut table resolved.
func (a *Agent) HandleWindowServer(ctx context.Context, ev input.RawEvent) input.ResolvedKeyEvent {
	return a.input.HandleWindowServer(ctx, ev)
}

// DumpTo satisfies ctlsock.DumpFunc: it runs the requested dump action
// against the Navigator and writes the result to path, wiring the control
// socket to the same three actions BindDumpDir binds to keyboard shortcuts.
func (a *Agent) DumpTo(target ctlsock.Target, path string) error {
	var (
		node *ax.DumpNode
		err  error
	)
	ctx := context.Background()
	switch target {
	case ctlsock.TargetSystem:
		node, err = a.navigator.DumpSystemWide(ctx)
	case ctlsock.TargetApplication:
		node, err = a.navigator.DumpApplication(ctx)
	case ctlsock.TargetFocus:
		node, err = a.navigator.DumpFocus(ctx)
	default:
		return fmt.Errorf("unknown dump target %q", target)
	}
	if err != nil {
		return err
	}
	return dumpfile.WriteFile(path, node)
}

// BindDumpDir registers the dump shortcuts (Lock+Slash/Period/Comma) against
// dir, once the CLI has resolved where dump files should be written.
func (a *Agent) BindDumpDir(dir string) error {
	return BindDumpShortcuts(a.table, a.navigator, dir, a.log)
}

// Stop signals Run's main loop to shut down.
func (a *Agent) Stop() {
	close(a.stopCh)
}
