package agent

import (
	"context"
)

// Run starts the Agent's accessibility-domain consumer loop and blocks
// processing frontmost-application changes until Stop is called or ctx is
// cancelled. The Input Subsystem's own goroutines (HID/window-server taps)
// are started by whatever constructs the concrete input.Tap; Run only owns
// retargeting and accessibility-event consumption, which the contract
// requires to happen on a single dedicated accessibility-domain executor.
func (a *Agent) Run(ctx context.Context) error {
	accessibilityDomain := make(chan func(context.Context), 64)
	go a.runAccessibilityDomain(ctx, accessibilityDomain)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-a.stopCh:
			return nil
		case pid, ok := <-a.frontmost.Changes():
			if !ok {
				return nil
			}
			accessibilityDomain <- func(ctx context.Context) {
				if err := a.navigator.Retarget(ctx, pid); err != nil && a.log != nil {
					a.log.Error("retarget failed", "pid", pid, "error", err)
				}
				a.consumeObserverEvents(ctx, accessibilityDomain)
			}
		}
	}
}

// runAccessibilityDomain is the dedicated serial executor that owns every
// Element Gateway call and the Navigator, so blocking OS round-trips never
// stall the main loop. Work is submitted as closures over the channel so
// retarget and event-consumption requests interleave in submission order
// without two Navigator actions ever running concurrently.
func (a *Agent) runAccessibilityDomain(ctx context.Context, work <-chan func(context.Context)) {
	for {
		select {
		case <-ctx.Done():
			return
		case fn, ok := <-work:
			if !ok {
				return
			}
			fn(ctx)
		}
	}
}

// consumeObserverEvents drains the current Navigator Observer's event
// stream on the accessibility domain, re-submitting itself after each
// retarget replaces the Observer (since retarget closes the previous one).
func (a *Agent) consumeObserverEvents(ctx context.Context, work chan<- func(context.Context)) {
	obs := a.navigator.Observer()
	if obs == nil {
		return
	}
	events := obs.Events()
	go func() {
		for ev := range events {
			e := ev
			select {
			case work <- func(ctx context.Context) { a.navigator.HandleEvent(ctx, e) }:
			case <-ctx.Done():
				return
			}
		}
	}()
}
