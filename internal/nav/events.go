package nav

import (
	"context"

	"github.com/vosh-go/voshd/internal/ax"
	"github.com/vosh-go/voshd/internal/speech"
)

// HandleEvent processes one accessibility event on the accessibility
// domain. The Agent ranges over the current Observer's Events() channel
// and calls this for each one, in OS order, on a single consumer.
func (n *Navigator) HandleEvent(ctx context.Context, ev ax.Event) {
	switch ev.Kind {
	case ax.NotifyAnnouncementRequested:
		if a, ok := ev.Payload["announcement"]; ok && a.NonEmptyString() {
			n.sched.Announce(a.String)
		}

	case ax.NotifyElementDestroyed:
		n.handleElementDestroyed(ctx, ev.Subject)

	case ax.NotifyFocusedElementChanged:
		n.handleFocusChanged(ctx, ev.Subject)

	case ax.NotifyElementCreated:
		n.handleElementCreated(ctx, ev.Subject)

	case ax.NotifyTitleChanged, ax.NotifyValueChanged, ax.NotifyTextSelectionChanged:
		n.handleIncrementalUpdate(ctx, ev)
	}
}

func (n *Navigator) handleElementDestroyed(ctx context.Context, subject ax.Element) {
	f, err := n.currentFocus()
	if err != nil {
		return
	}
	if !f.Entity.Element.Equal(subject) && !IsInFocusGroup(ctx, n.gw, f.Entity.Element, subject) {
		return
	}
	// The destroyed element is the current focus or shares its focus-group
	// root; nothing stable survived to read, so clear and re-retarget from
	// the current pid.
	n.mu.Lock()
	n.focus = nil
	pid := n.pid
	n.mu.Unlock()
	_ = n.Retarget(ctx, pid)
}

func (n *Navigator) handleFocusChanged(ctx context.Context, subject ax.Element) {
	f, err := n.currentFocus()
	if err == nil && f.Entity.Element.Equal(subject) {
		return
	}
	if err == nil && IsInFocusGroup(ctx, n.gw, f.Entity.Element, subject) {
		return
	}
	newFocus := n.setFocus(ctx, subject)
	tokens := n.windowLabelToken(ctx, subject)
	tokens = append(tokens, newFocus.Reader.Read(ctx)...)
	n.sched.Convey(tokens)
}

func (n *Navigator) handleElementCreated(ctx context.Context, subject ax.Element) {
	n.mu.Lock()
	awaiting := n.awaitingCreation
	pid := n.pid
	obs := n.observer
	n.mu.Unlock()
	if !awaiting {
		return
	}
	if err := n.Retarget(ctx, pid); err != nil {
		return
	}
	n.mu.Lock()
	stillAwaiting := n.awaitingCreation
	n.mu.Unlock()
	if !stillAwaiting && obs != nil {
		_ = obs.Unsubscribe(ax.NotifyElementCreated)
	}
}

func (n *Navigator) handleIncrementalUpdate(ctx context.Context, ev ax.Event) {
	f, err := n.currentFocus()
	if err != nil || !f.Entity.Element.Equal(ev.Subject) {
		return
	}
	if ev.Kind != ax.NotifyTextSelectionChanged {
		tokens := f.Reader.ReadSummary(ctx)
		n.sched.Convey(tokens)
		return
	}

	arrowDown := n.inputKeyState != nil && n.inputKeyState.AnyArrowDown()
	vertical := n.inputKeyState != nil && n.inputKeyState.VerticalArrowDown()
	option := n.inputKeyState != nil && n.inputKeyState.OptionDown()
	tokens := f.Reader.SelectionDelta(ctx, arrowDown, vertical, option)
	if len(tokens) > 0 {
		n.sched.Convey(tokens)
	}
}

// KeyState is the narrow slice of the Input Subsystem's live key-state the
// Semantic Reader needs to disambiguate a text-selection-changed event, per
// the contract's isKeyDown/isModifierDown public queries.
type KeyState interface {
	AnyArrowDown() bool
	VerticalArrowDown() bool
	OptionDown() bool
}

// SetKeyState wires the Input Subsystem's key-state queries into the
// Navigator; called once by the Agent during startup.
func (n *Navigator) SetKeyState(ks KeyState) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.inputKeyState = ks
}

// degradeError converts a surfaced ax.Error into the token the contract
// prescribes: apiDisabled, notAccessible, or timeout. Errors that the
// gateway already degrades to null/no-op never reach here.
func degradeError(err error) (speech.Token, bool) {
	var e *ax.Error
	if !errorsAs(err, &e) {
		return speech.Token{}, false
	}
	switch e.Kind {
	case ax.APIDisabled:
		return speech.APIDisabled, true
	case ax.NotImplemented:
		return speech.NotAccessible, true
	case ax.Timeout:
		return speech.Timeout, true
	default:
		return speech.Token{}, false
	}
}

func errorsAs(err error, target **ax.Error) bool {
	for err != nil {
		if e, ok := err.(*ax.Error); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
