package nav

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/vosh-go/voshd/internal/ax"
	"github.com/vosh-go/voshd/internal/reader"
	"github.com/vosh-go/voshd/internal/speech"
)

// Navigator maintains the system-wide element handle, the current
// application element and PID, the current accessibility Observer, and the
// current Focus. It is exclusively owned by the Agent and serializes all
// of its operations on the accessibility domain.
type Navigator struct {
	gw    ax.Gateway
	sched *speech.Scheduler
	log   *slog.Logger

	systemWide ax.Element

	mu               sync.Mutex
	appElement       ax.Element
	pid              int
	observer         ax.Observer
	focus            *Focus
	firstRetarget    bool
	awaitingCreation bool
	inputKeyState    KeyState
}

// New constructs a Navigator. Call Retarget once the Agent learns the
// frontmost application's PID before issuing any navigation action.
func New(gw ax.Gateway, sched *speech.Scheduler, log *slog.Logger) *Navigator {
	return &Navigator{
		gw:            gw,
		sched:         sched,
		log:           log,
		systemWide:    gw.SystemWide(),
		firstRetarget: true,
	}
}

// Observer returns the Navigator's current accessibility Observer, or nil
// if none is active (before the first Retarget). The Agent ranges over its
// Events() channel on the accessibility domain.
func (n *Navigator) Observer() ax.Observer {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.observer
}

// Retarget replaces the application element and observer when the
// frontmost application PID changes, resolves a seed focus, and emits the
// resulting token stream as a single batch: `application(name)` only on the
// engine's very first retarget, then the window label, then the focused
// entity's full read.
func (n *Navigator) Retarget(ctx context.Context, pid int) error {
	n.mu.Lock()
	if n.observer != nil {
		n.observer.Close()
		n.observer = nil
	}
	appElement := n.gw.ForApplication(pid)
	n.appElement = appElement
	n.pid = pid
	n.focus = nil
	n.mu.Unlock()

	obs, err := n.gw.Observe(appElement)
	if err != nil {
		return err
	}
	for _, kind := range []ax.NotificationKind{ax.NotifyAnnouncementRequested, ax.NotifyElementDestroyed, ax.NotifyFocusedElementChanged} {
		_ = obs.Subscribe(kind)
	}
	n.mu.Lock()
	n.observer = obs
	first := n.firstRetarget
	n.firstRetarget = false
	n.mu.Unlock()

	var tokens []speech.Token
	if first {
		name := n.appName(ctx, appElement)
		tokens = append(tokens, speech.Application(name))
	}

	entity, ok := n.resolveSeedFocus(ctx, appElement)
	if !ok {
		tokens = append(tokens, speech.NoFocus)
		n.sched.Convey(tokens)
		_ = obs.Subscribe(ax.NotifyElementCreated)
		n.mu.Lock()
		n.awaitingCreation = true
		n.mu.Unlock()
		return nil
	}

	tokens = append(tokens, n.windowLabelToken(ctx, entity)...)

	f := &Focus{Entity: Entity{Element: entity}, Reader: reader.New(ctx, n.gw, entity)}
	n.mu.Lock()
	n.focus = f
	n.mu.Unlock()

	tokens = append(tokens, f.Reader.Read(ctx)...)
	n.sched.Convey(tokens)
	return nil
}

func (n *Navigator) appName(ctx context.Context, el ax.Element) string {
	if v, err := n.gw.GetAttribute(ctx, el, ax.AttrTitle); err == nil && v.NonEmptyString() {
		return v.String
	}
	return ""
}

// resolveSeedFocus prefers the application's reported focused element,
// else the focused window's first interesting child.
func (n *Navigator) resolveSeedFocus(ctx context.Context, appElement ax.Element) (ax.Element, bool) {
	if v, err := n.gw.GetAttribute(ctx, appElement, ax.AttrFocusedElement); err == nil && v.Kind == ax.KindElement {
		return v.Element, true
	}
	winV, err := n.gw.GetAttribute(ctx, appElement, ax.AttrFocusedWindow)
	if err != nil || winV.Kind != ax.KindElement {
		return ax.Element{}, false
	}
	// An error here (an invalidated window) has nothing to re-retarget
	// around yet, since Retarget is still resolving its seed focus; treat
	// it like any other seed-resolution failure.
	el, ok, _ := GetFirstChild(ctx, n.gw, winV.Element, false)
	return el, ok
}

func (n *Navigator) windowLabelToken(ctx context.Context, el ax.Element) []speech.Token {
	win := n.windowOf(ctx, el)
	if win.IsZero() {
		return nil
	}
	v, err := n.gw.GetAttribute(ctx, win, ax.AttrTitle)
	if err != nil || !v.NonEmptyString() {
		return nil
	}
	return []speech.Token{speech.Window(v.String)}
}

func (n *Navigator) windowOf(ctx context.Context, el ax.Element) ax.Element {
	if v, err := n.gw.GetAttribute(ctx, el, ax.AttrWindow); err == nil && v.Kind == ax.KindElement {
		return v.Element
	}
	cur := el
	for {
		if roleOf(ctx, n.gw, cur) == "window" {
			return cur
		}
		p, ok, err := parentOf(ctx, n.gw, cur)
		if err != nil || !ok {
			return ax.Element{}
		}
		cur = p
	}
}

// ErrNoFocus is returned by navigation actions when there is no current
// Focus to act on.
var ErrNoFocus = errors.New("nav: no current focus")

func (n *Navigator) currentFocus() (*Focus, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.focus == nil {
		return nil, ErrNoFocus
	}
	return n.focus, nil
}

func (n *Navigator) setFocus(ctx context.Context, el ax.Element) *Focus {
	f := &Focus{Entity: Entity{Element: el}, Reader: reader.New(ctx, n.gw, el)}
	n.mu.Lock()
	n.focus = f
	n.mu.Unlock()
	return f
}

// ReadFocus emits the current focus's full token list.
func (n *Navigator) ReadFocus(ctx context.Context) error {
	f, err := n.currentFocus()
	if err != nil {
		return err
	}
	n.sched.Convey(f.Reader.Read(ctx))
	return nil
}

// move is the shared implementation of FocusParent/FocusNextSibling/
// FocusFirstChild: emit a leading direction token, attempt the navigation,
// and either emit boundary+re-read (failure), re-retarget (the current
// focus or an ancestor visited along the way was invalidated by the OS), or
// propagate keyboard focus and read the new entity (success).
func (n *Navigator) move(ctx context.Context, lead speech.Token, try func(ax.Element) (ax.Element, bool, error)) error {
	f, err := n.currentFocus()
	if err != nil {
		return err
	}
	next, ok, terr := try(f.Entity.Element)
	if terr != nil {
		return n.Retarget(ctx, n.pid)
	}
	if !ok {
		tokens := []speech.Token{speech.Boundary}
		tokens = append(tokens, f.Reader.Read(ctx)...)
		n.sched.Convey(tokens)
		return nil
	}

	newFocus := n.setFocus(ctx, next)
	PropagateKeyboardFocus(ctx, n.gw, next)

	tokens := []speech.Token{lead}
	tokens = append(tokens, newFocus.Reader.Read(ctx)...)
	n.sched.Convey(tokens)
	return nil
}

// FocusParent climbs to the first interesting ancestor of the current
// focus; on a root element, emits boundary and re-reads.
func (n *Navigator) FocusParent(ctx context.Context) error {
	return n.move(ctx, speech.Exiting, func(el ax.Element) (ax.Element, bool, error) {
		return GetParent(ctx, n.gw, el)
	})
}

// FocusNextSibling moves to the next (or previous, if backwards) sibling.
func (n *Navigator) FocusNextSibling(ctx context.Context, backwards bool) error {
	lead := speech.Next
	if backwards {
		lead = speech.Previous
	}
	return n.move(ctx, lead, func(el ax.Element) (ax.Element, bool, error) {
		return GetNextSibling(ctx, n.gw, el, backwards)
	})
}

// FocusFirstChild enters the first interesting child of the current focus.
func (n *Navigator) FocusFirstChild(ctx context.Context) error {
	return n.move(ctx, speech.Entering, func(el ax.Element) (ax.Element, bool, error) {
		return GetFirstChild(ctx, n.gw, el, false)
	})
}

// DumpSystemWide dumps the whole system-wide element tree.
func (n *Navigator) DumpSystemWide(ctx context.Context) (*ax.DumpNode, error) {
	return n.gw.Dump(ctx, n.systemWide, false, true)
}

// DumpApplication dumps the current application's element tree.
func (n *Navigator) DumpApplication(ctx context.Context) (*ax.DumpNode, error) {
	n.mu.Lock()
	app := n.appElement
	n.mu.Unlock()
	if app.IsZero() {
		return nil, ErrNoFocus
	}
	return n.gw.Dump(ctx, app, false, true)
}

// DumpFocus dumps the current focus's subtree.
func (n *Navigator) DumpFocus(ctx context.Context) (*ax.DumpNode, error) {
	f, err := n.currentFocus()
	if err != nil {
		return nil, err
	}
	return n.gw.Dump(ctx, f.Entity.Element, false, true)
}
