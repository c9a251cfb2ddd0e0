// Package ax is the Element Gateway: a thin, strongly-typed facade over the
// OS accessibility API. It exposes element handle equality, attribute
// read/write, parameterized query, action enumeration/perform, tree dump,
// timeout configuration, and an observer producing accessibility events.
// Every fallible operation reports exactly one ErrorKind from the closed
// taxonomy in error.go; callers never see raw OS return codes.
package ax

import (
	"context"
	"time"
)

// Attribute names. Not an exhaustive enum — Gateway.GetAttribute accepts any
// string — but these are the names the Navigator and Semantic Reader read
// and write, named once here so call sites don't retype OS string literals.
const (
	AttrRole                    = "role"
	AttrSubrole                 = "subrole"
	AttrRoleDescription         = "roleDescription"
	AttrTitle                   = "title"
	AttrTitleElement            = "titleElement"
	AttrDescription             = "description"
	AttrHelp                    = "help"
	AttrValue                   = "value"
	AttrValueDescription        = "valueDescription"
	AttrPlaceholder              = "placeholderValue"
	AttrSelected                = "selected"
	AttrSelectedText             = "selectedText"
	AttrSelectedTextRange        = "selectedTextRange"
	AttrEnabled                  = "enabled"
	AttrFocused                  = "focused"
	AttrEdited                   = "edited"
	AttrParent                   = "parent"
	AttrChildren                 = "children"
	AttrChildrenInNavOrder       = "childrenInNavigationOrder"
	AttrWindow                   = "window"
	AttrFocusedWindow            = "focusedWindow"
	AttrFocusedElement           = "focusedUIElement"
	AttrFocusableAncestor        = "focusableAncestor"
	AttrRows                     = "rows"
	AttrColumns                  = "columns"
	AttrSelectedCells            = "selectedCells"
	AttrSelectedRows             = "selectedRows"
	AttrSelectedColumns          = "selectedColumns"
	AttrSelectedChildren         = "selectedChildren"
)

// Parameterized query names.
const (
	QueryLineForIndex      = "lineForIndex"
	QueryRangeForLine      = "rangeForLine"
	QueryStringForRange    = "stringForRange"
	QueryRangeForPosition  = "rangeForPosition"
	QueryRangeForIndex     = "rangeForIndex"
	QueryBoundsForRange    = "boundsForRange"
	QueryCellForColumnRow  = "cellForColumnAndRow"
)

// NotificationKind enumerates the OS-level accessibility notifications the
// engine subscribes to.
type NotificationKind int

const (
	NotifyFocusedWindowChanged NotificationKind = iota
	NotifyFocusedElementChanged
	NotifyTitleChanged
	NotifyValueChanged
	NotifyTextSelectionChanged
	NotifyAnnouncementRequested
	NotifyElementDestroyed
	NotifyElementCreated
	NotifyRowCountChanged
)

func (k NotificationKind) String() string {
	switch k {
	case NotifyFocusedWindowChanged:
		return "focusedWindowChanged"
	case NotifyFocusedElementChanged:
		return "focusedElementChanged"
	case NotifyTitleChanged:
		return "titleChanged"
	case NotifyValueChanged:
		return "valueChanged"
	case NotifyTextSelectionChanged:
		return "textSelectionChanged"
	case NotifyAnnouncementRequested:
		return "announcementRequested"
	case NotifyElementDestroyed:
		return "elementDestroyed"
	case NotifyElementCreated:
		return "elementCreated"
	case NotifyRowCountChanged:
		return "rowCountChanged"
	default:
		return "unknown"
	}
}

// Event is an accessibility notification: the kind that fired, the element
// it concerns, and an optional payload (e.g. announcement text under
// NotifyAnnouncementRequested, keyed "announcement").
type Event struct {
	Kind    NotificationKind
	Subject Element
	Payload map[string]Value
}

// Action describes one OS action an element supports (e.g. "AXPress").
type Action struct {
	ID          string
	Description string
}

// Observer produces a lazy, multi-consumer stream of accessibility events
// for one subject element. Subscribe/Unsubscribe add and remove interest in
// a notification kind; Events returns the channel consumers range over.
// Multiple calls to Events return independent channels fed from the same
// underlying subscription — every consumer sees every event.
//
// On Close, every channel returned by Events is closed so range loops over
// it terminate, matching the contract's "on drop, finish all subscriber
// streams" lifetime rule.
type Observer interface {
	Subscribe(kind NotificationKind) error
	Unsubscribe(kind NotificationKind) error
	Events() <-chan Event
	Close() error
}

// Gateway is the full Element Gateway contract. Two implementations exist:
// the darwin cgo binding (gateway_darwin.go) and an in-memory mock
// (gateway_mock.go) used by every unit test and the end-to-end scenarios.
type Gateway interface {
	// SystemWide returns the element representing the whole accessible UI.
	SystemWide() Element
	// ForApplication returns the application element for the given pid.
	ForApplication(pid int) Element

	GetAttribute(ctx context.Context, el Element, name string) (Value, error)
	SetAttribute(ctx context.Context, el Element, name string, v Value) error
	QueryParameterized(ctx context.Context, el Element, name string, input Value) (Value, error)
	ListAttributes(ctx context.Context, el Element) ([]string, error)
	ListActions(ctx context.Context, el Element) ([]Action, error)
	PerformAction(ctx context.Context, el Element, id string) error

	// SetTimeout applies process-wide to all gateway calls made afterward.
	SetTimeout(d time.Duration)

	// ConfirmTrusted asks the OS whether this process holds the
	// accessibility-client privilege, prompting the user if not. Must be
	// called exactly once at startup.
	ConfirmTrusted() bool

	// Observe returns an Observer scoped to el.
	Observe(el Element) (Observer, error)

	// Dump produces a serializable tree of el's readable attributes.
	// recurseParents/recurseChildren control whether element-valued slots
	// expand into nested dumps or render as opaque placeholders.
	Dump(ctx context.Context, el Element, recurseParents, recurseChildren bool) (*DumpNode, error)
}

// DumpNode is one node of a Gateway.Dump tree.
type DumpNode struct {
	Attributes             map[string]Value
	ParameterizedAttributes []string
	Actions                []string
	Parent                 *DumpNode
	Children               []*DumpNode
}
