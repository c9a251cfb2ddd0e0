package ax

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MockGateway is a fully in-memory stand-in for the real OS accessibility
// surface: a tree of nodes built by test code, read and mutated through the
// same Gateway contract the darwin binding implements. It is the adapted
// analogue of a terminal-emulation mock that records operations for test
// assertions instead of driving a real device — here the "device" is the
// accessibility tree instead of a terminal screen.
//
// Every unit test and every end-to-end scenario in this module is driven
// against a MockGateway rather than real hardware.
type MockGateway struct {
	mu sync.Mutex

	systemWide *mockNode
	apps       map[int]*mockNode

	trusted bool
	timeout time.Duration

	observers map[*mockNode][]*mockObserver
	nextID    int

	// Performed records every PerformAction call, in order, for assertions.
	Performed []PerformedAction
}

// PerformedAction records one PerformAction call observed by the mock.
type PerformedAction struct {
	Element Element
	ActionID string
}

type mockNode struct {
	id       int
	attrs    map[string]Value
	queries  map[string]Value
	actions  []Action
	parent   *mockNode
	children []*mockNode
	invalid  bool
}

// NewMockGateway returns an empty mock gateway. Trusted defaults to true so
// tests don't have to opt in to the happy path.
func NewMockGateway() *MockGateway {
	return &MockGateway{
		apps:      make(map[int]*mockNode),
		observers: make(map[*mockNode][]*mockObserver),
		trusted:   true,
		timeout:   5 * time.Second,
	}
}

// Attrs is a convenience alias for building node attribute sets in tests.
type Attrs map[string]Value

// NewElement creates a detached node with the given role and attributes and
// returns its Element handle. Role is stored under AttrRole.
func (g *MockGateway) NewElement(role string, attrs Attrs) Element {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.nextID++
	n := &mockNode{
		id:      g.nextID,
		attrs:   make(map[string]Value),
		queries: make(map[string]Value),
	}
	n.attrs[AttrRole] = String(role)
	for k, v := range attrs {
		n.attrs[k] = v
	}
	return NewElement(n)
}

// AppendChild appends child to parent's children, in order, and sets the
// child's parent link both ways.
func (g *MockGateway) AppendChild(parent, child Element) {
	g.mu.Lock()
	defer g.mu.Unlock()

	pn := parent.ref.(*mockNode)
	cn := child.ref.(*mockNode)
	pn.children = append(pn.children, cn)
	cn.parent = pn
}

// SetSystemWide designates el as the SystemWide() element.
func (g *MockGateway) SetSystemWide(el Element) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.systemWide = el.ref.(*mockNode)
}

// SetApplication designates el as the application element for pid.
func (g *MockGateway) SetApplication(pid int, el Element) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.apps[pid] = el.ref.(*mockNode)
}

// SetQueryResult configures the result QueryParameterized returns for the
// given element and parameterized-attribute name.
func (g *MockGateway) SetQueryResult(el Element, name string, v Value) {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := el.ref.(*mockNode)
	n.queries[name] = v
}

// SetActions configures the actions ListActions/PerformAction see for el.
func (g *MockGateway) SetActions(el Element, actions []Action) {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := el.ref.(*mockNode)
	n.actions = actions
}

// SetTrusted configures what ConfirmTrusted returns, for permission-denial
// scenario tests.
func (g *MockGateway) SetTrusted(trusted bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.trusted = trusted
}

// SetAttr is a direct-mutation helper for test setup and for simulating OS
// side effects (e.g. an external app toggling its own "focused" attribute).
func (g *MockGateway) SetAttr(el Element, name string, v Value) {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := el.ref.(*mockNode)
	n.attrs[name] = v
}

// Emit delivers ev to every Observer subscribed to ev.Kind on ev.Subject.
// Tests use this to simulate OS-originated notifications.
func (g *MockGateway) Emit(ev Event) {
	g.mu.Lock()
	n := ev.Subject.ref.(*mockNode)
	obs := append([]*mockObserver(nil), g.observers[n]...)
	g.mu.Unlock()

	for _, o := range obs {
		o.deliver(ev)
	}
}

func (g *MockGateway) SystemWide() Element {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.systemWide == nil {
		g.nextID++
		g.systemWide = &mockNode{id: g.nextID, attrs: map[string]Value{AttrRole: String("systemWide")}, queries: map[string]Value{}}
	}
	return NewElement(g.systemWide)
}

func (g *MockGateway) ForApplication(pid int) Element {
	g.mu.Lock()
	defer g.mu.Unlock()
	n, ok := g.apps[pid]
	if !ok {
		return Element{}
	}
	return NewElement(n)
}

// Invalidate marks el as invalidated by the OS: every later GetAttribute
// call against it returns ax.InvalidElement, the way a real accessibility
// element does once its underlying UI object is destroyed.
func (g *MockGateway) Invalidate(el Element) {
	n, ok := el.ref.(*mockNode)
	if !ok || n == nil {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	n.invalid = true
}

func (g *MockGateway) GetAttribute(ctx context.Context, el Element, name string) (Value, error) {
	n, ok := el.ref.(*mockNode)
	if !ok || n == nil {
		return Null(), &Error{Kind: InvalidElement, Op: "getAttribute(" + name + ")"}
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if n.invalid {
		return Null(), &Error{Kind: InvalidElement, Op: "getAttribute(" + name + ")"}
	}

	switch name {
	case AttrParent:
		if n.parent == nil {
			return Null(), nil
		}
		return ElementValue(NewElement(n.parent)), nil
	case AttrChildren, AttrChildrenInNavOrder:
		vs := make([]Value, len(n.children))
		for i, c := range n.children {
			vs[i] = ElementValue(NewElement(c))
		}
		return ArrayValue(vs), nil
	}

	v, ok := n.attrs[name]
	if !ok {
		return Null(), nil
	}
	return v, nil
}

func (g *MockGateway) SetAttribute(ctx context.Context, el Element, name string, v Value) error {
	n, ok := el.ref.(*mockNode)
	if !ok || n == nil {
		return &Error{Kind: InvalidElement, Op: "setAttribute(" + name + ")"}
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	n.attrs[name] = v
	return nil
}

func (g *MockGateway) QueryParameterized(ctx context.Context, el Element, name string, input Value) (Value, error) {
	n, ok := el.ref.(*mockNode)
	if !ok || n == nil {
		return Null(), &Error{Kind: InvalidElement, Op: "query(" + name + ")"}
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	v, ok := n.queries[name]
	if !ok {
		return Null(), &Error{Kind: NoValue, Op: "query(" + name + ")"}
	}
	return v, nil
}

func (g *MockGateway) ListAttributes(ctx context.Context, el Element) ([]string, error) {
	n, ok := el.ref.(*mockNode)
	if !ok || n == nil {
		return nil, &Error{Kind: InvalidElement, Op: "listAttributes"}
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	names := make([]string, 0, len(n.attrs))
	for k := range n.attrs {
		names = append(names, k)
	}
	return names, nil
}

func (g *MockGateway) ListActions(ctx context.Context, el Element) ([]Action, error) {
	n, ok := el.ref.(*mockNode)
	if !ok || n == nil {
		return nil, &Error{Kind: InvalidElement, Op: "listActions"}
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]Action(nil), n.actions...), nil
}

func (g *MockGateway) PerformAction(ctx context.Context, el Element, id string) error {
	n, ok := el.ref.(*mockNode)
	if !ok || n == nil {
		return &Error{Kind: InvalidElement, Op: "performAction(" + id + ")"}
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, a := range n.actions {
		if a.ID == id {
			g.Performed = append(g.Performed, PerformedAction{Element: el, ActionID: id})
			return nil
		}
	}
	return &Error{Kind: ActionUnsupported, Op: "performAction(" + id + ")"}
}

func (g *MockGateway) SetTimeout(d time.Duration) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.timeout = d
}

func (g *MockGateway) ConfirmTrusted() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.trusted
}

func (g *MockGateway) Observe(el Element) (Observer, error) {
	n, ok := el.ref.(*mockNode)
	if !ok || n == nil {
		return nil, &Error{Kind: InvalidElement, Op: "observe"}
	}
	o := &mockObserver{
		gw:     g,
		node:   n,
		subs:   make(map[NotificationKind]bool),
		outs:   nil,
	}
	g.mu.Lock()
	g.observers[n] = append(g.observers[n], o)
	g.mu.Unlock()
	return o, nil
}

func (g *MockGateway) Dump(ctx context.Context, el Element, recurseParents, recurseChildren bool) (*DumpNode, error) {
	n, ok := el.ref.(*mockNode)
	if !ok || n == nil {
		return nil, &Error{Kind: InvalidElement, Op: "dump"}
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.dumpLocked(n, recurseParents, recurseChildren), nil
}

func (g *MockGateway) dumpLocked(n *mockNode, recurseParents, recurseChildren bool) *DumpNode {
	dn := &DumpNode{Attributes: make(map[string]Value, len(n.attrs))}
	for k, v := range n.attrs {
		dn.Attributes[k] = v
	}
	for name := range n.queries {
		dn.ParameterizedAttributes = append(dn.ParameterizedAttributes, name)
	}
	for _, a := range n.actions {
		dn.Actions = append(dn.Actions, a.ID)
	}
	if recurseParents && n.parent != nil {
		dn.Parent = g.dumpLocked(n.parent, recurseParents, false)
	}
	if recurseChildren {
		for _, c := range n.children {
			dn.Children = append(dn.Children, g.dumpLocked(c, false, recurseChildren))
		}
	}
	return dn
}

// mockObserver is the Observer implementation backing MockGateway.Observe.
type mockObserver struct {
	gw   *MockGateway
	node *mockNode

	mu     sync.Mutex
	subs   map[NotificationKind]bool
	outs   []chan Event
	closed bool
}

func (o *mockObserver) Subscribe(kind NotificationKind) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.subs[kind] {
		return &Error{Kind: NotificationAlreadyRegistered, Op: fmt.Sprintf("subscribe(%s)", kind)}
	}
	o.subs[kind] = true
	return nil
}

func (o *mockObserver) Unsubscribe(kind NotificationKind) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.subs[kind] {
		return &Error{Kind: NotificationNotRegistered, Op: fmt.Sprintf("unsubscribe(%s)", kind)}
	}
	delete(o.subs, kind)
	return nil
}

func (o *mockObserver) Events() <-chan Event {
	o.mu.Lock()
	defer o.mu.Unlock()
	ch := make(chan Event, 32)
	o.outs = append(o.outs, ch)
	return ch
}

func (o *mockObserver) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return nil
	}
	o.closed = true
	for _, ch := range o.outs {
		close(ch)
	}

	o.gw.mu.Lock()
	obs := o.gw.observers[o.node]
	for i, x := range obs {
		if x == o {
			o.gw.observers[o.node] = append(obs[:i], obs[i+1:]...)
			break
		}
	}
	o.gw.mu.Unlock()
	return nil
}

func (o *mockObserver) deliver(ev Event) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed || !o.subs[ev.Kind] {
		return
	}
	for _, ch := range o.outs {
		select {
		case ch <- ev:
		default:
		}
	}
}
