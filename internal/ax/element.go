package ax

// Element is an opaque, value-typed reference to a node in the OS
// accessibility tree. Two Elements are Equal iff they name the same OS node.
// The zero Element names nothing and is never returned by a Gateway; it
// exists only as a documented sentinel for "no element" in tests.
//
// ref holds the binding-specific identity: a wrapped AXUIElementRef pointer
// under the darwin binding, a string node id under the mock binding. Both
// are comparable, which makes Element itself comparable and usable directly
// as a map key — the equality/hash requirement from the contract falls out
// of Go's built-in struct comparison rather than a bespoke Hash method.
type Element struct {
	ref any
}

// Equal reports whether e and o name the same OS node.
func (e Element) Equal(o Element) bool { return e.ref == o.ref }

// IsZero reports whether e is the sentinel "no element" value.
func (e Element) IsZero() bool { return e.ref == nil }

// NewElement constructs an Element around a binding-specific comparable
// identity. Only Gateway implementations call this; application code only
// ever receives Elements back from a Gateway.
func NewElement(ref any) Element { return Element{ref: ref} }

// Ref returns the binding-specific identity, for use by the Gateway
// implementation that produced it. Application code should not need this.
func (e Element) Ref() any { return e.ref }
