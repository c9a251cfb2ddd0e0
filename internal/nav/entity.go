package nav

import (
	"context"
	"errors"

	"github.com/vosh-go/voshd/internal/ax"
)

// Entity wraps an element handle with the navigation operations the
// contract names: getParent/getFirstChild/getNextSibling filtered through
// interestingness, keyboard-focus propagation, and focus-group membership.
type Entity struct {
	Element ax.Element
}

// Interesting reports whether el qualifies as a user-navigable node: it is
// currently keyboard-focused, or has a non-empty title/description, or its
// role is in the interesting set and (it has no web-area ancestor, or it
// does and its own role is a leaf role).
func Interesting(ctx context.Context, gw ax.Gateway, el ax.Element) bool {
	if v, _ := gw.GetAttribute(ctx, el, ax.AttrFocused); v.Kind == ax.KindBool && v.Bool {
		return true
	}
	if v, _ := gw.GetAttribute(ctx, el, ax.AttrTitle); v.NonEmptyString() {
		return true
	}
	if v, _ := gw.GetAttribute(ctx, el, ax.AttrDescription); v.NonEmptyString() {
		return true
	}

	role := roleOf(ctx, gw, el)
	if !interestingRoles[role] {
		return false
	}
	if !hasWebAreaAncestor(ctx, gw, el) {
		return true
	}
	return isLeafRole(role)
}

func roleOf(ctx context.Context, gw ax.Gateway, el ax.Element) string {
	v, err := gw.GetAttribute(ctx, el, ax.AttrRole)
	if err != nil || v.Kind != ax.KindString {
		return ""
	}
	return v.String
}

// isInvalidElement reports whether err is an *ax.Error carrying
// ax.InvalidElement — the OS has invalidated the element since it was
// captured. Unlike every other Gateway error kind, this one must not be
// folded into "no such element": the traversal helpers below propagate it
// so the Navigator can re-retarget instead of treating a dead handle as an
// ordinary tree boundary.
func isInvalidElement(err error) bool {
	var e *ax.Error
	return errors.As(err, &e) && e.Kind == ax.InvalidElement
}

func parentOf(ctx context.Context, gw ax.Gateway, el ax.Element) (ax.Element, bool, error) {
	v, err := gw.GetAttribute(ctx, el, ax.AttrParent)
	if isInvalidElement(err) {
		return ax.Element{}, false, err
	}
	if err != nil || v.Kind != ax.KindElement {
		return ax.Element{}, false, nil
	}
	return v.Element, true, nil
}

func childrenOf(ctx context.Context, gw ax.Gateway, el ax.Element, backwards bool) ([]ax.Element, error) {
	name := ax.AttrChildrenInNavOrder
	v, err := gw.GetAttribute(ctx, el, name)
	if isInvalidElement(err) {
		return nil, err
	}
	if err != nil || v.Kind != ax.KindArray {
		v, err = gw.GetAttribute(ctx, el, ax.AttrChildren)
		if isInvalidElement(err) {
			return nil, err
		}
		if err != nil || v.Kind != ax.KindArray {
			return nil, nil
		}
	}
	out := make([]ax.Element, 0, len(v.Array))
	for _, item := range v.Array {
		if item.Kind == ax.KindElement {
			out = append(out, item.Element)
		}
	}
	if backwards {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out, nil
}

// hasWebAreaAncestor is used only by the interestingness check, which
// already degrades every Gateway error to "not interesting" — an
// invalidated ancestor here is absorbed the same way, since Interesting
// itself has no retargeting behavior to trigger.
func hasWebAreaAncestor(ctx context.Context, gw ax.Gateway, el ax.Element) bool {
	cur, ok, _ := parentOf(ctx, gw, el)
	for ok {
		if roleOf(ctx, gw, cur) == "webArea" {
			return true
		}
		if isRootRole(roleOf(ctx, gw, cur)) {
			return false
		}
		cur, ok, _ = parentOf(ctx, gw, cur)
	}
	return false
}

// GetParent climbs the parent chain of el, stopping at the first
// interesting ancestor; it stops short (returns found=false) if a root is
// reached first, and a root is never returned itself. A root el has no
// parent. A non-nil error means el or an ancestor on the way up was
// invalidated by the OS — the caller must re-retarget rather than treat
// that as a boundary.
func GetParent(ctx context.Context, gw ax.Gateway, el ax.Element) (ax.Element, bool, error) {
	if isRootRole(roleOf(ctx, gw, el)) {
		return ax.Element{}, false, nil
	}
	cur, ok, err := parentOf(ctx, gw, el)
	if err != nil {
		return ax.Element{}, false, err
	}
	for ok {
		if isRootRole(roleOf(ctx, gw, cur)) {
			return ax.Element{}, false, nil
		}
		if Interesting(ctx, gw, cur) {
			return cur, true, nil
		}
		cur, ok, err = parentOf(ctx, gw, cur)
		if err != nil {
			return ax.Element{}, false, err
		}
	}
	return ax.Element{}, false, nil
}

// GetFirstChild enumerates el's children in navigation order (reversed if
// backwards), returning the first interesting one found by recursing past
// uninteresting non-leaf children. A non-nil error means el was invalidated
// by the OS.
func GetFirstChild(ctx context.Context, gw ax.Gateway, el ax.Element, backwards bool) (ax.Element, bool, error) {
	children, err := childrenOf(ctx, gw, el, backwards)
	if err != nil {
		return ax.Element{}, false, err
	}
	for _, child := range children {
		if Interesting(ctx, gw, child) {
			return child, true, nil
		}
		role := roleOf(ctx, gw, child)
		if isLeafRole(role) {
			continue
		}
		found, ok, err := GetFirstChild(ctx, gw, child, backwards)
		if err != nil {
			return ax.Element{}, false, err
		}
		if ok {
			return found, true, nil
		}
	}
	return ax.Element{}, false, nil
}

// GetNextSibling finds el among its parent's ordered children, scans the
// remaining siblings in the chosen direction for an interesting candidate
// (descending into each for its first interesting child), and on
// exhaustion bubbles up to the parent's next sibling when the parent is
// neither root nor interesting itself. A non-nil error means el or an
// ancestor visited along the way was invalidated by the OS.
func GetNextSibling(ctx context.Context, gw ax.Gateway, el ax.Element, backwards bool) (ax.Element, bool, error) {
	parent, ok, err := parentOf(ctx, gw, el)
	if err != nil {
		return ax.Element{}, false, err
	}
	if !ok {
		return ax.Element{}, false, nil
	}
	siblings, err := childrenOf(ctx, gw, parent, backwards)
	if err != nil {
		return ax.Element{}, false, err
	}

	idx := -1
	for i, s := range siblings {
		if s.Equal(el) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ax.Element{}, false, nil
	}

	for _, cand := range siblings[idx+1:] {
		if Interesting(ctx, gw, cand) {
			return cand, true, nil
		}
		found, ok, err := GetFirstChild(ctx, gw, cand, backwards)
		if err != nil {
			return ax.Element{}, false, err
		}
		if ok {
			return found, true, nil
		}
	}

	parentRole := roleOf(ctx, gw, parent)
	if isRootRole(parentRole) || Interesting(ctx, gw, parent) {
		return ax.Element{}, false, nil
	}
	return GetNextSibling(ctx, gw, parent, backwards)
}

// PropagateKeyboardFocus sets the focused attribute on el when its role is
// keyboard-focusable; if that has no effect, it falls back to el's
// focusable-ancestor. Best effort: failures are swallowed, matching the
// contract's "best effort" language for this step.
func PropagateKeyboardFocus(ctx context.Context, gw ax.Gateway, el ax.Element) {
	role := roleOf(ctx, gw, el)
	if !isKeyboardFocusableRole(role) {
		return
	}
	_ = gw.SetAttribute(ctx, el, ax.AttrFocused, ax.Bool(true))

	v, err := gw.GetAttribute(ctx, el, ax.AttrFocused)
	if err == nil && v.Kind == ax.KindBool && v.Bool {
		return
	}
	anc, err := gw.GetAttribute(ctx, el, ax.AttrFocusableAncestor)
	if err != nil || anc.Kind != ax.KindElement {
		return
	}
	_ = gw.SetAttribute(ctx, anc.Element, ax.AttrFocused, ax.Bool(true))
}

// focusGroupRoot climbs el's ancestor chain up to (and including) the
// nearest root-role ancestor, or as far as the chain reaches if no root is
// found. Two elements are in the same focus group iff they share this
// root, which is how element-destroyed/element-focus-changed event
// handling decides whether a change to an unrelated subtree should
// invalidate the current focus.
func focusGroupRoot(ctx context.Context, gw ax.Gateway, el ax.Element) ax.Element {
	cur := el
	for {
		if isRootRole(roleOf(ctx, gw, cur)) {
			return cur
		}
		parent, ok, err := parentOf(ctx, gw, cur)
		if err != nil || !ok {
			return cur
		}
		cur = parent
	}
}

// IsInFocusGroup reports whether a and b descend from the same root
// element (window/menu/menuBar), the wrapper Navigator event handlers use
// to decide whether an event about a lies far enough outside b's subtree
// to be ignored.
func IsInFocusGroup(ctx context.Context, gw ax.Gateway, a, b ax.Element) bool {
	return focusGroupRoot(ctx, gw, a).Equal(focusGroupRoot(ctx, gw, b))
}
