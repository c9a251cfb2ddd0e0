// Package reader implements the Semantic Reader: the role-dispatched
// strategies that convert an element into an ordered list of semantic
// output tokens.
package reader

import (
	"context"

	"github.com/vosh-go/voshd/internal/ax"
	"github.com/vosh-go/voshd/internal/speech"
)

// Reader is the strategy interface selected by role at construction time.
// Read produces the full token list for a focus read; ReadSummary produces
// the abbreviated label+value form used when summarizing a child from a
// container.
type Reader interface {
	Read(ctx context.Context) []speech.Token
	ReadSummary(ctx context.Context) []speech.Token

	// SelectionDelta computes the incremental text-selection tokens for a
	// text-selection-changed event on this reader's element, given whether
	// an arrow key is currently down and, if so, whether it is vertical and
	// whether Option is held. It updates the reader's cached selection range
	// as a side effect.
	SelectionDelta(ctx context.Context, arrowDown, verticalArrow, optionHeld bool) []speech.Token
}

// New selects a Reader strategy for el by its role, per the contract's
// role table: row/column/cell get pass-through, outline/table get
// container, everything else gets generic.
func New(ctx context.Context, gw ax.Gateway, el ax.Element) Reader {
	role := roleOf(ctx, gw, el)
	switch role {
	case "row", "column", "cell":
		return &passThroughReader{gw: gw, el: el}
	case "outline", "table":
		return &containerReader{generic: &genericReader{gw: gw, el: el}}
	default:
		return &genericReader{gw: gw, el: el}
	}
}

func roleOf(ctx context.Context, gw ax.Gateway, el ax.Element) string {
	v, err := gw.GetAttribute(ctx, el, ax.AttrRole)
	if err != nil || v.Kind != ax.KindString {
		return ""
	}
	return v.String
}
