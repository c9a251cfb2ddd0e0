package reader

import (
	"context"

	"github.com/vosh-go/voshd/internal/ax"
	"github.com/vosh-go/voshd/internal/speech"
)

// passThroughReader is the row/column/cell strategy: it has no label of
// its own. ReadSummary concatenates each child's summary; Read inherits
// generic behavior for completeness, though callers are expected to use
// ReadSummary for this role set.
type passThroughReader struct {
	gw ax.Gateway
	el ax.Element

	haveSelection bool
	lastSelection ax.IntegerRange
}

func (r *passThroughReader) Read(ctx context.Context) []speech.Token {
	return (&genericReader{gw: r.gw, el: r.el}).Read(ctx)
}

func (r *passThroughReader) ReadSummary(ctx context.Context) []speech.Token {
	v, err := r.gw.GetAttribute(ctx, r.el, ax.AttrChildren)
	if err != nil || v.Kind != ax.KindArray {
		return nil
	}
	var out []speech.Token
	for _, item := range v.Array {
		if item.Kind != ax.KindElement {
			continue
		}
		child := New(ctx, r.gw, item.Element)
		out = append(out, child.ReadSummary(ctx)...)
	}
	return out
}

func (r *passThroughReader) SelectionDelta(ctx context.Context, arrowDown, verticalArrow, optionHeld bool) []speech.Token {
	return selectionDelta(ctx, r.gw, r.el, &r.haveSelection, &r.lastSelection, arrowDown, verticalArrow, optionHeld)
}
