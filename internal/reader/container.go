package reader

import (
	"context"

	"github.com/vosh-go/voshd/internal/ax"
	"github.com/vosh-go/voshd/internal/speech"
)

// containerReader is the table/outline strategy: generic.read plus
// readSelectedChildren; readSummary additionally appends row/column counts.
type containerReader struct {
	generic *genericReader
}

func (r *containerReader) Read(ctx context.Context) []speech.Token {
	out := r.generic.Read(ctx)
	out = append(out, r.readSelectedChildren(ctx)...)
	return out
}

func (r *containerReader) ReadSummary(ctx context.Context) []speech.Token {
	out := r.generic.ReadSummary(ctx)
	if v := r.generic.attr(ctx, ax.AttrRows); v.Kind == ax.KindArray {
		out = append(out, speech.RowCount(len(v.Array)))
	}
	if v := r.generic.attr(ctx, ax.AttrColumns); v.Kind == ax.KindArray {
		out = append(out, speech.ColumnCount(len(v.Array)))
	}
	return out
}

// readSelectedChildren picks the first non-empty of
// {selected-children, selected-cells, selected-rows, selected-columns}; if
// exactly one, delegates to its Reader's summary; else emits
// selectedChildrenCount(n).
func (r *containerReader) readSelectedChildren(ctx context.Context) []speech.Token {
	for _, name := range []string{ax.AttrSelectedChildren, ax.AttrSelectedCells, ax.AttrSelectedRows, ax.AttrSelectedColumns} {
		v := r.generic.attr(ctx, name)
		if v.Kind != ax.KindArray || len(v.Array) == 0 {
			continue
		}
		if len(v.Array) == 1 && v.Array[0].Kind == ax.KindElement {
			child := New(ctx, r.generic.gw, v.Array[0].Element)
			return child.ReadSummary(ctx)
		}
		return []speech.Token{speech.SelectedChildrenCount(len(v.Array))}
	}
	return nil
}

func (r *containerReader) SelectionDelta(ctx context.Context, arrowDown, verticalArrow, optionHeld bool) []speech.Token {
	return r.generic.SelectionDelta(ctx, arrowDown, verticalArrow, optionHeld)
}
