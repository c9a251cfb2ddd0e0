package reader

import (
	"context"

	"github.com/vosh-go/voshd/internal/ax"
	"github.com/vosh-go/voshd/internal/speech"
)

// genericReader is the default strategy: readLabel, readValue, readRole,
// readState, readHelp concatenated. Every other strategy composes it.
type genericReader struct {
	gw ax.Gateway
	el ax.Element

	haveSelection bool
	lastSelection ax.IntegerRange
}

func (r *genericReader) Read(ctx context.Context) []speech.Token {
	var out []speech.Token
	out = append(out, r.readLabel(ctx)...)
	out = append(out, r.readValue(ctx)...)
	out = append(out, r.readRole(ctx)...)
	out = append(out, r.readState(ctx)...)
	out = append(out, r.readHelp(ctx)...)
	return out
}

func (r *genericReader) ReadSummary(ctx context.Context) []speech.Token {
	var out []speech.Token
	out = append(out, r.readLabel(ctx)...)
	out = append(out, r.readValue(ctx)...)
	return out
}

func (r *genericReader) attr(ctx context.Context, name string) ax.Value {
	v, err := r.gw.GetAttribute(ctx, r.el, name)
	if err != nil {
		return ax.Null()
	}
	return v
}

func (r *genericReader) readLabel(ctx context.Context) []speech.Token {
	if v := r.attr(ctx, ax.AttrTitle); v.NonEmptyString() {
		return []speech.Token{speech.Label(v.String)}
	}
	if v := r.attr(ctx, ax.AttrTitleElement); v.Kind == ax.KindElement {
		if tv, err := r.gw.GetAttribute(ctx, v.Element, ax.AttrTitle); err == nil && tv.NonEmptyString() {
			return []speech.Token{speech.Label(tv.String)}
		}
	}
	if v := r.attr(ctx, ax.AttrDescription); v.NonEmptyString() {
		return []speech.Token{speech.Label(v.String)}
	}
	return nil
}

func (r *genericReader) readValue(ctx context.Context) []speech.Token {
	var out []speech.Token

	if vd := r.attr(ctx, ax.AttrValueDescription); vd.NonEmptyString() {
		out = append(out, speech.StringValue(vd.String))
	} else {
		v := r.attr(ctx, ax.AttrValue)
		switch v.Kind {
		case ax.KindBool:
			out = append(out, speech.BoolValue(v.Bool))
		case ax.KindInt64:
			out = append(out, speech.IntValue(v.Int64))
		case ax.KindDouble:
			out = append(out, speech.FloatValue(v.Double))
		case ax.KindString:
			out = append(out, speech.StringValue(v.String))
			if st := r.attr(ctx, ax.AttrSelectedText); st.NonEmptyString() {
				out = append(out, speech.SelectedText(st.String))
			}
		case ax.KindAttributedString:
			out = append(out, speech.StringValue(v.String))
			if st := r.attr(ctx, ax.AttrSelectedText); st.NonEmptyString() {
				out = append(out, speech.SelectedText(st.String))
			}
		case ax.KindURL:
			out = append(out, speech.URLValue(v.String))
		}
	}

	if v := r.attr(ctx, ax.AttrEdited); v.Kind == ax.KindBool && v.Bool {
		out = append(out, speech.Edited)
	}
	if v := r.attr(ctx, ax.AttrPlaceholder); v.NonEmptyString() {
		out = append(out, speech.PlaceholderValue(v.String))
	}
	return out
}

func (r *genericReader) readRole(ctx context.Context) []speech.Token {
	if r.attr(ctx, ax.AttrDescription).NonEmptyString() {
		return nil
	}
	if v := r.attr(ctx, ax.AttrRoleDescription); v.NonEmptyString() {
		return []speech.Token{speech.Role(v.String)}
	}
	return nil
}

func (r *genericReader) readState(ctx context.Context) []speech.Token {
	var out []speech.Token
	if v := r.attr(ctx, ax.AttrSelected); v.Kind == ax.KindBool && v.Bool {
		out = append(out, speech.Selected)
	}
	if v := r.attr(ctx, ax.AttrEnabled); v.Kind == ax.KindBool && !v.Bool {
		out = append(out, speech.Disabled)
	}
	return out
}

func (r *genericReader) readHelp(ctx context.Context) []speech.Token {
	if v := r.attr(ctx, ax.AttrHelp); v.NonEmptyString() {
		return []speech.Token{speech.Help(v.String)}
	}
	return nil
}

func (r *genericReader) SelectionDelta(ctx context.Context, arrowDown, verticalArrow, optionHeld bool) []speech.Token {
	return selectionDelta(ctx, r.gw, r.el, &r.haveSelection, &r.lastSelection, arrowDown, verticalArrow, optionHeld)
}
