package reader

import (
	"context"

	"github.com/vosh-go/voshd/internal/ax"
	"github.com/vosh-go/voshd/internal/speech"
)

// selectionDelta implements the incremental text-selection logic shared by
// every Reader strategy that can receive a text-selection-changed event.
// old is the reader's cached range (haveOld false before the first read);
// new is read fresh from the gateway.
func selectionDelta(
	ctx context.Context, gw ax.Gateway, el ax.Element,
	haveOld *bool, old *ax.IntegerRange,
	arrowDown, verticalArrow, optionHeld bool,
) []speech.Token {
	newV, err := gw.GetAttribute(ctx, el, ax.AttrSelectedTextRange)
	if err != nil || newV.Kind != ax.KindIntegerRange {
		return nil
	}
	newRange := newV.Range

	if !*haveOld {
		*haveOld = true
		*old = newRange
		return nil
	}
	oldRange := *old
	*old = newRange

	if oldRange == newRange {
		if arrowDown {
			return []speech.Token{speech.Boundary}
		}
		return nil
	}

	oldEmpty := oldRange.Length == 0
	newEmpty := newRange.Length == 0

	if oldEmpty && newEmpty {
		if arrowDown && verticalArrow && !optionHeld {
			return speakCurrentLine(ctx, gw, el, newRange)
		}
		start := minInt64(oldRange.Start, newRange.Start)
		end := maxInt64(oldRange.End(), newRange.End())
		return speakRange(ctx, gw, el, start, end)
	}

	if oldRange.Start == newRange.Start {
		ext := newRange.End() > oldRange.End()
		return edgeDeltaToken(ctx, gw, el, minInt64(oldRange.End(), newRange.End()), maxInt64(oldRange.End(), newRange.End()), ext)
	}

	if oldRange.End() == newRange.End() {
		ext := newRange.Start < oldRange.Start
		return edgeDeltaToken(ctx, gw, el, minInt64(oldRange.Start, newRange.Start), maxInt64(oldRange.Start, newRange.Start), ext)
	}

	var out []speech.Token
	out = append(out, speakRange(ctx, gw, el, oldRange.Start, oldRange.End())...)
	out = append(out, speakRange(ctx, gw, el, newRange.Start, newRange.End())...)
	out = append(out, speech.Selected)
	return out
}

// edgeDeltaToken reads the text between start and end (the portion of the
// selection that changed on one edge) and renders it as
// selectedTextGrew/selectedTextShrank depending on direction.
func edgeDeltaToken(ctx context.Context, gw ax.Gateway, el ax.Element, start, end int64, growing bool) []speech.Token {
	rng := ax.Rng(start, end-start)
	v, err := gw.QueryParameterized(ctx, el, ax.QueryStringForRange, rng)
	if err != nil || v.Kind != ax.KindString {
		return nil
	}
	if growing {
		return []speech.Token{speech.SelectedTextGrew(v.String)}
	}
	return []speech.Token{speech.SelectedTextShrank(v.String)}
}

func speakRange(ctx context.Context, gw ax.Gateway, el ax.Element, start, end int64) []speech.Token {
	rng := ax.Rng(start, end-start)
	v, err := gw.QueryParameterized(ctx, el, ax.QueryStringForRange, rng)
	if err != nil || !v.NonEmptyString() {
		return nil
	}
	return []speech.Token{speech.StringValue(v.String)}
}

func speakCurrentLine(ctx context.Context, gw ax.Gateway, el ax.Element, at ax.IntegerRange) []speech.Token {
	lineIdx, err := gw.QueryParameterized(ctx, el, ax.QueryLineForIndex, ax.Int64(at.Start))
	if err != nil || lineIdx.Kind != ax.KindInt64 {
		return nil
	}
	lineRange, err := gw.QueryParameterized(ctx, el, ax.QueryRangeForLine, lineIdx)
	if err != nil || lineRange.Kind != ax.KindIntegerRange {
		return nil
	}
	v, err := gw.QueryParameterized(ctx, el, ax.QueryStringForRange, lineRange)
	if err != nil || !v.NonEmptyString() {
		return nil
	}
	return []speech.Token{speech.StringValue(v.String)}
}

func minInt64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
