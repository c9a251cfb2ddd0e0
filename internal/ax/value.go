package ax

import "fmt"

// Kind identifies which arm of Value is populated. The OS accessibility API
// returns a handful of underlying CF types for any given attribute; Kind
// makes that dynamism a closed switch instead of a type assertion chain.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt64
	KindDouble
	KindString
	KindAttributedString
	KindURL
	KindIntegerRange
	KindPoint
	KindSize
	KindRect
	KindElement
	KindArray
	KindDict
	KindError
)

// IntegerRange is a half-open range [Start, Start+Length).
type IntegerRange struct {
	Start, Length int64
}

// End returns the exclusive end of the range.
func (r IntegerRange) End() int64 { return r.Start + r.Length }

type Point struct{ X, Y float64 }
type Size struct{ Width, Height float64 }
type Rect struct {
	Origin Point
	Size   Size
}

// Value is the closed tagged union every Element attribute, parameterized
// query result, and dump-file leaf is encoded as. Exactly one of the typed
// fields is meaningful, selected by Kind; callers must switch on Kind rather
// than probe fields directly.
type Value struct {
	Kind Kind

	Bool       bool
	Int64      int64
	Double     float64
	String     string // also holds AttributedString (flattened) and URL.String()
	Range      IntegerRange
	Point      Point
	Size       Size
	Rect       Rect
	Element    Element
	Array      []Value
	Dict       map[string]Value
	ErrKind    ErrorKind
}

func Null() Value                     { return Value{Kind: KindNull} }
func Bool(b bool) Value               { return Value{Kind: KindBool, Bool: b} }
func Int64(i int64) Value             { return Value{Kind: KindInt64, Int64: i} }
func Double(d float64) Value          { return Value{Kind: KindDouble, Double: d} }
func String(s string) Value           { return Value{Kind: KindString, String: s} }
func AttributedString(s string) Value { return Value{Kind: KindAttributedString, String: s} }
func URL(s string) Value              { return Value{Kind: KindURL, String: s} }
func Rng(start, length int64) Value {
	return Value{Kind: KindIntegerRange, Range: IntegerRange{Start: start, Length: length}}
}
func Pt(x, y float64) Value          { return Value{Kind: KindPoint, Point: Point{X: x, Y: y}} }
func Sz(w, h float64) Value          { return Value{Kind: KindSize, Size: Size{Width: w, Height: h}} }
func Rct(r Rect) Value               { return Value{Kind: KindRect, Rect: r} }
func ElementValue(e Element) Value   { return Value{Kind: KindElement, Element: e} }
func ArrayValue(vs []Value) Value    { return Value{Kind: KindArray, Array: vs} }
func DictValue(d map[string]Value) Value { return Value{Kind: KindDict, Dict: d} }
func ErrorValue(k ErrorKind) Value   { return Value{Kind: KindError, ErrKind: k} }

// IsNull reports whether this value carries no content, the tagged-union
// equivalent of a nil interface.
func (v Value) IsNull() bool { return v.Kind == KindNull }

// NonEmptyString reports whether v is a string-ish kind with non-empty
// content — the recurring "non-empty title/description/help" test used
// throughout the reader and interestingness predicate.
func (v Value) NonEmptyString() bool {
	switch v.Kind {
	case KindString, KindAttributedString, KindURL:
		return v.String != ""
	default:
		return false
	}
}

// Equal reports whether v and o are the same kind and hold equal
// payloads. Arrays and dicts compare structurally;
// Elements compare via their own Equal.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindNull:
		return true
	case KindBool:
		return v.Bool == o.Bool
	case KindInt64:
		return v.Int64 == o.Int64
	case KindDouble:
		return v.Double == o.Double
	case KindString, KindAttributedString, KindURL:
		return v.String == o.String
	case KindIntegerRange:
		return v.Range == o.Range
	case KindPoint:
		return v.Point == o.Point
	case KindSize:
		return v.Size == o.Size
	case KindRect:
		return v.Rect == o.Rect
	case KindElement:
		return v.Element.Equal(o.Element)
	case KindArray:
		if len(v.Array) != len(o.Array) {
			return false
		}
		for i := range v.Array {
			if !v.Array[i].Equal(o.Array[i]) {
				return false
			}
		}
		return true
	case KindDict:
		if len(v.Dict) != len(o.Dict) {
			return false
		}
		for k, vv := range v.Dict {
			ov, ok := o.Dict[k]
			if !ok || !vv.Equal(ov) {
				return false
			}
		}
		return true
	case KindError:
		return v.ErrKind == o.ErrKind
	default:
		return false
	}
}

// str renders v as text: empty for null, Go formatting for bool/int64/
// double, the string itself for string/attributed string/url, and
// "Error: <kind>" for error values. Every other kind (range, geometry,
// element, array, dict) falls back to "%+v" of the whole Value.
func (v Value) str() string {
	switch v.Kind {
	case KindNull:
		return ""
	case KindBool:
		return fmt.Sprintf("%v", v.Bool)
	case KindInt64:
		return fmt.Sprintf("%d", v.Int64)
	case KindDouble:
		return fmt.Sprintf("%g", v.Double)
	case KindString, KindAttributedString, KindURL:
		return v.String
	case KindError:
		return fmt.Sprintf("Error: %s", v.ErrKind)
	default:
		return fmt.Sprintf("%+v", v)
	}
}
