// Package dumpfile encodes an Element Gateway dump tree to the binary
// serialized property dictionary format the contract specifies as the
// external sink for Lock+Slash/Period/Comma.
package dumpfile

import (
	"bytes"
	"fmt"
	"os"

	"github.com/vosh-go/voshd/internal/ax"
)

// Dict is the serializable form of one ax.DumpNode: a plain
// map[string]any tree that the plist encoder below walks. Attribute names
// map to encoded primitive values; parent/children are nested dicts or
// omitted entirely when not recursed.
type Dict map[string]any

// Encode converts a Gateway dump tree into the Dict shape described by the
// contract: attributes, parameterizedAttributes, actions, and optional
// parent/children.
func Encode(n *ax.DumpNode) Dict {
	if n == nil {
		return nil
	}
	d := Dict{}

	attrs := make(map[string]any, len(n.Attributes))
	for k, v := range n.Attributes {
		attrs[k] = encodeValue(v)
	}
	d["attributes"] = attrs

	if len(n.ParameterizedAttributes) > 0 {
		d["parameterizedAttributes"] = append([]string(nil), n.ParameterizedAttributes...)
	}
	if len(n.Actions) > 0 {
		d["actions"] = append([]string(nil), n.Actions...)
	}
	if n.Parent != nil {
		d["parent"] = Encode(n.Parent)
	}
	if len(n.Children) > 0 {
		children := make([]Dict, len(n.Children))
		for i, c := range n.Children {
			children[i] = Encode(c)
		}
		d["children"] = children
	}
	return d
}

// encodeValue renders one ax.Value per the primitive-value encoding rules:
// bool/int64/double/string passthrough; url/attributed-string flatten to
// string; point/size/rect become flat x/y/width/height dicts; an element
// reference outside a dump context is a placeholder string; error values
// render as "Error: <description>".
func encodeValue(v ax.Value) any {
	switch v.Kind {
	case ax.KindNull:
		return nil
	case ax.KindBool:
		return v.Bool
	case ax.KindInt64:
		return v.Int64
	case ax.KindDouble:
		return v.Double
	case ax.KindString, ax.KindAttributedString, ax.KindURL:
		return v.String
	case ax.KindIntegerRange:
		return map[string]any{"location": v.Range.Start, "length": v.Range.Length}
	case ax.KindPoint:
		return map[string]any{"x": v.Point.X, "y": v.Point.Y}
	case ax.KindSize:
		return map[string]any{"width": v.Size.Width, "height": v.Size.Height}
	case ax.KindRect:
		return map[string]any{
			"x": v.Rect.Origin.X, "y": v.Rect.Origin.Y,
			"width": v.Rect.Size.Width, "height": v.Rect.Size.Height,
		}
	case ax.KindElement:
		return "<element>"
	case ax.KindArray:
		out := make([]any, len(v.Array))
		for i, item := range v.Array {
			out[i] = encodeValue(item)
		}
		return out
	case ax.KindDict:
		out := make(map[string]any, len(v.Dict))
		for k, item := range v.Dict {
			out[k] = encodeValue(item)
		}
		return out
	case ax.KindError:
		return fmt.Sprintf("Error: %s", v.ErrKind)
	default:
		return nil
	}
}

// WriteFile encodes node to a Dict, serializes it with encodeBinaryPlist
// (an encoding/gob stream, not an Apple binary property list) and writes
// it to path.
func WriteFile(path string, node *ax.DumpNode) error {
	d := Encode(node)
	var buf bytes.Buffer
	if err := encodeBinaryPlist(&buf, d); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}
