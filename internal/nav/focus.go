package nav

import (
	"github.com/vosh-go/voshd/internal/ax"
	"github.com/vosh-go/voshd/internal/reader"
)

// Focus is the pair (Entity, Reader). Invariant: the Entity's element is
// interesting, or is the currently-focused OS window's first interesting
// descendant. The Navigator is the only component that mutates a Focus.
type Focus struct {
	Entity Entity
	Reader reader.Reader
}
