package syntax

import (
	"strconv"
	"strings"

	"abigen/internal/source"
)

// AttrKind enumerates the attributes a declaration can carry.
type AttrKind uint8

const (
	AttrPassthrough AttrKind = iota
	AttrRepr
	AttrAlign
	AttrPacked
	AttrDerive
)

func (k AttrKind) String() string {
	switch k {
	case AttrRepr:
		return "repr"
	case AttrAlign:
		return "align"
	case AttrPacked:
		return "packed"
	case AttrDerive:
		return "derive"
	default:
		return "passthrough"
	}
}

// Attr is one attribute as written. Only the fields relevant to Kind are set.
// The checker copies attributes onto resolved types verbatim; backends decide
// what they mean.
type Attr struct {
	Kind   AttrKind
	Span   source.Span
	Repr   []string // C, Rust, transparent or a primitive name
	Align  uint32
	Derive []string
	Text   string // passthrough payload
}

func (a Attr) String() string {
	switch a.Kind {
	case AttrRepr:
		return "@repr " + strings.Join(a.Repr, " ")
	case AttrAlign:
		return "@align " + strconv.FormatUint(uint64(a.Align), 10)
	case AttrPacked:
		return "@packed"
	case AttrDerive:
		return "@derive " + strings.Join(a.Derive, " ")
	default:
		return "@ " + a.Text
	}
}
