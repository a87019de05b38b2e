package layout

import (
	"fmt"
	"strings"

	"abigen/internal/diag"
	"abigen/internal/source"
	"abigen/internal/types"
)

// LayoutErrorKind enumerates types of layout calculation errors.
type LayoutErrorKind uint8

const (
	// LayoutErrRecursiveUnsized indicates a recursive type with no fixed size.
	LayoutErrRecursiveUnsized LayoutErrorKind = iota + 1
	LayoutErrAttrConflict
	LayoutErrOverflow
)

// LayoutError represents an error during memory layout calculation. It
// unwraps to a *diag.Error so callers can render it like any other
// diagnostic.
type LayoutError struct {
	Kind  LayoutErrorKind
	Type  types.TyIdx
	Name  string
	Span  source.Span
	Cycle []string // for LayoutErrRecursiveUnsized
}

func (e *LayoutError) Error() string {
	if e == nil {
		return "<nil>"
	}
	switch e.Kind {
	case LayoutErrRecursiveUnsized:
		if len(e.Cycle) == 0 {
			return fmt.Sprintf("recursive value type %s has infinite size", e.Name)
		}
		return fmt.Sprintf("recursive value type %s has infinite size (cycle: %s)", e.Name, strings.Join(e.Cycle, " -> "))
	case LayoutErrAttrConflict:
		return fmt.Sprintf("type %s is both @packed and @align", e.Name)
	case LayoutErrOverflow:
		return fmt.Sprintf("size of type %s overflows", e.Name)
	default:
		return fmt.Sprintf("layout error kind=%d type %s", e.Kind, e.Name)
	}
}

func (e *LayoutError) Unwrap() error {
	switch e.Kind {
	case LayoutErrRecursiveUnsized:
		return diag.Errorf(diag.TypRecursiveUnsized, e.Span, "%s", e.Error()).
			WithFix("store the recursive field behind a reference, e.g. `&" + e.Name + "`")
	case LayoutErrAttrConflict:
		return diag.Errorf(diag.TypLayoutAttrConflict, e.Span, "%s", e.Error())
	default:
		return diag.Errorf(diag.TypLayoutOverflow, e.Span, "%s", e.Error())
	}
}
