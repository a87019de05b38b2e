package syntax

import (
	"fmt"

	"abigen/internal/ident"
	"abigen/internal/source"
)

// Tydent is a syntactic reference to a type: a name, &T, [T; N] or ().
type Tydent interface {
	Span() source.Span
	String() string
	tydent()
}

// TydentName refers to a declared or builtin type by name.
type TydentName struct {
	Name ident.Ident
}

// TydentRef is &Pointee.
type TydentRef struct {
	Pointee Tydent
	Sp      source.Span
}

// TydentArray is [Elem; Len].
type TydentArray struct {
	Elem Tydent
	Len  uint64
	Sp   source.Span
}

// TydentEmpty is the empty tuple ().
type TydentEmpty struct {
	Sp source.Span
}

func (t *TydentName) Span() source.Span  { return t.Name.Span }
func (t *TydentRef) Span() source.Span   { return t.Sp }
func (t *TydentArray) Span() source.Span { return t.Sp }
func (t *TydentEmpty) Span() source.Span { return t.Sp }

func (t *TydentName) String() string  { return t.Name.Name }
func (t *TydentRef) String() string   { return "&" + t.Pointee.String() }
func (t *TydentArray) String() string { return fmt.Sprintf("[%s; %d]", t.Elem, t.Len) }
func (t *TydentEmpty) String() string { return "()" }

func (*TydentName) tydent()  {}
func (*TydentRef) tydent()   {}
func (*TydentArray) tydent() {}
func (*TydentEmpty) tydent() {}

// Named is shorthand for a TydentName without a span.
func Named(name string) *TydentName {
	return &TydentName{Name: ident.New(name, source.NoSpan)}
}

// Ref is shorthand for &pointee without a span.
func Ref(pointee Tydent) *TydentRef {
	return &TydentRef{Pointee: pointee}
}

// Array is shorthand for [elem; n] without a span.
func Array(elem Tydent, n uint64) *TydentArray {
	return &TydentArray{Elem: elem, Len: n}
}

// Empty is shorthand for () without a span.
func Empty() *TydentEmpty {
	return &TydentEmpty{}
}
