package syntax

import (
	"abigen/internal/ident"
	"abigen/internal/source"
)

// TyDecl is one nominal type declaration.
type TyDecl interface {
	DeclName() ident.Ident
	DeclAttrs() []Attr
	DeclSpan() source.Span
	tyDecl()
}

// TypedVar is a named field or parameter. Positional ones carry a generated
// name (field0, arg0, out0).
type TypedVar struct {
	Name ident.Ident
	Ty   Tydent
}

type StructDecl struct {
	Name   ident.Ident
	Fields []TypedVar
	Attrs  []Attr
	Span   source.Span
}

type UnionDecl struct {
	Name   ident.Ident
	Fields []TypedVar
	Attrs  []Attr
	Span   source.Span
}

// EnumVariant is a C-style variant. Value is nil when not written.
type EnumVariant struct {
	Name  ident.Ident
	Value *int64
}

type EnumDecl struct {
	Name     ident.Ident
	Variants []EnumVariant
	Attrs    []Attr
	Span     source.Span
}

// TaggedVariant is one arm of a tagged union. Fields is nil for a bare
// variant and non-nil (possibly empty) for one with a payload.
type TaggedVariant struct {
	Name   ident.Ident
	Fields []TypedVar
}

type TaggedDecl struct {
	Name     ident.Ident
	Variants []TaggedVariant
	Attrs    []Attr
	Span     source.Span
}

type AliasDecl struct {
	Name   ident.Ident
	Target Tydent
	Attrs  []Attr
	Span   source.Span
}

// PunBlock is one alternative of a pun: a selector and the single type
// declaration (named like the pun) to use when the selector matches.
type PunBlock struct {
	Selector Selector
	Decl     TyDecl
	Span     source.Span
}

type PunDecl struct {
	Name   ident.Ident
	Blocks []PunBlock
	Attrs  []Attr
	Span   source.Span
}

func (d *StructDecl) DeclName() ident.Ident { return d.Name }
func (d *UnionDecl) DeclName() ident.Ident  { return d.Name }
func (d *EnumDecl) DeclName() ident.Ident   { return d.Name }
func (d *TaggedDecl) DeclName() ident.Ident { return d.Name }
func (d *AliasDecl) DeclName() ident.Ident  { return d.Name }
func (d *PunDecl) DeclName() ident.Ident    { return d.Name }

func (d *StructDecl) DeclAttrs() []Attr { return d.Attrs }
func (d *UnionDecl) DeclAttrs() []Attr  { return d.Attrs }
func (d *EnumDecl) DeclAttrs() []Attr   { return d.Attrs }
func (d *TaggedDecl) DeclAttrs() []Attr { return d.Attrs }
func (d *AliasDecl) DeclAttrs() []Attr  { return d.Attrs }
func (d *PunDecl) DeclAttrs() []Attr    { return d.Attrs }

func (d *StructDecl) DeclSpan() source.Span { return d.Span }
func (d *UnionDecl) DeclSpan() source.Span  { return d.Span }
func (d *EnumDecl) DeclSpan() source.Span   { return d.Span }
func (d *TaggedDecl) DeclSpan() source.Span { return d.Span }
func (d *AliasDecl) DeclSpan() source.Span  { return d.Span }
func (d *PunDecl) DeclSpan() source.Span    { return d.Span }

func (*StructDecl) tyDecl() {}
func (*UnionDecl) tyDecl()  {}
func (*EnumDecl) tyDecl()   {}
func (*TaggedDecl) tyDecl() {}
func (*AliasDecl) tyDecl()  {}
func (*PunDecl) tyDecl()    {}

// FuncDecl is a function signature. Bodies are not part of this model.
type FuncDecl struct {
	Name    ident.Ident
	Inputs  []TypedVar
	Outputs []TypedVar
	Attrs   []Attr
	Span    source.Span
}
