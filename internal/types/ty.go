package types

import (
	"abigen/internal/ident"
	"abigen/internal/syntax"
)

// Ty is a resolved type shape. The concrete types below form a closed set;
// consumers switch on them.
type Ty interface {
	Kind() Kind
}

// Field is a named member with its resolved type.
type Field struct {
	Ident ident.Ident
	Ty    TyIdx
}

type PrimitiveTy struct {
	Prim Primitive
}

// StructTy is a nominal struct. AllPositional is set when every field name
// was generated, which lets backends emit a tuple struct.
type StructTy struct {
	Name          ident.Ident
	Fields        []Field
	Attrs         []syntax.Attr
	AllPositional bool
}

type UnionTy struct {
	Name   ident.Ident
	Fields []Field
	Attrs  []syntax.Attr
}

// EnumVariant carries its written value as metadata only.
type EnumVariant struct {
	Name  ident.Ident
	Value *int64
}

type EnumTy struct {
	Name     ident.Ident
	Variants []EnumVariant
	Attrs    []syntax.Attr
}

// TaggedVariant has nil Fields when it carries no payload.
type TaggedVariant struct {
	Name          ident.Ident
	Fields        []Field
	AllPositional bool
}

type TaggedTy struct {
	Name     ident.Ident
	Variants []TaggedVariant
	Attrs    []syntax.Attr
}

// AliasTy refers to Real; it is not a new layout.
type AliasTy struct {
	Name  ident.Ident
	Real  TyIdx
	Attrs []syntax.Attr
}

// PunBlock is one alternative of a pun, already resolved.
type PunBlock struct {
	Selector syntax.Selector
	Real     TyIdx
}

// PunTy keeps every block so later passes can compare alternatives; only
// ResolvePun picks one.
type PunTy struct {
	Name   ident.Ident
	Blocks []PunBlock
	Attrs  []syntax.Attr
}

type ArrayTy struct {
	Elem TyIdx
	Len  uint64
}

type RefTy struct {
	Pointee TyIdx
}

type EmptyTy struct{}

// incompleteTy fills a reserved nominal slot until it is completed.
type incompleteTy struct {
	Name ident.Ident
}

func (PrimitiveTy) Kind() Kind  { return KindPrimitive }
func (*StructTy) Kind() Kind    { return KindStruct }
func (*UnionTy) Kind() Kind     { return KindUnion }
func (*EnumTy) Kind() Kind      { return KindEnum }
func (*TaggedTy) Kind() Kind    { return KindTagged }
func (*AliasTy) Kind() Kind     { return KindAlias }
func (*PunTy) Kind() Kind       { return KindPun }
func (ArrayTy) Kind() Kind      { return KindArray }
func (RefTy) Kind() Kind        { return KindRef }
func (EmptyTy) Kind() Kind      { return KindEmpty }
func (incompleteTy) Kind() Kind { return KindIncomplete }

// NominalName returns the declared name of a nominal type.
func NominalName(ty Ty) (ident.Ident, bool) {
	switch t := ty.(type) {
	case *StructTy:
		return t.Name, true
	case *UnionTy:
		return t.Name, true
	case *EnumTy:
		return t.Name, true
	case *TaggedTy:
		return t.Name, true
	case *AliasTy:
		return t.Name, true
	case *PunTy:
		return t.Name, true
	}
	return ident.Ident{}, false
}

// Attrs returns the attributes of a nominal type (nil for structural ones).
func Attrs(ty Ty) []syntax.Attr {
	switch t := ty.(type) {
	case *StructTy:
		return t.Attrs
	case *UnionTy:
		return t.Attrs
	case *EnumTy:
		return t.Attrs
	case *TaggedTy:
		return t.Attrs
	case *AliasTy:
		return t.Attrs
	case *PunTy:
		return t.Attrs
	}
	return nil
}
