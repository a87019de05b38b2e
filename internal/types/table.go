package types

import (
	"fmt"
	"strings"

	"fortio.org/safecast"

	"abigen/internal/ident"
)

// Table is the arena of resolved types. Structural shapes are interned so an
// identical shape always yields the same TyIdx; nominal types get a fresh
// slot per declaration via Reserve and are filled in later by Complete.
type Table struct {
	tys   []Ty
	index map[shapeKey]TyIdx
}

// NewTable returns an empty table. Builtins are seeded by the checker.
func NewTable() *Table {
	return &Table{
		tys:   make([]Ty, 0, 64),
		index: make(map[shapeKey]TyIdx, 64),
	}
}

type shapeKey struct {
	Kind Kind
	Prim Primitive
	Elem TyIdx
	Len  uint64
}

func keyOf(ty Ty) shapeKey {
	switch t := ty.(type) {
	case PrimitiveTy:
		return shapeKey{Kind: KindPrimitive, Prim: t.Prim}
	case ArrayTy:
		return shapeKey{Kind: KindArray, Elem: t.Elem, Len: t.Len}
	case RefTy:
		return shapeKey{Kind: KindRef, Elem: t.Pointee}
	case EmptyTy:
		return shapeKey{Kind: KindEmpty}
	}
	panic(fmt.Errorf("types: %s is not a structural type", ty.Kind()))
}

// Intern returns the TyIdx for a structural shape, allocating it on first use.
func (t *Table) Intern(ty Ty) TyIdx {
	key := keyOf(ty)
	if idx, ok := t.index[key]; ok {
		return idx
	}
	idx := t.push(ty)
	t.index[key] = idx
	return idx
}

// Reserve allocates a nominal slot with placeholder content.
func (t *Table) Reserve(name ident.Ident) TyIdx {
	return t.push(incompleteTy{Name: name})
}

// Complete overwrites a reserved slot with its real content. Completing a
// slot twice or with a structural shape is a checker bug.
func (t *Table) Complete(idx TyIdx, ty Ty) {
	t.checkRange(idx)
	if _, ok := t.tys[idx].(incompleteTy); !ok {
		panic(fmt.Errorf("types: TyIdx %d completed twice", idx))
	}
	if !ty.Kind().Nominal() {
		panic(fmt.Errorf("types: cannot complete TyIdx %d with %s", idx, ty.Kind()))
	}
	t.tys[idx] = ty
}

// IsComplete reports whether idx holds real content.
func (t *Table) IsComplete(idx TyIdx) bool {
	t.checkRange(idx)
	_, incomplete := t.tys[idx].(incompleteTy)
	return !incomplete
}

// Realize returns the shape stored at idx. Asking for a slot that is still a
// placeholder, or for an index that was never allocated, is a checker bug.
func (t *Table) Realize(idx TyIdx) Ty {
	t.checkRange(idx)
	ty := t.tys[idx]
	if inc, ok := ty.(incompleteTy); ok {
		panic(fmt.Errorf("types: TyIdx %d (%s) realized before completion", idx, inc.Name))
	}
	return ty
}

// Len returns the number of allocated slots; valid indices are [0, Len).
func (t *Table) Len() int {
	return len(t.tys)
}

// All returns every TyIdx in allocation order.
func (t *Table) All() []TyIdx {
	out := make([]TyIdx, len(t.tys))
	for i := range t.tys {
		out[i] = TyIdx(i)
	}
	return out
}

// Format renders idx the way it would be written in a program description.
func (t *Table) Format(idx TyIdx) string {
	var sb strings.Builder
	t.format(&sb, idx)
	return sb.String()
}

func (t *Table) format(sb *strings.Builder, idx TyIdx) {
	t.checkRange(idx)
	switch ty := t.tys[idx].(type) {
	case PrimitiveTy:
		sb.WriteString(ty.Prim.String())
	case ArrayTy:
		sb.WriteByte('[')
		t.format(sb, ty.Elem)
		fmt.Fprintf(sb, "; %d]", ty.Len)
	case RefTy:
		sb.WriteByte('&')
		t.format(sb, ty.Pointee)
	case EmptyTy:
		sb.WriteString("()")
	case incompleteTy:
		sb.WriteString(ty.Name.Name)
	default:
		name, _ := NominalName(ty)
		sb.WriteString(name.Name)
	}
}

func (t *Table) push(ty Ty) TyIdx {
	n, err := safecast.Conv[uint32](len(t.tys))
	if err != nil {
		panic(fmt.Errorf("len(tys) overflow: %w", err))
	}
	t.tys = append(t.tys, ty)
	return TyIdx(n)
}

func (t *Table) checkRange(idx TyIdx) {
	if int(idx) >= len(t.tys) {
		panic(fmt.Errorf("types: TyIdx %d out of range (%d types)", idx, len(t.tys)))
	}
}
