package layout

import (
	"math"

	"fortio.org/safecast"

	"abigen/internal/syntax"
	"abigen/internal/types"
)

func (e *LayoutEngine) computeLayout(id types.TyIdx, state *layoutState) (TypeLayout, *LayoutError) {
	switch ty := e.Types.RealizeTy(id).(type) {
	case types.PrimitiveTy:
		return e.primitiveLayout(ty.Prim), nil

	case types.RefTy:
		// Pointee is not visited: a reference breaks value recursion.
		return e.ptrLayout(), nil

	case types.EmptyTy:
		return TypeLayout{Size: 0, Align: 1}, nil

	case types.ArrayTy:
		return e.arrayFixedLayout(id, ty, state)

	case *types.AliasTy:
		return e.layoutOf(ty.Real, state)

	case *types.PunTy:
		resolved, err := types.ResolvePun(ty, e.Env)
		if err != nil {
			// Definition graphs reject unresolvable puns before layout runs.
			return TypeLayout{Size: 0, Align: 1}, nil
		}
		return e.layoutOf(resolved, state)

	case *types.StructTy:
		return e.structLayoutWithAttrs(id, ty.Fields, ty.Attrs, state)

	case *types.UnionTy:
		return e.unionLayout(id, ty, state)

	case *types.EnumTy:
		tag := e.tagLayout(ty.Attrs)
		return TypeLayout{Size: tag.Size, Align: tag.Align, TagSize: tag.Size, TagAlign: tag.Align}, nil

	case *types.TaggedTy:
		return e.tagUnionLayout(id, ty, state)

	default:
		return TypeLayout{Size: 0, Align: 1}, nil
	}
}

func (e *LayoutEngine) ptrLayout() TypeLayout {
	ptrSize := e.Target.PtrSize
	ptrAlign := e.Target.PtrAlign
	if ptrSize <= 0 {
		ptrSize = 8
	}
	if ptrAlign <= 0 {
		ptrAlign = ptrSize
	}
	return TypeLayout{Size: ptrSize, Align: ptrAlign}
}

func (e *LayoutEngine) primitiveLayout(p types.Primitive) TypeLayout {
	var size int
	switch p {
	case types.I8, types.U8, types.Bool:
		size = 1
	case types.I16, types.U16, types.F16:
		size = 2
	case types.I32, types.U32, types.F32:
		size = 4
	case types.I64, types.U64, types.F64:
		size = 8
	case types.I128, types.U128, types.F128:
		size = 16
	case types.I256, types.U256:
		size = 32
	case types.Ptr:
		return e.ptrLayout()
	}
	return e.scalarLayoutBytes(size)
}

func (e *LayoutEngine) scalarLayoutBytes(size int) TypeLayout {
	if size <= 0 {
		return TypeLayout{Size: 0, Align: 1}
	}
	align := size
	if limit := e.Target.MaxScalarAlign; limit > 0 && align > limit {
		align = limit
	}
	return TypeLayout{Size: size, Align: align}
}

func roundUp(n, align int) int {
	if align <= 1 {
		return n
	}
	r := n % align
	if r == 0 {
		return n
	}
	return n + (align - r)
}

// addSize and mulSize refuse results that would not fit an int.
func addSize(a, b int) (int, bool) {
	if b > math.MaxInt-a {
		return 0, false
	}
	return a + b, true
}

func mulSize(a, b int) (int, bool) {
	if a != 0 && b > math.MaxInt/a {
		return 0, false
	}
	return a * b, true
}

func (e *LayoutEngine) arrayFixedLayout(id types.TyIdx, arr types.ArrayTy, state *layoutState) (TypeLayout, *LayoutError) {
	elemLayout, err := e.layoutOf(arr.Elem, state)
	if err != nil {
		return TypeLayout{Size: 0, Align: 1}, err
	}
	elemAlign := max(elemLayout.Align, 1)
	stride := roundUp(elemLayout.Size, elemAlign)
	n, convErr := safecast.Conv[int](arr.Len)
	if convErr != nil {
		return TypeLayout{Size: 0, Align: 1}, e.errorFor(LayoutErrOverflow, id)
	}
	size, ok := mulSize(stride, n)
	if !ok {
		return TypeLayout{Size: 0, Align: 1}, e.errorFor(LayoutErrOverflow, id)
	}
	return TypeLayout{Size: size, Align: elemAlign}, nil
}

// layoutAttrs is the part of a declaration's attributes that changes
// placement.
type layoutAttrs struct {
	Packed        bool
	AlignOverride int // 0 when absent
}

func readLayoutAttrs(attrs []syntax.Attr) layoutAttrs {
	var out layoutAttrs
	for _, a := range attrs {
		switch a.Kind {
		case syntax.AttrPacked:
			out.Packed = true
		case syntax.AttrAlign:
			if n, err := safecast.Conv[int](a.Align); err == nil {
				out.AlignOverride = max(out.AlignOverride, n)
			}
		}
	}
	return out
}

func (e *LayoutEngine) structLayoutWithAttrs(id types.TyIdx, fields []types.Field, attrList []syntax.Attr, state *layoutState) (TypeLayout, *LayoutError) {
	attrs := readLayoutAttrs(attrList)
	if attrs.Packed && attrs.AlignOverride > 0 {
		return TypeLayout{Size: 0, Align: 1}, e.errorFor(LayoutErrAttrConflict, id)
	}

	offsets := make([]int, len(fields))
	aligns := make([]int, len(fields))
	size := 0
	align := 1
	for i := range fields {
		fl, err := e.layoutOf(fields[i].Ty, state)
		if err != nil {
			return TypeLayout{Size: 0, Align: 1}, err
		}
		fAlign := max(fl.Align, 1)
		if attrs.Packed {
			fAlign = 1
		}
		size = roundUp(size, fAlign)
		offsets[i] = size
		aligns[i] = fAlign
		var ok bool
		if size, ok = addSize(size, fl.Size); !ok {
			return TypeLayout{Size: 0, Align: 1}, e.errorFor(LayoutErrOverflow, id)
		}
		align = max(align, fAlign)
	}
	if attrs.AlignOverride > 0 {
		align = max(align, attrs.AlignOverride)
	}
	size = roundUp(size, align)
	return TypeLayout{
		Size:         size,
		Align:        align,
		FieldOffsets: offsets,
		FieldAligns:  aligns,
	}, nil
}

func (e *LayoutEngine) unionLayout(id types.TyIdx, u *types.UnionTy, state *layoutState) (TypeLayout, *LayoutError) {
	attrs := readLayoutAttrs(u.Attrs)
	if attrs.Packed && attrs.AlignOverride > 0 {
		return TypeLayout{Size: 0, Align: 1}, e.errorFor(LayoutErrAttrConflict, id)
	}
	offsets := make([]int, len(u.Fields))
	aligns := make([]int, len(u.Fields))
	size := 0
	align := 1
	for i, f := range u.Fields {
		fl, err := e.layoutOf(f.Ty, state)
		if err != nil {
			return TypeLayout{Size: 0, Align: 1}, err
		}
		aligns[i] = max(fl.Align, 1)
		if attrs.Packed {
			aligns[i] = 1
		}
		size = max(size, fl.Size)
		align = max(align, aligns[i])
	}
	if attrs.AlignOverride > 0 {
		align = max(align, attrs.AlignOverride)
	}
	return TypeLayout{
		Size:         roundUp(size, align),
		Align:        align,
		FieldOffsets: offsets,
		FieldAligns:  aligns,
	}, nil
}

// tagLayout picks the discriminant: the first integer primitive named by
// @repr, or u32.
func (e *LayoutEngine) tagLayout(attrs []syntax.Attr) TypeLayout {
	for _, a := range attrs {
		if a.Kind != syntax.AttrRepr {
			continue
		}
		for _, r := range a.Repr {
			p, ok := types.ParsePrimitive(r)
			if !ok || p == types.Bool || p == types.Ptr || (p >= types.F16 && p <= types.F128) {
				continue
			}
			return e.primitiveLayout(p)
		}
	}
	return e.scalarLayoutBytes(4)
}

func (e *LayoutEngine) tagUnionLayout(id types.TyIdx, t *types.TaggedTy, state *layoutState) (TypeLayout, *LayoutError) {
	attrs := readLayoutAttrs(t.Attrs)
	if attrs.Packed && attrs.AlignOverride > 0 {
		return TypeLayout{Size: 0, Align: 1}, e.errorFor(LayoutErrAttrConflict, id)
	}
	tag := e.tagLayout(t.Attrs)
	var payloadAttrs []syntax.Attr
	if attrs.Packed {
		tag.Align = 1
		payloadAttrs = []syntax.Attr{{Kind: syntax.AttrPacked}}
	}

	maxPayloadSize := 0
	payloadAlign := 1
	for _, v := range t.Variants {
		if len(v.Fields) == 0 {
			continue
		}
		// Each payload is laid out like an anonymous struct of its fields.
		pl, err := e.structLayoutWithAttrs(id, v.Fields, payloadAttrs, state)
		if err != nil {
			return TypeLayout{Size: 0, Align: 1}, err
		}
		maxPayloadSize = max(maxPayloadSize, pl.Size)
		payloadAlign = max(payloadAlign, pl.Align)
	}

	payloadOffset := roundUp(tag.Size, payloadAlign)
	overallAlign := max(tag.Align, payloadAlign, attrs.AlignOverride)
	total, ok := addSize(payloadOffset, maxPayloadSize)
	if !ok {
		return TypeLayout{Size: 0, Align: 1}, e.errorFor(LayoutErrOverflow, id)
	}
	return TypeLayout{
		Size:          roundUp(total, overallAlign),
		Align:         overallAlign,
		TagSize:       tag.Size,
		TagAlign:      tag.Align,
		PayloadOffset: payloadOffset,
	}, nil
}
