package typeck

import (
	"fmt"

	"abigen/internal/diag"
	"abigen/internal/ident"
	"abigen/internal/syntax"
	"abigen/internal/types"
)

type scope map[string]types.TyIdx

// TyCtx holds the mutable state of one checking pass: the type table and the
// stack of lexical scopes. It is not safe for concurrent use.
type TyCtx struct {
	tys    *types.Table
	scopes []scope
}

func newTyCtx() *TyCtx {
	return &TyCtx{
		tys:    types.NewTable(),
		scopes: []scope{make(scope)},
	}
}

// AddBuiltins binds every primitive name and "()" in the current scope.
// Builtins go through the structural memo, so a later "u32" or "()" written
// as syntax resolves to the same TyIdx.
func (c *TyCtx) AddBuiltins() {
	for _, p := range types.Primitives() {
		c.bind(p.String(), c.memoizeInner(types.PrimitiveTy{Prim: p}))
	}
	c.bind("()", c.memoizeInner(types.EmptyTy{}))
}

func (c *TyCtx) pushScope() {
	c.scopes = append(c.scopes, make(scope))
}

func (c *TyCtx) popScope() {
	if len(c.scopes) == 1 {
		panic("typeck: popped the builtin scope")
	}
	c.scopes = c.scopes[:len(c.scopes)-1]
}

func (c *TyCtx) bind(name string, idx types.TyIdx) {
	c.scopes[len(c.scopes)-1][name] = idx
}

// PushNominalDeclIncomplete reserves a slot for name in the innermost scope.
// The returned TyIdx never changes; CompleteNominalDecl fills the slot later.
func (c *TyCtx) PushNominalDeclIncomplete(name ident.Ident) types.TyIdx {
	inner := c.scopes[len(c.scopes)-1]
	if _, dup := inner[name.Key()]; dup {
		panic(fmt.Errorf("typeck: %q reserved twice in one scope", name.Name))
	}
	idx := c.tys.Reserve(name)
	inner[name.Key()] = idx
	return idx
}

// CompleteNominalDecl resolves the body of decl and overwrites the slot that
// was reserved for its name in the innermost scope.
func (c *TyCtx) CompleteNominalDecl(decl syntax.TyDecl) error {
	name := decl.DeclName()
	idx, ok := c.scopes[len(c.scopes)-1][name.Key()]
	if !ok {
		panic(fmt.Errorf("typeck: %q completed without a reservation", name.Name))
	}
	ty, err := c.resolveDecl(decl)
	if err != nil {
		return err
	}
	c.tys.Complete(idx, ty)
	return nil
}

func (c *TyCtx) resolveDecl(decl syntax.TyDecl) (types.Ty, error) {
	switch d := decl.(type) {
	case *syntax.StructDecl:
		fields, err := c.resolveFields(d.Fields)
		if err != nil {
			return nil, err
		}
		return &types.StructTy{
			Name:          d.Name,
			Fields:        fields,
			Attrs:         d.Attrs,
			AllPositional: allPositional(d.Fields),
		}, nil
	case *syntax.UnionDecl:
		fields, err := c.resolveFields(d.Fields)
		if err != nil {
			return nil, err
		}
		return &types.UnionTy{Name: d.Name, Fields: fields, Attrs: d.Attrs}, nil
	case *syntax.EnumDecl:
		variants := make([]types.EnumVariant, len(d.Variants))
		for i, v := range d.Variants {
			variants[i] = types.EnumVariant{Name: v.Name, Value: v.Value}
		}
		return &types.EnumTy{Name: d.Name, Variants: variants, Attrs: d.Attrs}, nil
	case *syntax.TaggedDecl:
		variants := make([]types.TaggedVariant, len(d.Variants))
		for i, v := range d.Variants {
			variants[i].Name = v.Name
			if v.Fields == nil {
				continue
			}
			fields, err := c.resolveFields(v.Fields)
			if err != nil {
				return nil, err
			}
			variants[i].Fields = fields
			variants[i].AllPositional = allPositional(v.Fields)
		}
		return &types.TaggedTy{Name: d.Name, Variants: variants, Attrs: d.Attrs}, nil
	case *syntax.AliasDecl:
		target, err := c.MemoizeTy(d.Target)
		if err != nil {
			return nil, err
		}
		return &types.AliasTy{Name: d.Name, Real: target, Attrs: d.Attrs}, nil
	case *syntax.PunDecl:
		blocks := make([]types.PunBlock, len(d.Blocks))
		for i, b := range d.Blocks {
			target, err := c.resolvePunBlock(b)
			if err != nil {
				return nil, err
			}
			blocks[i] = types.PunBlock{Selector: b.Selector, Real: target}
		}
		return &types.PunTy{Name: d.Name, Blocks: blocks, Attrs: d.Attrs}, nil
	default:
		panic(fmt.Errorf("typeck: unexpected declaration %T", decl))
	}
}

// resolvePunBlock checks the block's single declaration in its own scope so
// nothing it declares is visible to sibling blocks or the outer program.
func (c *TyCtx) resolvePunBlock(b syntax.PunBlock) (types.TyIdx, error) {
	c.pushScope()
	defer c.popScope()
	idx := c.PushNominalDeclIncomplete(b.Decl.DeclName())
	if err := c.CompleteNominalDecl(b.Decl); err != nil {
		return 0, err
	}
	return idx, nil
}

func (c *TyCtx) resolveFields(vars []syntax.TypedVar) ([]types.Field, error) {
	fields := make([]types.Field, len(vars))
	for i, v := range vars {
		ty, err := c.MemoizeTy(v.Ty)
		if err != nil {
			return nil, err
		}
		fields[i] = types.Field{Ident: v.Name, Ty: ty}
	}
	return fields, nil
}

func allPositional(vars []syntax.TypedVar) bool {
	if len(vars) == 0 {
		return false
	}
	for _, v := range vars {
		if !v.Name.Generated {
			return false
		}
	}
	return true
}

// MemoizeTy resolves one syntactic type reference to its TyIdx.
func (c *TyCtx) MemoizeTy(t syntax.Tydent) (types.TyIdx, error) {
	switch t := t.(type) {
	case *syntax.TydentName:
		idx, ok := c.ResolveNominalTy(t.Name)
		if !ok {
			return 0, diag.Errorf(diag.TypUndefinedName, t.Name.Span,
				"use of undefined type name %q", t.Name.Name)
		}
		return idx, nil
	case *syntax.TydentRef:
		pointee, err := c.MemoizeTy(t.Pointee)
		if err != nil {
			return 0, err
		}
		return c.memoizeInner(types.RefTy{Pointee: pointee}), nil
	case *syntax.TydentArray:
		elem, err := c.MemoizeTy(t.Elem)
		if err != nil {
			return 0, err
		}
		return c.memoizeInner(types.ArrayTy{Elem: elem, Len: t.Len}), nil
	case *syntax.TydentEmpty:
		return c.memoizeInner(types.EmptyTy{}), nil
	default:
		panic(fmt.Errorf("typeck: unexpected type reference %T", t))
	}
}

// memoizeInner interns a structural shape.
func (c *TyCtx) memoizeInner(ty types.Ty) types.TyIdx {
	return c.tys.Intern(ty)
}

// ResolveNominalTy searches the scope stack innermost-first.
func (c *TyCtx) ResolveNominalTy(name ident.Ident) (types.TyIdx, bool) {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if idx, ok := c.scopes[i][name.Key()]; ok {
			return idx, true
		}
	}
	return 0, false
}
