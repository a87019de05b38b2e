// Package layout computes the C ABI size, alignment and field offsets of
// checked types for a concrete target triple. Puns are resolved for one
// language environment per engine, so the same program can lay out
// differently for each generated language.
package layout

import (
	"fmt"

	"abigen/internal/source"
	"abigen/internal/types"
)

// TypeLayout is the ABI layout of a type for a specific Target.
type TypeLayout struct {
	Size  int
	Align int

	// Struct and union only:
	FieldOffsets []int
	FieldAligns  []int

	// Enum and tagged only.
	TagSize       int
	TagAlign      int
	PayloadOffset int
}

// Program is the part of a checked program the engine reads.
type Program interface {
	RealizeTy(idx types.TyIdx) types.Ty
	FormatTy(idx types.TyIdx) string
}

// LayoutEngine computes memory layout for types. It is not safe for
// concurrent use; build one engine per target.
type LayoutEngine struct {
	Target Target
	Env    types.PunEnv
	Types  Program

	cache *cache
}

// New creates a new LayoutEngine for the specified target and pun
// environment.
func New(target Target, env types.PunEnv, prog Program) *LayoutEngine {
	return &LayoutEngine{
		Target: target,
		Env:    env,
		Types:  prog,
		cache:  newCache(),
	}
}

type layoutState struct {
	stack []types.TyIdx
	index map[types.TyIdx]int
}

func newLayoutState() *layoutState {
	return &layoutState{index: make(map[types.TyIdx]int, 16)}
}

// LayoutOf computes and caches the layout of a type.
func (e *LayoutEngine) LayoutOf(t types.TyIdx) (TypeLayout, error) {
	if e == nil || e.Types == nil {
		return TypeLayout{Size: 0, Align: 1}, nil
	}
	if e.cache == nil {
		e.cache = newCache()
	}
	l, err := e.layoutOf(t, newLayoutState())
	if err != nil {
		return l, err
	}
	return l, nil
}

func (e *LayoutEngine) layoutOf(t types.TyIdx, state *layoutState) (TypeLayout, *LayoutError) {
	if cached, ok := e.cache.get(t); ok {
		return cached.Layout, cached.Err
	}

	if idx, ok := state.index[t]; ok {
		cycle := make([]string, 0, len(state.stack)-idx+1)
		for _, id := range state.stack[idx:] {
			cycle = append(cycle, e.Types.FormatTy(id))
		}
		cycle = append(cycle, e.Types.FormatTy(t))
		err := e.errorFor(LayoutErrRecursiveUnsized, t)
		err.Cycle = cycle
		e.cache.put(t, &cacheEntry{Layout: TypeLayout{Size: 0, Align: 1}, Err: err})
		return TypeLayout{Size: 0, Align: 1}, err
	}

	state.index[t] = len(state.stack)
	state.stack = append(state.stack, t)
	l, err := e.computeLayout(t, state)
	state.stack = state.stack[:len(state.stack)-1]
	delete(state.index, t)

	e.cache.put(t, &cacheEntry{Layout: l, Err: err})
	return l, err
}

func (e *LayoutEngine) errorFor(kind LayoutErrorKind, t types.TyIdx) *LayoutError {
	err := &LayoutError{Kind: kind, Type: t, Name: e.Types.FormatTy(t), Span: source.NoSpan}
	if name, ok := types.NominalName(e.Types.RealizeTy(t)); ok {
		err.Span = name.Span
	}
	return err
}

// SizeOf returns the size of a type in bytes.
func (e *LayoutEngine) SizeOf(t types.TyIdx) (int, error) {
	l, err := e.LayoutOf(t)
	return l.Size, err
}

// AlignOf returns the alignment requirement of a type in bytes.
func (e *LayoutEngine) AlignOf(t types.TyIdx) (int, error) {
	l, err := e.LayoutOf(t)
	return l.Align, err
}

// FieldOffset returns the byte offset of a struct or union field.
func (e *LayoutEngine) FieldOffset(t types.TyIdx, fieldIdx int) (int, error) {
	l, err := e.LayoutOf(t)
	if err != nil {
		return 0, err
	}
	if fieldIdx < 0 || fieldIdx >= len(l.FieldOffsets) {
		return 0, fmt.Errorf("type %s has no field #%d", e.Types.FormatTy(t), fieldIdx)
	}
	return l.FieldOffsets[fieldIdx], nil
}
