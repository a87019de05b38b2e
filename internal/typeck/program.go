package typeck

import (
	"fmt"

	"fortio.org/safecast"

	"abigen/internal/ident"
	"abigen/internal/syntax"
	"abigen/internal/types"
)

type FuncIdx uint32

// Arg is a resolved function input or output.
type Arg struct {
	Ident ident.Ident
	Ty    types.TyIdx
}

// Func is a resolved function signature.
type Func struct {
	Name    ident.Ident
	Inputs  []Arg
	Outputs []Arg
	Attrs   []syntax.Attr
}

// TypedProgram is the immutable result of Check. It may be shared between
// goroutines once built.
type TypedProgram struct {
	tys               *types.Table
	funcs             []Func
	builtinFuncsStart int
}

// RealizeTy returns the shape of idx. It panics on an index this program
// never allocated.
func (p *TypedProgram) RealizeTy(idx types.TyIdx) types.Ty {
	return p.tys.Realize(idx)
}

// RealizeFunc returns the signature of idx.
func (p *TypedProgram) RealizeFunc(idx FuncIdx) *Func {
	if int(idx) >= len(p.funcs) {
		panic(fmt.Errorf("typeck: FuncIdx %d out of range (%d funcs)", idx, len(p.funcs)))
	}
	return &p.funcs[idx]
}

// AllFuncs returns the user functions in declaration order. Synthesized
// builtins are excluded.
func (p *TypedProgram) AllFuncs() []FuncIdx {
	out := make([]FuncIdx, p.builtinFuncsStart)
	for i := range out {
		out[i] = toFuncIdx(i)
	}
	return out
}

// Funcs returns every function, builtins included.
func (p *TypedProgram) Funcs() []FuncIdx {
	out := make([]FuncIdx, len(p.funcs))
	for i := range out {
		out[i] = toFuncIdx(i)
	}
	return out
}

// NumFuncs counts every function, builtins included.
func (p *TypedProgram) NumFuncs() int {
	return len(p.funcs)
}

// Types returns every TyIdx in allocation order.
func (p *TypedProgram) Types() []types.TyIdx {
	return p.tys.All()
}

// NumTypes returns the size of the type table.
func (p *TypedProgram) NumTypes() int {
	return p.tys.Len()
}

// LookupFunc finds a function by name.
func (p *TypedProgram) LookupFunc(name string) (FuncIdx, bool) {
	key := ident.KeyOf(name)
	for i := range p.funcs {
		if p.funcs[i].Name.Key() == key {
			return toFuncIdx(i), true
		}
	}
	return 0, false
}

// ResolvePun picks the block of pun that applies to env.
func (p *TypedProgram) ResolvePun(pun *types.PunTy, env types.PunEnv) (types.TyIdx, error) {
	return types.ResolvePun(pun, env)
}

// FormatTy renders idx as it would be written in a program description.
func (p *TypedProgram) FormatTy(idx types.TyIdx) string {
	return p.tys.Format(idx)
}

func toFuncIdx(i int) FuncIdx {
	idx, err := safecast.Conv[FuncIdx](i)
	if err != nil {
		panic(fmt.Errorf("func index overflow: %w", err))
	}
	return idx
}
