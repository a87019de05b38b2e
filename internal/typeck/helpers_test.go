package typeck

import (
	"testing"

	"abigen/internal/ident"
	"abigen/internal/source"
	"abigen/internal/syntax"
	"abigen/internal/types"
)

func id(name string) ident.Ident {
	return ident.New(name, source.NoSpan)
}

func field(name string, ty syntax.Tydent) syntax.TypedVar {
	return syntax.TypedVar{Name: id(name), Ty: ty}
}

func structDecl(name string, fields ...syntax.TypedVar) *syntax.StructDecl {
	return &syntax.StructDecl{Name: id(name), Fields: fields}
}

func aliasDecl(name string, target syntax.Tydent) *syntax.AliasDecl {
	return &syntax.AliasDecl{Name: id(name), Target: target}
}

func punDecl(name string, blocks ...syntax.PunBlock) *syntax.PunDecl {
	return &syntax.PunDecl{Name: id(name), Blocks: blocks}
}

func block(sel syntax.Selector, decl syntax.TyDecl) syntax.PunBlock {
	return syntax.PunBlock{Selector: sel, Decl: decl}
}

func fn(name string, inputs ...syntax.TypedVar) *syntax.FuncDecl {
	return &syntax.FuncDecl{Name: id(name), Inputs: inputs}
}

func program(decls []syntax.TyDecl, funcs ...*syntax.FuncDecl) *syntax.ParsedProgram {
	return &syntax.ParsedProgram{Types: decls, Funcs: funcs, BuiltinFuncsStart: len(funcs)}
}

func mustCheck(t *testing.T, prog *syntax.ParsedProgram) *TypedProgram {
	t.Helper()
	typed, err := Check(prog, Options{})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	return typed
}

func mustFunc(t *testing.T, p *TypedProgram, name string) FuncIdx {
	t.Helper()
	idx, ok := p.LookupFunc(name)
	if !ok {
		t.Fatalf("func %q not found", name)
	}
	return idx
}

func mustType(t *testing.T, p *TypedProgram, name string) types.TyIdx {
	t.Helper()
	for _, idx := range p.Types() {
		if n, ok := types.NominalName(p.RealizeTy(idx)); ok && n.Name == name {
			return idx
		}
	}
	t.Fatalf("type %q not found", name)
	return 0
}

// firstInput returns the type of the first input of the named function.
func firstInput(t *testing.T, p *TypedProgram, name string) types.TyIdx {
	t.Helper()
	f := p.RealizeFunc(mustFunc(t, p, name))
	if len(f.Inputs) == 0 {
		t.Fatalf("func %q has no inputs", name)
	}
	return f.Inputs[0].Ty
}

func indexOf(defs []Definition, want Definition) int {
	for i, d := range defs {
		if d == want {
			return i
		}
	}
	return -1
}

func defineTy(idx types.TyIdx) Definition {
	return Definition{Kind: DefineTy, Ty: idx}
}

func declareTy(idx types.TyIdx) Definition {
	return Definition{Kind: DeclareTy, Ty: idx}
}

func defineFunc(idx FuncIdx) Definition {
	return Definition{Kind: DefineFunc, Func: idx}
}
