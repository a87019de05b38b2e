package typeck

import (
	"fmt"

	"abigen/internal/diag"
	"abigen/internal/syntax"
	"abigen/internal/trace"
)

// Options configure Check.
type Options struct {
	Tracer trace.Tracer
	Parent uint64 // enclosing span id, 0 for none
}

// Check resolves prog into a TypedProgram. The first user error aborts the
// whole pass and is returned as a *diag.Error.
func Check(prog *syntax.ParsedProgram, opts Options) (*TypedProgram, error) {
	span := trace.Begin(opts.Tracer, trace.ScopePass, "typeck", opts.Parent)
	typed, err := check(prog)
	if err != nil {
		span.End("error")
		return nil, err
	}
	span.WithExtra("types", fmt.Sprint(typed.NumTypes())).
		WithExtra("funcs", fmt.Sprint(typed.NumFuncs())).
		End("ok")
	return typed, nil
}

func check(prog *syntax.ParsedProgram) (*TypedProgram, error) {
	if prog.BuiltinFuncsStart < 0 || prog.BuiltinFuncsStart > len(prog.Funcs) {
		panic(fmt.Errorf("typeck: BuiltinFuncsStart %d outside [0, %d]", prog.BuiltinFuncsStart, len(prog.Funcs)))
	}
	if err := checkUniqueTypes(prog.Types); err != nil {
		return nil, err
	}

	c := newTyCtx()
	c.AddBuiltins()
	c.pushScope()

	for _, decl := range prog.Types {
		c.PushNominalDeclIncomplete(decl.DeclName())
	}
	for _, decl := range prog.Types {
		if err := c.CompleteNominalDecl(decl); err != nil {
			return nil, err
		}
	}
	for _, idx := range c.tys.All() {
		if !c.tys.IsComplete(idx) {
			panic(fmt.Errorf("typeck: TyIdx %d reserved but never completed", idx))
		}
	}

	funcs := make([]Func, len(prog.Funcs))
	for i, fn := range prog.Funcs {
		inputs, err := c.resolveArgs(fn.Inputs)
		if err != nil {
			return nil, err
		}
		outputs, err := c.resolveArgs(fn.Outputs)
		if err != nil {
			return nil, err
		}
		funcs[i] = Func{Name: fn.Name, Inputs: inputs, Outputs: outputs, Attrs: fn.Attrs}
	}

	return &TypedProgram{
		tys:               c.tys,
		funcs:             funcs,
		builtinFuncsStart: prog.BuiltinFuncsStart,
	}, nil
}

func (c *TyCtx) resolveArgs(vars []syntax.TypedVar) ([]Arg, error) {
	args := make([]Arg, len(vars))
	for i, v := range vars {
		ty, err := c.MemoizeTy(v.Ty)
		if err != nil {
			return nil, err
		}
		args[i] = Arg{Ident: v.Name, Ty: ty}
	}
	return args, nil
}

// checkUniqueTypes guards programs built without the loader, which already
// rejects duplicates with a better message.
func checkUniqueTypes(decls []syntax.TyDecl) error {
	seen := make(map[string]syntax.TyDecl, len(decls))
	for _, decl := range decls {
		name := decl.DeclName()
		if prev, dup := seen[name.Key()]; dup {
			return diag.Errorf(diag.PrsDuplicateType, name.Span, "type %q is declared twice", name.Name).
				WithNote(prev.DeclName().Span, "previous declaration here")
		}
		seen[name.Key()] = decl
	}
	return nil
}
