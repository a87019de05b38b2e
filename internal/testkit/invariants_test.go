package testkit

import (
	"strings"
	"testing"

	"abigen/internal/ident"
	"abigen/internal/source"
	"abigen/internal/syntax"
)

func fixture() (*source.File, *syntax.ParsedProgram) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("t.toml", []byte(`name = "Node" type = "&Node"`))
	f := fs.Get(id)
	sp := func(start, end uint32) source.Span { return source.Span{File: id, Start: start, End: end} }

	ref := syntax.Ref(&syntax.TydentName{Name: ident.New("Node", sp(23, 27))})
	ref.Sp = sp(22, 27)
	prog := &syntax.ParsedProgram{
		Types: []syntax.TyDecl{&syntax.StructDecl{
			Name:   ident.New("Node", sp(8, 12)),
			Fields: []syntax.TypedVar{{Name: ident.Positional("field", 0, sp(22, 27)), Ty: ref}},
			Span:   sp(8, 12),
		}},
	}
	return f, prog
}

func TestCheckSpanInvariantsAccepts(t *testing.T) {
	f, prog := fixture()
	if err := CheckSpanInvariants(prog, f, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCheckSpanInvariantsRejects(t *testing.T) {
	f, prog := fixture()
	decl := prog.Types[0].(*syntax.StructDecl)
	decl.Name.Span.Start = 7
	err := CheckSpanInvariants(prog, f, false)
	if err == nil || !strings.Contains(err.Error(), `covers "\"Node"`) {
		t.Fatalf("err = %v", err)
	}

	f, prog = fixture()
	decl = prog.Types[0].(*syntax.StructDecl)
	decl.Name.Span = source.Span{File: f.ID}
	if err := CheckSpanInvariants(prog, f, false); err != nil {
		t.Fatalf("unlocated ident should pass when not strict: %v", err)
	}
	if err := CheckSpanInvariants(prog, f, true); err == nil {
		t.Fatalf("unlocated ident should fail when strict")
	}

	f, prog = fixture()
	decl = prog.Types[0].(*syntax.StructDecl)
	decl.Span.End = 99
	if err := CheckSpanInvariants(prog, f, false); err == nil || !strings.Contains(err.Error(), "outside content") {
		t.Fatalf("err = %v", err)
	}
}
