package types

import (
	"testing"

	"abigen/internal/diag"
	"abigen/internal/ident"
	"abigen/internal/syntax"
)

func TestTableInternDeduplicatesShapes(t *testing.T) {
	tab := NewTable()
	u32 := tab.Intern(PrimitiveTy{Prim: U32})
	if again := tab.Intern(PrimitiveTy{Prim: U32}); again != u32 {
		t.Fatalf("primitive u32 interned twice: %d vs %d", u32, again)
	}
	arr1 := tab.Intern(ArrayTy{Elem: u32, Len: 4})
	arr2 := tab.Intern(ArrayTy{Elem: u32, Len: 4})
	if arr1 != arr2 {
		t.Fatalf("array shapes should be deduplicated")
	}
	if arr3 := tab.Intern(ArrayTy{Elem: u32, Len: 5}); arr3 == arr1 {
		t.Fatalf("array length must affect identity")
	}
	ref1 := tab.Intern(RefTy{Pointee: arr1})
	if ref2 := tab.Intern(RefTy{Pointee: arr2}); ref1 != ref2 {
		t.Fatalf("ref shapes should be deduplicated")
	}
	if tab.Intern(EmptyTy{}) != tab.Intern(EmptyTy{}) {
		t.Fatalf("empty tuple should be interned once")
	}
	if got := tab.Intern(ArrayTy{Elem: u32, Len: 4}); got != arr1 {
		t.Fatalf("re-interning [u32; 4] = %d, want %d", got, arr1)
	}
}

func TestTableReserveNeverDeduplicates(t *testing.T) {
	tab := NewTable()
	a := tab.Reserve(ident.New("Point", noSpan))
	b := tab.Reserve(ident.New("Point", noSpan))
	if a == b {
		t.Fatalf("nominal reservations must be distinct")
	}
	if tab.IsComplete(a) {
		t.Fatalf("reserved slot should be incomplete")
	}
	tab.Complete(a, &StructTy{Name: ident.New("Point", noSpan)})
	if !tab.IsComplete(a) {
		t.Fatalf("slot should be complete")
	}
	if _, ok := tab.Realize(a).(*StructTy); !ok {
		t.Fatalf("expected *StructTy, got %T", tab.Realize(a))
	}
}

func TestTableRealizeIncompletePanics(t *testing.T) {
	tab := NewTable()
	idx := tab.Reserve(ident.New("Later", noSpan))
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic realizing an incomplete slot")
		}
	}()
	_ = tab.Realize(idx)
}

func TestTableRealizeOutOfRangePanics(t *testing.T) {
	tab := NewTable()
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for out of range TyIdx")
		}
	}()
	_ = tab.Realize(TyIdx(3))
}

func TestTableCompleteTwicePanics(t *testing.T) {
	tab := NewTable()
	idx := tab.Reserve(ident.New("A", noSpan))
	tab.Complete(idx, &AliasTy{Name: ident.New("A", noSpan)})
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on second Complete")
		}
	}()
	tab.Complete(idx, &AliasTy{Name: ident.New("A", noSpan)})
}

func TestTableFormat(t *testing.T) {
	tab := NewTable()
	u8 := tab.Intern(PrimitiveTy{Prim: U8})
	node := tab.Reserve(ident.New("Node", noSpan))
	tab.Complete(node, &StructTy{Name: ident.New("Node", noSpan)})
	arr := tab.Intern(ArrayTy{Elem: tab.Intern(RefTy{Pointee: node}), Len: 3})
	cases := []struct {
		idx  TyIdx
		want string
	}{
		{u8, "u8"},
		{node, "Node"},
		{arr, "[&Node; 3]"},
		{tab.Intern(EmptyTy{}), "()"},
	}
	for _, tc := range cases {
		if got := tab.Format(tc.idx); got != tc.want {
			t.Fatalf("Format(%d) = %q, want %q", tc.idx, got, tc.want)
		}
	}
}

func TestResolvePunFirstMatchWins(t *testing.T) {
	pun := &PunTy{
		Name: ident.New("Word", noSpan),
		Blocks: []PunBlock{
			{Selector: syntax.SelectorLang{Lang: "rust"}, Real: 1},
			{Selector: syntax.Langs("c", "rust"), Real: 2},
			{Selector: syntax.SelectorDefault{}, Real: 3},
		},
	}
	cases := map[string]TyIdx{"rust": 1, "c": 2, "cpp": 3}
	for lang, want := range cases {
		got, err := ResolvePun(pun, PunEnv{Lang: lang})
		if err != nil {
			t.Fatalf("ResolvePun(%s): %v", lang, err)
		}
		if got != want {
			t.Fatalf("ResolvePun(%s) = %d, want %d", lang, got, want)
		}
	}
}

func TestResolvePunNoMatch(t *testing.T) {
	pun := &PunTy{
		Name:   ident.New("Word", noSpan),
		Blocks: []PunBlock{{Selector: syntax.SelectorLang{Lang: "c"}, Real: 1}},
	}
	_, err := ResolvePun(pun, PunEnv{Lang: "rust"})
	if err == nil {
		t.Fatalf("expected error")
	}
	d, ok := diag.AsDiagnostic(err)
	if !ok {
		t.Fatalf("expected diagnostic error, got %T", err)
	}
	if d.Code != diag.TypPunNoMatch {
		t.Fatalf("code = %v, want TypPunNoMatch", d.Code)
	}
	if len(d.Fixes) == 0 {
		t.Fatalf("expected a fix suggestion")
	}
}

func TestParsePrimitive(t *testing.T) {
	for _, p := range Primitives() {
		got, ok := ParsePrimitive(p.String())
		if !ok || got != p {
			t.Fatalf("ParsePrimitive(%q) = %v,%v", p.String(), got, ok)
		}
	}
	if _, ok := ParsePrimitive("u7"); ok {
		t.Fatalf("u7 is not a primitive")
	}
}
