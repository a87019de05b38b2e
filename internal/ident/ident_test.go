package ident

import (
	"testing"

	"abigen/internal/source"
)

func TestIdentityIgnoresSpan(t *testing.T) {
	a := New("Point", source.Span{File: 0, Start: 3, End: 8})
	b := New("Point", source.Span{File: 2, Start: 40, End: 45})
	if !a.Equal(b) || a.Compare(b) != 0 || a.Key() != b.Key() {
		t.Fatalf("idents with the same name must be equal regardless of span")
	}
	if New("A", source.NoSpan).Compare(New("B", source.NoSpan)) >= 0 {
		t.Fatalf("expected A < B")
	}
}

func TestPositionalNames(t *testing.T) {
	id := Positional("arg", 2, source.NoSpan)
	if id.Name != "arg2" || !id.Generated {
		t.Fatalf("got %+v, want generated arg2", id)
	}
	if !id.Equal(New("arg2", source.NoSpan)) {
		t.Fatalf("generated flag must not affect identity")
	}
}

func TestIdentityNormalizesComposition(t *testing.T) {
	composed := New("caf\u00e9", source.NoSpan)
	decomposed := New("cafe\u0301", source.NoSpan)
	if !composed.Equal(decomposed) || composed.Key() != decomposed.Key() {
		t.Fatalf("composed and decomposed spellings must collide")
	}
	if decomposed.Name != "cafe\u0301" {
		t.Fatalf("Name must keep the written spelling, got %q", decomposed.Name)
	}
}
