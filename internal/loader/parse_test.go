package loader

import (
	"testing"

	"abigen/internal/diag"
	"abigen/internal/source"
	"abigen/internal/syntax"
)

func TestParseTydent(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{"u32", "u32"},
		{" &Node ", "&Node"},
		{"[ &u8 ;16 ]", "[&u8; 16]"},
		{"[[f32; 2]; 3]", "[[f32; 2]; 3]"},
		{"&()", "&()"},
		{"( )", "()"},
		{"[&Café; 2]", "[&Café; 2]"},
		{"_x9", "_x9"},
	}
	for _, tc := range cases {
		ty, err := parseTydent(tc.src, source.Span{}, false)
		if err != nil {
			t.Fatalf("parseTydent(%q): %v", tc.src, err)
		}
		if got := ty.String(); got != tc.want {
			t.Fatalf("parseTydent(%q) = %q, want %q", tc.src, got, tc.want)
		}
	}
}

func TestParseTydentSpans(t *testing.T) {
	base := source.Span{File: 3, Start: 100, End: 107}
	ty, err := parseTydent("[&A; 2]", base, true)
	if err != nil {
		t.Fatalf("parseTydent: %v", err)
	}
	arr := ty.(*syntax.TydentArray)
	if arr.Sp != base {
		t.Fatalf("array span = %v, want %v", arr.Sp, base)
	}
	name := arr.Elem.(*syntax.TydentRef).Pointee.(*syntax.TydentName)
	if want := (source.Span{File: 3, Start: 102, End: 103}); name.Name.Span != want {
		t.Fatalf("name span = %v, want %v", name.Name.Span, want)
	}
}

func TestParseTydentErrors(t *testing.T) {
	cases := map[string]diag.Code{
		"":                           diag.PrsBadTypeRef,
		"[u8 4]":                     diag.PrsBadTypeRef,
		"[u8; ]":                     diag.PrsBadArrayLen,
		"(u8)":                       diag.PrsBadTypeRef,
		"u8,":                        diag.PrsBadTypeRef,
		"*const":                     diag.PrsBadTypeRef,
		"9u":                         diag.PrsBadTypeRef,
		"[u8; 99999999999999999999]": diag.PrsBadArrayLen,
	}
	for src, code := range cases {
		_, err := parseTydent(src, source.Span{}, false)
		d, ok := diag.AsDiagnostic(err)
		if !ok || d.Code != code {
			t.Fatalf("parseTydent(%q) = %v, want %s", src, err, code.ID())
		}
	}
}

func TestParseSelector(t *testing.T) {
	cases := []struct {
		src     string
		matches []string
		rejects []string
	}{
		{"default", []string{"c", "rust"}, nil},
		{"lang(rust)", []string{"rust"}, []string{"c"}},
		{"lang(c, c++)", []string{"c", "c++"}, []string{"rust"}},
		{"any(lang(c), lang(rust))", []string{"c", "rust"}, []string{"swift"}},
		{"all(lang(c), default)", []string{"c"}, []string{"rust"}},
		{"all(lang(c), lang(rust))", nil, []string{"c", "rust"}},
	}
	for _, tc := range cases {
		sel, err := parseSelector(tc.src, source.Span{}, false)
		if err != nil {
			t.Fatalf("parseSelector(%q): %v", tc.src, err)
		}
		for _, lang := range tc.matches {
			if !sel.Matches(lang) {
				t.Fatalf("%q should match %s", tc.src, lang)
			}
		}
		for _, lang := range tc.rejects {
			if sel.Matches(lang) {
				t.Fatalf("%q should not match %s", tc.src, lang)
			}
		}
	}
}

func TestParseSelectorErrors(t *testing.T) {
	for _, src := range []string{"", "lang()", "lang(c", "maybe(c)", "default extra", "any(lang(c),)"} {
		_, err := parseSelector(src, source.Span{}, false)
		d, ok := diag.AsDiagnostic(err)
		if !ok || d.Code != diag.PrsBadSelector {
			t.Fatalf("parseSelector(%q) = %v, want PrsBadSelector", src, err)
		}
	}
}

func TestParseAttr(t *testing.T) {
	cases := []struct {
		src  string
		want syntax.Attr
	}{
		{"@repr C", syntax.Attr{Kind: syntax.AttrRepr, Repr: []string{"C"}}},
		{"@repr transparent u8", syntax.Attr{Kind: syntax.AttrRepr, Repr: []string{"transparent", "u8"}}},
		{"@align 16", syntax.Attr{Kind: syntax.AttrAlign, Align: 16}},
		{"@packed", syntax.Attr{Kind: syntax.AttrPacked}},
		{"@derive Debug Clone", syntax.Attr{Kind: syntax.AttrDerive, Derive: []string{"Debug", "Clone"}}},
		{"@ #[must_use]", syntax.Attr{Kind: syntax.AttrPassthrough, Text: "#[must_use]"}},
	}
	for _, tc := range cases {
		got, err := parseAttr(tc.src, source.Span{})
		if err != nil {
			t.Fatalf("parseAttr(%q): %v", tc.src, err)
		}
		if got.String() != tc.want.String() || got.Kind != tc.want.Kind {
			t.Fatalf("parseAttr(%q) = %s, want %s", tc.src, got, tc.want)
		}
	}
	for _, src := range []string{"repr C", "@", "@align 3", "@align x", "@packed 1", "@derive", "@repr", "@unknown"} {
		if _, err := parseAttr(src, source.Span{}); err == nil {
			t.Fatalf("parseAttr(%q) should fail", src)
		}
	}
}
