package layout_test

import (
	"errors"
	"strings"
	"testing"

	"abigen/internal/diag"
	"abigen/internal/layout"
	"abigen/internal/loader"
	"abigen/internal/source"
	"abigen/internal/typeck"
	"abigen/internal/types"
)

const program = `
[[type]]
kind = "struct"
name = "Node"
attrs = ["@repr C"]
fields = [{ name = "next", type = "&Node" }, { name = "tag", type = "u8" }, { name = "value", type = "u64" }]

[[type]]
kind = "struct"
name = "Packed"
attrs = ["@packed"]
fields = [{ name = "a", type = "u8" }, { name = "b", type = "u32" }]

[[type]]
kind = "struct"
name = "Wide"
attrs = ["@align 32"]
fields = [{ name = "a", type = "u8" }]

[[type]]
kind = "union"
name = "Bits"
fields = [{ name = "f", type = "f32" }, { name = "raw", type = "[u8; 6]" }]

[[type]]
kind = "enum"
name = "Small"
attrs = ["@repr u8"]
variants = [{ name = "A" }, { name = "B" }]

[[type]]
kind = "enum"
name = "Color"
variants = [{ name = "Red" }]

[[type]]
kind = "tagged"
name = "Opt"
variants = [{ name = "None" }, { name = "Some", fields = [{ type = "u64" }] }]

[[type]]
kind = "pun"
name = "Word"
  [[type.block]]
  when = "lang(c)"
    [[type.block.type]]
    kind = "alias"
    name = "Word"
    target = "u16"
  [[type.block]]
  when = "default"
    [[type.block.type]]
    kind = "alias"
    name = "Word"
    target = "u64"
`

func check(t *testing.T, text string) *typeck.TypedProgram {
	t.Helper()
	fs := source.NewFileSet()
	parsed, err := loader.LoadString(fs, "layout.toml", text)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	p, err := typeck.Check(parsed, typeck.Options{})
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	return p
}

func lookup(t *testing.T, p *typeck.TypedProgram, name string) types.TyIdx {
	t.Helper()
	for _, idx := range p.Types() {
		if p.FormatTy(idx) == name {
			return idx
		}
	}
	t.Fatalf("type %s not found", name)
	return 0
}

func TestLayoutEngine_Program(t *testing.T) {
	p := check(t, program)
	le := layout.New(layout.X86_64LinuxGNU(), types.PunEnv{Lang: "c"}, p)

	cases := []struct {
		name         string
		size, align  int
		fieldOffsets []int
	}{
		{"Node", 24, 8, []int{0, 8, 16}},
		{"Packed", 5, 1, []int{0, 1}},
		{"Wide", 32, 32, []int{0}},
		{"Bits", 8, 4, []int{0, 0}},
		{"Small", 1, 1, nil},
		{"Color", 4, 4, nil},
		{"Opt", 16, 8, nil},
		{"Word", 2, 2, nil},
	}
	for _, tc := range cases {
		l, err := le.LayoutOf(lookup(t, p, tc.name))
		if err != nil {
			t.Fatalf("%s: unexpected layout error: %v", tc.name, err)
		}
		if l.Size != tc.size || l.Align != tc.align {
			t.Fatalf("%s: size=%d align=%d, want size=%d align=%d", tc.name, l.Size, l.Align, tc.size, tc.align)
		}
		if tc.fieldOffsets != nil && !equalInts(l.FieldOffsets, tc.fieldOffsets) {
			t.Fatalf("%s: offsets=%v, want %v", tc.name, l.FieldOffsets, tc.fieldOffsets)
		}
	}

	opt, err := le.LayoutOf(lookup(t, p, "Opt"))
	if err != nil {
		t.Fatalf("Opt: %v", err)
	}
	if opt.TagSize != 4 || opt.PayloadOffset != 8 {
		t.Fatalf("Opt tag=%d payload@%d, want tag=4 payload@8", opt.TagSize, opt.PayloadOffset)
	}
}

func TestLayoutEngine_PunFollowsEnv(t *testing.T) {
	p := check(t, program)
	le := layout.New(layout.X86_64LinuxGNU(), types.PunEnv{Lang: "rust"}, p)
	size, err := le.SizeOf(lookup(t, p, "Word"))
	if err != nil || size != 8 {
		t.Fatalf("rust Word size = %d, %v; want 8", size, err)
	}
}

func TestLayoutEngine_TargetPointerSize(t *testing.T) {
	p := check(t, program)
	target, err := layout.LookupTarget("I686-linux-gnu")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	le := layout.New(target, types.PunEnv{Lang: "c"}, p)
	node := lookup(t, p, "Node")
	l, err := le.LayoutOf(node)
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	// u64 is only 4-aligned on i686.
	if l.Size != 16 || l.Align != 4 {
		t.Fatalf("i686 Node size=%d align=%d, want 16/4", l.Size, l.Align)
	}
	if off, err := le.FieldOffset(node, 2); err != nil || off != 8 {
		t.Fatalf("value offset = %d, %v; want 8", off, err)
	}
	if _, err := le.FieldOffset(node, 3); err == nil {
		t.Fatalf("expected error for missing field")
	}
}

func TestLayoutEngine_RecursiveValueReportsError(t *testing.T) {
	p := check(t, `
[[type]]
kind = "struct"
name = "A"
fields = [{ name = "b", type = "B" }]

[[type]]
kind = "struct"
name = "B"
fields = [{ name = "a", type = "[A; 2]" }]
`)
	le := layout.New(layout.X86_64LinuxGNU(), types.PunEnv{Lang: "c"}, p)
	_, err := le.LayoutOf(lookup(t, p, "A"))
	if err == nil {
		t.Fatal("expected recursive layout error, got nil")
	}
	var lerr *layout.LayoutError
	if !errors.As(err, &lerr) {
		t.Fatalf("expected *layout.LayoutError, got %T (%v)", err, err)
	}
	if lerr.Kind != layout.LayoutErrRecursiveUnsized {
		t.Fatalf("expected LayoutErrRecursiveUnsized, got kind=%d (%v)", lerr.Kind, lerr)
	}
	if got := strings.Join(lerr.Cycle, " -> "); got != "A -> B -> [A; 2] -> A" {
		t.Fatalf("cycle = %q", got)
	}
	d, ok := diag.AsDiagnostic(err)
	if !ok || d.Code != diag.TypRecursiveUnsized {
		t.Fatalf("diagnostic = %+v, %v", d, ok)
	}
	if _, err := le.SizeOf(lookup(t, p, "B")); err == nil {
		t.Fatal("B contains A by value and must fail too")
	}
}

func TestLayoutEngine_RecursiveReferenceStructIsSized(t *testing.T) {
	p := check(t, `
[[type]]
kind = "struct"
name = "Node"
fields = [{ name = "next", type = "&Node" }]
`)
	le := layout.New(layout.X86_64LinuxGNU(), types.PunEnv{Lang: "c"}, p)
	l, err := le.LayoutOf(lookup(t, p, "Node"))
	if err != nil {
		t.Fatalf("unexpected layout error: %v", err)
	}
	if l.Size != 8 || l.Align != 8 {
		t.Fatalf("expected Node layout size=8 align=8, got size=%d align=%d", l.Size, l.Align)
	}
}

func TestLayoutEngine_PackedAlignConflict(t *testing.T) {
	for _, kind := range []string{"struct", "union", "tagged"} {
		t.Run(kind, func(t *testing.T) {
			members := `fields = [{ name = "a", type = "u8" }]`
			if kind == "tagged" {
				members = `variants = [{ name = "A", fields = [{ type = "u64" }] }]`
			}
			p := check(t, "[[type]]\nkind = \""+kind+"\"\nname = \"Bad\"\nattrs = [\"@packed\", \"@align 8\"]\n"+members+"\n")
			le := layout.New(layout.X86_64LinuxGNU(), types.PunEnv{Lang: "c"}, p)
			_, err := le.LayoutOf(lookup(t, p, "Bad"))
			d, ok := diag.AsDiagnostic(err)
			if !ok || d.Code != diag.TypLayoutAttrConflict {
				t.Fatalf("err = %v", err)
			}
		})
	}
}

func TestLayoutEngine_PackedTaggedUnion(t *testing.T) {
	p := check(t, `
[[type]]
kind = "tagged"
name = "Msg"
attrs = ["@packed", "@repr u8"]
variants = [{ name = "Empty" }, { name = "Data", fields = [{ type = "u64" }, { type = "u16" }] }]
`)
	le := layout.New(layout.X86_64LinuxGNU(), types.PunEnv{Lang: "c"}, p)
	l, err := le.LayoutOf(lookup(t, p, "Msg"))
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	if l.Size != 11 || l.Align != 1 || l.TagSize != 1 || l.TagAlign != 1 || l.PayloadOffset != 1 {
		t.Fatalf("Msg layout = %+v, want size=11 align=1 tag=1 payload@1", l)
	}
}

func TestLookupTargetUnknown(t *testing.T) {
	_, err := layout.LookupTarget("sparc-sun-solaris")
	if err == nil || !strings.Contains(err.Error(), "x86_64-linux-gnu") {
		t.Fatalf("err = %v", err)
	}
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
