package fuzztests

import (
	"context"
	"strings"
	"testing"
	"time"

	"abigen/internal/layout"
	"abigen/internal/loader"
	"abigen/internal/source"
	"abigen/internal/testkit"
	"abigen/internal/typeck"
	"abigen/internal/types"
)

// planTimeout bounds one input; exceeding it points at a loop in cycle
// handling.
const planTimeout = 5 * time.Second

func FuzzLoadAndPlan(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		input = clampInput(input)
		fs := source.NewFileSet()
		prog, err := loader.LoadString(fs, "fuzz.toml", string(input))
		if err != nil {
			return
		}
		if err := testkit.CheckSpanInvariants(prog, fs.Get(0), false); err != nil {
			t.Fatalf("span invariants: %v\ninput:\n%s", err, input)
		}
		typed, err := typeck.Check(prog, typeck.Options{})
		if err != nil {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), planTimeout)
		defer cancel()
		done := make(chan struct{})
		go func() {
			defer close(done)
			for _, lang := range []string{"c", "rust"} {
				g, err := typed.DefinitionGraph(types.PunEnv{Lang: lang})
				if err != nil {
					continue
				}
				defs := g.Definitions(typed.AllFuncs())
				le := layout.New(layout.X86_64LinuxGNU(), g.Env(), typed)
				for _, d := range defs {
					if d.Kind == typeck.DefineTy {
						_, _ = le.LayoutOf(d.Ty)
					}
				}
			}
		}()
		select {
		case <-done:
		case <-ctx.Done():
			t.Fatalf("planning did not finish within %v\ninput:\n%s", planTimeout, input)
		}
	})
}

// FuzzTypeRef feeds arbitrary text to the type reference parser through a
// function argument.
func FuzzTypeRef(f *testing.F) {
	for _, seed := range []string{"u8", "&&u32", "[[u8; 2]; 3]", "()", "[u8;", "&", "[u8; 18446744073709551616]"} {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, ref string) {
		if len(ref) > 256 || strings.ContainsAny(ref, "\"\\\n\r") {
			return
		}
		fs := source.NewFileSet()
		text := "[[func]]\nname = \"f\"\ninputs = [{ type = \"" + ref + "\" }]\n"
		prog, err := loader.LoadString(fs, "ref.toml", text)
		if err != nil {
			return
		}
		if err := testkit.CheckSpanInvariants(prog, fs.Get(0), false); err != nil {
			t.Fatalf("span invariants for %q: %v", ref, err)
		}
	})
}
