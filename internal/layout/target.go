package layout

import (
	"fmt"
	"sort"
	"strings"
)

// Target describes the ABI target triple and its pointer properties.
type Target struct {
	Triple   string // e.g. "x86_64-linux-gnu"
	PtrSize  int    // bytes
	PtrAlign int    // bytes
	// MaxScalarAlign caps the natural alignment of wide scalars
	// (i686 aligns u64 and f64 to 4).
	MaxScalarAlign int
}

var targets = map[string]Target{
	"x86_64-linux-gnu":       {Triple: "x86_64-linux-gnu", PtrSize: 8, PtrAlign: 8, MaxScalarAlign: 16},
	"aarch64-linux-gnu":      {Triple: "aarch64-linux-gnu", PtrSize: 8, PtrAlign: 8, MaxScalarAlign: 16},
	"i686-linux-gnu":         {Triple: "i686-linux-gnu", PtrSize: 4, PtrAlign: 4, MaxScalarAlign: 4},
	"armv7-linux-gnueabihf":  {Triple: "armv7-linux-gnueabihf", PtrSize: 4, PtrAlign: 4, MaxScalarAlign: 8},
	"wasm32-unknown-unknown": {Triple: "wasm32-unknown-unknown", PtrSize: 4, PtrAlign: 4, MaxScalarAlign: 16},
}

func X86_64LinuxGNU() Target {
	return targets["x86_64-linux-gnu"]
}

// LookupTarget finds a known triple. Matching is case-insensitive.
func LookupTarget(triple string) (Target, error) {
	if t, ok := targets[strings.ToLower(strings.TrimSpace(triple))]; ok {
		return t, nil
	}
	return Target{}, fmt.Errorf("unknown ABI target %q (known: %s)", triple, strings.Join(Triples(), ", "))
}

// Triples lists the known target triples, sorted.
func Triples() []string {
	out := make([]string, 0, len(targets))
	for k := range targets {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
