package fuzztests

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

const (
	maxSeedBytes = 64 << 10
	maxFuzzInput = 1 << 16
)

var inlineSeeds = []string{
	"",
	"[[type]]\nkind = \"struct\"\nname = \"P\"\nfields = [{ type = \"u8\" }]\n",
	"[[type]]\nkind = \"alias\"\nname = \"A\"\ntarget = \"[&A; 3]\"\n",
	"[[func]]\nname = \"f\"\ninputs = [{ type = \"()\" }]\n",
	"[[type]]\nkind = \"pun\"\nname = \"W\"\n[[type.block]]\nwhen = \"lang(c)\"\n[[type.block.type]]\nkind = \"alias\"\nname = \"W\"\ntarget = \"u8\"\n",
	"[[type]]\nkind = \"tagged\"\nname = \"T\"\nattrs = [\"@repr u8\"]\nvariants = [{ name = \"A\", fields = [{ type = \"T\" }] }]\n",
}

func addCorpusSeeds(f *testing.F) {
	for _, s := range inlineSeeds {
		f.Add([]byte(s))
	}
	addTestdataSeeds(f)
}

// addTestdataSeeds adds every *.toml under the repository testdata tree.
func addTestdataSeeds(f *testing.F) {
	root := filepath.Join("..", "..", "testdata")
	if _, err := os.Stat(root); err != nil {
		return
	}
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() || filepath.Ext(path) != ".toml" {
			return nil
		}
		// #nosec G304 -- path comes from repository testdata walk
		src, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		f.Add(clampSeed(src))
		return nil
	})
}

func clampSeed(src []byte) []byte {
	if len(src) <= maxSeedBytes {
		return append([]byte(nil), src...)
	}
	return append([]byte(nil), src[:maxSeedBytes]...)
}

func clampInput(input []byte) []byte {
	if len(input) > maxFuzzInput {
		return append([]byte(nil), input[:maxFuzzInput]...)
	}
	return append([]byte(nil), input...)
}
