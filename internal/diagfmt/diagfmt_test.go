package diagfmt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"abigen/internal/diag"
	"abigen/internal/source"
)

const program = "[[type]]\nkind = \"struct\"\nname = \"S\"\nfields = [{ type = \"Missing\" }]\n"

func sampleBag(t *testing.T) (*diag.Bag, *source.FileSet) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("/work/project/types.toml", []byte(program))
	start := uint32(strings.Index(program, "Missing"))
	d := diag.NewError(diag.TypUndefinedName, source.Span{File: id, Start: start, End: start + 7}, `use of undefined type name "Missing"`).
		WithNote(source.Span{File: id, Start: 33, End: 34}, "in struct S").
		WithFix("declare a type named Missing")
	bag := diag.NewBag(10)
	bag.Add(d)
	return bag, fs
}

func TestPrettyUnderlinesSpan(t *testing.T) {
	bag, fs := sampleBag(t)
	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeBasename, ShowNotes: true, ShowFixes: true})
	out := buf.String()

	for _, want := range []string{
		"types.toml:4:21: ERROR TYP2001: use of undefined type name",
		`fields = [{ type = "Missing" }]`,
		"^~~~~~~",
		"note: types.toml:3:",
		"help: declare a type named Missing",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}

	lines := strings.Split(out, "\n")
	var src, caret string
	for i, l := range lines {
		if strings.Contains(l, "fields = ") {
			src, caret = l, lines[i+1]
		}
	}
	if strings.Index(caret, "^") != strings.Index(src, "Missing") {
		t.Fatalf("caret misaligned:\n%s\n%s", src, caret)
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("color disabled but escape codes present")
	}
}

func TestPrettyColor(t *testing.T) {
	bag, fs := sampleBag(t)
	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{Color: true})
	if !strings.Contains(buf.String(), "\x1b[") {
		t.Fatalf("expected ANSI escapes:\n%s", buf.String())
	}
}

func TestPathModes(t *testing.T) {
	bag, fs := sampleBag(t)
	cases := []struct {
		mode PathMode
		base string
		want string
	}{
		{PathModeAbsolute, "", "/work/project/types.toml:"},
		{PathModeRelative, "/work", "project/types.toml:"},
		{PathModeBasename, "", "types.toml:"},
	}
	for _, tc := range cases {
		var buf bytes.Buffer
		Pretty(&buf, bag, fs, PrettyOpts{PathMode: tc.mode, BaseDir: tc.base})
		if !strings.HasPrefix(buf.String(), tc.want) {
			t.Fatalf("mode %d: got %q, want prefix %q", tc.mode, buf.String(), tc.want)
		}
	}
}

func TestJSON(t *testing.T) {
	bag, fs := sampleBag(t)
	var buf bytes.Buffer
	err := JSON(&buf, bag, fs, JSONOpts{IncludePositions: true, PathMode: PathModeBasename, IncludeNotes: true, IncludeFixes: true})
	if err != nil {
		t.Fatalf("JSON: %v", err)
	}
	var out DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	if out.Count != 1 {
		t.Fatalf("count = %d", out.Count)
	}
	d := out.Diagnostics[0]
	if d.Code != "TYP2001" || d.Severity != "ERROR" || d.Location.File != "types.toml" {
		t.Fatalf("diagnostic = %+v", d)
	}
	if d.Location.StartLine != 4 || d.Location.StartCol != 21 {
		t.Fatalf("position = %d:%d", d.Location.StartLine, d.Location.StartCol)
	}
	if len(d.Notes) != 1 || len(d.Fixes) != 1 {
		t.Fatalf("notes/fixes = %d/%d", len(d.Notes), len(d.Fixes))
	}
}

func TestJSONMax(t *testing.T) {
	bag, fs := sampleBag(t)
	bag.Add(diag.NewError(diag.PrsDecode, source.Span{}, "second"))
	out := BuildDiagnosticsOutput(bag, fs, JSONOpts{Max: 1})
	if out.Count != 1 || len(out.Diagnostics) != 1 {
		t.Fatalf("Max not applied: %+v", out)
	}
	if out.Diagnostics[0].Notes != nil {
		t.Fatalf("notes should be omitted by default")
	}
}

func TestSarif(t *testing.T) {
	bag, fs := sampleBag(t)
	var buf bytes.Buffer
	if err := Sarif(&buf, bag, fs, SarifRunMeta{ToolName: "abigen", ToolVersion: "0.1.0", InvocationArgs: []string{"check"}}); err != nil {
		t.Fatalf("Sarif: %v", err)
	}
	var log sarifLog
	if err := json.Unmarshal(buf.Bytes(), &log); err != nil {
		t.Fatalf("invalid SARIF: %v", err)
	}
	run := log.Runs[0]
	if log.Version != "2.1.0" || run.Tool.Driver.Name != "abigen" {
		t.Fatalf("header = %+v", log)
	}
	if len(run.Results) != 1 || run.Results[0].RuleID != "TYP2001" || run.Results[0].Level != "error" {
		t.Fatalf("results = %+v", run.Results)
	}
	if run.Invocations[0].ExecutionSuccessful {
		t.Fatalf("errors present, execution should not be successful")
	}
	if len(run.Results[0].Related) != 1 {
		t.Fatalf("note should become a related location")
	}
}
