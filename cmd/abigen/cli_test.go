package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"abigen/internal/report"
)

// execute runs the root command once. Slice flags accumulate across runs in
// one process, so each test uses a given slice flag in a single call.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	cleanup()
	return out.String(), err
}

func TestInitThenPlanPerTarget(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "proj")
	if _, err := execute(t, "init", dir, "--quiet"); err != nil {
		t.Fatalf("init: %v", err)
	}

	out, err := execute(t, "plan", dir, "--format", "json", "--target", "c", "--target", "rust", "--no-cache", "--color", "off")
	if err != nil {
		t.Fatalf("plan: %v\n%s", err, out)
	}
	var plans []report.Plan
	if err := json.Unmarshal([]byte(out), &plans); err != nil {
		t.Fatalf("decode plans: %v\n%s", err, out)
	}
	if len(plans) != 2 || plans[0].Target != "c" || plans[1].Target != "rust" {
		t.Fatalf("unexpected targets: %+v", plans)
	}

	for _, plan := range plans {
		declares := 0
		names := map[string]bool{}
		for _, step := range plan.Steps {
			if step.Op == "declare-ty" {
				declares++
			}
			names[step.Name] = true
		}
		if declares != 1 {
			t.Fatalf("%s: %d forward declarations, want 1 for the Node cycle", plan.Target, declares)
		}
		last := plan.Steps[len(plan.Steps)-1]
		if last.Op != "define-func" || last.Name != "walk" {
			t.Fatalf("%s: last step %+v, want define-func walk", plan.Target, last)
		}
		wantWord, otherWord := "u32", "u64"
		if plan.Target == "rust" {
			wantWord, otherWord = "u64", "u32"
		}
		if !names[wantWord] || names[otherWord] {
			t.Fatalf("%s: pun resolved wrongly, steps %+v", plan.Target, plan.Steps)
		}
	}
}

func TestCheckPrintsTypeTable(t *testing.T) {
	dir := t.TempDir()
	program := filepath.Join(dir, "types.toml")
	writeFile(t, program, `[[type]]
kind = "struct"
name = "Pair"
fields = [{ name = "a", type = "[u8; 4]" }, { name = "b", type = "[u8; 4]" }]
`)
	out, err := execute(t, "check", program, "--format", "text", "--color", "off")
	if err != nil {
		t.Fatalf("check: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Pair") || strings.Count(out, "[u8; 4]") < 1 {
		t.Fatalf("type table missing entries:\n%s", out)
	}
}

func TestCheckReportsDiagnostics(t *testing.T) {
	dir := t.TempDir()
	program := filepath.Join(dir, "bad.toml")
	writeFile(t, program, `[[func]]
name = "f"
inputs = [{ name = "x", type = "Missing" }]
`)
	out, err := execute(t, "check", program, "--format", "text", "--diag-format", "json", "--color", "off")
	if !errors.Is(err, errReported) {
		t.Fatalf("err = %v, want errReported\n%s", err, out)
	}
	if !strings.Contains(out, "TYP2001") || !strings.Contains(out, "Missing") {
		t.Fatalf("diagnostic output:\n%s", out)
	}
}

// writeLayoutProject lays out a manifest that asks for layouts on i686. The
// targets match the ones TestInitThenPlanPerTarget passes on the command
// line, so the accumulated --target value does not change the outcome.
func writeLayoutProject(t *testing.T, program string) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "abigen.toml"), `[project]
name = "layouts"
program = "types.toml"

[generate]
targets = ["c", "rust"]
abi = "i686-linux-gnu"
`)
	writeFile(t, filepath.Join(dir, "types.toml"), program)
	return dir
}

func TestPlanAttachesLayouts(t *testing.T) {
	dir := writeLayoutProject(t, `[[type]]
kind = "struct"
name = "Node"
fields = [{ name = "next", type = "&Node" }, { name = "value", type = "u64" }]

[[func]]
name = "walk"
inputs = [{ name = "head", type = "Node" }]
`)
	out, err := execute(t, "plan", dir, "--format", "json", "--no-cache", "--color", "off")
	if err != nil {
		t.Fatalf("plan: %v\n%s", err, out)
	}
	var plans []report.Plan
	if err := json.Unmarshal([]byte(out), &plans); err != nil {
		t.Fatalf("decode plans: %v\n%s", err, out)
	}
	for _, plan := range plans {
		if plan.ABI != "i686-linux-gnu" {
			t.Fatalf("%s: abi = %q", plan.Target, plan.ABI)
		}
		var found bool
		for _, l := range plan.Layouts {
			if l.Name != "Node" {
				continue
			}
			found = true
			if l.Size != 12 || l.Align != 4 || len(l.Fields) != 2 || l.Fields[1].Offset != 4 {
				t.Fatalf("%s: Node layout = %+v", plan.Target, l)
			}
		}
		if !found {
			t.Fatalf("%s: no Node layout in %+v", plan.Target, plan.Layouts)
		}
	}
}

func TestPlanReportsRecursiveValueType(t *testing.T) {
	dir := writeLayoutProject(t, `[[type]]
kind = "struct"
name = "Loop"
fields = [{ name = "self", type = "Loop" }]

[[func]]
name = "spin"
inputs = [{ name = "l", type = "Loop" }]
`)
	out, err := execute(t, "plan", dir, "--format", "json", "--no-cache", "--diag-format", "json", "--color", "off")
	if !errors.Is(err, errReported) {
		t.Fatalf("err = %v, want errReported\n%s", err, out)
	}
	if !strings.Contains(out, "TYP2003") || !strings.Contains(out, "Loop") {
		t.Fatalf("diagnostic output:\n%s", out)
	}
}

func TestPlanCacheThenClean(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "proj")
	cacheDir := filepath.Join(t.TempDir(), "cache")
	if _, err := execute(t, "init", dir, "--quiet"); err != nil {
		t.Fatalf("init: %v", err)
	}

	first, err := execute(t, "plan", dir, "--format", "json", "--no-cache=false", "--cache-dir", cacheDir, "--color", "off")
	if err != nil {
		t.Fatalf("plan: %v\n%s", err, first)
	}
	entries, err := filepath.Glob(filepath.Join(cacheDir, "plans", "*.mp"))
	if err != nil || len(entries) != 1 {
		t.Fatalf("cache entries %v (%v), want 1", entries, err)
	}

	second, err := execute(t, "plan", dir, "--format", "json", "--no-cache=false", "--cache-dir", cacheDir, "--color", "off")
	if err != nil {
		t.Fatalf("cached plan: %v\n%s", err, second)
	}
	if a, b := planSteps(t, first), planSteps(t, second); a != b {
		t.Fatalf("cached plan differs:\n%s\nvs\n%s", a, b)
	}

	out, err := execute(t, "clean", "--cache-dir", cacheDir, "--quiet=false")
	if err != nil {
		t.Fatalf("clean: %v\n%s", err, out)
	}
	if !strings.Contains(out, "cleared "+cacheDir) {
		t.Fatalf("clean output %q", out)
	}
	entries, _ = filepath.Glob(filepath.Join(cacheDir, "plans", "*.mp"))
	if len(entries) != 0 {
		t.Fatalf("entries left after clean: %v", entries)
	}
}

func planSteps(t *testing.T, out string) string {
	t.Helper()
	var plans []report.Plan
	if err := json.Unmarshal([]byte(out), &plans); err != nil {
		t.Fatalf("decode plans: %v\n%s", err, out)
	}
	var b strings.Builder
	for _, p := range plans {
		b.WriteString(p.Target + ":")
		for _, s := range p.Steps {
			b.WriteString(" " + s.Op + " " + s.Name)
		}
		b.WriteString("\n")
	}
	return b.String()
}
