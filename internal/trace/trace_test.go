package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestLevelFiltersScopes(t *testing.T) {
	cases := []struct {
		level Level
		scope Scope
		want  bool
	}{
		{LevelOff, ScopeDriver, false},
		{LevelPhase, ScopePass, true},
		{LevelPhase, ScopeTarget, false},
		{LevelDetail, ScopeTarget, true},
		{LevelDetail, ScopeDecl, false},
		{LevelDebug, ScopeDecl, true},
	}
	for _, tc := range cases {
		if got := tc.level.ShouldEmit(tc.scope); got != tc.want {
			t.Fatalf("%s.ShouldEmit(%s) = %v, want %v", tc.level, tc.scope, got, tc.want)
		}
	}
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("DETAIL")
	if err != nil || lvl != LevelDetail {
		t.Fatalf("ParseLevel(DETAIL) = %v, %v", lvl, err)
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestStreamTracerText(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelPhase, FormatText)

	root := Begin(tr, ScopeDriver, "plan", 0)
	inner := Begin(tr, ScopePass, "typeck", root.ID())
	inner.WithExtra("types", "3").WithExtra("funcs", "1").End("ok")
	Begin(tr, ScopeTarget, "defgraph:x86_64", root.ID()).End("")
	root.End("")

	out := buf.String()
	if strings.Contains(out, "defgraph") {
		t.Fatalf("target span leaked at phase level:\n%s", out)
	}
	if !strings.Contains(out, "← typeck (ok) {funcs=1, types=3}") {
		t.Fatalf("missing typeck end line:\n%s", out)
	}
	if got := strings.Count(out, "\n"); got != 4 {
		t.Fatalf("got %d lines, want 4:\n%s", got, out)
	}
}

func TestStreamTracerNDJSON(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDebug, FormatNDJSON)
	Point(tr, ScopeDecl, "reserve", "Node", 7)

	var ev map[string]any
	if err := json.Unmarshal(buf.Bytes(), &ev); err != nil {
		t.Fatalf("bad json %q: %v", buf.String(), err)
	}
	if ev["kind"] != "point" || ev["scope"] != "decl" || ev["detail"] != "Node" {
		t.Fatalf("unexpected event %v", ev)
	}
	if ev["parent_id"] != float64(7) {
		t.Fatalf("parent_id = %v, want 7", ev["parent_id"])
	}
}

func TestRingTracerWraps(t *testing.T) {
	r := NewRingTracer(3, LevelDebug)
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		Point(r, ScopePass, name, "", 0)
	}
	snap := r.Snapshot()
	if len(snap) != 3 {
		t.Fatalf("snapshot len = %d, want 3", len(snap))
	}
	for i, want := range []string{"c", "d", "e"} {
		if snap[i].Name != want {
			t.Fatalf("snap[%d] = %q, want %q", i, snap[i].Name, want)
		}
	}

	var buf bytes.Buffer
	if err := r.Dump(&buf, FormatText); err != nil {
		t.Fatalf("dump: %v", err)
	}
	if strings.Count(buf.String(), "\n") != 3 {
		t.Fatalf("dump:\n%s", buf.String())
	}
}

func TestNewBothKeepsRing(t *testing.T) {
	var buf bytes.Buffer
	tr, err := New(Config{Level: LevelPhase, Mode: ModeBoth, Output: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	Begin(tr, ScopePass, "load", 0).End("")

	ring := RingOf(tr)
	if ring == nil {
		t.Fatalf("expected a ring behind ModeBoth")
	}
	if got := len(ring.Snapshot()); got != 2 {
		t.Fatalf("ring holds %d events, want 2", got)
	}
	if strings.Count(buf.String(), "\n") != 2 {
		t.Fatalf("stream:\n%s", buf.String())
	}
}

func TestOffIsNop(t *testing.T) {
	tr, err := New(Config{Level: LevelOff})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if tr.Enabled() {
		t.Fatalf("LevelOff tracer must be disabled")
	}
	span := Begin(tr, ScopeDriver, "check", 0)
	if d := span.End(""); d != 0 {
		t.Fatalf("inert span reported %v", d)
	}
}

func TestContextCarriesTracerAndParent(t *testing.T) {
	ctx := context.Background()
	if FromContext(ctx) != Nop || ParentID(ctx) != 0 {
		t.Fatalf("empty context should yield Nop and 0")
	}
	r := NewRingTracer(8, LevelPhase)
	ctx = WithTracer(ctx, r)
	span := Begin(r, ScopeDriver, "plan", 0)
	ctx = WithSpan(ctx, span)

	if FromContext(ctx) != Tracer(r) {
		t.Fatalf("tracer not propagated")
	}
	if ParentID(ctx) != span.ID() || span.ID() == 0 {
		t.Fatalf("ParentID = %d, span = %d", ParentID(ctx), span.ID())
	}
}
