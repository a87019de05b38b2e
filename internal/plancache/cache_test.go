package plancache

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/vmihailenco/msgpack/v5"

	"abigen/internal/report"
)

func samplePlans() []report.Plan {
	return []report.Plan{{
		Target: "c",
		Steps: []report.Step{
			{Op: "define-ty", Idx: 3, Name: "u32"},
			{Op: "define-func", Idx: 0, Name: "f"},
		},
	}}
}

func TestPutGet(t *testing.T) {
	c, err := OpenDir(t.TempDir())
	if err != nil {
		t.Fatalf("OpenDir: %v", err)
	}
	key := Key([]byte("program"), []string{"c"}, nil, "")
	if _, ok, err := c.Get(key); ok || err != nil {
		t.Fatalf("empty cache hit: %v %v", ok, err)
	}
	if err := c.Put(key, samplePlans()); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, ok, err := c.Get(key)
	if err != nil || !ok {
		t.Fatalf("Get: %v %v", ok, err)
	}
	if !reflect.DeepEqual(got, samplePlans()) {
		t.Fatalf("Get = %+v", got)
	}
	entries, err := os.ReadDir(filepath.Join(c.Dir(), "plans"))
	if err != nil || len(entries) != 1 {
		t.Fatalf("expected one entry and no temp files, got %v (%v)", entries, err)
	}
}

func TestKeyDependsOnEveryInput(t *testing.T) {
	base := Key([]byte("p"), []string{"c", "rust"}, []string{"f"}, "")
	variants := []Digest{
		Key([]byte("q"), []string{"c", "rust"}, []string{"f"}, ""),
		Key([]byte("p"), []string{"rust", "c"}, []string{"f"}, ""),
		Key([]byte("p"), []string{"c", "rust"}, nil, ""),
		Key([]byte("p"), []string{"crust"}, []string{"f"}, ""),
		Key([]byte("p"), []string{"c", "rust"}, []string{"f"}, "x86_64-linux-gnu"),
	}
	for i, v := range variants {
		if v == base {
			t.Fatalf("variant %d collides with base key", i)
		}
	}
	if base != Key([]byte("p"), []string{"c", "rust"}, []string{"f"}, "") {
		t.Fatalf("Key is not deterministic")
	}
	if base.IsZero() {
		t.Fatalf("key should not be zero")
	}
}

func TestDropAll(t *testing.T) {
	c, err := OpenDir(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatalf("OpenDir: %v", err)
	}
	key := Key([]byte("x"), nil, nil, "")
	if err := c.Put(key, samplePlans()); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := c.DropAll(); err != nil {
		t.Fatalf("DropAll: %v", err)
	}
	if _, ok, _ := c.Get(key); ok {
		t.Fatalf("entry survived DropAll")
	}
	if err := c.Put(key, samplePlans()); err != nil {
		t.Fatalf("Put after DropAll: %v", err)
	}
}

func TestBadEntriesAreDropped(t *testing.T) {
	stale, err := msgpack.Marshal(&Payload{Schema: schemaVersion + 1, Plans: samplePlans()})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	cases := map[string][]byte{
		"corrupt":    {0xc1, 0x00, 0xff},
		"truncated":  {0x93},
		"old schema": stale,
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			c, err := OpenDir(t.TempDir())
			if err != nil {
				t.Fatalf("OpenDir: %v", err)
			}
			key := Key([]byte(name), []string{"c"}, nil, "")
			if err := c.Put(key, samplePlans()); err != nil {
				t.Fatalf("Put: %v", err)
			}
			path := c.pathFor(key)
			if err := os.WriteFile(path, content, 0o644); err != nil {
				t.Fatalf("WriteFile: %v", err)
			}
			if _, ok, err := c.Get(key); ok || err != nil {
				t.Fatalf("Get = %v, %v; want a clean miss", ok, err)
			}
			if _, err := os.Stat(path); !os.IsNotExist(err) {
				t.Fatalf("entry still on disk: %v", err)
			}
			if err := c.Put(key, samplePlans()); err != nil {
				t.Fatalf("Put after drop: %v", err)
			}
			if _, ok, err := c.Get(key); !ok || err != nil {
				t.Fatalf("Get after rewrite = %v, %v", ok, err)
			}
		})
	}
}

func TestNilCache(t *testing.T) {
	var c *DiskCache
	if err := c.Put(Digest{}, nil); err != nil {
		t.Fatalf("nil Put: %v", err)
	}
	if _, ok, err := c.Get(Digest{}); ok || err != nil {
		t.Fatalf("nil Get: %v %v", ok, err)
	}
}
