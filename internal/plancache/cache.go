// Package plancache stores emission plans on disk keyed by a digest of the
// program text and the request, so repeated plan runs over an unchanged
// program skip checking entirely.
package plancache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"abigen/internal/report"
)

// Current schema version - increment when Payload or report.Plan changes.
const schemaVersion uint16 = 1

// DiskCache is safe for concurrent use. A nil *DiskCache is a valid cache
// that never hits.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// Payload is what one cache entry holds.
type Payload struct {
	Schema uint16
	Key    Digest
	Plans  []report.Plan
}

// Open returns the cache under $XDG_CACHE_HOME/app (or ~/.cache/app).
func Open(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return OpenDir(filepath.Join(base, app))
}

// OpenDir returns a cache rooted at dir, creating it if needed.
func OpenDir(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

// Dir returns the cache root.
func (c *DiskCache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

func (c *DiskCache) pathFor(key Digest) string {
	return filepath.Join(c.dir, "plans", key.String()+".mp")
}

// Put writes plans under key, replacing any previous entry atomically.
func (c *DiskCache) Put(key Digest, plans []report.Plan) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()

	err = msgpack.NewEncoder(f).Encode(&Payload{Schema: schemaVersion, Key: key, Plans: plans})
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Rename(tmp, p)
	}
	if err != nil {
		if rmErr := os.Remove(tmp); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			return fmt.Errorf("%w (cleanup: %v)", err, rmErr)
		}
		return err
	}
	return nil
}

// Get returns the plans stored under key. Entries that fail to decode, come
// from another schema version or carry a mismatched key are removed and
// reported as misses.
func (c *DiskCache) Get(key Digest) ([]report.Plan, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	path := c.pathFor(key)
	payload, found, err := c.read(path)
	if err != nil || !found {
		return nil, false, err
	}
	if payload == nil || payload.Schema != schemaVersion || payload.Key != key {
		return nil, false, c.drop(path)
	}
	return payload.Plans, true, nil
}

// read decodes the entry at path. A nil payload with found set means the
// file exists but does not decode.
func (c *DiskCache) read(path string) (*Payload, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer f.Close()

	var payload Payload
	if err := msgpack.NewDecoder(f).Decode(&payload); err != nil {
		return nil, true, nil
	}
	return &payload, true, nil
}

func (c *DiskCache) drop(path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to drop stale entry: %w", err)
	}
	return nil
}

// DropAll removes every cached entry.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}
	return os.RemoveAll(old)
}
