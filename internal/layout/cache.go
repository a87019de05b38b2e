package layout

import "abigen/internal/types"

type cacheEntry struct {
	Layout TypeLayout
	Err    *LayoutError
}

type cache struct {
	byType map[types.TyIdx]*cacheEntry
}

func newCache() *cache {
	return &cache{byType: make(map[types.TyIdx]*cacheEntry, 64)}
}

func (c *cache) get(id types.TyIdx) (*cacheEntry, bool) {
	if c == nil {
		return nil, false
	}
	e, ok := c.byType[id]
	return e, ok
}

func (c *cache) put(id types.TyIdx, e *cacheEntry) {
	if c == nil {
		return
	}
	if e == nil {
		delete(c.byType, id)
		return
	}
	c.byType[id] = e
}
