package movies

import (
	"github.com/coocood/freecache"
)

const (
	// most catalog traffic is reads of a handful of popular titles,
	// so detail responses are kept in an in-process byte cache
	detailCacheTTLSeconds = 5 * 60

	DefaultCacheSize = 10 * 1024 * 1024
)

type detailCache struct {
	cache *freecache.Cache
}

func newDetailCache(size int) *detailCache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	return &detailCache{
		cache: freecache.NewCache(size),
	}
}

func (c *detailCache) key(slug string) []byte {
	return []byte("movie::" + slug)
}

func (c *detailCache) get(slug string) ([]byte, bool) {
	value, err := c.cache.Get(c.key(slug))
	if err != nil {
		return nil, false
	}
	return value, true
}

func (c *detailCache) set(slug string, value []byte) {
	// a failed cache set is not an error worth failing the request over
	_ = c.cache.Set(c.key(slug), value, detailCacheTTLSeconds)
}

func (c *detailCache) invalidate(slug string) {
	c.cache.Del(c.key(slug))
}
