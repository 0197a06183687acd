package geocoding

import (
	"context"
	"strings"

	"ecofix/backend/go/pkg/cache"
)

// Cached 缓存成功的地址解析结果。未找到和出错的结果不缓存。
type Cached struct {
	next  Geocoder
	cache *cache.LRU[string, Location]
}

// NewCached 用 LRU 缓存包装 next。
func NewCached(next Geocoder, cfg cache.Config) (*Cached, error) {
	c, err := cache.New[string, Location](cfg)
	if err != nil {
		return nil, err
	}
	return &Cached{next: next, cache: c}, nil
}

func (c *Cached) Geocode(ctx context.Context, address string) (*Location, error) {
	key := strings.ToLower(strings.Join(strings.Fields(address), " "))
	if loc, ok := c.cache.Get(key); ok {
		return &loc, nil
	}
	loc, err := c.next.Geocode(ctx, address)
	if err != nil {
		return nil, err
	}
	c.cache.Put(key, *loc)
	return loc, nil
}
