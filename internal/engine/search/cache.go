package search

import (
	"context"
	"encoding/json"

	"github.com/openchance/jobmatch/internal/engine"
	"github.com/openchance/jobmatch/internal/engine/index"
)

// cachedSearcher memoizes raw index responses. Safe to share across users:
// per-user eligibility (isochrones, reviewed ids) applies downstream of the
// index query, so identical queries can share one upstream fetch.
type cachedSearcher struct {
	inner Searcher
}

// WithCache wraps a Searcher with the engine cache.
func WithCache(s Searcher) Searcher {
	return &cachedSearcher{inner: s}
}

func (c *cachedSearcher) Search(ctx context.Context, q index.Query) (*index.Result, error) {
	raw, err := json.Marshal(q)
	if err != nil {
		return c.inner.Search(ctx, q)
	}
	key := engine.CacheKey("index_search", string(raw))

	if res, ok := engine.CacheGetJSON[index.Result](ctx, key); ok {
		return &res, nil
	}
	res, err := c.inner.Search(ctx, q)
	if err != nil {
		return nil, err
	}
	engine.CacheSetJSON(ctx, key, *res)
	return res, nil
}
