// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"encoding/json"
	"time"

	"structpages/internal/model"
)

// pageKeyPrefix namespaces page entries within the shared cache so
// invalidation cannot collide with other consumers of the backend.
const pageKeyPrefix = "page:slug:"

// PageLoader fetches a page from persistent storage on cache miss.
type PageLoader interface {
	GetBySlug(ctx context.Context, slug string) (model.Page, error)
}

// PageCache serves published pages to the public resolver through a
// read-through cache. Only published pages are cached: drafts and
// preview requests always go to the loader, so a stale cache can never
// leak an unpublished page.
type PageCache struct {
	cache  Cache
	loader PageLoader
	ttl    time.Duration
}

// NewPageCache creates a page cache backed by the given Cache.
func NewPageCache(c Cache, loader PageLoader, ttl time.Duration) *PageCache {
	return &PageCache{
		cache:  c,
		loader: loader,
		ttl:    ttl,
	}
}

// GetPublished retrieves a published page by slug. Cache errors other
// than a miss fall through to the loader: a broken cache degrades to
// direct reads instead of failing requests.
func (c *PageCache) GetPublished(ctx context.Context, slug string) (model.Page, error) {
	key := pageKeyPrefix + slug

	if data, err := c.cache.Get(ctx, key); err == nil {
		var page model.Page
		if err := json.Unmarshal(data, &page); err == nil {
			return page, nil
		}
		// Undecodable entry: drop it and reload.
		_ = c.cache.Delete(ctx, key)
	}

	page, err := c.loader.GetBySlug(ctx, slug)
	if err != nil {
		return model.Page{}, err
	}

	if page.IsPublished() {
		if data, err := json.Marshal(page); err == nil {
			_ = c.cache.Set(ctx, key, data, c.ttl)
		}
	}

	return page, nil
}

// Invalidate removes the cached entry for a slug. Called after any
// write that touches the page, including slug changes (both the old
// and new slug must be invalidated by the caller).
func (c *PageCache) Invalidate(ctx context.Context, slug string) {
	if slug == "" {
		return
	}
	_ = c.cache.Delete(ctx, pageKeyPrefix+slug)
}
