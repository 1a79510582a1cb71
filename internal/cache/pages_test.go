// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"structpages/internal/model"
)

// fakeLoader serves pages from a map and counts loads.
type fakeLoader struct {
	pages map[string]model.Page
	loads int
}

func (l *fakeLoader) GetBySlug(_ context.Context, slug string) (model.Page, error) {
	l.loads++
	page, ok := l.pages[slug]
	if !ok {
		return model.Page{}, sql.ErrNoRows
	}
	return page, nil
}

func newPageCacheForTest(t *testing.T, loader *fakeLoader) *PageCache {
	t.Helper()
	mem := NewMemoryCache(MemoryCacheOptions{DefaultTTL: time.Hour})
	t.Cleanup(func() { _ = mem.Close() })
	return NewPageCache(mem, loader, time.Hour)
}

func TestPageCache_PublishedPageIsCached(t *testing.T) {
	loader := &fakeLoader{pages: map[string]model.Page{
		"about": {ID: 1, Slug: "about", Status: model.PageStatusPublished, H1: "About"},
	}}
	pc := newPageCacheForTest(t, loader)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		page, err := pc.GetPublished(ctx, "about")
		if err != nil {
			t.Fatalf("GetPublished failed: %v", err)
		}
		if page.H1 != "About" {
			t.Errorf("H1 = %q, want About", page.H1)
		}
	}

	if loader.loads != 1 {
		t.Errorf("loads = %d, want 1 (subsequent reads served from cache)", loader.loads)
	}
}

func TestPageCache_DraftNeverCached(t *testing.T) {
	loader := &fakeLoader{pages: map[string]model.Page{
		"wip": {ID: 2, Slug: "wip", Status: model.PageStatusDraft},
	}}
	pc := newPageCacheForTest(t, loader)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := pc.GetPublished(ctx, "wip"); err != nil {
			t.Fatalf("GetPublished failed: %v", err)
		}
	}

	if loader.loads != 3 {
		t.Errorf("loads = %d, want 3 (drafts bypass the cache)", loader.loads)
	}
}

func TestPageCache_MissingPagePropagatesError(t *testing.T) {
	loader := &fakeLoader{pages: map[string]model.Page{}}
	pc := newPageCacheForTest(t, loader)

	_, err := pc.GetPublished(context.Background(), "ghost")
	if err != sql.ErrNoRows {
		t.Errorf("err = %v, want sql.ErrNoRows", err)
	}
}

func TestPageCache_InvalidateForcesReload(t *testing.T) {
	loader := &fakeLoader{pages: map[string]model.Page{
		"about": {ID: 1, Slug: "about", Status: model.PageStatusPublished, H1: "About"},
	}}
	pc := newPageCacheForTest(t, loader)
	ctx := context.Background()

	if _, err := pc.GetPublished(ctx, "about"); err != nil {
		t.Fatalf("GetPublished failed: %v", err)
	}

	// Simulate an edit, then invalidate.
	loader.pages["about"] = model.Page{ID: 1, Slug: "about", Status: model.PageStatusPublished, H1: "About Us"}
	pc.Invalidate(ctx, "about")

	page, err := pc.GetPublished(ctx, "about")
	if err != nil {
		t.Fatalf("GetPublished after invalidate failed: %v", err)
	}
	if page.H1 != "About Us" {
		t.Errorf("H1 = %q, want updated content after invalidation", page.H1)
	}
	if loader.loads != 2 {
		t.Errorf("loads = %d, want 2", loader.loads)
	}
}

func TestPageCache_BrokenCacheFallsThrough(t *testing.T) {
	loader := &fakeLoader{pages: map[string]model.Page{
		"about": {ID: 1, Slug: "about", Status: model.PageStatusPublished},
	}}
	mem := NewMemoryCache(MemoryCacheOptions{DefaultTTL: time.Hour})
	_ = mem.Close() // every cache operation now errors
	pc := NewPageCache(mem, loader, time.Hour)

	page, err := pc.GetPublished(context.Background(), "about")
	if err != nil {
		t.Fatalf("GetPublished with closed cache failed: %v", err)
	}
	if page.ID != 1 {
		t.Errorf("ID = %d, want 1", page.ID)
	}
}
