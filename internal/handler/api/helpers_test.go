// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"structpages/internal/cache"
	"structpages/internal/model"
	"structpages/internal/store"
)

// testDB creates an in-memory SQLite database with the full schema.
// A single connection keeps the in-memory database alive for the test.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	db.SetMaxOpenConns(1)

	if err := store.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Close()
	})

	return db
}

// testSetup creates a handler over a fresh database, wired to an
// in-memory page cache, and a router matching the production routes.
func testSetup(t *testing.T) (*Handler, http.Handler, *store.Pages) {
	t.Helper()

	db := testDB(t)
	pages := store.NewPages(db)
	categories := store.NewCategories(db)

	mem := cache.NewMemoryCache(cache.MemoryCacheOptions{DefaultTTL: time.Hour})
	t.Cleanup(func() { _ = mem.Close() })
	pageCache := cache.NewPageCache(mem, pages, time.Hour)

	h := NewHandler(pages, categories, pageCache, "test")

	r := chi.NewRouter()
	r.Get("/api/v1/status", h.Status)
	r.Get("/api/v1/pages", h.ListPages)
	r.Get("/api/v1/pages/{key}", h.GetPage)
	r.Post("/api/v1/pages", h.SavePage)
	r.Put("/api/v1/pages/{id}/status", h.UpdatePageStatus)
	r.Patch("/api/v1/pages/{id}/status", h.UpdatePageStatus)
	r.Delete("/api/v1/pages/{id}", h.DeletePage)
	r.Get("/api/v1/categories", h.ListCategories)
	r.Get("/api/v1/categories/{id}", h.GetCategory)
	r.Post("/api/v1/categories", h.SaveCategory)
	r.Delete("/api/v1/categories/{id}", h.DeleteCategory)

	return h, r, pages
}

// doJSON performs a request with a JSON body against the router.
func doJSON(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

// decodeData decodes the "data" member of a response envelope into dst.
func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()

	var envelope struct {
		Data json.RawMessage `json:"data"`
		Meta *Meta           `json:"meta"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("failed to decode response envelope: %v", err)
	}
	if err := json.Unmarshal(envelope.Data, dst); err != nil {
		t.Fatalf("failed to decode response data: %v", err)
	}
}

// decodeMeta decodes the "meta" member of a response envelope.
func decodeMeta(t *testing.T, rec *httptest.ResponseRecorder) *Meta {
	t.Helper()

	var envelope struct {
		Meta *Meta `json:"meta"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("failed to decode response envelope: %v", err)
	}
	return envelope.Meta
}

// decodeError decodes an error response body.
func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorDetail {
	t.Helper()

	var envelope ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return envelope.Error
}

// createTestPage persists a page through the repository.
func createTestPage(t *testing.T, pages *store.Pages, slug, status string) model.Page {
	t.Helper()

	page, err := pages.Save(context.Background(), store.PageInput{
		Slug:   slug,
		Status: &status,
	})
	if err != nil {
		t.Fatalf("failed to create test page: %v", err)
	}
	return page
}
