// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"structpages/internal/handler"
	"structpages/internal/sanitize"
	"structpages/internal/store"
)

// SaveCategoryRequest represents the request body for creating or
// updating a category.
type SaveCategoryRequest struct {
	ID          *int64  `json:"id,omitempty"`
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Description *string `json:"description,omitempty"`
	ParentID    *int64  `json:"parent_id,omitempty"`
}

// ListCategories handles GET /api/v1/categories, ordered by name.
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.List(r.Context())
	if err != nil {
		slog.Error("failed to list categories", "error", err)
		WriteInternalError(w, "Failed to list categories")
		return
	}

	WriteSuccess(w, categories, nil)
}

// GetCategory handles GET /api/v1/categories/{id}.
func (h *Handler) GetCategory(w http.ResponseWriter, r *http.Request) {
	id, err := handler.ParseIDParam(r)
	if err != nil {
		WriteValidationError(w, map[string]string{"id": "must be a positive integer"})
		return
	}

	category, err := h.categories.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "Category not found")
		} else {
			slog.Error("failed to get category", "id", id, "error", err)
			WriteInternalError(w, "Failed to retrieve category")
		}
		return
	}

	WriteSuccess(w, category, nil)
}

// SaveCategory handles POST /api/v1/categories. Creates when the body
// carries no id, updates otherwise. A slug held by a different category
// is a conflict.
func (h *Handler) SaveCategory(w http.ResponseWriter, r *http.Request) {
	req, err := parseSaveCategoryRequest(r)
	if err != nil {
		WriteValidationError(w, map[string]string{"body": err.Error()})
		return
	}

	in := store.CategoryInput{
		ID:          req.ID,
		Name:        sanitize.Plain(req.Name),
		Slug:        req.Slug,
		Description: sanitize.RichPtr(req.Description),
		ParentID:    req.ParentID,
	}

	category, err := h.categories.Save(r.Context(), in)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrMissingName):
			WriteValidationError(w, map[string]string{"name": "name is required"})
		case errors.Is(err, store.ErrMissingSlug):
			WriteValidationError(w, map[string]string{"slug": "slug is required"})
		case errors.Is(err, store.ErrDuplicateSlug):
			WriteError(w, http.StatusBadRequest, "duplicate_category", "A category with this slug already exists", nil)
		case errors.Is(err, sql.ErrNoRows):
			WriteNotFound(w, "Category not found")
		default:
			slog.Error("failed to save category", "error", err)
			WriteInternalError(w, "Failed to save category")
		}
		return
	}

	if req.ID == nil {
		WriteCreated(w, category)
		return
	}
	WriteSuccess(w, category, nil)
}

// DeleteCategory handles DELETE /api/v1/categories/{id} and echoes the
// deleted record. Pages referencing the category keep their category_id.
func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := handler.ParseIDParam(r)
	if err != nil {
		WriteValidationError(w, map[string]string{"id": "must be a positive integer"})
		return
	}

	category, err := h.categories.Delete(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "Category not found")
		} else {
			slog.Error("failed to delete category", "id", id, "error", err)
			WriteInternalError(w, "Failed to delete category")
		}
		return
	}

	WriteSuccess(w, category, nil)
}

// parseSaveCategoryRequest decodes a category save from a JSON body or
// form fields.
func parseSaveCategoryRequest(r *http.Request) (*SaveCategoryRequest, error) {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "application/x-www-form-urlencoded" {
		if err := r.ParseForm(); err != nil {
			return nil, errors.New("invalid form body")
		}

		req := &SaveCategoryRequest{
			Name:        r.PostFormValue("name"),
			Slug:        r.PostFormValue("slug"),
			Description: formString(r, "description"),
		}
		if s := r.PostFormValue("id"); s != "" {
			id, err := strconv.ParseInt(s, 10, 64)
			if err != nil || id < 1 {
				return nil, errors.New("id must be a positive integer")
			}
			req.ID = &id
		}
		if s := r.PostFormValue("parent_id"); s != "" {
			id, err := strconv.ParseInt(s, 10, 64)
			if err != nil || id < 1 {
				return nil, errors.New("parent_id must be a positive integer")
			}
			req.ParentID = &id
		}
		return req, nil
	}

	var req SaveCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, errors.New("invalid JSON")
	}
	return &req, nil
}
