// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"structpages/internal/handler"
	"structpages/internal/model"
	"structpages/internal/sanitize"
	"structpages/internal/store"
)

// SavePageRequest represents the request body for creating or updating
// a page. A present id makes the save an update; absent fields of an
// update are cleared, mirroring the full-replace save semantics of the
// storage layer.
type SavePageRequest struct {
	ID     *int64  `json:"id,omitempty"`
	Slug   string  `json:"slug"`
	Status *string `json:"status,omitempty"`

	MetaTitle *string `json:"meta_title,omitempty"`
	MetaDesc  *string `json:"meta_desc,omitempty"`
	OGTitle   *string `json:"og_title,omitempty"`
	OGDesc    *string `json:"og_desc,omitempty"`
	OGImage   *string `json:"og_image,omitempty"`
	Canonical *string `json:"canonical,omitempty"`
	Robots    *string `json:"robots,omitempty"`
	InSitemap *bool   `json:"in_sitemap,omitempty"`

	H1        *string `json:"h1,omitempty"`
	HeroImage *string `json:"hero_image,omitempty"`
	IntroText *string `json:"intro_text,omitempty"`

	Sections        []model.Section        `json:"sections,omitempty"`
	FAQItems        []model.FAQItem        `json:"faq_items,omitempty"`
	VideoComponents []model.VideoComponent `json:"video_components,omitempty"`
	Breadcrumbs     []model.Breadcrumb     `json:"breadcrumbs,omitempty"`

	ConclusionHeading *string `json:"conclusion_heading,omitempty"`
	ConclusionContent *string `json:"conclusion_content,omitempty"`

	BannerHeading     *string `json:"banner_heading,omitempty"`
	BannerDescription *string `json:"banner_description,omitempty"`
	BannerService     *string `json:"banner_service,omitempty"`

	Region       *string `json:"region,omitempty"`
	Service      *string `json:"service,omitempty"`
	SubService   *string `json:"sub_service,omitempty"`
	ContentType  *string `json:"content_type,omitempty"`
	CategoryID   *int64  `json:"category_id,omitempty"`
	InHeaderMenu *bool   `json:"in_header_menu,omitempty"`

	AuthorName        *string            `json:"author_name,omitempty"`
	AuthorBio         *string            `json:"author_bio,omitempty"`
	AuthorImage       *string            `json:"author_image,omitempty"`
	AuthorSocialLinks []model.SocialLink `json:"author_social_links,omitempty"`
	EditorName        *string            `json:"editor_name,omitempty"`
}

// UpdateStatusRequest represents the request body for a status change.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// ListPages handles GET /api/v1/pages.
func (h *Handler) ListPages(w http.ResponseWriter, r *http.Request) {
	page := handler.ParsePageParam(r)
	perPage := handler.ParsePerPageParam(r, 10, 100)

	var categoryID *int64
	if s := r.URL.Query().Get("category_id"); s != "" {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil || id < 1 {
			WriteValidationError(w, map[string]string{"category_id": "must be a positive integer"})
			return
		}
		categoryID = &id
	}

	pages, total, err := h.pages.List(r.Context(), page, perPage, categoryID)
	if err != nil {
		slog.Error("failed to list pages", "error", err)
		WriteInternalError(w, "Failed to list pages")
		return
	}

	totalPages := int(total) / perPage
	if int(total)%perPage != 0 {
		totalPages++
	}

	w.Header().Set("X-Total-Count", strconv.FormatInt(total, 10))
	w.Header().Set("X-Total-Pages", strconv.Itoa(totalPages))

	WriteSuccess(w, pages, &Meta{
		Total:   total,
		Page:    page,
		PerPage: perPage,
		Pages:   totalPages,
	})
}

// GetPage handles GET /api/v1/pages/{key}. A numeric key is treated as
// an id, anything else as a slug.
func (h *Handler) GetPage(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if key == "" {
		WriteValidationError(w, map[string]string{"key": "id or slug is required"})
		return
	}

	page, err := h.pages.GetByKey(r.Context(), key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "Page not found")
		} else {
			slog.Error("failed to get page", "key", key, "error", err)
			WriteInternalError(w, "Failed to retrieve page")
		}
		return
	}

	WriteSuccess(w, page, nil)
}

// SavePage handles POST /api/v1/pages. Creates when the body carries no
// id, updates otherwise.
func (h *Handler) SavePage(w http.ResponseWriter, r *http.Request) {
	req, err := parseSavePageRequest(r)
	if err != nil {
		WriteValidationError(w, map[string]string{"body": err.Error()})
		return
	}

	in := req.toInput()
	sanitizeInput(&in)

	// Invalidate the pre-update slug: a save can rename the page.
	var oldSlug string
	if in.ID != nil {
		if prior, err := h.pages.GetByID(r.Context(), *in.ID); err == nil {
			oldSlug = prior.Slug
		}
	}

	page, err := h.pages.Save(r.Context(), in)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrMissingSlug):
			WriteValidationError(w, map[string]string{"slug": "slug is required"})
		case errors.Is(err, store.ErrInvalidStatus):
			WriteValidationError(w, map[string]string{"status": "status must be draft or published"})
		case errors.Is(err, sql.ErrNoRows):
			WriteNotFound(w, "Page not found")
		default:
			slog.Error("failed to save page", "error", err)
			WriteInternalError(w, "Failed to save page")
		}
		return
	}

	h.invalidatePage(r, oldSlug, page.Slug)

	if in.ID == nil {
		WriteCreated(w, page)
		return
	}
	WriteSuccess(w, page, nil)
}

// UpdatePageStatus handles PUT/PATCH /api/v1/pages/{id}/status.
func (h *Handler) UpdatePageStatus(w http.ResponseWriter, r *http.Request) {
	id, err := handler.ParseIDParam(r)
	if err != nil {
		WriteValidationError(w, map[string]string{"id": "must be a positive integer"})
		return
	}

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteValidationError(w, map[string]string{"body": "invalid JSON"})
		return
	}

	page, err := h.pages.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrInvalidStatus):
			WriteValidationError(w, map[string]string{"status": "status must be draft or published"})
		case errors.Is(err, sql.ErrNoRows):
			WriteNotFound(w, "Page not found")
		default:
			slog.Error("failed to update page status", "id", id, "error", err)
			WriteInternalError(w, "Failed to update page status")
		}
		return
	}

	h.invalidatePage(r, "", page.Slug)

	WriteSuccess(w, page, nil)
}

// DeletePage handles DELETE /api/v1/pages/{id} and echoes the deleted
// record.
func (h *Handler) DeletePage(w http.ResponseWriter, r *http.Request) {
	id, err := handler.ParseIDParam(r)
	if err != nil {
		WriteValidationError(w, map[string]string{"id": "must be a positive integer"})
		return
	}

	page, err := h.pages.Delete(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "Page not found")
		} else {
			slog.Error("failed to delete page", "id", id, "error", err)
			WriteInternalError(w, "Failed to delete page")
		}
		return
	}

	h.invalidatePage(r, "", page.Slug)

	WriteSuccess(w, page, nil)
}

// invalidatePage drops cached variants of a page after a write. Both
// slugs are invalidated when a save renamed the page.
func (h *Handler) invalidatePage(r *http.Request, oldSlug, newSlug string) {
	if h.pageCache == nil {
		return
	}
	if oldSlug != "" && oldSlug != newSlug {
		h.pageCache.Invalidate(r.Context(), oldSlug)
	}
	h.pageCache.Invalidate(r.Context(), newSlug)
}

// parseSavePageRequest decodes a page save from a JSON body or, for
// form posts, from form fields with JSON-encoded sub-collections.
func parseSavePageRequest(r *http.Request) (*SavePageRequest, error) {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "application/x-www-form-urlencoded" {
		return parseSavePageForm(r)
	}

	var req SavePageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, errors.New("invalid JSON")
	}
	return &req, nil
}

// parseSavePageForm maps form fields onto a SavePageRequest. Collection
// fields arrive as JSON strings.
func parseSavePageForm(r *http.Request) (*SavePageRequest, error) {
	if err := r.ParseForm(); err != nil {
		return nil, errors.New("invalid form body")
	}

	req := &SavePageRequest{Slug: r.PostFormValue("slug")}

	if s := r.PostFormValue("id"); s != "" {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil || id < 1 {
			return nil, errors.New("id must be a positive integer")
		}
		req.ID = &id
	}
	if s := r.PostFormValue("category_id"); s != "" {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil || id < 1 {
			return nil, errors.New("category_id must be a positive integer")
		}
		req.CategoryID = &id
	}

	req.Status = formString(r, "status")
	req.MetaTitle = formString(r, "meta_title")
	req.MetaDesc = formString(r, "meta_desc")
	req.OGTitle = formString(r, "og_title")
	req.OGDesc = formString(r, "og_desc")
	req.OGImage = formString(r, "og_image")
	req.Canonical = formString(r, "canonical")
	req.Robots = formString(r, "robots")
	req.H1 = formString(r, "h1")
	req.HeroImage = formString(r, "hero_image")
	req.IntroText = formString(r, "intro_text")
	req.ConclusionHeading = formString(r, "conclusion_heading")
	req.ConclusionContent = formString(r, "conclusion_content")
	req.BannerHeading = formString(r, "banner_heading")
	req.BannerDescription = formString(r, "banner_description")
	req.BannerService = formString(r, "banner_service")
	req.Region = formString(r, "region")
	req.Service = formString(r, "service")
	req.SubService = formString(r, "sub_service")
	req.ContentType = formString(r, "content_type")
	req.AuthorName = formString(r, "author_name")
	req.AuthorBio = formString(r, "author_bio")
	req.AuthorImage = formString(r, "author_image")
	req.EditorName = formString(r, "editor_name")

	req.InSitemap = formBool(r, "in_sitemap")
	req.InHeaderMenu = formBool(r, "in_header_menu")

	if err := formCollection(r, "sections", &req.Sections); err != nil {
		return nil, err
	}
	if err := formCollection(r, "faq_items", &req.FAQItems); err != nil {
		return nil, err
	}
	if err := formCollection(r, "video_components", &req.VideoComponents); err != nil {
		return nil, err
	}
	if err := formCollection(r, "breadcrumbs", &req.Breadcrumbs); err != nil {
		return nil, err
	}
	if err := formCollection(r, "author_social_links", &req.AuthorSocialLinks); err != nil {
		return nil, err
	}

	return req, nil
}

// formString returns a pointer to a form value, or nil when the field
// was not submitted at all.
func formString(r *http.Request, name string) *string {
	if !r.PostForm.Has(name) {
		return nil
	}
	v := r.PostFormValue(name)
	return &v
}

// formBool interprets common truthy form encodings.
func formBool(r *http.Request, name string) *bool {
	if !r.PostForm.Has(name) {
		return nil
	}
	v := strings.ToLower(r.PostFormValue(name))
	b := v == "1" || v == "true" || v == "on" || v == "yes"
	return &b
}

// formCollection decodes a JSON-encoded collection form field into dst.
func formCollection[T any](r *http.Request, name string, dst *[]T) error {
	if !r.PostForm.Has(name) {
		return nil
	}
	raw := r.PostFormValue(name)
	if raw == "" {
		*dst = []T{}
		return nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return fmt.Errorf("%s must be a JSON array", name)
	}
	return nil
}

// toInput converts the request into the storage input.
func (req *SavePageRequest) toInput() store.PageInput {
	return store.PageInput{
		ID:     req.ID,
		Slug:   req.Slug,
		Status: req.Status,

		MetaTitle: req.MetaTitle,
		MetaDesc:  req.MetaDesc,
		OGTitle:   req.OGTitle,
		OGDesc:    req.OGDesc,
		OGImage:   req.OGImage,
		Canonical: req.Canonical,
		Robots:    req.Robots,
		InSitemap: req.InSitemap,

		H1:        req.H1,
		HeroImage: req.HeroImage,
		IntroText: req.IntroText,

		Sections:        req.Sections,
		FAQItems:        req.FAQItems,
		VideoComponents: req.VideoComponents,
		Breadcrumbs:     req.Breadcrumbs,

		ConclusionHeading: req.ConclusionHeading,
		ConclusionContent: req.ConclusionContent,

		BannerHeading:     req.BannerHeading,
		BannerDescription: req.BannerDescription,
		BannerService:     req.BannerService,

		Region:       req.Region,
		Service:      req.Service,
		SubService:   req.SubService,
		ContentType:  req.ContentType,
		CategoryID:   req.CategoryID,
		InHeaderMenu: req.InHeaderMenu,

		AuthorName:        req.AuthorName,
		AuthorBio:         req.AuthorBio,
		AuthorImage:       req.AuthorImage,
		AuthorSocialLinks: req.AuthorSocialLinks,
		EditorName:        req.EditorName,
	}
}

// sanitizeInput cleans editor-supplied markup before persistence.
// Rich-text fields keep a safe HTML subset; single-line fields are
// stripped to plain text. Sub-collection elements (sections, FAQ items,
// video components, breadcrumbs, social links) are stored verbatim so
// their content round-trips exactly; the write surface is admin-only.
func sanitizeInput(in *store.PageInput) {
	in.MetaTitle = sanitize.PlainPtr(in.MetaTitle)
	in.MetaDesc = sanitize.PlainPtr(in.MetaDesc)
	in.OGTitle = sanitize.PlainPtr(in.OGTitle)
	in.OGDesc = sanitize.PlainPtr(in.OGDesc)
	in.Robots = sanitize.PlainPtr(in.Robots)
	in.H1 = sanitize.PlainPtr(in.H1)
	in.IntroText = sanitize.RichPtr(in.IntroText)
	in.ConclusionHeading = sanitize.PlainPtr(in.ConclusionHeading)
	in.ConclusionContent = sanitize.RichPtr(in.ConclusionContent)
	in.BannerHeading = sanitize.PlainPtr(in.BannerHeading)
	in.BannerDescription = sanitize.RichPtr(in.BannerDescription)
	in.BannerService = sanitize.PlainPtr(in.BannerService)
	in.Region = sanitize.PlainPtr(in.Region)
	in.Service = sanitize.PlainPtr(in.Service)
	in.SubService = sanitize.PlainPtr(in.SubService)
	in.ContentType = sanitize.PlainPtr(in.ContentType)
	in.AuthorName = sanitize.PlainPtr(in.AuthorName)
	in.AuthorBio = sanitize.RichPtr(in.AuthorBio)
	in.EditorName = sanitize.PlainPtr(in.EditorName)
}
