// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"structpages/internal/cache"
	"structpages/internal/model"
	"structpages/internal/seo"
	"structpages/internal/store"
	"structpages/internal/util"
)

//go:embed templates/*.html
var templateFS embed.FS

// Frontend serves public pages by slug.
type Frontend struct {
	pages     *store.Pages
	pageCache *cache.PageCache
	baseURL   string
	tmpl      *template.Template
}

// NewFrontend creates the public page handler. pageCache may be nil to
// serve straight from storage.
func NewFrontend(pages *store.Pages, pageCache *cache.PageCache, baseURL string) (*Frontend, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	return &Frontend{
		pages:     pages,
		pageCache: pageCache,
		baseURL:   baseURL,
		tmpl:      tmpl,
	}, nil
}

// SectionView is a section prepared for template rendering.
type SectionView struct {
	Heading string
	Content template.HTML
	Anchor  string
}

// FAQView is a question/answer pair prepared for template rendering.
type FAQView struct {
	Question string
	Answer   template.HTML
}

// VideoView is a video block prepared for template rendering.
type VideoView struct {
	Heading string
	Text    template.HTML
	Embed   template.HTML
}

// PageView carries the rendered-page template data.
type PageView struct {
	Meta *seo.Meta

	H1        string
	HeroImage string
	IntroText template.HTML

	Sections    []SectionView
	FAQItems    []FAQView
	Videos      []VideoView
	Breadcrumbs []model.Breadcrumb

	ConclusionHeading string
	ConclusionContent template.HTML

	BannerHeading     string
	BannerDescription template.HTML
	BannerService     string

	AuthorName        string
	AuthorBio         template.HTML
	AuthorImage       string
	AuthorSocialLinks []model.SocialLink
	EditorName        string
}

// Page handles GET /{slug}. Draft pages 404 unless ?preview=1 is set;
// preview requests bypass the page cache so editors always see the
// latest save.
func (h *Frontend) Page(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if !util.IsValidSlug(slug) {
		http.NotFound(w, r)
		return
	}

	preview := r.URL.Query().Get("preview") == "1"

	var page model.Page
	var err error
	if !preview && h.pageCache != nil {
		page, err = h.pageCache.GetPublished(r.Context(), slug)
	} else {
		page, err = h.pages.GetBySlug(r.Context(), slug)
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.NotFound(w, r)
		} else {
			slog.Error("failed to load page", "slug", slug, "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		}
		return
	}

	if !page.Visible(preview) {
		http.NotFound(w, r)
		return
	}

	view := buildPageView(&page, h.baseURL)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.tmpl.ExecuteTemplate(w, "page.html", view); err != nil {
		slog.Error("failed to render page", "slug", slug, "error", err)
	}
}

// buildPageView converts a page into template data. Rich-text fields
// were sanitized on save and are rendered as HTML.
func buildPageView(page *model.Page, baseURL string) *PageView {
	view := &PageView{
		Meta: seo.BuildMeta(page, baseURL),

		H1:        page.H1,
		HeroImage: page.HeroImage,
		IntroText: template.HTML(page.IntroText),

		Breadcrumbs: page.Breadcrumbs,

		ConclusionHeading: page.ConclusionHeading,
		ConclusionContent: template.HTML(page.ConclusionContent),

		BannerHeading:     page.BannerHeading,
		BannerDescription: template.HTML(page.BannerDescription),
		BannerService:     page.BannerService,

		AuthorName:        page.AuthorName,
		AuthorBio:         template.HTML(page.AuthorBio),
		AuthorImage:       page.AuthorImage,
		AuthorSocialLinks: page.AuthorSocialLinks,
		EditorName:        page.EditorName,
	}

	for _, s := range page.Sections {
		view.Sections = append(view.Sections, SectionView{
			Heading: s.Heading,
			Content: template.HTML(s.Content),
			Anchor:  s.Anchor,
		})
	}
	for _, f := range page.FAQItems {
		view.FAQItems = append(view.FAQItems, FAQView{
			Question: f.Question,
			Answer:   template.HTML(f.Answer),
		})
	}
	for _, v := range page.VideoComponents {
		view.Videos = append(view.Videos, VideoView{
			Heading: v.Heading,
			Text:    template.HTML(v.Text),
			Embed:   template.HTML(v.Embed),
		})
	}

	return view
}
