// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"structpages/internal/model"
	"structpages/internal/util"
)

// Store-level validation errors. Reads that resolve no row surface
// sql.ErrNoRows; anything else is a wrapped storage failure.
var (
	ErrMissingSlug   = errors.New("slug is required")
	ErrInvalidStatus = errors.New("status must be draft or published")
)

// PageInput carries the wire-side representation of a page save.
// A nil optional field is stored as NULL; a nil collection is stored as
// NULL while a present (possibly empty) one is JSON-serialized.
type PageInput struct {
	ID     *int64
	Slug   string
	Status *string

	MetaTitle *string
	MetaDesc  *string
	OGTitle   *string
	OGDesc    *string
	OGImage   *string
	Canonical *string
	Robots    *string
	InSitemap *bool

	H1        *string
	HeroImage *string
	IntroText *string

	Sections        []model.Section
	FAQItems        []model.FAQItem
	VideoComponents []model.VideoComponent
	Breadcrumbs     []model.Breadcrumb

	ConclusionHeading *string
	ConclusionContent *string

	BannerHeading     *string
	BannerDescription *string
	BannerService     *string

	Region       *string
	Service      *string
	SubService   *string
	ContentType  *string
	CategoryID   *int64
	InHeaderMenu *bool

	AuthorName        *string
	AuthorBio         *string
	AuthorImage       *string
	AuthorSocialLinks []model.SocialLink
	EditorName        *string
}

// Pages is the page repository.
type Pages struct {
	db *sql.DB
}

// NewPages creates a page repository over db.
func NewPages(db *sql.DB) *Pages {
	return &Pages{db: db}
}

// List returns pages ordered by updated descending, plus the total row
// count for the same filter. page and perPage are coerced to positive
// values; categoryID optionally restricts the result to one category.
func (s *Pages) List(ctx context.Context, page, perPage int, categoryID *int64) ([]model.Page, int64, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	offset := (page - 1) * perPage

	where := ""
	args := []any{}
	if categoryID != nil {
		where = " WHERE category_id = ?"
		args = append(args, *categoryID)
	}

	var total int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM pages"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting pages: %w", err)
	}

	query := "SELECT " + pageColumns + " FROM pages" + where + " ORDER BY updated DESC LIMIT ? OFFSET ?"
	rows, err := s.db.QueryContext(ctx, query, append(args, perPage, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing pages: %w", err)
	}
	defer rows.Close()

	pages := make([]model.Page, 0, perPage)
	for rows.Next() {
		r, err := scanPageRow(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning page: %w", err)
		}
		p, err := toPage(r)
		if err != nil {
			return nil, 0, err
		}
		pages = append(pages, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating pages: %w", err)
	}

	return pages, total, nil
}

// GetByID returns a single page by id. Returns sql.ErrNoRows when the id
// does not resolve.
func (s *Pages) GetByID(ctx context.Context, id int64) (model.Page, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+pageColumns+" FROM pages WHERE id = ?", id)
	r, err := scanPageRow(row)
	if err != nil {
		return model.Page{}, err
	}
	return toPage(r)
}

// GetBySlug returns a single page by slug. Returns sql.ErrNoRows when the
// slug does not resolve.
func (s *Pages) GetBySlug(ctx context.Context, slug string) (model.Page, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+pageColumns+" FROM pages WHERE slug = ?", slug)
	r, err := scanPageRow(row)
	if err != nil {
		return model.Page{}, err
	}
	return toPage(r)
}

// GetByKey dispatches to an id lookup when key is fully numeric, and a
// slug lookup otherwise.
func (s *Pages) GetByKey(ctx context.Context, key string) (model.Page, error) {
	if id, err := strconv.ParseInt(key, 10, 64); err == nil {
		return s.GetByID(ctx, id)
	}
	return s.GetBySlug(ctx, key)
}

// Save creates the page when input.ID is absent and updates it otherwise.
// The slug is normalized and, on collision with a different page,
// disambiguated with a random suffix rather than rejected. The published
// timestamp is stamped on every transition into "published" from a
// non-published prior state and left untouched otherwise. The persisted
// row is re-read and returned so the response reflects stored state.
func (s *Pages) Save(ctx context.Context, in PageInput) (model.Page, error) {
	slug := util.Slugify(in.Slug)
	if slug == "" {
		return model.Page{}, ErrMissingSlug
	}

	status := model.PageStatusDraft
	if in.Status != nil && *in.Status != "" {
		status = *in.Status
	}
	if !model.ValidPageStatus(status) {
		return model.Page{}, ErrInvalidStatus
	}

	var excludeID int64
	if in.ID != nil {
		excludeID = *in.ID
	}
	slug, err := s.dedupeSlug(ctx, slug, excludeID)
	if err != nil {
		return model.Page{}, err
	}

	sections, err := encodeCollection(in.Sections)
	if err != nil {
		return model.Page{}, fmt.Errorf("encoding sections: %w", err)
	}
	faqItems, err := encodeCollection(in.FAQItems)
	if err != nil {
		return model.Page{}, fmt.Errorf("encoding faq_items: %w", err)
	}
	videos, err := encodeCollection(in.VideoComponents)
	if err != nil {
		return model.Page{}, fmt.Errorf("encoding video_components: %w", err)
	}
	crumbs, err := encodeCollection(in.Breadcrumbs)
	if err != nil {
		return model.Page{}, fmt.Errorf("encoding breadcrumbs: %w", err)
	}
	socialLinks, err := encodeCollection(in.AuthorSocialLinks)
	if err != nil {
		return model.Page{}, fmt.Errorf("encoding author_social_links: %w", err)
	}

	inSitemap := int64(1)
	if in.InSitemap != nil && !*in.InSitemap {
		inSitemap = 0
	}
	inHeaderMenu := int64(0)
	if in.InHeaderMenu != nil && *in.InHeaderMenu {
		inHeaderMenu = 1
	}

	now := time.Now().UTC()

	fields := []any{
		slug, status,
		util.NullStringFromPtr(in.MetaTitle), util.NullStringFromPtr(in.MetaDesc),
		util.NullStringFromPtr(in.OGTitle), util.NullStringFromPtr(in.OGDesc),
		util.NullStringFromPtr(in.OGImage), util.NullStringFromPtr(in.Canonical),
		util.NullStringFromPtr(in.Robots), inSitemap,
		util.NullStringFromPtr(in.H1), util.NullStringFromPtr(in.HeroImage),
		util.NullStringFromPtr(in.IntroText),
		sections,
		util.NullStringFromPtr(in.ConclusionHeading), util.NullStringFromPtr(in.ConclusionContent),
		util.NullStringFromPtr(in.BannerHeading), util.NullStringFromPtr(in.BannerDescription),
		util.NullStringFromPtr(in.BannerService),
		faqItems, videos, crumbs,
		util.NullStringFromPtr(in.Region), util.NullStringFromPtr(in.Service),
		util.NullStringFromPtr(in.SubService), util.NullStringFromPtr(in.ContentType),
		util.NullInt64FromPtr(in.CategoryID), inHeaderMenu,
		util.NullStringFromPtr(in.AuthorName), util.NullStringFromPtr(in.AuthorBio),
		util.NullStringFromPtr(in.AuthorImage), socialLinks,
		util.NullStringFromPtr(in.EditorName),
	}

	var id int64
	if in.ID == nil {
		var published sql.NullTime
		if model.ShouldStampPublished("", status) {
			published = sql.NullTime{Time: now, Valid: true}
		}
		res, err := s.db.ExecContext(ctx, `INSERT INTO pages (
			slug, status,
			meta_title, meta_desc, og_title, og_desc, og_image, canonical, robots, in_sitemap,
			h1, hero_image, intro_text,
			sections, conclusion_heading, conclusion_content,
			banner_heading, banner_description, banner_service,
			faq_items, video_components, breadcrumbs,
			region, service, sub_service, content_type, category_id, in_header_menu,
			author_name, author_bio, author_image, author_social_links, editor_name,
			created, updated, published
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			append(fields, now, now, published)...)
		if err != nil {
			return model.Page{}, fmt.Errorf("inserting page: %w", err)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return model.Page{}, fmt.Errorf("reading insert id: %w", err)
		}
	} else {
		id = *in.ID

		var prior string
		if err := s.db.QueryRowContext(ctx, "SELECT status FROM pages WHERE id = ?", id).Scan(&prior); err != nil {
			return model.Page{}, err
		}

		query := `UPDATE pages SET
			slug = ?, status = ?,
			meta_title = ?, meta_desc = ?, og_title = ?, og_desc = ?, og_image = ?, canonical = ?, robots = ?, in_sitemap = ?,
			h1 = ?, hero_image = ?, intro_text = ?,
			sections = ?, conclusion_heading = ?, conclusion_content = ?,
			banner_heading = ?, banner_description = ?, banner_service = ?,
			faq_items = ?, video_components = ?, breadcrumbs = ?,
			region = ?, service = ?, sub_service = ?, content_type = ?, category_id = ?, in_header_menu = ?,
			author_name = ?, author_bio = ?, author_image = ?, author_social_links = ?, editor_name = ?,
			updated = ?`
		args := append(fields, now)
		if model.ShouldStampPublished(prior, status) {
			query += ", published = ?"
			args = append(args, now)
		}
		query += " WHERE id = ?"
		args = append(args, id)

		if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
			return model.Page{}, fmt.Errorf("updating page: %w", err)
		}
	}

	return s.GetByID(ctx, id)
}

// UpdateStatus sets the page status, stamping published on a transition
// into "published" from a non-published prior state.
func (s *Pages) UpdateStatus(ctx context.Context, id int64, status string) (model.Page, error) {
	if !model.ValidPageStatus(status) {
		return model.Page{}, ErrInvalidStatus
	}

	var prior string
	if err := s.db.QueryRowContext(ctx, "SELECT status FROM pages WHERE id = ?", id).Scan(&prior); err != nil {
		return model.Page{}, err
	}

	now := time.Now().UTC()
	query := "UPDATE pages SET status = ?, updated = ?"
	args := []any{status, now}
	if model.ShouldStampPublished(prior, status) {
		query += ", published = ?"
		args = append(args, now)
	}
	query += " WHERE id = ?"
	args = append(args, id)

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return model.Page{}, fmt.Errorf("updating page status: %w", err)
	}

	return s.GetByID(ctx, id)
}

// Delete removes a page and returns its pre-deletion record. Callers
// rely on the echoed record, so the row is read before the delete.
func (s *Pages) Delete(ctx context.Context, id int64) (model.Page, error) {
	page, err := s.GetByID(ctx, id)
	if err != nil {
		return model.Page{}, err
	}

	if _, err := s.db.ExecContext(ctx, "DELETE FROM pages WHERE id = ?", id); err != nil {
		return model.Page{}, fmt.Errorf("deleting page: %w", err)
	}

	return page, nil
}

// dedupeSlug appends a random suffix when another page (id != excludeID)
// already holds the slug. Collisions are never an error for pages.
func (s *Pages) dedupeSlug(ctx context.Context, slug string, excludeID int64) (string, error) {
	var n int64
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM pages WHERE slug = ? AND id != ?", slug, excludeID).Scan(&n)
	if err != nil {
		return "", fmt.Errorf("checking slug: %w", err)
	}
	if n > 0 {
		slug = slug + "-" + util.SlugSuffix()
	}
	return slug, nil
}
