// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"structpages/internal/model"
	"structpages/internal/util"
)

// pageRow mirrors the pages table. Optional columns are nullable; the
// five sub-collections are JSON text columns.
type pageRow struct {
	ID     int64
	Slug   string
	Status string

	MetaTitle sql.NullString
	MetaDesc  sql.NullString
	OGTitle   sql.NullString
	OGDesc    sql.NullString
	OGImage   sql.NullString
	Canonical sql.NullString
	Robots    sql.NullString
	InSitemap int64

	H1        sql.NullString
	HeroImage sql.NullString
	IntroText sql.NullString

	Sections          sql.NullString
	ConclusionHeading sql.NullString
	ConclusionContent sql.NullString
	BannerHeading     sql.NullString
	BannerDescription sql.NullString
	BannerService     sql.NullString
	FAQItems          sql.NullString
	VideoComponents   sql.NullString
	Breadcrumbs       sql.NullString

	Region       sql.NullString
	Service      sql.NullString
	SubService   sql.NullString
	ContentType  sql.NullString
	CategoryID   sql.NullInt64
	InHeaderMenu int64

	AuthorName        sql.NullString
	AuthorBio         sql.NullString
	AuthorImage       sql.NullString
	AuthorSocialLinks sql.NullString
	EditorName        sql.NullString

	Created   sql.NullTime
	Updated   sql.NullTime
	Published sql.NullTime
}

// pageColumns is the column list matching scanPageRow's field order.
const pageColumns = `id, slug, status,
	meta_title, meta_desc, og_title, og_desc, og_image, canonical, robots, in_sitemap,
	h1, hero_image, intro_text,
	sections, conclusion_heading, conclusion_content,
	banner_heading, banner_description, banner_service,
	faq_items, video_components, breadcrumbs,
	region, service, sub_service, content_type, category_id, in_header_menu,
	author_name, author_bio, author_image, author_social_links, editor_name,
	created, updated, published`

// rowScanner abstracts *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanPageRow(s rowScanner) (pageRow, error) {
	var r pageRow
	err := s.Scan(
		&r.ID, &r.Slug, &r.Status,
		&r.MetaTitle, &r.MetaDesc, &r.OGTitle, &r.OGDesc, &r.OGImage, &r.Canonical, &r.Robots, &r.InSitemap,
		&r.H1, &r.HeroImage, &r.IntroText,
		&r.Sections, &r.ConclusionHeading, &r.ConclusionContent,
		&r.BannerHeading, &r.BannerDescription, &r.BannerService,
		&r.FAQItems, &r.VideoComponents, &r.Breadcrumbs,
		&r.Region, &r.Service, &r.SubService, &r.ContentType, &r.CategoryID, &r.InHeaderMenu,
		&r.AuthorName, &r.AuthorBio, &r.AuthorImage, &r.AuthorSocialLinks, &r.EditorName,
		&r.Created, &r.Updated, &r.Published,
	)
	return r, err
}

// toPage converts a stored row into its wire representation: integer and
// boolean casts, JSON decoding of the sub-collections (a missing stored
// value becomes an empty list, never null), and timestamp conversion.
func toPage(r pageRow) (model.Page, error) {
	p := model.Page{
		ID:     r.ID,
		Slug:   r.Slug,
		Status: r.Status,

		MetaTitle: r.MetaTitle.String,
		MetaDesc:  r.MetaDesc.String,
		OGTitle:   r.OGTitle.String,
		OGDesc:    r.OGDesc.String,
		OGImage:   r.OGImage.String,
		Canonical: r.Canonical.String,
		Robots:    r.Robots.String,
		InSitemap: r.InSitemap != 0,

		H1:        r.H1.String,
		HeroImage: r.HeroImage.String,
		IntroText: r.IntroText.String,

		ConclusionHeading: r.ConclusionHeading.String,
		ConclusionContent: r.ConclusionContent.String,
		BannerHeading:     r.BannerHeading.String,
		BannerDescription: r.BannerDescription.String,
		BannerService:     r.BannerService.String,

		Region:       r.Region.String,
		Service:      r.Service.String,
		SubService:   r.SubService.String,
		ContentType:  r.ContentType.String,
		CategoryID:   util.PtrFromNullInt64(r.CategoryID),
		InHeaderMenu: r.InHeaderMenu != 0,

		AuthorName:  r.AuthorName.String,
		AuthorBio:   r.AuthorBio.String,
		AuthorImage: r.AuthorImage.String,
		EditorName:  r.EditorName.String,
	}

	if r.Created.Valid {
		p.Created = r.Created.Time
	}
	if r.Updated.Valid {
		p.Updated = r.Updated.Time
	}
	if r.Published.Valid {
		t := r.Published.Time
		p.Published = &t
	}

	var err error
	if p.Sections, err = decodeCollection[model.Section](r.Sections); err != nil {
		return model.Page{}, fmt.Errorf("decoding sections: %w", err)
	}
	if p.FAQItems, err = decodeCollection[model.FAQItem](r.FAQItems); err != nil {
		return model.Page{}, fmt.Errorf("decoding faq_items: %w", err)
	}
	if p.VideoComponents, err = decodeCollection[model.VideoComponent](r.VideoComponents); err != nil {
		return model.Page{}, fmt.Errorf("decoding video_components: %w", err)
	}
	if p.Breadcrumbs, err = decodeCollection[model.Breadcrumb](r.Breadcrumbs); err != nil {
		return model.Page{}, fmt.Errorf("decoding breadcrumbs: %w", err)
	}
	if p.AuthorSocialLinks, err = decodeCollection[model.SocialLink](r.AuthorSocialLinks); err != nil {
		return model.Page{}, fmt.Errorf("decoding author_social_links: %w", err)
	}

	return p, nil
}

// decodeCollection parses a JSON column into an ordered list.
// NULL or empty stored values yield an empty list.
func decodeCollection[T any](ns sql.NullString) ([]T, error) {
	if !ns.Valid || strings.TrimSpace(ns.String) == "" {
		return []T{}, nil
	}
	items := []T{}
	if err := json.Unmarshal([]byte(ns.String), &items); err != nil {
		return nil, err
	}
	return items, nil
}

// encodeCollection serializes an ordered list to its JSON column value.
// A nil list (field absent from input) is stored as NULL. HTML escaping
// is disabled so unicode and embed markup round-trip byte-for-byte.
func encodeCollection[T any](items []T) (sql.NullString, error) {
	if items == nil {
		return sql.NullString{}, nil
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(items); err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: strings.TrimRight(buf.String(), "\n"), Valid: true}, nil
}

// categoryRow mirrors the categories table.
type categoryRow struct {
	ID          int64
	Name        string
	Slug        string
	Description sql.NullString
	ParentID    sql.NullInt64
	Created     sql.NullTime
	Updated     sql.NullTime
}

const categoryColumns = `id, name, slug, description, parent_id, created, updated`

func scanCategoryRow(s rowScanner) (categoryRow, error) {
	var r categoryRow
	err := s.Scan(&r.ID, &r.Name, &r.Slug, &r.Description, &r.ParentID, &r.Created, &r.Updated)
	return r, err
}

func toCategory(r categoryRow) model.Category {
	c := model.Category{
		ID:          r.ID,
		Name:        r.Name,
		Slug:        r.Slug,
		Description: r.Description.String,
		ParentID:    util.PtrFromNullInt64(r.ParentID),
	}
	if r.Created.Valid {
		c.Created = r.Created.Time
	}
	if r.Updated.Valid {
		c.Updated = r.Updated.Time
	}
	return c
}
