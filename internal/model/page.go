// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines the wire-shaped entities served by the API and
// the publication rules that govern their visibility.
package model

import "time"

// Page statuses
const (
	PageStatusDraft     = "draft"
	PageStatusPublished = "published"
)

// ValidPageStatus reports whether s is an accepted page status.
func ValidPageStatus(s string) bool {
	return s == PageStatusDraft || s == PageStatusPublished
}

// Section is one repeatable content block of a page.
type Section struct {
	Heading string `json:"heading"`
	Content string `json:"content"`
	Anchor  string `json:"anchor,omitempty"`
}

// FAQItem is one question/answer pair.
type FAQItem struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// VideoComponent is one embedded video block. Embed holds raw embed
// markup supplied by the editor.
type VideoComponent struct {
	Heading string `json:"heading,omitempty"`
	Text    string `json:"text,omitempty"`
	Embed   string `json:"embed"`
}

// Breadcrumb is one element of the page breadcrumb trail. URL is empty
// for the trailing (current page) element.
type Breadcrumb struct {
	Text string `json:"text"`
	URL  string `json:"url,omitempty"`
}

// SocialLink is one author social profile link.
type SocialLink struct {
	Platform string `json:"platform"`
	URL      string `json:"url"`
}

// Page is the API representation of a structured page. The five
// sub-collections are ordered lists; order is display order and is
// preserved exactly across save/read cycles.
type Page struct {
	ID     int64  `json:"id"`
	Slug   string `json:"slug"`
	Status string `json:"status"`

	MetaTitle string `json:"meta_title,omitempty"`
	MetaDesc  string `json:"meta_desc,omitempty"`
	OGTitle   string `json:"og_title,omitempty"`
	OGDesc    string `json:"og_desc,omitempty"`
	OGImage   string `json:"og_image,omitempty"`
	Canonical string `json:"canonical,omitempty"`
	Robots    string `json:"robots,omitempty"`
	InSitemap bool   `json:"in_sitemap"`

	H1        string `json:"h1,omitempty"`
	HeroImage string `json:"hero_image,omitempty"`
	IntroText string `json:"intro_text,omitempty"`

	Sections        []Section        `json:"sections"`
	FAQItems        []FAQItem        `json:"faq_items"`
	VideoComponents []VideoComponent `json:"video_components"`
	Breadcrumbs     []Breadcrumb     `json:"breadcrumbs"`

	ConclusionHeading string `json:"conclusion_heading,omitempty"`
	ConclusionContent string `json:"conclusion_content,omitempty"`

	BannerHeading     string `json:"banner_heading,omitempty"`
	BannerDescription string `json:"banner_description,omitempty"`
	BannerService     string `json:"banner_service,omitempty"`

	Region       string `json:"region,omitempty"`
	Service      string `json:"service,omitempty"`
	SubService   string `json:"sub_service,omitempty"`
	ContentType  string `json:"content_type,omitempty"`
	CategoryID   *int64 `json:"category_id,omitempty"`
	InHeaderMenu bool   `json:"in_header_menu"`

	AuthorName        string       `json:"author_name,omitempty"`
	AuthorBio         string       `json:"author_bio,omitempty"`
	AuthorImage       string       `json:"author_image,omitempty"`
	AuthorSocialLinks []SocialLink `json:"author_social_links"`
	EditorName        string       `json:"editor_name,omitempty"`

	Created   time.Time  `json:"created"`
	Updated   time.Time  `json:"updated"`
	Published *time.Time `json:"published,omitempty"`
}

// IsPublished returns true if the page is published.
func (p *Page) IsPublished() bool {
	return p.Status == PageStatusPublished
}

// IsDraft returns true if the page is a draft.
func (p *Page) IsDraft() bool {
	return p.Status == PageStatusDraft
}

// Visible decides whether the public resolver may serve the page.
// Preview requests bypass the published-only restriction; the admin API
// never consults this.
func (p *Page) Visible(preview bool) bool {
	return preview || p.IsPublished()
}

// ShouldStampPublished reports whether a status change warrants setting
// the published timestamp: true on every transition into "published"
// from a non-published prior state (an empty prior means a new record).
// A page that is already published keeps its existing timestamp.
func ShouldStampPublished(prior, next string) bool {
	return next == PageStatusPublished && prior != PageStatusPublished
}
