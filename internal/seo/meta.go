// SPDX-License-Identifier: GPL-3.0-or-later

// Package seo builds meta tag data for publicly rendered pages.
package seo

import (
	"strings"

	"structpages/internal/model"
)

// DefaultRobots is applied on the render path when a page has no robots
// directive of its own. Stored pages keep an empty value; the default is
// a presentation concern only.
const DefaultRobots = "index, follow"

// Meta holds the resolved meta tag values for one rendered page.
type Meta struct {
	Title       string // <title> tag
	Description string // Meta description
	OGTitle     string // Open Graph title
	OGDesc      string // Open Graph description
	OGImage     string // Open Graph image URL (absolute)
	OGType      string // Open Graph type
	OGURL       string // Open Graph URL
	Canonical   string // Canonical URL
	Robots      string // Robots directive
}

// BuildMeta resolves the meta tags for a page with fallbacks: the meta
// title falls back to the H1, the description to truncated intro text,
// the canonical URL to baseURL/slug, and an unset robots directive to
// DefaultRobots.
func BuildMeta(page *model.Page, baseURL string) *Meta {
	meta := &Meta{
		OGType: "website",
		Robots: DefaultRobots,
	}

	// Title: meta_title → h1
	if page.MetaTitle != "" {
		meta.Title = page.MetaTitle
	} else {
		meta.Title = page.H1
	}

	// Description: meta_desc → truncated intro text
	if page.MetaDesc != "" {
		meta.Description = page.MetaDesc
	} else if page.IntroText != "" {
		meta.Description = truncateText(stripHTML(page.IntroText), 160)
	}

	// Open Graph fields fall back to the resolved title/description.
	meta.OGTitle = page.OGTitle
	if meta.OGTitle == "" {
		meta.OGTitle = meta.Title
	}
	meta.OGDesc = page.OGDesc
	if meta.OGDesc == "" {
		meta.OGDesc = meta.Description
	}
	if page.OGImage != "" {
		meta.OGImage = makeAbsoluteURL(page.OGImage, baseURL)
	}

	// Canonical URL
	if page.Canonical != "" {
		meta.Canonical = page.Canonical
	} else if page.Slug != "" && baseURL != "" {
		meta.Canonical = strings.TrimSuffix(baseURL, "/") + "/" + page.Slug
	}
	meta.OGURL = meta.Canonical

	if page.Robots != "" {
		meta.Robots = page.Robots
	}

	return meta
}

// stripHTML removes HTML tags, replacing them with spaces.
func stripHTML(html string) string {
	var result strings.Builder
	inTag := false
	for _, r := range html {
		if r == '<' {
			inTag = true
			continue
		}
		if r == '>' {
			inTag = false
			result.WriteRune(' ')
			continue
		}
		if !inTag {
			result.WriteRune(r)
		}
	}
	// Collapse whitespace
	return strings.Join(strings.Fields(result.String()), " ")
}

// truncateText truncates text to maxLen characters at a word boundary.
func truncateText(text string, maxLen int) string {
	text = strings.TrimSpace(text)
	if len(text) <= maxLen {
		return text
	}

	truncated := text[:maxLen]
	lastSpace := strings.LastIndex(truncated, " ")
	if lastSpace > maxLen/2 {
		truncated = truncated[:lastSpace]
	}

	return strings.TrimSpace(truncated) + "..."
}

// makeAbsoluteURL ensures a URL is absolute by prepending the base URL
// if needed.
func makeAbsoluteURL(url, baseURL string) string {
	if url == "" {
		return ""
	}
	if strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") {
		return url
	}
	baseURL = strings.TrimSuffix(baseURL, "/")
	if !strings.HasPrefix(url, "/") {
		url = "/" + url
	}
	return baseURL + url
}
