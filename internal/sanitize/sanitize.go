// SPDX-License-Identifier: GPL-3.0-or-later

// Package sanitize applies HTML sanitization policies to editor-supplied
// content before it is persisted. Rich-text fields keep a safe subset of
// markup; plain-text fields are stripped of all tags.
package sanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	richPolicy  = newRichPolicy()
	plainPolicy = bluemonday.StrictPolicy()
)

// newRichPolicy builds the policy for rich-text fields (intro, conclusion,
// banner description, author bio). Based on the UGC policy with ids
// allowed so section anchors keep working.
func newRichPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("id").Globally()
	p.AllowAttrs("class").OnElements("p", "div", "span", "ul", "ol", "li", "blockquote", "table", "td", "th", "tr")
	return p
}

// Rich sanitizes a rich-text HTML fragment.
func Rich(s string) string {
	return richPolicy.Sanitize(s)
}

// Plain strips all markup from a string and trims surrounding whitespace.
func Plain(s string) string {
	return strings.TrimSpace(plainPolicy.Sanitize(s))
}

// RichPtr sanitizes an optional rich-text field in place.
func RichPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := Rich(*s)
	return &v
}

// PlainPtr sanitizes an optional plain-text field in place.
func PlainPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := Plain(*s)
	return &v
}
