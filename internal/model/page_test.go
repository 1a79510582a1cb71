// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "testing"

func TestShouldStampPublished(t *testing.T) {
	tests := []struct {
		name  string
		prior string
		next  string
		want  bool
	}{
		{"new record published", "", PageStatusPublished, true},
		{"new record draft", "", PageStatusDraft, false},
		{"draft to published", PageStatusDraft, PageStatusPublished, true},
		{"published to published", PageStatusPublished, PageStatusPublished, false},
		{"published to draft", PageStatusPublished, PageStatusDraft, false},
		{"draft to draft", PageStatusDraft, PageStatusDraft, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldStampPublished(tt.prior, tt.next); got != tt.want {
				t.Errorf("ShouldStampPublished(%q, %q) = %v, want %v", tt.prior, tt.next, got, tt.want)
			}
		})
	}
}

func TestPageVisible(t *testing.T) {
	tests := []struct {
		name    string
		status  string
		preview bool
		want    bool
	}{
		{"published without preview", PageStatusPublished, false, true},
		{"published with preview", PageStatusPublished, true, true},
		{"draft without preview", PageStatusDraft, false, false},
		{"draft with preview", PageStatusDraft, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Page{Status: tt.status}
			if got := p.Visible(tt.preview); got != tt.want {
				t.Errorf("Visible(%v) = %v, want %v", tt.preview, got, tt.want)
			}
		})
	}
}

func TestValidPageStatus(t *testing.T) {
	for _, s := range []string{PageStatusDraft, PageStatusPublished} {
		if !ValidPageStatus(s) {
			t.Errorf("ValidPageStatus(%q) = false, want true", s)
		}
	}
	for _, s := range []string{"", "archived", "Published", "DRAFT"} {
		if ValidPageStatus(s) {
			t.Errorf("ValidPageStatus(%q) = true, want false", s)
		}
	}
}
