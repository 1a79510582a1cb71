// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"structpages/internal/model"
)

func TestSaveCreateDefaults(t *testing.T) {
	db := testDB(t)
	pages := NewPages(db)
	ctx := context.Background()

	page, err := pages.Save(ctx, PageInput{Slug: "About Us"})
	require.NoError(t, err)

	assert.NotZero(t, page.ID)
	assert.Equal(t, "about-us", page.Slug)
	assert.Equal(t, model.PageStatusDraft, page.Status)
	assert.True(t, page.InSitemap, "in_sitemap defaults to true")
	assert.False(t, page.InHeaderMenu, "in_header_menu defaults to false")
	assert.Empty(t, page.Robots, "robots has no storage-side default")
	assert.Nil(t, page.Published)
	assert.Equal(t, page.Created, page.Updated, "created == updated on create")

	// Collections read back as empty lists, never null
	assert.NotNil(t, page.Sections)
	assert.Len(t, page.Sections, 0)
	assert.NotNil(t, page.FAQItems)
	assert.NotNil(t, page.VideoComponents)
	assert.NotNil(t, page.Breadcrumbs)
	assert.NotNil(t, page.AuthorSocialLinks)
}

func TestSaveCreatePublishedStampsTimestamp(t *testing.T) {
	db := testDB(t)
	pages := NewPages(db)
	ctx := context.Background()

	page, err := pages.Save(ctx, PageInput{
		Slug:   "launch",
		Status: strPtr(model.PageStatusPublished),
	})
	require.NoError(t, err)

	assert.Equal(t, model.PageStatusPublished, page.Status)
	require.NotNil(t, page.Published)
}

func TestSaveCollectionsRoundTrip(t *testing.T) {
	db := testDB(t)
	pages := NewPages(db)
	ctx := context.Background()

	in := PageInput{
		Slug: "round-trip",
		Sections: []model.Section{
			{Heading: "First", Content: "<p>räksmörgås &amp; fish</p>", Anchor: "first"},
			{Heading: "Second", Content: "<p>中文内容</p>", Anchor: "second"},
			{Heading: "Third", Content: "plain"},
		},
		FAQItems: []model.FAQItem{
			{Question: "Why?", Answer: "<p>Because.</p>"},
			{Question: "How?", Answer: "Carefully."},
		},
		VideoComponents: []model.VideoComponent{
			{Heading: "Demo", Embed: `<iframe src="https://example.com/v/1"></iframe>`},
		},
		Breadcrumbs: []model.Breadcrumb{
			{Text: "Home", URL: "/"},
			{Text: "Round Trip"},
		},
		AuthorSocialLinks: []model.SocialLink{
			{Platform: "linkedin", URL: "https://linkedin.com/in/someone"},
		},
	}

	saved, err := pages.Save(ctx, in)
	require.NoError(t, err)

	// Element order and content survive the JSON column exactly
	assert.Equal(t, in.Sections, saved.Sections)
	assert.Equal(t, in.FAQItems, saved.FAQItems)
	assert.Equal(t, in.VideoComponents, saved.VideoComponents)
	assert.Equal(t, in.Breadcrumbs, saved.Breadcrumbs)
	assert.Equal(t, in.AuthorSocialLinks, saved.AuthorSocialLinks)

	// And again through an independent read
	read, err := pages.GetByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved.Sections, read.Sections)
	assert.Equal(t, saved.VideoComponents, read.VideoComponents)
}

func TestSaveSlugCollisionAppendsSuffix(t *testing.T) {
	db := testDB(t)
	pages := NewPages(db)
	ctx := context.Background()

	first, err := pages.Save(ctx, PageInput{Slug: "about"})
	require.NoError(t, err)
	assert.Equal(t, "about", first.Slug)

	second, err := pages.Save(ctx, PageInput{Slug: "about"})
	require.NoError(t, err, "page slug collision must not be an error")
	assert.NotEqual(t, first.Slug, second.Slug)
	assert.True(t, strings.HasPrefix(second.Slug, "about-"), "suffixed slug keeps the base: %q", second.Slug)
}

func TestSaveUpdateKeepsOwnSlug(t *testing.T) {
	db := testDB(t)
	pages := NewPages(db)
	ctx := context.Background()

	page, err := pages.Save(ctx, PageInput{Slug: "services"})
	require.NoError(t, err)

	updated, err := pages.Save(ctx, PageInput{
		ID:   &page.ID,
		Slug: "services",
		H1:   strPtr("Our Services"),
	})
	require.NoError(t, err)
	assert.Equal(t, "services", updated.Slug, "updating a page to its own slug must not suffix")
	assert.Equal(t, "Our Services", updated.H1)
}

func TestSaveUpdateOmittedFieldsBecomeNull(t *testing.T) {
	db := testDB(t)
	pages := NewPages(db)
	ctx := context.Background()

	page, err := pages.Save(ctx, PageInput{
		Slug:      "full-replace",
		MetaTitle: strPtr("Old Title"),
		Sections:  []model.Section{{Heading: "Kept?"}},
	})
	require.NoError(t, err)
	require.Equal(t, "Old Title", page.MetaTitle)

	// The save path is a full replace: absent fields store NULL
	updated, err := pages.Save(ctx, PageInput{ID: &page.ID, Slug: "full-replace"})
	require.NoError(t, err)
	assert.Empty(t, updated.MetaTitle)
	assert.Len(t, updated.Sections, 0)
}

func TestPublishedStampedOnEachTransitionIn(t *testing.T) {
	db := testDB(t)
	pages := NewPages(db)
	ctx := context.Background()

	page, err := pages.Save(ctx, PageInput{Slug: "lifecycle"})
	require.NoError(t, err)
	require.Nil(t, page.Published)

	page, err = pages.UpdateStatus(ctx, page.ID, model.PageStatusPublished)
	require.NoError(t, err)
	require.NotNil(t, page.Published)
	t1 := *page.Published

	// Re-publishing an already-published page keeps the timestamp
	page, err = pages.UpdateStatus(ctx, page.ID, model.PageStatusPublished)
	require.NoError(t, err)
	require.NotNil(t, page.Published)
	assert.True(t, page.Published.Equal(t1), "publish while published must not re-stamp")

	// Draft transition preserves the timestamp
	page, err = pages.UpdateStatus(ctx, page.ID, model.PageStatusDraft)
	require.NoError(t, err)
	require.NotNil(t, page.Published, "draft transition never clears published")
	assert.True(t, page.Published.Equal(t1))

	// A fresh transition into published re-stamps
	time.Sleep(5 * time.Millisecond)
	page, err = pages.UpdateStatus(ctx, page.ID, model.PageStatusPublished)
	require.NoError(t, err)
	require.NotNil(t, page.Published)
	assert.True(t, page.Published.After(t1), "new publish transition stamps a later timestamp")
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	db := testDB(t)
	pages := NewPages(db)
	ctx := context.Background()

	page, err := pages.Save(ctx, PageInput{Slug: "status-check"})
	require.NoError(t, err)

	_, err = pages.UpdateStatus(ctx, page.ID, "archived")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestGetByKeyDispatch(t *testing.T) {
	db := testDB(t)
	pages := NewPages(db)
	ctx := context.Background()

	page, err := pages.Save(ctx, PageInput{Slug: "dispatch-target"})
	require.NoError(t, err)

	byID, err := pages.GetByKey(ctx, fmt.Sprintf("%d", page.ID))
	require.NoError(t, err)
	assert.Equal(t, page.ID, byID.ID)

	bySlug, err := pages.GetByKey(ctx, "dispatch-target")
	require.NoError(t, err)
	assert.Equal(t, page.ID, bySlug.ID)

	_, err = pages.GetByKey(ctx, "no-such-slug")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestGetByIDIsIdempotent(t *testing.T) {
	db := testDB(t)
	pages := NewPages(db)
	ctx := context.Background()

	page, err := pages.Save(ctx, PageInput{
		Slug:     "idempotent",
		Sections: []model.Section{{Heading: "A"}, {Heading: "B"}},
	})
	require.NoError(t, err)

	first, err := pages.GetByID(ctx, page.ID)
	require.NoError(t, err)
	second, err := pages.GetByID(ctx, page.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestDeleteEchoesRecord(t *testing.T) {
	db := testDB(t)
	pages := NewPages(db)
	ctx := context.Background()

	page, err := pages.Save(ctx, PageInput{Slug: "doomed", H1: strPtr("Goodbye")})
	require.NoError(t, err)

	deleted, err := pages.Delete(ctx, page.ID)
	require.NoError(t, err)
	assert.Equal(t, page.ID, deleted.ID)
	assert.Equal(t, "Goodbye", deleted.H1)

	_, err = pages.GetByID(ctx, page.ID)
	assert.ErrorIs(t, err, sql.ErrNoRows)

	_, err = pages.Delete(ctx, page.ID)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestListPagination(t *testing.T) {
	db := testDB(t)
	pages := NewPages(db)
	ctx := context.Background()

	ids := make([]int64, 0, 25)
	for i := 0; i < 25; i++ {
		p, err := pages.Save(ctx, PageInput{Slug: fmt.Sprintf("page-%02d", i)})
		require.NoError(t, err)
		ids = append(ids, p.ID)
	}

	// Force a strict updated ordering: page-24 newest, page-00 oldest
	base := time.Now().UTC().Add(-time.Hour)
	for i, id := range ids {
		_, err := db.ExecContext(ctx, "UPDATE pages SET updated = ? WHERE id = ?",
			base.Add(time.Duration(i)*time.Minute), id)
		require.NoError(t, err)
	}

	items, total, err := pages.List(ctx, 2, 10, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 25, total)
	require.Len(t, items, 10)

	// Page 2 of 10-per-page, updated descending: rows 11-20, i.e. page-14 .. page-05
	assert.Equal(t, "page-14", items[0].Slug)
	assert.Equal(t, "page-05", items[9].Slug)

	// Out-of-range coercion
	items, total, err = pages.List(ctx, 0, 0, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 25, total)
	assert.Len(t, items, 10, "page and perPage are coerced to positive values")
}

func TestListCategoryFilter(t *testing.T) {
	db := testDB(t)
	pages := NewPages(db)
	categories := NewCategories(db)
	ctx := context.Background()

	cat, err := categories.Save(ctx, CategoryInput{Name: "Guides", Slug: "guides"})
	require.NoError(t, err)

	_, err = pages.Save(ctx, PageInput{Slug: "in-category", CategoryID: &cat.ID})
	require.NoError(t, err)
	_, err = pages.Save(ctx, PageInput{Slug: "uncategorized"})
	require.NoError(t, err)

	items, total, err := pages.List(ctx, 1, 10, &cat.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, "in-category", items[0].Slug)
}

func TestSaveMissingSlug(t *testing.T) {
	db := testDB(t)
	pages := NewPages(db)

	_, err := pages.Save(context.Background(), PageInput{Slug: "!!!"})
	assert.True(t, errors.Is(err, ErrMissingSlug), "slug that normalizes to empty is rejected")
}

func TestSaveUpdateMissingPage(t *testing.T) {
	db := testDB(t)
	pages := NewPages(db)

	missing := int64(9999)
	_, err := pages.Save(context.Background(), PageInput{ID: &missing, Slug: "ghost"})
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestSaveCategoryReferenceSurvivesCategoryDelete(t *testing.T) {
	db := testDB(t)
	pages := NewPages(db)
	categories := NewCategories(db)
	ctx := context.Background()

	cat, err := categories.Save(ctx, CategoryInput{Name: "Temp", Slug: "temp"})
	require.NoError(t, err)

	page, err := pages.Save(ctx, PageInput{Slug: "orphan-to-be", CategoryID: &cat.ID})
	require.NoError(t, err)

	_, err = categories.Delete(ctx, cat.ID)
	require.NoError(t, err)

	// The weak reference dangles rather than cascading
	page, err = pages.GetByID(ctx, page.ID)
	require.NoError(t, err)
	require.NotNil(t, page.CategoryID)
	assert.Equal(t, cat.ID, *page.CategoryID)
}
