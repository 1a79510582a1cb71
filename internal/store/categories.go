// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"structpages/internal/model"
	"structpages/internal/util"
)

// ErrDuplicateSlug is returned when a category save would reuse another
// category's slug. Unlike page saves, category saves reject collisions
// instead of suffixing.
var ErrDuplicateSlug = errors.New("a category with this slug already exists")

// ErrMissingName is returned when a category save lacks a name.
var ErrMissingName = errors.New("name is required")

// CategoryInput carries the wire-side representation of a category save.
type CategoryInput struct {
	ID          *int64
	Name        string
	Slug        string
	Description *string
	ParentID    *int64
}

// Categories is the category repository.
type Categories struct {
	db *sql.DB
}

// NewCategories creates a category repository over db.
func NewCategories(db *sql.DB) *Categories {
	return &Categories{db: db}
}

// List returns all categories ordered by name ascending.
func (s *Categories) List(ctx context.Context) ([]model.Category, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+categoryColumns+" FROM categories ORDER BY name ASC")
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	defer rows.Close()

	categories := []model.Category{}
	for rows.Next() {
		r, err := scanCategoryRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}
		categories = append(categories, toCategory(r))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating categories: %w", err)
	}

	return categories, nil
}

// GetByID returns a single category. Returns sql.ErrNoRows when the id
// does not resolve.
func (s *Categories) GetByID(ctx context.Context, id int64) (model.Category, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+categoryColumns+" FROM categories WHERE id = ?", id)
	r, err := scanCategoryRow(row)
	if err != nil {
		return model.Category{}, err
	}
	return toCategory(r), nil
}

// Save creates the category when input.ID is absent and updates it
// otherwise. Name and slug are required; the normalized slug must not be
// held by a different category (ErrDuplicateSlug). Updating a category
// to its own unchanged slug succeeds.
func (s *Categories) Save(ctx context.Context, in CategoryInput) (model.Category, error) {
	if in.Name == "" {
		return model.Category{}, ErrMissingName
	}
	slug := util.Slugify(in.Slug)
	if slug == "" {
		return model.Category{}, ErrMissingSlug
	}

	var excludeID int64
	if in.ID != nil {
		excludeID = *in.ID
	}
	var n int64
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM categories WHERE slug = ? AND id != ?", slug, excludeID).Scan(&n)
	if err != nil {
		return model.Category{}, fmt.Errorf("checking slug: %w", err)
	}
	if n > 0 {
		return model.Category{}, ErrDuplicateSlug
	}

	now := time.Now().UTC()

	var id int64
	if in.ID == nil {
		res, err := s.db.ExecContext(ctx,
			"INSERT INTO categories (name, slug, description, parent_id, created, updated) VALUES (?, ?, ?, ?, ?, ?)",
			in.Name, slug, util.NullStringFromPtr(in.Description), util.NullInt64FromPtr(in.ParentID), now, now)
		if err != nil {
			return model.Category{}, fmt.Errorf("inserting category: %w", err)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return model.Category{}, fmt.Errorf("reading insert id: %w", err)
		}
	} else {
		id = *in.ID
		res, err := s.db.ExecContext(ctx,
			"UPDATE categories SET name = ?, slug = ?, description = ?, parent_id = ?, updated = ? WHERE id = ?",
			in.Name, slug, util.NullStringFromPtr(in.Description), util.NullInt64FromPtr(in.ParentID), now, id)
		if err != nil {
			return model.Category{}, fmt.Errorf("updating category: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return model.Category{}, fmt.Errorf("reading affected rows: %w", err)
		}
		if affected == 0 {
			return model.Category{}, sql.ErrNoRows
		}
	}

	return s.GetByID(ctx, id)
}

// Delete removes a category and returns its pre-deletion record.
// Pages referencing the category keep their category_id; the reference
// is weak and may dangle after deletion.
func (s *Categories) Delete(ctx context.Context, id int64) (model.Category, error) {
	category, err := s.GetByID(ctx, id)
	if err != nil {
		return model.Category{}, err
	}

	if _, err := s.db.ExecContext(ctx, "DELETE FROM categories WHERE id = ?", id); err != nil {
		return model.Category{}, fmt.Errorf("deleting category: %w", err)
	}

	return category, nil
}
