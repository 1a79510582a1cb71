// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Category is a hierarchical grouping for pages. ParentID is a weak
// self reference; deleting a parent does not cascade.
type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	ParentID    *int64    `json:"parent_id,omitempty"`
	Created     time.Time `json:"created"`
	Updated     time.Time `json:"updated"`
}
