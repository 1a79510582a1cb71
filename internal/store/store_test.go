// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"database/sql"
	"testing"
)

// testDB creates an in-memory SQLite database with the full schema.
// A single connection keeps the in-memory database alive for the test.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	db.SetMaxOpenConns(1)

	if err := Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Close()
	})

	return db
}

func strPtr(s string) *string { return &s }

func int64Ptr(v int64) *int64 { return &v }

func boolPtr(b bool) *bool { return &b }
