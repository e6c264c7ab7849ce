// Package dbtest opens throwaway sqlite databases for service and handler
// tests.
package dbtest

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/EmpoweredVote/zone-incidents/internal/config"
	"github.com/EmpoweredVote/zone-incidents/internal/db"
)

// Open returns an in-memory sqlite handle with foreign keys enforced and
// models migrated. The pool is pinned to one connection so every statement
// sees the same in-memory database.
func Open(t *testing.T, models ...any) *gorm.DB {
	t.Helper()

	d, err := db.Open(sqlite.Open("file::memory:?_foreign_keys=on"), config.DatabaseConfig{
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	})
	if err != nil {
		t.Fatalf("could not open test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close(d) })

	if len(models) > 0 {
		if err := d.AutoMigrate(models...); err != nil {
			t.Fatalf("failed to migrate test models: %v", err)
		}
	}
	return d
}
