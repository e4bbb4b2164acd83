// Package dbtest opens throwaway in-memory SQLite databases with the full
// schema migrated, for store and handler tests.
package dbtest

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"feedhub/internal/db"

	"gorm.io/gorm"
)

var seq atomic.Int64

func Open(t testing.TB) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared&_foreign_keys=on", name, seq.Add(1))

	gdb, err := db.Open("sqlite", dsn, "silent")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gdb
}
