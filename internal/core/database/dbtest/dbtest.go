// Package dbtest 为测试提供迁移完毕的临时 SQLite 库
package dbtest

import (
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"gradebook/internal/core/database"
)

func Open(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "test.db") + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	db, err := database.NewGorm(database.Opts{
		Driver:   "sqlite",
		DSN:      dsn,
		LogLevel: "silent",
	})
	if err != nil {
		t.Fatalf("dbtest.Open() failed: %v", err)
	}
	if err := database.Migrate(db, zap.NewNop()); err != nil {
		t.Fatalf("dbtest.Open() migrate failed: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}
