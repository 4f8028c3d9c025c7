// Package modeltest provides throwaway databases for tests
package modeltest

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/poidh/indexer/src/utils/model"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a file backed SQLite database with the indexer schema.
// WAL lets readers outside of a transaction see committed data while a write is open.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "indexer.db")
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(10000)&_txlock=immediate", path)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	err = model.AutoMigrate(db)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}

	t.Cleanup(func() {
		model.Close(db)
	})

	return db
}
