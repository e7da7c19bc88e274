// Package testutil provides fixtures shared by package tests
package testutil

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/nsvirk/ssqapi/internal/lottery"
	"github.com/nsvirk/ssqapi/internal/models"
	"github.com/nsvirk/ssqapi/internal/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a migrated SQLite database in the test's temp dir
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ssq.db")
	db, err := gorm.Open(sqlite.Open(path+"?_foreign_keys=on"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := repository.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// Result builds a draw result from order reds and blue
func Result(issue string, date string, blue int, orderReds ...int) lottery.Result {
	d, _ := time.Parse("2006-01-02", date)
	r := lottery.Result{Issue: issue, DrawDate: d, Blue: blue}
	copy(r.OrderReds[:], orderReds)
	return r
}

// SeedDraws inserts results directly
func SeedDraws(t testing.TB, db *gorm.DB, results ...lottery.Result) {
	t.Helper()
	rows := make([]models.DrawModel, 0, len(results))
	for _, r := range results {
		rows = append(rows, models.NewDrawModel(r))
	}
	if err := db.Create(&rows).Error; err != nil {
		t.Fatalf("seed draws: %v", err)
	}
}
