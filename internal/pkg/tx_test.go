package pkg

import (
	"context"
	"errors"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type txItem struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"size:100"`
}

func newTxTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&txItem{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func countItems(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var count int64
	if err := db.Model(&txItem{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return count
}

func TestWithTx_CommitOnSuccess(t *testing.T) {
	db := newTxTestDB(t)

	err := WithTx(context.Background(), db, func(tx *gorm.DB) error {
		return tx.Create(&txItem{Name: "algebra"}).Error
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if got := countItems(t, db); got != 1 {
		t.Fatalf("expected 1 row after commit, got %d", got)
	}
}

func TestWithTx_RollbackOnError(t *testing.T) {
	db := newTxTestDB(t)

	fnErr := errors.New("something went wrong")
	err := WithTx(context.Background(), db, func(tx *gorm.DB) error {
		if err := tx.Create(&txItem{Name: "biology"}).Error; err != nil {
			t.Fatalf("insert should succeed: %v", err)
		}
		return fnErr
	})
	if !errors.Is(err, fnErr) {
		t.Fatalf("expected fn error, got %v", err)
	}
	if got := countItems(t, db); got != 0 {
		t.Fatalf("expected 0 rows after rollback, got %d", got)
	}
}

func TestWithTx_RollbackOnPanic(t *testing.T) {
	db := newTxTestDB(t)

	defer func() {
		r := recover()
		if r != "kaboom" {
			t.Fatalf("expected panic value 'kaboom', got %v", r)
		}
		if got := countItems(t, db); got != 0 {
			t.Fatalf("expected 0 rows after panic rollback, got %d", got)
		}
	}()

	_ = WithTx(context.Background(), db, func(tx *gorm.DB) error {
		if err := tx.Create(&txItem{Name: "chemistry"}).Error; err != nil {
			t.Fatalf("insert should succeed: %v", err)
		}
		panic("kaboom")
	})
}

func TestWithTx_CanceledContext(t *testing.T) {
	db := newTxTestDB(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := WithTx(ctx, db, func(tx *gorm.DB) error {
		called = true
		return tx.Create(&txItem{Name: "physics"}).Error
	})
	if err == nil {
		t.Fatal("expected error for canceled context")
	}
	if called && countItems(t, db) != 0 {
		t.Fatal("no rows should be committed under a canceled context")
	}
}
