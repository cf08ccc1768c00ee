package repo

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/bahithi/platform-backend/internal/domain"
)

func newCatalogDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("catalog_test_%d.db", time.Now().UnixNano()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if err := db.AutoMigrate(&domain.StatisticalTest{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func TestDefaultStatisticalTests_Shape(t *testing.T) {
	defaults := DefaultStatisticalTests()
	if len(defaults) != 3 {
		t.Fatalf("expected 3 built-in tests, got %d", len(defaults))
	}
	names := map[string]bool{}
	for _, st := range defaults {
		if st.TestName == "" || st.Category == "" || st.Description == "" {
			t.Fatalf("incomplete entry: %+v", st)
		}
		if st.Category != "parametric" && st.Category != "non-parametric" {
			t.Fatalf("invalid category %q", st.Category)
		}
		if len(st.Conditions) == 0 || len(st.SPSSSteps) == 0 || len(st.ExcelSteps) == 0 {
			t.Fatalf("entry %q missing guidance lists", st.TestName)
		}
		names[st.TestName] = true
	}
	for _, want := range []string{"T-Test", "ANOVA", "Chi-Square"} {
		if !names[want] {
			t.Fatalf("missing built-in test %q (have %v)", want, names)
		}
	}
}

func TestSeedStatisticalTests_Idempotent(t *testing.T) {
	db := newCatalogDB(t)
	ctx := context.Background()

	if err := SeedStatisticalTests(ctx, db); err != nil {
		t.Fatalf("first seed: %v", err)
	}
	if err := SeedStatisticalTests(ctx, db); err != nil {
		t.Fatalf("second seed: %v", err)
	}

	var count int64
	if err := db.Model(&domain.StatisticalTest{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != int64(len(DefaultStatisticalTests())) {
		t.Fatalf("seed not idempotent: %d rows", count)
	}
}

func TestListStatisticalTests_InsertionOrder(t *testing.T) {
	db := newCatalogDB(t)
	ctx := context.Background()

	if err := SeedStatisticalTests(ctx, db); err != nil {
		t.Fatalf("seed: %v", err)
	}
	got, err := ListStatisticalTests(ctx, db)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i-1].ID >= got[i].ID {
			t.Fatalf("not ordered by id: %v then %v", got[i-1].ID, got[i].ID)
		}
	}
	// StringList columns must round-trip through the driver.
	if len(got[0].Conditions) == 0 || len(got[0].SPSSSteps) == 0 {
		t.Fatalf("guidance lists lost in round-trip: %+v", got[0])
	}
}
