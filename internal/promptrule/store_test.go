package promptrule

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/protomedic/emstags/internal/cache"
	"github.com/protomedic/emstags/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&models.PromptRule{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func TestCurrentInstructionsEmptyWithoutRule(t *testing.T) {
	store := NewStore(openTestDB(t), cache.NewMemory())
	if got := store.CurrentInstructions(); got != "" {
		t.Errorf("got %q, want empty string", got)
	}
}

func TestUpsertSingletonCreatesThenUpdates(t *testing.T) {
	db := openTestDB(t)
	store := NewStore(db, cache.NewMemory())

	rule, err := store.UpsertSingleton("Default", "first version")
	if err != nil {
		t.Fatalf("UpsertSingleton failed: %v", err)
	}
	if got := store.CurrentInstructions(); got != "first version" {
		t.Errorf("got %q, want %q", got, "first version")
	}

	updated, err := store.UpsertSingleton("Default", "second version")
	if err != nil {
		t.Fatalf("UpsertSingleton failed: %v", err)
	}
	if updated.ID != rule.ID {
		t.Errorf("upsert created a new row (id %d -> %d), want update in place", rule.ID, updated.ID)
	}
	if got := store.CurrentInstructions(); got != "second version" {
		t.Errorf("got %q, want %q", got, "second version")
	}

	var count int64
	db.Model(&models.PromptRule{}).Count(&count)
	if count != 1 {
		t.Errorf("rule count = %d, want 1", count)
	}
}

func TestCachedInstructionsStaleUntilInvalidate(t *testing.T) {
	db := openTestDB(t)
	store := NewStore(db, cache.NewMemory())

	if _, err := store.UpsertSingleton("Default", "cached"); err != nil {
		t.Fatalf("UpsertSingleton failed: %v", err)
	}
	if got := store.CurrentInstructions(); got != "cached" {
		t.Fatalf("got %q, want %q", got, "cached")
	}

	// A write bypassing the store must not be observed until invalidation.
	if err := db.Model(&models.PromptRule{}).Where("1 = 1").Update("instructions", "changed underneath").Error; err != nil {
		t.Fatalf("raw update failed: %v", err)
	}
	if got := store.CurrentInstructions(); got != "cached" {
		t.Errorf("got %q, want stale %q", got, "cached")
	}

	store.Invalidate()
	if got := store.CurrentInstructions(); got != "changed underneath" {
		t.Errorf("got %q after invalidate, want %q", got, "changed underneath")
	}
}

func TestActivePrefersMostRecentUpdate(t *testing.T) {
	db := openTestDB(t)
	store := NewStore(db, cache.NewMemory())

	older := models.PromptRule{Name: "old", Instructions: "old rules",
		CreatedAt: time.Now().Add(-2 * time.Hour), UpdatedAt: time.Now().Add(-2 * time.Hour)}
	newer := models.PromptRule{Name: "new", Instructions: "new rules",
		CreatedAt: time.Now().Add(-time.Hour), UpdatedAt: time.Now().Add(-time.Hour)}
	if err := db.Create(&older).Error; err != nil {
		t.Fatal(err)
	}
	if err := db.Create(&newer).Error; err != nil {
		t.Fatal(err)
	}

	active, err := store.Active()
	if err != nil {
		t.Fatalf("Active failed: %v", err)
	}
	if active == nil || active.Name != "new" {
		t.Errorf("active = %+v, want the most recently updated rule", active)
	}
}

func TestActiveTieBreaksByID(t *testing.T) {
	db := openTestDB(t)
	store := NewStore(db, cache.NewMemory())

	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	first := models.PromptRule{Name: "first", Instructions: "a", CreatedAt: at, UpdatedAt: at}
	second := models.PromptRule{Name: "second", Instructions: "b", CreatedAt: at, UpdatedAt: at}
	if err := db.Create(&first).Error; err != nil {
		t.Fatal(err)
	}
	if err := db.Create(&second).Error; err != nil {
		t.Fatal(err)
	}

	active, err := store.Active()
	if err != nil {
		t.Fatalf("Active failed: %v", err)
	}
	if active == nil || active.ID != second.ID {
		t.Errorf("active = %+v, want the higher id on equal timestamps", active)
	}
}
