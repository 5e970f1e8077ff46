package protocols

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/protomedic/emstags/internal/models"
	"github.com/protomedic/emstags/internal/tags"
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
	if err := db.AutoMigrate(&models.Protocol{}, &models.Tag{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func TestLabelArrayRoundTrip(t *testing.T) {
	store := NewStore(openTestDB(t))

	labels := []string{"anaphylaxis", "epinephrine", "allergic reaction"}
	created, err := store.Create("Allergic Reaction - Adult", "Assessment and treatment.", labels)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	loaded, err := store.Get(created.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !reflect.DeepEqual([]string(loaded.Tags), labels) {
		t.Errorf("labels = %v, want %v", []string(loaded.Tags), labels)
	}
}

func TestListAllMostRecentFirst(t *testing.T) {
	store := NewStore(openTestDB(t))

	first, err := store.Create("First", "d", nil)
	if err != nil {
		t.Fatal(err)
	}
	time.Sleep(10 * time.Millisecond)
	if _, err := store.Create("Second", "d", nil); err != nil {
		t.Fatal(err)
	}
	time.Sleep(10 * time.Millisecond)
	if err := store.Update(first, "First (updated)", "d", nil); err != nil {
		t.Fatal(err)
	}

	list, err := store.ListAll()
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("got %d protocols, want 2", len(list))
	}
	if list[0].Title != "First (updated)" || list[1].Title != "Second" {
		t.Errorf("unexpected order: %q, %q", list[0].Title, list[1].Title)
	}
}

func TestSyncTagsReplacesLinkSet(t *testing.T) {
	db := openTestDB(t)
	store := NewStore(db)
	tagStore := tags.NewStore(db)

	protocol, err := store.Create("P", "d", nil)
	if err != nil {
		t.Fatal(err)
	}

	ids, err := tagStore.EnsureTagsExist([]models.StructuredTag{
		{Key: "vf", Label: "VF"},
		{Key: "vt", Label: "VT"},
		{Key: "cpr", Label: "CPR"},
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := store.SyncTags(protocol, ids[:2]); err != nil {
		t.Fatalf("SyncTags failed: %v", err)
	}
	loaded, err := store.Get(protocol.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got := linkedKeys(loaded); !reflect.DeepEqual(got, map[string]bool{"vf": true, "vt": true}) {
		t.Errorf("linked keys = %v", got)
	}

	// Replacing with a different set removes stale links and adds new ones.
	if err := store.SyncTags(loaded, ids[1:]); err != nil {
		t.Fatalf("SyncTags failed: %v", err)
	}
	loaded, err = store.Get(protocol.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got := linkedKeys(loaded); !reflect.DeepEqual(got, map[string]bool{"vt": true, "cpr": true}) {
		t.Errorf("linked keys after replace = %v", got)
	}
}

func TestDeleteClearsLinksKeepsTags(t *testing.T) {
	db := openTestDB(t)
	store := NewStore(db)
	tagStore := tags.NewStore(db)

	protocol, err := store.Create("P", "d", nil)
	if err != nil {
		t.Fatal(err)
	}
	ids, err := tagStore.EnsureTagsExist([]models.StructuredTag{{Key: "vf", Label: "VF"}})
	if err != nil {
		t.Fatal(err)
	}
	if err := store.SyncTags(protocol, ids); err != nil {
		t.Fatal(err)
	}

	if err := store.Delete(protocol.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.Get(protocol.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("got %v, want ErrRecordNotFound", err)
	}

	// Shared vocabulary records survive protocol deletion.
	if _, err := tagStore.Get(ids[0]); err != nil {
		t.Errorf("tag was deleted with the protocol: %v", err)
	}

	var links int64
	db.Table("protocol_tag").Count(&links)
	if links != 0 {
		t.Errorf("association rows = %d, want 0", links)
	}
}

func TestNormalizeLabels(t *testing.T) {
	got := NormalizeLabels("anaphylaxis, epinephrine\n airway ,, anaphylaxis ,")
	want := []string{"anaphylaxis", "epinephrine", "airway"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("NormalizeLabels = %v, want %v", got, want)
	}

	if got := NormalizeLabels("   "); len(got) != 0 {
		t.Errorf("blank input produced %v", got)
	}
}

func TestLabelsFromStructured(t *testing.T) {
	got := LabelsFromStructured([]models.StructuredTag{
		{Key: "vf", Label: "VF"},
		{Key: "vf-2", Label: "VF"},
		{Key: "vt", Label: "VT"},
	})
	want := []string{"VF", "VT"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("LabelsFromStructured = %v, want %v", got, want)
	}
}

func linkedKeys(p *models.Protocol) map[string]bool {
	keys := make(map[string]bool, len(p.TagsRelation))
	for _, tag := range p.TagsRelation {
		keys[tag.Key] = true
	}
	return keys
}
