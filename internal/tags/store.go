package tags

import (
	"errors"
	"fmt"
	"strings"

	"github.com/protomedic/emstags/internal/models"
	"gorm.io/gorm"
)

// ErrKeyInUse reports an attempt to create or rename a tag to a key another
// tag already holds.
var ErrKeyInUse = errors.New("tag key already in use")

// Store is the global tag vocabulary: unique (key,label) records linked to
// protocols. Key uniqueness is enforced by the database constraint; the
// get-or-create path treats a duplicate-key conflict as "someone else won the
// race" and re-fetches.
type Store struct {
	db *gorm.DB
}

// NewStore creates a tag vocabulary store backed by db.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// EnsureTagsExist resolves each structured tag to a vocabulary record,
// creating missing ones, and returns the IDs in input order.
func (s *Store) EnsureTagsExist(structured []models.StructuredTag) ([]uint, error) {
	ids := make([]uint, 0, len(structured))
	for _, st := range structured {
		tag, err := s.getOrCreate(st)
		if err != nil {
			return nil, err
		}
		ids = append(ids, tag.ID)
	}
	return ids, nil
}

func (s *Store) getOrCreate(st models.StructuredTag) (*models.Tag, error) {
	var tag models.Tag
	err := s.db.Where("key = ?", st.Key).First(&tag).Error
	if err == nil {
		return &tag, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up tag %q: %w", st.Key, err)
	}

	tag = models.Tag{Key: st.Key, Label: st.Label}
	err = s.db.Create(&tag).Error
	if err == nil {
		return &tag, nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// Lost the insert race; the existing row is authoritative.
		var existing models.Tag
		if err := s.db.Where("key = ?", st.Key).First(&existing).Error; err != nil {
			return nil, fmt.Errorf("failed to re-fetch tag %q after conflict: %w", st.Key, err)
		}
		return &existing, nil
	}
	return nil, fmt.Errorf("failed to create tag %q: %w", st.Key, err)
}

// Search returns tags whose key or label contains q (case-insensitive),
// ordered by label and bounded by limit. An empty q browses the whole
// vocabulary.
func (s *Store) Search(q string, limit int) ([]models.Tag, error) {
	query := s.db.Model(&models.Tag{}).Order("label")

	q = strings.TrimSpace(q)
	if q != "" {
		pattern := "%" + strings.ToLower(q) + "%"
		query = query.Where("LOWER(key) LIKE ? OR LOWER(label) LIKE ?", pattern, pattern)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var result []models.Tag
	if err := query.Find(&result).Error; err != nil {
		return nil, fmt.Errorf("failed to search tags: %w", err)
	}
	return result, nil
}

// Get loads one tag by ID.
func (s *Store) Get(id uint) (*models.Tag, error) {
	var tag models.Tag
	if err := s.db.First(&tag, id).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

// Create adds a tag, rejecting keys already in the vocabulary.
func (s *Store) Create(key, label string) (*models.Tag, error) {
	if taken, err := s.keyTaken(key, 0); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrKeyInUse
	}

	tag := models.Tag{Key: key, Label: label}
	if err := s.db.Create(&tag).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrKeyInUse
		}
		return nil, fmt.Errorf("failed to create tag: %w", err)
	}
	return &tag, nil
}

// Update changes a tag's key and label; key uniqueness is re-validated
// excluding the tag itself.
func (s *Store) Update(id uint, key, label string) (*models.Tag, error) {
	tag, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if taken, err := s.keyTaken(key, id); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrKeyInUse
	}

	tag.Key = key
	tag.Label = label
	if err := s.db.Save(tag).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrKeyInUse
		}
		return nil, fmt.Errorf("failed to update tag: %w", err)
	}
	return tag, nil
}

// Delete removes a tag and its protocol links.
func (s *Store) Delete(id uint) error {
	tag, err := s.Get(id)
	if err != nil {
		return err
	}
	if err := s.db.Model(tag).Association("Protocols").Clear(); err != nil {
		return fmt.Errorf("failed to clear protocol links: %w", err)
	}
	if err := s.db.Delete(tag).Error; err != nil {
		return fmt.Errorf("failed to delete tag: %w", err)
	}
	return nil
}

func (s *Store) keyTaken(key string, excludeID uint) (bool, error) {
	query := s.db.Model(&models.Tag{}).Where("key = ?", key)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check tag key: %w", err)
	}
	return count > 0, nil
}
