package protocols

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/protomedic/emstags/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var labelSeparator = regexp.MustCompile(`[\n,]+`)

// Store owns protocol records and their tag linkage.
type Store struct {
	db *gorm.DB
}

// NewStore creates a protocol repository backed by db.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Create persists a new protocol with the given denormalized label array.
func (s *Store) Create(title, description string, labels []string) (*models.Protocol, error) {
	protocol := &models.Protocol{
		Title:       title,
		Description: description,
		Tags:        datatypes.NewJSONSlice(labels),
	}
	if err := s.db.Create(protocol).Error; err != nil {
		return nil, fmt.Errorf("failed to create protocol: %w", err)
	}
	return protocol, nil
}

// Update rewrites title, description and the denormalized label array.
func (s *Store) Update(protocol *models.Protocol, title, description string, labels []string) error {
	protocol.Title = title
	protocol.Description = description
	protocol.Tags = datatypes.NewJSONSlice(labels)
	if err := s.db.Save(protocol).Error; err != nil {
		return fmt.Errorf("failed to update protocol: %w", err)
	}
	return nil
}

// SaveLabels rewrites only the denormalized label array.
func (s *Store) SaveLabels(protocol *models.Protocol, labels []string) error {
	protocol.Tags = datatypes.NewJSONSlice(labels)
	if err := s.db.Save(protocol).Error; err != nil {
		return fmt.Errorf("failed to save protocol tags: %w", err)
	}
	return nil
}

// Get loads one protocol with its relational tags.
func (s *Store) Get(id uint) (*models.Protocol, error) {
	var protocol models.Protocol
	if err := s.db.Preload("TagsRelation").First(&protocol, id).Error; err != nil {
		return nil, err
	}
	return &protocol, nil
}

// ListAll returns every protocol, most recently updated first.
func (s *Store) ListAll() ([]models.Protocol, error) {
	var result []models.Protocol
	err := s.db.Preload("TagsRelation").
		Order("updated_at DESC, id DESC").
		Find(&result).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list protocols: %w", err)
	}
	return result, nil
}

// Delete removes a protocol and its association rows. Shared tag records are
// never deleted.
func (s *Store) Delete(id uint) error {
	protocol, err := s.Get(id)
	if err != nil {
		return err
	}
	if err := s.db.Model(protocol).Association("TagsRelation").Clear(); err != nil {
		return fmt.Errorf("failed to clear tag links: %w", err)
	}
	if err := s.db.Delete(protocol).Error; err != nil {
		return fmt.Errorf("failed to delete protocol: %w", err)
	}
	return nil
}

// SyncTags replaces the protocol's relational tag set with exactly the given
// IDs.
func (s *Store) SyncTags(protocol *models.Protocol, tagIDs []uint) error {
	linked := make([]models.Tag, 0, len(tagIDs))
	for _, id := range tagIDs {
		linked = append(linked, models.Tag{ID: id})
	}
	if err := s.db.Model(protocol).Association("TagsRelation").Replace(linked); err != nil {
		return fmt.Errorf("failed to sync tags: %w", err)
	}
	return nil
}

// AttachTags adds the given tag IDs to the protocol's relational set without
// removing existing links.
func (s *Store) AttachTags(protocol *models.Protocol, tagIDs []uint) error {
	linked := make([]models.Tag, 0, len(tagIDs))
	for _, id := range tagIDs {
		linked = append(linked, models.Tag{ID: id})
	}
	if err := s.db.Model(protocol).Association("TagsRelation").Append(linked); err != nil {
		return fmt.Errorf("failed to attach tags: %w", err)
	}
	return nil
}

// NormalizeLabels splits comma/newline separated free text into a trimmed,
// deduplicated, non-empty ordered label sequence.
func NormalizeLabels(raw string) []string {
	parts := labelSeparator.Split(raw, -1)
	seen := make(map[string]bool, len(parts))
	labels := make([]string, 0, len(parts))
	for _, part := range parts {
		label := strings.TrimSpace(part)
		if label == "" || seen[label] {
			continue
		}
		seen[label] = true
		labels = append(labels, label)
	}
	return labels
}

// LabelsFromStructured derives the denormalized label array from structured
// tags, deduplicated and in order. Structured tags take precedence over the
// free-text path when both are present.
func LabelsFromStructured(structured []models.StructuredTag) []string {
	seen := make(map[string]bool, len(structured))
	labels := make([]string, 0, len(structured))
	for _, st := range structured {
		if st.Label == "" || seen[st.Label] {
			continue
		}
		seen[st.Label] = true
		labels = append(labels, st.Label)
	}
	return labels
}
