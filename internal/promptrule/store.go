package promptrule

import (
	"errors"
	"fmt"

	"github.com/protomedic/emstags/internal/cache"
	"github.com/protomedic/emstags/internal/models"
	"gorm.io/gorm"
)

// cacheKey is the fixed memo key for the active instructions text.
const cacheKey = "ai_prompt_rules.current_instructions"

// Store serves the admin-configured prompt rule. A single logical row is
// expected; if seeding left several, the most recently updated wins.
type Store struct {
	db    *gorm.DB
	cache cache.Cache
}

// NewStore creates a prompt rule store backed by db and c.
func NewStore(db *gorm.DB, c cache.Cache) *Store {
	return &Store{db: db, cache: c}
}

// CurrentInstructions returns the instructions of the active rule, or "" when
// no rule exists. The result is cached until Invalidate is called.
func (s *Store) CurrentInstructions() string {
	return s.cache.GetOrCompute(cacheKey, func() string {
		rule, err := s.Active()
		if err != nil || rule == nil {
			return ""
		}
		return rule.Instructions
	})
}

// Invalidate drops the cached instructions. Every write path must call this
// right after touching the rule table.
func (s *Store) Invalidate() {
	s.cache.Invalidate(cacheKey)
}

// Active returns the most recently updated rule, or nil when none exists.
func (s *Store) Active() (*models.PromptRule, error) {
	var rule models.PromptRule
	err := s.db.Order("updated_at DESC, id DESC").First(&rule).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load prompt rule: %w", err)
	}
	return &rule, nil
}

// UpsertSingleton creates the rule if none exists, otherwise updates the
// active one, then invalidates the cache.
func (s *Store) UpsertSingleton(name, instructions string) (*models.PromptRule, error) {
	rule, err := s.Active()
	if err != nil {
		return nil, err
	}

	if rule == nil {
		rule = &models.PromptRule{Name: name, Instructions: instructions}
		if err := s.db.Create(rule).Error; err != nil {
			return nil, fmt.Errorf("failed to create prompt rule: %w", err)
		}
	} else {
		rule.Name = name
		rule.Instructions = instructions
		if err := s.db.Save(rule).Error; err != nil {
			return nil, fmt.Errorf("failed to update prompt rule: %w", err)
		}
	}

	s.Invalidate()
	return rule, nil
}
