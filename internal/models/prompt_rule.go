package models

import "time"

// PromptRule holds the admin-configured instructions steering AI tag
// generation. Only the most recently updated row is consulted.
type PromptRule struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"type:varchar(255);not null;default:'Default'" json:"name"`
	Instructions string    `gorm:"type:text;not null" json:"instructions"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName specifies the table name for PromptRule model
func (PromptRule) TableName() string {
	return "ai_prompt_rules"
}
