package models

import (
	"time"

	"gorm.io/datatypes"
)

// Protocol represents an EMS treatment protocol
type Protocol struct {
	ID          uint                        `gorm:"primaryKey" json:"id"`
	Title       string                      `gorm:"type:varchar(255);not null" json:"title"`
	Description string                      `gorm:"type:text;not null" json:"description"`
	Tags        datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"tags"`
	CreatedAt   time.Time                   `json:"created_at"`
	UpdatedAt   time.Time                   `json:"updated_at"`

	// Relational tag linkage, kept separate from the denormalized Tags column
	TagsRelation []Tag `gorm:"many2many:protocol_tag" json:"tags_relation,omitempty"`
}

// TableName specifies the table name for Protocol model
func (Protocol) TableName() string {
	return "protocols"
}
