package models

import "time"

// Tag is one entry of the global tag vocabulary. Key is the stable slug the
// vocabulary is deduplicated by; Label is the human-readable form.
type Tag struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"key"`
	Label     string    `gorm:"type:varchar(255);not null" json:"label"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Protocols []Protocol `gorm:"many2many:protocol_tag" json:"protocols,omitempty"`
}

// TableName specifies the table name for Tag model
func (Tag) TableName() string {
	return "tags"
}

// StructuredTag is the transient {key,label} pair produced by tag generation
// and normalization. It is never persisted as its own table.
type StructuredTag struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}
