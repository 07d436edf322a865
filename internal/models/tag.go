package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultTagColor is applied when a tag is created without an explicit color.
const DefaultTagColor = "#1890ff"

// Tag is a project-scoped label. Name is unique within its project, not globally.
type Tag struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"size:100;uniqueIndex:idx_tag_name_project;not null" json:"name"`
	Color     string    `gorm:"size:7;default:#1890ff" json:"color"`
	ProjectID string    `gorm:"size:36;uniqueIndex:idx_tag_name_project;not null" json:"projectId"`
	Project   *Project  `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Computed by queries that join prompt_tags; not a stored column.
	PromptCount int64 `gorm:"->;-:migration" json:"promptCount"`
}

func (Tag) TableName() string { return "tags" }

func (t *Tag) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// PromptTag associates a prompt with a tag. Unique on (prompt, tag); deleting
// either side cascades to the link row.
type PromptTag struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	PromptID  string    `gorm:"size:36;uniqueIndex:idx_prompt_tag;not null" json:"promptId"`
	Prompt    *Prompt   `gorm:"foreignKey:PromptID;constraint:OnDelete:CASCADE" json:"-"`
	TagID     string    `gorm:"size:36;uniqueIndex:idx_prompt_tag;not null" json:"tagId"`
	Tag       *Tag      `gorm:"foreignKey:TagID;constraint:OnDelete:CASCADE" json:"tag,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func (PromptTag) TableName() string { return "prompt_tags" }

func (pt *PromptTag) BeforeCreate(tx *gorm.DB) error {
	if pt.ID == "" {
		pt.ID = uuid.NewString()
	}
	return nil
}
