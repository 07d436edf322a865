package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Prompt status values.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusArchived  = "archived"
)

// Prompt is a versioned text document belonging to a project. Version holds
// the current version number; it is incremented, never reset.
type Prompt struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Title     string    `gorm:"size:200;not null" json:"title"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	ProjectID string    `gorm:"size:36;index;not null" json:"projectId"`
	Project   *Project  `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"project,omitempty"`
	AuthorID  string    `gorm:"size:36;index;not null" json:"authorId"`
	Author    *User     `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Status    string    `gorm:"size:20;default:draft" json:"status"`
	Version   int       `gorm:"default:1;not null" json:"version"`
	Metadata  string    `gorm:"type:text" json:"metadata,omitempty"` // JSON object
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `gorm:"index" json:"updatedAt"`

	Tags     []Tag           `gorm:"-" json:"tags,omitempty"`
	Versions []PromptVersion `gorm:"-" json:"versions,omitempty"`
}

func (Prompt) TableName() string { return "prompts" }

func (p *Prompt) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// PromptVersion is an immutable snapshot of a prompt's title and content at a
// given version number. Rows are append-only; the (prompt, version) pair is
// unique and the per-prompt sequence is contiguous starting at 1.
type PromptVersion struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	PromptID  string    `gorm:"size:36;uniqueIndex:idx_prompt_version;not null" json:"promptId"`
	Prompt    *Prompt   `gorm:"foreignKey:PromptID;constraint:OnDelete:CASCADE" json:"-"`
	Version   int       `gorm:"uniqueIndex:idx_prompt_version;not null" json:"version"`
	Title     string    `gorm:"size:200;not null" json:"title"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	AuthorID  string    `gorm:"size:36;not null" json:"authorId"`
	Author    *User     `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	ChangeLog string    `gorm:"size:500" json:"changeLog"`
	CreatedAt time.Time `json:"createdAt"`
}

func (PromptVersion) TableName() string { return "prompt_versions" }

func (v *PromptVersion) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	return nil
}

// UserFavorite marks a prompt as favorited by a user. Unique on (user, prompt).
type UserFavorite struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    string    `gorm:"size:36;uniqueIndex:idx_user_prompt;not null" json:"userId"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	PromptID  string    `gorm:"size:36;uniqueIndex:idx_user_prompt;not null" json:"promptId"`
	Prompt    *Prompt   `gorm:"foreignKey:PromptID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}

func (UserFavorite) TableName() string { return "user_favorites" }

func (f *UserFavorite) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}
