package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Visibility values. Stored and returned but not consulted by the access
// predicates: access always requires ownership or a collaborator grant.
const (
	VisibilityPrivate = "private"
	VisibilityPublic  = "public"
	VisibilityTeam    = "team"
)

// Project is a named container owning prompts, tags and collaborator grants.
type Project struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Name        string    `gorm:"size:100;not null" json:"name"`
	Description string    `gorm:"size:500" json:"description,omitempty"`
	Visibility  string    `gorm:"size:20;default:private" json:"visibility"`
	Settings    string    `gorm:"type:text" json:"settings,omitempty"` // JSON object
	OwnerID     string    `gorm:"size:36;index;not null" json:"ownerId"`
	Owner       *User     `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"owner,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (Project) TableName() string { return "projects" }

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// Collaborator roles, ordered weakest to strongest.
const (
	RoleViewer = "viewer"
	RoleEditor = "editor"
	RoleAdmin  = "admin"
)

// ProjectCollaborator links a user to a project with a role.
// Unique on (project, user).
type ProjectCollaborator struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	ProjectID   string    `gorm:"size:36;uniqueIndex:idx_project_user;not null" json:"projectId"`
	Project     *Project  `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"project,omitempty"`
	UserID      string    `gorm:"size:36;uniqueIndex:idx_project_user;not null" json:"userId"`
	User        *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Role        string    `gorm:"size:20;default:viewer;not null" json:"role"` // viewer, editor, admin
	InvitedByID string    `gorm:"size:36" json:"invitedById,omitempty"`
	InvitedBy   *User     `gorm:"foreignKey:InvitedByID" json:"invitedBy,omitempty"`
	CreatedAt   time.Time `json:"joinedAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (ProjectCollaborator) TableName() string { return "project_collaborators" }

func (pc *ProjectCollaborator) BeforeCreate(tx *gorm.DB) error {
	if pc.ID == "" {
		pc.ID = uuid.NewString()
	}
	return nil
}
