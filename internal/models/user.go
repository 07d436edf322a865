package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents a registered account.
type User struct {
	ID            string    `gorm:"primaryKey;size:36" json:"id"`
	Email         string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash  string    `gorm:"size:255;not null" json:"-"`
	Name          string    `gorm:"size:100;not null" json:"name"`
	AvatarURL     string    `gorm:"size:500" json:"avatarUrl,omitempty"`
	Role          string    `gorm:"size:20;default:user" json:"role"` // user, admin
	EmailVerified bool      `gorm:"default:false" json:"emailVerified"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (User) TableName() string { return "users" }

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// PublicUser is the reduced user shape embedded in other resources.
type PublicUser struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Name: u.Name, Email: u.Email, AvatarURL: u.AvatarURL}
}
