package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/promptvault/promptvault/internal/config"
	"github.com/promptvault/promptvault/internal/models"
	"github.com/promptvault/promptvault/internal/utils"
	"github.com/promptvault/promptvault/pkg/response"
)

type AuthService struct {
	db    *gorm.DB
	store TokenStore
	jwt   config.JWTConfig
}

func NewAuthService(db *gorm.DB, store TokenStore, jwtCfg config.JWTConfig) *AuthService {
	return &AuthService{db: db, store: store, jwt: jwtCfg}
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name" binding:"required,min=1,max=100"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type UpdateProfileRequest struct {
	Name      string `json:"name" binding:"omitempty,min=1,max=100"`
	AvatarURL string `json:"avatarUrl" binding:"omitempty,max=500"`
}

// AuthResult is the token pair plus the user it was issued to.
type AuthResult struct {
	User         models.PublicUser `json:"user"`
	AccessToken  string            `json:"accessToken"`
	RefreshToken string            `json:"refreshToken"`
}

// Register creates an account and signs the user in immediately.
func (s *AuthService) Register(ctx context.Context, req *RegisterRequest) (*AuthResult, error) {
	if err := utils.ValidatePasswordStrength(req.Password); err != nil {
		return nil, response.NewValidation([]response.FieldError{{Field: "password", Message: err.Error()}})
	}

	var count int64
	if err := s.db.Model(&models.User{}).Where("email = ?", req.Email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, response.NewConflict("email already registered")
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Email:        req.Email,
		PasswordHash: hash,
		Name:         req.Name,
		Role:         "user",
	}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, err
	}

	return s.issueTokens(ctx, &user)
}

// Login verifies credentials and issues a token pair.
func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*AuthResult, error) {
	var user models.User
	if err := s.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewUnauthorized("invalid email or password")
		}
		return nil, err
	}

	if !utils.CheckPassword(req.Password, user.PasswordHash) {
		return nil, response.NewUnauthorized("invalid email or password")
	}

	return s.issueTokens(ctx, &user)
}

// Refresh exchanges a valid refresh token for a new token pair. The provided
// token must match the one on record for the user; the stored token rotates.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	claims, err := utils.ParseRefreshToken(refreshToken)
	if err != nil {
		return nil, response.NewUnauthorized("invalid or expired refresh token")
	}

	stored, err := s.store.Get(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if stored == "" || stored != refreshToken {
		return nil, response.NewUnauthorized("invalid or expired refresh token")
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", claims.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewUnauthorized("invalid or expired refresh token")
		}
		return nil, err
	}

	return s.issueTokens(ctx, &user)
}

// Logout drops the user's stored refresh token.
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	return s.store.Delete(ctx, userID)
}

// Profile returns the authenticated user's account.
func (s *AuthService) Profile(userID string) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("user not found")
		}
		return nil, err
	}
	return &user, nil
}

// UpdateProfile applies the provided profile fields.
func (s *AuthService) UpdateProfile(userID string, req *UpdateProfileRequest) (*models.User, error) {
	user, err := s.Profile(userID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.AvatarURL != "" {
		updates["avatar_url"] = req.AvatarURL
	}

	if len(updates) > 0 {
		if err := s.db.Model(user).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	return user, nil
}

func (s *AuthService) issueTokens(ctx context.Context, user *models.User) (*AuthResult, error) {
	access, err := utils.GenerateToken(user.ID, user.Email, user.Role, s.jwt.ExpireHour)
	if err != nil {
		return nil, err
	}

	refresh, err := utils.GenerateRefreshToken(user.ID, s.jwt.RefreshExpireHour)
	if err != nil {
		return nil, err
	}

	ttl := time.Duration(s.jwt.RefreshExpireHour) * time.Hour
	if err := s.store.Save(ctx, user.ID, refresh, ttl); err != nil {
		return nil, err
	}

	return &AuthResult{
		User:         user.Public(),
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}
