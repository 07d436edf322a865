package services

import (
	"gorm.io/gorm"

	"github.com/promptvault/promptvault/internal/models"
	"github.com/promptvault/promptvault/pkg/response"
)

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

type UserListRequest struct {
	Page   int    `form:"page" binding:"omitempty,min=1"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Search string `form:"search"`
}

// List returns all accounts, paginated. Admin only; enforced at the route.
func (s *UserService) List(req *UserListRequest) ([]models.User, *response.Pagination, error) {
	if req.Page == 0 {
		req.Page = 1
	}
	if req.Limit == 0 {
		req.Limit = 10
	}

	query := s.db.Model(&models.User{})
	if req.Search != "" {
		pattern := "%" + req.Search + "%"
		query = query.Where("LOWER(name) LIKE LOWER(?) OR LOWER(email) LIKE LOWER(?)", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, nil, err
	}

	var users []models.User
	offset := (req.Page - 1) * req.Limit
	if err := query.Order("created_at DESC").Offset(offset).Limit(req.Limit).Find(&users).Error; err != nil {
		return nil, nil, err
	}

	return users, response.NewPagination(req.Page, req.Limit, total), nil
}

// Search looks up users by name or email for collaborator invitations.
// Returns the public shape only.
func (s *UserService) Search(query string, limit int) ([]models.PublicUser, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	results := []models.PublicUser{}
	if query == "" {
		return results, nil
	}

	var users []models.User
	pattern := "%" + query + "%"
	err := s.db.Where("LOWER(name) LIKE LOWER(?) OR LOWER(email) LIKE LOWER(?)", pattern, pattern).
		Order("name ASC").
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, err
	}

	for _, u := range users {
		results = append(results, u.Public())
	}
	return results, nil
}
