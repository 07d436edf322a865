package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/promptvault/promptvault/internal/models"
	"github.com/promptvault/promptvault/pkg/response"
)

type ProjectService struct {
	db *gorm.DB
}

func NewProjectService(db *gorm.DB) *ProjectService {
	return &ProjectService{db: db}
}

type ProjectListRequest struct {
	Page      int    `form:"page" binding:"omitempty,min=1"`
	Limit     int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Search    string `form:"search"`
	SortBy    string `form:"sortBy" binding:"omitempty,oneof=name createdAt updatedAt"`
	SortOrder string `form:"sortOrder" binding:"omitempty,oneof=asc desc"`
}

type CreateProjectRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Description string `json:"description" binding:"omitempty,max=500"`
	Visibility  string `json:"visibility" binding:"omitempty,oneof=private public team"`
	Settings    string `json:"settings"`
}

type UpdateProjectRequest struct {
	Name        string  `json:"name" binding:"omitempty,min=1,max=100"`
	Description *string `json:"description" binding:"omitempty,max=500"`
	Visibility  string  `json:"visibility" binding:"omitempty,oneof=private public team"`
	Settings    *string `json:"settings"`
}

type InviteMemberRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role" binding:"required,oneof=viewer editor admin"`
}

type UpdateMemberRequest struct {
	Role string `json:"role" binding:"required,oneof=viewer editor admin"`
}

// ProjectDetail is a project plus its membership and prompt count.
type ProjectDetail struct {
	models.Project
	Collaborators []models.ProjectCollaborator `json:"collaborators"`
	PromptCount   int64                        `json:"promptCount"`
}

// ProjectStatistics summarizes a project's contents.
type ProjectStatistics struct {
	TotalPrompts       int64            `json:"totalPrompts"`
	PromptsByStatus    map[string]int64 `json:"promptsByStatus"`
	TotalTags          int64            `json:"totalTags"`
	TotalCollaborators int64            `json:"totalCollaborators"`
}

// sortColumns whitelists caller-facing sort keys to real columns.
var projectSortColumns = map[string]string{
	"name":      "name",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
}

// List returns projects the user owns or collaborates on, paginated.
func (s *ProjectService) List(userID string, req *ProjectListRequest) ([]models.Project, *response.Pagination, error) {
	if req.Page == 0 {
		req.Page = 1
	}
	if req.Limit == 0 {
		req.Limit = 10
	}

	query := s.db.Model(&models.Project{}).Scopes(ProjectAccessible(userID, AccessRead))

	if req.Search != "" {
		pattern := "%" + req.Search + "%"
		query = query.Where("LOWER(name) LIKE LOWER(?) OR LOWER(description) LIKE LOWER(?)", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, nil, err
	}

	order := "updated_at DESC"
	if col, ok := projectSortColumns[req.SortBy]; ok {
		dir := "DESC"
		if req.SortOrder == "asc" {
			dir = "ASC"
		}
		order = col + " " + dir
	}

	var projects []models.Project
	offset := (req.Page - 1) * req.Limit
	if err := query.Preload("Owner").Order(order).Offset(offset).Limit(req.Limit).Find(&projects).Error; err != nil {
		return nil, nil, err
	}

	return projects, response.NewPagination(req.Page, req.Limit, total), nil
}

// Create creates a project owned by the user.
func (s *ProjectService) Create(userID string, req *CreateProjectRequest) (*models.Project, error) {
	project := models.Project{
		Name:        req.Name,
		Description: req.Description,
		Visibility:  req.Visibility,
		Settings:    req.Settings,
		OwnerID:     userID,
	}
	if project.Visibility == "" {
		project.Visibility = models.VisibilityPrivate
	}

	if err := s.db.Create(&project).Error; err != nil {
		return nil, err
	}

	s.db.Preload("Owner").First(&project, "id = ?", project.ID)
	return &project, nil
}

// Get returns a project with collaborators and prompt count.
func (s *ProjectService) Get(userID, projectID string) (*ProjectDetail, error) {
	var project models.Project
	err := s.db.Scopes(ProjectAccessible(userID, AccessRead)).
		Preload("Owner").
		First(&project, "projects.id = ?", projectID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("project not found")
		}
		return nil, err
	}

	detail := ProjectDetail{Project: project}

	if err := s.db.Where("project_id = ?", projectID).
		Preload("User").
		Order("created_at ASC").
		Find(&detail.Collaborators).Error; err != nil {
		return nil, err
	}

	if err := s.db.Model(&models.Prompt{}).Where("project_id = ?", projectID).
		Count(&detail.PromptCount).Error; err != nil {
		return nil, err
	}

	return &detail, nil
}

// Update applies project changes. Requires owner or admin collaborator.
func (s *ProjectService) Update(userID, projectID string, req *UpdateProjectRequest) (*models.Project, error) {
	var project models.Project
	err := s.db.Scopes(ProjectAccessible(userID, AccessAdmin)).
		First(&project, "projects.id = ?", projectID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("project not found")
		}
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Visibility != "" {
		updates["visibility"] = req.Visibility
	}
	if req.Settings != nil {
		updates["settings"] = *req.Settings
	}

	if len(updates) > 0 {
		if err := s.db.Model(&project).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	return &project, nil
}

// Delete removes a project. Owner only; cascades to prompts, tags and grants.
func (s *ProjectService) Delete(userID, projectID string) error {
	result := s.db.Where("owner_id = ?", userID).Delete(&models.Project{}, "id = ?", projectID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return response.NewNotFound("project not found")
	}
	return nil
}

// Statistics returns prompt, tag and member counts for a project.
func (s *ProjectService) Statistics(userID, projectID string) (*ProjectStatistics, error) {
	var count int64
	err := s.db.Model(&models.Project{}).
		Scopes(ProjectAccessible(userID, AccessRead)).
		Where("projects.id = ?", projectID).
		Count(&count).Error
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, response.NewNotFound("project not found")
	}

	stats := ProjectStatistics{PromptsByStatus: make(map[string]int64)}

	if err := s.db.Model(&models.Prompt{}).Where("project_id = ?", projectID).
		Count(&stats.TotalPrompts).Error; err != nil {
		return nil, err
	}

	type statusCount struct {
		Status string
		Count  int64
	}
	var rows []statusCount
	if err := s.db.Model(&models.Prompt{}).
		Select("status, COUNT(*) as count").
		Where("project_id = ?", projectID).
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		stats.PromptsByStatus[row.Status] = row.Count
	}

	if err := s.db.Model(&models.Tag{}).Where("project_id = ?", projectID).
		Count(&stats.TotalTags).Error; err != nil {
		return nil, err
	}

	if err := s.db.Model(&models.ProjectCollaborator{}).Where("project_id = ?", projectID).
		Count(&stats.TotalCollaborators).Error; err != nil {
		return nil, err
	}

	return &stats, nil
}

// Members lists a project's collaborators.
func (s *ProjectService) Members(userID, projectID string) ([]models.ProjectCollaborator, error) {
	var count int64
	err := s.db.Model(&models.Project{}).
		Scopes(ProjectAccessible(userID, AccessRead)).
		Where("projects.id = ?", projectID).
		Count(&count).Error
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, response.NewNotFound("project not found")
	}

	var members []models.ProjectCollaborator
	err = s.db.Where("project_id = ?", projectID).
		Preload("User").
		Preload("InvitedBy").
		Order("created_at ASC").
		Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}

// Invite adds a user to the project by email. Requires write access.
func (s *ProjectService) Invite(userID, projectID string, req *InviteMemberRequest) (*models.ProjectCollaborator, error) {
	var project models.Project
	err := s.db.Scopes(ProjectAccessible(userID, AccessWrite)).
		First(&project, "projects.id = ?", projectID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("project not found")
		}
		return nil, err
	}

	var target models.User
	if err := s.db.Where("email = ?", req.Email).First(&target).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("user not found")
		}
		return nil, err
	}

	if target.ID == project.OwnerID {
		return nil, response.NewConflict("user is already a collaborator")
	}

	var existing int64
	if err := s.db.Model(&models.ProjectCollaborator{}).
		Where("project_id = ? AND user_id = ?", projectID, target.ID).
		Count(&existing).Error; err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, response.NewConflict("user is already a collaborator")
	}

	member := models.ProjectCollaborator{
		ProjectID:   projectID,
		UserID:      target.ID,
		Role:        req.Role,
		InvitedByID: userID,
	}
	if err := s.db.Create(&member).Error; err != nil {
		return nil, err
	}

	s.db.Preload("User").First(&member, "id = ?", member.ID)
	return &member, nil
}

// UpdateMemberRole changes a collaborator's role. Requires admin access.
func (s *ProjectService) UpdateMemberRole(userID, projectID, memberUserID string, req *UpdateMemberRequest) (*models.ProjectCollaborator, error) {
	if err := s.requireAdmin(userID, projectID); err != nil {
		return nil, err
	}

	var member models.ProjectCollaborator
	err := s.db.Where("project_id = ? AND user_id = ?", projectID, memberUserID).
		First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("member not found")
		}
		return nil, err
	}

	if err := s.db.Model(&member).Update("role", req.Role).Error; err != nil {
		return nil, err
	}

	s.db.Preload("User").First(&member, "id = ?", member.ID)
	return &member, nil
}

// RemoveMember removes a collaborator from the project. Requires admin access.
func (s *ProjectService) RemoveMember(userID, projectID, memberUserID string) error {
	if err := s.requireAdmin(userID, projectID); err != nil {
		return err
	}

	result := s.db.Where("project_id = ? AND user_id = ?", projectID, memberUserID).
		Delete(&models.ProjectCollaborator{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return response.NewNotFound("member not found")
	}
	return nil
}

func (s *ProjectService) requireAdmin(userID, projectID string) error {
	var count int64
	err := s.db.Model(&models.Project{}).
		Scopes(ProjectAccessible(userID, AccessAdmin)).
		Where("projects.id = ?", projectID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count == 0 {
		return response.NewNotFound("project not found")
	}
	return nil
}
