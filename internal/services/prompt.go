package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/promptvault/promptvault/internal/models"
	"github.com/promptvault/promptvault/pkg/response"
)

// Default change-log strings written by the versioning engine.
const (
	changeLogInitial = "Initial version"
	changeLogUpdated = "Updated prompt"
)

// recentVersionLimit bounds the version history embedded in a prompt detail.
const recentVersionLimit = 5

type PromptService struct {
	db *gorm.DB
}

func NewPromptService(db *gorm.DB) *PromptService {
	return &PromptService{db: db}
}

type PromptListRequest struct {
	Page      int    `form:"page" binding:"omitempty,min=1"`
	Limit     int    `form:"limit" binding:"omitempty,min=1,max=100"`
	ProjectID string `form:"projectId" binding:"omitempty,uuid"`
	Status    string `form:"status" binding:"omitempty,oneof=draft published archived"`
	Search    string `form:"search"`
	Tag       string `form:"tag"`
	Favorites bool   `form:"favorites"`
	SortBy    string `form:"sortBy" binding:"omitempty,oneof=title createdAt updatedAt version"`
	SortOrder string `form:"sortOrder" binding:"omitempty,oneof=asc desc"`
}

type CreatePromptRequest struct {
	Title     string   `json:"title" binding:"required,min=1,max=200"`
	Content   string   `json:"content" binding:"required"`
	ProjectID string   `json:"projectId" binding:"required,uuid"`
	Status    string   `json:"status" binding:"omitempty,oneof=draft published archived"`
	Metadata  string   `json:"metadata"`
	Tags      []string `json:"tags" binding:"omitempty,dive,min=1,max=100"`
}

// UpdatePromptRequest uses pointers so "field absent" and "field set to its
// current value" are distinguishable; only a provided, different title or
// content produces a new version.
type UpdatePromptRequest struct {
	Title     *string   `json:"title" binding:"omitempty,min=1,max=200"`
	Content   *string   `json:"content"`
	Status    string    `json:"status" binding:"omitempty,oneof=draft published archived"`
	Metadata  *string   `json:"metadata"`
	Tags      *[]string `json:"tags" binding:"omitempty,dive,min=1,max=100"`
	ChangeLog string    `json:"changeLog" binding:"omitempty,max=500"`
}

type DuplicatePromptRequest struct {
	ProjectID string `json:"projectId" binding:"omitempty,uuid"`
	Title     string `json:"title" binding:"omitempty,min=1,max=200"`
}

// PromptDetail is a prompt with its tags, recent versions and favorite flag.
type PromptDetail struct {
	models.Prompt
	IsFavorited bool `json:"isFavorited"`
}

var promptSortColumns = map[string]string{
	"title":     "title",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"version":   "version",
}

// List returns prompts in projects the user can read, filtered and paginated.
func (s *PromptService) List(userID string, req *PromptListRequest) ([]models.Prompt, *response.Pagination, error) {
	if req.Page == 0 {
		req.Page = 1
	}
	if req.Limit == 0 {
		req.Limit = 10
	}

	query := s.db.Model(&models.Prompt{}).Scopes(PromptAccessible(userID, AccessRead))

	if req.ProjectID != "" {
		query = query.Where("prompts.project_id = ?", req.ProjectID)
	}
	if req.Status != "" {
		query = query.Where("prompts.status = ?", req.Status)
	}
	if req.Search != "" {
		pattern := "%" + req.Search + "%"
		query = query.Where("LOWER(prompts.title) LIKE LOWER(?) OR LOWER(prompts.content) LIKE LOWER(?)", pattern, pattern)
	}
	if req.Tag != "" {
		query = query.Where("prompts.id IN (?)", s.db.Model(&models.PromptTag{}).
			Select("prompt_tags.prompt_id").
			Joins("JOIN tags ON tags.id = prompt_tags.tag_id").
			Where("tags.name = ?", req.Tag))
	}
	if req.Favorites {
		query = query.Where("prompts.id IN (?)", s.db.Model(&models.UserFavorite{}).
			Select("prompt_id").
			Where("user_id = ?", userID))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, nil, err
	}

	order := "prompts.updated_at DESC"
	if col, ok := promptSortColumns[req.SortBy]; ok {
		dir := "DESC"
		if req.SortOrder == "asc" {
			dir = "ASC"
		}
		order = "prompts." + col + " " + dir
	}

	var prompts []models.Prompt
	offset := (req.Page - 1) * req.Limit
	err := query.Preload("Author").Preload("Project").
		Order(order).Offset(offset).Limit(req.Limit).
		Find(&prompts).Error
	if err != nil {
		return nil, nil, err
	}

	if err := s.attachTags(prompts); err != nil {
		return nil, nil, err
	}

	return prompts, response.NewPagination(req.Page, req.Limit, total), nil
}

// Create creates a prompt at version 1 with its initial snapshot and tags.
func (s *PromptService) Create(userID string, req *CreatePromptRequest) (*models.Prompt, error) {
	var count int64
	err := s.db.Model(&models.Project{}).
		Scopes(ProjectAccessible(userID, AccessWrite)).
		Where("projects.id = ?", req.ProjectID).
		Count(&count).Error
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, response.NewNotFound("project not found")
	}

	prompt := models.Prompt{
		Title:     req.Title,
		Content:   req.Content,
		ProjectID: req.ProjectID,
		AuthorID:  userID,
		Status:    req.Status,
		Metadata:  req.Metadata,
		Version:   1,
	}
	if prompt.Status == "" {
		prompt.Status = models.StatusDraft
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&prompt).Error; err != nil {
			return err
		}

		snapshot := models.PromptVersion{
			PromptID:  prompt.ID,
			Version:   1,
			Title:     prompt.Title,
			Content:   prompt.Content,
			AuthorID:  userID,
			ChangeLog: changeLogInitial,
		}
		if err := tx.Create(&snapshot).Error; err != nil {
			return err
		}

		if len(req.Tags) > 0 {
			tags, err := syncPromptTags(tx, prompt.ID, prompt.ProjectID, req.Tags)
			if err != nil {
				return err
			}
			prompt.Tags = tags
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.db.Preload("Author").First(&prompt, "id = ?", prompt.ID)
	return &prompt, nil
}

// Get returns a prompt with tags, its most recent versions and the caller's
// favorite flag.
func (s *PromptService) Get(userID, promptID string) (*PromptDetail, error) {
	var prompt models.Prompt
	err := s.db.Scopes(PromptAccessible(userID, AccessRead)).
		Preload("Author").Preload("Project").
		First(&prompt, "prompts.id = ?", promptID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("prompt not found")
		}
		return nil, err
	}

	tags, err := loadPromptTags(s.db, prompt.ID)
	if err != nil {
		return nil, err
	}
	prompt.Tags = tags

	err = s.db.Where("prompt_id = ?", prompt.ID).
		Preload("Author").
		Order("version DESC").
		Limit(recentVersionLimit).
		Find(&prompt.Versions).Error
	if err != nil {
		return nil, err
	}

	var favorited int64
	err = s.db.Model(&models.UserFavorite{}).
		Where("user_id = ? AND prompt_id = ?", userID, prompt.ID).
		Count(&favorited).Error
	if err != nil {
		return nil, err
	}

	return &PromptDetail{Prompt: prompt, IsFavorited: favorited > 0}, nil
}

// Update applies prompt changes. A provided title or content that differs
// from the stored value creates a new version snapshot and bumps the prompt's
// version counter; status-only or no-op edits never do. The version bump is
// conditional on the version read at the start of the transaction, so two
// concurrent edits cannot both claim the same number: the loser gets Conflict.
func (s *PromptService) Update(userID, promptID string, req *UpdatePromptRequest) (*models.Prompt, error) {
	var updated models.Prompt

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var prompt models.Prompt
		err := tx.Scopes(PromptAccessible(userID, AccessWrite)).
			First(&prompt, "prompts.id = ?", promptID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return response.NewNotFound("prompt not found")
			}
			return err
		}

		titleChanged := req.Title != nil && *req.Title != prompt.Title
		contentChanged := req.Content != nil && *req.Content != prompt.Content

		updates := make(map[string]interface{})
		if titleChanged {
			updates["title"] = *req.Title
		}
		if contentChanged {
			updates["content"] = *req.Content
		}
		if req.Status != "" {
			updates["status"] = req.Status
		}
		if req.Metadata != nil {
			updates["metadata"] = *req.Metadata
		}

		if titleChanged || contentChanged {
			newVersion := prompt.Version + 1

			newTitle := prompt.Title
			if titleChanged {
				newTitle = *req.Title
			}
			newContent := prompt.Content
			if contentChanged {
				newContent = *req.Content
			}

			changeLog := req.ChangeLog
			if changeLog == "" {
				changeLog = changeLogUpdated
			}

			snapshot := models.PromptVersion{
				PromptID:  prompt.ID,
				Version:   newVersion,
				Title:     newTitle,
				Content:   newContent,
				AuthorID:  userID,
				ChangeLog: changeLog,
			}
			if err := tx.Create(&snapshot).Error; err != nil {
				return err
			}

			updates["version"] = newVersion
			result := tx.Model(&models.Prompt{}).
				Where("id = ? AND version = ?", prompt.ID, prompt.Version).
				Updates(updates)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return response.NewConflict("prompt was modified concurrently, please retry")
			}
		} else if len(updates) > 0 {
			if err := tx.Model(&prompt).Updates(updates).Error; err != nil {
				return err
			}
		}

		if req.Tags != nil {
			if _, err := syncPromptTags(tx, prompt.ID, prompt.ProjectID, *req.Tags); err != nil {
				return err
			}
		}

		return tx.Preload("Author").First(&updated, "id = ?", prompt.ID).Error
	})
	if err != nil {
		return nil, err
	}

	tags, err := loadPromptTags(s.db, updated.ID)
	if err != nil {
		return nil, err
	}
	updated.Tags = tags

	return &updated, nil
}

// Delete removes a prompt with its versions, tag links and favorites.
// Allowed for the prompt author, the project owner or an admin collaborator.
func (s *PromptService) Delete(userID, promptID string) error {
	var prompt models.Prompt
	err := s.db.Scopes(PromptDeletable(userID)).
		First(&prompt, "prompts.id = ?", promptID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NewNotFound("prompt not found")
		}
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("prompt_id = ?", prompt.ID).Delete(&models.PromptTag{}).Error; err != nil {
			return err
		}
		if err := tx.Where("prompt_id = ?", prompt.ID).Delete(&models.PromptVersion{}).Error; err != nil {
			return err
		}
		if err := tx.Where("prompt_id = ?", prompt.ID).Delete(&models.UserFavorite{}).Error; err != nil {
			return err
		}
		return tx.Delete(&prompt).Error
	})
}

// Duplicate copies a prompt into the same or another writable project. The
// dup starts at version 1 with a change log naming its origin; tag names
// carry over and are upserted into the target project.
func (s *PromptService) Duplicate(userID, promptID string, req *DuplicatePromptRequest) (*models.Prompt, error) {
	var source models.Prompt
	err := s.db.Scopes(PromptAccessible(userID, AccessRead)).
		First(&source, "prompts.id = ?", promptID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("prompt not found")
		}
		return nil, err
	}

	targetProjectID := source.ProjectID
	if req.ProjectID != "" {
		targetProjectID = req.ProjectID
	}

	var count int64
	err = s.db.Model(&models.Project{}).
		Scopes(ProjectAccessible(userID, AccessWrite)).
		Where("projects.id = ?", targetProjectID).
		Count(&count).Error
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, response.NewNotFound("project not found")
	}

	title := req.Title
	if title == "" {
		title = source.Title + " (Copy)"
	}

	sourceTags, err := loadPromptTags(s.db, source.ID)
	if err != nil {
		return nil, err
	}

	dup := models.Prompt{
		Title:     title,
		Content:   source.Content,
		ProjectID: targetProjectID,
		AuthorID:  userID,
		Status:    models.StatusDraft,
		Metadata:  source.Metadata,
		Version:   1,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&dup).Error; err != nil {
			return err
		}

		snapshot := models.PromptVersion{
			PromptID:  dup.ID,
			Version:   1,
			Title:     dup.Title,
			Content:   dup.Content,
			AuthorID:  userID,
			ChangeLog: fmt.Sprintf("Duplicated from prompt: %s", source.Title),
		}
		if err := tx.Create(&snapshot).Error; err != nil {
			return err
		}

		if len(sourceTags) > 0 {
			names := make([]string, len(sourceTags))
			for i, tag := range sourceTags {
				names[i] = tag.Name
			}
			tags, err := syncPromptTags(tx, dup.ID, targetProjectID, names)
			if err != nil {
				return err
			}
			dup.Tags = tags
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.db.Preload("Author").First(&dup, "id = ?", dup.ID)
	return &dup, nil
}

// ToggleFavorite flips the caller's favorite mark on a prompt and reports the
// resulting state.
func (s *PromptService) ToggleFavorite(userID, promptID string) (bool, error) {
	if err := s.requireAccess(userID, promptID, AccessRead); err != nil {
		return false, err
	}

	var favorite models.UserFavorite
	err := s.db.Where("user_id = ? AND prompt_id = ?", userID, promptID).
		First(&favorite).Error
	if err == nil {
		if err := s.db.Delete(&favorite).Error; err != nil {
			return false, err
		}
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	favorite = models.UserFavorite{UserID: userID, PromptID: promptID}
	if err := s.db.Create(&favorite).Error; err != nil {
		return false, err
	}
	return true, nil
}

func (s *PromptService) requireAccess(userID, promptID string, level AccessLevel) error {
	var count int64
	err := s.db.Model(&models.Prompt{}).
		Scopes(PromptAccessible(userID, level)).
		Where("prompts.id = ?", promptID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count == 0 {
		return response.NewNotFound("prompt not found")
	}
	return nil
}

// attachTags batch-loads tags for a page of prompts.
func (s *PromptService) attachTags(prompts []models.Prompt) error {
	if len(prompts) == 0 {
		return nil
	}

	ids := make([]string, len(prompts))
	for i, p := range prompts {
		ids[i] = p.ID
	}

	type taggedRow struct {
		ID           string
		Name         string
		Color        string
		ProjectID    string
		LinkPromptID string
	}
	var rows []taggedRow
	err := s.db.Model(&models.Tag{}).
		Select("tags.id, tags.name, tags.color, tags.project_id, prompt_tags.prompt_id AS link_prompt_id").
		Joins("JOIN prompt_tags ON prompt_tags.tag_id = tags.id").
		Where("prompt_tags.prompt_id IN ?", ids).
		Order("tags.name ASC").
		Scan(&rows).Error
	if err != nil {
		return err
	}

	byPrompt := make(map[string][]models.Tag, len(prompts))
	for _, row := range rows {
		byPrompt[row.LinkPromptID] = append(byPrompt[row.LinkPromptID], models.Tag{
			ID:        row.ID,
			Name:      row.Name,
			Color:     row.Color,
			ProjectID: row.ProjectID,
		})
	}
	for i := range prompts {
		prompts[i].Tags = byPrompt[prompts[i].ID]
	}
	return nil
}
