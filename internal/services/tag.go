package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/promptvault/promptvault/internal/models"
	"github.com/promptvault/promptvault/pkg/response"
)

type TagService struct {
	db *gorm.DB
}

func NewTagService(db *gorm.DB) *TagService {
	return &TagService{db: db}
}

type CreateTagRequest struct {
	Name      string `json:"name" binding:"required,min=1,max=100"`
	Color     string `json:"color" binding:"omitempty,hexcolor"`
	ProjectID string `json:"projectId" binding:"required,uuid"`
}

type UpdateTagRequest struct {
	Name  string `json:"name" binding:"omitempty,min=1,max=100"`
	Color string `json:"color" binding:"omitempty,hexcolor"`
}

// List returns a project's tags with linked-prompt counts.
func (s *TagService) List(userID, projectID string) ([]models.Tag, error) {
	if err := s.requireProjectRead(userID, projectID); err != nil {
		return nil, err
	}

	var tags []models.Tag
	err := s.db.Model(&models.Tag{}).
		Select("tags.*, COUNT(prompt_tags.id) AS prompt_count").
		Joins("LEFT JOIN prompt_tags ON prompt_tags.tag_id = tags.id").
		Where("tags.project_id = ?", projectID).
		Group("tags.id").
		Order("tags.name ASC").
		Find(&tags).Error
	if err != nil {
		return nil, err
	}
	return tags, nil
}

// Create creates a tag. Fails with Conflict if the name is already used in
// the project.
func (s *TagService) Create(userID string, req *CreateTagRequest) (*models.Tag, error) {
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

	var existing int64
	if err := s.db.Model(&models.Tag{}).
		Where("name = ? AND project_id = ?", req.Name, req.ProjectID).
		Count(&existing).Error; err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, response.NewConflict("tag name already exists in this project")
	}

	tag := models.Tag{
		Name:      req.Name,
		Color:     req.Color,
		ProjectID: req.ProjectID,
	}
	if tag.Color == "" {
		tag.Color = models.DefaultTagColor
	}

	if err := s.db.Create(&tag).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

// Update renames or recolors a tag. Renaming to a name already used by a
// different tag in the same project fails with Conflict.
func (s *TagService) Update(userID, tagID string, req *UpdateTagRequest) (*models.Tag, error) {
	var tag models.Tag
	err := s.db.Scopes(TagAccessible(userID, AccessWrite)).
		First(&tag, "tags.id = ?", tagID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("tag not found")
		}
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Name != "" && req.Name != tag.Name {
		var clash int64
		err := s.db.Model(&models.Tag{}).
			Where("name = ? AND project_id = ? AND id <> ?", req.Name, tag.ProjectID, tag.ID).
			Count(&clash).Error
		if err != nil {
			return nil, err
		}
		if clash > 0 {
			return nil, response.NewConflict("tag name already exists in this project")
		}
		updates["name"] = req.Name
	}
	if req.Color != "" {
		updates["color"] = req.Color
	}

	if len(updates) > 0 {
		if err := s.db.Model(&tag).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	return &tag, nil
}

// Delete removes a tag and its prompt links.
func (s *TagService) Delete(userID, tagID string) error {
	var tag models.Tag
	err := s.db.Scopes(TagAccessible(userID, AccessWrite)).
		First(&tag, "tags.id = ?", tagID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NewNotFound("tag not found")
		}
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tag_id = ?", tag.ID).Delete(&models.PromptTag{}).Error; err != nil {
			return err
		}
		return tx.Delete(&tag).Error
	})
}

// Popular ranks a project's tags by descending count of linked prompts.
func (s *TagService) Popular(userID, projectID string, limit int) ([]models.Tag, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	if err := s.requireProjectRead(userID, projectID); err != nil {
		return nil, err
	}

	var tags []models.Tag
	err := s.db.Model(&models.Tag{}).
		Select("tags.*, COUNT(prompt_tags.id) AS prompt_count").
		Joins("LEFT JOIN prompt_tags ON prompt_tags.tag_id = tags.id").
		Where("tags.project_id = ?", projectID).
		Group("tags.id").
		Order("prompt_count DESC, tags.name ASC").
		Limit(limit).
		Find(&tags).Error
	if err != nil {
		return nil, err
	}
	return tags, nil
}

func (s *TagService) requireProjectRead(userID, projectID string) error {
	var count int64
	err := s.db.Model(&models.Project{}).
		Scopes(ProjectAccessible(userID, AccessRead)).
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

// upsertTags resolves tag names to project-scoped tag rows, creating missing
// ones. Duplicate names in the input collapse to one row; existing tags keep
// their color.
func upsertTags(tx *gorm.DB, projectID string, names []string) ([]models.Tag, error) {
	tags := make([]models.Tag, 0, len(names))
	seen := make(map[string]bool, len(names))

	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		var tag models.Tag
		err := tx.Where("name = ? AND project_id = ?", name, projectID).First(&tag).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			tag = models.Tag{Name: name, ProjectID: projectID, Color: models.DefaultTagColor}
			err = tx.Create(&tag).Error
		}
		if err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}

	return tags, nil
}

// syncPromptTags replaces a prompt's tag links with the given names.
func syncPromptTags(tx *gorm.DB, promptID, projectID string, names []string) ([]models.Tag, error) {
	if err := tx.Where("prompt_id = ?", promptID).Delete(&models.PromptTag{}).Error; err != nil {
		return nil, err
	}

	tags, err := upsertTags(tx, projectID, names)
	if err != nil {
		return nil, err
	}

	for _, tag := range tags {
		link := models.PromptTag{PromptID: promptID, TagID: tag.ID}
		if err := tx.Create(&link).Error; err != nil {
			return nil, err
		}
	}

	return tags, nil
}

// loadPromptTags fetches the tags linked to a prompt.
func loadPromptTags(db *gorm.DB, promptID string) ([]models.Tag, error) {
	var tags []models.Tag
	err := db.Model(&models.Tag{}).
		Joins("JOIN prompt_tags ON prompt_tags.tag_id = tags.id").
		Where("prompt_tags.prompt_id = ?", promptID).
		Order("tags.name ASC").
		Find(&tags).Error
	if err != nil {
		return nil, err
	}
	return tags, nil
}
