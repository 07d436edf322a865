package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/promptvault/promptvault/internal/models"
	"github.com/promptvault/promptvault/pkg/response"
)

// VersionComparison reports whether two snapshots differ by field. Equality
// is exact string comparison; no diff algorithm.
type VersionComparison struct {
	Version1       *models.PromptVersion `json:"version1"`
	Version2       *models.PromptVersion `json:"version2"`
	TitleChanged   bool                  `json:"titleChanged"`
	ContentChanged bool                  `json:"contentChanged"`
}

// ListVersions returns a prompt's full version history, newest first.
func (s *PromptService) ListVersions(userID, promptID string) ([]models.PromptVersion, error) {
	if err := s.requireAccess(userID, promptID, AccessRead); err != nil {
		return nil, err
	}

	var versions []models.PromptVersion
	err := s.db.Where("prompt_id = ?", promptID).
		Preload("Author").
		Order("version DESC").
		Find(&versions).Error
	if err != nil {
		return nil, err
	}
	return versions, nil
}

// GetVersion returns one snapshot by (prompt, version).
func (s *PromptService) GetVersion(userID, promptID string, version int) (*models.PromptVersion, error) {
	if err := s.requireAccess(userID, promptID, AccessRead); err != nil {
		return nil, err
	}

	var snapshot models.PromptVersion
	err := s.db.Where("prompt_id = ? AND version = ?", promptID, version).
		Preload("Author").
		First(&snapshot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("version not found")
		}
		return nil, err
	}
	return &snapshot, nil
}

// Revert restores a prompt to an earlier snapshot by appending a new version
// carrying that snapshot's title and content. The old version number is never
// reused; the prompt's counter keeps increasing.
func (s *PromptService) Revert(userID, promptID string, version int) (*models.Prompt, error) {
	var reverted models.Prompt

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

		var target models.PromptVersion
		err = tx.Where("prompt_id = ? AND version = ?", promptID, version).
			First(&target).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return response.NewNotFound("version not found")
			}
			return err
		}

		newVersion := prompt.Version + 1
		snapshot := models.PromptVersion{
			PromptID:  prompt.ID,
			Version:   newVersion,
			Title:     target.Title,
			Content:   target.Content,
			AuthorID:  userID,
			ChangeLog: fmt.Sprintf("Reverted to version %d", version),
		}
		if err := tx.Create(&snapshot).Error; err != nil {
			return err
		}

		result := tx.Model(&models.Prompt{}).
			Where("id = ? AND version = ?", prompt.ID, prompt.Version).
			Updates(map[string]interface{}{
				"title":   target.Title,
				"content": target.Content,
				"version": newVersion,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return response.NewConflict("prompt was modified concurrently, please retry")
		}

		return tx.Preload("Author").First(&reverted, "id = ?", prompt.ID).Error
	})
	if err != nil {
		return nil, err
	}

	return &reverted, nil
}

// CompareVersions fetches two snapshots and reports field-level changes.
func (s *PromptService) CompareVersions(userID, promptID string, v1, v2 int) (*VersionComparison, error) {
	if err := s.requireAccess(userID, promptID, AccessRead); err != nil {
		return nil, err
	}

	var first, second models.PromptVersion
	err := s.db.Where("prompt_id = ? AND version = ?", promptID, v1).
		Preload("Author").First(&first).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("version not found")
		}
		return nil, err
	}
	err = s.db.Where("prompt_id = ? AND version = ?", promptID, v2).
		Preload("Author").First(&second).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("version not found")
		}
		return nil, err
	}

	return &VersionComparison{
		Version1:       &first,
		Version2:       &second,
		TitleChanged:   first.Title != second.Title,
		ContentChanged: first.Content != second.Content,
	}, nil
}
