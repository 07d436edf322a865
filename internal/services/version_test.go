package services

import (
	"testing"

	"github.com/promptvault/promptvault/internal/models"
)

func strPtr(s string) *string { return &s }

func createTestPrompt(t *testing.T, svc *PromptService, userID, projectID, title, content string) *models.Prompt {
	t.Helper()

	prompt, err := svc.Create(userID, &CreatePromptRequest{
		Title:     title,
		Content:   content,
		ProjectID: projectID,
	})
	if err != nil {
		t.Fatalf("failed to create prompt: %v", err)
	}
	return prompt
}

func TestPromptCreate_InitialVersion(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")
	project := createTestProject(t, db, owner.ID, "P")
	svc := NewPromptService(db)

	prompt := createTestPrompt(t, svc, owner.ID, project.ID, "A", "v1")

	if prompt.Version != 1 {
		t.Errorf("Version = %d, expected 1", prompt.Version)
	}

	var versions []models.PromptVersion
	db.Where("prompt_id = ?", prompt.ID).Order("version ASC").Find(&versions)

	if len(versions) != 1 {
		t.Fatalf("version rows = %d, expected 1", len(versions))
	}
	if versions[0].Version != 1 {
		t.Errorf("snapshot version = %d, expected 1", versions[0].Version)
	}
	if versions[0].ChangeLog != "Initial version" {
		t.Errorf("ChangeLog = %q, expected %q", versions[0].ChangeLog, "Initial version")
	}
	if versions[0].Content != "v1" {
		t.Errorf("snapshot content = %q, expected %q", versions[0].Content, "v1")
	}
}

func TestPromptUpdate_ContentChangeCreatesVersion(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")
	project := createTestProject(t, db, owner.ID, "P")
	svc := NewPromptService(db)

	prompt := createTestPrompt(t, svc, owner.ID, project.ID, "A", "v1")

	updated, err := svc.Update(owner.ID, prompt.ID, &UpdatePromptRequest{Content: strPtr("v2")})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if updated.Version != 2 {
		t.Errorf("Version = %d, expected 2", updated.Version)
	}
	if updated.Content != "v2" {
		t.Errorf("Content = %q, expected %q", updated.Content, "v2")
	}

	var count int64
	db.Model(&models.PromptVersion{}).Where("prompt_id = ?", prompt.ID).Count(&count)
	if count != 2 {
		t.Errorf("version rows = %d, expected 2", count)
	}

	var latest models.PromptVersion
	db.Where("prompt_id = ? AND version = ?", prompt.ID, 2).First(&latest)
	if latest.ChangeLog != "Updated prompt" {
		t.Errorf("ChangeLog = %q, expected %q", latest.ChangeLog, "Updated prompt")
	}
}

func TestPromptUpdate_StatusOnlyNoVersion(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")
	project := createTestProject(t, db, owner.ID, "P")
	svc := NewPromptService(db)

	prompt := createTestPrompt(t, svc, owner.ID, project.ID, "A", "v1")

	updated, err := svc.Update(owner.ID, prompt.ID, &UpdatePromptRequest{Status: models.StatusPublished})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if updated.Version != 1 {
		t.Errorf("Version = %d, expected 1 after status-only edit", updated.Version)
	}
	if updated.Status != models.StatusPublished {
		t.Errorf("Status = %q, expected %q", updated.Status, models.StatusPublished)
	}

	var count int64
	db.Model(&models.PromptVersion{}).Where("prompt_id = ?", prompt.ID).Count(&count)
	if count != 1 {
		t.Errorf("version rows = %d, expected 1", count)
	}
}

func TestPromptUpdate_IdenticalContentNoVersion(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")
	project := createTestProject(t, db, owner.ID, "P")
	svc := NewPromptService(db)

	prompt := createTestPrompt(t, svc, owner.ID, project.ID, "A", "v1")

	updated, err := svc.Update(owner.ID, prompt.ID, &UpdatePromptRequest{
		Title:   strPtr("A"),
		Content: strPtr("v1"),
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if updated.Version != 1 {
		t.Errorf("Version = %d, expected 1 after no-op edit", updated.Version)
	}

	var count int64
	db.Model(&models.PromptVersion{}).Where("prompt_id = ?", prompt.ID).Count(&count)
	if count != 1 {
		t.Errorf("version rows = %d, expected 1", count)
	}
}

func TestRevert_AppendsNewVersion(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")
	project := createTestProject(t, db, owner.ID, "P")
	svc := NewPromptService(db)

	prompt := createTestPrompt(t, svc, owner.ID, project.ID, "A", "v1")
	if _, err := svc.Update(owner.ID, prompt.ID, &UpdatePromptRequest{Content: strPtr("v2")}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	reverted, err := svc.Revert(owner.ID, prompt.ID, 1)
	if err != nil {
		t.Fatalf("Revert() error = %v", err)
	}

	if reverted.Version != 3 {
		t.Errorf("Version = %d, expected 3", reverted.Version)
	}
	if reverted.Content != "v1" {
		t.Errorf("Content = %q, expected %q", reverted.Content, "v1")
	}

	var versions []models.PromptVersion
	db.Where("prompt_id = ?", prompt.ID).Order("version ASC").Find(&versions)
	if len(versions) != 3 {
		t.Fatalf("version rows = %d, expected 3", len(versions))
	}
	if versions[2].ChangeLog != "Reverted to version 1" {
		t.Errorf("ChangeLog = %q, expected %q", versions[2].ChangeLog, "Reverted to version 1")
	}
}

func TestVersionSequence_Contiguous(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")
	project := createTestProject(t, db, owner.ID, "P")
	svc := NewPromptService(db)

	prompt := createTestPrompt(t, svc, owner.ID, project.ID, "A", "c0")
	contents := []string{"c1", "c2", "c3", "c4"}
	for _, content := range contents {
		if _, err := svc.Update(owner.ID, prompt.ID, &UpdatePromptRequest{Content: strPtr(content)}); err != nil {
			t.Fatalf("Update(%q) error = %v", content, err)
		}
	}

	var current models.Prompt
	db.First(&current, "id = ?", prompt.ID)

	var versions []models.PromptVersion
	db.Where("prompt_id = ?", prompt.ID).Order("version ASC").Find(&versions)

	if len(versions) != current.Version {
		t.Fatalf("version rows = %d, prompt version = %d; want equal", len(versions), current.Version)
	}
	for i, v := range versions {
		if v.Version != i+1 {
			t.Errorf("versions[%d].Version = %d, expected %d", i, v.Version, i+1)
		}
	}
}

func TestCompareVersions(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")
	project := createTestProject(t, db, owner.ID, "P")
	svc := NewPromptService(db)

	prompt := createTestPrompt(t, svc, owner.ID, project.ID, "A", "v1")
	if _, err := svc.Update(owner.ID, prompt.ID, &UpdatePromptRequest{Content: strPtr("v2")}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	diff, err := svc.CompareVersions(owner.ID, prompt.ID, 1, 2)
	if err != nil {
		t.Fatalf("CompareVersions() error = %v", err)
	}
	if diff.TitleChanged {
		t.Error("TitleChanged = true, expected false")
	}
	if !diff.ContentChanged {
		t.Error("ContentChanged = false, expected true")
	}

	self, err := svc.CompareVersions(owner.ID, prompt.ID, 2, 2)
	if err != nil {
		t.Fatalf("CompareVersions() error = %v", err)
	}
	if self.TitleChanged || self.ContentChanged {
		t.Error("comparing a version to itself should report no changes")
	}

	if _, err := svc.CompareVersions(owner.ID, prompt.ID, 1, 99); err == nil {
		t.Error("comparing against a missing version should fail")
	}
}

func TestListVersions_DescendingOrder(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")
	project := createTestProject(t, db, owner.ID, "P")
	svc := NewPromptService(db)

	prompt := createTestPrompt(t, svc, owner.ID, project.ID, "A", "v1")
	if _, err := svc.Update(owner.ID, prompt.ID, &UpdatePromptRequest{Content: strPtr("v2")}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	versions, err := svc.ListVersions(owner.ID, prompt.ID)
	if err != nil {
		t.Fatalf("ListVersions() error = %v", err)
	}
	if len(versions) != 2 {
		t.Fatalf("len(versions) = %d, expected 2", len(versions))
	}
	if versions[0].Version != 2 || versions[1].Version != 1 {
		t.Errorf("versions not in descending order: %d, %d", versions[0].Version, versions[1].Version)
	}
}

func TestUpdate_StaleVersionWriteMisses(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")
	project := createTestProject(t, db, owner.ID, "P")
	svc := NewPromptService(db)

	prompt := createTestPrompt(t, svc, owner.ID, project.ID, "A", "v1")

	// A stale writer holds version 1 while the row has moved on to 2. The
	// conditional update must touch zero rows so the writer can report
	// Conflict instead of clobbering the newer edit.
	if _, err := svc.Update(owner.ID, prompt.ID, &UpdatePromptRequest{Content: strPtr("v2")}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	result := db.Model(&models.Prompt{}).
		Where("id = ? AND version = ?", prompt.ID, 1).
		Updates(map[string]interface{}{"content": "stale", "version": 2})
	if result.Error != nil {
		t.Fatalf("conditional update error = %v", result.Error)
	}
	if result.RowsAffected != 0 {
		t.Errorf("RowsAffected = %d, expected 0 for stale version", result.RowsAffected)
	}

	var current models.Prompt
	db.First(&current, "id = ?", prompt.ID)
	if current.Content != "v2" {
		t.Errorf("Content = %q, expected %q", current.Content, "v2")
	}
}

func TestUpdate_SnapshotUniquePerVersion(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")
	project := createTestProject(t, db, owner.ID, "P")
	svc := NewPromptService(db)

	prompt := createTestPrompt(t, svc, owner.ID, project.ID, "A", "v1")

	// The (prompt, version) unique index backstops version assignment: a
	// second snapshot claiming an existing number must be rejected.
	clash := models.PromptVersion{
		PromptID:  prompt.ID,
		Version:   1,
		Title:     "A",
		Content:   "other",
		AuthorID:  owner.ID,
		ChangeLog: "Updated prompt",
	}
	if err := db.Create(&clash).Error; err == nil {
		t.Error("duplicate (prompt, version) snapshot should fail")
	}
}
