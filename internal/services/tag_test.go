package services

import (
	"testing"

	"github.com/promptvault/promptvault/internal/models"
)

func TestTagNames_ScopedPerProject(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")
	projectA := createTestProject(t, db, owner.ID, "A")
	projectB := createTestProject(t, db, owner.ID, "B")
	svc := NewTagService(db)

	tagA, err := svc.Create(owner.ID, &CreateTagRequest{Name: "foo", ProjectID: projectA.ID})
	if err != nil {
		t.Fatalf("Create() in project A error = %v", err)
	}
	tagB, err := svc.Create(owner.ID, &CreateTagRequest{Name: "foo", ProjectID: projectB.ID})
	if err != nil {
		t.Fatalf("Create() in project B error = %v", err)
	}

	if tagA.ID == tagB.ID {
		t.Error("same name in different projects should produce distinct tags")
	}
}

func TestTagCreate_DuplicateNameConflict(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")
	project := createTestProject(t, db, owner.ID, "P")
	svc := NewTagService(db)

	if _, err := svc.Create(owner.ID, &CreateTagRequest{Name: "foo", ProjectID: project.ID}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	_, err := svc.Create(owner.ID, &CreateTagRequest{Name: "foo", ProjectID: project.ID})
	assertAppError(t, err, 409)
}

func TestTagCreate_DefaultColor(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")
	project := createTestProject(t, db, owner.ID, "P")
	svc := NewTagService(db)

	tag, err := svc.Create(owner.ID, &CreateTagRequest{Name: "foo", ProjectID: project.ID})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if tag.Color != models.DefaultTagColor {
		t.Errorf("Color = %q, expected %q", tag.Color, models.DefaultTagColor)
	}
}

func TestTagUpdate_RenameConflict(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")
	project := createTestProject(t, db, owner.ID, "P")
	svc := NewTagService(db)

	if _, err := svc.Create(owner.ID, &CreateTagRequest{Name: "foo", ProjectID: project.ID}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	bar, err := svc.Create(owner.ID, &CreateTagRequest{Name: "bar", ProjectID: project.ID})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	_, err = svc.Update(owner.ID, bar.ID, &UpdateTagRequest{Name: "foo"})
	assertAppError(t, err, 409)

	// Recoloring without renaming is always allowed.
	updated, err := svc.Update(owner.ID, bar.ID, &UpdateTagRequest{Color: "#ff0000"})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Color != "#ff0000" {
		t.Errorf("Color = %q, expected %q", updated.Color, "#ff0000")
	}
}

func TestCreatePrompt_DuplicateTagNamesCollapse(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")
	project := createTestProject(t, db, owner.ID, "P")
	svc := NewPromptService(db)

	prompt, err := svc.Create(owner.ID, &CreatePromptRequest{
		Title:     "A",
		Content:   "body",
		ProjectID: project.ID,
		Tags:      []string{"x", "x"},
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if len(prompt.Tags) != 1 {
		t.Fatalf("len(Tags) = %d, expected 1", len(prompt.Tags))
	}
	if prompt.Tags[0].Name != "x" {
		t.Errorf("tag name = %q, expected %q", prompt.Tags[0].Name, "x")
	}

	var tagCount, linkCount int64
	db.Model(&models.Tag{}).Where("project_id = ?", project.ID).Count(&tagCount)
	db.Model(&models.PromptTag{}).Where("prompt_id = ?", prompt.ID).Count(&linkCount)
	if tagCount != 1 {
		t.Errorf("tag rows = %d, expected 1", tagCount)
	}
	if linkCount != 1 {
		t.Errorf("link rows = %d, expected 1", linkCount)
	}
}

func TestUpdatePrompt_TagUpsertReusesExisting(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")
	project := createTestProject(t, db, owner.ID, "P")
	tagSvc := NewTagService(db)
	promptSvc := NewPromptService(db)

	existing, err := tagSvc.Create(owner.ID, &CreateTagRequest{Name: "x", Color: "#00ff00", ProjectID: project.ID})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	prompt := createTestPrompt(t, promptSvc, owner.ID, project.ID, "A", "body")
	tags := []string{"x", "y"}
	updated, err := promptSvc.Update(owner.ID, prompt.ID, &UpdatePromptRequest{Tags: &tags})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if len(updated.Tags) != 2 {
		t.Fatalf("len(Tags) = %d, expected 2", len(updated.Tags))
	}
	for _, tag := range updated.Tags {
		if tag.Name == "x" {
			if tag.ID != existing.ID {
				t.Error("upsert should reuse the existing tag row")
			}
			if tag.Color != "#00ff00" {
				t.Errorf("existing tag color overwritten: %q", tag.Color)
			}
		}
	}
}

func TestTagDelete_RemovesLinks(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")
	project := createTestProject(t, db, owner.ID, "P")
	tagSvc := NewTagService(db)
	promptSvc := NewPromptService(db)

	prompt, err := promptSvc.Create(owner.ID, &CreatePromptRequest{
		Title:     "A",
		Content:   "body",
		ProjectID: project.ID,
		Tags:      []string{"x"},
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := tagSvc.Delete(owner.ID, prompt.Tags[0].ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	var linkCount int64
	db.Model(&models.PromptTag{}).Where("prompt_id = ?", prompt.ID).Count(&linkCount)
	if linkCount != 0 {
		t.Errorf("link rows = %d, expected 0 after tag delete", linkCount)
	}
}

func TestPopular_RanksByLinkedPrompts(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")
	project := createTestProject(t, db, owner.ID, "P")
	tagSvc := NewTagService(db)
	promptSvc := NewPromptService(db)

	for i, tags := range [][]string{{"hot", "warm"}, {"hot"}, {"hot", "warm", "cold"}} {
		_, err := promptSvc.Create(owner.ID, &CreatePromptRequest{
			Title:     "P" + string(rune('0'+i)),
			Content:   "body",
			ProjectID: project.ID,
			Tags:      tags,
		})
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	popular, err := tagSvc.Popular(owner.ID, project.ID, 10)
	if err != nil {
		t.Fatalf("Popular() error = %v", err)
	}

	if len(popular) != 3 {
		t.Fatalf("len(popular) = %d, expected 3", len(popular))
	}
	if popular[0].Name != "hot" || popular[0].PromptCount != 3 {
		t.Errorf("popular[0] = %q (%d), expected hot (3)", popular[0].Name, popular[0].PromptCount)
	}
	if popular[1].Name != "warm" || popular[1].PromptCount != 2 {
		t.Errorf("popular[1] = %q (%d), expected warm (2)", popular[1].Name, popular[1].PromptCount)
	}
}
