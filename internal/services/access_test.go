package services

import (
	"net/http"
	"testing"

	"github.com/promptvault/promptvault/internal/models"
)

func TestNonMember_GetsSameNotFoundAsMissing(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")
	outsider := createTestUser(t, db, "outsider@example.com")
	project := createTestProject(t, db, owner.ID, "P")

	promptSvc := NewPromptService(db)
	projectSvc := NewProjectService(db)
	prompt := createTestPrompt(t, promptSvc, owner.ID, project.ID, "A", "body")

	// Existing but unauthorized and outright nonexistent ids must be
	// indistinguishable.
	_, errExisting := projectSvc.Get(outsider.ID, project.ID)
	assertAppError(t, errExisting, http.StatusNotFound)

	_, errMissing := projectSvc.Get(outsider.ID, "00000000-0000-0000-0000-000000000000")
	assertAppError(t, errMissing, http.StatusNotFound)

	if errExisting.Error() != errMissing.Error() {
		t.Errorf("error messages differ: %q vs %q", errExisting.Error(), errMissing.Error())
	}

	_, err := promptSvc.Get(outsider.ID, prompt.ID)
	assertAppError(t, err, http.StatusNotFound)

	_, err = promptSvc.Get(outsider.ID, "00000000-0000-0000-0000-000000000000")
	assertAppError(t, err, http.StatusNotFound)
}

func TestViewerCannotWrite_EditorCan(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")
	member := createTestUser(t, db, "member@example.com")
	project := createTestProject(t, db, owner.ID, "P")

	promptSvc := NewPromptService(db)
	prompt := createTestPrompt(t, promptSvc, owner.ID, project.ID, "A", "v1")

	addCollaborator(t, db, project.ID, member.ID, models.RoleViewer)

	// A viewer can read but not edit.
	if _, err := promptSvc.Get(member.ID, prompt.ID); err != nil {
		t.Fatalf("viewer Get() error = %v", err)
	}
	_, err := promptSvc.Update(member.ID, prompt.ID, &UpdatePromptRequest{Content: strPtr("v2")})
	assertAppError(t, err, http.StatusNotFound)

	// Promotion to editor permits the same request.
	if err := db.Model(&models.ProjectCollaborator{}).
		Where("project_id = ? AND user_id = ?", project.ID, member.ID).
		Update("role", models.RoleEditor).Error; err != nil {
		t.Fatalf("failed to promote member: %v", err)
	}

	updated, err := promptSvc.Update(member.ID, prompt.ID, &UpdatePromptRequest{Content: strPtr("v2")})
	if err != nil {
		t.Fatalf("editor Update() error = %v", err)
	}
	if updated.Version != 2 {
		t.Errorf("Version = %d, expected 2", updated.Version)
	}
}

func TestProjectDelete_OwnerOnly(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")
	admin := createTestUser(t, db, "admin@example.com")
	project := createTestProject(t, db, owner.ID, "P")
	addCollaborator(t, db, project.ID, admin.ID, models.RoleAdmin)

	svc := NewProjectService(db)

	// Even an admin collaborator cannot delete the project.
	err := svc.Delete(admin.ID, project.ID)
	assertAppError(t, err, http.StatusNotFound)

	if err := svc.Delete(owner.ID, project.ID); err != nil {
		t.Fatalf("owner Delete() error = %v", err)
	}
}

func TestPromptDelete_AuthorOwnerOrAdmin(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")
	editor := createTestUser(t, db, "editor@example.com")
	admin := createTestUser(t, db, "admin@example.com")
	project := createTestProject(t, db, owner.ID, "P")
	addCollaborator(t, db, project.ID, editor.ID, models.RoleEditor)
	addCollaborator(t, db, project.ID, admin.ID, models.RoleAdmin)

	svc := NewPromptService(db)

	// Editors cannot delete prompts they did not author.
	ownerPrompt := createTestPrompt(t, svc, owner.ID, project.ID, "owners", "body")
	err := svc.Delete(editor.ID, ownerPrompt.ID)
	assertAppError(t, err, http.StatusNotFound)

	// The author may delete their own prompt regardless of role.
	editorPrompt := createTestPrompt(t, svc, editor.ID, project.ID, "editors", "body")
	if err := svc.Delete(editor.ID, editorPrompt.ID); err != nil {
		t.Fatalf("author Delete() error = %v", err)
	}

	// Admin collaborators may delete any prompt in the project.
	if err := svc.Delete(admin.ID, ownerPrompt.ID); err != nil {
		t.Fatalf("admin Delete() error = %v", err)
	}
}

func TestProjectList_OnlyAccessible(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")
	member := createTestUser(t, db, "member@example.com")
	createTestProject(t, db, owner.ID, "mine")
	shared := createTestProject(t, db, owner.ID, "shared")
	createTestProject(t, db, owner.ID, "hidden")
	addCollaborator(t, db, shared.ID, member.ID, models.RoleViewer)

	svc := NewProjectService(db)

	projects, pagination, err := svc.List(member.ID, &ProjectListRequest{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(projects) != 1 {
		t.Fatalf("len(projects) = %d, expected 1", len(projects))
	}
	if projects[0].ID != shared.ID {
		t.Errorf("project = %q, expected shared project", projects[0].Name)
	}
	if pagination.Total != 1 {
		t.Errorf("Total = %d, expected 1", pagination.Total)
	}

	ownerProjects, _, err := svc.List(owner.ID, &ProjectListRequest{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(ownerProjects) != 3 {
		t.Errorf("len(ownerProjects) = %d, expected 3", len(ownerProjects))
	}
}

func TestInvite_DuplicateConflict(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")
	guest := createTestUser(t, db, "guest@example.com")
	project := createTestProject(t, db, owner.ID, "P")

	svc := NewProjectService(db)

	member, err := svc.Invite(owner.ID, project.ID, &InviteMemberRequest{
		Email: "guest@example.com",
		Role:  models.RoleViewer,
	})
	if err != nil {
		t.Fatalf("Invite() error = %v", err)
	}
	if member.UserID != guest.ID {
		t.Errorf("UserID = %q, expected %q", member.UserID, guest.ID)
	}

	_, err = svc.Invite(owner.ID, project.ID, &InviteMemberRequest{
		Email: "guest@example.com",
		Role:  models.RoleEditor,
	})
	assertAppError(t, err, http.StatusConflict)

	// Inviting the owner is also a duplicate.
	_, err = svc.Invite(owner.ID, project.ID, &InviteMemberRequest{
		Email: "owner@example.com",
		Role:  models.RoleViewer,
	})
	assertAppError(t, err, http.StatusConflict)
}

func TestSearch_ScopedToReadableProjects(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")
	outsider := createTestUser(t, db, "outsider@example.com")
	project := createTestProject(t, db, owner.ID, "P")

	promptSvc := NewPromptService(db)
	createTestPrompt(t, promptSvc, owner.ID, project.ID, "secret plans", "body")

	searchSvc := NewSearchService(db)

	mine, _, err := searchSvc.SearchPrompts(owner.ID, &SearchPromptsRequest{Query: "secret"})
	if err != nil {
		t.Fatalf("SearchPrompts() error = %v", err)
	}
	if len(mine) != 1 {
		t.Errorf("owner results = %d, expected 1", len(mine))
	}

	theirs, _, err := searchSvc.SearchPrompts(outsider.ID, &SearchPromptsRequest{Query: "secret"})
	if err != nil {
		t.Fatalf("SearchPrompts() error = %v", err)
	}
	if len(theirs) != 0 {
		t.Errorf("outsider results = %d, expected 0", len(theirs))
	}
}
