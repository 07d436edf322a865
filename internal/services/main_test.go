package services

import (
	"errors"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/promptvault/promptvault/internal/models"
	"github.com/promptvault/promptvault/internal/utils"
	"github.com/promptvault/promptvault/pkg/response"
)

func init() {
	utils.SetJWTSecret("test-secret-for-service-testing")
	utils.SetRefreshSecret("test-refresh-secret-for-service-testing")
}

// newTestDB opens a fresh in-memory database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	user := models.User{
		Email:        email,
		PasswordHash: "not-a-real-hash",
		Name:         email,
		Role:         "user",
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return &user
}

func createTestProject(t *testing.T, db *gorm.DB, ownerID, name string) *models.Project {
	t.Helper()

	project := models.Project{
		Name:       name,
		Visibility: models.VisibilityPrivate,
		OwnerID:    ownerID,
	}
	if err := db.Create(&project).Error; err != nil {
		t.Fatalf("failed to create test project: %v", err)
	}
	return &project
}

// assertAppError checks that err is an AppError with the given HTTP status.
func assertAppError(t *testing.T, err error, status int) {
	t.Helper()

	if err == nil {
		t.Fatal("expected error, got nil")
	}
	var appErr *response.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %v", err)
	}
	if appErr.HTTPStatus != status {
		t.Errorf("HTTPStatus = %d, expected %d", appErr.HTTPStatus, status)
	}
}

func addCollaborator(t *testing.T, db *gorm.DB, projectID, userID, role string) {
	t.Helper()

	member := models.ProjectCollaborator{
		ProjectID: projectID,
		UserID:    userID,
		Role:      role,
	}
	if err := db.Create(&member).Error; err != nil {
		t.Fatalf("failed to add collaborator: %v", err)
	}
}
