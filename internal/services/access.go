package services

import (
	"gorm.io/gorm"

	"github.com/promptvault/promptvault/internal/models"
)

// AccessLevel is the operation class a caller needs on a project or prompt.
type AccessLevel int

const (
	AccessRead AccessLevel = iota
	AccessWrite
	AccessAdmin
	AccessOwner
)

// rolesFor maps an access level to the collaborator roles that satisfy it.
// The project owner passes every level regardless of collaborator rows.
func rolesFor(level AccessLevel) []string {
	switch level {
	case AccessRead:
		return []string{models.RoleViewer, models.RoleEditor, models.RoleAdmin}
	case AccessWrite:
		return []string{models.RoleEditor, models.RoleAdmin}
	case AccessAdmin:
		return []string{models.RoleAdmin}
	default:
		return nil
	}
}

// accessibleProjectIDs builds a subquery selecting the ids of projects the
// user can act on at the given level.
func accessibleProjectIDs(base *gorm.DB, userID string, level AccessLevel) *gorm.DB {
	projects := base.Model(&models.Project{}).Select("id")
	if level == AccessOwner {
		return projects.Where("owner_id = ?", userID)
	}
	collab := base.Model(&models.ProjectCollaborator{}).
		Select("project_id").
		Where("user_id = ? AND role IN ?", userID, rolesFor(level))
	return projects.Where("owner_id = ? OR id IN (?)", userID, collab)
}

// ProjectAccessible restricts a project query to projects the user can act on
// at the given level. Authorization lives inside the lookup query itself, so
// an unauthorized project and a nonexistent one produce the same empty result.
func ProjectAccessible(userID string, level AccessLevel) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		base := q.Session(&gorm.Session{NewDB: true})
		if level == AccessOwner {
			return q.Where("projects.owner_id = ?", userID)
		}
		collab := base.Model(&models.ProjectCollaborator{}).
			Select("project_id").
			Where("user_id = ? AND role IN ?", userID, rolesFor(level))
		return q.Where("projects.owner_id = ? OR projects.id IN (?)", userID, collab)
	}
}

// PromptAccessible applies the project access predicate through a prompt's
// parent project.
func PromptAccessible(userID string, level AccessLevel) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		base := q.Session(&gorm.Session{NewDB: true})
		return q.Where("prompts.project_id IN (?)", accessibleProjectIDs(base, userID, level))
	}
}

// TagAccessible applies the project access predicate through a tag's
// parent project.
func TagAccessible(userID string, level AccessLevel) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		base := q.Session(&gorm.Session{NewDB: true})
		return q.Where("tags.project_id IN (?)", accessibleProjectIDs(base, userID, level))
	}
}

// PromptDeletable restricts a prompt query to prompts the user may delete:
// the prompt's author, the project owner, or an admin collaborator.
func PromptDeletable(userID string) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		base := q.Session(&gorm.Session{NewDB: true})
		admins := base.Model(&models.ProjectCollaborator{}).
			Select("project_id").
			Where("user_id = ? AND role = ?", userID, models.RoleAdmin)
		owned := base.Model(&models.Project{}).
			Select("id").
			Where("owner_id = ? OR id IN (?)", userID, admins)
		return q.Where("prompts.author_id = ? OR prompts.project_id IN (?)", userID, owned)
	}
}
