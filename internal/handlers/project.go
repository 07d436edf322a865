package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/promptvault/promptvault/internal/middleware"
	"github.com/promptvault/promptvault/internal/services"
	"github.com/promptvault/promptvault/pkg/response"
)

type ProjectHandler struct {
	projectService *services.ProjectService
}

func NewProjectHandler(db *gorm.DB) *ProjectHandler {
	return &ProjectHandler{
		projectService: services.NewProjectService(db),
	}
}

// List returns the caller's projects, paginated
// GET /api/v1/projects
func (h *ProjectHandler) List(c *gin.Context) {
	var req services.ProjectListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BindError(c, err)
		return
	}

	projects, pagination, err := h.projectService.List(middleware.GetUserID(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, projects, "", pagination)
}

// Create creates a project
// POST /api/v1/projects
func (h *ProjectHandler) Create(c *gin.Context) {
	var req services.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	project, err := h.projectService.Create(middleware.GetUserID(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, project, "project created")
}

// GetByID returns one project with members and prompt count
// GET /api/v1/projects/:id
func (h *ProjectHandler) GetByID(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	detail, err := h.projectService.Get(middleware.GetUserID(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, detail, "")
}

// Update applies project changes
// PUT /api/v1/projects/:id
func (h *ProjectHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req services.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	project, err := h.projectService.Update(middleware.GetUserID(c), id, &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, project, "project updated")
}

// Delete removes a project
// DELETE /api/v1/projects/:id
func (h *ProjectHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.projectService.Delete(middleware.GetUserID(c), id); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, nil, "project deleted successfully")
}

// Statistics returns prompt, tag and member counts
// GET /api/v1/projects/:id/statistics
func (h *ProjectHandler) Statistics(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	stats, err := h.projectService.Statistics(middleware.GetUserID(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, stats, "")
}

// Members lists project collaborators
// GET /api/v1/projects/:id/members
func (h *ProjectHandler) Members(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	members, err := h.projectService.Members(middleware.GetUserID(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, members, "")
}

// Invite adds a collaborator by email
// POST /api/v1/projects/:id/invitations
func (h *ProjectHandler) Invite(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req services.InviteMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	member, err := h.projectService.Invite(middleware.GetUserID(c), id, &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, member, "collaborator invited")
}

// UpdateMember changes a collaborator's role
// PUT /api/v1/projects/:id/members/:userId
func (h *ProjectHandler) UpdateMember(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	memberID, ok := pathID(c, "userId")
	if !ok {
		return
	}

	var req services.UpdateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	member, err := h.projectService.UpdateMemberRole(middleware.GetUserID(c), id, memberID, &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, member, "member role updated")
}

// RemoveMember removes a collaborator
// DELETE /api/v1/projects/:id/members/:userId
func (h *ProjectHandler) RemoveMember(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	memberID, ok := pathID(c, "userId")
	if !ok {
		return
	}

	if err := h.projectService.RemoveMember(middleware.GetUserID(c), id, memberID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, nil, "member removed")
}
