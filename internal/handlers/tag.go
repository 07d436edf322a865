package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/promptvault/promptvault/internal/middleware"
	"github.com/promptvault/promptvault/internal/services"
	"github.com/promptvault/promptvault/pkg/response"
)

type TagHandler struct {
	tagService *services.TagService
}

func NewTagHandler(db *gorm.DB) *TagHandler {
	return &TagHandler{
		tagService: services.NewTagService(db),
	}
}

// queryProjectID validates the required projectId query parameter.
func queryProjectID(c *gin.Context) (string, bool) {
	projectID := c.Query("projectId")
	if _, err := uuid.Parse(projectID); err != nil {
		response.Error(c, response.NewBadRequest("projectId query parameter is required"))
		return "", false
	}
	return projectID, true
}

// List returns a project's tags with usage counts
// GET /api/v1/tags?projectId=...
func (h *TagHandler) List(c *gin.Context) {
	projectID, ok := queryProjectID(c)
	if !ok {
		return
	}

	tags, err := h.tagService.List(middleware.GetUserID(c), projectID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, tags, "")
}

// Create creates a tag in a project
// POST /api/v1/tags
func (h *TagHandler) Create(c *gin.Context) {
	var req services.CreateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	tag, err := h.tagService.Create(middleware.GetUserID(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, tag, "tag created")
}

// Update renames or recolors a tag
// PUT /api/v1/tags/:id
func (h *TagHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req services.UpdateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	tag, err := h.tagService.Update(middleware.GetUserID(c), id, &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, tag, "tag updated")
}

// Delete removes a tag and its prompt links
// DELETE /api/v1/tags/:id
func (h *TagHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.tagService.Delete(middleware.GetUserID(c), id); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, nil, "tag deleted successfully")
}

// Popular ranks a project's tags by linked-prompt count
// GET /api/v1/tags/popular?projectId=...&limit=10
func (h *TagHandler) Popular(c *gin.Context) {
	projectID, ok := queryProjectID(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	tags, err := h.tagService.Popular(middleware.GetUserID(c), projectID, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, tags, "")
}
