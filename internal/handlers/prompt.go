package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/promptvault/promptvault/internal/middleware"
	"github.com/promptvault/promptvault/internal/services"
	"github.com/promptvault/promptvault/pkg/response"
)

type PromptHandler struct {
	promptService *services.PromptService
}

func NewPromptHandler(db *gorm.DB) *PromptHandler {
	return &PromptHandler{
		promptService: services.NewPromptService(db),
	}
}

// List returns readable prompts, filtered and paginated
// GET /api/v1/prompts
func (h *PromptHandler) List(c *gin.Context) {
	var req services.PromptListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BindError(c, err)
		return
	}

	prompts, pagination, err := h.promptService.List(middleware.GetUserID(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, prompts, "", pagination)
}

// Create creates a prompt at version 1
// POST /api/v1/prompts
func (h *PromptHandler) Create(c *gin.Context) {
	var req services.CreatePromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	prompt, err := h.promptService.Create(middleware.GetUserID(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, prompt, "prompt created")
}

// GetByID returns one prompt with tags and recent versions
// GET /api/v1/prompts/:id
func (h *PromptHandler) GetByID(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	detail, err := h.promptService.Get(middleware.GetUserID(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, detail, "")
}

// Update applies prompt changes, versioning title/content edits
// PUT /api/v1/prompts/:id
func (h *PromptHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req services.UpdatePromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	prompt, err := h.promptService.Update(middleware.GetUserID(c), id, &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, prompt, "prompt updated")
}

// Delete removes a prompt and its history
// DELETE /api/v1/prompts/:id
func (h *PromptHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.promptService.Delete(middleware.GetUserID(c), id); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, nil, "prompt deleted successfully")
}

// Duplicate copies a prompt into the same or another project
// POST /api/v1/prompts/:id/duplicate
func (h *PromptHandler) Duplicate(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	// Body is optional: without one the copy lands in the source project.
	var req services.DuplicatePromptRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BindError(c, err)
			return
		}
	}

	prompt, err := h.promptService.Duplicate(middleware.GetUserID(c), id, &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, prompt, "prompt duplicated")
}

// Favorite toggles the caller's favorite mark
// POST /api/v1/prompts/:id/favorite
func (h *PromptHandler) Favorite(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	favorited, err := h.promptService.ToggleFavorite(middleware.GetUserID(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"favorited": favorited}, "")
}

// ListVersions returns the full version history, newest first
// GET /api/v1/prompts/:id/versions
func (h *PromptHandler) ListVersions(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	versions, err := h.promptService.ListVersions(middleware.GetUserID(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, versions, "")
}

// GetVersion returns one snapshot
// GET /api/v1/prompts/:id/versions/:version
func (h *PromptHandler) GetVersion(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	version, ok := pathInt(c, "version")
	if !ok {
		return
	}

	snapshot, err := h.promptService.GetVersion(middleware.GetUserID(c), id, version)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, snapshot, "")
}

// Revert restores an earlier snapshot as a new version
// POST /api/v1/prompts/:id/revert/:version
func (h *PromptHandler) Revert(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	version, ok := pathInt(c, "version")
	if !ok {
		return
	}

	prompt, err := h.promptService.Revert(middleware.GetUserID(c), id, version)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, prompt, "prompt reverted")
}

// Compare reports field-level changes between two versions
// GET /api/v1/prompts/:id/diff/:v1/:v2
func (h *PromptHandler) Compare(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	v1, ok := pathInt(c, "v1")
	if !ok {
		return
	}
	v2, ok := pathInt(c, "v2")
	if !ok {
		return
	}

	diff, err := h.promptService.CompareVersions(middleware.GetUserID(c), id, v1, v2)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, diff, "")
}
