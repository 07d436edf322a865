package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/promptvault/promptvault/internal/middleware"
	"github.com/promptvault/promptvault/internal/services"
	"github.com/promptvault/promptvault/pkg/response"
)

type SearchHandler struct {
	searchService *services.SearchService
}

func NewSearchHandler(db *gorm.DB) *SearchHandler {
	return &SearchHandler{
		searchService: services.NewSearchService(db),
	}
}

// Prompts searches readable prompts with query-string filters
// GET /api/v1/search/prompts
func (h *SearchHandler) Prompts(c *gin.Context) {
	var req services.SearchPromptsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BindError(c, err)
		return
	}

	prompts, pagination, err := h.searchService.SearchPrompts(middleware.GetUserID(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, prompts, "", pagination)
}

// Suggestions returns typeahead candidates
// GET /api/v1/search/suggestions?q=...
func (h *SearchHandler) Suggestions(c *gin.Context) {
	suggestions, err := h.searchService.Suggestions(middleware.GetUserID(c), c.Query("q"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, suggestions, "")
}

// Advanced searches with array filters in a JSON body
// POST /api/v1/search/advanced
func (h *SearchHandler) Advanced(c *gin.Context) {
	var req services.AdvancedSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	prompts, pagination, err := h.searchService.AdvancedSearch(middleware.GetUserID(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, prompts, "", pagination)
}
