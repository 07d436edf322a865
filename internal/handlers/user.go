package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/promptvault/promptvault/internal/services"
	"github.com/promptvault/promptvault/pkg/response"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{
		userService: services.NewUserService(db),
	}
}

// List returns all accounts, paginated. Admin only.
// GET /api/v1/users
func (h *UserHandler) List(c *gin.Context) {
	var req services.UserListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BindError(c, err)
		return
	}

	users, pagination, err := h.userService.List(&req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, users, "", pagination)
}

// Search looks up users by name or email for invitations
// GET /api/v1/users/search?q=...
func (h *UserHandler) Search(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	users, err := h.userService.Search(c.Query("q"), limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, users, "")
}
