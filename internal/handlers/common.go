package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/promptvault/promptvault/pkg/response"
)

// pathID validates a UUID path parameter. Writes a 400 and returns false on a
// malformed id.
func pathID(c *gin.Context, name string) (string, bool) {
	id := c.Param(name)
	if _, err := uuid.Parse(id); err != nil {
		response.Error(c, response.NewBadRequest("invalid "+name))
		return "", false
	}
	return id, true
}

// pathInt parses a positive integer path parameter.
func pathInt(c *gin.Context, name string) (int, bool) {
	n, err := strconv.Atoi(c.Param(name))
	if err != nil || n < 1 {
		response.Error(c, response.NewBadRequest("invalid "+name))
		return 0, false
	}
	return n, true
}
