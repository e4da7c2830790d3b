// api/handlers/respond.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"example.com/backstage/services/assets/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// parseID parses a positive integer path parameter, writing a 400
// response and returning false on malformed input. Runs before any store
// access.
func parseID(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid " + name,
		})
		return 0, false
	}
	return uint(id), true
}

// respondError maps service errors to HTTP status codes: validation
// errors to 400, not-found to 404, anything else to 500.
func respondError(c *gin.Context, log *logrus.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		log.WithError(err).Error("Request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
