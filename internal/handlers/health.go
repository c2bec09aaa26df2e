package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthHandler serves liveness checks
type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "validation-api",
	})
}
