package controllers

import (
	"net/http"
	"time"

	"github.com/franciscosanchezn/store-ratings-api/internal/models"
	"github.com/gin-gonic/gin"
)

const serviceName = "store-ratings-api"

// HealthCheck godoc
// @Summary Health check
// @Description Check if the service is running
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "OK",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   serviceName,
	})
}

// NotFound answers requests that match no route
func NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, models.NewAPIError(models.ErrNotFound, "Route not found"))
}
