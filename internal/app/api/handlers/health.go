package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// @Summary      Health check
// @Description  Returns service status
// @Tags         System
// @Produce      json
// @Success      200  {object}  handlers.RespHealth
// @Router       /api/health [get]
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, RespHealth{
		Status:    "OK",
		Message:   "Subscription Billing Simulator API is running",
		Timestamp: time.Now().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	})
}

func RegisterHealthRoutes(r gin.IRouter) {
	r.GET("/health", Health)
}
