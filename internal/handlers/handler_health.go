package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthResponse is the liveness probe body.
type HealthResponse struct {
	Status string `json:"status"`
}

// getHealth godoc
// @Summary Show the status of server.
// @Description Liveness probe, no authentication required.
// @Tags root
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func getHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}
