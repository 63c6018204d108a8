package handlers

import (
	"net/http"

	"github.com/FermatTheorem/NoShitProxy/internal/models"

	"github.com/gin-gonic/gin"
)

// IngestFlow godoc
// @Summary Ingest one completed exchange
// @Description Called by the interception engine exactly once per exchange; the verdict tells the engine whether to relay
// @Tags bridge
// @Accept json
// @Produce json
// @Param flow body models.IngestFlow true "Completed exchange"
// @Success 200 {object} models.IngestResult
// @Failure 400 {object} object{error=string}
// @Failure 500 {object} object{error=string}
// @Router /api/ingest [post]
func (h *Handler) IngestFlow(c *gin.Context) {
	var raw models.IngestFlow
	if err := c.ShouldBindJSON(&raw); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	result, err := h.bridge.Ingest(raw)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	c.JSON(http.StatusOK, result)
}
