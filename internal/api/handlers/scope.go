package handlers

import (
	"log"
	"net/http"

	"github.com/FermatTheorem/NoShitProxy/internal/models"

	"github.com/gin-gonic/gin"
)

// GetScope godoc
// @Summary Get the current scope config
// @Tags scope
// @Produce json
// @Success 200 {object} models.ScopeConfig
// @Router /api/scope [get]
func (h *Handler) GetScope(c *gin.Context) {
	c.JSON(http.StatusOK, h.scope.Config())
}

// SetScope godoc
// @Summary Replace the scope config
// @Description Takes effect for subsequently captured flows; stored rows are never reclassified
// @Tags scope
// @Accept json
// @Produce json
// @Param scope body models.ScopeConfig true "New scope config"
// @Success 200 {object} models.ScopeConfig
// @Failure 400 {object} object{error=string}
// @Router /api/scope [put]
func (h *Handler) SetScope(c *gin.Context) {
	var cfg models.ScopeConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	h.scope.SetConfig(cfg)
	applied := h.scope.Config()

	// Persistence is best effort; the in-memory swap already happened and a
	// restart falls back to whatever was last saved.
	if err := h.store.SetScope(applied); err != nil {
		log.Printf("Failed to persist scope: %v", err)
	}

	c.JSON(http.StatusOK, applied)
}
