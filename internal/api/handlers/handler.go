package handlers

import (
	"log"
	"net/http"

	"github.com/FermatTheorem/NoShitProxy/internal/bridge"
	"github.com/FermatTheorem/NoShitProxy/internal/bus"
	"github.com/FermatTheorem/NoShitProxy/internal/replay"
	"github.com/FermatTheorem/NoShitProxy/internal/scope"
	"github.com/FermatTheorem/NoShitProxy/internal/store"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	store   *store.FlowStore
	scope   *scope.Engine
	bus     *bus.Bus
	bridge  *bridge.Bridge
	replays *replay.TokenRegistry
}

func NewHandler(
	flowStore *store.FlowStore,
	scopeEngine *scope.Engine,
	eventBus *bus.Bus,
	captureBridge *bridge.Bridge,
	replays *replay.TokenRegistry,
) *Handler {
	return &Handler{
		store:   flowStore,
		scope:   scopeEngine,
		bus:     eventBus,
		bridge:  captureBridge,
		replays: replays,
	}
}

// respondStoreError maps store errors onto the API taxonomy: bad filter text
// is the operator's problem (400, message verbatim), a missing flow is 404,
// anything else is a storage failure.
func respondStoreError(c *gin.Context, err error) {
	switch {
	case store.IsInvalidFilter(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case err == store.ErrNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": "Flow not found"})
	default:
		log.Printf("Store error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
	}
}

// extraClauses builds the server-side filter layers that AND onto the
// operator's own where text.
func (h *Handler) extraClauses(hideOutOfScope, hideAssets bool) string {
	clauses := ""
	if hideOutOfScope {
		clauses = h.scope.SQLClause()
	}
	if hideAssets {
		if clauses != "" {
			clauses += " AND "
		}
		clauses += scope.StaticAssetClause
	}
	return clauses
}
