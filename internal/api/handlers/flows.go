package handlers

import (
	"net/http"
	"strconv"

	"github.com/FermatTheorem/NoShitProxy/internal/models"

	"github.com/gin-gonic/gin"
)

var allowedSortKeys = map[string]bool{
	"":       true,
	"num":    true,
	"method": true,
	"url":    true,
	"status": true,
	"size":   true,
	"time":   true,
}

// ListFlows godoc
// @Summary List captured flows
// @Description Paginated, sorted flow summaries filtered by operator WHERE text
// @Tags flows
// @Produce json
// @Param limit query int false "Page size (1-2000)"
// @Param offset query int false "Rows to skip"
// @Param where query string false "Filter expression over flow columns"
// @Param sort query string false "num | method | url | status | size | time"
// @Param order query string false "asc | desc"
// @Param hide_out_of_scope query bool false "Apply the current scope as a filter"
// @Param hide_assets query bool false "Hide known static-asset extensions"
// @Success 200 {array} models.FlowSummary
// @Failure 400 {object} object{error=string}
// @Router /api/flows [get]
func (h *Handler) ListFlows(c *gin.Context) {
	query, ok := h.listQuery(c)
	if !ok {
		return
	}

	flows, err := h.store.List(query)
	if err != nil {
		respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, flows)
}

// CountFlows godoc
// @Summary Count captured flows
// @Description Total rows matching the filter, independent of pagination
// @Tags flows
// @Produce json
// @Param where query string false "Filter expression over flow columns"
// @Param hide_out_of_scope query bool false "Apply the current scope as a filter"
// @Param hide_assets query bool false "Hide known static-asset extensions"
// @Success 200 {object} object{count=integer}
// @Failure 400 {object} object{error=string}
// @Router /api/flows/count [get]
func (h *Handler) CountFlows(c *gin.Context) {
	extra := h.extraClauses(boolParam(c, "hide_out_of_scope"), boolParam(c, "hide_assets"))

	count, err := h.store.Count(c.Query("where"), extra)
	if err != nil {
		respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

// GetFlow godoc
// @Summary Get one flow
// @Description Full flow record including headers and preview bodies
// @Tags flows
// @Produce json
// @Param id path string true "Flow ID"
// @Success 200 {object} models.Flow
// @Failure 404 {object} object{error=string}
// @Router /api/flows/{id} [get]
func (h *Handler) GetFlow(c *gin.Context) {
	flow, err := h.store.Get(c.Param("id"))
	if err != nil {
		respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, flow)
}

// GetFlowResponseBody godoc
// @Summary Get the full response body of a flow
// @Description Lazily fetched, non-truncated body; 404 when not retained
// @Tags flows
// @Produce json
// @Param id path string true "Flow ID"
// @Success 200 {object} object{body_b64=string,content_type=string,bytes=integer}
// @Failure 404 {object} object{error=string}
// @Router /api/flows/{id}/response/body [get]
func (h *Handler) GetFlowResponseBody(c *gin.Context) {
	bodyB64, contentType, size, err := h.store.GetResponseBody(c.Param("id"))
	if err != nil {
		respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"body_b64":     bodyB64,
		"content_type": contentType,
		"bytes":        size,
	})
}

// MatchFlows resolves which of a batch of just-arrived flow ids are visible
// under the caller's current filter, so a live view does not re-run its
// whole paged query per event.
func (h *Handler) MatchFlows(c *gin.Context) {
	var request struct {
		Where          string   `json:"where"`
		IDs            []string `json:"ids"`
		HideOutOfScope bool     `json:"hide_out_of_scope"`
		HideAssets     bool     `json:"hide_assets"`
	}

	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	extra := h.extraClauses(request.HideOutOfScope, request.HideAssets)
	matches, err := h.store.MatchIDs(request.Where, extra, request.IDs)
	if err != nil {
		respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"matches": matches})
}

// ClearFlows godoc
// @Summary Clear the flow history
// @Tags flows
// @Produce json
// @Success 200 {object} object{ok=boolean}
// @Router /api/flows/clear [post]
func (h *Handler) ClearFlows(c *gin.Context) {
	if err := h.store.Clear(); err != nil {
		respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) listQuery(c *gin.Context) (models.FlowQuery, bool) {
	limit, ok := intParam(c, "limit", 0)
	if !ok {
		return models.FlowQuery{}, false
	}
	offset, ok := intParam(c, "offset", 0)
	if !ok {
		return models.FlowQuery{}, false
	}

	sortKey := c.Query("sort")
	if !allowedSortKeys[sortKey] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid sort key: " + sortKey})
		return models.FlowQuery{}, false
	}
	order := c.Query("order")
	if order != "" && order != "asc" && order != "desc" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order: " + order})
		return models.FlowQuery{}, false
	}

	return models.FlowQuery{
		Limit:  limit,
		Offset: offset,
		Where:  c.Query("where"),
		Extra:  h.extraClauses(boolParam(c, "hide_out_of_scope"), boolParam(c, "hide_assets")),
		Sort:   sortKey,
		Order:  order,
	}, true
}

func intParam(c *gin.Context, name string, defaultValue int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return defaultValue, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return n, true
}

func boolParam(c *gin.Context, name string) bool {
	switch c.Query(name) {
	case "1", "true", "yes":
		return true
	}
	return false
}
