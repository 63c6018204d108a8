package handlers

import (
	"encoding/base64"
	"errors"
	"log"
	"net/http"

	"github.com/FermatTheorem/NoShitProxy/internal/models"
	"github.com/FermatTheorem/NoShitProxy/internal/replay"

	"github.com/gin-gonic/gin"
)

// Repeat godoc
// @Summary Re-issue a captured or hand-authored request
// @Description A network failure is reported as a 200 with a detail field; the failure belongs to the replayed request, not this tool
// @Tags replay
// @Accept json
// @Produce json
// @Param request body models.RepeatRequest true "Request to replay"
// @Success 200 {object} models.RepeatResponse
// @Failure 400 {object} object{error=string}
// @Router /api/repeat [post]
func (h *Handler) Repeat(c *gin.Context) {
	var request models.RepeatRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	result, err := replay.Repeat(c.Request.Context(), request)
	if err != nil {
		var netErr *replay.NetworkError
		if errors.As(err, &netErr) {
			c.JSON(http.StatusOK, gin.H{"detail": netErr.Detail})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// ReplayOpen godoc
// @Summary Register a one-time browser-open replay
// @Description Returns a relay URL valid for one retrieval within the token TTL
// @Tags replay
// @Accept json
// @Produce json
// @Param request body models.ReplayOpenRequest true "Request to register"
// @Success 200 {object} object{url=string,browser_url=string}
// @Failure 400 {object} object{error=string}
// @Failure 429 {object} object{error=string}
// @Failure 503 {object} object{error=string}
// @Router /api/replay/open [post]
func (h *Handler) ReplayOpen(c *gin.Context) {
	var request models.ReplayOpenRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	method := request.Method
	if method == "" {
		method = "GET"
	}

	body := []byte(request.Body)
	if request.BodyB64 != nil && *request.BodyB64 != "" {
		decoded, err := base64.StdEncoding.DecodeString(*request.BodyB64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body_b64"})
			return
		}
		body = decoded
	}

	token, ok := h.replays.Put(method, request.URL, replay.FilterUpstreamHeaders(request.Headers), body)
	if !ok {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Too many pending replays"})
		return
	}

	response := gin.H{"url": "/replay/" + token}
	if method == "GET" && len(body) == 0 {
		browserURL, err := replay.BrowserURL(request.URL, token)
		if err == nil {
			response["browser_url"] = browserURL
		}
	}
	c.JSON(http.StatusOK, response)
}

// ReplayGetSpec hands a registered replay spec to the interception engine
// for an in-browser GET replay. The token is consumed.
func (h *Handler) ReplayGetSpec(c *gin.Context) {
	spec, ok := h.replays.Take(c.Param("token"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown or expired replay token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"method":   spec.Method,
		"url":      spec.URL,
		"headers":  spec.Headers,
		"body_b64": base64.StdEncoding.EncodeToString(spec.Body),
	})
}

// ReplayRelay issues the registered request server-side and relays the
// upstream response to the browser. The token is consumed.
func (h *Handler) ReplayRelay(c *gin.Context) {
	spec, ok := h.replays.Take(c.Param("token"))
	if !ok {
		c.String(http.StatusNotFound, "Unknown or expired replay token")
		return
	}

	result, err := replay.Relay(c.Request.Context(), spec)
	if err != nil {
		log.Printf("Replay relay for %s failed: %v", spec.URL, err)
		c.String(http.StatusBadGateway, "Replay failed: %v", err)
		return
	}

	for _, pair := range result.Headers {
		c.Writer.Header().Add(pair[0], pair[1])
	}
	contentType := result.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Data(result.Status, contentType, result.Body)
}
