package api

import (
	"bufio"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/FermatTheorem/NoShitProxy/internal/bridge"
	"github.com/FermatTheorem/NoShitProxy/internal/bus"
	"github.com/FermatTheorem/NoShitProxy/internal/models"
	"github.com/FermatTheorem/NoShitProxy/internal/ratelimit"
	"github.com/FermatTheorem/NoShitProxy/internal/replay"
	"github.com/FermatTheorem/NoShitProxy/internal/scope"
	"github.com/FermatTheorem/NoShitProxy/internal/storage"
	"github.com/FermatTheorem/NoShitProxy/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := storage.NewDB(storage.Config{Path: filepath.Join(t.TempDir(), "test.sqlite3")})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, storage.RunMigrations(db))

	flowStore := store.NewFlowStore(db, 0)
	scopeEngine := scope.NewEngine(models.DefaultScope())
	eventBus := bus.New()
	captureBridge := bridge.New(flowStore, scopeEngine, eventBus)
	replays := replay.NewTokenRegistry()
	rateLimiter := ratelimit.NewRateLimiter()

	return SetupRouter(flowStore, scopeEngine, eventBus, captureBridge, replays, rateLimiter)
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func ingestOne(t *testing.T, router *gin.Engine, id, url string) {
	t.Helper()
	w := doJSON(t, router, "POST", "/api/ingest", gin.H{"id": id, "method": "GET", "url": url})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestIngestThenListAndGet(t *testing.T) {
	router := newTestRouter(t)

	ingestOne(t, router, "f1", "https://api.example.com/users")
	ingestOne(t, router, "f2", "https://other.test/page")

	w := doJSON(t, router, "GET", "/api/flows", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var flows []models.FlowSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &flows))
	assert.Len(t, flows, 2)

	w = doJSON(t, router, "GET", "/api/flows/count", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"count":2}`, w.Body.String())

	w = doJSON(t, router, "GET", "/api/flows/f1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var flow models.Flow
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &flow))
	assert.Equal(t, "https://api.example.com/users", flow.URL)

	w = doJSON(t, router, "GET", "/api/flows/ghost", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListRejectsBadInput(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, "GET", "/api/flows?sort=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, "GET", "/api/flows?order=sideways", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, "GET", "/api/flows?limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, "GET", "/api/flows?where="+strings.ReplaceAll("1=1; DROP TABLE flows", " ", "%20"), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "statement separator")
}

func TestHideOutOfScopeFilter(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, "PUT", "/api/scope", gin.H{"include": []string{"api.example.com"}})
	require.Equal(t, http.StatusOK, w.Code)

	ingestOne(t, router, "in", "https://api.example.com/users")
	ingestOne(t, router, "out", "https://other.test/page")

	w = doJSON(t, router, "GET", "/api/flows?hide_out_of_scope=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var flows []models.FlowSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &flows))
	require.Len(t, flows, 1)
	assert.Equal(t, "in", flows[0].ID)

	// Without the flag both rows stay visible.
	w = doJSON(t, router, "GET", "/api/flows", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &flows))
	assert.Len(t, flows, 2)
}

func TestHideAssetsFilter(t *testing.T) {
	router := newTestRouter(t)

	ingestOne(t, router, "page", "https://app.example.com/index.html")
	ingestOne(t, router, "script", "https://app.example.com/static/app.js")
	ingestOne(t, router, "versioned", "https://app.example.com/static/app.js?v=3")

	w := doJSON(t, router, "GET", "/api/flows?hide_assets=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var flows []models.FlowSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &flows))
	require.Len(t, flows, 1)
	assert.Equal(t, "page", flows[0].ID)
}

func TestMatchFlows(t *testing.T) {
	router := newTestRouter(t)

	ingestOne(t, router, "f1", "https://api.example.com/users")
	ingestOne(t, router, "f2", "https://other.test/page")

	w := doJSON(t, router, "POST", "/api/flows/match", gin.H{
		"where": "url LIKE '%api.example.com%'",
		"ids":   []string{"f1", "f2"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"matches":["f1"]}`, w.Body.String())
}

func TestClearFlows(t *testing.T) {
	router := newTestRouter(t)

	ingestOne(t, router, "f1", "https://api.example.com/users")

	w := doJSON(t, router, "POST", "/api/flows/clear", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, "GET", "/api/flows/count", nil)
	assert.JSONEq(t, `{"count":0}`, w.Body.String())
}

func TestScopeRoundTrip(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, "GET", "/api/scope", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"include":["*"],"exclude":[],"drop":false}`, w.Body.String())

	w = doJSON(t, router, "PUT", "/api/scope", gin.H{
		"include": []string{"api.example.com/*"},
		"exclude": []string{"*/health"},
		"drop":    true,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, "GET", "/api/scope", nil)
	assert.JSONEq(t, `{"include":["api.example.com/*"],"exclude":["*/health"],"drop":true}`, w.Body.String())
}

func TestRepeatEndpoint(t *testing.T) {
	router := newTestRouter(t)

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer upstream.Close()

	w := doJSON(t, router, "POST", "/api/repeat", gin.H{"method": "GET", "url": upstream.URL})
	require.Equal(t, http.StatusOK, w.Code)
	var resp models.RepeatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, `{"ok":true}`, resp.Preview)

	// Validation failures are the caller's problem.
	w = doJSON(t, router, "POST", "/api/repeat", gin.H{"method": "GET", "url": "ftp://nope"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Network failures belong to the replayed request, not the tool.
	dead := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	deadURL := dead.URL
	dead.Close()

	w = doJSON(t, router, "POST", "/api/repeat", gin.H{"method": "GET", "url": deadURL})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "detail")
}

func TestReplayOpenAndRelay(t *testing.T) {
	router := newTestRouter(t)

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><head></head><body>replayed</body></html>`))
	}))
	defer upstream.Close()

	w := doJSON(t, router, "POST", "/api/replay/open", gin.H{"method": "GET", "url": upstream.URL + "/page"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var opened struct {
		URL        string `json:"url"`
		BrowserURL string `json:"browser_url"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &opened))
	assert.True(t, strings.HasPrefix(opened.URL, "/replay/"))
	assert.Contains(t, opened.BrowserURL, replay.ReplayParam+"=")

	w = doJSON(t, router, "GET", opened.URL, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "replayed")
	assert.Contains(t, w.Body.String(), "<base href=")

	// Single use: the second retrieval finds nothing.
	w = doJSON(t, router, "GET", opened.URL, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReplaySpecForEngine(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, "POST", "/api/replay/open", gin.H{
		"method":  "POST",
		"url":     "https://api.example.com/things",
		"headers": [][2]string{{"Content-Type", "application/json"}},
		"body":    `{"a":1}`,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var opened struct {
		URL string `json:"url"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &opened))
	token := strings.TrimPrefix(opened.URL, "/replay/")

	w = doJSON(t, router, "GET", "/api/replay/"+token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"method":"POST"`)
	assert.Contains(t, w.Body.String(), "https://api.example.com/things")

	w = doJSON(t, router, "GET", "/api/replay/"+token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEventsStreamPrelude(t *testing.T) {
	router := newTestRouter(t)

	server := httptest.NewServer(router)
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/events")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	line, err := bufio.NewReader(resp.Body).ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "retry: 1000\n", line)
}
