// internal/api/routes.go
package api

import (
	"github.com/FermatTheorem/NoShitProxy/internal/api/handlers"
	"github.com/FermatTheorem/NoShitProxy/internal/api/middleware"
	"github.com/FermatTheorem/NoShitProxy/internal/bridge"
	"github.com/FermatTheorem/NoShitProxy/internal/bus"
	"github.com/FermatTheorem/NoShitProxy/internal/ratelimit"
	"github.com/FermatTheorem/NoShitProxy/internal/replay"
	"github.com/FermatTheorem/NoShitProxy/internal/scope"
	"github.com/FermatTheorem/NoShitProxy/internal/store"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func SetupRouter(
	flowStore *store.FlowStore,
	scopeEngine *scope.Engine,
	eventBus *bus.Bus,
	captureBridge *bridge.Bridge,
	replays *replay.TokenRegistry,
	rateLimiter *ratelimit.RateLimiter,
) *gin.Engine {
	router := gin.Default()
	h := handlers.NewHandler(flowStore, scopeEngine, eventBus, captureBridge, replays)

	//Swagger Route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := router.Group("/api")
	{
		api.GET("/events", h.Events)           // Live flow stream (SSE)
		api.POST("/ingest", h.IngestFlow)      // Engine-facing ingestion
		api.GET("/flows", h.ListFlows)         // Paged flow summaries
		api.GET("/flows/count", h.CountFlows)  // Total matching the filter
		api.POST("/flows/clear", h.ClearFlows) // Wipe the history
		api.POST("/flows/match", h.MatchFlows) // Which new ids pass the filter
		api.GET("/flows/:id", h.GetFlow)
		api.GET("/flows/:id/response/body", h.GetFlowResponseBody)
		api.GET("/scope", h.GetScope)
		api.PUT("/scope", h.SetScope)
		api.POST("/repeat", h.Repeat)
		api.POST("/replay/open", middleware.ReplayOpenRateLimit(rateLimiter), h.ReplayOpen)
		api.GET("/replay/:token", h.ReplayGetSpec) // Engine-facing, single use
	}

	// Browser-facing relay (single use)
	router.GET("/replay/:token", h.ReplayRelay)

	return router
}
