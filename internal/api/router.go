package api

import (
	"github.com/gin-gonic/gin"
	"github.com/wikimedia/mediawiki-extensions-ReadingLists-sub001/internal/api/handler"
	"github.com/wikimedia/mediawiki-extensions-ReadingLists-sub001/internal/api/middleware"
	"github.com/wikimedia/mediawiki-extensions-ReadingLists-sub001/internal/config"
	"github.com/wikimedia/mediawiki-extensions-ReadingLists-sub001/internal/logger"
	"github.com/wikimedia/mediawiki-extensions-ReadingLists-sub001/internal/project"
	"github.com/wikimedia/mediawiki-extensions-ReadingLists-sub001/internal/service"
)

// SetupRouter configures the Gin router with all routes
func SetupRouter(
	aggregator *service.Aggregator,
	lists *service.ListService,
	site project.SiteContext,
	cfg *config.ServerConfig,
	log *logger.Logger,
) *gin.Engine {
	switch cfg.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.LoggerMiddleware(log))
	r.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins:  cfg.CORS.AllowedOrigins,
		AllowAllOrigins: cfg.CORS.AllowAllOrigins,
	}))

	healthHandler := handler.NewHealthHandler(site)
	cardHandler := handler.NewCardHandler(aggregator)
	shareHandler := handler.NewShareHandler(lists)
	listHandler := handler.NewListHandler(lists)

	r.GET("/health", healthHandler.Health)

	v1 := r.Group("/api/v1")
	{
		v1.POST("/cards", cardHandler.Aggregate)

		v1.POST("/share", shareHandler.Encode)
		v1.GET("/share", shareHandler.Render)

		v1.POST("/lists", listHandler.CreateList)
		v1.POST("/lists/import", listHandler.Import)
		v1.GET("/lists/:id", listHandler.GetList)
		v1.POST("/lists/:id/entries", listHandler.AddEntry)
		v1.DELETE("/lists/:id/entries/:entryId", listHandler.DeleteEntry)
		v1.GET("/lists/:id/cards", listHandler.Cards)
		v1.GET("/lists/:id/export", listHandler.Export)
	}

	return r
}
