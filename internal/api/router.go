package api

import (
	"net/http"

	"github.com/clipforge/clipforge/internal/api/handler"
	"github.com/clipforge/clipforge/internal/api/middleware"
	"github.com/clipforge/clipforge/internal/domain"
	"github.com/clipforge/clipforge/internal/logger"
	"github.com/clipforge/clipforge/internal/session"
	"github.com/clipforge/clipforge/internal/view"
	"github.com/gin-gonic/gin"
)

// RouterConfig holds everything the router needs besides the services.
type RouterConfig struct {
	Mode    string
	CORS    middleware.CORSConfig
	Session middleware.SessionConfig
	Logger  *logger.Logger
}

// SetupRouter configures the Gin router with all routes
func SetupRouter(
	workflow handler.Workflow,
	sessions session.Store,
	renderer *view.Renderer,
	cfg RouterConfig,
) *gin.Engine {
	// Set Gin mode
	switch cfg.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	// Add middleware
	r.Use(gin.Recovery())
	r.Use(middleware.LoggerMiddleware(cfg.Logger))
	r.Use(middleware.CORS(cfg.CORS))

	// Create handlers
	healthHandler := handler.NewHealthHandler()
	pageHandler := handler.NewPageHandler(workflow, renderer)
	downloadHandler := handler.NewDownloadHandler(workflow)

	// Health check and assets need no session
	r.GET("/health", healthHandler.Health)
	r.StaticFS("/static", http.FS(view.StaticFS()))

	// HTML pages
	site := r.Group("/")
	site.Use(middleware.Session(sessions, cfg.Session))
	{
		for _, page := range domain.AllPages {
			site.GET(view.PagePath(page), pageHandler.Show(page))
		}
		site.POST("/download", pageHandler.Download)
		site.POST("/regenerate", pageHandler.Regenerate)
		site.POST("/dismiss", pageHandler.Dismiss)
		site.POST("/tab", pageHandler.SelectTab)
	}

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		// Platforms are static; no session needed
		v1.GET("/platforms", downloadHandler.ListPlatforms)

		stateful := v1.Group("")
		stateful.Use(middleware.Session(sessions, cfg.Session))
		stateful.GET("/session", downloadHandler.GetSession)
		stateful.POST("/download", downloadHandler.Submit)
		stateful.POST("/regenerate", downloadHandler.Regenerate)
		stateful.DELETE("/result", downloadHandler.Dismiss)
		stateful.PUT("/tab", downloadHandler.SelectTab)
		stateful.PUT("/page", downloadHandler.Navigate)
	}

	return r
}
