package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/clipforge/clipforge/internal/api"
	"github.com/clipforge/clipforge/internal/api/middleware"
	"github.com/clipforge/clipforge/internal/config"
	"github.com/clipforge/clipforge/internal/logger"
	"github.com/clipforge/clipforge/internal/service"
	"github.com/clipforge/clipforge/internal/session"
	"github.com/clipforge/clipforge/internal/view"
)

func main() {
	// Initialize logger first (LOG_* environment variables)
	appLogger := logger.New(logger.LoadFromEnv())
	logger.SetDefaultLogger(appLogger)
	defer logger.Sync()

	// Load configuration
	// Support CONFIG_PATH environment variable for production deployments
	configPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}

	// Reconfigure logging from the loaded config
	appLogger = logger.New(cfg.Log.LoggerConfig("clipforge-api"))
	logger.SetDefaultLogger(appLogger)

	// Initialize session store
	sessions, err := session.NewStore(session.Config{
		Backend:     cfg.Session.Backend,
		TTL:         cfg.Session.TTL,
		RedisURL:    cfg.Session.RedisURL,
		RedisPrefix: cfg.Session.RedisPrefix,
	})
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize session store")
	}
	defer sessions.Close()

	// Initialize services
	metadataService := service.NewMetadataService(&service.MetadataConfig{
		Timeout:     cfg.Metadata.Timeout,
		UserAgent:   cfg.Metadata.UserAgent,
		AccessToken: cfg.Metadata.AccessToken,
		GraphAPIURL: cfg.Metadata.GraphAPIURL,
		MaxPageSize: cfg.Metadata.MaxPageSize,
	})

	captionService := service.NewCaptionService(&service.CaptionConfig{
		Enabled:     cfg.Caption.Enabled,
		Model:       cfg.Caption.Model,
		APIKey:      cfg.Caption.APIKey,
		BaseURL:     cfg.Caption.BaseURL,
		Timeout:     cfg.Caption.Timeout,
		Temperature: cfg.Caption.Temperature,
		MaxTokens:   cfg.Caption.MaxTokens,
	})

	if captionService.IsEnabled() {
		appLogger.WithField("model", captionService.GetModel()).Info("Caption generation enabled")
	} else {
		appLogger.Warn("Caption generation disabled: no API key configured")
	}

	downloadService := service.NewDownloadService(metadataService, captionService, sessions)

	// Initialize view layer
	renderer, err := view.NewRenderer(view.Site{
		Name:         cfg.Site.Name,
		Tagline:      cfg.Site.Tagline,
		ContactEmail: cfg.Site.ContactEmail,
		Year:         cfg.Site.Year,
	})
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load templates")
	}

	// Setup router
	router := api.SetupRouter(downloadService, sessions, renderer, api.RouterConfig{
		Mode: cfg.Server.Mode,
		CORS: middleware.CORSConfig{
			AllowedOrigins:  cfg.Server.CORS.AllowedOrigins,
			AllowAllOrigins: cfg.Server.CORS.AllowAllOrigins,
		},
		Session: middleware.SessionConfig{
			CookieName: cfg.Session.CookieName,
			Secure:     cfg.Session.CookieSecure,
			TTL:        cfg.Session.TTL,
		},
		Logger: appLogger,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in goroutine
	go func() {
		appLogger.WithFields(logger.Fields{
			"port":            cfg.Server.Port,
			"mode":            cfg.Server.Mode,
			"session_backend": cfg.Session.Backend,
		}).Info("Starting API server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Fatal("Server forced to shutdown")
	}

	appLogger.Info("Server exited")
}
