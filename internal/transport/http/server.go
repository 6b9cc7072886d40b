package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/iyannm/word-fuse/internal/app"
	"github.com/iyannm/word-fuse/internal/config"
	"github.com/iyannm/word-fuse/internal/transport/ws"
)

// Server wraps the HTTP server hosting the read-only API and the WebSocket
// endpoint.
type Server struct {
	server *http.Server
	hub    *app.Hub
	logger zerolog.Logger
}

// NewServer builds the gin router and the HTTP server around it
func NewServer(cfg *config.Config, hub *app.Hub, logger zerolog.Logger) *Server {
	if !cfg.Log.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		hub:    hub,
		logger: logger,
	}

	router := gin.New()
	router.Use(requestLogger(logger))
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	api := router.Group("/api")
	{
		api.GET("/health", s.handleHealth)
		api.GET("/stats", s.handleStats)
		api.GET("/rooms/:code/exists", s.handleRoomExists)
	}

	wsHandler := ws.NewHandler(hub, logger)
	router.GET("/ws", wsHandler.Handle())

	s.server = &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("server starting")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("server shutting down")
	return s.server.Shutdown(ctx)
}

// requestLogger logs each request with method, path, status and duration.
// WebSocket upgrades are logged by the ws handler instead.
func requestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/ws" {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	}
}
