package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"

	"atendimento-relay/config"
	"atendimento-relay/internal/handler"
	"atendimento-relay/internal/middleware"
	"atendimento-relay/pkg/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	config     *config.Config
	logger     *logger.Logger
}

var (
	ReleaseMode = "release"
	DebugMode   = "debug"
	TestMode    = "test"
)

type Handlers struct {
	Atendimento *handler.AtendimentoHandler
	WebSocket   *WebSocketHandler
}

func New(cfg *config.Config, l *logger.Logger) *Server {
	if cfg.AppMode == ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	} else if cfg.AppMode == TestMode {
		gin.SetMode(gin.TestMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%s", cfg.AppPort),
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
		},
		engine: engine,
		config: cfg,
		logger: l,
	}
}

// Handler exposes the engine, mostly for httptest.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) SetupRoutes(handlers *Handlers) {
	s.engine.Use(middleware.RequestIDMiddleware())
	s.engine.Use(cors.New(CORSConfig(s.config.CORSOrigins)))
	s.engine.Use(middleware.LoggingMiddleware(s.logger))
	s.engine.Use(middleware.ErrorHandler(s.logger))

	s.engine.GET("/", handlers.Atendimento.Health)
	s.engine.GET("/health", handlers.Atendimento.Health)
	s.engine.GET("/stats", handlers.Atendimento.Estatisticas)
	s.engine.GET("/agents", handlers.Atendimento.ListAgents)

	atendimentos := s.engine.Group("/atendimentos")
	{
		atendimentos.GET("", handlers.Atendimento.List)
		atendimentos.GET("/stats", handlers.Atendimento.Stats)
		atendimentos.GET("/:id", handlers.Atendimento.Get)
	}

	s.engine.GET("/ws", handlers.WebSocket.Handle)
}

// CORSConfig allows every origin when the list is empty or contains "*".
func CORSConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "X-Username", "X-Request-Id"},
		ExposeHeaders: []string{"X-Request-Id"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

// OriginAllowed applies the same origin policy to websocket upgrades.
func OriginAllowed(origins []string) func(string) bool {
	if len(origins) == 0 || slices.Contains(origins, "*") {
		return nil
	}
	return func(origin string) bool {
		return slices.Contains(origins, origin)
	}
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Infof("Starting the server on port %s...", s.config.AppPort)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			s.logger.Errorf("Error in starting the server: %s", err)
			return err
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Infof("Shutdown signal received, draining connections")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Errorf("Error in the graceful shutdown of the server: %s", err)
		return err
	}

	s.logger.Infof("Server stopped gracefully")
	return nil
}
