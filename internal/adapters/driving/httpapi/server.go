package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/artid/internal/core/ports/driving"
	"github.com/custodia-labs/artid/internal/logger"
)

// Default server configuration values.
const (
	DefaultAddr           = ":8080"
	DefaultMaxImageBytes  = 10 << 20
	defaultReadTimeout    = 30 * time.Second
	defaultWriteTimeout   = 120 * time.Second
	defaultShutdownPeriod = 10 * time.Second
)

// ErrMissingRecognitionService is returned when the recognition service is not provided.
var ErrMissingRecognitionService = errors.New("httpapi: recognition service is required")

// Config holds configuration for the HTTP server.
type Config struct {
	// Addr is the listen address (default: ":8080").
	Addr string

	// MaxImageBytes caps the uploaded photo size (default: 10 MiB).
	MaxImageBytes int64

	// AllowOrigins lists CORS origins. Empty allows all origins.
	AllowOrigins []string
}

// Services are the driving ports the HTTP surface calls.
type Services struct {
	Recognition driving.RecognitionService
	Catalog     driving.CatalogService
	Collection  driving.CollectionService
}

// Server serves the recognition API.
type Server struct {
	cfg      Config
	services Services
	engine   *gin.Engine
}

// NewServer builds the gin engine and registers all routes.
func NewServer(cfg Config, services Services) (*Server, error) {
	if services.Recognition == nil {
		return nil, ErrMissingRecognitionService
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.MaxImageBytes <= 0 {
		cfg.MaxImageBytes = DefaultMaxImageBytes
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger())
	engine.MaxMultipartMemory = cfg.MaxImageBytes

	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", headerUserID},
		ExposeHeaders: []string{"Content-Length", headerRequestID},
	}
	if len(cfg.AllowOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowOrigins
	}
	engine.Use(cors.New(corsCfg))

	s := &Server{cfg: cfg, services: services, engine: engine}
	s.attachRoutes()
	return s, nil
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run listens on the configured address until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       defaultReadTimeout,
		WriteTimeout:      defaultWriteTimeout,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownPeriod)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("http shutdown: %v", err)
		}
	}()

	logger.Info("listening on %s", s.cfg.Addr)
	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) attachRoutes() {
	s.engine.GET("/healthz", s.health)

	v1 := s.engine.Group("/v1")
	{
		v1.POST("/recognize", s.recognize)
		v1.GET("/catalog", s.listCatalog)
		v1.GET("/collections/:userId", s.listCollection)
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
