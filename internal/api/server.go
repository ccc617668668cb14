package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"geostats/internal/api/handlers"
	"geostats/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/pterm/pterm"
)

// Server serves the latest snapshots over HTTP
type Server struct {
	addr     string
	store    *Store
	recorder *metrics.Recorder
	dbPath   string
	logger   *pterm.Logger
	server   *http.Server
}

// NewServer creates a server. recorder may be nil, which disables /metrics.
func NewServer(addr string, store *Store, recorder *metrics.Recorder, dbPath string, logger *pterm.Logger) *Server {
	if addr == "" {
		addr = ":8080"
	}
	return &Server{
		addr:     addr,
		store:    store,
		recorder: recorder,
		dbPath:   dbPath,
		logger:   logger,
	}
}

// Router builds the gin engine with every route registered
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(s.logger))

	statsHandler := handlers.NewStatsHandler(s.store, s.logger)
	systemHandler := handlers.NewSystemHandler(s.store, s.logger, s.dbPath)
	profilingHandler := handlers.NewProfilingHandler(s.logger)

	api := r.Group("/api")
	api.GET("/health", systemHandler.GetHealth)
	api.GET("/system", systemHandler.GetSystemStats)

	api.GET("/stats/access", statsHandler.GetAccess)
	api.GET("/stats/errors", statsHandler.GetErrors)
	api.GET("/stats/successful", statsHandler.GetSuccessful)
	api.GET("/stats/successful/records", statsHandler.GetSuccessfulRecords)
	api.GET("/stats/:kind/top/:dimension", statsHandler.GetTop)

	api.GET("/debug/memory", profilingHandler.MemoryStats)
	api.GET("/debug/pprof/:name", profilingHandler.Profile)

	if s.recorder != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.recorder.Registry(), promhttp.HandlerOpts{})))
	}
	return r
}

// Start listens on the configured address and serves in the background
func (s *Server) Start() error {
	s.server = &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}

	s.logger.Info("HTTP server listening", s.logger.Args("addr", listener.Addr().String()))
	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.WithCaller().Error("HTTP server stopped", s.logger.Args("error", err))
		}
	}()
	return nil
}

// Stop gracefully shuts the server down
func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

func requestLogger(logger *pterm.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("HTTP request", logger.Args(
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		))
	}
}
