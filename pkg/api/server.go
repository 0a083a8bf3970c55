// Package api serves the solver and catalog lookups over HTTP
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jakechorley/class-scheduler/internal/config"
	"github.com/jakechorley/class-scheduler/pkg/core/model"
	"github.com/jakechorley/class-scheduler/pkg/db"
	"github.com/jakechorley/class-scheduler/pkg/metrics"
)

const (
	requestIDHeader = "X-Request-ID"
	defaultTimeout  = 60 * time.Second
	shutdownTimeout = 10 * time.Second
)

// Options configures a Server
type Options struct {
	// Term is served when a request does not name one
	Term string
	// Catalog is the preloaded catalog for Term
	Catalog model.Catalog
	// Location is the campus time zone used for calendar export
	Location *time.Location
	// Search bounds solves that do not set their own limits
	Search config.SearchConfig
	// Timeout caps each solve. Defaults to one minute.
	Timeout time.Duration
	Metrics *metrics.Metrics
}

// Server holds the HTTP handlers and the catalogs they read
type Server struct {
	store   db.Database
	logger  *zap.Logger
	options Options

	mu       sync.RWMutex
	catalogs map[string]model.Catalog
}

// NewServer creates a server over the store
func NewServer(store db.Database, logger *zap.Logger, options Options) *Server {
	if options.Location == nil {
		options.Location = time.UTC
	}
	if options.Timeout <= 0 {
		options.Timeout = defaultTimeout
	}

	catalogs := make(map[string]model.Catalog)
	if options.Catalog != nil {
		catalogs[options.Term] = options.Catalog
	}

	return &Server{
		store:    store,
		logger:   logger,
		options:  options,
		catalogs: catalogs,
	}
}

// Router builds the gin engine with every route registered
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestID())
	r.Use(requestLogger(s.logger))
	r.Use(s.options.Metrics.Middleware())

	r.GET("/health", s.health)
	r.GET("/metrics", gin.WrapH(s.options.Metrics.Handler()))

	v1 := r.Group("/api/v1")
	v1.GET("/terms", s.listTerms)
	v1.GET("/sections/:key", s.getSection)
	v1.GET("/subjects", s.topSubjects)
	v1.GET("/rooms/free", s.freeRooms)
	v1.POST("/solve", s.solve)
	v1.GET("/runs", s.listRuns)
	v1.GET("/runs/:id", s.getRun)
	v1.GET("/runs/:id/schedules/:rank/ics", s.exportSchedule)

	return r
}

// ListenAndServe serves until the context is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", zap.String("addr", addr))
		errChan <- srv.ListenAndServe()
	}()

	select {
	case err := <-errChan:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to serve: %w", err)
	case <-ctx.Done():
		s.logger.Info("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down: %w", err)
		}
		return nil
	}
}

// catalog returns the catalog for the term, loading and caching it from the store on first use
func (s *Server) catalog(ctx context.Context, term string) (string, model.Catalog, error) {
	if term == "" {
		term = s.options.Term
	}

	s.mu.RLock()
	sections, ok := s.catalogs[term]
	s.mu.RUnlock()
	if ok {
		return term, sections, nil
	}

	sections, err := s.store.LoadCatalog(ctx, term)
	if err != nil {
		return term, nil, err
	}

	s.mu.Lock()
	s.catalogs[term] = sections
	s.mu.Unlock()

	s.logger.Debug("Catalog cached", zap.String("term", term), zap.Int("sections", len(sections)))
	return term, sections, nil
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDHeader, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", c.GetString(requestIDHeader)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("error", c.Errors.String()))
			logger.Error("HTTP request failed", fields...)
			return
		}
		logger.Info("HTTP request", fields...)
	}
}
