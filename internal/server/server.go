// Package server exposes the cover pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/go-hclog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jmylchreest/covergen/internal/cover"
	"github.com/jmylchreest/covergen/internal/metrics"
	"github.com/jmylchreest/covergen/internal/version"
)

// Covers is the part of the cover pipeline the handlers call.
type Covers interface {
	CreateMonthly(ctx context.Context, month string, year int) (cover.Result, error)
	CreateWeekly(ctx context.Context, date1, date2 string, year int) (cover.Result, error)
}

// Options configures a Server.
type Options struct {
	Addr     string
	APIKey   string
	Covers   Covers
	Gatherer prometheus.Gatherer
	Metrics  *metrics.Metrics
	Logger   hclog.Logger
	Debug    bool
}

// Server owns the gin engine and the underlying http.Server.
type Server struct {
	engine    *gin.Engine
	server    *http.Server
	covers    Covers
	apiKey    string
	metrics   *metrics.Metrics
	logger    hclog.Logger
	startTime time.Time
}

// New builds the engine and registers every route.
func New(opts Options) *Server {
	if !opts.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	logger := opts.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	s := &Server{
		engine:    gin.New(),
		covers:    opts.Covers,
		apiKey:    opts.APIKey,
		metrics:   opts.Metrics,
		logger:    logger,
		startTime: time.Now(),
	}

	s.engine.Use(gin.Recovery())
	s.engine.Use(requestID())
	s.engine.Use(requestLogger(logger, opts.Metrics))

	s.engine.GET("/healthz", s.handleHealth)
	s.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	playlist := s.engine.Group("/playlist")
	{
		playlist.POST("/monthly", s.handleMonthly)
		playlist.POST("/weekly", s.handleWeekly)
	}

	s.server = &http.Server{
		Addr:              opts.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the root handler, used directly by tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Serve accepts connections on l until Shutdown is called.
func (s *Server) Serve(l net.Listener) error {
	s.logger.Info("listening", "addr", l.Addr().String())
	if err := s.server.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// ListenAndServe listens on the configured address.
func (s *Server) ListenAndServe() error {
	l, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return err
	}
	return s.Serve(l)
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": version.Short(),
		"uptime":  time.Since(s.startTime).Round(time.Second).String(),
	})
}
