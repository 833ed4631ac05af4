// Package server exposes the calculator over HTTP with gin.
//
// Routes:
//
//	POST /api/calculate  run one request
//	GET  /schema         operation schema for agent registration
//	GET  /health         liveness check
//	GET  /metrics        Prometheus metrics
package server

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"golang.org/x/time/rate"

	"github.com/njchilds90/algebra"
	"github.com/njchilds90/algebra/internal/config"
)

// Server wires the calculator to a gin engine.
type Server struct {
	cfg     config.Config
	calc    *algebra.Calculator
	logger  *slog.Logger
	metrics *Metrics
	router  *gin.Engine
}

// New builds the router. reg receives the server's metrics and is served
// on /metrics.
func New(cfg config.Config, logger *slog.Logger, reg *prometheus.Registry) *Server {
	s := &Server{
		cfg:     cfg,
		calc:    algebra.NewCalculator(cfg.Limits),
		logger:  logger,
		metrics: NewMetrics(reg),
	}

	r := gin.New()
	r.Use(gin.CustomRecovery(s.recovered))
	r.Use(requestID())
	r.Use(accessLog(logger))
	r.Use(otelgin.Middleware(cfg.Tracing.ServiceName))

	r.GET("/health", s.health)
	r.GET("/schema", s.schema)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	api := r.Group("/api")
	if rl := cfg.RateLimit; rl.RequestsPerSecond > 0 {
		api.Use(rateLimit(rate.NewLimiter(rate.Limit(rl.RequestsPerSecond), rl.Burst)))
	}
	api.Use(bodyLimit(cfg.Server.MaxBodyBytes))
	api.POST("/calculate", s.calculate)

	s.router = r
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// HTTPServer returns an http.Server with the configured timeouts.
func (s *Server) HTTPServer() *http.Server {
	sc := s.cfg.Server
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", sc.Port),
		Handler:           s.router,
		ReadHeaderTimeout: sc.ReadHeaderTimeout,
		ReadTimeout:       sc.ReadTimeout,
		WriteTimeout:      sc.WriteTimeout,
		IdleTimeout:       sc.IdleTimeout,
	}
}

func (s *Server) recovered(c *gin.Context, rec any) {
	s.logger.Error("panic in handler",
		"request_id", requestIDFrom(c),
		"path", c.Request.URL.Path,
		"panic", fmt.Sprint(rec))
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}

// NewLogger builds the process logger from the log section.
func NewLogger(cfg config.LogConfig, w io.Writer) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}
