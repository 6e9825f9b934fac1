// Package server exposes the application facade over HTTP: document
// ingestion and registry, retrieval queries, claim extraction, raw
// telemetry collections, timeline and brief builds, health and
// Prometheus metrics. Every error is a JSON envelope {"error": ...}.
package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mateluky/f1-race-intelligence/internal/app"
	"github.com/mateluky/f1-race-intelligence/internal/logging"
)

// Server serves the HTTP API for one application instance.
type Server struct {
	app    *app.App
	engine *gin.Engine
	http   *http.Server
}

// New builds the router. The caller keeps ownership of the application
// and its lifecycle.
func New(a *app.App) *Server {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger())

	s := &Server{app: a, engine: engine}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.engine.GET("/health", s.health)
	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	s.engine.POST("/pdf_ingest", s.ingest)
	s.engine.GET("/documents", s.listDocuments)
	s.engine.DELETE("/documents/:id", s.deleteDocument)

	s.engine.POST("/rag_query", s.ragQuery)
	s.engine.POST("/extract_claims", s.extractClaims)

	s.engine.POST("/openf1_search_session", s.searchSession)
	s.engine.POST("/openf1_get_race_control", s.collection("race_control", "messages", raceControlLimit))
	s.engine.POST("/openf1_get_laps", s.collection("laps", "laps", lapLimit))
	s.engine.POST("/openf1_get_stints", s.collection("stints", "stints", 0))
	s.engine.POST("/openf1_get_pit_stops", s.collection("pit_stops", "pit_stops", 0))

	s.engine.POST("/build_timeline", s.buildTimeline)
	s.engine.POST("/build_race_brief", s.buildBrief)
}

// Handler returns the router for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until Shutdown or a listener error.
func (s *Server) Run(addr string) error {
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	logging.Info("http server listening", "addr", addr)
	if err := s.http.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

// requestLogger logs every request and feeds the request counter.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		requestsTotal.WithLabelValues(route, c.Request.Method, strconv.Itoa(status)).Inc()
		logging.Info("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds())
	}
}
