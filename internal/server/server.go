// Package server exposes the agents over HTTP: a discovery card, a
// synchronous invoke endpoint, and a server-sent-events stream.
package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/garyjia/expense-compliance-agent/internal/agent"
	"github.com/garyjia/expense-compliance-agent/internal/report"
)

// Server routes requests to the registered agents.
type Server struct {
	router    *gin.Engine
	agents    map[string]agent.Agent
	card      AgentCard
	reports   *report.Writer
	reportDir string
	logger    *zap.Logger
}

// New builds the HTTP server over the given agents.
func New(card AgentCard, agents []agent.Agent, reports *report.Writer, reportDir string, logger *zap.Logger) *Server {
	s := &Server{
		agents:    make(map[string]agent.Agent, len(agents)),
		card:      card,
		reports:   reports,
		reportDir: reportDir,
		logger:    logger,
	}
	for _, a := range agents {
		s.agents[a.Name()] = a
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(loggingMiddleware(logger))
	router.Use(corsMiddleware())

	router.GET("/health", s.handleHealth)
	router.GET("/.well-known/agent.json", s.handleCard)

	api := router.Group("/api/v1")
	{
		api.POST("/agents/:agent/invoke", s.handleInvoke)
		api.POST("/agents/:agent/stream", s.handleStream)
		api.POST("/reports", s.handleReport)
	}

	s.router = router
	return s
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		logger.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		)
	}
}

// corsMiddleware adds CORS headers
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
