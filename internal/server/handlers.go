package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/garyjia/expense-compliance-agent/internal/agent"
	"github.com/garyjia/expense-compliance-agent/internal/models"
)

// invokeRequest is the body of both the invoke and stream endpoints.
// Query may be a JSON string (raw text) or a structured object; either
// way the agent receives it as text and classifies it itself.
type invokeRequest struct {
	Query     json.RawMessage `json:"query"`
	SessionID string          `json:"session_id"`
}

// queryText flattens the query field: string values are unwrapped,
// structured values pass through as their JSON encoding.
func (r *invokeRequest) queryText() string {
	var s string
	if err := json.Unmarshal(r.Query, &s); err == nil {
		return s
	}
	return string(r.Query)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "expense-compliance-agent",
		"time":    time.Now().Format(time.RFC3339),
	})
}

func (s *Server) handleCard(c *gin.Context) {
	c.JSON(http.StatusOK, s.card)
}

func (s *Server) lookupAgent(c *gin.Context) (agent.Agent, *invokeRequest, bool) {
	a, ok := s.agents[c.Param("agent")]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown agent"})
		return nil, nil, false
	}

	var req invokeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return nil, nil, false
	}

	return a, &req, true
}

func (s *Server) handleInvoke(c *gin.Context) {
	a, req, ok := s.lookupAgent(c)
	if !ok {
		return
	}

	result := a.Invoke(c.Request.Context(), req.queryText(), req.SessionID)
	c.JSON(http.StatusOK, result)
}

// handleReport evaluates an expense batch and returns the compliance
// summary workbook for it.
func (s *Server) handleReport(c *gin.Context) {
	a, ok := s.agents["finance"]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "finance agent not registered"})
		return
	}

	var req invokeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result := a.Invoke(c.Request.Context(), req.queryText(), req.SessionID)
	if result.Kind != models.ResultBatch {
		c.JSON(http.StatusBadRequest, result)
		return
	}

	name := fmt.Sprintf("compliance_%s.xlsx", time.Now().Format("20060102_150405.000"))
	path := filepath.Join(s.reportDir, name)
	if err := s.reports.WriteBatchReport(result.Batch, path); err != nil {
		s.logger.Error("Failed to write compliance report", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to write report"})
		return
	}

	c.FileAttachment(path, name)
}

func (s *Server) handleStream(c *gin.Context) {
	a, req, ok := s.lookupAgent(c)
	if !ok {
		return
	}

	events := a.Stream(c.Request.Context(), req.queryText(), req.SessionID)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		ev, open := <-events
		if !open {
			return false
		}
		c.SSEvent("message", ev)
		return true
	})
}
