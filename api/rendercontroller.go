package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"json2video/jobs"
	"json2video/types"
)

// RegisterRenderRoutes registers the job submission and status endpoints.
func RegisterRenderRoutes(r *gin.Engine, s *Server) {
	g := r.Group("/api")
	g.POST("/render", s.handleRender)
	g.POST("/plan", s.handlePlan)
	g.GET("/jobs/:id", s.handleGetJob)
}

// RenderResponse acknowledges an accepted job
type RenderResponse struct {
	JobID     string `json:"job_id"`
	State     string `json:"state"`
	StatusURL string `json:"status_url"`
}

// handleRender accepts a RenderRequest and queues it. A job id is generated when absent.
func (s *Server) handleRender(c *gin.Context) {
	var req jobs.RenderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.JobID == "" {
		req.JobID = uuid.NewString()
	}
	if err := req.Check(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Document != nil {
		if err := req.Document.Validate(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	if err := s.Submitter.Submit(c.Request.Context(), req); err != nil {
		log.Printf("❌ API Error: failed to queue job %s: %v", req.JobID, err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	log.Printf("📥 Received render request: job=%s", req.JobID)

	c.JSON(http.StatusAccepted, RenderResponse{
		JobID:     req.JobID,
		State:     string(jobs.StateQueued),
		StatusURL: "/api/jobs/" + req.JobID,
	})
}

// handlePlan resolves the posted document and returns the timeline without encoding
func (s *Server) handlePlan(c *gin.Context) {
	if s.Planner == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "planning is not enabled"})
		return
	}
	var doc types.Document
	if err := c.ShouldBindJSON(&doc); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tl, err := s.Planner.Plan(c.Request.Context(), &doc)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, tl)
}

func (s *Server) handleGetJob(c *gin.Context) {
	status, ok, err := s.Store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}
	c.JSON(http.StatusOK, status)
}

// statusFor maps pipeline errors to HTTP codes: bad documents are the caller's fault
func statusFor(err error) int {
	var (
		input       *types.InputError
		resolution  *types.ResolutionError
		unsupported *types.UnsupportedFormatError
	)
	switch {
	case errors.As(err, &input), errors.As(err, &resolution), errors.As(err, &unsupported):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadGateway
	}
}
