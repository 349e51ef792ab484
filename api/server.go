package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"json2video/jobs"
	"json2video/timeline"
	"json2video/types"
)

// Planner resolves a document without rendering it
type Planner interface {
	Plan(ctx context.Context, doc *types.Document) (*timeline.Timeline, error)
}

// Server holds what the route handlers need
type Server struct {
	Submitter jobs.Submitter
	Store     jobs.StatusStore
	Planner   Planner
}

// NewRouter constructs a Gin engine with registered routes.
func NewRouter(s *Server) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	RegisterHealthRoutes(r)
	RegisterRenderRoutes(r, s)
	return r
}

// RegisterHealthRoutes registers GET /api/health
func RegisterHealthRoutes(r *gin.Engine) {
	r.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
}
