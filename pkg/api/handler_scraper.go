package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/canaryscope/canaryscope/pkg/scraper"
	"github.com/gin-gonic/gin"
)

// runAsyncRequest is POST /api/v1/scraper/run_async's body
// (§6.3 scraper.run_async(types?, state?, dry_run?)).
type runAsyncRequest struct {
	Kinds  []string `json:"kinds"`
	State  string   `json:"state"`
	DryRun bool     `json:"dry_run"`
}

// scraperRunAsync handles POST /api/v1/scraper/run_async. The scrape runs
// in a background goroutine; callers poll scraper.progress() for status.
func (s *Server) scraperRunAsync(c *gin.Context) {
	var req runAsyncRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength != 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	filters := scraper.RunFilters{Kinds: req.Kinds, State: req.State, DryRun: req.DryRun}

	go func() {
		if _, err := s.scraper.Run(context.Background(), filters); err != nil {
			slog.Error("scraper run failed", "error", err)
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{"status": "started"})
}

// scraperStop handles POST /api/v1/scraper/stop (§6.3 scraper.stop).
func (s *Server) scraperStop(c *gin.Context) {
	s.scraper.RequestStop()
	c.JSON(http.StatusOK, gin.H{"status": "stopping"})
}

// scraperProgress handles GET /api/v1/scraper/progress (§6.3 scraper.progress).
func (s *Server) scraperProgress(c *gin.Context) {
	c.JSON(http.StatusOK, s.scraper.Progress())
}
