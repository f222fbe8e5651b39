package api

import (
	"context"
	"net/http"

	"github.com/canaryscope/canaryscope/pkg/pipeline"
	"github.com/gin-gonic/gin"
)

// pipelineStart handles POST /api/v1/pipeline/start (§6.3 pipeline.start).
func (s *Server) pipelineStart(c *gin.Context) {
	if err := s.pool.Start(context.Background()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "started"})
}

// pipelineStop handles POST /api/v1/pipeline/stop (§6.3 pipeline.stop).
// It requests a cooperative stop and returns immediately; it does not wait
// for in-flight hearings to finish.
func (s *Server) pipelineStop(c *gin.Context) {
	go s.pool.Stop()
	c.JSON(http.StatusOK, gin.H{"status": "stopping"})
}

// pipelinePause handles POST /api/v1/pipeline/pause (§6.3 pipeline.pause).
func (s *Server) pipelinePause(c *gin.Context) {
	by := c.Query("by")
	if by == "" {
		by = "api"
	}
	if err := s.state.Pause(c.Request.Context(), by); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "paused"})
}

// pipelineResume handles POST /api/v1/pipeline/resume (§6.3 pipeline.resume).
func (s *Server) pipelineResume(c *gin.Context) {
	if err := s.state.Resume(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "resumed"})
}

// pipelineStatusResponse is GET /api/v1/pipeline/status's body
// (§6.3 pipeline.status: "{state, current_hearing_id?, totals, cost}").
type pipelineStatusResponse struct {
	State            string  `json:"state"`
	CurrentHearingID string  `json:"current_hearing_id,omitempty"`
	TotalWorkers     int     `json:"total_workers"`
	ActiveWorkers    int     `json:"active_workers"`
	QueueDepth       int     `json:"queue_depth"`
	CostUSD          float64 `json:"cost_usd"`
}

// pipelineStatus handles GET /api/v1/pipeline/status.
func (s *Server) pipelineStatus(c *gin.Context) {
	health := s.pool.Health(c.Request.Context())

	state := "idle"
	switch {
	case health.Paused:
		state = "paused"
	case health.ActiveWorkers > 0:
		state = "running"
	}

	currentHearingID := ""
	for _, w := range health.WorkerStats {
		if w.CurrentHearingID != "" {
			currentHearingID = w.CurrentHearingID
			break
		}
	}

	c.JSON(http.StatusOK, pipelineStatusResponse{
		State:            state,
		CurrentHearingID: currentHearingID,
		TotalWorkers:     health.TotalWorkers,
		ActiveWorkers:    health.ActiveWorkers,
		QueueDepth:       health.QueueDepth,
		CostUSD:          s.pool.AccumulatedCostUSD(),
	})
}

// runStageRequest is POST /api/v1/pipeline/run_stage's body.
type runStageRequest struct {
	HearingID string `json:"hearing_id" binding:"required"`
	Stage     string `json:"stage" binding:"required"`
}

// pipelineRunStage handles POST /api/v1/pipeline/run_stage
// (§6.3 pipeline.run_stage(hearing_id, stage_name): "one-shot, synchronous").
func (s *Server) pipelineRunStage(c *gin.Context) {
	var req runStageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	stage := pipeline.Stage(req.Stage)
	switch stage {
	case pipeline.StageTranscribe, pipeline.StageAnalyze, pipeline.StageExtract:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown stage: " + req.Stage})
		return
	}

	result, err := s.pool.RunStage(c.Request.Context(), req.HearingID, stage)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       result.Success,
		"cost_usd":      result.CostUSD,
		"error_message": result.ErrorMessage,
	})
}
