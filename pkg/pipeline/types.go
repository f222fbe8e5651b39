// Package pipeline implements C8, the Pipeline Orchestrator: a worker pool
// that claims actionable Hearings and drives each through its next stage
// (transcribe, analyze, extract, finalize) to completion.
package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/canaryscope/canaryscope/ent"
	"github.com/canaryscope/canaryscope/pkg/models"
)

// Sentinel errors for pipeline operations.
var (
	// ErrNoHearingsAvailable indicates no actionable hearings are in the queue.
	ErrNoHearingsAvailable = errors.New("no hearings available")

	// ErrAtCapacity indicates the global concurrent hearing limit has been reached.
	ErrAtCapacity = errors.New("at capacity")

	// ErrPaused indicates the pipeline is paused via PipelineState (§6.3).
	ErrPaused = errors.New("pipeline paused")
)

// Stage identifies one of the dispatchable pipeline stages. StageFinalize is
// internal: it has no caller-supplied StageRunner, only the pool's own
// no-op closing the extracted -> complete transition (§4.8 step 3 final
// step).
type Stage string

// Stage values, in dispatch order.
const (
	StageTranscribe Stage = "transcribe"
	StageAnalyze    Stage = "analyze"
	StageExtract    Stage = "extract"
	StageFinalize   Stage = "finalize"
)

// StageRunner executes one stage against a claimed Hearing (§4.8 step 3).
// Implementations live in pkg/media+pkg/transcribe (StageTranscribe),
// pkg/analyze (StageAnalyze), pkg/docket+pkg/entitylink (StageExtract), and
// finalizeRunner, defined in this package, for StageFinalize.
type StageRunner interface {
	Run(ctx context.Context, h *ent.Hearing) models.StageResult
}

// PoolHealth contains health information for the entire worker pool,
// mirroring the teacher's session-queue health snapshot.
type PoolHealth struct {
	IsHealthy        bool           `json:"is_healthy"`
	DBReachable      bool           `json:"db_reachable"`
	DBError          string         `json:"db_error,omitempty"`
	ProcessID        string         `json:"process_id"`
	ActiveWorkers    int            `json:"active_workers"`
	TotalWorkers     int            `json:"total_workers"`
	ActiveHearings   int            `json:"active_hearings"`
	QueueDepth       int            `json:"queue_depth"`
	Paused           bool           `json:"paused"`
	WorkerStats      []WorkerHealth `json:"worker_stats"`
	LastOrphanScan   time.Time      `json:"last_orphan_scan"`
	OrphansRecovered int            `json:"orphans_recovered"`
}

// WorkerHealth contains health information for a single worker.
type WorkerHealth struct {
	ID                string    `json:"id"`
	Status            string    `json:"status"` // "idle" or "working"
	CurrentHearingID  string    `json:"current_hearing_id,omitempty"`
	HearingsProcessed int       `json:"hearings_processed"`
	LastActivity      time.Time `json:"last_activity"`
}
