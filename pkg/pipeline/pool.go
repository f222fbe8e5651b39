package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/canaryscope/canaryscope/ent"
	"github.com/canaryscope/canaryscope/ent/hearing"
	"github.com/canaryscope/canaryscope/pkg/config"
	"github.com/canaryscope/canaryscope/pkg/models"
	"github.com/canaryscope/canaryscope/pkg/store"
)

// WorkerPool manages a pool of pipeline workers, each independently polling
// for and dispatching the next stage of an actionable Hearing (§4.8, §5:
// "single writer per hearing", parallelism from multiple pinned workers).
type WorkerPool struct {
	processID string
	client    *ent.Client
	config    *config.PipelineConfig
	hearings  *store.HearingStore
	jobs      *store.JobStore
	state     *store.PipelineStateStore
	runners   map[Stage]StageRunner

	workers  []*Worker
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	started  bool

	activeHearings map[string]context.CancelFunc
	mu             sync.RWMutex

	cost costTracker

	orphans orphanState
}

// costTracker accumulates spend across the pool's lifetime since Start, used
// to short-circuit dispatch once config.MaxCostPerRunUSD is exceeded
// (§4.8 step 6).
type costTracker struct {
	mu   sync.Mutex
	total float64
}

func (c *costTracker) add(usd float64) {
	c.mu.Lock()
	c.total += usd
	c.mu.Unlock()
}

func (c *costTracker) get() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total
}

// NewWorkerPool creates a new pipeline worker pool.
func NewWorkerPool(processID string, client *ent.Client, cfg *config.PipelineConfig, hearings *store.HearingStore, jobs *store.JobStore, state *store.PipelineStateStore, runners map[Stage]StageRunner) *WorkerPool {
	wired := make(map[Stage]StageRunner, len(runners)+1)
	for stage, runner := range runners {
		wired[stage] = runner
	}
	wired[StageFinalize] = finalizeRunner{}

	return &WorkerPool{
		processID:      processID,
		client:         client,
		config:         cfg,
		hearings:       hearings,
		jobs:           jobs,
		state:          state,
		runners:        wired,
		workers:        make([]*Worker, 0, cfg.WorkerCount),
		stopCh:         make(chan struct{}),
		activeHearings: make(map[string]context.CancelFunc),
	}
}

// Start spawns worker goroutines and the orphan detection background task.
// Safe to call multiple times; subsequent calls are no-ops.
func (p *WorkerPool) Start(ctx context.Context) error {
	if p.started {
		slog.Warn("pipeline worker pool already started, ignoring duplicate start", "process_id", p.processID)
		return nil
	}
	p.started = true

	slog.Info("starting pipeline worker pool", "process_id", p.processID, "worker_count", p.config.WorkerCount)

	for i := 0; i < p.config.WorkerCount; i++ {
		workerID := fmt.Sprintf("%s-worker-%d", p.processID, i)
		worker := newWorker(workerID, p.processID, p.client, p.config, p.hearings, p.jobs, p.state, p.runners, p, &p.cost)
		p.workers = append(p.workers, worker)
		worker.Start(ctx)
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.runOrphanDetection(ctx)
	}()

	slog.Info("pipeline worker pool started")
	return nil
}

// Stop signals all workers to stop and waits for them to finish their
// current hearing (graceful shutdown, §4.8).
func (p *WorkerPool) Stop() {
	slog.Info("stopping pipeline worker pool gracefully")

	active := p.getActiveHearingIDs()
	if len(active) > 0 {
		slog.Info("waiting for active hearings to complete", "count", len(active), "hearing_ids", active)
	}

	for _, worker := range p.workers {
		worker.Stop()
	}

	p.stopOnce.Do(func() { close(p.stopCh) })
	p.wg.Wait()

	slog.Info("pipeline worker pool stopped gracefully")
}

// RegisterHearing stores a cancel function for manual cancellation.
func (p *WorkerPool) RegisterHearing(hearingID string, cancel context.CancelFunc) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.activeHearings[hearingID] = cancel
}

// UnregisterHearing removes the cancel function when processing ends.
func (p *WorkerPool) UnregisterHearing(hearingID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.activeHearings, hearingID)
}

// RunOnce synchronously drains actionable hearings, dispatching one stage at
// a time until no hearing is actionable, cost/pause limits apply, or
// maxHearings is reached (0 means unbounded). It runs its own worker rather
// than coordinating with Start's goroutines, so it must not be called
// concurrently with a running pool. Used by the scheduler's "pipeline"
// target, which fires synchronously in-process instead of toggling the
// always-on pool (§4.9).
func (p *WorkerPool) RunOnce(ctx context.Context, maxHearings int) (int, error) {
	worker := newWorker(p.processID+"-scheduled", p.processID, p.client, p.config, p.hearings, p.jobs, p.state, p.runners, p, &p.cost)

	processed := 0
	for maxHearings <= 0 || processed < maxHearings {
		if err := ctx.Err(); err != nil {
			return processed, err
		}

		err := worker.pollAndProcess(ctx)
		if err != nil {
			switch {
			case errors.Is(err, ErrNoHearingsAvailable), errors.Is(err, ErrAtCapacity), errors.Is(err, ErrPaused):
				return processed, nil
			default:
				return processed, err
			}
		}
		processed++
	}
	return processed, nil
}

// RunStage dispatches a single named stage against one hearing synchronously,
// independent of its current status or the worker pool's claim logic
// (§6.3 pipeline.run_stage, an operator/debug seam, not part of the normal
// claim-and-advance flow).
func (p *WorkerPool) RunStage(ctx context.Context, hearingID string, stage Stage) (models.StageResult, error) {
	runner, ok := p.runners[stage]
	if !ok {
		return models.StageResult{}, fmt.Errorf("no stage runner registered for %s", stage)
	}

	h, err := p.hearings.Get(ctx, hearingID)
	if err != nil {
		return models.StageResult{}, fmt.Errorf("loading hearing: %w", err)
	}

	result := runner.Run(ctx, h)
	if !result.Success {
		if err := p.hearings.MarkError(ctx, h.ID, models.TruncateError(result.ErrorMessage)); err != nil {
			slog.Error("failed to mark hearing error after run_stage", "hearing_id", h.ID, "error", err)
		}
		return result, nil
	}

	p.cost.add(result.CostUSD)
	if target, ok := targetForStage(stage); ok {
		if err := p.hearings.TransitionStatus(ctx, h.ID, target, store.TransitionFunc(result.WriteArtifact)); err != nil {
			return result, fmt.Errorf("transitioning hearing to target status: %w", err)
		}
	}
	return result, nil
}

// AccumulatedCostUSD returns spend recorded since this pool's Start call.
func (p *WorkerPool) AccumulatedCostUSD() float64 {
	return p.cost.get()
}

// Health returns the current health status of the pool (§6.3 pipeline.status).
func (p *WorkerPool) Health(ctx context.Context) *PoolHealth {
	queueDepth, errQ := p.client.Hearing.Query().
		Where(hearing.StatusIn(store.ActionableStatuses...), hearing.DeletedAtIsNil()).
		Count(ctx)
	if errQ != nil {
		slog.Error("failed to query pipeline queue depth", "process_id", p.processID, "error", errQ)
	}

	active, errA := p.client.Hearing.Query().
		Where(hearing.StatusIn(
			hearing.StatusDownloading, hearing.StatusTranscribing,
			hearing.StatusAnalyzing, hearing.StatusExtracting,
		)).
		Count(ctx)
	if errA != nil {
		slog.Error("failed to query active hearings", "process_id", p.processID, "error", errA)
	}

	workerStats := make([]WorkerHealth, len(p.workers))
	activeWorkers := 0
	for i, w := range p.workers {
		stats := w.Health()
		workerStats[i] = stats
		if stats.Status == string(WorkerStatusWorking) {
			activeWorkers++
		}
	}

	dbHealthy := errQ == nil && errA == nil
	isHealthy := len(p.workers) > 0 && dbHealthy

	var dbError string
	if !dbHealthy {
		if errQ != nil {
			dbError = fmt.Sprintf("queue depth query failed: %v", errQ)
		} else if errA != nil {
			dbError = fmt.Sprintf("active hearings query failed: %v", errA)
		}
	}

	paused := false
	if st, err := p.state.Get(ctx); err == nil {
		paused = st.Paused
	}

	p.orphans.mu.Lock()
	lastScan := p.orphans.lastOrphanScan
	recovered := p.orphans.orphansRecovered
	p.orphans.mu.Unlock()

	return &PoolHealth{
		IsHealthy:        isHealthy,
		DBReachable:      dbHealthy,
		DBError:          dbError,
		ProcessID:        p.processID,
		ActiveWorkers:    activeWorkers,
		TotalWorkers:     len(p.workers),
		ActiveHearings:   active,
		QueueDepth:       queueDepth,
		Paused:           paused,
		WorkerStats:      workerStats,
		LastOrphanScan:   lastScan,
		OrphansRecovered: recovered,
	}
}

func (p *WorkerPool) getActiveHearingIDs() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	ids := make([]string, 0, len(p.activeHearings))
	for id := range p.activeHearings {
		ids = append(ids, id)
	}
	return ids
}
