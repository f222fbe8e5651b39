package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"entgo.io/ent/dialect/sql"
	"github.com/canaryscope/canaryscope/ent"
	"github.com/canaryscope/canaryscope/ent/hearing"
	"github.com/canaryscope/canaryscope/pkg/config"
	"github.com/canaryscope/canaryscope/pkg/models"
	"github.com/canaryscope/canaryscope/pkg/store"
)

// WorkerStatus represents the current state of a worker.
type WorkerStatus string

// Worker status constants.
const (
	WorkerStatusIdle    WorkerStatus = "idle"
	WorkerStatusWorking WorkerStatus = "working"
)

// hearingRegistry is the subset of WorkerPool used by Worker for cancel
// registration.
type hearingRegistry interface {
	RegisterHearing(hearingID string, cancel context.CancelFunc)
	UnregisterHearing(hearingID string)
}

// Worker is a single pipeline worker that polls for and dispatches the next
// stage of an actionable hearing.
type Worker struct {
	id        string
	processID string
	client    *ent.Client
	config    *config.PipelineConfig
	hearings  *store.HearingStore
	jobs      *store.JobStore
	state     *store.PipelineStateStore
	runners   map[Stage]StageRunner
	pool      hearingRegistry
	cost      *costTracker

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	mu                sync.RWMutex
	status            WorkerStatus
	currentHearingID  string
	hearingsProcessed int
	lastActivity      time.Time
}

func newWorker(id, processID string, client *ent.Client, cfg *config.PipelineConfig, hearings *store.HearingStore, jobs *store.JobStore, state *store.PipelineStateStore, runners map[Stage]StageRunner, pool hearingRegistry, cost *costTracker) *Worker {
	return &Worker{
		id:           id,
		processID:    processID,
		client:       client,
		config:       cfg,
		hearings:     hearings,
		jobs:         jobs,
		state:        state,
		runners:      runners,
		pool:         pool,
		cost:         cost,
		stopCh:       make(chan struct{}),
		status:       WorkerStatusIdle,
		lastActivity: time.Now(),
	}
}

// Start begins the worker polling loop in a goroutine.
func (w *Worker) Start(ctx context.Context) {
	w.wg.Add(1)
	go w.run(ctx)
}

// Stop signals the worker to stop and waits for it to finish. Safe to call
// multiple times.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
	w.wg.Wait()
}

// Health returns the current worker health status.
func (w *Worker) Health() WorkerHealth {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return WorkerHealth{
		ID:                w.id,
		Status:            string(w.status),
		CurrentHearingID:  w.currentHearingID,
		HearingsProcessed: w.hearingsProcessed,
		LastActivity:      w.lastActivity,
	}
}

func (w *Worker) run(ctx context.Context) {
	defer w.wg.Done()

	log := slog.With("worker_id", w.id, "process_id", w.processID)
	log.Info("pipeline worker started")

	for {
		select {
		case <-w.stopCh:
			log.Info("pipeline worker shutting down")
			return
		case <-ctx.Done():
			log.Info("context cancelled, pipeline worker shutting down")
			return
		default:
			if err := w.pollAndProcess(ctx); err != nil {
				switch {
				case errors.Is(err, ErrNoHearingsAvailable), errors.Is(err, ErrAtCapacity), errors.Is(err, ErrPaused):
					w.sleep(w.pollInterval())
					continue
				default:
					log.Error("error processing hearing", "error", err)
					w.sleep(time.Second)
				}
			}
		}
	}
}

func (w *Worker) sleep(d time.Duration) {
	select {
	case <-w.stopCh:
	case <-time.After(d):
	}
}

// pollAndProcess checks pause state, claims the next actionable hearing, and
// dispatches its next stage (§4.8 steps 1-5).
func (w *Worker) pollAndProcess(ctx context.Context) error {
	st, err := w.state.Get(ctx)
	if err != nil {
		return fmt.Errorf("checking pipeline state: %w", err)
	}
	if st.Paused {
		return ErrPaused
	}

	if maxCost := w.config.MaxCostPerRunUSD; maxCost > 0 && w.cost.get() >= maxCost {
		return ErrAtCapacity
	}

	h, plan, err := w.claimNextHearing(ctx)
	if err != nil {
		return err
	}

	log := slog.With("hearing_id", h.ID, "worker_id", w.id, "stage", plan.stage)
	log.Info("hearing claimed")

	w.setStatus(WorkerStatusWorking, h.ID)
	defer w.setStatus(WorkerStatusIdle, "")

	stageCtx, cancel := context.WithTimeout(ctx, w.config.StageTimeout)
	defer cancel()

	w.pool.RegisterHearing(h.ID, cancel)
	defer w.pool.UnregisterHearing(h.ID)

	job, err := w.jobs.Start(ctx, h.ID, string(plan.stage))
	if err != nil {
		log.Error("failed to record pipeline job start", "error", err)
	}

	runner, ok := w.runners[plan.stage]
	if !ok {
		return fmt.Errorf("no stage runner registered for %s", plan.stage)
	}

	result := runner.Run(stageCtx, h)

	if errors.Is(stageCtx.Err(), context.DeadlineExceeded) && !result.Success {
		result.ShouldRetry = true
		if result.ErrorMessage == "" {
			result.ErrorMessage = fmt.Sprintf("stage %s timed out after %v", plan.stage, w.config.StageTimeout)
		}
	}

	w.handleResult(ctx, h, plan, job, result)

	w.mu.Lock()
	w.hearingsProcessed++
	w.mu.Unlock()

	log.Info("hearing stage dispatch complete", "success", result.Success)
	return nil
}

// handleResult commits the stage outcome: success advances to the plan's
// target status atomically with the stage's artifact write; failure either
// reverts to the retry status (transient, under MaxRetries) or moves the
// hearing to the terminal error status (§3, §7, §4.8 step 5).
func (w *Worker) handleResult(ctx context.Context, h *ent.Hearing, plan stagePlan, job *ent.PipelineJob, result models.StageResult) {
	if result.Success {
		w.cost.add(result.CostUSD)
		if job != nil {
			if err := w.jobs.Complete(ctx, job.ID, result.CostUSD, result.OutputFields); err != nil {
				slog.Error("failed to record pipeline job completion", "job_id", job.ID, "error", err)
			}
		}
		if err := w.hearings.TransitionStatus(ctx, h.ID, plan.target, store.TransitionFunc(result.WriteArtifact)); err != nil {
			slog.Error("failed to transition hearing to target status", "hearing_id", h.ID, "target", plan.target, "error", err)
		}
		return
	}

	msg := models.TruncateError(result.ErrorMessage)
	if job != nil {
		if err := w.jobs.Fail(ctx, job.ID, msg); err != nil {
			slog.Error("failed to record pipeline job failure", "job_id", job.ID, "error", err)
		}
	}

	if result.SkipRemaining {
		if err := w.hearings.TransitionStatus(ctx, h.ID, hearing.StatusSkipped, nil); err != nil {
			slog.Error("failed to mark hearing skipped", "hearing_id", h.ID, "error", err)
		}
		return
	}

	retries := 0
	if job != nil {
		if latest, err := w.jobs.LatestForStage(ctx, h.ID, string(plan.stage)); err == nil {
			retries = latest.RetryCount
		}
	}

	if result.ShouldRetry && retries < w.config.MaxRetries {
		if job != nil {
			if err := w.jobs.IncrementRetry(ctx, job.ID); err != nil {
				slog.Warn("failed to increment retry count", "job_id", job.ID, "error", err)
			}
		}
		revert := plan.transitional
		target, ok := retryStatus[revert]
		if !ok {
			target = hearing.StatusDiscovered
		}
		if err := w.hearings.TransitionStatus(ctx, h.ID, target, nil); err != nil {
			slog.Error("failed to revert hearing for retry", "hearing_id", h.ID, "error", err)
		}
		return
	}

	if err := w.hearings.MarkError(ctx, h.ID, msg); err != nil {
		slog.Error("failed to mark hearing error", "hearing_id", h.ID, "error", err)
	}
}

// claimNextHearing atomically claims the next actionable hearing using
// SELECT ... FOR UPDATE SKIP LOCKED, moving it to its transitional status in
// the same transaction (§4.8 steps 1-2).
func (w *Worker) claimNextHearing(ctx context.Context) (*ent.Hearing, stagePlan, error) {
	tx, err := w.client.Tx(ctx)
	if err != nil {
		return nil, stagePlan{}, fmt.Errorf("starting transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	h, err := tx.Hearing.Query().
		Where(hearing.StatusIn(store.ActionableStatuses...), hearing.DeletedAtIsNil()).
		Order(ent.Asc(hearing.FieldUpdatedAt)).
		Limit(1).
		ForUpdate(sql.WithLockAction(sql.SkipLocked)).
		First(ctx)
	if err != nil {
		if ent.IsNotFound(err) {
			return nil, stagePlan{}, ErrNoHearingsAvailable
		}
		return nil, stagePlan{}, fmt.Errorf("querying actionable hearing: %w", err)
	}

	plan, ok := stagePlans[h.Status]
	if !ok {
		return nil, stagePlan{}, fmt.Errorf("hearing %s has unplannable status %s", h.ID, h.Status)
	}

	h, err = tx.Hearing.UpdateOneID(h.ID).SetStatus(plan.transitional).Save(ctx)
	if err != nil {
		return nil, stagePlan{}, fmt.Errorf("claiming hearing: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, stagePlan{}, fmt.Errorf("committing claim: %w", err)
	}

	return h, plan, nil
}

func (w *Worker) pollInterval() time.Duration {
	base := w.config.PollInterval
	jitter := w.config.PollIntervalJitter
	if jitter <= 0 {
		return base
	}
	offset := time.Duration(rand.Int64N(int64(2 * jitter)))
	return base - jitter + offset
}

func (w *Worker) setStatus(status WorkerStatus, hearingID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.status = status
	w.currentHearingID = hearingID
	w.lastActivity = time.Now()
}
