// Package scheduler implements C9, the Scheduler Daemon: polls database-backed
// PipelineSchedule rows and fires due ones synchronously in-process (§4.9).
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/canaryscope/canaryscope/ent"
	"github.com/canaryscope/canaryscope/ent/pipelineschedule"
	"github.com/canaryscope/canaryscope/pkg/config"
	"github.com/canaryscope/canaryscope/pkg/models"
	"github.com/canaryscope/canaryscope/pkg/pipeline"
	"github.com/canaryscope/canaryscope/pkg/scraper"
	"github.com/canaryscope/canaryscope/pkg/store"
	"github.com/robfig/cron/v3"
)

// Scheduler polls for due schedules and dispatches their target
// synchronously, one at a time, in the same process (§4.9).
type Scheduler struct {
	config    *config.SchedulerConfig
	schedules *store.ScheduleStore
	state     *store.PipelineStateStore
	pool      *pipeline.WorkerPool
	scraper   *scraper.Scraper

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// New creates a new Scheduler.
func New(cfg *config.SchedulerConfig, schedules *store.ScheduleStore, state *store.PipelineStateStore, pool *pipeline.WorkerPool, scr *scraper.Scraper) *Scheduler {
	return &Scheduler{
		config:    cfg,
		schedules: schedules,
		state:     state,
		pool:      pool,
		scraper:   scr,
		stopCh:    make(chan struct{}),
	}
}

// Start begins the check-interval polling loop in a goroutine.
func (s *Scheduler) Start(ctx context.Context) {
	s.wg.Add(1)
	go s.run(ctx)
}

// Stop signals the scheduler to stop and waits for the current pass to
// finish. Safe to call multiple times.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
	s.wg.Wait()
}

func (s *Scheduler) run(ctx context.Context) {
	defer s.wg.Done()
	slog.Info("scheduler started", "check_interval", s.config.CheckInterval)

	for {
		s.checkDue(ctx)
		if s.sleep(ctx, s.config.CheckInterval) {
			slog.Info("scheduler shutting down")
			return
		}
	}
}

// sleep waits for d, checking the stop flag every second so shutdown is
// cooperative rather than blocking for a full check interval (§4.9: "the
// sleep between passes is chunked in 1-second increments checking a stop
// flag"). Returns true if the scheduler should stop.
func (s *Scheduler) sleep(ctx context.Context, d time.Duration) bool {
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		select {
		case <-s.stopCh:
			return true
		case <-ctx.Done():
			return true
		case <-time.After(time.Second):
		}
	}
	return false
}

// checkDue loads and fires every schedule whose next_run_at has arrived
// (§4.9 steps 1-4).
func (s *Scheduler) checkDue(ctx context.Context) {
	now := time.Now().UTC()
	due, err := s.schedules.DueAt(ctx, now)
	if err != nil {
		slog.Error("failed to load due schedules", "error", err)
		return
	}

	for _, sc := range due {
		select {
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		default:
		}
		s.fire(ctx, sc)
	}
}

// fire dispatches a single schedule's target synchronously and records the
// outcome, advancing next_run_at regardless of success (§4.9 step 3, S6).
func (s *Scheduler) fire(ctx context.Context, sc *ent.PipelineSchedule) {
	log := slog.With("schedule_id", sc.ID, "schedule_name", sc.Name, "target", sc.Target)
	log.Info("schedule firing")

	ranAt := time.Now().UTC()
	runErr := s.dispatch(ctx, sc)

	status := "success"
	errMsg := ""
	if runErr != nil {
		status = "error"
		errMsg = models.TruncateError(runErr.Error())
		log.Error("schedule run failed", "error", runErr)
	}

	next, err := nextRunAt(sc, ranAt)
	if err != nil {
		log.Error("failed to compute next run time, deferring schedule by 24h", "error", err)
		next = ranAt.Add(24 * time.Hour)
	}

	if err := s.schedules.RecordRun(ctx, sc.ID, ranAt, next, status, errMsg); err != nil {
		log.Error("failed to record schedule run", "error", err)
	}
}

// dispatch runs the schedule's target to completion. "all" runs the scraper
// first so freshly discovered hearings are immediately eligible for the
// pipeline pass that follows.
func (s *Scheduler) dispatch(ctx context.Context, sc *ent.PipelineSchedule) error {
	switch sc.Target {
	case pipelineschedule.TargetScraper:
		return s.runScraper(ctx, sc)
	case pipelineschedule.TargetPipeline:
		return s.runPipeline(ctx, sc)
	case pipelineschedule.TargetAll:
		if err := s.runScraper(ctx, sc); err != nil {
			return err
		}
		return s.runPipeline(ctx, sc)
	default:
		return fmt.Errorf("unknown schedule target %q", sc.Target)
	}
}

func (s *Scheduler) runScraper(ctx context.Context, sc *ent.PipelineSchedule) error {
	filters := scraper.RunFilters{}
	if kinds, ok := sc.Config["kinds"].([]interface{}); ok {
		for _, k := range kinds {
			if ks, ok := k.(string); ok {
				filters.Kinds = append(filters.Kinds, ks)
			}
		}
	}
	if state, ok := sc.Config["state"].(string); ok {
		filters.State = state
	}
	if dryRun, ok := sc.Config["dry_run"].(bool); ok {
		filters.DryRun = dryRun
	}

	_, err := s.scraper.Run(ctx, filters)
	return err
}

func (s *Scheduler) runPipeline(ctx context.Context, sc *ent.PipelineSchedule) error {
	st, err := s.state.Get(ctx)
	if err != nil {
		return fmt.Errorf("checking pipeline pause state: %w", err)
	}
	if st.Paused {
		slog.Info("skipping pipeline schedule fire, pipeline is paused", "schedule_id", sc.ID)
		return nil
	}

	maxHearings := 0
	if v, ok := sc.Config["max_hearings"].(float64); ok {
		maxHearings = int(v)
	}
	_, err = s.pool.RunOnce(ctx, maxHearings)
	return err
}

// nextRunAt computes the next firing time for a schedule from its type and
// value (§4.9 step 4).
func nextRunAt(sc *ent.PipelineSchedule, from time.Time) (time.Time, error) {
	switch sc.ScheduleType {
	case pipelineschedule.ScheduleTypeInterval:
		d, err := parseIntervalValue(sc.ScheduleValue)
		if err != nil {
			return time.Time{}, err
		}
		return from.Add(d), nil
	case pipelineschedule.ScheduleTypeDaily:
		return nextDailyOccurrence(sc.ScheduleValue, from)
	case pipelineschedule.ScheduleTypeCron:
		schedule, err := defaultCronParser.Parse(sc.ScheduleValue)
		if err != nil {
			return time.Time{}, fmt.Errorf("parsing cron expression %q: %w", sc.ScheduleValue, err)
		}
		return schedule.Next(from), nil
	default:
		return time.Time{}, fmt.Errorf("unknown schedule type %q", sc.ScheduleType)
	}
}

var defaultCronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// parseIntervalValue parses "30m"/"2h"/"1d"-style interval values. Go's
// time.ParseDuration has no day unit, so a trailing "d" is handled
// separately.
func parseIntervalValue(v string) (time.Duration, error) {
	v = strings.TrimSpace(v)
	if strings.HasSuffix(v, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(v, "d"))
		if err != nil {
			return 0, fmt.Errorf("parsing interval %q: %w", v, err)
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parsing interval %q: %w", v, err)
	}
	return d, nil
}

// nextDailyOccurrence returns the next UTC instant matching "HH:MM" that is
// strictly after `from`.
func nextDailyOccurrence(hhmm string, from time.Time) (time.Time, error) {
	parts := strings.SplitN(hhmm, ":", 2)
	if len(parts) != 2 {
		return time.Time{}, fmt.Errorf("invalid daily schedule value %q, expected HH:MM", hhmm)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid hour in %q: %w", hhmm, err)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid minute in %q: %w", hhmm, err)
	}

	from = from.UTC()
	next := time.Date(from.Year(), from.Month(), from.Day(), hour, minute, 0, 0, time.UTC)
	if !next.After(from) {
		next = next.Add(24 * time.Hour)
	}
	return next, nil
}
