package store

import (
	"context"
	"fmt"
	"time"

	"github.com/canaryscope/canaryscope/ent"
	"github.com/canaryscope/canaryscope/ent/pipelineschedule"
	"github.com/google/uuid"
)

// ScheduleStore persists the C9 scheduler's recurring-run definitions.
type ScheduleStore struct {
	client *ent.Client
}

// NewScheduleStore creates a new ScheduleStore.
func NewScheduleStore(client *ent.Client) *ScheduleStore {
	return &ScheduleStore{client: client}
}

// ListEnabled returns all enabled schedules for the scheduler's check loop
// (§4.9 step 2).
func (s *ScheduleStore) ListEnabled(ctx context.Context) ([]*ent.PipelineSchedule, error) {
	return s.client.PipelineSchedule.Query().
		Where(pipelineschedule.EnabledEQ(true)).
		All(ctx)
}

// DueAt returns enabled schedules whose next_run_at is at or before `at`
// (§4.9 step 2).
func (s *ScheduleStore) DueAt(ctx context.Context, at time.Time) ([]*ent.PipelineSchedule, error) {
	return s.client.PipelineSchedule.Query().
		Where(
			pipelineschedule.EnabledEQ(true),
			pipelineschedule.NextRunAtLTE(at),
		).
		All(ctx)
}

// Create inserts a new schedule.
func (s *ScheduleStore) Create(ctx context.Context, name string, target pipelineschedule.Target, schedType pipelineschedule.ScheduleType, scheduleValue string, config map[string]interface{}, nextRunAt time.Time) (*ent.PipelineSchedule, error) {
	sc, err := s.client.PipelineSchedule.Create().
		SetID(uuid.New().String()).
		SetName(name).
		SetTarget(target).
		SetScheduleType(schedType).
		SetScheduleValue(scheduleValue).
		SetConfig(config).
		SetNextRunAt(nextRunAt).
		Save(ctx)
	if err != nil {
		if ent.IsConstraintError(err) {
			return nil, ErrAlreadyExists
		}
		return nil, fmt.Errorf("create schedule: %w", err)
	}
	return sc, nil
}

// RecordRun updates a schedule after it fires: advances next_run_at and
// records the outcome of the dispatched run (§4.9 step 4).
func (s *ScheduleStore) RecordRun(ctx context.Context, id string, ranAt, nextRunAt time.Time, status string, runErr string) error {
	update := s.client.PipelineSchedule.UpdateOneID(id).
		SetLastRunAt(ranAt).
		SetNextRunAt(nextRunAt).
		SetLastRunStatus(status)
	if runErr != "" {
		update = update.SetLastRunError(runErr)
	} else {
		update = update.ClearLastRunError()
	}
	if err := update.Exec(ctx); err != nil {
		if ent.IsNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("record schedule run: %w", err)
	}
	return nil
}

// PipelineStateStore manages the singleton pause-flag row used for
// cross-process pause/resume coordination (§5, §9).
type PipelineStateStore struct {
	client *ent.Client
}

// NewPipelineStateStore creates a new PipelineStateStore.
func NewPipelineStateStore(client *ent.Client) *PipelineStateStore {
	return &PipelineStateStore{client: client}
}

const singletonStateID = "singleton"

// Get returns the singleton state row, creating it on first use.
func (s *PipelineStateStore) Get(ctx context.Context) (*ent.PipelineState, error) {
	st, err := s.client.PipelineState.Get(ctx, singletonStateID)
	if err == nil {
		return st, nil
	}
	if !ent.IsNotFound(err) {
		return nil, fmt.Errorf("get pipeline state: %w", err)
	}
	st, err = s.client.PipelineState.Create().SetID(singletonStateID).Save(ctx)
	if err != nil {
		if ent.IsConstraintError(err) {
			return s.client.PipelineState.Get(ctx, singletonStateID)
		}
		return nil, fmt.Errorf("create pipeline state: %w", err)
	}
	return st, nil
}

// Pause sets the pause flag (§6.3 pipeline.pause).
func (s *PipelineStateStore) Pause(ctx context.Context, by string) error {
	if _, err := s.Get(ctx); err != nil {
		return err
	}
	return s.client.PipelineState.UpdateOneID(singletonStateID).
		SetPaused(true).
		SetPausedAt(time.Now()).
		SetPausedBy(by).
		Exec(ctx)
}

// Resume clears the pause flag (§6.3 pipeline.resume).
func (s *PipelineStateStore) Resume(ctx context.Context) error {
	if _, err := s.Get(ctx); err != nil {
		return err
	}
	return s.client.PipelineState.UpdateOneID(singletonStateID).
		SetPaused(false).
		ClearPausedAt().
		ClearPausedBy().
		Exec(ctx)
}
