package store

import (
	"context"
	"fmt"
	"time"

	"github.com/canaryscope/canaryscope/ent"
	"github.com/canaryscope/canaryscope/ent/pipelinejob"
	"github.com/google/uuid"
)

// JobStore records per-(hearing, stage) execution attempts (§3 PipelineJob,
// §4.8 step 4).
type JobStore struct {
	client *ent.Client
}

// NewJobStore creates a new JobStore.
func NewJobStore(client *ent.Client) *JobStore {
	return &JobStore{client: client}
}

// Start creates a running job row for a (hearing, stage) attempt, carrying
// over retry_count from the latest earlier attempt of the same stage.
func (s *JobStore) Start(ctx context.Context, hearingID, stage string) (*ent.PipelineJob, error) {
	retryCount := 0
	prev, err := s.LatestForStage(ctx, hearingID, stage)
	switch {
	case err == nil:
		retryCount = prev.RetryCount
	case err != ErrNotFound:
		return nil, err
	}
	now := time.Now()
	j, err := s.client.PipelineJob.Create().
		SetID(uuid.New().String()).
		SetHearingID(hearingID).
		SetStage(stage).
		SetStatus(pipelinejob.StatusRunning).
		SetStartedAt(now).
		SetRetryCount(retryCount).
		Save(ctx)
	if err != nil {
		return nil, fmt.Errorf("create pipeline job: %w", err)
	}
	return j, nil
}

// Complete marks a job successful and records its cost.
func (s *JobStore) Complete(ctx context.Context, jobID string, costUSD float64, metadata map[string]interface{}) error {
	err := s.client.PipelineJob.UpdateOneID(jobID).
		SetStatus(pipelinejob.StatusComplete).
		SetCompletedAt(time.Now()).
		SetCostUsd(costUSD).
		SetMetadata(metadata).
		Exec(ctx)
	if err != nil {
		if ent.IsNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("complete pipeline job: %w", err)
	}
	return nil
}

// Fail marks a job failed with a truncated error message (§7).
func (s *JobStore) Fail(ctx context.Context, jobID, message string) error {
	err := s.client.PipelineJob.UpdateOneID(jobID).
		SetStatus(pipelinejob.StatusFailed).
		SetCompletedAt(time.Now()).
		SetErrorMessage(message).
		Exec(ctx)
	if err != nil {
		if ent.IsNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("fail pipeline job: %w", err)
	}
	return nil
}

// IncrementRetry bumps retry_count on the most recent job for (hearing, stage).
func (s *JobStore) IncrementRetry(ctx context.Context, jobID string) error {
	return s.client.PipelineJob.UpdateOneID(jobID).AddRetryCount(1).Exec(ctx)
}

// LatestForStage returns the most recent job for a (hearing, stage) pair, used
// to decide whether a retry should count against the stage's attempt budget.
func (s *JobStore) LatestForStage(ctx context.Context, hearingID, stage string) (*ent.PipelineJob, error) {
	j, err := s.client.PipelineJob.Query().
		Where(pipelinejob.HearingIDEQ(hearingID), pipelinejob.StageEQ(stage)).
		Order(ent.Desc(pipelinejob.FieldCreatedAt)).
		First(ctx)
	if err != nil {
		if ent.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query latest pipeline job: %w", err)
	}
	return j, nil
}
