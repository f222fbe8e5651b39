package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/canaryscope/canaryscope/ent"
	"github.com/canaryscope/canaryscope/ent/hearing"
	"github.com/canaryscope/canaryscope/ent/source"
	"github.com/canaryscope/canaryscope/pkg/config"
	"github.com/canaryscope/canaryscope/pkg/database"
	"github.com/canaryscope/canaryscope/pkg/models"
	"github.com/canaryscope/canaryscope/pkg/store"
	testdb "github.com/canaryscope/canaryscope/test/database"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRunner struct {
	result models.StageResult
}

func (s stubRunner) Run(ctx context.Context, h *ent.Hearing) models.StageResult {
	return s.result
}

func setupTestHearing(t *testing.T, client *database.Client, status hearing.Status) string {
	t.Helper()
	ctx := context.Background()

	_, err := client.State.Create().
		SetID("FL").
		SetName("Florida").
		SetCommissionName("Florida Public Service Commission").
		Save(ctx)
	if err != nil {
		require.Contains(t, err.Error(), "already exists")
	}

	src, err := client.Source.Create().
		SetID(uuid.New().String()).
		SetStateID("FL").
		SetKind(source.KindVideoChannel).
		SetName("FPSC YouTube").
		SetURL("https://example.com/channel").
		Save(ctx)
	require.NoError(t, err)

	h, err := client.Hearing.Create().
		SetID(uuid.New().String()).
		SetSourceID(src.ID).
		SetStateCode("FL").
		SetExternalID(uuid.New().String()).
		SetTitle("test hearing").
		SetStatus(status).
		Save(ctx)
	require.NoError(t, err)

	return h.ID
}

func newTestPool(t *testing.T, client *database.Client, runners map[Stage]StageRunner) *WorkerPool {
	t.Helper()
	hearings := store.NewHearingStore(client.Client)
	jobs := store.NewJobStore(client.Client)
	state := store.NewPipelineStateStore(client.Client)
	return NewWorkerPool("test", client.Client, config.DefaultPipelineConfig(), hearings, jobs, state, runners)
}

func TestRunOnce_ProcessesActionableHearingThenStops(t *testing.T) {
	client := testdb.NewTestClient(t)
	hearingID := setupTestHearing(t, client, hearing.StatusDiscovered)

	runners := map[Stage]StageRunner{
		StageTranscribe: stubRunner{result: models.Ok(0.01, nil)},
	}
	pool := newTestPool(t, client, runners)

	// Capped at 1: only the transcribe stage has a runner registered, and
	// RunOnce's unbounded drain would otherwise reclaim the now-transcribed
	// hearing for its next (unregistered) stage.
	processed, err := pool.RunOnce(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, processed)

	h, err := client.Hearing.Get(context.Background(), hearingID)
	require.NoError(t, err)
	assert.Equal(t, hearing.StatusTranscribed, h.Status)
	assert.Equal(t, 0.01, pool.AccumulatedCostUSD())
}

func TestRunOnce_RespectsMaxHearings(t *testing.T) {
	client := testdb.NewTestClient(t)
	setupTestHearing(t, client, hearing.StatusDiscovered)
	setupTestHearing(t, client, hearing.StatusDiscovered)

	runners := map[Stage]StageRunner{
		StageTranscribe: stubRunner{result: models.Ok(0, nil)},
	}
	pool := newTestPool(t, client, runners)

	processed, err := pool.RunOnce(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, processed)
}

func TestRunOnce_NoHearingsIsNotAnError(t *testing.T) {
	client := testdb.NewTestClient(t)
	pool := newTestPool(t, client, map[Stage]StageRunner{})

	processed, err := pool.RunOnce(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 0, processed)
}

func TestRunOnce_DrivesHearingAllTheWayToComplete(t *testing.T) {
	client := testdb.NewTestClient(t)
	hearingID := setupTestHearing(t, client, hearing.StatusDiscovered)

	runners := map[Stage]StageRunner{
		StageTranscribe: stubRunner{result: models.Ok(0.01, nil)},
		StageAnalyze:    stubRunner{result: models.Ok(0.02, nil)},
		StageExtract:    stubRunner{result: models.Ok(0.03, nil)},
	}
	pool := newTestPool(t, client, runners)

	processed, err := pool.RunOnce(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, 4, processed)

	h, err := client.Hearing.Get(context.Background(), hearingID)
	require.NoError(t, err)
	assert.Equal(t, hearing.StatusComplete, h.Status)
	assert.InDelta(t, 0.06, pool.AccumulatedCostUSD(), 0.0001)
}

func TestRunStage_SuccessAdvancesToTargetStatus(t *testing.T) {
	client := testdb.NewTestClient(t)
	hearingID := setupTestHearing(t, client, hearing.StatusTranscribed)

	runners := map[Stage]StageRunner{
		StageAnalyze: stubRunner{result: models.Ok(0.02, nil)},
	}
	pool := newTestPool(t, client, runners)

	result, err := pool.RunStage(context.Background(), hearingID, StageAnalyze)
	require.NoError(t, err)
	assert.True(t, result.Success)

	h, err := client.Hearing.Get(context.Background(), hearingID)
	require.NoError(t, err)
	assert.Equal(t, hearing.StatusAnalyzed, h.Status)
	assert.Equal(t, 0.02, pool.AccumulatedCostUSD())
}

func TestRunStage_FailureMarksError(t *testing.T) {
	client := testdb.NewTestClient(t)
	hearingID := setupTestHearing(t, client, hearing.StatusTranscribed)

	runners := map[Stage]StageRunner{
		StageAnalyze: stubRunner{result: models.Fail(errors.New("boom"), false)},
	}
	pool := newTestPool(t, client, runners)

	result, err := pool.RunStage(context.Background(), hearingID, StageAnalyze)
	require.NoError(t, err)
	assert.False(t, result.Success)

	h, err := client.Hearing.Get(context.Background(), hearingID)
	require.NoError(t, err)
	assert.Equal(t, hearing.StatusError, h.Status)
}

func TestRunStage_UnregisteredStageErrors(t *testing.T) {
	client := testdb.NewTestClient(t)
	hearingID := setupTestHearing(t, client, hearing.StatusTranscribed)

	pool := newTestPool(t, client, map[Stage]StageRunner{})

	_, err := pool.RunStage(context.Background(), hearingID, StageAnalyze)
	assert.Error(t, err)
}
