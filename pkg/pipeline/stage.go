package pipeline

import (
	"context"

	"github.com/canaryscope/canaryscope/ent"
	"github.com/canaryscope/canaryscope/ent/hearing"
	"github.com/canaryscope/canaryscope/pkg/models"
)

// finalizeRunner closes the extracted -> complete transition (§4.8 step 3
// final step). It does no work of its own — every artifact the hearing
// needs was already written by the transcribe/analyze/extract stages — so
// it always succeeds at zero cost. The pool wires it in for StageFinalize
// regardless of what the caller's runners map supplies, since it is not a
// caller-configurable stage.
type finalizeRunner struct{}

func (finalizeRunner) Run(ctx context.Context, h *ent.Hearing) models.StageResult {
	return models.Ok(0, nil)
}

// stagePlan describes, for one actionable status, which stage to dispatch,
// the transitional status to set immediately on claim, and the terminal
// status to set on success (§3 status machine, §4.8 step 3).
type stagePlan struct {
	stage        Stage
	transitional hearing.Status
	target       hearing.Status
}

// stagePlans maps each actionable status to its stage plan. extracted
// dispatches to StageFinalize, a no-op runner the pool always wires in
// itself, to reach the complete terminal status (§4.8 step 3 final step).
var stagePlans = map[hearing.Status]stagePlan{
	hearing.StatusDiscovered: {
		stage:        StageTranscribe,
		transitional: hearing.StatusDownloading,
		target:       hearing.StatusTranscribed,
	},
	hearing.StatusTranscribed: {
		stage:        StageAnalyze,
		transitional: hearing.StatusAnalyzing,
		target:       hearing.StatusAnalyzed,
	},
	hearing.StatusAnalyzed: {
		stage:        StageExtract,
		transitional: hearing.StatusExtracting,
		target:       hearing.StatusExtracted,
	},
	hearing.StatusExtracted: {
		stage:        StageFinalize,
		transitional: hearing.StatusCompleting,
		target:       hearing.StatusComplete,
	},
}

// retryStatus maps a transitional status back to the actionable status a
// failed or orphaned attempt should be reverted to so it is reselected on
// the next pass (§7, §4.8 step 5).
var retryStatus = map[hearing.Status]hearing.Status{
	hearing.StatusDownloading:  hearing.StatusDiscovered,
	hearing.StatusTranscribing: hearing.StatusDiscovered,
	hearing.StatusAnalyzing:    hearing.StatusTranscribed,
	hearing.StatusExtracting:   hearing.StatusAnalyzed,
	hearing.StatusCompleting:   hearing.StatusExtracted,
}

// targetForStage returns the terminal status a stage advances a hearing to
// on success, for the one-shot pipeline.run_stage(hearing_id, stage_name)
// control-surface operation (§6.3) which names a stage directly rather than
// deriving it from the hearing's current status.
func targetForStage(stage Stage) (hearing.Status, bool) {
	for _, plan := range stagePlans {
		if plan.stage == stage {
			return plan.target, true
		}
	}
	return "", false
}

// transitionalStatuses lists every in-flight status an orphan scan considers.
var transitionalStatuses = []hearing.Status{
	hearing.StatusDownloading,
	hearing.StatusTranscribing,
	hearing.StatusAnalyzing,
	hearing.StatusExtracting,
	hearing.StatusCompleting,
}
