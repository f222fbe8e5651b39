package models

import (
	"context"

	"github.com/canaryscope/canaryscope/ent"
)

// StageResult is the contract every pipeline stage (transcribe, analyze,
// extract, finalize) returns to the orchestrator (§4.8, §7).
type StageResult struct {
	Success bool

	// OutputFields carries the stage's summary counters. On success the
	// worker records them as the PipelineJob's metadata, in a separate write
	// before the status transition; only WriteArtifact shares the
	// transition's transaction.
	OutputFields map[string]interface{}

	CostUSD float64

	// WriteArtifact, when non-nil, persists the stage's own output. The
	// orchestrator runs it in the same transaction as the status advance it
	// commits on success, so a stage never needs to know its own target
	// status to satisfy §5's "status transitions and artifact writes must
	// be in the same transaction."
	WriteArtifact func(ctx context.Context, tx *ent.Tx) error

	// ShouldRetry classifies the failure per §7's error taxonomy: transient
	// upstream failures set this true so the orchestrator reselects the
	// hearing on its next pass instead of moving it to `error`.
	ShouldRetry bool

	// SkipRemaining short-circuits the remaining stages for this hearing in
	// the current run (§4.8 step 4), e.g. a hearing explicitly marked
	// skipped by an adapter.
	SkipRemaining bool

	// ErrorMessage is truncated to 500 chars by the orchestrator before
	// storage (§4.8 step 5, §7).
	ErrorMessage string
}

// Ok builds a successful StageResult with nothing further to persist.
func Ok(cost float64, output map[string]interface{}) StageResult {
	return StageResult{Success: true, CostUSD: cost, OutputFields: output}
}

// OkWithWrite builds a successful StageResult whose artifact write must
// commit atomically with the orchestrator's status advance.
func OkWithWrite(cost float64, output map[string]interface{}, writeArtifact func(ctx context.Context, tx *ent.Tx) error) StageResult {
	return StageResult{Success: true, CostUSD: cost, OutputFields: output, WriteArtifact: writeArtifact}
}

// Fail builds a failed StageResult.
func Fail(err error, shouldRetry bool) StageResult {
	return StageResult{Success: false, ShouldRetry: shouldRetry, ErrorMessage: err.Error()}
}

const errorMessageMaxLen = 500

// TruncateError truncates an error message to the 500-character bound used
// throughout the store for PipelineJob.error_message and Source.error_message.
func TruncateError(msg string) string {
	if len(msg) <= errorMessageMaxLen {
		return msg
	}
	return msg[:errorMessageMaxLen]
}
