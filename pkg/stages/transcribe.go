package stages

import (
	"context"
	"fmt"

	"github.com/canaryscope/canaryscope/ent"
	"github.com/canaryscope/canaryscope/pkg/media"
	"github.com/canaryscope/canaryscope/pkg/models"
	"github.com/canaryscope/canaryscope/pkg/store"
	"github.com/canaryscope/canaryscope/pkg/transcribe"
)

// TranscribeRunner implements pipeline.StageRunner for the
// discovered->transcribed transition, composing the Media Fetcher (C4) and
// the Transcriber (C5): the fetch has no database writes of its own, so
// both run here and only the transcript commits alongside the status
// change (§4.4, §4.5).
type TranscribeRunner struct {
	fetcher     *media.Fetcher
	transcriber *transcribe.Service
	hearings    *store.HearingStore
	artifacts   *store.ArtifactStore
}

// NewTranscribeRunner creates a new TranscribeRunner.
func NewTranscribeRunner(fetcher *media.Fetcher, transcriber *transcribe.Service, hearings *store.HearingStore, artifacts *store.ArtifactStore) *TranscribeRunner {
	return &TranscribeRunner{fetcher: fetcher, transcriber: transcriber, hearings: hearings, artifacts: artifacts}
}

// Run implements pipeline.StageRunner.
func (r *TranscribeRunner) Run(ctx context.Context, h *ent.Hearing) models.StageResult {
	sourceURL := h.MediaURL
	if sourceURL == "" {
		sourceURL = h.SourceURL
	}
	if sourceURL == "" {
		return models.Fail(fmt.Errorf("hearing %s has no media_url or source_url to fetch", h.ID), false)
	}

	fetched, err := r.fetcher.Fetch(ctx, h, sourceURL)
	if err != nil {
		return models.Fail(fmt.Errorf("fetching audio: %w", err), true)
	}

	output, err := r.transcriber.Transcribe(ctx, h, fetched.Path)
	if err != nil {
		if derr := r.hearings.DeleteTranscript(ctx, h.ID); derr != nil {
			return models.Fail(fmt.Errorf("transcription failed (%w) and cleanup failed: %v", err, derr), true)
		}
		return models.Fail(fmt.Errorf("transcribing audio: %w", err), true)
	}

	segments := make([]store.TranscriptSegment, len(output.Segments))
	for i, seg := range output.Segments {
		segments[i] = store.TranscriptSegment{
			Index:     seg.Index,
			StartTime: seg.StartTime,
			EndTime:   seg.EndTime,
			Text:      seg.Text,
		}
	}

	write := r.artifacts.WriteTranscript(h.ID, output.FullText, output.Model, output.CostUSD, segments)

	return models.OkWithWrite(output.CostUSD, map[string]interface{}{
		"segments":     len(segments),
		"model":        output.Model,
		"audio_cached": fetched.Cached,
	}, write)
}
