package store

import (
	"context"
	"fmt"
	"time"

	"github.com/canaryscope/canaryscope/ent"
	"github.com/canaryscope/canaryscope/ent/analysis"
	"github.com/canaryscope/canaryscope/ent/hearing"
	"github.com/canaryscope/canaryscope/ent/transcript"
	"github.com/google/uuid"
)

// HearingStore is the thin persistence layer C3 exposes for the Hearing
// aggregate: upsert-by-(source,external_id), atomic status transitions, and
// the actionable-hearing queries the orchestrator polls (§4.3).
type HearingStore struct {
	client *ent.Client
}

// NewHearingStore creates a new HearingStore.
func NewHearingStore(client *ent.Client) *HearingStore {
	return &HearingStore{client: client}
}

// ActionableStatuses are the statuses the Pipeline Orchestrator considers
// for dispatch (§4.8 step 1).
var ActionableStatuses = []hearing.Status{
	hearing.StatusDiscovered,
	hearing.StatusTranscribed,
	hearing.StatusAnalyzed,
	hearing.StatusExtracted,
}

// UpsertHearing inserts a new discovered Hearing keyed by (source_id,
// external_id), or returns the existing one unchanged if already present
// (§4.2 step 2, §4.3).
func (s *HearingStore) UpsertHearing(ctx context.Context, sourceID, stateCode, externalID string, candidate HearingFields) (h *ent.Hearing, created bool, err error) {
	existing, err := s.client.Hearing.Query().
		Where(hearing.SourceIDEQ(sourceID), hearing.ExternalIDEQ(externalID)).
		Only(ctx)
	if err == nil {
		return existing, false, nil
	}
	if !ent.IsNotFound(err) {
		return nil, false, fmt.Errorf("query existing hearing: %w", err)
	}

	builder := s.client.Hearing.Create().
		SetID(uuid.New().String()).
		SetSourceID(sourceID).
		SetStateCode(stateCode).
		SetExternalID(externalID).
		SetTitle(candidate.Title).
		SetStatus(hearing.StatusDiscovered)

	if candidate.Description != "" {
		builder.SetDescription(candidate.Description)
	}
	if candidate.HearingDate != nil {
		builder.SetHearingDate(*candidate.HearingDate)
	}
	if candidate.MediaURL != "" {
		builder.SetMediaURL(candidate.MediaURL)
	}
	if candidate.SourceURL != "" {
		builder.SetSourceURL(candidate.SourceURL)
	}
	if candidate.Duration != nil {
		builder.SetDurationSeconds(*candidate.Duration)
	}

	created1, err := builder.Save(ctx)
	if err != nil {
		if ent.IsConstraintError(err) {
			// Lost a race with a concurrent scrape pass; treat as existing.
			existing, findErr := s.client.Hearing.Query().
				Where(hearing.SourceIDEQ(sourceID), hearing.ExternalIDEQ(externalID)).
				Only(ctx)
			if findErr != nil {
				return nil, false, fmt.Errorf("resolve constraint race: %w", findErr)
			}
			return existing, false, nil
		}
		return nil, false, fmt.Errorf("create hearing: %w", err)
	}
	return created1, true, nil
}

// HearingFields carries the candidate attributes used to populate a new
// Hearing row; kept distinct from models.HearingCandidate so the store
// package has no dependency on the adapter layer.
type HearingFields struct {
	Title       string
	Description string
	HearingDate *time.Time
	MediaURL    string
	SourceURL   string
	Duration    *float64
}

// Get retrieves a Hearing by id.
func (s *HearingStore) Get(ctx context.Context, id string) (*ent.Hearing, error) {
	h, err := s.client.Hearing.Get(ctx, id)
	if err != nil {
		if ent.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get hearing: %w", err)
	}
	return h, nil
}

// ListActionable returns Hearings in an actionable status, optionally
// restricted to a state subset, oldest updated_at first (§4.8 step 1).
func (s *HearingStore) ListActionable(ctx context.Context, stateCodes []string, limit int) ([]*ent.Hearing, error) {
	q := s.client.Hearing.Query().
		Where(hearing.StatusIn(ActionableStatuses...), hearing.DeletedAtIsNil()).
		Order(ent.Asc(hearing.FieldUpdatedAt))

	if len(stateCodes) > 0 {
		q = q.Where(hearing.StateCodeIn(stateCodes...))
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	return q.All(ctx)
}

// TransitionFunc mutates a transaction-scoped write, used to commit a
// stage's output atomically with the status transition (§3, §4.8 step 3).
type TransitionFunc func(ctx context.Context, tx *ent.Tx) error

// TransitionStatus moves a Hearing to newStatus and runs writeArtifact in
// the same transaction, so a failed artifact write never advances status
// (§3: "Failed writes do not advance status").
func (s *HearingStore) TransitionStatus(ctx context.Context, hearingID string, newStatus hearing.Status, writeArtifact TransitionFunc) error {
	tx, err := s.client.Tx(ctx)
	if err != nil {
		return fmt.Errorf("start transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if writeArtifact != nil {
		if err := writeArtifact(ctx, tx); err != nil {
			return fmt.Errorf("write stage artifact: %w", err)
		}
	}

	if err := tx.Hearing.UpdateOneID(hearingID).SetStatus(newStatus).Exec(ctx); err != nil {
		if ent.IsNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("update hearing status: %w", err)
	}

	return tx.Commit()
}

// MarkError moves a Hearing to the terminal error status (§3, §7).
func (s *HearingStore) MarkError(ctx context.Context, hearingID, message string) error {
	err := s.client.Hearing.UpdateOneID(hearingID).
		SetStatus(hearing.StatusError).
		Exec(ctx)
	if err != nil {
		if ent.IsNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("mark hearing error: %w", err)
	}
	return nil
}

// TranscriptFullText returns the hearing's transcribed text, used as the
// search corpus for docket extraction and analysis (§4.6, §4.7).
func (s *HearingStore) TranscriptFullText(ctx context.Context, hearingID string) (string, error) {
	t, err := s.client.Transcript.Query().
		Where(transcript.HearingIDEQ(hearingID)).
		Only(ctx)
	if err != nil {
		if ent.IsNotFound(err) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("query transcript: %w", err)
	}
	return t.FullText, nil
}

// DeleteTranscript removes a hearing's Transcript, cascading to its
// Segments, so a retried transcription attempt starts clean (§4.5:
// "on error the partial Transcript ... are deleted").
func (s *HearingStore) DeleteTranscript(ctx context.Context, hearingID string) error {
	if _, err := s.client.Transcript.Delete().
		Where(transcript.HearingIDEQ(hearingID)).
		Exec(ctx); err != nil {
		return fmt.Errorf("delete transcript: %w", err)
	}
	return nil
}

// AnalysisFor returns the hearing's Analysis row, the source of the
// utility/topic names C10 links against (§4.10).
func (s *HearingStore) AnalysisFor(ctx context.Context, hearingID string) (*ent.Analysis, error) {
	a, err := s.client.Analysis.Query().
		Where(analysis.HearingIDEQ(hearingID)).
		Only(ctx)
	if err != nil {
		if ent.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query analysis: %w", err)
	}
	return a, nil
}

// SoftDeleteOlderThan soft-deletes terminal (complete/error/skipped) hearings
// past the retention cutoff, used by pkg/cleanup (§4.A.3).
func (s *HearingStore) SoftDeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	return s.client.Hearing.Update().
		Where(
			hearing.StatusIn(hearing.StatusComplete, hearing.StatusError, hearing.StatusSkipped),
			hearing.CreatedAtLT(cutoff),
			hearing.DeletedAtIsNil(),
		).
		SetDeletedAt(time.Now()).
		Save(ctx)
}
