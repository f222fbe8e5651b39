package docket

import (
	"context"
	"fmt"
	"strings"

	"github.com/canaryscope/canaryscope/ent"
	entdocket "github.com/canaryscope/canaryscope/ent/docket"
	"github.com/canaryscope/canaryscope/ent/extracteddocket"
	"github.com/canaryscope/canaryscope/ent/hearingdocket"
	"github.com/canaryscope/canaryscope/pkg/models"
	"github.com/canaryscope/canaryscope/pkg/store"
)

// Service wires the pure Extractor to persistence, implementing §4.7 step 8
// (cleanup-then-recreate) and exposing a pipeline.StageRunner for the
// extract stage.
type Service struct {
	extractor *Extractor
	dockets   *store.DocketStore
	hearings  *store.HearingStore
}

// NewService creates a new Service.
func NewService(extractor *Extractor, dockets *store.DocketStore, hearings *store.HearingStore) *Service {
	return &Service{extractor: extractor, dockets: dockets, hearings: hearings}
}

// Run implements pipeline.StageRunner for StageExtract: concatenates the
// hearing's title, description, and transcript full_text into the search
// corpus, runs extraction against the state's KnownDocket catalogue, and
// writes the result set transactionally (§4.7 step 8).
func (s *Service) Run(ctx context.Context, h *ent.Hearing) models.StageResult {
	candidates, err := s.ExtractCandidates(ctx, h)
	if err != nil {
		return models.Fail(err, true)
	}

	write := func(ctx context.Context, tx *ent.Tx) error {
		return s.Persist(ctx, tx, h, candidates)
	}

	accepted := 0
	for _, c := range candidates {
		if c.Status != models.DocketRejected {
			accepted++
		}
	}

	return models.OkWithWrite(0, map[string]interface{}{
		"candidates_found": len(candidates),
		"dockets_linked":   accepted,
	}, write)
}

// ExtractCandidates loads the hearing's search corpus and state catalogue
// and runs the pure scoring pipeline, without touching persistence. Exposed
// so a composite stage runner can combine this with another linker's
// extraction inside a single transaction (§5: "status transitions and
// artifact writes must be in the same transaction").
func (s *Service) ExtractCandidates(ctx context.Context, h *ent.Hearing) ([]models.DocketCandidate, error) {
	text, err := s.corpus(ctx, h)
	if err != nil {
		return nil, fmt.Errorf("loading transcript for extraction: %w", err)
	}

	catalogue, err := s.catalogueFor(ctx, h.StateCode)
	if err != nil {
		return nil, fmt.Errorf("loading known docket catalogue: %w", err)
	}

	return s.extractor.Extract(text, h.StateCode, catalogue), nil
}

func (s *Service) corpus(ctx context.Context, h *ent.Hearing) (string, error) {
	tx, err := s.transcriptText(ctx, h.ID)
	if err != nil {
		return "", err
	}
	description := ""
	if h.Description != nil {
		description = *h.Description
	}
	parts := []string{h.Title, description, tx}
	return strings.Join(parts, "\n\n"), nil
}

func (s *Service) transcriptText(ctx context.Context, hearingID string) (string, error) {
	t, err := s.hearings.TranscriptFullText(ctx, hearingID)
	if err != nil {
		if err == store.ErrNotFound {
			return "", nil
		}
		return "", err
	}
	return t, nil
}

func (s *Service) catalogueFor(ctx context.Context, stateCode string) ([]KnownDocketEntry, error) {
	known, err := s.dockets.ListKnownDocketsByState(ctx, stateCode)
	if err != nil {
		return nil, err
	}
	entries := make([]KnownDocketEntry, 0, len(known))
	for _, kd := range known {
		suffix := ""
		if kd.Suffix != nil {
			suffix = *kd.Suffix
		}
		entries = append(entries, KnownDocketEntry{
			ID:           kd.ID,
			NormalizedID: kd.NormalizedID,
			DocketNumber: kd.DocketNumber,
			Suffix:       suffix,
			FilingDate:   kd.FilingDate,
		})
	}
	return entries, nil
}

// Persist implements the cleanup-then-recreate contract: every prior
// ExtractedDocket/HearingDocket row for this hearing is deleted, then the
// full freshly-scored candidate set is written back, keeping re-extraction
// idempotent (§4.7 step 8, invariant 3 in §8).
func (s *Service) Persist(ctx context.Context, tx *ent.Tx, h *ent.Hearing, candidates []models.DocketCandidate) error {
	if err := s.dockets.ClearHearingDocketLinks(ctx, tx, h.ID); err != nil {
		return err
	}

	firstPrimary := true
	for _, c := range candidates {
		fuzzyScore := c.FuzzyScore
		if _, err := s.dockets.InsertExtractedDocket(ctx, tx, h.ID, store.ExtractedDocketFields{
			RawText:              c.RawText,
			NormalizedID:         c.Parsed.NormalizedID,
			Year:                 c.Parsed.Year,
			CaseNumber:           c.Parsed.CaseNumber,
			Suffix:               c.Parsed.Suffix,
			UtilitySector:        c.Parsed.UtilitySector,
			Confidence:           c.Confidence,
			Status:               extractedDocketStatus(c.Status),
			MatchType:            extractedDocketMatchType(c.MatchType),
			TriggerPhrase:        c.TriggerPhrase,
			MatchedKnownDocketID: c.MatchedKnownDocketID,
			FuzzyScore:           &fuzzyScore,
			ContextBefore:        c.ContextBefore,
			ContextAfter:         c.ContextAfter,
			SuggestedCorrection:  c.SuggestedCorrection,
		}); err != nil {
			return fmt.Errorf("inserting extracted docket: %w", err)
		}

		if c.Status == models.DocketRejected || c.Parsed.NormalizedID == "" {
			continue
		}

		var matchScore *int
		if c.MatchType != models.MatchNone {
			score := c.FuzzyScore
			matchScore = &score
		}

		d, err := s.dockets.UpsertDocket(ctx, tx, h.StateCode, c.Parsed.CaseNumber, c.Parsed.NormalizedID,
			docketConfidence(c.Status, c.MatchType), c.MatchedKnownDocketID, matchScore)
		if err != nil {
			return fmt.Errorf("upserting docket: %w", err)
		}

		isPrimary := firstPrimary
		firstPrimary = false

		contextSummary := c.ContextBefore + "[" + c.RawText + "]" + c.ContextAfter

		needsReview := s.extractor.thresholds.AlwaysNeedsReview || c.Status != models.DocketAccepted
		if _, err := s.dockets.InsertHearingDocketLink(ctx, tx, h.ID, d.ID, c.Confidence,
			hearingDocketMatchType(c.MatchType), needsReview, isPrimary, contextSummary); err != nil {
			return fmt.Errorf("inserting hearing docket link: %w", err)
		}
	}

	return nil
}

func extractedDocketStatus(s models.DocketCandidateStatus) extracteddocket.Status {
	switch s {
	case models.DocketAccepted:
		return extracteddocket.StatusAccepted
	case models.DocketNeedsReview:
		return extracteddocket.StatusNeedsReview
	default:
		return extracteddocket.StatusRejected
	}
}

func extractedDocketMatchType(m models.MatchType) extracteddocket.MatchType {
	switch m {
	case models.MatchExact:
		return extracteddocket.MatchTypeExact
	case models.MatchFuzzy:
		return extracteddocket.MatchTypeFuzzy
	default:
		return extracteddocket.MatchTypeNone
	}
}

func hearingDocketMatchType(m models.MatchType) hearingdocket.MatchType {
	switch m {
	case models.MatchExact:
		return hearingdocket.MatchTypeExact
	case models.MatchFuzzy:
		return hearingdocket.MatchTypeFuzzy
	default:
		return hearingdocket.MatchTypeNone
	}
}

// docketConfidence maps a candidate's routing outcome to Docket.confidence's
// three-valued enum (verified/possible/unverified), which is coarser than
// ExtractedDocket's status/match_type pair (three values each).
func docketConfidence(status models.DocketCandidateStatus, matchType models.MatchType) entdocket.Confidence {
	switch {
	case status == models.DocketAccepted && matchType == models.MatchExact:
		return entdocket.ConfidenceVerified
	case status == models.DocketAccepted:
		return entdocket.ConfidencePossible
	case status == models.DocketNeedsReview:
		return entdocket.ConfidencePossible
	default:
		return entdocket.ConfidenceUnverified
	}
}
