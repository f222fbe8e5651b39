package store

import (
	"context"
	"fmt"
	"time"

	"github.com/canaryscope/canaryscope/ent"
	"github.com/canaryscope/canaryscope/ent/docket"
	"github.com/canaryscope/canaryscope/ent/extracteddocket"
	"github.com/canaryscope/canaryscope/ent/hearingdocket"
	"github.com/canaryscope/canaryscope/ent/knowndocket"
	"github.com/google/uuid"
)

// DocketStore implements C3's docket-catalogue contracts (§4.3): upsert
// KnownDocket by (state, docket_number), upsert Docket by normalized_id
// with mention-count bookkeeping, and insert HearingDocket links.
type DocketStore struct {
	client *ent.Client
}

// NewDocketStore creates a new DocketStore.
func NewDocketStore(client *ent.Client) *DocketStore {
	return &DocketStore{client: client}
}

// KnownDocketFields carries the catalogue attributes from a discovery
// adapter pass.
type KnownDocketFields struct {
	Year          *int
	CaseNumber    string
	Suffix        string
	UtilitySector string
	Title         string
	UtilityName   string
	FilingDate    *time.Time
	Status        string
	CaseType      string
	SourceURL     string
}

// UpsertKnownDocket upserts by (state_id, docket_number), maintaining the
// globally-unique normalized_id (§3, §4.3).
func (s *DocketStore) UpsertKnownDocket(ctx context.Context, stateID, docketNumber, normalizedID string, f KnownDocketFields) (*ent.KnownDocket, error) {
	existing, err := s.client.KnownDocket.Query().
		Where(knowndocket.StateIDEQ(stateID), knowndocket.DocketNumberEQ(docketNumber)).
		Only(ctx)
	if err == nil {
		update := existing.Update()
		if f.Title != "" {
			update.SetTitle(f.Title)
		}
		if f.UtilityName != "" {
			update.SetUtilityName(f.UtilityName)
		}
		if f.Status != "" {
			update.SetStatus(f.Status)
		}
		if f.FilingDate != nil {
			update.SetFilingDate(*f.FilingDate)
		}
		return update.Save(ctx)
	}
	if !ent.IsNotFound(err) {
		return nil, fmt.Errorf("query known docket: %w", err)
	}

	builder := s.client.KnownDocket.Create().
		SetID(uuid.New().String()).
		SetStateID(stateID).
		SetDocketNumber(docketNumber).
		SetNormalizedID(normalizedID)

	if f.Year != nil {
		builder.SetYear(*f.Year)
	}
	if f.CaseNumber != "" {
		builder.SetCaseNumber(f.CaseNumber)
	}
	if f.Suffix != "" {
		builder.SetSuffix(f.Suffix)
	}
	if f.UtilitySector != "" {
		builder.SetUtilitySector(f.UtilitySector)
	}
	if f.Title != "" {
		builder.SetTitle(f.Title)
	}
	if f.UtilityName != "" {
		builder.SetUtilityName(f.UtilityName)
	}
	if f.FilingDate != nil {
		builder.SetFilingDate(*f.FilingDate)
	}
	if f.Status != "" {
		builder.SetStatus(f.Status)
	}
	if f.CaseType != "" {
		builder.SetCaseType(f.CaseType)
	}
	if f.SourceURL != "" {
		builder.SetSourceURL(f.SourceURL)
	}

	d, err := builder.Save(ctx)
	if err != nil {
		if ent.IsConstraintError(err) {
			return s.client.KnownDocket.Query().
				Where(knowndocket.NormalizedIDEQ(normalizedID)).
				Only(ctx)
		}
		return nil, fmt.Errorf("create known docket: %w", err)
	}
	return d, nil
}

// GetKnownDocketByNormalizedID looks up a catalogue entry for exact/fuzzy
// matching (§4.7 step 3).
func (s *DocketStore) GetKnownDocketByNormalizedID(ctx context.Context, normalizedID string) (*ent.KnownDocket, error) {
	kd, err := s.client.KnownDocket.Query().
		Where(knowndocket.NormalizedIDEQ(normalizedID)).
		Only(ctx)
	if err != nil {
		if ent.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get known docket: %w", err)
	}
	return kd, nil
}

// ListKnownDocketsByState returns the catalogue for a state, used as the
// candidate pool for fuzzy matching (§4.7 step 3).
func (s *DocketStore) ListKnownDocketsByState(ctx context.Context, stateID string) ([]*ent.KnownDocket, error) {
	return s.client.KnownDocket.Query().
		Where(knowndocket.StateIDEQ(stateID)).
		All(ctx)
}

// UpsertDocket upserts by normalized_id: on first extraction, inserts a new
// Docket; on subsequent mentions, increments mention_count and advances
// last_mentioned_at (§3, §4.3, §4.7 step 8).
func (s *DocketStore) UpsertDocket(ctx context.Context, tx *ent.Tx, stateCode, docketNumber, normalizedID string, confidence docket.Confidence, knownDocketID string, matchScore *int) (*ent.Docket, error) {
	client := tx.Client()
	now := time.Now()

	existing, err := client.Docket.Query().
		Where(docket.NormalizedIDEQ(normalizedID)).
		Only(ctx)
	if err == nil {
		update := existing.Update().
			SetLastMentionedAt(now).
			AddMentionCount(1)
		if confidence != "" {
			update.SetConfidence(confidence)
		}
		if knownDocketID != "" {
			update.SetKnownDocketID(knownDocketID)
		}
		if matchScore != nil {
			update.SetMatchScore(*matchScore)
		}
		return update.Save(ctx)
	}
	if !ent.IsNotFound(err) {
		return nil, fmt.Errorf("query docket: %w", err)
	}

	builder := client.Docket.Create().
		SetID(uuid.New().String()).
		SetStateCode(stateCode).
		SetDocketNumber(docketNumber).
		SetNormalizedID(normalizedID).
		SetFirstSeenAt(now).
		SetLastMentionedAt(now).
		SetMentionCount(1).
		SetConfidence(confidence)

	if knownDocketID != "" {
		builder.SetKnownDocketID(knownDocketID)
	}
	if matchScore != nil {
		builder.SetMatchScore(*matchScore)
	}

	return builder.Save(ctx)
}

// ClearHearingDocketLinks deletes all prior ExtractedDocket rows and
// HearingDocket links for a hearing, implementing the "cleanup-then-recreate"
// idempotent re-run contract (§4.7 step 8, invariant 3 in §8).
func (s *DocketStore) ClearHearingDocketLinks(ctx context.Context, tx *ent.Tx, hearingID string) error {
	if _, err := tx.ExtractedDocket.Delete().
		Where(extracteddocket.HearingIDEQ(hearingID)).
		Exec(ctx); err != nil {
		return fmt.Errorf("clear extracted dockets: %w", err)
	}
	if _, err := tx.HearingDocket.Delete().
		Where(hearingdocket.HearingIDEQ(hearingID)).
		Exec(ctx); err != nil {
		return fmt.Errorf("clear hearing dockets: %w", err)
	}
	return nil
}

// InsertExtractedDocket records one candidate row, accepted or not (§4.7,
// §3 ExtractedDocket — audit trail of every candidate considered).
func (s *DocketStore) InsertExtractedDocket(ctx context.Context, tx *ent.Tx, hearingID string, c ExtractedDocketFields) (*ent.ExtractedDocket, error) {
	builder := tx.Client().ExtractedDocket.Create().
		SetID(uuid.New().String()).
		SetHearingID(hearingID).
		SetRawText(c.RawText).
		SetConfidence(c.Confidence).
		SetStatus(c.Status).
		SetMatchType(c.MatchType)

	if c.NormalizedID != "" {
		builder.SetNormalizedID(c.NormalizedID)
	}
	if c.Year != nil {
		builder.SetYear(*c.Year)
	}
	if c.CaseNumber != "" {
		builder.SetCaseNumber(c.CaseNumber)
	}
	if c.Suffix != "" {
		builder.SetSuffix(c.Suffix)
	}
	if c.UtilitySector != "" {
		builder.SetUtilitySector(c.UtilitySector)
	}
	if c.TriggerPhrase != "" {
		builder.SetTriggerPhrase(c.TriggerPhrase)
	}
	if c.MatchedKnownDocketID != "" {
		builder.SetMatchedKnownDocketID(c.MatchedKnownDocketID)
	}
	if c.FuzzyScore != nil {
		builder.SetFuzzyScore(*c.FuzzyScore)
	}
	if c.ContextBefore != "" {
		builder.SetContextBefore(c.ContextBefore)
	}
	if c.ContextAfter != "" {
		builder.SetContextAfter(c.ContextAfter)
	}
	if c.SuggestedCorrection != "" {
		builder.SetSuggestedCorrection(c.SuggestedCorrection)
	}

	return builder.Save(ctx)
}

// ExtractedDocketFields mirrors the ExtractedDocket entity's optional
// columns; kept in the store package so pkg/docket has no ent dependency
// beyond the enum types it needs for routing decisions.
type ExtractedDocketFields struct {
	RawText              string
	NormalizedID         string
	Year                 *int
	CaseNumber           string
	Suffix               string
	UtilitySector        string
	Confidence           int
	Status               extracteddocket.Status
	MatchType            extracteddocket.MatchType
	TriggerPhrase        string
	MatchedKnownDocketID string
	FuzzyScore           *int
	ContextBefore        string
	ContextAfter         string
	SuggestedCorrection  string
}

// InsertHearingDocketLink creates the many-to-many link for a non-rejected
// candidate (§4.7 step 8).
func (s *DocketStore) InsertHearingDocketLink(ctx context.Context, tx *ent.Tx, hearingID, docketID string, confidenceScore int, matchType hearingdocket.MatchType, needsReview bool, isPrimary bool, contextSummary string) (*ent.HearingDocket, error) {
	builder := tx.Client().HearingDocket.Create().
		SetID(uuid.New().String()).
		SetHearingID(hearingID).
		SetDocketID(docketID).
		SetConfidenceScore(confidenceScore).
		SetMatchType(matchType).
		SetNeedsReview(needsReview).
		SetIsPrimary(isPrimary)

	if contextSummary != "" {
		builder.SetContextSummary(contextSummary)
	}

	return builder.Save(ctx)
}
