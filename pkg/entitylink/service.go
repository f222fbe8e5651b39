package entitylink

import (
	"context"
	"fmt"

	"github.com/canaryscope/canaryscope/ent"
	"github.com/canaryscope/canaryscope/pkg/models"
	"github.com/canaryscope/canaryscope/pkg/store"
)

// Service wires Linker to persistence: loading the Analysis row's
// utilities/topics, matching against the canonical catalogues, and writing
// junction rows with cleanup-then-recreate semantics (§4.10, mirroring
// pkg/docket.Service).
type Service struct {
	linker   *Linker
	entities *store.EntityStore
	hearings *store.HearingStore
}

// NewService creates a new Service.
func NewService(linker *Linker, entities *store.EntityStore, hearings *store.HearingStore) *Service {
	return &Service{linker: linker, entities: entities, hearings: hearings}
}

// LinkResult holds the candidates computed for one hearing, ready to Persist.
type LinkResult struct {
	Utilities []models.EntityCandidate
	Topics    []models.EntityCandidate
}

// Link loads the hearing's Analysis output and matches every extracted
// utility/topic name against its canonical catalogue (§4.10 steps 1-4). A
// missing Analysis row (short-circuited or not yet run) yields an empty
// result rather than an error.
func (s *Service) Link(ctx context.Context, hearingID string) (LinkResult, error) {
	a, err := s.hearings.AnalysisFor(ctx, hearingID)
	if err != nil {
		if err == store.ErrNotFound {
			return LinkResult{}, nil
		}
		return LinkResult{}, fmt.Errorf("loading analysis: %w", err)
	}

	utilityCatalogue, err := s.utilityCatalogue(ctx)
	if err != nil {
		return LinkResult{}, err
	}
	topicCatalogue, err := s.topicCatalogue(ctx)
	if err != nil {
		return LinkResult{}, err
	}

	result := LinkResult{
		Utilities: make([]models.EntityCandidate, 0, len(a.Utilities)),
		Topics:    make([]models.EntityCandidate, 0, len(a.Topics)),
	}
	for _, name := range a.Utilities {
		result.Utilities = append(result.Utilities, s.linker.Link(name, "", "", KindUtility, utilityCatalogue))
	}
	for _, name := range a.Topics {
		result.Topics = append(result.Topics, s.linker.Link(name, "", "", KindTopic, topicCatalogue))
	}
	return result, nil
}

func (s *Service) utilityCatalogue(ctx context.Context) ([]CatalogueEntry, error) {
	records, err := s.entities.ListUtilities(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading utility catalogue: %w", err)
	}
	entries := make([]CatalogueEntry, 0, len(records))
	for _, r := range records {
		entries = append(entries, CatalogueEntry{ID: r.ID, Name: r.Name, Aliases: r.Aliases})
	}
	return entries, nil
}

func (s *Service) topicCatalogue(ctx context.Context) ([]CatalogueEntry, error) {
	records, err := s.entities.ListTopics(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading topic catalogue: %w", err)
	}
	entries := make([]CatalogueEntry, 0, len(records))
	for _, r := range records {
		entries = append(entries, CatalogueEntry{ID: r.ID, Name: r.Name, Aliases: r.Aliases})
	}
	return entries, nil
}

// Persist implements the cleanup-then-recreate contract for mentions
// (invariant 3 in §8): clears prior UtilityMention/TopicMention rows for the
// hearing, then writes the fresh link set and bumps mention_count on every
// matched catalogue record (§4.10 step 6).
func (s *Service) Persist(ctx context.Context, tx *ent.Tx, hearingID string, result LinkResult) error {
	if err := s.entities.ClearMentionsForHearing(ctx, tx, hearingID); err != nil {
		return err
	}

	for _, c := range result.Utilities {
		var matchScore *int
		if c.MatchedID != "" {
			score := c.MatchScore
			matchScore = &score
		}
		if _, err := s.entities.InsertUtilityMention(ctx, tx, hearingID, store.UtilityMentionFields{
			ExtractedName: c.ExtractedName,
			MatchedID:     c.MatchedID,
			MatchScore:    matchScore,
			Confidence:    c.Confidence,
			NeedsReview:   c.NeedsReview,
			Role:          c.Role,
		}); err != nil {
			return fmt.Errorf("inserting utility mention: %w", err)
		}
		if c.MatchedID != "" {
			if err := s.entities.IncrementUtilityMentions(ctx, tx, c.MatchedID); err != nil {
				return fmt.Errorf("incrementing utility mention count: %w", err)
			}
		}
	}

	for _, c := range result.Topics {
		var matchScore *int
		if c.MatchedID != "" {
			score := c.MatchScore
			matchScore = &score
		}
		if _, err := s.entities.InsertTopicMention(ctx, tx, hearingID, store.TopicMentionFields{
			ExtractedName: c.ExtractedName,
			MatchedID:     c.MatchedID,
			MatchScore:    matchScore,
			Confidence:    c.Confidence,
			NeedsReview:   c.NeedsReview,
			Relevance:     c.Relevance,
		}); err != nil {
			return fmt.Errorf("inserting topic mention: %w", err)
		}
		if c.MatchedID != "" {
			if err := s.entities.IncrementTopicMentions(ctx, tx, c.MatchedID); err != nil {
				return fmt.Errorf("incrementing topic mention count: %w", err)
			}
		}
	}

	return nil
}
