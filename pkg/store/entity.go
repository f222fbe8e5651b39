package store

import (
	"context"
	"fmt"

	"github.com/canaryscope/canaryscope/ent"
	"github.com/canaryscope/canaryscope/ent/topicmention"
	"github.com/canaryscope/canaryscope/ent/topicrecord"
	"github.com/canaryscope/canaryscope/ent/utilitymention"
	"github.com/canaryscope/canaryscope/ent/utilityrecord"
	"github.com/google/uuid"
)

// EntityStore implements C10's canonical catalogue lookups and mention
// bookkeeping for utilities and topics, mirroring DocketStore's shape
// (§4.10).
type EntityStore struct {
	client *ent.Client
}

// NewEntityStore creates a new EntityStore.
func NewEntityStore(client *ent.Client) *EntityStore {
	return &EntityStore{client: client}
}

// ListUtilities returns the full utility catalogue, the candidate pool for
// exact/alias/fuzzy matching (§4.10 step 2).
func (s *EntityStore) ListUtilities(ctx context.Context) ([]*ent.UtilityRecord, error) {
	return s.client.UtilityRecord.Query().All(ctx)
}

// ListTopics returns the full topic catalogue (§4.10 step 2).
func (s *EntityStore) ListTopics(ctx context.Context) ([]*ent.TopicRecord, error) {
	return s.client.TopicRecord.Query().All(ctx)
}

// GetState returns the reference row for a state code, used by the
// Transcriber to seed its initial_prompt with the commission's name
// (§4.5).
func (s *EntityStore) GetState(ctx context.Context, code string) (*ent.State, error) {
	st, err := s.client.State.Get(ctx, code)
	if err != nil {
		if ent.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get state: %w", err)
	}
	return st, nil
}

// UpsertUtility inserts a catalogue row for a name not yet known, or returns
// the existing one (§4.10 step 5: unresolved mentions may seed new records).
func (s *EntityStore) UpsertUtility(ctx context.Context, name, sector string) (*ent.UtilityRecord, error) {
	existing, err := s.client.UtilityRecord.Query().Where(utilityrecord.NameEQ(name)).Only(ctx)
	if err == nil {
		return existing, nil
	}
	if !ent.IsNotFound(err) {
		return nil, fmt.Errorf("query utility record: %w", err)
	}
	builder := s.client.UtilityRecord.Create().SetID(uuid.New().String()).SetName(name)
	if sector != "" {
		builder.SetSector(sector)
	}
	rec, err := builder.Save(ctx)
	if err != nil {
		if ent.IsConstraintError(err) {
			return s.client.UtilityRecord.Query().Where(utilityrecord.NameEQ(name)).Only(ctx)
		}
		return nil, fmt.Errorf("create utility record: %w", err)
	}
	return rec, nil
}

// UpsertTopic inserts a catalogue row for a name not yet known, or returns
// the existing one.
func (s *EntityStore) UpsertTopic(ctx context.Context, name string) (*ent.TopicRecord, error) {
	existing, err := s.client.TopicRecord.Query().Where(topicrecord.NameEQ(name)).Only(ctx)
	if err == nil {
		return existing, nil
	}
	if !ent.IsNotFound(err) {
		return nil, fmt.Errorf("query topic record: %w", err)
	}
	rec, err := s.client.TopicRecord.Create().SetID(uuid.New().String()).SetName(name).Save(ctx)
	if err != nil {
		if ent.IsConstraintError(err) {
			return s.client.TopicRecord.Query().Where(topicrecord.NameEQ(name)).Only(ctx)
		}
		return nil, fmt.Errorf("create topic record: %w", err)
	}
	return rec, nil
}

// IncrementUtilityMentions bumps mention_count on a matched catalogue row,
// in the same transaction as the mention insert (§4.10 step 6).
func (s *EntityStore) IncrementUtilityMentions(ctx context.Context, tx *ent.Tx, id string) error {
	return tx.Client().UtilityRecord.UpdateOneID(id).AddMentionCount(1).Exec(ctx)
}

// IncrementTopicMentions bumps mention_count on a matched catalogue row.
func (s *EntityStore) IncrementTopicMentions(ctx context.Context, tx *ent.Tx, id string) error {
	return tx.Client().TopicRecord.UpdateOneID(id).AddMentionCount(1).Exec(ctx)
}

// ClearMentionsForHearing deletes prior mention rows for idempotent
// re-extraction, mirroring DocketStore.ClearHearingDocketLinks (invariant 3
// in §8).
func (s *EntityStore) ClearMentionsForHearing(ctx context.Context, tx *ent.Tx, hearingID string) error {
	if _, err := tx.UtilityMention.Delete().
		Where(utilitymention.HearingIDEQ(hearingID)).
		Exec(ctx); err != nil {
		return fmt.Errorf("clear utility mentions: %w", err)
	}
	if _, err := tx.TopicMention.Delete().
		Where(topicmention.HearingIDEQ(hearingID)).
		Exec(ctx); err != nil {
		return fmt.Errorf("clear topic mentions: %w", err)
	}
	return nil
}

// UtilityMentionFields mirrors UtilityMention's optional columns.
type UtilityMentionFields struct {
	ExtractedName string
	MatchedID     string
	MatchScore    *int
	Confidence    int
	NeedsReview   bool
	Role          string
}

// InsertUtilityMention records one extracted mention (§4.10 step 6).
func (s *EntityStore) InsertUtilityMention(ctx context.Context, tx *ent.Tx, hearingID string, f UtilityMentionFields) (*ent.UtilityMention, error) {
	builder := tx.Client().UtilityMention.Create().
		SetID(uuid.New().String()).
		SetHearingID(hearingID).
		SetExtractedName(f.ExtractedName).
		SetConfidence(f.Confidence).
		SetNeedsReview(f.NeedsReview)
	if f.MatchedID != "" {
		builder.SetMatchedID(f.MatchedID)
	}
	if f.MatchScore != nil {
		builder.SetMatchScore(*f.MatchScore)
	}
	if f.Role != "" {
		builder.SetRole(f.Role)
	}
	return builder.Save(ctx)
}

// TopicMentionFields mirrors TopicMention's optional columns.
type TopicMentionFields struct {
	ExtractedName string
	MatchedID     string
	MatchScore    *int
	Confidence    int
	NeedsReview   bool
	Relevance     string
}

// InsertTopicMention records one extracted mention.
func (s *EntityStore) InsertTopicMention(ctx context.Context, tx *ent.Tx, hearingID string, f TopicMentionFields) (*ent.TopicMention, error) {
	builder := tx.Client().TopicMention.Create().
		SetID(uuid.New().String()).
		SetHearingID(hearingID).
		SetExtractedName(f.ExtractedName).
		SetConfidence(f.Confidence).
		SetNeedsReview(f.NeedsReview)
	if f.MatchedID != "" {
		builder.SetMatchedID(f.MatchedID)
	}
	if f.MatchScore != nil {
		builder.SetMatchScore(*f.MatchScore)
	}
	if f.Relevance != "" {
		builder.SetRelevance(f.Relevance)
	}
	return builder.Save(ctx)
}
