package store

import (
	"context"
	"fmt"
	"time"

	"github.com/canaryscope/canaryscope/ent"
	"github.com/canaryscope/canaryscope/ent/source"
)

// SourceStore persists Source rows and the scraper's per-source checkpoint
// fields (§4.2 step 3).
type SourceStore struct {
	client *ent.Client
}

// NewSourceStore creates a new SourceStore.
func NewSourceStore(client *ent.Client) *SourceStore {
	return &SourceStore{client: client}
}

// ListEnabled returns enabled sources, optionally filtered to a kind subset,
// for a scraper run (§4.2 step 1).
func (s *SourceStore) ListEnabled(ctx context.Context, kinds []source.Kind) ([]*ent.Source, error) {
	q := s.client.Source.Query().Where(source.EnabledEQ(true))
	if len(kinds) > 0 {
		q = q.Where(source.KindIn(kinds...))
	}
	return q.All(ctx)
}

// Get retrieves a Source by id.
func (s *SourceStore) Get(ctx context.Context, id string) (*ent.Source, error) {
	src, err := s.client.Source.Get(ctx, id)
	if err != nil {
		if ent.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get source: %w", err)
	}
	return src, nil
}

// MarkSuccess records a clean scrape pass: advances last_checked_at, and
// last_hearing_at if a newer candidate was observed, and clears any error
// (§4.2 step 3).
func (s *SourceStore) MarkSuccess(ctx context.Context, id string, checkedAt time.Time, maxHearingAt *time.Time) error {
	update := s.client.Source.UpdateOneID(id).
		SetStatus(source.StatusActive).
		SetLastCheckedAt(checkedAt).
		ClearErrorMessage()
	if maxHearingAt != nil {
		update = update.SetLastHearingAt(*maxHearingAt)
	}
	if err := update.Exec(ctx); err != nil {
		if ent.IsNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("mark source success: %w", err)
	}
	return nil
}

// MarkError isolates a single source's failure without aborting the rest
// of the scrape run (§4.2 step 4, §7: "per-source error isolation").
func (s *SourceStore) MarkError(ctx context.Context, id string, checkedAt time.Time, message string) error {
	err := s.client.Source.UpdateOneID(id).
		SetStatus(source.StatusError).
		SetLastCheckedAt(checkedAt).
		SetErrorMessage(message).
		Exec(ctx)
	if err != nil {
		if ent.IsNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("mark source error: %w", err)
	}
	return nil
}
