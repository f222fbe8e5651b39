// Package scraper implements C2, the Scraper Orchestrator: drives the
// registered source adapters (pkg/adapters) and upserts their candidates
// into discovered Hearings, isolating per-source faults so one broken
// vendor never aborts the run (§4.2).
package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/canaryscope/canaryscope/ent"
	"github.com/canaryscope/canaryscope/ent/source"
	"github.com/canaryscope/canaryscope/pkg/adapters"
	"github.com/canaryscope/canaryscope/pkg/models"
	"github.com/canaryscope/canaryscope/pkg/store"
)

const maxRecentErrors = 20

// Scraper drives a scrape run. Only one run may be active per process
// (§4.2: "safe to call concurrently only once per process").
type Scraper struct {
	sources  *store.SourceStore
	hearings *store.HearingStore
	registry *adapters.Registry

	mu       sync.Mutex
	running  bool
	stopCh   chan struct{}
	progress models.ScrapeProgress
}

// New creates a new Scraper.
func New(sources *store.SourceStore, hearings *store.HearingStore, registry *adapters.Registry) *Scraper {
	return &Scraper{
		sources:  sources,
		hearings: hearings,
		registry: registry,
		progress: models.ScrapeProgress{Status: models.ScrapeStatusIdle},
	}
}

// RunFilters narrows a scrape run to a subset of sources (§4.2: "run(types?, state?, dry_run?)").
type RunFilters struct {
	Kinds  []string
	State  string
	DryRun bool
}

// start claims the single run-active flag. Returns false if a run is
// already in progress.
func (s *Scraper) start() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return false
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.progress = models.ScrapeProgress{Status: models.ScrapeStatusRunning}
	return true
}

func (s *Scraper) finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
}

// RequestStop signals cooperative cancellation; checked between candidates,
// never mid-item (§4.2).
func (s *Scraper) RequestStop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running && s.stopCh != nil {
		select {
		case <-s.stopCh:
		default:
			close(s.stopCh)
		}
	}
}

func (s *Scraper) stopRequested() bool {
	s.mu.Lock()
	ch := s.stopCh
	s.mu.Unlock()
	if ch == nil {
		return false
	}
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

// Progress returns a snapshot of the current run state (§4.2, §6.3).
func (s *Scraper) Progress() models.ScrapeProgress {
	return s.snapshot()
}

func (s *Scraper) snapshot() models.ScrapeProgress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress
}

// Run drives every enabled source in turn, isolating failures per source.
// Returns an error only if a run is already active or the enabled sources
// cannot be listed; per-source failures are recorded in progress and never
// abort the rest of the run.
func (s *Scraper) Run(ctx context.Context, filters RunFilters) (models.ScrapeProgress, error) {
	if !s.start() {
		return models.ScrapeProgress{}, fmt.Errorf("scrape run already in progress")
	}
	defer s.finish()

	kinds := make([]source.Kind, 0, len(filters.Kinds))
	for _, k := range filters.Kinds {
		kinds = append(kinds, source.Kind(k))
	}

	sources, err := s.sources.ListEnabled(ctx, kinds)
	if err != nil {
		s.setStatus(models.ScrapeStatusError)
		return s.snapshot(), fmt.Errorf("listing enabled sources: %w", err)
	}

	for _, src := range sources {
		if filters.State != "" && src.StateID != filters.State {
			continue
		}
		if s.stopRequested() {
			s.setStatus(models.ScrapeStatusStopping)
			break
		}
		s.setCurrentSource(src.Name)
		s.runSource(ctx, src, filters.DryRun)
	}

	final := models.ScrapeStatusCompleted
	if s.stopRequested() {
		final = models.ScrapeStatusStopping
	}
	s.setStatus(final)
	return s.snapshot(), nil
}

// runSource invokes one source's adapter and upserts its candidates,
// isolating any failure to this source alone (§4.2 steps 1-3, §7).
func (s *Scraper) runSource(ctx context.Context, src *ent.Source, dryRun bool) {
	log := slog.With("source_id", src.ID, "source_name", src.Name, "kind", src.Kind)

	checkedAt := time.Now()
	var maxHearingAt *time.Time

	var since *time.Time
	if src.LastCheckedAt != nil {
		since = src.LastCheckedAt
	}

	candidates, err := s.listCandidates(ctx, src, since)
	if err != nil {
		log.Error("source scrape failed", "error", err)
		s.recordError(err.Error())
		if !dryRun {
			if merr := s.sources.MarkError(ctx, src.ID, checkedAt, models.TruncateError(err.Error())); merr != nil {
				log.Error("failed to record source error", "error", merr)
			}
		}
		return
	}

	s.addItemsFound(len(candidates))

	for _, candidate := range candidates {
		if s.stopRequested() {
			break
		}
		if candidate.Date != nil && (maxHearingAt == nil || candidate.Date.After(*maxHearingAt)) {
			maxHearingAt = candidate.Date
		}
		if dryRun {
			s.addNewHearing()
			continue
		}

		_, created, err := s.hearings.UpsertHearing(ctx, src.ID, src.StateID, candidate.ExternalID, store.HearingFields{
			Title:       candidate.Title,
			Description: candidate.Description,
			HearingDate: candidate.Date,
			MediaURL:    candidate.MediaURL,
			Duration:    candidate.Duration,
		})
		if err != nil {
			log.Error("failed to upsert hearing", "external_id", candidate.ExternalID, "error", err)
			s.recordError(err.Error())
			continue
		}
		if created {
			s.addNewHearing()
		} else {
			s.addExistingHearing()
		}
	}

	if dryRun {
		return
	}
	if err := s.sources.MarkSuccess(ctx, src.ID, checkedAt, maxHearingAt); err != nil {
		log.Error("failed to record source success", "error", err)
	}
}

// listCandidates builds the hearing adapter for this source's kind, lists
// its candidates and, when the adapter supports it, resolves each one via
// FetchDetail. Kinds with no hearing adapter (such as the docket-adapter
// kinds) fail with ErrAdapterNotFound; only HearingCandidate results feed
// C2's hearing upsert.
func (s *Scraper) listCandidates(ctx context.Context, src *ent.Source, since *time.Time) ([]models.HearingCandidate, error) {
	kind := string(src.Kind)

	if adapter, err := s.registry.BuildHearingAdapter(kind, src.Config); err == nil {
		candidates, err := adapter.List(ctx, since)
		if err != nil {
			return nil, &models.AdapterError{SourceID: src.ID, Kind: kind, Err: err}
		}
		if fetcher, ok := adapter.(adapters.DetailFetcher); ok {
			for i := range candidates {
				detailed, err := fetcher.FetchDetail(ctx, candidates[i])
				if err != nil {
					return nil, &models.AdapterError{SourceID: src.ID, Kind: kind, Err: err}
				}
				candidates[i] = detailed
			}
		}
		return candidates, nil
	}

	return nil, &models.AdapterError{SourceID: src.ID, Kind: kind, Err: adapters.ErrAdapterNotFound}
}

func (s *Scraper) setStatus(status models.ScrapeStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress.Status = status
}

func (s *Scraper) setCurrentSource(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress.CurrentSource = name
}

func (s *Scraper) addItemsFound(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress.ItemsFound += n
}

func (s *Scraper) addNewHearing() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress.NewHearings++
}

func (s *Scraper) addExistingHearing() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress.ExistingHearings++
}

func (s *Scraper) recordError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress.Errors++
	truncated := models.TruncateError(msg)
	s.progress.RecentErrors = append(s.progress.RecentErrors, truncated)
	if len(s.progress.RecentErrors) > maxRecentErrors {
		s.progress.RecentErrors = s.progress.RecentErrors[len(s.progress.RecentErrors)-maxRecentErrors:]
	}
}
