package scraper

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/canaryscope/canaryscope/ent/source"
	"github.com/canaryscope/canaryscope/pkg/adapters"
	"github.com/canaryscope/canaryscope/pkg/database"
	"github.com/canaryscope/canaryscope/pkg/models"
	"github.com/canaryscope/canaryscope/pkg/store"
	testdb "github.com/canaryscope/canaryscope/test/database"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHearingAdapter struct {
	kind       string
	candidates []models.HearingCandidate
	err        error
}

func (a fakeHearingAdapter) Kind() string { return a.kind }
func (a fakeHearingAdapter) List(ctx context.Context, since *time.Time) ([]models.HearingCandidate, error) {
	if a.err != nil {
		return nil, a.err
	}
	return a.candidates, nil
}

func registryWithAdapter(t *testing.T, kind string, adapter adapters.HearingAdapter) *adapters.Registry {
	t.Helper()
	r := adapters.NewRegistry()
	r.RegisterHearingAdapter(kind, func(map[string]interface{}) (adapters.HearingAdapter, error) {
		return adapter, nil
	})
	return r
}

func createSource(t *testing.T, client *database.Client, kind source.Kind, name string) string {
	t.Helper()
	ctx := context.Background()
	_, err := client.State.Create().
		SetID("FL").
		SetName("Florida").
		SetCommissionName("Florida Public Service Commission").
		Save(ctx)
	if err != nil {
		require.Contains(t, err.Error(), "already exists")
	}
	src, err := client.Source.Create().
		SetID(uuid.New().String()).
		SetStateID("FL").
		SetKind(kind).
		SetName(name).
		SetURL("https://example.com/" + name).
		Save(ctx)
	require.NoError(t, err)
	return src.ID
}

func TestScraper_Run_UpsertsNewHearings(t *testing.T) {
	client := testdb.NewTestClient(t)
	createSource(t, client, source.Kind("rss_feed"), "FPSC RSS")

	adapter := fakeHearingAdapter{kind: "rss_feed", candidates: []models.HearingCandidate{
		{ExternalID: "ext-1", Title: "Rate Case Hearing"},
		{ExternalID: "ext-2", Title: "Fuel Adjustment Hearing"},
	}}
	registry := registryWithAdapter(t, "rss_feed", adapter)

	sources := store.NewSourceStore(client.Client)
	hearings := store.NewHearingStore(client.Client)
	s := New(sources, hearings, registry)

	progress, err := s.Run(context.Background(), RunFilters{})
	require.NoError(t, err)
	assert.Equal(t, models.ScrapeStatusCompleted, progress.Status)
	assert.Equal(t, 2, progress.ItemsFound)
	assert.Equal(t, 2, progress.NewHearings)
	assert.Equal(t, 0, progress.Errors)
}

func TestScraper_Run_IsIdempotentOnRerun(t *testing.T) {
	client := testdb.NewTestClient(t)
	createSource(t, client, source.Kind("rss_feed"), "FPSC RSS")

	adapter := fakeHearingAdapter{kind: "rss_feed", candidates: []models.HearingCandidate{
		{ExternalID: "ext-1", Title: "Rate Case Hearing"},
	}}
	registry := registryWithAdapter(t, "rss_feed", adapter)

	sources := store.NewSourceStore(client.Client)
	hearings := store.NewHearingStore(client.Client)
	s := New(sources, hearings, registry)

	_, err := s.Run(context.Background(), RunFilters{})
	require.NoError(t, err)

	progress, err := s.Run(context.Background(), RunFilters{})
	require.NoError(t, err)
	assert.Equal(t, 0, progress.NewHearings)
	assert.Equal(t, 1, progress.ExistingHearings)
}

func TestScraper_Run_IsolatesPerSourceFailure(t *testing.T) {
	client := testdb.NewTestClient(t)
	createSource(t, client, source.Kind("rss_feed"), "Broken RSS")

	adapter := fakeHearingAdapter{kind: "rss_feed", err: fmt.Errorf("feed unreachable")}
	registry := registryWithAdapter(t, "rss_feed", adapter)

	sources := store.NewSourceStore(client.Client)
	hearings := store.NewHearingStore(client.Client)
	s := New(sources, hearings, registry)

	progress, err := s.Run(context.Background(), RunFilters{})
	require.NoError(t, err)
	assert.Equal(t, models.ScrapeStatusCompleted, progress.Status)
	assert.Equal(t, 1, progress.Errors)
}

func TestScraper_Run_RejectsConcurrentRun(t *testing.T) {
	client := testdb.NewTestClient(t)
	registry := adapters.NewRegistry()
	sources := store.NewSourceStore(client.Client)
	hearings := store.NewHearingStore(client.Client)
	s := New(sources, hearings, registry)

	s.start()
	defer s.finish()

	_, err := s.Run(context.Background(), RunFilters{})
	assert.Error(t, err)
}

func TestScraper_Progress_ReflectsIdleBeforeRun(t *testing.T) {
	client := testdb.NewTestClient(t)
	registry := adapters.NewRegistry()
	sources := store.NewSourceStore(client.Client)
	hearings := store.NewHearingStore(client.Client)
	s := New(sources, hearings, registry)

	assert.Equal(t, models.ScrapeStatusIdle, s.Progress().Status)
}
