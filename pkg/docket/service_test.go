package docket

import (
	"context"
	"testing"

	"github.com/canaryscope/canaryscope/ent/extracteddocket"
	"github.com/canaryscope/canaryscope/ent/hearing"
	"github.com/canaryscope/canaryscope/ent/source"
	"github.com/canaryscope/canaryscope/pkg/config"
	"github.com/canaryscope/canaryscope/pkg/database"
	"github.com/canaryscope/canaryscope/pkg/store"
	testdb "github.com/canaryscope/canaryscope/test/database"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupHearingForDocket(t *testing.T, client *database.Client, title string) string {
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
		SetKind(source.KindVideoChannel).
		SetName("FPSC YouTube").
		SetURL("https://example.com/channel").
		Save(ctx)
	require.NoError(t, err)

	h, err := client.Hearing.Create().
		SetID(uuid.New().String()).
		SetSourceID(src.ID).
		SetStateCode("FL").
		SetExternalID(uuid.New().String()).
		SetTitle(title).
		SetStatus(hearing.StatusAnalyzed).
		Save(ctx)
	require.NoError(t, err)

	return h.ID
}

func TestService_Run_MatchesKnownDocketAndPersists(t *testing.T) {
	client := testdb.NewTestClient(t)
	ctx := context.Background()

	hearingID := setupHearingForDocket(t, client, "Hearing on docket 20240035-GU rate case")

	dockets := store.NewDocketStore(client.Client)
	_, err := dockets.UpsertKnownDocket(ctx, "FL", "20240035-GU", "FL-20240035-GU", store.KnownDocketFields{
		UtilitySector: "gas",
	})
	require.NoError(t, err)

	hearings := store.NewHearingStore(client.Client)
	svc := NewService(NewExtractor(NewPatternRegistry(), config.DefaultDocketThresholds()), dockets, hearings)

	h, err := hearings.Get(ctx, hearingID)
	require.NoError(t, err)

	result := svc.Run(ctx, h)
	require.True(t, result.Success)
	require.NotNil(t, result.WriteArtifact)

	tx, err := client.Client.Tx(ctx)
	require.NoError(t, err)
	require.NoError(t, result.WriteArtifact(ctx, tx))
	require.NoError(t, tx.Commit())

	known, err := dockets.GetKnownDocketByNormalizedID(ctx, "FL-20240035-GU")
	require.NoError(t, err)
	assert.Equal(t, "FL-20240035-GU", known.NormalizedID)

	extracted, err := client.Client.ExtractedDocket.Query().
		Where(extracteddocket.HearingIDEQ(hearingID)).
		Only(ctx)
	require.NoError(t, err)
	assert.Equal(t, extracteddocket.MatchTypeExact, extracted.MatchType)
	require.NotNil(t, extracted.MatchedKnownDocketID)
	assert.Equal(t, known.ID, *extracted.MatchedKnownDocketID)

	updated, err := hearings.Get(ctx, hearingID)
	require.NoError(t, err)
	assert.Equal(t, hearing.StatusAnalyzed, updated.Status)
}

func TestService_Run_ReextractionIsIdempotent(t *testing.T) {
	client := testdb.NewTestClient(t)
	ctx := context.Background()

	hearingID := setupHearingForDocket(t, client, "Discussion of docket 20240035-GU")

	dockets := store.NewDocketStore(client.Client)
	hearings := store.NewHearingStore(client.Client)
	svc := NewService(NewExtractor(NewPatternRegistry(), config.DefaultDocketThresholds()), dockets, hearings)

	h, err := hearings.Get(ctx, hearingID)
	require.NoError(t, err)

	first := svc.Run(ctx, h)
	require.True(t, first.Success)

	second := svc.Run(ctx, h)
	require.True(t, second.Success)

	assert.Equal(t, first.OutputFields["candidates_found"], second.OutputFields["candidates_found"])
}
