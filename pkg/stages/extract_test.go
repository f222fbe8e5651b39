package stages

import (
	"context"
	"testing"

	"github.com/canaryscope/canaryscope/ent/extracteddocket"
	"github.com/canaryscope/canaryscope/ent/hearing"
	"github.com/canaryscope/canaryscope/ent/source"
	"github.com/canaryscope/canaryscope/pkg/config"
	"github.com/canaryscope/canaryscope/pkg/database"
	"github.com/canaryscope/canaryscope/pkg/docket"
	"github.com/canaryscope/canaryscope/pkg/entitylink"
	"github.com/canaryscope/canaryscope/pkg/store"
	testdb "github.com/canaryscope/canaryscope/test/database"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupExtractHearing(t *testing.T, client *database.Client, title string) string {
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

func TestExtractRunner_Run_PersistsDocketAndEntityResults(t *testing.T) {
	client := testdb.NewTestClient(t)
	ctx := context.Background()

	hearingID := setupExtractHearing(t, client, "Hearing on docket 20240035-GU rate case")

	dockets := store.NewDocketStore(client.Client)
	entities := store.NewEntityStore(client.Client)
	hearings := store.NewHearingStore(client.Client)

	docketExtractor := docket.NewExtractor(docket.NewPatternRegistry(), config.DefaultDocketThresholds())
	docketService := docket.NewService(docketExtractor, dockets, hearings)

	linker := entitylink.NewLinker(config.DefaultEntityThresholds())
	entityService := entitylink.NewService(linker, entities, hearings)

	runner := NewExtractRunner(docketService, entityService)

	h, err := hearings.Get(ctx, hearingID)
	require.NoError(t, err)

	result := runner.Run(ctx, h)
	require.True(t, result.Success)
	assert.Equal(t, 1, result.OutputFields["docket_candidates_found"])

	// Run leaves persistence to its WriteArtifact closure, which the
	// orchestrator commits alongside the status advance (§5); drive it the
	// same way here to exercise the actual writes.
	require.NotNil(t, result.WriteArtifact)
	tx, err := client.Client.Tx(ctx)
	require.NoError(t, err)
	require.NoError(t, result.WriteArtifact(ctx, tx))
	require.NoError(t, tx.Commit())

	updated, err := hearings.Get(ctx, hearingID)
	require.NoError(t, err)
	assert.Equal(t, hearing.StatusAnalyzed, updated.Status)

	extracted, err := client.Client.ExtractedDocket.Query().
		Where(extracteddocket.HearingIDEQ(hearingID)).
		All(ctx)
	require.NoError(t, err)
	assert.Len(t, extracted, 1)
}
