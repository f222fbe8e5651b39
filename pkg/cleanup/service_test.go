package cleanup

import (
	"context"
	"testing"
	"time"

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

func setupHearing(t *testing.T, client *database.Client, status hearing.Status, createdAt time.Time) string {
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
		SetTitle("test hearing").
		SetStatus(status).
		Save(ctx)
	require.NoError(t, err)

	require.NoError(t, client.Hearing.UpdateOneID(h.ID).SetCreatedAt(createdAt).Exec(ctx))
	return h.ID
}

func TestService_SoftDeletesOldTerminalHearings(t *testing.T) {
	client := testdb.NewTestClient(t)
	hearings := store.NewHearingStore(client.Client)
	ctx := context.Background()

	id := setupHearing(t, client, hearing.StatusComplete, time.Now().Add(-400*24*time.Hour))

	cfg := &config.RetentionConfig{HearingTTL: 365 * 24 * time.Hour, CleanupInterval: time.Hour}
	svc := NewService(cfg, hearings)
	svc.runAll(ctx)

	h, err := client.Hearing.Get(ctx, id)
	require.NoError(t, err)
	assert.NotNil(t, h.DeletedAt)
}

func TestService_PreservesRecentHearings(t *testing.T) {
	client := testdb.NewTestClient(t)
	hearings := store.NewHearingStore(client.Client)
	ctx := context.Background()

	id := setupHearing(t, client, hearing.StatusComplete, time.Now())

	cfg := &config.RetentionConfig{HearingTTL: 365 * 24 * time.Hour, CleanupInterval: time.Hour}
	svc := NewService(cfg, hearings)
	svc.runAll(ctx)

	h, err := client.Hearing.Get(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, h.DeletedAt)
}

func TestService_PreservesOldActiveHearings(t *testing.T) {
	client := testdb.NewTestClient(t)
	hearings := store.NewHearingStore(client.Client)
	ctx := context.Background()

	id := setupHearing(t, client, hearing.StatusDiscovered, time.Now().Add(-400*24*time.Hour))

	cfg := &config.RetentionConfig{HearingTTL: 365 * 24 * time.Hour, CleanupInterval: time.Hour}
	svc := NewService(cfg, hearings)
	svc.runAll(ctx)

	h, err := client.Hearing.Get(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, h.DeletedAt)
}
