package transcribe

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/canaryscope/canaryscope/ent"
	"github.com/canaryscope/canaryscope/pkg/store"
	testdb "github.com/canaryscope/canaryscope/test/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct{}

func (fakeProvider) Name() string  { return "fake" }
func (fakeProvider) Model() string { return "fake-v1" }
func (fakeProvider) Transcribe(ctx context.Context, audioPath, initialPrompt string) (string, []Segment, error) {
	return "the rate is ten killer one hours", []Segment{
		{StartTime: 0, EndTime: 1.5, Text: "killer one pricing"},
	}, nil
}

func TestService_Transcribe_AppliesCorrectionsAndDensifiesSegments(t *testing.T) {
	client := testdb.NewTestClient(t)
	ctx := context.Background()

	_, err := client.State.Create().
		SetID("FL").
		SetName("Florida").
		SetCommissionName("Florida Public Service Commission").
		Save(ctx)
	require.NoError(t, err)

	entities := store.NewEntityStore(client.Client)
	svc := &Service{provider: fakeProvider{}, entities: entities}

	audioPath := filepath.Join(t.TempDir(), "hearing.mp3")
	require.NoError(t, os.WriteFile(audioPath, []byte("tiny"), 0o644))

	h := &ent.Hearing{ID: "h-1", StateCode: "FL", Title: "Rate case hearing"}

	out, err := svc.Transcribe(ctx, h, audioPath)
	require.NoError(t, err)

	assert.Equal(t, "the rate is ten kilowatt hours", out.FullText)
	require.Len(t, out.Segments, 1)
	assert.Equal(t, "kilowatt pricing", out.Segments[0].Text)
	assert.Equal(t, 0, out.Segments[0].Index)
	assert.Equal(t, "fake-v1", out.Model)
}
