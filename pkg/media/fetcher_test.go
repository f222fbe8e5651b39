package media

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/canaryscope/canaryscope/ent"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilename_PrefersExternalID(t *testing.T) {
	h := &ent.Hearing{ID: "h-1", ExternalID: "abc-123!"}
	assert.Equal(t, "abc-123", Filename(h, ""))
}

func TestFilename_FallsBackToRSSHashWhenNoExternalID(t *testing.T) {
	h := &ent.Hearing{ID: "h-1", ExternalID: ""}
	name := Filename(h, "https://example.com/item")
	assert.Regexp(t, `^rss_[0-9a-f]{16}$`, name)
}

func TestFilename_FallsBackToHearingIDWhenNothingElse(t *testing.T) {
	h := &ent.Hearing{ID: "h-1", ExternalID: ""}
	assert.Equal(t, "hearing_h-1", Filename(h, ""))
}

func TestPath_IncludesStateSubdirectory(t *testing.T) {
	f := NewFetcher("/audio")
	h := &ent.Hearing{ID: "h-1", ExternalID: "item1", StateCode: "FL"}
	assert.Equal(t, filepath.Join("/audio", "FL", "item1.mp3"), f.Path(h, ""))
}

func TestFetch_ReturnsCachedArtifact_WhenAnyExtensionExists(t *testing.T) {
	dir := t.TempDir()
	f := NewFetcher(dir)
	h := &ent.Hearing{ID: "h-1", ExternalID: "item1", StateCode: "FL"}

	stateDir := filepath.Join(dir, "FL")
	require.NoError(t, os.MkdirAll(stateDir, 0o755))
	existing := filepath.Join(stateDir, "item1.m4a")
	require.NoError(t, os.WriteFile(existing, []byte("audio"), 0o644))

	result, err := f.Fetch(t.Context(), h, "")
	require.NoError(t, err)
	assert.True(t, result.Cached)
	assert.Equal(t, existing, result.Path)
}
