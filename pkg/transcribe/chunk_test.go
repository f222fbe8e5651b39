package transcribe

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNeedsChunking_SmallFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "small.mp3")
	require.NoError(t, os.WriteFile(path, make([]byte, 1024), 0o644))

	needs, err := needsChunking(path)
	require.NoError(t, err)
	assert.False(t, needs)
}

func TestNeedsChunking_LargeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "large.mp3")
	require.NoError(t, os.WriteFile(path, make([]byte, maxFileSizeBytes+1), 0o644))

	needs, err := needsChunking(path)
	require.NoError(t, err)
	assert.True(t, needs)
}

func TestNeedsChunking_MissingFile(t *testing.T) {
	_, err := needsChunking(filepath.Join(t.TempDir(), "missing.mp3"))
	assert.Error(t, err)
}
