package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialize_Defaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Initialize(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, 1, cfg.Pipeline.WorkerCount)
	assert.Equal(t, 85, cfg.Docket.ConfidenceAccept)
	assert.Equal(t, 60, cfg.Docket.ConfidenceReview)
	assert.Equal(t, 85, cfg.Entity.UtilityFuzzyAccept)
	assert.Equal(t, 80, cfg.Entity.TopicFuzzyAccept)
}

func TestInitialize_UserOverrides(t *testing.T) {
	dir := t.TempDir()
	yamlContent := `
pipeline:
  worker_count: 3
docket_thresholds:
  confidence_accept: 90
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "canaryscope.yaml"), []byte(yamlContent), 0o644))

	cfg, err := Initialize(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Pipeline.WorkerCount)
	assert.Equal(t, 90, cfg.Docket.ConfidenceAccept)
	// Unset fields keep the built-in default.
	assert.Equal(t, 60, cfg.Docket.ConfidenceReview)
}

func TestInitialize_InvalidPipelineConfig(t *testing.T) {
	dir := t.TempDir()
	yamlContent := `
pipeline:
  worker_count: 0
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "canaryscope.yaml"), []byte(yamlContent), 0o644))

	_, err := Initialize(context.Background(), dir)
	assert.Error(t, err)
}

func TestInitialize_EnvExpansion(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CANARYSCOPE_TEST_DIR", "/mnt/audio")
	yamlContent := `
providers:
  storage_dir: "${CANARYSCOPE_TEST_DIR}"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "providers.yaml"), []byte(yamlContent), 0o644))

	cfg, err := Initialize(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, "/mnt/audio", cfg.Providers.StorageDir)
}
