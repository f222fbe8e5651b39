package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/canaryscope/canaryscope/pkg/adapters"
	"github.com/canaryscope/canaryscope/pkg/config"
	"github.com/canaryscope/canaryscope/pkg/pipeline"
	"github.com/canaryscope/canaryscope/pkg/scraper"
	"github.com/canaryscope/canaryscope/pkg/store"
	testdb "github.com/canaryscope/canaryscope/test/database"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	client := testdb.NewTestClient(t)

	hearings := store.NewHearingStore(client.Client)
	jobs := store.NewJobStore(client.Client)
	state := store.NewPipelineStateStore(client.Client)
	sources := store.NewSourceStore(client.Client)

	pool := pipeline.NewWorkerPool("test", client.Client, config.DefaultPipelineConfig(), hearings, jobs, state, map[pipeline.Stage]pipeline.StageRunner{})
	scr := scraper.New(sources, hearings, adapters.NewRegistry())

	return NewServer(client, pool, state, scr)
}

func TestServer_Health(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"healthy"`)
}

func TestServer_PipelineStatus_Idle(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/pipeline/status", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"state":"idle"`)
}

func TestServer_PipelinePauseResume(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/pipeline/pause?by=operator", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "paused")

	st, err := s.state.Get(req.Context())
	require.NoError(t, err)
	assert.True(t, st.Paused)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/pipeline/resume", nil)
	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	st, err = s.state.Get(req.Context())
	require.NoError(t, err)
	assert.False(t, st.Paused)
}

func TestServer_PipelineRunStage_UnknownStage(t *testing.T) {
	s := newTestServer(t)

	body := `{"hearing_id":"does-not-matter","stage":"bogus"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/pipeline/run_stage", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unknown stage")
}

func TestServer_ScraperProgress(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/scraper/progress", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
