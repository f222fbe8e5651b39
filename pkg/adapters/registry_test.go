package adapters

import (
	"testing"

	"github.com/canaryscope/canaryscope/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistry_BuildsAllFourKinds(t *testing.T) {
	cfg := config.DefaultScraperConfig()
	r := DefaultRegistry(cfg)

	videoAdapter, err := r.BuildHearingAdapter("video_channel", map[string]interface{}{"channel_url": "https://example.com/channel"})
	require.NoError(t, err)
	assert.Equal(t, "video_channel", videoAdapter.Kind())

	calAdapter, err := r.BuildHearingAdapter("admin_monitor", map[string]interface{}{"list_url": "https://example.com/list"})
	require.NoError(t, err)
	assert.Equal(t, "admin_monitor", calAdapter.Kind())
	assert.Equal(t, cfg.UserAgent, calAdapter.(*CalendarAdapter).cfg.UserAgent)

	rssAdapter, err := r.BuildHearingAdapter("rss_feed", map[string]interface{}{"feed_url": "https://example.com/feed.xml"})
	require.NoError(t, err)
	assert.Equal(t, "rss_feed", rssAdapter.Kind())

	docketAdapter, err := r.BuildDocketAdapter("api_endpoint", map[string]interface{}{"base_url": "https://example.com", "page_size": float64(50)})
	require.NoError(t, err)
	assert.Equal(t, "api_endpoint", docketAdapter.Kind())
	assert.Equal(t, 50, docketAdapter.(*VendorAPIAdapter).cfg.PageSize)
}

func TestDefaultRegistry_UnknownKind(t *testing.T) {
	r := DefaultRegistry(config.DefaultScraperConfig())
	_, err := r.BuildHearingAdapter("unknown_kind", map[string]interface{}{})
	assert.Error(t, err)
}
