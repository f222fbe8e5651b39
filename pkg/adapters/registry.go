package adapters

import (
	"encoding/json"
	"fmt"

	"github.com/canaryscope/canaryscope/pkg/config"
)

// DefaultRegistry builds a Registry with all four source-kind families
// wired, decoding each Source row's config blob into the adapter's typed
// config and injecting the scraper's shared HTTP settings (§4.1, §6.1).
func DefaultRegistry(cfg *config.ScraperConfig) *Registry {
	r := NewRegistry()

	r.RegisterHearingAdapter("video_channel", func(sourceConfig map[string]interface{}) (HearingAdapter, error) {
		var vc VideoChannelConfig
		if err := decodeSourceConfig(sourceConfig, &vc); err != nil {
			return nil, err
		}
		return NewVideoChannelAdapter(vc), nil
	})

	r.RegisterHearingAdapter("admin_monitor", func(sourceConfig map[string]interface{}) (HearingAdapter, error) {
		var cc CalendarConfig
		if err := decodeSourceConfig(sourceConfig, &cc); err != nil {
			return nil, err
		}
		cc.UserAgent = cfg.UserAgent
		cc.RequestTimeout = cfg.RequestTimeout
		return NewCalendarAdapter(cc), nil
	})

	r.RegisterHearingAdapter("rss_feed", func(sourceConfig map[string]interface{}) (HearingAdapter, error) {
		var rc RSSConfig
		if err := decodeSourceConfig(sourceConfig, &rc); err != nil {
			return nil, err
		}
		rc.RequestTimeout = cfg.RequestTimeout
		return NewRSSAdapter(rc), nil
	})

	r.RegisterDocketAdapter("api_endpoint", func(sourceConfig map[string]interface{}) (DocketAdapter, error) {
		var vc VendorAPIConfig
		if err := decodeSourceConfig(sourceConfig, &vc); err != nil {
			return nil, err
		}
		vc.RequestTimeout = cfg.RequestTimeout
		return NewVendorAPIAdapter(vc), nil
	})

	return r
}

// decodeSourceConfig round-trips a Source.Config JSON blob into a typed
// adapter config struct via its json tags.
func decodeSourceConfig(sourceConfig map[string]interface{}, target interface{}) error {
	raw, err := json.Marshal(sourceConfig)
	if err != nil {
		return fmt.Errorf("marshal source config: %w", err)
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode source config: %w", err)
	}
	return nil
}
