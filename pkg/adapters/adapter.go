// Package adapters implements C1, the Source Adapters: pure functions of
// (config, since_marker) to a stream of candidates, with no database
// access of their own (§4.1, §6.1). Four families are provided — video
// channel, calendar/meeting, RSS/Atom, and vendor docket-catalogue API —
// dispatched by source.kind through a central Registry, the way the
// teacher's MCP client factory builds a client per server id from that
// server's config (pkg/mcp/client_factory.go).
package adapters

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/canaryscope/canaryscope/pkg/models"
)

// HearingAdapter lists HearingCandidate records since a marker. The three
// recording-oriented families (video channel, calendar/meeting, RSS/Atom)
// implement this.
type HearingAdapter interface {
	Kind() string
	List(ctx context.Context, since *time.Time) ([]models.HearingCandidate, error)
}

// DetailFetcher is an optional second interface a HearingAdapter may also
// implement when its listing round-trip doesn't carry everything C2 needs
// (§6.1: "fetch_detail(item) -> augmented item", used by the calendar/
// meeting adapter to resolve the HLS playlist URL per meeting).
type DetailFetcher interface {
	FetchDetail(ctx context.Context, candidate models.HearingCandidate) (models.HearingCandidate, error)
}

// DocketAdapter lists DocketRecord catalogue entries since a marker. The
// vendor API family implements this instead of HearingAdapter, since it
// discovers dockets, not recordings (§4.1).
type DocketAdapter interface {
	Kind() string
	ListDockets(ctx context.Context, since *time.Time) ([]models.DocketRecord, error)
}

// HearingAdapterFactory builds a HearingAdapter from one Source row's
// adapter-private config (§4.1: "pagination, rate limits, and filter
// parameters are adapter-private").
type HearingAdapterFactory func(sourceConfig map[string]interface{}) (HearingAdapter, error)

// DocketAdapterFactory builds a DocketAdapter from a Source's config.
type DocketAdapterFactory func(sourceConfig map[string]interface{}) (DocketAdapter, error)

// Registry dispatches adapter construction by source.kind (§6.1: "a central
// registry dispatches by source.kind"), mirroring config.MCPServerRegistry's
// locked map-plus-mutex shape. A kind may have more than one live Source
// row (e.g. two video channels for the same state), so the registry holds
// factories, not instances — one adapter is built fresh per scrape pass.
type Registry struct {
	mu       sync.RWMutex
	hearings map[string]HearingAdapterFactory
	dockets  map[string]DocketAdapterFactory
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		hearings: make(map[string]HearingAdapterFactory),
		dockets:  make(map[string]DocketAdapterFactory),
	}
}

// RegisterHearingAdapter wires a factory for one of the three
// recording-oriented kinds ("video_channel", "admin_monitor", "rss_feed").
func (r *Registry) RegisterHearingAdapter(kind string, factory HearingAdapterFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hearings[kind] = factory
}

// RegisterDocketAdapter wires the vendor API ("api_endpoint") factory.
func (r *Registry) RegisterDocketAdapter(kind string, factory DocketAdapterFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dockets[kind] = factory
}

// BuildHearingAdapter constructs the adapter for one Source row.
func (r *Registry) BuildHearingAdapter(kind string, sourceConfig map[string]interface{}) (HearingAdapter, error) {
	r.mu.RLock()
	factory, ok := r.hearings[kind]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: no hearing adapter registered for kind=%s", ErrAdapterNotFound, kind)
	}
	return factory(sourceConfig)
}

// BuildDocketAdapter constructs the vendor adapter for one Source row.
func (r *Registry) BuildDocketAdapter(kind string, sourceConfig map[string]interface{}) (DocketAdapter, error) {
	r.mu.RLock()
	factory, ok := r.dockets[kind]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: no docket adapter registered for kind=%s", ErrAdapterNotFound, kind)
	}
	return factory(sourceConfig)
}

// ErrAdapterNotFound indicates no factory is registered for a source's kind.
var ErrAdapterNotFound = fmt.Errorf("adapter not found")
