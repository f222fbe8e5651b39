package adapters

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/canaryscope/canaryscope/pkg/models"
)

// CalendarConfig is a Source.Config payload for the calendar/meeting
// family. ListURL takes a POST with DirectionParam in its form body; each
// listed row's data-detail-url attribute becomes the candidate's MediaURL,
// the per-meeting page FetchDetail loads to find the embedded HLS <source>
// tag.
type CalendarConfig struct {
	ListURL        string `json:"list_url"`
	DirectionParam string `json:"direction_param"`
	Direction      string `json:"direction"` // the value sent for DirectionParam, e.g. "past"

	// UserAgent is sent on every request; several meeting-archive vendors
	// return 403 to anything that looks like a bot or script (§4.1). Set
	// from config.ScraperConfig.UserAgent by the registry wiring, not read
	// from the source's own config blob.
	UserAgent string `json:"-"`
	// RequestTimeout bounds each round-trip. Set from
	// config.ScraperConfig.RequestTimeout, not read from the source's own
	// config blob.
	RequestTimeout time.Duration `json:"-"`
}

// CalendarAdapter scrapes a meeting-archive HTML site: one POST for the
// listing, one GET per meeting for the HLS playlist URL (§4.1).
type CalendarAdapter struct {
	cfg        CalendarConfig
	httpClient *http.Client
}

// NewCalendarAdapter creates a new CalendarAdapter.
func NewCalendarAdapter(cfg CalendarConfig) *CalendarAdapter {
	timeout := cfg.RequestTimeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &CalendarAdapter{cfg: cfg, httpClient: &http.Client{Timeout: timeout}}
}

func (a *CalendarAdapter) Kind() string { return "admin_monitor" }

// userAgent falls back to a browser-like default if the registry wiring
// didn't set one, since several meeting-archive vendors 403 anything that
// looks like a bot or script (§4.1).
func (a *CalendarAdapter) userAgent() string {
	if a.cfg.UserAgent != "" {
		return a.cfg.UserAgent
	}
	return "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"
}

// List POSTs the direction parameter and parses the returned meeting-list
// HTML into candidates. Detail (the HLS URL) is resolved lazily via
// FetchDetail, since it costs a second round-trip per item (§6.1).
func (a *CalendarAdapter) List(ctx context.Context, since *time.Time) ([]models.HearingCandidate, error) {
	form := url.Values{a.cfg.DirectionParam: {a.cfg.Direction}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.ListURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("building meeting list request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", a.userAgent())

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching meeting list: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("meeting list returned status %d", resp.StatusCode)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing meeting list HTML: %w", err)
	}

	candidates := parseMeetingRows(doc)
	if since == nil {
		return candidates, nil
	}
	filtered := candidates[:0]
	for _, c := range candidates {
		if c.Date == nil || c.Date.After(*since) {
			filtered = append(filtered, c)
		}
	}
	return filtered, nil
}

// FetchDetail GETs the per-meeting page and extracts the HLS playlist URL
// from the embedded <source> tag, populating MediaURL (§4.1, §6.1).
func (a *CalendarAdapter) FetchDetail(ctx context.Context, candidate models.HearingCandidate) (models.HearingCandidate, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, candidate.MediaURL, nil)
	if err != nil {
		return candidate, fmt.Errorf("building meeting detail request: %w", err)
	}
	req.Header.Set("User-Agent", a.userAgent())

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return candidate, fmt.Errorf("fetching meeting detail: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return candidate, fmt.Errorf("meeting detail returned status %d", resp.StatusCode)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return candidate, fmt.Errorf("parsing meeting detail HTML: %w", err)
	}

	playlistURL := findSourceSrc(doc)
	if playlistURL == "" {
		return candidate, fmt.Errorf("no HLS <source> tag found on meeting detail page")
	}
	candidate.MediaURL = playlistURL
	return candidate, nil
}

// parseMeetingRows walks the DOM for <tr data-meeting-id data-title
// data-date> rows; vendor markup is assumed to expose those data
// attributes directly on the row, the common pattern for these archive
// sites (no universal schema exists across vendors, so per-vendor override
// hooks would replace this walk in a future adapter variant).
func parseMeetingRows(n *html.Node) []models.HearingCandidate {
	var candidates []models.HearingCandidate
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.ElementNode && node.Data == "tr" {
			attrs := attrMap(node)
			if id, ok := attrs["data-meeting-id"]; ok {
				candidate := models.HearingCandidate{
					ExternalID: id,
					Title:      attrs["data-title"],
					MediaURL:   attrs["data-detail-url"],
					TypeHint:   "meeting",
				}
				if dateStr, ok := attrs["data-date"]; ok {
					if d, err := time.Parse("2006-01-02", dateStr); err == nil {
						candidate.Date = &d
					}
				}
				candidates = append(candidates, candidate)
			}
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return candidates
}

func findSourceSrc(n *html.Node) string {
	var src string
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if src != "" {
			return
		}
		if node.Type == html.ElementNode && node.Data == "source" {
			if v, ok := attrMap(node)["src"]; ok {
				src = v
				return
			}
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return src
}

func attrMap(n *html.Node) map[string]string {
	m := make(map[string]string, len(n.Attr))
	for _, a := range n.Attr {
		m[a.Key] = a.Val
	}
	return m
}
