package adapters

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/canaryscope/canaryscope/pkg/models"
)

// RSSConfig is a Source.Config payload for the RSS/Atom family.
type RSSConfig struct {
	FeedURL string `json:"feed_url"`

	// RequestTimeout bounds the feed fetch. Set from
	// config.ScraperConfig.RequestTimeout, not read from the source's own
	// config blob.
	RequestTimeout time.Duration `json:"-"`
}

// RSSAdapter fetches a feed, detects RSS 2.0 vs Atom by root element, and
// normalizes items/entries to HearingCandidate. Vendor-specific date or
// title conventions are handled by a TitleDateParser selected by the feed
// URL's host (§4.1).
type RSSAdapter struct {
	cfg        RSSConfig
	httpClient *http.Client
}

// NewRSSAdapter creates a new RSSAdapter.
func NewRSSAdapter(cfg RSSConfig) *RSSAdapter {
	timeout := cfg.RequestTimeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &RSSAdapter{cfg: cfg, httpClient: &http.Client{Timeout: timeout}}
}

func (a *RSSAdapter) Kind() string { return "rss_feed" }

type rssFeed struct {
	XMLName xml.Name   `xml:"rss"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Items []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Description string `xml:"description"`
	Link        string `xml:"link"`
	GUID        string `xml:"guid"`
	PubDate     string `xml:"pubDate"`
}

type atomFeed struct {
	XMLName xml.Name    `xml:"feed"`
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	Title   string `xml:"title"`
	Summary string `xml:"summary"`
	ID      string `xml:"id"`
	Updated string `xml:"updated"`
	Links   []struct {
		Href string `xml:"href,attr"`
	} `xml:"link"`
}

// List fetches the feed and returns uniform candidates regardless of
// whether the root element was <rss> or <feed> (§4.1).
func (a *RSSAdapter) List(ctx context.Context, since *time.Time) ([]models.HearingCandidate, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.cfg.FeedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building feed request: %w", err)
	}
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching feed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading feed body: %w", err)
	}

	parser := subParserFor(a.cfg.FeedURL)

	var candidates []models.HearingCandidate
	if isAtom(body) {
		var feed atomFeed
		if err := xml.Unmarshal(body, &feed); err != nil {
			return nil, fmt.Errorf("parsing atom feed: %w", err)
		}
		for _, e := range feed.Entries {
			link := ""
			if len(e.Links) > 0 {
				link = e.Links[0].Href
			}
			title, date := parser.Parse(e.Title, e.Updated)
			candidates = append(candidates, models.HearingCandidate{
				ExternalID:  e.ID,
				Title:       title,
				Description: e.Summary,
				MediaURL:    link,
				Date:        date,
				TypeHint:    "rss",
			})
		}
	} else {
		var feed rssFeed
		if err := xml.Unmarshal(body, &feed); err != nil {
			return nil, fmt.Errorf("parsing rss feed: %w", err)
		}
		for _, item := range feed.Channel.Items {
			guid := item.GUID
			if guid == "" {
				guid = item.Link
			}
			title, date := parser.Parse(item.Title, item.PubDate)
			candidates = append(candidates, models.HearingCandidate{
				ExternalID:  guid,
				Title:       title,
				Description: item.Description,
				MediaURL:    item.Link,
				Date:        date,
				TypeHint:    "rss",
			})
		}
	}

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

func isAtom(body []byte) bool {
	head := string(body)
	if len(head) > 2048 {
		head = head[:2048]
	}
	return strings.Contains(head, "<feed") && strings.Contains(head, "://www.w3.org/2005/Atom")
}

// TitleDateParser extracts the effective title and publish date for one
// feed item, letting vendor-specific conventions (Granicus date-in-title,
// per-channel formats) override the feed's own date field.
type TitleDateParser interface {
	Parse(title, rawDate string) (effectiveTitle string, date *time.Time)
}

type defaultParser struct{}

func (defaultParser) Parse(title, rawDate string) (string, *time.Time) {
	for _, layout := range []string{time.RFC1123Z, time.RFC1123, time.RFC3339} {
		if d, err := time.Parse(layout, rawDate); err == nil {
			return title, &d
		}
	}
	return title, nil
}

// granicusDateInTitleRegex matches Granicus's "Meeting Name - 01/15/2026"
// title convention, used when the <pubDate>/<updated> field is unreliable
// or absent (§4.1: "Granicus and channel-specific date-in-title
// conventions").
var granicusDateInTitleRegex = regexp.MustCompile(`-\s*(\d{1,2})/(\d{1,2})/(\d{4})\s*$`)

type granicusParser struct{}

func (granicusParser) Parse(title, rawDate string) (string, *time.Time) {
	if m := granicusDateInTitleRegex.FindStringSubmatch(title); m != nil {
		month, day, year := m[1], m[2], m[3]
		if d, err := time.Parse("1/2/2006", month+"/"+day+"/"+year); err == nil {
			cleaned := strings.TrimSpace(granicusDateInTitleRegex.ReplaceAllString(title, ""))
			return cleaned, &d
		}
	}
	return defaultParser{}.Parse(title, rawDate)
}

// subParserFor selects a TitleDateParser by the feed URL's host (§4.1).
func subParserFor(feedURL string) TitleDateParser {
	u, err := url.Parse(feedURL)
	if err != nil {
		return defaultParser{}
	}
	if strings.Contains(u.Host, "granicus.com") {
		return granicusParser{}
	}
	return defaultParser{}
}
