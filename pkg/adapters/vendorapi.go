package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/canaryscope/canaryscope/pkg/models"
)

// VendorAPIConfig is a Source.Config payload for the vendor docket-
// catalogue API family: one HTTP client per state commission's public
// search API. Pagination, rate limits, and filter parameters are
// adapter-private per §4.1, so PageSize/query params live here rather
// than in a shared contract.
type VendorAPIConfig struct {
	BaseURL      string        `json:"base_url"`
	SearchPath   string        `json:"search_path"` // e.g. "/api/dockets/search"
	PageSize     int           `json:"page_size"`
	RequestDelay time.Duration `json:"request_delay"` // throttle between pages, vendor-specific

	// RequestTimeout bounds each page fetch. Set from
	// config.ScraperConfig.RequestTimeout, not read from the source's own
	// config blob.
	RequestTimeout time.Duration `json:"-"`
}

// VendorAPIAdapter discovers KnownDocket catalogue entries from a state
// commission's docket search API (§4.1).
type VendorAPIAdapter struct {
	cfg        VendorAPIConfig
	httpClient *http.Client
}

// NewVendorAPIAdapter creates a new VendorAPIAdapter.
func NewVendorAPIAdapter(cfg VendorAPIConfig) *VendorAPIAdapter {
	if cfg.PageSize <= 0 {
		cfg.PageSize = 100
	}
	timeout := cfg.RequestTimeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &VendorAPIAdapter{cfg: cfg, httpClient: &http.Client{Timeout: timeout}}
}

func (a *VendorAPIAdapter) Kind() string { return "api_endpoint" }

type vendorDocketPage struct {
	Results    []vendorDocket `json:"results"`
	TotalPages int            `json:"total_pages"`
}

type vendorDocket struct {
	DocketNumber string `json:"docket_number"`
	Year         *int   `json:"year"`
	CaseNumber   string `json:"case_number"`
	Suffix       string `json:"suffix"`
	Sector       string `json:"sector"`
	Title        string `json:"title"`
	UtilityName  string `json:"utility_name"`
	FilingDate   string `json:"filing_date"` // YYYY-MM-DD
	Status       string `json:"status"`
	CaseType     string `json:"case_type"`
	URL          string `json:"url"`
}

// ListDockets pages through the vendor's search API, throttling between
// pages per RequestDelay, filtering out entries filed before since on the
// client side (vendor APIs rarely expose a reliable since-date filter).
func (a *VendorAPIAdapter) ListDockets(ctx context.Context, since *time.Time) ([]models.DocketRecord, error) {
	var records []models.DocketRecord

	for page := 1; ; page++ {
		result, err := a.fetchPage(ctx, page)
		if err != nil {
			return nil, fmt.Errorf("fetching docket page %d: %w", page, err)
		}
		for _, d := range result.Results {
			record := toDocketRecord(d)
			if since == nil || record.FilingDate == nil || record.FilingDate.After(*since) {
				records = append(records, record)
			}
		}
		if page >= result.TotalPages || len(result.Results) == 0 {
			break
		}
		if a.cfg.RequestDelay > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(a.cfg.RequestDelay):
			}
		}
	}
	return records, nil
}

func (a *VendorAPIAdapter) fetchPage(ctx context.Context, page int) (vendorDocketPage, error) {
	q := url.Values{
		"page":      {strconv.Itoa(page)},
		"page_size": {strconv.Itoa(a.cfg.PageSize)},
	}
	reqURL := a.cfg.BaseURL + a.cfg.SearchPath + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return vendorDocketPage{}, err
	}
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return vendorDocketPage{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return vendorDocketPage{}, fmt.Errorf("status %d", resp.StatusCode)
	}

	var page_ vendorDocketPage
	if err := json.NewDecoder(resp.Body).Decode(&page_); err != nil {
		return vendorDocketPage{}, fmt.Errorf("decoding page: %w", err)
	}
	return page_, nil
}

func toDocketRecord(d vendorDocket) models.DocketRecord {
	record := models.DocketRecord{
		DocketNumber:  d.DocketNumber,
		Year:          d.Year,
		CaseNumber:    d.CaseNumber,
		Suffix:        d.Suffix,
		UtilitySector: d.Sector,
		Title:         d.Title,
		UtilityName:   d.UtilityName,
		Status:        d.Status,
		CaseType:      d.CaseType,
		SourceURL:     d.URL,
	}
	if t, err := time.Parse("2006-01-02", d.FilingDate); err == nil {
		record.FilingDate = &t
	}
	return record
}
