package adapters

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"time"

	"github.com/canaryscope/canaryscope/pkg/models"
)

// VideoChannelConfig is a Source.Config payload for the video channel
// family: drives a yt-dlp-equivalent external extractor against a channel
// URL, flat-playlist only (§4.1).
type VideoChannelConfig struct {
	ChannelURL string `json:"channel_url"`
	// BinaryPath defaults to "yt-dlp" on the PATH; overridable for test
	// doubles and for vendored binaries.
	BinaryPath string `json:"binary_path"`
}

// VideoChannelAdapter enumerates a video channel without downloading media.
type VideoChannelAdapter struct {
	cfg VideoChannelConfig
}

// NewVideoChannelAdapter creates a new VideoChannelAdapter.
func NewVideoChannelAdapter(cfg VideoChannelConfig) *VideoChannelAdapter {
	if cfg.BinaryPath == "" {
		cfg.BinaryPath = "yt-dlp"
	}
	return &VideoChannelAdapter{cfg: cfg}
}

func (a *VideoChannelAdapter) Kind() string { return "video_channel" }

type ytDlpEntry struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	UploadDate  string `json:"upload_date"` // YYYYMMDD
	Duration    *float64 `json:"duration"`
	WebpageURL  string `json:"webpage_url"`
}

// List drives yt-dlp in flat-playlist mode, which emits one JSON object per
// line (--flat-playlist --dump-json), and maps each to a HearingCandidate.
// since is applied after listing since yt-dlp has no server-side date
// filter for flat-playlist channel listings.
func (a *VideoChannelAdapter) List(ctx context.Context, since *time.Time) ([]models.HearingCandidate, error) {
	cmd := exec.CommandContext(ctx, a.cfg.BinaryPath,
		"--flat-playlist", "--dump-json", "--no-warnings", a.cfg.ChannelURL)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("open yt-dlp stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start yt-dlp: %w", err)
	}

	var candidates []models.HearingCandidate
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		var entry ytDlpEntry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			continue // one malformed listing entry never aborts the channel scan
		}
		candidate := models.HearingCandidate{
			ExternalID:  entry.ID,
			Title:       entry.Title,
			Description: entry.Description,
			MediaURL:    entry.WebpageURL,
			Duration:    entry.Duration,
			TypeHint:    "video",
		}
		if d, err := parseYYYYMMDD(entry.UploadDate); err == nil {
			candidate.Date = &d
		}
		if since == nil || candidate.Date == nil || candidate.Date.After(*since) {
			candidates = append(candidates, candidate)
		}
	}
	if err := scanner.Err(); err != nil {
		_ = cmd.Wait()
		return nil, fmt.Errorf("reading yt-dlp output: %w", err)
	}
	if err := cmd.Wait(); err != nil {
		return nil, fmt.Errorf("yt-dlp exited with error: %w", err)
	}
	return candidates, nil
}

func parseYYYYMMDD(s string) (time.Time, error) {
	if len(s) != 8 {
		return time.Time{}, fmt.Errorf("invalid upload_date %q", s)
	}
	year, err := strconv.Atoi(s[0:4])
	if err != nil {
		return time.Time{}, err
	}
	month, err := strconv.Atoi(s[4:6])
	if err != nil {
		return time.Time{}, err
	}
	day, err := strconv.Atoi(s[6:8])
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), nil
}
