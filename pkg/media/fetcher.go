// Package media implements C4, the Media Fetcher: derives a
// content-addressed local path for a Hearing's audio and drives an
// external yt-dlp-equivalent extractor to populate it, with no database
// writes of its own (§4.4).
package media

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"time"

	"github.com/canaryscope/canaryscope/ent"
)

// probeExtensions is the set tried, in order, when checking whether an
// artifact already exists at the derived path (§6.4).
var probeExtensions = []string{".mp3", ".m4a", ".wav", ".mp4"}

var sanitizeRegex = regexp.MustCompile(`[^A-Za-z0-9_-]`)

// Fetcher downloads (or reuses a cached) audio artifact for a Hearing.
type Fetcher struct {
	audioDir   string
	binaryPath string
}

// NewFetcher creates a new Fetcher rooted at audioDir (AUDIO_DIR, §6.5).
func NewFetcher(audioDir string) *Fetcher {
	return &Fetcher{audioDir: audioDir, binaryPath: "yt-dlp"}
}

// Filename derives the content-addressed base name for a hearing (§6.4):
// the sanitized external_id, or "rss_<md5(source_url)[:16]>" for sources
// with no stable external_id, or "hearing_<id>" as a last resort.
func Filename(h *ent.Hearing, sourceURL string) string {
	if h.ExternalID != "" {
		sanitized := sanitizeRegex.ReplaceAllString(h.ExternalID, "")
		if sanitized != "" {
			return sanitized
		}
	}
	if sourceURL != "" {
		sum := md5.Sum([]byte(sourceURL))
		return "rss_" + hex.EncodeToString(sum[:])[:16]
	}
	return "hearing_" + h.ID
}

// Path derives the deterministic artifact path for a hearing, under its
// state's subdirectory (§6.4: "<AUDIO_DIR>/<state?>/<filename>.mp3").
func (f *Fetcher) Path(h *ent.Hearing, sourceURL string) string {
	name := Filename(h, sourceURL)
	dir := f.audioDir
	if h.StateCode != "" {
		dir = filepath.Join(dir, h.StateCode)
	}
	return filepath.Join(dir, name+".mp3")
}

// Result is what Fetch returns on success.
type Result struct {
	Path   string
	Cached bool
}

// Fetch returns the cached artifact path if one already exists under any
// probed extension, otherwise invokes the extractor to populate it
// (§4.4). Cost is always zero and Fetch never touches the database; the
// orchestrator advances Hearing.status on success.
func (f *Fetcher) Fetch(ctx context.Context, h *ent.Hearing, sourceURL string) (Result, error) {
	base := f.Path(h, sourceURL)
	if existing, ok := f.existingArtifact(base); ok {
		return Result{Path: existing, Cached: true}, nil
	}

	dir := filepath.Dir(base)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Result{}, fmt.Errorf("creating audio cache directory: %w", err)
	}

	if err := f.download(ctx, sourceURL, base); err != nil {
		f.cleanupPartial(base)
		return Result{}, err
	}

	return Result{Path: base, Cached: false}, nil
}

// existingArtifact probes the same path under every known extension
// (§6.4: "Existence test is tried across extensions .mp3 .m4a .wav .mp4").
func (f *Fetcher) existingArtifact(mp3Path string) (string, bool) {
	base := mp3Path[:len(mp3Path)-len(filepath.Ext(mp3Path))]
	for _, ext := range probeExtensions {
		candidate := base + ext
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
	}
	return "", false
}

// download drives yt-dlp to extract MP3 audio at best quality, no
// playlist expansion, with the socket timeout/retry/wall-clock policy
// from §4.4.
func (f *Fetcher) download(ctx context.Context, sourceURL, destPath string) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Minute)
	defer cancel()

	cmd := exec.CommandContext(ctx, f.binaryPath,
		"-x", "--audio-format", "mp3", "--audio-quality", "0",
		"--no-playlist",
		"--socket-timeout", "30",
		"--retries", "3",
		"-o", destPath,
		sourceURL,
	)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("yt-dlp failed for %s: %w: %s", sourceURL, err, string(output))
	}
	return nil
}

// cleanupPartial removes any partially-written artifact after a failed
// download, across every probed extension (§4.4: "On failure, delete any
// partial artifact").
func (f *Fetcher) cleanupPartial(mp3Path string) {
	base := mp3Path[:len(mp3Path)-len(filepath.Ext(mp3Path))]
	for _, ext := range probeExtensions {
		_ = os.Remove(base + ext)
	}
	_ = os.Remove(base + ".part")
}
