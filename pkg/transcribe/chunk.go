package transcribe

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	maxFileSizeBytes    = 24 * 1024 * 1024
	chunkDurationSecs   = 600
	ffmpegChunkTimeout  = 2 * time.Minute
	ffprobeProbeTimeout = 30 * time.Second
)

// needsChunking reports whether an audio file exceeds the per-request size
// limit providers enforce (§4.5: "chunking >24MiB into 10-minute segments").
func needsChunking(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, fmt.Errorf("stat audio file: %w", err)
	}
	return info.Size() > maxFileSizeBytes, nil
}

// probeDuration shells out to ffprobe to determine an audio file's duration
// in seconds, used when the Hearing's own duration_seconds is unset.
func probeDuration(ctx context.Context, path string) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, ffprobeProbeTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "quiet",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe failed for %s: %w", path, err)
	}
	seconds, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, fmt.Errorf("parsing ffprobe duration: %w", err)
	}
	return seconds, nil
}

// audioChunk is one fixed-length slice produced by splitAudio, tagged with
// its offset into the original file so segment timestamps can be restored.
type audioChunk struct {
	path       string
	timeOffset float64
}

// splitAudio slices an oversized audio file into chunkDurationSecs pieces
// via ffmpeg, returned in order. The caller owns cleanup of the temp dir
// via removeChunks.
func splitAudio(ctx context.Context, path string, duration float64) ([]audioChunk, error) {
	tempDir, err := os.MkdirTemp("", "canaryscope-chunks-*")
	if err != nil {
		return nil, fmt.Errorf("creating chunk scratch dir: %w", err)
	}

	numChunks := int(duration/chunkDurationSecs) + 1
	chunks := make([]audioChunk, 0, numChunks)

	for i := 0; i < numChunks; i++ {
		start := float64(i * chunkDurationSecs)
		chunkPath := filepath.Join(tempDir, fmt.Sprintf("chunk_%03d.mp3", i))

		if err := ffmpegSplit(ctx, path, chunkPath, start); err != nil {
			continue
		}
		if info, err := os.Stat(chunkPath); err == nil && info.Size() > 0 {
			chunks = append(chunks, audioChunk{path: chunkPath, timeOffset: start})
		}
	}

	if len(chunks) == 0 {
		os.RemoveAll(tempDir)
		return nil, fmt.Errorf("failed to create any chunks from %s", path)
	}
	return chunks, nil
}

func ffmpegSplit(ctx context.Context, src, dest string, start float64) error {
	ctx, cancel := context.WithTimeout(ctx, ffmpegChunkTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "ffmpeg", "-y",
		"-i", src,
		"-ss", fmt.Sprintf("%.0f", start),
		"-t", fmt.Sprintf("%d", chunkDurationSecs),
		"-c:a", "libmp3lame",
		"-q:a", "4",
		dest,
	)
	return cmd.Run()
}

// removeChunks deletes the chunk files and their shared scratch directory.
func removeChunks(chunks []audioChunk) {
	if len(chunks) == 0 {
		return
	}
	dir := filepath.Dir(chunks[0].path)
	for _, c := range chunks {
		_ = os.Remove(c.path)
	}
	_ = os.Remove(dir)
}
