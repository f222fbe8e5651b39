// Package transcribe implements C5, the Transcriber: audio -> Transcript
// over a provider fallback chain chosen once at construction, with
// chunking, deterministic text cleanup, and cost accounting (§4.5).
package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// Segment is one timed fragment returned by a provider, before any chunk
// offset or renumbering is applied.
type Segment struct {
	StartTime float64
	EndTime   float64
	Text      string
}

// Provider transcribes a single audio file (already under the chunking
// threshold) using the given bias prompt.
type Provider interface {
	Name() string
	Model() string
	Transcribe(ctx context.Context, audioPath, initialPrompt string) (text string, segments []Segment, err error)
}

// whisperClient is shared by the Groq/Azure/OpenAI providers: all three
// speak (a close variant of) OpenAI's multipart Whisper transcription API
// (§4.5), differing only in base URL, auth header, and model field.
type whisperClient struct {
	httpClient *http.Client
	baseURL    string
	model      string
	authHeader func(req *http.Request)
}

func newWhisperClient(baseURL, model string, authHeader func(req *http.Request)) *whisperClient {
	return &whisperClient{
		httpClient: &http.Client{Timeout: 10 * time.Minute},
		baseURL:    baseURL,
		model:      model,
		authHeader: authHeader,
	}
}

type whisperSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

type whisperResponse struct {
	Text     string           `json:"text"`
	Segments []whisperSegment `json:"segments"`
}

func (c *whisperClient) transcribe(ctx context.Context, audioPath, initialPrompt string) (string, []Segment, error) {
	file, err := os.Open(audioPath)
	if err != nil {
		return "", nil, fmt.Errorf("opening audio file: %w", err)
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return "", nil, fmt.Errorf("creating form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", nil, fmt.Errorf("copying audio into request: %w", err)
	}
	_ = writer.WriteField("model", c.model)
	_ = writer.WriteField("response_format", "verbose_json")
	if initialPrompt != "" {
		_ = writer.WriteField("prompt", initialPrompt)
	}
	if err := writer.Close(); err != nil {
		return "", nil, fmt.Errorf("closing multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, &body)
	if err != nil {
		return "", nil, fmt.Errorf("building transcription request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	c.authHeader(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", nil, fmt.Errorf("calling transcription provider: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil, fmt.Errorf("reading transcription response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", nil, fmt.Errorf("transcription provider returned %d: %s", resp.StatusCode, string(raw))
	}

	var parsed whisperResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", nil, fmt.Errorf("decoding transcription response: %w", err)
	}

	segments := make([]Segment, 0, len(parsed.Segments))
	for _, s := range parsed.Segments {
		segments = append(segments, Segment{StartTime: s.Start, EndTime: s.End, Text: s.Text})
	}
	return parsed.Text, segments, nil
}
