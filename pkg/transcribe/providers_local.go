package transcribe

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// localProvider shells out to a local whisper CLI (e.g. whisper.cpp or
// openai-whisper), last in the fallback chain, used when no remote
// credential is configured (§4.5: "{Groq, Azure OpenAI, OpenAI, local}").
type localProvider struct {
	binaryPath string
	model      string
}

func newLocalProvider(model string) *localProvider {
	return &localProvider{binaryPath: "whisper", model: model}
}

func (p *localProvider) Name() string  { return "local" }
func (p *localProvider) Model() string { return p.model }

type localSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

type localOutput struct {
	Text     string         `json:"text"`
	Segments []localSegment `json:"segments"`
}

func (p *localProvider) Transcribe(ctx context.Context, audioPath, initialPrompt string) (string, []Segment, error) {
	outDir, err := os.MkdirTemp("", "canaryscope-whisper-*")
	if err != nil {
		return "", nil, fmt.Errorf("creating local whisper scratch dir: %w", err)
	}
	defer os.RemoveAll(outDir)

	args := []string{
		audioPath,
		"--model", p.model,
		"--output_format", "json",
		"--output_dir", outDir,
	}
	if initialPrompt != "" {
		args = append(args, "--initial_prompt", initialPrompt)
	}

	cmd := exec.CommandContext(ctx, p.binaryPath, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return "", nil, fmt.Errorf("local whisper failed for %s: %w: %s", audioPath, err, string(output))
	}

	base := filepath.Base(audioPath)
	ext := filepath.Ext(base)
	jsonPath := filepath.Join(outDir, base[:len(base)-len(ext)]+".json")
	raw, err := os.ReadFile(jsonPath)
	if err != nil {
		return "", nil, fmt.Errorf("reading local whisper output: %w", err)
	}

	var parsed localOutput
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", nil, fmt.Errorf("decoding local whisper output: %w", err)
	}

	segments := make([]Segment, 0, len(parsed.Segments))
	for _, s := range parsed.Segments {
		segments = append(segments, Segment{StartTime: s.Start, EndTime: s.End, Text: s.Text})
	}
	return parsed.Text, segments, nil
}
