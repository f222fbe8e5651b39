package transcribe

import (
	"context"
	"fmt"

	"github.com/canaryscope/canaryscope/ent"
	"github.com/canaryscope/canaryscope/pkg/config"
	"github.com/canaryscope/canaryscope/pkg/store"
)

// Service drives C5: turning a downloaded audio artifact into transcript
// text and timed segments, via whichever Provider was selected at
// construction (§4.5).
type Service struct {
	provider Provider
	entities *store.EntityStore
}

// NewService probes providers.ProvidersConfig once, in priority order
// {Groq, Azure OpenAI, OpenAI, local}, and binds the chosen Provider for
// the lifetime of the Service (§4.5: "The choice is transparent to
// callers").
func NewService(providers *config.ProvidersConfig, entities *store.EntityStore) *Service {
	return &Service{provider: selectProvider(providers), entities: entities}
}

// Output is the full result of transcribing one hearing's audio.
type Output struct {
	FullText string
	Segments []TranscriptSegment
	Model    string
	CostUSD  float64
}

// TranscriptSegment is a dense, zero-based, corrected segment ready for
// persistence.
type TranscriptSegment struct {
	Index     int
	StartTime float64
	EndTime   float64
	Text      string
}

// Transcribe runs the bound provider against audioPath, chunking first if
// the file exceeds the provider's size limit, then applies the mishearing
// correction table to the full text and every segment (§4.5).
func (s *Service) Transcribe(ctx context.Context, h *ent.Hearing, audioPath string) (Output, error) {
	initialPrompt := buildInitialPrompt(ctx, s.entities, h)

	chunked, err := needsChunking(audioPath)
	if err != nil {
		return Output{}, err
	}

	var fullText string
	var segments []Segment
	if chunked {
		fullText, segments, err = s.transcribeChunked(ctx, h, audioPath, initialPrompt)
	} else {
		fullText, segments, err = s.provider.Transcribe(ctx, audioPath, initialPrompt)
	}
	if err != nil {
		return Output{}, err
	}

	durationMinutes := s.durationMinutes(ctx, h, audioPath)
	cost := durationMinutes * ratePerMinute[s.provider.Name()]

	fullText = applyCorrections(fullText)
	dense := make([]TranscriptSegment, len(segments))
	for i, seg := range segments {
		dense[i] = TranscriptSegment{
			Index:     i,
			StartTime: seg.StartTime,
			EndTime:   seg.EndTime,
			Text:      applyCorrections(seg.Text),
		}
	}

	return Output{FullText: fullText, Segments: dense, Model: s.provider.Model(), CostUSD: cost}, nil
}

// transcribeChunked splits audioPath into fixed-length pieces, transcribes
// each in sequence, and offsets + densely renumbers the resulting
// segments. A chunk that fails to transcribe is skipped; the overall
// attempt only fails if every chunk does (§4.5: "partial-chunk-failure
// tolerance").
func (s *Service) transcribeChunked(ctx context.Context, h *ent.Hearing, audioPath, initialPrompt string) (string, []Segment, error) {
	duration := s.hearingDurationSeconds(h)
	if duration == 0 {
		probed, err := probeDuration(ctx, audioPath)
		if err != nil {
			return "", nil, fmt.Errorf("determining audio duration for chunking: %w", err)
		}
		duration = probed
	}

	chunks, err := splitAudio(ctx, audioPath, duration)
	if err != nil {
		return "", nil, err
	}
	defer removeChunks(chunks)

	var textParts []string
	var allSegments []Segment
	for _, chunk := range chunks {
		text, segs, err := s.provider.Transcribe(ctx, chunk.path, initialPrompt)
		if err != nil {
			continue
		}
		if text != "" {
			textParts = append(textParts, text)
		}
		for _, seg := range segs {
			allSegments = append(allSegments, Segment{
				StartTime: seg.StartTime + chunk.timeOffset,
				EndTime:   seg.EndTime + chunk.timeOffset,
				Text:      seg.Text,
			})
		}
	}

	if len(allSegments) == 0 {
		return "", nil, fmt.Errorf("no segments transcribed from any chunk of %s", audioPath)
	}

	fullText := ""
	for i, part := range textParts {
		if i > 0 {
			fullText += " "
		}
		fullText += part
	}
	return fullText, allSegments, nil
}

func (s *Service) hearingDurationSeconds(h *ent.Hearing) float64 {
	if h.DurationSeconds != nil {
		return *h.DurationSeconds
	}
	return 0
}

func (s *Service) durationMinutes(ctx context.Context, h *ent.Hearing, audioPath string) float64 {
	seconds := s.hearingDurationSeconds(h)
	if seconds == 0 {
		if probed, err := probeDuration(ctx, audioPath); err == nil {
			seconds = probed
		}
	}
	return seconds / 60
}
