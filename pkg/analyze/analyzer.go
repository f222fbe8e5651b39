package analyze

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cenkalti/backoff/v4"

	"github.com/canaryscope/canaryscope/ent"
	"github.com/canaryscope/canaryscope/ent/analysis"
	"github.com/canaryscope/canaryscope/pkg/config"
	"github.com/canaryscope/canaryscope/pkg/models"
	"github.com/canaryscope/canaryscope/pkg/store"
)

// maxPromptTokens bounds the transcript sent to the model (§4.6: "≤100,000
// tokens of a GPT-4-family tokenizer"). Token count is approximated by
// character count / charsPerToken, the same approximation used by the
// teacher's context-window trimming where no tokenizer library is vendored.
const (
	maxPromptTokens = 100_000
	charsPerToken   = 4
	truncateMarker  = "[... TRANSCRIPT TRUNCATED FOR LENGTH ...]"
)

// rates are per-token costs in USD at the model's published per-million-
// token rate, divided by 1,000,000 (§4.6). gpt-4o as of the reference
// pricing table; override per-deployment by swapping AnalysisModel.
var rates = map[string]struct{ in, out float64 }{
	"gpt-4o":      {in: 2.50 / 1_000_000, out: 10.00 / 1_000_000},
	"gpt-4o-mini": {in: 0.15 / 1_000_000, out: 0.60 / 1_000_000},
}

const defaultRateIn = 2.50 / 1_000_000
const defaultRateOut = 10.00 / 1_000_000

// Analyzer implements C6: one structured-JSON LLM call per hearing
// transcript, with rate-limit backoff and an existing-Analysis short-circuit.
type Analyzer struct {
	client    *chatClient
	hearings  *store.HearingStore
	artifacts *store.ArtifactStore
	model     string
}

// NewAnalyzer creates an Analyzer using the configured provider. baseURL
// is always OpenAI's API; analysis has no Azure OpenAI endpoint option.
func NewAnalyzer(providers *config.ProvidersConfig, hearings *store.HearingStore, artifacts *store.ArtifactStore) *Analyzer {
	apiKey := os.Getenv(providers.OpenAIAPIKeyEnv)
	baseURL := "https://api.openai.com/v1"
	model := providers.AnalysisModel

	return &Analyzer{
		client:    newChatClient(baseURL, apiKey, model),
		hearings:  hearings,
		artifacts: artifacts,
		model:     model,
	}
}

// Run implements pipeline.StageRunner for the transcribed->analyzed
// transition (§4.6).
func (a *Analyzer) Run(ctx context.Context, h *ent.Hearing) models.StageResult {
	if existing, err := a.hearings.AnalysisFor(ctx, h.ID); err == nil {
		return models.Ok(0, map[string]interface{}{"analysis_id": existing.ID, "short_circuited": true})
	} else if !errors.Is(err, store.ErrNotFound) {
		return models.Fail(fmt.Errorf("checking existing analysis: %w", err), true)
	}

	text, err := a.hearings.TranscriptFullText(ctx, h.ID)
	if err != nil {
		return models.Fail(fmt.Errorf("loading transcript: %w", err), true)
	}

	prompt := truncate(text)
	output, promptTokens, completionTokens, err := a.callWithBackoff(ctx, h, prompt)
	if err != nil {
		var rl *rateLimited
		if errors.As(err, &rl) {
			return models.Fail(fmt.Errorf("analysis provider rate-limited after retries: %w", err), true)
		}
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
			return models.Fail(fmt.Errorf("calling analysis provider: %w", err), false)
		}
		return models.Fail(fmt.Errorf("calling analysis provider: %w", err), true)
	}

	cost := a.cost(promptTokens, completionTokens)

	var rawOutput map[string]interface{}
	_ = json.Unmarshal([]byte(output.raw), &rawOutput)

	write := a.artifacts.WriteAnalysis(h.ID, store.AnalysisFields{
		Summary:              output.Summary,
		OneSentenceSummary:   output.OneSentenceSummary,
		Participants:         output.Participants,
		Issues:               output.Issues,
		Commitments:          output.Commitments,
		Vulnerabilities:      output.Vulnerabilities,
		CommissionerConcerns: output.CommissionerConcerns,
		CommissionerMood:     validMood(output.CommissionerMood),
		PublicSentiment:      validSentiment(output.PublicSentiment),
		LikelyOutcome:        output.LikelyOutcome,
		OutcomeConfidence:    clampConfidence(output.OutcomeConfidence),
		RiskFactors:          output.RiskFactors,
		ActionItems:          output.ActionItems,
		Quotes:               output.Quotes,
		Topics:               output.Topics,
		Utilities:            output.Utilities,
		Dockets:              output.Dockets,
		RawOutput:            rawOutput,
		Model:                a.model,
		CostUSD:              cost,
	})

	return models.OkWithWrite(cost, map[string]interface{}{"model": a.model}, write)
}

type analysisOutput struct {
	models.AnalysisOutput
	raw string
}

// callWithBackoff implements §4.6's retry policy: rate-limit errors retry
// with exponential backoff (base 60s, up to 5 attempts); any other error
// fails immediately, and the caller reports it with should_retry=true,
// except an unparseable JSON response, which gets should_retry=false.
func (a *Analyzer) callWithBackoff(ctx context.Context, h *ent.Hearing, prompt string) (analysisOutput, int, int, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 60 * time.Second
	policy.Multiplier = 2
	policy.MaxElapsedTime = 0

	var (
		out                        analysisOutput
		promptTokens, compTokens   int
		attempt                    int
	)

	operation := func() error {
		attempt++
		content, pTok, cTok, err := a.client.complete(ctx, systemPrompt, buildUserPrompt(h, prompt))
		if err != nil {
			var rl *rateLimited
			if errors.As(err, &rl) {
				if attempt >= 5 {
					return backoff.Permanent(err)
				}
				slog.Warn("analysis provider rate limited, retrying", "hearing_id", h.ID, "attempt", attempt)
				return err
			}
			return backoff.Permanent(err)
		}

		var parsed models.AnalysisOutput
		if err := json.Unmarshal([]byte(content), &parsed); err != nil {
			return backoff.Permanent(fmt.Errorf("parsing analysis JSON: %w", err))
		}

		out = analysisOutput{AnalysisOutput: parsed, raw: content}
		promptTokens, compTokens = pTok, cTok
		return nil
	}

	if err := backoff.Retry(operation, backoff.WithMaxRetries(policy, 4)); err != nil {
		return analysisOutput{}, 0, 0, err
	}
	return out, promptTokens, compTokens, nil
}

func (a *Analyzer) cost(promptTokens, completionTokens int) float64 {
	r, ok := rates[a.model]
	if !ok {
		return float64(promptTokens)*defaultRateIn + float64(completionTokens)*defaultRateOut
	}
	return float64(promptTokens)*r.in + float64(completionTokens)*r.out
}

// truncate implements §4.6's token-budget trim: when the text exceeds
// maxPromptTokens (by the character-count token approximation), it keeps
// as many leading and as many trailing characters as 35% of that character
// budget each, with a marker between.
func truncate(text string) string {
	maxChars := maxPromptTokens * charsPerToken
	if utf8.RuneCountInString(text) <= maxChars {
		return text
	}

	runes := []rune(text)
	keep := int(float64(maxChars) * 0.35)
	head := string(runes[:keep])
	tail := string(runes[len(runes)-keep:])
	return head + truncateMarker + tail
}

const systemPrompt = `You are an analyst summarizing a public utility commission hearing transcript. Respond with a single JSON object matching the requested schema exactly. Do not include any text outside the JSON object.`

func buildUserPrompt(h *ent.Hearing, transcript string) string {
	var b strings.Builder
	b.WriteString("Hearing: ")
	b.WriteString(h.Title)
	b.WriteString("\n\nTranscript:\n")
	b.WriteString(transcript)
	b.WriteString("\n\nRespond with JSON containing: summary, one_sentence_summary, participants, issues, commitments, vulnerabilities, commissioner_concerns, commissioner_mood, public_sentiment, likely_outcome, outcome_confidence, risk_factors, action_items, quotes, topics, utilities, dockets.")
	return b.String()
}

func validMood(mood string) analysis.CommissionerMood {
	if models.ValidCommissionerMoods[mood] {
		return analysis.CommissionerMood(mood)
	}
	return ""
}

func validSentiment(sentiment string) analysis.PublicSentiment {
	if models.ValidPublicSentiments[sentiment] {
		return analysis.PublicSentiment(sentiment)
	}
	return ""
}

func clampConfidence(v float64) *float64 {
	if v < 0 || v > 1 {
		return nil
	}
	return &v
}
