package store

import (
	"context"
	"fmt"

	"github.com/canaryscope/canaryscope/ent"
	"github.com/canaryscope/canaryscope/ent/analysis"
	"github.com/google/uuid"
)

// ArtifactStore writes the per-stage outputs (Transcript+Segments,
// Analysis) that TransitionStatus commits alongside a status change (§3).
type ArtifactStore struct{}

// NewArtifactStore creates a new ArtifactStore.
func NewArtifactStore() *ArtifactStore {
	return &ArtifactStore{}
}

// TranscriptSegment is one timed fragment to persist under a new Transcript.
type TranscriptSegment struct {
	Index       int
	StartTime   float64
	EndTime     float64
	Text        string
	Speaker     string
	SpeakerRole string
}

// WriteTranscript creates the Transcript and its Segments inside tx, used as
// a HearingStore.TransitionFunc when moving discovered -> transcribed
// (§4.5 step 7).
func (a *ArtifactStore) WriteTranscript(hearingID, fullText, model string, costUSD float64, segments []TranscriptSegment) func(ctx context.Context, tx *ent.Tx) error {
	return func(ctx context.Context, tx *ent.Tx) error {
		wordCount := countWords(fullText)
		t, err := tx.Transcript.Create().
			SetID(uuid.New().String()).
			SetHearingID(hearingID).
			SetFullText(fullText).
			SetWordCount(wordCount).
			SetModel(model).
			SetCostUsd(costUSD).
			Save(ctx)
		if err != nil {
			return fmt.Errorf("create transcript: %w", err)
		}

		for _, seg := range segments {
			builder := tx.Segment.Create().
				SetID(uuid.New().String()).
				SetTranscriptID(t.ID).
				SetSegmentIndex(seg.Index).
				SetStartTime(seg.StartTime).
				SetEndTime(seg.EndTime).
				SetText(seg.Text)
			if seg.Speaker != "" {
				builder.SetSpeaker(seg.Speaker)
			}
			if seg.SpeakerRole != "" {
				builder.SetSpeakerRole(seg.SpeakerRole)
			}
			if _, err := builder.Save(ctx); err != nil {
				return fmt.Errorf("create segment %d: %w", seg.Index, err)
			}
		}
		return nil
	}
}

func countWords(s string) int {
	count := 0
	inWord := false
	for _, r := range s {
		isSpace := r == ' ' || r == '\t' || r == '\n' || r == '\r'
		if !isSpace && !inWord {
			count++
			inWord = true
		} else if isSpace {
			inWord = false
		}
	}
	return count
}

// AnalysisFields carries the Analyzer's (C6) structured LLM output for
// persistence (§4.6 step 5).
type AnalysisFields struct {
	Summary              string
	OneSentenceSummary   string
	Participants         []string
	Issues               []string
	Commitments          []string
	Vulnerabilities      []string
	CommissionerConcerns []string
	CommissionerMood     analysis.CommissionerMood
	PublicSentiment      analysis.PublicSentiment
	LikelyOutcome        string
	OutcomeConfidence    *float64
	RiskFactors          []string
	ActionItems          []string
	Quotes               []string
	Topics               []string
	Utilities            []string
	Dockets              []string
	RawOutput            map[string]interface{}
	Model                string
	CostUSD              float64
}

// WriteAnalysis creates the Analysis row inside tx, used as a
// HearingStore.TransitionFunc when moving transcribed -> analyzed
// (§4.6 step 5).
func (a *ArtifactStore) WriteAnalysis(hearingID string, f AnalysisFields) func(ctx context.Context, tx *ent.Tx) error {
	return func(ctx context.Context, tx *ent.Tx) error {
		builder := tx.Analysis.Create().
			SetID(uuid.New().String()).
			SetHearingID(hearingID).
			SetParticipants(f.Participants).
			SetIssues(f.Issues).
			SetCommitments(f.Commitments).
			SetVulnerabilities(f.Vulnerabilities).
			SetCommissionerConcerns(f.CommissionerConcerns).
			SetRiskFactors(f.RiskFactors).
			SetActionItems(f.ActionItems).
			SetQuotes(f.Quotes).
			SetTopics(f.Topics).
			SetUtilities(f.Utilities).
			SetDockets(f.Dockets).
			SetModel(f.Model).
			SetCostUsd(f.CostUSD)

		if f.Summary != "" {
			builder.SetSummary(f.Summary)
		}
		if f.OneSentenceSummary != "" {
			builder.SetOneSentenceSummary(f.OneSentenceSummary)
		}
		if f.CommissionerMood != "" {
			builder.SetCommissionerMood(f.CommissionerMood)
		}
		if f.PublicSentiment != "" {
			builder.SetPublicSentiment(f.PublicSentiment)
		}
		if f.LikelyOutcome != "" {
			builder.SetLikelyOutcome(f.LikelyOutcome)
		}
		if f.OutcomeConfidence != nil {
			builder.SetOutcomeConfidence(*f.OutcomeConfidence)
		}
		if f.RawOutput != nil {
			builder.SetRawOutput(f.RawOutput)
		}

		if _, err := builder.Save(ctx); err != nil {
			return fmt.Errorf("create analysis: %w", err)
		}
		return nil
	}
}
