package docket

import (
	"strings"

	"github.com/canaryscope/canaryscope/pkg/config"
	"github.com/canaryscope/canaryscope/pkg/models"
)

const contextWindow = 50

// Extractor runs the candidate-extraction and scoring pipeline described in
// §4.7 steps 1-7, independent of persistence (handled by Service).
type Extractor struct {
	patterns   *PatternRegistry
	thresholds *config.DocketThresholds
}

// NewExtractor creates a new Extractor.
func NewExtractor(patterns *PatternRegistry, thresholds *config.DocketThresholds) *Extractor {
	return &Extractor{patterns: patterns, thresholds: thresholds}
}

// Extract runs the two candidate-extraction passes over text (title +
// transcript concatenation) for stateCode, then parses, matches, scores,
// and routes every candidate. The returned slice is deduplicated by
// normalized_id, keeping the highest-confidence instance and the earliest
// textual position (§4.7: "Tie-breaking within a hearing").
func (e *Extractor) Extract(text, stateCode string, catalogue []KnownDocketEntry) []models.DocketCandidate {
	raw := e.extractRaw(text, stateCode)

	candidates := make([]models.DocketCandidate, 0, len(raw))
	for _, r := range raw {
		candidates = append(candidates, e.scoreCandidate(r, stateCode, catalogue))
	}

	return dedupeByNormalizedID(candidates)
}

// rawMatch is one regex hit before parsing/scoring.
type rawMatch struct {
	raw           string
	position      int
	contextBefore string
	contextAfter  string
	triggerPhrase string
	parsed        ParsedFields
}

func (e *Extractor) extractRaw(text, stateCode string) []rawMatch {
	var matches []rawMatch

	if pat, ok := e.patterns.ForState(stateCode); ok {
		for _, loc := range pat.Regex.FindAllStringIndex(text, -1) {
			raw := text[loc[0]:loc[1]]
			matches = append(matches, rawMatch{
				raw:           raw,
				position:      loc[0],
				contextBefore: windowBefore(text, loc[0]),
				contextAfter:  windowAfter(text, loc[1]),
				parsed:        pat.Parse(raw),
			})
		}
	}

	for _, loc := range TriggerPhrasePattern().FindAllStringSubmatchIndex(text, -1) {
		digitsStart, digitsEnd := loc[4], loc[5]
		if digitsStart < 0 {
			continue
		}
		raw := text[digitsStart:digitsEnd]
		if overlapsExisting(matches, digitsStart, digitsEnd) {
			continue
		}
		matches = append(matches, rawMatch{
			raw:           raw,
			position:      digitsStart,
			contextBefore: windowBefore(text, digitsStart),
			contextAfter:  windowAfter(text, digitsEnd),
			triggerPhrase: strings.TrimSpace(text[loc[0]:loc[1]]),
			parsed:        ParsedFields{CaseNumber: raw, Valid: true},
		})
	}

	return matches
}

func overlapsExisting(matches []rawMatch, start, end int) bool {
	for _, m := range matches {
		mStart := m.position
		mEnd := mStart + len(m.raw)
		if start < mEnd && end > mStart {
			return true
		}
	}
	return false
}

func windowBefore(text string, pos int) string {
	start := pos - contextWindow
	if start < 0 {
		start = 0
	}
	return text[start:pos]
}

func windowAfter(text string, pos int) string {
	end := pos + contextWindow
	if end > len(text) {
		end = len(text)
	}
	return text[pos:end]
}

// dedupeByNormalizedID keeps the highest-confidence candidate per
// normalized_id, preferring the earliest textual position on ties.
func dedupeByNormalizedID(candidates []models.DocketCandidate) []models.DocketCandidate {
	best := make(map[string]models.DocketCandidate)
	order := make([]string, 0, len(candidates))

	for _, c := range candidates {
		key := c.Parsed.NormalizedID
		if key == "" {
			key = "raw:" + c.RawText
		}
		existing, ok := best[key]
		if !ok {
			best[key] = c
			order = append(order, key)
			continue
		}
		if c.Confidence > existing.Confidence ||
			(c.Confidence == existing.Confidence && c.Position < existing.Position) {
			best[key] = c
		}
	}

	result := make([]models.DocketCandidate, 0, len(order))
	for _, key := range order {
		result = append(result, best[key])
	}
	return result
}
