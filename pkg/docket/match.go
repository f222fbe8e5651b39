package docket

import (
	"strings"
	"time"

	"github.com/agnivade/levenshtein"
	"github.com/canaryscope/canaryscope/pkg/config"
	"github.com/canaryscope/canaryscope/pkg/models"
)

// KnownDocketEntry is the subset of an ent.KnownDocket the matcher needs,
// kept free of any ent dependency so pkg/docket stays storage-agnostic.
type KnownDocketEntry struct {
	ID           string
	NormalizedID string
	DocketNumber string
	Suffix       string
	FilingDate   *time.Time
}

var contextTriggerWords = []string{"docket", "case", "proceeding", "hearing"}

// scoreCandidate runs §4.7 steps 2-7 for a single raw match: parse, match
// against the catalogue, compute context boosts and confidence, then route
// to a status and, if warranted, suggest a correction.
func (e *Extractor) scoreCandidate(r rawMatch, stateCode string, catalogue []KnownDocketEntry) models.DocketCandidate {
	normalizedID := ""
	if r.parsed.Valid && r.parsed.CaseNumber != "" {
		normalizedID = stateCode + "-" + r.raw
	}

	parsed := models.ParsedDocket{
		Raw:           r.raw,
		StateCode:     stateCode,
		NormalizedID:  normalizedID,
		Year:          r.parsed.Year,
		CaseNumber:    r.parsed.CaseNumber,
		Suffix:        r.parsed.Suffix,
		UtilitySector: r.parsed.UtilitySector,
		Valid:         r.parsed.Valid,
	}

	matchType, matchedID, matchScore := matchAgainstCatalogue(normalizedID, catalogue, e.thresholds)

	boost := contextBoost(r.contextBefore, r.contextAfter, r.parsed)

	candidate := models.DocketCandidate{
		RawText:              r.raw,
		Position:             r.position,
		ContextBefore:        r.contextBefore,
		ContextAfter:         r.contextAfter,
		TriggerPhrase:        r.triggerPhrase,
		Parsed:               parsed,
		MatchType:            matchType,
		MatchedKnownDocketID: matchedID,
		FuzzyScore:           matchScore,
		ContextBoost:         boost,
	}

	candidate.Confidence = confidence(matchType, matchScore, boost)
	candidate.Status = route(candidate.Confidence, e.thresholds)

	if candidate.Status != models.DocketAccepted && normalizedID != "" {
		candidate.SuggestedCorrection = suggestCorrection(normalizedID, catalogue, e.thresholds.CorrectionMaxDistance)
	}

	return candidate
}

// matchAgainstCatalogue implements §4.7 step 3: exact match first, else
// fuzzy Levenshtein-ratio match restricted to the state's catalogue, ties
// broken by more recent filing_date.
func matchAgainstCatalogue(normalizedID string, catalogue []KnownDocketEntry, thresholds *config.DocketThresholds) (models.MatchType, string, int) {
	if normalizedID == "" {
		return models.MatchNone, "", 0
	}

	for _, kd := range catalogue {
		if kd.NormalizedID == normalizedID {
			return models.MatchExact, kd.ID, 100
		}
	}

	var bestID string
	bestScore := -1
	var bestFilingDate *time.Time
	for _, kd := range catalogue {
		score := levenshteinRatio(normalizedID, kd.NormalizedID)
		if score > bestScore {
			bestScore, bestID, bestFilingDate = score, kd.ID, kd.FilingDate
			continue
		}
		if score == bestScore && moreRecent(kd.FilingDate, bestFilingDate) {
			bestID, bestFilingDate = kd.ID, kd.FilingDate
		}
	}

	if bestScore < 0 {
		return models.MatchNone, "", 0
	}
	if bestScore >= thresholds.FuzzyReview {
		return models.MatchFuzzy, bestID, bestScore
	}
	return models.MatchNone, "", bestScore
}

func moreRecent(candidate, current *time.Time) bool {
	if candidate == nil {
		return false
	}
	if current == nil {
		return true
	}
	return candidate.After(*current)
}

// levenshteinRatio converts the agnivade/levenshtein edit distance into a
// 0-100 similarity score: `100 * (1 - distance/maxLen)` (§9: "pure
// Levenshtein ratio 0-100 is acceptable... document it").
func levenshteinRatio(a, b string) int {
	if a == "" && b == "" {
		return 100
	}
	dist := levenshtein.ComputeDistance(a, b)
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 100
	}
	ratio := 100 * (1 - float64(dist)/float64(maxLen))
	if ratio < 0 {
		ratio = 0
	}
	return int(ratio)
}

// contextBoost implements §4.7 step 4.
func contextBoost(before, after string, parsed ParsedFields) int {
	boost := 0
	window := strings.ToLower(before + " " + after)
	for _, word := range contextTriggerWords {
		if strings.Contains(window, word) {
			boost += 15
			break
		}
	}
	if parsed.Suffix != "" && parsed.Suffix != "XX" {
		boost += 10
	}
	return boost
}

// confidence implements §4.7 step 5. Exact catalogue matches are pinned to
// 100 regardless of context boost (§8 testable property 7: "For each
// HearingDocket with match_type=exact, confidence_score = 100") — the 0.7
// weighting below only shapes fuzzy-match confidence.
func confidence(matchType models.MatchType, matchScore, boost int) int {
	switch matchType {
	case models.MatchNone:
		return 30
	case models.MatchExact:
		return 100
	}
	score := 0.7*float64(matchScore) + float64(boost)
	if score > 100 {
		score = 100
	}
	return int(score)
}

// route implements §4.7 step 6.
func route(confidence int, thresholds *config.DocketThresholds) models.DocketCandidateStatus {
	switch {
	case confidence >= thresholds.ConfidenceAccept:
		return models.DocketAccepted
	case confidence >= thresholds.ConfidenceReview:
		return models.DocketNeedsReview
	default:
		return models.DocketRejected
	}
}

// suggestCorrection implements §4.7 step 7: for needs_review/rejected
// candidates, propose the nearest catalogue entry within the configured
// edit-distance bound.
func suggestCorrection(normalizedID string, catalogue []KnownDocketEntry, maxDistance int) string {
	if normalizedID == "" {
		return ""
	}
	best := ""
	bestDist := maxDistance + 1
	for _, kd := range catalogue {
		dist := levenshtein.ComputeDistance(normalizedID, kd.NormalizedID)
		if dist < bestDist {
			bestDist, best = dist, kd.NormalizedID
		}
	}
	if bestDist <= maxDistance {
		return best
	}
	return ""
}
