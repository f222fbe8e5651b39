// Package entitylink implements C10, the entity linker that fuzzy-matches
// LLM-extracted utility and topic names against canonical catalogue records
// (§4.10), grounded on the same Levenshtein-ratio approach as pkg/docket.
package entitylink

import (
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/canaryscope/canaryscope/pkg/config"
	"github.com/canaryscope/canaryscope/pkg/models"
)

// Kind distinguishes the two catalogues C10 links against; thresholds and
// boosts differ per §4.10.
type Kind string

const (
	KindUtility Kind = "utility"
	KindTopic   Kind = "topic"
)

// CatalogueEntry is a lightweight, ent-free projection of a UtilityRecord or
// TopicRecord for matching.
type CatalogueEntry struct {
	ID      string
	Name    string
	Aliases []string
}

// Linker runs §4.10's normalize/match/score/route pipeline for a single
// extracted name at a time.
type Linker struct {
	thresholds *config.EntityThresholds
}

// NewLinker creates a new Linker.
func NewLinker(thresholds *config.EntityThresholds) *Linker {
	return &Linker{thresholds: thresholds}
}

// Link matches one extracted name against kind's catalogue, returning a
// fully-scored and routed EntityCandidate. role applies the utility
// "applicant" boost; relevance applies the topic "high" boost — both are
// optional hints (§4.10 step 4) and may be passed empty.
func (l *Linker) Link(name, role, relevance string, kind Kind, catalogue []CatalogueEntry) models.EntityCandidate {
	normalized := normalize(name)

	accept, review := l.thresholds.UtilityFuzzyAccept, l.thresholds.UtilityFuzzyReview
	if kind == KindTopic {
		accept, review = l.thresholds.TopicFuzzyAccept, l.thresholds.TopicFuzzyReview
	}

	matchedID, matchScore := matchAgainstCatalogue(normalized, catalogue)

	boost := 0
	if kind == KindUtility && strings.EqualFold(role, "applicant") {
		boost = 10
	}
	if kind == KindTopic && strings.EqualFold(relevance, "high") {
		boost = 5
	}

	candidate := models.EntityCandidate{
		ExtractedName: name,
		MatchScore:    matchScore,
		Role:          role,
		Relevance:     relevance,
		Confidence:    confidenceFromScore(matchScore, boost),
	}

	if matchedID == "" || matchScore < review {
		// No catalogue entry cleared even the review bar: link unmatched for
		// later canonicalization review (§4.10 step 5).
		candidate.NeedsReview = true
		return candidate
	}

	candidate.MatchedID = matchedID
	candidate.NeedsReview = candidate.Confidence < accept
	return candidate
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// matchAgainstCatalogue implements §4.10 step 2-3: exact match against the
// canonical name or any alias, else the best Levenshtein-ratio fuzzy match.
func matchAgainstCatalogue(normalized string, catalogue []CatalogueEntry) (string, int) {
	for _, entry := range catalogue {
		if normalize(entry.Name) == normalized {
			return entry.ID, 100
		}
		for _, alias := range entry.Aliases {
			if normalize(alias) == normalized {
				return entry.ID, 100
			}
		}
	}

	bestID := ""
	bestScore := -1
	for _, entry := range catalogue {
		score := levenshteinRatio(normalized, normalize(entry.Name))
		if score > bestScore {
			bestScore, bestID = score, entry.ID
		}
		for _, alias := range entry.Aliases {
			aliasScore := levenshteinRatio(normalized, normalize(alias))
			if aliasScore > bestScore {
				bestScore, bestID = aliasScore, entry.ID
			}
		}
	}

	if bestScore < 0 {
		return "", 0
	}
	return bestID, bestScore
}

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

// confidenceFromScore implements §4.10 step 4: `match_score·0.8` plus boosts.
func confidenceFromScore(matchScore, boost int) int {
	score := float64(matchScore)*0.8 + float64(boost)
	if score > 100 {
		score = 100
	}
	return int(score)
}
