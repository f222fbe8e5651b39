package config

// DocketThresholds controls C7's confidence routing (§4.7 steps 3 and 6).
// Exposed as config rather than constants because §9's open question on
// needs_review=true-always is explicitly left as a policy switch.
type DocketThresholds struct {
	// FuzzyReview is the minimum Levenshtein-ratio score (0-100) for a
	// fuzzy match to become a candidate at all.
	FuzzyReview int `yaml:"fuzzy_review"`

	// FuzzyAccept is validated to lie between FuzzyReview and 100. Matching
	// and routing do not read it: a fuzzy match's status follows from its
	// confidence against ConfidenceAccept and ConfidenceReview.
	FuzzyAccept int `yaml:"fuzzy_accept"`

	// ConfidenceAccept is T_accept: confidence >= this routes to accepted.
	ConfidenceAccept int `yaml:"confidence_accept"`

	// ConfidenceReview is T_review: confidence in [ConfidenceReview,
	// ConfidenceAccept) routes to needs_review; below it, rejected.
	ConfidenceReview int `yaml:"confidence_review"`

	// CorrectionMaxDistance is the max Levenshtein edit distance for
	// suggesting a correction on a needs_review/rejected candidate (§4.7.7).
	CorrectionMaxDistance int `yaml:"correction_max_distance"`

	// AlwaysNeedsReview implements §9's open question: the reference always
	// sets HearingDocket.needs_review=true regardless of confidence. Default
	// true preserves that observed behavior; set false to let accepted
	// candidates skip the review queue.
	AlwaysNeedsReview bool `yaml:"always_needs_review"`
}

// DefaultDocketThresholds returns the thresholds named in §4.7, grounded on
// original_source's smart_extract.py / florida/entity_linking.py constants.
func DefaultDocketThresholds() *DocketThresholds {
	return &DocketThresholds{
		FuzzyReview:           60,
		FuzzyAccept:           85,
		ConfidenceAccept:      85,
		ConfidenceReview:      60,
		CorrectionMaxDistance: 2,
		AlwaysNeedsReview:     true,
	}
}

// EntityThresholds controls C10's utility/topic linker (§4.10).
type EntityThresholds struct {
	UtilityFuzzyAccept int `yaml:"utility_fuzzy_accept"`
	UtilityFuzzyReview int `yaml:"utility_fuzzy_review"`
	TopicFuzzyAccept   int `yaml:"topic_fuzzy_accept"`
	TopicFuzzyReview   int `yaml:"topic_fuzzy_review"`
}

// DefaultEntityThresholds returns the thresholds named in §4.10.
func DefaultEntityThresholds() *EntityThresholds {
	return &EntityThresholds{
		UtilityFuzzyAccept: 85,
		UtilityFuzzyReview: 70,
		TopicFuzzyAccept:   80,
		TopicFuzzyReview:   50,
	}
}
