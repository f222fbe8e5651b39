package models

// AnalysisOutput is the fixed-schema JSON object the Analyzer (C6) requests
// from the LLM in a single structured call (§3 Analysis, §4.6). Fields
// missing from the model's response are left as their zero value and
// stored as null by the store layer.
type AnalysisOutput struct {
	Summary              string   `json:"summary"`
	OneSentenceSummary    string   `json:"one_sentence_summary"`
	Participants          []string `json:"participants"`
	Issues                []string `json:"issues"`
	Commitments           []string `json:"commitments"`
	Vulnerabilities       []string `json:"vulnerabilities"`
	CommissionerConcerns  []string `json:"commissioner_concerns"`
	CommissionerMood      string   `json:"commissioner_mood"`
	PublicSentiment       string   `json:"public_sentiment"`
	LikelyOutcome         string   `json:"likely_outcome"`
	OutcomeConfidence     float64  `json:"outcome_confidence"`
	RiskFactors           []string `json:"risk_factors"`
	ActionItems           []string `json:"action_items"`
	Quotes                []string `json:"quotes"`
	Topics                []string `json:"topics"`
	Utilities             []string `json:"utilities"`
	Dockets               []string `json:"dockets"`
}

// ValidCommissionerMoods enumerates the allowed values (§3).
var ValidCommissionerMoods = map[string]bool{
	"supportive": true, "skeptical": true, "hostile": true, "neutral": true, "mixed": true,
}

// ValidPublicSentiments enumerates the allowed values (§3).
var ValidPublicSentiments = map[string]bool{
	"supportive": true, "opposed": true, "mixed": true, "none": true,
}
