package models

// ParsedDocket holds the components a raw docket-number match is decomposed
// into by format validation (§4.7 step 2), grounded on original_source's
// docket_parser.ParsedDocket dataclass.
type ParsedDocket struct {
	Raw           string
	StateCode     string
	NormalizedID  string // "<STATE>-<docket_number>"
	Year          *int
	CaseNumber    string
	Prefix        string
	Suffix        string
	UtilitySector string
	DocketType    string
	CompanyCode   string
	Valid         bool
}

// MatchType mirrors the ent enum shared by ExtractedDocket and HearingDocket.
type MatchType string

const (
	MatchExact MatchType = "exact"
	MatchFuzzy MatchType = "fuzzy"
	MatchNone  MatchType = "none"
)

// DocketCandidateStatus mirrors ExtractedDocket.status.
type DocketCandidateStatus string

const (
	DocketAccepted    DocketCandidateStatus = "accepted"
	DocketNeedsReview DocketCandidateStatus = "needs_review"
	DocketRejected    DocketCandidateStatus = "rejected"
)

// DocketCandidate is one regex match, scored and routed by C7's pipeline
// (§4.7), prior to being persisted as an ExtractedDocket row.
type DocketCandidate struct {
	RawText       string
	Position      int
	ContextBefore string
	ContextAfter  string
	TriggerPhrase string

	Parsed ParsedDocket

	MatchType            MatchType
	MatchedKnownDocketID  string
	FuzzyScore           int // 0-100

	ContextBoost int
	Confidence   int // 0-100, per §4.7 step 5

	Status               DocketCandidateStatus
	SuggestedCorrection  string
}

// EntityCandidate is one extracted utility/topic name as scored by the entity
// linker; NeedsReview mirrors the needs_review gate on UtilityMention/TopicMention.
type EntityCandidate struct {
	ExtractedName string
	MatchedID     string // canonical record id, empty if unresolved
	MatchScore    int    // 0-100
	Confidence    int    // 0-100
	NeedsReview   bool
	Role          string // utilities: "applicant", "intervenor", ...
	Relevance     string // topics: "high", "medium", "low"
}
