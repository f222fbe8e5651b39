package models

import "time"

// HearingCandidate is the uniform record every source adapter (C1) produces
// for C2 to upsert into the Hearing Store, regardless of the underlying
// source kind (§4.1, §4.2).
type HearingCandidate struct {
	ExternalID  string
	Title       string
	Description string
	Date        *time.Time
	MediaURL    string
	Duration    *float64 // seconds, if known at discovery time
	TypeHint    string   // e.g. "rate_case", "workshop" — adapter's best guess
	Categories  []string
}

// DocketRecord is what the vendor API adapter (C1) produces for the
// KnownDocket catalogue discovery job, distinct from HearingCandidate
// because it describes a docket, not a recording (§4.1).
type DocketRecord struct {
	DocketNumber string
	Year         *int
	CaseNumber   string
	Suffix       string
	UtilitySector string
	Title        string
	UtilityName  string
	FilingDate   *time.Time
	Status       string
	CaseType     string
	SourceURL    string
}

// AdapterError lets C2 isolate per-source faults (§4.1's "typed failure").
type AdapterError struct {
	SourceID string
	Kind     string // adapter kind, e.g. "video_channel"
	Err      error
}

func (e *AdapterError) Error() string {
	return e.Kind + " adapter (source " + e.SourceID + "): " + e.Err.Error()
}

func (e *AdapterError) Unwrap() error {
	return e.Err
}
