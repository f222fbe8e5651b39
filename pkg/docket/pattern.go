// Package docket implements C7, the docket extraction and entity-linking
// subsystem: regex candidate extraction, format validation, fuzzy matching
// against the KnownDocket catalogue, confidence scoring, and review routing.
package docket

import "regexp"

// Pattern is one state's docket-number regex plus the component parser used
// to decompose a raw match (§4.7 step 1-2).
type Pattern struct {
	StateCode string
	Regex     *regexp.Regexp
	Parse     func(raw string) ParsedFields
}

// ParsedFields holds the decomposed components of a raw docket-number match.
// normalized_id is not built from these: it is "<STATE>-" plus the raw match.
type ParsedFields struct {
	Year          *int
	CaseNumber    string
	Suffix        string
	UtilitySector string
	Valid         bool
}

// triggerPhrase catches a docket number (suffix optional) preceded by a
// "docket number:" style phrase. It runs for every state, alongside any
// dedicated pattern, skipping spans that pattern already matched (§4.7
// step 1).
var triggerPhrase = regexp.MustCompile(`(?i)docket\s*(number|no\.?)?\s*[:]?\s*(\d{4,8}(?:-[A-Za-z]{1,3})?)`)

// PatternRegistry dispatches the candidate-extraction regex by state code;
// the generic trigger-phrase pattern runs for every state in addition to
// any dedicated entry (§4.7.A, spec's "each state has a regex" satisfied for the
// four illustrative states named in the spec).
type PatternRegistry struct {
	byState map[string]Pattern
}

// NewPatternRegistry builds the registry seeded with the four illustrative
// state patterns named in §4.7 step 1: Florida, Texas, California, Ohio.
func NewPatternRegistry() *PatternRegistry {
	r := &PatternRegistry{byState: make(map[string]Pattern)}
	r.register(floridaPattern())
	r.register(texasPattern())
	r.register(californiaPattern())
	r.register(ohioPattern())
	return r
}

func (r *PatternRegistry) register(p Pattern) {
	r.byState[p.StateCode] = p
}

// ForState returns the state's dedicated pattern and true, or false if only
// the generic trigger-phrase fallback applies.
func (r *PatternRegistry) ForState(stateCode string) (Pattern, bool) {
	p, ok := r.byState[stateCode]
	return p, ok
}

// TriggerPhrasePattern returns the generic fallback regex used for every
// state, in addition to any dedicated pattern (§4.7 step 1: "also catches
// un-suffixed numbers").
func TriggerPhrasePattern() *regexp.Regexp {
	return triggerPhrase
}

// Florida: YYYYNNNN-XX, e.g. 20240035-GU.
func floridaPattern() Pattern {
	re := regexp.MustCompile(`\b(\d{8})-([A-Za-z]{2})\b`)
	return Pattern{
		StateCode: "FL",
		Regex:     re,
		Parse: func(raw string) ParsedFields {
			groups := re.FindStringSubmatch(raw)
			if len(groups) != 3 || len(groups[1]) != 8 {
				return ParsedFields{Valid: false}
			}
			year := atoiOrNil(groups[1][:4])
			return ParsedFields{
				Year:          year,
				CaseNumber:    groups[1][4:],
				Suffix:        groups[2],
				UtilitySector: sectorFromSuffix(groups[2]),
				Valid:         year != nil,
			}
		},
	}
}

// Texas: 5-digit docket number, no suffix.
func texasPattern() Pattern {
	re := regexp.MustCompile(`\b(\d{5})\b`)
	return Pattern{
		StateCode: "TX",
		Regex:     re,
		Parse: func(raw string) ParsedFields {
			groups := re.FindStringSubmatch(raw)
			if len(groups) != 2 {
				return ParsedFields{Valid: false}
			}
			return ParsedFields{CaseNumber: groups[1], Valid: true}
		},
	}
}

// California: [ARCIP].YY-MM-NNN, e.g. A.24-07-003.
func californiaPattern() Pattern {
	re := regexp.MustCompile(`\b([ARCIP])\.(\d{2})-(\d{2})-(\d{3})\b`)
	return Pattern{
		StateCode: "CA",
		Regex:     re,
		Parse: func(raw string) ParsedFields {
			groups := re.FindStringSubmatch(raw)
			if len(groups) != 5 {
				return ParsedFields{Valid: false}
			}
			year := atoiOrNil("20" + groups[2])
			return ParsedFields{
				Year:          year,
				CaseNumber:    groups[2] + "-" + groups[3] + "-" + groups[4],
				UtilitySector: caseTypeFromPrefix(groups[1]),
				Valid:         year != nil,
			}
		},
	}
}

// Ohio: YY-NNNN-XX-XXX, e.g. 24-1234-GA-AIR.
func ohioPattern() Pattern {
	re := regexp.MustCompile(`\b(\d{2})-(\d{3,4})-([A-Za-z]{2})-([A-Za-z]{3})\b`)
	return Pattern{
		StateCode: "OH",
		Regex:     re,
		Parse: func(raw string) ParsedFields {
			groups := re.FindStringSubmatch(raw)
			if len(groups) != 5 {
				return ParsedFields{Valid: false}
			}
			year := atoiOrNil("20" + groups[1])
			return ParsedFields{
				Year:          year,
				CaseNumber:    groups[2],
				Suffix:        groups[4],
				UtilitySector: sectorFromSuffix(groups[3]),
				Valid:         year != nil,
			}
		},
	}
}

func atoiOrNil(s string) *int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return nil
		}
		n = n*10 + int(r-'0')
	}
	return &n
}

// sectorFromSuffix maps a two-letter utility-sector suffix (Florida/Ohio
// convention) to a human-readable sector name.
func sectorFromSuffix(suffix string) string {
	switch suffix {
	case "EI", "EU", "GA":
		return "electric"
	case "GU":
		return "gas"
	case "WS", "WU", "SU":
		return "water_sewer"
	case "TP", "TX", "TL":
		return "telecom"
	default:
		return ""
	}
}

// caseTypeFromPrefix maps California's case-type letter prefix to a name.
func caseTypeFromPrefix(prefix string) string {
	switch prefix {
	case "A":
		return "application"
	case "R":
		return "rulemaking"
	case "C":
		return "complaint"
	case "I":
		return "investigation"
	case "P":
		return "petition"
	default:
		return ""
	}
}
