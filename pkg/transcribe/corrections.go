package transcribe

import "regexp"

// correction is one deterministic find/replace applied to transcribed
// text. The substitution set is a property of the system, not per-hearing
// (§4.5: "a fixed regex table of known mishearing corrections").
type correction struct {
	pattern     *regexp.Regexp
	replacement string
}

var corrections = []correction{
	{regexp.MustCompile(`(?i)\bkiller one\b`), "kilowatt"},
	{regexp.MustCompile(`(?i)\bair cot\b`), "ERCOT"},
	{regexp.MustCompile(`(?i)\bpee you see\b`), "PUC"},
	{regexp.MustCompile(`(?i)\bpee ess see\b`), "PSC"},
	{regexp.MustCompile(`(?i)\bef pee ell\b`), "FPL"},
	{regexp.MustCompile(`(?i)\bmega what\b`), "megawatt"},
	{regexp.MustCompile(`(?i)\bduck it number\b`), "docket number"},
}

// applyCorrections runs the fixed correction table over a single string.
func applyCorrections(text string) string {
	for _, c := range corrections {
		text = c.pattern.ReplaceAllString(text, c.replacement)
	}
	return text
}
