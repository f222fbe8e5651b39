package transcribe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyCorrections_FixesKnownMishearings(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"the rate is ten killer one hours", "the rate is ten kilowatt hours"},
		{"as reported by air cot", "as reported by ERCOT"},
		{"the pee you see ruled today", "the PUC ruled today"},
		{"the pee ess see docket", "the PSC docket"},
		{"counsel for ef pee ell", "counsel for FPL"},
		{"two mega what capacity", "two megawatt capacity"},
		{"see duck it number 12345", "see docket number 12345"},
	}

	for _, c := range cases {
		assert.Equal(t, c.want, applyCorrections(c.in))
	}
}

func TestApplyCorrections_LeavesUnrelatedTextUnchanged(t *testing.T) {
	text := "the commission convened at nine a.m."
	assert.Equal(t, text, applyCorrections(text))
}

func TestApplyCorrections_CaseInsensitive(t *testing.T) {
	assert.Equal(t, "kilowatt hours", applyCorrections("Killer One hours"))
}
