package docket

import (
	"testing"

	"github.com/canaryscope/canaryscope/pkg/config"
	"github.com/canaryscope/canaryscope/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newExtractor() *Extractor {
	return NewExtractor(NewPatternRegistry(), config.DefaultDocketThresholds())
}

func TestExtract_FloridaPattern_ExactMatch(t *testing.T) {
	e := newExtractor()
	catalogue := []KnownDocketEntry{{ID: "kd-1", NormalizedID: "FL-20240035-GU"}}

	text := "The commission discussed docket 20240035-GU at length."
	candidates := e.Extract(text, "FL", catalogue)

	require.Len(t, candidates, 1)
	c := candidates[0]
	assert.Equal(t, "FL-20240035-GU", c.Parsed.NormalizedID)
	assert.Equal(t, "gas", c.Parsed.UtilitySector)
	assert.Equal(t, models.MatchExact, c.MatchType)
	assert.Equal(t, "kd-1", c.MatchedKnownDocketID)
	assert.Equal(t, 100, c.Confidence)
	assert.Equal(t, models.DocketAccepted, c.Status)
}

func TestExtract_NoCatalogueMatch_LowConfidence(t *testing.T) {
	e := newExtractor()

	text := "Random filing 20991234-XX mentioned in passing."
	candidates := e.Extract(text, "FL", nil)

	require.Len(t, candidates, 1)
	assert.Equal(t, models.MatchNone, candidates[0].MatchType)
	assert.Equal(t, models.DocketRejected, candidates[0].Status)
}

func TestExtract_TriggerPhraseFallback_UnknownState(t *testing.T) {
	e := newExtractor()

	text := "Please refer to docket number: 456789 for details."
	candidates := e.Extract(text, "NY", nil)

	require.Len(t, candidates, 1)
	assert.Equal(t, "456789", candidates[0].Parsed.CaseNumber)
	assert.NotEmpty(t, candidates[0].TriggerPhrase)
}

func TestExtract_DedupesByNormalizedID_KeepsHighestConfidence(t *testing.T) {
	e := newExtractor()
	catalogue := []KnownDocketEntry{{ID: "kd-1", NormalizedID: "FL-20240035-GU"}}

	text := "docket 20240035-GU... later the same docket 20240035-GU recurs."
	candidates := e.Extract(text, "FL", catalogue)

	require.Len(t, candidates, 1)
	assert.Equal(t, "FL-20240035-GU", candidates[0].Parsed.NormalizedID)
}

func TestExtract_CaliforniaPattern(t *testing.T) {
	e := newExtractor()

	text := "Application A.24-07-003 was filed today."
	candidates := e.Extract(text, "CA", nil)

	require.Len(t, candidates, 1)
	assert.Equal(t, "application", candidates[0].Parsed.UtilitySector)
	assert.Equal(t, "24-07-003", candidates[0].Parsed.CaseNumber)
}

func TestExtract_OhioPattern(t *testing.T) {
	e := newExtractor()

	text := "Case 24-1234-GA-AIR was continued."
	candidates := e.Extract(text, "OH", nil)

	require.Len(t, candidates, 1)
	assert.Equal(t, "electric", candidates[0].Parsed.UtilitySector)
}

func TestExtract_SuggestsCorrection_ForCloseNonMatch(t *testing.T) {
	e := newExtractor()
	catalogue := []KnownDocketEntry{{ID: "kd-1", NormalizedID: "TX-12345"}}

	text := "Docket 12346 was raised in testimony."
	candidates := e.Extract(text, "TX", catalogue)

	require.Len(t, candidates, 1)
	assert.NotEqual(t, models.DocketAccepted, candidates[0].Status)
	assert.Equal(t, "TX-12345", candidates[0].SuggestedCorrection)
}
