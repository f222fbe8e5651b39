package entitylink

import (
	"testing"

	"github.com/canaryscope/canaryscope/pkg/config"
	"github.com/stretchr/testify/assert"
)

func newLinker() *Linker {
	return NewLinker(config.DefaultEntityThresholds())
}

func TestLink_ExactNameMatch(t *testing.T) {
	l := newLinker()
	catalogue := []CatalogueEntry{{ID: "u-1", Name: "Florida Power & Light"}}

	c := l.Link("Florida Power & Light", "applicant", "", KindUtility, catalogue)

	assert.Equal(t, "u-1", c.MatchedID)
	assert.Equal(t, 100, c.MatchScore)
	assert.False(t, c.NeedsReview)
}

func TestLink_ExactAliasMatch(t *testing.T) {
	l := newLinker()
	catalogue := []CatalogueEntry{{ID: "u-1", Name: "Florida Power & Light", Aliases: []string{"FPL"}}}

	c := l.Link("fpl", "", "", KindUtility, catalogue)

	assert.Equal(t, "u-1", c.MatchedID)
	assert.Equal(t, 100, c.MatchScore)
}

func TestLink_NoCatalogue_NeedsReview(t *testing.T) {
	l := newLinker()

	c := l.Link("Some Unknown Utility", "", "", KindUtility, nil)

	assert.Empty(t, c.MatchedID)
	assert.True(t, c.NeedsReview)
}

func TestLink_FuzzyBelowReviewBar_Unmatched(t *testing.T) {
	l := newLinker()
	catalogue := []CatalogueEntry{{ID: "u-1", Name: "Florida Power & Light"}}

	c := l.Link("Zebra Transit Authority", "", "", KindUtility, catalogue)

	assert.Empty(t, c.MatchedID)
	assert.True(t, c.NeedsReview)
}

func TestLink_ApplicantBoostRaisesConfidence(t *testing.T) {
	l := newLinker()
	catalogue := []CatalogueEntry{{ID: "u-1", Name: "Florida Power and Light"}}

	withBoost := l.Link("Florida Power & Light", "applicant", "", KindUtility, catalogue)
	withoutBoost := l.Link("Florida Power & Light", "", "", KindUtility, catalogue)

	assert.Greater(t, withBoost.Confidence, withoutBoost.Confidence)
}

func TestLink_TopicHighRelevanceBoost(t *testing.T) {
	l := newLinker()
	catalogue := []CatalogueEntry{{ID: "t-1", Name: "rate case"}}

	c := l.Link("rate case", "", "high", KindTopic, catalogue)

	assert.Equal(t, "t-1", c.MatchedID)
	assert.False(t, c.NeedsReview)
}
