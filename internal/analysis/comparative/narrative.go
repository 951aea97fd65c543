package comparative

import (
	"fmt"

	"github.com/seenimoa/newspulse/pkg/models"
)

// Coverage statement templates, selected by CoverageDifferences.
var (
	MixedCoverage = []models.CoverageDifference{
		{
			Comparison: "Article 1 highlights positive developments, while Article 2 focuses on negative issues.",
			Impact:     "The first article may boost optimism, whereas the second could raise concerns.",
		},
		{
			Comparison: "Article 1 is focused on successes, whereas Article 2 points out challenges and risks.",
			Impact:     "Mixed coverage like this can lead to a balanced but cautious outlook among readers.",
		},
	}
	NonNegativeCoverage = models.CoverageDifference{
		Comparison: "News coverage is generally positive and neutral with no negative reports.",
		Impact:     "This fosters a confident outlook as no major concerns are reported.",
	}
	NonPositiveCoverage = models.CoverageDifference{
		Comparison: "News coverage is generally negative or neutral with no positive reports.",
		Impact:     "This may create a cautious or pessimistic outlook among observers.",
	}
	NeutralCoverage = models.CoverageDifference{
		Comparison: "All articles maintain a neutral tone without strong positive or negative language.",
		Impact:     "The coverage appears unbiased and factual, giving no clear indication of sentiment.",
	}
)

// Final verdict sentence parts.
const (
	headlineFormat = "%s's latest news coverage is %s."

	optimismSentence  = " This suggests an optimistic outlook for the company."
	concernSentence   = " This raises concerns about the company's current situation."
	balancedSentence  = " Most articles are impartial, indicating a balanced perspective."
	bothSidesSentence = " There are both positive and negative aspects in the recent news."
)

// CoverageDifferences picks the comparative statements for a distribution.
// The first matching branch wins. A fresh slice is returned on every call.
func CoverageDifferences(d models.SentimentDistribution) []models.CoverageDifference {
	p, n := d.Positive, d.Negative
	switch {
	case p > 0 && n > 0:
		return append([]models.CoverageDifference(nil), MixedCoverage...)
	case p > 0 && n == 0:
		return []models.CoverageDifference{NonNegativeCoverage}
	case n > 0 && p == 0:
		return []models.CoverageDifference{NonPositiveCoverage}
	default:
		return []models.CoverageDifference{NeutralCoverage}
	}
}

// FinalSentiment builds the overall verdict sentence for company.
//
// The first two branches need the leading count to also be at least the
// neutral count, and the neutral branch needs a strict lead over both, so a
// positive/negative tie (including the empty distribution) lands on "mixed".
func FinalSentiment(company string, d models.SentimentDistribution) string {
	p, n, z := d.Positive, d.Negative, d.Neutral
	switch {
	case p > n && p >= z:
		tone := "mostly positive"
		if n == 0 {
			tone = "overall positive"
		}
		return fmt.Sprintf(headlineFormat, company, tone) + optimismSentence
	case n > p && n >= z:
		tone := "mostly negative"
		if p == 0 {
			tone = "overall negative"
		}
		return fmt.Sprintf(headlineFormat, company, tone) + concernSentence
	case z > p && z > n:
		return fmt.Sprintf(headlineFormat, company, "largely neutral") + balancedSentence
	default:
		return fmt.Sprintf(headlineFormat, company, "mixed") + bothSidesSentence
	}
}
