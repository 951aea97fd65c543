package sentiment

import (
	"strings"

	"github.com/seenimoa/newspulse/pkg/models"
)

// ------------------------------------------------------------------
// Keyword-count sentiment scorer. Deterministic and explainable:
// a label is a pure comparison of two keyword tallies.
// ------------------------------------------------------------------

// PositiveKeywords are matched as lowercase substrings.
var PositiveKeywords = []string{
	"positive", "growth", "good", "great", "record",
	"increase", "profit", "success", "upbeat", "achievement",
}

// NegativeKeywords are matched as lowercase substrings.
var NegativeKeywords = []string{
	"negative", "decline", "bad", "decrease", "loss", "fall",
	"down", "risk", "concern", "issue", "scandal",
}

// Score holds the keyword tallies for one text.
type Score struct {
	Positive int `json:"positive"`
	Negative int `json:"negative"`
}

// Label maps the tallies to a sentiment. Ties, including 0-0, are neutral.
func (s Score) Label() models.Sentiment {
	switch {
	case s.Positive > s.Negative:
		return models.SentimentPositive
	case s.Negative > s.Positive:
		return models.SentimentNegative
	default:
		return models.SentimentNeutral
	}
}

// ScoreText counts keyword occurrences in the case-folded text.
// Occurrences are counted with multiplicity and are not word-boundary aware,
// so "downturn" counts toward "down".
func ScoreText(text string) Score {
	lower := strings.ToLower(text)
	return Score{
		Positive: countAll(lower, PositiveKeywords),
		Negative: countAll(lower, NegativeKeywords),
	}
}

// Classify returns the sentiment label for text.
func Classify(text string) models.Sentiment {
	return ScoreText(text).Label()
}

func countAll(lower string, words []string) int {
	n := 0
	for _, w := range words {
		n += strings.Count(lower, w)
	}
	return n
}
