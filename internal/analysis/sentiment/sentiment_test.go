package sentiment

import (
	"testing"

	"github.com/seenimoa/newspulse/pkg/models"
)

func TestClassifyPositive(t *testing.T) {
	got := Classify("Record quarter: great growth and strong profit for the group")
	if got != models.SentimentPositive {
		t.Errorf("expected Positive, got %s", got)
	}
}

func TestClassifyNegative(t *testing.T) {
	got := Classify("Shares fall on scandal as regulators raise concern over losses")
	if got != models.SentimentNegative {
		t.Errorf("expected Negative, got %s", got)
	}
}

func TestClassifyNeutral(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"no keywords", "Company announces new office location in Bengaluru"},
		{"empty", ""},
		{"tie", "good results but a bad outlook"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.text); got != models.SentimentNeutral {
				t.Errorf("Classify(%q) = %s, want Neutral", tt.text, got)
			}
		})
	}
}

func TestScoreTextCountsMultiplicityAndSubstrings(t *testing.T) {
	tests := []struct {
		text string
		want Score
	}{
		// "goodness" contains "good"; "downturn" contains "down".
		{"goodness good GOOD", Score{Positive: 3}},
		{"downturn and a down day", Score{Negative: 2}},
		// "issues" contains "issue"; "risky" contains "risk".
		{"issues are risky", Score{Negative: 2}},
		// "profitable growth" hits profit + growth.
		{"Profitable growth", Score{Positive: 2}},
		// "incredible" has no keyword; "recorded" has "record".
		{"incredible recorded", Score{Positive: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := ScoreText(tt.text); got != tt.want {
				t.Errorf("ScoreText(%q) = %+v, want %+v", tt.text, got, tt.want)
			}
		})
	}
}

func TestScoreIgnoresLength(t *testing.T) {
	// One positive keyword against none wins regardless of surrounding text.
	long := "The board met on Tuesday to review the agenda and adjourned. "
	for i := 0; i < 5; i++ {
		long += long
	}
	if got := Classify(long + " success"); got != models.SentimentPositive {
		t.Errorf("expected Positive, got %s", got)
	}
}

func TestLabel(t *testing.T) {
	tests := []struct {
		s    Score
		want models.Sentiment
	}{
		{Score{Positive: 2, Negative: 1}, models.SentimentPositive},
		{Score{Positive: 1, Negative: 2}, models.SentimentNegative},
		{Score{Positive: 3, Negative: 3}, models.SentimentNeutral},
		{Score{}, models.SentimentNeutral},
	}
	for _, tt := range tests {
		if got := tt.s.Label(); got != tt.want {
			t.Errorf("%+v.Label() = %s, want %s", tt.s, got, tt.want)
		}
	}
}
