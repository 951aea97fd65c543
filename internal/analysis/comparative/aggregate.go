// Package comparative reduces per-article analyses into cross-article
// aggregates (sentiment distribution, topic overlap) and the narrative
// statements derived from them.
package comparative

import "github.com/seenimoa/newspulse/pkg/models"

// Distribution tallies article sentiments. All three labels are always present.
func Distribution(articles []models.ArticleAnalysis) models.SentimentDistribution {
	var d models.SentimentDistribution
	for _, a := range articles {
		switch a.Sentiment {
		case models.SentimentPositive:
			d.Positive++
		case models.SentimentNegative:
			d.Negative++
		case models.SentimentNeutral:
			d.Neutral++
		}
	}
	return d
}

// Overlap classifies every topic as common (present in two or more articles)
// or unique to a single article. Article indexes are 1-based in input order.
// CommonTopics keeps first-encounter order; unique lists keep each article's
// own topic order.
func Overlap(articles []models.ArticleAnalysis) models.TopicOverlap {
	overlap := models.TopicOverlap{
		CommonTopics:          []string{},
		UniqueTopicsByArticle: make(map[int][]string, len(articles)),
	}

	counts := make(map[string]int)
	var order []string
	for _, a := range articles {
		seen := make(map[string]struct{}, len(a.Topics))
		for _, t := range a.Topics {
			if _, dup := seen[t]; dup {
				continue
			}
			seen[t] = struct{}{}
			if counts[t] == 0 {
				order = append(order, t)
			}
			counts[t]++
		}
	}

	for _, t := range order {
		if counts[t] > 1 {
			overlap.CommonTopics = append(overlap.CommonTopics, t)
		}
	}

	for i, a := range articles {
		unique := []string{}
		for _, t := range a.Topics {
			if counts[t] == 1 {
				unique = append(unique, t)
			}
		}
		overlap.UniqueTopicsByArticle[i+1] = unique
	}

	return overlap
}
