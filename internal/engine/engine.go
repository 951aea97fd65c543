// Package engine turns a company's news articles into a sentiment report.
//
// A run has three stages over the ordered article list:
//
//  1. per-article classification (summary, sentiment, topics)
//  2. cross-article aggregation (sentiment distribution, topic overlap)
//  3. narrative synthesis (coverage differences, final verdict)
//
// Analyze is a pure function of its input: it performs no I/O, holds no
// state between calls and never fails, so it is safe to call concurrently
// for different companies.
package engine

import (
	"github.com/seenimoa/newspulse/internal/analysis/comparative"
	"github.com/seenimoa/newspulse/internal/analysis/sentiment"
	"github.com/seenimoa/newspulse/internal/analysis/summary"
	"github.com/seenimoa/newspulse/internal/analysis/topics"
	"github.com/seenimoa/newspulse/pkg/models"
)

// ClassifyArticle runs the per-article stage for one input.
// company is only used to exclude the company's own name from topics.
func ClassifyArticle(company string, in models.ArticleInput) models.ArticleAnalysis {
	return models.ArticleAnalysis{
		Title:     in.Title,
		Summary:   summary.Extract(in.Content),
		Sentiment: sentiment.Classify(in.Content),
		Topics:    topics.Extract(in.Content, company),
	}
}

// Analyze builds the full report. Article order is preserved and determines
// the 1-based indexes used in the topic overlap. An empty article list is
// valid and yields an all-zero distribution.
func Analyze(company string, articles []models.ArticleInput) *models.Report {
	analyzed := make([]models.ArticleAnalysis, 0, len(articles))
	for _, a := range articles {
		analyzed = append(analyzed, ClassifyArticle(company, a))
	}

	dist := comparative.Distribution(analyzed)

	return &models.Report{
		Company:  company,
		Articles: analyzed,
		ComparativeSentimentScore: models.ComparativeSentimentScore{
			SentimentDistribution: dist,
			CoverageDifferences:   comparative.CoverageDifferences(dist),
			TopicOverlap:          comparative.Overlap(analyzed),
		},
		FinalSentimentAnalysis: comparative.FinalSentiment(company, dist),
	}
}
