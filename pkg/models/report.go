// Package models holds the data types shared across newspulse: the article
// inputs consumed by the analysis engine and the report it produces.
//
// JSON field names follow the report wire format read by the storage layer,
// the HTTP API and the HTML renderer, so they are spelled with spaces and
// capitals rather than Go-style snake case.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Sentiment is the classification label for a single article.
type Sentiment string

const (
	SentimentPositive Sentiment = "Positive"
	SentimentNegative Sentiment = "Negative"
	SentimentNeutral  Sentiment = "Neutral"
)

// Sentiments returns all labels in distribution order.
func Sentiments() []Sentiment {
	return []Sentiment{SentimentPositive, SentimentNegative, SentimentNeutral}
}

// ArticleInput is one already-extracted news article.
type ArticleInput struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// ArticleAnalysis is the per-article result of the classifier.
type ArticleAnalysis struct {
	Title     string    `json:"Title"`
	Summary   string    `json:"Summary"`
	Sentiment Sentiment `json:"Sentiment"`
	Topics    []string  `json:"Topics"` // ordered set, at most 5
}

// SentimentDistribution counts articles per sentiment label.
type SentimentDistribution struct {
	Positive int `json:"Positive"`
	Negative int `json:"Negative"`
	Neutral  int `json:"Neutral"`
}

// Total returns the number of articles counted.
func (d SentimentDistribution) Total() int {
	return d.Positive + d.Negative + d.Neutral
}

// Count returns the count for a single label.
func (d SentimentDistribution) Count(s Sentiment) int {
	switch s {
	case SentimentPositive:
		return d.Positive
	case SentimentNegative:
		return d.Negative
	case SentimentNeutral:
		return d.Neutral
	default:
		return 0
	}
}

// CoverageDifference is a templated comparative statement.
type CoverageDifference struct {
	Comparison string `json:"Comparison"`
	Impact     string `json:"Impact"`
}

// TopicOverlap splits topics into shared and article-unique sets.
// UniqueTopicsByArticle is keyed by 1-based article index.
type TopicOverlap struct {
	CommonTopics          []string
	UniqueTopicsByArticle map[int][]string
}

const (
	commonTopicsKey = "Common Topics"
	uniqueKeyPrefix = "Unique Topics in Article "
)

// UniqueKey returns the flattened wire key for an article index.
func UniqueKey(index int) string {
	return uniqueKeyPrefix + strconv.Itoa(index)
}

// ArticleIndexes returns the indexes present in UniqueTopicsByArticle, ascending.
func (o TopicOverlap) ArticleIndexes() []int {
	idx := make([]int, 0, len(o.UniqueTopicsByArticle))
	for i := range o.UniqueTopicsByArticle {
		idx = append(idx, i)
	}
	sort.Ints(idx)
	return idx
}

// MarshalJSON writes the flattened form:
//
//	{"Common Topics": [...], "Unique Topics in Article 1": [...], ...}
//
// with article keys in index order.
func (o TopicOverlap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	if err := writeField(&buf, commonTopicsKey, o.CommonTopics); err != nil {
		return nil, err
	}
	for _, i := range o.ArticleIndexes() {
		buf.WriteByte(',')
		if err := writeField(&buf, UniqueKey(i), o.UniqueTopicsByArticle[i]); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeField(buf *bytes.Buffer, key string, topics []string) error {
	k, err := json.Marshal(key)
	if err != nil {
		return err
	}
	if topics == nil {
		topics = []string{}
	}
	v, err := json.Marshal(topics)
	if err != nil {
		return err
	}
	buf.Write(k)
	buf.WriteByte(':')
	buf.Write(v)
	return nil
}

// UnmarshalJSON reads the flattened form written by MarshalJSON.
// Unknown keys are ignored.
func (o *TopicOverlap) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	o.CommonTopics = []string{}
	o.UniqueTopicsByArticle = map[int][]string{}
	for key, val := range raw {
		switch {
		case key == commonTopicsKey:
			if err := json.Unmarshal(val, &o.CommonTopics); err != nil {
				return fmt.Errorf("decode %q: %w", key, err)
			}
		case strings.HasPrefix(key, uniqueKeyPrefix):
			i, err := strconv.Atoi(strings.TrimPrefix(key, uniqueKeyPrefix))
			if err != nil {
				return fmt.Errorf("bad article index in %q: %w", key, err)
			}
			var topics []string
			if err := json.Unmarshal(val, &topics); err != nil {
				return fmt.Errorf("decode %q: %w", key, err)
			}
			if topics == nil {
				topics = []string{}
			}
			o.UniqueTopicsByArticle[i] = topics
		}
	}
	if o.CommonTopics == nil {
		o.CommonTopics = []string{}
	}
	return nil
}

// ComparativeSentimentScore groups the cross-article results.
type ComparativeSentimentScore struct {
	SentimentDistribution SentimentDistribution `json:"Sentiment Distribution"`
	CoverageDifferences   []CoverageDifference  `json:"Coverage Differences"`
	TopicOverlap          TopicOverlap          `json:"Topic Overlap"`
}

// Report is the full sentiment report for one company.
type Report struct {
	Company                   string                    `json:"Company"`
	Articles                  []ArticleAnalysis         `json:"Articles"`
	ComparativeSentimentScore ComparativeSentimentScore `json:"Comparative Sentiment Score"`
	FinalSentimentAnalysis    string                    `json:"Final Sentiment Analysis"`
}
