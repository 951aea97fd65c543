package engine

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/seenimoa/newspulse/internal/analysis/comparative"
	"github.com/seenimoa/newspulse/pkg/models"
)

func TestAnalyzeMixedExample(t *testing.T) {
	articles := []models.ArticleInput{
		{Title: "Good news", Content: "great growth and profit"},
		{Title: "Bad news", Content: "decline and loss"},
	}
	r := Analyze("Acme", articles)

	gotSent := []models.Sentiment{r.Articles[0].Sentiment, r.Articles[1].Sentiment}
	wantSent := []models.Sentiment{models.SentimentPositive, models.SentimentNegative}
	if !reflect.DeepEqual(gotSent, wantSent) {
		t.Errorf("sentiments: got %v, want %v", gotSent, wantSent)
	}

	wantDist := models.SentimentDistribution{Positive: 1, Negative: 1, Neutral: 0}
	if r.ComparativeSentimentScore.SentimentDistribution != wantDist {
		t.Errorf("distribution: got %+v, want %+v", r.ComparativeSentimentScore.SentimentDistribution, wantDist)
	}

	if n := len(r.ComparativeSentimentScore.CoverageDifferences); n != 2 {
		t.Errorf("coverage differences: got %d, want 2", n)
	}

	want := "Acme's latest news coverage is mixed. There are both positive and negative aspects in the recent news."
	if r.FinalSentimentAnalysis != want {
		t.Errorf("final:\n got %q\nwant %q", r.FinalSentimentAnalysis, want)
	}

	// "profit" triggers Financial Performance on the first article only.
	if !reflect.DeepEqual(r.Articles[0].Topics, []string{"Financial Performance"}) {
		t.Errorf("article 1 topics: got %v", r.Articles[0].Topics)
	}
	if len(r.Articles[1].Topics) != 0 {
		t.Errorf("article 2 topics: got %v", r.Articles[1].Topics)
	}
}

func TestAnalyzeEmpty(t *testing.T) {
	r := Analyze("Acme", nil)

	if r.Company != "Acme" {
		t.Errorf("Company: got %q", r.Company)
	}
	if r.Articles == nil || len(r.Articles) != 0 {
		t.Errorf("Articles: expected empty non-nil slice, got %#v", r.Articles)
	}
	score := r.ComparativeSentimentScore
	if score.SentimentDistribution != (models.SentimentDistribution{}) {
		t.Errorf("distribution: got %+v", score.SentimentDistribution)
	}
	if !reflect.DeepEqual(score.CoverageDifferences, []models.CoverageDifference{comparative.NeutralCoverage}) {
		t.Errorf("coverage: got %+v", score.CoverageDifferences)
	}
	want := "Acme's latest news coverage is mixed. There are both positive and negative aspects in the recent news."
	if r.FinalSentimentAnalysis != want {
		t.Errorf("final: got %q", r.FinalSentimentAnalysis)
	}

	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !strings.Contains(string(data), `"Articles":[]`) {
		t.Errorf("expected empty Articles array in %s", data)
	}
}

func TestClassifyArticleEmptyContent(t *testing.T) {
	a := ClassifyArticle("Acme", models.ArticleInput{Title: "Untitled"})
	if a.Title != "Untitled" {
		t.Errorf("Title: got %q", a.Title)
	}
	if a.Summary != "" {
		t.Errorf("Summary: got %q, want empty", a.Summary)
	}
	if a.Sentiment != models.SentimentNeutral {
		t.Errorf("Sentiment: got %s, want Neutral", a.Sentiment)
	}
	if len(a.Topics) != 0 {
		t.Errorf("Topics: got %v, want none", a.Topics)
	}
}

func TestClassifyArticle(t *testing.T) {
	in := models.ArticleInput{
		Title: "Acme beats estimates",
		Content: "Acme reported record quarterly earnings. Analysts at Goldman cheered\n" +
			"the growth. The stock rose in Frankfurt. More to come",
	}
	a := ClassifyArticle("Acme", in)

	if a.Summary != "Acme reported record quarterly earnings. Analysts at Goldman cheered the growth..." {
		t.Errorf("Summary: got %q", a.Summary)
	}
	if a.Sentiment != models.SentimentPositive {
		t.Errorf("Sentiment: got %s", a.Sentiment)
	}
	want := []string{"Stock Market", "Financial Performance", "Analysts", "Goldman", "The"}
	if !reflect.DeepEqual(a.Topics, want) {
		t.Errorf("Topics: got %v, want %v", a.Topics, want)
	}
}

func TestAnalyzePreservesOrderAndIndexes(t *testing.T) {
	articles := []models.ArticleInput{
		{Title: "one", Content: "Tesla builds an electric vehicle"},
		{Title: "two", Content: "Ford builds an electric vehicle"},
		{Title: "three", Content: "nothing to see"},
	}
	r := Analyze("Acme", articles)
	for i, a := range r.Articles {
		if a.Title != articles[i].Title {
			t.Errorf("article %d: got title %q, want %q", i, a.Title, articles[i].Title)
		}
	}
	overlap := r.ComparativeSentimentScore.TopicOverlap
	if !reflect.DeepEqual(overlap.CommonTopics, []string{"Electric Vehicles"}) {
		t.Errorf("CommonTopics: got %v", overlap.CommonTopics)
	}
	wantUnique := map[int][]string{1: {"Tesla"}, 2: {"Ford"}, 3: {}}
	if !reflect.DeepEqual(overlap.UniqueTopicsByArticle, wantUnique) {
		t.Errorf("Unique: got %v, want %v", overlap.UniqueTopicsByArticle, wantUnique)
	}
}

func TestAnalyzeIdempotent(t *testing.T) {
	articles := []models.ArticleInput{
		{Title: "a", Content: "Tesla shares fall. Regulators raise concern. Musk responds"},
		{Title: "b", Content: "Record growth for Tesla in China. Profit up"},
		{Title: "c", Content: ""},
	}
	first, err := json.Marshal(Analyze("Tesla", articles))
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		again, err := json.Marshal(Analyze("Tesla", articles))
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(first, again) {
			t.Fatalf("run %d differs:\n%s\n%s", i, first, again)
		}
	}
}

func TestAnalyzeConcurrent(t *testing.T) {
	articles := []models.ArticleInput{
		{Title: "a", Content: "great success"},
		{Title: "b", Content: "Berlin market update"},
	}
	want, _ := json.Marshal(Analyze("Acme", articles))

	var wg sync.WaitGroup
	errs := make(chan string, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, _ := json.Marshal(Analyze("Acme", articles))
			if !bytes.Equal(got, want) {
				errs <- string(got)
			}
		}()
	}
	wg.Wait()
	close(errs)
	for e := range errs {
		t.Errorf("concurrent run differs: %s", e)
	}
}

func TestAnalyzeDistributionSums(t *testing.T) {
	articles := []models.ArticleInput{
		{Content: "good"}, {Content: "bad"}, {Content: "meh"}, {Content: "good good bad"},
	}
	r := Analyze("Acme", articles)
	if got := r.ComparativeSentimentScore.SentimentDistribution.Total(); got != len(articles) {
		t.Errorf("distribution total %d, want %d", got, len(articles))
	}
}
