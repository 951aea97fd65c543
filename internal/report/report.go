// Package report renders sentiment reports for people and machines: the
// JSON wire format, YAML, a terminal listing and a self-contained HTML page.
package report

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/seenimoa/newspulse/pkg/models"
)

// ReportFormat specifies the output format.
type ReportFormat string

const (
	FormatJSON ReportFormat = "json"
	FormatYAML ReportFormat = "yaml"
	FormatText ReportFormat = "text"
	FormatHTML ReportFormat = "html"
)

// Formats lists every supported format.
func Formats() []ReportFormat {
	return []ReportFormat{FormatJSON, FormatYAML, FormatText, FormatHTML}
}

// ParseFormat resolves a user-supplied format name.
func ParseFormat(s string) (ReportFormat, error) {
	f := ReportFormat(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats() {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown format %q (want json, yaml, text or html)", s)
}

// Options tune rendering. The zero value is valid.
type Options struct {
	AudioURL    string    // HTML only: link to the spoken verdict
	GeneratedAt time.Time // HTML and text header; zero means now
}

// Render writes r to w in the given format.
func Render(w io.Writer, r *models.Report, format ReportFormat, opts Options) error {
	if r == nil {
		return fmt.Errorf("report is nil")
	}
	switch format {
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(toYAML(r)); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case FormatText:
		_, err := io.WriteString(w, renderText(r, opts))
		return err
	case FormatHTML:
		return renderHTML(w, r, opts)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

// ════════════════════════════════════════════════════════════════════
// YAML, ordered like the JSON wire format
// ════════════════════════════════════════════════════════════════════

func toYAML(r *models.Report) *yaml.Node {
	doc := mapping()
	addPair(doc, "Company", scalar(r.Company))

	articles := &yaml.Node{Kind: yaml.SequenceNode}
	for _, a := range r.Articles {
		m := mapping()
		addPair(m, "Title", scalar(a.Title))
		addPair(m, "Summary", scalar(a.Summary))
		addPair(m, "Sentiment", scalar(string(a.Sentiment)))
		addPair(m, "Topics", stringSeq(a.Topics))
		articles.Content = append(articles.Content, m)
	}
	addPair(doc, "Articles", articles)

	score := r.ComparativeSentimentScore
	dist := mapping()
	for _, s := range models.Sentiments() {
		addPair(dist, string(s), &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: fmt.Sprint(score.SentimentDistribution.Count(s))})
	}
	diffs := &yaml.Node{Kind: yaml.SequenceNode}
	for _, d := range score.CoverageDifferences {
		m := mapping()
		addPair(m, "Comparison", scalar(d.Comparison))
		addPair(m, "Impact", scalar(d.Impact))
		diffs.Content = append(diffs.Content, m)
	}
	overlap := mapping()
	addPair(overlap, "Common Topics", stringSeq(score.TopicOverlap.CommonTopics))
	for _, i := range score.TopicOverlap.ArticleIndexes() {
		addPair(overlap, models.UniqueKey(i), stringSeq(score.TopicOverlap.UniqueTopicsByArticle[i]))
	}

	cmp := mapping()
	addPair(cmp, "Sentiment Distribution", dist)
	addPair(cmp, "Coverage Differences", diffs)
	addPair(cmp, "Topic Overlap", overlap)
	addPair(doc, "Comparative Sentiment Score", cmp)
	addPair(doc, "Final Sentiment Analysis", scalar(r.FinalSentimentAnalysis))
	return doc
}

func mapping() *yaml.Node { return &yaml.Node{Kind: yaml.MappingNode} }

func scalar(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
}

func stringSeq(vs []string) *yaml.Node {
	n := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, v := range vs {
		n.Content = append(n.Content, scalar(v))
	}
	return n
}

func addPair(m *yaml.Node, key string, value *yaml.Node) {
	m.Content = append(m.Content, scalar(key), value)
}

// ════════════════════════════════════════════════════════════════════
// HTML
// ════════════════════════════════════════════════════════════════════

// ReportData is the template model passed to the HTML template.
type ReportData struct {
	Title       string
	Company     string
	GeneratedAt string
	Articles    []ArticleRow
	Bars        []BarRow
	Chart       template.HTML
	Differences []models.CoverageDifference
	Common      string
	Unique      []UniqueRow
	Final       string
	AudioURL    string
}

// ArticleRow is one article in the template.
type ArticleRow struct {
	Index          int
	Title          string
	Summary        string
	Sentiment      string
	SentimentClass string
	Topics         string
}

// BarRow is one row of the distribution table.
type BarRow struct {
	Label string
	Class string
	Count int
	Pct   int
}

// UniqueRow is one "Unique Topics in Article N" line.
type UniqueRow struct {
	Label  string
	Topics string
}

var reportTmpl = template.Must(template.New("report").Parse(ReportTemplate))

func renderHTML(w io.Writer, r *models.Report, opts Options) error {
	if err := reportTmpl.Execute(w, buildReportData(r, opts)); err != nil {
		return fmt.Errorf("executing template: %w", err)
	}
	return nil
}

func buildReportData(r *models.Report, opts Options) ReportData {
	score := r.ComparativeSentimentScore
	data := ReportData{
		Title:       fmt.Sprintf("News Sentiment Report: %s", r.Company),
		Company:     r.Company,
		GeneratedAt: timestamp(opts.GeneratedAt),
		Chart:       template.HTML(DistributionChart(score.SentimentDistribution, DefaultChartConfig())),
		Differences: score.CoverageDifferences,
		Common:      joinTopics(score.TopicOverlap.CommonTopics),
		Final:       r.FinalSentimentAnalysis,
		AudioURL:    opts.AudioURL,
	}

	for i, a := range r.Articles {
		data.Articles = append(data.Articles, ArticleRow{
			Index:          i + 1,
			Title:          a.Title,
			Summary:        a.Summary,
			Sentiment:      string(a.Sentiment),
			SentimentClass: strings.ToLower(string(a.Sentiment)),
			Topics:         joinTopics(a.Topics),
		})
	}

	total := score.SentimentDistribution.Total()
	for _, s := range models.Sentiments() {
		n := score.SentimentDistribution.Count(s)
		pct := 0
		if total > 0 {
			pct = n * 100 / total
		}
		data.Bars = append(data.Bars, BarRow{Label: string(s), Class: strings.ToLower(string(s)), Count: n, Pct: pct})
	}

	for _, i := range score.TopicOverlap.ArticleIndexes() {
		data.Unique = append(data.Unique, UniqueRow{
			Label:  models.UniqueKey(i),
			Topics: joinTopics(score.TopicOverlap.UniqueTopicsByArticle[i]),
		})
	}
	return data
}

// joinTopics renders a topic list, or "None" when it is empty.
func joinTopics(ts []string) string {
	if len(ts) == 0 {
		return "None"
	}
	return strings.Join(ts, ", ")
}

func timestamp(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format("02 Jan 2006, 15:04 UTC")
}

// ════════════════════════════════════════════════════════════════════
// Plain-text renderer
// ════════════════════════════════════════════════════════════════════

func renderText(r *models.Report, opts Options) string {
	var sb strings.Builder
	line := strings.Repeat("═", 60)
	thinLine := strings.Repeat("─", 60)
	score := r.ComparativeSentimentScore

	sb.WriteString(line + "\n")
	sb.WriteString(fmt.Sprintf("  News Sentiment Report: %s\n", r.Company))
	sb.WriteString(fmt.Sprintf("  Generated: %s | Articles: %d\n", timestamp(opts.GeneratedAt), len(r.Articles)))
	sb.WriteString(line + "\n")

	for i, a := range r.Articles {
		sb.WriteString(fmt.Sprintf("\n  [%d] %s\n", i+1, a.Title))
		sb.WriteString(fmt.Sprintf("      Summary:   %s\n", a.Summary))
		sb.WriteString(fmt.Sprintf("      Sentiment: %s\n", a.Sentiment))
		sb.WriteString(fmt.Sprintf("      Topics:    %s\n", joinTopics(a.Topics)))
	}
	if len(r.Articles) == 0 {
		sb.WriteString("\n  No articles.\n")
	}
	sb.WriteString(thinLine + "\n")

	sb.WriteString("\n  ■ SENTIMENT DISTRIBUTION\n")
	for _, s := range models.Sentiments() {
		n := score.SentimentDistribution.Count(s)
		sb.WriteString(fmt.Sprintf("    %-9s %3d %s\n", s, n, strings.Repeat("█", n)))
	}

	sb.WriteString("\n  ■ COVERAGE DIFFERENCES\n")
	for _, d := range score.CoverageDifferences {
		sb.WriteString(fmt.Sprintf("    • %s\n", d.Comparison))
		sb.WriteString(fmt.Sprintf("      Impact: %s\n", d.Impact))
	}

	sb.WriteString("\n  ■ TOPIC OVERLAP\n")
	sb.WriteString(fmt.Sprintf("    Common Topics: %s\n", joinTopics(score.TopicOverlap.CommonTopics)))
	for _, i := range score.TopicOverlap.ArticleIndexes() {
		sb.WriteString(fmt.Sprintf("    %s: %s\n", models.UniqueKey(i), joinTopics(score.TopicOverlap.UniqueTopicsByArticle[i])))
	}
	sb.WriteString(thinLine + "\n")

	sb.WriteString("\n  ★ FINAL SENTIMENT\n")
	sb.WriteString(fmt.Sprintf("  %s\n", r.FinalSentimentAnalysis))
	sb.WriteString(line + "\n")
	return sb.String()
}
