package datasource

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
	"github.com/mmcdole/gofeed"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/newspulse/internal/config"
	"github.com/seenimoa/newspulse/internal/infra"
	"github.com/seenimoa/newspulse/pkg/models"
)

// GoogleNews searches the Google News RSS feed for a company and scrapes
// the text of each linked article.
type GoogleNews struct {
	feedURL      string
	userAgent    string
	defaultLimit int
	concurrency  int
	client       *http.Client
	cache        *infra.Cache[[]models.ArticleInput]
	limiter      infra.Limiter
	parser       *gofeed.Parser
	log          *logrus.Logger
}

// NewGoogleNews creates a news source from the news config section.
func NewGoogleNews(cfg config.NewsConfig, log *logrus.Logger) *GoogleNews {
	ua := cfg.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	conc := cfg.ConcurrentFetches
	if conc <= 0 {
		conc = 1
	}
	return &GoogleNews{
		feedURL:      cfg.FeedURL,
		userAgent:    ua,
		defaultLimit: cfg.MaxArticles,
		concurrency:  conc,
		client:       newHTTPClient(cfg.Timeout()),
		cache:        infra.NewCache[[]models.ArticleInput](time.Duration(cfg.CacheTTLSec) * time.Second),
		limiter:      infra.NewLimiter(cfg.RequestsPerSec),
		parser:       gofeed.NewParser(),
		log:          log,
	}
}

// Name returns the data source name.
func (g *GoogleNews) Name() string { return "Google News" }

type feedItem struct {
	title string
	link  string
}

// FetchArticles returns up to limit scraped articles about company. A
// non-positive limit falls back to the configured maximum. Articles that
// fail to download or have no text are skipped; the rest keep feed order.
func (g *GoogleNews) FetchArticles(ctx context.Context, company string, limit int) ([]models.ArticleInput, error) {
	if limit <= 0 {
		limit = g.defaultLimit
	}
	cacheKey := fmt.Sprintf("news:%s:%d", strings.ToLower(company), limit)
	if cached, ok := g.cache.Get(cacheKey); ok {
		return cached, nil
	}

	items, err := g.fetchFeed(ctx, company)
	if err != nil {
		return nil, err
	}

	articles := make([]models.ArticleInput, 0, limit)
	// Fetch in batches sized to what is still missing, so a healthy feed
	// costs exactly limit page downloads.
	for next := 0; next < len(items) && len(articles) < limit; {
		end := min(next+limit-len(articles), len(items))
		batch := items[next:end]
		next = end

		contents := make([]string, len(batch))
		eg, egCtx := errgroup.WithContext(ctx)
		eg.SetLimit(g.concurrency)
		for i, it := range batch {
			eg.Go(func() error {
				text, err := g.fetchArticle(egCtx, it.link)
				if err != nil {
					g.log.WithError(err).WithField("url", it.link).Debug("skipping article")
					return nil
				}
				contents[i] = text
				return nil
			})
		}
		_ = eg.Wait()
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		for i, text := range contents {
			if text == "" || len(articles) >= limit {
				continue
			}
			articles = append(articles, models.ArticleInput{Title: batch[i].title, Content: text})
		}
	}

	if len(articles) == 0 {
		return nil, fmt.Errorf("%w for %q", ErrNoArticles, company)
	}

	g.cache.Set(cacheKey, articles)
	g.log.WithFields(logrus.Fields{"company": company, "count": len(articles)}).Info("fetched articles")
	return articles, nil
}

// fetchFeed downloads and parses the search feed for company.
func (g *GoogleNews) fetchFeed(ctx context.Context, company string) ([]feedItem, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	feedURL := fmt.Sprintf(g.feedURL, url.QueryEscape(company))
	body, err := doGet(ctx, g.client, feedURL, map[string]string{"User-Agent": g.userAgent})
	if err != nil {
		return nil, fmt.Errorf("fetch feed for %q: %w", company, err)
	}

	feed, err := g.parser.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed for %q: %w", company, err)
	}

	items := make([]feedItem, 0, len(feed.Items))
	for _, item := range feed.Items {
		link := strings.TrimSpace(item.Link)
		if link == "" {
			continue
		}
		items = append(items, feedItem{title: stripSource(item.Title), link: link})
	}
	return items, nil
}

// fetchArticle downloads a page and extracts its text.
func (g *GoogleNews) fetchArticle(ctx context.Context, link string) (string, error) {
	pageURL, err := url.Parse(link)
	if err != nil || pageURL.Scheme == "" || pageURL.Host == "" {
		return "", fmt.Errorf("invalid URL: %s", link)
	}
	if err := g.limiter.Wait(ctx); err != nil {
		return "", err
	}
	body, err := doGet(ctx, g.client, link, map[string]string{"User-Agent": g.userAgent})
	if err != nil {
		return "", err
	}
	return extractContent(body, pageURL), nil
}

// stripSource removes the trailing " - Publisher" Google appends to titles.
func stripSource(title string) string {
	title = strings.TrimSpace(title)
	if i := strings.LastIndex(title, " - "); i > 0 {
		return strings.TrimSpace(title[:i])
	}
	return title
}

// extractContent returns the text of the first <article> element, or all
// <p> texts joined when there is none. Pages where both come up empty are
// handed to readability.
func extractContent(page []byte, pageURL *url.URL) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err == nil {
		doc.Find("script, style, noscript").Remove()

		var text string
		if art := doc.Find("article").First(); art.Length() > 0 {
			text = joinText(art)
		} else {
			parts := doc.Find("p").Map(func(_ int, s *goquery.Selection) string {
				return s.Text()
			})
			text = normalizeSpace(strings.Join(parts, " "))
		}
		if text != "" {
			return text
		}
	}

	article, err := readability.FromReader(bytes.NewReader(page), pageURL)
	if err != nil {
		return ""
	}
	return normalizeSpace(article.TextContent)
}

// joinText concatenates every text node under sel with single spaces.
func joinText(sel *goquery.Selection) string {
	var parts []string
	var walk func(s *goquery.Selection)
	walk = func(s *goquery.Selection) {
		s.Contents().Each(func(_ int, c *goquery.Selection) {
			if goquery.NodeName(c) == "#text" {
				parts = append(parts, c.Text())
				return
			}
			walk(c)
		})
	}
	walk(sel)
	return normalizeSpace(strings.Join(parts, " "))
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
