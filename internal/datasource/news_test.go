package datasource

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/seenimoa/newspulse/internal/config"
	"github.com/seenimoa/newspulse/internal/logger"
)

const rssTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>search</title>
%s
</channel></rss>`

func rssItem(title, link string) string {
	return fmt.Sprintf("<item><title>%s</title><link>%s</link></item>", title, link)
}

type fakeWeb struct {
	srv       *httptest.Server
	feedHits  atomic.Int32
	lastQuery atomic.Value

	mu    sync.Mutex
	items []string
}

func (fw *fakeWeb) setItems(items ...string) {
	fw.mu.Lock()
	fw.items = items
	fw.mu.Unlock()
}

func newFakeWeb(t *testing.T) *fakeWeb {
	t.Helper()
	fw := &fakeWeb{}
	mux := http.NewServeMux()
	mux.HandleFunc("/rss", func(w http.ResponseWriter, r *http.Request) {
		fw.feedHits.Add(1)
		fw.lastQuery.Store(r.URL.Query().Get("q"))
		w.Header().Set("Content-Type", "application/rss+xml")
		fw.mu.Lock()
		items := strings.Join(fw.items, "\n")
		fw.mu.Unlock()
		fmt.Fprintf(w, rssTemplate, items)
	})
	mux.HandleFunc("/article", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><nav>menu</nav><article><h1>Acme  grows</h1><p>Profit rose.</p>
<script>var x = 1;</script></article><p>footer</p></body></html>`)
	})
	mux.HandleFunc("/paragraphs", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><p>First part.</p><div>ignored</div><p>Second part.</p></body></html>`)
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	})
	mux.HandleFunc("/empty", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body></body></html>`)
	})
	fw.srv = httptest.NewServer(mux)
	t.Cleanup(fw.srv.Close)
	return fw
}

func (fw *fakeWeb) news(limit int) *GoogleNews {
	return NewGoogleNews(config.NewsConfig{
		FeedURL:           fw.srv.URL + "/rss?q=%s",
		MaxArticles:       limit,
		TimeoutSec:        5,
		ConcurrentFetches: 2,
		CacheTTLSec:       60,
	}, logger.Discard())
}

func TestFetchArticlesOrderAndSkips(t *testing.T) {
	fw := newFakeWeb(t)
	fw.setItems(
		rssItem("Acme grows - Reuters", fw.srv.URL+"/article"),
		rssItem("Broken link - Blog", fw.srv.URL+"/missing"),
		rssItem("No link", ""),
		rssItem("Blank page - Blog", fw.srv.URL+"/empty"),
		rssItem("Two paragraphs - Wire", fw.srv.URL+"/paragraphs"),
	)

	got, err := fw.news(10).FetchArticles(context.Background(), "Acme Corp", 0)
	if err != nil {
		t.Fatalf("FetchArticles: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d articles, want 2: %+v", len(got), got)
	}
	if got[0].Title != "Acme grows" || got[0].Content != "Acme grows Profit rose." {
		t.Errorf("article 1: got %+v", got[0])
	}
	if got[1].Title != "Two paragraphs" || got[1].Content != "First part. Second part." {
		t.Errorf("article 2: got %+v", got[1])
	}
	if q, _ := fw.lastQuery.Load().(string); q != "Acme Corp" {
		t.Errorf("query: got %q, want %q", q, "Acme Corp")
	}
}

func TestFetchArticlesLimit(t *testing.T) {
	fw := newFakeWeb(t)
	var items []string
	for i := 0; i < 6; i++ {
		items = append(items, rssItem(fmt.Sprintf("Story %d - Src", i), fw.srv.URL+"/paragraphs"))
	}
	fw.setItems(items...)

	got, err := fw.news(10).FetchArticles(context.Background(), "Acme", 3)
	if err != nil {
		t.Fatalf("FetchArticles: %v", err)
	}
	var titles []string
	for _, a := range got {
		titles = append(titles, a.Title)
	}
	want := []string{"Story 0", "Story 1", "Story 2"}
	if !reflect.DeepEqual(titles, want) {
		t.Errorf("titles: got %v, want %v", titles, want)
	}
}

func TestFetchArticlesRefillsAfterFailures(t *testing.T) {
	fw := newFakeWeb(t)
	fw.setItems(
		rssItem("Bad 1 - X", fw.srv.URL+"/missing"),
		rssItem("Good 1 - X", fw.srv.URL+"/paragraphs"),
		rssItem("Bad 2 - X", fw.srv.URL+"/missing"),
		rssItem("Good 2 - X", fw.srv.URL+"/article"),
		rssItem("Good 3 - X", fw.srv.URL+"/paragraphs"),
	)

	got, err := fw.news(10).FetchArticles(context.Background(), "Acme", 2)
	if err != nil {
		t.Fatalf("FetchArticles: %v", err)
	}
	if len(got) != 2 || got[0].Title != "Good 1" || got[1].Title != "Good 2" {
		t.Errorf("got %+v", got)
	}
}

func TestFetchArticlesNoArticles(t *testing.T) {
	fw := newFakeWeb(t)
	fw.setItems(rssItem("Broken - X", fw.srv.URL+"/missing"))

	_, err := fw.news(10).FetchArticles(context.Background(), "Nobody", 0)
	if !errors.Is(err, ErrNoArticles) {
		t.Errorf("got %v, want ErrNoArticles", err)
	}
}

func TestFetchArticlesFeedError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	g := NewGoogleNews(config.NewsConfig{FeedURL: srv.URL + "/?q=%s", MaxArticles: 5}, logger.Discard())
	_, err := g.FetchArticles(context.Background(), "Acme", 0)
	var httpErr *ErrHTTP
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("got %v, want ErrHTTP 503", err)
	}
}

func TestFetchArticlesCached(t *testing.T) {
	fw := newFakeWeb(t)
	fw.setItems(rssItem("Acme - X", fw.srv.URL+"/article"))
	g := fw.news(10)

	for i := 0; i < 3; i++ {
		if _, err := g.FetchArticles(context.Background(), "Acme", 0); err != nil {
			t.Fatalf("FetchArticles %d: %v", i, err)
		}
	}
	if n := fw.feedHits.Load(); n != 1 {
		t.Errorf("feed hits: got %d, want 1", n)
	}
}

func TestFetchArticlesCancelled(t *testing.T) {
	fw := newFakeWeb(t)
	fw.setItems(rssItem("Acme - X", fw.srv.URL+"/article"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := fw.news(10).FetchArticles(ctx, "Acme", 0); err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestStripSource(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Acme beats estimates - Reuters", "Acme beats estimates"},
		{"Q3 - the good - and the bad - CNBC", "Q3 - the good - and the bad"},
		{"No publisher", "No publisher"},
		{" - Reuters", "- Reuters"},
	}
	for _, tc := range tests {
		if got := stripSource(tc.in); got != tc.want {
			t.Errorf("stripSource(%q): got %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestExtractContent(t *testing.T) {
	u, _ := url.Parse("https://example.com/story")
	tests := []struct {
		name string
		page string
		want string
	}{
		{"article wins over paragraphs", `<p>outside</p><article><p>inside</p> text</article>`, "inside text"},
		{"paragraph fallback", `<div><p>one</p><p>two</p></div>`, "one two"},
		{"scripts dropped", `<article><script>alert(1)</script>body</article>`, "body"},
		{"empty", `<html><body></body></html>`, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := extractContent([]byte(tc.page), u); got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestErrHTTPError(t *testing.T) {
	err := &ErrHTTP{StatusCode: 404, Status: "404 Not Found", Body: "nope"}
	if !strings.Contains(err.Error(), "404") || !strings.Contains(err.Error(), "nope") {
		t.Errorf("Error(): got %q", err.Error())
	}
}
