// Package pipeline wires acquisition, analysis and persistence together:
// fetch a company's articles, build its report, store it and tell
// listeners about it.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/seenimoa/newspulse/internal/datasource"
	"github.com/seenimoa/newspulse/internal/engine"
	"github.com/seenimoa/newspulse/internal/storage"
	"github.com/seenimoa/newspulse/pkg/models"
)

// Listener is told about every report the runner stores.
type Listener interface {
	ReportUpdated(ctx context.Context, r *models.Report)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(ctx context.Context, r *models.Report)

// ReportUpdated calls f.
func (f ListenerFunc) ReportUpdated(ctx context.Context, r *models.Report) { f(ctx, r) }

// RunSummary reports the outcome of a batch run.
type RunSummary struct {
	Processed []string      `json:"processed"`
	Skipped   []string      `json:"skipped"` // no articles
	Failed    []string      `json:"failed"`
	Duration  time.Duration `json:"duration"`
}

// Runner executes the fetch-analyze-store pipeline.
type Runner struct {
	source datasource.NewsSource
	store  storage.Store
	limit  int
	log    *logrus.Logger

	mu        sync.RWMutex
	listeners []Listener
}

// NewRunner creates a runner that asks source for up to limit articles.
func NewRunner(source datasource.NewsSource, store storage.Store, limit int, log *logrus.Logger) *Runner {
	return &Runner{source: source, store: store, limit: limit, log: log}
}

// AddListener registers l for report updates.
func (r *Runner) AddListener(l Listener) {
	r.mu.Lock()
	r.listeners = append(r.listeners, l)
	r.mu.Unlock()
}

// Analyze builds and stores a report from articles the caller supplies.
func (r *Runner) Analyze(ctx context.Context, company string, articles []models.ArticleInput) (*models.Report, error) {
	report := engine.Analyze(company, articles)
	if err := r.store.Save(ctx, report); err != nil {
		return nil, fmt.Errorf("save report for %q: %w", company, err)
	}
	r.notify(ctx, report)
	return report, nil
}

// RunCompany fetches fresh articles for company and stores the new report.
// It returns datasource.ErrNoArticles (wrapped) when nothing was found,
// leaving any previous report untouched.
func (r *Runner) RunCompany(ctx context.Context, company string) (*models.Report, error) {
	log := r.log.WithField("company", company)
	log.Info("processing company")

	articles, err := r.source.FetchArticles(ctx, company, r.limit)
	if err != nil {
		return nil, err
	}
	report, err := r.Analyze(ctx, company, articles)
	if err != nil {
		return nil, err
	}
	log.WithField("articles", len(report.Articles)).Info("report saved")
	return report, nil
}

// RunAll processes companies one after another. Per-company failures are
// logged and recorded; only context cancellation stops the batch.
func (r *Runner) RunAll(ctx context.Context, companies []string) (RunSummary, error) {
	start := time.Now()
	sum := RunSummary{Processed: []string{}, Skipped: []string{}, Failed: []string{}}

	for _, c := range companies {
		if err := ctx.Err(); err != nil {
			sum.Duration = time.Since(start)
			return sum, err
		}
		_, err := r.RunCompany(ctx, c)
		switch {
		case err == nil:
			sum.Processed = append(sum.Processed, c)
		case errors.Is(err, datasource.ErrNoArticles):
			r.log.WithField("company", c).Warn("no articles found, skipping")
			sum.Skipped = append(sum.Skipped, c)
		case ctx.Err() != nil:
			sum.Duration = time.Since(start)
			return sum, ctx.Err()
		default:
			r.log.WithError(err).WithField("company", c).Error("company failed")
			sum.Failed = append(sum.Failed, c)
		}
	}

	sum.Duration = time.Since(start)
	r.log.WithFields(logrus.Fields{
		"processed": len(sum.Processed),
		"skipped":   len(sum.Skipped),
		"failed":    len(sum.Failed),
		"duration":  sum.Duration.Round(time.Millisecond),
	}).Info("batch run finished")
	return sum, nil
}

func (r *Runner) notify(ctx context.Context, report *models.Report) {
	r.mu.RLock()
	ls := append([]Listener(nil), r.listeners...)
	r.mu.RUnlock()
	for _, l := range ls {
		l.ReportUpdated(ctx, report)
	}
}
