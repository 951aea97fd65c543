package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/seenimoa/newspulse/internal/companies"
	"github.com/seenimoa/newspulse/internal/datasource"
	"github.com/seenimoa/newspulse/internal/logger"
	"github.com/seenimoa/newspulse/internal/pipeline"
	"github.com/seenimoa/newspulse/internal/scheduler"
	"github.com/seenimoa/newspulse/internal/speech"
	"github.com/seenimoa/newspulse/internal/storage"
	"github.com/seenimoa/newspulse/pkg/models"
)

// app holds the collaborators shared by the commands.
type app struct {
	log    *logrus.Logger
	source datasource.NewsSource
	store  storage.Store
	runner *pipeline.Runner
}

func newApp(ctx context.Context) (*app, error) {
	log := logger.Log
	store, err := storage.Open(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("open report store: %w", err)
	}
	source := datasource.NewGoogleNews(cfg.News, log)
	return &app{
		log:    log,
		source: source,
		store:  store,
		runner: pipeline.NewRunner(source, store, cfg.News.MaxArticles, log),
	}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.log.WithError(err).Warn("closing report store")
	}
}

// dropStaleAudio removes cached audio whenever a company's report is
// replaced, so the next TTS request voices the new verdict.
func (a *app) dropStaleAudio() {
	a.runner.AddListener(pipeline.ListenerFunc(func(_ context.Context, r *models.Report) {
		path := speech.AudioPath(cfg.Storage.Dir, r.Company, cfg.Speech.Language)
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			a.log.WithError(err).WithField("path", path).Warn("could not remove stale audio")
		}
	}))
}

// runAll processes every company in the configured list.
func (a *app) runAll(ctx context.Context) (pipeline.RunSummary, error) {
	list, err := companies.Load(cfg.Companies.File)
	if err != nil {
		return pipeline.RunSummary{}, err
	}
	return a.runner.RunAll(ctx, list)
}

// startScheduler schedules runAll on the configured cron spec. Jobs run
// under ctx, so cancelling it aborts an in-flight batch.
func (a *app) startScheduler(ctx context.Context) (*scheduler.Scheduler, error) {
	sched, err := scheduler.NewScheduler(cfg.Schedule.Timezone, a.log)
	if err != nil {
		return nil, err
	}
	err = sched.Schedule(cfg.Schedule.Cron, func(context.Context) {
		if _, err := a.runAll(ctx); err != nil {
			a.log.WithError(err).Error("scheduled run failed")
		}
	})
	if err != nil {
		return nil, err
	}
	sched.Start()
	a.log.WithFields(logrus.Fields{
		"spec": cfg.Schedule.Cron,
		"next": sched.Next().In(sched.Location()).Format("2006-01-02 15:04 MST"),
	}).Info("scheduler started")
	return sched, nil
}
