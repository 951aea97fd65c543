// Package storage persists sentiment reports keyed by company slug.
// Reports are stored in their JSON wire format so any backend can serve
// them byte-for-byte to API clients.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/seenimoa/newspulse/internal/config"
	"github.com/seenimoa/newspulse/pkg/models"
)

// ErrNotFound is returned when no report exists for a company.
var ErrNotFound = errors.New("report not found")

// Store is the persistence contract for reports.
type Store interface {
	// Save replaces the stored report for r.Company.
	Save(ctx context.Context, r *models.Report) error

	// Load returns the report for company or ErrNotFound.
	Load(ctx context.Context, company string) (*models.Report, error)

	// List returns the company names of all stored reports, ordered by slug.
	List(ctx context.Context) ([]string, error)

	Close() error
}

// Open builds the store selected by cfg.Storage.Driver and, when the cache
// is enabled, wraps it with a Redis read-through cache.
func Open(ctx context.Context, cfg *config.Config, log *logrus.Logger) (Store, error) {
	var (
		s   Store
		err error
	)
	switch cfg.Storage.Driver {
	case "", "file":
		s, err = NewFileStore(cfg.Storage.Dir)
	case "sqlite":
		s, err = NewSQLiteStore(ctx, cfg.Storage.SQLitePath)
	case "postgres":
		s, err = NewPostgresStore(ctx, cfg.Storage.PostgresDSN)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
	if err != nil {
		return nil, err
	}
	log.WithField("driver", cfg.Storage.Driver).Debug("report store opened")

	if !cfg.Cache.Enabled {
		return s, nil
	}
	rdb := NewRedisClient(cfg.Cache)
	return NewCachedStore(s, rdb, time.Duration(cfg.Cache.TTLSec)*time.Second, log), nil
}

func encode(r *models.Report) ([]byte, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encode report %q: %w", r.Company, err)
	}
	return data, nil
}

func decode(data []byte) (*models.Report, error) {
	var r models.Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	if r.Articles == nil {
		r.Articles = []models.ArticleAnalysis{}
	}
	return &r, nil
}
