package storage

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/seenimoa/newspulse/internal/config"
	"github.com/seenimoa/newspulse/pkg/models"
	"github.com/seenimoa/newspulse/pkg/utils"
)

// RedisClient is the subset of *redis.Client the cache uses.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Close() error
}

// NewRedisClient builds a client from the cache config section.
func NewRedisClient(cfg config.CacheConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
}

// CachedStore fronts another Store with Redis. Reads go to Redis first;
// writes go to the backing store, then refresh the cache. Redis errors are
// logged and otherwise ignored.
type CachedStore struct {
	next Store
	rdb  RedisClient
	ttl  time.Duration
	log  *logrus.Logger
}

// NewCachedStore wraps next with a cache whose entries live for ttl.
func NewCachedStore(next Store, rdb RedisClient, ttl time.Duration, log *logrus.Logger) *CachedStore {
	return &CachedStore{next: next, rdb: rdb, ttl: ttl, log: log}
}

// CacheKey is the Redis key for a company's report.
func CacheKey(company string) string {
	return "report:" + utils.Slug(company)
}

// Save persists r and then refreshes its cache entry.
func (s *CachedStore) Save(ctx context.Context, r *models.Report) error {
	if err := s.next.Save(ctx, r); err != nil {
		return err
	}
	data, err := encode(r)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, CacheKey(r.Company), data, s.ttl).Err(); err != nil {
		s.log.WithError(err).WithField("company", r.Company).Warn("cache write failed")
		// Drop whatever stale entry may remain.
		s.rdb.Del(ctx, CacheKey(r.Company))
	}
	return nil
}

// Load serves from Redis when possible and fills it on a miss.
func (s *CachedStore) Load(ctx context.Context, company string) (*models.Report, error) {
	key := CacheKey(company)
	data, err := s.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		if r, derr := decode(data); derr == nil {
			return r, nil
		}
		s.log.WithField("key", key).Warn("discarding undecodable cache entry")
	case !errors.Is(err, redis.Nil):
		s.log.WithError(err).WithField("key", key).Warn("cache read failed")
	}

	r, err := s.next.Load(ctx, company)
	if err != nil {
		return nil, err
	}
	if data, err := encode(r); err == nil {
		if err := s.rdb.Set(ctx, key, data, s.ttl).Err(); err != nil {
			s.log.WithError(err).WithField("key", key).Debug("cache fill failed")
		}
	}
	return r, nil
}

// List is served by the backing store.
func (s *CachedStore) List(ctx context.Context) ([]string, error) {
	return s.next.List(ctx)
}

// Close closes both Redis and the backing store.
func (s *CachedStore) Close() error {
	rerr := s.rdb.Close()
	if err := s.next.Close(); err != nil {
		return err
	}
	return rerr
}
