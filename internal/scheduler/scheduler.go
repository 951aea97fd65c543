// Package scheduler runs the batch pipeline on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"sync"
	"time"
	_ "time/tzdata"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

var timeRegex = regexp.MustCompile(`^([01][0-9]|2[0-3]):([0-5][0-9])$`)

// Scheduler manages a single cron job with timezone support. A run that
// is still going when the next one is due causes that next run to be skipped.
type Scheduler struct {
	cron     *cron.Cron
	location *time.Location
	log      *logrus.Logger

	mu      sync.Mutex
	entryID cron.EntryID
	started bool
}

// NewScheduler creates a new scheduler for the given timezone.
func NewScheduler(timezone string, log *logrus.Logger) (*Scheduler, error) {
	if timezone == "" {
		timezone = "UTC"
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", timezone, err)
	}

	cl := cron.PrintfLogger(log)
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		location: loc,
		log:      log,
	}, nil
}

// Schedule replaces the current job with fn on spec. spec is a standard
// five-field cron expression, a descriptor such as "@every 1h", or a daily
// "HH:MM" time.
func (s *Scheduler) Schedule(spec string, fn func(ctx context.Context)) error {
	spec, err := ParseSpec(spec)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Remove existing job if any
	if s.entryID != 0 {
		s.cron.Remove(s.entryID)
		s.entryID = 0
	}

	entryID, err := s.cron.AddFunc(spec, func() {
		start := time.Now()
		s.log.WithField("spec", spec).Info("scheduled run starting")
		fn(context.Background())
		s.log.WithField("duration", time.Since(start).Round(time.Millisecond)).Info("scheduled run finished")
	})
	if err != nil {
		return fmt.Errorf("add cron job: %w", err)
	}
	s.entryID = entryID
	return nil
}

// Next returns when the job fires next, or the zero time if none is
// scheduled or the scheduler is not running.
func (s *Scheduler) Next() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.entryID == 0 {
		return time.Time{}
	}
	return s.cron.Entry(s.entryID).Next
}

// Location returns the scheduler's timezone.
func (s *Scheduler) Location() *time.Location { return s.location }

// Start begins the scheduler.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		s.cron.Start()
		s.started = true
	}
}

// Stop halts the scheduler and waits for a running job to finish or ctx
// to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	done := s.cron.Stop()
	s.started = false
	s.mu.Unlock()

	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ParseSpec turns a daily "HH:MM" into a cron expression and validates
// everything else with the standard parser.
func ParseSpec(spec string) (string, error) {
	if m := timeRegex.FindStringSubmatch(spec); len(m) == 3 {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		// Cron format: minute hour day month weekday
		return fmt.Sprintf("%d %d * * *", minute, hour), nil
	}
	if _, err := cron.ParseStandard(spec); err != nil {
		return "", fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return spec, nil
}
