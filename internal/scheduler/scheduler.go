// Package scheduler fires the weekly publication slots. It is a thin
// layer over robfig/cron: the slot set is fixed at startup (three
// weekdays, one time-of-day), not a general cron surface.
package scheduler

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"chessbot/pkg/logx"
)

type Config struct {
	// Days are weekday abbreviations understood by cron (TUE, THU, ...).
	Days []string
	// Hour/Minute are the wall-clock slot time in Timezone.
	Hour, Minute int
	Timezone     string // IANA TZ, e.g. "Europe/Kyiv"
}

type job struct {
	name string
	run  func(ctx context.Context)
	// busy guards against a slot firing while the previous run is still
	// in flight; the late tick is dropped, the next slot re-attempts.
	busy atomic.Bool
}

type Service struct {
	cfg    Config
	log    logx.Logger
	parser cron.Parser

	mu      sync.Mutex
	jobs    []*job
	c       *cron.Cron
	runCtx  context.Context
	cancel  context.CancelFunc
	started bool
}

func New(cfg Config, log logx.Logger) *Service {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Service{
		cfg:    cfg,
		log:    log,
		parser: cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow),
	}
}

// Add registers a named job for the weekly slots. Must be called before
// Start.
func (s *Service) Add(name string, run func(ctx context.Context)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, &job{name: name, run: run})
}

// Spec renders the slot set as a 5-field cron expression.
func Spec(hour, minute int, days []string) string {
	up := make([]string, 0, len(days))
	for _, d := range days {
		up = append(up, strings.ToUpper(strings.TrimSpace(d)))
	}
	return fmt.Sprintf("%d %d * * %s", minute, hour, strings.Join(up, ","))
}

func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return nil
	}

	loc, err := time.LoadLocation(strings.TrimSpace(s.cfg.Timezone))
	if err != nil {
		return fmt.Errorf("load timezone %q: %w", s.cfg.Timezone, err)
	}

	spec := Spec(s.cfg.Hour, s.cfg.Minute, s.cfg.Days)
	if _, err := s.parser.Parse(spec); err != nil {
		return fmt.Errorf("cron spec %q: %w", spec, err)
	}

	s.runCtx, s.cancel = context.WithCancel(ctx)
	s.c = cron.New(cron.WithParser(s.parser), cron.WithLocation(loc))

	for _, j := range s.jobs {
		j := j
		if _, err := s.c.AddFunc(spec, func() { s.fire(j) }); err != nil {
			s.cancel()
			return err
		}
	}

	s.c.Start()
	s.started = true
	s.log.Info("scheduler started",
		logx.String("spec", spec),
		logx.String("tz", loc.String()),
		logx.Int("jobs", len(s.jobs)))
	return nil
}

func (s *Service) fire(j *job) {
	if !j.busy.CompareAndSwap(false, true) {
		s.log.Warn("previous run still in flight; dropping tick", logx.String("job", j.name))
		return
	}
	defer j.busy.Store(false)
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("panic in scheduled job",
				logx.String("job", j.name),
				logx.Any("panic", r),
				logx.String("stack", string(debug.Stack())))
		}
	}()

	start := time.Now()
	s.log.Info("slot fired", logx.String("job", j.name))
	j.run(s.runCtx)
	s.log.Debug("slot done", logx.String("job", j.name), logx.Duration("took", time.Since(start)))
}

func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	c := s.c
	cancel := s.cancel
	s.c = nil
	s.cancel = nil
	s.started = false
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if c == nil {
		return nil
	}

	// cron.Stop returns a context that completes when running jobs do.
	done := c.Stop().Done()
	select {
	case <-done:
		s.log.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		s.log.Warn("scheduler stop cancelled", logx.Err(ctx.Err()))
		return ctx.Err()
	}
}
