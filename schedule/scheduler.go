package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	cronlib "github.com/robfig/cron/v3"
)

// Runner fires one scheduled execution. Wrap a workflow with the request
// it should receive:
//
//	sched.Add("nightly-report", "0 2 * * *", func(ctx context.Context) {
//	    wf.Execute(ctx, reportRequest{Day: time.Now()})
//	})
type Runner func(ctx context.Context)

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithTickInterval sets how often the scheduler checks for due entries.
func WithTickInterval(d time.Duration) Option {
	return func(s *Scheduler) { s.tickInterval = d }
}

// cronParser supports standard 5-field cron and descriptors like "@every 30s".
var cronParser = cronlib.NewParser(
	cronlib.Minute | cronlib.Hour | cronlib.Dom | cronlib.Month | cronlib.Dow | cronlib.Descriptor,
)

// ParseSchedule parses a cron expression and returns the schedule.
func ParseSchedule(expr string) (cronlib.Schedule, error) {
	return cronParser.Parse(expr)
}

// Entry is one registered schedule. LastRunAt and NextRunAt reflect the
// scheduler's view at snapshot time.
type Entry struct {
	Name      string
	Expr      string
	Enabled   bool
	LastRunAt *time.Time
	NextRunAt time.Time
}

type entry struct {
	name      string
	expr      string
	schedule  cronlib.Schedule
	run       Runner
	enabled   bool
	lastRunAt *time.Time
	nextRunAt time.Time
}

// Scheduler fires registered runners on cron schedules from a single
// tick loop. Each firing runs on its own goroutine so a slow workflow
// never delays other entries.
type Scheduler struct {
	logger       *slog.Logger
	tickInterval time.Duration

	mu      sync.Mutex
	entries map[string]*entry

	startOnce sync.Once
	stopOnce  sync.Once
	stopCh    chan struct{}
	wg        sync.WaitGroup
}

// NewScheduler creates a Scheduler.
func NewScheduler(logger *slog.Logger, opts ...Option) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Scheduler{
		logger:       logger,
		tickInterval: 1 * time.Second,
		entries:      make(map[string]*entry),
		stopCh:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add registers a runner under a unique name. The expression is parsed
// immediately; the first firing happens at the schedule's next time
// after registration.
func (s *Scheduler) Add(name, expr string, run Runner) error {
	if run == nil {
		return fmt.Errorf("schedule: nil runner for entry %q", name)
	}
	sched, err := ParseSchedule(expr)
	if err != nil {
		return fmt.Errorf("schedule: parse %q for entry %q: %w", expr, name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.entries[name]; exists {
		return fmt.Errorf("schedule: entry %q already registered", name)
	}
	s.entries[name] = &entry{
		name:      name,
		expr:      expr,
		schedule:  sched,
		run:       run,
		enabled:   true,
		nextRunAt: sched.Next(time.Now()),
	}
	return nil
}

// Enable turns a disabled entry back on. The next firing is computed
// from now, so time spent disabled does not produce a catch-up burst.
func (s *Scheduler) Enable(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[name]
	if !ok || e.enabled {
		return
	}
	e.enabled = true
	e.nextRunAt = e.schedule.Next(time.Now())
}

// Disable stops an entry from firing without removing it. In-flight
// firings are unaffected.
func (s *Scheduler) Disable(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[name]; ok {
		e.enabled = false
	}
}

// Remove unregisters an entry. In-flight firings are unaffected.
func (s *Scheduler) Remove(name string) {
	s.mu.Lock()
	delete(s.entries, name)
	s.mu.Unlock()
}

// Entries returns a snapshot of the registered schedules.
func (s *Scheduler) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, Entry{
			Name:      e.name,
			Expr:      e.expr,
			Enabled:   e.enabled,
			LastRunAt: e.lastRunAt,
			NextRunAt: e.nextRunAt,
		})
	}
	return out
}

// Start launches the tick loop. The context cancels in-flight firings
// when the scheduler stops; registration may continue after Start.
func (s *Scheduler) Start(ctx context.Context) {
	s.startOnce.Do(func() {
		s.wg.Add(1)
		go s.loop(ctx)
	})
}

// Stop halts the tick loop and waits for in-flight firings.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
	s.wg.Wait()
}

func (s *Scheduler) loop(ctx context.Context) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.fireDue(ctx, now)
		}
	}
}

func (s *Scheduler) fireDue(ctx context.Context, now time.Time) {
	s.mu.Lock()
	var due []*entry
	for _, e := range s.entries {
		if !e.enabled {
			continue
		}
		if !e.nextRunAt.After(now) {
			due = append(due, e)
			t := now
			e.lastRunAt = &t
			e.nextRunAt = e.schedule.Next(now)
		}
	}
	s.mu.Unlock()

	for _, e := range due {
		s.logger.Debug("schedule fired",
			slog.String("entry", e.name),
			slog.Time("next_run_at", e.nextRunAt),
		)
		run := e.run
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			run(ctx)
		}()
	}
}
