// Package scheduler runs the 404 check periodically on a cron schedule.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/rojanmagar2001/sitemap404/internal/domain"
	"github.com/rojanmagar2001/sitemap404/internal/logger"
)

// ErrInvalidSchedule is returned for a cron expression that does not parse.
var ErrInvalidSchedule = errors.New("scheduler: invalid cron expression")

// Runner executes one complete check.
type Runner interface {
	Run(ctx context.Context) (domain.Report, error)
}

// Scheduler triggers a Runner on a cron schedule. At most one run is
// active at a time; a trigger that arrives while a run is active is skipped.
type Scheduler struct {
	runner Runner
	log    logger.Logger
	expr   string

	schedule cron.Schedule
	cron     *cron.Cron

	ctx     context.Context
	running atomic.Bool
	runs    atomic.Int64
}

// New validates the cron expression expr and prepares a scheduler. Standard
// 5-field expressions and descriptors such as @daily or @every 1h are accepted.
func New(expr string, runner Runner, log logger.Logger) (*Scheduler, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	schedule, err := parser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidSchedule, expr, err)
	}

	cl := cronLogger{log: log}
	return &Scheduler{
		runner:   runner,
		log:      log,
		expr:     expr,
		schedule: schedule,
		cron:     cron.New(cron.WithParser(parser), cron.WithChain(cron.Recover(cl)), cron.WithLogger(cl)),
		ctx:      context.Background(),
	}, nil
}

// Start begins firing on the schedule. Runs use a context detached from
// ctx's cancellation so that stopping never interrupts a ledger write.
func (s *Scheduler) Start(ctx context.Context) error {
	s.ctx = context.WithoutCancel(ctx)
	if _, err := s.cron.AddFunc(s.expr, func() { s.Trigger() }); err != nil {
		return fmt.Errorf("%w %q: %v", ErrInvalidSchedule, s.expr, err)
	}
	s.cron.Start()
	s.log.Info("Scheduler started",
		logger.String("schedule", s.expr),
		logger.String("next_run", s.Next(time.Now()).Format(time.RFC3339)))
	return nil
}

// Stop halts the schedule and waits for an active run to finish.
func (s *Scheduler) Stop() {
	s.log.Info("Stopping scheduler")
	<-s.cron.Stop().Done()
	s.log.Info("Scheduler stopped", logger.Int("runs", int(s.runs.Load())))
}

// Next returns the first activation after t.
func (s *Scheduler) Next(t time.Time) time.Time {
	return s.schedule.Next(t)
}

// Trigger runs the check now unless one is already active, in which case it
// returns false without running.
func (s *Scheduler) Trigger() bool {
	if !s.running.CompareAndSwap(false, true) {
		s.log.Warn("Previous run still active, skipping trigger")
		return false
	}
	defer s.running.Store(false)

	n := s.runs.Add(1)
	s.log.Info("Scheduled run triggered", logger.Int("run", int(n)))

	report, err := s.runner.Run(s.ctx)
	if err != nil {
		s.log.Error("Scheduled run failed", logger.String("run_id", report.RunID), logger.Error(err))
		return true
	}
	s.log.Info("Scheduled run finished",
		logger.String("run_id", report.RunID),
		logger.Int("inserted", len(report.Inserted)),
		logger.String("next_run", s.Next(time.Now()).Format(time.RFC3339)))
	return true
}

// Running reports whether a run is active.
func (s *Scheduler) Running() bool {
	return s.running.Load()
}

// cronLogger routes cron's key/value logging to logger.Logger.
type cronLogger struct {
	log logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug(msg, kvFields(keysAndValues)...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error(msg, append(kvFields(keysAndValues), logger.Error(err))...)
}

func kvFields(kv []any) []logger.Field {
	fields := make([]logger.Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		fields = append(fields, logger.Any(fmt.Sprint(kv[i]), kv[i+1]))
	}
	return fields
}
