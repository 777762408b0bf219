// Package scheduler плановые рассылки по cron-выражениям в часовом поясе части.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/jhoicas/tabel-bot/pkg/logger"
)

// Jobs задачи рассылки; реализуется notification.Jobs.
type Jobs interface {
	DailySummary(ctx context.Context) (int, error)
	Reminders(ctx context.Context) (int, error)
}

// Config расписание в стандартном 5-польном формате cron; пустое выражение отключает задачу.
type Config struct {
	DailySummary string
	Reminders    string
	Location     *time.Location
	// Timeout одного запуска задачи.
	Timeout time.Duration
}

// Scheduler обёртка над cron.Cron.
type Scheduler struct {
	cron    *cron.Cron
	jobs    Jobs
	timeout time.Duration
	log     *logger.Logger
}

// New регистрирует задачи; ошибка при неверном выражении.
func New(cfg Config, jobs Jobs, log *logger.Logger) (*Scheduler, error) {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	s := &Scheduler{
		cron:    cron.New(cron.WithLocation(loc), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		jobs:    jobs,
		timeout: timeout,
		log:     log,
	}
	if err := s.add("daily_summary", cfg.DailySummary, jobs.DailySummary); err != nil {
		return nil, err
	}
	if err := s.add("reminders", cfg.Reminders, jobs.Reminders); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scheduler) add(name, spec string, job func(ctx context.Context) (int, error)) error {
	if spec == "" {
		s.log.Info().Str("job", name).Msg("job disabled")
		return nil
	}
	if _, err := s.cron.AddFunc(spec, func() { s.runJob(name, job) }); err != nil {
		return fmt.Errorf("scheduler: %s %q: %w", name, spec, err)
	}
	return nil
}

func (s *Scheduler) runJob(name string, job func(ctx context.Context) (int, error)) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Str("job", name).Interface("panic", r).Msg("job panicked")
		}
	}()
	start := time.Now()
	sent, err := job(ctx)
	if err != nil {
		s.log.Error().Err(err).Str("job", name).Msg("job failed")
		return
	}
	s.log.Info().Str("job", name).Int("sent", sent).Dur("took", time.Since(start)).Msg("job finished")
}

// Entries число зарегистрированных задач.
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

// Next время ближайшего запуска любой задачи; ноль, если задач нет или планировщик не запущен.
func (s *Scheduler) Next() time.Time {
	var next time.Time
	for _, e := range s.cron.Entries() {
		if next.IsZero() || (!e.Next.IsZero() && e.Next.Before(next)) {
			next = e.Next
		}
	}
	return next
}

// Run запускает cron и блокируется до отмены ctx; дожидается текущих задач.
func (s *Scheduler) Run(ctx context.Context) error {
	s.cron.Start()
	s.log.Info().Int("jobs", s.Entries()).Msg("scheduler started")
	<-ctx.Done()
	<-s.cron.Stop().Done()
	s.log.Info().Msg("scheduler stopped")
	return nil
}
