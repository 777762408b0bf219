// Package report сводки по личному составу и состоянию системы.
package report

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/tabel-bot/internal/domain"
	"github.com/jhoicas/tabel-bot/internal/domain/entity"
	"github.com/jhoicas/tabel-bot/internal/domain/repository"
	"github.com/jhoicas/tabel-bot/pkg/clock"
)

// Service отчёты только для чтения.
type Service struct {
	repos repository.Repositories
	clock clock.Clock
}

// NewService собирает сервис отчётов.
func NewService(repos repository.Repositories, clk clock.Clock) *Service {
	return &Service{repos: repos, clock: clk}
}

// Summary текущая сводка по бойцам.
func (s *Service) Summary(ctx context.Context) (*entity.StatusSummary, error) {
	sum, err := s.repos.Users.Summary(ctx)
	if err != nil {
		return nil, domain.WrapStore("summary", err)
	}
	return sum, nil
}

// SystemStats состояние системы для мониторинга.
type SystemStats struct {
	Users         int
	Admins        int
	Events        int
	EventsToday   int
	Summary       *entity.StatusSummary
	Notifications *entity.NotificationStats
	GeneratedAt   time.Time
}

// SystemStats собирает счётчики по всем таблицам.
func (s *Service) SystemStats(ctx context.Context) (*SystemStats, error) {
	users, err := s.repos.Users.List(ctx)
	if err != nil {
		return nil, domain.WrapStore("list users", err)
	}
	admins, err := s.repos.Users.ListAdmins(ctx)
	if err != nil {
		return nil, domain.WrapStore("list admins", err)
	}
	events, err := s.repos.Events.Count(ctx)
	if err != nil {
		return nil, domain.WrapStore("count events", err)
	}
	now := s.clock.Now()
	today, err := s.repos.Events.Stats(ctx, entity.EventFilter{Period: entity.PeriodToday}, now)
	if err != nil {
		return nil, domain.WrapStore("event stats", err)
	}
	sum, err := s.Summary(ctx)
	if err != nil {
		return nil, err
	}
	notif, err := s.repos.Notifications.Stats(ctx)
	if err != nil {
		return nil, domain.WrapStore("notification stats", err)
	}
	return &SystemStats{
		Users:         len(users),
		Admins:        len(admins),
		Events:        events,
		EventsToday:   today.Total,
		Summary:       sum,
		Notifications: notif,
		GeneratedAt:   now,
	}, nil
}

// StatusHistory последние limit смен статуса.
func (s *Service) StatusHistory(ctx context.Context, limit int) ([]*entity.Event, error) {
	events, err := s.repos.Events.List(ctx, entity.EventFilter{}, 0, s.clock.Now())
	if err != nil {
		return nil, domain.WrapStore("list events", err)
	}
	out := make([]*entity.Event, 0, limit)
	for _, e := range events {
		if e.Action != string(entity.StatusInUnit) && e.Action != string(entity.StatusAway) {
			continue
		}
		out = append(out, e)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// FormatSummary текст сводки для сообщений и ежедневной рассылки.
func FormatSummary(sum *entity.StatusSummary, at time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 Сводка на %s\n\n", at.Format("02.01.2006 15:04"))
	fmt.Fprintf(&b, "👥 Всего: %d\n", sum.Total)
	fmt.Fprintf(&b, "🏠 В части: %d\n", sum.InUnit)
	fmt.Fprintf(&b, "🚪 Вне части: %d\n", sum.Away)
	fmt.Fprintf(&b, "📈 Присутствие: %s%%\n", sum.PresenceRate.StringFixed(1))

	if len(sum.AwayByLocation) > 0 {
		b.WriteString("\n📍 Отсутствующие:\n")
		locs := make([]string, 0, len(sum.AwayByLocation))
		for loc := range sum.AwayByLocation {
			locs = append(locs, loc)
		}
		sort.Strings(locs)
		for _, loc := range locs {
			names := sum.AwayByLocation[loc]
			fmt.Fprintf(&b, "• %s (%d): %s\n", loc, len(names), strings.Join(names, ", "))
		}
	}
	return b.String()
}
