// Package journal чтение журнала событий: фильтры, статистика, выгрузка, очистка.
package journal

import (
	"context"
	"fmt"

	"github.com/jhoicas/tabel-bot/internal/application/ports"
	"github.com/jhoicas/tabel-bot/internal/domain"
	"github.com/jhoicas/tabel-bot/internal/domain/entity"
	"github.com/jhoicas/tabel-bot/internal/domain/repository"
	"github.com/jhoicas/tabel-bot/pkg/clock"
	"github.com/jhoicas/tabel-bot/pkg/logger"
)

// RecentLimit событий в быстром просмотре.
const RecentLimit = 15

// Service журнал событий.
type Service struct {
	tx       repository.TxRunner
	events   repository.EventRepository
	exporter ports.Exporter
	maxRows  int
	clock    clock.Clock
	log      *logger.Logger
}

// NewService собирает сервис журнала. maxRows ограничивает выгрузку (<= 0 без ограничения).
func NewService(
	tx repository.TxRunner,
	events repository.EventRepository,
	exporter ports.Exporter,
	maxRows int,
	clk clock.Clock,
	log *logger.Logger,
) *Service {
	return &Service{tx: tx, events: events, exporter: exporter, maxRows: maxRows, clock: clk, log: log}
}

// ParsePeriod today|week|month|all → Period; иное = ошибка проверки.
func ParsePeriod(s string) (entity.Period, error) {
	switch s {
	case "today":
		return entity.PeriodToday, nil
	case "week":
		return entity.PeriodWeek, nil
	case "month":
		return entity.PeriodMonth, nil
	case "all", "":
		return entity.PeriodAll, nil
	}
	return "", domain.NewValidationError("period", "Неизвестный период.")
}

// PeriodTitle подпись периода.
func PeriodTitle(p entity.Period) string {
	switch p {
	case entity.PeriodToday:
		return "за сегодня"
	case entity.PeriodWeek:
		return "за неделю"
	case entity.PeriodMonth:
		return "за месяц"
	}
	return "за всё время"
}

// List события по фильтру, новые первыми.
func (s *Service) List(ctx context.Context, filter entity.EventFilter, limit int) ([]*entity.Event, error) {
	events, err := s.events.List(ctx, filter, limit, s.clock.Now())
	if err != nil {
		return nil, domain.WrapStore("list events", err)
	}
	return events, nil
}

// Recent последние RecentLimit событий.
func (s *Service) Recent(ctx context.Context) ([]*entity.Event, error) {
	return s.List(ctx, entity.EventFilter{}, RecentLimit)
}

// Stats агрегаты по фильтру.
func (s *Service) Stats(ctx context.Context, filter entity.EventFilter) (*entity.EventStats, error) {
	stats, err := s.events.Stats(ctx, filter, s.clock.Now())
	if err != nil {
		return nil, domain.WrapStore("event stats", err)
	}
	return stats, nil
}

// Clear фиксирует очистку журнала событием journal_cleared. Записи не удаляются.
func (s *Service) Clear(ctx context.Context, actorID int64) (int, error) {
	return s.logClear(ctx, actorID, entity.ActionJournalCleared, "Журнал очищен")
}

// ClearAllData фиксирует запрос полной очистки данных событием clear_all_data.
// Пользователи и события сохраняются.
func (s *Service) ClearAllData(ctx context.Context, actorID int64) (int, error) {
	return s.logClear(ctx, actorID, entity.ActionClearAllData, "Запрошена очистка всех данных")
}

func (s *Service) logClear(ctx context.Context, actorID int64, action, title string) (int, error) {
	var total int
	err := s.tx.Run(ctx, func(repos repository.Repositories) error {
		n, err := repos.Events.Count(ctx)
		if err != nil {
			return domain.WrapStore("count events", err)
		}
		total = n
		details := fmt.Sprintf("%s (записей: %d)", title, n)
		if err := repos.Events.Append(ctx, entity.NewEvent(actorID, action, details, s.clock.Now())); err != nil {
			return domain.WrapStore("append event", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.log.Warn().Int64("actor_id", actorID).Str("action", action).Int("events", total).Msg("journal clear logged")
	return total, nil
}

// Export выгружает события периода в формате format.
func (s *Service) Export(ctx context.Context, actor string, format string, period entity.Period) (*ports.Document, error) {
	switch format {
	case ports.FormatCSV, ports.FormatXLSX, ports.FormatPDF:
	default:
		return nil, domain.NewValidationError("format", "Неизвестный формат выгрузки.")
	}
	events, err := s.List(ctx, entity.EventFilter{Period: period}, s.maxRows)
	if err != nil {
		return nil, err
	}
	meta := ports.ExportMeta{
		Title:       "Журнал событий",
		PeriodLabel: PeriodTitle(period),
		GeneratedBy: actor,
	}
	doc, err := s.exporter.Export(ctx, format, meta, events)
	if err != nil {
		return nil, fmt.Errorf("export %s: %w", format, err)
	}
	s.log.Info().Str("format", format).Str("period", string(period)).Int("rows", len(events)).Msg("journal exported")
	return doc, nil
}
