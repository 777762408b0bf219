package notification

import (
	"context"
	"fmt"

	"github.com/jhoicas/tabel-bot/internal/domain"
	"github.com/jhoicas/tabel-bot/internal/domain/entity"
	"github.com/jhoicas/tabel-bot/internal/domain/repository"
	"github.com/jhoicas/tabel-bot/pkg/clock"
	"github.com/jhoicas/tabel-bot/pkg/logger"
)

// Настройки, которые можно переключать.
const (
	SettingEnabled      = "enabled"
	SettingDailySummary = "daily_summary"
	SettingReminders    = "reminders"
	SettingSilentMode   = "silent_mode"
)

// Settings личные настройки уведомлений.
type Settings struct {
	tx       repository.TxRunner
	settings repository.NotificationSettingsRepository
	clock    clock.Clock
	log      *logger.Logger
}

// NewSettings собирает сервис настроек.
func NewSettings(tx repository.TxRunner, settings repository.NotificationSettingsRepository, clk clock.Clock, log *logger.Logger) *Settings {
	return &Settings{tx: tx, settings: settings, clock: clk, log: log}
}

// Get настройки userID; без записи значения по умолчанию.
func (s *Settings) Get(ctx context.Context, userID int64) (*entity.NotificationSettings, error) {
	st, err := s.settings.Get(ctx, userID)
	if err != nil {
		return nil, domain.WrapStore("get notification settings", err)
	}
	if st == nil {
		st = entity.DefaultNotificationSettings(userID)
	}
	return st, nil
}

// Set записывает значение одной настройки и пишет notifications_updated.
func (s *Settings) Set(ctx context.Context, userID int64, name string, value bool) (*entity.NotificationSettings, error) {
	var out *entity.NotificationSettings
	err := s.tx.Run(ctx, func(repos repository.Repositories) error {
		st, err := repos.Notifications.Get(ctx, userID)
		if err != nil {
			return domain.WrapStore("get notification settings", err)
		}
		if st == nil {
			st = entity.DefaultNotificationSettings(userID)
		}
		switch name {
		case SettingEnabled:
			st.Enabled = value
		case SettingDailySummary:
			st.DailySummary = value
		case SettingReminders:
			st.Reminders = value
		case SettingSilentMode:
			st.SilentMode = value
		default:
			return domain.NewValidationError("setting", "Неизвестная настройка.")
		}
		if err := repos.Notifications.Save(ctx, st); err != nil {
			return domain.WrapStore("save notification settings", err)
		}
		details := fmt.Sprintf("%s=%t", name, value)
		if err := repos.Events.Append(ctx, entity.NewEvent(userID, entity.ActionNotificationsSet, details, s.clock.Now())); err != nil {
			return domain.WrapStore("append event", err)
		}
		out = st
		return nil
	})
	return out, err
}

// Toggle инвертирует настройку name.
func (s *Settings) Toggle(ctx context.Context, userID int64, name string) (*entity.NotificationSettings, error) {
	st, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	var cur bool
	switch name {
	case SettingEnabled:
		cur = st.Enabled
	case SettingDailySummary:
		cur = st.DailySummary
	case SettingReminders:
		cur = st.Reminders
	case SettingSilentMode:
		cur = st.SilentMode
	default:
		return nil, domain.NewValidationError("setting", "Неизвестная настройка.")
	}
	return s.Set(ctx, userID, name, !cur)
}

// ResetAll возвращает всем пользователям настройки по умолчанию.
func (s *Settings) ResetAll(ctx context.Context, actorID int64) (int, error) {
	var n int
	err := s.tx.Run(ctx, func(repos repository.Repositories) error {
		var err error
		if n, err = repos.Notifications.ResetAll(ctx); err != nil {
			return domain.WrapStore("reset notification settings", err)
		}
		details := fmt.Sprintf("Сброшено настроек: %d", n)
		if err := repos.Events.Append(ctx, entity.NewEvent(actorID, entity.ActionResetSettings, details, s.clock.Now())); err != nil {
			return domain.WrapStore("append event", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.log.Warn().Int64("actor_id", actorID).Int("count", n).Msg("notification settings reset")
	return n, nil
}

// Stats сводка по настройкам всех пользователей.
func (s *Settings) Stats(ctx context.Context) (*entity.NotificationStats, error) {
	st, err := s.settings.Stats(ctx)
	if err != nil {
		return nil, domain.WrapStore("notification stats", err)
	}
	return st, nil
}
