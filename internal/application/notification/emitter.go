// Package notification уведомления: асинхронная отправка, личные настройки,
// ежедневная сводка и напоминания.
package notification

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/tabel-bot/internal/application/ports"
	"github.com/jhoicas/tabel-bot/internal/domain/entity"
	"github.com/jhoicas/tabel-bot/internal/domain/repository"
	"github.com/jhoicas/tabel-bot/pkg/clock"
	"github.com/jhoicas/tabel-bot/pkg/logger"
)

var _ ports.Notifier = (*Emitter)(nil)

// DefaultSendTimeout предел на одну рассылку.
const DefaultSendTimeout = 30 * time.Second

// Emitter отправляет уведомления в отдельных горутинах. Вызывающий не ждёт
// доставки; отмена его контекста рассылку не прерывает.
type Emitter struct {
	sender   ports.Sender
	admins   ports.AdminDirectory
	settings repository.NotificationSettingsRepository
	texts    *Texts
	clock    clock.Clock
	log      *logger.Logger
	timeout  time.Duration

	wg sync.WaitGroup
}

// NewEmitter собирает эмиттер. texts == nil = встроенные тексты.
func NewEmitter(
	sender ports.Sender,
	admins ports.AdminDirectory,
	settings repository.NotificationSettingsRepository,
	texts *Texts,
	clk clock.Clock,
	log *logger.Logger,
) *Emitter {
	if texts == nil {
		texts = DefaultTexts()
	}
	return &Emitter{
		sender:   sender,
		admins:   admins,
		settings: settings,
		texts:    texts,
		clock:    clk,
		log:      log,
		timeout:  DefaultSendTimeout,
	}
}

// Texts фразы, которыми пользуется эмиттер.
func (e *Emitter) Texts() *Texts { return e.texts }

// NotifyAdmins сообщает всем командирам, кроме самого subject.
func (e *Emitter) NotifyAdmins(ctx context.Context, tag, details string, subject *entity.User) {
	e.goDetached(ctx, func(ctx context.Context) {
		e.SendAdmins(ctx, tag, details, subject)
	})
}

// NotifyUser личное сообщение пользователю.
func (e *Emitter) NotifyUser(ctx context.Context, userID int64, text string) {
	e.goDetached(ctx, func(ctx context.Context) {
		e.Deliver(ctx, userID, text)
	})
}

// Wait дожидается завершения начатых рассылок.
func (e *Emitter) Wait() { e.wg.Wait() }

func (e *Emitter) goDetached(ctx context.Context, fn func(ctx context.Context)) {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				e.log.Error().Interface("panic", r).Msg("notification panic")
			}
		}()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.timeout)
		defer cancel()
		fn(ctx)
	}()
}

// SendAdmins синхронная рассылка командирам; возвращает число доставленных.
func (e *Emitter) SendAdmins(ctx context.Context, tag, details string, subject *entity.User) int {
	ids, err := e.admins.AdminIDs(ctx)
	if err != nil {
		e.log.Error().Err(err).Str("tag", tag).Msg("admin ids")
		return 0
	}
	name := ""
	if subject != nil {
		name = subject.Name
	}
	text := e.texts.AdminEvent(tag, name, details) + "\n🕐 " + e.clock.Now().Format("15:04:05")

	sent := 0
	for _, id := range ids {
		if subject != nil && id == subject.ID {
			continue
		}
		if e.Deliver(ctx, id, text) {
			sent++
		}
	}
	return sent
}

// Deliver отправляет text с учётом личных настроек получателя.
func (e *Emitter) Deliver(ctx context.Context, userID int64, text string) bool {
	st, err := e.settingsFor(ctx, userID)
	if err != nil {
		e.log.Error().Err(err).Int64("user_id", userID).Msg("notification settings")
		return false
	}
	if !st.Enabled {
		return false
	}
	if err := e.sender.Send(ctx, userID, text, st.SilentMode); err != nil {
		e.log.Warn().Err(err).Int64("user_id", userID).Msg("notification not delivered")
		return false
	}
	return true
}

func (e *Emitter) settingsFor(ctx context.Context, userID int64) (*entity.NotificationSettings, error) {
	st, err := e.settings.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if st == nil {
		st = entity.DefaultNotificationSettings(userID)
	}
	return st, nil
}
