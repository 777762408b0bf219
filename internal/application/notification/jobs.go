package notification

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/tabel-bot/internal/application/report"
	"github.com/jhoicas/tabel-bot/internal/domain/entity"
	"github.com/jhoicas/tabel-bot/internal/domain/repository"
)

// Jobs плановые рассылки.
type Jobs struct {
	emitter *Emitter
	users   repository.UserRepository
	reports *report.Service
}

// NewJobs собирает плановые рассылки.
func NewJobs(emitter *Emitter, users repository.UserRepository, reports *report.Service) *Jobs {
	return &Jobs{emitter: emitter, users: users, reports: reports}
}

// DailySummary отправляет сводку командирам с включённой ежедневной сводкой.
func (j *Jobs) DailySummary(ctx context.Context) (int, error) {
	sum, err := j.reports.Summary(ctx)
	if err != nil {
		return 0, err
	}
	ids, err := j.emitter.admins.AdminIDs(ctx)
	if err != nil {
		return 0, err
	}
	header := Pick(j.emitter.texts.DailySummary, "📊 Ежедневная сводка")
	text := header + "\n\n" + report.FormatSummary(sum, j.emitter.clock.Now())
	if sum.Away == 0 && sum.Total > 0 {
		text += "\n🎉 Все бойцы на месте!"
	}

	sent := 0
	for _, id := range ids {
		st, err := j.emitter.settingsFor(ctx, id)
		if err != nil || !st.DailySummary {
			continue
		}
		if j.emitter.Deliver(ctx, id, text) {
			sent++
		}
	}
	j.emitter.log.Info().Int("sent", sent).Int("admins", len(ids)).Msg("daily summary sent")
	return sent, nil
}

// Reminders напоминает бойцам вне части вернуться и отметиться.
func (j *Jobs) Reminders(ctx context.Context) (int, error) {
	away, err := j.users.ListByStatus(ctx, entity.StatusAway)
	if err != nil {
		return 0, err
	}
	now := j.emitter.clock.Now()
	sent := 0
	for _, u := range away {
		st, err := j.emitter.settingsFor(ctx, u.ID)
		if err != nil || !st.Reminders {
			continue
		}
		var b strings.Builder
		b.WriteString(Pick(j.emitter.texts.Reminders, "🔔 Не забудьте отметиться!"))
		fmt.Fprintf(&b, "\n\n👤 Боец: %s\n📍 Локация: %s\n🕐 Время: %s\n\n💡 Используйте /start для отметки",
			u.Name, u.Location, now.Format("15:04"))
		if j.emitter.Deliver(ctx, u.ID, b.String()) {
			sent++
		}
	}
	j.emitter.log.Info().Int("sent", sent).Int("away", len(away)).Msg("reminders sent")
	return sent, nil
}
