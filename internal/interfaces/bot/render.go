package bot

import (
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/tabel-bot/internal/application/personnel"
	"github.com/jhoicas/tabel-bot/internal/application/report"
	"github.com/jhoicas/tabel-bot/internal/domain/entity"
)

func (r *Router) loc() *time.Location {
	return r.d.Clock.Now().Location()
}

func statusLine(u *entity.User) string {
	if u.Status == entity.StatusAway {
		return fmt.Sprintf("%s %s: %s", u.Status.Emoji(), u.Status.Title(), u.Location)
	}
	return u.Status.Emoji() + " " + u.Status.Title()
}

func formatMyStatus(u *entity.User, loc *time.Location) string {
	var b strings.Builder
	b.WriteString("📋 Ваш статус\n\n")
	fmt.Fprintf(&b, "👤 %s\n%s\n", u.Name, statusLine(u))
	if !u.LastStatusChange.IsZero() {
		fmt.Fprintf(&b, "🕑 С %s", u.LastStatusChange.In(loc).Format("02.01.2006 15:04"))
	}
	return b.String()
}

func formatRoster(p *personnel.RosterPage) string {
	var b strings.Builder
	fmt.Fprintf(&b, "👥 Личный состав (%d), стр. %d/%d\n\n", p.Total, p.Page, p.TotalPages)
	if len(p.Users) == 0 {
		b.WriteString("Список пуст.")
		return b.String()
	}
	offset := (p.Page - 1) * personnel.PageSize
	for i, u := range p.Users {
		fmt.Fprintf(&b, "%d. %s\n   %s\n", offset+i+1, u.Name, statusLine(u))
	}
	return b.String()
}

func formatEvents(title string, events []*entity.Event, loc *time.Location) string {
	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n\n")
	if len(events) == 0 {
		b.WriteString("Событий нет.")
		return b.String()
	}
	for _, e := range events {
		fmt.Fprintf(&b, "%s %s: %s", e.Timestamp.In(loc).Format("02.01 15:04"), e.Actor(), entity.ActionTitle(e.Action))
		if e.Details != "" {
			b.WriteString(" (" + e.Details + ")")
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func formatEventStats(title string, st *entity.EventStats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\nВсего событий: %d\n", title, st.Total)
	for _, ac := range st.ByAction {
		fmt.Fprintf(&b, "• %s: %d\n", entity.ActionTitle(ac.Action), ac.Count)
	}
	return b.String()
}

func formatSystemStats(st *report.SystemStats, activeFlows int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🖥 Состояние системы на %s\n\n", st.GeneratedAt.Format("02.01.2006 15:04"))
	fmt.Fprintf(&b, "👥 Пользователей: %d\n", st.Users)
	fmt.Fprintf(&b, "👑 Администраторов: %d\n", st.Admins)
	fmt.Fprintf(&b, "📖 Событий всего: %d, сегодня: %d\n", st.Events, st.EventsToday)
	fmt.Fprintf(&b, "🏠 В части: %d, 🚪 вне части: %d (%s%%)\n",
		st.Summary.InUnit, st.Summary.Away, st.Summary.PresenceRate.StringFixed(1))
	fmt.Fprintf(&b, "🔔 Уведомления включены: %d из %d\n", st.Notifications.Enabled, st.Notifications.TotalUsers)
	fmt.Fprintf(&b, "💬 Активных диалогов: %d", activeFlows)
	return b.String()
}

func formatNotificationSettings(st *entity.NotificationSettings) string {
	var b strings.Builder
	b.WriteString("🔔 Мои уведомления\n\n")
	fmt.Fprintf(&b, "%s Уведомления\n", onOff(st.Enabled))
	fmt.Fprintf(&b, "%s Ежедневная сводка\n", onOff(st.DailySummary))
	fmt.Fprintf(&b, "%s Напоминания\n", onOff(st.Reminders))
	fmt.Fprintf(&b, "%s Тихий режим", onOff(st.SilentMode))
	return b.String()
}
