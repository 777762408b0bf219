package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jhoicas/tabel-bot/internal/application/conversation"
	"github.com/jhoicas/tabel-bot/internal/application/notification"
	"github.com/jhoicas/tabel-bot/internal/domain"
	"github.com/jhoicas/tabel-bot/internal/domain/entity"
)

func (r *Router) registerSettingsRoutes() {
	r.handle(NSAdmin, "settings", "", "", r.showSettings)
	r.handle(NSAdmin, "settings", "notifications", "", r.showNotifications)
	r.handleRoot(NSAdmin, "settings", "admins", r.showAdmins)
	r.handle(NSAdmin, "settings", "danger_zone", entity.PermForceOperations, r.showDangerZone)
	r.handle(NSAdmin, "settings", "api_token", "", r.issueToken)

	r.handle(NSAdmin, "notifications", "enable", "", r.notificationsSwitch(true))
	r.handle(NSAdmin, "notifications", "disable", "", r.notificationsSwitch(false))
	for _, name := range []string{notification.SettingDailySummary, notification.SettingReminders, notification.SettingSilentMode} {
		r.handle(NSAdmin, "notifications", name, "", r.notificationsToggle)
	}
	r.handle(NSAdmin, "notifications", "stats", entity.PermManageNotifications, r.notificationsStats)

	r.handleRoot(NSAdmin, "admins", "list", r.adminsList)
	r.handleRoot(NSAdmin, "admins", "add", r.adminsAddPick)
	r.handleRoot(NSAdmin, "admins", "remove", r.adminsRemovePick)
	r.handleRoot(NSAdmin, "admins", "permissions", r.showPermissions)
	r.handleRoot(NSAdmin, "admins_add", anySub, r.adminsSet(true))
	r.handleRoot(NSAdmin, "admins_remove", anySub, r.adminsSet(false))

	r.handleRoot(NSAdmin, "permissions", "list_commanders", r.showPermissions)
	r.handleRoot(NSAdmin, "permissions", "report", r.permissionsReport)
	r.handleRoot(NSAdmin, "perm_edit", anySub, r.permEdit)
	r.handleRoot(NSAdmin, "perm_toggle", anySub, r.permToggle)

	for _, op := range []string{OpMarkAllArrived, OpClearAllData, OpResetSettings} {
		r.handle(NSAdmin, "danger_zone", op, entity.PermForceOperations, r.dangerStart)
	}
	r.handle(NSAdmin, "danger_zone", "", entity.PermForceOperations, r.showDangerZone)
	r.handle(NSAdmin, "cancel_danger", anySub, "", r.dangerCancel)
	r.handle(NSAdmin, "confirm_text", anySub, "", r.dangerConfirm)
}

func (r *Router) showSettings(_ context.Context, _ *Request) (*Result, error) {
	return reply("⚙️ Настройки", settingsMenu())
}

func (r *Router) showNotifications(ctx context.Context, req *Request) (*Result, error) {
	st, err := r.d.Settings.Get(ctx, req.Actor.ID)
	if err != nil {
		return nil, err
	}
	return reply(formatNotificationSettings(st), notificationsMenu(st))
}

func (r *Router) notificationsSwitch(on bool) handlerFunc {
	return func(ctx context.Context, req *Request) (*Result, error) {
		st, err := r.d.Settings.Set(ctx, req.Actor.ID, notification.SettingEnabled, on)
		if err != nil {
			return nil, err
		}
		return reply(formatNotificationSettings(st), notificationsMenu(st))
	}
}

func (r *Router) notificationsToggle(ctx context.Context, req *Request) (*Result, error) {
	st, err := r.d.Settings.Toggle(ctx, req.Actor.ID, req.Cmd.Sub)
	if err != nil {
		return nil, err
	}
	return reply(formatNotificationSettings(st), notificationsMenu(st))
}

func (r *Router) notificationsStats(ctx context.Context, _ *Request) (*Result, error) {
	st, err := r.d.Settings.Stats(ctx)
	if err != nil {
		return nil, err
	}
	text := fmt.Sprintf("📈 Уведомления\n\n👥 Пользователей: %d\n🔔 Включены: %d\n🔕 Выключены: %d\n🤫 Тихий режим: %d",
		st.TotalUsers, st.Enabled, st.Disabled, st.Silent)
	return reply(text, (&Keyboard{}).Row(backTo(cb(NSAdmin, "settings", "notifications"))))
}

func (r *Router) issueToken(ctx context.Context, req *Request) (*Result, error) {
	if r.d.Tokens == nil || !r.d.Tokens.Enabled() {
		return reply("🔑 HTTP API отключён.", settingsBack())
	}
	tok, err := r.d.Tokens.IssueToken(ctx, req.Actor.ID)
	if err != nil {
		return nil, err
	}
	text := fmt.Sprintf("🔑 Токен API действует до %s\n\n%s\n\nПередавайте его в заголовке Authorization: Bearer <токен>.",
		tok.ExpiresAt.In(r.loc()).Format("02.01.2006 15:04"), tok.Value)
	return reply(text, settingsBack())
}

func (r *Router) showAdmins(_ context.Context, _ *Request) (*Result, error) {
	return reply("👑 Управление командирами", adminsMenu())
}

func (r *Router) adminsList(ctx context.Context, _ *Request) (*Result, error) {
	admins, err := r.d.Personnel.Admins(ctx)
	if err != nil {
		return nil, err
	}
	var b strings.Builder
	b.WriteString("👑 Администраторы\n\n")
	for _, id := range r.d.Personnel.Roots() {
		fmt.Fprintf(&b, "⭐ %d (главный)\n", id)
	}
	for _, u := range admins {
		if r.d.Personnel.IsRoot(u.ID) {
			continue
		}
		fmt.Fprintf(&b, "• %s\n", u.Name)
	}
	return reply(b.String(), adminsBack())
}

func (r *Router) adminsAddPick(ctx context.Context, _ *Request) (*Result, error) {
	users, err := r.d.Personnel.Personnel(ctx)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return reply("Нет бойцов для назначения.", adminsBack())
	}
	return reply("➕ Кого назначить командиром?", pickAdminKeyboard(users, "admins_add"))
}

func (r *Router) adminsRemovePick(ctx context.Context, _ *Request) (*Result, error) {
	users, err := r.d.Personnel.Commanders(ctx)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return reply("Командиров нет.", adminsBack())
	}
	return reply("➖ С кого снять права командира?", pickAdminKeyboard(users, "admins_remove"))
}

func (r *Router) adminsSet(isAdmin bool) handlerFunc {
	return func(ctx context.Context, req *Request) (*Result, error) {
		id, err := idArg(req.Arg)
		if err != nil {
			return nil, err
		}
		u, err := r.d.Personnel.SetAdmin(ctx, req.Actor.ID, id, isAdmin)
		if err != nil {
			return nil, err
		}
		if isAdmin {
			if _, err := r.d.Permissions.EnsurePermissions(ctx, id); err != nil {
				return nil, err
			}
			return reply("👑 Назначен командиром: "+u.Name, adminsMenu())
		}
		return reply("➖ Снят с командиров: "+u.Name, adminsMenu())
	}
}

func (r *Router) showPermissions(ctx context.Context, _ *Request) (*Result, error) {
	commanders, err := r.d.Personnel.Commanders(ctx)
	if err != nil {
		return nil, err
	}
	text := "🔐 Права командиров"
	if len(commanders) == 0 {
		text += "\n\nКомандиров нет."
	}
	return reply(text, permissionsMenu(commanders))
}

func (r *Router) permissionsReport(ctx context.Context, _ *Request) (*Result, error) {
	commanders, err := r.d.Personnel.Commanders(ctx)
	if err != nil {
		return nil, err
	}
	var b strings.Builder
	b.WriteString("📄 Отчёт по правам\n")
	for _, u := range commanders {
		p, err := r.d.Permissions.Get(ctx, u.ID)
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(&b, "\n👤 %s (%d/%d)\n", u.Name, p.Count(), len(entity.PermissionNames))
		for _, name := range entity.PermissionNames {
			fmt.Fprintf(&b, "  %s %s\n", onOff(p.Has(name)), entity.PermissionTitles[name])
		}
	}
	if len(commanders) == 0 {
		b.WriteString("\nКомандиров нет.")
	}
	return reply(b.String(), (&Keyboard{}).Row(backTo(cb(NSAdmin, "permissions", "list_commanders"))))
}

func (r *Router) permEdit(ctx context.Context, req *Request) (*Result, error) {
	id, err := idArg(req.Arg)
	if err != nil {
		return nil, err
	}
	u, err := r.d.Personnel.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	p, err := r.d.Permissions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return reply("🔐 Права: "+u.Name, permEditKeyboard(id, p))
}

// permToggle аргумент вида <id>.<право>.
func (r *Router) permToggle(ctx context.Context, req *Request) (*Result, error) {
	rawID, flag, ok := strings.Cut(req.Arg, ".")
	if !ok || !entity.IsPermission(flag) {
		return nil, domain.NewValidationError("permission", "Неизвестное право.")
	}
	id, err := idArg(rawID)
	if err != nil {
		return nil, err
	}
	u, err := r.d.Personnel.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	p, err := r.d.Permissions.Toggle(ctx, req.Actor.ID, id, flag)
	if err != nil {
		return nil, err
	}
	return reply("🔐 Права: "+u.Name, permEditKeyboard(id, p))
}

func (r *Router) showDangerZone(_ context.Context, _ *Request) (*Result, error) {
	return reply("☢️ Опасная зона\n\nКаждая операция требует двойного подтверждения.", dangerMenu())
}

func (r *Router) dangerStart(_ context.Context, req *Request) (*Result, error) {
	return startDanger(req.Cmd.Sub)
}

func (r *Router) dangerCancel(ctx context.Context, req *Request) (*Result, error) {
	res, err := r.advance(ctx, req, conversation.Cancel())
	if err != nil {
		return nil, err
	}
	res.Response.Text = conversation.MsgDangerCancelled
	res.Response.Keyboard = settingsBack()
	return res, nil
}

func (r *Router) dangerConfirm(ctx context.Context, req *Request) (*Result, error) {
	return r.advance(ctx, req, conversation.Choose(req.Arg))
}

// actorName ФИО автора для подписей выгрузок.
func (r *Router) actorName(ctx context.Context, req *Request) string {
	if u, err := r.d.Personnel.Get(ctx, req.Actor.ID); err == nil {
		return u.Name
	}
	if req.Actor.Username != "" {
		return "@" + req.Actor.Username
	}
	return strconv.FormatInt(req.Actor.ID, 10)
}
