package bot

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jhoicas/tabel-bot/internal/application/conversation"
	"github.com/jhoicas/tabel-bot/internal/application/report"
	"github.com/jhoicas/tabel-bot/internal/domain"
	"github.com/jhoicas/tabel-bot/internal/domain/entity"
)

// historyLimit смен статуса в мониторинге.
const historyLimit = 20

func (r *Router) registerAdminRoutes() {
	r.handle(NSAdmin, "panel", "", "", r.showPanel)
	r.handle(NSAdmin, "dashboard", "", entity.PermViewPersonnel, r.adminDashboard)

	r.handle(NSAdmin, "personnel", "", entity.PermViewPersonnel, r.showPersonnel)
	r.handlePrefix(NSAdmin, "personnel", "list_users", entity.PermViewPersonnel, r.personnelList)
	r.handlePrefix(NSAdmin, "personnel", "delete_user", entity.PermManagePersonnel, r.personnelPick("person_delete", "delete_user"))
	r.handlePrefix(NSAdmin, "personnel", "change_name", entity.PermManagePersonnel, r.personnelPick("person_rename", "change_name"))
	r.handle(NSAdmin, "person_delete", anySub, entity.PermManagePersonnel, r.personDelete)
	r.handle(NSAdmin, "person_delete_ok", anySub, entity.PermManagePersonnel, r.personDeleteConfirmed)
	r.handle(NSAdmin, "person_rename", anySub, entity.PermManagePersonnel, r.personRename)

	r.registerJournalRoutes()
	r.registerSettingsRoutes()

	r.handle(NSAdmin, "monitoring", "", entity.PermViewStats, r.showMonitoring)
	r.handle(NSAdmin, "monitoring", "system_stats", entity.PermViewStats, r.monitoringSystemStats)
	r.handle(NSAdmin, "monitoring", "status_history", entity.PermViewStats, r.monitoringHistory)
}

func (r *Router) showPanel(_ context.Context, _ *Request) (*Result, error) {
	return reply("👑 Админ-панель\n\nВыберите раздел:", adminPanel())
}

func (r *Router) adminDashboard(ctx context.Context, _ *Request) (*Result, error) {
	sum, err := r.d.Reports.Summary(ctx)
	if err != nil {
		return nil, err
	}
	return reply(report.FormatSummary(sum, r.d.Clock.Now()), panelBack())
}

func (r *Router) showPersonnel(_ context.Context, _ *Request) (*Result, error) {
	return reply("👥 Личный состав", personnelMenu())
}

// pageArg номер страницы из аргумента; ошибка разбора даёт 1.
func pageArg(arg string) int {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func (r *Router) personnelList(ctx context.Context, req *Request) (*Result, error) {
	page, err := r.d.Personnel.Page(ctx, pageArg(req.Arg))
	if err != nil {
		return nil, err
	}
	return reply(formatRoster(page), rosterKeyboard(page.Page, page.TotalPages))
}

// personnelPick список бойцов для выбора цели action; prefix задаёт навигацию по страницам.
func (r *Router) personnelPick(action, prefix string) handlerFunc {
	return func(ctx context.Context, req *Request) (*Result, error) {
		page, err := r.d.Personnel.Page(ctx, pageArg(req.Arg))
		if err != nil {
			return nil, err
		}
		if page.Total == 0 {
			return reply("Список личного состава пуст.", personnelMenu())
		}
		title := "🗑 Выберите бойца для удаления:"
		if action == "person_rename" {
			title = "✏️ Выберите бойца для смены ФИО:"
		}
		return reply(title, pickUserKeyboard(page.Users, action, prefix, page.Page, page.TotalPages))
	}
}

func idArg(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, domain.NewValidationError("id", "Некорректный идентификатор пользователя.")
	}
	return id, nil
}

func (r *Router) personDelete(ctx context.Context, req *Request) (*Result, error) {
	id, err := idArg(req.Arg)
	if err != nil {
		return nil, err
	}
	if r.d.Personnel.IsRoot(id) {
		return nil, domain.ErrRootAdmin
	}
	u, err := r.d.Personnel.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	text := fmt.Sprintf("⚠️ Удалить бойца %s?\n\nИстория его событий сохранится в журнале.", u.Name)
	return reply(text, confirmDeleteKeyboard(id))
}

func (r *Router) personDeleteConfirmed(ctx context.Context, req *Request) (*Result, error) {
	id, err := idArg(req.Arg)
	if err != nil {
		return nil, err
	}
	u, err := r.d.Personnel.Delete(ctx, req.Actor.ID, id)
	if err != nil {
		return nil, err
	}
	return reply("🗑 Боец удалён: "+u.Name, personnelMenu())
}

func (r *Router) personRename(ctx context.Context, req *Request) (*Result, error) {
	id, err := idArg(req.Arg)
	if err != nil {
		return nil, err
	}
	u, err := r.d.Personnel.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	next := conversation.Rename(id)
	return &Result{
		Response: Response{
			Text:     fmt.Sprintf("Текущее ФИО: %s\n\n%s", u.Name, conversation.Prompt(next)),
			Keyboard: cancelKeyboard(),
		},
		Next: &next,
	}, nil
}

func (r *Router) showMonitoring(_ context.Context, _ *Request) (*Result, error) {
	return reply("🖥 Мониторинг", monitoringMenu())
}

func (r *Router) monitoringSystemStats(ctx context.Context, _ *Request) (*Result, error) {
	st, err := r.d.Reports.SystemStats(ctx)
	if err != nil {
		return nil, err
	}
	return reply(formatSystemStats(st, r.d.Tracker.Len()), monitoringBack())
}

func (r *Router) monitoringHistory(ctx context.Context, _ *Request) (*Result, error) {
	events, err := r.d.Reports.StatusHistory(ctx, historyLimit)
	if err != nil {
		return nil, err
	}
	return reply(formatEvents("🕑 История статусов", events, r.loc()), monitoringBack())
}
