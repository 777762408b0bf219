package bot

import (
	"context"
	"fmt"

	"github.com/jhoicas/tabel-bot/internal/application/conversation"
	"github.com/jhoicas/tabel-bot/internal/application/personnel"
	"github.com/jhoicas/tabel-bot/internal/domain/entity"
)

// filterLimit событий в ответе на текстовый фильтр журнала.
const filterLimit = 30

// apply выполняет эффект завершённого диалога. Права проверяются заново:
// между началом диалога и подтверждением их могли отозвать.
func (r *Router) apply(ctx context.Context, req *Request, eff conversation.Effect) (*Result, error) {
	switch e := eff.(type) {
	case conversation.RegisterEffect:
		return r.applyRegister(ctx, req, e)
	case conversation.DepartEffect:
		if _, err := r.d.Engine.MarkDeparture(ctx, req.Actor.ID, e.Location); err != nil {
			return nil, err
		}
		return reply("🚪 Убытие отмечено: "+e.Location, mainMenu(req.Admin))
	case conversation.DangerEffect:
		return r.applyDanger(ctx, req, e.Op)
	case conversation.FilterEffect:
		return r.applyFilter(ctx, req, e)
	case conversation.RenameEffect:
		if !req.Admin || !r.allowed(ctx, req, entity.PermManagePersonnel) {
			return reply(MsgDenied, backKeyboard())
		}
		u, err := r.d.Personnel.Rename(ctx, req.Actor.ID, e.TargetID, e.Name)
		if err != nil {
			return nil, err
		}
		return reply("✏️ ФИО изменено: "+u.Name, personnelMenu())
	}
	return nil, fmt.Errorf("неизвестный эффект %T", eff)
}

func (r *Router) applyRegister(ctx context.Context, req *Request, e conversation.RegisterEffect) (*Result, error) {
	u, err := r.d.Personnel.Register(ctx, personnel.RegisterInput{
		ID:       req.Actor.ID,
		Name:     e.Name,
		Username: e.Username,
		Status:   e.Status,
		Location: e.Location,
	})
	if err != nil {
		return nil, err
	}
	text := fmt.Sprintf("✅ Регистрация завершена!\n\n👤 %s\n%s", u.Name, statusLine(u))
	return reply(text, mainMenu(req.Admin || u.IsAdmin))
}

func dangerPerm(op string) string {
	if op == OpClearJournal {
		return entity.PermClearJournal
	}
	return entity.PermForceOperations
}

func (r *Router) applyDanger(ctx context.Context, req *Request, op string) (*Result, error) {
	if !req.Admin || !r.allowed(ctx, req, dangerPerm(op)) {
		return reply(MsgDenied, backKeyboard())
	}
	r.d.Log.Warn().Int64("user_id", req.Actor.ID).Str("op", op).Msg("danger operation confirmed")
	switch op {
	case OpMarkAllArrived:
		n, err := r.d.Engine.MarkAllArrived(ctx, req.Actor.ID)
		if err != nil {
			return nil, err
		}
		return reply(fmt.Sprintf("✅ Отмечены прибывшими: %d", n), panelBack())
	case OpClearAllData:
		n, err := r.d.Journal.ClearAllData(ctx, req.Actor.ID)
		if err != nil {
			return nil, err
		}
		return reply(fmt.Sprintf("🧹 Очистка данных зафиксирована в журнале (записей: %d). Данные сохранены.", n), panelBack())
	case OpResetSettings:
		n, err := r.d.Settings.ResetAll(ctx, req.Actor.ID)
		if err != nil {
			return nil, err
		}
		return reply(fmt.Sprintf("🔄 Настройки уведомлений сброшены: %d", n), panelBack())
	case OpClearJournal:
		n, err := r.d.Journal.Clear(ctx, req.Actor.ID)
		if err != nil {
			return nil, err
		}
		return reply(fmt.Sprintf("🧹 Очистка журнала зафиксирована (записей: %d). Записи сохранены.", n), journalBack())
	}
	return reply(MsgUnknownAction, panelBack())
}

func (r *Router) applyFilter(ctx context.Context, req *Request, e conversation.FilterEffect) (*Result, error) {
	if !req.Admin || !r.allowed(ctx, req, entity.PermViewJournal) {
		return reply(MsgDenied, backKeyboard())
	}
	var f entity.EventFilter
	title := "🔎 Журнал: "
	if e.Kind == conversation.FilterByAction {
		f.ActionLike = e.Text
		title += "действие «" + e.Text + "»"
	} else {
		f.UserNameLike = e.Text
		title += "ФИО «" + e.Text + "»"
	}
	events, err := r.d.Journal.List(ctx, f, filterLimit)
	if err != nil {
		return nil, err
	}
	return reply(formatEvents(title, events, r.loc()), (&Keyboard{}).Row(backTo(cb(NSAdmin, "journal", "filters"))))
}
