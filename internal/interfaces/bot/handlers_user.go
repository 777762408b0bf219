package bot

import (
	"context"

	"github.com/jhoicas/tabel-bot/internal/application/conversation"
	"github.com/jhoicas/tabel-bot/internal/application/notification"
	"github.com/jhoicas/tabel-bot/internal/domain/entity"
)

const helpText = `❓ Помощь

✅ Прибыл: отметить возвращение в часть.
🚪 Убыл: выбрать локацию и отметить убытие.
📋 Мой статус: текущее положение.

Команды:
/start  регистрация и главное меню
/status  текущий статус
/setname Фамилия И.О.  сменить ФИО
/cancel  отменить текущее действие
/help  эта справка`

func (r *Router) registerUserRoutes() {
	r.handle(NSUser, "arrived", "", "", r.userArrived)
	r.handle(NSUser, "departed", "", "", r.userDeparted)
	r.handle(NSUser, "my_status", "", "", r.userMyStatus)
	r.handle(NSUser, "help", "", "", r.userHelp)
	r.handle(NSUser, "back_to_main", "", "", r.userBackToMain)
	r.handle(NSUser, "cancel", "", "", r.userCancel)
	r.handle(NSUser, "initial_status", anySub, "", r.userChoice)
	r.handle(NSUser, "location", anySub, "", r.userChoice)
}

func idle() *conversation.State {
	s := conversation.IdleState()
	return &s
}

func (r *Router) userArrived(ctx context.Context, req *Request) (*Result, error) {
	u, err := r.d.Personnel.Get(ctx, req.Actor.ID)
	if err != nil {
		return nil, err
	}
	if u.Status == entity.StatusInUnit {
		return &Result{Response: Response{Notice: notification.Pick(r.d.Texts.AlreadyInUnit, "Вы уже в части")}, Next: idle()}, nil
	}
	if _, err := r.d.Engine.MarkArrival(ctx, req.Actor.ID); err != nil {
		return nil, err
	}
	return &Result{
		Response: Response{Text: "✅ Прибытие отмечено. С возвращением!", Keyboard: mainMenu(req.Admin)},
		Next:     idle(),
	}, nil
}

func (r *Router) userDeparted(ctx context.Context, req *Request) (*Result, error) {
	u, err := r.d.Personnel.Get(ctx, req.Actor.ID)
	if err != nil {
		return nil, err
	}
	if u.Status == entity.StatusAway {
		return &Result{Response: Response{Notice: notification.Pick(r.d.Texts.AlreadyAway, "Вы уже вне части")}, Next: idle()}, nil
	}
	return startFlow(conversation.Departure(), locationKeyboard())
}

func (r *Router) userMyStatus(ctx context.Context, req *Request) (*Result, error) {
	u, err := r.d.Personnel.Get(ctx, req.Actor.ID)
	if err != nil {
		return nil, err
	}
	return reply(formatMyStatus(u, r.loc()), mainMenu(req.Admin))
}

func (r *Router) userHelp(_ context.Context, req *Request) (*Result, error) {
	return reply(helpText, mainMenu(req.Admin))
}

func (r *Router) userBackToMain(_ context.Context, req *Request) (*Result, error) {
	return &Result{
		Response: Response{Text: "🏠 Главное меню", Keyboard: mainMenu(req.Admin)},
		Next:     idle(),
	}, nil
}

func (r *Router) userCancel(ctx context.Context, req *Request) (*Result, error) {
	return r.advance(ctx, req, conversation.Cancel())
}

// userChoice кнопки внутри диалога: начальный статус и выбор локации.
func (r *Router) userChoice(ctx context.Context, req *Request) (*Result, error) {
	return r.advance(ctx, req, conversation.Choose(req.Arg))
}
