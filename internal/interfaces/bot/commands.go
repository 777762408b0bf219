package bot

import (
	"context"
	"errors"
	"strings"

	"github.com/jhoicas/tabel-bot/internal/application/conversation"
	"github.com/jhoicas/tabel-bot/internal/application/report"
	"github.com/jhoicas/tabel-bot/internal/domain"
)

// HandleCommand обрабатывает команду /name с аргументами args.
func (r *Router) HandleCommand(ctx context.Context, actor Actor, name, args string) (resp Response) {
	unlock := r.d.Tracker.Lock(actor.ID)
	defer unlock()
	command := "/" + name
	defer r.recoverPanic(actor, command, &resp)

	req, err := r.newRequest(ctx, actor, Command{Namespace: "cmd", Action: name, Sub: args})
	if err != nil {
		return r.fail(actor, command, err)
	}
	var h handlerFunc
	switch name {
	case "start":
		h = r.cmdStart
	case "help":
		h = r.userHelp
	case "status":
		h = r.cmdStatus
	case "admin":
		h = r.cmdAdmin
	case "setname":
		h = r.cmdSetName
	case "cancel":
		h = r.userCancel
	default:
		return Response{Text: "❓ Неизвестная команда. /help", Keyboard: mainMenu(req.Admin)}
	}
	return r.run(ctx, req, h, command)
}

func (r *Router) cmdStart(ctx context.Context, req *Request) (*Result, error) {
	u, err := r.d.Personnel.Get(ctx, req.Actor.ID)
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		return startFlow(conversation.Registration(req.Actor.Username), nil)
	case err != nil:
		return nil, err
	}
	text := "👋 Здравствуйте, " + u.Name + "!\n\n" + statusLine(u)
	return &Result{Response: Response{Text: text, Keyboard: mainMenu(req.Admin)}, Next: idle()}, nil
}

// cmdStatus администраторам сводка по части, остальным личный статус.
func (r *Router) cmdStatus(ctx context.Context, req *Request) (*Result, error) {
	if req.Admin {
		sum, err := r.d.Reports.Summary(ctx)
		if err != nil {
			return nil, err
		}
		return reply(report.FormatSummary(sum, r.d.Clock.Now()), mainMenu(true))
	}
	return r.userMyStatus(ctx, req)
}

func (r *Router) cmdAdmin(_ context.Context, req *Request) (*Result, error) {
	if !req.Admin {
		return reply(MsgDenied, backKeyboard())
	}
	return reply("👑 Админ-панель", adminPanel())
}

func (r *Router) cmdSetName(ctx context.Context, req *Request) (*Result, error) {
	raw := strings.TrimSpace(req.Cmd.Sub)
	if raw == "" {
		return reply("Использование: /setname Фамилия И.О.", mainMenu(req.Admin))
	}
	u, err := r.d.Personnel.Rename(ctx, req.Actor.ID, req.Actor.ID, raw)
	if err != nil {
		return nil, err
	}
	return reply("✏️ ФИО изменено: "+u.Name, mainMenu(req.Admin))
}
