// Package bot маршрутизация callback-команд, текстов и команд бота.
// Пакет не зависит от Telegram: адаптер передаёт сюда разобранные обновления
// и отображает Response.
package bot

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/google/uuid"

	"github.com/jhoicas/tabel-bot/internal/application/attendance"
	"github.com/jhoicas/tabel-bot/internal/application/auth"
	"github.com/jhoicas/tabel-bot/internal/application/conversation"
	"github.com/jhoicas/tabel-bot/internal/application/journal"
	"github.com/jhoicas/tabel-bot/internal/application/notification"
	"github.com/jhoicas/tabel-bot/internal/application/permissions"
	"github.com/jhoicas/tabel-bot/internal/application/personnel"
	"github.com/jhoicas/tabel-bot/internal/application/report"
	"github.com/jhoicas/tabel-bot/internal/domain"
	"github.com/jhoicas/tabel-bot/pkg/clock"
	"github.com/jhoicas/tabel-bot/pkg/logger"
)

// Фиксированные ответы роутера.
const (
	MsgUnknownAction = "❓ Неизвестное действие. Воспользуйтесь меню."
	MsgDenied        = "❌ Недостаточно прав для выполнения этого действия."
	MsgFailure       = "⚠️ Произошла ошибка. Попробуйте ещё раз позже."
	MsgUseMenu       = "Используйте кнопки меню или /start."
)

// Deps сервисы, которыми пользуются обработчики.
type Deps struct {
	Engine      *attendance.Engine
	Personnel   *personnel.Service
	Permissions *permissions.Service
	Journal     *journal.Service
	Reports     *report.Service
	Settings    *notification.Settings
	Texts       *notification.Texts
	Tracker     *conversation.Tracker
	Tokens      *auth.AuthUseCase // nil отключает выдачу токенов
	Clock       clock.Clock
	Log         *logger.Logger
}

// Request входящая команда после разбора и проверки прав.
type Request struct {
	Actor Actor
	Cmd   Command
	Arg   string // часть subaction после префикса маршрута
	State conversation.State
	Admin bool
	Root  bool
}

// Result ответ обработчика. Next непустой, если обработчик начинает диалог.
type Result struct {
	Response Response
	Next     *conversation.State
}

type handlerFunc func(ctx context.Context, req *Request) (*Result, error)

type route struct {
	handle   handlerFunc
	perm     string
	rootOnly bool
}

type routeKey struct {
	ns, action, sub string
}

type prefixRoute struct {
	ns, action, prefix string
	route
}

// anySub маршрут для любой subaction; она передаётся в Request.Arg.
const anySub = "*"

// Router диспетчер callback-команд.
type Router struct {
	d      Deps
	exact  map[routeKey]route
	prefix []prefixRoute
}

// NewRouter собирает роутер и таблицу маршрутов.
func NewRouter(d Deps) *Router {
	if d.Texts == nil {
		d.Texts = notification.DefaultTexts()
	}
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	r := &Router{d: d, exact: make(map[routeKey]route)}
	r.registerUserRoutes()
	r.registerAdminRoutes()
	return r
}

// handle регистрирует маршрут с необязательным правом.
func (r *Router) handle(ns, action, sub, perm string, h handlerFunc) {
	r.exact[routeKey{ns, action, sub}] = route{handle: h, perm: perm}
}

// handleRoot маршрут только для главных администраторов.
func (r *Router) handleRoot(ns, action, sub string, h handlerFunc) {
	r.exact[routeKey{ns, action, sub}] = route{handle: h, rootOnly: true}
}

// handlePrefix маршрут для subaction вида prefix[_arg].
func (r *Router) handlePrefix(ns, action, prefix, perm string, h handlerFunc) {
	r.prefix = append(r.prefix, prefixRoute{ns: ns, action: action, prefix: prefix, route: route{handle: h, perm: perm}})
}

func (r *Router) lookup(c Command) (route, string, bool) {
	if rt, ok := r.exact[routeKey{c.Namespace, c.Action, c.Sub}]; ok {
		return rt, "", true
	}
	for _, p := range r.prefix {
		if p.ns == c.Namespace && p.action == c.Action && strings.HasPrefix(c.Sub, p.prefix) {
			return p.route, strings.TrimPrefix(strings.TrimPrefix(c.Sub, p.prefix), "_"), true
		}
	}
	if rt, ok := r.exact[routeKey{c.Namespace, c.Action, anySub}]; ok {
		return rt, c.Sub, true
	}
	return route{}, "", false
}

// Dispatch обрабатывает нажатие inline-кнопки raw. Никогда не паникует и не
// возвращает ошибок: сбои превращаются в ответ пользователю.
func (r *Router) Dispatch(ctx context.Context, actor Actor, raw string) (resp Response) {
	unlock := r.d.Tracker.Lock(actor.ID)
	defer unlock()
	defer r.recoverPanic(actor, raw, &resp)

	cmd, ok := Parse(raw)
	if !ok {
		r.d.Log.Debug().Int64("user_id", actor.ID).Str("command", raw).Msg("unparseable callback")
		return r.unknown()
	}
	req, err := r.newRequest(ctx, actor, cmd)
	if err != nil {
		return r.fail(actor, raw, err)
	}
	// Чужой запрос в админское пространство отклоняется до поиска маршрута:
	// ответ не зависит от того, существует ли такой маршрут.
	if cmd.Namespace == NSAdmin && !req.Admin {
		return r.deny(actor, raw)
	}
	rt, arg, ok := r.lookup(cmd)
	if !ok {
		r.d.Log.Debug().Int64("user_id", actor.ID).Str("command", raw).Msg("unknown callback")
		return r.unknown()
	}
	req.Arg = arg
	if denied := r.authorize(ctx, req, rt); denied {
		return r.deny(actor, raw)
	}
	return r.run(ctx, req, rt.handle, raw)
}

func (r *Router) deny(actor Actor, raw string) Response {
	r.d.Log.Warn().Int64("user_id", actor.ID).Str("command", raw).Msg("access denied")
	return Response{Text: MsgDenied, Keyboard: backKeyboard()}
}

// HandleText обрабатывает свободный текст: ввод в активном диалоге или подсказку.
func (r *Router) HandleText(ctx context.Context, actor Actor, text string) (resp Response) {
	unlock := r.d.Tracker.Lock(actor.ID)
	defer unlock()
	defer r.recoverPanic(actor, "text", &resp)

	req, err := r.newRequest(ctx, actor, Command{})
	if err != nil {
		return r.fail(actor, "text", err)
	}
	if req.State.IsIdle() {
		return Response{Text: MsgUseMenu, Keyboard: mainMenu(req.Admin)}
	}
	return r.run(ctx, req, func(ctx context.Context, req *Request) (*Result, error) {
		return r.advance(ctx, req, conversation.Text(text))
	}, "text")
}

func (r *Router) newRequest(ctx context.Context, actor Actor, cmd Command) (*Request, error) {
	isAdmin, err := r.d.Personnel.IsAdmin(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	return &Request{
		Actor: actor,
		Cmd:   cmd,
		State: r.d.Tracker.Get(actor.ID),
		Admin: isAdmin,
		Root:  r.d.Personnel.IsRoot(actor.ID),
	}, nil
}

// authorize true, если доступ запрещён.
func (r *Router) authorize(ctx context.Context, req *Request, rt route) bool {
	if req.Cmd.Namespace != NSAdmin {
		return false
	}
	if !req.Admin {
		return true
	}
	if rt.rootOnly {
		return !req.Root
	}
	return !r.allowed(ctx, req, rt.perm)
}

// allowed проверка права командира; главные администраторы проходят всегда.
func (r *Router) allowed(ctx context.Context, req *Request, perm string) bool {
	if perm == "" || req.Root {
		return true
	}
	return r.d.Permissions.Check(ctx, req.Actor.ID, perm)
}

func (r *Router) run(ctx context.Context, req *Request, h handlerFunc, command string) Response {
	res, err := h(ctx, req)
	if err != nil {
		return r.fail(req.Actor, command, err)
	}
	if res == nil {
		return r.unknown()
	}
	if res.Next != nil && !r.d.Tracker.CompareAndSet(req.Actor.ID, req.State.Tag, *res.Next) {
		r.d.Tracker.Clear(req.Actor.ID)
		return Response{Text: conversation.MsgMismatch, Keyboard: mainMenu(req.Admin)}
	}
	return res.Response
}

// advance передаёт вход конечному автомату и выполняет эффект перехода.
func (r *Router) advance(ctx context.Context, req *Request, in conversation.Input) (*Result, error) {
	tr := conversation.Step(req.State, in)
	if tr.Mismatch {
		r.d.Tracker.Clear(req.Actor.ID)
		r.d.Log.Debug().Int64("user_id", req.Actor.ID).Str("state", string(req.State.Tag)).Msg("state mismatch")
		return &Result{Response: Response{Text: tr.Message, Keyboard: mainMenu(req.Admin)}}, nil
	}
	if !r.d.Tracker.CompareAndSet(req.Actor.ID, req.State.Tag, tr.Next) {
		r.d.Tracker.Clear(req.Actor.ID)
		return &Result{Response: Response{Text: conversation.MsgMismatch, Keyboard: mainMenu(req.Admin)}}, nil
	}
	switch {
	case tr.Cancelled:
		return &Result{Response: Response{Text: tr.Message, Keyboard: mainMenu(req.Admin)}}, nil
	case tr.Effect != nil:
		return r.apply(ctx, req, tr.Effect)
	}
	return &Result{Response: Response{Text: tr.Message, Keyboard: keyboardFor(tr.Next)}}, nil
}

func (r *Router) unknown() Response {
	return Response{Text: MsgUnknownAction, Keyboard: backKeyboard()}
}

// fail превращает ошибку в ответ. Ошибки для пользователя показываются как есть,
// остальные логируются с идентификатором инцидента.
func (r *Router) fail(actor Actor, command string, err error) Response {
	if msg, ok := domain.UserMessage(err); ok {
		return Response{Text: msg, Keyboard: backKeyboard()}
	}
	incident := uuid.NewString()
	r.d.Log.Error().Err(err).
		Str("incident", incident).
		Int64("user_id", actor.ID).
		Str("command", command).
		Msg("handler failed")
	return Response{Text: fmt.Sprintf("%s\nКод: %s", MsgFailure, incident[:8]), Keyboard: backKeyboard()}
}

func (r *Router) recoverPanic(actor Actor, command string, resp *Response) {
	if p := recover(); p != nil {
		incident := uuid.NewString()
		r.d.Log.Error().
			Str("incident", incident).
			Int64("user_id", actor.ID).
			Str("command", command).
			Str("panic", fmt.Sprint(p)).
			Str("stack", string(debug.Stack())).
			Msg("handler panic")
		*resp = Response{Text: fmt.Sprintf("%s\nКод: %s", MsgFailure, incident[:8]), Keyboard: backKeyboard()}
	}
}

func reply(text string, kb *Keyboard) (*Result, error) {
	return &Result{Response: Response{Text: text, Keyboard: kb}}, nil
}

func notice(text string) (*Result, error) {
	return &Result{Response: Response{Notice: text}}, nil
}

func startFlow(next conversation.State, kb *Keyboard) (*Result, error) {
	return &Result{Response: Response{Text: conversation.Prompt(next), Keyboard: kb}, Next: &next}, nil
}
