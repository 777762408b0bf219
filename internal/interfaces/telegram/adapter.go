// Package telegram транспорт Bot API: long polling, отрисовка ответов роутера
// и доставка уведомлений.
package telegram

import (
	"context"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/jhoicas/tabel-bot/internal/interfaces/bot"
	"github.com/jhoicas/tabel-bot/pkg/config"
	"github.com/jhoicas/tabel-bot/pkg/logger"
)

// maxMessageLen предел длины текста сообщения Telegram (в символах).
const maxMessageLen = 4096

// Handler обработчик обновлений; реализуется bot.Router.
type Handler interface {
	Dispatch(ctx context.Context, actor bot.Actor, raw string) bot.Response
	HandleText(ctx context.Context, actor bot.Actor, text string) bot.Response
	HandleCommand(ctx context.Context, actor bot.Actor, name, args string) bot.Response
}

// Connect авторизуется в Bot API.
func Connect(cfg config.TelegramConfig) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, err
	}
	api.Debug = cfg.Debug
	return api, nil
}

// Adapter принимает обновления и отвечает на них. Обновления разных
// пользователей обрабатываются параллельно; порядок для одного пользователя
// обеспечивает роутер.
type Adapter struct {
	api     API
	handler Handler
	log     *logger.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewAdapter собирает адаптер.
func NewAdapter(api API, handler Handler, log *logger.Logger) *Adapter {
	return &Adapter{api: api, handler: handler, log: log, timeout: time.Minute}
}

// Poll запускает long polling и обрабатывает обновления до отмены ctx.
func (a *Adapter) Poll(ctx context.Context, api *tgbotapi.BotAPI, pollTimeout int) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = pollTimeout
	updates := api.GetUpdatesChan(u)
	a.log.Info().Str("bot", api.Self.UserName).Msg("telegram polling started")
	go func() {
		<-ctx.Done()
		api.StopReceivingUpdates()
	}()
	return a.Run(ctx, updates)
}

// Run обрабатывает обновления из канала до его закрытия или отмены ctx и
// дожидается завершения начатых обработчиков.
func (a *Adapter) Run(ctx context.Context, updates <-chan tgbotapi.Update) error {
	defer a.wg.Wait()
	for {
		select {
		case <-ctx.Done():
			return nil
		case upd, ok := <-updates:
			if !ok {
				return nil
			}
			a.wg.Add(1)
			go func() {
				defer a.wg.Done()
				a.HandleUpdate(ctx, upd)
			}()
		}
	}
}

// HandleUpdate обрабатывает одно обновление.
func (a *Adapter) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	switch {
	case upd.CallbackQuery != nil:
		q := upd.CallbackQuery
		resp := a.handler.Dispatch(ctx, actorOf(q.From), q.Data)
		if _, err := a.api.Request(tgbotapi.NewCallback(q.ID, resp.Notice)); err != nil {
			a.log.Warn().Err(err).Msg("answer callback")
		}
		if q.Message != nil {
			a.deliver(q.Message.Chat.ID, q.Message.MessageID, resp)
		}
	case upd.Message != nil:
		m := upd.Message
		var resp bot.Response
		switch {
		case m.IsCommand():
			resp = a.handler.HandleCommand(ctx, actorOf(m.From), m.Command(), m.CommandArguments())
		case m.Text != "":
			resp = a.handler.HandleText(ctx, actorOf(m.From), m.Text)
		default:
			return
		}
		if resp.Text == "" {
			resp.Text = resp.Notice
		}
		a.deliver(m.Chat.ID, 0, resp)
	}
}

// deliver показывает ответ: правит сообщение editID с кнопками или отправляет новое.
func (a *Adapter) deliver(chatID int64, editID int, resp bot.Response) {
	kb := markup(resp.Keyboard)
	text := truncate(resp.Text)

	if resp.Document != nil {
		doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: resp.Document.Name, Bytes: resp.Document.Data})
		doc.Caption = text
		if kb != nil {
			doc.ReplyMarkup = kb
		}
		if _, err := a.api.Send(doc); err != nil {
			a.log.Error().Err(err).Int64("chat_id", chatID).Str("file", resp.Document.Name).Msg("send document")
		}
		return
	}
	if text == "" {
		return
	}
	if editID != 0 {
		edit := tgbotapi.NewEditMessageText(chatID, editID, text)
		edit.ReplyMarkup = kb
		_, err := a.api.Request(edit)
		if err == nil || strings.Contains(err.Error(), "message is not modified") {
			return
		}
		a.log.Debug().Err(err).Int64("chat_id", chatID).Msg("edit failed, sending new message")
	}
	msg := tgbotapi.NewMessage(chatID, text)
	if kb != nil {
		msg.ReplyMarkup = kb
	}
	if _, err := a.api.Send(msg); err != nil {
		a.log.Error().Err(err).Int64("chat_id", chatID).Msg("send message")
	}
}

func truncate(s string) string {
	r := []rune(s)
	if len(r) <= maxMessageLen {
		return s
	}
	return string(r[:maxMessageLen-1]) + "…"
}
