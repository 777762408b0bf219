package telegram

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/tabel-bot/internal/application/ports"
	"github.com/jhoicas/tabel-bot/internal/interfaces/bot"
	"github.com/jhoicas/tabel-bot/pkg/logger"
)

type fakeAPI struct {
	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
	editErr  error
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, c)
	if _, ok := c.(tgbotapi.EditMessageTextConfig); ok && f.editErr != nil {
		return nil, f.editErr
	}
	return &tgbotapi.APIResponse{Ok: true}, nil
}

type fakeHandler struct {
	resp     bot.Response
	lastCall string
}

func (h *fakeHandler) Dispatch(_ context.Context, a bot.Actor, raw string) bot.Response {
	h.lastCall = "dispatch:" + raw
	return h.resp
}

func (h *fakeHandler) HandleText(_ context.Context, a bot.Actor, text string) bot.Response {
	h.lastCall = "text:" + text
	return h.resp
}

func (h *fakeHandler) HandleCommand(_ context.Context, a bot.Actor, name, args string) bot.Response {
	h.lastCall = "command:" + name + ":" + args
	return h.resp
}

func callbackUpdate(data string) tgbotapi.Update {
	return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb1",
		From:    &tgbotapi.User{ID: 42, UserName: "ivanov"},
		Data:    data,
		Message: &tgbotapi.Message{MessageID: 7, Chat: &tgbotapi.Chat{ID: 42}},
	}}
}

func TestSender_SilentMode(t *testing.T) {
	api := &fakeAPI{}
	s := NewSender(api)
	require.NoError(t, s.Send(context.Background(), 5, "привет", true))

	require.Len(t, api.sent, 1)
	msg := api.sent[0].(tgbotapi.MessageConfig)
	assert.Equal(t, int64(5), msg.ChatID)
	assert.True(t, msg.DisableNotification)
}

func TestHandleUpdate_CallbackEditsMessage(t *testing.T) {
	api := &fakeAPI{}
	kb := (&bot.Keyboard{}).Row(bot.Button{Text: "Назад", Data: "user:back_to_main"})
	h := &fakeHandler{resp: bot.Response{Text: "Меню", Keyboard: kb, Notice: "ok"}}
	a := NewAdapter(api, h, logger.Nop())

	a.HandleUpdate(context.Background(), callbackUpdate("user:my_status"))

	assert.Equal(t, "dispatch:user:my_status", h.lastCall)
	require.Len(t, api.requests, 2)
	answer := api.requests[0].(tgbotapi.CallbackConfig)
	assert.Equal(t, "ok", answer.Text)
	edit := api.requests[1].(tgbotapi.EditMessageTextConfig)
	assert.Equal(t, 7, edit.MessageID)
	require.NotNil(t, edit.ReplyMarkup)
	assert.Equal(t, "user:back_to_main", *edit.ReplyMarkup.InlineKeyboard[0][0].CallbackData)
	assert.Empty(t, api.sent)
}

func TestHandleUpdate_EditFailureFallsBackToSend(t *testing.T) {
	api := &fakeAPI{editErr: errors.New("Bad Request: message to edit not found")}
	h := &fakeHandler{resp: bot.Response{Text: "Меню"}}
	a := NewAdapter(api, h, logger.Nop())

	a.HandleUpdate(context.Background(), callbackUpdate("user:help"))
	require.Len(t, api.sent, 1)
	assert.Equal(t, "Меню", api.sent[0].(tgbotapi.MessageConfig).Text)
}

func TestHandleUpdate_NoticeOnlyDoesNotEdit(t *testing.T) {
	api := &fakeAPI{}
	h := &fakeHandler{resp: bot.Response{Notice: "Вы уже в части"}}
	a := NewAdapter(api, h, logger.Nop())

	a.HandleUpdate(context.Background(), callbackUpdate("user:arrived"))
	assert.Len(t, api.requests, 1)
	assert.Empty(t, api.sent)
}

func TestHandleUpdate_DocumentIsSent(t *testing.T) {
	api := &fakeAPI{}
	h := &fakeHandler{resp: bot.Response{Text: "Готово", Document: &ports.Document{Name: "journal.csv", Data: []byte("a,b")}}}
	a := NewAdapter(api, h, logger.Nop())

	a.HandleUpdate(context.Background(), callbackUpdate("admin:export_csv:all"))
	require.Len(t, api.sent, 1)
	doc := api.sent[0].(tgbotapi.DocumentConfig)
	assert.Equal(t, "Готово", doc.Caption)
}

func TestHandleUpdate_CommandAndText(t *testing.T) {
	api := &fakeAPI{}
	h := &fakeHandler{resp: bot.Response{Text: "ok"}}
	a := NewAdapter(api, h, logger.Nop())

	cmd := &tgbotapi.Message{
		Text:     "/setname Иванов И.И.",
		Chat:     &tgbotapi.Chat{ID: 42},
		From:     &tgbotapi.User{ID: 42},
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: 8}},
	}
	a.HandleUpdate(context.Background(), tgbotapi.Update{Message: cmd})
	assert.Equal(t, "command:setname:Иванов И.И.", h.lastCall)

	text := &tgbotapi.Message{Text: "Склад", Chat: &tgbotapi.Chat{ID: 42}, From: &tgbotapi.User{ID: 42}}
	a.HandleUpdate(context.Background(), tgbotapi.Update{Message: text})
	assert.Equal(t, "text:Склад", h.lastCall)
	assert.Len(t, api.sent, 2)
}

func TestRun_StopsWhenChannelCloses(t *testing.T) {
	api := &fakeAPI{}
	h := &fakeHandler{resp: bot.Response{Text: "ok"}}
	a := NewAdapter(api, h, logger.Nop())

	ch := make(chan tgbotapi.Update, 1)
	ch <- callbackUpdate("user:help")
	close(ch)
	require.NoError(t, a.Run(context.Background(), ch))
	assert.Len(t, api.requests, 2)
}

func TestMarkupAndTruncate(t *testing.T) {
	assert.Nil(t, markup(nil))
	assert.Nil(t, markup(&bot.Keyboard{}))

	long := strings.Repeat("я", maxMessageLen+10)
	assert.Len(t, []rune(truncate(long)), maxMessageLen)
	assert.Equal(t, "коротко", truncate("коротко"))
}
