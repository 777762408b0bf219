package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/jhoicas/tabel-bot/internal/application/ports"
)

var _ ports.Sender = (*Sender)(nil)

// API подмножество tgbotapi.BotAPI, которым пользуется адаптер.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Sender доставка уведомлений через Bot API.
type Sender struct {
	api API
}

// NewSender оборачивает api.
func NewSender(api API) *Sender { return &Sender{api: api} }

// Send отправляет text в chatID; silent отключает звук уведомления.
func (s *Sender) Send(ctx context.Context, chatID int64, text string, silent bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.DisableNotification = silent
	_, err := s.api.Send(msg)
	return err
}
