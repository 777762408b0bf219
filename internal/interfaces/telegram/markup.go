package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/jhoicas/tabel-bot/internal/interfaces/bot"
)

// markup переводит клавиатуру роутера в inline-разметку Telegram; nil остаётся nil.
func markup(k *bot.Keyboard) *tgbotapi.InlineKeyboardMarkup {
	if k == nil || len(k.Rows) == 0 {
		return nil
	}
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(k.Rows))
	for _, r := range k.Rows {
		row := make([]tgbotapi.InlineKeyboardButton, 0, len(r))
		for _, b := range r {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(b.Text, b.Data))
		}
		rows = append(rows, row)
	}
	m := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &m
}

// actorOf автор обновления.
func actorOf(u *tgbotapi.User) bot.Actor {
	if u == nil {
		return bot.Actor{}
	}
	return bot.Actor{ID: u.ID, Username: u.UserName, FirstName: u.FirstName}
}
