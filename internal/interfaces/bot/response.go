package bot

import "github.com/jhoicas/tabel-bot/internal/application/ports"

// Button inline-кнопка.
type Button struct {
	Text string
	Data string
}

// Keyboard inline-клавиатура, не зависящая от транспорта.
type Keyboard struct {
	Rows [][]Button
}

// Row добавляет ряд кнопок.
func (k *Keyboard) Row(buttons ...Button) *Keyboard {
	if len(buttons) > 0 {
		k.Rows = append(k.Rows, buttons)
	}
	return k
}

// Response ответ роутера. Пустой Text при непустом Notice означает «только всплывающее уведомление».
type Response struct {
	Text     string
	Keyboard *Keyboard
	Notice   string
	Document *ports.Document
}

// Actor автор входящего обновления.
type Actor struct {
	ID        int64
	Username  string
	FirstName string
}
