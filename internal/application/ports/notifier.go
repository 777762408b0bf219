package ports

import (
	"context"

	"github.com/jhoicas/tabel-bot/internal/domain/entity"
)

// Notifier порт исходящих уведомлений. Реализации не блокируют вызывающего
// и не возвращают ошибок: доставка best effort, сбой только логируется.
type Notifier interface {
	// NotifyAdmins сообщает командирам о событии tag с деталями; subject может быть nil.
	NotifyAdmins(ctx context.Context, tag, details string, subject *entity.User)
	NotifyUser(ctx context.Context, userID int64, text string)
}

// Sender синхронная отправка сообщения в мессенджер; используется эмиттером уведомлений.
type Sender interface {
	Send(ctx context.Context, chatID int64, text string, silent bool) error
}

// AdminDirectory список получателей административных уведомлений.
type AdminDirectory interface {
	AdminIDs(ctx context.Context) ([]int64, error)
}

// NopNotifier ничего не отправляет.
type NopNotifier struct{}

func (NopNotifier) NotifyAdmins(context.Context, string, string, *entity.User) {}
func (NopNotifier) NotifyUser(context.Context, int64, string)                  {}
