package repository

import "context"

// Repositories набор репозиториев, привязанных к одной транзакции.
type Repositories struct {
	Users         UserRepository
	Events        EventRepository
	Permissions   PermissionRepository
	Notifications NotificationSettingsRepository
}

// TxRunner выполняет fn в одной транзакции: commit при nil, rollback при ошибке.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos Repositories) error) error
}
