package repository

import (
	"context"

	"github.com/jhoicas/tabel-bot/internal/domain/entity"
)

// PermissionRepository права командиров. Get возвращает nil, nil при отсутствии записи.
type PermissionRepository interface {
	Get(ctx context.Context, userID int64) (*entity.Permissions, error)
	// Save создаёт или перезаписывает запись целиком.
	Save(ctx context.Context, perms *entity.Permissions) error
}

// NotificationSettingsRepository настройки уведомлений. Get возвращает nil, nil при отсутствии записи.
type NotificationSettingsRepository interface {
	Get(ctx context.Context, userID int64) (*entity.NotificationSettings, error)
	Save(ctx context.Context, settings *entity.NotificationSettings) error
	// ResetAll удаляет все записи, после чего действуют значения по умолчанию.
	ResetAll(ctx context.Context) (int, error)
	Stats(ctx context.Context) (*entity.NotificationStats, error)
}
