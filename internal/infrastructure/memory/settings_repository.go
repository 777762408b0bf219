package memory

import (
	"context"

	"github.com/jhoicas/tabel-bot/internal/domain/entity"
	"github.com/jhoicas/tabel-bot/internal/domain/repository"
)

var (
	_ repository.PermissionRepository           = (*PermissionRepo)(nil)
	_ repository.NotificationSettingsRepository = (*NotificationSettingsRepo)(nil)
)

// PermissionRepo права командиров в памяти.
type PermissionRepo struct {
	s    *Store
	inTx bool
}

func (r *PermissionRepo) Get(_ context.Context, userID int64) (*entity.Permissions, error) {
	var out *entity.Permissions
	err := r.s.read(r.inTx, func(d *data) error {
		out = d.perms[userID].Clone()
		return nil
	})
	return out, err
}

func (r *PermissionRepo) Save(_ context.Context, perms *entity.Permissions) error {
	return r.s.write(r.inTx, "permissions.save", func(d *data) error {
		d.perms[perms.UserID] = perms.Clone()
		return nil
	})
}

// NotificationSettingsRepo настройки уведомлений в памяти.
type NotificationSettingsRepo struct {
	s    *Store
	inTx bool
}

func (r *NotificationSettingsRepo) Get(_ context.Context, userID int64) (*entity.NotificationSettings, error) {
	var out *entity.NotificationSettings
	err := r.s.read(r.inTx, func(d *data) error {
		if st, ok := d.settings[userID]; ok {
			cp := *st
			out = &cp
		}
		return nil
	})
	return out, err
}

func (r *NotificationSettingsRepo) Save(_ context.Context, settings *entity.NotificationSettings) error {
	return r.s.write(r.inTx, "notifications.save", func(d *data) error {
		cp := *settings
		d.settings[settings.UserID] = &cp
		return nil
	})
}

func (r *NotificationSettingsRepo) ResetAll(_ context.Context) (int, error) {
	n := 0
	err := r.s.write(r.inTx, "notifications.reset", func(d *data) error {
		n = len(d.settings)
		d.settings = make(map[int64]*entity.NotificationSettings)
		return nil
	})
	return n, err
}

// Stats считает по всем пользователям; без записи действуют значения по умолчанию.
func (r *NotificationSettingsRepo) Stats(_ context.Context) (*entity.NotificationStats, error) {
	stats := &entity.NotificationStats{}
	err := r.s.read(r.inTx, func(d *data) error {
		for id := range d.users {
			st, ok := d.settings[id]
			if !ok {
				st = entity.DefaultNotificationSettings(id)
			}
			stats.TotalUsers++
			if st.Enabled {
				stats.Enabled++
			} else {
				stats.Disabled++
			}
			if st.SilentMode {
				stats.Silent++
			}
		}
		return nil
	})
	return stats, err
}
