package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/tabel-bot/internal/domain/entity"
	"github.com/jhoicas/tabel-bot/internal/domain/repository"
)

var (
	_ repository.PermissionRepository           = (*PermissionRepo)(nil)
	_ repository.NotificationSettingsRepository = (*NotificationSettingsRepo)(nil)
)

// PermissionRepo права командиров; флаги хранятся в JSONB.
type PermissionRepo struct {
	q Querier
}

func NewPermissionRepository(q Querier) *PermissionRepo {
	return &PermissionRepo{q: q}
}

func (r *PermissionRepo) Get(ctx context.Context, userID int64) (*entity.Permissions, error) {
	p := entity.Permissions{UserID: userID}
	err := r.q.QueryRow(ctx,
		`SELECT flags, created_at, updated_at FROM commander_permissions WHERE user_id = $1`, userID,
	).Scan(&p.Flags, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get permissions: %w", err)
	}
	if p.Flags == nil {
		p.Flags = make(map[string]bool)
	}
	return &p, nil
}

// Save upsert записи целиком.
func (r *PermissionRepo) Save(ctx context.Context, p *entity.Permissions) error {
	query := `
		INSERT INTO commander_permissions (user_id, flags, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE SET flags = EXCLUDED.flags, updated_at = EXCLUDED.updated_at`
	if _, err := r.q.Exec(ctx, query, p.UserID, p.Flags, p.CreatedAt, p.UpdatedAt); err != nil {
		return fmt.Errorf("save permissions: %w", err)
	}
	return nil
}

// NotificationSettingsRepo личные настройки уведомлений.
type NotificationSettingsRepo struct {
	q Querier
}

func NewNotificationSettingsRepository(q Querier) *NotificationSettingsRepo {
	return &NotificationSettingsRepo{q: q}
}

func (r *NotificationSettingsRepo) Get(ctx context.Context, userID int64) (*entity.NotificationSettings, error) {
	st := entity.NotificationSettings{UserID: userID}
	err := r.q.QueryRow(ctx, `
		SELECT enabled, daily_summary, reminders, silent_mode
		FROM notification_settings WHERE user_id = $1`, userID,
	).Scan(&st.Enabled, &st.DailySummary, &st.Reminders, &st.SilentMode)
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get notification settings: %w", err)
	}
	return &st, nil
}

func (r *NotificationSettingsRepo) Save(ctx context.Context, st *entity.NotificationSettings) error {
	query := `
		INSERT INTO notification_settings (user_id, enabled, daily_summary, reminders, silent_mode)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE SET
			enabled = EXCLUDED.enabled,
			daily_summary = EXCLUDED.daily_summary,
			reminders = EXCLUDED.reminders,
			silent_mode = EXCLUDED.silent_mode`
	if _, err := r.q.Exec(ctx, query, st.UserID, st.Enabled, st.DailySummary, st.Reminders, st.SilentMode); err != nil {
		return fmt.Errorf("save notification settings: %w", err)
	}
	return nil
}

// ResetAll удаляет все записи; дальше действуют значения по умолчанию.
func (r *NotificationSettingsRepo) ResetAll(ctx context.Context) (int, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM notification_settings`)
	if err != nil {
		return 0, fmt.Errorf("reset notification settings: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// Stats по всем пользователям; без записи в notification_settings учитываются значения по умолчанию.
func (r *NotificationSettingsRepo) Stats(ctx context.Context) (*entity.NotificationStats, error) {
	def := entity.DefaultNotificationSettings(0)
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE COALESCE(s.enabled, $1)),
			COUNT(*) FILTER (WHERE COALESCE(s.silent_mode, $2))
		FROM users u
		LEFT JOIN notification_settings s ON s.user_id = u.id`
	st := &entity.NotificationStats{}
	if err := r.q.QueryRow(ctx, query, def.Enabled, def.SilentMode).Scan(&st.TotalUsers, &st.Enabled, &st.Silent); err != nil {
		return nil, fmt.Errorf("notification stats: %w", err)
	}
	st.Disabled = st.TotalUsers - st.Enabled
	return st, nil
}
