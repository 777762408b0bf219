package repository

import (
	"context"
	"time"

	"github.com/jhoicas/tabel-bot/internal/domain/entity"
)

// UserRepository порт хранения бойцов и командиров.
// GetByID возвращает nil, nil, если пользователь не найден.
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	UpdateName(ctx context.Context, id int64, name string, at time.Time) error
	// UpdateStatus записывает статус, локацию и время изменения одной командой.
	UpdateStatus(ctx context.Context, id int64, status entity.Status, location string, at time.Time) error
	SetAdmin(ctx context.Context, id int64, isAdmin bool, at time.Time) error
	// Delete удаляет пользователя; события журнала остаются с user_id = NULL.
	Delete(ctx context.Context, id int64) error

	// List все пользователи, отсортированные по имени.
	List(ctx context.Context) ([]*entity.User, error)
	// ListPersonnel пользователи без флага is_admin, по имени, с пагинацией.
	// limit <= 0 снимает ограничение на количество.
	ListPersonnel(ctx context.Context, limit, offset int) ([]*entity.User, error)
	CountPersonnel(ctx context.Context) (int, error)
	ListByStatus(ctx context.Context, status entity.Status) ([]*entity.User, error)
	ListAdmins(ctx context.Context) ([]*entity.User, error)
	// Summary сводка по бойцам (is_admin = false).
	Summary(ctx context.Context) (*entity.StatusSummary, error)
}
