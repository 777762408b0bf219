// Package personnel регистрация бойцов, переименование, удаление, списки и роли командиров.
package personnel

import (
	"context"
	"fmt"

	"github.com/jhoicas/tabel-bot/internal/application/attendance"
	"github.com/jhoicas/tabel-bot/internal/application/ports"
	"github.com/jhoicas/tabel-bot/internal/domain"
	"github.com/jhoicas/tabel-bot/internal/domain/entity"
	"github.com/jhoicas/tabel-bot/internal/domain/repository"
	"github.com/jhoicas/tabel-bot/internal/domain/validation"
	"github.com/jhoicas/tabel-bot/pkg/clock"
	"github.com/jhoicas/tabel-bot/pkg/logger"
)

// PageSize бойцов на странице списка.
const PageSize = 8

// Service операции над личным составом.
type Service struct {
	*Directory
	tx       repository.TxRunner
	users    repository.UserRepository
	notifier ports.Notifier
	clock    clock.Clock
	log      *logger.Logger
}

// NewService собирает сервис.
func NewService(
	tx repository.TxRunner,
	users repository.UserRepository,
	notifier ports.Notifier,
	dir *Directory,
	clk clock.Clock,
	log *logger.Logger,
) *Service {
	if notifier == nil {
		notifier = ports.NopNotifier{}
	}
	return &Service{Directory: dir, tx: tx, users: users, notifier: notifier, clock: clk, log: log}
}

// RegisterInput данные завершённой регистрации.
type RegisterInput struct {
	ID       int64
	Name     string
	Username string
	Status   entity.Status
	Location string
}

// Register создаёт пользователя и его начальный статус одной транзакцией:
// события user_added и статуса.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	name, err := validation.Name(in.Name)
	if err != nil {
		return nil, err
	}
	location := ""
	switch in.Status {
	case entity.StatusInUnit:
	case entity.StatusAway:
		if location, err = attendance.CheckLocation(in.Location); err != nil {
			return nil, err
		}
	default:
		return nil, domain.NewValidationError("status", "Неизвестный статус.")
	}

	now := s.clock.Now()
	user := &entity.User{
		ID:               in.ID,
		Name:             name,
		Username:         in.Username,
		Status:           in.Status,
		Location:         location,
		LastStatusChange: now,
		IsAdmin:          s.IsRoot(in.ID),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	err = s.tx.Run(ctx, func(repos repository.Repositories) error {
		if err := repos.Users.Create(ctx, user); err != nil {
			return domain.WrapStore("create user", err)
		}
		if err := repos.Events.Append(ctx, entity.NewEvent(user.ID, entity.ActionUserAdded, name, now)); err != nil {
			return domain.WrapStore("append event", err)
		}
		if err := repos.Events.Append(ctx, entity.NewEvent(user.ID, string(user.Status), location, now)); err != nil {
			return domain.WrapStore("append event", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Int64("user_id", user.ID).Str("status", string(user.Status)).Msg("user registered")
	s.notifier.NotifyAdmins(ctx, entity.ActionUserAdded, name, user)
	return user, nil
}

// Get пользователь по ID или ErrUserNotFound.
func (s *Service) Get(ctx context.Context, id int64) (*entity.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, domain.WrapStore("get user", err)
	}
	if u == nil {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

// Rename меняет ФИО targetID от имени actorID и пишет name_changed.
func (s *Service) Rename(ctx context.Context, actorID, targetID int64, rawName string) (*entity.User, error) {
	name, err := validation.Name(rawName)
	if err != nil {
		return nil, err
	}
	var out *entity.User
	err = s.tx.Run(ctx, func(repos repository.Repositories) error {
		u, err := repos.Users.GetByID(ctx, targetID)
		if err != nil {
			return domain.WrapStore("get user", err)
		}
		if u == nil {
			return domain.ErrUserNotFound
		}
		now := s.clock.Now()
		if err := repos.Users.UpdateName(ctx, targetID, name, now); err != nil {
			return domain.WrapStore("update name", err)
		}
		details := fmt.Sprintf("%s → %s", u.Name, name)
		if err := repos.Events.Append(ctx, entity.NewEvent(actorID, entity.ActionNameChanged, details, now)); err != nil {
			return domain.WrapStore("append event", err)
		}
		u.Name = name
		u.UpdatedAt = now
		out = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Int64("actor_id", actorID).Int64("user_id", targetID).Msg("name changed")
	return out, nil
}

// Delete удаляет targetID. Событие user_deleted сохраняет ФИО в деталях.
func (s *Service) Delete(ctx context.Context, actorID, targetID int64) (*entity.User, error) {
	if s.IsRoot(targetID) {
		return nil, domain.ErrRootAdmin
	}
	var deleted *entity.User
	err := s.tx.Run(ctx, func(repos repository.Repositories) error {
		u, err := repos.Users.GetByID(ctx, targetID)
		if err != nil {
			return domain.WrapStore("get user", err)
		}
		if u == nil {
			return domain.ErrUserNotFound
		}
		if err := repos.Users.Delete(ctx, targetID); err != nil {
			return domain.WrapStore("delete user", err)
		}
		now := s.clock.Now()
		details := "Удалён боец: " + u.Name
		if err := repos.Events.Append(ctx, entity.NewEvent(actorID, entity.ActionUserDeleted, details, now)); err != nil {
			return domain.WrapStore("append event", err)
		}
		deleted = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Warn().Int64("actor_id", actorID).Int64("user_id", targetID).Msg("user deleted")
	s.notifier.NotifyAdmins(ctx, entity.ActionUserDeleted, deleted.Name, deleted)
	return deleted, nil
}

// RosterPage страница списка бойцов.
type RosterPage struct {
	Users      []*entity.User
	Page       int
	TotalPages int
	Total      int
}

// TotalPages ceil(total / PageSize), минимум 1.
func TotalPages(total int) int {
	if total <= 0 {
		return 1
	}
	return (total + PageSize - 1) / PageSize
}

// Page страница page (с 1) списка бойцов без командиров. Номер вне диапазона даёт первую страницу.
func (s *Service) Page(ctx context.Context, page int) (*RosterPage, error) {
	total, err := s.users.CountPersonnel(ctx)
	if err != nil {
		return nil, domain.WrapStore("count personnel", err)
	}
	pages := TotalPages(total)
	if page < 1 || page > pages {
		page = 1
	}
	users, err := s.users.ListPersonnel(ctx, PageSize, (page-1)*PageSize)
	if err != nil {
		return nil, domain.WrapStore("list personnel", err)
	}
	return &RosterPage{Users: users, Page: page, TotalPages: pages, Total: total}, nil
}

// Personnel все бойцы без командиров.
func (s *Service) Personnel(ctx context.Context) ([]*entity.User, error) {
	users, err := s.users.ListPersonnel(ctx, 0, 0)
	if err != nil {
		return nil, domain.WrapStore("list personnel", err)
	}
	return users, nil
}
