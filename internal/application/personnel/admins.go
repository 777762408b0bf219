package personnel

import (
	"context"
	"fmt"

	"github.com/jhoicas/tabel-bot/internal/application/ports"
	"github.com/jhoicas/tabel-bot/internal/domain"
	"github.com/jhoicas/tabel-bot/internal/domain/entity"
	"github.com/jhoicas/tabel-bot/internal/domain/repository"
)

var _ ports.AdminDirectory = (*Directory)(nil)

// Directory определяет, кто является командиром: главные администраторы
// из конфигурации и пользователи с флагом is_admin.
type Directory struct {
	users repository.UserRepository
	roots []int64
}

// NewDirectory roots главные администраторы из конфигурации.
func NewDirectory(users repository.UserRepository, roots []int64) *Directory {
	return &Directory{users: users, roots: roots}
}

// Roots главные администраторы.
func (d *Directory) Roots() []int64 { return d.roots }

// IsRoot главный администратор из конфигурации.
func (d *Directory) IsRoot(id int64) bool {
	for _, r := range d.roots {
		if r == id {
			return true
		}
	}
	return false
}

// IsAdmin главный администратор или пользователь с флагом is_admin.
func (d *Directory) IsAdmin(ctx context.Context, id int64) (bool, error) {
	if d.IsRoot(id) {
		return true, nil
	}
	u, err := d.users.GetByID(ctx, id)
	if err != nil {
		return false, domain.WrapStore("get user", err)
	}
	return u != nil && u.IsAdmin, nil
}

// AdminIDs получатели административных уведомлений без повторов: сначала главные.
func (d *Directory) AdminIDs(ctx context.Context) ([]int64, error) {
	admins, err := d.users.ListAdmins(ctx)
	if err != nil {
		return nil, domain.WrapStore("list admins", err)
	}
	seen := make(map[int64]bool, len(d.roots)+len(admins))
	ids := make([]int64, 0, len(d.roots)+len(admins))
	for _, id := range d.roots {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, u := range admins {
		if !seen[u.ID] {
			seen[u.ID] = true
			ids = append(ids, u.ID)
		}
	}
	return ids, nil
}

// Admins зарегистрированные командиры.
func (s *Service) Admins(ctx context.Context) ([]*entity.User, error) {
	admins, err := s.users.ListAdmins(ctx)
	if err != nil {
		return nil, domain.WrapStore("list admins", err)
	}
	return admins, nil
}

// Commanders командиры, права которых можно редактировать (без главных).
func (s *Service) Commanders(ctx context.Context) ([]*entity.User, error) {
	admins, err := s.Admins(ctx)
	if err != nil {
		return nil, err
	}
	out := admins[:0:0]
	for _, u := range admins {
		if !s.IsRoot(u.ID) {
			out = append(out, u)
		}
	}
	return out, nil
}

// SetAdmin назначает или снимает командира. Главных администраторов менять нельзя.
func (s *Service) SetAdmin(ctx context.Context, actorID, targetID int64, isAdmin bool) (*entity.User, error) {
	if s.IsRoot(targetID) {
		return nil, domain.ErrRootAdmin
	}
	var out *entity.User
	err := s.tx.Run(ctx, func(repos repository.Repositories) error {
		u, err := repos.Users.GetByID(ctx, targetID)
		if err != nil {
			return domain.WrapStore("get user", err)
		}
		if u == nil {
			return domain.ErrUserNotFound
		}
		if u.IsAdmin == isAdmin {
			out = u
			return nil
		}
		now := s.clock.Now()
		if err := repos.Users.SetAdmin(ctx, targetID, isAdmin, now); err != nil {
			return domain.WrapStore("set admin", err)
		}
		action := entity.ActionAdminAdded
		if !isAdmin {
			action = entity.ActionAdminRemoved
		}
		details := fmt.Sprintf("%s (%d)", u.Name, u.ID)
		if err := repos.Events.Append(ctx, entity.NewEvent(actorID, action, details, now)); err != nil {
			return domain.WrapStore("append event", err)
		}
		u.IsAdmin = isAdmin
		u.UpdatedAt = now
		out = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Int64("actor_id", actorID).Int64("user_id", targetID).Bool("is_admin", isAdmin).Msg("admin role changed")
	return out, nil
}
