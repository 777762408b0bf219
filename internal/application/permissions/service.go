// Package permissions управляет правами командиров: ленивое создание, проверка, изменение.
package permissions

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jhoicas/tabel-bot/internal/domain"
	"github.com/jhoicas/tabel-bot/internal/domain/entity"
	"github.com/jhoicas/tabel-bot/internal/domain/repository"
	"github.com/jhoicas/tabel-bot/pkg/clock"
	"github.com/jhoicas/tabel-bot/pkg/logger"
)

// Service права командиров.
type Service struct {
	tx    repository.TxRunner
	perms repository.PermissionRepository
	clock clock.Clock
	log   *logger.Logger
}

// NewService собирает сервис прав.
func NewService(tx repository.TxRunner, perms repository.PermissionRepository, clk clock.Clock, log *logger.Logger) *Service {
	return &Service{tx: tx, perms: perms, clock: clk, log: log}
}

// EnsurePermissions возвращает права userID, создавая запись по умолчанию при первом обращении.
func (s *Service) EnsurePermissions(ctx context.Context, userID int64) (*entity.Permissions, error) {
	p, err := s.perms.Get(ctx, userID)
	if err != nil {
		return nil, domain.WrapStore("get permissions", err)
	}
	if p != nil {
		return p, nil
	}
	p = entity.DefaultPermissions(userID, s.clock.Now())
	if err := s.perms.Save(ctx, p); err != nil {
		return nil, domain.WrapStore("create permissions", err)
	}
	s.log.Debug().Int64("user_id", userID).Msg("default permissions created")
	return p, nil
}

// Get синоним EnsurePermissions.
func (s *Service) Get(ctx context.Context, userID int64) (*entity.Permissions, error) {
	return s.EnsurePermissions(ctx, userID)
}

// Check значение права flag. Ошибка хранилища или неизвестное право дают false.
func (s *Service) Check(ctx context.Context, userID int64, flag string) bool {
	if !entity.IsPermission(flag) {
		return false
	}
	p, err := s.perms.Get(ctx, userID)
	if err != nil {
		s.log.Error().Err(err).Int64("user_id", userID).Str("flag", flag).Msg("check permission")
		return false
	}
	if p == nil {
		return entity.DefaultPermissions(userID, s.clock.Now()).Has(flag)
	}
	return p.Has(flag)
}

// Update применяет только известные права и пишет permissions_updated от actorID.
// Возвращает итоговые права.
func (s *Service) Update(ctx context.Context, actorID, userID int64, flags map[string]bool) (*entity.Permissions, error) {
	var out *entity.Permissions
	err := s.tx.Run(ctx, func(repos repository.Repositories) error {
		now := s.clock.Now()
		p, err := repos.Permissions.Get(ctx, userID)
		if err != nil {
			return domain.WrapStore("get permissions", err)
		}
		if p == nil {
			p = entity.DefaultPermissions(userID, now)
		}
		applied := p.Apply(flags)
		if len(applied) == 0 {
			out = p
			return nil
		}
		p.UpdatedAt = now
		if err := repos.Permissions.Save(ctx, p); err != nil {
			return domain.WrapStore("save permissions", err)
		}
		details := fmt.Sprintf("Права %d: %s", userID, describe(applied))
		if err := repos.Events.Append(ctx, entity.NewEvent(actorID, entity.ActionPermissionsUpdated, details, now)); err != nil {
			return domain.WrapStore("append event", err)
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Int64("actor_id", actorID).Int64("user_id", userID).Msg("permissions updated")
	return out, nil
}

// Toggle инвертирует одно право.
func (s *Service) Toggle(ctx context.Context, actorID, userID int64, flag string) (*entity.Permissions, error) {
	if !entity.IsPermission(flag) {
		return nil, domain.NewValidationError("permission", "Неизвестное право.")
	}
	p, err := s.EnsurePermissions(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.Update(ctx, actorID, userID, map[string]bool{flag: !p.Has(flag)})
}

func describe(applied map[string]bool) string {
	keys := make([]string, 0, len(applied))
	for k := range applied {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		mark := "✗"
		if applied[k] {
			mark = "✓"
		}
		parts = append(parts, entity.PermissionTitles[k]+" "+mark)
	}
	return strings.Join(parts, ", ")
}
