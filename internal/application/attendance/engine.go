// Package attendance применяет переходы статуса бойца (прибыл / убыл).
package attendance

import (
	"context"
	"fmt"

	"github.com/jhoicas/tabel-bot/internal/application/ports"
	"github.com/jhoicas/tabel-bot/internal/domain"
	"github.com/jhoicas/tabel-bot/internal/domain/entity"
	"github.com/jhoicas/tabel-bot/internal/domain/repository"
	"github.com/jhoicas/tabel-bot/internal/domain/validation"
	"github.com/jhoicas/tabel-bot/pkg/clock"
	"github.com/jhoicas/tabel-bot/pkg/logger"
)

// Engine проверяет и применяет смену статуса, записывая событие в той же транзакции.
type Engine struct {
	tx       repository.TxRunner
	users    repository.UserRepository
	notifier ports.Notifier
	clock    clock.Clock
	log      *logger.Logger
}

// NewEngine собирает движок переходов.
func NewEngine(
	tx repository.TxRunner,
	users repository.UserRepository,
	notifier ports.Notifier,
	clk clock.Clock,
	log *logger.Logger,
) *Engine {
	if notifier == nil {
		notifier = ports.NopNotifier{}
	}
	return &Engine{tx: tx, users: users, notifier: notifier, clock: clk, log: log}
}

// Outcome результат SetStatus.
type Outcome struct {
	User    *entity.User
	Changed bool // false: статус и локация уже совпадали, событие не записано
}

// CheckLocation нормализует локацию для статуса away. Предустановленные локации
// принимаются как есть, ручной ввод проходит через validation.Location.
func CheckLocation(raw string) (string, error) {
	if entity.IsPresetName(raw) {
		return raw, nil
	}
	return validation.Location(raw)
}

// SetStatus переводит пользователя в status. Для away location обязательна,
// для in_unit она всегда сбрасывается.
func (e *Engine) SetStatus(ctx context.Context, userID int64, status entity.Status, location string) (*Outcome, error) {
	if !status.Valid() {
		return nil, domain.NewValidationError("status", "Неизвестный статус.")
	}
	if status == entity.StatusAway {
		loc, err := CheckLocation(location)
		if err != nil {
			return nil, err
		}
		location = loc
	} else {
		location = ""
	}

	var out Outcome
	err := e.tx.Run(ctx, func(repos repository.Repositories) error {
		user, err := repos.Users.GetByID(ctx, userID)
		if err != nil {
			return domain.WrapStore("get user", err)
		}
		if user == nil {
			return domain.ErrUserNotFound
		}
		if user.Status == status && user.Location == location {
			out.User = user
			return nil
		}
		now := e.clock.Now()
		if err := repos.Users.UpdateStatus(ctx, userID, status, location, now); err != nil {
			return domain.WrapStore("update status", err)
		}
		if err := repos.Events.Append(ctx, entity.NewEvent(userID, string(status), location, now)); err != nil {
			return domain.WrapStore("append event", err)
		}
		user.Status = status
		user.Location = location
		user.LastStatusChange = now
		user.UpdatedAt = now
		out.User = user
		out.Changed = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if out.Changed {
		e.log.Info().
			Int64("user_id", userID).
			Str("status", string(status)).
			Str("location", location).
			Msg("status changed")
		e.notifier.NotifyAdmins(ctx, string(status), location, out.User)
	}
	return &out, nil
}

// MarkArrival эквивалент SetStatus(in_unit, "").
func (e *Engine) MarkArrival(ctx context.Context, userID int64) (*Outcome, error) {
	return e.SetStatus(ctx, userID, entity.StatusInUnit, "")
}

// MarkDeparture эквивалент SetStatus(away, location).
func (e *Engine) MarkDeparture(ctx context.Context, userID int64, location string) (*Outcome, error) {
	return e.SetStatus(ctx, userID, entity.StatusAway, location)
}

// GetStatus текущий статус и локация пользователя.
func (e *Engine) GetStatus(ctx context.Context, userID int64) (entity.Status, string, error) {
	user, err := e.users.GetByID(ctx, userID)
	if err != nil {
		return "", "", domain.WrapStore("get user", err)
	}
	if user == nil {
		return "", "", domain.ErrUserNotFound
	}
	return user.Status, user.Location, nil
}

// MarkAllArrived переводит всех отсутствующих в часть одной транзакцией:
// событие статуса на каждого и итоговое событие mark_all_arrived от actorID.
func (e *Engine) MarkAllArrived(ctx context.Context, actorID int64) (int, error) {
	var moved []*entity.User
	err := e.tx.Run(ctx, func(repos repository.Repositories) error {
		away, err := repos.Users.ListByStatus(ctx, entity.StatusAway)
		if err != nil {
			return domain.WrapStore("list away", err)
		}
		now := e.clock.Now()
		for _, u := range away {
			if err := repos.Users.UpdateStatus(ctx, u.ID, entity.StatusInUnit, "", now); err != nil {
				return domain.WrapStore("update status", err)
			}
			if err := repos.Events.Append(ctx, entity.NewEvent(u.ID, string(entity.StatusInUnit), "", now)); err != nil {
				return domain.WrapStore("append event", err)
			}
		}
		details := fmt.Sprintf("Отмечено прибывшими: %d", len(away))
		if err := repos.Events.Append(ctx, entity.NewEvent(actorID, entity.ActionMarkAllArrived, details, now)); err != nil {
			return domain.WrapStore("append event", err)
		}
		moved = away
		return nil
	})
	if err != nil {
		return 0, err
	}
	e.log.Warn().Int64("actor_id", actorID).Int("count", len(moved)).Msg("mark all arrived")
	return len(moved), nil
}
