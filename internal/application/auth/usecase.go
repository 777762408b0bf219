// Package auth выпуск API-токенов для командиров.
package auth

import (
	"context"
	"time"

	"github.com/jhoicas/tabel-bot/internal/domain"
	"github.com/jhoicas/tabel-bot/internal/domain/entity"
	"github.com/jhoicas/tabel-bot/internal/domain/repository"
	"github.com/jhoicas/tabel-bot/pkg/clock"
	"github.com/jhoicas/tabel-bot/pkg/jwt"
	"github.com/jhoicas/tabel-bot/pkg/logger"
)

// JWTConfig параметры генерации токенов.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// Token выпущенный токен и момент его истечения.
type Token struct {
	Value     string
	ExpiresAt time.Time
}

// AdminChecker источник прав администратора.
type AdminChecker interface {
	IsAdmin(ctx context.Context, id int64) (bool, error)
}

// AuthUseCase выдаёт токены HTTP API администраторам бота.
type AuthUseCase struct {
	tx     repository.TxRunner
	admins AdminChecker
	jwtCfg JWTConfig
	clock  clock.Clock
	log    *logger.Logger
}

// NewAuthUseCase собирает сценарий выдачи токенов.
func NewAuthUseCase(
	tx repository.TxRunner,
	admins AdminChecker,
	jwtCfg JWTConfig,
	clk clock.Clock,
	log *logger.Logger,
) *AuthUseCase {
	return &AuthUseCase{tx: tx, admins: admins, jwtCfg: jwtCfg, clock: clk, log: log}
}

// Enabled сообщает, настроен ли секрет подписи.
func (uc *AuthUseCase) Enabled() bool { return uc.jwtCfg.Secret != "" }

// IssueToken выпускает токен с ролью commander для userID и пишет api_token_issued.
// Не-администратор получает ErrForbidden.
func (uc *AuthUseCase) IssueToken(ctx context.Context, userID int64) (*Token, error) {
	ok, err := uc.admins.IsAdmin(ctx, userID)
	if err != nil {
		return nil, domain.WrapStore("check admin", err)
	}
	if !ok {
		return nil, domain.ErrForbidden
	}
	now := uc.clock.Now()
	value, err := jwt.GenerateAt(uc.jwtCfg.Secret, userID, jwt.RoleCommander, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes, now)
	if err != nil {
		return nil, err
	}
	err = uc.tx.Run(ctx, func(repos repository.Repositories) error {
		ev := entity.NewEvent(userID, entity.ActionAPITokenIssued, "Выпущен токен API", now)
		return domain.WrapStore("append event", repos.Events.Append(ctx, ev))
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Int64("user_id", userID).Msg("api token issued")
	return &Token{Value: value, ExpiresAt: now.Add(time.Duration(uc.jwtCfg.ExpMinutes) * time.Minute)}, nil
}
