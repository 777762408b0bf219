package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/tabel-bot/internal/domain/repository"
)

var _ repository.TxRunner = (*TxRunner)(nil)

// TxRunner выполняет колбэки внутри транзакции PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner собирает runner поверх пула.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Repositories репозитории вне транзакции, на пуле.
func (r *TxRunner) Repositories() repository.Repositories {
	return newRepositories(r.pool)
}

// Run открывает транзакцию, передаёт fn репозитории на ней и делает Commit или Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(repos repository.Repositories) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(newRepositories(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func newRepositories(q Querier) repository.Repositories {
	return repository.Repositories{
		Users:         NewUserRepository(q),
		Events:        NewEventRepository(q),
		Permissions:   NewPermissionRepository(q),
		Notifications: NewNotificationSettingsRepository(q),
	}
}
