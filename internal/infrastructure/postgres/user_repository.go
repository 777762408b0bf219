package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/tabel-bot/internal/domain"
	"github.com/jhoicas/tabel-bot/internal/domain/entity"
	"github.com/jhoicas/tabel-bot/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo реализация UserRepository на PostgreSQL (пул или транзакция).
type UserRepo struct {
	q Querier
}

// NewUserRepository собирает адаптер пользователей.
func NewUserRepository(q Querier) *UserRepo {
	return &UserRepo{q: q}
}

const userColumns = `id, name, username, status, location, last_status_change, is_admin, created_at, updated_at`

// Create сохраняет нового пользователя. Повторный ID = domain.ErrUserExists.
func (r *UserRepo) Create(ctx context.Context, u *entity.User) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		u.ID, u.Name, u.Username, string(u.Status), u.Location, nullTime(u.LastStatusChange),
		u.IsAdmin, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrUserExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByID пользователь по Telegram ID; nil, nil если не найден.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	row := r.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	u, err := scanUser(row)
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (r *UserRepo) UpdateName(ctx context.Context, id int64, name string, at time.Time) error {
	return r.exec(ctx, "update name",
		`UPDATE users SET name = $2, updated_at = $3 WHERE id = $1`, id, name, at)
}

func (r *UserRepo) UpdateStatus(ctx context.Context, id int64, status entity.Status, location string, at time.Time) error {
	return r.exec(ctx, "update status",
		`UPDATE users SET status = $2, location = $3, last_status_change = $4, updated_at = $4 WHERE id = $1`,
		id, string(status), location, at)
}

func (r *UserRepo) SetAdmin(ctx context.Context, id int64, isAdmin bool, at time.Time) error {
	return r.exec(ctx, "set admin",
		`UPDATE users SET is_admin = $2, updated_at = $3 WHERE id = $1`, id, isAdmin, at)
}

// Delete удаляет пользователя; events.user_id обнуляется внешним ключом ON DELETE SET NULL.
func (r *UserRepo) Delete(ctx context.Context, id int64) error {
	return r.exec(ctx, "delete user", `DELETE FROM users WHERE id = $1`, id)
}

// exec обновление одной строки; 0 затронутых строк = domain.ErrUserNotFound.
func (r *UserRepo) exec(ctx context.Context, op, query string, args ...any) error {
	tag, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepo) List(ctx context.Context) ([]*entity.User, error) {
	return r.list(ctx, `SELECT `+userColumns+` FROM users ORDER BY name, id`)
}

func (r *UserRepo) ListPersonnel(ctx context.Context, limit, offset int) ([]*entity.User, error) {
	query, args := personnelQuery(limit, offset)
	return r.list(ctx, query, args...)
}

// personnelQuery limit <= 0 выбирает всех начиная с offset.
func personnelQuery(limit, offset int) (string, []any) {
	query := `
		SELECT ` + userColumns + ` FROM users
		WHERE is_admin = FALSE
		ORDER BY name, id`
	var args []any
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if offset > 0 {
		args = append(args, offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}
	return query, args
}

func (r *UserRepo) CountPersonnel(ctx context.Context) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE is_admin = FALSE`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count personnel: %w", err)
	}
	return n, nil
}

func (r *UserRepo) ListByStatus(ctx context.Context, status entity.Status) ([]*entity.User, error) {
	return r.list(ctx, `SELECT `+userColumns+` FROM users WHERE status = $1 ORDER BY name, id`, string(status))
}

func (r *UserRepo) ListAdmins(ctx context.Context) ([]*entity.User, error) {
	return r.list(ctx, `SELECT `+userColumns+` FROM users WHERE is_admin = TRUE ORDER BY name, id`)
}

// Summary сводка по бойцам. Процент присутствия считается в SQL как NUMERIC.
func (r *UserRepo) Summary(ctx context.Context) (*entity.StatusSummary, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'in_unit'),
			COUNT(*) FILTER (WHERE status = 'away'),
			ROUND(100.0 * COUNT(*) FILTER (WHERE status = 'in_unit') / NULLIF(COUNT(*), 0), 1)
		FROM users WHERE is_admin = FALSE`
	sum := &entity.StatusSummary{AwayByLocation: make(map[string][]string)}
	var rate decimal.NullDecimal
	if err := r.q.QueryRow(ctx, query).Scan(&sum.Total, &sum.InUnit, &sum.Away, &rate); err != nil {
		return nil, fmt.Errorf("summary: %w", err)
	}
	sum.PresenceRate = decimal.Zero
	if rate.Valid {
		sum.PresenceRate = rate.Decimal
	}

	rows, err := r.q.Query(ctx, `
		SELECT location, name FROM users
		WHERE is_admin = FALSE AND status = 'away'
		ORDER BY location, name`)
	if err != nil {
		return nil, fmt.Errorf("summary away: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var location, name string
		if err := rows.Scan(&location, &name); err != nil {
			return nil, fmt.Errorf("scan away: %w", err)
		}
		sum.AwayByLocation[location] = append(sum.AwayByLocation[location], name)
	}
	return sum, rows.Err()
}

func (r *UserRepo) list(ctx context.Context, query string, args ...any) ([]*entity.User, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()
	var out []*entity.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func scanUser(row pgx.Row) (*entity.User, error) {
	var (
		u       entity.User
		status  string
		changed *time.Time
	)
	if err := row.Scan(&u.ID, &u.Name, &u.Username, &status, &u.Location, &changed,
		&u.IsAdmin, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.Status = entity.Status(status)
	if changed != nil {
		u.LastStatusChange = *changed
	}
	return &u, nil
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
