package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/tabel-bot/internal/domain/entity"
	"github.com/jhoicas/tabel-bot/internal/domain/repository"
)

var _ repository.EventRepository = (*EventRepo)(nil)

// EventRepo журнал событий на PostgreSQL.
type EventRepo struct {
	q Querier
}

// NewEventRepository собирает адаптер журнала.
func NewEventRepository(q Querier) *EventRepo {
	return &EventRepo{q: q}
}

// Append добавляет событие и записывает присвоенный ID в event.ID.
func (r *EventRepo) Append(ctx context.Context, e *entity.Event) error {
	query := `
		INSERT INTO events (user_id, action, details, ts)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	if err := r.q.QueryRow(ctx, query, e.UserID, e.Action, e.Details, e.Timestamp).Scan(&e.ID); err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// List события по фильтру, новые первыми, с именем автора из users.
func (r *EventRepo) List(ctx context.Context, filter entity.EventFilter, limit int, now time.Time) ([]*entity.Event, error) {
	where, args := eventWhere(filter, now)
	query := `
		SELECT e.id, e.user_id, e.action, e.details, e.ts, COALESCE(u.name, ''), COALESCE(u.username, '')
		FROM events e
		LEFT JOIN users u ON u.id = e.user_id` + where + `
		ORDER BY e.ts DESC, e.id DESC`
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var out []*entity.Event
	for rows.Next() {
		var e entity.Event
		if err := rows.Scan(&e.ID, &e.UserID, &e.Action, &e.Details, &e.Timestamp, &e.UserName, &e.Username); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

func (r *EventRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM events`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return n, nil
}

// Stats количество событий по тегам, по убыванию.
func (r *EventRepo) Stats(ctx context.Context, filter entity.EventFilter, now time.Time) (*entity.EventStats, error) {
	where, args := eventWhere(filter, now)
	query := `
		SELECT e.action, COUNT(*)
		FROM events e
		LEFT JOIN users u ON u.id = e.user_id` + where + `
		GROUP BY e.action
		ORDER BY COUNT(*) DESC, e.action`
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("event stats: %w", err)
	}
	defer rows.Close()

	stats := &entity.EventStats{}
	for rows.Next() {
		var ac entity.ActionCount
		if err := rows.Scan(&ac.Action, &ac.Count); err != nil {
			return nil, fmt.Errorf("scan stats: %w", err)
		}
		stats.Total += ac.Count
		stats.ByAction = append(stats.ByAction, ac)
	}
	return stats, rows.Err()
}

// eventWhere условие WHERE и аргументы для фильтра журнала.
func eventWhere(filter entity.EventFilter, now time.Time) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	from, to := filter.Bounds(now)
	if !from.IsZero() {
		add("e.ts >= $%d", from)
	}
	if !to.IsZero() {
		add("e.ts <= $%d", to)
	}
	if filter.UserNameLike != "" {
		add("u.name ILIKE $%d", "%"+likeEscape(filter.UserNameLike)+"%")
	}
	if filter.ActionLike != "" {
		add("e.action ILIKE $%d", "%"+likeEscape(filter.ActionLike)+"%")
	}
	if len(conds) == 0 {
		return "", nil
	}
	return "\n\t\tWHERE " + strings.Join(conds, " AND "), args
}

var likeReplacer = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likeEscape(s string) string {
	return likeReplacer.Replace(s)
}
