package repository

import (
	"context"
	"time"

	"github.com/jhoicas/tabel-bot/internal/domain/entity"
)

// EventRepository журнал событий, только добавление.
type EventRepository interface {
	Append(ctx context.Context, event *entity.Event) error
	// List последние события (новые первыми) с учётом фильтра; limit <= 0 без ограничения.
	List(ctx context.Context, filter entity.EventFilter, limit int, now time.Time) ([]*entity.Event, error)
	Count(ctx context.Context) (int, error)
	Stats(ctx context.Context, filter entity.EventFilter, now time.Time) (*entity.EventStats, error)
}
