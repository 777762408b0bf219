package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/tabel-bot/internal/domain/entity"
	"github.com/jhoicas/tabel-bot/internal/domain/repository"
)

var _ repository.EventRepository = (*EventRepo)(nil)

// EventRepo журнал в памяти.
type EventRepo struct {
	s    *Store
	inTx bool
}

func (r *EventRepo) Append(_ context.Context, event *entity.Event) error {
	return r.s.write(r.inTx, "events.append", func(d *data) error {
		cp := *event
		cp.ID = d.nextEventID
		d.nextEventID++
		if cp.UserID != nil {
			id := *cp.UserID
			cp.UserID = &id
		}
		cp.UserName, cp.Username = "", ""
		d.events = append(d.events, &cp)
		event.ID = cp.ID
		return nil
	})
}

func (r *EventRepo) matching(filter entity.EventFilter, now time.Time) ([]*entity.Event, error) {
	from, to := filter.Bounds(now)
	nameLike := strings.ToLower(filter.UserNameLike)
	actionLike := strings.ToLower(filter.ActionLike)

	var out []*entity.Event
	err := r.s.read(r.inTx, func(d *data) error {
		for _, e := range d.events {
			if !from.IsZero() && e.Timestamp.Before(from) {
				continue
			}
			if !to.IsZero() && e.Timestamp.After(to) {
				continue
			}
			cp := *e
			if cp.UserID != nil {
				if u, ok := d.users[*cp.UserID]; ok {
					cp.UserName, cp.Username = u.Name, u.Username
				}
			}
			if nameLike != "" && !strings.Contains(strings.ToLower(cp.UserName), nameLike) {
				continue
			}
			if actionLike != "" && !strings.Contains(strings.ToLower(cp.Action), actionLike) {
				continue
			}
			out = append(out, &cp)
		}
		return nil
	})
	return out, err
}

func (r *EventRepo) List(_ context.Context, filter entity.EventFilter, limit int, now time.Time) ([]*entity.Event, error) {
	out, err := r.matching(filter, now)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.After(out[j].Timestamp)
		}
		return out[i].ID > out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *EventRepo) Count(_ context.Context) (int, error) {
	n := 0
	err := r.s.read(r.inTx, func(d *data) error {
		n = len(d.events)
		return nil
	})
	return n, err
}

func (r *EventRepo) Stats(_ context.Context, filter entity.EventFilter, now time.Time) (*entity.EventStats, error) {
	events, err := r.matching(filter, now)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int)
	for _, e := range events {
		counts[e.Action]++
	}
	stats := &entity.EventStats{Total: len(events)}
	for action, n := range counts {
		stats.ByAction = append(stats.ByAction, entity.ActionCount{Action: action, Count: n})
	}
	sort.Slice(stats.ByAction, func(i, j int) bool {
		if stats.ByAction[i].Count != stats.ByAction[j].Count {
			return stats.ByAction[i].Count > stats.ByAction[j].Count
		}
		return stats.ByAction[i].Action < stats.ByAction[j].Action
	})
	return stats, nil
}
