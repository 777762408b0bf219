package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/tabel-bot/internal/domain"
	"github.com/jhoicas/tabel-bot/internal/domain/entity"
	"github.com/jhoicas/tabel-bot/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo пользователи в памяти.
type UserRepo struct {
	s    *Store
	inTx bool
}

func (r *UserRepo) Create(_ context.Context, user *entity.User) error {
	return r.s.write(r.inTx, "users.create", func(d *data) error {
		if _, ok := d.users[user.ID]; ok {
			return domain.ErrUserExists
		}
		cp := *user
		d.users[user.ID] = &cp
		return nil
	})
}

func (r *UserRepo) GetByID(_ context.Context, id int64) (*entity.User, error) {
	var out *entity.User
	err := r.s.read(r.inTx, func(d *data) error {
		if u, ok := d.users[id]; ok {
			cp := *u
			out = &cp
		}
		return nil
	})
	return out, err
}

func (r *UserRepo) update(op string, id int64, fn func(u *entity.User)) error {
	return r.s.write(r.inTx, op, func(d *data) error {
		u, ok := d.users[id]
		if !ok {
			return domain.ErrUserNotFound
		}
		fn(u)
		return nil
	})
}

func (r *UserRepo) UpdateName(_ context.Context, id int64, name string, at time.Time) error {
	return r.update("users.update_name", id, func(u *entity.User) {
		u.Name = name
		u.UpdatedAt = at
	})
}

func (r *UserRepo) UpdateStatus(_ context.Context, id int64, status entity.Status, location string, at time.Time) error {
	return r.update("users.update_status", id, func(u *entity.User) {
		u.Status = status
		u.Location = location
		u.LastStatusChange = at
		u.UpdatedAt = at
	})
}

func (r *UserRepo) SetAdmin(_ context.Context, id int64, isAdmin bool, at time.Time) error {
	return r.update("users.set_admin", id, func(u *entity.User) {
		u.IsAdmin = isAdmin
		u.UpdatedAt = at
	})
}

// Delete удаляет пользователя и отвязывает его события, как ON DELETE SET NULL.
func (r *UserRepo) Delete(_ context.Context, id int64) error {
	return r.s.write(r.inTx, "users.delete", func(d *data) error {
		if _, ok := d.users[id]; !ok {
			return domain.ErrUserNotFound
		}
		delete(d.users, id)
		delete(d.perms, id)
		delete(d.settings, id)
		for i, e := range d.events {
			if e.UserID != nil && *e.UserID == id {
				cp := *e
				cp.UserID = nil
				d.events[i] = &cp
			}
		}
		return nil
	})
}

func (r *UserRepo) collect(keep func(u *entity.User) bool) ([]*entity.User, error) {
	var out []*entity.User
	err := r.s.read(r.inTx, func(d *data) error {
		for _, u := range d.users {
			if keep(u) {
				cp := *u
				out = append(out, &cp)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, err
}

func (r *UserRepo) List(_ context.Context) ([]*entity.User, error) {
	return r.collect(func(*entity.User) bool { return true })
}

func (r *UserRepo) ListPersonnel(_ context.Context, limit, offset int) ([]*entity.User, error) {
	all, err := r.collect(func(u *entity.User) bool { return !u.IsAdmin })
	if err != nil {
		return nil, err
	}
	if offset >= len(all) {
		return nil, nil
	}
	if offset < 0 {
		offset = 0
	}
	end := len(all)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return all[offset:end], nil
}

func (r *UserRepo) CountPersonnel(_ context.Context) (int, error) {
	n := 0
	err := r.s.read(r.inTx, func(d *data) error {
		for _, u := range d.users {
			if !u.IsAdmin {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *UserRepo) ListByStatus(_ context.Context, status entity.Status) ([]*entity.User, error) {
	return r.collect(func(u *entity.User) bool { return u.Status == status })
}

func (r *UserRepo) ListAdmins(_ context.Context) ([]*entity.User, error) {
	return r.collect(func(u *entity.User) bool { return u.IsAdmin })
}

func (r *UserRepo) Summary(ctx context.Context) (*entity.StatusSummary, error) {
	personnel, err := r.collect(func(u *entity.User) bool { return !u.IsAdmin })
	if err != nil {
		return nil, err
	}
	sum := &entity.StatusSummary{AwayByLocation: make(map[string][]string)}
	for _, u := range personnel {
		sum.Total++
		if u.Status == entity.StatusAway {
			sum.Away++
			sum.AwayByLocation[u.Location] = append(sum.AwayByLocation[u.Location], u.Name)
		} else {
			sum.InUnit++
		}
	}
	sum.PresenceRate = entity.PresenceRate(sum.InUnit, sum.Total)
	return sum, nil
}
