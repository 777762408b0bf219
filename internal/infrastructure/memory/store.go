// Package memory хранилище в памяти процесса. Используется в тестах и при DB_DRIVER=memory.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/tabel-bot/internal/domain/entity"
	"github.com/jhoicas/tabel-bot/internal/domain/repository"
)

var _ repository.TxRunner = (*Store)(nil)

type data struct {
	users       map[int64]*entity.User
	events      []*entity.Event
	nextEventID int64
	perms       map[int64]*entity.Permissions
	settings    map[int64]*entity.NotificationSettings
}

func newData() *data {
	return &data{
		users:       make(map[int64]*entity.User),
		nextEventID: 1,
		perms:       make(map[int64]*entity.Permissions),
		settings:    make(map[int64]*entity.NotificationSettings),
	}
}

func (d *data) clone() *data {
	c := &data{
		users:       make(map[int64]*entity.User, len(d.users)),
		events:      make([]*entity.Event, len(d.events)),
		nextEventID: d.nextEventID,
		perms:       make(map[int64]*entity.Permissions, len(d.perms)),
		settings:    make(map[int64]*entity.NotificationSettings, len(d.settings)),
	}
	for id, u := range d.users {
		cp := *u
		c.users[id] = &cp
	}
	copy(c.events, d.events) // события неизменяемы
	for id, p := range d.perms {
		c.perms[id] = p.Clone()
	}
	for id, s := range d.settings {
		cp := *s
		c.settings[id] = &cp
	}
	return c
}

// Store потокобезопасное хранилище. Транзакция держит блокировку записи до конца
// и при ошибке восстанавливает снимок данных.
type Store struct {
	mu     sync.RWMutex
	data   *data
	faults map[string]error
}

// New создаёт пустое хранилище.
func New() *Store {
	return &Store{data: newData(), faults: make(map[string]error)}
}

// FailOn заставляет следующий вызов операции op вернуть err. Для тестов отката.
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	s.faults[op] = err
	s.mu.Unlock()
}

// fault вызывается под блокировкой.
func (s *Store) fault(op string) error {
	if err, ok := s.faults[op]; ok {
		delete(s.faults, op)
		return err
	}
	return nil
}

// Repositories репозитории вне транзакции.
func (s *Store) Repositories() repository.Repositories {
	return s.repos(false)
}

func (s *Store) repos(inTx bool) repository.Repositories {
	return repository.Repositories{
		Users:         &UserRepo{s: s, inTx: inTx},
		Events:        &EventRepo{s: s, inTx: inTx},
		Permissions:   &PermissionRepo{s: s, inTx: inTx},
		Notifications: &NotificationSettingsRepo{s: s, inTx: inTx},
	}
}

// Run выполняет fn атомарно относительно остальных операций хранилища.
func (s *Store) Run(ctx context.Context, fn func(repos repository.Repositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	if err := fn(s.repos(true)); err != nil {
		s.data = snapshot
		return err
	}
	return nil
}

func (s *Store) read(inTx bool, fn func(d *data) error) error {
	if !inTx {
		s.mu.RLock()
		defer s.mu.RUnlock()
	}
	return fn(s.data)
}

func (s *Store) write(inTx bool, op string, fn func(d *data) error) error {
	if !inTx {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	if err := s.fault(op); err != nil {
		return err
	}
	return fn(s.data)
}
