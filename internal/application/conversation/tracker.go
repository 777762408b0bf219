package conversation

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/tabel-bot/pkg/clock"
)

// DefaultTTL время жизни незавершённого диалога.
const DefaultTTL = 30 * time.Minute

// Tracker хранит состояния диалогов в памяти процесса и сериализует
// обработку команд одного пользователя.
type Tracker struct {
	mu      sync.Mutex
	entries map[int64]State
	locks   map[int64]*userLock
	ttl     time.Duration
	clock   clock.Clock
}

type userLock struct {
	mu   sync.Mutex
	refs int
}

// NewTracker создаёт трекер; ttl <= 0 означает DefaultTTL.
func NewTracker(ttl time.Duration, clk clock.Clock) *Tracker {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Tracker{
		entries: make(map[int64]State),
		locks:   make(map[int64]*userLock),
		ttl:     ttl,
		clock:   clk,
	}
}

// Lock захватывает блокировку пользователя и возвращает функцию освобождения.
func (t *Tracker) Lock(userID int64) (unlock func()) {
	t.mu.Lock()
	l, ok := t.locks[userID]
	if !ok {
		l = &userLock{}
		t.locks[userID] = l
	}
	l.refs++
	t.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		t.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(t.locks, userID)
		}
		t.mu.Unlock()
	}
}

// Get текущее состояние; отсутствующая или просроченная запись = Idle.
func (t *Tracker) Get(userID int64) State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.getLocked(userID)
}

func (t *Tracker) getLocked(userID int64) State {
	s, ok := t.entries[userID]
	if !ok {
		return IdleState()
	}
	if t.clock.Now().Sub(s.UpdatedAt) > t.ttl {
		delete(t.entries, userID)
		return IdleState()
	}
	return s
}

// Set записывает состояние; Idle удаляет запись.
func (t *Tracker) Set(userID int64, s State) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.setLocked(userID, s)
}

func (t *Tracker) setLocked(userID int64, s State) {
	if s.IsIdle() {
		delete(t.entries, userID)
		return
	}
	s.UpdatedAt = t.clock.Now()
	t.entries[userID] = s
}

// CompareAndSet записывает next, только если текущий тег равен expected.
func (t *Tracker) CompareAndSet(userID int64, expected Tag, next State) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	cur := t.getLocked(userID)
	if cur.Tag != expected && !(expected == Idle && cur.IsIdle()) {
		return false
	}
	t.setLocked(userID, next)
	return true
}

// Clear сбрасывает диалог пользователя.
func (t *Tracker) Clear(userID int64) {
	t.mu.Lock()
	delete(t.entries, userID)
	t.mu.Unlock()
}

// Len количество активных диалогов (включая ещё не выметенные просроченные).
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// Sweep удаляет просроченные записи и возвращает их число.
func (t *Tracker) Sweep() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.clock.Now()
	n := 0
	for id, s := range t.entries {
		if now.Sub(s.UpdatedAt) > t.ttl {
			delete(t.entries, id)
			n++
		}
	}
	return n
}

// Run периодически вызывает Sweep до отмены ctx.
func (t *Tracker) Run(ctx context.Context, interval time.Duration, onSweep func(n int)) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := t.Sweep(); n > 0 && onSweep != nil {
				onSweep(n)
			}
		}
	}
}
