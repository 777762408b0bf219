// Package clock абстрагирует текущее время, чтобы сервисы можно было тестировать
// с детерминированными часами.
package clock

import (
	"sync"
	"time"
)

// Clock источник текущего времени.
type Clock interface {
	Now() time.Time
}

// Real часы системного времени в заданном часовом поясе (nil = UTC).
func Real(loc *time.Location) Clock {
	if loc == nil {
		loc = time.UTC
	}
	return realClock{loc: loc}
}

type realClock struct{ loc *time.Location }

func (c realClock) Now() time.Time { return time.Now().In(c.loc) }

// Fake управляемые часы для тестов.
type Fake struct {
	mu  sync.Mutex
	now time.Time
}

// NewFake создаёт часы, стоящие на now.
func NewFake(now time.Time) *Fake { return &Fake{now: now} }

func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// Advance сдвигает часы вперёд на d.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

// Set переставляет часы на t.
func (f *Fake) Set(t time.Time) {
	f.mu.Lock()
	f.now = t
	f.mu.Unlock()
}
