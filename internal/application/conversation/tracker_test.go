package conversation_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/tabel-bot/internal/application/conversation"
	"github.com/jhoicas/tabel-bot/pkg/clock"
)

func newTracker(ttl time.Duration) (*conversation.Tracker, *clock.Fake) {
	clk := clock.NewFake(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC))
	return conversation.NewTracker(ttl, clk), clk
}

func TestTracker_SetGetClear(t *testing.T) {
	tr, _ := newTracker(time.Minute)
	assert.True(t, tr.Get(1).IsIdle())

	tr.Set(1, conversation.Departure())
	assert.Equal(t, conversation.AwaitingLocationChoice, tr.Get(1).Tag)
	assert.Equal(t, 1, tr.Len())

	tr.Set(1, conversation.IdleState())
	assert.Equal(t, 0, tr.Len(), "Idle удаляет запись")

	tr.Set(1, conversation.Departure())
	tr.Clear(1)
	assert.True(t, tr.Get(1).IsIdle())
}

func TestTracker_CompareAndSet(t *testing.T) {
	tr, _ := newTracker(time.Minute)

	assert.True(t, tr.CompareAndSet(5, conversation.Idle, conversation.Danger("x")))
	assert.False(t, tr.CompareAndSet(5, conversation.Idle, conversation.Departure()),
		"повторное нажатие не должно перезаписать активный диалог")
	assert.Equal(t, conversation.AwaitingDangerText, tr.Get(5).Tag)

	assert.True(t, tr.CompareAndSet(5, conversation.AwaitingDangerText, conversation.IdleState()))
	assert.True(t, tr.Get(5).IsIdle())
}

func TestTracker_TTL(t *testing.T) {
	tr, clk := newTracker(30 * time.Minute)
	tr.Set(1, conversation.Departure())
	tr.Set(2, conversation.Registration(""))

	clk.Advance(20 * time.Minute)
	tr.Set(2, conversation.Registration("fresh"))

	clk.Advance(15 * time.Minute)
	assert.Equal(t, 1, tr.Sweep())
	assert.True(t, tr.Get(1).IsIdle())
	assert.Equal(t, conversation.AwaitingName, tr.Get(2).Tag)

	clk.Advance(time.Hour)
	assert.True(t, tr.Get(2).IsIdle(), "просроченный диалог читается как Idle")
}

func TestTracker_SweepRemovesExpired(t *testing.T) {
	tr, clk := newTracker(time.Minute)
	tr.Set(1, conversation.Departure())
	tr.Set(2, conversation.Departure())
	clk.Advance(2 * time.Minute)

	assert.Equal(t, 2, tr.Sweep())
	assert.Equal(t, 0, tr.Len())
}

func TestTracker_LockSerializesUser(t *testing.T) {
	tr, _ := newTracker(time.Minute)
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		inside  int
		maxSeen int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := tr.Lock(9)
			defer unlock()
			mu.Lock()
			inside++
			if inside > maxSeen {
				maxSeen = inside
			}
			mu.Unlock()
			time.Sleep(time.Millisecond)
			mu.Lock()
			inside--
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, maxSeen)
}
