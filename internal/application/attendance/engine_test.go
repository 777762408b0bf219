package attendance_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/tabel-bot/internal/application/attendance"
	"github.com/jhoicas/tabel-bot/internal/domain"
	"github.com/jhoicas/tabel-bot/internal/domain/entity"
	"github.com/jhoicas/tabel-bot/internal/infrastructure/memory"
	"github.com/jhoicas/tabel-bot/pkg/clock"
	"github.com/jhoicas/tabel-bot/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

type recordingNotifier struct {
	mu   sync.Mutex
	tags []string
}

func (n *recordingNotifier) NotifyAdmins(_ context.Context, tag, _ string, _ *entity.User) {
	n.mu.Lock()
	n.tags = append(n.tags, tag)
	n.mu.Unlock()
}

func (n *recordingNotifier) NotifyUser(context.Context, int64, string) {}

type fixture struct {
	engine   *attendance.Engine
	store    *memory.Store
	notifier *recordingNotifier
	clock    *clock.Fake
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.New()
	clk := clock.NewFake(time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC))
	n := &recordingNotifier{}
	repos := store.Repositories()
	require.NoError(t, repos.Users.Create(context.Background(), &entity.User{
		ID: 42, Name: "Иванов И.И.", Status: entity.StatusInUnit,
	}))
	return &fixture{
		engine:   attendance.NewEngine(store, repos.Users, n, clk, logger.Nop()),
		store:    store,
		notifier: n,
		clock:    clk,
	}
}

func (f *fixture) events(t *testing.T) []*entity.Event {
	t.Helper()
	list, err := f.store.Repositories().Events.List(context.Background(), entity.EventFilter{}, 0, f.clock.Now())
	require.NoError(t, err)
	return list
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

func TestMarkDeparture_ThenGetStatus(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	out, err := f.engine.MarkDeparture(ctx, 42, "Штаб")
	require.NoError(t, err)
	assert.True(t, out.Changed)
	assert.True(t, out.User.Consistent())

	status, loc, err := f.engine.GetStatus(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusAway, status)
	assert.Equal(t, "Штаб", loc)

	events := f.events(t)
	require.Len(t, events, 1)
	assert.Equal(t, "away", events[0].Action)
	assert.Equal(t, "Штаб", events[0].Details)
	assert.Equal(t, []string{"away"}, f.notifier.tags)
}

func TestMarkArrival_ClearsLocation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.engine.MarkDeparture(ctx, 42, "Штаб")
	require.NoError(t, err)
	f.clock.Advance(time.Hour)

	out, err := f.engine.MarkArrival(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusInUnit, out.User.Status)
	assert.Empty(t, out.User.Location)
	assert.Equal(t, f.clock.Now(), out.User.LastStatusChange)
}

func TestSetStatus_SameStatusIsNoop(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	out, err := f.engine.MarkArrival(ctx, 42)
	require.NoError(t, err)
	assert.False(t, out.Changed)
	assert.Empty(t, f.events(t))
	assert.Empty(t, f.notifier.tags)
}

func TestSetStatus_InvalidLocationRejected(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.engine.MarkDeparture(ctx, 42, " Штаб123")
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)

	status, loc, err := f.engine.GetStatus(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusInUnit, status)
	assert.Empty(t, loc)
	assert.Empty(t, f.events(t))
}

func TestSetStatus_PresetBypassesValidator(t *testing.T) {
	f := newFixture(t)
	out, err := f.engine.MarkDeparture(context.Background(), 42, "ВВК")
	require.NoError(t, err, "короткие предустановленные локации принимаются")
	assert.Equal(t, "ВВК", out.User.Location)
}

func TestSetStatus_UnknownUser(t *testing.T) {
	f := newFixture(t)
	_, err := f.engine.MarkArrival(context.Background(), 7)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestSetStatus_StoreFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.store.FailOn("events.append", errors.New("io"))

	_, err := f.engine.MarkDeparture(ctx, 42, "Штаб")
	var se *domain.StoreError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "append event", se.Op)

	status, loc, _ := f.engine.GetStatus(ctx, 42)
	assert.Equal(t, entity.StatusInUnit, status)
	assert.Empty(t, loc)
	assert.Empty(t, f.notifier.tags)
}

func TestMarkAllArrived(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	repos := f.store.Repositories()
	require.NoError(t, repos.Users.Create(ctx, &entity.User{ID: 43, Name: "Петров П.П.", Status: entity.StatusInUnit}))
	_, err := f.engine.MarkDeparture(ctx, 42, "Штаб")
	require.NoError(t, err)
	_, err = f.engine.MarkDeparture(ctx, 43, "Магазин")
	require.NoError(t, err)

	n, err := f.engine.MarkAllArrived(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	away, err := repos.Users.ListByStatus(ctx, entity.StatusAway)
	require.NoError(t, err)
	assert.Empty(t, away)
	for _, id := range []int64{42, 43} {
		u, _ := repos.Users.GetByID(ctx, id)
		assert.True(t, u.Consistent())
	}
	// 2 убытия + 2 прибытия + итоговое событие
	events := f.events(t)
	assert.Len(t, events, 5)
	assert.Equal(t, entity.ActionMarkAllArrived, events[0].Action)
}

func TestInvariant_StatusLocationAcrossPaths(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	steps := []func() (*attendance.Outcome, error){
		func() (*attendance.Outcome, error) { return f.engine.MarkDeparture(ctx, 42, "Штаб") },
		func() (*attendance.Outcome, error) { return f.engine.MarkDeparture(ctx, 42, "Поликлиника") },
		func() (*attendance.Outcome, error) { return f.engine.MarkDeparture(ctx, 42, "bad1") },
		func() (*attendance.Outcome, error) { return f.engine.MarkArrival(ctx, 42) },
		func() (*attendance.Outcome, error) { return f.engine.SetStatus(ctx, 42, entity.StatusInUnit, "Штаб") },
	}
	for _, step := range steps {
		_, _ = step()
		u, err := f.store.Repositories().Users.GetByID(ctx, 42)
		require.NoError(t, err)
		assert.True(t, u.Consistent(), "status=%s location=%q", u.Status, u.Location)
	}
}
